package assessment

import "fmt"

// InvalidOperationError reports a rejected state machine operation.
// It is recoverable: the state is unchanged and the session continues.
type InvalidOperationError struct {
	Op     string
	Reason string
}

func (e *InvalidOperationError) Error() string {
	return fmt.Sprintf("invalid operation %s: %s", e.Op, e.Reason)
}
