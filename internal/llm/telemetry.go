package llm

import (
	"context"
	"time"

	"github.com/skillprep/assess/internal/telemetry"
)

// TelemetryProvider is a decorator that records every generation call
// as a telemetry event. Emission never fails the request.
type TelemetryProvider struct {
	inner Provider
	sink  telemetry.Sink
}

// WithTelemetry wraps a Provider with event emission.
func WithTelemetry(p Provider, sink telemetry.Sink) Provider {
	return &TelemetryProvider{inner: p, sink: sink}
}

func (t *TelemetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	resp, err := t.inner.Generate(ctx, req)

	data := map[string]any{
		"model":     t.inner.ModelID(),
		"purpose":   PurposeFrom(ctx),
		"latencyMs": time.Since(start).Milliseconds(),
		"success":   err == nil,
	}
	if resp != nil {
		data["inputTokens"] = resp.Usage.InputTokens
		data["outputTokens"] = resp.Usage.OutputTokens
	}
	if err != nil {
		data["error"] = err.Error()
	}

	t.sink.Emit(ctx, telemetry.Event{
		Name:      telemetry.EventSourceRequest,
		Timestamp: start,
		Data:      data,
	})

	return resp, err
}

func (t *TelemetryProvider) ModelID() string {
	return t.inner.ModelID()
}
