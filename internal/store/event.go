package store

import (
	"context"
	"time"
)

// AppendEvent records a telemetry event. Implements telemetry.Appender.
func (s *Store) AppendEvent(ctx context.Context, sessionID, name string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (session_id, name, created_at, data) VALUES (?, ?, ?, ?)`,
		sessionID, name, time.Now().UTC(), string(data),
	)
	if err != nil {
		return &PersistenceError{Op: "append event", Err: err}
	}
	return nil
}

// EventCount returns the number of stored events for a session.
// Used by the stats command.
func (s *Store) EventCount(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events WHERE session_id = ?`, sessionID,
	).Scan(&n)
	if err != nil {
		return 0, &PersistenceError{Op: "count events", Err: err}
	}
	return n, nil
}
