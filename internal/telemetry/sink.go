// Package telemetry provides a fire-and-forget event sink. Emission
// never fails the caller: sink errors are logged and swallowed.
package telemetry

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/skillprep/assess/internal/logger"
)

// Event names emitted by the engine.
const (
	EventAcquisition     = "acquisition"
	EventAnswer          = "answer"
	EventSectionComplete = "section_complete"
	EventAutosave        = "autosave"
	EventReport          = "report"
	EventSourceRequest   = "source_request"
)

// Event is one telemetry record.
type Event struct {
	Name      string         `json:"event"`
	SessionID string         `json:"sessionId"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// Sink accepts events. Implementations must never return an error to
// the caller and must be safe for concurrent use.
type Sink interface {
	Emit(ctx context.Context, e Event)
}

// Nop discards all events.
type Nop struct{}

func (Nop) Emit(context.Context, Event) {}

// Appender is the narrow persistence interface a store sink writes
// through.
type Appender interface {
	AppendEvent(ctx context.Context, sessionID, name string, data []byte) error
}

// StoreSink persists events through an Appender, best-effort.
type StoreSink struct {
	appender Appender
	log      logger.Logger
}

// NewStoreSink creates a sink writing to the given appender.
func NewStoreSink(appender Appender, log logger.Logger) *StoreSink {
	return &StoreSink{appender: appender, log: log.Named("telemetry")}
}

func (s *StoreSink) Emit(ctx context.Context, e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	data, err := json.Marshal(e.Data)
	if err != nil {
		s.log.Warn(ctx, "telemetry payload not serializable", logger.String("event", e.Name), logger.Error(err))
		data = []byte("{}")
	}

	if err := s.appender.AppendEvent(ctx, e.SessionID, e.Name, data); err != nil {
		s.log.Warn(ctx, "telemetry append failed", logger.String("event", e.Name), logger.Error(err))
	}
}

// Memory records events in memory for tests.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

func (m *Memory) Emit(_ context.Context, e Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
}

// Events returns a copy of everything emitted so far.
func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

// Named returns the events with the given name.
func (m *Memory) Named(name string) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Event
	for _, e := range m.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}
