package debuglog

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventKind identifies which subsystem produced an event
type EventKind string

const (
	KindLLM    EventKind = "llm"
	KindImage  EventKind = "image"
	KindSystem EventKind = "system"
)

// Phase identifies where in a request lifecycle an event was emitted
type Phase string

const (
	PhaseRequest  Phase = "request"
	PhaseResponse Phase = "response"
	PhaseInfo     Phase = "info"
	PhaseError    Phase = "error"
)

// Event is a single debug log entry
type Event struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Kind      EventKind   `json:"kind"`
	Phase     Phase       `json:"phase"`
	Content   interface{} `json:"content"`
	Provider  string      `json:"provider,omitempty"`
	Model     string      `json:"model,omitempty"`
}

// Sink is an append-only in-memory event store. Events are kept in
// insertion order and live for the lifetime of the process.
type Sink struct {
	mu     sync.Mutex
	events []Event
}

// NewSink creates an empty sink
func NewSink() *Sink {
	return &Sink{}
}

// Append records an event, filling in its ID and timestamp
func (s *Sink) Append(kind EventKind, phase Phase, content interface{}, provider, model string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Kind:      kind,
		Phase:     phase,
		Content:   content,
		Provider:  provider,
		Model:     model,
	})
}

// List returns a copy of all events, oldest first
func (s *Sink) List() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Clear removes all events
func (s *Sink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = nil
}

// Len returns the number of stored events
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.events)
}
