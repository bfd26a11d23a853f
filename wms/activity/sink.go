// Package activity records who did what to which intake record.
// Delivery is best-effort: Emit never blocks the caller.
package activity

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Event struct {
	ID        uuid.UUID `json:"id"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Status    string    `json:"status"`
	Reference string    `json:"reference"`
	Detail    string    `json:"detail"`
	At        time.Time `json:"at"`
}

func New(actor, action, status, reference, detail string) Event {
	if actor == "" {
		actor = "system"
	}
	return Event{
		ID:        uuid.New(),
		Actor:     actor,
		Action:    action,
		Status:    status,
		Reference: reference,
		Detail:    detail,
		At:        time.Now(),
	}
}

type Sink interface {
	Emit(Event)
}

type Nop struct{}

func (Nop) Emit(Event) {}

// AsyncSink buffers events and writes them to a Store from a single worker.
type AsyncSink struct {
	store   Store
	log     *logrus.Logger
	ch      chan Event
	done    chan struct{}
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
}

func NewAsyncSink(store Store, buffer int, logger *logrus.Logger) *AsyncSink {
	if buffer <= 0 {
		buffer = 256
	}
	s := &AsyncSink{
		store: store,
		log:   logger,
		ch:    make(chan Event, buffer),
		done:  make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *AsyncSink) Emit(e Event) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.dropped.Add(1)
		return
	}
	select {
	case s.ch <- e:
	default:
		s.dropped.Add(1)
		s.log.WithFields(logrus.Fields{
			"action":    e.Action,
			"reference": e.Reference,
		}).Warn("activity buffer full, event dropped")
	}
}

// Dropped reports how many events were discarded because the buffer was full
// or the sink was closed.
func (s *AsyncSink) Dropped() int64 {
	return s.dropped.Load()
}

// Close stops accepting events and waits for queued ones to be written or
// for ctx to expire.
func (s *AsyncSink) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
	s.mu.Unlock()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *AsyncSink) run() {
	defer close(s.done)
	for e := range s.ch {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.store.Save(ctx, fromEvent(e)); err != nil {
			s.log.WithFields(logrus.Fields{
				"action":    e.Action,
				"reference": e.Reference,
			}).WithError(err).Error("failed to write activity log")
		}
		cancel()
	}
}

// MemorySink keeps events in memory. Used where no database is wired.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (m *MemorySink) Emit(e Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
}

func (m *MemorySink) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// Actions returns the action names in emission order.
func (m *MemorySink) Actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.events))
	for i, e := range m.events {
		out[i] = e.Action
	}
	return out
}
