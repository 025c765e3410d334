// Package analytics provides the default fire-and-forget analytics sink.
// Recording never blocks the caller and never surfaces an error into the
// session flow; when the rate limit is exhausted, events are dropped.
package analytics

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/halcyonlabs/walletbridge/internal/client"
)

// Default rate-limit settings: 5 events/second with a burst of 10, matching
// what a hosted collector will accept without throttling.
const (
	defaultEventsPerSecond = 5
	defaultBurst           = 10
)

// Event is one recorded analytics event.
type Event struct {
	ID       string
	Name     string
	Metadata map[string]string
	At       time.Time
}

// Sink buffers events in memory behind a token-bucket rate limit. A host
// application drains Events into its own collector; the bridge only ever
// calls Record.
type Sink struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	events  []Event
	dropped int64
}

// Compile-time interface check.
var _ client.Analytics = (*Sink)(nil)

// NewSink creates a sink with the default rate limit.
func NewSink() *Sink {
	return &Sink{
		limiter: rate.NewLimiter(rate.Limit(defaultEventsPerSecond), defaultBurst),
	}
}

// Record implements client.Analytics. It uses Allow rather than Wait so a
// throttled sink drops the event instead of stalling a session operation.
func (s *Sink) Record(event string, metadata map[string]string) {
	if !s.limiter.Allow() {
		s.mu.Lock()
		s.dropped++
		s.mu.Unlock()
		return
	}

	meta := make(map[string]string, len(metadata))
	for k, v := range metadata {
		meta[k] = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, Event{
		ID:       uuid.NewString(),
		Name:     event,
		Metadata: meta,
		At:       time.Now(),
	})
}

// Drain returns the buffered events and clears the buffer.
func (s *Sink) Drain() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.events
	s.events = nil
	return out
}

// Dropped returns how many events were discarded by the rate limit.
func (s *Sink) Dropped() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Nop is an analytics sink that discards everything.
type Nop struct{}

// Compile-time interface check.
var _ client.Analytics = (*Nop)(nil)

// Record implements client.Analytics by doing nothing.
func (Nop) Record(string, map[string]string) {}
