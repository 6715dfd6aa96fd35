package session

import (
	"fmt"
	"sync"

	"github.com/cory-johannsen/gauntlet/internal/game/event"
)

// Stream is an event.Sink that forwards events onto a buffered channel,
// bridging an encounter to a presentation layer reading at its own pace.
type Stream struct {
	name    string
	events  chan event.Event
	mu      sync.Mutex
	closed  bool
	dropped int
}

// NewStream creates a Stream with the given buffer size.
//
// Precondition: name must be non-empty.
// Postcondition: Returns a Stream with an open events channel.
func NewStream(name string, bufferSize int) *Stream {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &Stream{
		name:   name,
		events: make(chan event.Event, bufferSize),
	}
}

// Name returns the stream's name.
func (s *Stream) Name() string {
	return s.name
}

// Emit implements event.Sink. Events emitted after Close or while the
// buffer is full are counted as dropped.
func (s *Stream) Emit(e event.Event) {
	if err := s.Push(e); err != nil {
		s.mu.Lock()
		s.dropped++
		s.mu.Unlock()
	}
}

// Push sends e to the events channel without blocking.
//
// Postcondition: e is enqueued, or an error is returned if the stream is
// closed or full.
func (s *Stream) Push(e event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("stream %s is closed", s.name)
	}
	select {
	case s.events <- e:
		return nil
	default:
		return fmt.Errorf("stream %s event buffer full", s.name)
	}
}

// Events returns the read-only events channel.
func (s *Stream) Events() <-chan event.Event {
	return s.events
}

// Dropped returns how many events Emit could not deliver.
func (s *Stream) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Close marks the stream as closed and closes the events channel.
//
// Postcondition: The events channel is closed. Further Push calls return an error.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.events)
	}
	return nil
}

// IsClosed reports whether the stream has been closed.
func (s *Stream) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
