// Package testutil provides deterministic randomness and an open movement
// grid for tests.
package testutil

import (
	"sync"
	"testing"
)

// Sequence is a scripted random source. Each Intn call returns the next
// value modulo n; after the script runs out it returns 0.
type Sequence struct {
	mu     sync.Mutex
	values []int
	next   int
}

// NewSequence returns a Sequence that yields values in order.
func NewSequence(values ...int) *Sequence {
	return &Sequence{values: values}
}

// Intn returns the next scripted value reduced into [0, n).
//
// Precondition: n > 0.
func (s *Sequence) Intn(n int) int {
	if n <= 0 {
		panic("testutil: Intn called with n <= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= len(s.values) {
		return 0
	}
	v := s.values[s.next] % n
	s.next++
	if v < 0 {
		v += n
	}
	return v
}

// Remaining returns how many scripted values have not been consumed.
func (s *Sequence) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values) - s.next
}

// Fixed always returns the same value modulo n.
type Fixed int

// Intn returns int(f) reduced into [0, n).
func (f Fixed) Intn(n int) int {
	v := int(f) % n
	if v < 0 {
		v += n
	}
	return v
}

// MaxRoll always returns n-1, the highest value of any range.
type MaxRoll struct{}

// Intn returns n-1.
func (MaxRoll) Intn(n int) int { return n - 1 }

// RequireExhausted fails t when s still holds unconsumed values.
func RequireExhausted(t testing.TB, s *Sequence) {
	t.Helper()
	if r := s.Remaining(); r != 0 {
		t.Fatalf("sequence has %d unconsumed values", r)
	}
}
