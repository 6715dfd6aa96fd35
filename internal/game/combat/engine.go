package combat

import (
	"fmt"
	"sort"
	"sync"
)

// Engine tracks every running encounter, keyed by encounter id.
// All methods are safe for concurrent use; each Scheduler itself is not.
type Engine struct {
	mu       sync.RWMutex
	tiebreak int
	combats  map[string]*Scheduler
}

// NewEngine creates an empty Engine whose schedulers use tiebreak for
// initiative rolls.
//
// Postcondition: Returns a non-nil Engine ready for use.
func NewEngine(tiebreak int) *Engine {
	return &Engine{tiebreak: tiebreak, combats: make(map[string]*Scheduler)}
}

// StartCombat registers a new encounter under id and starts it.
//
// Precondition: id must be non-empty; src non-nil.
// Postcondition: Returns the running Scheduler, or an error if id is already
// registered or nobody is alive.
func (e *Engine) StartCombat(id string, src Source, party, enemies []*Combatant) (*Scheduler, error) {
	if id == "" {
		return nil, fmt.Errorf("combat id must not be empty")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.combats[id]; exists {
		return nil, fmt.Errorf("combat %q already active", id)
	}

	s := NewScheduler(id, src, e.tiebreak)
	if err := s.Start(party, enemies); err != nil {
		return nil, fmt.Errorf("starting combat %q: %w", id, err)
	}
	e.combats[id] = s
	return s, nil
}

// GetCombat returns the encounter registered under id.
//
// Postcondition: Returns (scheduler, true) if found, or (nil, false) otherwise.
func (e *Engine) GetCombat(id string) (*Scheduler, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.combats[id]
	return s, ok
}

// EndCombat removes the encounter record for id, abandoning it if it is
// still running.
func (e *Engine) EndCombat(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.combats[id]; ok {
		s.Abandon()
		delete(e.combats, id)
	}
}

// Active returns the ids of registered encounters in sorted order.
func (e *Engine) Active() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ids := make([]string, 0, len(e.combats))
	for id := range e.combats {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
