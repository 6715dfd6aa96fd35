package npc

import (
	"fmt"
	"sort"
	"sync"
)

// Manager tracks live enemy instances by ID and by owning encounter.
// All methods are safe for concurrent use.
type Manager struct {
	mu         sync.RWMutex
	instances  map[string]*Instance       // instanceID → Instance
	encounters map[string]map[string]bool // encounterID → set of instanceIDs
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{
		instances:  make(map[string]*Instance),
		encounters: make(map[string]map[string]bool),
	}
}

// Track registers inst as owned by encounterID.
//
// Precondition: inst must be non-nil; encounterID must be non-empty.
// Postcondition: Returns an error if inst.ID is already tracked.
func (m *Manager) Track(encounterID string, inst *Instance) error {
	if inst == nil {
		return fmt.Errorf("npc.Manager.Track: inst must not be nil")
	}
	if encounterID == "" {
		return fmt.Errorf("npc.Manager.Track: encounterID must not be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.instances[inst.ID]; exists {
		return fmt.Errorf("npc instance %q already tracked", inst.ID)
	}
	m.instances[inst.ID] = inst
	if m.encounters[encounterID] == nil {
		m.encounters[encounterID] = make(map[string]bool)
	}
	m.encounters[encounterID][inst.ID] = true
	return nil
}

// Get returns the instance with the given ID.
//
// Postcondition: Returns (inst, true) if found, or (nil, false) otherwise.
func (m *Manager) Get(id string) (*Instance, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inst, ok := m.instances[id]
	return inst, ok
}

// InEncounter returns a snapshot of the instances owned by encounterID,
// ordered by ID.
//
// Postcondition: Returns a non-nil slice (may be empty).
func (m *Manager) InEncounter(encounterID string) []*Instance {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.encounters[encounterID]
	out := make([]*Instance, 0, len(ids))
	for id := range ids {
		if inst, ok := m.instances[id]; ok {
			out = append(out, inst)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Release destroys every instance owned by encounterID and returns how many
// were removed.
func (m *Manager) Release(encounterID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := m.encounters[encounterID]
	for id := range ids {
		delete(m.instances, id)
	}
	delete(m.encounters, encounterID)
	return len(ids)
}

// Count returns the number of tracked instances.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.instances)
}
