// Package session orchestrates encounters: it spawns and scales the enemy
// group, runs the turn loop across the resolver and the enemy AI, applies
// ability effects, and reports the end-of-combat summary.
package session

// FloorContext is the read-only dungeon state an encounter is built for.
// config.DungeonConfig satisfies it.
type FloorContext interface {
	CurrentFloorNumber() int
	DifficultySetting() string
}

// Floor is a fixed FloorContext.
type Floor struct {
	Number     int
	Difficulty string
}

// CurrentFloorNumber implements FloorContext.
func (f Floor) CurrentFloorNumber() int { return f.Number }

// DifficultySetting implements FloorContext.
func (f Floor) DifficultySetting() string { return f.Difficulty }
