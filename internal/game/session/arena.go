package session

import (
	"github.com/cory-johannsen/gauntlet/internal/game/ai"
	"github.com/cory-johannsen/gauntlet/internal/game/combat"
)

// Arena is the grid an encounter is fought on. It layers bounds and
// combatant occupancy over an optional terrain validator, so enemies never
// step onto each other or onto the party.
type Arena struct {
	width     int
	height    int
	terrain   ai.MovementValidator
	occupants []*combat.Combatant
}

// NewArena creates a width x height arena. terrain may be nil for open ground.
//
// Precondition: width and height are positive.
func NewArena(width, height int, terrain ai.MovementValidator) *Arena {
	return &Arena{width: width, height: height, terrain: terrain}
}

// Occupy registers combatants whose cells block movement while they live.
func (a *Arena) Occupy(cs ...*combat.Combatant) {
	a.occupants = append(a.occupants, cs...)
}

// InBounds reports whether p lies on the arena.
func (a *Arena) InBounds(p combat.Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < a.width && p.Y < a.height
}

// Occupied reports whether a live combatant stands at (x, y).
func (a *Arena) Occupied(x, y int) bool {
	for _, c := range a.occupants {
		if c.IsAlive() && c.Pos.X == x && c.Pos.Y == y {
			return true
		}
	}
	return false
}

// CanMoveTo implements ai.MovementValidator.
func (a *Arena) CanMoveTo(entityKind string, x, y int) bool {
	if !a.InBounds(combat.Position{X: x, Y: y}) || a.Occupied(x, y) {
		return false
	}
	return a.terrain == nil || a.terrain.CanMoveTo(entityKind, x, y)
}

// Place picks up to n free cells for entities of kind, nearest to anchor
// first. Cells are scanned ring by ring outward, row-major within a ring.
// Cells picked by this call are treated as taken.
//
// Postcondition: len(result) <= n and no cell repeats.
func (a *Arena) Place(entityKind string, anchor combat.Position, n int) []combat.Position {
	var out []combat.Position
	taken := make(map[combat.Position]bool, n)
	limit := max(a.width, a.height)
	for r := 0; r <= limit && len(out) < n; r++ {
		for dy := -r; dy <= r && len(out) < n; dy++ {
			for dx := -r; dx <= r && len(out) < n; dx++ {
				if max(abs(dx), abs(dy)) != r {
					continue
				}
				p := combat.Position{X: anchor.X + dx, Y: anchor.Y + dy}
				if taken[p] || !a.CanMoveTo(entityKind, p.X, p.Y) {
					continue
				}
				taken[p] = true
				out = append(out, p)
			}
		}
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
