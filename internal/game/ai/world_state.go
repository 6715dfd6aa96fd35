// Package ai drives enemy turns: target selection, the approach-or-attack
// decision, movement steps, and attack resolution.
package ai

import "github.com/cory-johannsen/gauntlet/internal/game/combat"

// MovementValidator is the external movement-validity capability. The AI
// treats it as an opaque oracle and never computes collision itself.
type MovementValidator interface {
	CanMoveTo(entityKind string, x, y int) bool
}

// EntityKindEnemy is the entity kind the AI reports when asking to move.
const EntityKindEnemy = "enemy"

// Target scoring weights.
const (
	DistanceScoreBase    = 50
	DistanceScorePerCell = 5
	WoundScoreWeight     = 30
	FixedThreat          = 20
	AdjacencyBonus       = 10
)

// WorldState is the snapshot one enemy plans against.
//
// Invariant: Actor must not be nil.
type WorldState struct {
	Actor *combat.Combatant
	// Party is every party combatant of the encounter, dead or alive.
	Party []*combat.Combatant
}

// LiveTargets returns the living party members in Party order.
//
// Postcondition: returned slice contains no dead combatants.
func (ws *WorldState) LiveTargets() []*combat.Combatant {
	var out []*combat.Combatant
	for _, c := range ws.Party {
		if c != nil && c.IsAlive() {
			out = append(out, c)
		}
	}
	return out
}

// Score rates target for actor: max(0, 50 - 5*d) + (1 - health/maxHealth)*30
// + 20 + (10 if d <= 1), where d is the Manhattan distance.
func Score(actor, target *combat.Combatant) float64 {
	d := actor.Pos.Distance(target.Pos)
	score := float64(max(0, DistanceScoreBase-DistanceScorePerCell*d))
	score += (1 - target.HealthFraction()) * WoundScoreWeight
	score += FixedThreat
	if d <= 1 {
		score += AdjacencyBonus
	}
	return score
}

// SelectTarget returns the highest-scoring live party member. Ties go to the
// earlier member in Party order.
//
// Postcondition: returns (nil, 0, false) when no party member is alive.
func (ws *WorldState) SelectTarget() (*combat.Combatant, float64, bool) {
	var best *combat.Combatant
	bestScore := 0.0
	for _, c := range ws.LiveTargets() {
		s := Score(ws.Actor, c)
		if best == nil || s > bestScore {
			best, bestScore = c, s
		}
	}
	return best, bestScore, best != nil
}
