package ai

import "github.com/cory-johannsen/gauntlet/internal/game/combat"

// Action is what an enemy decided to do this turn.
type Action int

const (
	// ActionNone means no target was available.
	ActionNone Action = iota
	// ActionAttack attacks the target from where the actor stands.
	ActionAttack
	// ActionApproach steps toward the target, attacking if the step is blocked.
	ActionApproach
	// ActionAdvance steps toward the target, doing nothing if blocked.
	ActionAdvance
)

// String returns the lowercase action name.
func (a Action) String() string {
	switch a {
	case ActionAttack:
		return "attack"
	case ActionApproach:
		return "approach"
	case ActionAdvance:
		return "advance"
	default:
		return "none"
	}
}

// Distance thresholds of DecideAction.
const (
	AttackDistance   = 1
	ApproachDistance = 3
)

// DecideAction picks the action for actor against target by distance:
// <= 1 attacks, <= 3 approaches, anything further advances.
func DecideAction(actor, target *combat.Combatant) Action {
	if target == nil {
		return ActionNone
	}
	switch d := actor.Pos.Distance(target.Pos); {
	case d <= AttackDistance:
		return ActionAttack
	case d <= ApproachDistance:
		return ActionApproach
	default:
		return ActionAdvance
	}
}

// StepCandidates lists the cells one step from from toward to, in the order
// diagonal, horizontal, vertical. Zero moves and duplicates are omitted, as
// is the target cell itself.
func StepCandidates(from, to combat.Position) []combat.Position {
	dx, dy := sign(to.X-from.X), sign(to.Y-from.Y)
	raw := []combat.Position{
		{X: from.X + dx, Y: from.Y + dy},
		{X: from.X + dx, Y: from.Y},
		{X: from.X, Y: from.Y + dy},
	}
	var out []combat.Position
	for _, p := range raw {
		if p == from || p == to || contains(out, p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func contains(ps []combat.Position, p combat.Position) bool {
	for _, q := range ps {
		if q == p {
			return true
		}
	}
	return false
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}
