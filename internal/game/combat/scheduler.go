package combat

import (
	"errors"
	"fmt"
)

// Lifecycle errors. They indicate a caller bug, not a player-facing failure.
var (
	ErrNoLiveCombatants = errors.New("combat: no live combatants")
	ErrNotActive        = errors.New("combat: no turn in progress")
	ErrCombatEnded      = errors.New("combat: encounter has ended")
)

// State is the lifecycle state of a Scheduler.
type State int

const (
	StateIdle State = iota
	StateActive
	// StateResolving means a turn has begun and its actor is acting.
	StateResolving
	StateEnded
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateResolving:
		return "resolving"
	case StateEnded:
		return "ended"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome is the result of the end-of-turn check.
type Outcome int

const (
	OutcomeContinue Outcome = iota
	OutcomeVictory
	OutcomeDefeat
	OutcomeAbandoned
)

// String returns the lowercase outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeContinue:
		return "continue"
	case OutcomeVictory:
		return "victory"
	case OutcomeDefeat:
		return "defeat"
	case OutcomeAbandoned:
		return "abandoned"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Turn describes the turn that BeginTurn opened.
type Turn struct {
	Actor *Combatant
	Round int
	// Skipped lists dead combatants pruned while reaching Actor's slot.
	Skipped []*Combatant
}

// Scheduler owns the turn order of one encounter and drives it through
// Idle -> Active -> Resolving -> ... -> Ended.
//
// A Scheduler is single use: once Ended it cannot be started again.
// It is not safe for concurrent use.
type Scheduler struct {
	id       string
	src      Source
	tiebreak int

	state   State
	outcome Outcome
	order   []Entry
	index   int
	round   int
	party   []*Combatant
	enemies []*Combatant
}

// NewScheduler returns an idle scheduler.
//
// Precondition: src is non-nil.
// Postcondition: State() == StateIdle.
func NewScheduler(id string, src Source, tiebreak int) *Scheduler {
	return &Scheduler{id: id, src: src, tiebreak: tiebreak}
}

// ID returns the encounter id.
func (s *Scheduler) ID() string { return s.id }

// State returns the lifecycle state.
func (s *Scheduler) State() State { return s.state }

// Outcome returns the final outcome once Ended, else OutcomeContinue.
func (s *Scheduler) Outcome() Outcome { return s.outcome }

// Round returns the current round, or 0 when not running.
func (s *Scheduler) Round() int { return s.round }

// Order returns a copy of the current turn order.
func (s *Scheduler) Order() []Entry {
	out := make([]Entry, len(s.order))
	copy(out, s.order)
	return out
}

// Current returns the combatant whose slot the index points at, or nil.
func (s *Scheduler) Current() *Combatant {
	if s.index < 0 || s.index >= len(s.order) {
		return nil
	}
	return s.order[s.index].Combatant
}

// Start merges party and enemies into one initiative-ordered sequence.
//
// Precondition: State() == StateIdle.
// Postcondition: on success State() == StateActive, Round() == 1 and the
// index points at the highest-initiative live combatant.
func (s *Scheduler) Start(party, enemies []*Combatant) error {
	switch s.state {
	case StateIdle:
	case StateEnded:
		return ErrCombatEnded
	default:
		return fmt.Errorf("combat %q already started", s.id)
	}

	all := make([]*Combatant, 0, len(party)+len(enemies))
	all = append(all, party...)
	all = append(all, enemies...)
	order := RollInitiative(all, s.src, s.tiebreak)
	if len(order) == 0 {
		return ErrNoLiveCombatants
	}

	s.party = append([]*Combatant(nil), party...)
	s.enemies = append([]*Combatant(nil), enemies...)
	s.order = order
	s.index = 0
	s.round = 1
	s.state = StateActive
	return nil
}

// BeginTurn opens the turn of the combatant at the current slot. Dead
// combatants reached on the way are pruned and reported in Turn.Skipped.
// The actor's cooldowns tick down by one and its AP is refreshed.
//
// Precondition: State() == StateActive.
// Postcondition: State() == StateResolving and Turn.Actor is alive.
func (s *Scheduler) BeginTurn() (Turn, error) {
	switch s.state {
	case StateActive:
	case StateEnded:
		return Turn{}, ErrCombatEnded
	default:
		return Turn{}, ErrNotActive
	}

	var skipped []*Combatant
	for {
		if len(s.order) == 0 {
			return Turn{Skipped: skipped}, ErrNoLiveCombatants
		}
		actor := s.order[s.index].Combatant
		if actor.IsAlive() {
			actor.TickCooldowns()
			actor.RefreshAP()
			s.state = StateResolving
			return Turn{Actor: actor, Round: s.round, Skipped: skipped}, nil
		}
		skipped = append(skipped, actor)
		s.order = append(s.order[:s.index], s.order[s.index+1:]...)
		if s.index >= len(s.order) {
			s.index = 0
			s.round++
		}
	}
}

// EndTurn closes the current turn and checks the end condition. Defeat is
// checked before victory, so a mutual wipe is a defeat.
//
// Precondition: State() == StateResolving.
// Postcondition: on OutcomeVictory or OutcomeDefeat State() == StateEnded and
// the turn order is discarded; otherwise the index has advanced, wrapping
// into the next round.
func (s *Scheduler) EndTurn() (Outcome, error) {
	switch s.state {
	case StateResolving:
	case StateEnded:
		return s.outcome, ErrCombatEnded
	default:
		return OutcomeContinue, ErrNotActive
	}

	if outcome := s.check(); outcome != OutcomeContinue {
		s.end(outcome)
		return outcome, nil
	}

	s.index++
	if s.index >= len(s.order) {
		s.index = 0
		s.round++
	}
	s.state = StateActive
	return OutcomeContinue, nil
}

// Abandon ends the encounter without a victor.
//
// Postcondition: State() == StateEnded.
func (s *Scheduler) Abandon() {
	if s.state == StateEnded {
		return
	}
	s.end(OutcomeAbandoned)
}

// Party returns the party combatants the encounter started with.
func (s *Scheduler) Party() []*Combatant { return s.party }

// Enemies returns the enemy combatants the encounter started with.
func (s *Scheduler) Enemies() []*Combatant { return s.enemies }

func (s *Scheduler) check() Outcome {
	return CheckOutcome(s.party, s.enemies)
}

func (s *Scheduler) end(outcome Outcome) {
	s.outcome = outcome
	s.state = StateEnded
	s.order = nil
	s.index = 0
	s.round = 0
}

// CheckOutcome evaluates the end condition over the two factions.
//
// Postcondition: OutcomeDefeat when no party member is alive, else
// OutcomeVictory when no enemy is alive, else OutcomeContinue.
func CheckOutcome(party, enemies []*Combatant) Outcome {
	if !anyAlive(party) {
		return OutcomeDefeat
	}
	if !anyAlive(enemies) {
		return OutcomeVictory
	}
	return OutcomeContinue
}

func anyAlive(cs []*Combatant) bool {
	for _, c := range cs {
		if c != nil && c.IsAlive() {
			return true
		}
	}
	return false
}
