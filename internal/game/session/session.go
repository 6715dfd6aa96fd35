package session

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/cory-johannsen/gauntlet/internal/game/ability"
	"github.com/cory-johannsen/gauntlet/internal/game/ai"
	"github.com/cory-johannsen/gauntlet/internal/game/combat"
	"github.com/cory-johannsen/gauntlet/internal/game/dice"
	"github.com/cory-johannsen/gauntlet/internal/game/encounter"
	"github.com/cory-johannsen/gauntlet/internal/game/event"
	"github.com/cory-johannsen/gauntlet/internal/game/npc"
)

var (
	// ErrNotPartyTurn is returned when a party action is attempted on an enemy turn.
	ErrNotPartyTurn = errors.New("session: current actor is not a party member")
	// ErrNotEnemyTurn is returned when the AI is asked to act for a party member.
	ErrNotEnemyTurn = errors.New("session: current actor is not an enemy")
	// ErrInvalidTarget is returned when a target id is unknown or dead, or a
	// damaging ability is used without one.
	ErrInvalidTarget = errors.New("session: invalid target")
)

// Session is one running encounter. It is not safe for concurrent use; the
// caller drives it one turn at a time.
type Session struct {
	id         string
	floor      int
	difficulty string
	party      []*combat.Combatant
	enemies    []*combat.Combatant
	instances  map[string]*npc.Instance // combatant ID → instance
	arena      *Arena
	balance    encounter.BalanceResult

	sched     *combat.Scheduler
	resolver  *ability.Resolver
	tactician *ai.Tactician
	roller    *dice.Roller
	src       dice.Source

	sink    event.Sink
	logger  *zap.Logger
	tracer  trace.Tracer
	release func()

	turn    combat.Turn
	rounds  int
	summary *Summary
}

// ActionResult reports a party ability use and the effects it applied.
type ActionResult struct {
	Outcome ability.Outcome
	Target  *combat.Combatant
	// HitChance and Roll are set when the ability dealt damage.
	HitChance int
	Roll      int
	Hit       bool
	Damage    int
	Healed    int
	// APRestored is the AP actually regained.
	APRestored int
	Concealed  bool
}

// ID returns the encounter id.
func (s *Session) ID() string { return s.id }

// Floor returns the floor the encounter was built for.
func (s *Session) Floor() int { return s.floor }

// Party returns the party combatants.
func (s *Session) Party() []*combat.Combatant { return s.party }

// Enemies returns the enemy combatants in spawn order.
func (s *Session) Enemies() []*combat.Combatant { return s.enemies }

// Instance returns the enemy instance behind an enemy combatant id.
func (s *Session) Instance(id string) (*npc.Instance, bool) {
	inst, ok := s.instances[id]
	return inst, ok
}

// Arena returns the encounter's grid.
func (s *Session) Arena() *Arena { return s.arena }

// Balance reports the corrective pass applied to the group.
func (s *Session) Balance() encounter.BalanceResult { return s.balance }

// Scheduler returns the encounter's turn scheduler.
func (s *Session) Scheduler() *combat.Scheduler { return s.sched }

// Resolver returns the encounter's ability resolver.
func (s *Session) Resolver() *ability.Resolver { return s.resolver }

// Current returns the actor of the open turn, or nil between turns.
func (s *Session) Current() *combat.Combatant {
	if s.sched.State() != combat.StateResolving {
		return nil
	}
	return s.turn.Actor
}

// Done reports whether the encounter has ended.
func (s *Session) Done() bool { return s.summary != nil }

// Summary returns the end-of-combat summary once the encounter has ended.
func (s *Session) Summary() (Summary, bool) {
	if s.summary == nil {
		return Summary{}, false
	}
	return *s.summary, true
}

// BeginTurn opens the next turn, emitting turn_skipped for every dead
// combatant pruned on the way and turn_started for the actor.
func (s *Session) BeginTurn(ctx context.Context) (combat.Turn, error) {
	turn, err := s.sched.BeginTurn()
	for _, c := range turn.Skipped {
		s.sink.Emit(event.Event{
			Type:      event.TypeTurnSkipped,
			Encounter: s.id,
			Round:     s.sched.Round(),
			ActorID:   c.ID,
		})
	}
	if err != nil {
		return turn, err
	}
	s.turn = turn
	s.rounds = turn.Round
	s.sink.Emit(event.Event{
		Type:      event.TypeTurnStarted,
		Encounter: s.id,
		Round:     turn.Round,
		ActorID:   turn.Actor.ID,
		Amount:    turn.Actor.AP,
	})
	trace.SpanFromContext(ctx).AddEvent("turn_started", trace.WithAttributes(
		attribute.String("actor", turn.Actor.ID),
		attribute.Int("round", turn.Round),
	))
	return turn, nil
}

// UseAbility has the current party actor use key, against targetID when it
// is non-empty, and applies the resolved effects.
//
// Damage rolls against ability.HitChance and lands for max(1, value -
// defense); attacking breaks concealment. Heal restores the target when it
// is an ally and the actor otherwise. Conceal and restore_ap apply to the
// actor.
//
// Postcondition: a validation failure is reported in Outcome with no state
// changed and a nil error; errors are reserved for lifecycle and targeting
// mistakes, which also change nothing.
func (s *Session) UseAbility(ctx context.Context, key, targetID string) (ActionResult, error) {
	actor, err := s.partyActor()
	if err != nil {
		return ActionResult{}, err
	}
	var target *combat.Combatant
	if targetID != "" {
		target = s.combatant(targetID)
		if target == nil || !target.IsAlive() {
			return ActionResult{}, fmt.Errorf("%w: %q", ErrInvalidTarget, targetID)
		}
	}
	def, ok := s.resolver.Catalog().Get(key)
	if ok && def.HasEffect(ability.EffectDamage) && target == nil {
		return ActionResult{}, fmt.Errorf("%w: %q needs a target", ErrInvalidTarget, key)
	}

	ctx, span := s.tracer.Start(ctx, "combat.turn", trace.WithAttributes(
		attribute.String("encounter.id", s.id),
		attribute.Int("round", s.turn.Round),
		attribute.String("actor", actor.ID),
		attribute.String("ability", key),
	))
	defer span.End()

	req := ability.Request{Encounter: s.id, Round: s.turn.Round, Actor: actor, Key: key}
	if target != nil {
		req.Target = &target.Pos
		req.TargetID = target.ID
	}
	res := ActionResult{Outcome: s.resolver.Invoke(req), Target: target}
	if !res.Outcome.Success {
		span.SetAttributes(attribute.String("failure", res.Outcome.Reason.String()))
		return res, nil
	}
	s.apply(ctx, def, actor, &res)
	span.SetAttributes(
		attribute.Bool("hit", res.Hit),
		attribute.Int("damage", res.Damage),
	)
	return res, nil
}

func (s *Session) apply(_ context.Context, def *ability.Definition, actor *combat.Combatant, res *ActionResult) {
	target := res.Target
	for _, e := range def.Effects() {
		value, _ := res.Outcome.Effect(e.Kind)
		switch e.Kind {
		case ability.EffectDamage:
			res.HitChance = ability.HitChance(def, actor, target)
			res.Roll = s.roller.Percentile("ability.hit")
			res.Hit = res.Roll < res.HitChance
			if res.Hit {
				res.Damage = target.ApplyDamage(max(1, value-target.Defense))
			}
			actor.Concealed = false
			s.sink.Emit(event.Event{
				Type:      event.TypeAttackResolved,
				Encounter: s.id,
				Round:     s.turn.Round,
				ActorID:   actor.ID,
				TargetID:  target.ID,
				Key:       def.Key,
				Amount:    res.Damage,
				Hit:       res.Hit,
			})
		case ability.EffectHeal:
			recipient := actor
			if target != nil && target.Faction == actor.Faction {
				recipient = target
			}
			res.Healed = recipient.Heal(value)
		case ability.EffectConceal:
			actor.Concealed = true
			res.Concealed = true
		case ability.EffectRestoreAP:
			res.APRestored = actor.RestoreAP(value)
		}
	}
}

// RunEnemyTurn lets the enemy AI play the current enemy actor's turn.
func (s *Session) RunEnemyTurn(ctx context.Context) (ai.TurnResult, error) {
	actor := s.Current()
	if actor == nil {
		return ai.TurnResult{}, combat.ErrNotActive
	}
	if actor.Faction != combat.FactionEnemy {
		return ai.TurnResult{}, ErrNotEnemyTurn
	}
	_, span := s.tracer.Start(ctx, "combat.turn", trace.WithAttributes(
		attribute.String("encounter.id", s.id),
		attribute.Int("round", s.turn.Round),
		attribute.String("actor", actor.ID),
	))
	defer span.End()

	res := s.tactician.TakeTurn(s.id, s.turn.Round, actor, s.party)
	span.SetAttributes(attribute.String("action", res.Action.String()))
	if res.Attack != nil {
		span.SetAttributes(
			attribute.String("ability", res.Attack.Ability),
			attribute.Bool("hit", res.Attack.Hit),
			attribute.Int("damage", res.Attack.Damage),
		)
	}
	return res, nil
}

// EndTurn closes the open turn and checks the end condition. When the
// encounter ends the summary is computed, combat_ended is emitted, and the
// encounter is released from its Manager.
func (s *Session) EndTurn(ctx context.Context) (combat.Outcome, error) {
	outcome, err := s.sched.EndTurn()
	if err != nil {
		return outcome, err
	}
	if outcome != combat.OutcomeContinue {
		s.finish(ctx, outcome)
	}
	return outcome, nil
}

// Abandon ends a running encounter without a winner.
//
// Postcondition: Done() is true; the summary of an already ended encounter
// is returned unchanged.
func (s *Session) Abandon(ctx context.Context) Summary {
	if s.summary != nil {
		return *s.summary
	}
	s.sched.Abandon()
	s.finish(ctx, combat.OutcomeAbandoned)
	return *s.summary
}

func (s *Session) finish(ctx context.Context, outcome combat.Outcome) {
	_, span := s.tracer.Start(ctx, "combat.end", trace.WithAttributes(
		attribute.String("encounter.id", s.id),
		attribute.String("outcome", outcome.String()),
		attribute.Int("rounds", s.rounds),
	))
	defer span.End()

	sum := s.summarize(outcome)
	s.summary = &sum
	span.SetAttributes(
		attribute.Int("survivors", len(sum.Survivors)),
		attribute.Int("enemies.defeated", sum.EnemiesDefeated),
	)
	s.sink.Emit(event.Event{
		Type:      event.TypeCombatEnded,
		Encounter: s.id,
		Round:     s.rounds,
		Amount:    sum.XPEarned,
		Reason:    outcome.String(),
	})
	s.logger.Info("combat ended",
		zap.String("outcome", outcome.String()),
		zap.Int("rounds", s.rounds),
		zap.Strings("survivors", sum.Survivors),
		zap.Strings("fallen", sum.Fallen),
		zap.Int("enemies_defeated", sum.EnemiesDefeated),
		zap.Int("xp", sum.XPEarned),
	)
	if s.release != nil {
		s.release()
	}
}

func (s *Session) partyActor() (*combat.Combatant, error) {
	actor := s.Current()
	if actor == nil {
		return nil, combat.ErrNotActive
	}
	if actor.Faction != combat.FactionParty {
		return nil, ErrNotPartyTurn
	}
	return actor, nil
}

func (s *Session) combatant(id string) *combat.Combatant {
	for _, c := range s.party {
		if c.ID == id {
			return c
		}
	}
	for _, c := range s.enemies {
		if c.ID == id {
			return c
		}
	}
	return nil
}
