package ai

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/gauntlet/internal/game/ability"
	"github.com/cory-johannsen/gauntlet/internal/game/combat"
	"github.com/cory-johannsen/gauntlet/internal/game/dice"
	"github.com/cory-johannsen/gauntlet/internal/game/event"
)

// AttackResult reports one resolved attack.
type AttackResult struct {
	// Ability is the ability used, or empty for a natural attack.
	Ability string
	Roll    int
	Hit     bool
	// Damage is the health actually removed from the target.
	Damage int
}

// TurnResult reports what an enemy did on its turn.
type TurnResult struct {
	Action Action
	Target *combat.Combatant
	Score  float64
	Moved  bool
	From   combat.Position
	To     combat.Position
	// Attack is nil when no attack was made.
	Attack *AttackResult
}

// Tactician runs enemy turns.
// It is not safe for concurrent use; an encounter runs one turn at a time.
type Tactician struct {
	resolver  *ability.Resolver
	validator MovementValidator
	roller    *dice.Roller
	sink      event.Sink
	logger    *zap.Logger
}

// NewTactician wires the AI to the ability resolver, the movement oracle,
// and a roller.
//
// Precondition: resolver, validator, and roller are non-nil.
func NewTactician(resolver *ability.Resolver, validator MovementValidator, roller *dice.Roller, sink event.Sink, logger *zap.Logger) *Tactician {
	if sink == nil {
		sink = event.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tactician{resolver: resolver, validator: validator, roller: roller, sink: sink, logger: logger}
}

// TakeTurn runs SelectTarget, DecideAction, and Act for actor.
//
// Postcondition: when no party member is alive the turn is a logged no-op
// with Action == ActionNone; it never fails.
func (t *Tactician) TakeTurn(encounter string, round int, actor *combat.Combatant, party []*combat.Combatant) TurnResult {
	ws := WorldState{Actor: actor, Party: party}
	target, score, ok := ws.SelectTarget()
	if !ok {
		t.logger.Info("enemy has no target",
			zap.String("encounter", encounter),
			zap.String("actor", actor.ID),
		)
		return TurnResult{Action: ActionNone, From: actor.Pos, To: actor.Pos}
	}

	res := TurnResult{
		Action: DecideAction(actor, target),
		Target: target,
		Score:  score,
		From:   actor.Pos,
		To:     actor.Pos,
	}
	switch res.Action {
	case ActionAttack:
		a := t.Attack(encounter, round, actor, target)
		res.Attack = &a
	case ActionApproach:
		if t.Step(encounter, round, actor, target) {
			res.Moved = true
		} else {
			a := t.Attack(encounter, round, actor, target)
			res.Attack = &a
		}
	case ActionAdvance:
		res.Moved = t.Step(encounter, round, actor, target)
	}
	res.To = actor.Pos

	t.logger.Debug("enemy turn",
		zap.String("encounter", encounter),
		zap.String("actor", actor.ID),
		zap.String("target", target.ID),
		zap.String("action", res.Action.String()),
		zap.Float64("score", score),
		zap.Bool("moved", res.Moved),
	)
	return res
}

// Step moves actor one cell toward target, trying StepCandidates in order
// and taking the first the validator accepts.
//
// Postcondition: returns false and leaves actor.Pos unchanged when every
// candidate is rejected.
func (t *Tactician) Step(encounter string, round int, actor, target *combat.Combatant) bool {
	for _, p := range StepCandidates(actor.Pos, target.Pos) {
		if !t.validator.CanMoveTo(EntityKindEnemy, p.X, p.Y) {
			continue
		}
		actor.Pos = p
		t.sink.Emit(event.Event{
			Type:      event.TypeEnemyMoved,
			Encounter: encounter,
			Round:     round,
			ActorID:   actor.ID,
			TargetID:  target.ID,
			X:         p.X,
			Y:         p.Y,
		})
		return true
	}
	return false
}

// Attack resolves one attack of actor on target.
//
// The first of actor's granted abilities with a damage effect that passes
// validation is invoked, spending its AP and starting its cooldown. The
// ability names the attack but does not change its damage; with no usable
// ability the actor makes a natural attack. A roll in [0, 100) below
// actor.Accuracy hits for a uniform roll in the weapon range less target
// defense, with a minimum of 1.
func (t *Tactician) Attack(encounter string, round int, actor, target *combat.Combatant) AttackResult {
	var res AttackResult
	if def := t.usableAttack(actor, target); def != nil {
		out := t.resolver.Invoke(ability.Request{
			Encounter: encounter,
			Round:     round,
			Actor:     actor,
			Key:       def.Key,
			Target:    &target.Pos,
			TargetID:  target.ID,
		})
		if out.Success {
			res.Ability = def.Key
		}
	}

	res.Roll = t.roller.Percentile("ai.hit")
	res.Hit = res.Roll < actor.Accuracy
	if res.Hit {
		raw := t.roller.Between("ai.damage", actor.Weapon.DamageMin, actor.Weapon.DamageMax)
		res.Damage = target.ApplyDamage(max(1, raw-target.Defense))
	}

	t.sink.Emit(event.Event{
		Type:      event.TypeAttackResolved,
		Encounter: encounter,
		Round:     round,
		ActorID:   actor.ID,
		TargetID:  target.ID,
		Key:       res.Ability,
		Amount:    res.Damage,
		Hit:       res.Hit,
	})
	return res
}

func (t *Tactician) usableAttack(actor, target *combat.Combatant) *ability.Definition {
	cat := t.resolver.Catalog()
	for _, key := range actor.Abilities {
		def, ok := cat.Get(key)
		if !ok || !def.HasEffect(ability.EffectDamage) {
			continue
		}
		if t.resolver.Validate(actor, key, &target.Pos) == ability.ReasonNone {
			return def
		}
	}
	return nil
}
