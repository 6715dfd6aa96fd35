package ability

import (
	"errors"

	"go.uber.org/zap"

	"github.com/cory-johannsen/gauntlet/internal/game/combat"
	"github.com/cory-johannsen/gauntlet/internal/game/event"
	"github.com/cory-johannsen/gauntlet/internal/game/skill"
)

// Reason is why an invocation failed validation.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonAbilityUnknown
	ReasonInsufficientAP
	ReasonOnCooldown
	ReasonOutOfRange
	ReasonRequirementUnmet
)

// String returns the reason code.
func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonAbilityUnknown:
		return "ability_unknown"
	case ReasonInsufficientAP:
		return "insufficient_ap"
	case ReasonOnCooldown:
		return "on_cooldown"
	case ReasonOutOfRange:
		return "out_of_range"
	case ReasonRequirementUnmet:
		return "requirement_unmet"
	default:
		return "unknown"
	}
}

// Sentinel errors for each validation Reason.
var (
	ErrAbilityUnknown   = errors.New("ability: not known")
	ErrInsufficientAP   = errors.New("ability: insufficient AP")
	ErrOnCooldown       = errors.New("ability: on cooldown")
	ErrOutOfRange       = errors.New("ability: target out of range")
	ErrRequirementUnmet = errors.New("ability: requirement unmet")
)

// Err maps r to its sentinel error, or nil for ReasonNone.
func (r Reason) Err() error {
	switch r {
	case ReasonNone:
		return nil
	case ReasonAbilityUnknown:
		return ErrAbilityUnknown
	case ReasonInsufficientAP:
		return ErrInsufficientAP
	case ReasonOnCooldown:
		return ErrOnCooldown
	case ReasonOutOfRange:
		return ErrOutOfRange
	default:
		return ErrRequirementUnmet
	}
}

// Request is one ability invocation.
type Request struct {
	Encounter string
	Round     int
	Actor     *combat.Combatant
	Key       string
	// Target is the targeted cell, or nil for an untargeted use.
	Target *combat.Position
	// TargetID is reported on emitted events only.
	TargetID string
}

// Outcome is the result of Invoke.
type Outcome struct {
	Key     string
	Success bool
	Reason  Reason
	APSpent int
	// Effects maps each declared effect to its resolved value.
	Effects       map[EffectKind]int
	Effectiveness float64
	Awards        []skill.AwardResult
	// Unlocked lists abilities that became known through a level-up.
	Unlocked []string
}

// Err returns the sentinel error of a failed outcome, or nil.
func (o Outcome) Err() error { return o.Reason.Err() }

// Effect returns the resolved value of kind and whether it was declared.
func (o Outcome) Effect(kind EffectKind) (int, bool) {
	v, ok := o.Effects[kind]
	return v, ok
}

// Resolver runs invocations through Validate, Consume, Resolve, and Emit.
// It is not safe for concurrent use on the same combatant.
type Resolver struct {
	catalog *Catalog
	sink    event.Sink
	logger  *zap.Logger
	baseXP  int
}

// NewResolver returns a Resolver over catalog.
//
// Precondition: catalog non-nil.
func NewResolver(catalog *Catalog, sink event.Sink, logger *zap.Logger, baseXP int) *Resolver {
	if sink == nil {
		sink = event.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if baseXP <= 0 {
		baseXP = skill.DefaultBaseXP
	}
	return &Resolver{catalog: catalog, sink: sink, logger: logger, baseXP: baseXP}
}

// Catalog returns the catalog the resolver reads.
func (r *Resolver) Catalog() *Catalog { return r.catalog }

// Validate returns the first failing Reason for actor using key, or
// ReasonNone. It never mutates actor.
func (r *Resolver) Validate(actor *combat.Combatant, key string, target *combat.Position) Reason {
	d, ok := r.catalog.Get(key)
	if !ok || !r.catalog.Known(actor, key) {
		return ReasonAbilityUnknown
	}
	if actor.AP < d.APCost {
		return ReasonInsufficientAP
	}
	if actor.Cooldown(key) > 0 {
		return ReasonOnCooldown
	}
	if target != nil && actor.Pos.Distance(*target) > d.Range {
		return ReasonOutOfRange
	}
	if d.RequiresConcealment && !actor.Concealed {
		return ReasonRequirementUnmet
	}
	return ReasonNone
}

// Invoke validates the request and, on success, spends AP, starts the
// cooldown, resolves effect values, and awards XP to every required skill.
// Effects are returned for the caller to apply.
//
// Postcondition: when Success is false the actor is unchanged.
func (r *Resolver) Invoke(req Request) Outcome {
	actor := req.Actor
	if reason := r.Validate(actor, req.Key, req.Target); reason != ReasonNone {
		r.sink.Emit(event.Event{
			Type:      event.TypeAbilityFailed,
			Encounter: req.Encounter,
			Round:     req.Round,
			ActorID:   actor.ID,
			TargetID:  req.TargetID,
			Key:       req.Key,
			Reason:    reason.String(),
		})
		return Outcome{Key: req.Key, Reason: reason}
	}
	d, _ := r.catalog.Get(req.Key)

	actor.SpendAP(d.APCost)
	actor.StartCooldown(d.Key, d.Cooldown)

	out := Outcome{
		Key:           d.Key,
		Success:       true,
		APSpent:       d.APCost,
		Effects:       Resolve(d, actor),
		Effectiveness: Effectiveness(d, actor),
	}
	r.sink.Emit(event.Event{
		Type:      event.TypeAbilityUsed,
		Encounter: req.Encounter,
		Round:     req.Round,
		ActorID:   actor.ID,
		TargetID:  req.TargetID,
		Key:       d.Key,
		Amount:    out.Effects[EffectDamage],
	})

	for _, key := range r.trainedSkills(d, actor) {
		award := actor.Skills.AwardUse(key, d.Difficulty(), r.baseXP)
		if !award.Success {
			r.logger.Warn("combatant lacks trained skill",
				zap.String("combatant", actor.ID),
				zap.String("ability", d.Key),
				zap.String("skill", key),
			)
			continue
		}
		out.Awards = append(out.Awards, award)
		r.sink.Emit(event.Event{
			Type:      event.TypeSkillGained,
			Encounter: req.Encounter,
			Round:     req.Round,
			ActorID:   actor.ID,
			Key:       key,
			Amount:    award.XPGained,
		})
		if !award.LeveledUp {
			continue
		}
		for _, unlocked := range r.catalog.UnlockedBy(actor, key, award.PreviousLevel) {
			out.Unlocked = append(out.Unlocked, unlocked)
			r.sink.Emit(event.Event{
				Type:      event.TypeAbilityUnlocked,
				Encounter: req.Encounter,
				Round:     req.Round,
				ActorID:   actor.ID,
				Key:       unlocked,
				Amount:    award.NewLevel,
			})
		}
	}
	return out
}

// trainedSkills returns the skills a use of d trains: its requirements, or
// the weapon's skill when d has none and scales off the weapon.
func (r *Resolver) trainedSkills(d *Definition, actor *combat.Combatant) []string {
	if len(d.Skills) > 0 {
		keys := make([]string, len(d.Skills))
		for i, s := range d.Skills {
			keys[i] = s.Skill
		}
		return keys
	}
	for _, e := range d.effects {
		if (e.Scaling == ScalingWeapon || e.Scaling == ScalingWeaponAndSkill) && actor.Weapon.Skill != "" {
			return []string{actor.Weapon.Skill}
		}
	}
	return nil
}

// Resolve computes every effect value of d for actor. It has no side effects.
//
//   - skill: base + floor(level / 10)
//   - weapon: base + floor((min + max) / 2)
//   - weapon_and_skill: base + weapon average + floor(level / 5)
//   - none: base
func Resolve(d *Definition, actor *combat.Combatant) map[EffectKind]int {
	level := EffectiveSkillLevel(d, actor)
	out := make(map[EffectKind]int, len(d.effects))
	for _, e := range d.effects {
		v := e.Base
		switch e.Scaling {
		case ScalingNone:
		case ScalingSkill:
			v += level / 10
		case ScalingWeapon:
			v += actor.Weapon.Average()
		case ScalingWeaponAndSkill:
			v += actor.Weapon.Average() + level/5
		}
		out[e.Kind] = v
	}
	return out
}

// HitChance is the percentage chance that actor's use of d lands on target,
// clamped to [5, 95].
func HitChance(d *Definition, actor, target *combat.Combatant) int {
	chance := actor.Accuracy + actor.Weapon.Accuracy + d.SuccessModifier - target.Evasion
	if chance < 5 {
		return 5
	}
	if chance > 95 {
		return 95
	}
	return chance
}
