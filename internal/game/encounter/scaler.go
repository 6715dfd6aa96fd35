package encounter

import (
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/gauntlet/internal/game/combat"
	"github.com/cory-johannsen/gauntlet/internal/game/dice"
	"github.com/cory-johannsen/gauntlet/internal/game/npc"
)

// Variance bounds and accuracy limits applied to generated group members.
const (
	MinVariance    = 0.10
	MaxVariance    = 0.30
	AccuracyJitter = 5
	MinAccuracy    = 20
	MaxAccuracy    = 95
)

// Scaler converts one triggering enemy into a group.
type Scaler struct {
	src    dice.Source
	logger *zap.Logger
}

// NewScaler returns a Scaler drawing randomness from src.
//
// Precondition: src non-nil.
func NewScaler(src dice.Source, logger *zap.Logger) *Scaler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scaler{src: src, logger: logger}
}

// Classify returns the archetype of inst by name, falling back to its
// template key.
func Classify(inst *npc.Instance) Archetype {
	if a := BaseType(inst.Name); a != ArchetypeDefault {
		return a
	}
	return BaseType(inst.TemplateKey)
}

// Scale returns trigger followed by CountForArchetype-1 varied copies.
//
// The first element is trigger itself, stats untouched. Each further copy gets
// a fresh id and its own variance v in [0.10, 0.30]: health and each damage
// bound are multiplied by an independent factor in [1-v/2, 1+v/2] and
// floored, damage minimum is clamped to >= 1, and accuracy moves by up to
// +/-5 and is clamped to [20, 95].
//
// Postcondition: len(result) == CountForArchetype(Classify(trigger), floor),
// or 0 when trigger is nil.
func (s *Scaler) Scale(trigger *npc.Instance, floor int) []*npc.Instance {
	if trigger == nil {
		return nil
	}
	archetype := Classify(trigger)
	count := CountForArchetype(archetype, floor)

	group := make([]*npc.Instance, 0, count)
	group = append(group, trigger)
	for len(group) < count {
		group = append(group, s.vary(trigger))
	}

	s.logger.Debug("scaled encounter",
		zap.String("trigger", trigger.ID),
		zap.String("archetype", string(archetype)),
		zap.Int("floor", floor),
		zap.Int("count", count),
	)
	return group
}

func (s *Scaler) vary(base *npc.Instance) *npc.Instance {
	inst := base.Copy(uuid.New().String())
	v := dice.Uniform(s.src, MinVariance, MaxVariance)
	factor := func() float64 { return 1 + dice.Uniform(s.src, -v/2, v/2) }

	inst.MaxHealth = max(1, int(math.Floor(float64(base.MaxHealth)*factor())))
	inst.Health = inst.MaxHealth
	inst.DamageMin = max(1, int(math.Floor(float64(base.DamageMin)*factor())))
	inst.DamageMax = max(inst.DamageMin, int(math.Floor(float64(base.DamageMax)*factor())))
	jitter := dice.Between(s.src, -AccuracyJitter, AccuracyJitter)
	inst.Accuracy = clamp(base.Accuracy+jitter, MinAccuracy, MaxAccuracy)
	return inst
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

// Adjustment is the corrective action Balance applied.
type Adjustment int

const (
	AdjustNone Adjustment = iota
	AdjustBuff
	AdjustNerf
)

// String returns "none", "buff", or "nerf".
func (a Adjustment) String() string {
	switch a {
	case AdjustBuff:
		return "buff"
	case AdjustNerf:
		return "nerf"
	default:
		return "none"
	}
}

// Balance thresholds and factors.
const (
	BuffRatio  = 1.5
	NerfRatio  = 0.7
	BuffFactor = 1.1
	NerfFactor = 0.9
)

// BalanceResult reports what Balance measured and did.
type BalanceResult struct {
	Difficulty float64
	Ratio      float64
	Adjustment Adjustment
}

// Difficulty scores a group: sum of (health + 2*maxDamage) * levelModifier *
// tierModifier, where levelModifier = 1 + 0.1*(level-1) and tierModifier =
// 1 + 0.2*(tier-1). An instance's level is its floor.
func Difficulty(enemies []*npc.Instance) float64 {
	total := 0.0
	for _, e := range enemies {
		levelMod := 1 + 0.1*float64(e.Floor-1)
		tierMod := 1 + 0.2*float64(e.Tier-1)
		total += float64(e.Health+2*e.DamageMax) * levelMod * tierMod
	}
	return total
}

// PartyStrength scores the party: sum of health + 2*weapon maximum damage over
// live members.
func PartyStrength(party []*combat.Combatant) int {
	total := 0
	for _, c := range party {
		if c.IsAlive() {
			total += c.Health + 2*c.Weapon.DamageMax
		}
	}
	return total
}

// Balance makes one corrective pass over enemies. A party more than 1.5 times
// the group's difficulty buffs health and damage by 1.1; a party below 0.7
// times nerfs them by 0.9 with damage floored at 1. It never iterates.
func Balance(enemies []*npc.Instance, partyStrength int) BalanceResult {
	res := BalanceResult{Difficulty: Difficulty(enemies)}
	if res.Difficulty <= 0 {
		return res
	}
	res.Ratio = float64(partyStrength) / res.Difficulty
	switch {
	case res.Ratio > BuffRatio:
		res.Adjustment = AdjustBuff
		scaleGroup(enemies, BuffFactor)
	case res.Ratio < NerfRatio:
		res.Adjustment = AdjustNerf
		scaleGroup(enemies, NerfFactor)
	}
	return res
}

func scaleGroup(enemies []*npc.Instance, factor float64) {
	scale := func(v int) int { return int(math.Floor(float64(v) * factor)) }
	for _, e := range enemies {
		e.MaxHealth = max(1, scale(e.MaxHealth))
		e.Health = min(e.MaxHealth, max(1, scale(e.Health)))
		e.DamageMin = max(1, scale(e.DamageMin))
		e.DamageMax = max(e.DamageMin, scale(e.DamageMax))
	}
}
