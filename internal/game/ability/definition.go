// Package ability holds the immutable ability catalog and the resolver that
// validates, consumes, and computes the effects of an ability invocation.
package ability

import (
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/gauntlet/internal/game/skill"
)

// Scaling selects how an effect's base value grows with the actor.
type Scaling int

const (
	ScalingNone Scaling = iota
	ScalingSkill
	ScalingWeapon
	ScalingWeaponAndSkill
)

var scalingNames = map[Scaling]string{
	ScalingNone:           "none",
	ScalingSkill:          "skill",
	ScalingWeapon:         "weapon",
	ScalingWeaponAndSkill: "weapon_and_skill",
}

// String returns the content name of the scaling mode.
func (s Scaling) String() string {
	if n, ok := scalingNames[s]; ok {
		return n
	}
	return fmt.Sprintf("scaling(%d)", int(s))
}

// ParseScaling maps a content name to a Scaling. The empty string is none.
func ParseScaling(name string) (Scaling, error) {
	if name == "" {
		return ScalingNone, nil
	}
	for s, n := range scalingNames {
		if n == name {
			return s, nil
		}
	}
	return ScalingNone, fmt.Errorf("unknown scaling %q", name)
}

// UnmarshalYAML decodes a scaling mode from its name.
func (s *Scaling) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	parsed, err := ParseScaling(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// EffectKind names what an effect does when the caller applies it.
type EffectKind int

const (
	// EffectDamage removes health from the target.
	EffectDamage EffectKind = iota + 1
	// EffectHeal restores health to the actor.
	EffectHeal
	// EffectConceal sets the actor's concealed flag.
	EffectConceal
	// EffectRestoreAP returns AP to the actor.
	EffectRestoreAP
)

var effectNames = map[EffectKind]string{
	EffectDamage:    "damage",
	EffectHeal:      "heal",
	EffectConceal:   "conceal",
	EffectRestoreAP: "restore_ap",
}

// String returns the content name of the effect kind.
func (k EffectKind) String() string {
	if n, ok := effectNames[k]; ok {
		return n
	}
	return fmt.Sprintf("effect(%d)", int(k))
}

// ParseEffectKind maps a content name to an EffectKind.
func ParseEffectKind(name string) (EffectKind, error) {
	for k, n := range effectNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown effect %q", name)
}

// EffectSpec is the YAML shape of one named effect.
type EffectSpec struct {
	Base    int     `yaml:"base"`
	Scaling Scaling `yaml:"scaling"`
}

// Effect is a validated effect of a Definition.
type Effect struct {
	Kind    EffectKind
	Base    int
	Scaling Scaling
}

// Requirement is one skill gate of an ability.
type Requirement struct {
	Skill    string `yaml:"skill"`
	MinLevel int    `yaml:"min_level"`
	// Multiplier weights this skill in hybrid effectiveness. Zero means undeclared.
	Multiplier float64 `yaml:"multiplier"`
}

func (r Requirement) weight() float64 {
	if r.Multiplier == 0 {
		return 1
	}
	return r.Multiplier
}

// Definition is the static description of an ability, loaded from YAML.
// A Definition is read-only once its Catalog is built.
type Definition struct {
	Key         string `yaml:"key"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	APCost      int    `yaml:"ap_cost"`
	// Range is the maximum Manhattan distance to a target; 0 means self.
	Range    int `yaml:"range"`
	Cooldown int `yaml:"cooldown"`
	// Skills must all be met at once.
	Skills        []Requirement `yaml:"skills"`
	Prerequisites []string      `yaml:"prerequisites"`
	// SuccessModifier adjusts the hit chance in percentage points.
	SuccessModifier     int                   `yaml:"success_modifier"`
	EffectSpecs         map[string]EffectSpec `yaml:"effects"`
	RequiresConcealment bool                  `yaml:"requires_concealment"`
	// DifficultyName grades XP awards for the required skills; empty is normal.
	DifficultyName string `yaml:"difficulty"`

	effects    []Effect
	difficulty skill.Difficulty
}

// Validate checks the definition's invariants and builds its effect list.
//
// Postcondition: returns nil iff Key is set, costs and levels are non-negative,
// every effect name and the difficulty parse, and at least one effect exists.
func (d *Definition) Validate() error {
	var errs []error
	if d.Key == "" {
		errs = append(errs, errors.New("key must not be empty"))
	}
	if d.APCost < 0 {
		errs = append(errs, fmt.Errorf("ap_cost must be >= 0, got %d", d.APCost))
	}
	if d.Range < 0 {
		errs = append(errs, fmt.Errorf("range must be >= 0, got %d", d.Range))
	}
	if d.Cooldown < 0 {
		errs = append(errs, fmt.Errorf("cooldown must be >= 0, got %d", d.Cooldown))
	}
	for _, r := range d.Skills {
		if r.Skill == "" {
			errs = append(errs, errors.New("skill requirement without a skill key"))
		}
		if r.MinLevel < 0 || r.MinLevel > skill.MaxLevel {
			errs = append(errs, fmt.Errorf("skill %q min_level %d out of range", r.Skill, r.MinLevel))
		}
		if r.Multiplier < 0 {
			errs = append(errs, fmt.Errorf("skill %q multiplier must be >= 0", r.Skill))
		}
	}
	if len(d.EffectSpecs) == 0 {
		errs = append(errs, errors.New("at least one effect is required"))
	}
	effects := make([]Effect, 0, len(d.EffectSpecs))
	for name, spec := range d.EffectSpecs {
		kind, err := ParseEffectKind(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		effects = append(effects, Effect{Kind: kind, Base: spec.Base, Scaling: spec.Scaling})
	}
	sort.Slice(effects, func(i, j int) bool { return effects[i].Kind < effects[j].Kind })
	difficulty, err := skill.ParseDifficulty(d.DifficultyName)
	if err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("ability %q validation failed: %w", d.Key, errors.Join(errs...))
	}
	d.effects = effects
	d.difficulty = difficulty
	return nil
}

// Effects returns a copy of the validated effects ordered by kind.
func (d *Definition) Effects() []Effect {
	out := make([]Effect, len(d.effects))
	copy(out, d.effects)
	return out
}

// Difficulty returns the XP difficulty of using this ability.
func (d *Definition) Difficulty() skill.Difficulty { return d.difficulty }

// HasEffect reports whether the ability declares kind.
func (d *Definition) HasEffect(kind EffectKind) bool {
	for _, e := range d.effects {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

// IsHybrid reports whether the ability declares per-skill multipliers.
func (d *Definition) IsHybrid() bool {
	for _, r := range d.Skills {
		if r.Multiplier > 0 {
			return true
		}
	}
	return false
}
