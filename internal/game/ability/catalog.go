package ability

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/gauntlet/internal/game/combat"
)

// Catalog is the immutable set of ability definitions, keyed by Key.
// It is safe for concurrent reads.
type Catalog struct {
	defs map[string]*Definition
	keys []string
}

// NewCatalog validates defs and indexes them by key.
//
// Postcondition: returns an error on an invalid definition, a duplicate key,
// an unknown prerequisite, or a prerequisite cycle.
func NewCatalog(defs []*Definition) (*Catalog, error) {
	c := &Catalog{defs: make(map[string]*Definition, len(defs))}
	for _, d := range defs {
		if d == nil {
			continue
		}
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, exists := c.defs[d.Key]; exists {
			return nil, fmt.Errorf("ability %q already registered", d.Key)
		}
		c.defs[d.Key] = d
		c.keys = append(c.keys, d.Key)
	}
	sort.Strings(c.keys)
	for _, key := range c.keys {
		for _, pre := range c.defs[key].Prerequisites {
			if _, ok := c.defs[pre]; !ok {
				return nil, fmt.Errorf("ability %q: unknown prerequisite %q", key, pre)
			}
		}
	}
	if err := c.checkCycles(); err != nil {
		return nil, err
	}
	return c, nil
}

// checkCycles runs a three-colour depth-first search over prerequisites.
func (c *Catalog) checkCycles() error {
	const (
		white = iota
		grey
		black
	)
	colour := make(map[string]int, len(c.defs))
	var visit func(key string) error
	visit = func(key string) error {
		switch colour[key] {
		case grey:
			return fmt.Errorf("ability %q: prerequisite cycle", key)
		case black:
			return nil
		}
		colour[key] = grey
		for _, pre := range c.defs[key].Prerequisites {
			if err := visit(pre); err != nil {
				return err
			}
		}
		colour[key] = black
		return nil
	}
	for _, key := range c.keys {
		if err := visit(key); err != nil {
			return err
		}
	}
	return nil
}

type catalogFile struct {
	Abilities []*Definition `yaml:"abilities"`
}

// ParseCatalog decodes an abilities document and builds a Catalog from it.
func ParseCatalog(data []byte) (*Catalog, error) {
	var doc catalogFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing abilities YAML: %w", err)
	}
	return NewCatalog(doc.Abilities)
}

// LoadCatalog reads the abilities file at path.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadCatalog: cannot read file %q: %w", path, err)
	}
	cat, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("LoadCatalog: %q: %w", path, err)
	}
	return cat, nil
}

// Get returns the definition for key.
func (c *Catalog) Get(key string) (*Definition, bool) {
	d, ok := c.defs[key]
	return d, ok
}

// Keys returns every ability key in sorted order.
func (c *Catalog) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Known reports whether cbt may use key: either the key is granted outright,
// or every skill minimum is met and every prerequisite is itself known.
func (c *Catalog) Known(cbt *combat.Combatant, key string) bool {
	d, ok := c.defs[key]
	if !ok {
		return false
	}
	if cbt.Grants(key) {
		return true
	}
	return c.meetsRequirements(cbt, d)
}

func (c *Catalog) meetsRequirements(cbt *combat.Combatant, d *Definition) bool {
	for _, r := range d.Skills {
		if !cbt.Skills.Has(r.Skill) || cbt.SkillLevel(r.Skill) < r.MinLevel {
			return false
		}
	}
	for _, pre := range d.Prerequisites {
		if !c.Known(cbt, pre) {
			return false
		}
	}
	return true
}

// KnownBy lists every ability cbt may use, in key order.
func (c *Catalog) KnownBy(cbt *combat.Combatant) []string {
	var out []string
	for _, key := range c.keys {
		if c.Known(cbt, key) {
			out = append(out, key)
		}
	}
	return out
}

// UnlockedBy lists the abilities that became known when skillKey rose from
// previousLevel to its current level.
func (c *Catalog) UnlockedBy(cbt *combat.Combatant, skillKey string, previousLevel int) []string {
	current := cbt.SkillLevel(skillKey)
	var out []string
	for _, key := range c.keys {
		d := c.defs[key]
		gated := false
		for _, r := range d.Skills {
			if r.Skill == skillKey && r.MinLevel > previousLevel && r.MinLevel <= current {
				gated = true
				break
			}
		}
		if gated && !cbt.Grants(key) && c.Known(cbt, key) {
			out = append(out, key)
		}
	}
	return out
}

// EffectiveSkillLevel is the skill level used for skill scaling. Hybrid
// abilities use floor(sum(level * multiplier)), counting an undeclared
// multiplier as 1; others use the first required skill. Abilities without
// skill requirements scale off the weapon's skill.
func EffectiveSkillLevel(d *Definition, cbt *combat.Combatant) int {
	if d.IsHybrid() {
		sum := 0.0
		for _, r := range d.Skills {
			sum += float64(cbt.SkillLevel(r.Skill)) * r.weight()
		}
		return int(math.Floor(sum))
	}
	if len(d.Skills) > 0 {
		return cbt.SkillLevel(d.Skills[0].Skill)
	}
	return cbt.SkillLevel(cbt.Weapon.Skill)
}

// Effectiveness is the sum of level/100 over the required skills, each weighted
// by its declared multiplier (1 when undeclared). It is not normalised and may
// exceed 1.
func Effectiveness(d *Definition, cbt *combat.Combatant) float64 {
	if len(d.Skills) == 0 {
		return float64(cbt.SkillLevel(cbt.Weapon.Skill)) / 100
	}
	if !d.IsHybrid() {
		return float64(cbt.SkillLevel(d.Skills[0].Skill)) / 100
	}
	total := 0.0
	for _, r := range d.Skills {
		total += float64(cbt.SkillLevel(r.Skill)) / 100 * r.weight()
	}
	return total
}
