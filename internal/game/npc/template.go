// Package npc provides tiered enemy templates, difficulty configuration,
// difficulty-adjusted instances, and loot generation.
package npc

import (
	"errors"
	"fmt"
)

// Stats is the base stat block of an enemy template.
type Stats struct {
	Health     int `yaml:"health"`
	DamageMin  int `yaml:"damage_min"`
	DamageMax  int `yaml:"damage_max"`
	Defense    int `yaml:"defense"`
	Accuracy   int `yaml:"accuracy"`
	Evasion    int `yaml:"evasion"`
	Initiative int `yaml:"initiative"`
	AP         int `yaml:"ap"`
}

// Template defines one enemy at one tier, loaded from YAML. The same Key may
// appear at several tiers.
type Template struct {
	Key         string   `yaml:"key"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Tier        int      `yaml:"tier"`
	Stats       Stats    `yaml:"stats"`
	Abilities   []string `yaml:"abilities"`
	// Loot names an entry of the catalog's loot tables; empty means no loot.
	Loot string `yaml:"loot"`
	XP   int    `yaml:"xp"`
	Boss bool   `yaml:"boss"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff Key and Name are non-empty, Tier >= 1,
// Health >= 1, 1 <= DamageMin <= DamageMax, AP >= 1, and Accuracy is in
// [0, 100]; otherwise every violation is joined into the error.
func (t *Template) Validate() error {
	var errs []error
	if t.Key == "" {
		errs = append(errs, errors.New("key must not be empty"))
	}
	if t.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if t.Tier < 1 {
		errs = append(errs, fmt.Errorf("tier must be >= 1, got %d", t.Tier))
	}
	s := t.Stats
	if s.Health < 1 {
		errs = append(errs, fmt.Errorf("health must be >= 1, got %d", s.Health))
	}
	if s.DamageMin < 1 || s.DamageMin > s.DamageMax {
		errs = append(errs, fmt.Errorf("damage range [%d, %d] invalid", s.DamageMin, s.DamageMax))
	}
	if s.Accuracy < 0 || s.Accuracy > 100 {
		errs = append(errs, fmt.Errorf("accuracy must be in [0, 100], got %d", s.Accuracy))
	}
	if s.AP < 1 {
		errs = append(errs, fmt.Errorf("ap must be >= 1, got %d", s.AP))
	}
	if t.XP < 0 {
		errs = append(errs, fmt.Errorf("xp must be >= 0, got %d", t.XP))
	}
	if len(errs) > 0 {
		return fmt.Errorf("npc template %q tier %d: %w", t.Key, t.Tier, errors.Join(errs...))
	}
	return nil
}
