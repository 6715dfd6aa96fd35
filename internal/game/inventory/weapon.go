// Package inventory provides weapon and loot item definitions loaded from YAML.
package inventory

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/gauntlet/internal/game/combat"
	"github.com/cory-johannsen/gauntlet/internal/game/dice"
)

// WeaponDef defines the static properties of a weapon loaded from YAML.
type WeaponDef struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	// DamageDice is a dice expression; its min/max bound the damage range.
	DamageDice string `yaml:"damage_dice"`
	// Accuracy is the hit-chance modifier in percentage points.
	Accuracy int `yaml:"accuracy"`
	// Skill is the skill key trained by using this weapon, e.g. "one_handed".
	Skill string `yaml:"skill"`

	expr dice.Expression
}

// Validate checks that the WeaponDef satisfies its invariants and caches the
// parsed damage expression.
//
// Postcondition: returns nil iff ID, Name, and Skill are non-empty and
// DamageDice parses with a minimum total of at least 1.
func (w *WeaponDef) Validate() error {
	var errs []error
	if w.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if w.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if w.Skill == "" {
		errs = append(errs, errors.New("skill must not be empty"))
	}
	expr, err := dice.Parse(w.DamageDice)
	if err != nil {
		errs = append(errs, err)
	} else if expr.Min() < 1 {
		errs = append(errs, fmt.Errorf("damage_dice %q can roll below 1", w.DamageDice))
	}
	if len(errs) > 0 {
		return fmt.Errorf("weapon %q validation failed: %w", w.ID, errors.Join(errs...))
	}
	w.expr = expr
	return nil
}

// DamageRange returns the inclusive damage bounds of the weapon.
//
// Precondition: Validate returned nil.
func (w *WeaponDef) DamageRange() (int, int) {
	return w.expr.Min(), w.expr.Max()
}

// Equip returns the combat-facing weapon value for this definition.
//
// Precondition: Validate returned nil.
func (w *WeaponDef) Equip() combat.Weapon {
	lo, hi := w.DamageRange()
	return combat.Weapon{
		Key:       w.ID,
		Name:      w.Name,
		DamageMin: lo,
		DamageMax: hi,
		Accuracy:  w.Accuracy,
		Skill:     w.Skill,
	}
}

// weaponFile is the on-disk shape of a weapons content file.
type weaponFile struct {
	Weapons []*WeaponDef `yaml:"weapons"`
}

// ParseWeapons decodes and validates a weapons document.
//
// Postcondition: returns every definition validated, or the first error.
func ParseWeapons(data []byte) ([]*WeaponDef, error) {
	var doc weaponFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing weapons YAML: %w", err)
	}
	for _, w := range doc.Weapons {
		if err := w.Validate(); err != nil {
			return nil, err
		}
	}
	return doc.Weapons, nil
}

// LoadWeapons reads and validates the weapons file at path.
func LoadWeapons(path string) ([]*WeaponDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadWeapons: cannot read file %q: %w", path, err)
	}
	weapons, err := ParseWeapons(data)
	if err != nil {
		return nil, fmt.Errorf("LoadWeapons: %q: %w", path, err)
	}
	return weapons, nil
}
