// Package character defines party members and builds their combatants.
package character

import (
	"errors"
	"fmt"
)

// Position is a starting cell on the arena.
type Position struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Character is one party member as declared in the roster file.
type Character struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	Level      int    `yaml:"level"`
	Health     int    `yaml:"health"`
	AP         int    `yaml:"ap"`
	Defense    int    `yaml:"defense"`
	Accuracy   int    `yaml:"accuracy"`
	Evasion    int    `yaml:"evasion"`
	Initiative int    `yaml:"initiative"`
	// Weapon is a weapon ID from the weapons registry.
	Weapon   string   `yaml:"weapon"`
	Position Position `yaml:"position"`
	// Skills maps skill keys to starting levels.
	Skills map[string]int `yaml:"skills"`
	// Abilities are granted outright regardless of skill requirements.
	Abilities []string `yaml:"abilities"`
}

// Validate checks the character's stat block.
//
// Precondition: c must not be nil.
// Postcondition: Returns nil iff ID, Name, and Weapon are non-empty, Level,
// Health, and AP are >= 1, and Accuracy is in [0, 100]; otherwise every
// violation is joined into the error.
func (c *Character) Validate() error {
	var errs []error
	if c.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if c.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if c.Weapon == "" {
		errs = append(errs, errors.New("weapon must not be empty"))
	}
	if c.Level < 1 {
		errs = append(errs, fmt.Errorf("level must be >= 1, got %d", c.Level))
	}
	if c.Health < 1 {
		errs = append(errs, fmt.Errorf("health must be >= 1, got %d", c.Health))
	}
	if c.AP < 1 {
		errs = append(errs, fmt.Errorf("ap must be >= 1, got %d", c.AP))
	}
	if c.Accuracy < 0 || c.Accuracy > 100 {
		errs = append(errs, fmt.Errorf("accuracy must be in [0, 100], got %d", c.Accuracy))
	}
	for key, level := range c.Skills {
		if level < 0 {
			errs = append(errs, fmt.Errorf("skill %q level must be >= 0, got %d", key, level))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("character %q: %w", c.ID, err)
	}
	return nil
}
