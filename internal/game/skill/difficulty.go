package skill

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Difficulty grades how demanding a task is relative to a skill.
type Difficulty int

const (
	DifficultyTrivial Difficulty = iota
	DifficultyEasy
	DifficultyNormal
	DifficultyHard
	DifficultyExpert
	DifficultyLegendary
)

type difficultyRow struct {
	name        string
	targetLevel int
	multiplier  float64
}

var difficultyTable = [...]difficultyRow{
	DifficultyTrivial:   {"trivial", 1, 0.5},
	DifficultyEasy:      {"easy", 10, 0.75},
	DifficultyNormal:    {"normal", 25, 1.0},
	DifficultyHard:      {"hard", 50, 1.5},
	DifficultyExpert:    {"expert", 75, 2.0},
	DifficultyLegendary: {"legendary", 100, 3.0},
}

func (d Difficulty) row() difficultyRow {
	if d < DifficultyTrivial || int(d) >= len(difficultyTable) {
		return difficultyTable[DifficultyNormal]
	}
	return difficultyTable[d]
}

// TargetLevel is the skill level a task of this difficulty is pitched at.
func (d Difficulty) TargetLevel() int { return d.row().targetLevel }

// Multiplier scales the base XP of a use at this difficulty.
func (d Difficulty) Multiplier() float64 { return d.row().multiplier }

// String returns the lower-case difficulty name.
func (d Difficulty) String() string { return d.row().name }

// ParseDifficulty maps a name to a Difficulty. The empty string maps to normal.
func ParseDifficulty(name string) (Difficulty, error) {
	if name == "" {
		return DifficultyNormal, nil
	}
	for d, row := range difficultyTable {
		if row.name == name {
			return Difficulty(d), nil
		}
	}
	return DifficultyNormal, fmt.Errorf("skill: unknown difficulty %q", name)
}

// UnmarshalYAML decodes a difficulty from its name.
func (d *Difficulty) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	parsed, err := ParseDifficulty(name)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// diminishingFactor scales XP by how far the task's target level sits above
// (positive) or below (negative) the actor's current level.
func diminishingFactor(levelDifference int) float64 {
	switch {
	case levelDifference > 10:
		return 1.0
	case levelDifference > 5:
		return 0.8
	case levelDifference > 0:
		return 0.6
	case levelDifference > -10:
		return 0.3
	default:
		return 0.1
	}
}
