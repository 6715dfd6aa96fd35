package npc

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Difficulty names accepted by the dungeon context.
const (
	DifficultyEasy      = "easy"
	DifficultyNormal    = "normal"
	DifficultyHard      = "hard"
	DifficultyNightmare = "nightmare"
)

// TierOffset is the tier window relative to the floor number.
type TierOffset struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// DifficultyConfig adjusts enemy selection and stats for one difficulty.
type DifficultyConfig struct {
	Name           string     `yaml:"name"`
	TierOffset     TierOffset `yaml:"tier_offset"`
	StatMultiplier float64    `yaml:"stat_multiplier"`
	LootMultiplier float64    `yaml:"loot_multiplier"`
}

// Validate checks the config's invariants.
func (d DifficultyConfig) Validate() error {
	var errs []error
	if d.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if d.TierOffset.Min > d.TierOffset.Max {
		errs = append(errs, fmt.Errorf("tier_offset min %d > max %d", d.TierOffset.Min, d.TierOffset.Max))
	}
	if d.StatMultiplier <= 0 {
		errs = append(errs, fmt.Errorf("stat_multiplier must be > 0, got %g", d.StatMultiplier))
	}
	if d.LootMultiplier <= 0 {
		errs = append(errs, fmt.Errorf("loot_multiplier must be > 0, got %g", d.LootMultiplier))
	}
	if len(errs) > 0 {
		return fmt.Errorf("difficulty %q: %w", d.Name, errors.Join(errs...))
	}
	return nil
}

// Difficulties is the read-only difficulty lookup table.
type Difficulties struct {
	byName map[string]DifficultyConfig
}

// DefaultDifficulties returns the built-in table.
func DefaultDifficulties() *Difficulties {
	d, _ := NewDifficulties([]DifficultyConfig{
		{Name: DifficultyEasy, TierOffset: TierOffset{Min: -1, Max: 0}, StatMultiplier: 0.8, LootMultiplier: 1.2},
		{Name: DifficultyNormal, TierOffset: TierOffset{Min: 0, Max: 1}, StatMultiplier: 1.0, LootMultiplier: 1.0},
		{Name: DifficultyHard, TierOffset: TierOffset{Min: 0, Max: 2}, StatMultiplier: 1.25, LootMultiplier: 1.1},
		{Name: DifficultyNightmare, TierOffset: TierOffset{Min: 1, Max: 3}, StatMultiplier: 1.5, LootMultiplier: 1.25},
	})
	return d
}

// NewDifficulties validates and indexes configs by name.
func NewDifficulties(configs []DifficultyConfig) (*Difficulties, error) {
	d := &Difficulties{byName: make(map[string]DifficultyConfig, len(configs))}
	for _, c := range configs {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if _, exists := d.byName[c.Name]; exists {
			return nil, fmt.Errorf("difficulty %q already registered", c.Name)
		}
		d.byName[c.Name] = c
	}
	return d, nil
}

type difficultyFile struct {
	Difficulties []DifficultyConfig `yaml:"difficulties"`
}

// ParseDifficulties decodes a difficulties document.
func ParseDifficulties(data []byte) (*Difficulties, error) {
	var doc difficultyFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing difficulties YAML: %w", err)
	}
	return NewDifficulties(doc.Difficulties)
}

// LoadDifficulties reads the difficulties file at path.
func LoadDifficulties(path string) (*Difficulties, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadDifficulties: cannot read file %q: %w", path, err)
	}
	d, err := ParseDifficulties(data)
	if err != nil {
		return nil, fmt.Errorf("LoadDifficulties: %q: %w", path, err)
	}
	return d, nil
}

// Get returns the config for name.
func (d *Difficulties) Get(name string) (DifficultyConfig, bool) {
	c, ok := d.byName[name]
	return c, ok
}

// Names returns every difficulty name in sorted order.
func (d *Difficulties) Names() []string {
	out := make([]string, 0, len(d.byName))
	for n := range d.byName {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
