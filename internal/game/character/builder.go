package character

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/gauntlet/internal/game/combat"
	"github.com/cory-johannsen/gauntlet/internal/game/inventory"
	"github.com/cory-johannsen/gauntlet/internal/game/skill"
)

// Build constructs the combatant for c at full health and AP, equipping the
// weapon c names and advancing each declared skill to its starting level.
//
// Precondition: c has passed Validate; weapons must not be nil.
// Postcondition: Returns a party combatant, or a non-nil error when the
// weapon is unknown.
func Build(c *Character, weapons *inventory.Registry) (*combat.Combatant, error) {
	if weapons == nil {
		return nil, errors.New("weapons registry must not be nil")
	}
	def, ok := weapons.Weapon(c.Weapon)
	if !ok {
		return nil, fmt.Errorf("character %q: unknown weapon %q", c.ID, c.Weapon)
	}

	ledger := skill.NewLedger()
	for key, level := range c.Skills {
		ledger.Advance(key, level)
	}

	return &combat.Combatant{
		ID:             c.ID,
		Name:           c.Name,
		Faction:        combat.FactionParty,
		Pos:            combat.Position{X: c.Position.X, Y: c.Position.Y},
		Health:         c.Health,
		MaxHealth:      c.Health,
		AP:             c.AP,
		MaxAP:          c.AP,
		Skills:         ledger,
		Weapon:         def.Equip(),
		Defense:        c.Defense,
		Accuracy:       c.Accuracy,
		Evasion:        c.Evasion,
		BaseInitiative: c.Initiative,
		Level:          c.Level,
		Abilities:      append([]string(nil), c.Abilities...),
	}, nil
}

// BuildParty builds every character in roster order.
func BuildParty(roster []*Character, weapons *inventory.Registry) ([]*combat.Combatant, error) {
	party := make([]*combat.Combatant, 0, len(roster))
	for _, c := range roster {
		cbt, err := Build(c, weapons)
		if err != nil {
			return nil, err
		}
		party = append(party, cbt)
	}
	return party, nil
}

type rosterFile struct {
	Party []*Character `yaml:"party"`
}

// ParseRoster decodes and validates a party roster document.
//
// Postcondition: returns at least one character with unique IDs, or an error.
func ParseRoster(data []byte) ([]*Character, error) {
	var doc rosterFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing party YAML: %w", err)
	}
	if len(doc.Party) == 0 {
		return nil, errors.New("party must not be empty")
	}
	seen := make(map[string]bool, len(doc.Party))
	for _, c := range doc.Party {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("duplicate character id %q", c.ID)
		}
		seen[c.ID] = true
	}
	return doc.Party, nil
}

// LoadRoster reads the party roster file at path.
func LoadRoster(path string) ([]*Character, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadRoster: cannot read file %q: %w", path, err)
	}
	roster, err := ParseRoster(data)
	if err != nil {
		return nil, fmt.Errorf("LoadRoster: %q: %w", path, err)
	}
	return roster, nil
}
