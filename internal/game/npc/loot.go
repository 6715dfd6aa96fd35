package npc

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/cory-johannsen/gauntlet/internal/game/dice"
)

// CurrencyDrop defines the range of currency an enemy can drop on death.
type CurrencyDrop struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// ItemDrop defines a single item entry in a loot table with a drop chance.
type ItemDrop struct {
	ItemID string  `yaml:"item"`
	Chance float64 `yaml:"chance"`
	MinQty int     `yaml:"min_qty"`
	MaxQty int     `yaml:"max_qty"`
}

// LootTable defines the possible loot drops for an enemy template.
type LootTable struct {
	Currency *CurrencyDrop `yaml:"currency"`
	Items    []ItemDrop    `yaml:"items"`
}

// Validate checks that the loot table satisfies its invariants.
//
// Precondition: lt must not be nil.
// Postcondition: Returns nil iff all currency and item constraints hold;
// an empty loot table (no currency, no items) is valid.
func (lt *LootTable) Validate() error {
	if lt.Currency != nil {
		if lt.Currency.Min < 0 {
			return fmt.Errorf("loot table: currency min must be >= 0, got %d", lt.Currency.Min)
		}
		if lt.Currency.Min > lt.Currency.Max {
			return fmt.Errorf("loot table: currency min (%d) must be <= max (%d)", lt.Currency.Min, lt.Currency.Max)
		}
	}
	for i, item := range lt.Items {
		if item.ItemID == "" {
			return fmt.Errorf("loot table: item[%d] must have a non-empty item id", i)
		}
		if item.Chance <= 0 || item.Chance > 1.0 {
			return fmt.Errorf("loot table: item[%d] chance must be in (0, 1.0], got %f", i, item.Chance)
		}
		if item.MinQty < 1 {
			return fmt.Errorf("loot table: item[%d] min_qty must be >= 1, got %d", i, item.MinQty)
		}
		if item.MinQty > item.MaxQty {
			return fmt.Errorf("loot table: item[%d] min_qty (%d) must be <= max_qty (%d)", i, item.MinQty, item.MaxQty)
		}
	}
	return nil
}

// clone returns a deep copy so instances never share table storage.
func (lt *LootTable) clone() *LootTable {
	if lt == nil {
		return nil
	}
	out := &LootTable{Items: append([]ItemDrop(nil), lt.Items...)}
	if lt.Currency != nil {
		c := *lt.Currency
		out.Currency = &c
	}
	return out
}

// LootItem represents a single item instance in a loot result.
type LootItem struct {
	ItemDefID  string
	InstanceID string
	Quantity   int
}

// LootResult holds the generated loot from one or more kills.
type LootResult struct {
	Currency int
	Items    []LootItem
}

// Merge appends other into r.
func (r *LootResult) Merge(other LootResult) {
	r.Currency += other.Currency
	r.Items = append(r.Items, other.Items...)
}

// GenerateLoot rolls loot from lt. Each item's drop chance is scaled by
// itemChance and capped at 1.
//
// Precondition: lt must have passed Validate(); src non-nil.
// Postcondition: Currency is in [Currency.Min, Currency.Max] if currency is set;
// each item's Quantity is in [MinQty, MaxQty] for items that pass the chance roll.
func GenerateLoot(lt LootTable, itemChance float64, src dice.Source) LootResult {
	var result LootResult

	if lt.Currency != nil && lt.Currency.Max > 0 {
		result.Currency = dice.Between(src, lt.Currency.Min, lt.Currency.Max)
	}

	for _, item := range lt.Items {
		chance := item.Chance * itemChance
		if chance > 1 {
			chance = 1
		}
		if dice.Uniform(src, 0, 1) < chance {
			result.Items = append(result.Items, LootItem{
				ItemDefID:  item.ItemID,
				InstanceID: uuid.New().String(),
				Quantity:   dice.Between(src, item.MinQty, item.MaxQty),
			})
		}
	}

	return result
}
