package npc

import (
	"github.com/cory-johannsen/gauntlet/internal/game/combat"
	"github.com/cory-johannsen/gauntlet/internal/game/dice"
	"github.com/cory-johannsen/gauntlet/internal/game/skill"
)

// Instance is a runtime enemy stamped from a Template with
// difficulty-adjusted stats. It is owned by one encounter.
type Instance struct {
	// ID uniquely identifies this runtime instance.
	ID string
	// TemplateKey is the source template's key.
	TemplateKey string
	Name        string
	Tier        int
	// Floor is the dungeon floor the instance was generated for.
	Floor      int
	Difficulty string
	Boss       bool

	Health     int
	MaxHealth  int
	DamageMin  int
	DamageMax  int
	Defense    int
	Accuracy   int
	Evasion    int
	Initiative int
	AP         int

	// Abilities is owned by this instance alone.
	Abilities []string
	// Loot is a private copy of the template's table; nil means no loot.
	Loot *LootTable
	// ItemChance scales every item drop chance of Loot.
	ItemChance float64
	XP         int
}

// IsAlive reports whether the instance has health left.
func (i *Instance) IsAlive() bool { return i.Health > 0 }

// Copy returns an independent copy of i under a new id.
//
// Postcondition: the copy shares no slice or table storage with i.
func (i *Instance) Copy(id string) *Instance {
	cp := *i
	cp.ID = id
	cp.Abilities = append([]string(nil), i.Abilities...)
	cp.Loot = i.Loot.clone()
	return &cp
}

// NaturalWeapon is the weapon value carried by the instance's combatant.
func (i *Instance) NaturalWeapon() combat.Weapon {
	return combat.Weapon{Key: "natural", Name: "natural attack", DamageMin: i.DamageMin, DamageMax: i.DamageMax}
}

// Combatant builds the combat-facing view of i at pos. The combatant's
// abilities are granted outright and its skill ledger is empty.
func (i *Instance) Combatant(pos combat.Position) *combat.Combatant {
	return &combat.Combatant{
		ID:             i.ID,
		Name:           i.Name,
		Faction:        combat.FactionEnemy,
		Pos:            pos,
		Health:         i.Health,
		MaxHealth:      i.MaxHealth,
		AP:             i.AP,
		MaxAP:          i.AP,
		Skills:         skill.NewLedger(),
		Weapon:         i.NaturalWeapon(),
		Defense:        i.Defense,
		Accuracy:       i.Accuracy,
		Evasion:        i.Evasion,
		BaseInitiative: i.Initiative,
		Level:          i.Floor,
		Tier:           i.Tier,
		Abilities:      append([]string(nil), i.Abilities...),
	}
}

// RollLoot rolls the instance's loot table. Instances without loot drop nothing.
func (i *Instance) RollLoot(src dice.Source) LootResult {
	if i.Loot == nil {
		return LootResult{}
	}
	return GenerateLoot(*i.Loot, i.ItemChance, src)
}
