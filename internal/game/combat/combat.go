// Package combat implements the combatant model and the turn-based combat
// lifecycle: initiative ordering, turn and round advancement, and the
// victory/defeat check.
package combat

import "github.com/cory-johannsen/gauntlet/internal/game/skill"

// Faction distinguishes party combatants from enemy combatants.
type Faction int

const (
	FactionParty Faction = iota
	FactionEnemy
)

// String returns "party" or "enemy".
func (f Faction) String() string {
	switch f {
	case FactionParty:
		return "party"
	case FactionEnemy:
		return "enemy"
	default:
		return "unknown"
	}
}

// Position is a grid cell.
type Position struct {
	X, Y int
}

// Distance returns the Manhattan distance between p and o.
func (p Position) Distance(o Position) int {
	return abs(p.X-o.X) + abs(p.Y-o.Y)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Weapon is the equipped weapon of a combatant. Enemies carry their natural
// attack here.
type Weapon struct {
	Key       string
	Name      string
	DamageMin int
	DamageMax int
	// Accuracy is the hit-chance modifier in percentage points.
	Accuracy int
	// Skill is the skill key the weapon trains.
	Skill string
}

// Average returns floor((DamageMin + DamageMax) / 2).
func (w Weapon) Average() int {
	return (w.DamageMin + w.DamageMax) / 2
}

// Combatant represents one participant in an encounter, party member or enemy.
//
// Invariant: 0 <= Health <= MaxHealth and 0 <= AP <= MaxAP after every method.
type Combatant struct {
	ID      string
	Name    string
	Faction Faction
	Pos     Position

	Health    int
	MaxHealth int
	AP        int
	MaxAP     int

	Skills *skill.Ledger
	Weapon Weapon

	Defense  int
	Accuracy int
	Evasion  int
	// BaseInitiative is the initiative before the random tiebreak.
	BaseInitiative int
	Level          int
	Tier           int

	// Abilities are keys granted outright, independent of skill requirements.
	Abilities []string
	// Cooldowns maps ability key to the owner's turn starts left until the
	// ability is usable again. Entries never hold 0.
	Cooldowns map[string]int
	Concealed bool
}

// IsPlayer reports whether this combatant belongs to the party.
func (c *Combatant) IsPlayer() bool { return c.Faction == FactionParty }

// IsAlive reports whether Health > 0.
func (c *Combatant) IsAlive() bool { return c.Health > 0 }

// ApplyDamage reduces Health by amount, flooring at zero, and returns the
// health actually removed.
//
// Precondition: amount >= 0.
// Postcondition: Health >= 0.
func (c *Combatant) ApplyDamage(amount int) int {
	if amount <= 0 {
		return 0
	}
	if amount > c.Health {
		amount = c.Health
	}
	c.Health -= amount
	return amount
}

// Heal raises Health by amount, capped at MaxHealth, and returns the health
// actually restored. The dead are not healed.
func (c *Combatant) Heal(amount int) int {
	if amount <= 0 || !c.IsAlive() {
		return 0
	}
	if c.Health+amount > c.MaxHealth {
		amount = c.MaxHealth - c.Health
	}
	c.Health += amount
	return amount
}

// SpendAP deducts cost if affordable.
//
// Postcondition: returns false and leaves AP unchanged when cost > AP.
func (c *Combatant) SpendAP(cost int) bool {
	if cost < 0 || cost > c.AP {
		return false
	}
	c.AP -= cost
	return true
}

// RestoreAP adds amount AP, capped at MaxAP, and returns the AP gained.
func (c *Combatant) RestoreAP(amount int) int {
	if amount <= 0 {
		return 0
	}
	if c.AP+amount > c.MaxAP {
		amount = c.MaxAP - c.AP
	}
	c.AP += amount
	return amount
}

// RefreshAP sets AP to MaxAP. Called at the start of the owner's turn.
func (c *Combatant) RefreshAP() { c.AP = c.MaxAP }

// Cooldown returns the turns remaining before key can be used again.
func (c *Combatant) Cooldown(key string) int { return c.Cooldowns[key] }

// SetCooldown records turns of cooldown for key. Non-positive values clear it.
func (c *Combatant) SetCooldown(key string, turns int) {
	if turns <= 0 {
		delete(c.Cooldowns, key)
		return
	}
	if c.Cooldowns == nil {
		c.Cooldowns = make(map[string]int)
	}
	c.Cooldowns[key] = turns
}

// StartCooldown puts key on a cooldown of length turns: the owner's next
// length turn starts still find it cooling and the one after clears it.
// Non-positive lengths clear it.
func (c *Combatant) StartCooldown(key string, length int) {
	if length <= 0 {
		c.SetCooldown(key, 0)
		return
	}
	c.SetCooldown(key, length+1)
}

// TickCooldowns decrements every cooldown by one, removing entries that reach zero.
func (c *Combatant) TickCooldowns() {
	for k, v := range c.Cooldowns {
		if v <= 1 {
			delete(c.Cooldowns, k)
			continue
		}
		c.Cooldowns[k] = v - 1
	}
}

// Grants reports whether key is granted outright.
func (c *Combatant) Grants(key string) bool {
	for _, a := range c.Abilities {
		if a == key {
			return true
		}
	}
	return false
}

// SkillLevel returns the level of skill key, or 0 if untracked.
func (c *Combatant) SkillLevel(key string) int { return c.Skills.Level(key) }

// HealthFraction returns Health/MaxHealth in [0, 1]; 0 when MaxHealth is 0.
func (c *Combatant) HealthFraction() float64 {
	if c.MaxHealth <= 0 {
		return 0
	}
	return float64(c.Health) / float64(c.MaxHealth)
}
