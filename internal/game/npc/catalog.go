package npc

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type tierKey struct {
	key  string
	tier int
}

// Catalog is the read-only set of enemy templates indexed by key and tier.
// It is safe for concurrent reads.
type Catalog struct {
	templates    map[tierKey]*Template
	ordered      []*Template
	lootTables   map[string]LootTable
	difficulties *Difficulties
	maxTier      int
	bossFloor    int
	logger       *zap.Logger
}

// NewCatalog validates templates and loot tables and indexes them.
//
// Precondition: difficulties non-nil; bossFloor >= 1.
// Postcondition: returns an error on an invalid template, a duplicate
// key/tier pair, an invalid loot table, or an unknown loot reference.
func NewCatalog(templates []*Template, lootTables map[string]LootTable, difficulties *Difficulties, bossFloor int, logger *zap.Logger) (*Catalog, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Catalog{
		templates:    make(map[tierKey]*Template, len(templates)),
		lootTables:   make(map[string]LootTable, len(lootTables)),
		difficulties: difficulties,
		bossFloor:    bossFloor,
		logger:       logger,
	}
	for name, lt := range lootTables {
		if err := lt.Validate(); err != nil {
			return nil, fmt.Errorf("loot table %q: %w", name, err)
		}
		c.lootTables[name] = lt
	}
	for _, t := range templates {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		k := tierKey{t.Key, t.Tier}
		if _, exists := c.templates[k]; exists {
			return nil, fmt.Errorf("npc template %q tier %d already registered", t.Key, t.Tier)
		}
		if t.Loot != "" {
			if _, ok := c.lootTables[t.Loot]; !ok {
				return nil, fmt.Errorf("npc template %q tier %d: unknown loot table %q", t.Key, t.Tier, t.Loot)
			}
		}
		c.templates[k] = t
		c.ordered = append(c.ordered, t)
		if t.Tier > c.maxTier {
			c.maxTier = t.Tier
		}
	}
	sort.Slice(c.ordered, func(i, j int) bool {
		if c.ordered[i].Tier != c.ordered[j].Tier {
			return c.ordered[i].Tier < c.ordered[j].Tier
		}
		return c.ordered[i].Key < c.ordered[j].Key
	})
	return c, nil
}

type catalogFile struct {
	LootTables map[string]LootTable `yaml:"loot_tables"`
	Enemies    []*Template          `yaml:"enemies"`
}

// ParseCatalog decodes an enemies document and builds a Catalog from it.
func ParseCatalog(data []byte, difficulties *Difficulties, bossFloor int, logger *zap.Logger) (*Catalog, error) {
	var doc catalogFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing enemies YAML: %w", err)
	}
	return NewCatalog(doc.Enemies, doc.LootTables, difficulties, bossFloor, logger)
}

// LoadCatalog reads the enemies file at path.
func LoadCatalog(path string, difficulties *Difficulties, bossFloor int, logger *zap.Logger) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadCatalog: cannot read file %q: %w", path, err)
	}
	c, err := ParseCatalog(data, difficulties, bossFloor, logger)
	if err != nil {
		return nil, fmt.Errorf("LoadCatalog: %q: %w", path, err)
	}
	return c, nil
}

// Template returns the template for key at tier.
func (c *Catalog) Template(key string, tier int) (*Template, bool) {
	t, ok := c.templates[tierKey{key, tier}]
	return t, ok
}

// MaxTier returns the highest tier defined.
func (c *Catalog) MaxTier() int { return c.maxTier }

// BossFloor returns the floor on which boss templates become eligible.
func (c *Catalog) BossFloor() int { return c.bossFloor }

// Difficulties returns the difficulty table.
func (c *Catalog) Difficulties() *Difficulties { return c.difficulties }

// LootItemIDs returns every item id any loot table can drop, sorted and
// without repeats.
func (c *Catalog) LootItemIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, lt := range c.lootTables {
		for _, drop := range lt.Items {
			if !seen[drop.ItemID] {
				seen[drop.ItemID] = true
				ids = append(ids, drop.ItemID)
			}
		}
	}
	sort.Strings(ids)
	return ids
}

// EnemiesForFloor returns the templates eligible on floor at difficulty,
// ordered by tier then key.
//
// The tier window is [max(1, floor+offset.min), min(MaxTier, floor+offset.max)].
// Boss templates are eligible only on the boss floor. An unknown difficulty
// is logged and yields nil.
func (c *Catalog) EnemiesForFloor(floor int, difficulty string) []*Template {
	cfg, ok := c.difficulties.Get(difficulty)
	if !ok {
		c.logger.Warn("unknown difficulty", zap.String("difficulty", difficulty))
		return nil
	}
	minTier := max(1, floor+cfg.TierOffset.Min)
	maxTier := min(c.maxTier, floor+cfg.TierOffset.Max)

	var out []*Template
	for _, t := range c.ordered {
		if t.Tier < minTier || t.Tier > maxTier {
			continue
		}
		if t.Boss && floor != c.bossFloor {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Instantiate stamps a new Instance of key at tier for floor and difficulty.
//
// Health, damage bounds, and defense are scaled by the stat multiplier and
// floored; health and minimum damage never drop below 1. XP and ItemChance
// are scaled by the loot multiplier.
//
// Postcondition: returns (nil, false) and logs a warning when the key/tier
// pair or the difficulty is unknown; the caller skips that spawn.
func (c *Catalog) Instantiate(key string, tier, floor int, difficulty string) (*Instance, bool) {
	t, ok := c.Template(key, tier)
	if !ok {
		c.logger.Warn("unknown enemy template",
			zap.String("template", key),
			zap.Int("tier", tier),
		)
		return nil, false
	}
	cfg, ok := c.difficulties.Get(difficulty)
	if !ok {
		c.logger.Warn("unknown difficulty",
			zap.String("template", key),
			zap.String("difficulty", difficulty),
		)
		return nil, false
	}

	stat := func(v int) int { return int(math.Floor(float64(v) * cfg.StatMultiplier)) }
	health := max(1, stat(t.Stats.Health))
	dmgMin := max(1, stat(t.Stats.DamageMin))
	dmgMax := max(dmgMin, stat(t.Stats.DamageMax))

	inst := &Instance{
		ID:          uuid.New().String(),
		TemplateKey: t.Key,
		Name:        t.Name,
		Tier:        t.Tier,
		Floor:       floor,
		Difficulty:  cfg.Name,
		Boss:        t.Boss,
		Health:      health,
		MaxHealth:   health,
		DamageMin:   dmgMin,
		DamageMax:   dmgMax,
		Defense:     stat(t.Stats.Defense),
		Accuracy:    t.Stats.Accuracy,
		Evasion:     t.Stats.Evasion,
		Initiative:  t.Stats.Initiative,
		AP:          t.Stats.AP,
		Abilities:   append([]string(nil), t.Abilities...),
		ItemChance:  cfg.LootMultiplier,
		XP:          int(math.Floor(float64(t.XP) * cfg.LootMultiplier)),
	}
	if t.Loot != "" {
		lt := c.lootTables[t.Loot]
		inst.Loot = lt.clone()
	}
	return inst, true
}
