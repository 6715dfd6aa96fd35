package ability_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/gauntlet/internal/game/ability"
	"github.com/cory-johannsen/gauntlet/internal/game/combat"
	"github.com/cory-johannsen/gauntlet/internal/game/event"
	"github.com/cory-johannsen/gauntlet/internal/game/skill"
)

const testAbilities = `
abilities:
  - key: basic_attack
    name: Attack
    ap_cost: 1
    range: 1
    effects:
      damage: {base: 0, scaling: weapon}
  - key: power_strike
    name: Power Strike
    ap_cost: 2
    range: 1
    cooldown: 2
    skills:
      - {skill: one_handed, min_level: 5}
    effects:
      damage: {base: 2, scaling: weapon_and_skill}
  - key: cleave
    name: Cleave
    ap_cost: 3
    range: 1
    skills:
      - {skill: one_handed, min_level: 10}
    prerequisites: [power_strike]
    effects:
      damage: {base: 4, scaling: weapon}
  - key: backstab
    name: Backstab
    ap_cost: 2
    range: 1
    requires_concealment: true
    skills:
      - {skill: stealth, min_level: 1}
    effects:
      damage: {base: 5, scaling: skill}
  - key: spellblade
    name: Spellblade
    ap_cost: 2
    range: 3
    difficulty: hard
    skills:
      - {skill: one_handed, min_level: 20, multiplier: 0.6}
      - {skill: evocation, min_level: 20, multiplier: 0.8}
    effects:
      damage: {base: 3, scaling: skill}
  - key: second_wind
    name: Second Wind
    ap_cost: 0
    range: 0
    cooldown: 3
    effects:
      heal: {base: 4}
      restore_ap: {base: 1}
`

func newCatalog(t testing.TB) *ability.Catalog {
	t.Helper()
	cat, err := ability.ParseCatalog([]byte(testAbilities))
	require.NoError(t, err)
	return cat
}

func newHero() *combat.Combatant {
	ledger := skill.NewLedger("one_handed", "stealth", "evocation")
	ledger.Advance("one_handed", 5)
	return &combat.Combatant{
		ID:        "hero",
		Name:      "Hero",
		Faction:   combat.FactionParty,
		Health:    30,
		MaxHealth: 30,
		AP:        3,
		MaxAP:     3,
		Skills:    ledger,
		Weapon:    combat.Weapon{Key: "short_sword", DamageMin: 2, DamageMax: 5, Skill: "one_handed"},
		Abilities: []string{"basic_attack", "second_wind"},
	}
}

func pos(x, y int) *combat.Position { return &combat.Position{X: x, Y: y} }

func TestParseCatalog_Keys(t *testing.T) {
	cat := newCatalog(t)
	assert.Equal(t, []string{"backstab", "basic_attack", "cleave", "power_strike", "second_wind", "spellblade"}, cat.Keys())
	d, ok := cat.Get("spellblade")
	require.True(t, ok)
	assert.Equal(t, skill.DifficultyHard, d.Difficulty())
	assert.True(t, d.IsHybrid())
}

func TestNewCatalog_Rejects(t *testing.T) {
	cases := map[string]string{
		"duplicate": `
abilities:
  - {key: a, effects: {damage: {base: 1}}}
  - {key: a, effects: {damage: {base: 1}}}
`,
		"unknown prerequisite": `
abilities:
  - {key: a, prerequisites: [ghost], effects: {damage: {base: 1}}}
`,
		"cycle": `
abilities:
  - {key: a, prerequisites: [b], effects: {damage: {base: 1}}}
  - {key: b, prerequisites: [a], effects: {damage: {base: 1}}}
`,
		"unknown effect": `
abilities:
  - {key: a, effects: {teleport: {base: 1}}}
`,
		"unknown scaling": `
abilities:
  - {key: a, effects: {damage: {base: 1, scaling: luck}}}
`,
		"unknown field": `
abilities:
  - {key: a, mana: 3, effects: {damage: {base: 1}}}
`,
		"no effects": `
abilities:
  - {key: a}
`,
	}
	for name, doc := range cases {
		_, err := ability.ParseCatalog([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestResolve_PowerStrike(t *testing.T) {
	cat := newCatalog(t)
	d, _ := cat.Get("power_strike")
	effects := ability.Resolve(d, newHero())
	assert.Equal(t, 6, effects[ability.EffectDamage])
}

func TestResolve_ScalingModes(t *testing.T) {
	hero := newHero()
	hero.Skills.Advance("stealth", 27)
	cat := newCatalog(t)

	basic, _ := cat.Get("basic_attack")
	assert.Equal(t, 3, ability.Resolve(basic, hero)[ability.EffectDamage])

	backstab, _ := cat.Get("backstab")
	assert.Equal(t, 7, ability.Resolve(backstab, hero)[ability.EffectDamage], "5 + floor(27/10)")

	wind, _ := cat.Get("second_wind")
	got := ability.Resolve(wind, hero)
	assert.Equal(t, 4, got[ability.EffectHeal])
	assert.Equal(t, 1, got[ability.EffectRestoreAP])
}

func TestHybrid_RequiresAllMinimums(t *testing.T) {
	cat := newCatalog(t)
	hero := newHero()
	hero.Skills.Advance("one_handed", 40)
	assert.False(t, cat.Known(hero, "spellblade"))

	hero.Skills.Advance("evocation", 25)
	assert.True(t, cat.Known(hero, "spellblade"))

	d, _ := cat.Get("spellblade")
	assert.Equal(t, 44, ability.EffectiveSkillLevel(d, hero), "floor(40*0.6 + 25*0.8)")
	assert.InDelta(t, 0.44, ability.Effectiveness(d, hero), 1e-9)
	assert.Equal(t, 7, ability.Resolve(d, hero)[ability.EffectDamage], "3 + floor(44/10)")
}

func TestHybrid_EffectivenessCanExceedOne(t *testing.T) {
	cat, err := ability.ParseCatalog([]byte(`
abilities:
  - key: overdrive
    skills:
      - {skill: a, min_level: 0, multiplier: 1.5}
      - {skill: b, min_level: 0, multiplier: 1.5}
    effects: {damage: {base: 1, scaling: skill}}
`))
	require.NoError(t, err)
	c := &combat.Combatant{Skills: skill.NewLedger("a", "b")}
	c.Skills.Advance("a", 100)
	c.Skills.Advance("b", 100)
	d, _ := cat.Get("overdrive")
	assert.InDelta(t, 3.0, ability.Effectiveness(d, c), 1e-9)
}

func TestKnown_Prerequisites(t *testing.T) {
	cat := newCatalog(t)
	hero := newHero()
	hero.Skills.Advance("one_handed", 10)
	assert.True(t, cat.Known(hero, "cleave"))

	hero.Skills.Advance("one_handed", 4)
	assert.False(t, cat.Known(hero, "cleave"), "power_strike no longer known")
	assert.False(t, cat.Known(hero, "missing"))
}

func TestValidate_Order(t *testing.T) {
	cat := newCatalog(t)
	r := ability.NewResolver(cat, nil, nil, 0)
	hero := newHero()

	assert.Equal(t, ability.ReasonAbilityUnknown, r.Validate(hero, "cleave", nil))
	assert.Equal(t, ability.ReasonAbilityUnknown, r.Validate(hero, "nope", nil))

	hero.AP = 1
	hero.SetCooldown("power_strike", 1)
	assert.Equal(t, ability.ReasonInsufficientAP, r.Validate(hero, "power_strike", pos(9, 9)))

	hero.AP = 3
	assert.Equal(t, ability.ReasonOnCooldown, r.Validate(hero, "power_strike", pos(9, 9)))

	hero.SetCooldown("power_strike", 0)
	assert.Equal(t, ability.ReasonOutOfRange, r.Validate(hero, "power_strike", pos(1, 1)))
	assert.Equal(t, ability.ReasonNone, r.Validate(hero, "power_strike", pos(0, 1)))
	assert.Equal(t, ability.ReasonNone, r.Validate(hero, "power_strike", nil))

	hero.Skills.Advance("stealth", 1)
	assert.Equal(t, ability.ReasonRequirementUnmet, r.Validate(hero, "backstab", pos(1, 0)))
	hero.Concealed = true
	assert.Equal(t, ability.ReasonNone, r.Validate(hero, "backstab", pos(1, 0)))
}

func TestInvoke_ConsumesAndEmits(t *testing.T) {
	rec := &event.Recorder{}
	r := ability.NewResolver(newCatalog(t), rec, zaptest.NewLogger(t), 10)
	hero := newHero()

	out := r.Invoke(ability.Request{Encounter: "enc", Round: 1, Actor: hero, Key: "power_strike", Target: pos(1, 0), TargetID: "gob"})
	require.True(t, out.Success)
	require.NoError(t, out.Err())
	assert.Equal(t, 2, out.APSpent)
	assert.Equal(t, 1, hero.AP)
	assert.Equal(t, 3, hero.Cooldown("power_strike"), "two cooling turn starts, cleared on the third")
	dmg, ok := out.Effect(ability.EffectDamage)
	assert.True(t, ok)
	assert.Equal(t, 6, dmg)

	require.Len(t, out.Awards, 1)
	assert.Equal(t, "one_handed", out.Awards[0].Skill)
	used := rec.OfType(event.TypeAbilityUsed)
	require.Len(t, used, 1)
	assert.Equal(t, "gob", used[0].TargetID)
	assert.Equal(t, 6, used[0].Amount)
	assert.Len(t, rec.OfType(event.TypeSkillGained), 1)
}

func TestInvoke_FailureReportsReason(t *testing.T) {
	rec := &event.Recorder{}
	r := ability.NewResolver(newCatalog(t), rec, nil, 10)
	hero := newHero()
	hero.AP = 0

	out := r.Invoke(ability.Request{Actor: hero, Key: "basic_attack"})
	assert.False(t, out.Success)
	assert.Equal(t, ability.ReasonInsufficientAP, out.Reason)
	assert.True(t, errors.Is(out.Err(), ability.ErrInsufficientAP))
	failed := rec.OfType(event.TypeAbilityFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, "insufficient_ap", failed[0].Reason)
}

func TestInvoke_WeaponAbilityTrainsWeaponSkill(t *testing.T) {
	r := ability.NewResolver(newCatalog(t), nil, nil, 10)
	hero := newHero()
	before, _ := hero.Skills.Get("one_handed")
	out := r.Invoke(ability.Request{Actor: hero, Key: "basic_attack"})
	require.True(t, out.Success)
	after, _ := hero.Skills.Get("one_handed")
	assert.Equal(t, before.UseCount+1, after.UseCount)
}

func TestInvoke_LevelUpUnlocks(t *testing.T) {
	rec := &event.Recorder{}
	cat, err := ability.ParseCatalog([]byte(`
abilities:
  - {key: jab, skills: [{skill: boxing, min_level: 0}], difficulty: legendary, effects: {damage: {base: 1}}}
  - {key: hook, skills: [{skill: boxing, min_level: 1}], effects: {damage: {base: 2}}}
`))
	require.NoError(t, err)
	r := ability.NewResolver(cat, rec, nil, 10)
	c := &combat.Combatant{ID: "c", AP: 3, MaxAP: 3, Skills: skill.NewLedger("boxing")}

	var unlocked []string
	for i := 0; i < 10 && len(unlocked) == 0; i++ {
		out := r.Invoke(ability.Request{Actor: c, Key: "jab"})
		require.True(t, out.Success)
		unlocked = out.Unlocked
	}
	assert.Equal(t, []string{"hook"}, unlocked)
	events := rec.OfType(event.TypeAbilityUnlocked)
	require.Len(t, events, 1)
	assert.Equal(t, "hook", events[0].Key)
	assert.Equal(t, 1, events[0].Amount)
}

func TestInvoke_CooldownRoundTrip(t *testing.T) {
	r := ability.NewResolver(newCatalog(t), nil, nil, 10)
	hero := newHero()
	require.True(t, r.Invoke(ability.Request{Actor: hero, Key: "second_wind"}).Success)
	for turn := 1; turn <= 3; turn++ {
		hero.TickCooldowns()
		assert.Equal(t, ability.ReasonOnCooldown, r.Validate(hero, "second_wind", nil), "turn start %d", turn)
	}
	hero.TickCooldowns()
	assert.Equal(t, ability.ReasonNone, r.Validate(hero, "second_wind", nil))
}

func TestInvoke_CooldownAcrossSchedulerTurns(t *testing.T) {
	r := ability.NewResolver(newCatalog(t), nil, nil, 10)
	hero := newHero()
	hero.BaseInitiative = 10
	dummy := &combat.Combatant{ID: "dummy", Name: "Dummy", Faction: combat.FactionEnemy, Health: 100, MaxHealth: 100, MaxAP: 1}
	s := combat.NewScheduler("enc", zeroSource{}, 20)
	require.NoError(t, s.Start([]*combat.Combatant{hero}, []*combat.Combatant{dummy}))

	var usable []bool
	for len(usable) < 5 {
		turn, err := s.BeginTurn()
		require.NoError(t, err)
		if turn.Actor == hero {
			ok := r.Validate(hero, "power_strike", nil) == ability.ReasonNone
			usable = append(usable, ok)
			if len(usable) == 1 {
				require.True(t, r.Invoke(ability.Request{Actor: hero, Key: "power_strike"}).Success)
			}
		}
		_, err = s.EndTurn()
		require.NoError(t, err)
	}
	assert.Equal(t, []bool{true, false, false, true, true}, usable)
}

// zeroSource rolls 0 for every initiative tiebreak.
type zeroSource struct{}

func (zeroSource) Intn(int) int { return 0 }

func TestHitChance_Clamped(t *testing.T) {
	cat := newCatalog(t)
	d, _ := cat.Get("basic_attack")
	attacker := &combat.Combatant{Accuracy: 200}
	target := &combat.Combatant{}
	assert.Equal(t, 95, ability.HitChance(d, attacker, target))
	target.Evasion = 500
	assert.Equal(t, 5, ability.HitChance(d, attacker, target))
}

func TestReason_String(t *testing.T) {
	assert.Equal(t, "out_of_range", ability.ReasonOutOfRange.String())
	assert.Nil(t, ability.ReasonNone.Err())
}

func TestInvoke_Property_FailedValidationDoesNotMutate(t *testing.T) {
	cat := newCatalog(t)
	r := ability.NewResolver(cat, nil, nil, 10)
	keys := append(cat.Keys(), "unknown")
	rapid.Check(t, func(rt *rapid.T) {
		hero := newHero()
		hero.AP = rapid.IntRange(0, 3).Draw(rt, "ap")
		hero.Concealed = rapid.Bool().Draw(rt, "concealed")
		hero.Skills.Advance("stealth", rapid.IntRange(0, 5).Draw(rt, "stealth"))
		if rapid.Bool().Draw(rt, "cooling") {
			hero.SetCooldown(rapid.SampledFrom(keys).Draw(rt, "cd_key"), rapid.IntRange(1, 3).Draw(rt, "cd"))
		}
		key := rapid.SampledFrom(keys).Draw(rt, "key")
		target := pos(rapid.IntRange(-4, 4).Draw(rt, "x"), rapid.IntRange(-4, 4).Draw(rt, "y"))

		ap, health, cooldowns := hero.AP, hero.Health, map[string]int{}
		for k, v := range hero.Cooldowns {
			cooldowns[k] = v
		}
		progress, _ := hero.Skills.Get("one_handed")

		out := r.Invoke(ability.Request{Actor: hero, Key: key, Target: target})
		if out.Success {
			return
		}
		assert.NotEqual(rt, ability.ReasonNone, out.Reason)
		assert.Equal(rt, ap, hero.AP)
		assert.Equal(rt, health, hero.Health)
		assert.Equal(rt, len(cooldowns), len(hero.Cooldowns))
		for k, v := range cooldowns {
			assert.Equal(rt, v, hero.Cooldowns[k])
		}
		after, _ := hero.Skills.Get("one_handed")
		assert.Equal(rt, progress, after)
	})
}
