package ai_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/gauntlet/internal/game/ability"
	"github.com/cory-johannsen/gauntlet/internal/game/ai"
	"github.com/cory-johannsen/gauntlet/internal/game/combat"
	"github.com/cory-johannsen/gauntlet/internal/game/dice"
	"github.com/cory-johannsen/gauntlet/internal/game/event"
	"github.com/cory-johannsen/gauntlet/internal/game/skill"
	"github.com/cory-johannsen/gauntlet/internal/testutil"
)

const enemyAbilities = `
abilities:
  - key: basic_attack
    ap_cost: 1
    range: 1
    effects:
      damage: {base: 0, scaling: weapon}
  - key: heavy_blow
    ap_cost: 2
    range: 1
    cooldown: 2
    effects:
      damage: {base: 2}
`

func newResolver(t testing.TB, sink event.Sink) *ability.Resolver {
	t.Helper()
	cat, err := ability.ParseCatalog([]byte(enemyAbilities))
	require.NoError(t, err)
	return ability.NewResolver(cat, sink, nil, 10)
}

func goblin(x, y int) *combat.Combatant {
	return &combat.Combatant{
		ID:        "goblin",
		Faction:   combat.FactionEnemy,
		Pos:       combat.Position{X: x, Y: y},
		Health:    15,
		MaxHealth: 15,
		AP:        2,
		MaxAP:     2,
		Accuracy:  70,
		Skills:    skill.NewLedger(),
		Weapon:    combat.Weapon{DamageMin: 1, DamageMax: 3},
		Abilities: []string{"basic_attack"},
	}
}

func hero(id string, x, y int) *combat.Combatant {
	return &combat.Combatant{
		ID:        id,
		Faction:   combat.FactionParty,
		Pos:       combat.Position{X: x, Y: y},
		Health:    20,
		MaxHealth: 20,
		Defense:   1,
	}
}

func newTactician(t testing.TB, grid *testutil.Grid, src dice.Source, sink event.Sink) *ai.Tactician {
	t.Helper()
	return ai.NewTactician(newResolver(t, sink), grid, dice.NewLoggedRoller(src, nil), sink, nil)
}

func TestScore(t *testing.T) {
	g := goblin(0, 0)
	adjacent := hero("a", 1, 0)
	assert.InDelta(t, 75.0, ai.Score(g, adjacent), 1e-9)

	wounded := hero("b", 3, 0)
	wounded.Health = 10
	assert.InDelta(t, 70.0, ai.Score(g, wounded), 1e-9, "35 + 15 + 20")

	far := hero("c", 20, 0)
	assert.InDelta(t, 20.0, ai.Score(g, far), 1e-9)
}

func TestSelectTarget(t *testing.T) {
	g := goblin(0, 0)
	near := hero("near", 1, 0)
	dying := hero("dying", 2, 0)
	dying.Health = 1
	dead := hero("dead", 0, 1)
	dead.Health = 0

	ws := ai.WorldState{Actor: g, Party: []*combat.Combatant{near, dying, dead}}
	target, score, ok := ws.SelectTarget()
	require.True(t, ok)
	assert.Equal(t, "dying", target.ID, "40 + 28.5 + 20 beats 45 + 0 + 20 + 10")
	assert.InDelta(t, 88.5, score, 1e-9)

	ws.Party = []*combat.Combatant{dead}
	_, _, ok = ws.SelectTarget()
	assert.False(t, ok)
}

func TestSelectTarget_TieGoesToFirst(t *testing.T) {
	ws := ai.WorldState{Actor: goblin(0, 0), Party: []*combat.Combatant{hero("a", 2, 0), hero("b", 0, 2)}}
	target, _, _ := ws.SelectTarget()
	assert.Equal(t, "a", target.ID)
}

func TestDecideAction(t *testing.T) {
	g := goblin(0, 0)
	assert.Equal(t, ai.ActionAttack, ai.DecideAction(g, hero("h", 1, 0)))
	assert.Equal(t, ai.ActionApproach, ai.DecideAction(g, hero("h", 2, 1)))
	assert.Equal(t, ai.ActionAdvance, ai.DecideAction(g, hero("h", 3, 1)))
	assert.Equal(t, ai.ActionNone, ai.DecideAction(g, nil))
}

func TestStepCandidates(t *testing.T) {
	at := func(x, y int) combat.Position { return combat.Position{X: x, Y: y} }
	assert.Equal(t, []combat.Position{at(1, 1), at(1, 0), at(0, 1)}, ai.StepCandidates(at(0, 0), at(3, 2)))
	assert.Equal(t, []combat.Position{at(1, 0)}, ai.StepCandidates(at(0, 0), at(3, 0)))
	assert.Equal(t, []combat.Position{at(4, 4)}, ai.StepCandidates(at(4, 5), at(4, 1)))
	assert.Equal(t, []combat.Position{at(1, 0), at(0, 1)}, ai.StepCandidates(at(0, 0), at(1, 1)))
}

func TestStep_FallsThroughBlockedCandidates(t *testing.T) {
	grid := testutil.NewGrid(10, 10)
	grid.Block(testutil.Cell{X: 1, Y: 1})
	rec := &event.Recorder{}
	tac := newTactician(t, grid, testutil.Fixed(0), rec)
	g := goblin(0, 0)

	require.True(t, tac.Step("enc", 1, g, hero("h", 4, 4)))
	assert.Equal(t, combat.Position{X: 1, Y: 0}, g.Pos)
	assert.Equal(t, []testutil.Cell{{X: 1, Y: 1}, {X: 1, Y: 0}}, grid.Queries())
	moved := rec.OfType(event.TypeEnemyMoved)
	require.Len(t, moved, 1)
	assert.Equal(t, 1, moved[0].X)
}

func TestAttack_HitUsesAbility(t *testing.T) {
	rec := &event.Recorder{}
	// percentile 10 hits accuracy 70; damage roll 1 + 2 = 3.
	tac := newTactician(t, testutil.NewGrid(10, 10), testutil.NewSequence(10, 2), rec)
	g := goblin(0, 0)
	h := hero("h", 1, 0)

	res := tac.Attack("enc", 1, g, h)
	assert.True(t, res.Hit)
	assert.Equal(t, "basic_attack", res.Ability)
	assert.Equal(t, 2, res.Damage, "3 - defense 1")
	assert.Equal(t, 18, h.Health)
	assert.Equal(t, 1, g.AP)
	assert.Len(t, rec.OfType(event.TypeAbilityUsed), 1)
	resolved := rec.OfType(event.TypeAttackResolved)
	require.Len(t, resolved, 1)
	assert.True(t, resolved[0].Hit)
	assert.Equal(t, 2, resolved[0].Amount)
}

func TestAttack_AbilityKeepsWeaponRange(t *testing.T) {
	tac := newTactician(t, testutil.NewGrid(10, 10), testutil.NewSequence(0, 2), nil)
	g := goblin(0, 0)
	g.Abilities = []string{"heavy_blow", "basic_attack"}
	h := hero("h", 0, 1)

	res := tac.Attack("enc", 1, g, h)
	assert.Equal(t, "heavy_blow", res.Ability)
	assert.Equal(t, 2, res.Damage, "top of the 1-3 range less defense 1, no ability bonus")
	assert.Equal(t, 0, g.AP)
	assert.Equal(t, 3, g.Cooldown("heavy_blow"))
}

func TestAttack_Miss(t *testing.T) {
	tac := newTactician(t, testutil.NewGrid(10, 10), testutil.NewSequence(70), nil)
	h := hero("h", 1, 0)
	res := tac.Attack("enc", 1, goblin(0, 0), h)
	assert.False(t, res.Hit)
	assert.Zero(t, res.Damage)
	assert.Equal(t, 20, h.Health)
}

func TestAttack_MinimumDamageOne(t *testing.T) {
	tac := newTactician(t, testutil.NewGrid(10, 10), testutil.NewSequence(0, 0), nil)
	h := hero("h", 1, 0)
	h.Defense = 50
	res := tac.Attack("enc", 1, goblin(0, 0), h)
	assert.Equal(t, 1, res.Damage)
}

func TestAttack_NaturalWhenNoAbilityUsable(t *testing.T) {
	tac := newTactician(t, testutil.NewGrid(10, 10), testutil.NewSequence(0, 0), nil)
	g := goblin(0, 0)
	g.AP = 0
	res := tac.Attack("enc", 1, g, hero("h", 1, 0))
	assert.Empty(t, res.Ability)
	assert.True(t, res.Hit)
}

func TestTakeTurn_ApproachBlockedFallsBackToAttack(t *testing.T) {
	grid := testutil.NewGrid(10, 10)
	grid.Block(testutil.Cell{X: 1, Y: 1}, testutil.Cell{X: 1, Y: 0}, testutil.Cell{X: 0, Y: 1})
	tac := newTactician(t, grid, testutil.NewSequence(0, 0), nil)
	g := goblin(0, 0)
	h := hero("h", 2, 1)

	res := tac.TakeTurn("enc", 1, g, []*combat.Combatant{h})
	assert.Equal(t, ai.ActionApproach, res.Action)
	assert.False(t, res.Moved)
	require.NotNil(t, res.Attack)
	assert.Empty(t, res.Attack.Ability, "basic_attack is out of range")
	assert.Equal(t, 2, g.AP)
}

func TestTakeTurn_ApproachMoves(t *testing.T) {
	tac := newTactician(t, testutil.NewGrid(10, 10), testutil.Fixed(0), nil)
	g := goblin(0, 0)
	res := tac.TakeTurn("enc", 1, g, []*combat.Combatant{hero("h", 3, 0)})
	assert.True(t, res.Moved)
	assert.Nil(t, res.Attack)
	assert.Equal(t, combat.Position{X: 1, Y: 0}, res.To)
}

func TestTakeTurn_AdvanceBlockedIsNoop(t *testing.T) {
	grid := testutil.NewGrid(10, 10)
	grid.Block(testutil.Cell{X: 1, Y: 0})
	tac := newTactician(t, grid, testutil.Fixed(0), nil)
	g := goblin(0, 0)
	res := tac.TakeTurn("enc", 1, g, []*combat.Combatant{hero("h", 6, 0)})
	assert.Equal(t, ai.ActionAdvance, res.Action)
	assert.False(t, res.Moved)
	assert.Nil(t, res.Attack)
	assert.Equal(t, combat.Position{}, g.Pos)
}

func TestTakeTurn_NoTargetLogsNoop(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	tac := ai.NewTactician(newResolver(t, nil), testutil.NewGrid(5, 5), dice.NewLoggedRoller(testutil.Fixed(0), nil), nil, zap.New(core))
	dead := hero("h", 1, 0)
	dead.Health = 0

	res := tac.TakeTurn("enc", 1, goblin(0, 0), []*combat.Combatant{dead})
	assert.Equal(t, ai.ActionNone, res.Action)
	assert.Nil(t, res.Target)
	assert.Equal(t, 1, logs.FilterMessage("enemy has no target").Len())
}

func TestProperty_Attack_HealthNeverNegative(t *testing.T) {
	resolver := newResolver(t, nil)
	rapid.Check(t, func(rt *rapid.T) {
		roller := dice.NewLoggedRoller(dice.NewSeededSource(rapid.Int64().Draw(rt, "seed")), nil)
		tac := ai.NewTactician(resolver, testutil.NewGrid(10, 10), roller, nil, nil)
		g := goblin(0, 0)
		g.Weapon.DamageMax = rapid.IntRange(1, 50).Draw(rt, "dmax")
		g.Accuracy = rapid.IntRange(0, 100).Draw(rt, "acc")
		if rapid.Bool().Draw(rt, "heavy") {
			g.Abilities = []string{"heavy_blow", "basic_attack"}
		}
		h := hero("h", 1, 0)
		h.Health = rapid.IntRange(1, 20).Draw(rt, "hp")
		h.Defense = rapid.IntRange(0, 20).Draw(rt, "def")

		before := h.Health
		res := tac.Attack("enc", 1, g, h)
		assert.GreaterOrEqual(rt, h.Health, 0)
		assert.Equal(rt, before-res.Damage, h.Health)
		if res.Hit {
			assert.GreaterOrEqual(rt, res.Damage, 1)
			assert.LessOrEqual(rt, res.Damage, max(1, g.Weapon.DamageMax-h.Defense))
		} else {
			assert.Zero(rt, res.Damage)
		}
	})
}
