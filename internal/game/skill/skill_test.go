package skill_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/gauntlet/internal/game/skill"
)

func TestThreshold_Curve(t *testing.T) {
	assert.Equal(t, 0, skill.Threshold(0))
	// floor(100 * 1^1.8) = 100
	assert.Equal(t, 100, skill.Threshold(1))
	// 100 + floor(100 * 2^1.8) = 100 + 348
	assert.Equal(t, 448, skill.Threshold(2))
	assert.Equal(t, skill.Threshold(skill.MaxLevel), skill.Threshold(skill.MaxLevel+5))
}

func TestLevelForExperience_Boundaries(t *testing.T) {
	assert.Equal(t, 0, skill.LevelForExperience(0))
	assert.Equal(t, 0, skill.LevelForExperience(99))
	assert.Equal(t, 1, skill.LevelForExperience(100))
	assert.Equal(t, 1, skill.LevelForExperience(447))
	assert.Equal(t, 2, skill.LevelForExperience(448))
	assert.Equal(t, skill.MaxLevel, skill.LevelForExperience(skill.Threshold(skill.MaxLevel)*2))
}

func TestAwardUse_MissingSkillFails(t *testing.T) {
	l := skill.NewLedger("one_handed")
	res := l.AwardUse("archery", skill.DifficultyNormal, 10)
	assert.False(t, res.Success)
	assert.False(t, l.Has("archery"))
}

func TestNilLedger_ReadsAndAwardsAreSafe(t *testing.T) {
	var l *skill.Ledger
	assert.False(t, l.Has("one_handed"))
	assert.Zero(t, l.Level("one_handed"))
	assert.Empty(t, l.Keys())
	res := l.AwardUse("one_handed", skill.DifficultyNormal, 10)
	assert.False(t, res.Success)
	assert.Equal(t, "one_handed", res.Skill)
}

func TestAwardUse_DiminishingBuckets(t *testing.T) {
	cases := []struct {
		name   string
		level  int
		diff   skill.Difficulty
		wantXP int
	}{
		// normal target 25, level 0: diff 25 > 10 → 1.0 → 10
		{"far above", 0, skill.DifficultyNormal, 10},
		// target 25, level 18: diff 7 → 0.8 → 8
		{"above", 18, skill.DifficultyNormal, 8},
		// target 25, level 22: diff 3 → 0.6 → 6
		{"slightly above", 22, skill.DifficultyNormal, 6},
		// target 25, level 30: diff -5 → 0.3 → 3
		{"slightly below", 30, skill.DifficultyNormal, 3},
		// target 1, level 40: diff -39 → 0.1 * 0.5 * 10 = 0.5 → clamped to 1
		{"trivial floor", 40, skill.DifficultyTrivial, 1},
		// legendary target 100, level 0: 10 * 3.0 * 1.0 = 30
		{"legendary", 0, skill.DifficultyLegendary, 30},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := skill.NewLedger()
			l.Advance("stealth", tc.level)
			before, _ := l.Get("stealth")
			res := l.AwardUse("stealth", tc.diff, 10)
			require.True(t, res.Success)
			assert.Equal(t, tc.wantXP, res.XPGained)
			after, _ := l.Get("stealth")
			assert.Equal(t, before.XP+tc.wantXP, after.XP)
			assert.Equal(t, before.UseCount+1, after.UseCount)
		})
	}
}

func TestAwardUse_LevelUpSignal(t *testing.T) {
	l := skill.NewLedger("one_handed")
	var leveled bool
	for i := 0; i < 20 && !leveled; i++ {
		res := l.AwardUse("one_handed", skill.DifficultyNormal, 10)
		leveled = res.LeveledUp
		if leveled {
			assert.Equal(t, 0, res.PreviousLevel)
			assert.Equal(t, 1, res.NewLevel)
		}
	}
	assert.True(t, leveled, "ten uses at 10 XP must reach the 100 XP threshold")
	assert.Equal(t, 1, l.Level("one_handed"))
}

func TestAdvance_RewritesXPConsistently(t *testing.T) {
	l := skill.NewLedger()
	l.Advance("one_handed", 5)
	p, ok := l.Get("one_handed")
	require.True(t, ok)
	assert.Equal(t, 5, p.Level)
	assert.Equal(t, skill.Threshold(5), p.XP)

	l.Advance("one_handed", 500)
	assert.Equal(t, skill.MaxLevel, l.Level("one_handed"))
}

func TestClone_IsIndependent(t *testing.T) {
	l := skill.NewLedger("a")
	c := l.Clone()
	c.AwardUse("a", skill.DifficultyNormal, 10)
	p, _ := l.Get("a")
	assert.Equal(t, 0, p.XP)
}

func TestParseDifficulty(t *testing.T) {
	d, err := skill.ParseDifficulty("")
	require.NoError(t, err)
	assert.Equal(t, skill.DifficultyNormal, d)

	d, err = skill.ParseDifficulty("legendary")
	require.NoError(t, err)
	assert.Equal(t, 100, d.TargetLevel())

	_, err = skill.ParseDifficulty("absurd")
	assert.Error(t, err)
}

func TestDifficulty_UnmarshalYAML(t *testing.T) {
	var doc struct {
		D skill.Difficulty `yaml:"difficulty"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("difficulty: hard"), &doc))
	assert.Equal(t, skill.DifficultyHard, doc.D)
	assert.Error(t, yaml.Unmarshal([]byte("difficulty: nope"), &doc))
}

func TestProperty_LevelForExperience_Monotonic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := rapid.IntRange(0, skill.Threshold(skill.MaxLevel)+1000).Draw(rt, "a")
		b := rapid.IntRange(a, skill.Threshold(skill.MaxLevel)+2000).Draw(rt, "b")
		assert.LessOrEqual(rt, skill.LevelForExperience(a), skill.LevelForExperience(b))
	})
}

func TestProperty_AwardUse_NeverDecreases(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		l := skill.NewLedger()
		l.Advance("s", rapid.IntRange(0, skill.MaxLevel).Draw(rt, "start"))
		uses := rapid.SliceOfN(rapid.IntRange(0, 5), 1, 50).Draw(rt, "uses")
		for _, d := range uses {
			before, _ := l.Get("s")
			res := l.AwardUse("s", skill.Difficulty(d), rapid.IntRange(1, 50).Draw(rt, "base"))
			after, _ := l.Get("s")
			require.True(rt, res.Success)
			assert.GreaterOrEqual(rt, after.XP, before.XP+1)
			assert.GreaterOrEqual(rt, after.Level, before.Level)
			assert.Equal(rt, skill.LevelForExperience(after.XP), after.Level)
		}
	})
}
