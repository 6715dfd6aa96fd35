package dice_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/gauntlet/internal/game/dice"
)

func TestRollResult_Total(t *testing.T) {
	r := dice.RollResult{Expression: "2d6+3", Dice: []int{4, 5}, Modifier: 3}
	assert.Equal(t, 12, r.Total())
}

func TestRollResult_String(t *testing.T) {
	r := dice.RollResult{Expression: "2d6+3", Dice: []int{4, 5}, Modifier: 3}
	assert.Equal(t, "2d6+3 → [4 5] +3 = 12", r.String())
}

func TestRollResult_String_PanicsOnEmptyExpression(t *testing.T) {
	r := dice.RollResult{Dice: []int{4}}
	assert.Panics(t, func() { _ = r.String() })
}

func TestParse_Forms(t *testing.T) {
	cases := []struct {
		in                string
		count, sides, mod int
		wantMin, wantMax  int
	}{
		{"d20", 1, 20, 0, 1, 20},
		{"2d6", 2, 6, 0, 2, 12},
		{"1d4+1", 1, 4, 1, 2, 5},
		{"4D8-2", 4, 8, -2, 2, 30},
	}
	for _, tc := range cases {
		e, err := dice.Parse(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.count, e.Count, tc.in)
		assert.Equal(t, tc.sides, e.Sides, tc.in)
		assert.Equal(t, tc.mod, e.Modifier, tc.in)
		assert.Equal(t, tc.wantMin, e.Min(), tc.in)
		assert.Equal(t, tc.wantMax, e.Max(), tc.in)
	}
}

func TestParse_Errors(t *testing.T) {
	for _, in := range []string{"", "20", "0d6", "2d1", "2dx", "2d6+x"} {
		_, err := dice.Parse(in)
		assert.Error(t, err, "expected error for %q", in)
	}
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { dice.MustParse("nope") })
}

func TestCryptoSource_Intn_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Intn(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)
	}
}

func TestCryptoSource_Intn_PanicsOnZero(t *testing.T) {
	assert.Panics(t, func() { dice.NewCryptoSource().Intn(0) })
}

func TestSeededSource_Deterministic(t *testing.T) {
	a := dice.NewSeededSource(99)
	b := dice.NewSeededSource(99)
	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Intn(1000), b.Intn(1000))
	}
}

func TestLoggedRoller_PercentileRange(t *testing.T) {
	r := dice.NewLoggedRoller(dice.NewSeededSource(1), zap.NewNop())
	for i := 0; i < 500; i++ {
		v := r.Percentile("test")
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 100)
	}
}

func TestProperty_Roll_WithinExpressionBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 6).Draw(rt, "count")
		sides := rapid.IntRange(2, 20).Draw(rt, "sides")
		mod := rapid.IntRange(-5, 5).Draw(rt, "mod")
		seed := rapid.Int64().Draw(rt, "seed")
		e := dice.Expression{Raw: "x", Count: count, Sides: sides, Modifier: mod}
		got := dice.Roll(e, dice.NewSeededSource(seed)).Total()
		assert.GreaterOrEqual(rt, got, e.Min())
		assert.LessOrEqual(rt, got, e.Max())
	})
}

func TestProperty_Between_Inclusive(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		lo := rapid.IntRange(-50, 50).Draw(rt, "lo")
		hi := rapid.IntRange(lo, lo+50).Draw(rt, "hi")
		v := dice.Between(dice.NewSeededSource(rapid.Int64().Draw(rt, "seed")), lo, hi)
		assert.GreaterOrEqual(rt, v, lo)
		assert.LessOrEqual(rt, v, hi)
	})
}

func TestProperty_Uniform_HalfOpen(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		v := dice.Uniform(dice.NewSeededSource(rapid.Int64().Draw(rt, "seed")), 0.10, 0.30)
		assert.GreaterOrEqual(rt, v, 0.10)
		assert.Less(rt, v, 0.30)
	})
}

func TestProperty_RollResult_String_ContainsExpression(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		expr := rapid.StringMatching(`[1-9]d[2-9]`).Draw(rt, "expression")
		r := dice.RollResult{Expression: expr, Dice: []int{1}}
		assert.True(rt, strings.HasPrefix(r.String(), expr))
	})
}
