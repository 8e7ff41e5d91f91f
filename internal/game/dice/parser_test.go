package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/swingdice/internal/game/dice"
)

func TestParse_Valid(t *testing.T) {
	cases := map[string]dice.Group{
		"d20":       {Count: 1, Sides: 20},
		"2d6":       {Count: 2, Sides: 6},
		"1000000D6": {Count: 1000000, Sides: 6},
		" 3d100 ":   {Count: 3, Sides: 100},
	}
	for expr, want := range cases {
		got, err := dice.Parse(expr)
		require.NoError(t, err, expr)
		assert.Equal(t, want, got, expr)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, expr := range []string{"", "   ", "6", "0d6", "-2d6", "2d1", "2d", "xd6", "2d6+3", "2d6kh1"} {
		_, err := dice.Parse(expr)
		assert.Error(t, err, "expr %q", expr)
	}
}

func TestParsePool_Separators(t *testing.T) {
	want := []dice.Group{{Count: 500, Sides: 20}, {Count: 500, Sides: 4}}
	for _, expr := range []string{"500d20+500d4", "500d20 + 500d4", "500d20, 500d4", "500d20 500d4"} {
		got, err := dice.ParsePool(expr)
		require.NoError(t, err, expr)
		assert.Equal(t, want, got, expr)
	}
}

func TestParsePool_Errors(t *testing.T) {
	_, err := dice.ParsePool(" + , ")
	assert.Error(t, err)

	_, err = dice.ParsePool("2d6+banana")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "banana")
}

func TestMustParsePool_Panics(t *testing.T) {
	assert.Panics(t, func() { dice.MustParsePool("") })
	assert.NotPanics(t, func() { dice.MustParsePool("d6") })
}

func TestFormatPool(t *testing.T) {
	assert.Equal(t, "500d20+500d4", dice.FormatPool([]dice.Group{{Count: 500, Sides: 20}, {Count: 500, Sides: 4}}))
	assert.Equal(t, "", dice.FormatPool(nil))
}

// TestFormatPool_RoundTrip_Property verifies ParsePool(FormatPool(g)) == g for valid pools.
func TestFormatPool_RoundTrip_Property(t *testing.T) {
	groupGen := rapid.Custom(func(rt *rapid.T) dice.Group {
		return dice.Group{
			Count: rapid.IntRange(1, 5000000).Draw(rt, "count"),
			Sides: rapid.IntRange(2, 1000).Draw(rt, "sides"),
		}
	})
	rapid.Check(t, func(rt *rapid.T) {
		groups := rapid.SliceOfN(groupGen, 1, 8).Draw(rt, "groups")
		got, err := dice.ParsePool(dice.FormatPool(groups))
		require.NoError(rt, err)
		assert.Equal(rt, groups, got)
	})
}
