package simulation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMulberry32_KnownSequence(t *testing.T) {
	gen := NewMulberry32(1)
	assert.Equal(t, uint32(2693262067), gen.Uint32())
	assert.Equal(t, uint32(11749833), gen.Uint32())
	assert.Equal(t, uint32(2265367787), gen.Uint32())
}

func TestMulberry32_Float64(t *testing.T) {
	gen := NewMulberry32(1)
	assert.InDelta(t, 0.6270739405881613, gen.Float64(), 1e-15)

	gen = NewMulberry32(42)
	for i := 0; i < 10000; i++ {
		v := gen.Float64()
		require.GreaterOrEqual(t, v, 0.0)
		require.Less(t, v, 1.0)
	}
}

func TestMulberry32_ZeroSeedIsOne(t *testing.T) {
	zero, one := NewMulberry32(0), NewMulberry32(1)
	for i := 0; i < 5; i++ {
		assert.Equal(t, one.Uint32(), zero.Uint32())
	}
}

func TestMulberry32_NormalMoments(t *testing.T) {
	gen := NewMulberry32(7)
	const n = 20000
	var sum, sq float64
	for i := 0; i < n; i++ {
		v := gen.Normal(10, 2)
		require.False(t, math.IsNaN(v) || math.IsInf(v, 0))
		sum += v
		sq += v * v
	}
	mean := sum / n
	std := math.Sqrt(sq/n - mean*mean)
	assert.InDelta(t, 10, mean, 0.1)
	assert.InDelta(t, 2, std, 0.1)
}

func TestSeasonSeeds(t *testing.T) {
	seeds := SeasonSeeds(1, 3)
	assert.Equal(t, []uint32{2693262067, 11749833, 2265367787}, seeds)
	assert.Equal(t, seeds, SeasonSeeds(1, 3))
	assert.Equal(t, seeds[:2], SeasonSeeds(1, 2), "prefix is stable")
	assert.Empty(t, SeasonSeeds(1, 0))
}

func TestRandomHelpers(t *testing.T) {
	gen := NewMulberry32(99)

	t.Run("randomInt stays in range", func(t *testing.T) {
		for i := 0; i < 1000; i++ {
			v := randomInt(gen, 3, 7)
			require.GreaterOrEqual(t, v, 3)
			require.LessOrEqual(t, v, 7)
		}
		assert.Equal(t, 4, randomInt(gen, 4, 4))
	})

	t.Run("randomOne on empty list", func(t *testing.T) {
		assert.Empty(t, randomOne(gen, nil))
	})

	t.Run("uniqueSubset", func(t *testing.T) {
		values := []string{"a", "b", "c", "d", "e"}
		subset := uniqueSubset(gen, values, 3)
		assert.Len(t, subset, 3)
		seen := map[string]bool{}
		for _, v := range subset {
			assert.Contains(t, values, v)
			assert.False(t, seen[v], "duplicate %s", v)
			seen[v] = true
		}
		assert.Equal(t, []string{"a", "b", "c", "d", "e"}, values, "input untouched")
		assert.Len(t, uniqueSubset(gen, values, 10), 5)
	})

	t.Run("round and clamp", func(t *testing.T) {
		assert.Equal(t, 3.0, round(2.5))
		assert.Equal(t, -2.0, round(-2.5))
		assert.Equal(t, 1.0, clamp(-4, 1, 22))
		assert.Equal(t, 22.0, clamp(40, 1, 22))
	})
}

func TestRankByScore(t *testing.T) {
	values := []string{"a", "b", "c", "d"}
	scores := map[string]float64{"a": 1, "b": 3, "c": 3, "d": 2}

	assert.Equal(t, []string{"b", "c"}, rankByScore(values, scores, 2, false), "ties keep input order")
	assert.Equal(t, []string{"a", "d"}, rankByScore(values, scores, 2, true))
	assert.Equal(t, []string{"b"}, rankByScore(values, scores, 0, false), "at least one")
	assert.Len(t, rankByScore(values, scores, 10, false), 4)
	assert.Empty(t, rankByScore(nil, scores, 3, false))
	assert.Equal(t, "", top(nil, scores, false))
}

func TestProfileBounds(t *testing.T) {
	gen := NewMulberry32(5)
	for i := 0; i < 5000; i++ {
		p := NewProfile(gen)
		require.GreaterOrEqual(t, p.Knowledge, MinKnowledge)
		require.LessOrEqual(t, p.Knowledge, MaxKnowledge)
		require.GreaterOrEqual(t, p.Boldness, MinBoldness)
		require.LessOrEqual(t, p.Boldness, MaxBoldness)
	}
	assert.InDelta(t, 2, Profile{Knowledge: 1}.noise(), 1e-9)
	assert.InDelta(t, 24, Profile{Knowledge: 0}.noise(), 1e-9)
}
