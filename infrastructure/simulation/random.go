// Package simulation generates synthetic seasons and synthetic players and
// runs the Monte Carlo balance analysis over them.
//
// Every stochastic decision goes through a ports.RandomSource. A run is fully
// determined by its root seed: the root generator only derives one seed per
// season, in season order, and each season owns an independent generator.
package simulation

import (
	"math"

	"github.com/ahrav/go-paddock/internal/ports"
)

var _ ports.RandomSource = (*Mulberry32)(nil)

// minUniform keeps log(u) finite in the Box-Muller transform.
const minUniform = 1e-12

// Mulberry32 is a small, fast 32-bit generator. It is deterministic for a
// given seed and not safe for concurrent use.
type Mulberry32 struct {
	state uint32
}

// NewMulberry32 returns a generator seeded with seed. A zero seed is replaced
// by 1.
func NewMulberry32(seed uint32) *Mulberry32 {
	if seed == 0 {
		seed = 1
	}
	return &Mulberry32{state: seed}
}

// Uint32 returns the next raw 32-bit output.
func (m *Mulberry32) Uint32() uint32 {
	m.state += 0x6d2b79f5
	t := m.state
	t = (t ^ t>>15) * (t | 1)
	t ^= t + (t^t>>7)*(t|61)
	return t ^ t>>14
}

// Float64 returns a uniform value in [0, 1).
func (m *Mulberry32) Float64() float64 {
	return float64(m.Uint32()) / 4294967296.0
}

// Normal returns a Gaussian sample via the Box-Muller transform.
func (m *Mulberry32) Normal(mean, stdDev float64) float64 {
	u1 := math.Max(minUniform, m.Float64())
	u2 := math.Max(minUniform, m.Float64())
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	return mean + z*stdDev
}

// SeasonSeeds derives one seed per season from root, in season order.
func SeasonSeeds(root uint32, seasons int) []uint32 {
	gen := NewMulberry32(root)
	seeds := make([]uint32, seasons)
	for i := range seeds {
		seeds[i] = gen.Uint32()
	}
	return seeds
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// round rounds half up, matching the rounding used for every discrete draw.
func round(v float64) float64 {
	return math.Floor(v + 0.5)
}

// randomInt returns a uniform integer in [lo, hi].
func randomInt(src ports.RandomSource, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return int(math.Floor(src.Float64()*float64(hi-lo+1))) + lo
}

// randomOne returns a uniform element, or "" for an empty list.
func randomOne(src ports.RandomSource, values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[randomInt(src, 0, len(values)-1)]
}

// uniqueSubset returns the first count elements of a Fisher-Yates shuffle
// of values. The input slice is not modified.
func uniqueSubset(src ports.RandomSource, values []string, count int) []string {
	shuffled := append([]string(nil), values...)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := randomInt(src, 0, i)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	if count < 0 {
		count = 0
	}
	if count > len(shuffled) {
		count = len(shuffled)
	}
	return shuffled[:count]
}
