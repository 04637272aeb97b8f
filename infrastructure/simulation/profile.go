package simulation

import "github.com/ahrav/go-paddock/internal/ports"

// Profile bounds.
const (
	MinKnowledge = 0.2
	MaxKnowledge = 0.96
	MinBoldness  = 0.05
	MaxBoldness  = 0.95
)

// Profile describes one synthetic player for one season. Knowledge controls
// how closely forecasts track the skill model; boldness controls appetite
// for unlikely outcomes.
type Profile struct {
	Knowledge float64
	Boldness  float64
}

// NewProfile draws knowledge around 0.62 and boldness around 0.45, clamped
// to their bounds. Knowledge is drawn first.
func NewProfile(src ports.RandomSource) Profile {
	knowledge := clamp(0.62+src.Normal(0, 0.16), MinKnowledge, MaxKnowledge)
	boldness := clamp(0.45+src.Normal(0, 0.18), MinBoldness, MaxBoldness)
	return Profile{Knowledge: knowledge, Boldness: boldness}
}

// noise is the standard deviation added to skill-model scores: 24 for a
// clueless player, 2 for a perfect one.
func (p Profile) noise() float64 {
	return 22*(1-p.Knowledge) + 2
}
