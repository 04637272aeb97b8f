package testutils

import (
	"sync"

	"github.com/ahrav/go-paddock/internal/ports"
)

var _ ports.RandomSource = (*ScriptedRandom)(nil)

// ScriptedRandom implements ports.RandomSource with pre-defined draws for
// tests that need to pin a single stochastic branch. Uniform and Gaussian
// draws are scripted independently; once a script runs out the fallback
// value is returned.
type ScriptedRandom struct {
	mu sync.Mutex

	uniforms []float64
	normals  []float64

	// FallbackUniform is returned once the uniform script is exhausted.
	FallbackUniform float64
	// FallbackNormal is returned (as a z-score) once the normal script is exhausted.
	FallbackNormal float64

	uniformCalls int
	normalCalls  int
}

// NewScriptedRandom creates a source that returns uniforms in order. Normal
// draws return mean plus zero noise until SetNormals is called.
func NewScriptedRandom(uniforms ...float64) *ScriptedRandom {
	return &ScriptedRandom{uniforms: uniforms, FallbackUniform: 0.5}
}

// SetNormals scripts the z-scores returned by Normal, scaled by stdDev.
func (r *ScriptedRandom) SetNormals(z ...float64) *ScriptedRandom {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.normals = z
	return r
}

// Float64 returns the next scripted uniform.
func (r *ScriptedRandom) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uniformCalls++
	if len(r.uniforms) == 0 {
		return r.FallbackUniform
	}
	v := r.uniforms[0]
	r.uniforms = r.uniforms[1:]
	return v
}

// Normal returns mean + z*stdDev for the next scripted z-score.
func (r *ScriptedRandom) Normal(mean, stdDev float64) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.normalCalls++
	z := r.FallbackNormal
	if len(r.normals) > 0 {
		z = r.normals[0]
		r.normals = r.normals[1:]
	}
	return mean + z*stdDev
}

// Calls returns how many uniform and normal draws were consumed.
func (r *ScriptedRandom) Calls() (uniform, normal int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.uniformCalls, r.normalCalls
}
