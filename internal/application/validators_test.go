package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-paddock/internal/domain"
)

// TestValidators_Tags exercises the custom tags through small structs.
func TestValidators_Tags(t *testing.T) {
	v, err := newValidator()
	require.NoError(t, err)

	type semverHolder struct {
		Version string `validate:"semver"`
	}
	type idHolder struct {
		ID string `validate:"questionid"`
	}
	type sourceHolder struct {
		Source string `validate:"optionsource"`
	}

	tests := []struct {
		name  string
		value any
		valid bool
	}{
		{"semver", semverHolder{"1.0.0"}, true},
		{"semver large", semverHolder{"10.20.30"}, true},
		{"semver missing patch", semverHolder{"1.0"}, false},
		{"semver words", semverHolder{"one"}, false},
		{"id snake case", idHolder{"drivers_championship_top_3"}, true},
		{"id dashes", idHolder{"mini-q1"}, true},
		{"id leading underscore", idHolder{"_hidden"}, false},
		{"id spaces", idHolder{"bad id"}, false},
		{"id empty", idHolder{""}, false},
		{"source drivers", sourceHolder{"drivers"}, true},
		{"source teams", sourceHolder{"teams"}, true},
		{"source races", sourceHolder{"races"}, true},
		{"source unknown", sourceHolder{"sponsors"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.value)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidateSimulationConfig(t *testing.T) {
	seed := uint32(7)
	tests := []struct {
		name    string
		mutate  func(*SimulationConfig)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*SimulationConfig) {}},
		{name: "with seed", mutate: func(c *SimulationConfig) { c.Seed = &seed }},
		{name: "sequential", mutate: func(c *SimulationConfig) { c.Workers = 0 }},
		{name: "no players", mutate: func(c *SimulationConfig) { c.Players = 0 }, wantErr: true},
		{name: "no seasons", mutate: func(c *SimulationConfig) { c.Seasons = 0 }, wantErr: true},
		{name: "too many players", mutate: func(c *SimulationConfig) { c.Players = 5001 }, wantErr: true},
		{name: "negative workers", mutate: func(c *SimulationConfig) { c.Workers = -1 }, wantErr: true},
		{name: "negative top", mutate: func(c *SimulationConfig) { c.Top = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultSimulationConfig()
			tt.mutate(&cfg)
			err := ValidateSimulationConfig(cfg)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidSimulation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
