package application

import (
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-paddock/infrastructure/simulation"
	"github.com/ahrav/go-paddock/internal/domain"
)

// CatalogConfig is the declarative question catalog for one season. It is
// read from YAML or JSON, either as a document with a questions key or as
// a bare list of questions.
type CatalogConfig struct {
	// Version is an optional schema version in X.Y.Z form.
	Version string `yaml:"version,omitempty" validate:"omitempty,semver"`
	// Season is the championship year the catalog predicts.
	Season int `yaml:"season,omitempty" validate:"omitempty,min=1950,max=2100"`
	// Questions are the catalog entries in display order.
	Questions []QuestionConfig `yaml:"questions" validate:"required,min=1,dive"`
}

// QuestionConfig is one catalog entry as written by an operator. The
// points field is kept as a raw node because its shape depends on type:
// ranking and driver-value questions take an object, every other type a
// number.
type QuestionConfig struct {
	ID            string             `yaml:"id" validate:"required,questionid,max=100"`
	Type          string             `yaml:"type" validate:"required"`
	Prompt        string             `yaml:"prompt,omitempty" validate:"max=500"`
	Helper        string             `yaml:"helper,omitempty"`
	Options       []string           `yaml:"options,omitempty" validate:"dive,required"`
	OptionsSource string             `yaml:"options_source,omitempty" validate:"omitempty,optionsource"`
	Count         int                `yaml:"count,omitempty" validate:"gte=0,lte=24"`
	Points        yaml.Node          `yaml:"points,omitempty"`
	Penalty       *float64           `yaml:"penalty,omitempty"`
	Minimum       *float64           `yaml:"minimum,omitempty"`
	TieBonus      float64            `yaml:"tie_bonus,omitempty"`
	BonusPoints   float64            `yaml:"bonus_points,omitempty"`
	SpecialCase   string             `yaml:"special_case,omitempty" validate:"omitempty,oneof=all_podiums_bonus"`
	BonusValue    string             `yaml:"bonus_value,omitempty"`
	NearbyPoints  map[string]float64 `yaml:"position_nearby_points,omitempty"`
}

// Override adjusts one catalog entry without editing the catalog itself.
type Override struct {
	// Included set to false removes the question from the catalog.
	Included *bool `yaml:"included,omitempty" json:"included,omitempty"`
	// Points is a JSON number or object replacing the question's points.
	// Its shape must match the catalog's.
	Points string `yaml:"points,omitempty" json:"points,omitempty"`
}

// Excluded reports whether the override removes its question.
func (o Override) Excluded() bool {
	return o.Included != nil && !*o.Included
}

// RacesConfig is the season calendar document.
type RacesConfig struct {
	Races []string `yaml:"races" validate:"dive,required"`
}

// PriorsConfig holds the optional skill tables and season rules that
// replace the built-in 2026 defaults key by key.
type PriorsConfig struct {
	Priors simulation.Priors      `yaml:"priors"`
	Rules  simulation.SeasonRules `yaml:"rules"`
}

// SimulationConfig holds the parameters of a Monte Carlo balance run.
type SimulationConfig struct {
	// Players is the number of synthetic players per season.
	Players int `yaml:"players" validate:"min=1,max=5000"`
	// Seasons is the number of simulated seasons.
	Seasons int `yaml:"seasons" validate:"min=1,max=100000"`
	// Seed is the root seed. Nil draws a fresh seed, which the report records.
	Seed *uint32 `yaml:"seed,omitempty"`
	// Workers bounds concurrent seasons. Zero runs sequentially.
	Workers int `yaml:"workers,omitempty" validate:"gte=0,lte=256"`
	// Top limits printed rows. Zero prints every row.
	Top int `yaml:"top,omitempty" validate:"gte=0"`
}

// DefaultSimulationConfig mirrors the offline tool defaults.
func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{Players: 200, Seasons: 400, Workers: 1, Top: 12}
}

// Catalog is a compiled, validated question catalog. Catalogs are cached
// and shared; callers must not mutate the questions.
type Catalog struct {
	// Hash identifies the catalog inputs (config, roster, races, overrides).
	Hash string
	// Questions are the included questions in catalog order.
	Questions []domain.Question
	// Roster and Races are the inputs options were resolved against.
	Roster domain.Roster
	Races  []string

	byID map[string]domain.Question
}

// Question returns the question with the given id.
func (c *Catalog) Question(id string) (domain.Question, bool) {
	q, ok := c.byID[id]
	return q, ok
}

// suggestID returns the question id closest to id, or "" when none is close.
func (c *Catalog) suggestID(id string) string {
	ids := make([]string, len(c.Questions))
	for i, q := range c.Questions {
		ids[i] = q.ID()
	}
	return suggest(id, ids)
}
