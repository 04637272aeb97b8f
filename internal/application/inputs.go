package application

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-paddock/infrastructure/simulation"
	"github.com/ahrav/go-paddock/internal/domain"
	"github.com/ahrav/go-paddock/internal/ports"
)

// Input file keys used in ConfigError.
const (
	keyRoster    = "roster"
	keyRaces     = "races"
	keyPriors    = "priors"
	keyOverrides = "overrides"
	keyGroup     = "group"
)

// readInput reads path and wraps failures in a ConfigError for key.
func readInput(key, path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ports.NewConfigError(key, fmt.Errorf("%w: %s", ports.ErrConfigNotFound, path))
		}
		return nil, ports.NewConfigError(key, err)
	}
	return data, nil
}

// decodeStrict decodes YAML or JSON into out, rejecting unknown fields.
// An empty document leaves out untouched.
func decodeStrict(data []byte, out any) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", ports.ErrUnsupportedFormat, err)
	}
	return nil
}

// ParseRoster decodes a {drivers, teams} document.
func ParseRoster(data []byte) (domain.Roster, error) {
	var roster domain.Roster
	if err := decodeStrict(data, &roster); err != nil {
		return domain.Roster{}, ports.NewConfigError(keyRoster, err)
	}
	roster.Drivers = domain.DedupeOptions(roster.Drivers)
	roster.Teams = domain.DedupeOptions(roster.Teams)
	return roster, nil
}

// LoadRoster reads the roster file at path.
func LoadRoster(path string) (domain.Roster, error) {
	data, err := readInput(keyRoster, path)
	if err != nil {
		return domain.Roster{}, err
	}
	return ParseRoster(data)
}

// ParseRaces decodes the calendar, given either as a bare list or as a
// document with a races key.
func ParseRaces(data []byte) ([]string, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, ports.NewConfigError(keyRaces, fmt.Errorf("%w: %v", ports.ErrUnsupportedFormat, err))
	}
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 && root.Content[0].Kind == yaml.SequenceNode {
		var races []string
		if err := root.Content[0].Decode(&races); err != nil {
			return nil, ports.NewConfigError(keyRaces, err)
		}
		return domain.DedupeOptions(races), nil
	}

	var config RacesConfig
	if err := decodeStrict(data, &config); err != nil {
		return nil, ports.NewConfigError(keyRaces, err)
	}
	return domain.DedupeOptions(config.Races), nil
}

// LoadRaces reads the calendar file at path.
func LoadRaces(path string) ([]string, error) {
	data, err := readInput(keyRaces, path)
	if err != nil {
		return nil, err
	}
	return ParseRaces(data)
}

// ParsePriors decodes and validates a priors document.
func ParsePriors(data []byte) (PriorsConfig, error) {
	var config PriorsConfig
	if err := decodeStrict(data, &config); err != nil {
		return PriorsConfig{}, ports.NewConfigError(keyPriors, err)
	}
	v, err := newValidator()
	if err != nil {
		return PriorsConfig{}, err
	}
	if err := v.Struct(config); err != nil {
		return PriorsConfig{}, ports.NewConfigError(keyPriors, fmt.Errorf("%w: %v", domain.ErrInvalidConfiguration, err))
	}
	return config, nil
}

// LoadPriors reads the priors file at path.
func LoadPriors(path string) (PriorsConfig, error) {
	data, err := readInput(keyPriors, path)
	if err != nil {
		return PriorsConfig{}, err
	}
	return ParsePriors(data)
}

// ParseOverrides decodes a map of question id to Override.
func ParseOverrides(data []byte) (map[string]Override, error) {
	overrides := make(map[string]Override)
	if err := decodeStrict(data, &overrides); err != nil {
		return nil, ports.NewConfigError(keyOverrides, err)
	}
	return overrides, nil
}

// LoadOverrides reads the overrides file at path.
func LoadOverrides(path string) (map[string]Override, error) {
	data, err := readInput(keyOverrides, path)
	if err != nil {
		return nil, err
	}
	return ParseOverrides(data)
}

// ParseGroup decodes members and actuals. Member names default to their
// user id.
func ParseGroup(data []byte) (domain.GroupInput, error) {
	var group domain.GroupInput
	if err := decodeStrict(data, &group); err != nil {
		return domain.GroupInput{}, ports.NewConfigError(keyGroup, err)
	}
	for i := range group.Members {
		if group.Members[i].Name == "" {
			group.Members[i].Name = group.Members[i].UserID
		}
	}
	return group, nil
}

// LoadGroup reads the group file at path.
func LoadGroup(path string) (domain.GroupInput, error) {
	data, err := readInput(keyGroup, path)
	if err != nil {
		return domain.GroupInput{}, err
	}
	return ParseGroup(data)
}

// simulationPriors returns nil pointers for an unset config so the
// simulator applies its defaults.
func simulationPriors(cfg *PriorsConfig) (*simulation.Priors, *simulation.SeasonRules) {
	if cfg == nil {
		return nil, nil
	}
	priors, rules := cfg.Priors, cfg.Rules
	return &priors, &rules
}
