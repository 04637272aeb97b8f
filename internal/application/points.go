package application

import (
	"encoding/json"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-paddock/internal/domain"
)

// Points is a question's decoded points value: a single number or a keyed
// table, depending on the question type.
type Points struct {
	Scalar  float64
	Table   map[string]float64
	IsTable bool
	// Set is false when the entry omitted points entirely.
	Set bool
}

// pointsFromNode decodes the raw points node of a catalog entry.
func pointsFromNode(n yaml.Node) (Points, error) {
	switch n.Kind {
	case 0:
		return Points{}, nil
	case yaml.ScalarNode:
		var v float64
		if err := n.Decode(&v); err != nil {
			return Points{}, fmt.Errorf("points must be a number: %w", err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Points{}, fmt.Errorf("points must be finite")
		}
		return Points{Scalar: v, Set: true}, nil
	case yaml.MappingNode:
		var table map[string]float64
		if err := n.Decode(&table); err != nil {
			return Points{}, fmt.Errorf("points object must map keys to numbers: %w", err)
		}
		return Points{Table: table, IsTable: true, Set: true}, nil
	default:
		return Points{}, fmt.Errorf("points must be a number or an object")
	}
}

// pointsFromOverride parses an override value such as 10 or {"1st":50}.
func pointsFromOverride(raw string) (Points, error) {
	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return Points{}, fmt.Errorf(`points override must be valid JSON (for example: 10 or {"1st":50,"2nd":25})`)
	}
	switch v := parsed.(type) {
	case float64:
		return Points{Scalar: v, Set: true}, nil
	case map[string]any:
		table := make(map[string]float64, len(v))
		for key, item := range v {
			n, ok := item.(float64)
			if !ok {
				return Points{}, fmt.Errorf("points override %q must be a number", key)
			}
			table[key] = n
		}
		return Points{Table: table, IsTable: true, Set: true}, nil
	default:
		return Points{}, fmt.Errorf("points override must be a number or JSON object")
	}
}

// checkShape verifies that p has the shape the question type expects.
// Unset points are accepted for every type.
func checkShape(t domain.QuestionType, p Points) error {
	if !p.Set || !t.IsKnown() {
		return nil
	}
	if t.ExpectsPointsMap() && !p.IsTable {
		return fmt.Errorf("%w: this question expects points as a JSON object", domain.ErrPointsShape)
	}
	if !t.ExpectsPointsMap() && p.IsTable {
		return fmt.Errorf("%w: this question expects points as a number", domain.ErrPointsShape)
	}
	return nil
}
