package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Answer is the closed sum type of predicted and actual answer values. A nil
// Answer means "absent" and scores zero under every question type.
type Answer interface {
	isAnswer()
}

// Text is a scalar answer compared by its string form: single choice, text,
// and boolean ("yes"/"no") questions.
type Text string

// Number is a numeric scalar answer.
type Number float64

// Slot is one ranked position. A predicted slot holds a single value; an
// actual slot may hold several values when positions are shared, in which
// case containment counts as a match. An empty slot is missing.
type Slot []string

// Ranking is an ordered list of slots.
type Ranking []Slot

// Selection is a set of values represented as a list in pick order.
type Selection []string

// RaceCounts is the actual value of a limited multi-select question: a
// per-race count such as retirements.
type RaceCounts map[string]float64

// TeammateBattle is the {winner, diff} composite. Diff is nil when it was
// not supplied or not a finite number.
type TeammateBattle struct {
	Winner string
	Diff   *float64
}

// ChoiceWithDriver is the {choice, driver} composite used by
// boolean_with_optional_driver questions.
type ChoiceWithDriver struct {
	Choice string
	Driver string
}

// ValueWithDriver is the {value, driver} composite used by
// numeric_with_driver and single_choice_with_driver questions.
type ValueWithDriver struct {
	Value  string
	Driver string
}

// SeasonActuals maps question ids to one season's actual answers. A question
// without an entry has no actual and is not scored.
type SeasonActuals map[string]Answer

// TieWinner is the teammate battle winner value that denotes a draw.
const TieWinner = "tie"

func (Text) isAnswer()             {}
func (Number) isAnswer()           {}
func (Ranking) isAnswer()          {}
func (Selection) isAnswer()        {}
func (RaceCounts) isAnswer()       {}
func (TeammateBattle) isAnswer()   {}
func (ChoiceWithDriver) isAnswer() {}
func (ValueWithDriver) isAnswer()  {}

// Float returns a pointer to v, for building TeammateBattle literals.
func Float(v float64) *float64 { return &v }

// String formats a number the way stored numeric answers are written.
func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

// Contains reports whether value is one of the slot's values.
func (s Slot) Contains(value string) bool {
	for _, v := range s {
		if v == value {
			return true
		}
	}
	return false
}

// MarshalJSON writes a single-valued slot as a bare string and a shared slot
// as an array.
func (s Slot) MarshalJSON() ([]byte, error) {
	switch len(s) {
	case 0:
		return []byte("null"), nil
	case 1:
		return json.Marshal(s[0])
	default:
		return json.Marshal([]string(s))
	}
}

// UnmarshalJSON accepts null, a scalar, or an array of scalars.
func (s *Slot) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*s = nil
	case []any:
		out := make(Slot, 0, len(v))
		for _, item := range v {
			if str, ok := coerceString(item); ok {
				out = append(out, str)
			}
		}
		*s = out
	default:
		str, ok := coerceString(v)
		if !ok {
			return fmt.Errorf("ranking slot: unsupported value %v", v)
		}
		*s = Slot{str}
	}
	return nil
}

// UnmarshalJSON accepts an array whose items may be null, scalars, or arrays.
func (s *Selection) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Selection, 0, len(raw))
	for _, item := range raw {
		if str, ok := coerceString(item); ok {
			out = append(out, str)
		}
	}
	*s = out
	return nil
}

type raceCountsWire struct {
	DNFByRace map[string]any `json:"dnf_by_race"`
}

// MarshalJSON writes {"dnf_by_race": {...}}.
func (r RaceCounts) MarshalJSON() ([]byte, error) {
	byRace := make(map[string]float64, len(r))
	for race, n := range r {
		byRace[race] = n
	}
	return json.Marshal(struct {
		DNFByRace map[string]float64 `json:"dnf_by_race"`
	}{byRace})
}

// UnmarshalJSON reads {"dnf_by_race": {...}}; non-numeric counts are dropped.
func (r *RaceCounts) UnmarshalJSON(data []byte) error {
	var wire raceCountsWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	out := make(RaceCounts, len(wire.DNFByRace))
	for race, v := range wire.DNFByRace {
		if n, ok := coerceFloat(v); ok {
			out[race] = n
		}
	}
	*r = out
	return nil
}

// MarshalJSON writes {"winner": ..., "diff": ...}.
func (t TeammateBattle) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Winner string   `json:"winner"`
		Diff   *float64 `json:"diff"`
	}{t.Winner, t.Diff})
}

// UnmarshalJSON accepts diff as a number or a numeric string.
func (t *TeammateBattle) UnmarshalJSON(data []byte) error {
	var wire struct {
		Winner any `json:"winner"`
		Diff   any `json:"diff"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	winner, _ := coerceString(wire.Winner)
	t.Winner = winner
	t.Diff = nil
	if d, ok := coerceFloat(wire.Diff); ok {
		t.Diff = &d
	}
	return nil
}

// MarshalJSON writes {"choice": ..., "driver": ...} with a null driver when empty.
func (c ChoiceWithDriver) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Choice string  `json:"choice"`
		Driver *string `json:"driver"`
	}{c.Choice, optional(c.Driver)})
}

// UnmarshalJSON tolerates null and non-string members.
func (c *ChoiceWithDriver) UnmarshalJSON(data []byte) error {
	var wire struct {
		Choice any `json:"choice"`
		Driver any `json:"driver"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	c.Choice, _ = coerceString(wire.Choice)
	c.Driver, _ = coerceString(wire.Driver)
	return nil
}

// MarshalJSON writes {"value": ..., "driver": ...}.
func (v ValueWithDriver) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Value  *string `json:"value"`
		Driver *string `json:"driver"`
	}{optional(v.Value), optional(v.Driver)})
}

// UnmarshalJSON accepts the value as a number or a string.
func (v *ValueWithDriver) UnmarshalJSON(data []byte) error {
	var wire struct {
		Value  any `json:"value"`
		Driver any `json:"driver"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	v.Value, _ = coerceString(wire.Value)
	v.Driver, _ = coerceString(wire.Driver)
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// coerceString converts a decoded JSON scalar to its string form. Arrays,
// objects and null are rejected.
func coerceString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(x), true
	case json.Number:
		return x.String(), true
	default:
		return "", false
	}
}

// coerceFloat converts a decoded JSON scalar to a finite float.
func coerceFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
