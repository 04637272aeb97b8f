package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// EncodeAnswer serializes an answer into its stored form for question q.
// Composite shapes are written as JSON, numbers in their canonical decimal
// form, and scalars verbatim. A nil answer encodes to the empty string.
func EncodeAnswer(q Question, a Answer) (string, error) {
	if a == nil {
		return "", nil
	}
	switch v := a.(type) {
	case Text:
		if q.Type() == TypeNumeric {
			n, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
			if err != nil {
				return "", fmt.Errorf("%w: question %s expects a number, got %q", ErrAnswerShape, q.ID(), string(v))
			}
			return Number(n).String(), nil
		}
		if needsQuoting(string(v)) {
			data, err := json.Marshal(string(v))
			if err != nil {
				return "", fmt.Errorf("marshal answer for %s: %w", q.ID(), err)
			}
			return string(data), nil
		}
		return string(v), nil
	case Number:
		return v.String(), nil
	case Ranking, Selection, RaceCounts, TeammateBattle, ChoiceWithDriver, ValueWithDriver:
		if !acceptsComposite(q.Type(), a) {
			return "", fmt.Errorf("%w: %T is not a valid answer for %s question %s", ErrAnswerShape, a, q.Type(), q.ID())
		}
		data, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("marshal answer for %s: %w", q.ID(), err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: unsupported answer %T", ErrAnswerShape, a)
	}
}

// DecodeAnswer parses a stored answer for question q. Empty, null or
// undecodable input yields nil, which every scoring rule treats as absent.
func DecodeAnswer(q Question, raw string) Answer {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "null" {
		return nil
	}

	switch q.Type() {
	case TypeRanking:
		var r Ranking
		if json.Unmarshal([]byte(trimmed), &r) != nil {
			return nil
		}
		return r
	case TypeMultiSelect:
		var s Selection
		if json.Unmarshal([]byte(trimmed), &s) != nil {
			return nil
		}
		return s
	case TypeMultiSelectLimited:
		return decodeLimited([]byte(trimmed))
	case TypeTeammateBattle:
		var t TeammateBattle
		if !isObject(trimmed) || json.Unmarshal([]byte(trimmed), &t) != nil {
			return nil
		}
		return t
	case TypeBooleanWithOptionalDriver:
		var c ChoiceWithDriver
		if !isObject(trimmed) || json.Unmarshal([]byte(trimmed), &c) != nil {
			return nil
		}
		return c
	case TypeNumericWithDriver, TypeSingleChoiceWithDriver:
		var v ValueWithDriver
		if !isObject(trimmed) || json.Unmarshal([]byte(trimmed), &v) != nil {
			return nil
		}
		return v
	case TypeNumeric:
		n, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil
		}
		return Number(n)
	default:
		if strings.HasPrefix(trimmed, `"`) {
			var s string
			if json.Unmarshal([]byte(trimmed), &s) == nil {
				return Text(s)
			}
		}
		// Actual answers for choice questions may list several accepted values.
		if strings.HasPrefix(trimmed, "[") {
			var s Selection
			if json.Unmarshal([]byte(trimmed), &s) == nil {
				return s
			}
		}
		return Text(raw)
	}
}

// decodeLimited distinguishes a predicted race list from an actual
// per-race count object.
func decodeLimited(data []byte) Answer {
	switch {
	case bytes.HasPrefix(data, []byte("[")):
		var s Selection
		if json.Unmarshal(data, &s) != nil {
			return nil
		}
		return s
	case bytes.HasPrefix(data, []byte("{")):
		var r RaceCounts
		if json.Unmarshal(data, &r) != nil {
			return nil
		}
		return r
	default:
		return nil
	}
}

func isObject(s string) bool { return strings.HasPrefix(s, "{") }

// needsQuoting reports whether scalar text would be read back as a list or a
// quoted string. Such text is stored as a JSON string literal.
func needsQuoting(s string) bool {
	trimmed := strings.TrimSpace(s)
	return strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, `"`)
}

func acceptsComposite(t QuestionType, a Answer) bool {
	switch a.(type) {
	case Ranking:
		return t == TypeRanking
	case Selection:
		switch t {
		case TypeMultiSelect, TypeMultiSelectLimited, TypeSingleChoice, TypeText, TypeTextarea, TypeBoolean:
			return true
		}
		return false
	case RaceCounts:
		return t == TypeMultiSelectLimited
	case TeammateBattle:
		return t == TypeTeammateBattle
	case ChoiceWithDriver:
		return t == TypeBooleanWithOptionalDriver
	case ValueWithDriver:
		return t == TypeNumericWithDriver || t == TypeSingleChoiceWithDriver
	default:
		return false
	}
}

// ScalarString returns the string form of a scalar answer. ok is false for
// nil and composite answers.
func ScalarString(a Answer) (string, bool) {
	switch v := a.(type) {
	case Text:
		return string(v), true
	case Number:
		return v.String(), true
	default:
		return "", false
	}
}

// ScalarNumber returns the numeric value of a scalar answer, parsing text
// answers. ok is false when the answer is absent, composite, or not numeric.
func ScalarNumber(a Answer) (float64, bool) {
	switch v := a.(type) {
	case Number:
		return float64(v), true
	case Text:
		n, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
