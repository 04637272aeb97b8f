// Package domain contains pure, dependency-free domain models and types
// for the scoring and balance-simulation engine.
package domain

import "strconv"

// QuestionType is the wire tag that selects how a question is answered and
// scored. The set of known tags is closed; anything else decodes to
// UnknownQuestion and scores zero.
type QuestionType string

// Known question types.
const (
	TypeRanking                   QuestionType = "ranking"
	TypeSingleChoice              QuestionType = "single_choice"
	TypeText                      QuestionType = "text"
	TypeTextarea                  QuestionType = "textarea"
	TypeBoolean                   QuestionType = "boolean"
	TypeMultiSelect               QuestionType = "multi_select"
	TypeMultiSelectLimited        QuestionType = "multi_select_limited"
	TypeTeammateBattle            QuestionType = "teammate_battle"
	TypeBooleanWithOptionalDriver QuestionType = "boolean_with_optional_driver"
	TypeNumericWithDriver         QuestionType = "numeric_with_driver"
	TypeSingleChoiceWithDriver    QuestionType = "single_choice_with_driver"
	TypeNumeric                   QuestionType = "numeric"
)

// KnownTypes lists every question type the engine can score, in a stable order.
var KnownTypes = []QuestionType{
	TypeRanking,
	TypeSingleChoice,
	TypeText,
	TypeTextarea,
	TypeBoolean,
	TypeMultiSelect,
	TypeMultiSelectLimited,
	TypeTeammateBattle,
	TypeBooleanWithOptionalDriver,
	TypeNumericWithDriver,
	TypeSingleChoiceWithDriver,
	TypeNumeric,
}

// IsKnown reports whether t is one of KnownTypes.
func (t QuestionType) IsKnown() bool {
	for _, known := range KnownTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ExpectsPointsMap reports whether the type carries its points as a keyed
// object rather than a single number.
func (t QuestionType) ExpectsPointsMap() bool {
	switch t {
	case TypeRanking, TypeNumericWithDriver, TypeSingleChoiceWithDriver:
		return true
	default:
		return false
	}
}

// OptionsSource names a roster list that supplies a question's options at
// catalog build time.
type OptionsSource string

// Supported option sources.
const (
	SourceNone    OptionsSource = ""
	SourceDrivers OptionsSource = "drivers"
	SourceTeams   OptionsSource = "teams"
	SourceRaces   OptionsSource = "races"
)

// SpecialCaseAllPodiumsBonus switches a choice question into the
// "every team scored a podium" bonus rule.
const SpecialCaseAllPodiumsBonus = "all_podiums_bonus"

// RankingLabels maps slot index to the key used in a ranking question's
// points object.
var RankingLabels = []string{"1st", "2nd", "3rd", "4th", "5th"}

// DefaultRankingCount is used when a ranking question omits count.
const DefaultRankingCount = 3

// Question is the closed sum type of catalog questions. Each variant carries
// only the fields its scoring rule needs. The unexported marker method keeps
// the set of variants fixed to this package.
type Question interface {
	// ID returns the unique question identifier.
	ID() string
	// Type returns the question's wire tag.
	Type() QuestionType
	// Options returns the resolved candidate values in catalog order.
	Options() []string
	// OptionSource returns the roster list that extends the options, if any.
	OptionSource() OptionsSource
	isQuestion()
}

// Base holds the fields shared by every variant.
type Base struct {
	// QID uniquely identifies the question within a catalog.
	QID string `json:"id"`
	// Prompt is the human-readable question text.
	Prompt string `json:"prompt,omitempty"`
	// Choices are the resolved candidate values, deduplicated, in order.
	Choices []string `json:"options,omitempty"`
	// Source is the roster list the choices were extended from, if any.
	Source OptionsSource `json:"options_source,omitempty"`
}

// ID returns the unique question identifier.
func (b Base) ID() string { return b.QID }

// Options returns the resolved candidate values.
func (b Base) Options() []string { return b.Choices }

// OptionSource returns the roster list the choices were extended from.
func (b Base) OptionSource() OptionsSource { return b.Source }

// RankingQuestion awards positional points for each slot predicted exactly.
type RankingQuestion struct {
	Base
	// Count is the number of ranked slots.
	Count int `json:"count"`
	// Points maps slot labels ("1st".."5th") to points.
	Points map[string]float64 `json:"points"`
}

// ChoiceQuestion covers single_choice, text and textarea questions. Only
// single_choice and text score; textarea is collected but always scores zero.
type ChoiceQuestion struct {
	Base
	// Kind is one of TypeSingleChoice, TypeText or TypeTextarea.
	Kind   QuestionType `json:"type"`
	Points float64      `json:"points"`
	// SpecialCase enables an override rule such as SpecialCaseAllPodiumsBonus.
	SpecialCase string  `json:"special_case,omitempty"`
	BonusValue  string  `json:"bonus_value,omitempty"`
	BonusPoints float64 `json:"bonus_points,omitempty"`
}

// BooleanQuestion awards points for a matching yes/no.
type BooleanQuestion struct {
	Base
	Points float64 `json:"points"`
}

// MultiSelectQuestion rewards correct picks and penalizes wrong and missing ones.
type MultiSelectQuestion struct {
	Base
	Points  float64 `json:"points"`
	Penalty float64 `json:"penalty"`
	Minimum float64 `json:"minimum"`
}

// LimitedSelectQuestion scores a handful of picked races by their actual
// per-race counts.
type LimitedSelectQuestion struct {
	Base
	Count  int     `json:"count"`
	Points float64 `json:"points"`
}

// TeammateBattleQuestion scores the winner of a two-driver battle and how
// close the predicted margin was.
type TeammateBattleQuestion struct {
	Base
	Points   float64 `json:"points"`
	TieBonus float64 `json:"tie_bonus"`
}

// Pair returns the two drivers in the battle, taken from the first two
// options. ok is false when fewer than two options are configured.
func (q *TeammateBattleQuestion) Pair() (left, right string, ok bool) {
	if len(q.Choices) < 2 {
		return "", "", false
	}
	return q.Choices[0], q.Choices[1], true
}

// BooleanDriverQuestion is a yes/no question with an optional driver bonus
// that only applies to a correct "yes".
type BooleanDriverQuestion struct {
	Base
	Points      float64 `json:"points"`
	BonusPoints float64 `json:"bonus_points"`
}

// ValueDriverQuestion covers numeric_with_driver and single_choice_with_driver.
type ValueDriverQuestion struct {
	Base
	// Kind is TypeNumericWithDriver or TypeSingleChoiceWithDriver.
	Kind           QuestionType `json:"type"`
	PositionPoints float64      `json:"position_points"`
	DriverPoints   float64      `json:"driver_points"`
	// NearbyPoints maps absolute grid distance to a consolation bonus.
	// Only honored for single_choice_with_driver.
	NearbyPoints map[int]float64 `json:"position_nearby_points,omitempty"`
}

// NumericQuestion awards points for an exact numeric match.
type NumericQuestion struct {
	Base
	Points float64 `json:"points"`
}

// UnknownQuestion preserves a catalog entry whose type the engine does not
// recognize. It always scores zero.
type UnknownQuestion struct {
	Base
	RawType string `json:"type"`
}

// Type implementations.

func (q *RankingQuestion) Type() QuestionType        { return TypeRanking }
func (q *ChoiceQuestion) Type() QuestionType         { return q.Kind }
func (q *BooleanQuestion) Type() QuestionType        { return TypeBoolean }
func (q *MultiSelectQuestion) Type() QuestionType    { return TypeMultiSelect }
func (q *LimitedSelectQuestion) Type() QuestionType  { return TypeMultiSelectLimited }
func (q *TeammateBattleQuestion) Type() QuestionType { return TypeTeammateBattle }
func (q *BooleanDriverQuestion) Type() QuestionType  { return TypeBooleanWithOptionalDriver }
func (q *ValueDriverQuestion) Type() QuestionType    { return q.Kind }
func (q *NumericQuestion) Type() QuestionType        { return TypeNumeric }
func (q *UnknownQuestion) Type() QuestionType        { return QuestionType(q.RawType) }

func (*RankingQuestion) isQuestion()        {}
func (*ChoiceQuestion) isQuestion()         {}
func (*BooleanQuestion) isQuestion()        {}
func (*MultiSelectQuestion) isQuestion()    {}
func (*LimitedSelectQuestion) isQuestion()  {}
func (*TeammateBattleQuestion) isQuestion() {}
func (*BooleanDriverQuestion) isQuestion()  {}
func (*ValueDriverQuestion) isQuestion()    {}
func (*NumericQuestion) isQuestion()        {}
func (*UnknownQuestion) isQuestion()        {}

// SlotCount returns the number of ranked slots, applying the default.
func (q *RankingQuestion) SlotCount() int {
	if q.Count <= 0 {
		return DefaultRankingCount
	}
	return q.Count
}

// SlotLabel returns the points key for slot i (zero based).
func SlotLabel(i int) string {
	if i >= 0 && i < len(RankingLabels) {
		return RankingLabels[i]
	}
	return strconv.Itoa(i + 1)
}
