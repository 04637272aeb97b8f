// Package scoring converts a (question, predicted, actual) triple into
// points. Every rule is a pure function: no state, no randomness, no I/O,
// so Score is safe for concurrent use and idempotent.
package scoring

import (
	"github.com/ahrav/go-paddock/internal/domain"
)

// Score returns the points earned by predicted against actual for q. A nil
// answer on either side scores zero, as does any answer whose shape does not
// fit the question and any question of an unknown type.
func Score(q domain.Question, predicted, actual domain.Answer) float64 {
	if q == nil || predicted == nil || actual == nil {
		return 0
	}

	switch v := q.(type) {
	case *domain.RankingQuestion:
		return scoreRanking(v, predicted, actual)
	case *domain.ChoiceQuestion:
		return scoreChoice(v, predicted, actual)
	case *domain.BooleanQuestion:
		return award(matches(actual, predicted), v.Points)
	case *domain.MultiSelectQuestion:
		return scoreMultiSelect(v, predicted, actual)
	case *domain.LimitedSelectQuestion:
		return scoreLimitedSelect(v, predicted, actual)
	case *domain.TeammateBattleQuestion:
		return scoreTeammateBattle(v, predicted, actual)
	case *domain.BooleanDriverQuestion:
		return scoreBooleanDriver(v, predicted, actual)
	case *domain.ValueDriverQuestion:
		return scoreValueDriver(v, predicted, actual)
	case *domain.NumericQuestion:
		return scoreNumeric(v, predicted, actual)
	case *domain.UnknownQuestion:
		return 0
	default:
		return 0
	}
}

// ScoreEncoded decodes both stored answers for q and scores them.
// Undecodable answers are treated as absent.
func ScoreEncoded(q domain.Question, predicted, actual string) float64 {
	return Score(q, domain.DecodeAnswer(q, predicted), domain.DecodeAnswer(q, actual))
}

func award(ok bool, points float64) float64 {
	if ok {
		return points
	}
	return 0
}

// matches compares two scalar answers by string form. When the actual answer
// is a set of accepted values, containment counts as a match.
func matches(actual, predicted domain.Answer) bool {
	want, ok := domain.ScalarString(predicted)
	if !ok {
		return false
	}
	if set, isSet := actual.(domain.Selection); isSet {
		return contains(set, want)
	}
	got, ok := domain.ScalarString(actual)
	return ok && got == want
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
