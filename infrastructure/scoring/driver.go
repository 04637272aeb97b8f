package scoring

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/ahrav/go-paddock/internal/domain"
)

// PitlaneGrid is the grid number a pit lane start normalizes to.
const PitlaneGrid = 23

// scoreBooleanDriver awards the base points for a matching choice, plus the
// bonus when the actual choice is "yes" and the named drivers agree. A
// matching driver alone earns nothing.
func scoreBooleanDriver(q *domain.BooleanDriverQuestion, predicted, actual domain.Answer) float64 {
	act, ok := actual.(domain.ChoiceWithDriver)
	if !ok || act.Choice == "" {
		return 0
	}
	pred, ok := predicted.(domain.ChoiceWithDriver)
	if !ok || pred.Choice == "" || pred.Choice != act.Choice {
		return 0
	}

	score := q.Points
	if act.Choice == "yes" && act.Driver != "" && act.Driver == pred.Driver {
		score += q.BonusPoints
	}
	return score
}

// scoreValueDriver scores the value and the driver independently. Only
// single_choice_with_driver questions award nearby-position points.
func scoreValueDriver(q *domain.ValueDriverQuestion, predicted, actual domain.Answer) float64 {
	act, ok := actual.(domain.ValueWithDriver)
	if !ok {
		return 0
	}
	pred, ok := predicted.(domain.ValueWithDriver)
	if !ok {
		return 0
	}

	var score float64
	if act.Value != "" && pred.Value != "" {
		if act.Value == pred.Value {
			score += q.PositionPoints
		} else if q.Kind == domain.TypeSingleChoiceWithDriver && len(q.NearbyPoints) > 0 {
			score += nearbyPoints(q.NearbyPoints, act.Value, pred.Value)
		}
	}
	if act.Driver != "" && act.Driver == pred.Driver {
		score += q.DriverPoints
	}
	return score
}

func nearbyPoints(table map[int]float64, actual, predicted string) float64 {
	a, ok := GridNumber(actual)
	if !ok {
		return 0
	}
	p, ok := GridNumber(predicted)
	if !ok {
		return 0
	}
	diff := math.Abs(a - p)
	if diff != math.Trunc(diff) {
		return 0
	}
	if pts := table[int(diff)]; pts > 0 {
		return pts
	}
	return 0
}

// GridNumber normalizes a grid position answer. "Pitlane" and "pit lane"
// map to PitlaneGrid regardless of case; anything else must parse as a
// finite number.
func GridNumber(value string) (float64, bool) {
	raw := cases.Fold().String(strings.TrimSpace(value))
	if raw == "" {
		return 0, false
	}
	if raw == "pitlane" || raw == "pit lane" {
		return PitlaneGrid, true
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
