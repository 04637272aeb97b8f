package scoring

import (
	"math"

	"github.com/ahrav/go-paddock/internal/domain"
)

// scoreMultiSelect rewards correct picks and charges the penalty for every
// wrong pick and every missed value. Repeated values count once. The result
// never drops below the question's minimum.
func scoreMultiSelect(q *domain.MultiSelectQuestion, predicted, actual domain.Answer) float64 {
	pred, ok := predicted.(domain.Selection)
	if !ok {
		return 0
	}
	act, ok := actual.(domain.Selection)
	if !ok {
		return 0
	}

	predSet := toSet(pred)
	actSet := toSet(act)

	var correct, wrong, missing int
	for item := range predSet {
		if _, hit := actSet[item]; hit {
			correct++
		} else {
			wrong++
		}
	}
	for item := range actSet {
		if _, hit := predSet[item]; !hit {
			missing++
		}
	}

	score := float64(correct)*q.Points - float64(wrong+missing)*q.Penalty
	return math.Max(q.Minimum, score)
}

// scoreLimitedSelect sums the actual per-race count for every predicted race.
// Races without a count contribute nothing; there is no penalty.
func scoreLimitedSelect(q *domain.LimitedSelectQuestion, predicted, actual domain.Answer) float64 {
	pred, ok := predicted.(domain.Selection)
	if !ok {
		return 0
	}
	counts, ok := actual.(domain.RaceCounts)
	if !ok {
		return 0
	}

	var total float64
	for _, race := range pred {
		total += counts[race] * q.Points
	}
	return total
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
