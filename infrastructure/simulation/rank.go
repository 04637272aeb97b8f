package simulation

import (
	"sort"

	"github.com/ahrav/go-paddock/internal/domain"
)

// rankByScore returns the top count values ordered by score, descending
// unless ascending is set. Missing scores count as zero. Ties keep input
// order. At least one value is returned when values is non-empty.
func rankByScore(values []string, score map[string]float64, count int, ascending bool) []string {
	ordered := append([]string(nil), values...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ascending {
			return score[ordered[i]] < score[ordered[j]]
		}
		return score[ordered[i]] > score[ordered[j]]
	})
	if count < 1 {
		count = 1
	}
	if count > len(ordered) {
		count = len(ordered)
	}
	return ordered[:count]
}

// top returns the single best value, or "" when values is empty.
func top(values []string, score map[string]float64, ascending bool) string {
	ranked := rankByScore(values, score, 1, ascending)
	if len(ranked) == 0 {
		return ""
	}
	return ranked[0]
}

// noisyScores scores each value as base(value) plus Gaussian noise, drawing
// in value order.
func noisyScores(values []string, base func(string) float64, noise func() float64) map[string]float64 {
	scores := make(map[string]float64, len(values))
	for _, v := range values {
		scores[v] = base(v) + noise()
	}
	return scores
}

func toRanking(values []string) domain.Ranking {
	r := make(domain.Ranking, len(values))
	for i, v := range values {
		r[i] = domain.Slot{v}
	}
	return r
}

// text wraps a picked value, mapping "" to an absent answer.
func text(v string) domain.Answer {
	if v == "" {
		return nil
	}
	return domain.Text(v)
}

func yesNo(yes bool) domain.Text {
	if yes {
		return "yes"
	}
	return "no"
}
