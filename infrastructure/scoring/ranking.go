package scoring

import "github.com/ahrav/go-paddock/internal/domain"

// scoreRanking awards the slot's points for every position where the
// predicted value equals the actual one, or is among the actual values when
// the position is shared. Missing slots on either side contribute nothing.
func scoreRanking(q *domain.RankingQuestion, predicted, actual domain.Answer) float64 {
	pred, ok := asRanking(predicted)
	if !ok {
		return 0
	}
	act, ok := asRanking(actual)
	if !ok {
		return 0
	}

	var score float64
	for i := 0; i < q.SlotCount(); i++ {
		if i >= len(pred) || i >= len(act) {
			break
		}
		if len(pred[i]) == 0 || len(act[i]) == 0 {
			continue
		}
		if act[i].Contains(pred[i][0]) {
			score += q.Points[domain.SlotLabel(i)]
		}
	}
	return score
}

// asRanking accepts a Ranking or a plain ordered Selection.
func asRanking(a domain.Answer) (domain.Ranking, bool) {
	switch v := a.(type) {
	case domain.Ranking:
		return v, true
	case domain.Selection:
		r := make(domain.Ranking, len(v))
		for i, s := range v {
			if s != "" {
				r[i] = domain.Slot{s}
			}
		}
		return r, true
	default:
		return nil, false
	}
}
