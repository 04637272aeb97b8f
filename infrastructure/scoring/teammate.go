package scoring

import (
	"math"

	"github.com/ahrav/go-paddock/internal/domain"
)

// scoreTeammateBattle awards the tie bonus for a correctly called tie. For a
// decided battle the winner must match and the points decay by the distance
// between the predicted and actual margins.
func scoreTeammateBattle(q *domain.TeammateBattleQuestion, predicted, actual domain.Answer) float64 {
	act, ok := actual.(domain.TeammateBattle)
	if !ok || act.Winner == "" {
		return 0
	}
	pred, ok := predicted.(domain.TeammateBattle)
	if !ok {
		return 0
	}

	if act.Winner == domain.TieWinner {
		return award(pred.Winner == domain.TieWinner, q.TieBonus)
	}
	if pred.Winner != act.Winner || act.Diff == nil || pred.Diff == nil {
		return 0
	}
	return math.Max(0, q.Points-math.Abs(*pred.Diff-*act.Diff))
}
