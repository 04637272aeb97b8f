package domain

import "sort"

// Impact is a coarse label for how strongly a question decides the overall
// winner.
type Impact string

// Impact labels, from most to least outcome-determining.
const (
	ImpactHigh Impact = "HIGH"
	ImpactMed  Impact = "MED"
	ImpactLow  Impact = "LOW"
)

// Dominance weights.
const (
	FlipWeight  = 0.65
	ShareWeight = 0.35
)

// Report modes.
const (
	ModeSimulation = "simulation"
	ModeActuals    = "actuals"
)

// ImpactLabel classifies a question from its flip rate and winner share,
// both expressed as percentages. The result is monotonic in both inputs.
func ImpactLabel(flipPercent, winnerShare float64) Impact {
	if flipPercent >= 35 || winnerShare >= 12 {
		return ImpactHigh
	}
	if flipPercent >= 15 || winnerShare >= 6 {
		return ImpactMed
	}
	return ImpactLow
}

// Dominance combines flip rate and winner share into a single ranking metric.
func Dominance(flipPercent, winnerShare float64) float64 {
	return flipPercent*FlipWeight + winnerShare*ShareWeight
}

// BalanceRow reports how much one question influences who wins.
type BalanceRow struct {
	// ID is the question id.
	ID string `json:"id"`

	// FlipPercent is the share of seasons (0-100) in which removing this
	// question's points changes the winner.
	FlipPercent float64 `json:"flipPercent"`

	// WinnerShare is this question's share (percent) of the winner's total.
	WinnerShare float64 `json:"winnerShare"`

	// AvgWinner is the average points the winner earned from this question.
	AvgWinner float64 `json:"avgWinner"`

	// AvgPlayer is the average points any player earned from this question.
	AvgPlayer float64 `json:"avgPlayer"`

	// Dominance is FlipWeight*FlipPercent + ShareWeight*WinnerShare.
	Dominance float64 `json:"dominance"`

	// Impact is the HIGH/MED/LOW label derived from FlipPercent and WinnerShare.
	Impact Impact `json:"impact"`

	// WinnerFlips is true when the question flipped the winner at least once.
	WinnerFlips bool `json:"winnerFlips"`
}

// NewBalanceRow fills the derived columns of a row.
func NewBalanceRow(id string, flipPercent, winnerShare, avgWinner, avgPlayer float64) BalanceRow {
	return BalanceRow{
		ID:          id,
		FlipPercent: flipPercent,
		WinnerShare: winnerShare,
		AvgWinner:   avgWinner,
		AvgPlayer:   avgPlayer,
		Dominance:   Dominance(flipPercent, winnerShare),
		Impact:      ImpactLabel(flipPercent, winnerShare),
		WinnerFlips: flipPercent > 0,
	}
}

// SortByDominance orders rows by dominance, then flip rate, both descending.
// The sort is stable so equal rows keep catalog order.
func SortByDominance(rows []BalanceRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Dominance != rows[j].Dominance {
			return rows[i].Dominance > rows[j].Dominance
		}
		return rows[i].FlipPercent > rows[j].FlipPercent
	})
}

// SortByDominanceShare orders rows by dominance, then winner share, both
// descending. Group analysis uses it because every flip rate there is 0 or 100.
func SortByDominanceShare(rows []BalanceRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Dominance != rows[j].Dominance {
			return rows[i].Dominance > rows[j].Dominance
		}
		return rows[i].WinnerShare > rows[j].WinnerShare
	})
}

// BalanceReport is the output of a balance analysis: either a Monte Carlo
// simulation or a single season scored from stored answers.
type BalanceReport struct {
	// ID is a deterministic identifier derived from the run inputs.
	ID string `json:"id"`

	// Mode is ModeSimulation or ModeActuals.
	Mode string `json:"mode"`

	// Seed is the root seed of a simulation run.
	Seed uint32 `json:"seed"`

	// Players is the number of players per season.
	Players int `json:"players"`

	// Seasons is the number of simulated seasons.
	Seasons int `json:"seasons"`

	// QuestionCount is the catalog size.
	QuestionCount int `json:"questionCount"`

	// ScoredQuestionCount is the average number of questions with an actual
	// answer per season.
	ScoredQuestionCount int `json:"scoredQuestionCount"`

	// AvgTotalScore is the mean of all player totals.
	AvgTotalScore float64 `json:"avgTotalScore"`

	// StdTotalScore is the population standard deviation of player totals.
	StdTotalScore float64 `json:"stdTotalScore"`

	// AvgWinnerScore is the mean winning total.
	AvgWinnerScore float64 `json:"avgWinnerScore"`

	// Winner is the leaderboard leader in actuals mode.
	Winner *LeaderboardRow `json:"winner,omitempty"`

	// Rows are the per-question results ordered by SortByDominance.
	Rows []BalanceRow `json:"rows"`
}

// LeaderboardRow is one member's scored standing.
type LeaderboardRow struct {
	UserID     string             `json:"userId"`
	Name       string             `json:"name"`
	Total      float64            `json:"total"`
	ByQuestion map[string]float64 `json:"byQuestion"`
	Answers    map[string]string  `json:"answersByQuestion"`
}
