package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/ahrav/go-paddock/internal/domain"
)

var (
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
)

// Column widths of the balance table.
const (
	idWidth      = 42
	impactWidth  = 6
	flipWidth    = 7
	shareWidth   = 9
	avgWinWidth  = 9
	avgPlayWidth = 8
)

var legend = []string{
	"Impact: quick risk label for dominance in final ranking.",
	"Flip%: in how many seasons the winner changes if this question is removed.",
	"Winner%: share of winner's total score coming from this question.",
	"Avg/win: average points winner gets from this question.",
	"Avg/p: average points all players get from this question.",
	"Practical guideline: keep most questions MED/LOW, and only a few HIGH.",
}

// printReport writes the report header, the top rows of the balance table
// and the legend. A top of zero prints every row.
func printReport(w io.Writer, report *domain.BalanceReport, top int) {
	title := "Scoring balance simulation"
	if report.Mode == domain.ModeActuals {
		title = "Scoring balance from actual answers"
	}
	fmt.Fprintf(w, "\n%s\n%s\n", bold(title), strings.Repeat("-", len(title)))
	if report.Mode == domain.ModeActuals {
		fmt.Fprintf(w, "Members           : %d\n", report.Players)
		if report.Winner != nil {
			fmt.Fprintf(w, "Leader            : %s (%s)\n", report.Winner.Name, formatPoints(report.Winner.Total))
		}
	} else {
		fmt.Fprintf(w, "Players per season: %d\n", report.Players)
		fmt.Fprintf(w, "Simulated seasons : %d\n", report.Seasons)
		fmt.Fprintf(w, "Seed              : %d\n", report.Seed)
	}
	fmt.Fprintf(w, "Scored questions  : %d of %d\n", report.ScoredQuestionCount, report.QuestionCount)
	fmt.Fprintf(w, "Report ID         : %s\n", gray(report.ID))
	fmt.Fprintf(w, "Average total/player: %.2f (+/- %.2f)\n", report.AvgTotalScore, report.StdTotalScore)
	fmt.Fprintf(w, "Average winner score: %.2f\n\n", report.AvgWinnerScore)

	fmt.Fprintf(w, "%s %s %s %s %s %s\n",
		padRight("Question ID", idWidth),
		padLeft("Impact", impactWidth),
		padLeft("Flip%", flipWidth),
		padLeft("Winner%", shareWidth),
		padLeft("Avg/win", avgWinWidth),
		padLeft("Avg/p", avgPlayWidth),
	)
	rows := report.Rows
	if top > 0 && top < len(rows) {
		rows = rows[:top]
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%s %s %s %s %s %s\n",
			padRight(r.ID, idWidth),
			colorImpact(r.Impact, padLeft(string(r.Impact), impactWidth)),
			padLeft(strconv.FormatFloat(r.FlipPercent, 'f', 1, 64), flipWidth),
			padLeft(strconv.FormatFloat(r.WinnerShare, 'f', 1, 64), shareWidth),
			padLeft(strconv.FormatFloat(r.AvgWinner, 'f', 2, 64), avgWinWidth),
			padLeft(strconv.FormatFloat(r.AvgPlayer, 'f', 2, 64), avgPlayWidth),
		)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "How to read:")
	for _, line := range legend {
		fmt.Fprintf(w, "- %s\n", line)
	}
}

// printLeaderboard writes the first n leaderboard rows with their biggest
// contributing questions. Zero prints every row.
func printLeaderboard(w io.Writer, rows []domain.LeaderboardRow, n int) {
	if n > 0 && n < len(rows) {
		rows = rows[:n]
	}
	fmt.Fprintf(w, "\n%s\n", bold("Leaderboard"))
	for i, r := range rows {
		fmt.Fprintf(w, "%3d. %s %s  %s\n",
			i+1, padRight(r.Name, 24), padLeft(formatPoints(r.Total), 7), gray(topContributors(r.ByQuestion, 3)))
	}
}

// topContributors lists the n questions that gave the most points, highest
// first, ties by id.
func topContributors(byQuestion map[string]float64, n int) string {
	ids := make([]string, 0, len(byQuestion))
	for id, pts := range byQuestion {
		if pts > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		if byQuestion[ids[i]] != byQuestion[ids[j]] {
			return byQuestion[ids[i]] > byQuestion[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if len(ids) > n {
		ids = ids[:n]
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%s %s", id, formatPoints(byQuestion[id]))
	}
	return strings.Join(parts, ", ")
}

func colorImpact(impact domain.Impact, s string) string {
	switch impact {
	case domain.ImpactHigh:
		return red(s)
	case domain.ImpactMed:
		return yellow(s)
	default:
		return green(s)
	}
}

// formatPoints prints whole points without a fraction.
func formatPoints(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// padRight pads s with spaces to width runes, truncating longer values.
func padRight(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return string([]rune(s)[:width])
	}
	return s + strings.Repeat(" ", width-n)
}

// padLeft right-aligns s in width runes. Longer values are kept whole.
func padLeft(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return strings.Repeat(" ", width-n) + s
}

func sortedKeys(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
