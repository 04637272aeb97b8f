package simulation

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/ahrav/go-paddock/internal/domain"
	"github.com/ahrav/go-paddock/internal/ports"
)

// env is the read-only context shared by the outcome and predictor
// generators within one run.
type env struct {
	model  *SkillModel
	roster domain.Roster
	races  []string
	rules  SeasonRules
}

// options returns the question's options extended with its roster source.
func (e *env) options(q domain.Question) []string {
	return domain.DedupeOptions(q.Options(), e.roster.Values(q.OptionSource(), e.races))
}

// isStreetRace reports whether race matches one of the configured fragments,
// ignoring case.
func (e *env) isStreetRace(race string) bool {
	folded := cases.Fold().String(race)
	for _, fragment := range e.rules.StreetRaces {
		if fragment != "" && strings.Contains(folded, cases.Fold().String(fragment)) {
			return true
		}
	}
	return false
}

// genericAnswer draws a type-appropriate answer for a question without a
// bespoke rule. It returns nil when the question offers nothing to pick.
func (e *env) genericAnswer(q domain.Question, src ports.RandomSource) domain.Answer {
	options := e.options(q)

	switch v := q.(type) {
	case *domain.RankingQuestion:
		if len(options) == 0 {
			return nil
		}
		return toRanking(uniqueSubset(src, options, v.SlotCount()))

	case *domain.ChoiceQuestion:
		if v.Kind == domain.TypeSingleChoice {
			return text(randomOne(src, options))
		}
		if pick := randomOne(src, options); pick != "" {
			return domain.Text(pick)
		}
		return domain.Text("Simulated answer " + strconv.Itoa(randomInt(src, 1, 999)))

	case *domain.MultiSelectQuestion:
		if len(options) == 0 {
			return nil
		}
		count := randomInt(src, 1, max(1, min(6, len(options))))
		return domain.Selection(uniqueSubset(src, options, count))

	case *domain.LimitedSelectQuestion:
		if len(e.races) == 0 {
			return nil
		}
		return domain.Selection(uniqueSubset(src, e.races, limitedCount(v)))

	case *domain.TeammateBattleQuestion:
		winners := domain.DedupeOptions(v.Options())
		if len(winners) == 0 {
			return nil
		}
		if src.Float64() < 0.1 {
			return domain.TeammateBattle{Winner: domain.TieWinner, Diff: domain.Float(0)}
		}
		winner := randomOne(src, winners)
		return domain.TeammateBattle{Winner: winner, Diff: domain.Float(float64(randomInt(src, 0, 220)))}

	case *domain.BooleanDriverQuestion:
		if src.Float64() < 0.5 {
			return domain.ChoiceWithDriver{Choice: "yes", Driver: randomOne(src, e.roster.Drivers)}
		}
		return domain.ChoiceWithDriver{Choice: "no"}

	case *domain.ValueDriverQuestion:
		if v.Kind == domain.TypeNumericWithDriver {
			value := strconv.Itoa(randomInt(src, 0, 30))
			return domain.ValueWithDriver{Value: value, Driver: randomOne(src, e.roster.Drivers)}
		}
		value := randomOne(src, options)
		return domain.ValueWithDriver{Value: value, Driver: randomOne(src, e.roster.Drivers)}

	case *domain.BooleanQuestion:
		return yesNo(src.Float64() < 0.5)

	case *domain.NumericQuestion:
		return domain.Number(randomInt(src, 0, 30))

	default:
		return nil
	}
}

func limitedCount(q *domain.LimitedSelectQuestion) int {
	if q.Count <= 0 {
		return 3
	}
	return q.Count
}
