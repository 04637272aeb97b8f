package simulation

import (
	"math"
	"strconv"

	"github.com/ahrav/go-paddock/internal/domain"
	"github.com/ahrav/go-paddock/internal/ports"
)

// OutcomeGenerator produces synthetic "actual season" answers from the skill
// model. It holds no per-season state and is safe for concurrent use as long
// as each caller supplies its own RandomSource.
type OutcomeGenerator struct {
	env
}

// NewOutcomeGenerator creates a generator for one run.
func NewOutcomeGenerator(model *SkillModel, roster domain.Roster, races []string, rules SeasonRules) *OutcomeGenerator {
	return &OutcomeGenerator{env: env{model: model, roster: roster, races: races, rules: rules}}
}

// season is the hidden state of one synthetic season. All random draws
// happen while building it, in a fixed order, so the draws consumed do not
// depend on which questions the catalog contains.
type season struct {
	driverScore map[string]float64
	driverOrder []string
	teamScore   map[string]float64
	teamOrder   []string
	dnf         map[string]float64
	damage      map[string]float64
	driverOfDay map[string]float64
	podium      []string
	raceDNFs    domain.RaceCounts
	titleLead   float64

	lowestGrid       float64
	racesBeforeTitle float64
	raceBan          bool
	pitlaneWin       bool
	closest          map[string]float64
	firstWinnerChamp bool
	mercedesTop5     bool
	sprintSame       bool
	engineSwitch     bool
}

// Generate draws one season and returns the actual answer for every
// question in the catalog that can be resolved. Bespoke questions are
// derived from the season state; teammate battles compare the first two
// options; everything else gets a generic draw for its type, in catalog
// order.
func (g *OutcomeGenerator) Generate(questions []domain.Question, src ports.RandomSource) domain.SeasonActuals {
	s := g.draw(src)
	actuals := make(domain.SeasonActuals, len(questions))

	for _, q := range questions {
		var a domain.Answer
		if bespoke, ok := g.bespoke(q.ID(), s); ok {
			a = bespoke
		} else if tb, ok := q.(*domain.TeammateBattleQuestion); ok {
			a = g.battle(tb, s)
		} else if lq, ok := q.(*domain.LimitedSelectQuestion); ok {
			a = g.raceCounts(lq, src)
		} else {
			a = g.genericAnswer(q, src)
		}
		if a != nil {
			actuals[q.ID()] = a
		}
	}
	return actuals
}

func (g *OutcomeGenerator) draw(src ports.RandomSource) *season {
	m := g.model
	drivers, teams := m.Drivers, m.Teams
	s := &season{}

	s.driverScore = noisyScores(drivers, func(d string) float64 { return m.ExpectedDriver[d] },
		func() float64 { return src.Normal(0, 15) })
	s.driverOrder = rankByScore(drivers, s.driverScore, len(drivers), false)

	s.teamScore = make(map[string]float64, len(teams))
	for _, t := range teams {
		var sum float64
		for _, d := range m.TeamDrivers[t] {
			sum += s.driverScore[d]
		}
		s.teamScore[t] = sum
	}
	s.teamOrder = rankByScore(teams, s.teamScore, len(teams), false)

	s.dnf = make(map[string]float64, len(drivers))
	for _, d := range drivers {
		s.dnf[d] = math.Max(0, round((100-m.skill(d))/7.5+src.Normal(0, 2.4)))
	}
	s.damage = make(map[string]float64, len(drivers))
	for _, d := range drivers {
		s.damage[d] = s.dnf[d]*(0.9+(100-m.skill(d))/60) + math.Max(0, src.Normal(0, 1.4))
	}
	s.driverOfDay = noisyScores(drivers, func(d string) float64 { return m.ExpectedDriver[d] * 0.03 },
		func() float64 { return src.Normal(0, 0.8) })

	podiumCount := clamp(round(8+src.Float64()*6), 5, math.Min(16, float64(len(drivers))))
	s.podium = rankByScore(drivers, s.driverScore, int(podiumCount), false)

	s.raceDNFs = make(domain.RaceCounts, len(g.races))
	for _, r := range g.races {
		s.raceDNFs[r] = clamp(round(2.2+src.Normal(0, 1.4)), 0, 8)
	}

	s.lowestGrid = clamp(round(2.8+src.Normal(0, 2.2)), minGrid, maxGrid)
	if len(s.driverOrder) >= 2 {
		s.titleLead = math.Abs(s.driverScore[s.driverOrder[0]] - s.driverScore[s.driverOrder[1]])
	}
	s.racesBeforeTitle = clamp(round(s.titleLead/6+src.Normal(0, 1.8)), 0, 10)

	s.raceBan = src.Float64() < 0.22
	s.pitlaneWin = src.Float64() < 0.02

	s.closest = make(map[string]float64, len(teams))
	for _, t := range teams {
		pair := m.TeamDrivers[t]
		if len(pair) < 2 {
			s.closest[t] = noTeammate
			continue
		}
		diff := math.Abs(m.skill(pair[0]) - m.skill(pair[1]))
		s.closest[t] = -diff + src.Normal(0, 0.8)
	}

	s.firstWinnerChamp = src.Float64() < 0.24
	s.mercedesTop5 = src.Float64() < 0.5
	s.sprintSame = src.Float64() < clamp(0.42+s.titleLead/80, 0.2, 0.9)
	s.engineSwitch = src.Float64() < 0.46

	return s
}

// bespoke resolves a question id with a dedicated rule. ok is false for ids
// without one.
func (g *OutcomeGenerator) bespoke(id string, s *season) (domain.Answer, bool) {
	m := g.model
	switch id {
	case QDriversTop3:
		return nonEmptyRanking(head(s.driverOrder, 3)), true
	case QDriversLast:
		return text(last(s.driverOrder)), true
	case QConstructorsTop3:
		return nonEmptyRanking(head(s.teamOrder, 3)), true
	case QConstructorsLast:
		return text(last(s.teamOrder)), true
	case QAllTeamsScorePoints:
		all := true
		for _, t := range m.Teams {
			if s.teamScore[t] <= 0 {
				all = false
				break
			}
		}
		return yesNo(all), true
	case QMostDriverOfTheDay:
		return text(top(m.Drivers, s.driverOfDay, false)), true
	case QMostDNFsDriver:
		return text(top(m.Drivers, s.dnf, false)), true
	case QDestructorsTeam:
		damage := make(map[string]float64, len(m.Teams))
		for _, t := range m.Teams {
			for _, d := range m.TeamDrivers[t] {
				damage[t] += s.damage[d]
			}
		}
		return text(top(m.Teams, damage, false)), true
	case QDestructorsDriver:
		return text(top(m.Drivers, s.damage, false)), true
	case QAllPodiumFinishers:
		if len(s.podium) == 0 {
			return nil, true
		}
		return domain.Selection(append([]string(nil), s.podium...)), true
	case QUnderdogVsRivals:
		var rivals float64
		for _, t := range g.rules.UnderdogRivals {
			rivals += s.teamScore[t]
		}
		if s.teamScore[g.rules.UnderdogTeam] > rivals {
			return domain.Text("More"), true
		}
		return domain.Text("Less"), true
	case QMostPointsNoPodium:
		onPodium := make(map[string]bool, len(s.podium))
		for _, d := range s.podium {
			onPodium[m.DriverTeam[d]] = true
		}
		var without []string
		for _, t := range m.Teams {
			if !onPodium[t] {
				without = append(without, t)
			}
		}
		if len(without) == 0 {
			return domain.Text(g.rules.AllPodiumsLabel), true
		}
		return text(top(without, s.teamScore, false)), true
	case QRaceBan:
		if !s.raceBan {
			return domain.ChoiceWithDriver{Choice: "no"}, true
		}
		risk := make(map[string]float64, len(m.Drivers))
		for _, d := range m.Drivers {
			risk[d] = s.dnf[d] + (100-m.skill(d))/10
		}
		return domain.ChoiceWithDriver{Choice: "yes", Driver: top(m.Drivers, risk, false)}, true
	case QLowestGridWin:
		value := strconv.FormatFloat(s.lowestGrid, 'f', -1, 64)
		if s.pitlaneWin {
			value = "Pitlane"
		}
		return domain.ValueWithDriver{Value: value, Driver: first(s.driverOrder)}, true
	case QRaceDNFs:
		if len(s.raceDNFs) == 0 {
			return nil, true
		}
		return s.raceDNFs, true
	case QClosestTeammates:
		return text(top(m.Teams, s.closest, false)), true
	case QRacesBeforeTitle:
		return domain.Number(s.racesBeforeTitle), true
	case QFirstWinnerChampion:
		return yesNo(s.firstWinnerChamp), true
	case QMercedesEnginesTop5:
		return yesNo(s.mercedesTop5), true
	case QPodiumPair:
		pair := m.TeamDrivers[g.rules.PodiumPairTeam]
		both := len(pair) >= 2 && contains(s.podium, pair[0]) && contains(s.podium, pair[1])
		return yesNo(both), true
	case QSprintChampionSame:
		return yesNo(s.sprintSame), true
	case QTeamEngineSwitch:
		return yesNo(s.engineSwitch), true
	default:
		return nil, false
	}
}

// battle compares the season scores of the question's two drivers. The
// margin is three times the score gap, rounded.
func (g *OutcomeGenerator) battle(q *domain.TeammateBattleQuestion, s *season) domain.Answer {
	left, right, ok := q.Pair()
	if !ok {
		return nil
	}
	ls, rs := s.driverScore[left], s.driverScore[right]
	if ls == rs {
		return domain.TeammateBattle{Winner: domain.TieWinner, Diff: domain.Float(0)}
	}
	winner := right
	if ls > rs {
		winner = left
	}
	return domain.TeammateBattle{Winner: winner, Diff: domain.Float(round(math.Abs(ls-rs) * 3))}
}

// raceCounts draws per-race counts for a limited selection question other
// than the bespoke retirement one.
func (g *OutcomeGenerator) raceCounts(q *domain.LimitedSelectQuestion, src ports.RandomSource) domain.Answer {
	races := g.options(q)
	if len(races) == 0 {
		races = g.races
	}
	if len(races) == 0 {
		return nil
	}
	counts := make(domain.RaceCounts, len(races))
	for _, r := range races {
		counts[r] = clamp(round(2.2+src.Normal(0, 1.4)), 0, 8)
	}
	return counts
}

func head(values []string, n int) []string {
	if n > len(values) {
		n = len(values)
	}
	return values[:n]
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func last(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[len(values)-1]
}

func nonEmptyRanking(values []string) domain.Answer {
	if len(values) == 0 {
		return nil
	}
	return toRanking(values)
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
