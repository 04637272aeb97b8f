package simulation

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/ahrav/go-paddock/internal/domain"
	"github.com/ahrav/go-paddock/internal/ports"
)

// Predictor produces synthetic player forecasts. Like OutcomeGenerator it is
// safe for concurrent use when every caller brings its own RandomSource.
type Predictor struct {
	env
}

// NewPredictor creates a predictor for one run.
func NewPredictor(model *SkillModel, roster domain.Roster, races []string, rules SeasonRules) *Predictor {
	return &Predictor{env: env{model: model, roster: roster, races: races, rules: rules}}
}

// Predict returns one forecast for q from a player with the given profile.
// Questions tied to a skill-model quantity are ranked by expected score plus
// noise that shrinks with knowledge; yes/no questions use a prior pulled
// toward certainty by knowledge; anything else falls back to a generic draw.
func (p *Predictor) Predict(q domain.Question, profile Profile, src ports.RandomSource) domain.Answer {
	m := p.model
	drivers, teams := m.Drivers, m.Teams
	noise := profile.noise()
	gauss := func(sd float64) func() float64 { return func() float64 { return src.Normal(0, sd) } }
	expDriver := func(d string) float64 { return m.ExpectedDriver[d] }
	expTeam := func(t string) float64 { return m.ExpectedTeam[t] }
	risk := func(d string) float64 { return 100 - m.skill(d) }

	switch q.ID() {
	case QDriversTop3:
		return nonEmptyRanking(rankByScore(drivers, noisyScores(drivers, expDriver, gauss(noise)), 3, false))
	case QDriversLast:
		return text(top(drivers, noisyScores(drivers, expDriver, gauss(noise)), true))
	case QConstructorsTop3:
		return nonEmptyRanking(rankByScore(teams, noisyScores(teams, expTeam, gauss(noise*0.8)), 3, false))
	case QConstructorsLast:
		return text(top(teams, noisyScores(teams, expTeam, gauss(noise*0.8)), true))
	case QAllTeamsScorePoints:
		return pickBoolean(0.44, profile, src)
	case QMostDriverOfTheDay:
		return text(top(drivers, noisyScores(drivers, expDriver, gauss(noise*0.55)), false))
	case QMostDNFsDriver, QDestructorsDriver:
		return text(top(drivers, noisyScores(drivers, risk, gauss(noise*0.7)), false))
	case QDestructorsTeam:
		return text(p.destructorsTeam(profile, src))
	case QAllPodiumFinishers:
		scores := noisyScores(drivers, expDriver, gauss(noise*0.55))
		count := clamp(round(7+profile.Knowledge*5+src.Normal(0, 1.8)), 4, math.Min(16, float64(len(drivers))))
		picked := rankByScore(drivers, scores, int(count), false)
		if len(picked) == 0 {
			return nil
		}
		return domain.Selection(picked)
	}

	if tb, ok := q.(*domain.TeammateBattleQuestion); ok {
		return p.battle(tb, profile, src)
	}

	switch q.ID() {
	case QUnderdogVsRivals:
		var rivals float64
		for _, t := range p.rules.UnderdogRivals {
			rivals += m.ExpectedTeam[t]
		}
		prior := 0.12
		if m.ExpectedTeam[p.rules.UnderdogTeam] > rivals {
			prior = 0.6
		}
		pMore := clamp(prior+(profile.Boldness-0.5)*0.08, 0.02, 0.95)
		if src.Float64() < pMore {
			return domain.Text("More")
		}
		return domain.Text("Less")
	case QMostPointsNoPodium:
		return p.mostPointsNoPodium(q, profile, src)
	case QRaceBan:
		if pickBoolean(0.22, profile, src) != "yes" {
			return domain.ChoiceWithDriver{Choice: "no"}
		}
		return domain.ChoiceWithDriver{Choice: "yes", Driver: top(drivers, noisyScores(drivers, risk, gauss(noise*0.7)), false)}
	case QLowestGridWin:
		return p.lowestGridWin(q, profile, src)
	case QRaceDNFs:
		scores := noisyScores(p.races, func(r string) float64 {
			if p.isStreetRace(r) {
				return 3
			}
			return 1
		}, gauss((1-profile.Knowledge)*1.2))
		count := 3
		if lq, ok := q.(*domain.LimitedSelectQuestion); ok {
			count = limitedCount(lq)
		}
		picked := rankByScore(p.races, scores, count, false)
		if len(picked) == 0 {
			return nil
		}
		return domain.Selection(picked)
	case QClosestTeammates:
		scores := make(map[string]float64, len(teams))
		for _, t := range teams {
			pair := m.TeamDrivers[t]
			if len(pair) < 2 {
				scores[t] = noTeammate
				continue
			}
			scores[t] = -math.Abs(m.skill(pair[0])-m.skill(pair[1])) + src.Normal(0, noise*0.2)
		}
		return text(top(teams, scores, false))
	case QRacesBeforeTitle:
		top2 := rankByScore(drivers, m.ExpectedDriver, 2, false)
		var lead float64
		if len(top2) == 2 {
			lead = math.Abs(m.ExpectedDriver[top2[0]] - m.ExpectedDriver[top2[1]])
		}
		return domain.Number(clamp(round(lead/4.2+src.Normal(0, 1.7+(1-profile.Knowledge))), 0, 10))
	case QFirstWinnerChampion:
		return pickBoolean(0.24, profile, src)
	case QMercedesEnginesTop5:
		return pickBoolean(0.48, profile, src)
	case QPodiumPair:
		return pickBoolean(0.66, profile, src)
	case QSprintChampionSame:
		return pickBoolean(0.56, profile, src)
	case QTeamEngineSwitch:
		return pickBoolean(0.52, profile, src)
	}

	return p.genericAnswer(q, src)
}

// pickBoolean answers "yes" with a probability pulled from 0.5 toward prior;
// the pull grows with knowledge.
func pickBoolean(prior float64, profile Profile, src ports.RandomSource) domain.Text {
	pull := 0.55 + profile.Knowledge*0.85
	p := clamp(0.5+(prior-0.5)*pull+src.Normal(0, 0.06), 0.02, 0.98)
	return yesNo(src.Float64() < p)
}

// destructorsTeam spins a roulette weighted by each team's risk: weaker
// teams and less skilled line-ups weigh more, with volatility growing as
// knowledge drops and boldness rises.
func (p *Predictor) destructorsTeam(profile Profile, src ports.RandomSource) string {
	m := p.model
	teams := m.Teams

	ordered := rankByScore(teams, m.ExpectedTeam, len(teams), true)
	rankOf := make(map[string]int, len(ordered))
	for i, t := range ordered {
		rankOf[t] = i
	}
	lastIndex := math.Max(1, float64(len(ordered)-1))
	volatility := 0.08 + (1-profile.Knowledge)*0.22 + profile.Boldness*0.1

	weights := make([]float64, len(teams))
	var total float64
	for i, t := range teams {
		rankRisk := 1 - float64(rankOf[t])/lastIndex
		avgSkill := m.defaultSkill
		if line := m.TeamDrivers[t]; len(line) > 0 {
			var sum float64
			for _, d := range line {
				sum += m.skill(d)
			}
			avgSkill = sum / float64(len(line))
		}
		driverRisk := clamp((100-avgSkill)/28, 0.05, 1.2)
		riskScore := clamp(0.62*rankRisk+0.38*driverRisk+src.Normal(0, volatility), 0.01, 1.5)
		weights[i] = math.Max(0.01, math.Pow(riskScore, 0.9))
		total += weights[i]
	}

	if total <= 0 {
		return randomOne(src, teams)
	}
	roll := src.Float64() * total
	for i, t := range teams {
		roll -= weights[i]
		if roll <= 0 {
			return t
		}
	}
	return last(teams)
}

// battle predicts a teammate battle. Close expected scores make a tie call
// likelier, and less knowledgeable players see a wider tie window.
func (p *Predictor) battle(q *domain.TeammateBattleQuestion, profile Profile, src ports.RandomSource) domain.Answer {
	left, right, ok := q.Pair()
	if !ok {
		return nil
	}
	noise := profile.noise()
	spread := math.Max(0.35, noise*0.12)
	ls := p.model.ExpectedDriver[left] + src.Normal(0, spread)
	rs := p.model.ExpectedDriver[right] + src.Normal(0, spread)
	gap := math.Abs(ls - rs)

	tieWindow := clamp(0.35+(1-profile.Knowledge)*0.55, 0.35, 0.9)
	tieChance := 0.06
	if gap < tieWindow {
		tieChance = clamp(0.72-gap/(tieWindow*1.5), 0.12, 0.72)
	}

	if src.Float64() < tieChance {
		return domain.TeammateBattle{Winner: domain.TieWinner, Diff: domain.Float(0)}
	}
	winner := right
	if ls > rs {
		winner = left
	}
	diff := math.Max(0, round(gap*3+src.Normal(0, noise*0.45)))
	return domain.TeammateBattle{Winner: winner, Diff: domain.Float(diff)}
}

// mostPointsNoPodium favors strong teams that are unlikely to reach the
// podium. Rarely it calls the all-podiums outcome instead.
func (p *Predictor) mostPointsNoPodium(q domain.Question, profile Profile, src ports.RandomSource) domain.Answer {
	m := p.model
	teams := m.Teams
	label := p.allPodiumsLabel(q)

	ordered := rankByScore(teams, m.ExpectedTeam, len(teams), false)
	rankOf := make(map[string]int, len(ordered))
	for i, t := range ordered {
		rankOf[t] = i
	}
	lastIndex := math.Max(1, float64(len(ordered)-1))

	scores := make(map[string]float64, len(teams))
	for _, t := range teams {
		podiumChance := clamp(0.88-(float64(rankOf[t])/lastIndex)*0.78, 0.1, 0.88)
		scores[t] = m.ExpectedTeam[t]*(1-podiumChance) + src.Normal(0, profile.noise()*0.45)
	}

	likely := top(teams, scores, false)
	if likely == "" {
		likely = label
	}
	if src.Float64() < 0.03 {
		return domain.Text(label)
	}
	return domain.Text(likely)
}

// allPodiumsLabel returns the option spelling of the all-podiums answer,
// falling back to the configured label.
func (p *Predictor) allPodiumsLabel(q domain.Question) string {
	needle := cases.Fold().String(p.rules.AllPodiumsLabel)
	for _, o := range p.options(q) {
		if strings.Contains(cases.Fold().String(o), needle) {
			return o
		}
	}
	return p.rules.AllPodiumsLabel
}

// lowestGridWin predicts a low grid slot within the numeric option range,
// plus the most likely winner.
func (p *Predictor) lowestGridWin(q domain.Question, profile Profile, src ports.RandomSource) domain.Answer {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, o := range p.options(q) {
		if strings.EqualFold(o, "pitlane") {
			continue
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(o), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			continue
		}
		lo, hi = math.Min(lo, n), math.Max(hi, n)
	}
	if math.IsInf(lo, 1) {
		lo, hi = minGrid, maxGrid
	}

	mean := 3.3 + (1-profile.Knowledge)*2.2 + src.Normal(0, 1.7)
	position := clamp(round(mean), lo, hi)
	value := strconv.FormatFloat(position, 'f', -1, 64)
	if src.Float64() < 0.02 {
		value = "Pitlane"
	}

	m := p.model
	scores := noisyScores(m.Drivers, func(d string) float64 { return m.ExpectedDriver[d] },
		func() float64 { return src.Normal(0, profile.noise()*0.65) })
	return domain.ValueWithDriver{Value: value, Driver: top(m.Drivers, scores, false)}
}
