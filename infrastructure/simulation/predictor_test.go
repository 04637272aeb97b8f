package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-paddock/internal/domain"
	"github.com/ahrav/go-paddock/internal/testutils"
)

func newSamplePredictor() *Predictor {
	roster := testutils.SampleRoster()
	model := BuildSkillModel(roster, DefaultPriors())
	return NewPredictor(model, roster, testutils.SampleRaces(), DefaultSeasonRules())
}

var expert = Profile{Knowledge: 0.9, Boldness: 0.5}

func predict(t *testing.T, id string, src *testutils.ScriptedRandom) domain.Answer {
	t.Helper()
	q := testutils.QuestionByID(testutils.SampleQuestions(), id)
	require.NotNil(t, q, id)
	return newSamplePredictor().Predict(q, expert, src)
}

// Without noise a player forecasts the skill model's expectation.
func TestPredictor_NoiselessForecasts(t *testing.T) {
	tests := []struct {
		id   string
		want domain.Answer
	}{
		{QDriversTop3, domain.Ranking{{"Lando Norris"}, {"Oscar Piastri"}, {"Max Verstappen"}}},
		{QDriversLast, domain.Text("Franco Colapinto")},
		{QConstructorsLast, domain.Text("Cadillac")},
		{QAllTeamsScorePoints, domain.Text("no")},
		{QClosestTeammates, domain.Text("McLaren")},
		{QRacesBeforeTitle, domain.Number(0)},
		{QLowestGridWin, domain.ValueWithDriver{Value: "4", Driver: "Lando Norris"}},
		{QRaceBan, domain.ChoiceWithDriver{Choice: "no"}},
		{QUnderdogVsRivals, domain.Text("Less")},
		{"teammate_battle_antonelli_russell", domain.TeammateBattle{Winner: "George Russell", Diff: domain.Float(4)}},
		{QRaceDNFs, domain.Selection{"Monaco Grand Prix", "Azerbaijan Grand Prix", "Singapore Grand Prix"}},
	}
	for _, tc := range tests {
		t.Run(tc.id, func(t *testing.T) {
			assert.Equal(t, tc.want, predict(t, tc.id, testutils.NewScriptedRandom()))
		})
	}
}

func TestPredictor_PodiumSetGrowsWithKnowledge(t *testing.T) {
	q := testutils.QuestionByID(testutils.SampleQuestions(), QAllPodiumFinishers)
	p := newSamplePredictor()

	expertPick := p.Predict(q, Profile{Knowledge: 0.9}, testutils.NewScriptedRandom())
	novicePick := p.Predict(q, Profile{Knowledge: 0.2}, testutils.NewScriptedRandom())

	assert.Len(t, expertPick, 12)
	assert.Len(t, novicePick, 8)
}

func TestPredictor_TeammateBattleTie(t *testing.T) {
	// The first uniform decides the tie call.
	got := predict(t, "teammate_battle_antonelli_russell", testutils.NewScriptedRandom(0.01))
	assert.Equal(t, domain.TeammateBattle{Winner: domain.TieWinner, Diff: domain.Float(0)}, got)
}

func TestPredictor_MostPointsNoPodiumLabel(t *testing.T) {
	got := predict(t, QMostPointsNoPodium, testutils.NewScriptedRandom(0.01))
	assert.Equal(t, domain.Text(testutils.AllPodiumsLabel), got)

	got = predict(t, QMostPointsNoPodium, testutils.NewScriptedRandom())
	assert.Contains(t, testutils.SampleRoster().Teams, string(got.(domain.Text)))
}

func TestPredictor_RaceBanNamesRiskiestDriver(t *testing.T) {
	got := predict(t, QRaceBan, testutils.NewScriptedRandom(0.01))
	assert.Equal(t, domain.ChoiceWithDriver{Choice: "yes", Driver: "Franco Colapinto"}, got)
}

func TestPredictor_LowestGridPitlane(t *testing.T) {
	got := predict(t, QLowestGridWin, testutils.NewScriptedRandom(0.01))
	assert.Equal(t, "Pitlane", got.(domain.ValueWithDriver).Value)
}

func TestPredictor_DestructorsRoulette(t *testing.T) {
	teams := testutils.SampleRoster().Teams
	for _, u := range []float64{0, 0.25, 0.5, 0.75, 0.999999} {
		got := predict(t, QDestructorsTeam, testutils.NewScriptedRandom(u))
		assert.Contains(t, teams, string(got.(domain.Text)), "roll %v", u)
	}
	// A zero roll stops at the first team with weight.
	assert.Equal(t, domain.Text(teams[0]), predict(t, QDestructorsTeam, testutils.NewScriptedRandom(0)))
}

func TestPickBoolean(t *testing.T) {
	tests := []struct {
		name    string
		prior   float64
		uniform float64
		want    domain.Text
	}{
		{"likely yes", 0.9, 0.8, "yes"},
		{"unlikely no", 0.1, 0.2, "no"},
		{"coin flip below", 0.5, 0.49, "yes"},
		{"coin flip above", 0.5, 0.51, "no"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src := testutils.NewScriptedRandom(tc.uniform)
			assert.Equal(t, tc.want, pickBoolean(tc.prior, expert, src))
		})
	}
}

func TestPredictor_AnswersFitTheirQuestions(t *testing.T) {
	questions := testutils.SampleQuestions()
	p := newSamplePredictor()

	for seed := uint32(1); seed <= 50; seed++ {
		src := NewMulberry32(seed)
		profile := NewProfile(src)
		for _, q := range questions {
			a := p.Predict(q, profile, src)
			require.NotNil(t, a, "seed %d question %s", seed, q.ID())
			_, err := domain.EncodeAnswer(q, a)
			require.NoError(t, err, "seed %d question %s", seed, q.ID())
		}
	}
}

func TestPredictor_GenericFallbacks(t *testing.T) {
	p := newSamplePredictor()
	src := NewMulberry32(3)

	text := &domain.ChoiceQuestion{Base: domain.Base{QID: "free"}, Kind: domain.TypeText}
	got, ok := p.Predict(text, expert, src).(domain.Text)
	require.True(t, ok)
	assert.Contains(t, string(got), "Simulated answer ")

	multi := &domain.MultiSelectQuestion{Base: domain.Base{QID: "multi", Choices: []string{"a", "b", "c"}}}
	sel, ok := p.Predict(multi, expert, src).(domain.Selection)
	require.True(t, ok)
	assert.NotEmpty(t, sel)
	assert.LessOrEqual(t, len(sel), 3)

	num, ok := p.Predict(&domain.NumericQuestion{Base: domain.Base{QID: "n"}}, expert, src).(domain.Number)
	require.True(t, ok)
	assert.GreaterOrEqual(t, float64(num), 0.0)
	assert.LessOrEqual(t, float64(num), 30.0)

	assert.Nil(t, p.Predict(&domain.UnknownQuestion{Base: domain.Base{QID: "u"}, RawType: "slider"}, expert, src))
	assert.Nil(t, p.Predict(&domain.RankingQuestion{Base: domain.Base{QID: "empty"}}, expert, src))
}
