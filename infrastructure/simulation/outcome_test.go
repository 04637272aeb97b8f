package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-paddock/internal/domain"
	"github.com/ahrav/go-paddock/internal/testutils"
)

func newSampleOutcome() *OutcomeGenerator {
	roster := testutils.SampleRoster()
	model := BuildSkillModel(roster, DefaultPriors())
	return NewOutcomeGenerator(model, roster, testutils.SampleRaces(), DefaultSeasonRules())
}

// With all noise removed the season follows the skill model exactly.
func TestOutcomeGenerator_NoiselessSeason(t *testing.T) {
	questions := testutils.SampleQuestions()
	actuals := newSampleOutcome().Generate(questions, testutils.NewScriptedRandom())

	tests := []struct {
		id   string
		want domain.Answer
	}{
		{QDriversTop3, domain.Ranking{{"Lando Norris"}, {"Oscar Piastri"}, {"Max Verstappen"}}},
		{QDriversLast, domain.Text("Franco Colapinto")},
		{QConstructorsLast, domain.Text("Cadillac")},
		{QAllTeamsScorePoints, domain.Text("yes")},
		{QUnderdogVsRivals, domain.Text("Less")},
		{QMostPointsNoPodium, domain.Text("Racing Bulls")},
		{QRaceBan, domain.ChoiceWithDriver{Choice: "no"}},
		{QLowestGridWin, domain.ValueWithDriver{Value: "3", Driver: "Lando Norris"}},
		{QClosestTeammates, domain.Text("McLaren")},
		{QRacesBeforeTitle, domain.Number(0)},
		{QFirstWinnerChampion, domain.Text("no")},
		{QPodiumPair, domain.Text("yes")},
		{"teammate_battle_antonelli_russell", domain.TeammateBattle{Winner: "George Russell", Diff: domain.Float(4)}},
	}
	for _, tc := range tests {
		t.Run(tc.id, func(t *testing.T) {
			assert.Equal(t, tc.want, actuals[tc.id])
		})
	}

	podium, ok := actuals[QAllPodiumFinishers].(domain.Selection)
	require.True(t, ok)
	assert.Len(t, podium, 11)
}

func TestOutcomeGenerator_AnswersFitTheirQuestions(t *testing.T) {
	questions := testutils.SampleQuestions()
	gen := newSampleOutcome()

	for seed := uint32(1); seed <= 50; seed++ {
		actuals := gen.Generate(questions, NewMulberry32(seed))
		require.Len(t, actuals, len(questions), "seed %d", seed)

		for _, q := range questions {
			a := actuals[q.ID()]
			_, err := domain.EncodeAnswer(q, a)
			require.NoError(t, err, "seed %d question %s", seed, q.ID())
		}

		counts, ok := actuals[QRaceDNFs].(domain.RaceCounts)
		require.True(t, ok)
		for race, n := range counts {
			assert.Contains(t, testutils.SampleRaces(), race)
			assert.GreaterOrEqual(t, n, 0.0)
			assert.LessOrEqual(t, n, 8.0)
		}

		grid := actuals[QLowestGridWin].(domain.ValueWithDriver)
		if grid.Value != "Pitlane" {
			n, ok := domain.ScalarNumber(domain.Text(grid.Value))
			require.True(t, ok)
			assert.GreaterOrEqual(t, n, 1.0)
			assert.LessOrEqual(t, n, 22.0)
		}

		title := actuals[QRacesBeforeTitle].(domain.Number)
		assert.GreaterOrEqual(t, float64(title), 0.0)
		assert.LessOrEqual(t, float64(title), 10.0)
	}
}

func TestOutcomeGenerator_Deterministic(t *testing.T) {
	questions := testutils.SampleQuestions()
	gen := newSampleOutcome()

	first := gen.Generate(questions, NewMulberry32(2026))
	second := gen.Generate(questions, NewMulberry32(2026))
	assert.Equal(t, first, second)
}

// Bespoke answers come from the season state alone, so dropping generic
// questions from the catalog leaves them unchanged.
func TestOutcomeGenerator_BespokeIndependentOfCatalog(t *testing.T) {
	questions := testutils.SampleQuestions()
	gen := newSampleOutcome()

	var bespokeOnly []domain.Question
	for _, q := range questions {
		if _, ok := gen.bespoke(q.ID(), &season{}); ok || q.Type() == domain.TypeTeammateBattle {
			bespokeOnly = append(bespokeOnly, q)
		}
	}
	require.Less(t, len(bespokeOnly), len(questions))

	full := gen.Generate(questions, NewMulberry32(11))
	subset := gen.Generate(bespokeOnly, NewMulberry32(11))
	for id, a := range subset {
		assert.Equal(t, full[id], a, id)
	}
}

func TestOutcomeGenerator_EdgeCases(t *testing.T) {
	t.Run("battle with one option has no actual", func(t *testing.T) {
		q := &domain.TeammateBattleQuestion{Base: domain.Base{QID: "tb", Choices: []string{"Lando Norris"}}, Points: 10}
		actuals := newSampleOutcome().Generate([]domain.Question{q}, NewMulberry32(1))
		assert.NotContains(t, actuals, "tb")
	})

	t.Run("unknown type has no actual", func(t *testing.T) {
		q := &domain.UnknownQuestion{Base: domain.Base{QID: "x"}, RawType: "slider"}
		actuals := newSampleOutcome().Generate([]domain.Question{q}, NewMulberry32(1))
		assert.Empty(t, actuals)
	})

	t.Run("no races means no race counts", func(t *testing.T) {
		roster := testutils.SampleRoster()
		gen := NewOutcomeGenerator(BuildSkillModel(roster, DefaultPriors()), roster, nil, DefaultSeasonRules())
		q := &domain.LimitedSelectQuestion{Base: domain.Base{QID: QRaceDNFs}, Count: 3, Points: 1}
		assert.Empty(t, gen.Generate([]domain.Question{q}, NewMulberry32(1)))
	})

	t.Run("generic limited question draws counts over its options", func(t *testing.T) {
		q := &domain.LimitedSelectQuestion{Base: domain.Base{QID: "sprint_dnfs", Choices: []string{"A", "B"}}, Count: 1, Points: 1}
		actuals := newSampleOutcome().Generate([]domain.Question{q}, NewMulberry32(1))
		counts, ok := actuals["sprint_dnfs"].(domain.RaceCounts)
		require.True(t, ok)
		assert.Len(t, counts, 2)
	})
}
