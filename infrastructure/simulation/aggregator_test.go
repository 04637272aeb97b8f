package simulation

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-paddock/internal/domain"
	"github.com/ahrav/go-paddock/internal/testutils"
)

type recordingMetrics struct {
	mu       sync.Mutex
	counters map[string]float64
	gauges   map[string]float64
	latency  map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		counters: map[string]float64{},
		gauges:   map[string]float64{},
		latency:  map[string]int{},
	}
}

func (m *recordingMetrics) RecordLatency(op string, _ time.Duration, _ map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latency[op]++
}

func (m *recordingMetrics) RecordCounter(name string, v float64, _ map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name] += v
}

func (m *recordingMetrics) RecordGauge(name string, v float64, _ map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gauges[name] = v
}

func (m *recordingMetrics) RecordHistogram(string, float64, map[string]string) {}

func simulateSample(t *testing.T, cfg Config) *domain.BalanceReport {
	t.Helper()
	report, err := NewSimulator().Simulate(
		context.Background(),
		testutils.SampleQuestions(),
		testutils.SampleRoster(),
		testutils.SampleRaces(),
		cfg,
	)
	require.NoError(t, err)
	return report
}

func TestSimulate_Preconditions(t *testing.T) {
	questions := testutils.SampleQuestions()
	roster := testutils.SampleRoster()
	ok := Config{Players: 5, Seasons: 2}

	tests := []struct {
		name      string
		questions []domain.Question
		roster    domain.Roster
		cfg       Config
		wantErr   error
	}{
		{"empty roster", questions, domain.Roster{Teams: roster.Teams}, ok, domain.ErrEmptyRoster},
		{"no questions", nil, roster, ok, domain.ErrNoQuestions},
		{"zero players", questions, roster, Config{Players: 0, Seasons: 2}, domain.ErrInvalidSimulation},
		{"zero seasons", questions, roster, Config{Players: 5, Seasons: 0}, domain.ErrInvalidSimulation},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSimulator().Simulate(context.Background(), tc.questions, tc.roster, nil, tc.cfg)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestSimulate_Deterministic(t *testing.T) {
	cfg := Config{Players: 12, Seasons: 30, Seed: 2026}
	first := simulateSample(t, cfg)
	second := simulateSample(t, cfg)
	assert.Equal(t, first, second)

	cfg.Seed = 2027
	other := simulateSample(t, cfg)
	assert.NotEqual(t, first.Rows, other.Rows)
}

func TestSimulate_WorkerCountDoesNotChangeReport(t *testing.T) {
	sequential := simulateSample(t, Config{Players: 10, Seasons: 40, Seed: 7, Workers: 1})
	parallel := simulateSample(t, Config{Players: 10, Seasons: 40, Seed: 7, Workers: 4})
	assert.Equal(t, sequential, parallel)
}

func TestSimulate_ReportInvariants(t *testing.T) {
	questions := testutils.SampleQuestions()
	report := simulateSample(t, Config{Players: 15, Seasons: 25, Seed: 99, Workers: 3})

	assert.Equal(t, domain.ModeSimulation, report.Mode)
	assert.Equal(t, uint32(99), report.Seed)
	assert.Equal(t, len(questions), report.QuestionCount)
	assert.Equal(t, len(questions), report.ScoredQuestionCount)
	require.Len(t, report.Rows, len(questions))
	assert.Greater(t, report.AvgWinnerScore, 0.0)
	assert.GreaterOrEqual(t, report.AvgWinnerScore, report.AvgTotalScore)
	assert.GreaterOrEqual(t, report.StdTotalScore, 0.0)

	var shareSum float64
	for i, row := range report.Rows {
		assert.GreaterOrEqual(t, row.FlipPercent, 0.0, row.ID)
		assert.LessOrEqual(t, row.FlipPercent, 100.0, row.ID)
		assert.GreaterOrEqual(t, row.WinnerShare, 0.0, row.ID)
		assert.Equal(t, domain.ImpactLabel(row.FlipPercent, row.WinnerShare), row.Impact, row.ID)
		assert.Equal(t, row.FlipPercent > 0, row.WinnerFlips, row.ID)
		if i > 0 {
			assert.GreaterOrEqual(t, report.Rows[i-1].Dominance, row.Dominance)
		}
		shareSum += row.WinnerShare
	}
	// Sample points are non-negative, so shares add up to at most 100.
	assert.LessOrEqual(t, shareSum, 100.0+1e-6)
}

func TestSimulate_SinglePlayerNeverFlips(t *testing.T) {
	report := simulateSample(t, Config{Players: 1, Seasons: 10, Seed: 3})
	for _, row := range report.Rows {
		assert.Zero(t, row.FlipPercent, row.ID)
		assert.InDelta(t, row.AvgWinner, row.AvgPlayer, 1e-9, row.ID)
	}
	assert.InDelta(t, report.AvgWinnerScore, report.AvgTotalScore, 1e-9)
}

func TestSimulate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSimulator().Simulate(ctx,
		testutils.SampleQuestions(), testutils.SampleRoster(), testutils.SampleRaces(),
		Config{Players: 5, Seasons: 100, Workers: 2})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSimulate_RecordsMetrics(t *testing.T) {
	metrics := newRecordingMetrics()
	report, err := NewSimulator(WithMetrics(metrics)).Simulate(context.Background(),
		testutils.SampleQuestions(), testutils.SampleRoster(), testutils.SampleRaces(),
		Config{Players: 4, Seasons: 6, Workers: 2})
	require.NoError(t, err)

	var flips float64
	for _, row := range report.Rows {
		flips += math.Round(row.FlipPercent * 6 / 100)
	}
	assert.Equal(t, 6.0, metrics.counters[MetricSeasons])
	assert.Equal(t, flips, metrics.counters[MetricFlips])
	assert.Equal(t, 2.0, metrics.gauges[MetricWorkers])
	assert.Equal(t, 6, metrics.latency[MetricSeasonLatency])
	assert.Equal(t, 1, metrics.latency[MetricRunLatency])
}

func TestCountFlips(t *testing.T) {
	tests := []struct {
		name    string
		tallies []tally
		want    int
	}{
		{"no seasons", nil, 0},
		{"no flips", []tally{{flips: []bool{false, false}}}, 0},
		{
			"same question flipping in two seasons counts twice",
			[]tally{{flips: []bool{true, false}}, {flips: []bool{true, true}}},
			3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, countFlips(tt.tallies))
		})
	}
}

func TestReduce(t *testing.T) {
	questions := []domain.Question{
		&domain.BooleanQuestion{Base: domain.Base{QID: "a"}, Points: 10},
		&domain.BooleanQuestion{Base: domain.Base{QID: "b"}, Points: 10},
	}
	tallies := []tally{
		{
			scored:      2,
			flips:       []bool{true, false},
			winnerPts:   []float64{10, 10},
			playerPts:   []float64{10, 20},
			totalSum:    30,
			totalSq:     500,
			winnerTotal: 20,
		},
		{
			scored:      1,
			flips:       []bool{false, false},
			winnerPts:   []float64{0, 10},
			playerPts:   []float64{0, 10},
			totalSum:    10,
			totalSq:     100,
			winnerTotal: 10,
		},
	}

	report := reduce(questions, tallies, Config{Players: 2, Seasons: 2})

	assert.Equal(t, 2, report.ScoredQuestionCount, "1.5 rounds half up")
	assert.InDelta(t, 10, report.AvgTotalScore, 1e-9)
	assert.InDelta(t, 15, report.AvgWinnerScore, 1e-9)
	assert.InDelta(t, 7.0710678, report.StdTotalScore, 1e-6)

	require.Len(t, report.Rows, 2)
	rows := map[string]domain.BalanceRow{}
	for _, r := range report.Rows {
		rows[r.ID] = r
	}
	assert.InDelta(t, 50, rows["a"].FlipPercent, 1e-9)
	assert.InDelta(t, 5, rows["a"].AvgWinner, 1e-9)
	assert.InDelta(t, 100.0/3, rows["a"].WinnerShare, 1e-9)
	assert.InDelta(t, 2.5, rows["a"].AvgPlayer, 1e-9)
	assert.InDelta(t, 10, rows["b"].AvgWinner, 1e-9)
	assert.InDelta(t, 7.5, rows["b"].AvgPlayer, 1e-9)
	assert.Equal(t, "a", report.Rows[0].ID, "flip dominates")
}

func TestArgmax(t *testing.T) {
	assert.Equal(t, 0, argmax([]float64{3, 3, 1}), "first maximum wins")
	assert.Equal(t, 2, argmax([]float64{1, 2, 5}))
	assert.Equal(t, 0, argmax([]float64{-1}))
}
