package simulation

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ahrav/go-paddock/infrastructure/scoring"
	"github.com/ahrav/go-paddock/internal/domain"
	"github.com/ahrav/go-paddock/internal/observability"
	"github.com/ahrav/go-paddock/internal/ports"
)

const tracerName = "balance-simulator"

// Metric names recorded by the simulator.
const (
	MetricRunLatency    = "simulation_run"
	MetricSeasonLatency = "simulation_season"
	MetricSeasons       = "simulation_seasons_total"
	MetricFlips         = "simulation_winner_flips_total"
	MetricWinnerTotal   = "simulation_winner_total"
	MetricWorkers       = "simulation_workers"
)

// progressInterval throttles progress logging to one line per interval.
const progressInterval = 2 * time.Second

// Config holds the parameters of one Monte Carlo run.
type Config struct {
	// Players is the number of synthetic players per season.
	Players int

	// Seasons is the number of simulated seasons.
	Seasons int

	// Seed is the root seed. Equal seeds produce identical reports.
	Seed uint32

	// Workers bounds the number of seasons simulated concurrently. Values
	// below 1 run seasons sequentially.
	Workers int

	// Priors are the skill tables; the zero value means DefaultPriors.
	Priors *Priors

	// Rules name the season-specific entities; the zero value means
	// DefaultSeasonRules.
	Rules *SeasonRules
}

// Simulator runs Monte Carlo balance analyses. It is stateless between runs
// and safe for concurrent use.
type Simulator struct {
	metrics ports.MetricsCollector
	logger  *observability.Logger
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithMetrics sets the metrics collector.
func WithMetrics(m ports.MetricsCollector) Option {
	return func(s *Simulator) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *observability.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSimulator creates a simulator. Without options it records no metrics
// and logs nothing.
func NewSimulator(opts ...Option) *Simulator {
	s := &Simulator{metrics: ports.NoopMetrics{}, logger: observability.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// tally is the contribution of one season to the report. Tallies are
// reduced in season order so the floating point sums do not depend on
// scheduling.
type tally struct {
	scored      int
	flips       []bool
	winnerPts   []float64
	playerPts   []float64
	totalSum    float64
	totalSq     float64
	winnerTotal float64
}

// Simulate runs cfg.Seasons synthetic seasons of cfg.Players players over
// the catalog and reports how strongly each question decides the winner.
func (s *Simulator) Simulate(
	ctx context.Context,
	questions []domain.Question,
	roster domain.Roster,
	races []string,
	cfg Config,
) (*domain.BalanceReport, error) {
	if err := checkRun(questions, roster, cfg); err != nil {
		return nil, err
	}

	workers := max(1, cfg.Workers)
	priors := DefaultPriors()
	if cfg.Priors != nil {
		priors = priors.Merge(*cfg.Priors)
	}
	rules := DefaultSeasonRules()
	if cfg.Rules != nil {
		rules = rules.Merge(*cfg.Rules)
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "Simulator.Simulate", trace.WithAttributes(
		attribute.Int("simulation.players", cfg.Players),
		attribute.Int("simulation.seasons", cfg.Seasons),
		attribute.Int("simulation.questions", len(questions)),
		attribute.Int("simulation.workers", workers),
		attribute.Int64("simulation.seed", int64(cfg.Seed)),
	))
	defer span.End()

	start := time.Now()
	log := s.logger.WithContext(ctx)
	s.metrics.RecordGauge(MetricWorkers, float64(workers), nil)

	model := BuildSkillModel(roster, priors)
	outcome := NewOutcomeGenerator(model, roster, races, rules)
	predictor := NewPredictor(model, roster, races, rules)

	seeds := SeasonSeeds(cfg.Seed, cfg.Seasons)
	tallies := make([]tally, cfg.Seasons)
	progress := rate.Sometimes{Interval: progressInterval}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range seeds {
		idx := i
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			seasonStart := time.Now()
			tallies[idx] = runSeason(questions, outcome, predictor, cfg.Players, NewMulberry32(seeds[idx]))
			s.metrics.RecordLatency(MetricSeasonLatency, time.Since(seasonStart), nil)
			progress.Do(func() {
				log.Debug("simulation progress", "season", idx+1, "of", cfg.Seasons)
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("simulate: %w", err)
	}
	if err := ctx.Err(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("simulate: %w", err)
	}

	report := reduce(questions, tallies, cfg)
	report.Seed = cfg.Seed

	s.metrics.RecordCounter(MetricSeasons, float64(cfg.Seasons), nil)
	s.metrics.RecordCounter(MetricFlips, float64(countFlips(tallies)), nil)
	s.metrics.RecordHistogram(MetricWinnerTotal, report.AvgWinnerScore, nil)
	s.metrics.RecordLatency(MetricRunLatency, time.Since(start), map[string]string{"mode": domain.ModeSimulation})

	span.SetAttributes(
		attribute.Float64("simulation.avg_winner_score", report.AvgWinnerScore),
		attribute.Int("simulation.scored_questions", report.ScoredQuestionCount),
	)
	span.SetStatus(codes.Ok, "simulation completed")
	log.Info("simulation completed",
		"seasons", cfg.Seasons,
		"players", cfg.Players,
		"seed", cfg.Seed,
		"elapsed", time.Since(start),
	)
	return report, nil
}

func checkRun(questions []domain.Question, roster domain.Roster, cfg Config) error {
	if len(roster.Drivers) == 0 {
		return domain.ErrEmptyRoster
	}
	if len(questions) == 0 {
		return domain.ErrNoQuestions
	}
	if cfg.Players < 1 {
		return fmt.Errorf("%w: players must be at least 1, got %d", domain.ErrInvalidSimulation, cfg.Players)
	}
	if cfg.Seasons < 1 {
		return fmt.Errorf("%w: seasons must be at least 1, got %d", domain.ErrInvalidSimulation, cfg.Seasons)
	}
	return nil
}

// runSeason simulates one season with its own generator: the actual
// answers first, then each player's profile and forecasts in player order.
func runSeason(
	questions []domain.Question,
	outcome *OutcomeGenerator,
	predictor *Predictor,
	players int,
	src ports.RandomSource,
) tally {
	actuals := outcome.Generate(questions, src)

	scored := make([]int, 0, len(actuals))
	for i, q := range questions {
		if _, ok := actuals[q.ID()]; ok {
			scored = append(scored, i)
		}
	}

	points := make([][]float64, players)
	totals := make([]float64, players)
	for p := range points {
		profile := NewProfile(src)
		row := make([]float64, len(questions))
		for _, qi := range scored {
			q := questions[qi]
			pts := scoring.Score(q, predictor.Predict(q, profile, src), actuals[q.ID()])
			row[qi] = pts
			totals[p] += pts
		}
		points[p] = row
	}

	t := tally{
		scored:    len(scored),
		flips:     make([]bool, len(questions)),
		winnerPts: make([]float64, len(questions)),
		playerPts: make([]float64, len(questions)),
	}
	winner := argmax(totals)
	for _, total := range totals {
		t.totalSum += total
		t.totalSq += total * total
	}
	t.winnerTotal = totals[winner]

	alt := make([]float64, players)
	for _, qi := range scored {
		for p := range totals {
			alt[p] = totals[p] - points[p][qi]
			t.playerPts[qi] += points[p][qi]
		}
		t.flips[qi] = argmax(alt) != winner
		t.winnerPts[qi] = points[winner][qi]
	}
	return t
}

// argmax returns the index of the first maximum.
func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}

// reduce folds the season tallies, in season order, into a report.
func reduce(questions []domain.Question, tallies []tally, cfg Config) *domain.BalanceReport {
	n := len(questions)
	flips := make([]int, n)
	winnerPts := make([]float64, n)
	playerPts := make([]float64, n)
	var scored, totalSum, totalSq, winnerTotal float64

	for _, t := range tallies {
		scored += float64(t.scored)
		totalSum += t.totalSum
		totalSq += t.totalSq
		winnerTotal += t.winnerTotal
		for i := 0; i < n; i++ {
			if t.flips[i] {
				flips[i]++
			}
			winnerPts[i] += t.winnerPts[i]
			playerPts[i] += t.playerPts[i]
		}
	}

	seasons := float64(cfg.Seasons)
	samples := seasons * float64(cfg.Players)
	avgTotal := totalSum / samples
	avgWinnerTotal := winnerTotal / seasons

	rows := make([]domain.BalanceRow, n)
	for i, q := range questions {
		avgWinner := winnerPts[i] / seasons
		share := 0.0
		if avgWinnerTotal != 0 {
			share = avgWinner / avgWinnerTotal * 100
		}
		rows[i] = domain.NewBalanceRow(q.ID(), float64(flips[i])/seasons*100, share, avgWinner, playerPts[i]/samples)
	}
	domain.SortByDominance(rows)

	return &domain.BalanceReport{
		Mode:                domain.ModeSimulation,
		Players:             cfg.Players,
		Seasons:             cfg.Seasons,
		QuestionCount:       n,
		ScoredQuestionCount: int(round(scored / seasons)),
		AvgTotalScore:       avgTotal,
		StdTotalScore:       math.Sqrt(math.Max(0, totalSq/samples-avgTotal*avgTotal)),
		AvgWinnerScore:      avgWinnerTotal,
		Rows:                rows,
	}
}

// countFlips returns the number of season-question pairs in which removing
// the question changed the winner.
func countFlips(tallies []tally) int {
	var n int
	for _, t := range tallies {
		for _, f := range t.flips {
			if f {
				n++
			}
		}
	}
	return n
}
