package application

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-paddock/infrastructure/scoring"
	"github.com/ahrav/go-paddock/infrastructure/simulation"
	"github.com/ahrav/go-paddock/internal/domain"
	"github.com/ahrav/go-paddock/internal/observability"
	"github.com/ahrav/go-paddock/internal/ports"
)

// reportNamespace scopes the name-based UUIDs given to reports.
var reportNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/ahrav/go-paddock/balance-report"))

// reportKeyPrefix namespaces cached reports in a shared store.
const reportKeyPrefix = "paddock:report:"

// DefaultReportTTL is how long cached reports live.
const DefaultReportTTL = 24 * time.Hour

// MetricGroupAnalysis times AnalyzeGroup.
const MetricGroupAnalysis = "group_analysis"

// MetricReportCache counts report cache lookups by result (hit, miss, error).
const MetricReportCache = "report_cache"

// Engine is the entry point for scoring, group analysis and balance
// simulation over a compiled catalog.
type Engine struct {
	simulator *simulation.Simulator
	cache     ports.CacheStore
	cacheTTL  time.Duration
	metrics   ports.MetricsCollector
	logger    *observability.Logger
	// sf collapses concurrent requests for the same report.
	sf singleflight.Group
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithSimulator sets the simulator used for balance runs.
func WithSimulator(s *simulation.Simulator) EngineOption {
	return func(e *Engine) {
		if s != nil {
			e.simulator = s
		}
	}
}

// WithReportCache stores simulation reports in cache for ttl. A zero ttl
// keeps reports until evicted.
func WithReportCache(cache ports.CacheStore, ttl time.Duration) EngineOption {
	return func(e *Engine) {
		e.cache = cache
		e.cacheTTL = ttl
	}
}

// WithEngineMetrics sets the collector for cache and analysis metrics.
func WithEngineMetrics(m ports.MetricsCollector) EngineOption {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// WithEngineLogger sets the logger.
func WithEngineLogger(l *observability.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an engine. Without options it uses a default simulator,
// caches nothing and logs nothing.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		simulator: simulation.NewSimulator(),
		cacheTTL:  DefaultReportTTL,
		metrics:   ports.NoopMetrics{},
		logger:    observability.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Score decodes two stored answers for the catalog question id and scores
// them.
func (e *Engine) Score(catalog *Catalog, id, predicted, actual string) (float64, error) {
	q, ok := catalog.Question(id)
	if !ok {
		err := fmt.Errorf("%w: %q", domain.ErrUnknownQuestion, id)
		if s := catalog.suggestID(id); s != "" {
			err = fmt.Errorf("%w (did you mean %q?)", err, s)
		}
		return 0, err
	}
	return scoring.ScoreEncoded(q, predicted, actual), nil
}

// Leaderboard scores every member's stored answers against the stored
// actuals. Rows are ordered by total descending, then by name. Answers to
// questions outside the catalog are ignored.
func Leaderboard(catalog *Catalog, members []domain.MemberResponses, actuals map[string]string) []domain.LeaderboardRow {
	decoded := make(map[string]domain.Answer, len(catalog.Questions))
	for _, q := range catalog.Questions {
		decoded[q.ID()] = domain.DecodeAnswer(q, actuals[q.ID()])
	}

	rows := make([]domain.LeaderboardRow, 0, len(members))
	for _, m := range members {
		row := domain.LeaderboardRow{
			UserID:     m.UserID,
			Name:       m.Name,
			ByQuestion: make(map[string]float64),
			Answers:    make(map[string]string),
		}
		for _, q := range catalog.Questions {
			raw, answered := m.Answers[q.ID()]
			if !answered {
				continue
			}
			points := scoring.Score(q, domain.DecodeAnswer(q, raw), decoded[q.ID()])
			row.Total += points
			row.ByQuestion[q.ID()] = points
			row.Answers[q.ID()] = raw
		}
		rows = append(rows, row)
	}

	sortLeaderboard(rows)
	return rows
}

func sortLeaderboard(rows []domain.LeaderboardRow) {
	names := collate.New(language.Und)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return names.CompareString(rows[i].Name, rows[j].Name) < 0
	})
}

// AnalyzeGroup builds a single-season balance report from a group's real
// answers. A question's flip rate is 100 when removing its points changes
// the leader and 0 otherwise. Questions without an actual are skipped.
func (e *Engine) AnalyzeGroup(ctx context.Context, catalog *Catalog, group domain.GroupInput) (*domain.BalanceReport, error) {
	start := time.Now()
	ranking := Leaderboard(catalog, group.Members, group.Actuals)

	report := &domain.BalanceReport{
		Mode:          domain.ModeActuals,
		Players:       len(ranking),
		Seasons:       1,
		QuestionCount: len(catalog.Questions),
		Rows:          make([]domain.BalanceRow, 0, len(catalog.Questions)),
	}

	id, err := groupReportID(catalog, group)
	if err != nil {
		return nil, err
	}
	report.ID = id

	if len(ranking) > 0 {
		winner := ranking[0]
		report.Winner = &winner
		report.AvgWinnerScore = winner.Total

		totals := make([]float64, len(ranking))
		for i, row := range ranking {
			totals[i] = row.Total
		}
		report.AvgTotalScore, report.StdTotalScore = stat.PopMeanStdDev(totals, nil)
	}

	for _, q := range catalog.Questions {
		if domain.DecodeAnswer(q, group.Actuals[q.ID()]) == nil {
			continue
		}
		report.ScoredQuestionCount++
		if len(ranking) == 0 {
			report.Rows = append(report.Rows, domain.NewBalanceRow(q.ID(), 0, 0, 0, 0))
			continue
		}

		alt := make([]float64, len(ranking))
		var sum float64
		for i, row := range ranking {
			pts := row.ByQuestion[q.ID()]
			sum += pts
			alt[i] = row.Total - pts
		}
		flip := 0.0
		if firstMax(alt) != 0 {
			flip = 100
		}

		winner := ranking[0]
		winnerPts := winner.ByQuestion[q.ID()]
		share := 0.0
		if winner.Total > 0 {
			share = winnerPts / winner.Total * 100
		}
		avgPlayer := sum / float64(len(ranking))
		report.Rows = append(report.Rows, domain.NewBalanceRow(q.ID(), flip, share, winnerPts, avgPlayer))
	}
	domain.SortByDominanceShare(report.Rows)
	e.metrics.RecordLatency(MetricGroupAnalysis, time.Since(start), map[string]string{"mode": domain.ModeActuals})

	e.logger.WithContext(ctx).Info("group analyzed",
		"members", report.Players,
		"scored_questions", report.ScoredQuestionCount,
	)
	return report, nil
}

// firstMax returns the index of the first maximum.
func firstMax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}

// Simulate runs a Monte Carlo balance analysis of catalog. A nil seed in
// cfg draws a fresh one, which the report records. Reports are
// deterministic for their inputs, so a configured cache is consulted first
// and concurrent identical requests share one run. The returned report may
// be shared and must not be mutated.
func (e *Engine) Simulate(ctx context.Context, catalog *Catalog, cfg SimulationConfig, priors *PriorsConfig) (*domain.BalanceReport, error) {
	if err := ValidateSimulationConfig(cfg); err != nil {
		return nil, err
	}

	seed, err := resolveSeed(cfg.Seed)
	if err != nil {
		return nil, err
	}
	id, err := ReportID(catalog, priors, cfg.Players, cfg.Seasons, seed)
	if err != nil {
		return nil, err
	}
	log := e.logger.WithContext(ctx).With("report_id", id, "seed", seed)

	if report, ok := e.cached(ctx, id, log); ok {
		return report, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}

	// The run is shared by every waiter, so it must outlive the caller that
	// started it. Each caller still stops waiting when its own ctx is done.
	runCtx := context.WithoutCancel(ctx)
	ch := e.sf.DoChan(id, func() (any, error) {
		p, r := simulationPriors(priors)
		report, err := e.simulator.Simulate(runCtx, catalog.Questions, catalog.Roster, catalog.Races, simulation.Config{
			Players: cfg.Players,
			Seasons: cfg.Seasons,
			Seed:    seed,
			Workers: cfg.Workers,
			Priors:  p,
			Rules:   r,
		})
		if err != nil {
			return nil, err
		}
		report.ID = id
		e.store(runCtx, id, report, log)
		return report, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("simulate: %w", ctx.Err())
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, fmt.Errorf("simulate: %w", res.Err)
	}

	report := res.Val.(*domain.BalanceReport)
	log.Info("simulation finished",
		"players", report.Players,
		"seasons", report.Seasons,
		"avg_winner", report.AvgWinnerScore,
		"shared", res.Shared,
	)
	return report, nil
}

func (e *Engine) cached(ctx context.Context, id string, log *observability.Logger) (*domain.BalanceReport, bool) {
	if e.cache == nil {
		return nil, false
	}
	data, ok, err := e.cache.Get(ctx, reportKeyPrefix+id)
	if err != nil {
		e.recordCache("error")
		log.Warn("report cache lookup failed", "error", err)
		return nil, false
	}
	if !ok {
		e.recordCache("miss")
		log.Debug("report cache miss")
		return nil, false
	}
	var report domain.BalanceReport
	if err := json.Unmarshal(data, &report); err != nil {
		e.recordCache("error")
		log.Warn("discarding corrupt cached report", "error", ports.NewCacheError(id, "get", ports.ErrCacheCorrupted))
		_ = e.cache.Delete(ctx, reportKeyPrefix+id)
		return nil, false
	}
	e.recordCache("hit")
	log.Debug("report cache hit")
	return &report, true
}

func (e *Engine) recordCache(result string) {
	e.metrics.RecordCounter(MetricReportCache, 1, map[string]string{"result": result})
}

func (e *Engine) store(ctx context.Context, id string, report *domain.BalanceReport, log *observability.Logger) {
	if e.cache == nil {
		return
	}
	data, err := json.Marshal(report)
	if err != nil {
		log.Warn("failed to encode report for cache", "error", err)
		return
	}
	if err := e.cache.Set(ctx, reportKeyPrefix+id, data, e.cacheTTL); err != nil {
		log.Warn("failed to cache report", "error", err)
	}
}

// resolveSeed returns *seed, or a seed read from crypto/rand when nil.
func resolveSeed(seed *uint32) (uint32, error) {
	if seed != nil {
		return *seed, nil
	}
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, fmt.Errorf("failed to draw seed: %w", err)
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// ReportID derives the deterministic id of a simulation report from every
// input that can change it. The worker count is excluded since it never
// changes the result.
func ReportID(catalog *Catalog, priors *PriorsConfig, players, seasons int, seed uint32) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(catalog.Hash)
	buf.WriteByte('|')
	if priors != nil {
		if err := yaml.NewEncoder(&buf).Encode(priors); err != nil {
			return "", fmt.Errorf("failed to encode priors for report id: %w", err)
		}
	}
	buf.WriteByte('|')
	buf.WriteString(strconv.Itoa(players))
	buf.WriteByte('|')
	buf.WriteString(strconv.Itoa(seasons))
	buf.WriteByte('|')
	buf.WriteString(strconv.FormatUint(uint64(seed), 10))
	return uuid.NewSHA1(reportNamespace, buf.Bytes()).String(), nil
}

func groupReportID(catalog *Catalog, group domain.GroupInput) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(catalog.Hash)
	buf.WriteByte('|')
	if err := yaml.NewEncoder(&buf).Encode(group); err != nil {
		return "", fmt.Errorf("failed to encode group for report id: %w", err)
	}
	return uuid.NewSHA1(reportNamespace, buf.Bytes()).String(), nil
}

// GenerateGroup draws one synthetic season and a group of synthetic
// players answering the catalog, all in stored form. The same seed always
// yields the same group.
func GenerateGroup(catalog *Catalog, players int, seed uint32, priors *PriorsConfig) (domain.GroupInput, error) {
	if players < 1 {
		return domain.GroupInput{}, fmt.Errorf("%w: players must be at least 1", domain.ErrInvalidSimulation)
	}
	if len(catalog.Roster.Drivers) == 0 {
		return domain.GroupInput{}, domain.ErrEmptyRoster
	}

	p, r := simulation.DefaultPriors(), simulation.DefaultSeasonRules()
	if priors != nil {
		p, r = p.Merge(priors.Priors), r.Merge(priors.Rules)
	}
	model := simulation.BuildSkillModel(catalog.Roster, p)
	src := simulation.NewMulberry32(seed)

	outcome := simulation.NewOutcomeGenerator(model, catalog.Roster, catalog.Races, r).Generate(catalog.Questions, src)
	actuals, err := encodeAll(catalog.Questions, func(q domain.Question) domain.Answer { return outcome[q.ID()] })
	if err != nil {
		return domain.GroupInput{}, err
	}

	predictor := simulation.NewPredictor(model, catalog.Roster, catalog.Races, r)
	members := make([]domain.MemberResponses, players)
	for i := range members {
		profile := simulation.NewProfile(src)
		answers, err := encodeAll(catalog.Questions, func(q domain.Question) domain.Answer {
			return predictor.Predict(q, profile, src)
		})
		if err != nil {
			return domain.GroupInput{}, err
		}
		id := fmt.Sprintf("player-%03d", i+1)
		members[i] = domain.MemberResponses{UserID: id, Name: fmt.Sprintf("Player %d", i+1), Answers: answers}
	}
	return domain.GroupInput{Members: members, Actuals: actuals}, nil
}

// encodeAll encodes answer(q) for every question, omitting absent answers.
func encodeAll(questions []domain.Question, answer func(domain.Question) domain.Answer) (map[string]string, error) {
	out := make(map[string]string, len(questions))
	for _, q := range questions {
		raw, err := domain.EncodeAnswer(q, answer(q))
		if err != nil {
			return nil, err
		}
		if raw != "" {
			out[q.ID()] = raw
		}
	}
	return out, nil
}
