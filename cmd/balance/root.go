package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ahrav/go-paddock/infrastructure/cache"
	"github.com/ahrav/go-paddock/internal/application"
	"github.com/ahrav/go-paddock/internal/domain"
	"github.com/ahrav/go-paddock/internal/observability"
	"github.com/ahrav/go-paddock/internal/ports"
)

// redisURLEnv supplies --redis-url when the flag is not given.
const redisURLEnv = "PADDOCK_REDIS_URL"

// Redis resilience settings.
const (
	redisRetries     = 2
	redisRetryBase   = 50 * time.Millisecond
	redisRetryMax    = 500 * time.Millisecond
	redisMaxFailures = 3
	redisCooldown    = 30 * time.Second
)

// cli holds state shared by every subcommand.
type cli struct {
	stdout io.Writer
	stderr io.Writer

	logLevel  string
	logFormat string
	noColor   bool

	logger *observability.Logger
}

// inputFlags name the files a catalog is compiled from. Empty paths fall
// back to the bundled 2026 samples.
type inputFlags struct {
	catalog   string
	roster    string
	races     string
	overrides string
	priors    string
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "balance",
		Short: "Score prediction catalogs and simulate their balance",
		Long: `balance scores prediction-game answers and runs Monte Carlo
simulations that show which questions decide the season winner.

Without --catalog every command uses the bundled 2026 catalog, roster and
race calendar.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if c.noColor {
				color.NoColor = true
			}
			c.logger = observability.NewLogger(observability.LogConfig{
				Level:  c.logLevel,
				Format: c.logFormat,
				Output: c.stderr,
			})
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&c.logFormat, "log-format", "text", "log format (text, json)")
	root.PersistentFlags().BoolVar(&c.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		c.newSimulateCommand(),
		c.newAnalyzeCommand(),
		c.newScoreCommand(),
		c.newGenerateCommand(),
	)
	return root
}

func (in *inputFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&in.catalog, "catalog", "", "question catalog (YAML or JSON)")
	cmd.Flags().StringVar(&in.roster, "roster", "", "roster with drivers and teams")
	cmd.Flags().StringVar(&in.races, "races", "", "race calendar")
	cmd.Flags().StringVar(&in.overrides, "overrides", "", "per-question points overrides")
	cmd.Flags().StringVar(&in.priors, "priors", "", "skill priors and season rules")
}

// loadCatalog compiles the catalog named by in. Priors are nil when no
// priors file was given.
func (c *cli) loadCatalog(ctx context.Context, in inputFlags) (*application.Catalog, *application.PriorsConfig, error) {
	samples, err := application.SampleFiles()
	if err != nil {
		return nil, nil, err
	}

	var opts application.LoadOptions
	if in.roster != "" {
		opts.Roster, err = application.LoadRoster(in.roster)
	} else {
		opts.Roster, err = application.ParseRoster(samples[application.SampleRosterFile])
	}
	if err != nil {
		return nil, nil, err
	}

	if in.races != "" {
		opts.Races, err = application.LoadRaces(in.races)
	} else {
		opts.Races, err = application.ParseRaces(samples[application.SampleRacesFile])
	}
	if err != nil {
		return nil, nil, err
	}

	if in.overrides != "" {
		if opts.Overrides, err = application.LoadOverrides(in.overrides); err != nil {
			return nil, nil, err
		}
	}

	var priors *application.PriorsConfig
	if in.priors != "" {
		p, err := application.LoadPriors(in.priors)
		if err != nil {
			return nil, nil, err
		}
		priors = &p
	}

	loader, err := application.NewCatalogLoader(nil, c.logger)
	if err != nil {
		return nil, nil, err
	}
	var catalog *application.Catalog
	if in.catalog != "" {
		catalog, err = loader.LoadFromFile(ctx, in.catalog, opts)
	} else {
		catalog, err = loader.Load(ctx, samples[application.SampleCatalogFile], opts)
	}
	if err != nil {
		return nil, nil, err
	}
	c.logger.Debug("catalog ready", "hash", catalog.Hash, "questions", len(catalog.Questions))
	return catalog, priors, nil
}

// openReportCache connects to Redis when a URL is configured and otherwise
// keeps reports in process memory. Redis calls are retried and guarded by a
// circuit breaker. The returned close function is never nil.
func (c *cli) openReportCache(ctx context.Context, redisURL string, collector ports.MetricsCollector) (ports.CacheStore, func() error, error) {
	if redisURL == "" {
		redisURL = os.Getenv(redisURLEnv)
	}
	if redisURL == "" {
		return memoryReportCache()
	}

	store, err := cache.NewRedisStoreFromURL(ctx, redisURL, cache.DefaultRedisPrefix)
	if err != nil {
		if errors.Is(err, ports.ErrServiceUnavailable) || errors.Is(err, ports.ErrTimeout) {
			c.logger.Warn("redis unavailable, caching reports in memory", "error", err)
			return memoryReportCache()
		}
		return nil, nil, err
	}
	guarded := cache.Chain(store,
		cache.RetryMiddleware(redisRetries, redisRetryBase, redisRetryMax),
		cache.CircuitBreakerMiddleware(cache.NewCircuitBreaker(redisMaxFailures, redisCooldown), collector),
	)
	return guarded, store.Close, nil
}

func memoryReportCache() (ports.CacheStore, func() error, error) {
	store, err := cache.NewMemoryStore(cache.DefaultMemorySize)
	if err != nil {
		return nil, nil, err
	}
	return store, func() error { return nil }, nil
}

// checkNotExists refuses to overwrite path unless force is set.
func checkNotExists(path string, force bool) error {
	if force {
		return nil
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s already exists (use --force to overwrite)", domain.ErrInvalidConfiguration, path)
	}
	return nil
}
