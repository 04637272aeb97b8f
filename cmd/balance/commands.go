package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-paddock/infrastructure/metrics"
	"github.com/ahrav/go-paddock/infrastructure/simulation"
	"github.com/ahrav/go-paddock/internal/application"
	"github.com/ahrav/go-paddock/internal/domain"
)

// defaultSeed is used by generate when --seed is not given.
const defaultSeed = 20260227

// groupFile is the name generate writes a synthetic group to.
const groupFile = "group.yaml"

func (c *cli) newSimulateCommand() *cobra.Command {
	var (
		in          inputFlags
		seed        uint32
		jsonPath    string
		metricsFile string
		redisURL    string
	)
	cfg := application.DefaultSimulationConfig()

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a Monte Carlo balance simulation of a catalog",
		Example: `  balance simulate --players 1000 --seasons 200 --seed 42 --top 12
  balance simulate --catalog catalog.yaml --json report.json --metrics-file balance.prom`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("seed") {
				cfg.Seed = &seed
			}
			ctx := cmd.Context()

			catalog, priors, err := c.loadCatalog(ctx, in)
			if err != nil {
				return err
			}

			collector := metrics.NewPrometheusMetrics(nil)
			store, closeStore, err := c.openReportCache(ctx, redisURL, collector)
			if err != nil {
				return err
			}
			defer func() {
				if err := closeStore(); err != nil {
					c.logger.Warn("failed to close report cache", "error", err)
				}
			}()

			engine := application.NewEngine(
				application.WithSimulator(simulation.NewSimulator(
					simulation.WithMetrics(collector),
					simulation.WithLogger(c.logger),
				)),
				application.WithReportCache(store, application.DefaultReportTTL),
				application.WithEngineMetrics(collector),
				application.WithEngineLogger(c.logger),
			)

			report, err := engine.Simulate(ctx, catalog, cfg, priors)
			if err != nil {
				return err
			}
			printReport(c.stdout, report, cfg.Top)

			if jsonPath != "" {
				if err := writeJSON(jsonPath, report); err != nil {
					return err
				}
				fmt.Fprintf(c.stdout, "\nJSON report: %s\n", jsonPath)
			}
			if metricsFile != "" {
				if err := collector.WriteTextfile(metricsFile); err != nil {
					return err
				}
				c.logger.Info("metrics written", "path", metricsFile)
			}
			return nil
		},
	}

	in.bind(cmd)
	cmd.Flags().IntVar(&cfg.Players, "players", cfg.Players, "synthetic players per season")
	cmd.Flags().IntVar(&cfg.Seasons, "seasons", cfg.Seasons, "simulated seasons")
	cmd.Flags().Uint32Var(&seed, "seed", 0, "root seed (random when omitted)")
	cmd.Flags().IntVar(&cfg.Workers, "workers", cfg.Workers, "seasons simulated concurrently")
	cmd.Flags().IntVar(&cfg.Top, "top", cfg.Top, "rows to print (0 prints all)")
	cmd.Flags().StringVar(&jsonPath, "json", "", "write the full report as JSON to this file")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics in textfile format")
	cmd.Flags().StringVar(&redisURL, "redis-url", "", "share cached reports through Redis (default $"+redisURLEnv+")")
	return cmd
}

func (c *cli) newAnalyzeCommand() *cobra.Command {
	var (
		in        inputFlags
		groupPath string
		jsonPath  string
		top       int
		leaders   int
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze balance from a group's real answers",
		Long: `analyze scores every member of a group against the stored actual
answers and reports, per question, whether removing it would change the
leader and how much of the leader's total it provides.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			catalog, _, err := c.loadCatalog(ctx, in)
			if err != nil {
				return err
			}
			group, err := application.LoadGroup(groupPath)
			if err != nil {
				return err
			}

			engine := application.NewEngine(application.WithEngineLogger(c.logger))
			report, err := engine.AnalyzeGroup(ctx, catalog, group)
			if err != nil {
				return err
			}

			printLeaderboard(c.stdout, application.Leaderboard(catalog, group.Members, group.Actuals), leaders)
			printReport(c.stdout, report, top)

			if jsonPath != "" {
				if err := writeJSON(jsonPath, report); err != nil {
					return err
				}
				fmt.Fprintf(c.stdout, "\nJSON report: %s\n", jsonPath)
			}
			return nil
		},
	}

	in.bind(cmd)
	cmd.Flags().StringVar(&groupPath, "group", "", "group members and actual answers (YAML or JSON)")
	cmd.Flags().StringVar(&jsonPath, "json", "", "write the full report as JSON to this file")
	cmd.Flags().IntVar(&top, "top", 12, "rows to print (0 prints all)")
	cmd.Flags().IntVar(&leaders, "leaders", 5, "leaderboard rows to print (0 prints all)")
	_ = cmd.MarkFlagRequired("group")
	return cmd
}

func (c *cli) newScoreCommand() *cobra.Command {
	var (
		in        inputFlags
		question  string
		predicted string
		actual    string
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score one stored prediction against a stored actual answer",
		Example: `  balance score --question all_teams_score_points --predicted yes --actual yes
  balance score --question drivers_championship_top_3 \
    --predicted '["Lando Norris","Max Verstappen","Oscar Piastri"]' \
    --actual '["Lando Norris","Oscar Piastri","Max Verstappen"]'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, _, err := c.loadCatalog(cmd.Context(), in)
			if err != nil {
				return err
			}
			points, err := application.NewEngine().Score(catalog, question, predicted, actual)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.stdout, "%s: %s\n", question, formatPoints(points))
			return nil
		},
	}

	in.bind(cmd)
	cmd.Flags().StringVar(&question, "question", "", "question id")
	cmd.Flags().StringVar(&predicted, "predicted", "", "stored predicted answer")
	cmd.Flags().StringVar(&actual, "actual", "", "stored actual answer")
	_ = cmd.MarkFlagRequired("question")
	return cmd
}

func (c *cli) newGenerateCommand() *cobra.Command {
	var (
		in      inputFlags
		outDir  string
		players int
		seed    uint32
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the sample catalog, roster and races, and optionally a synthetic group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if players < 0 {
				return fmt.Errorf("%w: --group-players must not be negative", domain.ErrInvalidSimulation)
			}
			samples, err := application.SampleFiles()
			if err != nil {
				return err
			}

			files := make(map[string][]byte, len(samples)+1)
			for name, data := range samples {
				files[name] = data
			}
			if players > 0 {
				catalog, priors, err := c.loadCatalog(cmd.Context(), in)
				if err != nil {
					return err
				}
				group, err := application.GenerateGroup(catalog, players, seed, priors)
				if err != nil {
					return err
				}
				data, err := yaml.Marshal(group)
				if err != nil {
					return fmt.Errorf("failed to encode group: %w", err)
				}
				files[groupFile] = data
			}

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("failed to create %s: %w", outDir, err)
			}
			for _, name := range sortedKeys(files) {
				path := filepath.Join(outDir, name)
				if err := checkNotExists(path, force); err != nil {
					return err
				}
			}
			for _, name := range sortedKeys(files) {
				path := filepath.Join(outDir, name)
				if err := os.WriteFile(path, files[name], 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", path, err)
				}
				fmt.Fprintf(c.stdout, "wrote %s\n", path)
			}
			return nil
		},
	}

	in.bind(cmd)
	cmd.Flags().StringVar(&outDir, "out", ".", "output directory")
	cmd.Flags().IntVar(&players, "group-players", 0, "also write a synthetic group with this many members")
	cmd.Flags().Uint32Var(&seed, "seed", defaultSeed, "seed for the synthetic group")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")
	return cmd
}

func writeJSON(path string, report *domain.BalanceReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
