// Command meshbench measures the Delaunay hierarchy: insertion and location
// throughput against a single-level walk, the shape of the level stack, and
// snapshot round trips through the configured store.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hupe1980/meshgo"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := DefaultConfig()
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "meshbench",
		Short:         "Benchmark the meshgo Delaunay hierarchy",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if configPath == "" {
				return cfg.Validate()
			}
			return loadConfigWithFlags(cmd.Flags(), configPath, &cfg)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "YAML config file; explicit flags take precedence")
	pf.IntVar(&cfg.Points, "points", cfg.Points, "number of points to insert")
	pf.StringVar(&cfg.Distribution, "distribution", cfg.Distribution, "point distribution: uniform, clustered, sphere or grid")
	pf.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")
	pf.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text or json")
	pf.IntVar(&cfg.Hierarchy.Ratio, "ratio", cfg.Hierarchy.Ratio, "inverse promotion probability")
	pf.IntVar(&cfg.Hierarchy.MaxLevels, "max-levels", cfg.Hierarchy.MaxLevels, "level cap, 0 for unbounded")
	pf.StringVar(&cfg.Hierarchy.Policy, "policy", cfg.Hierarchy.Policy, "location policy: fast or compact")

	rootCmd.AddCommand(newRunCmd(&cfg), newShapeCmd(&cfg))
	return rootCmd
}

func newRunCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Insert points, compare hierarchy and level 0 location, save a snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger(cfg.LogFormat, cfg.LogLevel)

			var collector meshgo.MetricsCollector
			basic := &meshgo.BasicMetricsCollector{}
			if cfg.Metrics.Addr != "" {
				reg := prometheus.NewRegistry()
				collector = NewPrometheusCollector(reg)
				defer serveMetrics(cfg.Metrics.Addr, reg, logger.Logger)()
			} else {
				collector = basic
			}

			res, err := runBenchmark(cmd.Context(), *cfg, cmd.OutOrStdout(), logger, collector)
			if err != nil {
				return err
			}
			if cfg.Metrics.Addr == "" {
				s := basic.GetStats()
				logger.Info("metrics",
					"insert_avg_levels", s.InsertAvgLevels,
					"locate_avg_steps", s.LocateAvgSteps,
					"snapshot_bytes", s.SnapshotBytes)
			}
			if res.Mismatches > 0 {
				return fmt.Errorf("%d of %d queries located differently than on level 0", res.Mismatches, res.Queries)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&cfg.Queries, "queries", cfg.Queries, "number of location queries")
	f.StringVar(&cfg.Snapshot.URI, "snapshot", cfg.Snapshot.URI, "snapshot store: mem://, file://dir, s3://bucket/prefix or minio://host/bucket/prefix")
	f.StringVar(&cfg.Snapshot.Name, "snapshot-name", cfg.Snapshot.Name, "archive name")
	f.StringVar(&cfg.Snapshot.Compression, "compression", cfg.Snapshot.Compression, "archive compression: none, lz4 or zstd")
	f.StringVar(&cfg.Snapshot.Mode, "mode", cfg.Snapshot.Mode, "record stream mode: binary or text")
	f.Int64Var(&cfg.Snapshot.RateLimit, "rate-limit", cfg.Snapshot.RateLimit, "snapshot transfer limit in bytes per second, 0 for unlimited")
	f.StringVar(&cfg.Snapshot.DynamoDBTable, "dynamodb-table", cfg.Snapshot.DynamoDBTable, "DynamoDB version catalog for s3:// snapshots")
	f.StringVar(&cfg.Metrics.Addr, "metrics-addr", cfg.Metrics.Addr, "serve Prometheus metrics on this address")
	return cmd
}

func newShapeCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shape",
		Short: "Compare mean level sizes over independent trials with n / ratio^i",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := runShape(cmd.Context(), *cfg, cmd.OutOrStdout())
			return err
		},
	}

	f := cmd.Flags()
	f.IntVar(&cfg.Shape.Trials, "trials", cfg.Shape.Trials, "number of independent hierarchies")
	f.IntVar(&cfg.Shape.Workers, "workers", cfg.Shape.Workers, "trials built in parallel")
	return cmd
}

// loadConfigWithFlags replaces cfg with the file contents and then
// re-applies every flag set on the command line.
func loadConfigWithFlags(flags *pflag.FlagSet, path string, cfg *Config) error {
	changed := map[string]string{}
	flags.Visit(func(f *pflag.Flag) {
		changed[f.Name] = f.Value.String()
	})

	loaded, err := LoadConfig(path)
	if err != nil {
		return err
	}
	*cfg = loaded

	for name, value := range changed {
		if err := flags.Set(name, value); err != nil {
			return fmt.Errorf("flag --%s: %w", name, err)
		}
	}
	return cfg.Validate()
}
