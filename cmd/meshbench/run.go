package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/hupe1980/meshgo"
	"github.com/hupe1980/meshgo/delaunay"
	"github.com/hupe1980/meshgo/mesh"
	"github.com/hupe1980/meshgo/testutil"
)

// runResult summarizes one benchmark run.
type runResult struct {
	Inserted   int
	Insert     time.Duration
	Queries    int
	Hierarchy  time.Duration
	Flat       time.Duration
	Mismatches int
	Levels     int
	Saved      int
	Loaded     int
}

// runBenchmark inserts the configured points, answers every query with the
// hierarchy and with a walk on level 0 alone, and optionally saves and
// reloads a snapshot.
func runBenchmark(ctx context.Context, cfg Config, out io.Writer, logger *meshgo.Logger, metrics meshgo.MetricsCollector) (runResult, error) {
	m, err := meshgo.New[int](mesh.IntCodec{},
		meshgo.WithHierarchyOptions(cfg.hierarchyOptions(cfg.Seed)),
		meshgo.WithSnapshotOptions(cfg.snapshotOptions()),
		meshgo.WithLogger(logger),
		meshgo.WithMetricsCollector(metrics),
	)
	if err != nil {
		return runResult{}, err
	}

	rng := testutil.NewRNG(cfg.Seed)
	pts := generatePoints(rng, cfg.Distribution, cfg.Points)
	queries := rng.UniformPoints(cfg.Queries, -1, 1)

	var res runResult
	start := time.Now()
	for i, p := range pts {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		// Every point is classified so the mesh can be saved.
		if _, err := m.InsertVertex(ctx, p, 3, i); err != nil {
			return res, fmt.Errorf("insert point %d: %w", i, err)
		}
	}
	res.Insert = time.Since(start)
	res.Inserted = m.Len()
	res.Levels = m.Hierarchy().NumberOfLevels()
	logger.Info("points inserted", "count", res.Inserted, "levels", res.Levels, "duration", res.Insert)

	hierarchyLocs := make([]delaunay.Location, len(queries))
	start = time.Now()
	for i, q := range queries {
		hierarchyLocs[i] = m.Locate(ctx, q)
	}
	res.Hierarchy = time.Since(start)

	level0 := m.Hierarchy().Level(0)
	start = time.Now()
	for i, q := range queries {
		loc := level0.Locate(q, delaunay.CellHandle{})
		if loc.Cell != hierarchyLocs[i].Cell || loc.Type != hierarchyLocs[i].Type {
			res.Mismatches++
		}
	}
	res.Flat = time.Since(start)
	res.Queries = len(queries)

	if cfg.Snapshot.URI != "" {
		if err := saveAndReload(ctx, cfg, m, logger, metrics, &res); err != nil {
			return res, err
		}
	}

	if p, ok := metrics.(*PrometheusCollector); ok {
		p.SetLevels(m.Stats())
	}
	writeRunReport(out, m, res)
	return res, nil
}

func saveAndReload(ctx context.Context, cfg Config, m *meshgo.Mesh[int], logger *meshgo.Logger, metrics meshgo.MetricsCollector, res *runResult) error {
	store, err := openStore(ctx, cfg.Snapshot)
	if err != nil {
		return err
	}
	if err := m.Save(ctx, store, cfg.Snapshot.Name); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	res.Saved = m.Len()

	reloaded, err := meshgo.Open[int](ctx, store, cfg.Snapshot.Name, mesh.IntCodec{},
		meshgo.WithHierarchyOptions(cfg.hierarchyOptions(cfg.Seed)),
		meshgo.WithLogger(logger),
		meshgo.WithMetricsCollector(metrics),
	)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	res.Loaded = reloaded.Len()
	if res.Loaded != res.Saved {
		return fmt.Errorf("snapshot round trip: saved %d points, loaded %d", res.Saved, res.Loaded)
	}
	return nil
}

func perOp(d time.Duration, n int) time.Duration {
	if n == 0 {
		return 0
	}
	return d / time.Duration(n)
}

func writeRunReport(out io.Writer, m *meshgo.Mesh[int], res runResult) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LEVEL\tVERTICES\tCELLS\tFINITE CELLS")
	for _, s := range m.Stats() {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\n", s.Level, s.Vertices, s.Cells, s.FiniteCells)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "PHASE\tCOUNT\tTOTAL\tPER OP")
	fmt.Fprintf(tw, "insert\t%d\t%v\t%v\n", res.Inserted, res.Insert, perOp(res.Insert, res.Inserted))
	fmt.Fprintf(tw, "locate (hierarchy)\t%d\t%v\t%v\n", res.Queries, res.Hierarchy, perOp(res.Hierarchy, res.Queries))
	fmt.Fprintf(tw, "locate (level 0)\t%d\t%v\t%v\n", res.Queries, res.Flat, perOp(res.Flat, res.Queries))
	_ = tw.Flush()

	fmt.Fprintf(out, "\nmismatches: %d\n", res.Mismatches)
	if res.Saved > 0 {
		fmt.Fprintf(out, "snapshot: saved %d, loaded %d\n", res.Saved, res.Loaded)
	}
}

// newLogger builds the stderr logger for a validated format.
func newLogger(format, level string) *meshgo.Logger {
	if strings.EqualFold(format, "json") {
		return meshgo.NewJSONLogger(parseLogLevel(level))
	}
	return meshgo.NewTextLogger(parseLogLevel(level))
}

func parseLogLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
