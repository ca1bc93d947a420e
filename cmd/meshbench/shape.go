package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/meshgo/hierarchy"
	"github.com/hupe1980/meshgo/resource"
	"github.com/hupe1980/meshgo/testutil"
)

// shapeResult compares the measured level sizes with their expectation.
type shapeResult struct {
	Trials int
	// MeanSizes[i] is the mean vertex count of level i.
	MeanSizes []float64
	// Expected[i] is n / ratio^i.
	Expected       []float64
	MeanLevels     float64
	ExpectedLevels float64
}

// runShape builds cfg.Shape.Trials independent hierarchies in parallel and
// averages their level sizes.
func runShape(ctx context.Context, cfg Config, out io.Writer) (shapeResult, error) {
	trials := cfg.Shape.Trials
	sizes := make([][]int, trials)

	rc := resource.NewController(resource.Config{MaxWorkers: int64(cfg.Shape.Workers)})
	g, ctx := errgroup.WithContext(ctx)
	for trial := range trials {
		g.Go(func() error {
			if err := rc.AcquireWorker(ctx); err != nil {
				return err
			}
			defer rc.ReleaseWorker()

			seed := cfg.Seed + int64(trial)
			h, err := hierarchy.New[struct{}](cfg.hierarchyOptions(seed))
			if err != nil {
				return err
			}
			rng := testutil.NewRNG(seed)
			for _, p := range generatePoints(rng, cfg.Distribution, cfg.Points) {
				if err := ctx.Err(); err != nil {
					return err
				}
				if _, err := h.Insert(p); err != nil {
					return fmt.Errorf("trial %d: %w", trial, err)
				}
			}
			for _, s := range h.Stats() {
				sizes[trial] = append(sizes[trial], s.Vertices)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return shapeResult{}, err
	}

	res := summarizeShape(sizes, cfg.Hierarchy.Ratio)
	writeShapeReport(out, res)
	return res, nil
}

func summarizeShape(sizes [][]int, ratio int) shapeResult {
	res := shapeResult{Trials: len(sizes)}
	if len(sizes) == 0 {
		return res
	}

	depth, levels := 0, 0
	for _, s := range sizes {
		depth = max(depth, len(s))
		levels += len(s)
	}
	res.MeanSizes = make([]float64, depth)
	res.Expected = make([]float64, depth)
	for _, s := range sizes {
		for i, v := range s {
			res.MeanSizes[i] += float64(v)
		}
	}
	n := 0.0
	for i := range res.MeanSizes {
		res.MeanSizes[i] /= float64(len(sizes))
		if i == 0 {
			n = res.MeanSizes[0]
		}
		res.Expected[i] = n / math.Pow(float64(ratio), float64(i))
	}
	res.MeanLevels = float64(levels) / float64(len(sizes))
	if ratio > 1 && n > 1 {
		res.ExpectedLevels = math.Log(n) / math.Log(float64(ratio))
	}
	return res
}

func writeShapeReport(out io.Writer, res shapeResult) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LEVEL\tMEAN VERTICES\tEXPECTED")
	for i := range res.MeanSizes {
		fmt.Fprintf(tw, "%d\t%.1f\t%.1f\n", i, res.MeanSizes[i], res.Expected[i])
	}
	_ = tw.Flush()
	fmt.Fprintf(out, "\ntrials: %d, mean levels: %.2f, log n / log ratio: %.2f\n",
		res.Trials, res.MeanLevels, res.ExpectedLevels)
}
