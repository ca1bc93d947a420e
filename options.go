package meshgo

import (
	"log/slog"

	"github.com/hupe1980/meshgo/delaunay"
	"github.com/hupe1980/meshgo/hierarchy"
	"github.com/hupe1980/meshgo/snapshot"
)

type options struct {
	hierarchy        []func(*hierarchy.Options)
	snapshot         []func(*snapshot.Options)
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures Mesh constructor/load behavior.
type Option func(*options)

// WithHierarchyOptions passes options through to the underlying hierarchy.
//
// Example:
//
//	m, _ := meshgo.New[int](mesh.IntCodec{}, meshgo.WithHierarchyOptions(func(o *hierarchy.Options) {
//	    o.Policy = hierarchy.CompactLocation
//	}))
func WithHierarchyOptions(optFns ...func(*hierarchy.Options)) Option {
	return func(o *options) {
		o.hierarchy = append(o.hierarchy, optFns...)
	}
}

// WithRatio sets the inverse promotion probability between levels.
func WithRatio(ratio int) Option {
	return WithHierarchyOptions(func(o *hierarchy.Options) {
		o.Ratio = ratio
	})
}

// WithMaxLevels caps the number of hierarchy levels. 0 means unbounded.
func WithMaxLevels(n int) Option {
	return WithHierarchyOptions(func(o *hierarchy.Options) {
		o.MaxLevels = n
	})
}

// WithSeed makes promotion and walk randomization reproducible.
func WithSeed(seed int64) Option {
	return WithHierarchyOptions(func(o *hierarchy.Options) {
		o.RandomSeed = &seed
		o.Triangulation.RandomSeed = &seed
	})
}

// WithBounds sets the region points may be inserted into.
// Points outside it are rejected with ErrOutOfBounds.
func WithBounds(b delaunay.Box) Option {
	return WithHierarchyOptions(func(o *hierarchy.Options) {
		o.Triangulation.Bounds = b
	})
}

// WithSnapshotOptions configures how Save writes archives.
//
// Example:
//
//	m, _ := meshgo.New[int](mesh.IntCodec{}, meshgo.WithSnapshotOptions(func(o *snapshot.Options) {
//	    o.Compression = snapshot.CompressionZSTD
//	}))
func WithSnapshotOptions(optFns ...func(*snapshot.Options)) Option {
	return func(o *options) {
		o.snapshot = append(o.snapshot, optFns...)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &meshgo.BasicMetricsCollector{}
//	m, _ := meshgo.New[int](mesh.IntCodec{}, meshgo.WithMetricsCollector(metrics))
//	// ... use m ...
//	stats := metrics.GetStats()
//	fmt.Printf("Inserts: %d, Avg levels: %.2f\n", stats.InsertCount, stats.InsertAvgLevels)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}
