package meshgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus
// (see cmd/meshbench for one).
type MetricsCollector interface {
	// RecordInsert is called after each insert operation.
	// levels is the number of hierarchy levels the point was added to
	// (0 for a duplicate), err is nil if successful.
	RecordInsert(levels int, duration time.Duration, err error)

	// RecordRemove is called after each remove operation.
	RecordRemove(levels int, duration time.Duration, err error)

	// RecordLocate is called after each locate operation.
	// steps is the number of cells visited over all levels.
	RecordLocate(steps int, duration time.Duration)

	// RecordSnapshot is called after each save (or load, with load true).
	// size is the archive size in bytes.
	RecordSnapshot(load bool, size int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordInsert(int, time.Duration, error)         {}
func (NoopMetricsCollector) RecordRemove(int, time.Duration, error)         {}
func (NoopMetricsCollector) RecordLocate(int, time.Duration)                {}
func (NoopMetricsCollector) RecordSnapshot(bool, int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	InsertCount      atomic.Int64
	InsertErrors     atomic.Int64
	InsertLevels     atomic.Int64
	InsertTotalNanos atomic.Int64
	RemoveCount      atomic.Int64
	RemoveErrors     atomic.Int64
	LocateCount      atomic.Int64
	LocateSteps      atomic.Int64
	LocateTotalNanos atomic.Int64
	SaveCount        atomic.Int64
	LoadCount        atomic.Int64
	SnapshotErrors   atomic.Int64
	SnapshotBytes    atomic.Int64
}

// RecordInsert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInsert(levels int, duration time.Duration, err error) {
	b.InsertCount.Add(1)
	b.InsertTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.InsertErrors.Add(1)
		return
	}
	b.InsertLevels.Add(int64(levels))
}

// RecordRemove implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRemove(_ int, _ time.Duration, err error) {
	b.RemoveCount.Add(1)
	if err != nil {
		b.RemoveErrors.Add(1)
	}
}

// RecordLocate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLocate(steps int, duration time.Duration) {
	b.LocateCount.Add(1)
	b.LocateSteps.Add(int64(steps))
	b.LocateTotalNanos.Add(duration.Nanoseconds())
}

// RecordSnapshot implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSnapshot(load bool, size int, _ time.Duration, err error) {
	if load {
		b.LoadCount.Add(1)
	} else {
		b.SaveCount.Add(1)
	}
	if err != nil {
		b.SnapshotErrors.Add(1)
		return
	}
	b.SnapshotBytes.Add(int64(size))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		InsertCount:     b.InsertCount.Load(),
		InsertErrors:    b.InsertErrors.Load(),
		InsertAvgNanos:  avg(b.InsertTotalNanos.Load(), b.InsertCount.Load()),
		InsertAvgLevels: avgFloat(b.InsertLevels.Load(), b.InsertCount.Load()-b.InsertErrors.Load()),
		RemoveCount:     b.RemoveCount.Load(),
		RemoveErrors:    b.RemoveErrors.Load(),
		LocateCount:     b.LocateCount.Load(),
		LocateAvgNanos:  avg(b.LocateTotalNanos.Load(), b.LocateCount.Load()),
		LocateAvgSteps:  avgFloat(b.LocateSteps.Load(), b.LocateCount.Load()),
		SaveCount:       b.SaveCount.Load(),
		LoadCount:       b.LoadCount.Load(),
		SnapshotErrors:  b.SnapshotErrors.Load(),
		SnapshotBytes:   b.SnapshotBytes.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

func avgFloat(total, count int64) float64 {
	if count == 0 {
		return 0
	}
	return float64(total) / float64(count)
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	InsertCount     int64
	InsertErrors    int64
	InsertAvgNanos  int64
	InsertAvgLevels float64
	RemoveCount     int64
	RemoveErrors    int64
	LocateCount     int64
	LocateAvgNanos  int64
	LocateAvgSteps  float64
	SaveCount       int64
	LoadCount       int64
	SnapshotErrors  int64
	SnapshotBytes   int64
}
