package hierarchy

import (
	"errors"
	"log/slog"

	"github.com/hupe1980/meshgo/delaunay"
)

// Policy selects the location strategy.
type Policy uint8

const (
	// FastLocation maintains the upper levels.
	FastLocation Policy = iota
	// CompactLocation never promotes, trading location speed for memory.
	CompactLocation
)

func (p Policy) String() string {
	if p == CompactLocation {
		return "compact"
	}
	return "fast"
}

var (
	// ErrInvalidRatio is returned for a promotion ratio below 1.
	ErrInvalidRatio = errors.New("hierarchy: ratio must be positive")
	// ErrInvalidMaxLevels is returned for a negative level cap, or no cap
	// with a ratio of 1.
	ErrInvalidMaxLevels = errors.New("hierarchy: invalid max levels")
)

// Options configures a Hierarchy.
type Options struct {
	// Ratio is the inverse promotion probability.
	Ratio int

	// MaxLevels caps the number of levels. 0 means unbounded.
	MaxLevels int

	// Policy selects the location strategy.
	Policy Policy

	// RandomSeed seeds the promotion draws. A nil seed uses the clock.
	RandomSeed *int64

	// Triangulation configures every level.
	Triangulation delaunay.Options

	// Logger receives level lifecycle events. Nil disables logging.
	Logger *slog.Logger

	// Observer receives per-operation measurements. Nil disables them.
	Observer Observer
}

// DefaultOptions contains the default options for a Hierarchy.
var DefaultOptions = Options{
	Ratio:         30,
	MaxLevels:     5,
	Policy:        FastLocation,
	Triangulation: delaunay.DefaultOptions,
}

// Observer is notified of completed operations.
type Observer interface {
	// OnInsert reports the number of levels the point was added to,
	// 0 for a duplicate.
	OnInsert(levels int)
	// OnRemove reports the number of levels the point was removed from.
	OnRemove(levels int)
	// OnLocate reports the walk steps summed over all levels.
	OnLocate(levels, steps int)
}

// NoopObserver discards all measurements.
type NoopObserver struct{}

// OnInsert implements Observer.
func (NoopObserver) OnInsert(int) {}

// OnRemove implements Observer.
func (NoopObserver) OnRemove(int) {}

// OnLocate implements Observer.
func (NoopObserver) OnLocate(int, int) {}
