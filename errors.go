package meshgo

import (
	"errors"
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/hupe1980/meshgo/delaunay"
	"github.com/hupe1980/meshgo/hierarchy"
	"github.com/hupe1980/meshgo/snapshot"
)

var (
	// ErrNotFound is returned when a vertex or archive does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmpty is returned by operations that need at least one point.
	ErrEmpty = errors.New("mesh is empty")

	// ErrNonFinitePoint is returned for points with NaN or infinite coordinates.
	ErrNonFinitePoint = delaunay.ErrNonFinitePoint
)

// ErrOutOfBounds indicates a point outside the configured bounds.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrOutOfBounds struct {
	Point  r3.Vector
	Bounds delaunay.Box
	cause  error
}

func (e *ErrOutOfBounds) Error() string {
	return fmt.Sprintf("point %v outside bounds [%v, %v]", e.Point, e.Bounds.Min, e.Bounds.Max)
}

func (e *ErrOutOfBounds) Unwrap() error { return e.cause }

// ErrSignatureMismatch indicates an archive written with a different index
// codec.
type ErrSignatureMismatch struct {
	Expected string
	Actual   string
}

func (e *ErrSignatureMismatch) Error() string {
	return fmt.Sprintf("io signature mismatch: expected %q, got %q", e.Expected, e.Actual)
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Not found unification.
	if errors.Is(err, hierarchy.ErrVertexNotFound) ||
		errors.Is(err, delaunay.ErrVertexNotFound) ||
		errors.Is(err, snapshot.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	var oob *delaunay.ErrOutOfBounds
	if errors.As(err, &oob) {
		return &ErrOutOfBounds{Point: oob.Point, Bounds: oob.Bounds, cause: err}
	}

	return err
}
