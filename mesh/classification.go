package mesh

import (
	"errors"
	"fmt"
)

// ErrDimensionOutOfRange is the panic value for dimensions outside [-1, 3].
var ErrDimensionOutOfRange = errors.New("mesh: dimension out of range")

// Kind is the kind of a Classification.
type Kind uint8

const (
	// Unclassified vertices lie on no known feature (dimension -1).
	Unclassified Kind = iota
	// Ordinary vertices lie on a feature of their dimension.
	Ordinary
	// Special vertices are ordinary or unclassified vertices flagged by the
	// mesher for special treatment.
	Special
)

// Classification is the feature classification of a vertex.
// The zero value is unclassified.
type Classification struct {
	kind Kind
	dim  int8
}

// Classify returns the ordinary classification of dimension d, or the
// unclassified one for d == -1. It panics if d is outside [-1, 3].
func Classify(d int) Classification {
	checkDimension(d)
	if d == -1 {
		return Classification{}
	}
	return Classification{kind: Ordinary, dim: int8(d)}
}

func checkDimension(d int) {
	if d < -1 || d > 3 {
		panic(fmt.Errorf("%w: %d", ErrDimensionOutOfRange, d))
	}
}

// Kind returns the kind of c.
func (c Classification) Kind() Kind { return c.kind }

// Dimension returns the decoded dimension, -1 when unclassified.
func (c Classification) Dimension() int {
	if c.kind == Unclassified {
		return -1
	}
	return int(c.dim)
}

// IsSpecial reports whether c is flagged special.
func (c Classification) IsSpecial() bool { return c.kind == Special }

// WithSpecial returns c with the special flag set to flag. Clearing the
// flag restores exactly the classification it was set on.
func (c Classification) WithSpecial(flag bool) Classification {
	if c.IsSpecial() == flag {
		return c
	}
	if flag {
		return Classification{kind: Special, dim: int8(c.Dimension())}
	}
	return Classify(int(c.dim))
}

func (c Classification) String() string {
	switch c.kind {
	case Ordinary:
		return fmt.Sprintf("ordinary(%d)", c.dim)
	case Special:
		return fmt.Sprintf("special(%d)", c.dim)
	default:
		return "unclassified"
	}
}
