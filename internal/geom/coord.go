// Package geom implements exact rational planar geometry: points and lines
// over arbitrary-precision rationals, the three-line arrangement predicate,
// and polygon clipping against half-plane regions addressed by line ids.
//
// All rationals are treated as immutable values. Operations allocate fresh
// big.Rat results and never mutate their operands, so Coord and Line values
// may be shared freely across goroutines and derived contexts.
package geom

import (
	"fmt"
	"math/big"
)

// Coord is an exact point in the plane.
type Coord struct {
	X, Y *big.Rat
}

// NewCoord creates a coordinate from two rationals.
func NewCoord(x, y *big.Rat) Coord {
	return Coord{X: x, Y: y}
}

// Equal reports componentwise equality.
func (c Coord) Equal(other Coord) bool {
	return c.X.Cmp(other.X) == 0 && c.Y.Cmp(other.Y) == 0
}

// Dot returns the dot product with other.
func (c Coord) Dot(other Coord) *big.Rat {
	xx := new(big.Rat).Mul(c.X, other.X)
	yy := new(big.Rat).Mul(c.Y, other.Y)
	return xx.Add(xx, yy)
}

// String renders the point as "(x, y)".
func (c Coord) String() string {
	return fmt.Sprintf("(%s, %s)", c.X.RatString(), c.Y.RatString())
}
