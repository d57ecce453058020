package geom

import (
	"fmt"
	"math/big"
)

// Line is a non-vertical line in slope-intercept form y = Slope*x + Intercept.
// Vertical lines never arise here: every normal vector in play has positive
// y-component, so every boundary has a finite slope.
type Line struct {
	Slope, Intercept *big.Rat
}

// NewLine creates a line from slope and intercept.
func NewLine(slope, intercept *big.Rat) Line {
	return Line{Slope: slope, Intercept: intercept}
}

// LineThroughPoints creates the line through two points with distinct x.
// Panics on equal x: a vertical boundary is a precondition violation.
func LineThroughPoints(p0, p1 Coord) Line {
	dx := new(big.Rat).Sub(p1.X, p0.X)
	if dx.Sign() == 0 {
		panic(fmt.Sprintf("geom: vertical line through %s and %s", p0, p1))
	}
	slope := new(big.Rat).Sub(p1.Y, p0.Y)
	slope.Quo(slope, dx)
	// intercept = (p1.x*p0.y - p0.x*p1.y) / (p1.x - p0.x)
	a := new(big.Rat).Mul(p1.X, p0.Y)
	b := new(big.Rat).Mul(p0.X, p1.Y)
	intercept := a.Sub(a, b)
	intercept.Quo(intercept, dx)
	return Line{Slope: slope, Intercept: intercept}
}

// LineFromNormal creates the line {p : p·n = d} for a normal n with n.y > 0.
func LineFromNormal(n Coord, d *big.Rat) Line {
	if n.Y.Sign() <= 0 {
		panic(fmt.Sprintf("geom: normal %s must have positive y", n))
	}
	slope := new(big.Rat).Neg(n.X)
	slope.Quo(slope, n.Y)
	intercept := new(big.Rat).Quo(d, n.Y)
	return Line{Slope: slope, Intercept: intercept}
}

// Cmp orders lines lexicographically by (slope, intercept).
func (l Line) Cmp(other Line) int {
	if c := l.Slope.Cmp(other.Slope); c != 0 {
		return c
	}
	return l.Intercept.Cmp(other.Intercept)
}

// Less reports whether l sorts before other.
func (l Line) Less(other Line) bool { return l.Cmp(other) < 0 }

// Equal reports whether the lines coincide.
func (l Line) Equal(other Line) bool { return l.Cmp(other) == 0 }

// Intersection returns the meeting point of two non-parallel lines.
func (l Line) Intersection(other Line) Coord {
	ds := new(big.Rat).Sub(other.Slope, l.Slope)
	if ds.Sign() == 0 {
		panic("geom: intersection of parallel lines")
	}
	x := new(big.Rat).Sub(l.Intercept, other.Intercept)
	x.Quo(x, ds)
	// y = (other.slope*l.intercept - other.intercept*l.slope) / ds
	a := new(big.Rat).Mul(other.Slope, l.Intercept)
	b := new(big.Rat).Mul(other.Intercept, l.Slope)
	y := a.Sub(a, b)
	y.Quo(y, ds)
	return Coord{X: x, Y: y}
}

// Intersect returns the meeting point of l0 and l1.
func Intersect(l0, l1 Line) Coord {
	return l0.Intersection(l1)
}

// ParallelIntercept returns the intercept of the line parallel to l passing
// through p: p.y - slope*p.x.
func (l Line) ParallelIntercept(p Coord) *big.Rat {
	sx := new(big.Rat).Mul(l.Slope, p.X)
	return sx.Sub(p.Y, sx)
}

// String renders the line as "y = s*x + b".
func (l Line) String() string {
	return fmt.Sprintf("y = %s*x + %s", l.Slope.RatString(), l.Intercept.RatString())
}

// Arrangement classifies the qualitative shape of three lines of pairwise
// distinct slopes: U when the middle-slope line passes strictly above the
// intersection of the outer two, V when it passes through or below.
type Arrangement bool

// The two arrangement values.
const (
	U Arrangement = false
	V Arrangement = true
)

// String returns "U" or "V".
func (a Arrangement) String() string {
	if a == V {
		return "V"
	}
	return "U"
}

// arrangeGeneral assumes slopes in strictly increasing order.
func arrangeGeneral(l0, l1, l2 Line) Arrangement {
	p := Intersect(l0, l2)
	if l1.Intercept.Cmp(l1.ParallelIntercept(p)) > 0 {
		return U
	}
	return V
}

// arrangeOrdered assumes the lines are already in (slope, intercept) order.
// Any parallel pair degenerates to V.
func arrangeOrdered(l0, l1, l2 Line) Arrangement {
	if l0.Slope.Cmp(l1.Slope) == 0 || l1.Slope.Cmp(l2.Slope) == 0 {
		return V
	}
	return arrangeGeneral(l0, l1, l2)
}

// Arrange classifies three lines in any order, sorting them first.
func Arrange(l0, l1, l2 Line) Arrangement {
	if l0.Cmp(l1) > 0 {
		l0, l1 = l1, l0
	}
	if l1.Cmp(l2) > 0 {
		l1, l2 = l2, l1
	}
	if l0.Cmp(l1) > 0 {
		l0, l1 = l1, l0
	}
	return arrangeOrdered(l0, l1, l2)
}
