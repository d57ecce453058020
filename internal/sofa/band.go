// Package sofa models branch-and-bound candidates for the moving-sofa upper
// bound: band pairs of parallel boundary lines, a caching line context that
// derives cheaply under band bisection, and the sofa node itself with its
// polygon set, exact area and halve/gain operations.
package sofa

import (
	"fmt"
	"math/big"

	"github.com/sofa-bound/internal/geom"
)

// BandPair is one slope group of four parallel lines with strictly
// increasing intercepts il < iu < ol < ou: the inner-lower, inner-upper,
// outer-lower and outer-upper boundaries of one parameter band.
type BandPair struct {
	IL, IU, OL, OU geom.Line
}

// NewBandPair builds a band pair from a slope and four intercepts.
func NewBandPair(slope *big.Rat, il, iu, ol, ou *big.Rat) BandPair {
	return BandPair{
		IL: geom.NewLine(slope, il),
		IU: geom.NewLine(slope, iu),
		OL: geom.NewLine(slope, ol),
		OU: geom.NewLine(slope, ou),
	}
}

// BandPairFromNormal builds a band pair from a unit normal and four dot
// values.
func BandPairFromNormal(unit geom.Coord, il, iu, ol, ou *big.Rat) BandPair {
	return BandPair{
		IL: geom.LineFromNormal(unit, il),
		IU: geom.LineFromNormal(unit, iu),
		OL: geom.LineFromNormal(unit, ol),
		OU: geom.LineFromNormal(unit, ou),
	}
}

// validate panics unless the four lines are parallel with strictly
// increasing intercepts.
func (bp BandPair) validate() {
	if bp.IL.Slope.Cmp(bp.IU.Slope) != 0 ||
		bp.IU.Slope.Cmp(bp.OL.Slope) != 0 ||
		bp.OL.Slope.Cmp(bp.OU.Slope) != 0 {
		panic(fmt.Sprintf("sofa: band pair with mixed slopes: %s / %s / %s / %s",
			bp.IL, bp.IU, bp.OL, bp.OU))
	}
	if bp.IL.Intercept.Cmp(bp.IU.Intercept) >= 0 ||
		bp.IU.Intercept.Cmp(bp.OL.Intercept) >= 0 ||
		bp.OL.Intercept.Cmp(bp.OU.Intercept) >= 0 {
		panic(fmt.Sprintf("sofa: band pair intercepts not increasing: %s / %s / %s / %s",
			bp.IL, bp.IU, bp.OL, bp.OU))
	}
}
