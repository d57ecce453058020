package sofa

import (
	"math/big"

	"github.com/sofa-bound/internal/geom"
)

// Params is the interval pair vector that fully determines one root node.
type Params struct {
	MuRange, NuRange []Interval
}

// aPrioriParams splits the pivot's nu interval [0, 1/normals[muFixIdx].y]
// into n equal parts and derives, for each part, the widest mu/nu ranges any
// sofa in it can occupy. The bounds come from dotting each normal against
// the six corner points of the pivot strip: the pivot's mu line meeting the
// unit-height band, and the part's two nu lines meeting it.
func aPrioriParams(normals []geom.Coord, muFixIdx, n int) []Params {
	mu := normals
	nu := muToNu(normals)

	mainNuMax := new(big.Rat).Inv(normals[muFixIdx].Y)

	uLine := geom.NewLine(ratZero, ratOne)
	lLine := geom.NewLine(ratZero, ratZero)
	muPivot := geom.LineFromNormal(mu[muFixIdx], ratZero)
	r0 := geom.Intersect(muPivot, uLine)
	r1 := geom.Intersect(muPivot, lLine)

	params := make([]Params, n)
	for i := 0; i < n; i++ {
		nuMin := new(big.Rat).Mul(mainNuMax, big.NewRat(int64(i), int64(n)))
		nuMax := new(big.Rat).Mul(mainNuMax, big.NewRat(int64(i+1), int64(n)))
		upper := geom.LineFromNormal(nu[muFixIdx], nuMax)
		lower := geom.LineFromNormal(nu[muFixIdx], nuMin)
		l0 := geom.Intersect(upper, uLine)
		l1 := geom.Intersect(lower, uLine)
		l2 := geom.Intersect(upper, lLine)
		l3 := geom.Intersect(lower, lLine)

		p := Params{
			MuRange: make([]Interval, len(normals)),
			NuRange: make([]Interval, len(normals)),
		}
		for j := range normals {
			switch {
			case j < muFixIdx:
				p.MuRange[j] = Interval{Min: r0.Dot(mu[j]), Max: r1.Dot(mu[j])}
				p.NuRange[j] = Interval{Min: l3.Dot(nu[j]), Max: l0.Dot(nu[j])}
			case j == muFixIdx:
				p.MuRange[j] = Interval{Min: ratZero, Max: ratZero}
				p.NuRange[j] = Interval{Min: nuMin, Max: nuMax}
			default:
				p.MuRange[j] = Interval{Min: r1.Dot(mu[j]), Max: r0.Dot(mu[j])}
				p.NuRange[j] = Interval{Min: l1.Dot(nu[j]), Max: l2.Dot(nu[j])}
			}
		}
		params[i] = p
	}
	return params
}

// APrioriSofas builds the initial node pool: n root nodes covering the whole
// parameter space of the given normals with mu frozen at muFixIdx.
func APrioriSofas(normals []geom.Coord, muFixIdx, n int) []*Sofa {
	params := aPrioriParams(normals, muFixIdx, n)
	sofas := make([]*Sofa, n)
	for i, p := range params {
		sofas[i] = New(normals, p.MuRange, p.NuRange, muFixIdx)
	}
	return sofas
}
