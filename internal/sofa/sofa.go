package sofa

import (
	"fmt"
	"math/big"

	"github.com/sofa-bound/internal/geom"
)

// Interval is a closed rational interval with Min <= Max.
type Interval struct {
	Min, Max *big.Rat
}

// Avg returns the midpoint.
func (iv Interval) Avg() *big.Rat {
	m := new(big.Rat).Add(iv.Min, iv.Max)
	return m.Quo(m, big.NewRat(2, 1))
}

// HalveType selects which half of which parameter axis a bisection keeps.
type HalveType uint8

// The four bisections of a parameter axis.
const (
	MuDown HalveType = iota
	MuUp
	NuDown
	NuUp
)

// HalveTypes lists all four in scan order.
var HalveTypes = [4]HalveType{MuDown, MuUp, NuDown, NuUp}

// String names the halve type.
func (t HalveType) String() string {
	switch t {
	case MuDown:
		return "mu-down"
	case MuUp:
		return "mu-up"
	case NuDown:
		return "nu-down"
	case NuUp:
		return "nu-up"
	default:
		return "unknown"
	}
}

// IsMu reports whether the halve acts on the mu axis.
func (t HalveType) IsMu() bool { return t == MuDown || t == MuUp }

// direction maps the halve onto the band bisection it requires.
func (t HalveType) direction() BranchDirection {
	if t == MuDown || t == NuDown {
		return Down
	}
	return Up
}

// Sofa is one branch-and-bound node: a candidate region that upper-bounds
// every sofa whose bounding rectangles at each rotation angle fall within
// its mu/nu intervals. The polygon set is the intersection of the
// half-plane and two-half-plane-union constraints induced by the intervals,
// and Area is its exact total signed area.
type Sofa struct {
	N        int
	MuFixIdx int
	Mu, Nu   []geom.Coord
	MuRange  []Interval
	NuRange  []Interval
	Ctx      *LineContext
	Polygons geom.Polygons
	Area     *big.Rat
}

// muToNu rotates each normal by 90 degrees counterclockwise.
func muToNu(mu []geom.Coord) []geom.Coord {
	nu := make([]geom.Coord, len(mu))
	for i, v := range mu {
		nu[i] = geom.NewCoord(new(big.Rat).Neg(v.Y), v.X)
	}
	return nu
}

// Line id layout of a sofa context: axes 0..N-1 are the right side indexed
// by mu, axis N the fixed horizontal base, axes N+1..2N the left side
// indexed by nu.

func (s *Sofa) hl() geom.LineID { return geom.LineID(s.N * 4) }
func (s *Sofa) hu() geom.LineID { return geom.LineID(s.N*4 + 3) }

func (s *Sofa) rdd(i int) geom.LineID { return geom.LineID(i * 4) }
func (s *Sofa) rdu(i int) geom.LineID { return geom.LineID(i*4 + 1) }
func (s *Sofa) rud(i int) geom.LineID { return geom.LineID(i*4 + 2) }
func (s *Sofa) ruu(i int) geom.LineID { return geom.LineID(i*4 + 3) }

func (s *Sofa) ldd(i int) geom.LineID { return geom.LineID((i + s.N + 1) * 4) }
func (s *Sofa) ldu(i int) geom.LineID { return geom.LineID((i+s.N+1)*4 + 1) }
func (s *Sofa) lud(i int) geom.LineID { return geom.LineID((i+s.N+1)*4 + 2) }
func (s *Sofa) luu(i int) geom.LineID { return geom.LineID((i+s.N+1)*4 + 3) }

var (
	ratZero     = big.NewRat(0, 1)
	ratOne      = big.NewRat(1, 1)
	ratOneThird = big.NewRat(1, 3)
	ratTwoThird = big.NewRat(2, 3)
)

// makeBandPairs lays out the 2N+1 band pairs of a root context. A free axis
// with interval [min, max] gets intercepts (min, avg, avg+1, max+1); the
// frozen mu axis gets (m, m+1/3, m+2/3, m+1); the base band is
// (0, 1/3, 2/3, 1).
func makeBandPairs(mu, nu []geom.Coord, muRange, nuRange []Interval, muFixIdx int) []BandPair {
	n := len(mu)
	if len(nu) != n || len(muRange) != n || len(nuRange) != n {
		panic("sofa: normals and ranges disagree in length")
	}

	res := make([]BandPair, 0, 2*n+1)
	for i := 0; i < n; i++ {
		if i == muFixIdx {
			if muRange[i].Min.Cmp(muRange[i].Max) != 0 {
				panic(fmt.Sprintf("sofa: mu range %d must be degenerate", i))
			}
			m := muRange[i].Min
			res = append(res, BandPairFromNormal(mu[i],
				m,
				new(big.Rat).Add(m, ratOneThird),
				new(big.Rat).Add(m, ratTwoThird),
				new(big.Rat).Add(m, ratOne)))
			continue
		}
		if muRange[i].Min.Cmp(muRange[i].Max) >= 0 {
			panic(fmt.Sprintf("sofa: mu range %d is empty", i))
		}
		avg := muRange[i].Avg()
		res = append(res, BandPairFromNormal(mu[i],
			muRange[i].Min,
			avg,
			new(big.Rat).Add(avg, ratOne),
			new(big.Rat).Add(muRange[i].Max, ratOne)))
	}

	res = append(res, NewBandPair(ratZero, ratZero, ratOneThird, ratTwoThird, ratOne))

	for i := 0; i < n; i++ {
		if nuRange[i].Min.Cmp(nuRange[i].Max) >= 0 {
			panic(fmt.Sprintf("sofa: nu range %d is empty", i))
		}
		avg := nuRange[i].Avg()
		res = append(res, BandPairFromNormal(nu[i],
			nuRange[i].Min,
			avg,
			new(big.Rat).Add(avg, ratOne),
			new(big.Rat).Add(nuRange[i].Max, ratOne)))
	}
	return res
}

// New constructs a root node from unit normals and explicit ranges. Every
// normal must lie strictly in the first quadrant on the unit circle, every
// range must be non-degenerate except mu at muFixIdx.
func New(normals []geom.Coord, muRange, nuRange []Interval, muFixIdx int) *Sofa {
	for _, c := range normals {
		if c.X.Sign() <= 0 || c.Y.Sign() <= 0 {
			panic(fmt.Sprintf("sofa: normal %s not in the open first quadrant", c))
		}
		if c.Dot(c).Cmp(ratOne) != 0 {
			panic(fmt.Sprintf("sofa: normal %s not unit", c))
		}
	}

	s := &Sofa{
		N:        len(normals),
		MuFixIdx: muFixIdx,
		Mu:       normals,
		Nu:       muToNu(normals),
		MuRange:  muRange,
		NuRange:  nuRange,
	}
	s.Ctx = NewLineContext(makeBandPairs(s.Mu, s.Nu, muRange, nuRange, muFixIdx))

	pivot := s.Ctx.Intersection(s.luu(muFixIdx), s.ruu(muFixIdx))
	if pivot.Y.Sign() <= 0 {
		panic(fmt.Sprintf("sofa: pivot %s below the base", pivot))
	}

	s.Polygons = geom.Polygons{{^s.luu(muFixIdx), s.hl(), ^s.ruu(muFixIdx)}}
	s.Polygons = geom.IntersectAll(geom.NewHalfPlane(s.Ctx, ^s.hu()), s.Polygons)
	for i := 0; i < s.N; i++ {
		s.Polygons = geom.IntersectAll(geom.NewUnion(s.Ctx, s.ldd(i), s.rdd(i)), s.Polygons)
		s.Polygons = geom.IntersectAll(geom.NewHalfPlane(s.Ctx, ^s.luu(i)), s.Polygons)
		s.Polygons = geom.IntersectAll(geom.NewHalfPlane(s.Ctx, ^s.ruu(i)), s.Polygons)
	}
	s.Area = s.polygonsArea(s.Polygons)
	return s
}

// Halve derives the child that keeps one half of axis (idx, t). The parent
// is left untouched: the child owns a branched copy of the context, clipped
// polygons renumbered into it, and its own area.
func (s *Sofa) Halve(idx int, t HalveType) *Sofa {
	if idx == s.MuFixIdx && t.IsMu() {
		panic("sofa: mu is frozen at the pivot index")
	}

	branchSlope := geom.SlopeID(idx)
	if !t.IsMu() {
		branchSlope = geom.SlopeID(s.N + 1 + idx)
	}

	child := &Sofa{
		N:        s.N,
		MuFixIdx: s.MuFixIdx,
		Mu:       s.Mu,
		Nu:       s.Nu,
		MuRange:  append([]Interval(nil), s.MuRange...),
		NuRange:  append([]Interval(nil), s.NuRange...),
		Ctx:      s.Ctx.Branch(branchSlope, t.direction()),
	}

	var clipped geom.Polygons
	switch t {
	case MuDown:
		child.MuRange[idx] = Interval{Min: s.MuRange[idx].Min, Max: s.MuRange[idx].Avg()}
		clipped = geom.IntersectAll(geom.NewHalfPlane(s.Ctx, ^s.rud(idx)), s.Polygons)
	case MuUp:
		child.MuRange[idx] = Interval{Min: s.MuRange[idx].Avg(), Max: s.MuRange[idx].Max}
		clipped = geom.IntersectAll(geom.NewUnion(s.Ctx, s.ldd(idx), s.rdu(idx)), s.Polygons)
	case NuDown:
		child.NuRange[idx] = Interval{Min: s.NuRange[idx].Min, Max: s.NuRange[idx].Avg()}
		clipped = geom.IntersectAll(geom.NewHalfPlane(s.Ctx, ^s.lud(idx)), s.Polygons)
	case NuUp:
		child.NuRange[idx] = Interval{Min: s.NuRange[idx].Avg(), Max: s.NuRange[idx].Max}
		clipped = geom.IntersectAll(geom.NewUnion(s.Ctx, s.ldu(idx), s.rdd(idx)), s.Polygons)
	}

	// Renumber into the child's context: within the branched band the
	// middle lines move to half position, so ids 1 (mod 4) collapse onto 0
	// and ids 2 (mod 4) onto 3, keeping orientation.
	child.Polygons = make(geom.Polygons, len(clipped))
	for pi, poly := range clipped {
		np := make(geom.Polygon, len(poly))
		for i, id := range poly {
			flip := id < 0
			v := id.Abs()
			switch v % 4 {
			case 1:
				v--
			case 2:
				v++
			}
			if flip {
				v = ^v
			}
			np[i] = v
		}
		child.Polygons[pi] = np
	}

	child.Area = child.polygonsArea(child.Polygons)
	return child
}

// HalveGain returns the exact area the bisection (idx, t) would cut away:
// the part of the polygon set on the discarded side of the new boundary.
func (s *Sofa) HalveGain(idx int, t HalveType) *big.Rat {
	switch t {
	case MuDown:
		return s.polygonsArea(geom.IntersectAll(geom.NewHalfPlane(s.Ctx, s.rud(idx)), s.Polygons))
	case MuUp:
		p := geom.IntersectAll(geom.NewHalfPlane(s.Ctx, ^s.ldd(idx)), s.Polygons)
		p = geom.IntersectAll(geom.NewHalfPlane(s.Ctx, ^s.rdu(idx)), p)
		return s.polygonsArea(p)
	case NuDown:
		return s.polygonsArea(geom.IntersectAll(geom.NewHalfPlane(s.Ctx, s.lud(idx)), s.Polygons))
	default: // NuUp
		p := geom.IntersectAll(geom.NewHalfPlane(s.Ctx, ^s.rdd(idx)), s.Polygons)
		p = geom.IntersectAll(geom.NewHalfPlane(s.Ctx, ^s.ldu(idx)), p)
		return s.polygonsArea(p)
	}
}

// polyToCoords materializes the vertices of a polygon: vertex i is the
// meeting point of edges i-1 and i.
func (s *Sofa) polyToCoords(p geom.Polygon) []geom.Coord {
	if len(p) == 0 {
		return nil
	}
	coords := make([]geom.Coord, len(p))
	prev := len(p) - 1
	for i := range p {
		coords[i] = s.Ctx.Intersection(p[i], p[prev])
		prev = i
	}
	return coords
}

// polygonArea is the shoelace formula over the materialized vertices.
func (s *Sofa) polygonArea(p geom.Polygon) *big.Rat {
	coords := s.polyToCoords(p)
	res := new(big.Rat)
	if len(coords) == 0 {
		return res
	}
	prev := len(coords) - 1
	t := new(big.Rat)
	for i := range coords {
		c0, c1 := coords[prev], coords[i]
		prev = i
		res.Add(res, t.Mul(c0.X, c1.Y))
		res.Sub(res, t.Mul(c0.Y, c1.X))
	}
	return res.Quo(res, big.NewRat(2, 1))
}

func (s *Sofa) polygonsArea(ps geom.Polygons) *big.Rat {
	res := new(big.Rat)
	for _, p := range ps {
		res.Add(res, s.polygonArea(p))
	}
	return res
}

// CoordPolygons returns every polygon as explicit vertices.
func (s *Sofa) CoordPolygons() [][]geom.Coord {
	out := make([][]geom.Coord, len(s.Polygons))
	for i, p := range s.Polygons {
		out[i] = s.polyToCoords(p)
	}
	return out
}
