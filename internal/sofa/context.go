package sofa

import (
	"fmt"
	"math/big"

	"github.com/sofa-bound/internal/geom"
)

// BranchDirection selects which half of a band a derived context keeps.
type BranchDirection uint8

// Branch directions.
const (
	Down BranchDirection = iota
	Up
)

// String returns "down" or "up".
func (d BranchDirection) String() string {
	if d == Up {
		return "up"
	}
	return "down"
}

// LineContext is the solver's geom.Context: N band pairs stored as 4N lines
// in registration order (ids 4s..4s+3 are band s's il, iu, ol, ou), with
// every cross-slope intersection precomputed and a memoized cache of
// three-line arrangements.
//
// The arrangement cache works on half-bands: each slope contributes the
// bands (il, iu) and (ol, ou), so a triple of slope groups owns 8 band
// triples and 64 line triples. When the extreme parallels of a band triple
// pin the arrangement to one answer for every choice of lines inside it,
// all 8 slots of that triple are stamped at once and survive any later
// Branch; otherwise slots fill lazily and the two lines moved by a Branch
// are invalidated while the member that merely changed its slot keeps its
// answer through a shift.
type LineContext struct {
	n     int
	lines []geom.Line
	// intersection of lines i < j of different slopes, at pairIndex(i, j)
	inters []geom.Coord

	// per band triple: whether the uniform test should (re)run
	b3ToDetermine []bool
	// per band triple: all 8 slots stamped with one answer
	b3Determined []bool
	// per line triple: slot holds a valid answer
	l3Known []bool
	// per line triple: the answer, true = V
	l3Mem []bool
}

// combinatorial index helpers; read and write paths must agree on these.

func comb2(n int) int { return n * (n - 1) / 2 }
func comb3(n int) int { return n * (n - 1) * (n - 2) / 6 }

func numL2(n int) int { return 16 * comb2(n) }
func numL3(n int) int { return 64 * comb3(n) }
func numB3(n int) int { return 8 * comb3(n) }

func lineIL(s geom.SlopeID) geom.LineID { return geom.LineID(4 * s) }
func lineIU(s geom.SlopeID) geom.LineID { return geom.LineID(4*s + 1) }
func lineOL(s geom.SlopeID) geom.LineID { return geom.LineID(4*s + 2) }
func lineOU(s geom.SlopeID) geom.LineID { return geom.LineID(4*s + 3) }

// lineBand maps a line to its half-band: 2s for (il, iu), 2s+1 for (ol, ou).
func lineBand(l geom.LineID) int { return int(l) / 2 }

// pairIndex places an ordered cross-slope pair i < j into the linear
// intersection array.
func pairIndex(i, j geom.LineID) int {
	return 16*comb2(int(j)/4) + (int(j)%4)*4 + 16*(int(i)/4) + int(i)%4
}

// tripleIndex places an ordered cross-slope triple i < j < k into the linear
// arrangement array. The three low bits hold each line's position within its
// half-band, the next three its half-band, so tripleIndex/8 is the band
// triple's index in the b3 arrays.
func tripleIndex(i, j, k geom.LineID) int {
	ii, jj, kk := int(i), int(j), int(k)
	return 64*(ii/4) + (ii&2)/2*8 + ii&1 +
		64*comb2(jj/4) + (jj&2)/2*16 + (jj&1)*2 +
		64*comb3(kk/4) + (kk&2)/2*32 + (kk&1)*4
}

// sortedTriple orders three distinct ids ascending.
func sortedTriple(a, b, c geom.LineID) (geom.LineID, geom.LineID, geom.LineID) {
	if a > b {
		a, b = b, a
	}
	if b > c {
		b, c = c, b
	}
	if a > b {
		a, b = b, a
	}
	return a, b, c
}

// NewLineContext builds the root context from band pairs in strictly
// ascending slope order.
func NewLineContext(bandPairs []BandPair) *LineContext {
	n := len(bandPairs)
	for i := 0; i+1 < n; i++ {
		if bandPairs[i].IL.Slope.Cmp(bandPairs[i+1].IL.Slope) >= 0 {
			panic(fmt.Sprintf("sofa: band pair slopes not increasing at %d", i))
		}
	}

	c := &LineContext{
		n:             n,
		lines:         make([]geom.Line, 0, 4*n),
		inters:        make([]geom.Coord, numL2(n)),
		b3ToDetermine: make([]bool, numB3(n)),
		b3Determined:  make([]bool, numB3(n)),
		l3Known:       make([]bool, numL3(n)),
		l3Mem:         make([]bool, numL3(n)),
	}
	for _, bp := range bandPairs {
		bp.validate()
		c.lines = append(c.lines, bp.IL, bp.IU, bp.OL, bp.OU)
	}
	for i := range c.b3ToDetermine {
		c.b3ToDetermine[i] = true
	}

	for i := 0; i < 4*n; i++ {
		for j := i + 1; j < 4*n; j++ {
			if i/4 != j/4 {
				c.inters[pairIndex(geom.LineID(i), geom.LineID(j))] =
					geom.Intersect(c.lines[i], c.lines[j])
			}
		}
	}
	return c
}

// NumLines implements geom.Context.
func (c *LineContext) NumLines() int { return len(c.lines) }

// Line implements geom.Context.
func (c *LineContext) Line(id geom.LineID) geom.Line { return c.lines[id.Abs()] }

// Lines returns all lines in id order.
func (c *LineContext) Lines() []geom.Line { return c.lines }

// SlopeID implements geom.Context.
func (c *LineContext) SlopeID(id geom.LineID) geom.SlopeID {
	return geom.SlopeID(id.Abs() / 4)
}

// Intersection implements geom.Context from the precomputed array.
func (c *LineContext) Intersection(id0, id1 geom.LineID) geom.Coord {
	id0, id1 = id0.Abs(), id1.Abs()
	if id0 > id1 {
		id0, id1 = id1, id0
	}
	if id0/4 == id1/4 {
		panic(fmt.Sprintf("sofa: intersection of parallel lines %d, %d", id0, id1))
	}
	return c.inters[pairIndex(id0, id1)]
}

// Arrangement implements geom.Context. The ids must be non-negative,
// ascending, and of pairwise distinct slopes.
func (c *LineContext) Arrangement(id0, id1, id2 geom.LineID) geom.Arrangement {
	if !(0 <= id0 && id0 < id1 && id1 < id2) {
		panic(fmt.Sprintf("sofa: arrangement ids not ordered: %d, %d, %d", id0, id1, id2))
	}
	l3 := tripleIndex(id0, id1, id2)
	if !c.l3Known[l3] {
		c.fillTriple(id0, id1, id2, l3)
	}
	if c.l3Mem[l3] {
		return geom.V
	}
	return geom.U
}

// arrangementExplicit recomputes one arrangement from the line store and the
// intersection cache.
func (c *LineContext) arrangementExplicit(id0, id1, id2 geom.LineID) geom.Arrangement {
	mid := c.lines[id1]
	if mid.ParallelIntercept(c.Intersection(id0, id2)).Cmp(mid.Intercept) >= 0 {
		return geom.V
	}
	return geom.U
}

// upper returns the parallel at the upper extreme a line of half-band b can
// reach: the band's own width past its top.
func (c *LineContext) upper(b int) geom.Line {
	lo, hi := c.lines[2*b], c.lines[2*b+1]
	ext := new(big.Rat).Sub(hi.Intercept, lo.Intercept)
	return geom.NewLine(lo.Slope, ext.Add(ext, hi.Intercept))
}

// lower is the symmetric lower extreme.
func (c *LineContext) lower(b int) geom.Line {
	lo, hi := c.lines[2*b], c.lines[2*b+1]
	ext := new(big.Rat).Sub(lo.Intercept, hi.Intercept)
	return geom.NewLine(lo.Slope, ext.Add(ext, lo.Intercept))
}

// stamp writes one answer into all 8 slots of a band triple and marks it
// determined.
func (c *LineContext) stamp(b3 int, arr geom.Arrangement) {
	c.b3Determined[b3] = true
	for i := 8 * b3; i < 8*(b3+1); i++ {
		c.l3Known[i] = true
		c.l3Mem[i] = arr == geom.V
	}
}

// fillTriple computes one slot and, on the band triple's first lookup since
// it last moved, tries to pin the whole triple: V everywhere if even the
// V-hostile extremes are V, U everywhere if even the U-hostile extremes
// are U.
func (c *LineContext) fillTriple(id0, id1, id2 geom.LineID, l3 int) {
	b3 := l3 / 8
	arr := c.arrangementExplicit(id0, id1, id2)
	c.l3Mem[l3] = arr == geom.V
	c.l3Known[l3] = true

	if !c.b3ToDetermine[b3] {
		return
	}
	c.b3ToDetermine[b3] = false
	b0, b1, b2 := lineBand(id0), lineBand(id1), lineBand(id2)
	if arr == geom.V {
		if geom.Arrange(c.lower(b0), c.upper(b1), c.lower(b2)) == geom.V {
			c.stamp(b3, geom.V)
		}
	} else {
		if geom.Arrange(c.upper(b0), c.lower(b1), c.upper(b2)) == geom.U {
			c.stamp(b3, geom.U)
		}
	}
}

// Branch derives a context with band s bisected toward dir. With
// igap = (ou-ol)/2: branching down keeps il, moves iu down by igap and the
// outer pair to (ol-igap, ol); branching up moves il to iu, iu up by igap
// and the outer pair to (ol+igap, ou).
//
// The caches carry over: the line whose slot now holds the band member that
// survived the shift (ol to ou going down, iu to il going up) inherits the
// cached intersections and arrangement answers; the two recomputed lines
// are refreshed or invalidated. Band triples already pinned to one answer
// keep it — the extremes used by the uniform test bound every position the
// shrunken band can reach.
func (c *LineContext) Branch(s geom.SlopeID, dir BranchDirection) *LineContext {
	nc := &LineContext{
		n:             c.n,
		lines:         append([]geom.Line(nil), c.lines...),
		inters:        append([]geom.Coord(nil), c.inters...),
		b3ToDetermine: append([]bool(nil), c.b3ToDetermine...),
		b3Determined:  append([]bool(nil), c.b3Determined...),
		l3Known:       append([]bool(nil), c.l3Known...),
		l3Mem:         append([]bool(nil), c.l3Mem...),
	}

	il, iu, ol, ou := lineIL(s), lineIU(s), lineOL(s), lineOU(s)
	slope := c.lines[il].Slope
	_, iuI := c.lines[il].Intercept, c.lines[iu].Intercept
	olI, ouI := c.lines[ol].Intercept, c.lines[ou].Intercept
	igap := new(big.Rat).Sub(ouI, olI)
	igap.Quo(igap, big.NewRat(2, 1))

	if dir == Down {
		nc.lines[iu] = geom.NewLine(slope, new(big.Rat).Sub(iuI, igap))
		nc.lines[ou] = geom.NewLine(slope, olI)
		nc.lines[ol] = geom.NewLine(slope, new(big.Rat).Sub(olI, igap))
	} else {
		nc.lines[il] = geom.NewLine(slope, iuI)
		nc.lines[iu] = geom.NewLine(slope, new(big.Rat).Add(iuI, igap))
		nc.lines[ol] = geom.NewLine(slope, new(big.Rat).Add(olI, igap))
	}
	if nc.lines[il].Intercept.Cmp(nc.lines[iu].Intercept) >= 0 ||
		nc.lines[iu].Intercept.Cmp(nc.lines[ol].Intercept) >= 0 ||
		nc.lines[ol].Intercept.Cmp(nc.lines[ou].Intercept) >= 0 {
		panic(fmt.Sprintf("sofa: band %d not halvable %s", s, dir))
	}

	for l := geom.LineID(0); int(l) < len(nc.lines); l++ {
		if int(l)/4 == int(s) {
			continue
		}

		if dir == Down {
			// the slot for ou now holds the line that was ol
			nc.inters[orderedPair(l, ou)] = nc.inters[orderedPair(l, ol)]
			nc.inters[orderedPair(l, iu)] = geom.Intersect(nc.lines[l], nc.lines[iu])
			nc.inters[orderedPair(l, ol)] = geom.Intersect(nc.lines[l], nc.lines[ol])
		} else {
			// the slot for il now holds the line that was iu
			nc.inters[orderedPair(l, il)] = nc.inters[orderedPair(l, iu)]
			nc.inters[orderedPair(l, iu)] = geom.Intersect(nc.lines[l], nc.lines[iu])
			nc.inters[orderedPair(l, ol)] = geom.Intersect(nc.lines[l], nc.lines[ol])
		}
	}

	nc.shiftArrangements(s, dir)
	return nc
}

// orderedPair is pairIndex after sorting the two ids.
func orderedPair(a, b geom.LineID) int {
	if a < b {
		return pairIndex(a, b)
	}
	return pairIndex(b, a)
}

// shiftArrangements updates the triple cache after a Branch of band s. Each
// affected band triple is handled under its own determined flag: the inner
// half-band owns il and iu, the outer one ol and ou.
func (c *LineContext) shiftArrangements(s geom.SlopeID, dir BranchDirection) {
	il, iu, ol, ou := lineIL(s), lineIU(s), lineOL(s), lineOU(s)
	total := geom.LineID(len(c.lines))

	for a := geom.LineID(0); a < total; a++ {
		if int(a)/4 == int(s) {
			continue
		}
		for b := a + 1; b < total; b++ {
			if int(b)/4 == int(s) || int(b)/4 == int(a)/4 {
				continue
			}

			innerB3 := c.tripleOf(a, b, iu) / 8
			outerB3 := c.tripleOf(a, b, ol) / 8

			if dir == Down {
				// inner band: iu recomputed, il untouched
				if !c.b3Determined[innerB3] {
					c.b3ToDetermine[innerB3] = true
					c.l3Known[c.tripleOf(a, b, iu)] = false
				}
				// outer band: ou takes over ol's answer, ol recomputed
				if !c.b3Determined[outerB3] {
					c.b3ToDetermine[outerB3] = true
					lOL, lOU := c.tripleOf(a, b, ol), c.tripleOf(a, b, ou)
					c.l3Known[lOU] = c.l3Known[lOL]
					c.l3Mem[lOU] = c.l3Mem[lOL]
					c.l3Known[lOL] = false
				}
			} else {
				// inner band: il takes over iu's answer, iu recomputed
				if !c.b3Determined[innerB3] {
					c.b3ToDetermine[innerB3] = true
					lIL, lIU := c.tripleOf(a, b, il), c.tripleOf(a, b, iu)
					c.l3Known[lIL] = c.l3Known[lIU]
					c.l3Mem[lIL] = c.l3Mem[lIU]
					c.l3Known[lIU] = false
				}
				// outer band: ol recomputed, ou untouched
				if !c.b3Determined[outerB3] {
					c.b3ToDetermine[outerB3] = true
					c.l3Known[c.tripleOf(a, b, ol)] = false
				}
			}
		}
	}
}

// tripleOf is tripleIndex over {a, b, x} in ascending order.
func (c *LineContext) tripleOf(a, b, x geom.LineID) int {
	i, j, k := sortedTriple(a, b, x)
	return tripleIndex(i, j, k)
}
