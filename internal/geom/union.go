package geom

import (
	"fmt"
	"sort"
)

// boundaryType records which half-plane's boundary a polyline endpoint sits
// on.
type boundaryType uint8

const (
	bdH0 boundaryType = iota
	bdH1
)

// UnionRegion is the set-theoretic union of two half-planes. The clipped
// boundary may alternate between the two boundary lines, including crossing
// their shared corner, so every polyline endpoint is typed by the boundary
// it emerges from.
type UnionRegion struct {
	ctx      Context
	bd0, bd1 LineID
}

// NewUnion wraps two signed boundary ids as a union region. The pair is
// canonicalized so the corner-crossing cases below stay in one orientation.
func NewUnion(ctx Context, bd0, bd1 LineID) UnionRegion {
	flip := (bd0 < 0) != (bd1 < 0)
	if bd0.Abs() < bd1.Abs() {
		flip = !flip
	}
	u := UnionRegion{ctx: ctx, bd0: bd0, bd1: bd1}
	if flip {
		u.bd0, u.bd1 = bd1, bd0
	}
	return u
}

func (r UnionRegion) inH0(l0, l1 LineID) bool {
	return HalfPlaneRegion{ctx: r.ctx, boundary: r.bd0}.ContainsIntersection(l0, l1)
}

func (r UnionRegion) inH1(l0, l1 LineID) bool {
	return HalfPlaneRegion{ctx: r.ctx, boundary: r.bd1}.ContainsIntersection(l0, l1)
}

// cornerSide asks on which side of the crossing edge m the corner of the two
// boundaries lies.
func (r UnionRegion) cornerSide(m LineID) bool {
	if m.Abs() == r.bd0.Abs() || m.Abs() == r.bd1.Abs() {
		panic(fmt.Sprintf("geom: edge %d coincides with a union boundary", m))
	}
	return HalfPlaneRegion{ctx: r.ctx, boundary: m}.ContainsIntersection(r.bd0, r.bd1)
}

type typedPolyline struct {
	begin, end         int
	beginVal, endVal   LineID
	beginType, endType boundaryType
	visited            bool
	next               *typedPolyline
}

func (r UnionRegion) buildPolylines(poly Polygon) []typedPolyline {
	pls := make([]typedPolyline, 0, len(poly)/2+1)
	var cur typedPolyline
	open := false

	m := poly[0]
	pInH0 := r.inH0(poly[len(poly)-1], m)
	pInH1 := r.inH1(poly[len(poly)-1], m)
	pIn := pInH0 || pInH1

	for i := 0; i < len(poly); i++ {
		n := poly[(i+1)%len(poly)]
		qInH0 := r.inH0(m, n)
		qInH1 := r.inH1(m, n)
		qIn := qInH0 || qInH1

		switch {
		case !pIn && qIn:
			// edge m enters the union
			cur.begin, cur.beginVal = i, poly[i]
			switch {
			case !pInH0 && !qInH0:
				cur.beginType = bdH1
			case !pInH1 && !qInH1:
				cur.beginType = bdH0
			case r.cornerSide(m):
				cur.beginType = bdH1
			default:
				cur.beginType = bdH0
			}
			open = true
		case pIn && !qIn:
			// edge m leaves the union
			cur.end, cur.endVal = i, poly[i]
			switch {
			case !pInH0 && !qInH0:
				cur.endType = bdH1
			case !pInH1 && !qInH1:
				cur.endType = bdH0
			case r.cornerSide(m):
				cur.endType = bdH0
			default:
				cur.endType = bdH1
			}
			pls = append(pls, cur)
			cur = typedPolyline{}
			open = false
		case pIn && qIn && pInH0 != qInH0 && pInH1 != qInH1:
			// edge m swaps half-planes while staying in the union; it clips
			// the corner when the corner lies on the outer side of m.
			if pInH0 {
				if pInH1 || qInH0 || !qInH1 {
					panic("geom: inconsistent half-plane transition")
				}
				if r.cornerSide(m) {
					cur.end, cur.endVal, cur.endType = i, poly[i], bdH0
					pls = append(pls, cur)
					cur = typedPolyline{}
					cur.begin, cur.beginVal, cur.beginType = i, poly[i], bdH1
					open = true
				}
			} else {
				if !pInH1 || !qInH0 || qInH1 {
					panic("geom: inconsistent half-plane transition")
				}
				if !r.cornerSide(m) {
					cur.end, cur.endVal, cur.endType = i, poly[i], bdH1
					pls = append(pls, cur)
					cur = typedPolyline{}
					cur.begin, cur.beginVal, cur.beginType = i, poly[i], bdH0
					open = true
				}
			}
		}

		pInH0, pInH1, pIn = qInH0, qInH1, qIn
		m = n
	}

	if open && len(pls) > 0 {
		pls[0].begin = cur.begin
		pls[0].beginVal = cur.beginVal
		pls[0].beginType = cur.beginType
	}
	return pls
}

func (r UnionRegion) compLineOut(bd, id0, id1 LineID) bool {
	return HalfPlaneRegion{ctx: r.ctx, boundary: id0}.ContainsIntersection(bd, id1)
}

func (r UnionRegion) linkPolylines(pls []typedPolyline) {
	var bH0, bH1, eH0, eH1 []*typedPolyline
	for i := range pls {
		p := &pls[i]
		if p.beginType == bdH0 {
			bH0 = append(bH0, p)
		} else {
			bH1 = append(bH1, p)
		}
		if p.endType == bdH0 {
			eH0 = append(eH0, p)
		} else {
			eH1 = append(eH1, p)
		}
	}

	// Entering directions are reversed before comparison, as in the
	// half-plane case; each boundary sorts its own endpoints.
	sort.Slice(bH0, func(i, j int) bool {
		return r.compLineOut(r.bd0, ^bH0[i].beginVal, ^bH0[j].beginVal)
	})
	sort.Slice(bH1, func(i, j int) bool {
		return r.compLineOut(r.bd1, ^bH1[i].beginVal, ^bH1[j].beginVal)
	})
	sort.Slice(eH0, func(i, j int) bool {
		return r.compLineOut(r.bd0, eH0[i].endVal, eH0[j].endVal)
	})
	sort.Slice(eH1, func(i, j int) bool {
		return r.compLineOut(r.bd1, eH1[i].endVal, eH1[j].endVal)
	})

	if len(bH0) == len(eH0) {
		if len(bH1) != len(eH1) {
			panic("geom: unbalanced polyline endpoints on the union boundary")
		}
		for i := range bH0 {
			eH0[i].next = bH0[i]
		}
		for i := range bH1 {
			eH1[i].next = bH1[i]
		}
		return
	}

	// The union's boundary runs from bd0 through the shared corner onto
	// bd1 exactly once: one end on bd0 links across to the first begin on
	// bd1 and the rest shift by one.
	if len(bH0)+1 != len(eH0) || len(bH1) != len(eH1)+1 {
		panic("geom: unbalanced polyline endpoints on the union boundary")
	}
	for i := 0; i < len(eH0)-1; i++ {
		eH0[i].next = bH0[i]
	}
	eH0[len(eH0)-1].next = bH1[0]
	for i := range eH1 {
		eH1[i].next = bH1[i+1]
	}
}

func (r UnionRegion) makePolygons(poly Polygon, pls []typedPolyline) Polygons {
	var polygons Polygons
	for i := range pls {
		if pls[i].visited {
			continue
		}
		var cur Polygon
		for pl := &pls[i]; !pl.visited; pl = pl.next {
			pl.visited = true
			if pl.begin < pl.end {
				cur = append(cur, poly[pl.begin:pl.end+1]...)
			} else {
				cur = append(cur, poly[pl.begin:]...)
				cur = append(cur, poly[:pl.end+1]...)
			}

			// Close the gap to the next polyline along the boundary,
			// inserting the corner sequence where the arc crosses it.
			nxt := pl.next
			switch {
			case pl.endType == bdH0 && nxt.beginType == bdH1:
				// Around the corner, unless an endpoint already sits on the
				// far boundary.
				if pl.endVal != r.bd1 && nxt.beginVal != r.bd0 {
					cur = append(cur, r.bd0, r.bd1)
				}
			case pl.endType == bdH0:
				cur = append(cur, r.bd0)
			case nxt.beginType == bdH1:
				cur = append(cur, r.bd1)
			default:
				// ending on bd1 and resuming on bd0 would run against the
				// boundary orientation
				panic("geom: polyline linked backwards across the corner")
			}
		}
		polygons = append(polygons, cur)
	}
	return polygons
}

// Intersect implements Region.
func (r UnionRegion) Intersect(poly Polygon) Polygons {
	if len(poly) == 0 {
		return nil
	}
	if len(poly) < 3 {
		panic(fmt.Sprintf("geom: degenerate polygon of %d edges", len(poly)))
	}

	pls := r.buildPolylines(poly)
	if len(pls) == 0 {
		if r.inH0(poly[len(poly)-1], poly[0]) || r.inH1(poly[len(poly)-1], poly[0]) {
			return Polygons{poly}
		}
		return nil
	}
	r.linkPolylines(pls)
	return r.makePolygons(poly, pls)
}
