package geom

import (
	"fmt"
	"sort"
)

// HalfPlaneRegion is the half-plane bounded by one line of the context.
// A non-negative boundary id selects the half-plane above the line; the
// bitwise complement selects the half-plane below it.
type HalfPlaneRegion struct {
	ctx      Context
	boundary LineID
}

// NewHalfPlane wraps a boundary id as a region.
func NewHalfPlane(ctx Context, boundary LineID) HalfPlaneRegion {
	return HalfPlaneRegion{ctx: ctx, boundary: boundary}
}

// Boundary returns the signed boundary id.
func (r HalfPlaneRegion) Boundary() LineID { return r.boundary }

// ContainsIntersection reports whether the meeting point of lines l0 and l1
// lies strictly inside the region. The two lines must have different slopes.
// A point on the boundary itself is never inside; in particular, when either
// input line coincides with the boundary line the answer is false.
func (r HalfPlaneRegion) ContainsIntersection(l0, l1 LineID) bool {
	l0, l1 = l0.Abs(), l1.Abs()
	if l0 > l1 {
		l0, l1 = l1, l0
	}
	if r.ctx.SlopeID(l0) == r.ctx.SlopeID(l1) {
		panic(fmt.Sprintf("geom: lines %d and %d are parallel", l0, l1))
	}

	l := r.boundary.Abs()
	if l0 == l || l1 == l {
		return false
	}

	var belowL bool
	switch {
	case r.ctx.SlopeID(l0) == r.ctx.SlopeID(l):
		// l0 parallel to the boundary: the meeting point sits on l0, so it
		// is below the boundary iff the boundary is the higher of the two.
		belowL = l0 < l
	case r.ctx.SlopeID(l1) == r.ctx.SlopeID(l):
		belowL = l1 < l
	case l < l0:
		belowL = r.ctx.Arrangement(l, l0, l1) == V
	case l1 < l:
		belowL = r.ctx.Arrangement(l0, l1, l) == V
	default:
		// l0 < l < l1
		belowL = r.ctx.Arrangement(l0, l, l1) == U
	}

	if r.boundary >= 0 {
		return !belowL
	}
	return belowL
}

// polyline is a maximal run of polygon edges inside the region, delimited by
// the positions where the walk crosses the boundary.
type polyline struct {
	begin, end       int
	beginVal, endVal LineID
	visited          bool
	next             *polyline
}

func (r HalfPlaneRegion) buildPolylines(poly Polygon) []polyline {
	pls := make([]polyline, 0, len(poly)/2+1)
	var cur polyline
	open := false

	m := poly[0]
	pIn := r.ContainsIntersection(poly[len(poly)-1], m)
	for i := 0; i < len(poly); i++ {
		n := poly[(i+1)%len(poly)]
		qIn := r.ContainsIntersection(m, n)

		if !pIn && qIn {
			// edge m enters the region
			cur.begin, cur.beginVal = i, poly[i]
			open = true
		} else if pIn && !qIn {
			// edge m leaves the region
			cur.end, cur.endVal = i, poly[i]
			pls = append(pls, cur)
			cur = polyline{}
			open = false
		}

		pIn = qIn
		m = n
	}

	// A walk that ends mid-polyline wraps into the first recorded one.
	if open && len(pls) > 0 {
		pls[0].begin, pls[0].beginVal = cur.begin, cur.beginVal
	}
	return pls
}

// compLineOut orders two outgoing directions along the boundary: it treats
// the boundary as the middle line and asks on which side of id0 the meeting
// point of (boundary, id1) falls. This is the total order in which polylines
// touch the boundary as it is traversed inside the region.
func (r HalfPlaneRegion) compLineOut(id0, id1 LineID) bool {
	return HalfPlaneRegion{ctx: r.ctx, boundary: id0}.ContainsIntersection(r.boundary, id1)
}

func (r HalfPlaneRegion) linkPolylines(pls []polyline) {
	begins := make([]*polyline, len(pls))
	ends := make([]*polyline, len(pls))
	for i := range pls {
		begins[i], ends[i] = &pls[i], &pls[i]
	}

	// Entering edges are reversed so both sorts compare outgoing directions.
	sort.Slice(begins, func(i, j int) bool {
		return r.compLineOut(^begins[i].beginVal, ^begins[j].beginVal)
	})
	sort.Slice(ends, func(i, j int) bool {
		return r.compLineOut(ends[i].endVal, ends[j].endVal)
	})

	for i := range pls {
		ends[i].next = begins[i]
	}
}

func (r HalfPlaneRegion) makePolygons(poly Polygon, pls []polyline) Polygons {
	var polygons Polygons
	for i := range pls {
		if pls[i].visited {
			continue
		}
		var cur Polygon
		for pl := &pls[i]; !pl.visited; pl = pl.next {
			pl.visited = true
			if pl.begin <= pl.end {
				cur = append(cur, poly[pl.begin:pl.end+1]...)
			} else {
				cur = append(cur, poly[pl.begin:]...)
				cur = append(cur, poly[:pl.end+1]...)
			}
			// One boundary edge closes the gap to the next polyline.
			cur = append(cur, r.boundary)
		}
		polygons = append(polygons, cur)
	}
	return polygons
}

// Intersect implements Region.
func (r HalfPlaneRegion) Intersect(poly Polygon) Polygons {
	if len(poly) == 0 {
		return nil
	}
	if len(poly) < 3 {
		panic(fmt.Sprintf("geom: degenerate polygon of %d edges", len(poly)))
	}

	pls := r.buildPolylines(poly)
	if len(pls) == 0 {
		// No crossings: the polygon is entirely inside or entirely outside.
		if r.ContainsIntersection(poly[0], poly[1]) {
			return Polygons{poly}
		}
		return nil
	}
	r.linkPolylines(pls)
	return r.makePolygons(poly, pls)
}
