package geom

// Polygon is a cyclic sequence of signed line ids. Each adjacent pair of ids
// defines a vertex as the intersection of the two lines, and the polygon is
// traversed with its interior locally on the left of every directed edge.
// Fewer than three ids cannot bound any area.
type Polygon []LineID

// Polygons is an unordered collection of polygons. Operations producing one
// may return the pieces in any order.
type Polygons []Polygon

// Region is a clippable subset of the plane. The two concrete shapes are
// HalfPlaneRegion and UnionRegion; both express their output over the same
// line ids as their input plus their own boundary ids.
type Region interface {
	// Intersect clips one polygon against the region.
	Intersect(poly Polygon) Polygons
}

// IntersectAll clips every polygon of a set against the region and gathers
// the pieces.
func IntersectAll(r Region, polys Polygons) Polygons {
	var res Polygons
	for _, p := range polys {
		res = append(res, r.Intersect(p)...)
	}
	return res
}
