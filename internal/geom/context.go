package geom

import "sort"

// LineID identifies a line in a Context. A non-negative id i and its bitwise
// complement ^i denote the same geometric line with opposite orientation: the
// positive orientation keeps the half-plane above the line inside. Consumers
// that only need geometry strip the bit with Abs; consumers that need the
// inside/outside distinction carry the sign end to end.
type LineID int16

// Abs strips the orientation bit.
func (id LineID) Abs() LineID {
	if id < 0 {
		return ^id
	}
	return id
}

// SlopeID is shared by all lines of equal slope, so the parallelism test
// reduces to equality of slope ids.
type SlopeID int16

// Context is the oracle set the clipping algorithms consult. Implementations
// may precompute and cache; Arrangement takes a non-const receiver in spirit
// because caches fill lazily.
type Context interface {
	// NumLines returns the number of registered lines.
	NumLines() int
	// Line returns the line for an id. The orientation bit is ignored.
	Line(id LineID) Line
	// Intersection returns the meeting point of two lines of different
	// slopes. Orientation bits are ignored.
	Intersection(id0, id1 LineID) Coord
	// SlopeID returns the slope group of a line.
	SlopeID(id LineID) SlopeID
	// Arrangement classifies three lines of pairwise distinct slopes.
	// The ids must be non-negative and in increasing order.
	Arrangement(id0, id1, id2 LineID) Arrangement
}

// VanillaContext is the plain Context over a sorted, deduplicated line list.
// It caches nothing and recomputes every oracle call; it exists for tests
// and for ad-hoc clipping outside the solver hot path.
type VanillaContext struct {
	lines    []Line
	slopeIDs []SlopeID
}

// NewVanillaContext builds a context from any line list; duplicates collapse
// and the survivors take ids in (slope, intercept) order.
func NewVanillaContext(lines []Line) *VanillaContext {
	sorted := make([]Line, len(lines))
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })
	uniq := sorted[:0]
	for _, l := range sorted {
		if len(uniq) == 0 || !uniq[len(uniq)-1].Equal(l) {
			uniq = append(uniq, l)
		}
	}

	ctx := &VanillaContext{lines: uniq, slopeIDs: make([]SlopeID, len(uniq))}
	for i := 1; i < len(uniq); i++ {
		if uniq[i-1].Slope.Cmp(uniq[i].Slope) != 0 {
			ctx.slopeIDs[i] = ctx.slopeIDs[i-1] + 1
		} else {
			ctx.slopeIDs[i] = ctx.slopeIDs[i-1]
		}
	}
	return ctx
}

// NumLines implements Context.
func (c *VanillaContext) NumLines() int { return len(c.lines) }

// Line implements Context.
func (c *VanillaContext) Line(id LineID) Line { return c.lines[id.Abs()] }

// Lines returns all lines in id order.
func (c *VanillaContext) Lines() []Line { return c.lines }

// Intersection implements Context.
func (c *VanillaContext) Intersection(id0, id1 LineID) Coord {
	return Intersect(c.Line(id0), c.Line(id1))
}

// SlopeID implements Context.
func (c *VanillaContext) SlopeID(id LineID) SlopeID { return c.slopeIDs[id.Abs()] }

// Arrangement implements Context. Parallel inputs are allowed and give V.
func (c *VanillaContext) Arrangement(id0, id1, id2 LineID) Arrangement {
	return Arrange(c.lines[id0], c.lines[id1], c.lines[id2])
}
