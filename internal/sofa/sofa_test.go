package sofa

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofa-bound/internal/geom"
)

// rr parses a rational literal.
func rr(t *testing.T, s string) *big.Rat {
	t.Helper()
	v, ok := new(big.Rat).SetString(s)
	require.True(t, ok, "bad rational %q", s)
	return v
}

// testNormals is the 5-angle set of exact unit normals used throughout:
// (24/25, 7/25), (56/65, 33/65), (120/169, 119/169), (33/65, 56/65),
// (7/25, 24/25).
func testNormals() []geom.Coord {
	xs := []int64{24, 56, 120, 33, 7}
	ys := []int64{7, 33, 119, 56, 24}
	cs := []int64{25, 65, 169, 65, 25}
	normals := make([]geom.Coord, len(xs))
	for i := range xs {
		normals[i] = geom.NewCoord(big.NewRat(xs[i], cs[i]), big.NewRat(ys[i], cs[i]))
	}
	return normals
}

func testSofa(t *testing.T) *Sofa {
	t.Helper()
	muRange := []Interval{
		{Min: rr(t, "-84/125"), Max: rr(t, "0")},
		{Min: rr(t, "-26/75"), Max: rr(t, "0")},
		{Min: rr(t, "0"), Max: rr(t, "0")}, // fixed
		{Min: rr(t, "0"), Max: rr(t, "931/2600")},
		{Min: rr(t, "0"), Max: rr(t, "2047/3000")},
	}
	nuRange := []Interval{
		{Min: rr(t, "57122/151725"), Max: rr(t, "62833/50575")},
		{Min: rr(t, "58334/70805"), Max: rr(t, "77253/70805")},
		{Min: rr(t, "338/357"), Max: rr(t, "169/119")},
		{Min: rr(t, "314533/394485"), Max: rr(t, "17576/10115")},
		{Min: rr(t, "513383/354025"), Max: rr(t, "685464/354025")},
	}
	return New(testNormals(), muRange, nuRange, 2)
}

// canonCoords rotates a cyclic vertex list to start at its smallest vertex
// so two traversals of the same polygon compare equal.
func canonCoords(poly []geom.Coord) []geom.Coord {
	if len(poly) == 0 {
		return poly
	}
	best := 0
	for i := 1; i < len(poly); i++ {
		if c := poly[i].X.Cmp(poly[best].X); c < 0 ||
			(c == 0 && poly[i].Y.Cmp(poly[best].Y) < 0) {
			best = i
		}
	}
	out := make([]geom.Coord, 0, len(poly))
	out = append(out, poly[best:]...)
	return append(out, poly[:best]...)
}

func TestSofa_Construction(t *testing.T) {
	s := testSofa(t)

	require.Len(t, s.Polygons, 1)
	want := [][2]string{
		{"-1039489/339864", "0"},
		{"-758342/467313", "0"},
		{"-3348722/2251599", "419523/5253731"},
		{"-724776/520625", "30199/74375"},
		{"-1137513/1047914", "379171/1197616"},
		{"-517586/552279", "625/1547"},
		{"-2/3", "80/119"},
		{"0", "0"},
		{"25/24", "0"},
		{"37/40", "2/5"},
		{"83/104", "8/13"},
		{"5/12", "1"},
		{"-377246/155771", "1"},
		{"-448941/184093", "12253/12376"},
		{"-39832/14161", "13/21"},
		{"-1666397/566440", "2/5"},
	}
	expected := make([]geom.Coord, len(want))
	for i, w := range want {
		expected[i] = geom.NewCoord(rr(t, w[0]), rr(t, w[1]))
	}

	got := canonCoords(s.CoordPolygons()[0])
	expected = canonCoords(expected)
	require.Len(t, got, len(expected))
	for i := range expected {
		assert.True(t, got[i].Equal(expected[i]),
			"vertex %d: got %s, want %s", i, got[i], expected[i])
	}

	assert.Equal(t, 1, s.Area.Sign())
}

func TestSofa_HalveInvariant(t *testing.T) {
	s := testSofa(t)

	s2 := s.Halve(3, NuUp)
	sum := new(big.Rat).Add(s2.Area, s.HalveGain(3, NuUp))
	assert.Equal(t, 0, sum.Cmp(s.Area), "area must split exactly between child and gain")

	s3 := s2.Halve(1, MuDown)
	sum = new(big.Rat).Add(s3.Area, s2.HalveGain(1, MuDown))
	assert.Equal(t, 0, sum.Cmp(s2.Area))
}

func TestSofa_HalveInvariantAllTypes(t *testing.T) {
	s := testSofa(t)
	for idx := 0; idx < s.N; idx++ {
		for _, ht := range HalveTypes {
			if idx == s.MuFixIdx && ht.IsMu() {
				continue
			}
			child := s.Halve(idx, ht)
			sum := new(big.Rat).Add(child.Area, s.HalveGain(idx, ht))
			assert.Equal(t, 0, sum.Cmp(s.Area), "axis (%d, %s)", idx, ht)
		}
	}
}

func TestSofa_HalveNarrowsRange(t *testing.T) {
	s := testSofa(t)

	down := s.Halve(0, MuDown)
	assert.Equal(t, 0, down.MuRange[0].Min.Cmp(s.MuRange[0].Min))
	assert.Equal(t, 0, down.MuRange[0].Max.Cmp(s.MuRange[0].Avg()))

	up := s.Halve(4, NuUp)
	assert.Equal(t, 0, up.NuRange[4].Min.Cmp(s.NuRange[4].Avg()))
	assert.Equal(t, 0, up.NuRange[4].Max.Cmp(s.NuRange[4].Max))

	// the parent keeps its own ranges and polygons
	assert.Equal(t, 0, s.MuRange[0].Max.Sign())
	assert.Equal(t, 1, s.Area.Sign())
}

func TestSofa_HalveFrozenMuPanics(t *testing.T) {
	s := testSofa(t)
	assert.Panics(t, func() { s.Halve(s.MuFixIdx, MuDown) })
	assert.Panics(t, func() { s.Halve(s.MuFixIdx, MuUp) })
	assert.NotPanics(t, func() { s.Halve(s.MuFixIdx, NuDown) })
}

func TestSofa_RejectsBadNormals(t *testing.T) {
	muRange := []Interval{{Min: ri(0), Max: ri(0)}}
	nuRange := []Interval{{Min: ri(0), Max: ri(1)}}

	assert.Panics(t, func() {
		// not unit
		New([]geom.Coord{geom.NewCoord(big.NewRat(1, 2), big.NewRat(1, 2))},
			muRange, nuRange, 0)
	})
	assert.Panics(t, func() {
		// not in the open first quadrant
		New([]geom.Coord{geom.NewCoord(ri(-1), ri(0))}, muRange, nuRange, 0)
	})
}

func TestAPrioriSofas(t *testing.T) {
	normals := testNormals()
	sofas := APrioriSofas(normals, 2, 3)
	require.Len(t, sofas, 3)

	// the pivot's nu interval [0, 1/normals[2].y] splits evenly
	full := rr(t, "169/119")
	for i, s := range sofas {
		assert.Equal(t, 0, s.MuRange[2].Min.Cmp(s.MuRange[2].Max), "mu stays frozen")
		wantMin := new(big.Rat).Mul(full, big.NewRat(int64(i), 3))
		wantMax := new(big.Rat).Mul(full, big.NewRat(int64(i+1), 3))
		assert.Equal(t, 0, s.NuRange[2].Min.Cmp(wantMin))
		assert.Equal(t, 0, s.NuRange[2].Max.Cmp(wantMax))
		assert.Equal(t, 1, s.Area.Sign(), "root %d has positive area", i)
	}

	// the third root's parameters are exactly the hand-written fixture
	fixture := testSofa(t)
	last := sofas[2]
	for j := 0; j < last.N; j++ {
		assert.Equal(t, 0, last.MuRange[j].Min.Cmp(fixture.MuRange[j].Min), "mu min %d", j)
		assert.Equal(t, 0, last.MuRange[j].Max.Cmp(fixture.MuRange[j].Max), "mu max %d", j)
		assert.Equal(t, 0, last.NuRange[j].Min.Cmp(fixture.NuRange[j].Min), "nu min %d", j)
		assert.Equal(t, 0, last.NuRange[j].Max.Cmp(fixture.NuRange[j].Max), "nu max %d", j)
	}
	assert.Equal(t, 0, last.Area.Cmp(fixture.Area))
}

func TestBandPairValidate(t *testing.T) {
	assert.NotPanics(t, func() {
		NewBandPair(ri(2), ri(-1), ri(0), ri(1), ri(2)).validate()
	})
	assert.Panics(t, func() {
		NewBandPair(ri(2), ri(0), ri(0), ri(1), ri(2)).validate()
	})
	assert.Panics(t, func() {
		bp := NewBandPair(ri(2), ri(-1), ri(0), ri(1), ri(2))
		bp.OU = geom.NewLine(ri(3), ri(2))
		bp.validate()
	})
}
