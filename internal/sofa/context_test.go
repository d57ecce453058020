package sofa

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofa-bound/internal/geom"
)

func ri(v int64) *big.Rat { return big.NewRat(v, 1) }

// checkContext verifies a context against recomputation from its own lines:
// every cached cross-slope intersection and every three-line arrangement
// must agree with the direct formulas. This is the cache-consistency
// contract after any sequence of Branch derivations.
func checkContext(t *testing.T, ctx *LineContext) {
	t.Helper()
	lines := ctx.Lines()
	total := geom.LineID(len(lines))

	for i := geom.LineID(0); i < total; i++ {
		for j := i + 1; j < total; j++ {
			if ctx.SlopeID(i) == ctx.SlopeID(j) {
				continue
			}
			want := geom.Intersect(lines[i], lines[j])
			require.True(t, ctx.Intersection(i, j).Equal(want),
				"intersection (%d, %d)", i, j)
		}
	}

	for i := geom.LineID(0); i < total; i++ {
		for j := i + 1; j < total; j++ {
			if ctx.SlopeID(i) == ctx.SlopeID(j) {
				continue
			}
			for k := j + 1; k < total; k++ {
				if ctx.SlopeID(j) == ctx.SlopeID(k) {
					continue
				}
				want := geom.Arrange(lines[i], lines[j], lines[k])
				require.Equal(t, want, ctx.Arrangement(i, j, k),
					"arrangement (%d, %d, %d)", i, j, k)
			}
		}
	}
}

func simpleBands() []BandPair {
	return []BandPair{
		NewBandPair(ri(-1), ri(-1), ri(0), ri(1), ri(2)),
		NewBandPair(ri(0), ri(-1), ri(0), ri(1), ri(2)),
		NewBandPair(ri(1), ri(-1), ri(0), ri(1), ri(2)),
	}
}

func assertLines(t *testing.T, ctx *LineContext, want [][2]*big.Rat) {
	t.Helper()
	lines := ctx.Lines()
	require.Len(t, lines, len(want))
	for i, w := range want {
		assert.True(t, lines[i].Equal(geom.NewLine(w[0], w[1])), "line %d is %s", i, lines[i])
	}
}

func TestLineContext_Construction(t *testing.T) {
	ctx := NewLineContext(simpleBands())
	require.Equal(t, 12, ctx.NumLines())

	assertLines(t, ctx, [][2]*big.Rat{
		{ri(-1), ri(-1)}, {ri(-1), ri(0)}, {ri(-1), ri(1)}, {ri(-1), ri(2)},
		{ri(0), ri(-1)}, {ri(0), ri(0)}, {ri(0), ri(1)}, {ri(0), ri(2)},
		{ri(1), ri(-1)}, {ri(1), ri(0)}, {ri(1), ri(1)}, {ri(1), ri(2)},
	})
	for id := 0; id < 12; id++ {
		assert.Equal(t, geom.SlopeID(id/4), ctx.SlopeID(geom.LineID(id)))
	}
	checkContext(t, ctx)
}

func TestLineContext_Branch(t *testing.T) {
	ctx := NewLineContext(simpleBands())

	ctx2 := ctx.Branch(0, Down)
	assertLines(t, ctx2, [][2]*big.Rat{
		{ri(-1), ri(-1)}, {ri(-1), big.NewRat(-1, 2)}, {ri(-1), big.NewRat(1, 2)}, {ri(-1), ri(1)},
		{ri(0), ri(-1)}, {ri(0), ri(0)}, {ri(0), ri(1)}, {ri(0), ri(2)},
		{ri(1), ri(-1)}, {ri(1), ri(0)}, {ri(1), ri(1)}, {ri(1), ri(2)},
	})
	checkContext(t, ctx2)

	ctx3 := ctx2.Branch(1, Up)
	assertLines(t, ctx3, [][2]*big.Rat{
		{ri(-1), ri(-1)}, {ri(-1), big.NewRat(-1, 2)}, {ri(-1), big.NewRat(1, 2)}, {ri(-1), ri(1)},
		{ri(0), ri(0)}, {ri(0), big.NewRat(1, 2)}, {ri(0), big.NewRat(3, 2)}, {ri(0), ri(2)},
		{ri(1), ri(-1)}, {ri(1), ri(0)}, {ri(1), ri(1)}, {ri(1), ri(2)},
	})
	checkContext(t, ctx3)

	ctx4 := ctx3.Branch(2, Up)
	assertLines(t, ctx4, [][2]*big.Rat{
		{ri(-1), ri(-1)}, {ri(-1), big.NewRat(-1, 2)}, {ri(-1), big.NewRat(1, 2)}, {ri(-1), ri(1)},
		{ri(0), ri(0)}, {ri(0), big.NewRat(1, 2)}, {ri(0), big.NewRat(3, 2)}, {ri(0), ri(2)},
		{ri(1), ri(0)}, {ri(1), big.NewRat(1, 2)}, {ri(1), big.NewRat(3, 2)}, {ri(1), ri(2)},
	})
	checkContext(t, ctx4)
}

func TestLineContext_BranchLeavesParentIntact(t *testing.T) {
	ctx := NewLineContext(simpleBands())
	before := make([]geom.Line, len(ctx.Lines()))
	copy(before, ctx.Lines())

	_ = ctx.Branch(1, Down)
	_ = ctx.Branch(1, Up)

	for i, l := range ctx.Lines() {
		assert.True(t, l.Equal(before[i]), "line %d changed under the parent", i)
	}
	checkContext(t, ctx)
}

func TestLineContext_BranchStress(t *testing.T) {
	slopes := []*big.Rat{ri(-5), ri(-3), ri(-1), ri(1), ri(2), ri(4)}
	bps := make([]BandPair, len(slopes))
	for i, s := range slopes {
		bps[i] = NewBandPair(s, ri(-1), ri(0), ri(1), ri(2))
	}

	ctx := NewLineContext(bps)
	checkContext(t, ctx)
	for i := 0; i < 4*len(slopes); i++ {
		dir := Down
		if i%2 == 1 {
			dir = Up
		}
		ctx = ctx.Branch(geom.SlopeID(i%len(slopes)), dir)
		checkContext(t, ctx)
	}
}

func TestLineContext_Validation(t *testing.T) {
	assert.Panics(t, func() {
		// slopes must strictly increase across bands
		NewLineContext([]BandPair{
			NewBandPair(ri(1), ri(-1), ri(0), ri(1), ri(2)),
			NewBandPair(ri(1), ri(-1), ri(0), ri(1), ri(2)),
		})
	})
	assert.Panics(t, func() {
		// intercepts must strictly increase within a band
		NewLineContext([]BandPair{
			NewBandPair(ri(0), ri(0), ri(0), ri(1), ri(2)),
		})
	})
	ctx := NewLineContext(simpleBands())
	assert.Panics(t, func() { ctx.Intersection(0, 1) })
	assert.Panics(t, func() { ctx.Arrangement(4, 1, 8) })
}
