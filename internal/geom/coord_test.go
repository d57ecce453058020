package geom

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoord_Equal(t *testing.T) {
	a := NewCoord(big.NewRat(0, 1), big.NewRat(0, 1))
	b := NewCoord(big.NewRat(1, 1), big.NewRat(2, 1))
	c := NewCoord(big.NewRat(1, 1), big.NewRat(2, 1))
	d := NewCoord(big.NewRat(2, 2), big.NewRat(4, 2))

	assert.True(t, a.Equal(a))
	assert.False(t, a.Equal(b))
	assert.True(t, b.Equal(c))
	assert.True(t, b.Equal(d), "equality is of values, not representations")
	assert.False(t, b.Equal(NewCoord(big.NewRat(1, 1), big.NewRat(3, 1))))
}

func TestCoord_Dot(t *testing.T) {
	a := NewCoord(big.NewRat(3, 5), big.NewRat(4, 5))
	assert.Equal(t, 0, a.Dot(a).Cmp(big.NewRat(1, 1)))

	b := NewCoord(big.NewRat(-4, 5), big.NewRat(3, 5))
	assert.Equal(t, 0, a.Dot(b).Sign())
}

func TestCoord_String(t *testing.T) {
	c := NewCoord(big.NewRat(1, 2), big.NewRat(-1, 2))
	assert.Equal(t, "(1/2, -1/2)", c.String())
}
