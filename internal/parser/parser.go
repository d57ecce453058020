// Package parser reads a problem definition from free-form text: the
// rotation angles as Pythagorean triples, the pivot index, the initial pool
// size and the target area.
package parser

import (
	"bufio"
	"io"
	"math/big"

	"github.com/sofa-bound/internal/geom"
	apperrors "github.com/sofa-bound/pkg/errors"
)

// Problem is a fully validated problem definition.
type Problem struct {
	// Normals are the unit normals, one per rotation angle, in ascending
	// slope order.
	Normals []geom.Coord
	// MuFixIdx is the pivot axis whose mu stays frozen.
	MuFixIdx int
	// NumSofas is the number of initial nodes the pivot interval splits
	// into.
	NumSofas int
	// Target is the area below which nodes are pruned.
	Target *big.Rat
}

// The expected input stream, with arbitrary whitespace between tokens:
//
//	Number of angles: <n>
//	<a_1> <b_1> <c_1>
//	...
//	<a_n> <b_n> <c_n>
//	Index to fix mu: <F>
//	Number of initial sofas: <k>
//	Target: <p/q>
//
// Each triple must satisfy a^2 + b^2 = c^2 with a, b, c > 0 and defines the
// normal (a/c, b/c).

// Parse reads and validates a problem definition.
func Parse(r io.Reader) (*Problem, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	p := &tokenReader{sc: sc}

	if err := p.literals("Number", "of", "angles:"); err != nil {
		return nil, err
	}
	n, err := p.intToken("number of angles")
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, apperrors.Newf(apperrors.CodeInvalidInput, "number of angles must be positive, got %d", n)
	}

	normals := make([]geom.Coord, n)
	var prevA, prevB *big.Int
	for i := 0; i < n; i++ {
		a, err := p.bigToken("triple component a")
		if err != nil {
			return nil, err
		}
		b, err := p.bigToken("triple component b")
		if err != nil {
			return nil, err
		}
		c, err := p.bigToken("triple component c")
		if err != nil {
			return nil, err
		}
		if a.Sign() <= 0 || b.Sign() <= 0 || c.Sign() <= 0 {
			return nil, apperrors.Newf(apperrors.CodeInvalidInput,
				"triple %d: components must be positive: %s %s %s", i, a, b, c)
		}
		sum := new(big.Int).Mul(a, a)
		sum.Add(sum, new(big.Int).Mul(b, b))
		if sum.Cmp(new(big.Int).Mul(c, c)) != 0 {
			return nil, apperrors.Newf(apperrors.CodeInvalidInput,
				"triple %d: %s^2 + %s^2 != %s^2", i, a, b, c)
		}
		// ascending line slope -a/b: a_i * b_{i+1} > a_{i+1} * b_i
		if prevA != nil {
			lhs := new(big.Int).Mul(prevA, b)
			rhs := new(big.Int).Mul(a, prevB)
			if lhs.Cmp(rhs) <= 0 {
				return nil, apperrors.Newf(apperrors.CodeInvalidInput,
					"triple %d: angles must be supplied in ascending slope", i)
			}
		}
		prevA, prevB = a, b

		normals[i] = geom.NewCoord(new(big.Rat).SetFrac(a, c), new(big.Rat).SetFrac(b, c))
	}

	if err := p.literals("Index", "to", "fix", "mu:"); err != nil {
		return nil, err
	}
	fixIdx, err := p.intToken("pivot index")
	if err != nil {
		return nil, err
	}
	if fixIdx < 0 || fixIdx >= n {
		return nil, apperrors.Newf(apperrors.CodeInvalidInput,
			"pivot index %d out of range [0, %d)", fixIdx, n)
	}

	if err := p.literals("Number", "of", "initial", "sofas:"); err != nil {
		return nil, err
	}
	numSofas, err := p.intToken("number of initial sofas")
	if err != nil {
		return nil, err
	}
	if numSofas <= 0 {
		return nil, apperrors.Newf(apperrors.CodeInvalidInput,
			"number of initial sofas must be positive, got %d", numSofas)
	}

	if err := p.literals("Target:"); err != nil {
		return nil, err
	}
	tok, err := p.token("target")
	if err != nil {
		return nil, err
	}
	target, ok := new(big.Rat).SetString(tok)
	if !ok {
		return nil, apperrors.Newf(apperrors.CodeInvalidInput, "target %q is not a rational", tok)
	}

	return &Problem{
		Normals:  normals,
		MuFixIdx: fixIdx,
		NumSofas: numSofas,
		Target:   target,
	}, nil
}

// tokenReader pulls whitespace-separated tokens and matches literals.
type tokenReader struct {
	sc *bufio.Scanner
}

func (p *tokenReader) token(what string) (string, error) {
	if !p.sc.Scan() {
		if err := p.sc.Err(); err != nil {
			return "", apperrors.Wrap(apperrors.CodeParseError, "read failed", err)
		}
		return "", apperrors.Newf(apperrors.CodeParseError, "unexpected end of input, wanted %s", what)
	}
	return p.sc.Text(), nil
}

func (p *tokenReader) literals(words ...string) error {
	for _, w := range words {
		tok, err := p.token("literal " + w)
		if err != nil {
			return err
		}
		if tok != w {
			return apperrors.Newf(apperrors.CodeParseError, "expected %q, got %q", w, tok)
		}
	}
	return nil
}

func (p *tokenReader) intToken(what string) (int, error) {
	v, err := p.bigToken(what)
	if err != nil {
		return 0, err
	}
	if !v.IsInt64() || int64(int(v.Int64())) != v.Int64() {
		return 0, apperrors.Newf(apperrors.CodeParseError, "%s %s overflows", what, v)
	}
	return int(v.Int64()), nil
}

func (p *tokenReader) bigToken(what string) (*big.Int, error) {
	tok, err := p.token(what)
	if err != nil {
		return nil, err
	}
	v, ok := new(big.Int).SetString(tok, 10)
	if !ok {
		return nil, apperrors.Newf(apperrors.CodeParseError, "%s %q is not an integer", what, tok)
	}
	return v, nil
}
