// Copyright 2013 David G. Andersen.  All rights reserved.
// Use of this source code is goverened by a BSD-style
// license that can be found in the Go source code distribution
// LICENSE file.

package chudnovsky

import (
	"fmt"
	"math/big"
)

// Series constants for the Chudnovsky formula
//
//	1/pi = 12 * sum (-1)^k (6k)! (13591409 + 545140134k) / ((3k)! (k!)^3 640320^(3k+3/2))
const (
	termA   = 13591409
	termB   = 545140134
	c3Div24 = 10939058860032000 // 640320^3 / 24
)

var (
	bigTermA   = big.NewInt(termA)
	bigTermB   = big.NewInt(termB)
	bigC3Div24 = big.NewInt(c3Div24)
)

// SplitResult holds the binary splitting terms for a range [a, b).
// Q is the common denominator and T the numerator of the partial sum
// over Q.  P is only needed to merge with a range to the right.
type SplitResult struct {
	P, Q, T *big.Int
}

// Equal reports whether r and o carry identical terms.
func (r SplitResult) Equal(o SplitResult) bool {
	return r.P.Cmp(o.P) == 0 && r.Q.Cmp(o.Q) == 0 && r.T.Cmp(o.T) == 0
}

func checkRange(a, b int64) error {
	if a < 0 || b <= a {
		return fmt.Errorf("%w: [%d, %d)", ErrInvalidRange, a, b)
	}
	return nil
}

// Base returns the terms of the single-element range [a, a+1).
func Base(a int64) SplitResult {
	if a == 0 {
		// The root term has no preceding factors.
		return SplitResult{big.NewInt(1), big.NewInt(1), big.NewInt(termA)}
	}
	ba := big.NewInt(a)
	tmp := new(big.Int)

	p := big.NewInt(6*a - 5)
	p.Mul(p, tmp.SetInt64(2*a-1))
	p.Mul(p, tmp.SetInt64(6*a-1))

	q := new(big.Int).Mul(ba, ba)
	q.Mul(q, ba)
	q.Mul(q, bigC3Div24)

	t := new(big.Int).Mul(bigTermB, ba)
	t.Add(t, bigTermA)
	t.Mul(t, p)
	if a&1 == 1 {
		t.Neg(t)
	}
	return SplitResult{p, q, t}
}

// Merge combines the terms of [a, m) and [m, b) into those of [a, b).
// Neither argument is modified.
func Merge(left, right SplitResult) SplitResult {
	p := new(big.Int).Mul(left.P, right.P)
	q := new(big.Int).Mul(left.Q, right.Q)

	// T = Qmb * Tam + Pam * Tmb
	t := new(big.Int).Mul(right.Q, left.T)
	t.Add(t, new(big.Int).Mul(left.P, right.T))
	return SplitResult{p, q, t}
}

// Split computes the terms for [a, b) sequentially, splitting at the
// midpoint.  It walks an explicit task graph rather than recursing, so
// very long ranges do not grow the goroutine stack.
func Split(a, b int64) (SplitResult, error) {
	if err := checkRange(a, b); err != nil {
		return SplitResult{}, err
	}
	if err := checkSize(a, b); err != nil {
		return SplitResult{}, err
	}
	g := newGraph(a, b)
	g.evalSpan(0)
	return g.result(0), nil
}

// SplitAt computes [a, b) by merging [a, m) and [m, b), each split
// at their midpoints.  Any a < m < b yields the same terms as Split.
func SplitAt(a, m, b int64) (SplitResult, error) {
	if err := checkRange(a, m); err != nil {
		return SplitResult{}, err
	}
	if err := checkRange(m, b); err != nil {
		return SplitResult{}, err
	}
	left, _ := Split(a, m)
	right, _ := Split(m, b)
	return Merge(left, right), nil
}
