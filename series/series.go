// Copyright 2013 David G. Andersen.  All rights reserved.
// Use of this source code is goverened by a BSD-style
// license that can be found in the Go source code distribution
// LICENSE file.

// Package series evaluates classical, slowly converging series and
// products for Pi term by term in float64.  Each function takes the
// number of terms to evaluate explicitly.
package series

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/exascience/pargo/parallel"
)

var (
	// ErrInvalidTerms is returned for term counts below one.
	ErrInvalidTerms = errors.New("series: term count must be positive")

	// ErrUnknownSeries is returned by Lookup and Evaluate for names not in All.
	ErrUnknownSeries = errors.New("series: unknown series")
)

// Func approximates Pi from terms terms.
type Func func(terms int64) float64

// Series is a named approximation.
type Series struct {
	Name string // Short name used on the command line
	Desc string
	Eval Func
}

// All lists the available series.
var All = []Series{
	{"wallis", "Wallis product", Wallis},
	{"viete", "Viete's formula", Viete},
	{"nilakantha", "Nilakantha series", Nilakantha},
	{"leibniz", "Madhava-Leibniz formula (arctan)", Leibniz},
	{"newton", "Newton series (arctan)", Newton},
}

// Wallis evaluates the Wallis product, two factors per term.
func Wallis(terms int64) float64 {
	res, top, bottom := 1.0, 0.0, 1.0
	for ; terms > 0; terms-- {
		top += 2
		res *= top / bottom
		bottom += 2
		res *= top / bottom
	}
	return res * 2
}

// Viete evaluates Viete's nested square root product.
func Viete(terms int64) float64 {
	res, root := 1.0, 0.0
	for ; terms > 0; terms-- {
		root = math.Sqrt(2 + root)
		res *= 2 / root
	}
	return res * 2
}

// Nilakantha evaluates 3 + 4/(2*3*4) - 4/(4*5*6) + ...
func Nilakantha(terms int64) float64 {
	res, n, sign := 3.0, 2.0, -1.0
	for ; terms > 0; terms-- {
		denom := n * (n + 1) * (n + 2)
		n += 2
		sign = -sign
		res += sign * 4 / denom
	}
	return res
}

// Leibniz evaluates 4 * (1 - 1/3 + 1/5 - ...).
func Leibniz(terms int64) float64 {
	res, sign, denom := 1.0, 1.0, 1.0
	for ; terms > 0; terms-- {
		denom += 2
		sign = -sign
		res += sign / denom
	}
	return res * 4
}

// Newton evaluates Newton's (Euler's) accelerated arctan(1) series,
// 4 * sum (2k)!! / (2k+1)!! / 2^(k+1).
func Newton(terms int64) float64 {
	res, num, den, frac, pow := 0.5, 0.0, 1.0, 1.0, 2.0
	for ; terms > 0; terms-- {
		pow *= 2
		num += 2
		den += 2
		frac *= num / den
		res += frac / pow
	}
	return res * 4
}

// Lookup returns the series with the given short name.
func Lookup(name string) (Series, error) {
	for _, s := range All {
		if s.Name == name {
			return s, nil
		}
	}
	return Series{}, fmt.Errorf("%w: %q", ErrUnknownSeries, name)
}

// Result is one evaluated series.
type Result struct {
	Series
	Terms   int64
	Value   float64
	Elapsed time.Duration
}

// Error is the absolute distance from math.Pi.
func (r Result) Error() float64 {
	return math.Abs(r.Value - math.Pi)
}

func run(s Series, terms int64) Result {
	start := time.Now()
	v := s.Eval(terms)
	return Result{Series: s, Terms: terms, Value: v, Elapsed: time.Since(start)}
}

// Evaluate runs the named series for terms terms.
func Evaluate(name string, terms int64) (Result, error) {
	if terms <= 0 {
		return Result{}, fmt.Errorf("%w: %d", ErrInvalidTerms, terms)
	}
	s, err := Lookup(name)
	if err != nil {
		return Result{}, err
	}
	return run(s, terms), nil
}

// EvaluateAll runs every series concurrently, one goroutine each, and
// returns the results in the order of All.
func EvaluateAll(terms int64) ([]Result, error) {
	if terms <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTerms, terms)
	}
	results := make([]Result, len(All))
	thunks := make([]func(), len(All))
	for i := range All {
		i := i
		thunks[i] = func() { results[i] = run(All[i], terms) }
	}
	parallel.Do(thunks...)
	return results, nil
}
