// Copyright 2013 David G. Andersen.  All rights reserved.
// Use of this source code is goverened by a BSD-style
// license that can be found in the Go source code distribution
// LICENSE file.

// Package montecarlo estimates Pi by sampling points of the unit square
// and counting those that fall inside the quarter disk.  Workers run
// independent trials and their counters are reduced pairwise.
//
// The estimate is hopelessly inaccurate next to package chudnovsky;
// it is here for comparison.
package montecarlo

import (
	"context"
	"errors"
	"fmt"

	"github.com/exascience/pargo/parallel"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Samples between context checks in a worker.
const checkEvery = 1 << 16

// ErrInvalidBudget is returned for a non-positive worker count or an
// empty per-worker iteration budget.
var ErrInvalidBudget = errors.New("montecarlo: invalid sampling budget")

var (
	logger = zap.NewNop()

	samplesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pidigits_montecarlo_samples_total",
		Help: "Monte Carlo points sampled, by placement",
	}, []string{"placement"})
)

// SetLogger changes the Zap logger used by this package.
func SetLogger(l *zap.Logger) {
	if l != nil {
		logger = l
	}
}

// Counts is the outcome of a batch of trials.
type Counts struct {
	Inside  uint64
	Outside uint64
}

// Add returns the pairwise sum of c and o.
func (c Counts) Add(o Counts) Counts {
	return Counts{c.Inside + o.Inside, c.Outside + o.Outside}
}

// Total is the number of points sampled.
func (c Counts) Total() uint64 {
	return c.Inside + c.Outside
}

// Estimate returns 4 * inside / total, or 0 if nothing was sampled.
func (c Counts) Estimate() float64 {
	if c.Total() == 0 {
		return 0
	}
	return 4 * float64(c.Inside) / float64(c.Total())
}

// Reduce combines any number of counters.
func Reduce(counts ...Counts) Counts {
	var sum Counts
	for _, c := range counts {
		sum = sum.Add(c)
	}
	return sum
}

// Sample runs n trials from the generator stream identified by
// (seed, worker).  It stops early, returning what it has, once ctx is
// done.
func Sample(ctx context.Context, n uint64, seed uint64, worker int) Counts {
	rng := newPCG(seed, uint64(worker))
	var c Counts
	for i := uint64(0); i < n; i++ {
		if i%checkEvery == 0 && ctx.Err() != nil {
			break
		}
		x, y := rng.Float64(), rng.Float64()
		if x*x+y*y < 1 {
			c.Inside++
		} else {
			c.Outside++
		}
	}
	return c
}

// Run samples perWorker points on each of workers goroutines and
// returns the reduced counts.  The result depends only on the
// arguments, not on scheduling.  If ctx is done before every worker
// finishes, the partial counts are discarded and ctx.Err() returned.
func Run(ctx context.Context, workers int, perWorker uint64, seed uint64) (Counts, error) {
	if workers <= 0 || perWorker == 0 {
		return Counts{}, fmt.Errorf("%w: %d workers x %d points", ErrInvalidBudget, workers, perWorker)
	}
	logger.Debug("Run: enter", zap.Int("workers", workers), zap.Uint64("perWorker", perWorker))

	result := parallel.RangeReduce(0, workers, workers,
		func(low, high int) interface{} {
			var c Counts
			for w := low; w < high; w++ {
				c = c.Add(Sample(ctx, perWorker, seed, w))
			}
			return c
		},
		func(x, y interface{}) interface{} {
			return x.(Counts).Add(y.(Counts))
		})
	if err := ctx.Err(); err != nil {
		return Counts{}, err
	}
	c := result.(Counts)
	samplesTotal.WithLabelValues("inside").Add(float64(c.Inside))
	samplesTotal.WithLabelValues("outside").Add(float64(c.Outside))
	logger.Debug("Run: exit", zap.Uint64("inside", c.Inside), zap.Uint64("outside", c.Outside))
	return c, nil
}
