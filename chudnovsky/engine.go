// Copyright 2013 David G. Andersen.  All rights reserved.
// Use of this source code is goverened by a BSD-style
// license that can be found in the Go source code distribution
// LICENSE file.

// Package chudnovsky computes the digits of Pi with the Chudnovsky
// series, summed by binary splitting over exact integers.  The result
// is an integer holding the leading digits of Pi with the decimal point
// removed (31415... rather than 3.1415...).
//
// Typical use is
//
//	e, err := chudnovsky.New(chudnovsky.DefaultConfig())
//	pi, err := e.Compute(ctx, 1000)
//
// The split tree is held as an explicit arena of ranges.  Subtrees no
// larger than Config.Threshold terms are evaluated on one goroutine;
// larger ones are forked across Config.Workers and joined before their
// merge.  Sequential and parallel evaluation give identical results.
package chudnovsky

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"runtime"
	"time"

	"github.com/cznic/mathutil" // gives us sqrt
	"github.com/dustin/go-humanize"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Extra digits carried through the computation and truncated at the
// end; the trailing digits are wrong otherwise.
const guardDigits = 8

const defaultThreshold = 64

// Config controls how a computation is scheduled.
type Config struct {
	Workers     int    // Goroutines for the fork-join phase; <= 0 means GOMAXPROCS
	Threshold   int64  // Ranges of at most this many terms are not forked
	Sequential  bool   // Evaluate the whole tree on the calling goroutine
	MemoryLimit uint64 // Refuse computations estimated above this many bytes; 0 is unlimited
}

// DefaultConfig returns a parallel configuration using every CPU.
func DefaultConfig() Config {
	return Config{
		Workers:   runtime.GOMAXPROCS(0),
		Threshold: defaultThreshold,
	}
}

func (c *Config) validate() error {
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.Threshold < 1 {
		return fmt.Errorf("%w: threshold %d must be at least 1", ErrInvalidConfig, c.Threshold)
	}
	return nil
}

// Engine computes digits of Pi.  It holds no state between calls and
// may be used from several goroutines.
type Engine struct {
	cfg Config
}

// New returns an Engine for cfg.
func New(cfg Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the engine's effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

func (e *Engine) mode() string {
	if e.cfg.Sequential || e.cfg.Workers == 1 {
		return "sequential"
	}
	return "parallel"
}

// Split computes the terms for [a, b) using the engine's scheduling.
func (e *Engine) Split(ctx context.Context, a, b int64) (SplitResult, error) {
	if err := checkRange(a, b); err != nil {
		return SplitResult{}, err
	}
	if err := checkSize(a, b); err != nil {
		return SplitResult{}, err
	}
	g := newGraph(a, b)
	var err error
	if e.mode() == "sequential" {
		err = g.evalSpanCtx(ctx, 0)
	} else {
		err = g.evalParallel(ctx, e.cfg.Workers, e.cfg.Threshold)
	}
	if err != nil {
		return SplitResult{}, err
	}
	return g.result(0), nil
}

// Compute returns the first digits digits of Pi as an integer, i.e.
// floor(Pi * 10^(digits-1)).  A cancelled ctx abandons the computation
// and returns ctx.Err(); nothing computed so far is kept.
func (e *Engine) Compute(ctx context.Context, digits int) (*big.Int, error) {
	if digits < 1 {
		computeTotal.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: %d", ErrInvalidDigits, digits)
	}
	if digits > math.MaxInt-guardDigits {
		computeTotal.WithLabelValues("limit").Inc()
		return nil, fmt.Errorf("%w: %d digits", ErrResourceLimit, digits)
	}
	terms, err := TermsForDigits(digits + guardDigits)
	if err != nil {
		computeTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}
	if terms > maxTerms {
		computeTotal.WithLabelValues("limit").Inc()
		return nil, fmt.Errorf("%w: %s digits need %s terms, at most %s",
			ErrResourceLimit, humanize.Comma(int64(digits)),
			humanize.Comma(terms), humanize.Comma(maxTerms))
	}
	if limit := e.cfg.MemoryLimit; limit > 0 {
		if need := estimateMemory(digits, terms); need > limit {
			computeTotal.WithLabelValues("limit").Inc()
			return nil, fmt.Errorf("%w: %s digits need about %s, limit is %s",
				ErrResourceLimit, humanize.Comma(int64(digits)),
				humanize.Bytes(need), humanize.Bytes(limit))
		}
	}

	mode := e.mode()
	ctx, span := tracer().Start(ctx, "chudnovsky.Compute", trace.WithAttributes(
		attribute.Int("digits", digits),
		attribute.Int64("terms", terms),
		attribute.Int("workers", e.cfg.Workers),
		attribute.String("mode", mode),
	))
	defer span.End()

	l := logger.With(zap.Int("digits", digits), zap.Int64("terms", terms), zap.String("mode", mode))
	l.Debug("Compute: enter")
	start := time.Now()

	root, err := e.Split(ctx, 0, terms)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		computeTotal.WithLabelValues("abandoned").Inc()
		l.Debug("Compute: abandoned", zap.Error(err))
		return nil, err
	}
	pi, err := Reconstruct(root, digits)
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	computeTotal.WithLabelValues("ok").Inc()
	computeDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
	computeTerms.Observe(float64(terms))
	l.Debug("Compute: exit", zap.Duration("elapsed", elapsed))
	return pi, nil
}

// Reconstruct turns the terms of [0, N) into floor(Pi * 10^(digits-1)).
// N must cover digits plus the guard digits; see TermsForDigits.
//
//	Pi = 426880 * sqrt(10005) * Q / T
func Reconstruct(root SplitResult, digits int) (*big.Int, error) {
	if digits < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDigits, digits)
	}
	if root.Q == nil || root.T == nil || root.T.Sign() == 0 {
		return nil, fmt.Errorf("%w: root has no terms", ErrInvalidRange)
	}
	ten := big.NewInt(10)
	onebase := new(big.Int).Exp(ten, big.NewInt(int64(digits-1+guardDigits)), nil)

	tmp := big.NewInt(10005)
	tmp.Mul(tmp, onebase)
	tmp.Mul(tmp, onebase) // tmp = 10005*onebase^2
	// so sqrt(tmp) = sqrt(10005)*onebase with precision maintained
	tmp = mathutil.SqrtBig(tmp)
	tmp.Mul(tmp, big.NewInt(426880))
	tmp.Mul(tmp, root.Q)
	tmp.Quo(tmp, root.T)

	guard := new(big.Int).Exp(ten, big.NewInt(guardDigits), nil)
	return tmp.Quo(tmp, guard), nil
}

// Pi computes digits digits of Pi with the default configuration.
func Pi(ctx context.Context, digits int) (*big.Int, error) {
	e, err := New(DefaultConfig())
	if err != nil {
		return nil, err
	}
	return e.Compute(ctx, digits)
}
