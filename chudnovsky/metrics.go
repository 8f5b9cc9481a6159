// Copyright 2013 David G. Andersen.  All rights reserved.
// Use of this source code is goverened by a BSD-style
// license that can be found in the Go source code distribution
// LICENSE file.

package chudnovsky

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var (
	computeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pidigits_compute_total",
		Help: "Pi computations by result",
	}, []string{"result"})

	computeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pidigits_compute_duration_seconds",
		Help:    "Pi computation wall time",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 12),
	}, []string{"mode"})

	computeTerms = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pidigits_compute_terms",
		Help:    "Series terms summed per computation",
		Buckets: prometheus.ExponentialBuckets(1, 4, 12),
	})
)

func tracer() trace.Tracer {
	return otel.Tracer("chudnovsky")
}
