// Copyright 2013 David G. Andersen.  All rights reserved.
// Use of this source code is goverened by a BSD-style
// license that can be found in the Go source code distribution
// LICENSE file.

// Package cliutil holds the setup shared by the command line tools.
package cliutil

import (
	"github.com/dave-andersen/pidigits/chudnovsky"
	"github.com/dave-andersen/pidigits/montecarlo"
	"github.com/dave-andersen/pidigits/pisearch"
	"go.uber.org/zap"
)

// NewLogger returns a JSON production logger, or a human readable
// debug logger when verbose is set.  With outputs the logger writes to
// those paths instead of stderr.
func NewLogger(verbose bool, outputs ...string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	if len(outputs) > 0 {
		cfg.OutputPaths = outputs
	}
	return cfg.Build()
}

// Install makes l the logger of every library package.
func Install(l *zap.Logger) {
	chudnovsky.SetLogger(l)
	montecarlo.SetLogger(l)
	pisearch.SetLogger(l)
}

// MustLogger builds and installs the logger for a main function; it
// panics on error.
func MustLogger(verbose bool) *zap.Logger {
	l, err := NewLogger(verbose)
	if err != nil {
		panic(err)
	}
	Install(l)
	return l
}
