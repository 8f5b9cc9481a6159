// Copyright 2013 David G. Andersen.  All rights reserved.
// Use of this source code is goverened by a BSD-style
// license that can be found in the Go source code distribution
// LICENSE file.

package chudnovsky

import "errors"

var (
	// ErrInvalidDigits is returned for a requested digit count below one.
	ErrInvalidDigits = errors.New("chudnovsky: digit count must be positive")
	// ErrInvalidRange means an empty or negative range reached the splitter.
	ErrInvalidRange = errors.New("chudnovsky: invalid term range")
	// ErrInvalidConfig is returned by New for unusable settings.
	ErrInvalidConfig = errors.New("chudnovsky: invalid config")
	// ErrResourceLimit is returned when a computation would exceed the
	// configured memory limit.
	ErrResourceLimit = errors.New("chudnovsky: memory limit exceeded")
)
