// Copyright 2013 David G. Andersen.  All rights reserved.
// Use of this source code is goverened by a BSD-style
// license that can be found in the Go source code distribution
// LICENSE file.

package chudnovsky

import "go.uber.org/zap"

// Zap logger to use in this package; default is a no-op logger.
var logger = zap.NewNop()

// SetLogger changes the Zap logger used by this package.
func SetLogger(l *zap.Logger) {
	if l != nil {
		logger = l
	}
}
