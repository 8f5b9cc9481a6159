// Copyright 2013 David G. Andersen.  All rights reserved.
// Use of this source code is goverened by a BSD-style
// license that can be found in the Go source code distribution
// LICENSE file.

package chudnovsky

import (
	"fmt"
	"math"
)

// DigitsPerTerm is log10(640320^3 / 24 / 72), the number of decimal
// digits each term of the series adds.
const DigitsPerTerm = 14.181647462725477

// TermsForDigits returns how many series terms are needed for digits
// correct decimal digits, with one extra term of margin.
func TermsForDigits(digits int) (int64, error) {
	if digits < 1 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidDigits, digits)
	}
	return int64(math.Ceil(float64(digits)/DigitsPerTerm)) + 1, nil
}

// estimateMemory roughly bounds the bytes held at the root merge: P, Q
// and T each grow to about terms * (53 + 3*log2(terms)) bits, and the
// square root works on numbers of twice the digit count.
func estimateMemory(digits int, terms int64) uint64 {
	n := float64(terms)
	termBits := n * (math.Log2(c3Div24) + 3*math.Log2(n+1))
	digitBits := float64(digits) * math.Log2(10)
	return uint64((4*termBits + 8*digitBits) / 8)
}
