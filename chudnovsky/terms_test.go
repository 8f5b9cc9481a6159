package chudnovsky

import (
	"errors"
	"testing"
)

var termsTests = []struct {
	digits int
	terms  int64
}{
	{1, 2},
	{14, 2},
	{15, 3},
	{28, 3},
	{29, 4},
	{100, 9},
	{1000, 72},
	{1000000, 70515},
}

func TestTermsForDigits(t *testing.T) {
	for _, c := range termsTests {
		n, err := TermsForDigits(c.digits)
		if err != nil {
			t.Fatalf("TermsForDigits(%d): %v", c.digits, err)
		}
		if n != c.terms {
			t.Fatalf("TermsForDigits(%d): %d, wanted %d", c.digits, n, c.terms)
		}
	}
}

func TestTermsForDigitsRejects(t *testing.T) {
	for _, d := range []int{0, -1, -5} {
		if _, err := TermsForDigits(d); !errors.Is(err, ErrInvalidDigits) {
			t.Fatalf("TermsForDigits(%d): %v, wanted ErrInvalidDigits", d, err)
		}
	}
}

func TestEstimateMemoryGrows(t *testing.T) {
	prev := uint64(0)
	for _, d := range []int{10, 1000, 100000, 10000000} {
		n, _ := TermsForDigits(d)
		m := estimateMemory(d, n)
		if m <= prev {
			t.Fatalf("estimateMemory(%d) = %d, not above %d", d, m, prev)
		}
		prev = m
	}
}
