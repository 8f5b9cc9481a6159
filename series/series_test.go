package series

import (
	"errors"
	"math"
	"testing"
)

var accuracyTests = []struct {
	name  string
	terms int64
	tol   float64
}{
	{"wallis", 100000, 1e-4},
	{"viete", 30, 1e-12},
	{"nilakantha", 1000, 1e-9},
	{"leibniz", 1000000, 1e-5},
	{"newton", 60, 1e-12},
}

func TestAccuracy(t *testing.T) {
	for _, c := range accuracyTests {
		r, err := Evaluate(c.name, c.terms)
		if err != nil {
			t.Fatalf("Evaluate(%s): %v", c.name, err)
		}
		if r.Error() > c.tol {
			t.Fatalf("%s with %d terms: %v, off by %v", c.name, c.terms, r.Value, r.Error())
		}
	}
}

func TestFirstTerms(t *testing.T) {
	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"wallis", Wallis(1), 2 * (2.0 / 1) * (2.0 / 3)},
		{"viete", Viete(1), 2 * 2 / math.Sqrt2},
		{"nilakantha", Nilakantha(1), 3 + 4.0/24},
		{"leibniz", Leibniz(1), 4 * (1 - 1.0/3)},
		{"newton", Newton(1), 4 * (0.5 + 1.0/6)},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > 1e-15 {
			t.Fatalf("%s(1): %v, wanted %v", c.name, c.got, c.want)
		}
	}
}

func TestConverges(t *testing.T) {
	for _, s := range All {
		coarse := math.Abs(s.Eval(10) - math.Pi)
		fine := math.Abs(s.Eval(1000) - math.Pi)
		if fine > coarse {
			t.Fatalf("%s: 1000 terms (%v) worse than 10 (%v)", s.Name, fine, coarse)
		}
	}
}

func TestEvaluateAll(t *testing.T) {
	rs, err := EvaluateAll(500)
	if err != nil {
		t.Fatalf("EvaluateAll: %v", err)
	}
	if len(rs) != len(All) {
		t.Fatalf("%d results, wanted %d", len(rs), len(All))
	}
	for i, r := range rs {
		if r.Name != All[i].Name || r.Terms != 500 {
			t.Fatalf("result %d: %s/%d", i, r.Name, r.Terms)
		}
		if r.Value != All[i].Eval(500) {
			t.Fatalf("%s: parallel value differs", r.Name)
		}
	}
}

func TestEvaluateErrors(t *testing.T) {
	if _, err := Evaluate("wallis", 0); !errors.Is(err, ErrInvalidTerms) {
		t.Fatalf("zero terms: %v", err)
	}
	if _, err := EvaluateAll(-3); !errors.Is(err, ErrInvalidTerms) {
		t.Fatalf("negative terms: %v", err)
	}
	if _, err := Evaluate("bbp", 10); !errors.Is(err, ErrUnknownSeries) {
		t.Fatalf("unknown series: %v", err)
	}
}
