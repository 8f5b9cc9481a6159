package pisearch

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/dave-andersen/pidigits/chudnovsky"
)

var psCached *Pisearch

const (
	numTestDigits = 20000
	maxSearch     = 10000000
)

// Needed to avoid duplicating openPiOrDie
type hasFatal interface {
	Fatalf(format string, args ...interface{})
	TempDir() string
}

// testDigits returns the first numTestDigits digits after the "3.".
func testDigits(t hasFatal) []byte {
	pi, err := chudnovsky.Pi(context.Background(), numTestDigits+1)
	if err != nil {
		t.Fatalf("Could not compute Pi: %v", err)
	}
	return []byte(pi.String()[1:])
}

func openPiOrDie(t hasFatal) *Pisearch {
	if psCached != nil {
		return psCached
	}
	base := filepath.Join(t.TempDir(), "pi")
	if _, err := WriteFiles(base, testDigits(t)); err != nil {
		t.Fatalf("Could not write Pi: %v", err)
	}
	pi, err := Open(base)
	if err != nil {
		t.Fatalf("Could not open Pi: %v", err)
	}
	// The mapping outlives the deleted temp files.
	psCached = pi
	return pi
}

func TestDigitAt(t *testing.T) {
	pi := openPiOrDie(t)

	for i, wanted := range []byte{1, 4, 1, 5} {
		if d := pi.digitAt(i); d != wanted {
			t.Fatalf("digitAt(%d): %d, wanted %d", i, int(d), int(wanted))
		}
	}
}

func TestNumDigits(t *testing.T) {
	if n := openPiOrDie(t).NumDigits(); n != numTestDigits {
		t.Fatalf("NumDigits: %d, wanted %d", n, numTestDigits)
	}
}

var searchTests = []struct {
	str   string
	start int
	found bool
	pos   int
}{
	{"1", 0, true, 0},
	{"4", 0, true, 1},
	{"14", 0, true, 0},
	{"41", 0, true, 1},
	{"415", 0, true, 1},
	{"415", 2, true, 391},
	{"1415", 0, true, 0},
	{"14159", 0, true, 0},
	{"8566", 0, true, 254},
	{"85667", 0, true, 9999},
	{"856672", 0, true, 9999},
	{"8566722", 0, true, 9999},
	{"86753", 0, true, 4117},
	{"999999", 0, true, 761},
	{"0123456789", 0, false, 0},
	{"", 0, false, 0},
	{"3x", 0, false, 0},
}

func TestGetDigits(t *testing.T) {
	pi := openPiOrDie(t)

	for i, searchfor := range searchTests {
		if searchfor.found == true {
			if d := pi.GetDigits(searchfor.pos, len(searchfor.str)); d != searchfor.str {
				t.Fatalf("GetDigits(%d): %s, wanted %s", i, d, searchfor.str)
			}
		}
	}
}

func TestGetDigitsEnd(t *testing.T) {
	pi := openPiOrDie(t)
	digits := testDigits(t)
	if d := pi.GetDigits(numTestDigits-3, 10); d != string(digits[numTestDigits-3:]) {
		t.Fatalf("GetDigits at the end: %s", d)
	}
	if d := pi.GetDigits(numTestDigits, 5); d != "" {
		t.Fatalf("GetDigits past the end: %s", d)
	}
}

var compareTests = []struct {
	pos       int
	compareto []byte
	result    int
}{
	{0, []byte{1, 4, 1, 5}, 0},
	{0, []byte{1, 4, 1, 2}, 1},
	{0, []byte{1, 4, 1, 7}, -1},
	{1, []byte{4, 1, 5, 9}, 0},
}

func TestCompare(t *testing.T) {
	pi := openPiOrDie(t)
	for i, c := range compareTests {
		if d := pi.compare(c.pos, c.compareto); d != c.result {
			t.Fatalf("Compare(%d) pos %d vs %v: %d, wanted %d", i, c.pos, c.compareto, d, c.result)
		}
	}

}

func TestSearch(t *testing.T) {
	pi := openPiOrDie(t)
	for i, c := range searchTests {
		if f, p, _ := pi.Search(c.start, c.str); f != c.found || p != c.pos {
			t.Fatalf("Search(%d) for %s result %t %d\n", i, c.str, f, p)
		}
	}
}

// Every strategy must agree with a plain string search.
func TestSearchMatchesStrings(t *testing.T) {
	pi := openPiOrDie(t)
	digits := string(testDigits(t))
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		l := 1 + rng.Intn(6)
		start := rng.Intn(numTestDigits)
		key := digits[rng.Intn(numTestDigits-l):]
		key = key[:l]
		want := strings.Index(digits[start:], key)
		f, p, _ := pi.Search(start, key)
		if f != (want >= 0) || (f && p != start+want) {
			t.Fatalf("Search(%d, %s): %t %d, wanted %d", start, key, f, p, start+want)
		}
		if c := pi.Count(key); c != strings.Count(digits, key) && !overlaps(key) {
			t.Fatalf("Count(%s): %d, wanted %d", key, c, strings.Count(digits, key))
		}
	}
}

// strings.Count skips overlapping matches; the index does not.
func overlaps(key string) bool {
	for s := 1; s < len(key); s++ {
		if key[s:] == key[:len(key)-s] {
			return true
		}
	}
	return false
}

func TestSearchLastDigits(t *testing.T) {
	pi := openPiOrDie(t)
	digits := testDigits(t)
	for _, l := range []int{1, 2, 3, 4, 5, 8} {
		key := string(digits[numTestDigits-l:])
		f, p, _ := pi.Search(numTestDigits-l, key)
		if !f || p != numTestDigits-l {
			t.Fatalf("Search for the last %d digits: %t %d", l, f, p)
		}
	}
}

func TestFromDigits(t *testing.T) {
	ps, err := FromDigits([]byte("14159265358979"))
	if err != nil {
		t.Fatalf("FromDigits: %v", err)
	}
	defer ps.Close()
	if f, p, n := ps.Search(0, "59"); !f || p != 3 || n != 1 {
		t.Fatalf("Search(59): %t %d %d", f, p, n)
	}
	if c := ps.Count("9"); c != 3 {
		t.Fatalf("Count(9): %d", c)
	}
	if _, err := FromDigits([]byte("14a")); err == nil {
		t.Fatalf("FromDigits accepted a letter")
	}
}

func TestNewRejectsMismatch(t *testing.T) {
	if _, err := New([]byte{0x14}, 2, make([]byte, 4)); err == nil {
		t.Fatalf("New accepted a short index")
	}
}

func TestOpenMissing(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatalf("Open of a missing file succeeded")
	}
	base := filepath.Join(t.TempDir(), "short")
	os.WriteFile(base+".4.bin", []byte{0x14}, 0644)
	os.WriteFile(base+".4.idx", make([]byte, 12), 0644)
	if _, err := Open(base); err == nil {
		t.Fatalf("Open with an oversized index succeeded")
	}
}

func BenchmarkPisearch(b *testing.B) {
	pi := openPiOrDie(b)
	for i := 0; i < b.N; i++ {
		n := int(rand.Int31n(maxSearch))
		pi.Search(0, strconv.Itoa(n))
	}
}

func BenchmarkGetDigits(b *testing.B) {
	pi := openPiOrDie(b)

	for i := 0; i < b.N; i++ {
		n := int(rand.Int31n(numTestDigits))
		_ = pi.GetDigits(n, 20)
	}
}
