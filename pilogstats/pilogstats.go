// pilogstats summarizes the request log written by piweb -log:
// how long queries take, per endpoint.  Are particular queries
// causing us to slow down?
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/dave-andersen/pidigits/internal/cliutil"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

var (
	logPath = flag.String("log", "pilog", "piweb request log")
	verbose = flag.Bool("v", false, "verbose logging")
)

// {"level":"info","ts":1381102625.01,"msg":"request","path":"/piquery","query":"q=593211","status":"OK","elapsedNs":7014358}

type LogEntry struct {
	Msg       string `json:"msg"`
	Path      string `json:"path"`
	Status    string `json:"status"`
	ElapsedNs int64  `json:"elapsedNs"`
}

type pathStats struct {
	Path    string
	Elapsed []time.Duration // sorted once read completes
	Failed  int
}

func (s *pathStats) quantile(q float64) time.Duration {
	if len(s.Elapsed) == 0 {
		return 0
	}
	return s.Elapsed[int(q*float64(len(s.Elapsed)-1))]
}

// readLog groups request lines by path, skipping anything else.
func readLog(r io.Reader) ([]*pathStats, int, error) {
	byPath := make(map[string]*pathStats)
	bad := 0
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for sc.Scan() {
		var le LogEntry
		if err := json.Unmarshal(sc.Bytes(), &le); err != nil {
			bad++
			continue
		}
		if le.Msg != "request" {
			continue
		}
		s := byPath[le.Path]
		if s == nil {
			s = &pathStats{Path: le.Path}
			byPath[le.Path] = s
		}
		s.Elapsed = append(s.Elapsed, time.Duration(le.ElapsedNs))
		if le.Status == "FAILED" {
			s.Failed++
		}
	}
	if err := sc.Err(); err != nil {
		return nil, bad, err
	}
	out := make([]*pathStats, 0, len(byPath))
	for _, s := range byPath {
		sort.Slice(s.Elapsed, func(i, j int) bool { return s.Elapsed[i] < s.Elapsed[j] })
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, bad, nil
}

func main() {
	flag.Parse()
	logger := cliutil.MustLogger(*verbose)
	defer logger.Sync()

	f, err := os.Open(*logPath)
	if err != nil {
		logger.Fatal("could not open log", zap.String("log", *logPath), zap.Error(err))
	}
	defer f.Close()
	stats, bad, err := readLog(f)
	if err != nil {
		logger.Fatal("read failed", zap.Error(err))
	}
	if bad > 0 {
		logger.Warn("unparseable lines", zap.Int("count", bad))
	}
	fmt.Printf("%-12s %10s %8s %12s %12s %12s\n", "path", "requests", "failed", "p50", "p99", "max")
	for _, s := range stats {
		fmt.Printf("%-12s %10s %8d %12v %12v %12v\n", s.Path,
			humanize.Comma(int64(len(s.Elapsed))), s.Failed,
			s.quantile(0.5), s.quantile(0.99), s.quantile(1))
	}
}
