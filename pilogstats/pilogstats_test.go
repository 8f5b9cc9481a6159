package main

import (
	"strings"
	"testing"
	"time"
)

const sampleLog = `{"level":"info","msg":"listening","addr":":1415"}
{"level":"info","msg":"request","path":"/piquery","status":"OK","elapsedNs":3000}
{"level":"info","msg":"request","path":"/piquery","status":"OK","elapsedNs":1000}
{"level":"info","msg":"request","path":"/picompute","status":"FAILED","elapsedNs":500}
not json
{"level":"info","msg":"request","path":"/piquery","status":"OK","elapsedNs":2000}
`

func TestReadLog(t *testing.T) {
	stats, bad, err := readLog(strings.NewReader(sampleLog))
	if err != nil {
		t.Fatalf("readLog: %v", err)
	}
	if bad != 1 {
		t.Fatalf("bad lines: %d", bad)
	}
	if len(stats) != 2 || stats[0].Path != "/picompute" || stats[1].Path != "/piquery" {
		t.Fatalf("paths: %+v", stats)
	}
	if stats[0].Failed != 1 {
		t.Fatalf("failed count: %d", stats[0].Failed)
	}
	q := stats[1]
	if q.quantile(0) != time.Microsecond || q.quantile(0.5) != 2*time.Microsecond || q.quantile(1) != 3*time.Microsecond {
		t.Fatalf("quantiles: %v", q.Elapsed)
	}
}
