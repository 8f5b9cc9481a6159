package main

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dave-andersen/pidigits/chudnovsky"
	"github.com/dave-andersen/pidigits/pisearch"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestServer(t *testing.T) (*httptest.Server, *observer.ObservedLogs) {
	engine, err := chudnovsky.New(chudnovsky.DefaultConfig())
	if err != nil {
		t.Fatalf("chudnovsky.New: %v", err)
	}
	pi, err := engine.Compute(context.Background(), 2001)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	searcher, err := pisearch.FromDigits([]byte(pi.String()[1:]))
	if err != nil {
		t.Fatalf("FromDigits: %v", err)
	}
	core, logs := observer.New(zap.InfoLevel)
	ps := &Piserver{
		searcher:  searcher,
		engine:    engine,
		maxDigits: 5000,
		timeout:   10 * time.Second,
		reqlog:    zap.New(core),
	}
	srv := httptest.NewServer(ps.Handler([]string{"http://example.com"}))
	t.Cleanup(srv.Close)
	return srv, logs
}

func getJSON(t *testing.T, url string) map[string]interface{} {
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("GET %s: bad JSON: %v", url, err)
	}
	return out
}

func TestServeQuery(t *testing.T) {
	srv, logs := newTestServer(t)
	out := getJSON(t, srv.URL+"/piquery?q=415&q=8566&q=00000000&qs=3")
	if out["status"] != "OK" {
		t.Fatalf("status %v", out["status"])
	}
	r := out["r"].([]interface{})
	if len(r) != 3 {
		t.Fatalf("%d results", len(r))
	}
	first := r[0].(map[string]interface{})
	if first["status"] != "found" || first["p"].(float64) != 392 {
		t.Fatalf("415 from 3: %v", first)
	}
	second := r[1].(map[string]interface{})
	if second["p"].(float64) != 255 || second["db"] != "78316527120190914564" {
		t.Fatalf("8566: %v", second)
	}
	if r[2].(map[string]interface{})["status"] != "notfound" {
		t.Fatalf("00000000 found in 2000 digits")
	}
	if logs.FilterField(zap.String("path", "/piquery")).Len() != 1 {
		t.Fatalf("request not logged")
	}
}

func TestServeDigits(t *testing.T) {
	srv, _ := newTestServer(t)
	out := getJSON(t, srv.URL+"/pidigits?start=0&count=10")
	if out["status"] != STATUS_SUCCESS || out["digits"] != "1415926535" {
		t.Fatalf("pidigits: %v", out)
	}
	out = getJSON(t, srv.URL+"/pidigits?start=x&count=10")
	if out["status"] != STATUS_FAILED {
		t.Fatalf("bad start accepted: %v", out)
	}
}

func TestServeCompute(t *testing.T) {
	srv, _ := newTestServer(t)
	out := getJSON(t, srv.URL+"/picompute?digits=20")
	if out["status"] != STATUS_SUCCESS || out["digits"] != "31415926535897932384" {
		t.Fatalf("picompute: %v", out)
	}
	if c, _ := out["checksum"].(string); len(c) != 16 {
		t.Fatalf("checksum: %v", out["checksum"])
	}
	// Served from the cache of the longer result.
	out = getJSON(t, srv.URL+"/picompute?digits=10")
	if out["digits"] != "3141592653" {
		t.Fatalf("cached picompute: %v", out)
	}
	for _, q := range []string{"0", "-5", "abc", "5001"} {
		if out := getJSON(t, srv.URL+"/picompute?digits="+q); out["status"] != STATUS_FAILED {
			t.Fatalf("picompute?digits=%s: %v", q, out)
		}
	}
}

func TestServeComputeETag(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/picompute?digits=25")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	want := `"` + out["checksum"].(string) + `"`
	if got := resp.Header.Get("ETag"); got != want {
		t.Fatalf("ETag %q, wanted %q", got, want)
	}
}

func TestServeMonteCarlo(t *testing.T) {
	srv, _ := newTestServer(t)
	out := getJSON(t, srv.URL+"/pimc?workers=2&samples=1000&seed=7")
	if out["status"] != STATUS_SUCCESS || out["inside"].(float64)+out["outside"].(float64) != 2000 {
		t.Fatalf("pimc: %v", out)
	}
	if out := getJSON(t, srv.URL+"/pimc?workers=0&samples=10"); out["status"] != STATUS_FAILED {
		t.Fatalf("pimc with no workers: %v", out)
	}
	if out := getJSON(t, srv.URL+"/pimc?workers=1&samples=10&seed=x7"); out["status"] != STATUS_FAILED || out["error"] != "Bad seed" {
		t.Fatalf("pimc with a bad seed: %v", out)
	}
	if out := getJSON(t, srv.URL+"/pimc?workers=1&samples=10"); out["status"] != STATUS_SUCCESS {
		t.Fatalf("pimc without a seed: %v", out)
	}
}

func TestGzipAndCORS(t *testing.T) {
	srv, _ := newTestServer(t)
	req, _ := http.NewRequest("GET", srv.URL+"/picompute?digits=3000", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("Origin", "http://example.com")
	resp, err := http.DefaultTransport.RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip: %v", err)
	}
	defer resp.Body.Close()
	if resp.Header.Get("Content-Encoding") != "gzip" {
		t.Fatalf("response not gzipped")
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "http://example.com" {
		t.Fatalf("CORS header missing")
	}
	zr, err := gzip.NewReader(resp.Body)
	if err != nil {
		t.Fatalf("gzip: %v", err)
	}
	b, _ := io.ReadAll(zr)
	if !strings.Contains(string(b), `"digits":"31415926535897932384`) {
		t.Fatalf("unexpected body %.80s", b)
	}
}

func TestMetrics(t *testing.T) {
	srv, _ := newTestServer(t)
	getJSON(t, srv.URL+"/picompute?digits=30")
	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(b), "pidigits_compute_total") {
		t.Fatalf("compute metrics not exported")
	}
}
