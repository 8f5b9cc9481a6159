// Copyright 2013 David G. Andersen.  All rights reserved.
// Use of this source code is goverened by a BSD-style
// license that can be found in the Go source code distribution
// LICENSE file.

// piweb serves searches over a packed digit file and computes digits
// of Pi on demand.  Every response is a JSON object with a "status"
// field; one JSON line per request is appended to the request log.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/dave-andersen/pidigits/chudnovsky"
	"github.com/dave-andersen/pidigits/internal/cliutil"
	"github.com/dave-andersen/pidigits/montecarlo"
	"github.com/dave-andersen/pidigits/pipack"
	"github.com/dave-andersen/pidigits/pisearch"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

const (
	MAX_QUERIES_PER_REQUEST = 20
	MAX_OUTPUT_LEN          = 1000
	MAX_MC_SAMPLES          = 1 << 26
)

var (
	listenPort   = flag.Int("p", 1415, "port to listen on")
	piFile       = flag.String("pifile", "", "pi base file to search (none: search disabled)")
	logFile      = flag.String("log", "", "request log file (JSON lines)")
	origins      = flag.String("origins", "*", "comma separated CORS origins")
	maxDigits    = flag.Int("maxdigits", 100000, "largest /picompute request")
	computeLimit = flag.Duration("timeout", 30*time.Second, "abandon /picompute after this long")
	verbose      = flag.Bool("v", false, "verbose logging")
)

// Return codes for JSON.
const (
	STATUS_FAILED  = "FAILED"
	STATUS_SUCCESS = "success"
)

type SearchResponse struct {
	SearchKey    string `json:"k"`
	Start        int    `json:"st"`
	Status       string `json:"status"`
	Position     int    `json:"p"`
	DigitsBefore string `json:"db"`
	DigitsAfter  string `json:"da"`
	Count        int    `json:"c"`
}

type Piserver struct {
	searcher  *pisearch.Pisearch // nil when no pi file is loaded
	engine    *chudnovsky.Engine
	maxDigits int
	timeout   time.Duration
	reqlog    *zap.Logger

	mu     sync.Mutex
	cached string // longest result computed so far; shorter requests are its prefix
}

type jsonhandler func(*http.Request, map[string]interface{})

// handle adapts a jsonhandler to http, timing and logging the request.
func (ps *Piserver) handle(handler jsonhandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		startTime := time.Now()
		results := make(map[string]interface{})
		if err := req.ParseForm(); err != nil {
			results["status"] = STATUS_FAILED
			results["error"] = "Bad form"
		} else {
			handler(req, results)
		}

		w.Header().Set("Content-Type", "application/json")
		if sum, ok := results["checksum"].(string); ok {
			w.Header().Set("ETag", `"`+sum+`"`)
		}
		elapsed := time.Since(startTime)
		results["et"] = elapsed
		b, err := json.Marshal(results)
		if err != nil {
			io.WriteString(w, "Internal error - can't marshal output\n")
			return
		}
		w.Write(b)
		ps.reqlog.Info("request",
			zap.String("path", req.URL.Path),
			zap.String("query", req.URL.RawQuery),
			zap.Any("status", results["status"]),
			zap.Int64("elapsedNs", elapsed.Nanoseconds()),
		)
	})
}

func fail(results map[string]interface{}, msg string) {
	results["status"] = STATUS_FAILED
	results["error"] = msg
}

func (ps *Piserver) ServeDigits(req *http.Request, results map[string]interface{}) {
	if ps.searcher == nil {
		fail(results, "No pi file loaded")
		return
	}
	start, err := strconv.Atoi(req.FormValue("start"))
	if err != nil || start < 0 {
		fail(results, "Bad start position")
		return
	}
	count, err := strconv.Atoi(req.FormValue("count"))
	if err != nil || count < 0 || count > MAX_OUTPUT_LEN {
		fail(results, "Bad count")
		return
	}
	results["status"] = STATUS_SUCCESS
	results["start"] = start
	results["count"] = count
	results["digits"] = ps.searcher.GetDigits(start, count)
}

func (ps *Piserver) ServeQuery(req *http.Request, results map[string]interface{}) {
	if ps.searcher == nil {
		fail(results, "No pi file loaded")
		return
	}
	q, has_q := req.Form["q"]
	if !has_q {
		fail(results, "Missing query")
		return
	}
	if len(q) > MAX_QUERIES_PER_REQUEST {
		fail(results, "Too many queries")
		return
	}

	start_pos := 0
	if start, has_start := req.Form["qs"]; has_start {
		sp, err := strconv.Atoi(start[0])
		if err != nil || sp < 0 {
			fail(results, "Bad start position")
			return
		}
		start_pos = sp
	}
	resarray := make([]SearchResponse, len(q))
	results["status"] = "OK"
	results["r"] = resarray
	// The start position is 1 based for humans.
	searchFrom := start_pos
	if searchFrom > 0 {
		searchFrom -= 1
	}
	for idx, query := range q {
		r := SearchResponse{SearchKey: query, Start: start_pos}
		found, pos, nMatches := ps.searcher.Search(searchFrom, query)
		if found {
			digitBeforeStart := pos - 20
			if digitBeforeStart < 0 {
				digitBeforeStart = 0
			}
			r.Status = "found"
			r.Position = pos + 1 // 1 based indexing for humans
			r.Count = nMatches
			r.DigitsBefore = ps.searcher.GetDigits(digitBeforeStart, pos-digitBeforeStart)
			r.DigitsAfter = ps.searcher.GetDigits(pos+len(query), 20)
		} else {
			r.Status = "notfound"
		}
		resarray[idx] = r
	}
}

// compute returns the first digits digits of Pi, reusing the cache
// when it already holds that many.
func (ps *Piserver) compute(ctx context.Context, digits int) (string, error) {
	ps.mu.Lock()
	if digits > 0 && len(ps.cached) >= digits {
		s := ps.cached[:digits]
		ps.mu.Unlock()
		return s, nil
	}
	ps.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, ps.timeout)
	defer cancel()
	pi, err := ps.engine.Compute(ctx, digits)
	if err != nil {
		return "", err
	}
	s := pi.String()
	ps.mu.Lock()
	if len(s) > len(ps.cached) {
		ps.cached = s
	}
	ps.mu.Unlock()
	return s, nil
}

func (ps *Piserver) ServeCompute(req *http.Request, results map[string]interface{}) {
	digits, err := strconv.Atoi(req.FormValue("digits"))
	if err != nil {
		fail(results, "Bad digit count")
		return
	}
	if digits < 1 {
		fail(results, "Digit count must be positive")
		return
	}
	if digits > ps.maxDigits {
		fail(results, fmt.Sprintf("At most %d digits", ps.maxDigits))
		return
	}
	s, err := ps.compute(req.Context(), digits)
	switch {
	case errors.Is(err, chudnovsky.ErrResourceLimit):
		fail(results, "Not enough memory")
		return
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		fail(results, "Computation abandoned")
		return
	case err != nil:
		fail(results, "Internal error")
		return
	}
	packed, _ := pipack.Pack([]byte(s))
	results["status"] = STATUS_SUCCESS
	results["count"] = digits
	results["digits"] = s
	results["checksum"] = fmt.Sprintf("%016x", pipack.Checksum(packed))
}

func (ps *Piserver) ServeMonteCarlo(req *http.Request, results map[string]interface{}) {
	workers, err := strconv.Atoi(req.FormValue("workers"))
	if err != nil || workers < 1 {
		fail(results, "Bad worker count")
		return
	}
	samples, err := strconv.ParseUint(req.FormValue("samples"), 10, 64)
	if err != nil || samples > MAX_MC_SAMPLES/uint64(workers) {
		fail(results, "Bad sample count")
		return
	}
	var seed uint64
	if s := req.FormValue("seed"); s != "" {
		if seed, err = strconv.ParseUint(s, 10, 64); err != nil {
			fail(results, "Bad seed")
			return
		}
	}
	c, err := montecarlo.Run(req.Context(), workers, samples, seed)
	if err != nil {
		fail(results, err.Error())
		return
	}
	results["status"] = STATUS_SUCCESS
	results["inside"] = c.Inside
	results["outside"] = c.Outside
	results["pi"] = c.Estimate()
}

// Handler returns the server's routes wrapped in gzip and CORS.
func (ps *Piserver) Handler(allowed []string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/piquery", ps.handle(ps.ServeQuery))
	mux.Handle("/pidigits", gziphandler.GzipHandler(ps.handle(ps.ServeDigits)))
	mux.Handle("/picompute", gziphandler.GzipHandler(ps.handle(ps.ServeCompute)))
	mux.Handle("/pimc", ps.handle(ps.ServeMonteCarlo))
	mux.Handle("/metrics", promhttp.Handler())

	c := cors.New(cors.Options{
		AllowedOrigins: allowed,
	})
	return c.Handler(mux)
}

func main() {
	flag.Parse()
	logger := cliutil.MustLogger(*verbose)
	defer logger.Sync()

	reqlog := logger
	if *logFile != "" {
		var err error
		if reqlog, err = cliutil.NewLogger(*verbose, *logFile); err != nil {
			logger.Fatal("Could not open request log", zap.Error(err))
		}
		defer reqlog.Sync()
	}

	engine, err := chudnovsky.New(chudnovsky.DefaultConfig())
	if err != nil {
		logger.Fatal("bad engine configuration", zap.Error(err))
	}
	server := &Piserver{
		engine:    engine,
		maxDigits: *maxDigits,
		timeout:   *computeLimit,
		reqlog:    reqlog,
	}
	if *piFile != "" {
		if server.searcher, err = pisearch.Open(*piFile); err != nil {
			logger.Fatal("Could not open", zap.String("pifile", *piFile), zap.Error(err))
		}
		defer server.searcher.Close()
	}

	handler := server.Handler(strings.Split(*origins, ","))
	listenPortString := fmt.Sprintf(":%d", *listenPort)
	logger.Info("listening", zap.String("addr", listenPortString))
	if err := http.ListenAndServe(listenPortString, handler); err != nil {
		logger.Fatal("ListenAndServe", zap.Error(err))
	}
}
