// pigen generates digits of Pi using the binary split Chudnovsky
// algorithm over exact integers (see package chudnovsky).
// For a better explanation of the algorithm,
// see http://www.craig-wood.com/nick/articles/pi-chudnovsky/
//
// By default the digits after the "3." are printed.  With -out the
// digits are packed into basename.4.bin together with the suffix
// array basename.4.idx used by pi and piweb.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dave-andersen/pidigits/chudnovsky"
	"github.com/dave-andersen/pidigits/internal/cliutil"
	"github.com/dave-andersen/pidigits/pisearch"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

var (
	workers   = flag.Int("workers", 0, "goroutines to fork across (0: all CPUs)")
	threshold = flag.Int64("threshold", 64, "term ranges of at most this size are not forked")
	seq       = flag.Bool("seq", false, "evaluate sequentially")
	outBase   = flag.String("out", "", "write basename.4.bin and basename.4.idx instead of printing")
	memLimit  = flag.String("mem", "", "refuse computations needing more than this much memory (e.g. 2GB)")
	timeout   = flag.Duration("timeout", 0, "abandon the computation after this long")
	point     = flag.Bool("point", false, "print the leading \"3.\"")
	verbose   = flag.Bool("v", false, "verbose logging")
)

func main() {
	flag.Parse()
	if flag.NArg() < 1 {
		fmt.Println("usage:  pigen [flags] <digits>")
		flag.PrintDefaults()
		return
	}
	logger := cliutil.MustLogger(*verbose)
	defer logger.Sync()

	n, err := strconv.Atoi(flag.Arg(0))
	if err != nil {
		logger.Fatal("digits must be an integer count", zap.String("arg", flag.Arg(0)))
	}

	cfg := chudnovsky.DefaultConfig()
	if *workers > 0 {
		cfg.Workers = *workers
	}
	cfg.Threshold = *threshold
	cfg.Sequential = *seq
	if *memLimit != "" {
		if cfg.MemoryLimit, err = humanize.ParseBytes(*memLimit); err != nil {
			logger.Fatal("bad -mem", zap.Error(err))
		}
	}
	engine, err := chudnovsky.New(cfg)
	if err != nil {
		logger.Fatal("bad configuration", zap.Error(err))
	}

	ctx := context.Background()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	start := time.Now()
	// We skip the 3...
	pi, err := engine.Compute(ctx, n+1)
	if err != nil {
		logger.Fatal("computation failed", zap.Int("digits", n), zap.Error(err))
	}
	elapsed := time.Since(start)
	pistr := pi.String()
	logger.Debug("computed",
		zap.String("digits", humanize.Comma(int64(n))),
		zap.Duration("elapsed", elapsed),
	)

	if *outBase == "" {
		if *point {
			fmt.Print("3.")
		}
		fmt.Println(pistr[1:])
		return
	}

	sum, err := pisearch.WriteFiles(*outBase, []byte(pistr[1:]))
	if err != nil {
		logger.Fatal("write failed", zap.String("base", *outBase), zap.Error(err))
	}
	packedSize := uint64(len(pistr)) / 2
	fmt.Fprintf(os.Stdout, "%s digits in %v, %s packed, checksum %016x\n",
		humanize.Comma(int64(n)), elapsed.Round(time.Millisecond),
		humanize.Bytes(packedSize), sum)
}
