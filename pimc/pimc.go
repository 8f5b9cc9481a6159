// pimc approximates Pi by Monte Carlo sampling of the unit square.
//
//	pimc <points_per_worker> <workers>
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/dave-andersen/pidigits/internal/cliutil"
	"github.com/dave-andersen/pidigits/montecarlo"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

var (
	seed    = flag.Uint64("seed", 0, "generator seed (0: from the clock)")
	verbose = flag.Bool("v", false, "verbose logging")
)

func main() {
	flag.Parse()
	if flag.NArg() != 2 {
		fmt.Println("usage:  pimc [flags] <points_per_worker> <workers>")
		return
	}
	logger := cliutil.MustLogger(*verbose)
	defer logger.Sync()

	perWorker, err := strconv.ParseUint(flag.Arg(0), 10, 64)
	if err != nil {
		logger.Fatal("points must be a positive integer", zap.String("arg", flag.Arg(0)))
	}
	workers, err := strconv.Atoi(flag.Arg(1))
	if err != nil {
		logger.Fatal("workers must be an integer", zap.String("arg", flag.Arg(1)))
	}
	s := *seed
	if s == 0 {
		s = uint64(time.Now().UnixNano())
	}

	start := time.Now()
	c, err := montecarlo.Run(context.Background(), workers, perWorker, s)
	if err != nil {
		logger.Fatal("sampling failed", zap.Error(err))
	}
	est := c.Estimate()
	fmt.Printf("Points results:\n  %s inside\n  %s outside\n", humanize.Comma(int64(c.Inside)), humanize.Comma(int64(c.Outside)))
	fmt.Printf("Pi approximation: %f (error %.2e)\n", est, math.Abs(est-math.Pi))
	fmt.Printf("Time taken: %v\n", time.Since(start).Round(time.Millisecond))
}
