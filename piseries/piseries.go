// piseries approximates Pi with classical infinite series and
// products, term by term.
//
//	piseries <name|all> <terms>
package main

import (
	"flag"
	"fmt"
	"strconv"

	"github.com/dave-andersen/pidigits/internal/cliutil"
	"github.com/dave-andersen/pidigits/series"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

var verbose = flag.Bool("v", false, "verbose logging")

func usage() {
	fmt.Println("usage:  piseries <series|all> <terms>")
	fmt.Println("series:")
	for _, s := range series.All {
		fmt.Printf("  %-12s %s\n", s.Name, s.Desc)
	}
}

func main() {
	flag.Parse()
	if flag.NArg() != 2 {
		usage()
		return
	}
	logger := cliutil.MustLogger(*verbose)
	defer logger.Sync()

	terms, err := strconv.ParseInt(flag.Arg(1), 10, 64)
	if err != nil {
		logger.Fatal("terms must be an integer", zap.String("arg", flag.Arg(1)))
	}

	var results []series.Result
	if flag.Arg(0) == "all" {
		results, err = series.EvaluateAll(terms)
	} else {
		var r series.Result
		r, err = series.Evaluate(flag.Arg(0), terms)
		results = append(results, r)
	}
	if err != nil {
		logger.Fatal("evaluation failed", zap.Error(err))
	}

	fmt.Printf("Terms: %s\n", humanize.Comma(terms))
	for _, r := range results {
		fmt.Printf("%s result: %.15f (error %.2e, %v)\n", r.Desc, r.Value, r.Error(), r.Elapsed)
	}
}
