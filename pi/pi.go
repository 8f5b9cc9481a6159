package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/dave-andersen/pidigits/internal/cliutil"
	"github.com/dave-andersen/pidigits/pipack"
	"github.com/dave-andersen/pidigits/pisearch"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

const (
	PIFILE_DEFAULT = "pi1m"
)

var (
	piFile  = flag.String("pifile", PIFILE_DEFAULT, "what pi base file to use")
	verbose = flag.Bool("v", false, "verbose logging")
	logger  *zap.Logger
)

func main() {
	flag.Parse()
	if flag.NArg() < 1 {
		fmt.Println("use:  pi <search|count|digits|checksum> [command args]")
		return
	}
	logger = cliutil.MustLogger(*verbose)
	defer logger.Sync()

	p, err := pisearch.Open(*piFile)
	if err != nil {
		logger.Fatal("Could not open", zap.String("pifile", *piFile), zap.Error(err))
	}
	defer p.Close()

	switch flag.Arg(0) {
	case "search":
		do_search(p)
	case "count":
		do_count(p)
	case "digits":
		do_digits(p)
	case "checksum":
		do_checksum()
	default:
		logger.Fatal("unknown command", zap.String("command", flag.Arg(0)))
	}
}

func intArg(i int, def int) int {
	if flag.NArg() <= i {
		return def
	}
	n, err := strconv.Atoi(flag.Arg(i))
	if err != nil {
		logger.Fatal("not a number", zap.String("arg", flag.Arg(i)))
	}
	return n
}

func do_search(p *pisearch.Pisearch) {
	if flag.NArg() < 2 {
		logger.Fatal("use: pi search <string> [startpos]")
	}
	searchstr := flag.Arg(1)
	startpos := intArg(2, 0)
	found, pos, nMatches := p.Search(startpos, searchstr)
	fmt.Println("Found:  ", found)
	fmt.Println("Pos:    ", humanize.Comma(int64(pos)))
	fmt.Println("nMatch: ", nMatches)
}

func do_count(p *pisearch.Pisearch) {
	if flag.NArg() < 2 {
		logger.Fatal("use: pi count <string>")
	}
	searchstr := flag.Arg(1)
	fmt.Println(p.Count(searchstr))
}

func do_digits(p *pisearch.Pisearch) {
	if flag.NArg() < 3 {
		logger.Fatal("use: pi digits <start> <count>")
	}
	fmt.Println(p.GetDigits(intArg(1, 0), intArg(2, 0)))
}

func do_checksum() {
	b, err := os.ReadFile(*piFile + ".4.bin")
	if err != nil {
		logger.Fatal("read failed", zap.Error(err))
	}
	fmt.Printf("%016x\n", pipack.Checksum(b))
}
