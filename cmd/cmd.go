/*
This program converts between 8 bit packed binary-coded decimal
format and ASCII representations of numbers, reading stdin and
writing stdout.  Within each group of two digits stored in a single
byte, the leftmost is stored in the higher-order bits of the byte.

By default it operates in pack mode.
*/
package main

import (
	"flag"
	"os"

	"github.com/dave-andersen/pidigits/internal/cliutil"
	"github.com/dave-andersen/pidigits/pipack"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

var (
	doUnpack = flag.Bool("unpack", false, "unpack binary pi (default: pack into binary)")
	verbose  = flag.Bool("v", false, "verbose logging")
)

func main() {
	flag.Parse()
	logger := cliutil.MustLogger(*verbose)
	defer logger.Sync()

	var (
		n   int
		err error
	)
	if *doUnpack {
		n, err = pipack.UnpackReader(os.Stdout, os.Stdin)
	} else {
		n, err = pipack.PackReader(os.Stdout, os.Stdin)
	}
	if err != nil {
		logger.Fatal("conversion failed", zap.Int("digits", n), zap.Error(err))
	}
	logger.Debug("converted", zap.String("digits", humanize.Comma(int64(n))))
}
