// Copyright 2013 David G. Andersen.  All rights reserved.
// Use of this source code is goverened by a BSD-style
// license that can be found in the Go source code distribution
// LICENSE file.

// Package pipack converts between ASCII digits and 8 bit packed
// binary-coded decimal.  Within each group of two digits stored in a
// single byte, the leftmost is stored in the higher-order bits of the
// byte.  An odd trailing digit leaves the low nibble zero.
package pipack

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
)

// ErrNotDigit is returned for input bytes outside '0'..'9'.
var ErrNotDigit = errors.New("pipack: input is not a decimal digit")

func digit(c byte, pos int) (byte, error) {
	if c < '0' || c > '9' {
		return 0, fmt.Errorf("%w: %q at offset %d", ErrNotDigit, c, pos)
	}
	return c - '0', nil
}

// Pack packs ASCII digits two per byte.
func Pack(digits []byte) ([]byte, error) {
	out := make([]byte, (len(digits)+1)/2)
	for i, c := range digits {
		d, err := digit(c, i)
		if err != nil {
			return nil, err
		}
		if i&1 == 0 {
			out[i/2] = d << 4
		} else {
			out[i/2] |= d
		}
	}
	return out, nil
}

// Unpack returns the first n ASCII digits held in packed.
func Unpack(packed []byte, n int) []byte {
	if limit := len(packed) * 2; n > limit {
		n = limit
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		b := packed[i/2]
		if i&1 == 0 {
			out[i] = (b >> 4) + '0'
		} else {
			out[i] = (b & 0xf) + '0'
		}
	}
	return out
}

// PackReader packs ASCII digits from r onto w and returns the number
// of digits consumed.  A trailing newline is ignored.
func PackReader(w io.Writer, r io.Reader) (int, error) {
	br := bufio.NewReader(r)
	o := bufio.NewWriter(w)
	n := 0
	var b byte
	for {
		c, err := br.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, err
		}
		if c == '\n' || c == '\r' {
			continue
		}
		d, err := digit(c, n)
		if err != nil {
			return n, err
		}
		if n&1 == 0 {
			b = d << 4
		} else {
			o.WriteByte(b | d)
		}
		n++
	}
	if n&1 == 1 {
		o.WriteByte(b)
	}
	return n, o.Flush()
}

// UnpackReader expands packed digits from r onto w, two per byte.
func UnpackReader(w io.Writer, r io.Reader) (int, error) {
	br := bufio.NewReader(r)
	o := bufio.NewWriter(w)
	n := 0
	for {
		c, err := br.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, err
		}
		o.WriteByte((c >> 4) + '0')
		o.WriteByte((c & 0xf) + '0')
		n += 2
	}
	return n, o.Flush()
}

// Checksum identifies a packed digit file.
func Checksum(packed []byte) uint64 {
	return xxhash.Sum64(packed)
}
