// Copyright 2013 David G. Andersen.  All rights reserved.
// Use of this source code is goverened by a BSD-style
// license that can be found in the Go source code distribution
// LICENSE file.

package pisearch

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/dave-andersen/pidigits/pipack"
	"go.uber.org/zap"
)

// BuildIndex returns the suffix array of the ASCII digits as
// little-endian uint32 positions, sorted by the digits that follow
// each position.
func BuildIndex(digits []byte) ([]byte, error) {
	if uint64(len(digits)) > math.MaxUint32 {
		return nil, fmt.Errorf("pisearch: %d digits do not fit a 32 bit index", len(digits))
	}
	pos := make([]uint32, len(digits))
	for i := range pos {
		pos[i] = uint32(i)
	}
	sort.Slice(pos, func(i, j int) bool {
		return bytes.Compare(digits[pos[i]:], digits[pos[j]:]) < 0
	})
	idx := make([]byte, 4*len(pos))
	for i, p := range pos {
		binary.LittleEndian.PutUint32(idx[4*i:], p)
	}
	return idx, nil
}

// FromDigits packs and indexes ASCII digits into an in-memory searcher.
func FromDigits(digits []byte) (*Pisearch, error) {
	packed, err := pipack.Pack(digits)
	if err != nil {
		return nil, err
	}
	idx, err := BuildIndex(digits)
	if err != nil {
		return nil, err
	}
	return New(packed, len(digits), idx)
}

// WriteFiles writes name.4.bin and name.4.idx for the ASCII digits
// and returns the checksum of the packed file.
func WriteFiles(name string, digits []byte) (uint64, error) {
	packed, err := pipack.Pack(digits)
	if err != nil {
		return 0, err
	}
	idx, err := BuildIndex(digits)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(name+".4.bin", packed, 0644); err != nil {
		return 0, err
	}
	if err := os.WriteFile(name+".4.idx", idx, 0644); err != nil {
		return 0, err
	}
	sum := pipack.Checksum(packed)
	logger.Info("wrote pi files",
		zap.String("base", name),
		zap.Int("digits", len(digits)),
		zap.Uint64("checksum", sum),
	)
	return sum, nil
}
