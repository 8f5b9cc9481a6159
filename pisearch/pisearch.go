// Copyright 2013 David G. Andersen.  All rights reserved.
// Use of this source code is goverened by a BSD-style
// license that can be found in the Go source code distribution
// LICENSE file.

// Package pisearch provides an interface to read and search
// a BCD-encoded file of the digits of Pi together with a
// suffix array index for those digits.
// It takes as an argument the base name of the Pi files,
// which should be named "basename.4.bin" and "basename.4.idx"
// for the BCD digits and the suffix array index, respectively.
// Both files can be produced with WriteFiles.
//
// Using this code typically operates by calling Open,
// performing a sequence of Search and GetDigits operations,
// and then calling Close.  Positions count from the first
// digit after the decimal point.
package pisearch

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"sort"
	"syscall"

	"go.uber.org/zap"
)

const (
	seqThresh = 4 // Search strings > seqThresh digits long use the index.
)

// Zap logger to use in this package; default is a no-op logger.
var logger = zap.NewNop()

// SetLogger changes the Zap logger used by this package.
func SetLogger(l *zap.Logger) {
	if l != nil {
		logger = l
	}
}

type Pisearch struct {
	piFile    *os.File // nil when built in memory
	piMap     []byte
	numDigits int
	idxFile   *os.File
	idxMap    []byte
}

// Convenience function to help make Open more clear
func openAndMap(name string) (file *os.File, fi os.FileInfo, mapped []byte, err error) {
	if file, err = os.Open(name); err != nil {
		logger.Warn("open failed", zap.String("file", name), zap.Error(err))
		return
	}
	if fi, err = file.Stat(); err != nil {
		file.Close()
		logger.Warn("stat failed", zap.String("file", name), zap.Error(err))
		return
	}
	if fi.Size() == 0 {
		file.Close()
		err = fmt.Errorf("pisearch: %s is empty", name)
		return
	}
	mapped, err = syscall.Mmap(int(file.Fd()), 0, int(fi.Size()),
		syscall.PROT_READ, syscall.MAP_PRIVATE|syscall.MAP_POPULATE)
	if err != nil {
		file.Close()
		logger.Warn("mmap failed", zap.String("file", name), zap.Error(err))
	}
	return
}

func (p *Pisearch) NumDigits() int {
	return p.numDigits
}

// Open returns a pisearch object that references the two files
// name.4.idx and name.4.bin, or error if the files could not
// be opened and memory mapped.  The index holds one entry per
// digit, so its size gives the exact digit count.
func Open(name string) (*Pisearch, error) {
	file, fi, filemap, err := openAndMap(name + ".4.bin")
	if err != nil {
		return nil, err
	}

	idxfile, idxfi, idxmap, err := openAndMap(name + ".4.idx")
	if err != nil {
		syscall.Munmap(filemap)
		file.Close()
		return nil, err
	}

	numdigits := int(idxfi.Size() / 4)
	if numdigits > int(fi.Size()*2) {
		syscall.Munmap(filemap)
		syscall.Munmap(idxmap)
		file.Close()
		idxfile.Close()
		return nil, fmt.Errorf("pisearch: index of %s covers %d digits, file holds %d",
			name, numdigits, fi.Size()*2)
	}

	return &Pisearch{file, filemap, numdigits, idxfile, idxmap}, nil
}

// New returns a searcher over numDigits packed digits and their
// index, both held in memory.
func New(packed []byte, numDigits int, idx []byte) (*Pisearch, error) {
	if numDigits > len(packed)*2 || len(idx) != numDigits*4 {
		return nil, fmt.Errorf("pisearch: %d digits do not match %d packed bytes and %d index bytes",
			numDigits, len(packed), len(idx))
	}
	return &Pisearch{piMap: packed, numDigits: numDigits, idxMap: idx}, nil
}

// Close closes the pisearch object.  Note:  This code is not thread-safe.
// The caller must guarantee that no other threads are accessing the object.
func (p *Pisearch) Close() {
	p.numDigits = 0
	tmp := p.piMap
	p.piMap = nil
	if p.piFile != nil {
		_ = syscall.Munmap(tmp)
		p.piFile.Close()
	}
	tmp = p.idxMap
	p.idxMap = nil
	if p.idxFile != nil {
		_ = syscall.Munmap(tmp)
		p.idxFile.Close()
	}
}

// Return the digit at position p.  Requires that pos be contained
// within the file or may cause a program crash.
func (p *Pisearch) digitAt(pos int) byte {
	b := p.piMap[pos/2]
	if (pos & 0x01) == 1 { // Second digit in a byte
		return b & 0x0f
	}
	return b >> 4
}

// GetDigits returns an ASCII string representation of the digits of
// pi from position start to min(start+length, end of pi file).
func (p *Pisearch) GetDigits(start int, length int) (digits string) {
	if start < 0 || start >= p.numDigits || length <= 0 {
		return ""
	}
	end := start + length
	if end > p.numDigits {
		end = p.numDigits
	}
	outlen := end - start
	res := make([]uint8, outlen)
	for i := 0; i < outlen; i++ {
		res[i] = p.digitAt(start+i) + '0'
	}
	return string(res)
}

func (p *Pisearch) seqsearch3(start int, searchkey []byte) (found bool, position int) {
	maxPos := p.numDigits - len(searchkey)
	doub := (searchkey[0] << 4) | searchkey[1]  // First two digits
	doub2 := (searchkey[1] << 4) | searchkey[2] // Second two digits

	position = start

	if (position & 1) == 0 {
		b := p.piMap[position/2]
		if (b == doub) && p.compare(position, searchkey) == 0 {
			return true, position
		}
		position++
	}

	for ; position <= maxPos; position += 2 {
		b := p.piMap[(position+1)/2]
		if (b == doub2) && p.compare(position, searchkey) == 0 {
			return true, position
		}
		if (b == doub) && p.compare(position+1, searchkey) == 0 {
			return true, position + 1
		}
	}
	// End of Pi
	return false, 0
}

// Only for search keys of length 1 and 2...
func (p *Pisearch) seqsearch1or2(start int, searchkey []byte) (found bool, position int) {
	maxPos := p.numDigits - len(searchkey)
	for position = start; position <= maxPos; position++ {
		if p.digitAt(position) == searchkey[0] {
			if len(searchkey) == 1 || p.digitAt(position+1) == searchkey[1] {
				return true, position
			}
		}
	}
	// End of Pi
	return false, 0
}

/* Returns -1 if pi[start] < searchkey;
 *          0 if equal
 *          1 if >
 * A suffix that runs off the end of pi and matches so far is smaller.
 */
func (p *Pisearch) compare(start int, searchkey []byte) int {
	skl := len(searchkey)
	def := 0
	if (skl + start) > p.numDigits {
		skl = p.numDigits - start
		def = -1
	}
	for i := 0; i < skl; i++ {
		da := p.digitAt(start + i)
		if da < searchkey[i] {
			return -1
		} else if da > searchkey[i] {
			return 1
		}
	}
	return def
}

func (p *Pisearch) idxAt(pos int) int {
	i := pos * 4
	return int(binary.LittleEndian.Uint32(p.idxMap[i : i+4]))
}

func (p *Pisearch) idxrange(searchkey []byte) (start, end int) {
	start = sort.Search(p.numDigits, func(i int) bool {
		return p.compare(p.idxAt(i), searchkey) >= 0
	})
	end = start + sort.Search(p.numDigits-start, func(j int) bool {
		return p.compare(p.idxAt(j+start), searchkey) != 0
	})
	return
}

func (p *Pisearch) countByteKey(searchbytes []byte) int {
	start, end := p.idxrange(searchbytes)
	return end - start
}

// Count returns a count of the number of times the specified
// searchkey is found in the pi file.
func (p *Pisearch) Count(searchkey string) int {
	searchbytes, ok := searchKeyToBytes(searchkey)
	if !ok || len(searchbytes) == 0 {
		return 0
	}
	return p.countByteKey(searchbytes)
}

func (p *Pisearch) idxsearch(start int, searchkey []byte) (found bool, position int, nMatches int) {
	foundstart, foundend := p.idxrange(searchkey)
	nMatches = (foundend - foundstart)

	best := math.MaxInt32

	for i := 0; i < nMatches; i++ {
		if pos := p.idxAt(i + foundstart); pos >= start && pos < best {
			best = pos
		}
	}
	if best != math.MaxInt32 {
		return true, best, nMatches
	}
	return false, 0, 0
}

func searchKeyToBytes(key string) ([]byte, bool) {
	searchbytes := make([]byte, len(key))
	for i, k := range []byte(key) {
		if k < '0' || k > '9' {
			return nil, false
		}
		searchbytes[i] = k - '0'
	}
	return searchbytes, true
}

// Search returns the position at which the first instance of "searchkey"
// occurs after position "start".  Start is a zero-based offset within
// Pi (i.e., to search from the beginning, start should be zero).  If the
// key is not found, or holds anything but digits, returns found=false.
// This function dispatches to sequential and indexed search based upon
// the setting of seqThresh.
// nMatches counts every occurrence in the file, wherever it starts.
func (p *Pisearch) Search(start int, searchkey string) (found bool, position int, nMatches int) {
	querylen := len(searchkey)
	if querylen == 0 || start < 0 || start >= p.numDigits {
		return false, 0, 0
	}
	searchbytes, ok := searchKeyToBytes(searchkey)
	if !ok {
		return false, 0, 0
	}

	if querylen <= seqThresh {
		nMatches = p.countByteKey(searchbytes)
	}

	if querylen <= 2 {
		found, position = p.seqsearch1or2(start, searchbytes)
	} else if querylen <= seqThresh {
		found, position = p.seqsearch3(start, searchbytes)
	} else {
		found, position, nMatches = p.idxsearch(start, searchbytes)
	}
	return
}
