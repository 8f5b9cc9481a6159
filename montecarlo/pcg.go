// Copyright 2013 David G. Andersen.  All rights reserved.
// Use of this source code is goverened by a BSD-style
// license that can be found in the Go source code distribution
// LICENSE file.

package montecarlo

// pcg is a PCG-XSH-RR 64/32 generator.
type pcg struct {
	state uint64
	inc   uint64
}

// mul is the multiplier of the LCG step
const mul = 6364136223846793005

func newPCG(state, stream uint64) pcg {
	inc := stream<<1 | 1
	return pcg{
		state: (inc+state)*mul + inc,
		inc:   inc,
	}
}

func (p *pcg) Uint32() uint32 {
	oldstate := p.state
	p.state = oldstate*mul + p.inc

	xorshifted := uint32(((oldstate >> 18) ^ oldstate) >> 27)
	rot := uint32(oldstate >> 59)
	return (xorshifted >> rot) | (xorshifted << ((-rot) & 31))
}

// Float64 returns a value in [0, 1) built from 53 random bits.
func (p *pcg) Float64() float64 {
	hi := uint64(p.Uint32()) << 21
	lo := uint64(p.Uint32()) >> 11
	return float64(hi|lo) / (1 << 53)
}
