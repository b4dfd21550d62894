// Package adler32 implements the Adler-32 checksum used by the zlib envelope.
package adler32

import "hash"

const (
	// mod is the largest prime smaller than 65536.
	mod = 65521
	// nmax is the largest n such that 255*n*(n+1)/2 + (n+1)*(mod-1) <= 2^32-1,
	// the number of bytes that can be summed before the sums must be reduced.
	nmax = 5552
)

// Size is the size of an Adler-32 checksum in bytes.
const Size = 4

// Digest is a streaming Adler-32 accumulator. The zero value is not ready for
// use; call New.
type Digest struct {
	a, b uint32
}

var _ hash.Hash32 = (*Digest)(nil)

// New returns a Digest in its initial state (a=1, b=0).
func New() *Digest {
	d := new(Digest)
	d.Reset()
	return d
}

func (d *Digest) Reset() { d.a, d.b = 1, 0 }

func (d *Digest) Size() int { return Size }

func (d *Digest) BlockSize() int { return 4 }

// Write adds p to the running checksum. It never returns an error.
func (d *Digest) Write(p []byte) (int, error) {
	d.a, d.b = update(d.a, d.b, p)
	return len(p), nil
}

func (d *Digest) Sum32() uint32 { return d.b<<16 | d.a }

func (d *Digest) Sum(in []byte) []byte {
	s := d.Sum32()
	return append(in, byte(s>>24), byte(s>>16), byte(s>>8), byte(s))
}

// Checksum returns the Adler-32 checksum of data. The checksum of an empty
// slice is 1.
func Checksum(data []byte) uint32 {
	a, b := update(1, 0, data)
	return b<<16 | a
}

// Update continues a checksum previously returned by Checksum or Sum32 with
// the bytes in p.
func Update(adler uint32, p []byte) uint32 {
	a, b := update(adler&0xffff, adler>>16, p)
	return b<<16 | a
}

func update(a, b uint32, p []byte) (uint32, uint32) {
	for len(p) > 0 {
		var chunk []byte
		if len(p) > nmax {
			chunk, p = p[:nmax], p[nmax:]
		} else {
			chunk, p = p, nil
		}
		for _, x := range chunk {
			a += uint32(x)
			b += a
		}
		a %= mod
		b %= mod
	}
	return a, b
}
