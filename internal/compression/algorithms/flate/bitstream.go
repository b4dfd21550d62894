package flate

import (
	"github.com/frostdev-ops/Loolib-sub000/internal/failure"
)

// bitBuffer holds bits that have been written but not yet emitted as whole
// bytes. Bits are packed LSB-first.
type bitBuffer struct {
	bitsHolder uint64
	bitsCount  uint
}

// BitWriter packs values into bytes least-significant bit first.
type BitWriter struct {
	bitBuffer
	output  []byte
	written int
}

// NewBitWriter returns a BitWriter whose output buffer starts with room for
// sizeHint bytes.
func NewBitWriter(sizeHint int) *BitWriter {
	return &BitWriter{output: make([]byte, 0, sizeHint)}
}

// WriteBits appends the low nbits bits of value, nbits <= 32.
func (bw *BitWriter) WriteBits(value uint32, nbits uint) {
	if nbits == 0 {
		return
	}
	bb := &bw.bitBuffer
	bb.bitsHolder |= uint64(value&(1<<nbits-1)) << bb.bitsCount
	bb.bitsCount += nbits
	bw.written += int(nbits)
	for bb.bitsCount >= 8 {
		bw.output = append(bw.output, byte(bb.bitsHolder))
		bb.bitsHolder >>= 8
		bb.bitsCount -= 8
	}
}

// WriteBytes appends p verbatim. The stream must be byte aligned.
func (bw *BitWriter) WriteBytes(p []byte) {
	if bw.bitsCount != 0 {
		panic("flate: WriteBytes on an unaligned bit stream")
	}
	bw.output = append(bw.output, p...)
	bw.written += 8 * len(p)
}

// Flush pads the pending partial byte with zero bits and emits it.
func (bw *BitWriter) Flush() {
	if bw.bitsCount > 0 {
		bw.WriteBits(0, 8-bw.bitsCount)
	}
}

// BitCount reports the number of bits written so far, padding included.
func (bw *BitWriter) BitCount() int {
	return bw.written
}

// Bytes returns the bytes emitted so far. Call Flush first to include a
// trailing partial byte.
func (bw *BitWriter) Bytes() []byte {
	return bw.output
}

// BitReader reads bits least-significant bit first from a byte slice.
type BitReader struct {
	input  []byte
	pos    int  // index of the byte holding the next bit
	bitPos uint // next bit within input[pos], 0-7
}

// NewBitReader returns a BitReader positioned at the first bit of data.
func NewBitReader(data []byte) *BitReader {
	return &BitReader{input: data}
}

// RemainingBits reports how many bits are left to read.
func (br *BitReader) RemainingBits() int {
	return 8*(len(br.input)-br.pos) - int(br.bitPos)
}

// ReadBits returns the next nbits bits, nbits <= 32. When fewer remain it
// fails with TruncatedStream and consumes nothing.
func (br *BitReader) ReadBits(nbits uint) (uint32, error) {
	if nbits > 32 {
		return 0, failure.At(failure.KindUnknown, br.pos, "cannot read %d bits at once", nbits)
	}
	if br.RemainingBits() < int(nbits) {
		return 0, failure.At(failure.TruncatedStream, br.pos, "need %d bits, %d left", nbits, br.RemainingBits())
	}
	var output uint32
	for read := uint(0); read < nbits; {
		take := min(8-br.bitPos, nbits-read)
		chunk := uint32(br.input[br.pos]>>br.bitPos) & (1<<take - 1)
		output |= chunk << read
		read += take
		br.bitPos += take
		if br.bitPos == 8 {
			br.bitPos = 0
			br.pos++
		}
	}
	return output, nil
}

// AlignToByte skips the unread bits of a partially consumed byte.
func (br *BitReader) AlignToByte() {
	if br.bitPos != 0 {
		br.bitPos = 0
		br.pos++
	}
}

// ReadAlignedBytes returns the next n whole bytes. The reader must be byte
// aligned. The returned slice aliases the input.
func (br *BitReader) ReadAlignedBytes(n int) ([]byte, error) {
	if br.bitPos != 0 {
		return nil, failure.At(failure.KindUnknown, br.pos, "byte read on an unaligned bit stream")
	}
	if len(br.input)-br.pos < n {
		return nil, failure.At(failure.TruncatedStream, br.pos, "need %d bytes, %d left", n, len(br.input)-br.pos)
	}
	p := br.input[br.pos : br.pos+n]
	br.pos += n
	return p, nil
}

// Offset reports the number of input bytes touched so far; a partially read
// byte counts as consumed.
func (br *BitReader) Offset() int {
	if br.bitPos != 0 {
		return br.pos + 1
	}
	return br.pos
}
