package flate

import (
	"errors"

	"github.com/frostdev-ops/Loolib-sub000/internal/compression/algorithms/huffman"
	"github.com/frostdev-ops/Loolib-sub000/internal/compression/algorithms/lzss"
	"github.com/frostdev-ops/Loolib-sub000/internal/failure"
)

// Option configures Decompress and DecompressPrefix.
type Option func(*decompressor)

// WithMaxOutput makes decoding fail with OutputLimitExceeded instead of
// producing more than n bytes. n <= 0 means no limit.
func WithMaxOutput(n int) Option {
	return func(d *decompressor) {
		d.maxOutput = n
	}
}

type decompressor struct {
	br        *BitReader
	window    *lzss.Window
	output    []byte
	maxOutput int
}

// Decompress decodes a DEFLATE stream. Bytes after the final block are
// ignored. On failure the bytes decoded before the error are returned along
// with a *failure.Error.
func Decompress(data []byte, opts ...Option) ([]byte, error) {
	out, _, err := DecompressPrefix(data, opts...)
	return out, err
}

// DecompressPrefix is Decompress that also reports how many input bytes the
// stream occupied, counting the padding of its last byte.
func DecompressPrefix(data []byte, opts ...Option) ([]byte, int, error) {
	d := &decompressor{
		br:     NewBitReader(data),
		window: lzss.NewWindow(),
	}
	for _, opt := range opts {
		opt(d)
	}
	sizeHint := 2 * len(data)
	if d.maxOutput > 0 {
		sizeHint = min(sizeHint, d.maxOutput)
	}
	d.output = make([]byte, 0, sizeHint)

	err := d.decompress()
	return d.output, d.br.Offset(), err
}

func (d *decompressor) decompress() error {
	for {
		bfinal, err := d.br.ReadBits(1)
		if err != nil {
			return err
		}
		btype, err := d.br.ReadBits(2)
		if err != nil {
			return err
		}
		switch btype {
		case btypeStored:
			err = d.storedBlock()
		case btypeFixed:
			err = d.fixedBlock()
		case btypeDynamic:
			return failure.At(failure.UnsupportedBlockType, d.br.pos, "dynamic huffman blocks are not supported")
		case btypeReserved:
			return failure.At(failure.UnsupportedBlockType, d.br.pos, "reserved block type %d", btype)
		}
		if err != nil {
			return err
		}
		if bfinal == 1 {
			return nil
		}
	}
}

func (d *decompressor) storedBlock() error {
	d.br.AlignToByte()
	header, err := d.br.ReadAlignedBytes(4)
	if err != nil {
		return err
	}
	length := uint16(header[0]) | uint16(header[1])<<8
	nlength := uint16(header[2]) | uint16(header[3])<<8
	if nlength != ^length {
		return failure.At(failure.InvalidStoredLength, d.br.pos-4, "LEN %#04x does not match NLEN %#04x", length, nlength)
	}
	block, err := d.br.ReadAlignedBytes(int(length))
	if err != nil {
		return err
	}
	if err := d.reserve(len(block)); err != nil {
		return err
	}
	d.output = append(d.output, block...)
	d.window.PutBytes(block)
	return nil
}

func (d *decompressor) fixedBlock() error {
	for {
		symbol, err := d.decodeSymbol(fixedLitLenDecoder)
		if err != nil {
			return err
		}
		switch {
		case symbol < endOfBlock:
			if err := d.reserve(1); err != nil {
				return err
			}
			d.output = append(d.output, byte(symbol))
			d.window.PutByte(byte(symbol))
		case symbol == endOfBlock:
			return nil
		default:
			if err := d.copyMatch(symbol); err != nil {
				return err
			}
		}
	}
}

// copyMatch reads the rest of a length/distance pair whose length symbol has
// already been decoded and appends the referenced bytes.
func (d *decompressor) copyMatch(lengthSymbol int) error {
	start := d.br.pos
	lengthCode, ok := lenAlphabets.Lookup(lengthSymbol)
	if !ok {
		return failure.At(failure.InvalidSymbol, start, "length symbol %d is not assigned", lengthSymbol)
	}
	extra, err := d.br.ReadBits(lengthCode.ExtraBits)
	if err != nil {
		return err
	}
	length := lengthCode.Base + int(extra)

	distSymbol, err := d.decodeSymbol(fixedDistDecoder)
	if err != nil {
		return err
	}
	distCode, ok := distAlphabets.Lookup(distSymbol)
	if !ok {
		return failure.At(failure.InvalidSymbol, start, "distance symbol %d is not assigned", distSymbol)
	}
	extra, err = d.br.ReadBits(distCode.ExtraBits)
	if err != nil {
		return err
	}
	distance := distCode.Base + int(extra)

	if err := d.reserve(length); err != nil {
		return err
	}
	output, ok := d.window.CopyMatch(distance, length, d.output)
	if !ok {
		return failure.At(failure.InvalidBackReference, start,
			"distance %d exceeds the %d bytes decoded so far", distance, d.window.HistSize())
	}
	d.output = output
	return nil
}

func (d *decompressor) decodeSymbol(root *huffman.CanonicalHuffmanNode) (int, error) {
	start := d.br.pos
	symbol, err := root.Decode(d.br)
	if errors.Is(err, huffman.ErrInvalidCode) {
		return 0, failure.At(failure.InvalidSymbol, start, "bit pattern is not a fixed huffman code")
	}
	return symbol, err
}

func (d *decompressor) reserve(n int) error {
	if d.maxOutput > 0 && len(d.output)+n > d.maxOutput {
		return failure.At(failure.OutputLimitExceeded, d.br.pos,
			"output would exceed %d bytes", d.maxOutput)
	}
	return nil
}
