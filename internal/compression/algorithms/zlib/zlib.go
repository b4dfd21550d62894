// Package zlib wraps DEFLATE streams in the zlib envelope of RFC 1950: a
// two-byte header, the compressed payload and an Adler-32 trailer over the
// uncompressed bytes.
package zlib

import (
	"encoding/binary"

	"github.com/frostdev-ops/Loolib-sub000/internal/compression/algorithms/adler32"
	"github.com/frostdev-ops/Loolib-sub000/internal/compression/algorithms/flate"
	"github.com/frostdev-ops/Loolib-sub000/internal/failure"
)

const (
	headerSize  = 2
	trailerSize = adler32.Size

	methodDeflate = 8
	// maxCINFO is log2 of the 32 KiB window minus 8.
	maxCINFO = 7
	// cmf is method 8 with a 32 KiB window.
	cmf = maxCINFO<<4 | methodDeflate

	flagDict = 0x20
)

// Compress returns data as a complete zlib stream.
func Compress(data []byte, level int) []byte {
	level = flate.NormalizeLevel(level)
	payload := flate.Compress(data, level)

	out := make([]byte, 0, headerSize+len(payload)+trailerSize)
	out = append(out, header(level)...)
	out = append(out, payload...)
	return binary.BigEndian.AppendUint32(out, adler32.Checksum(data))
}

// header builds CMF and FLG for level. FLG carries the FLEVEL hint and the
// FCHECK bits that make the pair a multiple of 31.
func header(level int) []byte {
	var flevel byte
	switch {
	case level <= 1:
		flevel = 0
	case level <= 5:
		flevel = 1
	case level == 6:
		flevel = 2
	default:
		flevel = 3
	}
	flg := flevel << 6
	flg += byte(31 - (uint(cmf)<<8|uint(flg))%31)
	return []byte{cmf, flg}
}

// Decompress validates the zlib envelope, inflates the payload and checks its
// Adler-32. Bytes after the trailer are ignored. When the checksum does not
// match, the inflated bytes are returned along with a ChecksumMismatch error.
func Decompress(data []byte, opts ...flate.Option) ([]byte, error) {
	if err := checkHeader(data); err != nil {
		return nil, err
	}

	out, n, err := flate.DecompressPrefix(data[headerSize:], opts...)
	if err != nil {
		return out, shift(err, headerSize)
	}

	trailerAt := headerSize + n
	if len(data)-trailerAt < trailerSize {
		return out, failure.At(failure.TruncatedStream, trailerAt,
			"adler32 trailer needs %d bytes, %d left", trailerSize, len(data)-trailerAt)
	}
	want := binary.BigEndian.Uint32(data[trailerAt:])
	if got := adler32.Checksum(out); got != want {
		return out, failure.At(failure.ChecksumMismatch, trailerAt,
			"adler32 is %#08x, trailer says %#08x", got, want)
	}
	return out, nil
}

func checkHeader(data []byte) error {
	if len(data) < headerSize {
		return failure.At(failure.InvalidHeader, 0, "need %d header bytes, got %d", headerSize, len(data))
	}
	cmfByte, flg := data[0], data[1]
	switch {
	case (uint(cmfByte)<<8|uint(flg))%31 != 0:
		return failure.At(failure.InvalidHeader, 0, "header check bits are wrong (%#02x %#02x)", cmfByte, flg)
	case cmfByte&0x0f != methodDeflate:
		return failure.At(failure.InvalidHeader, 0, "compression method %d is not deflate", cmfByte&0x0f)
	case cmfByte>>4 > maxCINFO:
		return failure.At(failure.InvalidHeader, 0, "window size exponent %d is too large", cmfByte>>4)
	case flg&flagDict != 0:
		return failure.At(failure.InvalidHeader, 1, "preset dictionaries are not supported")
	}
	return nil
}

// shift rebases the offset of a payload failure onto the whole stream.
func shift(err error, by int) error {
	if fe, ok := err.(*failure.Error); ok && fe.Offset >= 0 {
		shifted := *fe
		shifted.Offset += by
		return &shifted
	}
	return err
}
