package gzip

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"

	"github.com/frostdev-ops/Loolib-sub000/internal/compression/algorithms/flate"
	"github.com/frostdev-ops/Loolib-sub000/internal/failure"
)

// Decompress inflates the first gzip member of data and checks its CRC-32
// and ISIZE. Optional header fields are skipped; the header CRC, when
// present, is verified. Bytes after the first member are ignored.
func Decompress(data []byte, opts ...flate.Option) ([]byte, error) {
	payloadAt, err := skipHeader(data)
	if err != nil {
		return nil, err
	}

	out, n, err := flate.DecompressPrefix(data[payloadAt:], opts...)
	if err != nil {
		if fe, ok := err.(*failure.Error); ok && fe.Offset >= 0 {
			shifted := *fe
			shifted.Offset += payloadAt
			err = &shifted
		}
		return out, err
	}

	trailerAt := payloadAt + n
	if len(data)-trailerAt < trailerSize {
		return out, failure.At(failure.TruncatedStream, trailerAt,
			"gzip trailer needs %d bytes, %d left", trailerSize, len(data)-trailerAt)
	}
	givenCrc := binary.LittleEndian.Uint32(data[trailerAt : trailerAt+4])
	givenSize := binary.LittleEndian.Uint32(data[trailerAt+4 : trailerAt+8])
	if currentCrc := crc32.ChecksumIEEE(out); givenCrc != currentCrc {
		return out, failure.At(failure.ChecksumMismatch, trailerAt,
			"crc32 is %#08x, trailer says %#08x", currentCrc, givenCrc)
	}
	if currentSize := uint32(len(out)); givenSize != currentSize {
		return out, failure.At(failure.ChecksumMismatch, trailerAt+4,
			"size is %d, trailer says %d", currentSize, givenSize)
	}
	return out, nil
}

// skipHeader validates the fixed header and returns the offset of the
// DEFLATE payload.
func skipHeader(data []byte) (int, error) {
	if len(data) < headerSize {
		return 0, failure.At(failure.InvalidHeader, 0, "need %d header bytes, got %d", headerSize, len(data))
	}
	if data[0] != id1 || data[1] != id2 {
		return 0, failure.At(failure.InvalidHeader, 0, "bad magic %#02x %#02x", data[0], data[1])
	}
	if data[2] != methodDeflate {
		return 0, failure.At(failure.InvalidHeader, 2, "compression method %d is not deflate", data[2])
	}
	flg := data[3]
	if flg&flagReserved != 0 {
		return 0, failure.At(failure.InvalidHeader, 3, "reserved flag bits set (%#02x)", flg)
	}

	pos := headerSize
	if flg&flagExtra != 0 {
		if len(data)-pos < 2 {
			return 0, failure.At(failure.TruncatedStream, pos, "FEXTRA length missing")
		}
		xlen := int(binary.LittleEndian.Uint16(data[pos:]))
		pos += 2
		if len(data)-pos < xlen {
			return 0, failure.At(failure.TruncatedStream, pos, "FEXTRA needs %d bytes, %d left", xlen, len(data)-pos)
		}
		pos += xlen
	}
	for _, flag := range []byte{flagName, flagComment} {
		if flg&flag == 0 {
			continue
		}
		end := bytes.IndexByte(data[pos:], 0)
		if end < 0 {
			return 0, failure.At(failure.TruncatedStream, pos, "unterminated header string")
		}
		pos += end + 1
	}
	if flg&flagHCRC != 0 {
		if len(data)-pos < 2 {
			return 0, failure.At(failure.TruncatedStream, pos, "FHCRC missing")
		}
		want := binary.LittleEndian.Uint16(data[pos:])
		if got := uint16(crc32.ChecksumIEEE(data[:pos])); got != want {
			return 0, failure.At(failure.InvalidHeader, pos, "header crc16 is %#04x, header says %#04x", got, want)
		}
		pos += 2
	}
	return pos, nil
}
