// Package gzip wraps DEFLATE streams in the gzip member format of RFC 1952.
package gzip

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/frostdev-ops/Loolib-sub000/internal/compression/algorithms/flate"
)

const (
	headerSize  = 10
	trailerSize = 8

	id1           = 0x1f
	id2           = 0x8b
	methodDeflate = 0x08

	flagHCRC     = 1 << 1
	flagExtra    = 1 << 2
	flagName     = 1 << 3
	flagComment  = 1 << 4
	flagReserved = 0xe0

	xflBest    = 2
	xflFastest = 4
	osUnknown  = 0xff
)

// Compress returns data as a single gzip member with no optional header
// fields and a zero modification time.
func Compress(data []byte, level int) []byte {
	level = flate.NormalizeLevel(level)
	payload := flate.Compress(data, level)

	var xfl byte
	switch level {
	case flate.BestCompression:
		xfl = xflBest
	case flate.BestSpeed:
		xfl = xflFastest
	}
	out := make([]byte, 0, headerSize+len(payload)+trailerSize)
	out = append(out,
		id1, id2, // ID1, ID2
		methodDeflate,
		0x00,       // FLG
		0, 0, 0, 0, // MTIME
		xfl,
		osUnknown,
	)
	out = append(out, payload...)
	out = binary.LittleEndian.AppendUint32(out, crc32.ChecksumIEEE(data))
	return binary.LittleEndian.AppendUint32(out, uint32(len(data)))
}
