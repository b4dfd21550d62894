// Package deflate is the programmatic surface of the compression engine:
// raw DEFLATE with stored and fixed-Huffman blocks, the zlib envelope,
// Adler-32, and the two transport encodings for constrained channels.
//
// Decoders never panic on malformed input. They return the bytes decoded
// before the problem together with an error whose Kind says what went wrong:
//
//	out, err := deflate.DecompressZlib(data)
//	if errors.Is(err, deflate.ErrChecksumMismatch) {
//		// out holds the inflated bytes that failed verification
//	}
//
// Every function is safe for concurrent use.
package deflate

import (
	"github.com/frostdev-ops/Loolib-sub000/internal/compression/algorithms/adler32"
	"github.com/frostdev-ops/Loolib-sub000/internal/compression/algorithms/flate"
	"github.com/frostdev-ops/Loolib-sub000/internal/compression/algorithms/zlib"
	"github.com/frostdev-ops/Loolib-sub000/internal/failure"
	"github.com/frostdev-ops/Loolib-sub000/internal/transport"
)

const (
	NoCompression      = flate.NoCompression
	BestSpeed          = flate.BestSpeed
	BestCompression    = flate.BestCompression
	DefaultCompression = flate.DefaultCompression
)

// Kind classifies a decode failure.
type Kind = failure.Kind

// Error is the concrete type of every decode failure.
type Error = failure.Error

const (
	TruncatedStream      = failure.TruncatedStream
	UnsupportedBlockType = failure.UnsupportedBlockType
	InvalidBackReference = failure.InvalidBackReference
	InvalidHeader        = failure.InvalidHeader
	ChecksumMismatch     = failure.ChecksumMismatch
	InvalidEscape        = failure.InvalidEscape
	InvalidBase64        = failure.InvalidBase64
	InvalidSymbol        = failure.InvalidSymbol
	InvalidStoredLength  = failure.InvalidStoredLength
	OutputLimitExceeded  = failure.OutputLimitExceeded
)

// Sentinels for errors.Is; each matches any failure of its kind.
var (
	ErrTruncatedStream      = failure.ErrTruncatedStream
	ErrUnsupportedBlockType = failure.ErrUnsupportedBlockType
	ErrInvalidBackReference = failure.ErrInvalidBackReference
	ErrInvalidHeader        = failure.ErrInvalidHeader
	ErrChecksumMismatch     = failure.ErrChecksumMismatch
	ErrInvalidEscape        = failure.ErrInvalidEscape
	ErrInvalidBase64        = failure.ErrInvalidBase64
	ErrInvalidSymbol        = failure.ErrInvalidSymbol
	ErrInvalidStoredLength  = failure.ErrInvalidStoredLength
	ErrOutputLimitExceeded  = failure.ErrOutputLimitExceeded
)

// Option configures the decoders.
type Option = flate.Option

// WithMaxOutput bounds the decompressed size; exceeding it fails with
// OutputLimitExceeded. n <= 0 means no limit.
func WithMaxOutput(n int) Option {
	return flate.WithMaxOutput(n)
}

// KindOf returns the Kind of a decode failure, or the unknown kind for nil
// and foreign errors.
func KindOf(err error) Kind {
	return failure.KindOf(err)
}

// Compress encodes data as a raw DEFLATE stream. Level 0 stores, 1-9 use
// fixed Huffman codes, and a negative level means 6.
func Compress(data []byte, level int) []byte {
	return flate.Compress(data, level)
}

// Decompress decodes a raw DEFLATE stream.
func Decompress(data []byte, opts ...Option) ([]byte, error) {
	return flate.Decompress(data, opts...)
}

// CompressZlib encodes data as a zlib stream.
func CompressZlib(data []byte, level int) []byte {
	return zlib.Compress(data, level)
}

// DecompressZlib decodes a zlib stream and verifies its Adler-32.
func DecompressZlib(data []byte, opts ...Option) ([]byte, error) {
	return zlib.Decompress(data, opts...)
}

// EncodeForChannel escapes the bytes 0x00, 0x01 and 0xFF.
func EncodeForChannel(data []byte) []byte {
	return transport.EncodeForChannel(data)
}

// DecodeForChannel reverses EncodeForChannel.
func DecodeForChannel(data []byte) ([]byte, error) {
	return transport.DecodeForChannel(data)
}

// EncodeForPrint returns data as padded standard Base64.
func EncodeForPrint(data []byte) string {
	return transport.EncodeForPrint(data)
}

// DecodeForPrint decodes Base64, ignoring embedded whitespace.
func DecodeForPrint(text string) ([]byte, error) {
	return transport.DecodeForPrint(text)
}

// Adler32 returns the Adler-32 checksum of data.
func Adler32(data []byte) uint32 {
	return adler32.Checksum(data)
}
