// Package compression is the registry the API and CLI go through. It maps an
// algorithm name to a codec, applies the optional transport encoding and
// reports statistics about each call.
package compression

import (
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/frostdev-ops/Loolib-sub000/internal/compression/algorithms/flate"
	"github.com/frostdev-ops/Loolib-sub000/internal/transport"
)

const (
	EncodingNone    = "none"
	EncodingChannel = "channel"
	EncodingPrint   = "print"

	DefaultAlgorithm = "zlib"
	DefaultLevel     = flate.DefaultCompression
)

var (
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")
	ErrUnsupportedEncoding  = errors.New("unsupported encoding")
)

// Options selects the codec and transport encoding of a call.
type Options struct {
	Algorithm string
	// Level is 0-9; negative selects the codec's default.
	Level int
	// Encoding is one of the Encoding* constants; empty means none.
	Encoding string
	// MaxOutput bounds the decompressed size; 0 means unlimited.
	MaxOutput int
}

// Stats contains compression statistics
type Stats struct {
	OriginalSize     int
	ProcessedSize    int
	CompressionRatio float64
	Algorithm        string
	Encoding         string
	// Fingerprint is the xxhash64 of the uncompressed bytes.
	Fingerprint uint64
}

// Codec is implemented by every registered algorithm.
type Codec interface {
	Compress(data []byte, level int) ([]byte, error)
	// Decompress must fail with failure.OutputLimitExceeded rather than
	// produce more than maxOutput bytes when maxOutput > 0.
	Decompress(data []byte, maxOutput int) ([]byte, error)
}

// factoryMap maps algorithm names to their codecs
var factoryMap = map[string]Codec{
	"deflate": deflateCodec{},
	"zlib":    zlibCodec{},
	"gzip":    gzipCodec{},
	"zstd":    zstdCodec{},
	"s2":      s2Codec{},
	"snappy":  snappyCodec{},
	"lz4":     lz4Codec{},
	"brotli":  brotliCodec{},
}

var validEncodings = map[string]struct{}{
	"":              {},
	EncodingNone:    {},
	EncodingChannel: {},
	EncodingPrint:   {},
}

var extensions = map[string]string{
	"deflate": "deflate",
	"zlib":    "zz",
	"gzip":    "gz",
	"zstd":    "zst",
	"s2":      "s2",
	"snappy":  "snappy",
	"lz4":     "lz4",
	"brotli":  "br",
}

var log = logrus.WithField("pkg", "compression")

// IsValidAlgorithm checks if the provided algorithm is supported
func IsValidAlgorithm(algorithm string) bool {
	_, exists := factoryMap[algorithm]
	return exists
}

// IsValidEncoding checks if the provided transport encoding is supported
func IsValidEncoding(encoding string) bool {
	_, exists := validEncodings[encoding]
	return exists
}

// GetSupportedAlgorithms returns the registered algorithm names, sorted.
func GetSupportedAlgorithms() []string {
	names := make([]string, 0, len(factoryMap))
	for name := range factoryMap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetSupportedEncodings returns the transport encodings in display order.
func GetSupportedEncodings() []string {
	return []string{EncodingNone, EncodingChannel, EncodingPrint}
}

// Extension returns the conventional file extension, without the dot, for
// output of algorithm under encoding.
func Extension(algorithm, encoding string) string {
	ext, exists := extensions[algorithm]
	if !exists {
		ext = "compressed"
	}
	if encoding == EncodingPrint {
		ext += ".b64"
	}
	return ext
}

// Fingerprint returns the xxhash64 of data.
func Fingerprint(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Compress compresses data using the specified algorithm and then applies the
// transport encoding.
func Compress(data []byte, options Options) ([]byte, *Stats, error) {
	codec, err := lookup(options)
	if err != nil {
		return nil, nil, err
	}

	compressed, err := codec.Compress(data, options.Level)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "%s compression failed", options.Algorithm)
	}
	encoded := applyEncoding(compressed, options.Encoding)

	stats := newStats(options, len(data), len(encoded), data)
	if len(data) > 0 {
		stats.CompressionRatio = float64(len(encoded)) / float64(len(data)) * 100
	}

	log.WithFields(logrus.Fields{
		"algorithm": options.Algorithm,
		"encoding":  stats.Encoding,
		"in":        len(data),
		"out":       len(encoded),
	}).Debug("compressed")

	return encoded, stats, nil
}

// Decompress removes the transport encoding and decompresses data using the
// specified algorithm. Engine failures keep their failure.Kind reachable
// through errors.As; the returned bytes are nil on any error.
func Decompress(data []byte, options Options) ([]byte, *Stats, error) {
	codec, err := lookup(options)
	if err != nil {
		return nil, nil, err
	}

	compressed, err := removeEncoding(data, options.Encoding)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "%s decoding failed", encodingName(options.Encoding))
	}

	decompressed, err := codec.Decompress(compressed, options.MaxOutput)
	if err != nil {
		log.WithFields(logrus.Fields{
			"algorithm": options.Algorithm,
			"in":        len(data),
		}).WithError(err).Debug("decompression rejected input")
		return nil, nil, errors.Wrapf(err, "%s decompression failed", options.Algorithm)
	}

	stats := newStats(options, len(data), len(decompressed), decompressed)
	if len(decompressed) > 0 {
		stats.CompressionRatio = float64(len(data)) / float64(len(decompressed)) * 100
	}

	log.WithFields(logrus.Fields{
		"algorithm": options.Algorithm,
		"encoding":  stats.Encoding,
		"in":        len(data),
		"out":       len(decompressed),
	}).Debug("decompressed")

	return decompressed, stats, nil
}

func lookup(options Options) (Codec, error) {
	codec, ok := factoryMap[options.Algorithm]
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedAlgorithm, "%q", options.Algorithm)
	}
	if !IsValidEncoding(options.Encoding) {
		return nil, errors.Wrapf(ErrUnsupportedEncoding, "%q", options.Encoding)
	}
	return codec, nil
}

func newStats(options Options, originalSize, processedSize int, plain []byte) *Stats {
	return &Stats{
		OriginalSize:  originalSize,
		ProcessedSize: processedSize,
		Algorithm:     options.Algorithm,
		Encoding:      encodingName(options.Encoding),
		Fingerprint:   Fingerprint(plain),
	}
}

func encodingName(encoding string) string {
	if encoding == "" {
		return EncodingNone
	}
	return encoding
}

func applyEncoding(data []byte, encoding string) []byte {
	switch encoding {
	case EncodingChannel:
		return transport.EncodeForChannel(data)
	case EncodingPrint:
		return []byte(transport.EncodeForPrint(data))
	default:
		return data
	}
}

func removeEncoding(data []byte, encoding string) ([]byte, error) {
	switch encoding {
	case EncodingChannel:
		return transport.DecodeForChannel(data)
	case EncodingPrint:
		return transport.DecodeForPrint(string(data))
	default:
		return data, nil
	}
}
