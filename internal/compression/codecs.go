package compression

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/andybalholm/brotli"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"

	"github.com/frostdev-ops/Loolib-sub000/internal/compression/algorithms/flate"
	"github.com/frostdev-ops/Loolib-sub000/internal/compression/algorithms/gzip"
	"github.com/frostdev-ops/Loolib-sub000/internal/compression/algorithms/zlib"
	"github.com/frostdev-ops/Loolib-sub000/internal/failure"
)

// lz4MaxBlockOutput caps the lz4 output buffer when the caller sets no
// limit; lz4 blocks do not record their decompressed size.
const lz4MaxBlockOutput = 128 * 1024 * 1024

type deflateCodec struct{}

func (deflateCodec) Compress(data []byte, level int) ([]byte, error) {
	return flate.Compress(data, level), nil
}

func (deflateCodec) Decompress(data []byte, maxOutput int) ([]byte, error) {
	return flate.Decompress(data, flate.WithMaxOutput(maxOutput))
}

type zlibCodec struct{}

func (zlibCodec) Compress(data []byte, level int) ([]byte, error) {
	return zlib.Compress(data, level), nil
}

func (zlibCodec) Decompress(data []byte, maxOutput int) ([]byte, error) {
	return zlib.Decompress(data, flate.WithMaxOutput(maxOutput))
}

type gzipCodec struct{}

func (gzipCodec) Compress(data []byte, level int) ([]byte, error) {
	return gzip.Compress(data, level), nil
}

func (gzipCodec) Decompress(data []byte, maxOutput int) ([]byte, error) {
	return gzip.Decompress(data, flate.WithMaxOutput(maxOutput))
}

// zstdEncoderPools holds one encoder pool per zstd speed level. EncodeAll is
// stateless, so a pooled encoder can serve any call.
var zstdEncoderPools [zstd.SpeedBestCompression + 1]sync.Pool

func init() {
	for level := zstd.SpeedFastest; level <= zstd.SpeedBestCompression; level++ {
		level := level
		zstdEncoderPools[level].New = func() any {
			encoder, err := zstd.NewWriter(nil,
				zstd.WithEncoderLevel(level),
				zstd.WithEncoderConcurrency(1),
			)
			if err != nil {
				panic(fmt.Sprintf("failed to create zstd encoder for pool: %v", err))
			}
			return encoder
		}
	}
}

var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}
		return decoder
	},
}

type zstdCodec struct{}

func (zstdCodec) Compress(data []byte, level int) ([]byte, error) {
	speed := zstd.SpeedDefault
	if level >= 0 {
		speed = zstd.EncoderLevelFromZstd(level)
	}
	encoder := zstdEncoderPools[speed].Get().(*zstd.Encoder)
	defer zstdEncoderPools[speed].Put(encoder)

	return encoder.EncodeAll(data, nil), nil
}

func (zstdCodec) Decompress(data []byte, maxOutput int) ([]byte, error) {
	// EncodeAll writes no frame at all for empty input.
	if len(data) == 0 {
		return nil, nil
	}
	decoder := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(decoder)

	if err := decoder.Reset(bytes.NewReader(data)); err != nil {
		return nil, errors.Wrap(err, "zstd")
	}
	return readLimited(decoder, maxOutput)
}

type s2Codec struct{}

func (s2Codec) Compress(data []byte, level int) ([]byte, error) {
	switch {
	case level == flate.BestCompression:
		return s2.EncodeBest(nil, data), nil
	case level >= 6:
		return s2.EncodeBetter(nil, data), nil
	default:
		return s2.Encode(nil, data), nil
	}
}

func (s2Codec) Decompress(data []byte, maxOutput int) ([]byte, error) {
	n, err := s2.DecodedLen(data)
	if err != nil {
		return nil, errors.Wrap(err, "s2")
	}
	if err := checkDeclaredSize(n, maxOutput); err != nil {
		return nil, err
	}
	out, err := s2.Decode(nil, data)
	if err != nil {
		return nil, errors.Wrap(err, "s2")
	}
	return out, nil
}

type snappyCodec struct{}

func (snappyCodec) Compress(data []byte, _ int) ([]byte, error) {
	return snappy.Encode(nil, data), nil
}

func (snappyCodec) Decompress(data []byte, maxOutput int) ([]byte, error) {
	n, err := snappy.DecodedLen(data)
	if err != nil {
		return nil, errors.Wrap(err, "snappy")
	}
	if err := checkDeclaredSize(n, maxOutput); err != nil {
		return nil, err
	}
	out, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, errors.Wrap(err, "snappy")
	}
	return out, nil
}

var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

var lz4Levels = [...]lz4.CompressionLevel{
	lz4.Fast,
	lz4.Level1, lz4.Level2, lz4.Level3, lz4.Level4, lz4.Level5,
	lz4.Level6, lz4.Level7, lz4.Level8, lz4.Level9,
}

// lz4Codec stores bare lz4 blocks. Levels 2-9 use the high-compression
// compressor; everything else uses the fast one.
type lz4Codec struct{}

func (lz4Codec) Compress(data []byte, level int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	var n int
	var err error
	if level >= 2 {
		hc := lz4.CompressorHC{Level: lz4Levels[min(level, len(lz4Levels)-1)]}
		n, err = hc.CompressBlock(data, dst)
	} else {
		lc := lz4CompressorPool.Get().(*lz4.Compressor)
		n, err = lc.CompressBlock(data, dst)
		lz4CompressorPool.Put(lc)
	}
	if err != nil {
		return nil, errors.Wrap(err, "lz4")
	}
	return dst[:n], nil
}

// Decompress grows the output buffer until the block fits, starting at four
// times the input and stopping at maxOutput.
func (lz4Codec) Decompress(data []byte, maxOutput int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	limit := maxOutput
	if limit <= 0 {
		limit = lz4MaxBlockOutput
	}

	bufSize := min(len(data)*4, limit)
	for {
		buf := make([]byte, bufSize)
		n, err := lz4.UncompressBlock(data, buf)
		if err == nil {
			return buf[:n], nil
		}
		if !errors.Is(err, lz4.ErrInvalidSourceShortBuffer) {
			return nil, errors.Wrap(err, "lz4")
		}
		if bufSize >= limit {
			return nil, failure.New(failure.OutputLimitExceeded, "lz4 block does not fit in %d bytes", limit)
		}
		bufSize = min(bufSize*2, limit)
	}
}

type brotliCodec struct{}

func (brotliCodec) Compress(data []byte, level int) ([]byte, error) {
	if level < 0 {
		level = brotli.DefaultCompression
	}
	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, level)
	if _, err := w.Write(data); err != nil {
		return nil, errors.Wrap(err, "brotli")
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, "brotli")
	}
	return buf.Bytes(), nil
}

func (brotliCodec) Decompress(data []byte, maxOutput int) ([]byte, error) {
	return readLimited(brotli.NewReader(bytes.NewReader(data)), maxOutput)
}

// readLimited drains r, failing with OutputLimitExceeded as soon as more than
// maxOutput bytes come out.
func readLimited(r io.Reader, maxOutput int) ([]byte, error) {
	if maxOutput <= 0 {
		out, err := io.ReadAll(r)
		return out, errors.Wrap(err, "read")
	}
	out, err := io.ReadAll(io.LimitReader(r, int64(maxOutput)+1))
	if err != nil {
		return nil, errors.Wrap(err, "read")
	}
	if len(out) > maxOutput {
		return nil, failure.New(failure.OutputLimitExceeded, "output exceeds %d bytes", maxOutput)
	}
	return out, nil
}

func checkDeclaredSize(n, maxOutput int) error {
	if maxOutput > 0 && n > maxOutput {
		return failure.New(failure.OutputLimitExceeded, "declared size %d exceeds %d bytes", n, maxOutput)
	}
	return nil
}
