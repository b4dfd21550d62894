package flate

import (
	"bytes"
	"io"
	"math/rand"
	"strings"
	"sync"
	"testing"

	kflate "github.com/klauspost/compress/flate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frostdev-ops/Loolib-sub000/internal/compression/algorithms/huffman"
	"github.com/frostdev-ops/Loolib-sub000/internal/compression/algorithms/lzss"
	"github.com/frostdev-ops/Loolib-sub000/internal/failure"
)

func testInputs() map[string][]byte {
	rng := rand.New(rand.NewSource(42))
	random := make([]byte, 100_000)
	rng.Read(random)

	skewed := make([]byte, 200_000)
	for i := range skewed {
		skewed[i] = "aaaabbc\x00\xff"[rng.Intn(9)]
	}

	return map[string][]byte{
		"empty":        {},
		"single byte":  {0x42},
		"short text":   []byte("Hello, World!"),
		"run":          bytes.Repeat([]byte{'A'}, 1000),
		"long run":     bytes.Repeat([]byte{0}, 300_000),
		"prose":        []byte(strings.Repeat("the quick brown fox jumps over the lazy dog. ", 2000)),
		"random":       random,
		"skewed":       skewed,
		"stored limit": bytes.Repeat([]byte("x"), maxStoredBlockSize),
		"stored over":  bytes.Repeat([]byte("xy"), maxStoredBlockSize),
	}
}

func TestCompress_RoundTripAllLevels(t *testing.T) {
	for name, input := range testInputs() {
		for level := DefaultCompression; level <= BestCompression+1; level++ {
			compressed := Compress(input, level)
			out, err := Decompress(compressed)
			require.NoError(t, err, "%s at level %d", name, level)
			require.True(t, bytes.Equal(input, out), "%s at level %d", name, level)
		}
	}
}

func TestCompress_EmptyInput(t *testing.T) {
	require.Equal(t, []byte{0x01, 0x00, 0x00, 0xff, 0xff}, Compress(nil, NoCompression))
	require.Equal(t, []byte{0x03, 0x00}, Compress(nil, DefaultCompression))
	require.Equal(t, []byte{0x03, 0x00}, Compress([]byte{}, BestCompression))
}

func TestCompress_StoredBlockLayout(t *testing.T) {
	input := bytes.Repeat([]byte{7}, maxStoredBlockSize+10)
	out := Compress(input, NoCompression)

	require.Len(t, out, len(input)+10)
	require.Equal(t, []byte{0x00, 0xff, 0xff, 0x00, 0x00}, out[:5])
	second := out[5+maxStoredBlockSize:]
	require.Equal(t, []byte{0x01, 0x0a, 0x00, 0xf5, 0xff}, second[:5])
}

func TestCompress_RunShrinks(t *testing.T) {
	input := bytes.Repeat([]byte{'A'}, 1000)
	out := Compress(input, DefaultCompression)
	require.Less(t, len(out), len(input))
	require.Less(t, len(out), 20)
}

func TestCompress_FindsLongestMatchPastRepeatedPrefix(t *testing.T) {
	target := []byte("abcdefghijklmnopqrstuvwxyz0123456789")
	var data []byte
	data = append(data, target...)
	data = append(data, bytes.Repeat([]byte("abc#"), 5000)...)
	data = append(data, '!')
	data = append(data, target...)

	m := matcherPool.Get().(*lzss.Matcher)
	m.Reset()
	defer matcherPool.Put(m)

	tokens, next := tokenise(m, data, 0, len(data), nil)
	require.Equal(t, len(data), next)
	require.Equal(t, Token{Kind: MatchToken, Length: len(target), Distance: len(data) - len(target)}, tokens[len(tokens)-1])

	out, err := Decompress(Compress(data, BestCompression))
	require.NoError(t, err)
	require.Equal(t, data, out)
}

func TestCompress_Deterministic(t *testing.T) {
	input := testInputs()["skewed"]
	require.Equal(t, Compress(input, 6), Compress(input, 6))
}

func TestCompress_Concurrent(t *testing.T) {
	inputs := testInputs()
	var wg sync.WaitGroup
	for name, input := range inputs {
		wg.Add(1)
		go func(name string, input []byte) {
			defer wg.Done()
			out, err := Decompress(Compress(input, BestSpeed))
			assert.NoError(t, err, name)
			assert.True(t, bytes.Equal(input, out), name)
		}(name, input)
	}
	wg.Wait()
}

func TestNormalizeLevel(t *testing.T) {
	require.Equal(t, 6, NormalizeLevel(DefaultCompression))
	require.Equal(t, 6, NormalizeLevel(-100))
	require.Equal(t, 0, NormalizeLevel(0))
	require.Equal(t, 4, NormalizeLevel(4))
	require.Equal(t, 9, NormalizeLevel(42))
}

func TestInterop_ReferenceDecoderReadsOurStreams(t *testing.T) {
	for name, input := range testInputs() {
		for _, level := range []int{NoCompression, BestSpeed, BestCompression} {
			r := kflate.NewReader(bytes.NewReader(Compress(input, level)))
			out, err := io.ReadAll(r)
			require.NoError(t, err, "%s at level %d", name, level)
			require.True(t, bytes.Equal(input, out), "%s at level %d", name, level)
			require.NoError(t, r.Close())
		}
	}
}

func TestInterop_WeReadReferenceStoredStreams(t *testing.T) {
	input := testInputs()["prose"]

	var buf bytes.Buffer
	w, err := kflate.NewWriter(&buf, kflate.NoCompression)
	require.NoError(t, err)
	_, err = w.Write(input)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	out, err := Decompress(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, input, out)
}

func TestDecompress_RejectsDynamicAndReservedBlocks(t *testing.T) {
	_, err := Decompress([]byte{0x05, 0x00})
	require.ErrorIs(t, err, failure.ErrUnsupportedBlockType)

	_, err = Decompress([]byte{0x07, 0x00})
	require.ErrorIs(t, err, failure.ErrUnsupportedBlockType)

	// klauspost emits dynamic blocks for compressible input at normal levels.
	var buf bytes.Buffer
	w, err := kflate.NewWriter(&buf, kflate.BestCompression)
	require.NoError(t, err)
	_, err = w.Write(testInputs()["skewed"])
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = Decompress(buf.Bytes())
	require.ErrorIs(t, err, failure.ErrUnsupportedBlockType)
}

func TestDecompress_Truncated(t *testing.T) {
	_, err := Decompress(nil)
	require.ErrorIs(t, err, failure.ErrTruncatedStream)

	for _, level := range []int{NoCompression, DefaultCompression} {
		full := Compress([]byte("Hello, World! Hello, World!"), level)
		for n := 0; n < len(full); n++ {
			_, err := Decompress(full[:n])
			require.ErrorIs(t, err, failure.ErrTruncatedStream, "level %d cut at %d", level, n)
		}
	}
}

func TestDecompress_StoredLengthMismatch(t *testing.T) {
	_, err := Decompress([]byte{0x01, 0x01, 0x00, 0x00, 0x00, 'x'})
	require.ErrorIs(t, err, failure.ErrInvalidStoredLength)
}

func TestDecompress_BackReferenceBeforeStart(t *testing.T) {
	bw := NewBitWriter(8)
	writeFixedBlock(bw, []Token{
		{Kind: LiteralToken, Value: 'a'},
		{Kind: MatchToken, Length: 3, Distance: 2},
	}, true)
	bw.Flush()

	out, err := Decompress(bw.Bytes())
	require.ErrorIs(t, err, failure.ErrInvalidBackReference)
	require.Equal(t, []byte("a"), out)
}

func TestDecompress_UnassignedSymbols(t *testing.T) {
	t.Run("length symbol 286", func(t *testing.T) {
		bw := NewBitWriter(8)
		bw.WriteBits(1, 1)
		bw.WriteBits(btypeFixed, 2)
		code := fixedLitLenCodes[286]
		bw.WriteBits(code.Bits, code.Length)
		bw.Flush()

		_, err := Decompress(bw.Bytes())
		require.ErrorIs(t, err, failure.ErrInvalidSymbol)
	})

	t.Run("distance symbol 30", func(t *testing.T) {
		bw := NewBitWriter(8)
		bw.WriteBits(1, 1)
		bw.WriteBits(btypeFixed, 2)
		code := fixedLitLenCodes['z']
		bw.WriteBits(code.Bits, code.Length)
		code = fixedLitLenCodes[firstLengthSymbol]
		bw.WriteBits(code.Bits, code.Length)
		bw.WriteBits(huffman.Reverse(30, 5), 5)
		bw.Flush()

		_, err := Decompress(bw.Bytes())
		require.ErrorIs(t, err, failure.ErrInvalidSymbol)
	})
}

func TestDecompress_PartialOutputOnError(t *testing.T) {
	bw := NewBitWriter(16)
	writeStoredBlock(bw, []byte("first"), false)
	bw.WriteBits(0, 1)
	bw.WriteBits(btypeDynamic, 2)
	bw.Flush()

	out, err := Decompress(bw.Bytes())
	require.ErrorIs(t, err, failure.ErrUnsupportedBlockType)
	require.Equal(t, []byte("first"), out)
}

func TestDecompress_MaxOutput(t *testing.T) {
	input := bytes.Repeat([]byte("abc"), 100)
	for _, level := range []int{NoCompression, DefaultCompression} {
		compressed := Compress(input, level)

		out, err := Decompress(compressed, WithMaxOutput(len(input)))
		require.NoError(t, err)
		require.Equal(t, input, out)

		out, err = Decompress(compressed, WithMaxOutput(len(input)-1))
		require.ErrorIs(t, err, failure.ErrOutputLimitExceeded)
		require.LessOrEqual(t, len(out), len(input)-1)
	}
}

func TestDecompressPrefix_ReportsConsumedBytes(t *testing.T) {
	for _, level := range []int{NoCompression, BestSpeed} {
		compressed := Compress([]byte("prefix test prefix test"), level)
		withTrailer := append(append([]byte{}, compressed...), 0xde, 0xad, 0xbe, 0xef)

		out, n, err := DecompressPrefix(withTrailer)
		require.NoError(t, err)
		require.Equal(t, "prefix test prefix test", string(out))
		require.Equal(t, len(compressed), n)
	}
}

func TestBitWriter_PacksLSBFirst(t *testing.T) {
	bw := NewBitWriter(0)
	bw.WriteBits(1, 1)
	bw.WriteBits(2, 2)
	bw.WriteBits(0x1f, 5)
	bw.WriteBits(0xabc, 12)
	require.Equal(t, 20, bw.BitCount())
	bw.Flush()
	require.Equal(t, 24, bw.BitCount())
	require.Equal(t, []byte{0xfd, 0xbc, 0x0a}, bw.Bytes())
}

func TestBitReader_ReadsBackWhatWasWritten(t *testing.T) {
	br := NewBitReader([]byte{0xfd, 0xbc, 0x0a})

	for _, want := range []struct {
		nbits uint
		value uint32
	}{{1, 1}, {2, 2}, {5, 0x1f}, {12, 0xabc}} {
		got, err := br.ReadBits(want.nbits)
		require.NoError(t, err)
		require.Equal(t, want.value, got)
	}
	require.Equal(t, 4, br.RemainingBits())
	require.Equal(t, 3, br.Offset())

	_, err := br.ReadBits(5)
	require.ErrorIs(t, err, failure.ErrTruncatedStream)
	require.Equal(t, 4, br.RemainingBits())

	br.AlignToByte()
	_, err = br.ReadAlignedBytes(1)
	require.ErrorIs(t, err, failure.ErrTruncatedStream)
}

func TestRulebook_FindCode(t *testing.T) {
	cases := []struct {
		length, symbol, offset int
	}{
		{3, 257, 0}, {10, 264, 0}, {11, 265, 0}, {12, 265, 1},
		{130, 280, 15}, {227, 284, 0}, {257, 284, 30}, {258, 285, 0},
	}
	for _, c := range cases {
		symbol, offset := findLengthCode(c.length)
		require.Equal(t, c.symbol, symbol, "length %d", c.length)
		require.Equal(t, c.offset, offset, "length %d", c.length)

		if c.length != 258 {
			symbol, offset = lenAlphabets.FindCode(c.length)
			require.Equal(t, c.symbol, symbol, "length %d", c.length)
			require.Equal(t, c.offset, offset, "length %d", c.length)
		}
	}

	distances := []struct {
		distance, symbol, offset int
	}{
		{1, 0, 0}, {4, 3, 0}, {5, 4, 0}, {6, 4, 1}, {24577, 29, 0}, {32768, 29, 8191},
	}
	for _, c := range distances {
		symbol, offset := distAlphabets.FindCode(c.distance)
		require.Equal(t, c.symbol, symbol, "distance %d", c.distance)
		require.Equal(t, c.offset, offset, "distance %d", c.distance)
	}

	_, ok := lenAlphabets.Lookup(286)
	require.False(t, ok)
	a, ok := lenAlphabets.Lookup(285)
	require.True(t, ok)
	require.Equal(t, Alphabet{ExtraBits: 0, Base: 258}, a)
}
