package deflate_test

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/frostdev-ops/Loolib-sub000/deflate"
)

func randomInputs() [][]byte {
	rng := rand.New(rand.NewSource(99))
	inputs := [][]byte{nil, {0}, []byte(strings.Repeat("A", 1000))}
	for i := 0; i < 10; i++ {
		data := make([]byte, rng.Intn(20_000))
		for j := range data {
			// A small alphabet gives the matcher something to find.
			data[j] = byte(rng.Intn(6))
		}
		inputs = append(inputs, data)
	}
	return inputs
}

func TestRoundTrip(t *testing.T) {
	for _, input := range randomInputs() {
		for level := 0; level <= 9; level++ {
			out, err := deflate.Decompress(deflate.Compress(input, level))
			require.NoError(t, err)
			require.True(t, bytes.Equal(input, out))

			out, err = deflate.DecompressZlib(deflate.CompressZlib(input, level))
			require.NoError(t, err)
			require.True(t, bytes.Equal(input, out))
		}
	}
}

func TestCompressionEfficacy(t *testing.T) {
	run := []byte(strings.Repeat("A", 1000))
	require.Less(t, len(deflate.Compress(run, 6)), 1000)

	empty := deflate.Compress(nil, 6)
	require.LessOrEqual(t, len(empty), 5)
	out, err := deflate.Decompress(empty)
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestAdler32(t *testing.T) {
	require.Equal(t, uint32(1), deflate.Adler32(nil))
	require.Equal(t, uint32(0x11e60398), deflate.Adler32([]byte("Wikipedia")))
}

func TestZlibScenario(t *testing.T) {
	compressed := deflate.CompressZlib([]byte("Hello, World!"), deflate.DefaultCompression)

	out, err := deflate.DecompressZlib(compressed)
	require.NoError(t, err)
	require.Equal(t, "Hello, World!", string(out))

	compressed[len(compressed)-1]++
	_, err = deflate.DecompressZlib(compressed)
	require.ErrorIs(t, err, deflate.ErrChecksumMismatch)
	require.Equal(t, deflate.ChecksumMismatch, deflate.KindOf(err))
	require.Equal(t, "ChecksumMismatch", deflate.KindOf(err).String())
}

func TestChecksumSensitivity(t *testing.T) {
	input := []byte(strings.Repeat("sensitivity ", 20))
	compressed := deflate.CompressZlib(input, 6)
	detected := 0
	for bit := 16; bit < 8*len(compressed); bit++ {
		corrupt := append([]byte{}, compressed...)
		corrupt[bit/8] ^= 1 << (bit % 8)

		out, err := deflate.DecompressZlib(corrupt)
		if err == nil {
			require.Equal(t, input, out, "bit %d", bit)
			continue
		}
		detected++
		if bit/8 >= len(compressed)-4 {
			require.ErrorIs(t, err, deflate.ErrChecksumMismatch, "bit %d", bit)
		}
	}
	// Only the padding bits of the last payload byte may go unnoticed.
	require.GreaterOrEqual(t, detected, 8*len(compressed)-16-7)
}

func TestChannel(t *testing.T) {
	for _, input := range append(randomInputs(), bytes.Repeat([]byte{0x00, 0x01, 0xff}, 30)) {
		out, err := deflate.DecodeForChannel(deflate.EncodeForChannel(input))
		require.NoError(t, err)
		require.True(t, bytes.Equal(input, out))
	}

	clean := []byte("no reserved bytes here")
	require.Equal(t, clean, deflate.EncodeForChannel(clean))

	_, err := deflate.DecodeForChannel([]byte{0x01})
	require.ErrorIs(t, err, deflate.ErrInvalidEscape)
}

func TestPrint(t *testing.T) {
	for _, input := range randomInputs() {
		text := deflate.EncodeForPrint(input)
		noisy := strings.Join(strings.SplitAfter(text, ""), " \n")
		out, err := deflate.DecodeForPrint(noisy)
		require.NoError(t, err)
		require.True(t, bytes.Equal(input, out))
	}

	_, err := deflate.DecodeForPrint("@@@@")
	require.ErrorIs(t, err, deflate.ErrInvalidBase64)
}

func TestWithMaxOutput(t *testing.T) {
	compressed := deflate.CompressZlib(bytes.Repeat([]byte{1}, 1<<20), 9)
	_, err := deflate.DecompressZlib(compressed, deflate.WithMaxOutput(1<<16))
	require.ErrorIs(t, err, deflate.ErrOutputLimitExceeded)
}

func ExampleDecompressZlib() {
	compressed := deflate.CompressZlib([]byte("Hello, World!"), deflate.DefaultCompression)
	fmt.Printf("% x\n", compressed[:2])

	out, err := deflate.DecompressZlib(compressed)
	fmt.Println(string(out), err)

	compressed[len(compressed)-1] ^= 0xff
	_, err = deflate.DecompressZlib(compressed)
	fmt.Println(errors.Is(err, deflate.ErrChecksumMismatch))
	// Output:
	// 78 9c
	// Hello, World! <nil>
	// true
}
