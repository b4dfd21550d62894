package flate

import (
	"github.com/frostdev-ops/Loolib-sub000/internal/compression/algorithms/huffman"
)

// The fixed Huffman code of RFC 1951 section 3.2.6. Built once at package
// initialisation and never modified, so every goroutine shares them.
var (
	fixedLitLenLengths = func() []uint {
		lengths := make([]uint, numLitLenSymbols)
		for symbol := range lengths {
			switch {
			case symbol < 144:
				lengths[symbol] = 8
			case symbol < 256:
				lengths[symbol] = 9
			case symbol < 280:
				lengths[symbol] = 7
			default:
				lengths[symbol] = 8
			}
		}
		return lengths
	}()

	fixedDistLengths = func() []uint {
		lengths := make([]uint, numDistSymbols)
		for symbol := range lengths {
			lengths[symbol] = 5
		}
		return lengths
	}()

	fixedLitLenCodes = mustEncoder(fixedLitLenLengths)
	fixedDistCodes   = mustEncoder(fixedDistLengths)

	fixedLitLenDecoder = mustDecoder(fixedLitLenLengths)
	fixedDistDecoder   = mustDecoder(fixedDistLengths)
)

func mustEncoder(lengths []uint) []huffman.Code {
	codes, err := huffman.BuildCanonicalHuffmanEncoder(lengths)
	if err != nil {
		panic("flate: invalid fixed code lengths: " + err.Error())
	}
	return codes
}

func mustDecoder(lengths []uint) *huffman.CanonicalHuffmanNode {
	root, err := huffman.BuildCanonicalHuffmanDecoder(lengths)
	if err != nil {
		panic("flate: invalid fixed code lengths: " + err.Error())
	}
	return root
}
