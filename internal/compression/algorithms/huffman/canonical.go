// Package huffman builds canonical prefix codes (RFC 1951 section 3.2.2) from
// per-symbol code lengths, for both directions: bit-reversed codes ready for
// LSB-first output, and a binary tree walked one bit at a time for input.
package huffman

import (
	"errors"
	"math/bits"
)

// MaxCodeLength is the longest code length DEFLATE allows.
const MaxCodeLength = 15

var (
	ErrCodeTooLong    = errors.New("huffman code length exceeds the limit")
	ErrOversubscribed = errors.New("huffman code lengths are over-subscribed")
	ErrInvalidCode    = errors.New("bit sequence does not match any huffman code")
)

// Code is the canonical code of one symbol. Bits holds the code bit-reversed,
// so writing the low Length bits LSB-first emits the code MSB-first as DEFLATE
// requires. A Length of zero means the symbol is unused.
type Code struct {
	Bits   uint32
	Length uint
}

// CanonicalHuffmanNode is a node of the decoding tree. Left follows a 0 bit,
// Right follows a 1 bit.
type CanonicalHuffmanNode struct {
	Symbol      int
	IsLeaf      bool
	Left, Right *CanonicalHuffmanNode
}

// BitReader is the bit source the decoding tree reads from.
type BitReader interface {
	ReadBits(nbits uint) (uint32, error)
}

// BuildCanonicalHuffmanEncoder assigns canonical codes to the symbols of
// lengths. The returned slice is indexed by symbol.
func BuildCanonicalHuffmanEncoder(lengths []uint) ([]Code, error) {
	codes, err := canonicalCodes(lengths)
	if err != nil {
		return nil, err
	}
	output := make([]Code, len(lengths))
	for symbol, length := range lengths {
		if length == 0 {
			continue
		}
		output[symbol] = Code{Bits: Reverse(codes[symbol], uint32(length)), Length: length}
	}
	return output, nil
}

// BuildCanonicalHuffmanDecoder builds the decoding tree for lengths. Codes the
// lengths leave unassigned have no path in the tree; reaching one is reported
// by Decode as ErrInvalidCode.
func BuildCanonicalHuffmanDecoder(lengths []uint) (*CanonicalHuffmanNode, error) {
	codes, err := canonicalCodes(lengths)
	if err != nil {
		return nil, err
	}
	root := &CanonicalHuffmanNode{}
	for symbol, length := range lengths {
		if length == 0 {
			continue
		}
		node := root
		for i := int(length) - 1; i >= 0; i-- {
			if (codes[symbol]>>uint(i))&1 == 0 {
				if node.Left == nil {
					node.Left = &CanonicalHuffmanNode{}
				}
				node = node.Left
			} else {
				if node.Right == nil {
					node.Right = &CanonicalHuffmanNode{}
				}
				node = node.Right
			}
		}
		node.Symbol = symbol
		node.IsLeaf = true
	}
	return root, nil
}

// Decode walks the tree from n, reading one bit at a time from br, and
// returns the symbol at the leaf it reaches.
func (n *CanonicalHuffmanNode) Decode(br BitReader) (int, error) {
	node := n
	for !node.IsLeaf {
		bit, err := br.ReadBits(1)
		if err != nil {
			return -1, err
		}
		if bit == 0 {
			node = node.Left
		} else {
			node = node.Right
		}
		if node == nil {
			return -1, ErrInvalidCode
		}
	}
	return node.Symbol, nil
}

// canonicalCodes returns the MSB-first canonical code of every symbol.
func canonicalCodes(lengths []uint) ([]uint32, error) {
	var lengthCounts [MaxCodeLength + 1]int
	for _, length := range lengths {
		if length > MaxCodeLength {
			return nil, ErrCodeTooLong
		}
		lengthCounts[length]++
	}
	lengthCounts[0] = 0

	left := 1
	for length := 1; length <= MaxCodeLength; length++ {
		left <<= 1
		left -= lengthCounts[length]
		if left < 0 {
			return nil, ErrOversubscribed
		}
	}

	var nextBaseCode [MaxCodeLength + 1]uint32
	code := uint32(0)
	for length := 1; length <= MaxCodeLength; length++ {
		code = (code + uint32(lengthCounts[length-1])) << 1
		nextBaseCode[length] = code
	}

	codes := make([]uint32, len(lengths))
	for symbol, length := range lengths {
		if length == 0 {
			continue
		}
		codes[symbol] = nextBaseCode[length]
		nextBaseCode[length]++
	}
	return codes, nil
}

// Reverse returns the low length bits of n in reverse order.
func Reverse(n uint32, length uint32) uint32 {
	if length == 0 {
		return 0
	}
	return bits.Reverse32(n) >> (32 - length)
}
