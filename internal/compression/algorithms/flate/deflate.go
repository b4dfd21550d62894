// Package flate implements the DEFLATE format (RFC 1951) with stored and
// fixed-Huffman blocks. Dynamic-Huffman blocks are neither produced nor
// accepted; decoding one fails with failure.UnsupportedBlockType.
package flate

import (
	"sync"

	"github.com/frostdev-ops/Loolib-sub000/internal/compression/algorithms/lzss"
)

const (
	NoCompression      = 0
	BestSpeed          = 1
	BestCompression    = 9
	DefaultCompression = -1
	defaultLevel       = 6

	btypeStored   = 0
	btypeFixed    = 1
	btypeDynamic  = 2
	btypeReserved = 3

	maxStoredBlockSize = 65535
	// fixedBlockInput is the amount of input covered by one fixed block.
	fixedBlockInput = 1 << 16
)

type TokenKind int

const (
	LiteralToken TokenKind = iota
	MatchToken
	EndOfBlockToken
)

// Token is one literal/length symbol of a block, before Huffman coding.
type Token struct {
	Kind     TokenKind
	Value    byte
	Length   int
	Distance int
}

// matcherPool recycles the matcher tables (about 256 KiB each) across calls.
// A matcher is owned by one Compress call between Get and Put.
var matcherPool = sync.Pool{
	New: func() any {
		// Unbounded chains, so every match is the longest in the window.
		return lzss.NewMatcher(0)
	},
}

// NormalizeLevel maps DefaultCompression to level 6 and clamps everything
// else into [NoCompression, BestCompression].
func NormalizeLevel(level int) int {
	switch {
	case level < 0:
		return defaultLevel
	case level > BestCompression:
		return BestCompression
	default:
		return level
	}
}

// Compress encodes data as a complete DEFLATE stream. Level 0 emits stored
// blocks. Levels 1-9 are identical: greedy LZ77 matching coded with the fixed
// Huffman tables. Compress never fails.
func Compress(data []byte, level int) []byte {
	if NormalizeLevel(level) == NoCompression {
		return compressStored(data)
	}
	return compressFixed(data)
}

func compressStored(data []byte) []byte {
	blocks := len(data)/maxStoredBlockSize + 1
	bw := NewBitWriter(len(data) + 5*blocks)
	for first := true; first || len(data) > 0; first = false {
		n := min(len(data), maxStoredBlockSize)
		writeStoredBlock(bw, data[:n], n == len(data))
		data = data[n:]
	}
	return bw.Bytes()
}

func writeStoredBlock(bw *BitWriter, block []byte, final bool) {
	bw.WriteBits(boolBit(final), 1)
	bw.WriteBits(btypeStored, 2)
	bw.Flush()
	length := uint32(len(block))
	bw.WriteBits(length, 16)
	bw.WriteBits(^length&0xffff, 16)
	bw.WriteBytes(block)
}

func compressFixed(data []byte) []byte {
	m := matcherPool.Get().(*lzss.Matcher)
	m.Reset()
	defer matcherPool.Put(m)

	bw := NewBitWriter(len(data)/2 + 16)
	tokens := make([]Token, 0, min(len(data), fixedBlockInput)+1)
	for pos := 0; ; {
		var next int
		tokens, next = tokenise(m, data, pos, min(pos+fixedBlockInput, len(data)), tokens[:0])
		final := next >= len(data)
		writeFixedBlock(bw, tokens, final)
		if final {
			break
		}
		pos = next
	}
	bw.Flush()
	return bw.Bytes()
}

// tokenise turns data[pos:end] into literal and match tokens, greedily taking
// the matcher's longest match at each position. A match may run past end; the
// returned position is where the next block starts.
func tokenise(m *lzss.Matcher, data []byte, pos, end int, tokens []Token) ([]Token, int) {
	for pos < end {
		if match, ok := m.FindMatch(data, pos); ok {
			tokens = append(tokens, Token{
				Kind:     MatchToken,
				Length:   match.Length,
				Distance: match.Distance,
			})
			for i := pos; i < pos+match.Length; i++ {
				m.Insert(data, i)
			}
			pos += match.Length
			continue
		}
		tokens = append(tokens, Token{Kind: LiteralToken, Value: data[pos]})
		m.Insert(data, pos)
		pos++
	}
	return tokens, pos
}

func writeFixedBlock(bw *BitWriter, tokens []Token, final bool) {
	bw.WriteBits(boolBit(final), 1)
	bw.WriteBits(btypeFixed, 2)
	for _, token := range tokens {
		writeToken(bw, token)
	}
	writeToken(bw, Token{Kind: EndOfBlockToken})
}

func writeToken(bw *BitWriter, token Token) {
	switch token.Kind {
	case LiteralToken:
		code := fixedLitLenCodes[token.Value]
		bw.WriteBits(code.Bits, code.Length)
	case EndOfBlockToken:
		code := fixedLitLenCodes[endOfBlock]
		bw.WriteBits(code.Bits, code.Length)
	case MatchToken:
		symbol, offset := findLengthCode(token.Length)
		code := fixedLitLenCodes[symbol]
		bw.WriteBits(code.Bits, code.Length)
		bw.WriteBits(uint32(offset), lenAlphabets.Alphabets[symbol-firstLengthSymbol].ExtraBits)

		symbol, offset = distAlphabets.FindCode(token.Distance)
		code = fixedDistCodes[symbol]
		bw.WriteBits(code.Bits, code.Length)
		bw.WriteBits(uint32(offset), distAlphabets.Alphabets[symbol].ExtraBits)
	}
}

func boolBit(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
