package flate

import (
	"sort"

	"github.com/frostdev-ops/Loolib-sub000/internal/compression/algorithms/lzss"
)

// Alphabet describes one length or distance code: the smallest value it
// stands for and how many extra bits follow it to select the exact value.
type Alphabet struct {
	ExtraBits uint
	Base      int
}

// Rulebook lists the codes of one alphabet in symbol order, starting at
// FirstSymbol.
type Rulebook struct {
	FirstSymbol int
	Alphabets   []Alphabet
}

const (
	endOfBlock        = 256
	firstLengthSymbol = 257
	numLitLenSymbols  = 288
	numDistSymbols    = 30
)

var lenAlphabets = Rulebook{
	FirstSymbol: firstLengthSymbol,
	Alphabets: []Alphabet{
		{0, 3}, {0, 4}, {0, 5}, {0, 6}, {0, 7}, {0, 8}, {0, 9}, {0, 10},
		{1, 11}, {1, 13}, {1, 15}, {1, 17},
		{2, 19}, {2, 23}, {2, 27}, {2, 31},
		{3, 35}, {3, 43}, {3, 51}, {3, 59},
		{4, 67}, {4, 83}, {4, 99}, {4, 115},
		{5, 131}, {5, 163}, {5, 195}, {5, 227},
		{0, 258},
	},
}

var distAlphabets = Rulebook{
	FirstSymbol: 0,
	Alphabets: []Alphabet{
		{0, 1}, {0, 2}, {0, 3}, {0, 4},
		{1, 5}, {1, 7}, {2, 9}, {2, 13},
		{3, 17}, {3, 25}, {4, 33}, {4, 49},
		{5, 65}, {5, 97}, {6, 129}, {6, 193},
		{7, 257}, {7, 385}, {8, 513}, {8, 769},
		{9, 1025}, {9, 1537}, {10, 2049}, {10, 3073},
		{11, 4097}, {11, 6145}, {12, 8193}, {12, 12289},
		{13, 16385}, {13, 24577},
	},
}

// lengthCodes maps a match length to its index in lenAlphabets. Length 258
// has its own code (285) even though 284 with all extra bits set would also
// reach it.
var lengthCodes = func() [lzss.MaxMatchLength + 1]uint8 {
	var table [lzss.MaxMatchLength + 1]uint8
	code := 0
	for length := lzss.MinMatchLength; length <= lzss.MaxMatchLength; length++ {
		for code+1 < len(lenAlphabets.Alphabets) && lenAlphabets.Alphabets[code+1].Base <= length {
			code++
		}
		table[length] = uint8(code)
	}
	return table
}()

// FindCode returns the symbol whose range contains value and the value's
// offset from that symbol's base.
func (rb *Rulebook) FindCode(value int) (symbol int, offset int) {
	i := sort.Search(len(rb.Alphabets), func(i int) bool {
		return rb.Alphabets[i].Base > value
	}) - 1
	return rb.FirstSymbol + i, value - rb.Alphabets[i].Base
}

// Lookup returns the alphabet entry of symbol and whether symbol belongs to
// this rulebook.
func (rb *Rulebook) Lookup(symbol int) (Alphabet, bool) {
	i := symbol - rb.FirstSymbol
	if i < 0 || i >= len(rb.Alphabets) {
		return Alphabet{}, false
	}
	return rb.Alphabets[i], true
}

func findLengthCode(length int) (symbol int, offset int) {
	i := int(lengthCodes[length])
	return firstLengthSymbol + i, length - lenAlphabets.Alphabets[i].Base
}
