package lzss

const (
	MinMatchLength = 3
	MaxMatchLength = 258
	// WindowSize is the farthest a match may reach back.
	WindowSize = 1 << 15
)

// Match is a back-reference: copy Length bytes starting Distance bytes back.
type Match struct {
	Length   int
	Distance int
}

func matchLength(candidate, pattern []byte, limit int) int {
	n := 0
	for n < limit && candidate[n] == pattern[n] {
		n++
	}
	return n
}
