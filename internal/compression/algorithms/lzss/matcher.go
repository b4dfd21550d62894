// Package lzss holds the LZ77 side of DEFLATE: a hash-chain matcher that
// proposes back-references for the encoder, and the circular history window
// the decoder resolves them against.
package lzss

const (
	hashBits   = 15
	hashSize   = 1 << hashBits
	windowMask = WindowSize - 1
)

// Matcher finds back-references with hash chains over 3-byte prefixes. Chain
// links live in a circular table of WindowSize entries, so memory stays fixed
// however long the input is.
//
// A Matcher is not safe for concurrent use.
type Matcher struct {
	// MaxChain bounds the candidates visited per FindMatch. Zero means
	// unbounded, which always finds the longest match in the window.
	MaxChain int

	// head[h] is 1 + the most recent position whose prefix hashes to h.
	head [hashSize]int32
	// prev[p&windowMask] is 1 + the previous position with p's hash.
	prev [WindowSize]int32
}

// NewMatcher returns an empty Matcher visiting at most maxChain candidates.
func NewMatcher(maxChain int) *Matcher {
	return &Matcher{MaxChain: maxChain}
}

// Reset forgets every inserted position.
func (m *Matcher) Reset() {
	clear(m.head[:])
	clear(m.prev[:])
}

// Insert records data[pos:pos+3] in the hash chains. Positions too close to
// the end of data to start a match are ignored.
func (m *Matcher) Insert(data []byte, pos int) {
	if pos+MinMatchLength > len(data) {
		return
	}
	h := hash3(data[pos:])
	m.prev[pos&windowMask] = m.head[h]
	m.head[h] = int32(pos + 1)
}

// FindMatch returns the longest match for data[pos:] among the positions
// inserted so far that lie within WindowSize bytes before pos. Among matches
// of equal length the nearest one wins. It reports false when no match of at
// least MinMatchLength exists.
//
// pos itself must not have been inserted yet.
func (m *Matcher) FindMatch(data []byte, pos int) (Match, bool) {
	if pos+MinMatchLength > len(data) {
		return Match{}, false
	}
	limit := min(MaxMatchLength, len(data)-pos)
	pattern := data[pos:]

	var best Match
	visited := 0
	for cand := int(m.head[hash3(pattern)]) - 1; cand >= 0; {
		distance := pos - cand
		if distance <= 0 || distance > WindowSize {
			break
		}
		if m.MaxChain > 0 && visited >= m.MaxChain {
			break
		}
		visited++

		// A longer match must agree at the byte just past the current best.
		if data[cand+best.Length] == pattern[best.Length] {
			if length := matchLength(data[cand:], pattern, limit); length > best.Length {
				best = Match{Length: length, Distance: distance}
				if length == limit {
					break
				}
			}
		}

		next := int(m.prev[cand&windowMask]) - 1
		if next >= cand {
			break
		}
		cand = next
	}

	if best.Length < MinMatchLength {
		return Match{}, false
	}
	return best, true
}

func hash3(b []byte) uint32 {
	v := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
	return (v * 0x9E3779B1) >> (32 - hashBits)
}
