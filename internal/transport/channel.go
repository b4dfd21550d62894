// Package transport adapts compressed bytes to channels that cannot carry
// arbitrary binary: a control-byte escaper for links that reserve 0x00, 0x01
// and 0xFF, and a Base64 text form for printable-only sinks.
package transport

import (
	"github.com/frostdev-ops/Loolib-sub000/internal/failure"
)

// Escape introduces a two-byte escape sequence on the channel.
const Escape = 0x01

// conflictingBytes maps each byte the channel reserves to the byte that
// follows Escape in its replacement.
var conflictingBytes = [256]byte{
	0x00: 0x01,
	0x01: 0x02,
	0xff: 0x03,
}

// unescaped is the inverse of conflictingBytes. Followers without an entry
// are invalid.
var unescaped = map[byte]byte{
	0x01: 0x00,
	0x02: 0x01,
	0x03: 0xff,
}

// EncodeForChannel replaces 0x00, 0x01 and 0xFF with Escape followed by
// 0x01, 0x02 and 0x03 respectively. Every other byte is copied unchanged.
func EncodeForChannel(data []byte) []byte {
	escapes := 0
	for _, c := range data {
		if conflictingBytes[c] != 0 {
			escapes++
		}
	}
	output := make([]byte, 0, len(data)+escapes)
	for _, c := range data {
		if follower := conflictingBytes[c]; follower != 0 {
			output = append(output, Escape, follower)
		} else {
			output = append(output, c)
		}
	}
	return output
}

// DecodeForChannel reverses EncodeForChannel. An Escape at the end of data or
// followed by anything but 0x01, 0x02 or 0x03 is an InvalidEscape failure
// reported at the offset of the Escape byte; the bytes decoded before it are
// returned with the error.
func DecodeForChannel(data []byte) ([]byte, error) {
	output := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != Escape {
			output = append(output, data[i])
			continue
		}
		if i+1 == len(data) {
			return output, failure.At(failure.InvalidEscape, i, "escape byte at end of input")
		}
		c, ok := unescaped[data[i+1]]
		if !ok {
			return output, failure.At(failure.InvalidEscape, i, "unknown escape follower %#02x", data[i+1])
		}
		output = append(output, c)
		i++
	}
	return output, nil
}
