package transport

import (
	"encoding/base64"
	"strings"

	"github.com/frostdev-ops/Loolib-sub000/internal/failure"
)

// EncodeForPrint returns the padded standard Base64 form of data.
func EncodeForPrint(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// stripWhitespace drops the ASCII whitespace a printable channel may inject
// (space, tab, CR, LF, vertical tab and form feed).
func stripWhitespace(text string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n', '\v', '\f':
			return -1
		}
		return r
	}, text)
}

// DecodeForPrint decodes standard Base64 after removing whitespace. Padded
// input and unpadded input of length 2 or 3 mod 4 are accepted; anything
// else is an InvalidBase64 failure.
func DecodeForPrint(text string) ([]byte, error) {
	clean := stripWhitespace(text)

	encoding := base64.StdEncoding
	switch len(clean) % 4 {
	case 0:
	case 2, 3:
		if strings.HasSuffix(clean, "=") {
			return nil, failure.New(failure.InvalidBase64, "padding on input of length %d", len(clean))
		}
		encoding = base64.RawStdEncoding
	default:
		return nil, failure.New(failure.InvalidBase64, "length %d cannot hold base64 quanta", len(clean))
	}

	output, err := encoding.DecodeString(clean)
	if err != nil {
		if pos, ok := err.(base64.CorruptInputError); ok {
			return nil, failure.New(failure.InvalidBase64, "illegal data at character %d", int64(pos))
		}
		return nil, failure.New(failure.InvalidBase64, "%v", err)
	}
	return output, nil
}
