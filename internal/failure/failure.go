// Package failure defines the structured errors reported by the codecs.
//
// Malformed compressed or transport-encoded input is an expected condition, so
// every decoder reports it as a *Error carrying a Kind rather than panicking.
// Callers branch on the kind with errors.Is against the Err* sentinels or with
// KindOf.
package failure

import (
	"errors"
	"fmt"
)

// Kind classifies a decode failure.
type Kind uint8

const (
	KindUnknown Kind = iota
	TruncatedStream
	UnsupportedBlockType
	InvalidBackReference
	InvalidHeader
	ChecksumMismatch
	InvalidEscape
	InvalidBase64
	InvalidSymbol
	InvalidStoredLength
	OutputLimitExceeded
)

var kindNames = map[Kind]string{
	KindUnknown:          "Unknown",
	TruncatedStream:      "TruncatedStream",
	UnsupportedBlockType: "UnsupportedBlockType",
	InvalidBackReference: "InvalidBackReference",
	InvalidHeader:        "InvalidHeader",
	ChecksumMismatch:     "ChecksumMismatch",
	InvalidEscape:        "InvalidEscape",
	InvalidBase64:        "InvalidBase64",
	InvalidSymbol:        "InvalidSymbol",
	InvalidStoredLength:  "InvalidStoredLength",
	OutputLimitExceeded:  "OutputLimitExceeded",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrTruncatedStream      = &Error{Kind: TruncatedStream, Offset: -1}
	ErrUnsupportedBlockType = &Error{Kind: UnsupportedBlockType, Offset: -1}
	ErrInvalidBackReference = &Error{Kind: InvalidBackReference, Offset: -1}
	ErrInvalidHeader        = &Error{Kind: InvalidHeader, Offset: -1}
	ErrChecksumMismatch     = &Error{Kind: ChecksumMismatch, Offset: -1}
	ErrInvalidEscape        = &Error{Kind: InvalidEscape, Offset: -1}
	ErrInvalidBase64        = &Error{Kind: InvalidBase64, Offset: -1}
	ErrInvalidSymbol        = &Error{Kind: InvalidSymbol, Offset: -1}
	ErrInvalidStoredLength  = &Error{Kind: InvalidStoredLength, Offset: -1}
	ErrOutputLimitExceeded  = &Error{Kind: OutputLimitExceeded, Offset: -1}
)

// Error is a decode failure. Offset is the input byte offset at which the
// problem was detected, or -1 when it is not tied to a position.
type Error struct {
	Kind   Kind
	Msg    string
	Offset int
}

// New returns an *Error of the given kind that is not tied to an offset.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Offset: -1}
}

// At returns an *Error of the given kind detected at input offset off.
func At(kind Kind, off int, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Offset: off}
}

func (e *Error) Error() string {
	switch {
	case e.Msg == "":
		return e.Kind.String()
	case e.Offset >= 0:
		return fmt.Sprintf("%s at offset %d: %s", e.Kind, e.Offset, e.Msg)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}
