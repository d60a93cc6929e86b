// Package codec converts between raw byte sequences and their ASCII/HEX
// textual representations. All functions are pure and safe for concurrent
// use; codec errors never reach the event bus.
package codec

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"serialterm/internal/model"
)

var (
	// ErrMalformedHex rejects hex input with an odd digit count or
	// characters outside [0-9a-fA-F].
	ErrMalformedHex = errors.New("malformed hex input")
	// ErrEncoding rejects text containing characters that cannot be sent
	// as ASCII. Nothing is silently substituted.
	ErrEncoding = errors.New("text is not encodable as ASCII")
)

// LineEnding is the byte suffix appended to outgoing payloads
type LineEnding string

const (
	LineEndingNone LineEnding = "none"
	LineEndingNL   LineEnding = "nl"
	LineEndingCR   LineEnding = "cr"
	LineEndingNLCR LineEnding = "nlcr"
)

// Suffix returns the bytes the line-ending policy appends on send
func (le LineEnding) Suffix() []byte {
	switch le {
	case LineEndingNL:
		return []byte{'\n'}
	case LineEndingCR:
		return []byte{'\r'}
	case LineEndingNLCR:
		return []byte{'\r', '\n'}
	default:
		return nil
	}
}

// Valid reports whether le is a known line-ending policy
func (le LineEnding) Valid() bool {
	switch le {
	case LineEndingNone, LineEndingNL, LineEndingCR, LineEndingNLCR:
		return true
	}
	return false
}

// Encode converts text to wire bytes according to the requested format and
// line-ending policy. Only ascii and hex are sendable formats.
func Encode(text string, format model.Format, eol LineEnding) ([]byte, error) {
	switch format {
	case model.FormatASCII:
		return EncodeASCII(text, eol)
	case model.FormatHex:
		return EncodeHex(text, eol)
	default:
		return nil, fmt.Errorf("format %q is not sendable", format)
	}
}

// EncodeASCII passes text through as bytes after appending the line-ending
// suffix. Characters outside the ASCII range are rejected with ErrEncoding.
func EncodeASCII(text string, eol LineEnding) ([]byte, error) {
	for i, r := range text {
		if r > unicode.MaxASCII {
			return nil, fmt.Errorf("%w: character %q at offset %d", ErrEncoding, r, i)
		}
	}
	out := make([]byte, 0, len(text)+2)
	out = append(out, text...)
	return append(out, eol.Suffix()...), nil
}

// EncodeHex parses whitespace-separated or contiguous hex digit pairs into
// bytes and appends the line-ending suffix. An odd digit count or any
// character that is neither a hex digit nor whitespace fails with
// ErrMalformedHex.
func EncodeHex(text string, eol LineEnding) ([]byte, error) {
	var digits strings.Builder
	for i, r := range text {
		switch {
		case unicode.IsSpace(r):
		case isHexDigit(r):
			digits.WriteRune(r)
		default:
			return nil, fmt.Errorf("%w: character %q at offset %d", ErrMalformedHex, r, i)
		}
	}
	if digits.Len()%2 != 0 {
		return nil, fmt.Errorf("%w: odd digit count %d", ErrMalformedHex, digits.Len())
	}
	payload, err := hex.DecodeString(digits.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHex, err)
	}
	return append(payload, eol.Suffix()...), nil
}

// Decoded holds both textual representations of a payload so a display
// layer can switch formats without re-reading.
type Decoded struct {
	ASCII string
	Hex   string
}

// Decode renders data as both ASCII and HEX. Printable bytes (including
// tab, CR and LF) pass through in the ASCII form; everything else becomes
// '.' so binary frames stay legible.
func Decode(data []byte) Decoded {
	var ascii strings.Builder
	ascii.Grow(len(data))
	for _, b := range data {
		if b >= 0x20 && b < 0x7F || b == '\n' || b == '\r' || b == '\t' {
			ascii.WriteByte(b)
		} else {
			ascii.WriteByte('.')
		}
	}
	return Decoded{
		ASCII: ascii.String(),
		Hex:   FormatHexString(data),
	}
}

// FormatHexString renders data as uppercase space-separated hex pairs,
// e.g. "48 65 6C 6C 6F"
func FormatHexString(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.Grow(len(data)*3 - 1)
	for i, b := range data {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02X", b)
	}
	return sb.String()
}

func isHexDigit(r rune) bool {
	return r >= '0' && r <= '9' || r >= 'a' && r <= 'f' || r >= 'A' && r <= 'F'
}
