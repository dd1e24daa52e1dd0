package stream

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var ErrInvalidHex = errors.New("invalid hex input")

// DecodeHex decodes a hex dump of a stream. Whitespace is ignored; anything
// else must be a hex digit and the digit count must be even.
func DecodeHex(s string) ([]byte, error) {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)

	for i, r := range digits {
		if !isHexDigit(r) {
			return nil, fmt.Errorf("%w: character %q at position %d is not a hex digit", ErrInvalidHex, r, i)
		}
	}
	if len(digits)%2 != 0 {
		return nil, fmt.Errorf("%w: odd number of hex digits (%d)", ErrInvalidHex, len(digits))
	}
	return hex.DecodeString(digits)
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
