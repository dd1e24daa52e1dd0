package stream

import (
	"errors"
	"fmt"
)

var (
	ErrEndOfStream              = errors.New("unexpected end of stream")
	ErrMalformedTag             = errors.New("malformed tag")
	ErrUnsupportedOrIllegalTag  = errors.New("unsupported or illegal tag")
	ErrIllegalClassDescFlags    = errors.New("illegal classDescFlags")
	ErrIllegalFieldTypeCode     = errors.New("illegal field type code")
	ErrIllegalFieldValue        = errors.New("illegal field value")
	ErrUnresolvedClassReference = errors.New("unresolved classDesc reference")
	ErrUnsupportedExternalForm  = errors.New("unsupported externalizable format")
	ErrIndentationUnderflow     = errors.New("illegal indentation decrease")
	ErrInvalidStreamMagic       = errors.New("invalid STREAM_MAGIC")
	ErrIllegalArrayClassDesc    = errors.New("illegal array classDesc")
)

// ParseError locates a failure inside the stream. Err wraps one of the
// sentinel errors above.
type ParseError struct {
	Offset     int
	Production string
	Err        error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at offset %d: %v", e.Production, e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func flagError(msg string) error {
	return fmt.Errorf("%w: %s", ErrIllegalClassDescFlags, msg)
}

func tagError(want Tag, got byte) error {
	return fmt.Errorf("%w: illegal value for %s (should be 0x%02x, got 0x%02x)", ErrMalformedTag, want, byte(want), got)
}
