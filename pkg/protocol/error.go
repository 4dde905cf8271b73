package protocol

import (
	"errors"
	"fmt"
	"io"
)

// Error categories. Every failure caused by the bytes being encoded or
// decoded matches exactly one of these with errors.Is. Misuse of the API
// (a bad bit width, values that do not fit a layout, an unknown direction
// name, slot encoding, invalid UTF-8 handed to PackString) returns the
// specific sentinel below without a category.
var (
	// ErrRange reports a value outside the range its field can carry.
	ErrRange = errors.New("protocol: value out of range")

	// ErrOutOfData reports a read past the end of the buffer. It wraps
	// io.ErrUnexpectedEOF so stream callers can match either.
	ErrOutOfData = fmt.Errorf("protocol: out of data: %w", io.ErrUnexpectedEOF)

	// ErrDecode reports malformed input: bad UTF-8, bad JSON, a corrupt
	// zlib stream, an overlong varint.
	ErrDecode = errors.New("protocol: malformed data")
)

// Specific failures. Decode-side ones are wrapped in a *DecodeError.
var (
	ErrInvalidBitWidth  = errors.New("protocol: varint bit width must be within [1, 64]")
	ErrVarintTooLong    = errors.New("protocol: varint exceeds 10 bytes or 64 bits")
	ErrLayoutMismatch   = errors.New("protocol: values do not match field layout")
	ErrInvalidUTF8      = errors.New("protocol: string is not valid UTF-8")
	ErrUnknownDirection = errors.New("protocol: unknown direction")
	ErrSlotUnsupported  = errors.New("protocol: slot encoding is not supported")
	ErrFrameTooLarge    = errors.New("protocol: frame exceeds maximum length")
	ErrLengthMismatch   = errors.New("protocol: inflated length does not match header")
	ErrCorruptPayload   = errors.New("protocol: invalid zlib stream")
)

// RangeError is returned when a value does not fit the declared range
// [Min, Max] of a field, on both the encode and the decode path.
type RangeError struct {
	What  string
	Value int64
	Min   int64
	Max   int64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("protocol: %s %d out of range [%d, %d]", e.What, e.Value, e.Min, e.Max)
}

// Is makes errors.Is(err, ErrRange) hold.
func (e *RangeError) Is(target error) bool {
	return target == ErrRange
}

// DecodeError is returned when bytes cannot be turned into a value.
// Offset is the buffer position at which the failing field started.
type DecodeError struct {
	What   string
	Offset int
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("protocol: decode %s at offset %d", e.What, e.Offset)
	}
	return fmt.Sprintf("protocol: decode %s at offset %d: %v", e.What, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrDecode) hold.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

func rangeErr(what string, v, lo, hi int64) error {
	return &RangeError{What: what, Value: v, Min: lo, Max: hi}
}

func decodeErr(what string, off int, err error) error {
	return &DecodeError{What: what, Offset: off, Err: err}
}
