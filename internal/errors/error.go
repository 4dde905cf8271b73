package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/pymine-dev/mcwire/pkg/protocol"
)

// Category represents the type of error.
type Category string

const (
	CategoryRange  Category = "range"
	CategoryData   Category = "data"
	CategoryDecode Category = "decode"
	CategoryConfig Category = "config"
	CategoryCLI    Category = "cli"
)

// NoOffset marks a diagnostic that is not tied to a byte position.
const NoOffset = -1

// WireError is a structured diagnostic for codec failures, with the input
// bytes around the failing offset.
type WireError struct {
	// Code is a unique error identifier (e.g., "W001").
	Code string

	// Category is the error type (range, decode, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Offset is the byte position where the failing field started, or
	// NoOffset.
	Offset int

	// Input holds the bytes that were being decoded, for the hex context.
	Input []byte

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *WireError) Error() string {
	msg := e.Message
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *WireError) Unwrap() error {
	return e.Wrapped
}

// WithInput attaches the input bytes and the failing offset.
func (e *WireError) WithInput(input []byte, offset int) *WireError {
	e.Input = input
	e.Offset = offset
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *WireError) WithSuggestion(s string) *WireError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *WireError) WithDetail(d string) *WireError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *WireError) Wrap(err error) *WireError {
	e.Wrapped = err
	return e
}

// New creates a WireError from a registered error code.
func New(code string) *WireError {
	template, ok := registry[code]
	if !ok {
		return &WireError{
			Code:    code,
			Message: "Unknown error",
			Offset:  NoOffset,
		}
	}
	return &WireError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
		Offset:     NoOffset,
	}
}

// Newf creates a new WireError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *WireError {
	return &WireError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
		Offset:   NoOffset,
	}
}

// FromError classifies err and wraps it in a WireError. input is the data
// being decoded, or nil. A *protocol.DecodeError contributes its offset.
func FromError(err error, input []byte) *WireError {
	if err == nil {
		return nil
	}
	var we *WireError
	if stderrors.As(err, &we) {
		return we
	}

	e := New(CodeFor(err)).Wrap(err)
	if input != nil {
		e.Input = input
		var de *protocol.DecodeError
		if stderrors.As(err, &de) {
			e.Offset = de.Offset
		}
	}
	return e
}

// CodeFor returns the registered code that best describes err. The most
// specific cause wins over its category.
func CodeFor(err error) string {
	for _, c := range causes {
		if stderrors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeInternal
}

var causes = []struct {
	err  error
	code string
}{
	{protocol.ErrVarintTooLong, CodeVarintTooLong},
	{protocol.ErrInvalidUTF8, CodeInvalidUTF8},
	{protocol.ErrLengthMismatch, CodeCompression},
	{protocol.ErrCorruptPayload, CodeCompression},
	{protocol.ErrFrameTooLarge, CodeFrameTooLarge},
	{protocol.ErrInvalidBitWidth, CodeBitWidth},
	{protocol.ErrUnknownDirection, CodeDirection},
	{protocol.ErrSlotUnsupported, CodeSlot},
	{protocol.ErrLayoutMismatch, CodeLayout},
	{protocol.ErrRange, CodeRange},
	{protocol.ErrOutOfData, CodeOutOfData},
	{protocol.ErrDecode, CodeMalformed},
}
