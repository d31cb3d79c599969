package wire

import (
	"errors"
	"fmt"
	"strings"
)

// Category tags error values that belong to this taxonomy. Values carrying
// any other category are treated as foreign.
const Category = "mcc"

// Error is the transport-neutral error value exchanged between handlers.
//
// CBOR encoding:
//
//	{
//	  1: code,      // uint8, a Kind
//	  2: category,  // string, "mcc" for this taxonomy
//	  3: text       // optional detail
//	}
type Error struct {
	Code     uint8  `cbor:"1,keyasint"`
	Category string `cbor:"2,keyasint"`
	Text     string `cbor:"3,keyasint,omitempty"`
}

// NewError creates an error value for the given kind with optional text.
// It panics if kind is out of range.
func NewError(kind Kind, text string) *Error {
	if !kind.IsValid() {
		panic(fmt.Sprintf("wire: error kind %d out of range", kind))
	}
	return &Error{Code: uint8(kind), Category: Category, Text: text}
}

// Errorf creates an error value with formatted text.
func Errorf(kind Kind, format string, args ...any) *Error {
	return NewError(kind, fmt.Sprintf(format, args...))
}

// KindError returns a textless error value, suitable as an errors.Is target.
func KindError(kind Kind) *Error {
	return NewError(kind, "")
}

// Error implements the error interface.
func (e *Error) Error() string {
	if !e.IsNative() {
		if e.Text != "" {
			return fmt.Sprintf("%s error %d: %s", e.Category, e.Code, e.Text)
		}
		return fmt.Sprintf("%s error %d", e.Category, e.Code)
	}
	return e.Descriptor().Full()
}

// IsNative returns true if the value belongs to this taxonomy.
func (e *Error) IsNative() bool {
	return e.Category == Category && Kind(e.Code).IsValid()
}

// Kind returns the error kind, or KindUnknownError for foreign values.
func (e *Error) Kind() Kind {
	if !e.IsNative() {
		return KindUnknownError
	}
	return Kind(e.Code)
}

// Descriptor converts the value to a descriptor.
func (e *Error) Descriptor() Descriptor {
	if !e.IsNative() {
		return Descriptor{Kind: KindUnknownError, Text: e.Error()}
	}
	return Descriptor{Kind: Kind(e.Code), Text: e.Text}
}

// Is reports whether target is an *Error of the same category and code.
// Text is not compared.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Category == t.Category && e.Code == t.Code
}

// Descriptor pairs an error kind with optional free text.
type Descriptor struct {
	Kind Kind
	Text string
}

// NewDescriptor creates a descriptor.
func NewDescriptor(kind Kind, text ...string) Descriptor {
	return Descriptor{Kind: kind, Text: strings.Join(text, " ")}
}

// Full renders "kind: text", or the bare kind when there is no text.
func (d Descriptor) Full() string {
	if d.Text == "" {
		return d.Kind.String()
	}
	return d.Kind.String() + ": " + d.Text
}

// String implements fmt.Stringer.
func (d Descriptor) String() string {
	return d.Full()
}

// IsCanceled returns true if the descriptor is a cancellation.
func (d Descriptor) IsCanceled() bool {
	return d.Kind == KindCanceled
}

// Err converts the descriptor back into a wire error value.
func (d Descriptor) Err() *Error {
	return NewError(d.Kind, d.Text)
}

// ToDescriptor recovers kind and text from err. Errors that do not come
// from this taxonomy map to KindUnknownError with their text preserved.
func ToDescriptor(err error) Descriptor {
	if err == nil {
		return Descriptor{Kind: KindUnknownError}
	}
	var e *Error
	if errors.As(err, &e) && e.IsNative() {
		return Descriptor{Kind: Kind(e.Code), Text: e.Text}
	}
	return Descriptor{Kind: KindUnknownError, Text: err.Error()}
}

// KindOf returns the kind carried by err, or KindUnknownError.
func KindOf(err error) Kind {
	return ToDescriptor(err).Kind
}

// IsCancel returns true if err carries KindCanceled.
func IsCancel(err error) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == KindCanceled
}
