package wire

import (
	"bytes"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// encMode is the CBOR encoder mode for core messages.
// Configured for deterministic encoding with integer keys.
var encMode cbor.EncMode

// decMode is the CBOR decoder mode for core messages.
var decMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}

	// Lenient for forward compatibility
	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

// Marshal encodes a value to CBOR bytes.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR bytes into a value.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// NewEncoder creates a new CBOR encoder that writes to w.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return encMode.NewEncoder(w)
}

// NewDecoder creates a new CBOR decoder that reads from r.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return decMode.NewDecoder(r)
}

// EncodeError encodes an error value to CBOR bytes.
func EncodeError(e *Error) ([]byte, error) {
	if e == nil {
		return nil, fmt.Errorf("cannot encode nil error")
	}
	return Marshal(e)
}

// DecodeError decodes CBOR bytes into an error value. Values from other
// categories decode successfully and are reported as foreign by IsNative.
func DecodeError(data []byte) (*Error, error) {
	var e Error
	if err := Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to decode error: %w", err)
	}
	return &e, nil
}

// EncodeRequestState encodes a request state notification to CBOR bytes.
func EncodeRequestState(s *RequestState) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request state: %w", err)
	}
	return Marshal(s)
}

// DecodeRequestState decodes CBOR bytes into a request state notification.
func DecodeRequestState(data []byte) (*RequestState, error) {
	var s RequestState
	if err := Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode request state: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request state: %w", err)
	}
	return &s, nil
}

// EncodeTelemetryChange encodes a telemetry change to CBOR bytes.
func EncodeTelemetryChange(c *TelemetryChange) ([]byte, error) {
	return Marshal(c)
}

// DecodeTelemetryChange decodes CBOR bytes into a telemetry change.
func DecodeTelemetryChange(data []byte) (*TelemetryChange, error) {
	var c TelemetryChange
	if err := Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode telemetry change: %w", err)
	}
	return &c, nil
}

// Equal compares two values by their CBOR encoding.
func Equal(a, b any) bool {
	dataA, errA := Marshal(a)
	dataB, errB := Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(dataA, dataB)
}
