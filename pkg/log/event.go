package log

import (
	"time"

	"github.com/mcc-station/mcc-go/pkg/wire"
)

// Event is a captured messaging-core event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// RequestID correlates command events (0 for telemetry).
	RequestID wire.RequestID `cbor:"2,keyasint,omitempty"`

	// Direction indicates flow relative to the core.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// DeviceID is the device the event concerns, if any.
	DeviceID string `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	State     *StateChangeEvent `cbor:"10,keyasint,omitempty"`
	Progress  *ProgressEvent    `cbor:"11,keyasint,omitempty"`
	Telemetry *TelemetryEvent   `cbor:"12,keyasint,omitempty"`
	Error     *ErrorEventData   `cbor:"13,keyasint,omitempty"`
}

// Direction indicates flow relative to the core.
type Direction uint8

const (
	// DirectionIn is produced by a device side (owner of a command, telemetry producer).
	DirectionIn Direction = 0
	// DirectionOut is delivered to callers, observers or brokers.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which component captured the event.
type Layer uint8

const (
	// LayerCommand is the command lifecycle manager.
	LayerCommand Layer = 0
	// LayerTelemetry is the telemetry extension protocol.
	LayerTelemetry Layer = 1
	// LayerRelay is broker fan-out.
	LayerRelay Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerCommand:
		return "COMMAND"
	case LayerTelemetry:
		return "TELEMETRY"
	case LayerRelay:
		return "RELAY"
	default:
		return "UNKNOWN"
	}
}

// ParseLayer parses a layer name, case-sensitive upper case.
func ParseLayer(s string) (Layer, bool) {
	for _, l := range []Layer{LayerCommand, LayerTelemetry, LayerRelay} {
		if l.String() == s {
			return l, true
		}
	}
	return 0, false
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryState indicates a lifecycle transition.
	CategoryState Category = 0
	// CategoryProgress indicates a progress report.
	CategoryProgress Category = 1
	// CategoryUpdate indicates a telemetry update.
	CategoryUpdate Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryState:
		return "STATE"
	case CategoryProgress:
		return "PROGRESS"
	case CategoryUpdate:
		return "UPDATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// StateChangeEvent captures a lifecycle transition.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change, e.g. the error descriptor.
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityCommand is a single command.
	StateEntityCommand StateEntity = 0
	// StateEntityTracker is the request tracker.
	StateEntityTracker StateEntity = 1
	// StateEntityRelay is a broker connection.
	StateEntityRelay StateEntity = 2
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityCommand:
		return "COMMAND"
	case StateEntityTracker:
		return "TRACKER"
	case StateEntityRelay:
		return "RELAY"
	default:
		return "UNKNOWN"
	}
}

// ProgressEvent captures a command progress report.
type ProgressEvent struct {
	Percent uint8 `cbor:"1,keyasint"`
}

// TelemetryEvent captures one telemetry extension update.
type TelemetryEvent struct {
	// Extension is the extension identity.
	Extension string `cbor:"1,keyasint"`

	// Info is the extension's short label.
	Info string `cbor:"2,keyasint,omitempty"`

	// Changed reports whether the value differed from the previous one.
	Changed bool `cbor:"3,keyasint"`

	// Revision is the device revision counter after the update.
	Revision uint64 `cbor:"4,keyasint"`
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Code is the error kind (if the error belongs to the taxonomy).
	Code *wire.Kind `cbor:"3,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"4,keyasint,omitempty"`
}

// NewErrorData builds error event data from err, recording the taxonomy
// kind when err carries one.
func NewErrorData(layer Layer, err error, context string) *ErrorEventData {
	d := &ErrorEventData{Layer: layer, Context: context}
	if err == nil {
		return d
	}
	desc := wire.ToDescriptor(err)
	d.Message = desc.Full()
	if desc.Kind != wire.KindUnknownError {
		k := desc.Kind
		d.Code = &k
	}
	return d
}
