package wire

import (
	"fmt"
	"time"

	"github.com/mcc-station/mcc-go/pkg/ident"
)

// RequestID correlates a request with the state notifications it produces.
// Zero means the request kind carries no identifier.
type RequestID uint64

// Phase is the stage a request has reached.
type Phase uint8

const (
	// PhaseProgress is a non-terminal progress report.
	PhaseProgress Phase = 0

	// PhaseDone indicates successful completion.
	PhaseDone Phase = 1

	// PhaseFailed indicates completion with an error.
	PhaseFailed Phase = 2

	// PhaseCanceled indicates completion by cancellation.
	PhaseCanceled Phase = 3
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseProgress:
		return "PROGRESS"
	case PhaseDone:
		return "DONE"
	case PhaseFailed:
		return "FAILED"
	case PhaseCanceled:
		return "CANCELED"
	default:
		return "UNKNOWN"
	}
}

// IsTerminal returns true for Done, Failed and Canceled.
func (p Phase) IsTerminal() bool {
	return p >= PhaseDone && p <= PhaseCanceled
}

// Target addresses a request at a single device or a group of devices.
type Target struct {
	Device *ident.Device `cbor:"1,keyasint,omitempty"`
	Group  *ident.Group  `cbor:"2,keyasint,omitempty"`
}

// DeviceTarget addresses one device.
func DeviceTarget(d ident.Device) Target {
	return Target{Device: &d}
}

// GroupTarget addresses a group.
func GroupTarget(g ident.Group) Target {
	return Target{Group: &g}
}

// String renders the target for logs.
func (t Target) String() string {
	switch {
	case t.Device != nil:
		return "device:" + t.Device.String()
	case t.Group != nil:
		return "group:" + t.Group.String()
	default:
		return "none"
	}
}

// RequestState reports progress or the outcome of a request to observers
// other than the issuing caller.
//
// CBOR encoding:
//
//	{
//	  1: requestId,   // uint64
//	  2: target,      // {1: device, 2: group}
//	  3: trait,       // string
//	  4: command,     // string
//	  5: phase,       // uint8
//	  6: progress,    // uint8, 0..100
//	  7: error,       // Error, only for PhaseFailed/PhaseCanceled
//	  8: timestamp
//	}
type RequestState struct {
	RequestID RequestID `cbor:"1,keyasint"`
	Target    Target    `cbor:"2,keyasint"`
	Trait     string    `cbor:"3,keyasint,omitempty"`
	Command   string    `cbor:"4,keyasint,omitempty"`
	Phase     Phase     `cbor:"5,keyasint"`
	Progress  uint8     `cbor:"6,keyasint,omitempty"`
	Error     *Error    `cbor:"7,keyasint,omitempty"`
	Timestamp time.Time `cbor:"8,keyasint"`
}

// Validate checks field consistency.
func (s *RequestState) Validate() error {
	if s.Phase > PhaseCanceled {
		return fmt.Errorf("invalid phase: %d", s.Phase)
	}
	if s.Progress > 100 {
		return fmt.Errorf("progress out of range: %d", s.Progress)
	}
	if s.Phase == PhaseDone && s.Error != nil {
		return fmt.Errorf("done state carries error %v", s.Error)
	}
	if (s.Phase == PhaseFailed || s.Phase == PhaseCanceled) && s.Error == nil {
		return fmt.Errorf("%s state without error", s.Phase)
	}
	return nil
}

// TelemetryChange is published when a telemetry extension reports a value.
type TelemetryChange struct {
	Device    ident.Device      `cbor:"1,keyasint"`
	Extension ident.TmExtension `cbor:"2,keyasint"`
	Info      string            `cbor:"3,keyasint,omitempty"`
	Changed   bool              `cbor:"4,keyasint"`
	Revision  uint64            `cbor:"5,keyasint"`
	Value     any               `cbor:"6,keyasint,omitempty"`
	Timestamp time.Time         `cbor:"7,keyasint"`
}
