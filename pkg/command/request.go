package command

import (
	"fmt"

	"github.com/mcc-station/mcc-go/pkg/wire"
)

// Request is the immutable description of what a command asks a device or
// group to do. Commands share a Request by reference and never modify it.
type Request interface {
	// RequestID returns the request identifier, if the request kind carries one.
	RequestID() (wire.RequestID, bool)

	// Target returns the addressed device or group.
	Target() wire.Target

	// Trait returns the trait (command family) name.
	Trait() string

	// Name returns the command name within the trait.
	Name() string
}

// DeviceRequest is the default Request implementation.
type DeviceRequest struct {
	id      wire.RequestID
	hasID   bool
	target  wire.Target
	trait   string
	name    string
	payload any
}

// NewRequest creates a request without an identifier.
func NewRequest(target wire.Target, trait, name string, payload any) *DeviceRequest {
	return &DeviceRequest{target: target, trait: trait, name: name, payload: payload}
}

// NewIdentifiedRequest creates a request carrying id.
func NewIdentifiedRequest(id wire.RequestID, target wire.Target, trait, name string, payload any) *DeviceRequest {
	r := NewRequest(target, trait, name, payload)
	r.id = id
	r.hasID = true
	return r
}

// RequestID implements Request.
func (r *DeviceRequest) RequestID() (wire.RequestID, bool) { return r.id, r.hasID }

// Target implements Request.
func (r *DeviceRequest) Target() wire.Target { return r.target }

// Trait implements Request.
func (r *DeviceRequest) Trait() string { return r.trait }

// Name implements Request.
func (r *DeviceRequest) Name() string { return r.name }

// Payload returns the command arguments.
func (r *DeviceRequest) Payload() any { return r.payload }

// String renders the request for logs.
func (r *DeviceRequest) String() string {
	if r.hasID {
		return fmt.Sprintf("%s.%s#%d -> %s", r.trait, r.name, r.id, r.target)
	}
	return fmt.Sprintf("%s.%s -> %s", r.trait, r.name, r.target)
}

// EmptyResponse is delivered when a command completes without a response value.
type EmptyResponse struct {
	Request Request
}

var _ Request = (*DeviceRequest)(nil)
