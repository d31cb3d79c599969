package ident

import "fmt"

// DeviceID is a device's numeric address within a protocol's numbering space.
type DeviceID int32

// UnsetDeviceID marks a ProtocolID whose numeric address is not assigned.
const UnsetDeviceID DeviceID = -1

// MaxDeviceID is the largest numeric address a protocol may assign.
const MaxDeviceID DeviceID = 0xFFFF

// ProtocolID disambiguates a device within a protocol family.
//
// The zero value is not the unset sentinel; use UnsetProtocolID.
type ProtocolID struct {
	Device   Device
	Protocol Protocol
	DeviceID DeviceID
}

// NewProtocolID creates a protocol identity.
func NewProtocolID(device Device, protocol Protocol, id DeviceID) ProtocolID {
	return ProtocolID{Device: device, Protocol: protocol, DeviceID: id}
}

// UnsetProtocolID returns the default protocol identity (DeviceID = -1).
func UnsetProtocolID() ProtocolID {
	return ProtocolID{DeviceID: UnsetDeviceID}
}

// IsSet returns true if a numeric address has been assigned.
func (p ProtocolID) IsSet() bool {
	return p.DeviceID != UnsetDeviceID
}

// Compare orders by device, then protocol, then numeric address.
func (p ProtocolID) Compare(other ProtocolID) int {
	if c := p.Device.Compare(other.Device); c != 0 {
		return c
	}
	if c := p.Protocol.Compare(other.Protocol); c != 0 {
		return c
	}
	switch {
	case p.DeviceID < other.DeviceID:
		return -1
	case p.DeviceID > other.DeviceID:
		return 1
	default:
		return 0
	}
}

// String returns "device/protocol#id".
func (p ProtocolID) String() string {
	return fmt.Sprintf("%s/%s#%d", p.Device, p.Protocol, p.DeviceID)
}

// ProtocolValue is an opaque protocol-specific value, such as a
// connection parameter string.
type ProtocolValue struct {
	Protocol Protocol
	Value    string
}

// NewProtocolValue creates a protocol value.
func NewProtocolValue(protocol Protocol, value string) ProtocolValue {
	return ProtocolValue{Protocol: protocol, Value: value}
}

// Equal compares both fields.
func (v ProtocolValue) Equal(other ProtocolValue) bool {
	return v.Protocol == other.Protocol && v.Value == other.Value
}

// Compare orders by protocol, then value.
func (v ProtocolValue) Compare(other ProtocolValue) int {
	if c := v.Protocol.Compare(other.Protocol); c != 0 {
		return c
	}
	switch {
	case v.Value < other.Value:
		return -1
	case v.Value > other.Value:
		return 1
	default:
		return 0
	}
}
