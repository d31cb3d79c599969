// Package ident defines the identity model of the messaging core.
//
// Every addressable object (device, channel, protocol, firmware, telemetry
// session, ...) is named by an opaque 128-bit identifier. Identifier
// families are distinct Go types sharing one generic implementation, so a
// Device can never be passed where a Channel is expected:
//
//	dev := ident.NewDevice()
//	ch, err := ident.ParseChannel("6f1c...")
//
// Identifiers are value types: comparable, usable as map keys and totally
// ordered by their bytes (Compare).
//
// # Protocol identities
//
// A ProtocolID pairs a device with a protocol and the numeric address the
// protocol uses for it. UnsetProtocolID returns the default identity whose
// DeviceID is -1.
package ident
