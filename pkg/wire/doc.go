// Package wire defines the values the messaging core exchanges across
// handler, process and channel boundaries.
//
// # Error Taxonomy
//
// Every failure the core reports is a Kind from a closed enumeration.
// Kinds travel as an Error value carrying a small integer code, a category
// tag ("mcc") and optional text:
//
//	err := wire.NewError(wire.KindTimeout, "no reply from device")
//	d := wire.ToDescriptor(err) // {KindTimeout, "no reply from device"}
//	d.Full()                    // "TIMEOUT: no reply from device"
//
// Errors that did not originate here (another category, or any other Go
// error) convert to KindUnknownError with their text preserved, so no
// transport-specific error type leaks past this boundary.
//
// The kind table is verified at startup: every kind must have a unique,
// non-empty name.
//
// # Messages
//
// RequestState reports progress and outcome of a request to observers
// other than the caller. TelemetryChange carries a telemetry update.
// Both use CBOR with integer keys.
package wire
