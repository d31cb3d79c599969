// Package telemetry tracks typed device state and detects real changes.
//
// An extension holds one optional value (unset is distinct from every
// concrete value). Each update compares the new value to the previous one
// under the value's own equality, floating-point values with a ULP
// tolerance, and reports (time, changed) to the device's shared Revision.
//
// # Updates vs Changes
//
// Handlers and Revision observers choose between every update ("last seen"
// watchdogs) and changes only (persistence, broker fan-out):
//
//	view := telemetry.NewView(device)
//	view.Watch(publish, true)              // changes only
//	view.Revision().Subscribe(touch, false) // every update
//
//	view.Attitude().Update(now, &telemetry.Attitude{Heading: 90})
//
// # Standard Extensions
//
//   - TmAttitude: heading, pitch, roll
//   - TmPosition: latitude, longitude, altitude, optional accuracy
//   - TmGps: satellites, count, fix type
//   - TmMotion: optional flight indicators
//
// Device-specific extensions are built on Simple and added with
// View.Register.
package telemetry
