// Package log captures messaging-core events for later analysis.
//
// It is separate from operational logging (slog): event capture records a
// machine-readable trace of command lifecycles and telemetry updates.
//
// # Basic Usage
//
//	// Development: events on the console via slog
//	events := log.NewSlogAdapter(slog.Default())
//
//	// Production: append to a CBOR event file
//	file, _ := log.NewFileLogger("/var/lib/mcc/core.mlog")
//
//	// Both
//	events := log.NewMultiLogger(log.NewSlogAdapter(nil), file)
//
// # Event Types
//
//   - Command layer: state transitions (StateChangeEvent) and progress
//     reports (ProgressEvent)
//   - Telemetry layer: extension updates (TelemetryEvent), with the
//     changed flag and revision counter
//   - Relay layer: broker publish failures (ErrorEventData)
//
// # File Format
//
// Event files are a stream of CBOR-encoded Event values (.mlog). Reader
// streams them back with optional filtering; the mcc-tool "log" command
// renders them.
package log
