package commands

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/mcc-station/mcc-go/pkg/log"
	"github.com/mcc-station/mcc-go/pkg/wire"
)

var baseTime = time.Date(2026, 1, 28, 10, 15, 32, 123456000, time.UTC)

const testDevice = "0b7c1d2e-3f40-4a5b-8c6d-7e8f9a0b1c2d"

// sampleEvents is one command lifecycle, two telemetry updates and a relay error.
func sampleEvents() []log.Event {
	kind := wire.KindTimeout
	return []log.Event{
		{
			Timestamp: baseTime,
			RequestID: 42,
			Direction: log.DirectionOut,
			Layer:     log.LayerCommand,
			Category:  log.CategoryProgress,
			DeviceID:  testDevice,
			Progress:  &log.ProgressEvent{Percent: 50},
		},
		{
			Timestamp: baseTime.Add(2 * time.Second),
			RequestID: 42,
			Direction: log.DirectionOut,
			Layer:     log.LayerCommand,
			Category:  log.CategoryState,
			DeviceID:  testDevice,
			State: &log.StateChangeEvent{
				Entity:   log.StateEntityCommand,
				OldState: "PENDING",
				NewState: "DONE",
			},
		},
		{
			Timestamp: baseTime.Add(3 * time.Second),
			Direction: log.DirectionIn,
			Layer:     log.LayerTelemetry,
			Category:  log.CategoryUpdate,
			DeviceID:  testDevice,
			Telemetry: &log.TelemetryEvent{Extension: "04e1c137-8ed9-4da5-aaa8-7bf6a8fede4e", Info: "gps", Changed: true, Revision: 1},
		},
		{
			Timestamp: baseTime.Add(4 * time.Second),
			Direction: log.DirectionIn,
			Layer:     log.LayerTelemetry,
			Category:  log.CategoryUpdate,
			DeviceID:  testDevice,
			Telemetry: &log.TelemetryEvent{Extension: "04e1c137-8ed9-4da5-aaa8-7bf6a8fede4e", Info: "gps", Changed: false, Revision: 2},
		},
		{
			Timestamp: baseTime.Add(5 * time.Second),
			RequestID: 43,
			Direction: log.DirectionOut,
			Layer:     log.LayerRelay,
			Category:  log.CategoryError,
			Error: &log.ErrorEventData{
				Layer:   log.LayerRelay,
				Message: "TIMEOUT: no outcome after 5s",
				Code:    &kind,
				Context: "request 43 state FAILED",
			},
		},
	}
}

func writeLog(t *testing.T, events []log.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.cbor")
	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return path
}
