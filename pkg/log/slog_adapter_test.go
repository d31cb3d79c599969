package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/mcc-station/mcc-go/pkg/wire"
)

func logOne(t *testing.T, event Event) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	NewSlogAdapter(slog.New(handler)).Log(event)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output %q: %v", buf.String(), err)
	}
	return entry
}

func TestSlogAdapterLogsStateChange(t *testing.T) {
	entry := logOne(t, Event{
		Timestamp: time.Now(),
		RequestID: 9,
		Direction: DirectionOut,
		Layer:     LayerCommand,
		Category:  CategoryState,
		State:     &StateChangeEvent{Entity: StateEntityCommand, OldState: "PENDING", NewState: "FAILED", Reason: "TIMEOUT"},
	})

	if entry["level"] != "DEBUG" {
		t.Errorf("level = %v, want DEBUG", entry["level"])
	}
	if entry["request_id"] != float64(9) {
		t.Errorf("request_id = %v, want 9", entry["request_id"])
	}
	if entry["new_state"] != "FAILED" || entry["old_state"] != "PENDING" {
		t.Errorf("states = %v -> %v", entry["old_state"], entry["new_state"])
	}
	if entry["reason"] != "TIMEOUT" {
		t.Errorf("reason = %v", entry["reason"])
	}
}

func TestSlogAdapterLogsTelemetry(t *testing.T) {
	entry := logOne(t, Event{
		DeviceID:  "dev-1",
		Layer:     LayerTelemetry,
		Category:  CategoryUpdate,
		Telemetry: &TelemetryEvent{Extension: "ext", Info: "gps", Changed: true, Revision: 3},
	})

	if entry["device_id"] != "dev-1" {
		t.Errorf("device_id = %v", entry["device_id"])
	}
	if entry["info"] != "gps" || entry["changed"] != true || entry["revision"] != float64(3) {
		t.Errorf("telemetry attrs = %v", entry)
	}
	if _, ok := entry["request_id"]; ok {
		t.Error("request_id should be omitted for telemetry")
	}
}

func TestSlogAdapterErrorAtWarn(t *testing.T) {
	kind := wire.KindDeviceUnavailable
	entry := logOne(t, Event{
		Layer:    LayerRelay,
		Category: CategoryError,
		Error:    &ErrorEventData{Layer: LayerRelay, Message: "down", Code: &kind, Context: "publish"},
	})

	if entry["level"] != "WARN" {
		t.Errorf("level = %v, want WARN", entry["level"])
	}
	if entry["error_kind"] != "DEVICE_UNAVAILABLE" {
		t.Errorf("error_kind = %v", entry["error_kind"])
	}
}

func TestSlogAdapterNilLoggerUsesDefault(t *testing.T) {
	a := NewSlogAdapter(nil)
	if a.logger == nil {
		t.Fatal("logger should default to slog.Default()")
	}
}
