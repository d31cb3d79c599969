package commands

import (
	"path/filepath"
	"testing"

	"github.com/mcc-station/mcc-go/pkg/log"
)

func TestRunFilter(t *testing.T) {
	path := writeLog(t, sampleEvents())
	out := filepath.Join(t.TempDir(), "filtered.cbor")

	n, err := RunFilter(path, out, FilterOptions{DeviceID: testDevice, Category: "update"})
	if err != nil {
		t.Fatalf("RunFilter: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 events written, got %d", n)
	}

	reader, err := log.NewReader(out)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()
	events, err := reader.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events in output, got %d", len(events))
	}
	for _, e := range events {
		if e.Telemetry == nil {
			t.Errorf("expected telemetry event, got %+v", e)
		}
	}
}

func TestFilterOptionsBuild(t *testing.T) {
	f, err := FilterOptions{
		RequestID: "7",
		Layer:     "relay",
		Direction: "OUT",
		Category:  "Progress",
		TimeStart: "2026-01-28T10:00:00Z",
		Changed:   true,
	}.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if f.RequestID != 7 || !f.ChangedOnly {
		t.Errorf("unexpected filter: %+v", f)
	}
	if f.Layer == nil || *f.Layer != log.LayerRelay {
		t.Errorf("layer = %v", f.Layer)
	}
	if f.Direction == nil || *f.Direction != log.DirectionOut {
		t.Errorf("direction = %v", f.Direction)
	}
	if f.Category == nil || *f.Category != log.CategoryProgress {
		t.Errorf("category = %v", f.Category)
	}
	if f.TimeStart == nil || f.TimeEnd != nil {
		t.Errorf("time range = %v..%v", f.TimeStart, f.TimeEnd)
	}
}

func TestRunFilterInvalidTime(t *testing.T) {
	path := writeLog(t, sampleEvents())
	_, err := RunFilter(path, filepath.Join(t.TempDir(), "out.cbor"), FilterOptions{TimeEnd: "not-a-time"})
	if err == nil {
		t.Error("expected error for invalid time")
	}
}
