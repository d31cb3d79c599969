package log

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func createTestLogFile(t *testing.T, events []Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.mlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create test log: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

func TestReaderIteratesEvents(t *testing.T) {
	events := []Event{
		{Timestamp: time.Now(), RequestID: 1, Direction: DirectionIn, Layer: LayerCommand, Category: CategoryProgress},
		{Timestamp: time.Now(), RequestID: 2, Direction: DirectionOut, Layer: LayerCommand, Category: CategoryState},
		{Timestamp: time.Now(), DeviceID: "dev", Direction: DirectionIn, Layer: LayerTelemetry, Category: CategoryUpdate},
	}
	path := createTestLogFile(t, events)

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	var read []Event
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		read = append(read, event)
	}

	if len(read) != 3 {
		t.Fatalf("got %d events, want 3", len(read))
	}
	if read[0].RequestID != 1 || read[1].RequestID != 2 || read[2].DeviceID != "dev" {
		t.Errorf("events out of order: %+v", read)
	}
}

func TestReaderEmptyFile(t *testing.T) {
	path := createTestLogFile(t, nil)

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	if _, err := reader.Next(); err != io.EOF {
		t.Errorf("Next() error = %v, want io.EOF", err)
	}
}

func TestReaderMissingFile(t *testing.T) {
	if _, err := NewReader(filepath.Join(t.TempDir(), "missing.mlog")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestReaderTruncatedTail(t *testing.T) {
	events := []Event{
		{Timestamp: time.Now(), RequestID: 1, Layer: LayerCommand, Category: CategoryState},
		{Timestamp: time.Now(), RequestID: 2, Layer: LayerCommand, Category: CategoryState},
	}
	path := createTestLogFile(t, events)

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if err := os.Truncate(path, info.Size()-3); err != nil {
		t.Fatalf("Truncate: %v", err)
	}

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	read, err := reader.ReadAll()
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("ReadAll error = %v, want ErrTruncated", err)
	}
	if len(read) != 1 || read[0].RequestID != 1 {
		t.Errorf("events before the cut = %+v", read)
	}
	if reader.Decoded() != 1 {
		t.Errorf("Decoded() = %d, want 1", reader.Decoded())
	}
}

func TestFilteredReader(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	events := []Event{
		{Timestamp: base, RequestID: 1, Layer: LayerCommand, Category: CategoryProgress, Progress: &ProgressEvent{Percent: 10}},
		{Timestamp: base.Add(time.Second), RequestID: 1, Layer: LayerCommand, Category: CategoryState, State: &StateChangeEvent{NewState: "DONE"}},
		{Timestamp: base.Add(2 * time.Second), RequestID: 2, Layer: LayerCommand, Category: CategoryState},
		{Timestamp: base.Add(3 * time.Second), DeviceID: "dev", Layer: LayerTelemetry, Category: CategoryUpdate, Telemetry: &TelemetryEvent{Changed: false}},
		{Timestamp: base.Add(4 * time.Second), DeviceID: "dev", Layer: LayerTelemetry, Category: CategoryUpdate, Telemetry: &TelemetryEvent{Changed: true}},
	}
	path := createTestLogFile(t, events)

	state := CategoryState
	telemetry := LayerTelemetry
	start := base.Add(time.Second)
	end := base.Add(3 * time.Second)

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"all", Filter{}, 5},
		{"request", Filter{RequestID: 1}, 2},
		{"category", Filter{Category: &state}, 2},
		{"layer", Filter{Layer: &telemetry}, 2},
		{"time window", Filter{TimeStart: &start, TimeEnd: &end}, 2},
		{"device", Filter{DeviceID: "dev"}, 2},
		{"changed only", Filter{Layer: &telemetry, ChangedOnly: true}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewFilteredReader(path, tt.filter)
			if err != nil {
				t.Fatalf("NewFilteredReader: %v", err)
			}
			defer r.Close()
			got, err := r.ReadAll()
			if err != nil {
				t.Fatalf("ReadAll: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d events, want %d", len(got), tt.want)
			}
		})
	}
}
