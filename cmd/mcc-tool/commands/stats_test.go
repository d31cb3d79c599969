package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mcc-station/mcc-go/pkg/log"
)

func TestCollect(t *testing.T) {
	stats, err := Collect(writeLog(t, sampleEvents()))
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if stats.TotalEvents != 5 {
		t.Errorf("TotalEvents = %d", stats.TotalEvents)
	}
	if stats.EventsByLayer[log.LayerTelemetry] != 2 || stats.EventsByLayer[log.LayerCommand] != 2 {
		t.Errorf("EventsByLayer = %v", stats.EventsByLayer)
	}
	if stats.Errors != 1 {
		t.Errorf("Errors = %d", stats.Errors)
	}

	req := stats.Requests[42]
	if req == nil {
		t.Fatal("request 42 missing")
	}
	if req.Final != "DONE" || req.Progress != 1 {
		t.Errorf("request 42 = %+v", req)
	}
	if stats.Requests[43].Final != "" {
		t.Errorf("request 43 should have no final state")
	}

	dev := stats.Devices[testDevice]
	if dev == nil || dev.Updates != 2 || dev.Changes != 1 {
		t.Errorf("device stats = %+v", dev)
	}
}

func TestRunStats(t *testing.T) {
	var buf bytes.Buffer
	if err := RunStats(writeLog(t, sampleEvents()), &buf); err != nil {
		t.Fatalf("RunStats: %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"Total Events: 5",
		"Duration:   5s",
		"TELEMETRY:   2",
		"Requests: 2",
		"[42] DONE after 2s, 1 progress reports",
		"[43] PENDING",
		"[" + testDevice + "] 2 updates, 1 changes",
		"Errors: 1",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
}

func TestRunStatsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RunStats(writeLog(t, nil), &buf); err != nil {
		t.Fatalf("RunStats: %v", err)
	}
	if !strings.Contains(buf.String(), "Total Events: 0") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}
