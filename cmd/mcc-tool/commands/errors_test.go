package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mcc-station/mcc-go/pkg/wire"
)

func TestRunErrorsAll(t *testing.T) {
	var buf bytes.Buffer
	if err := RunErrors(&buf, nil); err != nil {
		t.Fatalf("RunErrors: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != len(wire.Kinds())+1 {
		t.Errorf("expected header + %d kinds, got %d lines", len(wire.Kinds()), len(lines))
	}
	if !strings.HasPrefix(lines[0], "CODE") {
		t.Errorf("unexpected header %q", lines[0])
	}
}

func TestRunErrorsSelected(t *testing.T) {
	var buf bytes.Buffer
	if err := RunErrors(&buf, []string{"TIMEOUT", "CANCELED"}); err != nil {
		t.Fatalf("RunErrors: %v", err)
	}
	output := buf.String()
	if !strings.Contains(output, "TIMEOUT") || !strings.Contains(output, "CANCELED") {
		t.Errorf("unexpected output:\n%s", output)
	}
	if strings.Count(strings.TrimSpace(output), "\n") != 2 {
		t.Errorf("expected 3 lines:\n%s", output)
	}

	if err := RunErrors(&bytes.Buffer{}, []string{"NO_SUCH_KIND"}); err == nil {
		t.Error("expected error for unknown kind")
	}
}
