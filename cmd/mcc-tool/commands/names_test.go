package commands

import (
	"bytes"
	"strings"
	"testing"
)

func TestRunNamesEncodeDecode(t *testing.T) {
	var buf bytes.Buffer
	id := "2f1e0d9c-8b7a-4695-a4b3-c2d1e0f9a8b7"
	if err := RunNamesEncode(&buf, "session", id, "flight.7"); err != nil {
		t.Fatalf("RunNamesEncode: %v", err)
	}
	name := strings.TrimSpace(buf.String())
	if !strings.HasPrefix(name, "session.") || !strings.HasSuffix(name, "."+id+".flight.7") {
		t.Fatalf("unexpected name %q", name)
	}

	buf.Reset()
	if err := RunNamesDecode(&buf, []string{name}); err != nil {
		t.Fatalf("RunNamesDecode: %v", err)
	}
	output := buf.String()
	for _, want := range []string{"Kind:  session", "ID:    " + id, "Info:  flight.7"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
}

func TestRunNamesEncodeRandomID(t *testing.T) {
	var a, b bytes.Buffer
	if err := RunNamesEncode(&a, "device", "", ""); err != nil {
		t.Fatal(err)
	}
	if err := RunNamesEncode(&b, "device", "", ""); err != nil {
		t.Fatal(err)
	}
	if a.String() == b.String() {
		t.Error("expected distinct names")
	}
	if strings.Count(strings.TrimSpace(a.String()), ".") != 2 {
		t.Errorf("expected no info segment: %q", a.String())
	}
}

func TestRunNamesErrors(t *testing.T) {
	if err := RunNamesEncode(&bytes.Buffer{}, "device", "not-a-uuid", ""); err == nil {
		t.Error("expected error for invalid id")
	}
	if err := RunNamesDecode(&bytes.Buffer{}, []string{"session.20260101T000000"}); err == nil {
		t.Error("expected error for truncated name")
	}
}
