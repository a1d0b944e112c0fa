package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestVerboseEnablesDebug(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug written without verbose: %q", buf.String())
	}

	New(&buf, true).WithField("node_id", 7).Debug("shown")
	if !strings.Contains(buf.String(), "shown") || !strings.Contains(buf.String(), "node_id=7") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestOrDiscard(t *testing.T) {
	if OrDiscard(nil) == nil {
		t.Fatal("OrDiscard(nil) returned nil")
	}
	l := Discard()
	if OrDiscard(l) != l {
		t.Errorf("OrDiscard replaced a non-nil logger")
	}
}
