package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want log.Level
	}{
		{"debug", log.DebugLevel},
		{"INFO", log.InfoLevel},
		{"warn", log.WarnLevel},
		{"warning", log.WarnLevel},
		{" error ", log.ErrorLevel},
		{"", log.InfoLevel},
		{"loud", log.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Fatalf("ParseLevel(%q)=%v want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_WritesJSONAndRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "warn")
	l.WithField("card_id", 3).Info("hidden")
	l.WithField("card_id", 4).Warn("shown")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d: %s", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal(lines[0], &entry); err != nil {
		t.Fatalf("not json: %v", err)
	}
	if entry["msg"] != "shown" || entry["card_id"] != float64(4) {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestOpenFile_Appends(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	for i := 0; i < 2; i++ {
		l, c, err := OpenFile(dir, "info")
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		l.Info("hello")
		_ = c.Close()
	}
	b, err := os.ReadFile(filepath.Join(dir, fileName))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n := bytes.Count(b, []byte("\n")); n != 2 {
		t.Fatalf("expected 2 lines, got %d", n)
	}
}
