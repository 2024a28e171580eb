package shared

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestIsMBID(t *testing.T) {
	tc := []struct {
		name string
		id   string
		want bool
	}{
		{name: "canonical mbid", id: "b1a9c0e9-d987-4042-ae91-78d6a3267d69", want: true},
		{name: "upper case", id: "B1A9C0E9-D987-4042-AE91-78D6A3267D69", want: true},
		{name: "empty", id: "", want: false},
		{name: "not a uuid", id: "not-an-mbid", want: false},
		{name: "urn form", id: "urn:uuid:b1a9c0e9-d987-4042-ae91-78d6a3267d69", want: false},
		{name: "path traversal", id: "../../etc/passwd", want: false},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsMBID(tt.id); got != tt.want {
				t.Errorf("IsMBID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestFormatMinutes(t *testing.T) {
	tc := []struct {
		ms   int64
		want string
	}{
		{ms: 0, want: "0.00"},
		{ms: 60000, want: "1.00"},
		{ms: 1_000_000, want: "16.67"},
		{ms: 90000, want: "1.50"},
	}

	for _, tt := range tc {
		if got := FormatMinutes(tt.ms); got != tt.want {
			t.Errorf("FormatMinutes(%d) = %s, want %s", tt.ms, got, tt.want)
		}
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := WithLogger(NewLogger(&buf), "run_id", "abc")
	SetLogLevel(logger, log.DebugLevel)

	logger.Debug("resolving", "recording_mbid", "123")

	out := buf.String()
	if !strings.Contains(out, "run_id=abc") {
		t.Errorf("expected child logger fields in output, got %q", out)
	}
	if !strings.Contains(out, "resolving") {
		t.Errorf("expected debug message in output, got %q", out)
	}
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("expected unique ids")
	}
	if !IsMBID(a) {
		t.Errorf("expected generated id %q to be uuid shaped", a)
	}
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tui.log")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	logger.Info("written to file")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected log file: %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Errorf("expected message in log file, got %q", data)
	}
}
