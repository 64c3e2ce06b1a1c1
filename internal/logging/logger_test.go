package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"verbose", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "dirpage.log")

	logger, err := New("info", path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("directory loaded")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "directory loaded") {
		t.Errorf("expected info entry in log, got %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug entry written at info level: %q", out)
	}
}
