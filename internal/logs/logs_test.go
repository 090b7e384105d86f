package logs

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"":      zapcore.WarnLevel,
		"debug": zapcore.DebugLevel,
		"INFO":  zapcore.InfoLevel,
		"bogus": zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New("mzify", Config{Level: "info", Console: &buf})
	logger.Debug("hidden")
	logger.Info("shown", zap.String("input", "a.js"))
	_ = logger.Sync()
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line leaked: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "a.js") {
		t.Fatalf("info line missing: %q", out)
	}
}

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mzify.log")
	var buf bytes.Buffer
	logger := New("mzify", Config{Level: "warn", File: path, Console: &buf})
	logger.Warn("disk", zap.Int("n", 1))
	_ = logger.Sync()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"disk"`) {
		t.Fatalf("unexpected log file %q", data)
	}
}
