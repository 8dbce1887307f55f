package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLoggerWritesFile(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(true, dir, "test")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Debug("Alwan ON", "session", "abc")
	FlushAndClose()

	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one log file, got %v (err %v)", entries, err)
	}
	if !strings.HasSuffix(entries[0].Name(), "-test.txt") {
		t.Errorf("unexpected file name %q", entries[0].Name())
	}
	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Alwan ON") || !strings.Contains(string(data), "session=abc") {
		t.Errorf("log file missing entry: %q", data)
	}
}

func TestInfoLevelDropsDebug(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(false, dir, "")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("shown")
	FlushAndClose()

	entries, _ := os.ReadDir(dir)
	data, _ := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if strings.Contains(string(data), "hidden") {
		t.Errorf("debug entry written at info level")
	}
	if !strings.Contains(string(data), "shown") {
		t.Errorf("info entry missing")
	}
}
