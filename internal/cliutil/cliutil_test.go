package cliutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLoggerWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log")
	l, err := NewLogger(false, path)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	l.Info("hello")
	l.Sync()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(b), `"msg":"hello"`) {
		t.Fatalf("log line not JSON: %s", b)
	}
}
