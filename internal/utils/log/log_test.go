package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRotateWriter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "debug.log")

	w, err := NewRotateWriter(path, "10B", 2)
	if err != nil {
		t.Fatalf("NewRotateWriter() error = %v", err)
	}
	defer w.Close()

	for i := 0; i < 5; i++ {
		if _, err := w.Write([]byte(fmt.Sprintf("1234567%d\n", i))); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var rotated int
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "debug.log.") {
			rotated++
		}
	}
	if rotated != 2 {
		t.Errorf("expected 2 rotated files, got %d", rotated)
	}

	for name, want := range map[string]string{
		"debug.log":   "12345674\n",
		"debug.log.1": "12345673\n",
		"debug.log.2": "12345672\n",
	} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != want {
			t.Errorf("%s = %q, want %q", name, data, want)
		}
	}
}

func TestRotateWriterInvalidSize(t *testing.T) {
	if _, err := NewRotateWriter(filepath.Join(t.TempDir(), "x.log"), "big", 1); err == nil {
		t.Error("expected an error for an invalid size")
	}
}

func TestNewWritesAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := New(UseOutput(&buf), UseLevel(DebugLevel), UseAttrs("run_id", "abc"))
	logger.Debug("hello", "key", "value")

	out := buf.String()
	for _, want := range []string{"hello", "run_id", "abc", "key", "value"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q does not contain %q", out, want)
		}
	}
}

func TestNewFallsBackToDiscard(t *testing.T) {
	logger := New(UseOutputFunc(func() (io.Writer, error) {
		return nil, os.ErrPermission
	}))
	logger.Info("dropped")
	if !logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("logger should still be usable")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{in: "debug", want: DebugLevel},
		{in: " WARN ", want: WarnLevel},
		{in: "error", want: ErrorLevel},
		{in: "loud", want: InfoLevel, wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
