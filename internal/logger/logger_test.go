package logger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Faultbox/vvardenfell/pkg/dataerr"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	Sync()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	return string(content)
}

func TestLogRotation(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "load.log")

	// 1MB is the smallest size lumberjack rotates at.
	cfg := FileConfig{Path: logFile, MaxSizeMB: 1, MaxBackups: 2, MaxAgeDays: 1}
	if err := InitWithFileConfig("debug", cfg, false); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	defer Sync()

	payload := strings.Repeat("r", 200)
	for i := 0; i < 15000; i++ {
		Sugar.Debugf("record %d skipped: %s", i, payload)
	}
	Sync()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read log dir: %v", err)
	}
	var rotated []string
	for _, e := range entries {
		if e.Name() != "load.log" && strings.HasPrefix(e.Name(), "load-") {
			rotated = append(rotated, e.Name())
		}
	}
	if len(rotated) == 0 {
		t.Fatalf("expected rotated log files, found %v", entries)
	}
	for _, name := range rotated {
		// load-YYYY-MM-DDTHH-MM-SS.SSS.log
		if !strings.Contains(name, "-20") || !strings.HasSuffix(name, ".log") {
			t.Errorf("rotated file %s has unexpected name", name)
		}
	}
}

func TestLogLevels(t *testing.T) {
	dir := t.TempDir()
	all := []string{"DEBUG", "INFO", "WARN", "ERROR"}

	tests := []struct {
		level string
		first int // index into all of the first level written
	}{
		{"debug", 0},
		{"", 1},
		{"info", 1},
		{"warn", 2},
		{"error", 3},
	}

	for _, tt := range tests {
		name := tt.level
		if name == "" {
			name = "default"
		}
		t.Run(name, func(t *testing.T) {
			logFile := filepath.Join(dir, name+".log")
			if err := InitWithFileConfig(tt.level, FileConfig{Path: logFile, MaxSizeMB: 10}, false); err != nil {
				t.Fatalf("failed to init logger: %v", err)
			}

			Debug("debug message")
			Info("info message")
			Warn("warn message")
			Error("error message")

			content := readLog(t, logFile)
			for i, lvl := range all {
				got := strings.Contains(content, lvl)
				if want := i >= tt.first; got != want {
					t.Errorf("level %s present=%v, want %v", lvl, got, want)
				}
			}
		})
	}
}

func TestInvalidLevel(t *testing.T) {
	before := Log
	if err := InitWithFileConfig("verbose", FileConfig{}, false); err == nil {
		t.Fatal("expected error for unknown level")
	}
	if Log != before {
		t.Error("failed init replaced the global logger")
	}
}

func TestNewWithoutOutputs(t *testing.T) {
	l, err := New("info", FileConfig{}, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if l.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("logger without outputs should be a no-op")
	}
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("/tmp/vvardenfell.log")
	want := FileConfig{
		Path:       "/tmp/vvardenfell.log",
		MaxSizeMB:  20,
		MaxBackups: 5,
		MaxAgeDays: 14,
		Compress:   true,
	}
	if cfg != want {
		t.Errorf("DefaultFileConfig = %+v, want %+v", cfg, want)
	}
}

func TestNamed(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "named.log")
	if err := InitWithFileConfig("info", FileConfig{Path: logFile, MaxSizeMB: 1}, false); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}

	Named("snapshot").Info("cache hit")

	content := readLog(t, logFile)
	if !strings.Contains(content, "snapshot") || !strings.Contains(content, "cache hit") {
		t.Errorf("expected component name in log output, got %q", content)
	}
}

func fieldMap(fields []zap.Field) map[string]any {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		f.AddTo(enc)
	}
	return enc.Fields
}

func TestErrorFields(t *testing.T) {
	bounds := &dataerr.BoundsError{Offset: 12, Need: 4, Len: 14}

	tests := []struct {
		name string
		err  error
		want map[string]any
	}{
		{
			name: "plain",
			err:  errors.New("boom"),
			want: map[string]any{},
		},
		{
			name: "format",
			err:  fmt.Errorf("loading: %w", dataerr.Format("Morrowind.esm", "CELL.FRMR", 1024, bounds)),
			want: map[string]any{
				"file":        "Morrowind.esm",
				"record":      "CELL.FRMR",
				"offset":      int64(1024),
				"read_offset": int64(12),
				"read_len":    int64(4),
			},
		},
		{
			name: "format without tag",
			err:  dataerr.Format("meshes\\x.nif", "", 40, errors.New("bad")),
			want: map[string]any{"file": "meshes\\x.nif", "offset": int64(40)},
		},
		{
			name: "io",
			err:  &dataerr.IOError{Path: "Tribunal.esm", Err: os.ErrNotExist},
			want: map[string]any{"file": "Tribunal.esm"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fieldMap(ErrorFields(tt.err))
			if got["error"] != tt.err.Error() {
				t.Errorf("error field = %v, want %q", got["error"], tt.err.Error())
			}
			delete(got, "error")
			if len(got) != len(tt.want) {
				t.Fatalf("fields = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("field %s = %#v, want %#v", k, got[k], v)
				}
			}
		})
	}
}
