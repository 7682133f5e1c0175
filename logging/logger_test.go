package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestLogger(level zapcore.Level, dev bool) (*Logger, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	l := NewLogger(Options{Level: level, Development: dev, Stdout: &stdout, Stderr: &stderr})
	return l, &stdout, &stderr
}

func TestNewLogger_StatusLines(t *testing.T) {
	logger, stdout, stderr := newTestLogger(zapcore.InfoLevel, false)

	logger.Info("Generating image with prompt: 'a cat' at 512x512", zap.String("run_id", "abc"))
	logger.Debug("hidden at info level")
	logger.Warn("CUDA not available, using CPU (this will be slow)")
	logger.Error("boom")
	logger.Sync()

	if got, want := stdout.String(), "Generating image with prompt: 'a cat' at 512x512\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
	wantErr := "Warning: CUDA not available, using CPU (this will be slow)\nError: boom\n"
	if got := stderr.String(); got != wantErr {
		t.Errorf("stderr = %q, want %q", got, wantErr)
	}
}

func TestNewLogger_WithKeepsStatusLinesPlain(t *testing.T) {
	logger, stdout, _ := newTestLogger(zapcore.InfoLevel, false)
	logger.With(zap.String("run_id", "abc")).Named("hub").Info("Using cached model files")

	if got := stdout.String(); got != "Using cached model files\n" {
		t.Errorf("stdout = %q", got)
	}
}

func TestNewLogger_StatusLinesKeepLevelSplitOnChildLoggers(t *testing.T) {
	logger, stdout, stderr := newTestLogger(zapcore.InfoLevel, false)
	child := logger.With(zap.String("run_id", "abc")).Named("imagegen")

	child.Warn("Empty prompt provided. Using default prompt.")
	child.Infof("Generating image with prompt: '%s' at %dx%d", "x", 64, 64)
	child.Warnf("Model not found in cache, downloading: %v", errors.New("not cached"))
	logger.Sync()

	wantOut := "Generating image with prompt: 'x' at 64x64\n"
	if got := stdout.String(); got != wantOut {
		t.Errorf("stdout = %q, want %q", got, wantOut)
	}
	wantErr := "Warning: Empty prompt provided. Using default prompt.\n" +
		"Warning: Model not found in cache, downloading: not cached\n"
	if got := stderr.String(); got != wantErr {
		t.Errorf("stderr = %q, want %q", got, wantErr)
	}
}

func TestNewStatusCore(t *testing.T) {
	var stdout, stderr bytes.Buffer
	core := NewStatusCore(zapcore.InfoLevel, zapcore.NewConsoleEncoder(NewStatusEncoderConfig()),
		zapcore.AddSync(&stdout), zapcore.AddSync(&stderr))
	logger := NewWithCore(core)

	logger.Debug("dropped")
	logger.Info("info line", zap.String("dir", "/cache"))
	logger.Error("error line")

	if got := stdout.String(); got != "info line\n" {
		t.Errorf("stdout = %q", got)
	}
	if got := stderr.String(); got != "Error: error line\n" {
		t.Errorf("stderr = %q", got)
	}
}

func TestNewLogger_Development(t *testing.T) {
	logger, stdout, stderr := newTestLogger(zapcore.DebugLevel, true)

	logger.Debug("resolved snapshot", zap.String("dir", "/cache/snap"))
	logger.Warn("slow")
	logger.Sync()

	out := stdout.String()
	for _, want := range []string{"DEBUG", "resolved snapshot", `"dir": "/cache/snap"`, "logger_test.go"} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout %q missing %q", out, want)
		}
	}
	if !strings.Contains(stderr.String(), "WARN") {
		t.Errorf("stderr = %q, want WARN line", stderr.String())
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("color codes written with Color=false")
	}
}

func TestNewLogger_FileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sdgen.log")
	var stdout, stderr bytes.Buffer
	logger := NewLogger(Options{Level: zapcore.InfoLevel, Stdout: &stdout, Stderr: &stderr, FilePath: path})

	logger.With(zap.String("run_id", "r-1")).Info("Image generation completed", zap.Int("steps", 25))
	if err := logger.Sync(); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var entry map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(data), &entry); err != nil {
		t.Fatalf("log line is not JSON: %q (%v)", data, err)
	}
	if entry[FieldMessage] != "Image generation completed" {
		t.Errorf("message = %v", entry[FieldMessage])
	}
	if entry[FieldLevel] != "info" {
		t.Errorf("level = %v", entry[FieldLevel])
	}
	if entry["run_id"] != "r-1" || entry["steps"] != float64(25) {
		t.Errorf("fields = %v", entry)
	}
	if stdout.String() != "Image generation completed\n" {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestLogger_Redaction(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewWithCore(core)

	logger.Info("auth", zap.String("hf_token", "hf_abcdefghijklmnopqrstuvwxyz"))
	logger.Info("header", zap.String("value", "Bearer hf_abcdefghijklmnopqrstuvwxyz"))
	logger.Warn("fetch failed", zap.Error(errors.New("token=supersecretvalue rejected")))
	logger.Infof("using %s", "hf_abcdefghijklmnopqrstuvwxyz")
	logger.With(zap.String("authorization", "Bearer x")).Info("child")

	entries := logs.All()
	if len(entries) != 5 {
		t.Fatalf("got %d entries, want 5", len(entries))
	}
	for _, e := range entries {
		if strings.Contains(e.Message, "hf_abc") {
			t.Errorf("message leaked token: %q", e.Message)
		}
		for k, v := range e.ContextMap() {
			if s, ok := v.(string); ok && (strings.Contains(s, "hf_abc") || strings.Contains(s, "supersecret") || s == "Bearer x") {
				t.Errorf("field %s leaked secret: %q", k, s)
			}
		}
	}
}

func TestLogger_StatusfKeepsUserText(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewWithCore(core).With(zap.String("authorization", "Bearer abcdefghij"))

	prompt := "a vault door, password=opensesame123"
	logger.Statusf("Generating image with prompt: '%s' at %dx%d", prompt, 64, 64)
	logger.Infof("Generating image with prompt: '%s' at %dx%d", prompt, 64, 64)

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if !strings.Contains(entries[0].Message, prompt) {
		t.Errorf("Statusf altered the message: %q", entries[0].Message)
	}
	if strings.Contains(entries[1].Message, "opensesame123") {
		t.Errorf("Infof did not redact: %q", entries[1].Message)
	}
	if v := entries[0].ContextMap()["authorization"]; v != RedactedPlaceholder {
		t.Errorf("authorization field = %v, want redacted", v)
	}
}

func TestNewNop(t *testing.T) {
	logger := NewNop()
	logger.Info("discarded")
	logger.Warnf("discarded %d", 1)
	if err := logger.Sync(); err != nil {
		t.Errorf("Sync() error = %v", err)
	}
	var nilLogger *Logger
	if err := nilLogger.Sync(); err != nil {
		t.Errorf("nil Sync() error = %v", err)
	}
}
