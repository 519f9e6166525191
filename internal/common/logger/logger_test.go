package logger

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestVerboseModeShowsDebugMessages(t *testing.T) {
	buf := new(bytes.Buffer)
	log := New(buf, LevelInfo)

	// Debug should not appear at Info level
	log.Debug("debug message before verbose")
	if strings.Contains(buf.String(), "debug message before verbose") {
		t.Error("Debug message should not appear at Info level")
	}

	log.SetVerbose(true)

	// Debug should now appear
	log.Debug("debug message after verbose")
	if !strings.Contains(buf.String(), "debug message after verbose") {
		t.Error("Debug message should appear when verbose is enabled")
	}
}

func TestQuietModeSuppressesInfoMessages(t *testing.T) {
	buf := new(bytes.Buffer)
	log := New(buf, LevelInfo)

	log.Info("info message before quiet")
	if !strings.Contains(buf.String(), "info message before quiet") {
		t.Error("Info message should appear at Info level")
	}

	buf.Reset()
	log.SetQuiet(true)

	log.Info("info message after quiet")
	if strings.Contains(buf.String(), "info message after quiet") {
		t.Error("Info message should not appear when quiet is enabled")
	}

	// Error should still appear in quiet mode
	log.Error("error message in quiet mode")
	if !strings.Contains(buf.String(), "error message in quiet mode") {
		t.Error("Error message should appear even in quiet mode")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		want  Level
		valid bool
	}{
		{"debug", LevelDebug, true},
		{"info", LevelInfo, true},
		{"warn", LevelWarn, true},
		{"error", LevelError, true},
		{"ERROR", LevelError, true},
		{"trace", LevelInfo, false},
		{"", LevelInfo, false},
	}

	for _, tt := range tests {
		got, ok := ParseLevel(tt.name)
		if got != tt.want || ok != tt.valid {
			t.Errorf("ParseLevel(%q) = (%v, %v), want (%v, %v)", tt.name, got, ok, tt.want, tt.valid)
		}
	}
}

func TestDiscardLoggerWritesNothing(t *testing.T) {
	log := Discard()
	// Must not panic and must not reach any output
	log.Error("dropped")
}

func TestConcurrentLogging(t *testing.T) {
	buf := new(bytes.Buffer)
	log := New(buf, LevelInfo)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			log.Info("message %d", n)
		}(i)
	}
	wg.Wait()

	lines := strings.Count(buf.String(), "\n")
	if lines != 10 {
		t.Errorf("expected 10 log lines, got %d", lines)
	}
}
