package logging

import (
	"errors"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level, format string
		enabled       zapcore.Level
		disabled      zapcore.Level
	}{
		{"info", "console", zapcore.InfoLevel, zapcore.DebugLevel},
		{"debug", "", zapcore.DebugLevel, zapcore.DebugLevel - 1},
		{"warn", "json", zapcore.WarnLevel, zapcore.InfoLevel},
	}
	for _, tt := range tests {
		l, err := New(tt.level, tt.format)
		if err != nil {
			t.Fatalf("%s/%s: %v", tt.level, tt.format, err)
		}
		if !l.Core().Enabled(tt.enabled) {
			t.Errorf("%s: expected %s enabled", tt.level, tt.enabled)
		}
		if l.Core().Enabled(tt.disabled) {
			t.Errorf("%s: expected %s disabled", tt.level, tt.disabled)
		}
	}
}

func TestNewErrors(t *testing.T) {
	if _, err := New("loud", "console"); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, err := New("info", "xml"); !errors.Is(err, ErrFormat) {
		t.Errorf("expected ErrFormat, got %v", err)
	}
}
