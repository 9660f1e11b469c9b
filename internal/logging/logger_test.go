package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{DEBUG, "DEBUG"},
		{INFO, "INFO"},
		{WARN, "WARN"},
		{ERROR, "ERROR"},
		{Level(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("Level.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSetLevel_FiltersBelowThreshold(t *testing.T) {
	origLevel := defaultLogger.level
	origOutput := defaultLogger.output
	defer func() {
		defaultLogger.level = origLevel
		defaultLogger.output = origOutput
	}()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(WARN)

	Debug("hidden debug")
	Info("hidden info")
	Warn("visible warn")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("messages below WARN should be filtered, got %q", out)
	}
	if !strings.Contains(out, "visible warn") {
		t.Errorf("WARN message should be logged, got %q", out)
	}
}

func TestWithField_DoesNotMutateDefault(t *testing.T) {
	logger := WithField("key", "value")

	if logger == nil {
		t.Fatal("WithField returned nil")
	}
	if logger.fields["key"] != "value" {
		t.Error("field not set correctly")
	}
	if len(defaultLogger.fields) > 0 {
		t.Error("should not modify default logger")
	}
}

func TestWithComponent(t *testing.T) {
	origOutput := defaultLogger.output
	defer func() { defaultLogger.output = origOutput }()

	var buf bytes.Buffer
	SetOutput(&buf)

	WithComponent("bridge").Info("device connected")

	out := buf.String()
	if !strings.Contains(out, "component=bridge") {
		t.Errorf("expected component field in output, got %q", out)
	}
}

func TestFields_SortedOutput(t *testing.T) {
	origOutput := defaultLogger.output
	defer func() { defaultLogger.output = origOutput }()

	var buf bytes.Buffer
	SetOutput(&buf)

	WithFields(map[string]interface{}{
		"zeta":  1,
		"alpha": 2,
	}).Info("ordered")

	out := buf.String()
	alphaIdx := strings.Index(out, "alpha=")
	zetaIdx := strings.Index(out, "zeta=")
	if alphaIdx < 0 || zetaIdx < 0 {
		t.Fatalf("fields missing from output: %q", out)
	}
	if alphaIdx > zetaIdx {
		t.Errorf("fields should be sorted, got %q", out)
	}
}
