package core

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// Not parallel: mutates the package logger.
func TestSetLogger(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })

	var buf bytes.Buffer
	custom := slog.New(slog.NewTextHandler(&buf, nil))
	SetLogger(custom)
	if Logger() != custom {
		t.Fatal("Logger() did not return the custom logger")
	}
	Logger().Info("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("custom logger output = %q, want it to contain %q", buf.String(), "hello")
	}

	SetLogger(nil)
	first := Logger()
	if first == nil || first == custom {
		t.Fatal("SetLogger(nil) did not reset to the default logger")
	}
	if Logger() != first {
		t.Error("default logger is not cached between calls")
	}
}

// Not parallel: replaces slog's default logger.
func TestSetLogger_NilFollowsSlogDefault(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(previous)
		SetLogger(nil)
	})

	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	SetLogger(nil)

	Logger().Info("after reset")
	out := buf.String()
	if !strings.Contains(out, "after reset") || !strings.Contains(out, "component=applaunch") {
		t.Errorf("default logger output = %q, want the message with component=applaunch", out)
	}
}
