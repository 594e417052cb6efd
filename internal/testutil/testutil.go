// Package testutil provides shared helpers for the package tests: logging
// setup and a fake application implemented by re-executing the test binary.
//
// A test package wires the fake application in its TestMain:
//
//	func TestMain(m *testing.M) {
//		testutil.RunHelperIfRequested()
//		testutil.SetupTestLogging()
//		os.Exit(m.Run())
//	}
//
// and launches it with HelperCommand(ModeListen) or one of the other modes.
package testutil

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"
)

// SetupTestLogging configures slog based on the APPLAUNCH_LOG_LEVEL
// environment variable. This only affects test runs; the library itself
// inherits the application's logging config.
func SetupTestLogging() {
	levelStr := os.Getenv("APPLAUNCH_LOG_LEVEL")
	if levelStr == "" {
		levelStr = "WARN"
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(levelStr)); err != nil {
		level = slog.LevelWarn
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// HelperCommand returns a command line that runs the current test binary as
// the fake application in the given mode. Extra arguments are passed to the
// mode. The binary path is absolute, so the command works from any working
// directory.
func HelperCommand(mode string, args ...string) string {
	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}
	return strings.Join(append([]string{exe, helperArg, mode}, args...), " ")
}

// ProcessAlive reports whether a process with the given PID exists and has
// not been reaped. Signal 0 performs the permission and existence checks
// without delivering anything.
func ProcessAlive(pid int) bool {
	err := syscall.Kill(pid, 0)
	return err == nil || errors.Is(err, syscall.EPERM)
}

// RequireGone fails the test if pid is still alive after a short grace
// period.
func RequireGone(t *testing.T, pid int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if !ProcessAlive(pid) {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("process %d still alive after dispose", pid)
}
