package applaunch_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/giantswarm/applaunch"
)

// publicErrors lists every exported sentinel error.
func publicErrors() map[string]error {
	return map[string]error{
		"ErrAlreadyDisposed":  applaunch.ErrAlreadyDisposed,
		"ErrAlreadyLaunched":  applaunch.ErrAlreadyLaunched,
		"ErrEmptyCommand":     applaunch.ErrEmptyCommand,
		"ErrInvalidPort":      applaunch.ErrInvalidPort,
		"ErrInvalidURL":       applaunch.ErrInvalidURL,
		"ErrKilled":           applaunch.ErrKilled,
		"ErrMissingCommand":   applaunch.ErrMissingCommand,
		"ErrMissingURL":       applaunch.ErrMissingURL,
		"ErrNotLaunched":      applaunch.ErrNotLaunched,
		"ErrNotReady":         applaunch.ErrNotReady,
		"ErrProcessExited":    applaunch.ErrProcessExited,
		"ErrRetriesExhausted": applaunch.ErrRetriesExhausted,
		"ErrSignal":           applaunch.ErrSignal,
		"ErrSpawn":            applaunch.ErrSpawn,
		"ErrTimeout":          applaunch.ErrTimeout,
		"ErrURLAlreadySet":    applaunch.ErrURLAlreadySet,
	}
}

// TestPublicErrorConstants verifies that every exported error constant:
//   - implements the error interface (Error() returns a non-empty string)
//   - matches itself via errors.Is
//   - matches itself when wrapped via fmt.Errorf %w
//   - does not match a different error constant
func TestPublicErrorConstants(t *testing.T) {
	t.Parallel()

	for name, sentinel := range publicErrors() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if sentinel == nil {
				t.Fatalf("%s is nil", name)
			}
			if msg := sentinel.Error(); msg == "" {
				t.Errorf("%s.Error() returned empty string", name)
			}
			if !errors.Is(sentinel, sentinel) {
				t.Errorf("errors.Is(%s, %s) = false, want true (self-match)", name, name)
			}
			wrapped := fmt.Errorf("wrapping: %w", sentinel)
			if !errors.Is(wrapped, sentinel) {
				t.Errorf("errors.Is(wrapped %s) = false, want true", name)
			}
			if errors.Is(sentinel, errors.New("some other error")) {
				t.Errorf("errors.Is(%s, errors.New(...)) = true, want false", name)
			}
		})
	}
}

// TestPublicErrorConstantsAreDistinct verifies that no two exported error
// constants are equal to each other.
func TestPublicErrorConstantsAreDistinct(t *testing.T) {
	t.Parallel()

	all := publicErrors()
	for nameA, errA := range all {
		for nameB, errB := range all {
			if nameA != nameB && errors.Is(errA, errB) {
				t.Errorf("%s matches %s; sentinels must be distinct", nameA, nameB)
			}
		}
	}
}

func TestRetriesExhaustedMessage(t *testing.T) {
	t.Parallel()

	if got, want := applaunch.ErrRetriesExhausted.Error(), "retries limit reached"; got != want {
		t.Errorf("ErrRetriesExhausted = %q, want %q", got, want)
	}
}

func TestExitErrorAs(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("dispose: %w", &applaunch.ExitError{Name: "web", PID: 7, Code: 2})
	var exitErr *applaunch.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("errors.As(%v) = false, want true", err)
	}
	if exitErr.Code != 2 {
		t.Errorf("Code = %d, want 2", exitErr.Code)
	}
}
