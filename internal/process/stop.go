package process

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"syscall"
	"time"
)

// DefaultStopTimeout is how long Dispose waits for a process to honor SIGTERM
// before escalating to SIGKILL.
const DefaultStopTimeout = 10 * time.Second

// killDrainTimeout is the hard upper bound for waiting on the exit
// notification once the process is known to be gone or has been sent SIGKILL.
// SIGKILL cannot be caught, so this only fires if cmd.Wait itself is stuck.
const killDrainTimeout = 10 * time.Second

// drainExited waits for exited to close, giving up after timeout.
// It reports whether the exit was observed.
func drainExited(exited <-chan struct{}, timeout time.Duration) bool {
	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case <-exited:
		return true
	case <-t.C:
		return false
	}
}

// stop implements the dispose sequence for a launched process:
//
//  1. If the process already exited, report its own exit status.
//  2. Send SIGTERM. If the process vanished in the meantime, drain and
//     report its own exit status; any other delivery failure is returned.
//  3. Wait for exit up to timeout, then SIGKILL and wait killDrainTimeout.
func (h *Handle) stop(cmd *exec.Cmd, timeout time.Duration) error {
	pid := cmd.Process.Pid

	select {
	case <-h.exited:
		h.log.Debug("process exited before dispose", "pid", pid)
		return h.exitStatus()
	default:
	}

	// Marked before delivery so Err never observes a death by this signal
	// without the mark.
	h.setTermSent(true)
	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
		h.setTermSent(false)
		if !errors.Is(err, os.ErrProcessDone) {
			return fmt.Errorf("%s (pid %d): %w: %w", h.name, pid, ErrSignal, err)
		}
		if !drainExited(h.exited, killDrainTimeout) {
			return fmt.Errorf("%s (pid %d): timed out draining exit status after signal failure", h.name, pid)
		}
		return h.exitStatus()
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-h.exited:
		return h.exitStatus(syscall.SIGTERM)
	case <-timer.C:
	}

	h.log.Warn("process ignored SIGTERM; sending SIGKILL", "pid", pid, "timeout", timeout)
	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("%s (pid %d): %w: %w", h.name, pid, ErrSignal, err)
	}
	if !drainExited(h.exited, killDrainTimeout) {
		return fmt.Errorf("%s (pid %d): timed out waiting for exit after SIGKILL", h.name, pid)
	}

	err := h.exitStatus(syscall.SIGTERM)
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Signal == syscall.SIGKILL {
		return fmt.Errorf("%s (pid %d): %w (stop timeout %s)", h.name, pid, ErrKilled, timeout)
	}
	return err
}

// exitStatus interprets the cmd.Wait result. It must only be called after
// exited is closed. Deaths by one of the expected signals, which applaunch
// sent itself, count as a clean exit.
func (h *Handle) exitStatus(expected ...syscall.Signal) error {
	return interpretExit(h.waitErr, h.name, expected...)
}

func interpretExit(err error, name string, expected ...syscall.Signal) error {
	if err == nil {
		return nil
	}
	// The process exited successfully but a grandchild kept the output
	// pipes open past outputWaitDelay.
	if errors.Is(err, exec.ErrWaitDelay) {
		return nil
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return fmt.Errorf("%s: %w", name, err)
	}
	result := &ExitError{Name: name, PID: exitErr.Pid(), Code: exitErr.ExitCode()}
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		sig := status.Signal()
		if slices.Contains(expected, sig) {
			return nil
		}
		result.Signal = sig
	}
	return result
}
