package core

import (
	"log/slog"
	"sync/atomic"
)

// current holds the logger returned by Logger. It is either the logger passed
// to SetLogger or, once derived, slog.Default() tagged with the applaunch
// component. nil means neither exists yet.
var current atomic.Pointer[slog.Logger]

// Logger returns the applaunch logger. Without a SetLogger call it derives
// one from slog.Default() on first use and keeps it, so a later
// slog.SetDefault is only picked up after SetLogger(nil).
func Logger() *slog.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	derived := slog.Default().With("component", "applaunch")
	if current.CompareAndSwap(nil, derived) {
		return derived
	}
	// Lost to a concurrent SetLogger or derivation.
	if l := current.Load(); l != nil {
		return l
	}
	return derived
}

// SetLogger installs l for all later launches. nil drops the installed logger;
// the next Logger call derives a fresh default.
func SetLogger(l *slog.Logger) {
	current.Store(l)
}
