package applaunch

import (
	"log/slog"

	"github.com/giantswarm/applaunch/internal/core"
)

// SetLogger replaces the package-level logger used by applaunch.
// This allows applications to integrate applaunch logging with their own
// logging infrastructure. The provided logger should already have any
// desired attributes; applaunch will not add additional attributes.
//
// If l is nil, the logger resets to the default: slog.Default() with a
// "component" attribute, re-derived on the next call and then cached. Call
// SetLogger(nil) after slog.SetDefault() to pick up changes.
//
// SetLogger is safe to call concurrently with other applaunch operations.
// Processes keep the logger that was current when they were launched.
//
// Example:
//
//	applaunch.SetLogger(myLogger.With("component", "applaunch"))
func SetLogger(l *slog.Logger) {
	core.SetLogger(l)
}
