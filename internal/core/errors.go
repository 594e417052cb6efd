package core

import "github.com/giantswarm/applaunch/internal/sentinel"

const (
	// ErrInvalidURL is returned when the resolved application URL is not an
	// absolute URL with a host and a usable port.
	ErrInvalidURL = sentinel.Error("invalid application URL")

	// ErrMissingCommand is returned when a launcher has no command factory.
	ErrMissingCommand = sentinel.Error("launcher has no command")

	// ErrMissingURL is returned when a launcher has no URL factory.
	ErrMissingURL = sentinel.Error("launcher has no URL")
)
