package applaunch

import "net/url"

// Process is a launched application. It is returned by Launcher.Run once the
// application accepts connections on its URL's port.
type Process interface {
	// ID returns a unique identifier for this process, used in log
	// attributes and log file names.
	ID() string

	// PID returns the operating system process ID.
	PID() int

	// URL returns a copy of the resolved application URL. It returns
	// ErrNotReady while the URL has not been resolved, which can only be
	// observed from inside the launcher's URL function.
	URL() (*url.URL, error)

	// Exited returns a channel closed when the process has exited, whether
	// on its own or through Dispose.
	Exited() <-chan struct{}

	// Err reports how the process ended: nil while it is running, if it
	// exited with status 0 or if it died from the SIGTERM sent by Dispose.
	// An *ExitError otherwise.
	Err() error

	// Dispose terminates the process and waits until its exit is confirmed.
	//
	// A process that already exited with status 0 is not an error; one that
	// exited non-zero yields an *ExitError. A running process receives
	// SIGTERM; exit status 0 or death by that signal resolve cleanly. A
	// process still running after the stop timeout is killed and ErrKilled
	// is returned.
	//
	// Dispose may be called once. Later calls return ErrAlreadyDisposed.
	Dispose() error

	// Close calls Dispose, so a Process can be released with defer.
	Close() error
}
