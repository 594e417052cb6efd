// Package core orchestrates a launch: it resolves the layered environment,
// spawns the process, assigns its URL and waits for the URL's port to accept
// connections. A process that fails any step after spawning is disposed
// before the error is returned, so a failed launch never leaks a process.
//
// Core also holds the replaceable package logger shared by all applaunch
// packages.
package core
