// Package process owns the lifecycle of a single application process.
//
// Handle spawns a whitespace-delimited command with an overlaid environment,
// exposes the URL slot filled in by the launcher, publishes the exit status
// through an Exited channel, and tears the process down with SIGTERM (then
// SIGKILL after a stop timeout) in Dispose. ParseCommand and MergeEnv are the
// building blocks Launch uses; LogFiles captures stdout/stderr on disk.
package process
