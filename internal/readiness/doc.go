// Package readiness answers "is the application reachable yet?" with bounded
// patience.
//
// WaitReady is the generic poller: it races a retry loop against a single
// absolute deadline and, optionally, against the process exiting. WaitForPort
// builds on it with a TCP connect probe and the default budget of a 10s
// timeout, a 500ms retry interval and 5 retries.
package readiness
