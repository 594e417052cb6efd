// Package sentinel provides an immutable error type for sentinel error declarations.
//
// Errors declared with errors.New live in package variables that any importer
// can reassign. Error is a string type, so applaunch sentinels such as
// ErrAlreadyDisposed or ErrRetriesExhausted can be declared as constants while
// still matching through wrapped chains with errors.Is.
package sentinel
