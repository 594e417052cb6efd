// Package fileutil provides the directory helpers applaunch needs for process
// log files and port lock files.
package fileutil
