package process

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/giantswarm/applaunch/internal/fileutil"
)

// LogFiles manages stdout/stderr file handles for a process.
type LogFiles struct {
	stdoutFile *os.File
	stderrFile *os.File
	dir        string
	stdoutName string // e.g., "web-3f2a9c1e-stdout.log"
	stderrName string
}

// create creates stdout and stderr log files.
// Both files are assigned to the struct only after both creates succeed.
func (l *LogFiles) create() error {
	stdoutFile, err := os.Create(l.StdoutPath())
	if err != nil {
		return fmt.Errorf("create stdout log: %w", err)
	}
	stderrFile, err := os.Create(l.StderrPath())
	if err != nil {
		_ = stdoutFile.Close()
		return fmt.Errorf("create stderr log: %w", err)
	}
	l.stdoutFile = stdoutFile
	l.stderrFile = stderrFile
	return nil
}

// Close closes both log file handles and nils them to prevent double-close.
func (l *LogFiles) Close() {
	if l.stdoutFile != nil {
		_ = l.stdoutFile.Close()
		l.stdoutFile = nil
	}
	if l.stderrFile != nil {
		_ = l.stderrFile.Close()
		l.stderrFile = nil
	}
}

// StdoutPath returns the path to the stdout log file.
func (l *LogFiles) StdoutPath() string {
	return filepath.Join(l.dir, l.stdoutName)
}

// StderrPath returns the path to the stderr log file.
func (l *LogFiles) StderrPath() string {
	return filepath.Join(l.dir, l.stderrName)
}

// NewLogFiles creates dir if needed and opens the log files for a process.
// The prefix is used to generate file names (e.g., "web-1" -> "web-1-stdout.log").
func NewLogFiles(dir, prefix string) (LogFiles, error) {
	if err := fileutil.EnsureDir(dir); err != nil {
		return LogFiles{}, err
	}
	l := LogFiles{
		dir:        dir,
		stdoutName: prefix + "-stdout.log",
		stderrName: prefix + "-stderr.log",
	}
	if err := l.create(); err != nil {
		return LogFiles{}, err
	}
	return l, nil
}

// outputs combines the optional log files with the optional echo writers.
// A nil result means the stream is discarded (exec connects it to the null
// device).
func outputs(files LogFiles, echoStdout, echoStderr io.Writer) (stdout, stderr io.Writer) {
	return combine(files.stdoutFile, echoStdout), combine(files.stderrFile, echoStderr)
}

func combine(f *os.File, w io.Writer) io.Writer {
	switch {
	case f != nil && w != nil:
		return io.MultiWriter(f, w)
	case f != nil:
		return f
	default:
		return w
	}
}
