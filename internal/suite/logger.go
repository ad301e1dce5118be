package suite

import (
	"fmt"
	"io"
	"os"
)

// streamLogger implements TestLogger for CLI mode
type streamLogger struct {
	out     io.Writer
	errOut  io.Writer
	verbose bool
	debug   bool
}

// NewStdoutLogger creates a logger that outputs to stdout/stderr
func NewStdoutLogger(verbose, debug bool) TestLogger {
	return NewWriterLogger(os.Stdout, os.Stderr, verbose, debug)
}

// NewWriterLogger creates a logger writing to the given streams.
func NewWriterLogger(out, errOut io.Writer, verbose, debug bool) TestLogger {
	return &streamLogger{out: out, errOut: errOut, verbose: verbose, debug: debug}
}

func (l *streamLogger) Debug(format string, args ...interface{}) {
	if l.debug {
		fmt.Fprintf(l.out, format, args...)
	}
}

func (l *streamLogger) Info(format string, args ...interface{}) {
	if l.verbose || l.debug {
		fmt.Fprintf(l.out, format, args...)
	}
}

func (l *streamLogger) Error(format string, args ...interface{}) {
	fmt.Fprintf(l.errOut, format, args...)
}

func (l *streamLogger) IsDebugEnabled() bool {
	return l.debug
}

func (l *streamLogger) IsVerboseEnabled() bool {
	return l.verbose
}

// silentLogger implements TestLogger for the MCP server, where stdout is
// the protocol stream.
type silentLogger struct{}

// NewSilentLogger creates a logger that suppresses all output
func NewSilentLogger() TestLogger {
	return silentLogger{}
}

func (silentLogger) Debug(string, ...interface{}) {}
func (silentLogger) Info(string, ...interface{})  {}
func (silentLogger) Error(string, ...interface{}) {}
func (silentLogger) IsDebugEnabled() bool         { return false }
func (silentLogger) IsVerboseEnabled() bool       { return false }
