package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
)

type level int

const (
	levelVerbose level = iota
	levelInfo
	levelWarn
	levelError
)

var prefixes = [...]string{
	levelVerbose: "[VERBOSE] ",
	levelInfo:    "",
	levelWarn:    "[WARN] ",
	levelError:   "[ERROR] ",
}

// ConsoleLogger writes one line per message. Verbose lines are dropped
// unless verbose is set. Safe for concurrent use.
type ConsoleLogger struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool
}

// NewConsoleLogger logs to stderr.
func NewConsoleLogger(verbose bool) *ConsoleLogger {
	return NewConsoleLoggerTo(os.Stderr, verbose)
}

func NewConsoleLoggerTo(out io.Writer, verbose bool) *ConsoleLogger {
	return &ConsoleLogger{out: out, verbose: verbose}
}

func (l *ConsoleLogger) Verbose(format string, args ...interface{}) {
	if l.verbose {
		l.log(levelVerbose, format, args)
	}
}

func (l *ConsoleLogger) Info(format string, args ...interface{}) {
	l.log(levelInfo, format, args)
}

func (l *ConsoleLogger) Warn(format string, args ...interface{}) {
	l.log(levelWarn, format, args)
}

func (l *ConsoleLogger) Error(format string, args ...interface{}) {
	l.log(levelError, format, args)
}

// log treats format literally when there are no args, so a stray % in a
// location name is printed as is.
func (l *ConsoleLogger) log(lvl level, format string, args []interface{}) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	io.WriteString(l.out, prefixes[lvl]+msg+"\n") //nolint:errcheck
}
