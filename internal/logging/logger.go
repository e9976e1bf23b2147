package logging

import (
	"fmt"
	"io"
	"time"
)

// Logger provides leveled status output bound to a component name, plus
// lightweight timing helpers. Log lines are observational only and carry no
// control flow.
type Logger struct {
	Writer    io.Writer
	Component string
	Verbose   bool
}

func New(writer io.Writer, component string, verbose bool) Logger {
	return Logger{Writer: writer, Component: component, Verbose: verbose}
}

func (l Logger) log(level, format string, args ...any) {
	if l.Writer == nil {
		return
	}
	prefix := level
	if l.Component != "" {
		prefix = l.Component + " " + level
	}
	fmt.Fprintf(l.Writer, prefix+": "+format+"\n", args...)
}

func (l Logger) Infof(format string, args ...any) {
	l.log("info", format, args...)
}

func (l Logger) Successf(format string, args ...any) {
	l.log("success", format, args...)
}

func (l Logger) Errorf(format string, args ...any) {
	l.log("error", format, args...)
}

func (l Logger) Verbosef(format string, args ...any) {
	if !l.Verbose {
		return
	}
	l.Infof(format, args...)
}

// Measure returns a stop function that logs the elapsed time when called.
func (l Logger) Measure(label string) func() {
	if !l.Verbose {
		return func() {}
	}
	start := time.Now()
	return func() {
		elapsed := time.Since(start).Round(time.Millisecond)
		l.Verbosef("%s took %s", label, elapsed)
	}
}
