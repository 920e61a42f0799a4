// Package log provides a global leveled logger. The library logs wire
// traffic at debug level and otherwise stays quiet; importers that
// need structured logging can leave the level at LevelNone and wrap
// the public API instead.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	LevelNone    Level = iota // Disables logging.
	LevelError                // Failures that are not expected during normal use.
	LevelWarning              // Failures that are expected to occur occasionally.
	LevelInfo                 // Major events.
	LevelDebug                // Request and response bodies.
)

var labels = map[Level]string{
	LevelDebug:   "[debug]",
	LevelInfo:    "[info ]",
	LevelWarning: "[warn ]",
	LevelError:   "[error]",
}

var (
	mu     sync.Mutex
	level  Level
	output io.Writer = os.Stderr
)

func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// SetOutput redirects log lines away from stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// LevelFromName maps "debug", "info", "warning" or "error" to a Level.
func LevelFromName(name string) (Level, error) {
	switch strings.ToLower(name) {
	case "none", "":
		return LevelNone, nil
	case "error":
		return LevelError, nil
	case "warning", "warn":
		return LevelWarning, nil
	case "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	}
	return LevelNone, fmt.Errorf("unrecognized log level %q", name)
}

func write(l Level, format string, a ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if l > level {
		return
	}
	msg := fmt.Sprintf(format, a...)
	fmt.Fprintf(output, "%s %s %s\n", time.Now().Format(time.RFC3339), labels[l], msg)
}

func Debug(format string, a ...interface{}) {
	write(LevelDebug, format, a...)
}

func Info(format string, a ...interface{}) {
	write(LevelInfo, format, a...)
}

func Warning(format string, a ...interface{}) {
	write(LevelWarning, format, a...)
}

func Error(format string, a ...interface{}) {
	write(LevelError, format, a...)
}
