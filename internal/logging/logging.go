// Package logging configures the logrus standard logger for hrdir and offers
// small helpers that tag every entry with the program's job name.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
)

// programName is attached to every entry as the "job" field.
var programName = filepath.Base(os.Args[0])

// Logger returns the base entry for the process, carrying the job field.
// Components add their own fields on top of it.
func Logger() *log.Entry {
	return log.WithField("job", programName)
}

// LogInfo logs an informational message.
func LogInfo(msg string) {
	Logger().Info(msg)
}

// LogError logs a recoverable error message.
func LogError(msg string) {
	Logger().Error(msg)
}

// LogPanic logs err at panic level and panics.
func LogPanic(err error) {
	Logger().Panic(err)
}

// HandleError logs err and exits with status 2.
func HandleError(err error) {
	Logger().Error(err)
	os.Exit(2)
}

// SetLevel sets the global log level from its name ("trace", "debug", "info",
// "warn", "error"). Matching is case-insensitive.
func SetLevel(name string) error {
	level, err := log.ParseLevel(strings.TrimSpace(name))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", name, err)
	}
	log.SetLevel(level)
	return nil
}

// PrepareLogs sends JSON formatted logs to stderr and, when logName is not
// empty, appends them to that file as well. Stdout stays reserved for command
// output.
func PrepareLogs(logName string) error {
	log.SetFormatter(&log.JSONFormatter{})
	if logName == "" {
		log.SetOutput(os.Stderr)
		return nil
	}
	logFile, err := os.OpenFile(logName, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	log.SetOutput(io.MultiWriter(os.Stderr, logFile))
	return nil
}
