// Package main - logging.go
//
// This file sets up structured logging for the bot.
//
// All output goes through zerolog with two sinks: a console writer for
// interactive runs and Debug.log for post-mortem analysis. The log file is
// truncated on startup so each session starts with a clean trace.
//
// Each subsystem gets its own sub-logger tagged with a "module" field
// (window, capture, detect, estimator, actuator, session, tray)
// so a session trace can be filtered per concern.
package main

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const logFileName = "Debug.log"

// Per-subsystem loggers. Initialized by InitLogging before any goroutine
// starts, read-only afterwards.
var (
	winLog  zerolog.Logger
	capLog  zerolog.Logger
	detLog  zerolog.Logger
	estLog  zerolog.Logger
	actLog  zerolog.Logger
	sesLog  zerolog.Logger
	trayLog zerolog.Logger
)

// InitLogging configures the global logger and the module sub-loggers.
// When debug is false the file sink still records debug lines but the
// console only shows info and above.
func InitLogging(debug bool) error {
	file, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	var consoleSink io.Writer = console
	if !debug {
		consoleSink = levelFilter{w: console, min: zerolog.InfoLevel}
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(file, consoleSink)).
		Level(zerolog.DebugLevel).
		With().Timestamp().Logger()

	winLog = log.With().Str("module", "window").Logger()
	capLog = log.With().Str("module", "capture").Logger()
	detLog = log.With().Str("module", "detect").Logger()
	estLog = log.With().Str("module", "estimator").Logger()
	actLog = log.With().Str("module", "actuator").Logger()
	sesLog = log.With().Str("module", "session").Logger()
	trayLog = log.With().Str("module", "tray").Logger()

	return nil
}

// levelFilter drops console lines below min. The file sink keeps everything.
type levelFilter struct {
	w   io.Writer
	min zerolog.Level
}

func (f levelFilter) Write(p []byte) (int, error) {
	return f.w.Write(p)
}

func (f levelFilter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if l < f.min {
		return len(p), nil
	}
	return f.w.Write(p)
}
