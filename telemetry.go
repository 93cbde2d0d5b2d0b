// Package main - telemetry.go
//
// This file writes the per-tick session trace as JSON lines.
//
// Each record carries enough to replay a session offline: the capture rect,
// the indicator and fish estimates, the match confidence, and the decided
// action. Writes are best effort: a failed write logs once and disables the
// sink rather than disturbing the tick loop.
package main

import (
	"os"
	"time"

	"github.com/bytedance/sonic"
)

// TickRecord is one telemetry line.
type TickRecord struct {
	Timestamp    time.Time `json:"ts"`
	Region       Bounds    `json:"region"`
	IndicatorPos float64   `json:"indicator"`
	FishPos      float64   `json:"fish"`
	Confidence   float64   `json:"confidence"`
	Action       string    `json:"action"`
	Intensity    float64   `json:"intensity"`
}

// Telemetry appends tick records to a JSONL file. A nil *Telemetry is a
// valid no-op sink.
type Telemetry struct {
	file     *os.File
	disabled bool
}

// NewTelemetry opens the trace file for appending, nil when path is empty.
func NewTelemetry(path string) (*Telemetry, error) {
	if path == "" {
		return nil, nil
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	return &Telemetry{file: file}, nil
}

// Record appends one line. Never returns an error; on failure the sink
// disables itself.
func (t *Telemetry) Record(rec TickRecord) {
	if t == nil || t.disabled {
		return
	}
	line, err := sonic.Marshal(rec)
	if err != nil {
		sesLog.Warn().Err(err).Msg("telemetry encode failed, disabling trace")
		t.disabled = true
		return
	}
	if _, err := t.file.Write(append(line, '\n')); err != nil {
		sesLog.Warn().Err(err).Msg("telemetry write failed, disabling trace")
		t.disabled = true
	}
}

// Close flushes and closes the trace file.
func (t *Telemetry) Close() {
	if t == nil || t.file == nil {
		return
	}
	t.file.Close()
}
