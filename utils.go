// Package main - utils.go
//
// This file provides utility functions and helper structures used throughout
// the bot: performance timing, panic-safe goroutines, and math helpers.
//
// Timer objects measure the hot paths of the tick loop:
//   - Frame capture (target: 5-30ms)
//   - Template matching (target: 5-20ms)
//   - Whole tick (must stay under the tick interval)
//
// SafeGo Usage:
// All long-running goroutines use SafeGo to prevent panics from crashing
// the entire application. Panics are logged and the goroutine terminates
// while the rest of the bot continues operating.
package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Timer provides performance timing functionality
type Timer struct {
	name      string
	startTime time.Time
}

// NewTimer creates and starts a new timer with given name
func NewTimer(name string) *Timer {
	return &Timer{
		name:      name,
		startTime: time.Now(),
	}
}

// Elapsed returns the elapsed time since timer creation
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.startTime)
}

// Stop logs the elapsed time and returns the duration
func (t *Timer) Stop() time.Duration {
	elapsed := t.Elapsed()
	log.Debug().Str("timer", t.name).Dur("elapsed", elapsed).Msg("timer stopped")
	return elapsed
}

// FormatDuration formats a duration into human-readable string
func FormatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}

// Clamp restricts a value between min and max
func Clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// ClampFloat restricts a float value between min and max
func ClampFloat(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Clamp01 restricts a float value to [0, 1]
func Clamp01(value float64) float64 {
	return ClampFloat(value, 0, 1)
}

// SafeGo runs a function in a goroutine with panic recovery
func SafeGo(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Msg("recovered panic in goroutine")
			}
		}()
		fn()
	}()
}
