// Package main - data.go
//
// This file defines core data structures used throughout the bot application.
// It provides geometric primitives, the calibrated region model, detection and
// control value types, and runtime statistics.
//
// Major Data Categories:
//
// 1. Geometric Types:
//    - Point: 2D screen coordinates
//    - Bounds: absolute pixel rectangles (window bounds, capture rects)
//    - RectF: normalized rectangles in [0,1] window space
//
// 2. Calibration:
//    - Region: a named normalized rectangle resolved against live window
//      bounds via ToAbsolute. Normalized storage keeps calibrations valid
//      across window moves and resizes.
//
// 3. Detection and Control:
//    - MatchResult: one template match with score and location
//    - ArrowDirection: fish direction hint (left/right/none)
//    - MinigameState: per-tick estimate consumed by the controller
//    - ActionKind / ActionCommand: the corrective input to perform
//
// 4. Statistics:
//    - Statistics: completed/failed minigame counts, uptime
//
// Thread Safety:
// Statistics uses RWMutex for concurrent access. All other types are value
// types and should be copied when shared.
package main

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"
)

// ErrRegionInvalid reports a calibrated region that does not resolve to a
// usable pixel rectangle inside the current window bounds.
var ErrRegionInvalid = errors.New("calibrated region invalid")

// Point represents a 2D coordinate in screen space.
type Point struct {
	X int
	Y int
}

// Distance calculates Euclidean distance to another point
func (p Point) Distance(other Point) float64 {
	dx := float64(p.X - other.X)
	dy := float64(p.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// Bounds represents a rectangular area in absolute pixels
type Bounds struct {
	X int // Top-left X coordinate
	Y int // Top-left Y coordinate
	W int // Width
	H int // Height
}

// Center returns the center point of the bounds
func (b Bounds) Center() Point {
	return Point{
		X: b.X + b.W/2,
		Y: b.Y + b.H/2,
	}
}

// Contains checks if a point is within the bounds
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.X && p.X <= b.X+b.W &&
		p.Y >= b.Y && p.Y <= b.Y+b.H
}

// Empty reports whether the bounds have no area
func (b Bounds) Empty() bool {
	return b.W <= 0 || b.H <= 0
}

// RectF is a rectangle in normalized window coordinates, all fields in [0,1].
type RectF struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Valid reports whether the rectangle lies inside the unit square with
// positive area.
func (r RectF) Valid() bool {
	return r.W > 0 && r.H > 0 &&
		r.X >= 0 && r.Y >= 0 &&
		r.X+r.W <= 1 && r.Y+r.H <= 1
}

// Region is a calibrated, named screen area stored in normalized coordinates
// relative to the game window.
type Region struct {
	Name string `json:"name"`
	Rect RectF  `json:"rect"`
}

// ToAbsolute resolves the region against live window bounds and a DPI scale
// factor, producing an absolute pixel rectangle. Resolution is pure: the same
// inputs always yield the same output.
func (r Region) ToAbsolute(win Bounds, dpiScale float64) (Bounds, error) {
	if !r.Rect.Valid() {
		return Bounds{}, fmt.Errorf("region %q: rect %+v outside unit square: %w", r.Name, r.Rect, ErrRegionInvalid)
	}
	if win.Empty() || dpiScale <= 0 {
		return Bounds{}, fmt.Errorf("region %q: window %+v scale %.2f: %w", r.Name, win, dpiScale, ErrRegionInvalid)
	}

	abs := Bounds{
		X: win.X + int(r.Rect.X*float64(win.W)*dpiScale),
		Y: win.Y + int(r.Rect.Y*float64(win.H)*dpiScale),
		W: int(r.Rect.W * float64(win.W) * dpiScale),
		H: int(r.Rect.H * float64(win.H) * dpiScale),
	}
	if abs.Empty() {
		return Bounds{}, fmt.Errorf("region %q resolves to empty rect: %w", r.Name, ErrRegionInvalid)
	}
	return abs, nil
}

// MatchResult is a single template match inside a captured frame.
// Location is relative to the frame origin, Score is the normalized
// cross-correlation peak in [0,1].
type MatchResult struct {
	Template string
	Score    float64
	Location Point
	Scale    float64
}

// ArrowDirection is the direction hint shown next to the fish marker.
type ArrowDirection int

const (
	ArrowNone ArrowDirection = iota
	ArrowLeft
	ArrowRight
)

func (d ArrowDirection) String() string {
	switch d {
	case ArrowLeft:
		return "left"
	case ArrowRight:
		return "right"
	default:
		return "none"
	}
}

// MinigameState is the per-tick estimate of the minigame bar. Positions are
// normalized along the bar axis: 0 is the left edge, 1 the right edge.
type MinigameState struct {
	IndicatorPos float64
	FishPos      float64
	Arrow        ArrowDirection
	Stable       bool
	Confidence   float64
}

// ActionKind enumerates the corrective inputs the controller can emit.
type ActionKind int

const (
	ActionStabilize ActionKind = iota
	ActionTrackLeft
	ActionTrackRight
	ActionCorrectLeft
	ActionCorrectRight
	ActionPursueLeft
	ActionPursueRight
)

func (k ActionKind) String() string {
	switch k {
	case ActionStabilize:
		return "stabilize"
	case ActionTrackLeft:
		return "track-left"
	case ActionTrackRight:
		return "track-right"
	case ActionCorrectLeft:
		return "correct-left"
	case ActionCorrectRight:
		return "correct-right"
	case ActionPursueLeft:
		return "pursue-left"
	case ActionPursueRight:
		return "pursue-right"
	default:
		return "unknown"
	}
}

// MovesLeft reports whether the action drives the indicator left.
func (k ActionKind) MovesLeft() bool {
	return k == ActionTrackLeft || k == ActionCorrectLeft || k == ActionPursueLeft
}

// MovesRight reports whether the action drives the indicator right.
func (k ActionKind) MovesRight() bool {
	return k == ActionTrackRight || k == ActionCorrectRight || k == ActionPursueRight
}

// ActionCommand is one controller decision. Intensity in [0,1] scales hold
// duration; CounterStrafe is the brief opposite input applied after the main
// hold to cancel indicator momentum.
type ActionCommand struct {
	Kind          ActionKind
	Intensity     float64
	Duration      time.Duration
	CounterStrafe time.Duration
}

// Statistics holds runtime statistics
type Statistics struct {
	StartTime      time.Time
	CompletedCount int
	FailedCount    int
	LastCompleted  time.Time
	mu             sync.RWMutex
}

// NewStatistics creates new statistics
func NewStatistics() *Statistics {
	return &Statistics{
		StartTime: time.Now(),
	}
}

// AddCompleted records a finished minigame
func (s *Statistics) AddCompleted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CompletedCount++
	s.LastCompleted = time.Now()
}

// AddFailed records a minigame that ended in a fault
func (s *Statistics) AddFailed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FailedCount++
}

// GetStats returns formatted statistics
func (s *Statistics) GetStats() (completed, failed int, uptime string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.CompletedCount, s.FailedCount, FormatDuration(time.Since(s.StartTime))
}
