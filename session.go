// Package main - session.go
//
// This file implements the session coordinator with a state machine.
//
// State Machine States:
//   - Idle: nothing running, ready to start
//   - LocatingWindow: resolving the game window
//   - Calibrating: resolving regions, rod pre-check, engaging the bar
//   - Running: perception/decision/actuation tick loop
//   - Paused: loop idle with the button released
//   - Stopped / Error / Complete: terminal, drain back to Idle
//
// State Transitions:
//   Idle -> LocatingWindow (Start)
//   LocatingWindow -> Calibrating (window found)
//   LocatingWindow -> Error (lookup budget exhausted)
//   Calibrating -> Running (regions resolve)
//   Calibrating -> Error (region invalid)
//   Running -> Paused -> Running (Pause/Resume)
//   Running -> Complete (completion splash matched)
//   Running -> Error (detection lost, window vanished, actuator fault)
//   Running/Paused -> Stopped (Stop)
//   Stopped/Error/Complete -> Idle
//
// The whole loop runs on one dedicated goroutine started via SafeGo. Control
// requests are cooperative flags the loop checks at the top of each tick;
// nothing interrupts an in-flight input injection. Exactly one terminal
// error is recorded per session.
//
// Status events are emitted on a buffered channel with a non-blocking send.
// A slow consumer loses events, never stalls the loop.
package main

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// SessionState represents the coordinator's lifecycle state.
type SessionState int

const (
	StateIdle SessionState = iota
	StateLocatingWindow
	StateCalibrating
	StateRunning
	StatePaused
	StateStopped
	StateError
	StateComplete
)

// String returns the string representation of the state
func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateLocatingWindow:
		return "LocatingWindow"
	case StateCalibrating:
		return "Calibrating"
	case StateRunning:
		return "Running"
	case StatePaused:
		return "Paused"
	case StateStopped:
		return "Stopped"
	case StateError:
		return "Error"
	case StateComplete:
		return "Complete"
	default:
		return "Unknown"
	}
}

// StatusEvent is one observable progress update.
type StatusEvent struct {
	State      SessionState
	LastAction string
	Confidence float64
	Timestamp  time.Time
}

// Session coordinates one minigame run over the injected capabilities.
type Session struct {
	cfg       Config
	locator   *WindowLocator
	capturer  FrameCapturer
	matcher   Matcher
	actuator  *Actuator
	estimator *Estimator
	telemetry *Telemetry
	stats     *Statistics

	events chan StatusEvent

	stopFlag  atomic.Bool
	pauseFlag atomic.Bool

	mu      sync.Mutex
	state   SessionState
	lastErr error
	running bool
	done    chan struct{}
}

// NewSession wires a session from its capabilities. Capabilities are chosen
// once here; the loop never re-negotiates them.
func NewSession(cfg Config, locator *WindowLocator, capturer FrameCapturer, matcher Matcher,
	actuator *Actuator, telemetry *Telemetry, stats *Statistics) *Session {
	return &Session{
		cfg:       cfg,
		locator:   locator,
		capturer:  capturer,
		matcher:   matcher,
		actuator:  actuator,
		estimator: NewEstimator(cfg.Estimator),
		telemetry: telemetry,
		stats:     stats,
		events:    make(chan StatusEvent, 64),
		state:     StateIdle,
	}
}

// Events returns the status stream. Events are dropped, not queued, when the
// consumer lags.
func (s *Session) Events() <-chan StatusEvent {
	return s.events
}

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the terminal error of the most recent run, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Start launches the session worker. Only one worker runs at a time.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("session already running in state %v", s.state)
	}
	s.running = true
	s.lastErr = nil
	s.done = make(chan struct{})
	s.stopFlag.Store(false)
	s.pauseFlag.Store(false)
	s.estimator.Reset()

	done := s.done
	SafeGo(func() {
		defer close(done)
		s.run()
	})
	return nil
}

// Stop requests a cooperative shutdown. Returns once the worker has exited.
func (s *Session) Stop() {
	s.mu.Lock()
	done := s.done
	running := s.running
	s.mu.Unlock()

	s.stopFlag.Store(true)
	if running && done != nil {
		<-done
	}
}

// Pause idles the loop after the current tick and releases the button.
func (s *Session) Pause() {
	s.pauseFlag.Store(true)
}

// Resume continues a paused loop.
func (s *Session) Resume() {
	s.pauseFlag.Store(false)
}

func (s *Session) run() {
	defer func() {
		s.actuator.ReleaseAll()
		s.mu.Lock()
		s.state = StateIdle
		s.running = false
		s.mu.Unlock()
	}()

	s.setState(StateLocatingWindow, "", 0)
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.WindowTimeout())
	win, err := s.locator.Locate(ctx)
	cancel()
	if err != nil {
		s.fail(err)
		return
	}

	s.setState(StateCalibrating, "", 0)
	barRect, err := s.calibrate(win)
	if err != nil {
		s.fail(err)
		return
	}

	s.setState(StateRunning, "", 1)
	s.loop(barRect)
}

// calibrate resolves the regions against the located window, runs the rod
// pre-check, and walks the cursor onto the bar.
func (s *Session) calibrate(win WindowInfo) (Bounds, error) {
	barRect, err := s.cfg.MinigameRegion.ToAbsolute(win.Bounds, s.cfg.DPIScale)
	if err != nil {
		return Bounds{}, err
	}
	hotbarRect, err := s.cfg.HotbarRegion.ToAbsolute(win.Bounds, s.cfg.DPIScale)
	if err != nil {
		return Bounds{}, err
	}

	s.checkRod(hotbarRect)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.actuator.SmoothMove(ctx, win.Bounds.Center(), barRect.Center(), 400*time.Millisecond); err != nil {
		return Bounds{}, err
	}

	sesLog.Info().Interface("bar", barRect).Msg("calibrated")
	return barRect, nil
}

// checkRod verifies the fishing rod looks equipped. Best effort: a miss is
// reported, never fatal, because the hotbar icons vary by skin.
func (s *Session) checkRod(hotbar Bounds) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.CaptureTimeout())
	defer cancel()

	frame, err := s.capturer.Capture(ctx, hotbar)
	if err != nil {
		sesLog.Warn().Err(err).Msg("rod pre-check capture failed")
		return
	}
	matches, err := s.matcher.Match(frame, rodTemplates)
	if err != nil {
		sesLog.Warn().Err(err).Msg("rod pre-check match failed")
		return
	}

	eq, okEq := findMatch(matches, templateRodEquipped)
	uneq, okUn := findMatch(matches, templateRodUnequipped)
	if okUn && (!okEq || uneq.Score > eq.Score) {
		sesLog.Warn().Float64("score", uneq.Score).Msg("rod appears unequipped")
		s.setState(StateCalibrating, "rod-unequipped", 0)
	}
}

// loop is the Running tick loop. Each iteration captures the bar, estimates
// state, decides, and actuates. Pacing comes from the tick interval plus
// whatever the action hold consumed.
func (s *Session) loop(barRect Bounds) {
	var deadline time.Time
	if s.cfg.SessionTimeout() > 0 {
		deadline = time.Now().Add(s.cfg.SessionTimeout())
	}

	ticker := time.NewTicker(s.cfg.TickInterval())
	defer ticker.Stop()

	var prev ActionCommand
	for {
		if s.stopFlag.Load() {
			s.setState(StateStopped, prev.Kind.String(), s.estimator.Confidence())
			return
		}
		if s.pauseFlag.Load() {
			s.idlePaused()
			continue
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			s.stats.AddFailed()
			s.fail(fmt.Errorf("session exceeded %s", s.cfg.SessionTimeout()))
			return
		}

		tickTimer := NewTimer("tick")
		done, err := s.tick(barRect, &prev)
		if err != nil {
			s.stats.AddFailed()
			s.fail(err)
			return
		}
		if done {
			s.stats.AddCompleted()
			s.setState(StateComplete, prev.Kind.String(), s.estimator.Confidence())
			return
		}
		tickTimer.Stop()

		<-ticker.C
	}
}

// tick runs one perception/decision/actuation pass. The returned bool is
// true when the completion splash matched.
func (s *Session) tick(barRect Bounds, prev *ActionCommand) (bool, error) {
	bounds, err := s.locator.Bounds()
	if err != nil {
		return false, err
	}
	rect, err := s.cfg.MinigameRegion.ToAbsolute(bounds, s.cfg.DPIScale)
	if err != nil {
		return false, err
	}
	if rect != barRect {
		sesLog.Debug().Interface("rect", rect).Msg("bar region moved with window")
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.CaptureTimeout())
	frame, err := s.capturer.Capture(ctx, rect)
	cancel()

	var matches []MatchResult
	frameWidth := 0
	if err != nil {
		// Capture faults count as detection misses; the estimator's
		// grace decides when they become fatal.
		sesLog.Warn().Err(err).Msg("capture failed")
	} else {
		frameWidth = frame.Bounds().Dx()
		matches, err = s.matcher.Match(frame, minigameTemplates)
		if err != nil {
			return false, err
		}
	}

	if _, ok := findMatch(matches, templateDone); ok {
		return true, nil
	}

	st, _ := s.estimator.Observe(frameWidth, matches)
	if s.estimator.Lost() {
		return false, fmt.Errorf("%d consecutive misses: %w", s.estimator.ConsecutiveMisses(), ErrDetectionLost)
	}

	cmd := Decide(st, *prev, s.cfg.TickInterval(), s.cfg.Control)
	*prev = cmd

	delayBudget := time.Duration(2*s.cfg.Actuator.MaxDelayMs) * time.Millisecond
	actCtx, actCancel := context.WithTimeout(context.Background(), 3*s.cfg.TickInterval()+cmd.Duration+cmd.CounterStrafe+delayBudget)
	err = s.actuator.Execute(actCtx, cmd, rect.Center())
	actCancel()
	if err != nil {
		return false, err
	}

	s.telemetry.Record(TickRecord{
		Timestamp:    time.Now(),
		Region:       rect,
		IndicatorPos: st.IndicatorPos,
		FishPos:      st.FishPos,
		Confidence:   st.Confidence,
		Action:       cmd.Kind.String(),
		Intensity:    cmd.Intensity,
	})
	s.setState(StateRunning, cmd.Kind.String(), st.Confidence)
	return false, nil
}

// idlePaused parks the loop until resume or stop.
func (s *Session) idlePaused() {
	s.actuator.ReleaseAll()
	s.setState(StatePaused, "", s.estimator.Confidence())
	for s.pauseFlag.Load() && !s.stopFlag.Load() {
		time.Sleep(50 * time.Millisecond)
	}
	if !s.stopFlag.Load() {
		s.setState(StateRunning, "", s.estimator.Confidence())
	}
}

// fail records the single terminal error of this run.
func (s *Session) fail(err error) {
	s.mu.Lock()
	if s.lastErr == nil {
		s.lastErr = err
	}
	s.mu.Unlock()
	sesLog.Error().Err(err).Msg("session failed")
	s.setState(StateError, "", s.estimator.Confidence())
}

// setState records the state and emits a status event without blocking.
func (s *Session) setState(state SessionState, action string, confidence float64) {
	s.mu.Lock()
	changed := s.state != state
	s.state = state
	s.mu.Unlock()

	if changed {
		sesLog.Info().Str("state", state.String()).Msg("state changed")
	}
	select {
	case s.events <- StatusEvent{State: state, LastAction: action, Confidence: confidence, Timestamp: time.Now()}:
	default:
	}
}
