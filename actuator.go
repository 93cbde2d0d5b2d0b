// Package main - actuator.go
//
// This file turns controller commands into OS-level mouse input.
//
// The minigame is driven by one button: holding it accelerates the indicator
// right, releasing lets it fall left. Stabilize is rapid clicking, which
// parks the indicator in place. Counter-strafes apply the opposite input
// briefly after the main hold so the indicator does not coast past the fish.
//
// InputDriver is the OS capability. The robotgo implementation injects real
// hardware events; tests use a recording fake. Every injected action carries
// sub-pixel humanization: up to ±2px of cursor jitter and a 50-150ms random
// delay between discrete presses. Cursor travel uses a quadratic bezier with
// ease-in-out pacing rather than teleporting.
//
// A failed driver call is retried once after a short pause. A second failure
// surfaces as ErrActuatorFailure, which the session treats as fatal.
package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/go-vgo/robotgo"
)

// ErrActuatorFailure reports an input injection that failed twice.
var ErrActuatorFailure = errors.New("input injection failed")

// InputDriver is the OS capability for mouse input.
type InputDriver interface {
	Move(x, y int)
	Press() error
	Release() error
	Click() error
}

// robotgoDriver injects hardware-level events for the left mouse button.
type robotgoDriver struct{}

// NewRobotgoDriver returns the native input driver.
func NewRobotgoDriver() InputDriver {
	return robotgoDriver{}
}

func (robotgoDriver) Move(x, y int) { robotgo.Move(x, y) }
func (robotgoDriver) Press() error  { return robotgo.Toggle("left") }
func (robotgoDriver) Release() error {
	return robotgo.Toggle("left", "up")
}
func (robotgoDriver) Click() error {
	robotgo.Click("left")
	return nil
}

// Actuator executes action commands against an input driver.
type Actuator struct {
	driver  InputDriver
	cfg     ActuatorConfig
	rng     *rand.Rand
	holding bool
}

// NewActuator creates an actuator. The rng seeds the humanization jitter;
// pass a fixed-seed source in tests.
func NewActuator(driver InputDriver, cfg ActuatorConfig, rng *rand.Rand) *Actuator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Actuator{driver: driver, cfg: cfg, rng: rng}
}

// Execute performs one command with the cursor anchored at anchor, the
// center of the minigame bar. Blocks for the command duration plus any
// counter-strafe; ctx cancels mid-hold.
func (a *Actuator) Execute(ctx context.Context, cmd ActionCommand, anchor Point) error {
	a.jitterTo(anchor)

	switch {
	case cmd.Kind == ActionStabilize:
		return a.stabilize(ctx, cmd.Duration)
	case cmd.Kind.MovesRight():
		return a.strafe(ctx, true, cmd.Duration, cmd.CounterStrafe)
	case cmd.Kind.MovesLeft():
		return a.strafe(ctx, false, cmd.Duration, cmd.CounterStrafe)
	default:
		return fmt.Errorf("unknown action %v", cmd.Kind)
	}
}

// stabilize rapid-clicks for the given span, parking the indicator. Clicks
// inside the burst keep the fixed interval; the click rate is part of the
// game mechanic.
func (a *Actuator) stabilize(ctx context.Context, span time.Duration) error {
	if err := a.ensureReleased(ctx); err != nil {
		return err
	}

	interval := time.Duration(a.cfg.ClickIntervalMs) * time.Millisecond
	deadline := time.Now().Add(span)
	for time.Now().Before(deadline) {
		if err := a.withRetry(a.driver.Click); err != nil {
			return err
		}
		if err := sleepCtx(ctx, interval); err != nil {
			return err
		}
	}
	return nil
}

// strafe holds (right) or releases (left) for span, then applies the
// opposite input for the counter duration.
func (a *Actuator) strafe(ctx context.Context, right bool, span, counter time.Duration) error {
	if err := a.setHeld(ctx, right); err != nil {
		return err
	}
	if err := sleepCtx(ctx, span); err != nil {
		return err
	}

	if counter > 0 {
		if err := a.setHeld(ctx, !right); err != nil {
			return err
		}
		if err := sleepCtx(ctx, counter); err != nil {
			return err
		}
	}
	return a.ensureReleased(ctx)
}

// setHeld transitions the button state. Every real transition is preceded by
// the randomized inter-action delay so consecutive presses never land at the
// exact controller cadence.
func (a *Actuator) setHeld(ctx context.Context, held bool) error {
	if held == a.holding {
		return nil
	}
	if err := a.Delay(ctx); err != nil {
		return err
	}

	op := a.driver.Release
	if held {
		op = a.driver.Press
	}
	if err := a.withRetry(op); err != nil {
		return err
	}
	a.holding = held
	return nil
}

func (a *Actuator) ensureReleased(ctx context.Context) error {
	return a.setHeld(ctx, false)
}

// ReleaseAll forces the button up, used when a session stops mid-hold.
func (a *Actuator) ReleaseAll() {
	if err := a.ensureReleased(context.Background()); err != nil {
		actLog.Warn().Err(err).Msg("could not release button on shutdown")
	}
}

// Delay sleeps a uniform random span inside the configured window. Called
// between discrete actions so the input cadence is not metronomic.
func (a *Actuator) Delay(ctx context.Context) error {
	window := a.cfg.MaxDelayMs - a.cfg.MinDelayMs
	ms := a.cfg.MinDelayMs
	if window > 0 {
		ms += a.rng.Intn(window + 1)
	}
	return sleepCtx(ctx, time.Duration(ms)*time.Millisecond)
}

// jitterTo moves the cursor to p offset by up to ±JitterPx on each axis.
func (a *Actuator) jitterTo(p Point) {
	j := a.cfg.JitterPx
	x, y := p.X, p.Y
	if j > 0 {
		x += a.rng.Intn(2*j+1) - j
		y += a.rng.Intn(2*j+1) - j
	}
	a.driver.Move(x, y)
}

// SmoothMove walks the cursor from its assumed position to target along a
// quadratic bezier with ease-in-out pacing. Used once when engaging the bar
// so the approach does not look scripted.
func (a *Actuator) SmoothMove(ctx context.Context, from, to Point, over time.Duration) error {
	const steps = 24

	// Control point offset sideways to bow the path.
	cx := float64(from.X+to.X)/2 + float64(a.rng.Intn(81)-40)
	cy := float64(from.Y+to.Y)/2 + float64(a.rng.Intn(81)-40)

	for i := 1; i <= steps; i++ {
		t := easeInOut(float64(i) / steps)
		inv := 1 - t
		x := inv*inv*float64(from.X) + 2*inv*t*cx + t*t*float64(to.X)
		y := inv*inv*float64(from.Y) + 2*inv*t*cy + t*t*float64(to.Y)
		a.driver.Move(int(math.Round(x)), int(math.Round(y)))
		if err := sleepCtx(ctx, over/steps); err != nil {
			return err
		}
	}
	a.jitterTo(to)
	return nil
}

// withRetry runs op, retrying once after a short pause. The second failure
// is terminal.
func (a *Actuator) withRetry(op func() error) error {
	err := op()
	if err == nil {
		return nil
	}
	actLog.Warn().Err(err).Msg("input injection failed, retrying")
	time.Sleep(20 * time.Millisecond)
	if err = op(); err != nil {
		return fmt.Errorf("retry exhausted: %v: %w", err, ErrActuatorFailure)
	}
	return nil
}

func easeInOut(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return 1 - math.Pow(-2*t+2, 2)/2
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
