package main

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"
)

// fakeDriver records injected input and can fail on demand.
type fakeDriver struct {
	moves    []Point
	ops      []string
	opTimes  []time.Time
	failNext int // number of upcoming button ops that fail
}

func (d *fakeDriver) Move(x, y int) {
	d.moves = append(d.moves, Point{X: x, Y: y})
}

func (d *fakeDriver) op(name string) error {
	d.ops = append(d.ops, name)
	d.opTimes = append(d.opTimes, time.Now())
	if d.failNext > 0 {
		d.failNext--
		return errors.New("injection refused")
	}
	return nil
}

func (d *fakeDriver) Press() error   { return d.op("press") }
func (d *fakeDriver) Release() error { return d.op("release") }
func (d *fakeDriver) Click() error   { return d.op("click") }

func testActuator(d InputDriver) *Actuator {
	cfg := ActuatorConfig{JitterPx: 2, MinDelayMs: 1, MaxDelayMs: 2, ClickIntervalMs: 2}
	return NewActuator(d, cfg, rand.New(rand.NewSource(1)))
}

func holdCmd(kind ActionKind) ActionCommand {
	return ActionCommand{Kind: kind, Intensity: 0.5, Duration: 10 * time.Millisecond, CounterStrafe: 5 * time.Millisecond}
}

func TestActuatorRetryThenFatal(t *testing.T) {
	driver := &fakeDriver{failNext: 2}
	a := testActuator(driver)

	err := a.Execute(context.Background(), holdCmd(ActionTrackRight), Point{X: 100, Y: 100})
	if !errors.Is(err, ErrActuatorFailure) {
		t.Fatalf("got %v, want ErrActuatorFailure", err)
	}
	if len(driver.ops) != 2 {
		t.Fatalf("%d attempts, want exactly one retry (2 ops)", len(driver.ops))
	}
}

func TestActuatorRetryRecovers(t *testing.T) {
	driver := &fakeDriver{failNext: 1}
	a := testActuator(driver)

	if err := a.Execute(context.Background(), holdCmd(ActionTrackRight), Point{X: 100, Y: 100}); err != nil {
		t.Fatalf("unexpected error after recoverable failure: %v", err)
	}
}

func TestActuatorJitterBounds(t *testing.T) {
	driver := &fakeDriver{}
	a := testActuator(driver)
	anchor := Point{X: 200, Y: 300}

	for i := 0; i < 50; i++ {
		cmd := ActionCommand{Kind: ActionStabilize, Duration: time.Millisecond}
		if err := a.Execute(context.Background(), cmd, anchor); err != nil {
			t.Fatalf("execute: %v", err)
		}
	}

	if len(driver.moves) == 0 {
		t.Fatal("no cursor moves recorded")
	}
	for _, p := range driver.moves {
		if dx := p.X - anchor.X; dx < -2 || dx > 2 {
			t.Fatalf("x jitter %d outside ±2", dx)
		}
		if dy := p.Y - anchor.Y; dy < -2 || dy > 2 {
			t.Fatalf("y jitter %d outside ±2", dy)
		}
	}
}

func TestActuatorRightHoldSequence(t *testing.T) {
	driver := &fakeDriver{}
	a := testActuator(driver)

	if err := a.Execute(context.Background(), holdCmd(ActionCorrectRight), Point{}); err != nil {
		t.Fatalf("execute: %v", err)
	}

	want := []string{"press", "release"}
	if len(driver.ops) != len(want) {
		t.Fatalf("ops %v, want %v", driver.ops, want)
	}
	for i, op := range want {
		if driver.ops[i] != op {
			t.Fatalf("ops %v, want %v", driver.ops, want)
		}
	}
}

// A leftward action starts from the released state, so the only button
// traffic is the counter-strafe hold and its release.
func TestActuatorLeftCounterStrafe(t *testing.T) {
	driver := &fakeDriver{}
	a := testActuator(driver)

	if err := a.Execute(context.Background(), holdCmd(ActionCorrectLeft), Point{}); err != nil {
		t.Fatalf("execute: %v", err)
	}

	want := []string{"press", "release"}
	for i, op := range want {
		if i >= len(driver.ops) || driver.ops[i] != op {
			t.Fatalf("ops %v, want %v", driver.ops, want)
		}
	}
}

func TestActuatorStabilizeClicks(t *testing.T) {
	driver := &fakeDriver{}
	a := testActuator(driver)

	cmd := ActionCommand{Kind: ActionStabilize, Duration: 10 * time.Millisecond}
	if err := a.Execute(context.Background(), cmd, Point{}); err != nil {
		t.Fatalf("execute: %v", err)
	}

	clicks := 0
	for _, op := range driver.ops {
		if op == "click" {
			clicks++
		}
	}
	if clicks < 2 {
		t.Fatalf("%d clicks over 10ms at 2ms interval, want several", clicks)
	}
}

// Button transitions honor the randomized inter-action delay window: the
// press-to-release gap covers the hold span plus at least the minimum delay.
func TestActuatorDelayBetweenTransitions(t *testing.T) {
	driver := &fakeDriver{}
	cfg := ActuatorConfig{JitterPx: 0, MinDelayMs: 25, MaxDelayMs: 50, ClickIntervalMs: 2}
	a := NewActuator(driver, cfg, rand.New(rand.NewSource(1)))

	cmd := ActionCommand{Kind: ActionCorrectRight, Intensity: 0.5, Duration: 5 * time.Millisecond}
	if err := a.Execute(context.Background(), cmd, Point{}); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if len(driver.opTimes) != 2 {
		t.Fatalf("ops %v, want press then release", driver.ops)
	}
	gap := driver.opTimes[1].Sub(driver.opTimes[0])
	if min := cmd.Duration + 25*time.Millisecond; gap < min {
		t.Fatalf("transition gap %v, want at least %v", gap, min)
	}
}

func TestActuatorDelayWindow(t *testing.T) {
	cfg := ActuatorConfig{MinDelayMs: 25, MaxDelayMs: 50, ClickIntervalMs: 2}
	a := NewActuator(&fakeDriver{}, cfg, rand.New(rand.NewSource(1)))

	for i := 0; i < 20; i++ {
		start := time.Now()
		if err := a.Delay(context.Background()); err != nil {
			t.Fatalf("delay: %v", err)
		}
		if elapsed := time.Since(start); elapsed < 25*time.Millisecond {
			t.Fatalf("delay %v shorter than the configured minimum", elapsed)
		}
	}
}

func TestActuatorReleaseAll(t *testing.T) {
	driver := &fakeDriver{}
	a := testActuator(driver)

	if err := a.setHeld(context.Background(), true); err != nil {
		t.Fatalf("setup hold: %v", err)
	}
	a.ReleaseAll()

	if driver.ops[len(driver.ops)-1] != "release" {
		t.Fatalf("ops %v, want trailing release", driver.ops)
	}
	a.ReleaseAll() // idempotent, no extra traffic
	if driver.ops[len(driver.ops)-1] != "release" || len(driver.ops) != 2 {
		t.Fatalf("ops %v after second ReleaseAll", driver.ops)
	}
}
