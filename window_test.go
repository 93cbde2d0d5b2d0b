package main

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// listQuery is a WindowQuery whose result list can change mid-test.
type listQuery struct {
	mu        sync.Mutex
	windows   []WindowInfo
	activePid int32
	raised    []int32
}

func (q *listQuery) set(windows []WindowInfo) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.windows = windows
}

func (q *listQuery) Find(string) ([]WindowInfo, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.windows, nil
}

func (q *listQuery) Active() int32 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.activePid
}

func (q *listQuery) Raise(pid int32) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.raised = append(q.raised, pid)
	return nil
}

func TestLocatorPrefersTitleMatch(t *testing.T) {
	query := &listQuery{windows: []WindowInfo{
		{PID: 1, Title: "launcher", Bounds: Bounds{W: 100, H: 100}},
		{PID: 2, Title: "Roblox - Blox Fruits", Bounds: Bounds{W: 800, H: 600}},
	}}
	wl := NewWindowLocator(query, "Roblox", time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	info, err := wl.Locate(ctx)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if info.PID != 2 {
		t.Fatalf("picked pid %d, want the title match", info.PID)
	}
	if len(query.raised) != 1 || query.raised[0] != 2 {
		t.Fatalf("raised %v, want [2]", query.raised)
	}
}

// The foreground window wins over other title matches when several
// candidates carry the pattern.
func TestLocatorPrefersActiveWindow(t *testing.T) {
	query := &listQuery{
		windows: []WindowInfo{
			{PID: 1, Title: "Roblox", Bounds: Bounds{W: 800, H: 600}},
			{PID: 2, Title: "Roblox", Bounds: Bounds{W: 800, H: 600}},
		},
		activePid: 2,
	}
	wl := NewWindowLocator(query, "Roblox", time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	info, err := wl.Locate(ctx)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if info.PID != 2 {
		t.Fatalf("picked pid %d, want the foreground window", info.PID)
	}
}

func TestLocatorTimesOut(t *testing.T) {
	wl := NewWindowLocator(&listQuery{}, "Roblox", time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	if _, err := wl.Locate(ctx); !errors.Is(err, ErrWindowNotFound) {
		t.Fatalf("got %v, want ErrWindowNotFound", err)
	}
}

func TestLocatorBoundsRefresh(t *testing.T) {
	first := WindowInfo{PID: 1, Title: "Roblox", Bounds: Bounds{X: 0, Y: 0, W: 800, H: 600}}
	query := &listQuery{windows: []WindowInfo{first}}
	wl := NewWindowLocator(query, "Roblox", 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := wl.Locate(ctx); err != nil {
		t.Fatalf("locate: %v", err)
	}

	moved := first
	moved.Bounds = Bounds{X: 50, Y: 20, W: 800, H: 600}
	query.set([]WindowInfo{moved})
	time.Sleep(20 * time.Millisecond)

	bounds, err := wl.Bounds()
	if err != nil {
		t.Fatalf("bounds: %v", err)
	}
	if bounds != moved.Bounds {
		t.Fatalf("bounds %+v not refreshed to %+v", bounds, moved.Bounds)
	}
}

func TestLocatorDetectsVanishedWindow(t *testing.T) {
	query := &listQuery{windows: []WindowInfo{
		{PID: 1, Title: "Roblox", Bounds: Bounds{W: 800, H: 600}},
	}}
	wl := NewWindowLocator(query, "Roblox", 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := wl.Locate(ctx); err != nil {
		t.Fatalf("locate: %v", err)
	}

	query.set(nil)
	time.Sleep(20 * time.Millisecond)

	if _, err := wl.Bounds(); !errors.Is(err, ErrWindowNotFound) {
		t.Fatalf("got %v, want ErrWindowNotFound", err)
	}
}
