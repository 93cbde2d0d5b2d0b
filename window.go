// Package main - window.go
//
// This file locates and tracks the game window.
//
// WindowQuery is the OS-facing capability; the robotgo implementation matches
// candidate processes by name, reads their bounds, and can raise the window.
// WindowLocator sits on top: it resolves the pattern to a single window,
// caches the bounds under a RWMutex (tick goroutine reads, locator refresh
// writes), and revalidates on an interval so a moved or resized window is
// picked up without paying an OS query every tick.
//
// Lookup uses bounded retry with linear backoff. Only after the retry budget
// is exhausted does the failure surface as ErrWindowNotFound; the session
// treats that as fatal.
package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-vgo/robotgo"
)

// ErrWindowNotFound reports that no window matched the configured pattern
// within the lookup budget.
var ErrWindowNotFound = errors.New("game window not found")

// WindowInfo describes one candidate window.
type WindowInfo struct {
	PID    int32
	Title  string
	Bounds Bounds
}

// WindowQuery is the OS capability for window enumeration. Chosen once at
// composition time.
type WindowQuery interface {
	// Find returns all visible windows whose process or title contains
	// pattern, case-insensitive.
	Find(pattern string) ([]WindowInfo, error)
	// Active returns the PID owning the foreground window, zero when
	// unknown.
	Active() int32
	// Raise brings the window to the foreground.
	Raise(pid int32) error
}

// robotgoWindowQuery implements WindowQuery with robotgo process lookups.
type robotgoWindowQuery struct{}

// NewRobotgoWindowQuery returns the native window query.
func NewRobotgoWindowQuery() WindowQuery {
	return robotgoWindowQuery{}
}

func (robotgoWindowQuery) Find(pattern string) ([]WindowInfo, error) {
	ids, err := robotgo.FindIds(pattern)
	if err != nil {
		return nil, fmt.Errorf("enumerate windows: %w", err)
	}

	var infos []WindowInfo
	for _, pid := range ids {
		x, y, w, h := robotgo.GetBounds(pid)
		if w <= 0 || h <= 0 {
			continue
		}
		title := robotgo.GetTitle(pid)
		infos = append(infos, WindowInfo{
			PID:    pid,
			Title:  title,
			Bounds: Bounds{X: x, Y: y, W: w, H: h},
		})
	}
	return infos, nil
}

func (robotgoWindowQuery) Active() int32 {
	return robotgo.GetPid()
}

func (robotgoWindowQuery) Raise(pid int32) error {
	return robotgo.ActivePid(pid)
}

// WindowLocator resolves and tracks the game window.
type WindowLocator struct {
	query            WindowQuery
	pattern          string
	validateInterval time.Duration

	mu          sync.RWMutex
	current     WindowInfo
	located     bool
	lastChecked time.Time
}

// NewWindowLocator creates a locator for windows matching pattern.
func NewWindowLocator(query WindowQuery, pattern string, validateInterval time.Duration) *WindowLocator {
	return &WindowLocator{
		query:            query,
		pattern:          pattern,
		validateInterval: validateInterval,
	}
}

// Locate finds the game window, retrying with linear backoff until ctx
// expires. On success the window is cached and raised to the foreground.
func (wl *WindowLocator) Locate(ctx context.Context) (WindowInfo, error) {
	backoff := 200 * time.Millisecond
	attempt := 0

	for {
		info, err := wl.lookup()
		if err == nil {
			wl.mu.Lock()
			wl.current = info
			wl.located = true
			wl.lastChecked = time.Now()
			wl.mu.Unlock()

			if raiseErr := wl.query.Raise(info.PID); raiseErr != nil {
				winLog.Warn().Err(raiseErr).Int32("pid", info.PID).Msg("could not raise window")
			}
			winLog.Info().Str("title", info.Title).Int32("pid", info.PID).
				Interface("bounds", info.Bounds).Msg("window located")
			return info, nil
		}

		attempt++
		winLog.Debug().Err(err).Int("attempt", attempt).Msg("window lookup failed, retrying")

		select {
		case <-ctx.Done():
			return WindowInfo{}, fmt.Errorf("lookup timed out after %d attempts: %w", attempt, ErrWindowNotFound)
		case <-time.After(backoff):
		}
		if backoff < 2*time.Second {
			backoff += 200 * time.Millisecond
		}
	}
}

// lookup performs one query pass and picks the best candidate. The
// foreground window outranks everything, then candidates whose title
// contains the full pattern, then enumeration order.
func (wl *WindowLocator) lookup() (WindowInfo, error) {
	infos, err := wl.query.Find(wl.pattern)
	if err != nil {
		return WindowInfo{}, err
	}
	if len(infos) == 0 {
		return WindowInfo{}, ErrWindowNotFound
	}

	active := wl.query.Active()
	want := strings.ToLower(wl.pattern)
	score := func(info WindowInfo) int {
		s := 0
		if active != 0 && info.PID == active {
			s += 2
		}
		if strings.Contains(strings.ToLower(info.Title), want) {
			s++
		}
		return s
	}

	best := infos[0]
	for _, info := range infos[1:] {
		if score(info) > score(best) {
			best = info
		}
	}
	return best, nil
}

// Bounds returns the cached window bounds, refreshing them when the
// validation interval has elapsed. A window that disappeared mid-session
// returns ErrWindowNotFound.
func (wl *WindowLocator) Bounds() (Bounds, error) {
	wl.mu.RLock()
	located := wl.located
	checked := wl.lastChecked
	info := wl.current
	wl.mu.RUnlock()

	if !located {
		return Bounds{}, ErrWindowNotFound
	}
	if time.Since(checked) < wl.validateInterval {
		return info.Bounds, nil
	}

	fresh, err := wl.lookup()
	if err != nil {
		wl.mu.Lock()
		wl.located = false
		wl.mu.Unlock()
		return Bounds{}, fmt.Errorf("window vanished: %w", ErrWindowNotFound)
	}

	wl.mu.Lock()
	if fresh.Bounds != wl.current.Bounds {
		winLog.Debug().Interface("bounds", fresh.Bounds).Msg("window bounds changed")
	}
	wl.current = fresh
	wl.lastChecked = time.Now()
	wl.mu.Unlock()
	return fresh.Bounds, nil
}
