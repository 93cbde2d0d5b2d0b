// Package main - tray.go
//
// This file implements the system tray UI for session control.
// Uses getlantern/systray library for cross-platform tray menu support.
//
// Menu Structure:
//   Bloxfish Bot
//   ├─ Status: State | Action | Confidence (read-only, follows status events)
//   ├─ Start Session
//   ├─ Pause / Resume
//   ├─ Stop Session
//   ├─ Stats: Completed | Failed | Uptime (read-only)
//   └─ Quit (graceful shutdown)
//
// Concurrency Model:
// One goroutine per clickable item plus one consuming the session status
// stream, all launched through SafeGo from onReady. The status consumer is
// the only writer of the read-only items.
//
// Lifecycle:
//   1. NewTrayApp: Create instance with session reference
//   2. Run: Start systray (blocking call)
//   3. onReady: Build menu, launch handlers
//   4. onExit: Stop the session and hand control back to main
package main

import (
	"fmt"

	"github.com/getlantern/systray"
)

// TrayApp manages the system tray application and user interface.
type TrayApp struct {
	session *Session
	stats   *Statistics
	onQuit  func()

	statusItem *systray.MenuItem
	statsItem  *systray.MenuItem
	startItem  *systray.MenuItem
	pauseItem  *systray.MenuItem
	resumeItem *systray.MenuItem
	stopItem   *systray.MenuItem
	quitItem   *systray.MenuItem
}

// NewTrayApp creates a new tray application. onQuit runs after systray exits.
func NewTrayApp(session *Session, stats *Statistics, onQuit func()) *TrayApp {
	return &TrayApp{session: session, stats: stats, onQuit: onQuit}
}

// Run starts the tray application. Blocks until Quit.
func (t *TrayApp) Run() {
	trayLog.Info().Msg("starting system tray")
	systray.Run(t.onReady, func() {
		trayLog.Info().Msg("tray exiting, stopping session")
		t.session.Stop()
		if t.onQuit != nil {
			t.onQuit()
		}
	})
}

func (t *TrayApp) onReady() {
	systray.SetTitle("Bloxfish Bot")
	systray.SetTooltip("Blox Fruits fishing bot")

	t.statusItem = systray.AddMenuItem("Status: Idle", "Current session state")
	t.statusItem.Disable()
	t.statsItem = systray.AddMenuItem("Stats: 0 | 0 | 0s", "Completed | Failed | Uptime")
	t.statsItem.Disable()
	systray.AddSeparator()

	t.startItem = systray.AddMenuItem("Start Session", "Locate the window and start fishing")
	t.pauseItem = systray.AddMenuItem("Pause", "Pause after the current tick")
	t.resumeItem = systray.AddMenuItem("Resume", "Resume a paused session")
	t.stopItem = systray.AddMenuItem("Stop Session", "Stop and return to idle")
	systray.AddSeparator()
	t.quitItem = systray.AddMenuItem("Quit", "Exit the bot")

	SafeGo(t.handleClicks)
	SafeGo(t.followStatus)
}

func (t *TrayApp) handleClicks() {
	for {
		select {
		case <-t.startItem.ClickedCh:
			if err := t.session.Start(); err != nil {
				trayLog.Warn().Err(err).Msg("start rejected")
			}
		case <-t.pauseItem.ClickedCh:
			t.session.Pause()
		case <-t.resumeItem.ClickedCh:
			t.session.Resume()
		case <-t.stopItem.ClickedCh:
			t.session.Stop()
		case <-t.quitItem.ClickedCh:
			systray.Quit()
			return
		}
	}
}

// followStatus mirrors session events into the read-only menu items.
func (t *TrayApp) followStatus() {
	for ev := range t.session.Events() {
		line := fmt.Sprintf("Status: %s", ev.State)
		if ev.LastAction != "" {
			line += fmt.Sprintf(" | %s | %.0f%%", ev.LastAction, ev.Confidence*100)
		}
		t.statusItem.SetTitle(line)

		completed, failed, uptime := t.stats.GetStats()
		t.statsItem.SetTitle(fmt.Sprintf("Stats: %d | %d | %s", completed, failed, uptime))
	}
}
