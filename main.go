// Package main - main.go
//
// Application entry point and composition root.
//
// All capability implementations are chosen here, once: robotgo for window
// lookup and input injection, kbinani/screenshot for frame capture, gocv for
// template matching. The session receives them fully wired and never selects
// alternatives at runtime.
//
// Startup Sequence:
//   1. Initialize logging (Debug.log truncated)
//   2. Load and validate config.json
//   3. Load templates and build the matcher
//   4. Wire locator, actuator, telemetry, session
//   5. Install signal handler (SIGINT/SIGTERM quits the tray)
//   6. Run the system tray (blocking)
//
// Shutdown Sequence:
//   1. Tray exit stops the session (button released)
//   2. Matcher and telemetry close
//   3. Config saved for the next run
package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getlantern/systray"
	"github.com/rs/zerolog/log"
)

const configFileName = "config.json"

func main() {
	cfg, err := LoadConfig(configFileName)
	if err != nil {
		// Logging is not up yet.
		println("config error:", err.Error())
		os.Exit(1)
	}

	if err := InitLogging(cfg.Debug); err != nil {
		println("logging error:", err.Error())
		os.Exit(1)
	}
	log.Info().Str("window", cfg.WindowTitle).Int("tick_ms", cfg.TickIntervalMs).Msg("bloxfish bot starting")

	store, err := LoadTemplates(cfg.TemplateDir, cfg.MatchScales)
	if err != nil {
		log.Fatal().Err(err).Msg("template load failed")
	}
	matcher, err := NewGocvMatcher(store, cfg.ThresholdFor)
	if err != nil {
		log.Fatal().Err(err).Msg("matcher init failed")
	}
	defer matcher.Close()

	telemetry, err := NewTelemetry(cfg.TelemetryPath)
	if err != nil {
		log.Fatal().Err(err).Msg("telemetry init failed")
	}
	defer telemetry.Close()

	locator := NewWindowLocator(NewRobotgoWindowQuery(), cfg.WindowTitle,
		time.Duration(cfg.WindowValidateIntervalMs)*time.Millisecond)
	actuator := NewActuator(NewRobotgoDriver(), cfg.Actuator, nil)
	stats := NewStatistics()

	session := NewSession(cfg, locator, NewScreenCapturer(), matcher, actuator, telemetry, stats)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	SafeGo(func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")
		systray.Quit()
	})

	tray := NewTrayApp(session, stats, nil)
	tray.Run()

	if err := SaveConfig(configFileName, cfg); err != nil {
		log.Warn().Err(err).Msg("could not persist config")
	}
	log.Info().Msg("bloxfish bot stopped")
}
