// Package main - config.go
//
// This file holds bot configuration: window matching, calibrated regions,
// detection thresholds, controller tuning, actuator pacing, and session
// limits.
//
// Config is loaded once at startup from config.json (sonic) and passed by
// value into session construction. It is never mutated after Validate
// succeeds; safety-relevant fields that fail validation abort startup with
// ErrConfigInvalid instead of being silently defaulted.
//
// The controller and actuator defaults come from long-tuned values for the
// Blox Fruits fishing bar: asymmetric hold multipliers (the indicator
// accelerates harder to the right under hold than it drifts left under
// release) and a ~178ms click interval for stabilization.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/bytedance/sonic"
)

// ErrConfigInvalid reports configuration that cannot be used safely.
var ErrConfigInvalid = errors.New("invalid configuration")

// ControlConfig tunes the minigame controller. Positions are normalized bar
// coordinates in [0,1].
type ControlConfig struct {
	DeadzoneHalfWidth float64 `json:"deadzone_half_width"` // stabilize band around the fish
	WideHalfWidth     float64 `json:"wide_half_width"`     // stability hysteresis band
	BoundaryLow       float64 `json:"boundary_low"`        // left boundary-correction threshold
	BoundaryHigh      float64 `json:"boundary_high"`       // right boundary-correction threshold
	PursuitCutoff     float64 `json:"pursuit_cutoff"`      // edge distance that switches correction to pursuit
	TrackingGain      float64 `json:"tracking_gain"`
	TrackingCap       float64 `json:"tracking_cap"`
	UnstableGain      float64 `json:"unstable_gain"`
	DecayStep         float64 `json:"decay_step"` // intensity decay per no-direction tick

	// Hold duration shaping, asymmetric per side.
	StableLeftMult    float64 `json:"stable_left_mult"`
	StableRightMult   float64 `json:"stable_right_mult"`
	StableLeftDiv     float64 `json:"stable_left_div"`
	StableRightDiv    float64 `json:"stable_right_div"`
	UnstableLeftMult  float64 `json:"unstable_left_mult"`
	UnstableRightMult float64 `json:"unstable_right_mult"`
	UnstableLeftDiv   float64 `json:"unstable_left_div"`
	UnstableRightDiv  float64 `json:"unstable_right_div"`
}

// EstimatorConfig tunes detection debouncing.
type EstimatorConfig struct {
	DebounceTicks        int     `json:"debounce_ticks"`
	ConfidenceDecay      float64 `json:"confidence_decay"`
	MaxConsecutiveMisses int     `json:"max_consecutive_misses"`
}

// ActuatorConfig tunes input pacing and humanization.
type ActuatorConfig struct {
	JitterPx        int `json:"jitter_px"`
	MinDelayMs      int `json:"min_delay_ms"`
	MaxDelayMs      int `json:"max_delay_ms"`
	ClickIntervalMs int `json:"click_interval_ms"`
}

// Config holds bot configuration
type Config struct {
	WindowTitle string `json:"window_title"`
	Debug       bool   `json:"debug"`

	TickIntervalMs           int `json:"tick_interval_ms"`
	CaptureTimeoutMs         int `json:"capture_timeout_ms"`
	WindowTimeoutMs          int `json:"window_timeout_ms"`
	WindowValidateIntervalMs int `json:"window_validate_interval_ms"`
	SessionTimeoutSec        int `json:"session_timeout_sec"`

	MinigameRegion Region `json:"minigame_region"`
	HotbarRegion   Region `json:"hotbar_region"`
	DPIScale       float64 `json:"dpi_scale"`

	TemplateDir    string             `json:"template_dir"`
	MatchThreshold float64            `json:"match_threshold"`
	Thresholds     map[string]float64 `json:"thresholds"` // per-template overrides
	MatchScales    []float64          `json:"match_scales"`

	Control   ControlConfig   `json:"control"`
	Estimator EstimatorConfig `json:"estimator"`
	Actuator  ActuatorConfig  `json:"actuator"`

	TelemetryPath string `json:"telemetry_path"` // empty disables the trace
}

// DefaultConfig creates default configuration
func DefaultConfig() Config {
	return Config{
		WindowTitle: "Roblox",

		TickIntervalMs:           66, // ~15 Hz
		CaptureTimeoutMs:         250,
		WindowTimeoutMs:          5000,
		WindowValidateIntervalMs: 2000,
		SessionTimeoutSec:        120,

		// Authored against a 1920x1080 window, stored normalized.
		MinigameRegion: Region{Name: "minigame_bar", Rect: RectF{X: 0.2594, Y: 0.7306, W: 0.5036, H: 0.0472}},
		HotbarRegion:   Region{Name: "hotbar", Rect: RectF{X: 0.3333, Y: 0.9074, W: 0.3333, H: 0.0833}},
		DPIScale:       1.0,

		TemplateDir:    "assets",
		MatchThreshold: 0.60,
		Thresholds: map[string]float64{
			templateIndicator: 0.65,
			templateDone:      0.70,
		},
		MatchScales: []float64{1.0, 0.9, 0.8, 1.1, 1.2},

		Control: ControlConfig{
			DeadzoneHalfWidth: 0.05,
			WideHalfWidth:     0.15,
			BoundaryLow:       0.25,
			BoundaryHigh:      0.75,
			PursuitCutoff:     0.10,
			TrackingGain:      2.0,
			TrackingCap:       0.6,
			UnstableGain:      2.19,
			DecayStep:         0.2,

			StableLeftMult:    1.211,
			StableRightMult:   2.36,
			StableLeftDiv:     1.12,
			StableRightDiv:    1.55,
			UnstableLeftMult:  2.19,
			UnstableRightMult: 2.665,
			UnstableLeftDiv:   1.0,
			UnstableRightDiv:  1.5,
		},

		Estimator: EstimatorConfig{
			DebounceTicks:        3,
			ConfidenceDecay:      0.25,
			MaxConsecutiveMisses: 3,
		},

		Actuator: ActuatorConfig{
			JitterPx:        2,
			MinDelayMs:      50,
			MaxDelayMs:      150,
			ClickIntervalMs: 178,
		},
	}
}

// TickInterval returns the tick period as a duration.
func (c Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMs) * time.Millisecond
}

// CaptureTimeout returns the per-tick frame capture deadline.
func (c Config) CaptureTimeout() time.Duration {
	return time.Duration(c.CaptureTimeoutMs) * time.Millisecond
}

// WindowTimeout returns the window lookup deadline.
func (c Config) WindowTimeout() time.Duration {
	return time.Duration(c.WindowTimeoutMs) * time.Millisecond
}

// SessionTimeout returns the overall session deadline, zero when disabled.
func (c Config) SessionTimeout() time.Duration {
	return time.Duration(c.SessionTimeoutSec) * time.Second
}

// ThresholdFor returns the match threshold for a template, falling back to
// the global default.
func (c Config) ThresholdFor(template string) float64 {
	if thr, ok := c.Thresholds[template]; ok {
		return thr
	}
	return c.MatchThreshold
}

// Validate checks safety-relevant fields. It returns ErrConfigInvalid (wrapped
// with the offending field) rather than correcting values.
func (c Config) Validate() error {
	if c.WindowTitle == "" {
		return fmt.Errorf("window_title empty: %w", ErrConfigInvalid)
	}
	if c.TickIntervalMs < 50 || c.TickIntervalMs > 100 {
		return fmt.Errorf("tick_interval_ms %d outside 50-100: %w", c.TickIntervalMs, ErrConfigInvalid)
	}
	if c.DPIScale <= 0 {
		return fmt.Errorf("dpi_scale %.2f not positive: %w", c.DPIScale, ErrConfigInvalid)
	}
	if !c.MinigameRegion.Rect.Valid() {
		return fmt.Errorf("minigame_region %+v: %w", c.MinigameRegion.Rect, ErrConfigInvalid)
	}
	if !c.HotbarRegion.Rect.Valid() {
		return fmt.Errorf("hotbar_region %+v: %w", c.HotbarRegion.Rect, ErrConfigInvalid)
	}
	if c.MatchThreshold < 0.55 || c.MatchThreshold > 0.85 {
		return fmt.Errorf("match_threshold %.2f outside 0.55-0.85: %w", c.MatchThreshold, ErrConfigInvalid)
	}
	for name, thr := range c.Thresholds {
		if thr < 0.55 || thr > 0.85 {
			return fmt.Errorf("threshold %q %.2f outside 0.55-0.85: %w", name, thr, ErrConfigInvalid)
		}
	}
	if len(c.MatchScales) == 0 {
		return fmt.Errorf("match_scales empty: %w", ErrConfigInvalid)
	}
	for _, s := range c.MatchScales {
		if s <= 0 {
			return fmt.Errorf("match scale %.2f not positive: %w", s, ErrConfigInvalid)
		}
	}

	ctl := c.Control
	if ctl.DeadzoneHalfWidth <= 0 || ctl.DeadzoneHalfWidth >= 0.5 {
		return fmt.Errorf("deadzone_half_width %.2f: %w", ctl.DeadzoneHalfWidth, ErrConfigInvalid)
	}
	if ctl.BoundaryLow <= 0 || ctl.BoundaryHigh >= 1 || ctl.BoundaryLow >= ctl.BoundaryHigh {
		return fmt.Errorf("boundary thresholds %.2f/%.2f: %w", ctl.BoundaryLow, ctl.BoundaryHigh, ErrConfigInvalid)
	}
	if ctl.DecayStep <= 0 || ctl.DecayStep > 1 {
		return fmt.Errorf("decay_step %.2f: %w", ctl.DecayStep, ErrConfigInvalid)
	}

	est := c.Estimator
	if est.DebounceTicks < 1 {
		return fmt.Errorf("debounce_ticks %d: %w", est.DebounceTicks, ErrConfigInvalid)
	}
	if est.ConfidenceDecay <= 0 || est.ConfidenceDecay > 1 {
		return fmt.Errorf("confidence_decay %.2f: %w", est.ConfidenceDecay, ErrConfigInvalid)
	}
	if est.MaxConsecutiveMisses < 1 {
		return fmt.Errorf("max_consecutive_misses %d: %w", est.MaxConsecutiveMisses, ErrConfigInvalid)
	}

	act := c.Actuator
	if act.JitterPx < 0 {
		return fmt.Errorf("jitter_px %d: %w", act.JitterPx, ErrConfigInvalid)
	}
	if act.MinDelayMs < 0 || act.MaxDelayMs < act.MinDelayMs {
		return fmt.Errorf("delay window %d-%dms: %w", act.MinDelayMs, act.MaxDelayMs, ErrConfigInvalid)
	}
	if act.ClickIntervalMs <= 0 {
		return fmt.Errorf("click_interval_ms %d: %w", act.ClickIntervalMs, ErrConfigInvalid)
	}

	return nil
}

// LoadConfig reads and validates configuration from path. A missing file
// yields the validated defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := sonic.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SaveConfig writes configuration to path for the next run.
func SaveConfig(path string, cfg Config) error {
	data, err := sonic.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
