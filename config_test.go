package main

import (
	"errors"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("defaults failed validation: %v", err)
	}
}

func TestConfigValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty window title", func(c *Config) { c.WindowTitle = "" }},
		{"tick too fast", func(c *Config) { c.TickIntervalMs = 20 }},
		{"tick too slow", func(c *Config) { c.TickIntervalMs = 500 }},
		{"zero dpi scale", func(c *Config) { c.DPIScale = 0 }},
		{"region outside unit square", func(c *Config) { c.MinigameRegion.Rect.X = 0.9 }},
		{"threshold too low", func(c *Config) { c.MatchThreshold = 0.3 }},
		{"threshold too high", func(c *Config) { c.MatchThreshold = 0.95 }},
		{"override threshold out of range", func(c *Config) { c.Thresholds[templateFish] = 0.2 }},
		{"no match scales", func(c *Config) { c.MatchScales = nil }},
		{"negative scale", func(c *Config) { c.MatchScales = []float64{1.0, -0.5} }},
		{"deadzone too wide", func(c *Config) { c.Control.DeadzoneHalfWidth = 0.6 }},
		{"boundaries inverted", func(c *Config) { c.Control.BoundaryLow, c.Control.BoundaryHigh = 0.8, 0.2 }},
		{"zero decay", func(c *Config) { c.Control.DecayStep = 0 }},
		{"zero debounce", func(c *Config) { c.Estimator.DebounceTicks = 0 }},
		{"zero miss grace", func(c *Config) { c.Estimator.MaxConsecutiveMisses = 0 }},
		{"negative jitter", func(c *Config) { c.Actuator.JitterPx = -1 }},
		{"inverted delay window", func(c *Config) { c.Actuator.MinDelayMs, c.Actuator.MaxDelayMs = 200, 100 }},
		{"zero click interval", func(c *Config) { c.Actuator.ClickIntervalMs = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrConfigInvalid) {
				t.Fatalf("got %v, want ErrConfigInvalid", err)
			}
		})
	}
}

func TestThresholdFor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MatchThreshold = 0.60
	cfg.Thresholds = map[string]float64{templateIndicator: 0.70}

	if got := cfg.ThresholdFor(templateIndicator); got != 0.70 {
		t.Errorf("override: got %.2f, want 0.70", got)
	}
	if got := cfg.ThresholdFor(templateFish); got != 0.60 {
		t.Errorf("fallback: got %.2f, want 0.60", got)
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir() + "/nope.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.WindowTitle != DefaultConfig().WindowTitle {
		t.Fatalf("got %q, want defaults", cfg.WindowTitle)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	path := t.TempDir() + "/config.json"
	cfg := DefaultConfig()
	cfg.TickIntervalMs = 80
	cfg.Control.BoundaryLow = 0.2

	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.TickIntervalMs != 80 || loaded.Control.BoundaryLow != 0.2 {
		t.Fatalf("round trip lost values: %+v", loaded)
	}
}
