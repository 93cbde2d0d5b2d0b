// Package main - estimator.go
//
// This file turns raw template matches into a debounced minigame state.
//
// A tick with an indicator match is a hit, anything else a miss. Stability is
// asymmetric: one miss clears the stable flag immediately, while declaring it
// again takes DebounceTicks consecutive hits, so a single noisy frame cannot
// flip the controller into its aggressive stable gains. Confidence resets to
// full on a hit and decays by a fixed step per miss; at zero, or past the
// consecutive-miss grace, the estimate counts as lost and the session decides
// whether that is fatal.
//
// The fish marker drops out of frame more often than the indicator does, so
// the estimator keeps the last known fish position across fishless hits.
package main

import "errors"

// ErrDetectionLost reports that the estimator has no usable fix on the
// minigame bar.
var ErrDetectionLost = errors.New("minigame detection lost")

// Estimator maintains the debounced state of the minigame bar.
type Estimator struct {
	cfg EstimatorConfig

	consecHits   int
	consecMisses int
	confidence   float64

	state    MinigameState
	hasState bool

	lastFishPos float64
	hasFish     bool
}

// NewEstimator creates an estimator with full confidence and no fix.
func NewEstimator(cfg EstimatorConfig) *Estimator {
	return &Estimator{cfg: cfg, confidence: 1.0}
}

// Observe folds one tick of matches into the estimate. frameWidth is the
// captured bar width in pixels. The returned bool is false when the tick was
// a miss; the state then carries the decayed confidence and cleared stable
// flag alongside the last known positions.
func (e *Estimator) Observe(frameWidth int, matches []MatchResult) (MinigameState, bool) {
	indicator, okInd := findMatch(matches, templateIndicator)
	if !okInd || frameWidth <= 0 {
		return e.miss(), false
	}

	e.consecHits++
	e.consecMisses = 0
	e.confidence = 1.0

	st := MinigameState{
		IndicatorPos: Clamp01(float64(indicator.Location.X) / float64(frameWidth)),
		Arrow:        dominantArrow(matches),
		Stable:       e.consecHits >= e.cfg.DebounceTicks,
		Confidence:   e.confidence,
	}

	if fish, ok := findMatch(matches, templateFish); ok {
		st.FishPos = Clamp01(float64(fish.Location.X) / float64(frameWidth))
		e.lastFishPos = st.FishPos
		e.hasFish = true
	} else if e.hasFish {
		st.FishPos = e.lastFishPos
	} else {
		st.FishPos = 0.5
	}

	e.state = st
	e.hasState = true
	estLog.Debug().Float64("indicator", st.IndicatorPos).Float64("fish", st.FishPos).
		Str("arrow", st.Arrow.String()).Bool("stable", st.Stable).Msg("state updated")
	return st, true
}

func (e *Estimator) miss() MinigameState {
	e.consecHits = 0
	e.consecMisses++
	e.confidence = ClampFloat(e.confidence-e.cfg.ConfidenceDecay, 0, 1)

	st := e.state
	st.Stable = false
	st.Arrow = ArrowNone
	st.Confidence = e.confidence
	e.state = st

	estLog.Debug().Int("misses", e.consecMisses).Float64("confidence", e.confidence).
		Msg("detection miss")
	return st
}

// Lost reports whether the estimate is no longer trustworthy.
func (e *Estimator) Lost() bool {
	return e.confidence <= 0 || e.consecMisses >= e.cfg.MaxConsecutiveMisses
}

// ConsecutiveMisses returns the current miss streak.
func (e *Estimator) ConsecutiveMisses() int {
	return e.consecMisses
}

// Confidence returns the current confidence in [0,1].
func (e *Estimator) Confidence() float64 {
	return e.confidence
}

// Reset clears the estimate for a fresh minigame.
func (e *Estimator) Reset() {
	*e = Estimator{cfg: e.cfg, confidence: 1.0}
}

func findMatch(matches []MatchResult, name string) (MatchResult, bool) {
	for _, m := range matches {
		if m.Template == name {
			return m, true
		}
	}
	return MatchResult{}, false
}

// dominantArrow picks the direction hint. When both arrows somehow match,
// the higher score wins.
func dominantArrow(matches []MatchResult) ArrowDirection {
	left, okL := findMatch(matches, templateArrowLeft)
	right, okR := findMatch(matches, templateArrowRight)
	switch {
	case okL && okR:
		if left.Score >= right.Score {
			return ArrowLeft
		}
		return ArrowRight
	case okL:
		return ArrowLeft
	case okR:
		return ArrowRight
	default:
		return ArrowNone
	}
}
