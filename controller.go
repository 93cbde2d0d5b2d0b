// Package main - controller.go
//
// This file decides the corrective input for one tick of the minigame.
//
// Decide is pure: the same state, previous command, and tuning always produce
// the same command, which keeps the control path replayable from a telemetry
// trace. All positions are normalized bar coordinates.
//
// Decision priority:
//
//  1. No direction hint: hold the previous kind and bleed intensity off
//     linearly. The game hides the arrow briefly mid-swing; dropping input
//     to zero at once makes the indicator snap back.
//  2. Pursuit: an unstable estimate with the indicator nearly at the edge
//     the arrow points to means the fish is pinned there; commit toward the
//     edge with intensity approaching full.
//  3. Boundary correction: indicator past a boundary threshold corrects
//     toward the fish, which is away from the edge unless the fish itself is
//     pinned there. Intensity ramps linearly over half the boundary zone.
//     Edge handling outranks the deadzone: a fish hugging the boundary must
//     be chased even when the indicator already sits near it.
//  4. Deadzone: indicator close enough to the fish (narrow band when the
//     estimate is stable, wide band when not) gets rapid stabilize clicks
//     at zero intensity.
//  5. Interior tracking: stable estimates track the fish with a capped
//     proportional gain, unstable ones chase it with a hotter gain.
//
// Hold durations and counter-strafes are asymmetric per side because the
// indicator responds differently to button hold (rightward) and release
// (leftward drift).
package main

import (
	"math"
	"time"
)

// Decide maps a minigame state and the previous command to the next command.
// tick is the loop interval the duration shaping is anchored to.
func Decide(st MinigameState, prev ActionCommand, tick time.Duration, cfg ControlConfig) ActionCommand {
	if st.Arrow == ArrowNone {
		return shape(ActionCommand{
			Kind:      prev.Kind,
			Intensity: math.Max(0, prev.Intensity-cfg.DecayStep),
		}, tick, cfg)
	}

	if !st.Stable {
		edgeDist := st.IndicatorPos
		if st.Arrow == ArrowRight {
			edgeDist = 1 - st.IndicatorPos
		}
		if edgeDist < cfg.PursuitCutoff {
			kind := ActionPursueLeft
			if st.Arrow == ArrowRight {
				kind = ActionPursueRight
			}
			return shape(ActionCommand{Kind: kind, Intensity: Clamp01(1 - edgeDist)}, tick, cfg)
		}
	}

	if st.IndicatorPos < cfg.BoundaryLow {
		overshoot := cfg.BoundaryLow - st.IndicatorPos
		return shape(ActionCommand{
			Kind:      correctionKind(st),
			Intensity: Clamp01(overshoot / (cfg.BoundaryLow / 2)),
		}, tick, cfg)
	}
	if st.IndicatorPos > cfg.BoundaryHigh {
		overshoot := st.IndicatorPos - cfg.BoundaryHigh
		return shape(ActionCommand{
			Kind:      correctionKind(st),
			Intensity: Clamp01(overshoot / ((1 - cfg.BoundaryHigh) / 2)),
		}, tick, cfg)
	}

	offset := st.IndicatorPos - st.FishPos
	dz := cfg.DeadzoneHalfWidth
	if !st.Stable {
		dz = cfg.WideHalfWidth
	}
	if math.Abs(offset) <= dz {
		return shape(ActionCommand{Kind: ActionStabilize}, tick, cfg)
	}

	if st.Stable {
		kind := ActionTrackLeft
		if st.Arrow == ArrowRight {
			kind = ActionTrackRight
		}
		beyond := math.Abs(offset) - cfg.DeadzoneHalfWidth
		return shape(ActionCommand{
			Kind:      kind,
			Intensity: math.Min(cfg.TrackingCap, cfg.TrackingGain*beyond),
		}, tick, cfg)
	}

	kind := ActionPursueLeft
	if st.Arrow == ArrowRight {
		kind = ActionPursueRight
	}
	return shape(ActionCommand{
		Kind:      kind,
		Intensity: Clamp01(cfg.UnstableGain * math.Abs(offset)),
	}, tick, cfg)
}

// correctionKind picks the corrective direction inside a boundary zone:
// toward the fish, never blindly into the edge. When the fish sits exactly
// under the indicator the arrow breaks the tie.
func correctionKind(st MinigameState) ActionKind {
	switch {
	case st.FishPos < st.IndicatorPos:
		return ActionCorrectLeft
	case st.FishPos > st.IndicatorPos:
		return ActionCorrectRight
	case st.Arrow == ArrowLeft:
		return ActionCorrectLeft
	default:
		return ActionCorrectRight
	}
}

// shape fills in hold duration and counter-strafe for a decided kind and
// intensity.
func shape(cmd ActionCommand, tick time.Duration, cfg ControlConfig) ActionCommand {
	if cmd.Kind == ActionStabilize && cmd.Intensity == 0 {
		cmd.Duration = tick
		cmd.CounterStrafe = 0
		return cmd
	}

	mult, div := sideShaping(cmd.Kind, cfg)
	cmd.Duration = time.Duration(float64(tick) * (1 + mult*cmd.Intensity))
	if div > 0 {
		cmd.CounterStrafe = time.Duration(float64(cmd.Duration) / div)
	}
	return cmd
}

func sideShaping(kind ActionKind, cfg ControlConfig) (mult, div float64) {
	switch kind {
	case ActionTrackLeft:
		return cfg.StableLeftMult, cfg.StableLeftDiv
	case ActionTrackRight:
		return cfg.StableRightMult, cfg.StableRightDiv
	case ActionCorrectLeft, ActionPursueLeft:
		return cfg.UnstableLeftMult, cfg.UnstableLeftDiv
	case ActionCorrectRight, ActionPursueRight:
		return cfg.UnstableRightMult, cfg.UnstableRightDiv
	default:
		return 0, 0
	}
}
