// Package main - capture.go
//
// This file captures frames of the calibrated minigame region.
//
// FrameCapturer is the OS capability; the screenshot-backed implementation
// grabs the absolute pixel rect with kbinani/screenshot. The library call is
// not context-aware, so the capture runs on its own goroutine and the caller
// observes the deadline through a select. A capture that outlives its tick is
// abandoned, its result discarded when it eventually lands.
package main

import (
	"context"
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

// FrameCapturer grabs a screen rectangle as an RGBA frame.
type FrameCapturer interface {
	Capture(ctx context.Context, rect Bounds) (*image.RGBA, error)
}

type screenCapturer struct{}

// NewScreenCapturer returns the native display capturer.
func NewScreenCapturer() FrameCapturer {
	return screenCapturer{}
}

type captureResult struct {
	img *image.RGBA
	err error
}

func (screenCapturer) Capture(ctx context.Context, rect Bounds) (*image.RGBA, error) {
	if rect.Empty() {
		return nil, fmt.Errorf("capture rect %+v: %w", rect, ErrRegionInvalid)
	}

	done := make(chan captureResult, 1)
	go func() {
		img, err := screenshot.CaptureRect(image.Rect(rect.X, rect.Y, rect.X+rect.W, rect.Y+rect.H))
		done <- captureResult{img: img, err: err}
	}()

	select {
	case <-ctx.Done():
		capLog.Warn().Interface("rect", rect).Msg("capture deadline exceeded")
		return nil, fmt.Errorf("capture: %w", ctx.Err())
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("capture rect %+v: %w", rect, res.err)
		}
		return res.img, nil
	}
}
