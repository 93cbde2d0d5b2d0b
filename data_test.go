package main

import (
	"errors"
	"testing"
)

func TestRegionToAbsolute(t *testing.T) {
	win := Bounds{X: 100, Y: 50, W: 1920, H: 1080}
	region := Region{Name: "bar", Rect: RectF{X: 0.25, Y: 0.5, W: 0.5, H: 0.1}}

	abs, err := region.ToAbsolute(win, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Bounds{X: 580, Y: 590, W: 960, H: 108}
	if abs != want {
		t.Fatalf("got %+v, want %+v", abs, want)
	}
}

func TestRegionToAbsoluteDeterministic(t *testing.T) {
	win := Bounds{X: 7, Y: 13, W: 1366, H: 768}
	region := Region{Name: "bar", Rect: RectF{X: 0.1, Y: 0.2, W: 0.3, H: 0.4}}

	first, err := region.ToAbsolute(win, 1.25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, _ := region.ToAbsolute(win, 1.25)
		if again != first {
			t.Fatalf("resolution diverged: %+v vs %+v", again, first)
		}
	}
}

func TestRegionToAbsoluteInvalid(t *testing.T) {
	win := Bounds{X: 0, Y: 0, W: 800, H: 600}
	tests := []struct {
		name  string
		rect  RectF
		win   Bounds
		scale float64
	}{
		{"zero width", RectF{X: 0.1, Y: 0.1, W: 0, H: 0.2}, win, 1.0},
		{"negative origin", RectF{X: -0.1, Y: 0.1, W: 0.2, H: 0.2}, win, 1.0},
		{"exceeds unit square", RectF{X: 0.9, Y: 0.1, W: 0.2, H: 0.2}, win, 1.0},
		{"empty window", RectF{X: 0.1, Y: 0.1, W: 0.2, H: 0.2}, Bounds{}, 1.0},
		{"zero scale", RectF{X: 0.1, Y: 0.1, W: 0.2, H: 0.2}, win, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Region{Name: "bad", Rect: tt.rect}.ToAbsolute(tt.win, tt.scale)
			if !errors.Is(err, ErrRegionInvalid) {
				t.Fatalf("got %v, want ErrRegionInvalid", err)
			}
		})
	}
}

func TestActionKindSides(t *testing.T) {
	leftKinds := []ActionKind{ActionTrackLeft, ActionCorrectLeft, ActionPursueLeft}
	rightKinds := []ActionKind{ActionTrackRight, ActionCorrectRight, ActionPursueRight}

	for _, k := range leftKinds {
		if !k.MovesLeft() || k.MovesRight() {
			t.Errorf("%v side flags wrong", k)
		}
	}
	for _, k := range rightKinds {
		if !k.MovesRight() || k.MovesLeft() {
			t.Errorf("%v side flags wrong", k)
		}
	}
	if ActionStabilize.MovesLeft() || ActionStabilize.MovesRight() {
		t.Error("stabilize should not have a side")
	}
}
