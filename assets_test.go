package main

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writeTestTemplates(t *testing.T, dir string) {
	t.Helper()
	names := append(append([]string{}, minigameTemplates...), rodTemplates...)
	for _, name := range names {
		img := image.NewRGBA(image.Rect(0, 0, 16, 12))
		for x := 0; x < 16; x++ {
			img.Set(x, 6, color.White)
		}

		f, err := os.Create(filepath.Join(dir, name+".png"))
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if err := png.Encode(f, img); err != nil {
			t.Fatalf("encode %s: %v", name, err)
		}
		f.Close()
	}
}

func TestLoadTemplates(t *testing.T) {
	dir := t.TempDir()
	writeTestTemplates(t, dir)

	scales := []float64{1.0, 0.5, 2.0}
	store, err := LoadTemplates(dir, scales)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	variants := store.Variants(templateIndicator)
	if len(variants) != len(scales) {
		t.Fatalf("%d variants, want %d", len(variants), len(scales))
	}

	wantWidths := []int{16, 8, 32}
	for i, v := range variants {
		if v.Scale != scales[i] {
			t.Errorf("variant %d scale %.2f, want %.2f", i, v.Scale, scales[i])
		}
		if got := v.Gray.Bounds().Dx(); got != wantWidths[i] {
			t.Errorf("scale %.2f width %d, want %d", v.Scale, got, wantWidths[i])
		}
	}

	if store.Variants("no_such_template") != nil {
		t.Error("unknown template returned variants")
	}
}

func TestLoadTemplatesMissingFile(t *testing.T) {
	dir := t.TempDir()
	// Deliberately incomplete asset set.
	if _, err := LoadTemplates(dir, []float64{1.0}); err == nil {
		t.Fatal("missing templates accepted")
	}
}
