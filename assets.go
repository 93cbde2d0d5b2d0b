// Package main - assets.go
//
// This file loads the reference templates matched against captured frames:
// the white indicator, the fish marker, the direction arrows, the completion
// splash, and the rod hotbar icons.
//
// Templates are PNG files named "<template>.png" under the configured
// directory. At load time each one is converted to grayscale and resampled
// (CatmullRom) into every configured match scale, so the matcher works on
// prebuilt variants instead of rescaling per tick. The store is read-only
// after Load.
package main

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	xdraw "golang.org/x/image/draw"
)

// Template names, doubling as asset file basenames.
const (
	templateIndicator     = "indicator"
	templateFish          = "fish"
	templateArrowLeft     = "arrow_left"
	templateArrowRight    = "arrow_right"
	templateDone          = "minigame_done"
	templateRodEquipped   = "rod_equipped"
	templateRodUnequipped = "rod_unequipped"
)

// minigameTemplates are matched every tick inside the bar region.
var minigameTemplates = []string{
	templateIndicator,
	templateFish,
	templateArrowLeft,
	templateArrowRight,
	templateDone,
}

// rodTemplates are matched against the hotbar during calibration.
var rodTemplates = []string{
	templateRodEquipped,
	templateRodUnequipped,
}

// TemplateVariant is one grayscale rendition of a template at a given scale.
type TemplateVariant struct {
	Scale float64
	Gray  *image.Gray
}

// TemplateStore holds the loaded templates and their scaled variants.
type TemplateStore struct {
	variants map[string][]TemplateVariant
}

// LoadTemplates reads all known templates from dir and prebuilds grayscale
// variants for each scale. Every template must be present.
func LoadTemplates(dir string, scales []float64) (*TemplateStore, error) {
	store := &TemplateStore{variants: make(map[string][]TemplateVariant)}

	names := append(append([]string{}, minigameTemplates...), rodTemplates...)
	for _, name := range names {
		path := filepath.Join(dir, name+".png")
		gray, err := loadGrayPNG(path)
		if err != nil {
			return nil, fmt.Errorf("template %q: %w", name, err)
		}

		variants := make([]TemplateVariant, 0, len(scales))
		for _, scale := range scales {
			variants = append(variants, TemplateVariant{
				Scale: scale,
				Gray:  resampleGray(gray, scale),
			})
		}
		store.variants[name] = variants
	}

	return store, nil
}

// Variants returns the scaled renditions of a template, nil when unknown.
func (ts *TemplateStore) Variants(name string) []TemplateVariant {
	return ts.variants[name]
}

func loadGrayPNG(path string) (*image.Gray, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}

	gray := image.NewGray(img.Bounds())
	draw.Draw(gray, gray.Bounds(), img, img.Bounds().Min, draw.Src)
	return gray, nil
}

// resampleGray scales a grayscale image by factor using CatmullRom, which
// keeps the thin bar markers crisp enough to match.
func resampleGray(src *image.Gray, scale float64) *image.Gray {
	if scale == 1.0 {
		return src
	}
	w := int(float64(src.Bounds().Dx()) * scale)
	h := int(float64(src.Bounds().Dy()) * scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}
