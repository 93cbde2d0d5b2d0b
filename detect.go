// Package main - detect.go
//
// This file implements template detection on captured frames using OpenCV
// normalized cross-correlation.
//
// The gocv matcher converts the frame to a grayscale Mat once per call, then
// runs MatchTemplate (TmCcoeffNormed) for every requested template across the
// prebuilt scale variants and keeps the best-scoring location per template.
// Scores below the per-template threshold are dropped. The matcher holds no
// state between calls other than the cached template Mats.
//
// Mat lifecycle: template Mats live for the matcher's lifetime and are
// released in Close. Per-call Mats (frame, gray, result) are released before
// the call returns.
package main

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Matcher finds template occurrences inside a frame. One implementation is
// chosen at composition time; tests substitute a scripted one.
type Matcher interface {
	// Match returns at most one result per requested template, best scale
	// wins. Templates that never reach their threshold are absent.
	Match(frame *image.RGBA, names []string) ([]MatchResult, error)
	Close()
}

// gocvMatcher implements Matcher with OpenCV template matching.
type gocvMatcher struct {
	templates map[string][]templateMat
	threshold func(name string) float64
}

type templateMat struct {
	scale float64
	mat   gocv.Mat
}

// NewGocvMatcher builds a matcher from the template store. The threshold
// function maps a template name to its minimum acceptable score.
func NewGocvMatcher(store *TemplateStore, threshold func(string) float64) (Matcher, error) {
	m := &gocvMatcher{
		templates: make(map[string][]templateMat),
		threshold: threshold,
	}

	names := append(append([]string{}, minigameTemplates...), rodTemplates...)
	for _, name := range names {
		for _, variant := range store.Variants(name) {
			mat, err := gocv.ImageGrayToMatGray(variant.Gray)
			if err != nil {
				m.Close()
				return nil, fmt.Errorf("template %q scale %.2f to mat: %w", name, variant.Scale, err)
			}
			m.templates[name] = append(m.templates[name], templateMat{scale: variant.Scale, mat: mat})
		}
	}
	return m, nil
}

func (m *gocvMatcher) Match(frame *image.RGBA, names []string) ([]MatchResult, error) {
	src, err := gocv.ImageToMatRGBA(frame)
	if err != nil {
		return nil, fmt.Errorf("frame to mat: %w", err)
	}
	defer src.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorRGBAToGray)

	mask := gocv.NewMat()
	defer mask.Close()

	var results []MatchResult
	for _, name := range names {
		variants := m.templates[name]
		if len(variants) == 0 {
			return nil, fmt.Errorf("unknown template %q", name)
		}

		best := MatchResult{Template: name, Score: -1}
		for _, tm := range variants {
			if tm.mat.Cols() > gray.Cols() || tm.mat.Rows() > gray.Rows() {
				continue
			}

			result := gocv.NewMat()
			gocv.MatchTemplate(gray, tm.mat, &result, gocv.TmCcoeffNormed, mask)
			_, maxVal, _, maxLoc := gocv.MinMaxLoc(result)
			result.Close()

			if float64(maxVal) > best.Score {
				best.Score = float64(maxVal)
				best.Scale = tm.scale
				best.Location = Point{
					X: maxLoc.X + tm.mat.Cols()/2,
					Y: maxLoc.Y + tm.mat.Rows()/2,
				}
			}
		}

		if best.Score >= m.threshold(name) {
			detLog.Debug().Str("template", name).Float64("score", best.Score).
				Float64("scale", best.Scale).Msg("template matched")
			results = append(results, best)
		}
	}
	return results, nil
}

func (m *gocvMatcher) Close() {
	for _, variants := range m.templates {
		for _, tm := range variants {
			tm.mat.Close()
		}
	}
	m.templates = nil
}
