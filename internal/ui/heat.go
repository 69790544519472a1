// Package ui holds the windowed host's overlays: the heat map and the
// parameter panel.
package ui

import (
	"image/color"
	"math"

	"toyworld/internal/atlas"
	"toyworld/internal/core"
)

// HeatTint colours the heat overlay.
var HeatTint = color.RGBA{R: 255, G: 120, B: 40}

// HeatMask fills buf with one RGBA pixel per tile of rect, top row first,
// tinted by the temperature at each tile relative to maxHeat. Cold
// tiles are transparent.
func HeatMask(a *atlas.Atlas, rect core.Rect, maxHeat float32, buf []byte) []byte {
	total := rect.W * rect.H
	if cap(buf) < 4*total {
		buf = make([]byte, 4*total)
	}
	buf = buf[:4*total]
	const (
		maxAlpha      = 140.0
		glowBase      = 0.35
		glowRange     = 0.65
		intensityBias = 0.75
	)
	for row := 0; row < rect.H; row++ {
		y := rect.Y + rect.H - 1 - row
		for col := 0; col < rect.W; col++ {
			base := (row*rect.W + col) * 4
			var intensity float64
			if maxHeat > 0 {
				t := a.Temperature(core.Vector2I{X: rect.X + col, Y: y}.Float())
				intensity = clamp01(float64(t / maxHeat))
			}
			if intensity == 0 {
				buf[base+0], buf[base+1], buf[base+2], buf[base+3] = 0, 0, 0, 0
				continue
			}
			alpha := uint8(math.Round(maxAlpha * math.Pow(intensity, intensityBias)))
			glow := glowBase + glowRange*math.Sqrt(intensity)
			buf[base+0] = scaleColorComponent(HeatTint.R, glow)
			buf[base+1] = scaleColorComponent(HeatTint.G, glow)
			buf[base+2] = scaleColorComponent(HeatTint.B, glow)
			buf[base+3] = alpha
		}
	}
	return buf
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func scaleColorComponent(value uint8, factor float64) uint8 {
	scaled := float64(value) * factor
	if scaled < 0 {
		return 0
	}
	if scaled > 255 {
		return 255
	}
	return uint8(math.Round(scaled))
}
