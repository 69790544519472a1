package tileset

import (
	"image"
	"image/color"

	"toyworld/internal/core"
)

// defaultKinds fixes the tile id of every built-in kind: id = index+1.
var defaultKinds = []string{"floor", "wall", "fireplace", "fireplace_burning", "bush", "ash", "avatar"}

const (
	defaultTileSize = 16
	defaultPerRow   = 4
)

// Default returns a tileset whose sheet is generated in memory, so a world
// can be rendered without any asset files.
func Default() *Table {
	t := &Table{
		TileSize: core.Size{W: defaultTileSize, H: defaultTileSize},
		ids:      make(map[string]int, len(defaultKinds)),
	}
	for i, k := range defaultKinds {
		t.ids[k] = i + 1
	}
	t.images = ImageSet{name: "default", generated: buildDefaultSheet(t)}
	return t
}

func buildDefaultSheet(t *Table) *image.RGBA {
	rows := (len(defaultKinds) + defaultPerRow - 1) / defaultPerRow
	sheet := image.NewRGBA(image.Rect(0, 0, defaultPerRow*defaultTileSize, rows*defaultTileSize))
	size := core.Size{W: sheet.Bounds().Dx(), H: sheet.Bounds().Dy()}
	for _, kind := range defaultKinds {
		r, _ := t.SourceRect(t.ids[kind], size)
		paintTile(sheet, r, kind)
	}
	return sheet
}

// paintTile fills r with the base colour of kind, a darker rim and, for
// burning kinds, a bright core.
func paintTile(sheet *image.RGBA, r image.Rectangle, kind string) {
	base := kindColor(kind)
	rim := blendColors(base, color.NRGBA{A: 255}, 0.35)
	glow := blendColors(base, color.NRGBA{R: 255, G: 230, B: 120, A: 255}, 0.7)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := base
			edge := x == r.Min.X || y == r.Min.Y || x == r.Max.X-1 || y == r.Max.Y-1
			inner := x-r.Min.X >= r.Dx()/4 && x-r.Min.X < r.Dx()*3/4 && y-r.Min.Y >= r.Dy()/4 && y-r.Min.Y < r.Dy()*3/4
			switch {
			case edge:
				c = rim
			case inner && kind == "fireplace_burning":
				c = glow
			}
			sheet.SetRGBA(x, y, toRGBA(c))
		}
	}
}

func kindColor(kind string) color.NRGBA {
	switch kind {
	case "floor":
		return color.NRGBA{R: 70, G: 52, B: 32, A: 255}
	case "wall":
		return color.NRGBA{R: 130, G: 130, B: 130, A: 255}
	case "fireplace":
		return color.NRGBA{R: 90, G: 60, B: 50, A: 255}
	case "fireplace_burning":
		return color.NRGBA{R: 255, G: 130, B: 40, A: 255}
	case "bush":
		return color.NRGBA{R: 60, G: 125, B: 60, A: 255}
	case "ash":
		return color.NRGBA{R: 60, G: 60, B: 64, A: 255}
	case "avatar":
		return color.NRGBA{R: 70, G: 120, B: 220, A: 255}
	default:
		return color.NRGBA{R: 255, G: 0, B: 255, A: 255}
	}
}

func toRGBA(c color.NRGBA) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func blendColors(base, overlay color.NRGBA, overlayWeight float64) color.NRGBA {
	if overlayWeight <= 0 {
		return base
	}
	if overlayWeight >= 1 {
		return overlay
	}
	br, bg, bb, ba := float64(base.R), float64(base.G), float64(base.B), float64(base.A)
	or, og, ob, oa := float64(overlay.R), float64(overlay.G), float64(overlay.B), float64(overlay.A)
	w := overlayWeight
	inv := 1 - w
	return color.NRGBA{
		R: uint8(br*inv + or*w + 0.5),
		G: uint8(bg*inv + og*w + 0.5),
		B: uint8(bb*inv + ob*w + 0.5),
		A: uint8(ba*inv + oa*w + 0.5),
	}
}
