package tileset

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"testing/fstest"

	"toyworld/internal/core"
)

func TestDefaultTable(t *testing.T) {
	tab := Default()
	if tab.ID("floor") != 1 || tab.ID("fireplace_burning") != 4 {
		t.Fatalf("unexpected default ids floor=%d burning=%d", tab.ID("floor"), tab.ID("fireplace_burning"))
	}
	if tab.ID("dragon") != 0 {
		t.Fatal("unknown kinds should map to 0")
	}

	sheet, err := tab.Images().Load()
	if err != nil {
		t.Fatal(err)
	}
	if sheet.Bounds().Dx() != 64 || sheet.Bounds().Dy() != 32 {
		t.Fatalf("unexpected sheet size %v", sheet.Bounds())
	}
	if c := tab.Color(sheet, tab.ID("wall")); c.A != 255 || c.R < 100 {
		t.Fatalf("wall tile should be opaque grey, got %+v", c)
	}
	if tab.Images().Key() != Default().Images().Key() {
		t.Fatal("equal image sets must share a key")
	}
}

func TestSourceRect(t *testing.T) {
	tab := &Table{TileSize: core.Size{W: 8, H: 8}, TileMargins: core.Size{W: 2, H: 2}}
	sheet := core.Size{W: 30, H: 20}

	r, ok := tab.SourceRect(4, sheet)
	if !ok {
		t.Fatal("id 4 should fit a 3x2 sheet")
	}
	if r != image.Rect(0, 10, 8, 18) {
		t.Fatalf("unexpected rect for id 4: %v", r)
	}
	if _, ok := tab.SourceRect(7, sheet); ok {
		t.Fatal("id 7 is past the end of a 3x2 sheet")
	}
	if _, ok := tab.SourceRect(0, sheet); ok {
		t.Fatal("id 0 never has a source")
	}
}

func TestLoadFSStacksImages(t *testing.T) {
	fsys := fstest.MapFS{
		"tiles/table.yaml": {Data: []byte(`
tile_size: {w: 4, h: 4}
images: [a.png, b.png]
tiles:
  floor: 1
  wall: 3
`)},
		"tiles/a.png": {Data: encodePNG(t, 8, 4, color.RGBA{R: 255, A: 255})},
		"tiles/b.png": {Data: encodePNG(t, 8, 4, color.RGBA{B: 255, A: 255})},
	}

	tab, err := LoadFS(fsys, "tiles/table.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if tab.ID("wall") != 3 {
		t.Fatalf("expected wall id 3, got %d", tab.ID("wall"))
	}
	if tab.Images().Key() != "tiles/a.png;tiles/b.png" {
		t.Fatalf("unexpected key %q", tab.Images().Key())
	}
	sheet, err := tab.Images().Load()
	if err != nil {
		t.Fatal(err)
	}
	if sheet.Bounds().Dy() != 8 {
		t.Fatalf("images should stack vertically, got %v", sheet.Bounds())
	}
	if c := tab.Color(sheet, 3); c.B != 255 || c.R != 0 {
		t.Fatalf("tile 3 should come from the second image, got %+v", c)
	}
}

func TestLoadFSRejectsBadIDs(t *testing.T) {
	fsys := fstest.MapFS{
		"t.yaml": {Data: []byte("tile_size: {w: 4, h: 4}\nimages: [a.png]\ntiles: {floor: 0}\n")},
	}
	if _, err := LoadFS(fsys, "t.yaml"); err == nil {
		t.Fatal("id 0 should be rejected")
	}
}

func encodePNG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}
