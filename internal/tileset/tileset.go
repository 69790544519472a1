// Package tileset maps actor kinds to tile ids and loads the images those
// ids index into.
package tileset

import (
	"fmt"
	"image"
	"image/color"
	_ "image/png" // tileset sheets are PNG
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"golang.org/x/image/draw"
	"gopkg.in/yaml.v3"

	"toyworld/internal/core"
)

// Table describes a tileset: tile geometry, source images and the tile id of
// every actor kind. Tile ids start at 1; 0 means "draw nothing".
type Table struct {
	TileSize    core.Size
	TileMargins core.Size
	images      ImageSet
	ids         map[string]int
}

type sizeDoc struct {
	W int `yaml:"w"`
	H int `yaml:"h"`
}

type tableDoc struct {
	TileSize    sizeDoc        `yaml:"tile_size"`
	TileMargins sizeDoc        `yaml:"tile_margins"`
	Images      []string       `yaml:"images"`
	Tiles       map[string]int `yaml:"tiles"`
}

// Load reads a YAML tileset table. Image paths are relative to the table.
func Load(file string) (*Table, error) {
	dir, name := path.Split(file)
	if dir == "" {
		dir = "."
	}
	return LoadFS(os.DirFS(dir), name)
}

// LoadFS reads a YAML tileset table from fsys.
func LoadFS(fsys fs.FS, name string) (*Table, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read tileset %s: %w", name, err)
	}
	var doc tableDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse tileset %s: %w", name, err)
	}
	if doc.TileSize.W <= 0 || doc.TileSize.H <= 0 {
		return nil, fmt.Errorf("tileset %s: tile_size must be positive", name)
	}
	if len(doc.Images) == 0 {
		return nil, fmt.Errorf("tileset %s: no images", name)
	}
	base := path.Dir(name)
	paths := make([]string, len(doc.Images))
	for i, img := range doc.Images {
		paths[i] = path.Join(base, img)
	}
	t := &Table{
		TileSize:    core.Size{W: doc.TileSize.W, H: doc.TileSize.H},
		TileMargins: core.Size{W: doc.TileMargins.W, H: doc.TileMargins.H},
		images:      ImageSet{paths: paths, fsys: fsys},
		ids:         make(map[string]int, len(doc.Tiles)),
	}
	for kind, id := range doc.Tiles {
		if id <= 0 {
			return nil, fmt.Errorf("tileset %s: tile %q has id %d, ids start at 1", name, kind, id)
		}
		t.ids[kind] = id
	}
	return t, nil
}

// ID returns the tile id for kind, or 0 when the kind has no tile.
func (t *Table) ID(kind string) int { return t.ids[kind] }

// Kinds lists the kinds with a tile, sorted.
func (t *Table) Kinds() []string {
	kinds := make([]string, 0, len(t.ids))
	for k := range t.ids {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Images returns the image set backing the tileset texture.
func (t *Table) Images() ImageSet { return t.images }

// FullTileSize is the tile size plus margins: the stride between tiles in
// the sheet.
func (t *Table) FullTileSize() core.Size {
	return core.Size{W: t.TileSize.W + t.TileMargins.W, H: t.TileSize.H + t.TileMargins.H}
}

// SourceRect returns the rectangle of tile id inside a sheet of the given
// size, or false when the id is out of range.
func (t *Table) SourceRect(id int, sheet core.Size) (image.Rectangle, bool) {
	full := t.FullTileSize()
	if id <= 0 || full.W <= 0 || full.H <= 0 {
		return image.Rectangle{}, false
	}
	perRow := sheet.W / full.W
	rows := sheet.H / full.H
	if perRow == 0 || id-1 >= perRow*rows {
		return image.Rectangle{}, false
	}
	col := (id - 1) % perRow
	row := (id - 1) / perRow
	origin := image.Pt(col*full.W, row*full.H)
	return image.Rectangle{Min: origin, Max: origin.Add(image.Pt(t.TileSize.W, t.TileSize.H))}, true
}

// ImageSet identifies the images composing a tileset texture. Equal sets
// share a Key, which is what texture caches are keyed by.
type ImageSet struct {
	paths     []string
	fsys      fs.FS
	generated *image.RGBA
	name      string
}

// Key returns a stable identifier for the set.
func (s ImageSet) Key() string {
	if s.generated != nil {
		return "generated:" + s.name
	}
	return strings.Join(s.paths, ";")
}

// Load decodes the images and stacks them vertically into one sheet.
func (s ImageSet) Load() (*image.RGBA, error) {
	if s.generated != nil {
		return s.generated, nil
	}
	var imgs []image.Image
	var size core.Size
	for _, p := range s.paths {
		f, err := s.fsys.Open(p)
		if err != nil {
			return nil, fmt.Errorf("open tileset image %s: %w", p, err)
		}
		img, _, err := image.Decode(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("decode tileset image %s: %w", p, err)
		}
		b := img.Bounds()
		size.W = max(size.W, b.Dx())
		size.H += b.Dy()
		imgs = append(imgs, img)
	}
	if len(imgs) == 0 {
		return nil, fmt.Errorf("tileset has no images")
	}
	sheet := image.NewRGBA(image.Rect(0, 0, size.W, size.H))
	y := 0
	for _, img := range imgs {
		b := img.Bounds()
		draw.Draw(sheet, image.Rect(0, y, b.Dx(), y+b.Dy()), img, b.Min, draw.Src)
		y += b.Dy()
	}
	return sheet, nil
}

// Color returns the average colour of tile id, useful for low resolution
// previews.
func (t *Table) Color(sheet *image.RGBA, id int) color.RGBA {
	r, ok := t.SourceRect(id, core.Size{W: sheet.Bounds().Dx(), H: sheet.Bounds().Dy()})
	if !ok {
		return color.RGBA{}
	}
	var sr, sg, sb, sa, n uint32
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := sheet.RGBAAt(x, y)
			sr += uint32(c.R)
			sg += uint32(c.G)
			sb += uint32(c.B)
			sa += uint32(c.A)
			n++
		}
	}
	if n == 0 {
		return color.RGBA{}
	}
	return color.RGBA{R: uint8(sr / n), G: uint8(sg / n), B: uint8(sb / n), A: uint8(sa / n)}
}
