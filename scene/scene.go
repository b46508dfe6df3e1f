// Package scene loads YAML scene files into a World.
package scene

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/plus3/glyphon/component"
	"github.com/plus3/glyphon/ecs"
)

// ErrInvalidScene is wrapped by every validation error.
var ErrInvalidScene = errors.New("scene: invalid scene")

// Scene is the file format.
type Scene struct {
	Name     string       `yaml:"name"`
	TileMaps []TileMapDef `yaml:"tile_maps"`
	Entities []EntityDef  `yaml:"entities"`
}

// TileMapDef builds a cols x rows map filled with Fill, then copies Lines
// over it row by row.
type TileMapDef struct {
	Cols  int      `yaml:"cols"`
	Rows  int      `yaml:"rows"`
	Fill  string   `yaml:"fill"`
	Lines []string `yaml:"lines"`
}

// EntityDef places one glyph. Position is either pixels (X, Y) or a grid
// Cell. Layer "overlay" (default) stamps the glyph onto the tile map;
// "free" draws it as a standalone batched glyph.
type EntityDef struct {
	Glyph string  `yaml:"glyph"`
	X     float32 `yaml:"x"`
	Y     float32 `yaml:"y"`
	Cell  []int   `yaml:"cell"`
	Layer string  `yaml:"layer"`
}

const (
	LayerOverlay = "overlay"
	LayerFree    = "free"
)

// Load reads and validates a scene file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates scene YAML.
func Parse(data []byte) (*Scene, error) {
	var s Scene
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks glyphs, layers, cells and tile map sizes.
func (s *Scene) Validate() error {
	for i, m := range s.TileMaps {
		if m.Cols <= 0 || m.Rows <= 0 {
			return fmt.Errorf("%w: tile map %d has size %dx%d", ErrInvalidScene, i, m.Cols, m.Rows)
		}
		if len(m.Fill) > 1 {
			return fmt.Errorf("%w: tile map %d fill %q is not one byte", ErrInvalidScene, i, m.Fill)
		}
		if len(m.Lines) > m.Rows {
			return fmt.Errorf("%w: tile map %d has %d lines for %d rows", ErrInvalidScene, i, len(m.Lines), m.Rows)
		}
	}
	for i, e := range s.Entities {
		if len(e.Glyph) != 1 {
			return fmt.Errorf("%w: entity %d glyph %q is not one byte", ErrInvalidScene, i, e.Glyph)
		}
		if e.Cell != nil && len(e.Cell) != 2 {
			return fmt.Errorf("%w: entity %d cell needs [col, row]", ErrInvalidScene, i)
		}
		switch e.Layer {
		case "", LayerOverlay, LayerFree:
		default:
			return fmt.Errorf("%w: entity %d layer %q", ErrInvalidScene, i, e.Layer)
		}
	}
	return nil
}

// Build creates the scene's entities in world. Cells are converted to pixels
// using the glyph size. Component types go through the world's registry, so
// component.Register must have been called on it.
func (s *Scene) Build(world *ecs.World, glyphWidth, glyphHeight float32) ([]ecs.Entity, error) {
	created := make([]ecs.Entity, 0, len(s.TileMaps)+len(s.Entities))

	for _, def := range s.TileMaps {
		fill := byte(' ')
		if def.Fill != "" {
			fill = def.Fill[0]
		}
		m := component.NewTileMap(def.Cols, def.Rows, fill)
		for row, line := range def.Lines {
			m.SetRow(row, line)
		}

		e := world.CreateEntity()
		if err := world.AddComponentAny(e, m); err != nil {
			return created, err
		}
		created = append(created, e)
	}

	for _, def := range s.Entities {
		pos := component.Vec2{X: def.X, Y: def.Y}
		if def.Cell != nil {
			pos = component.Vec2{X: float32(def.Cell[0]) * glyphWidth, Y: float32(def.Cell[1]) * glyphHeight}
		}

		var visual any = component.GlyphRenderable{Glyph: def.Glyph[0]}
		if def.Layer == LayerFree {
			visual = component.GlyphComponent{Glyph: def.Glyph[0]}
		}

		e := world.CreateEntity()
		for _, c := range []any{component.Transform{Position: pos}, visual} {
			if err := world.AddComponentAny(e, c); err != nil {
				return created, err
			}
		}
		created = append(created, e)
	}

	return created, nil
}

// Default is the scene used when none is configured: a walled room with the
// player in it.
func Default() *Scene {
	const cols, rows = 80, 25
	lines := make([]string, rows)
	wall := make([]byte, cols)
	floor := make([]byte, cols)
	for i := range wall {
		wall[i] = '#'
		floor[i] = '.'
	}
	floor[0], floor[cols-1] = '#', '#'
	for r := range lines {
		if r == 0 || r == rows-1 {
			lines[r] = string(wall)
		} else {
			lines[r] = string(floor)
		}
	}
	return &Scene{
		Name:     "default",
		TileMaps: []TileMapDef{{Cols: cols, Rows: rows, Fill: ".", Lines: lines}},
		Entities: []EntityDef{
			{Glyph: "@", Cell: []int{2, 2}},
			{Glyph: "g", Cell: []int{40, 12}},
		},
	}
}
