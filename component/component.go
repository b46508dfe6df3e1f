// Package component holds the plain data types the renderer reads from the
// World each frame.
package component

import (
	"errors"
	"fmt"
	"math"

	"github.com/plus3/glyphon/ecs"
)

// ErrTileMapSize is returned by TileMap.Validate when the glyph buffer does
// not hold exactly Cols*Rows codes.
var ErrTileMapSize = errors.New("component: tile map buffer size mismatch")

// Vec2 is a 2D position in screen pixels.
type Vec2 struct {
	X, Y float32
}

// Add returns v+o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Transform places an entity on screen.
type Transform struct {
	Position Vec2
}

// Cell returns the grid cell containing the transform for glyphs of size w x h.
func (t Transform) Cell(w, h float32) (col, row int) {
	return int(math.Floor(float64(t.Position.X / w))), int(math.Floor(float64(t.Position.Y / h)))
}

// GlyphComponent marks an entity as one free-standing visible character.
type GlyphComponent struct {
	Glyph byte
}

// GlyphRenderable marks an entity as a character drawn on top of the tile map
// when one exists.
type GlyphRenderable struct {
	Glyph byte
}

// TileMap is a row-major grid of glyph codes.
type TileMap struct {
	Glyphs []byte
	Cols   int
	Rows   int
}

// NewTileMap returns a cols x rows map filled with fill.
func NewTileMap(cols, rows int, fill byte) TileMap {
	glyphs := make([]byte, cols*rows)
	for i := range glyphs {
		glyphs[i] = fill
	}
	return TileMap{Glyphs: glyphs, Cols: cols, Rows: rows}
}

// Validate reports whether the buffer length matches the grid size.
func (m *TileMap) Validate() error {
	if m.Cols < 0 || m.Rows < 0 || len(m.Glyphs) != m.Cols*m.Rows {
		return fmt.Errorf("%w: %dx%d needs %d glyphs, have %d",
			ErrTileMapSize, m.Cols, m.Rows, m.Cols*m.Rows, len(m.Glyphs))
	}
	return nil
}

// InBounds reports whether (col, row) lies inside the map.
func (m *TileMap) InBounds(col, row int) bool {
	return col >= 0 && row >= 0 && col < m.Cols && row < m.Rows
}

// At returns the glyph at (col, row). The cell must be in bounds.
func (m *TileMap) At(col, row int) byte {
	return m.Glyphs[row*m.Cols+col]
}

// Set writes glyph at (col, row); out-of-bounds writes are ignored.
func (m *TileMap) Set(col, row int, glyph byte) {
	if !m.InBounds(col, row) {
		return
	}
	m.Glyphs[row*m.Cols+col] = glyph
}

// SetRow copies text into row starting at column 0, clipping at the edge.
func (m *TileMap) SetRow(row int, text string) {
	for col := 0; col < len(text); col++ {
		m.Set(col, row, text[col])
	}
}

// Register adds every component type in this package to registry so the
// type-erased paths (Commands, scene loading) accept them.
func Register(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[Transform](registry)
	ecs.RegisterComponent[GlyphComponent](registry)
	ecs.RegisterComponent[GlyphRenderable](registry)
	ecs.RegisterComponent[TileMap](registry)
}
