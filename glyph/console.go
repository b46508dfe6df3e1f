package glyph

import (
	"fmt"
	"slices"

	"github.com/plus3/glyphon/component"
	"github.com/plus3/glyphon/render"
)

// ConsoleRenderer draws character grids and strings straight to a Backend,
// bypassing the Frontend.
type ConsoleRenderer struct {
	resource GlyphResource
	backend  *render.Backend

	vertices []float32
	commands []render.RenderCommand
	stats    render.Stats
}

// NewConsoleRenderer returns a renderer for resource.
func NewConsoleRenderer(resource GlyphResource, backend *render.Backend) *ConsoleRenderer {
	return &ConsoleRenderer{
		resource: resource,
		backend:  backend,
	}
}

// Resource returns the atlas description.
func (c *ConsoleRenderer) Resource() GlyphResource {
	return c.resource
}

// DrawConsole draws a row-major cols x rows grid anchored at the origin with
// a single draw call.
func (c *ConsoleRenderer) DrawConsole(glyphs []byte, cols, rows int) error {
	if cols < 0 || rows < 0 || len(glyphs) != cols*rows {
		return fmt.Errorf("%w: %dx%d needs %d glyphs, have %d",
			component.ErrTileMapSize, cols, rows, cols*rows, len(glyphs))
	}
	if len(glyphs) == 0 {
		return nil
	}

	c.vertices = c.vertices[:0]
	w, h := c.resource.GlyphWidth, c.resource.GlyphHeight
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			code := glyphs[row*cols+col]
			c.vertices = c.resource.AppendQuad(c.vertices, code, float32(col)*w, float32(row)*h)
		}
	}

	c.commands = append(c.commands[:0], c.resource.Command(c.vertices))
	c.execute()
	return nil
}

// RenderText draws text on one row starting at (col, row), one command per
// character. The Backend merges them into a single draw.
func (c *ConsoleRenderer) RenderText(text string, col, row int) {
	if len(text) == 0 {
		return
	}

	c.vertices = slices.Grow(c.vertices[:0], len(text)*render.FloatsPerQuad)
	c.commands = c.commands[:0]
	w, h := c.resource.GlyphWidth, c.resource.GlyphHeight
	y := float32(row) * h
	for i := 0; i < len(text); i++ {
		start := len(c.vertices)
		c.vertices = c.resource.AppendQuad(c.vertices, text[i], float32(col+i)*w, y)
		c.commands = append(c.commands, c.resource.Command(c.vertices[start:len(c.vertices):len(c.vertices)]))
	}
	c.execute()
}

// DrawGlyph draws one glyph with its top-left corner at pixel (x, y) using
// its own draw call.
func (c *ConsoleRenderer) DrawGlyph(code byte, x, y float32) {
	c.vertices = c.resource.AppendQuad(c.vertices[:0], code, x, y)
	c.commands = append(c.commands[:0], c.resource.Command(c.vertices))
	c.execute()
}

func (c *ConsoleRenderer) execute() {
	s := c.backend.Execute(c.commands)
	c.stats.Commands += s.Commands
	c.stats.DrawCalls += s.DrawCalls
	c.stats.Vertices += s.Vertices
	c.stats.Skipped += s.Skipped
}

// TakeStats returns the totals since the previous call and resets them.
func (c *ConsoleRenderer) TakeStats() render.Stats {
	s := c.stats
	c.stats = render.Stats{}
	return s
}
