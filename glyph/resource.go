// Package glyph turns glyph and tile-map components into textured quads
// sampled from a fixed-grid font atlas.
package glyph

import (
	"errors"
	"fmt"

	"github.com/plus3/glyphon/render"
)

// ErrInvalidResource is returned by GlyphResource.Validate.
var ErrInvalidResource = errors.New("glyph: invalid resource")

// GlyphResource describes an atlas texture split into Cols x Rows tiles of
// GlyphWidth x GlyphHeight pixels. Tile n holds glyph code n, row-major.
type GlyphResource struct {
	Texture     render.TextureHandle
	Shader      string
	Cols        uint32
	Rows        uint32
	GlyphWidth  float32
	GlyphHeight float32
}

// Validate rejects empty grids and non-positive glyph sizes.
func (r GlyphResource) Validate() error {
	if r.Cols == 0 || r.Rows == 0 {
		return fmt.Errorf("%w: atlas grid %dx%d", ErrInvalidResource, r.Cols, r.Rows)
	}
	if r.GlyphWidth <= 0 || r.GlyphHeight <= 0 {
		return fmt.Errorf("%w: glyph size %gx%g", ErrInvalidResource, r.GlyphWidth, r.GlyphHeight)
	}
	if r.Shader == "" {
		return fmt.Errorf("%w: no shader", ErrInvalidResource)
	}
	return nil
}

// InAtlas reports whether code has a tile in the atlas grid.
func (r GlyphResource) InAtlas(code byte) bool {
	return uint32(code) < r.Cols*r.Rows
}

// Tile returns the atlas column and row holding code. Codes outside the grid
// map to tile 0, which atlases keep blank.
func (r GlyphResource) Tile(code byte) (x, y uint32) {
	if !r.InAtlas(code) {
		return 0, 0
	}
	return uint32(code) % r.Cols, uint32(code) / r.Cols
}

// UV returns the texture rectangle for code in normalized coordinates.
func (r GlyphResource) UV(code byte) (minU, minV, maxU, maxV float32) {
	tx, ty := r.Tile(code)
	stepU := 1 / float32(r.Cols)
	stepV := 1 / float32(r.Rows)
	minU = float32(tx) * stepU
	minV = float32(ty) * stepV
	return minU, minV, minU + stepU, minV + stepV
}

// AppendQuad appends the six vertices of code drawn with its top-left corner
// at (x, y) and returns the extended slice.
func (r GlyphResource) AppendQuad(dst []float32, code byte, x, y float32) []float32 {
	minU, minV, maxU, maxV := r.UV(code)
	w, h := r.GlyphWidth, r.GlyphHeight
	return append(dst,
		x, y+h, minU, maxV,
		x, y, minU, minV,
		x+w, y, maxU, minV,
		x, y+h, minU, maxV,
		x+w, y, maxU, minV,
		x+w, y+h, maxU, maxV,
	)
}

// Command wraps vertex data in a TexturedQuad command for this atlas.
func (r GlyphResource) Command(vertices []float32) render.RenderCommand {
	return render.RenderCommand{
		Type:     render.TexturedQuad,
		Color:    render.White,
		Texture:  r.Texture,
		Shader:   r.Shader,
		Vertices: vertices,
	}
}
