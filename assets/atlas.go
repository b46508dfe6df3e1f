package assets

import (
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/plus3/glyphon/render"
)

// Built-in atlas geometry.
const (
	AtlasCols   = 32
	AtlasRows   = 8
	GlyphWidth  = 8
	GlyphHeight = 16
)

// BuiltinAtlas rasterizes the 7x13 basic font into a 32x8 grid of 8x16
// cells, white on transparent. Cell n holds code n; codes the font lacks are
// left empty.
func BuiltinAtlas() render.ImageData {
	face := basicfont.Face7x13
	img := image.NewNRGBA(image.Rect(0, 0, AtlasCols*GlyphWidth, AtlasRows*GlyphHeight))

	top := (GlyphHeight - face.Height) / 2
	d := &font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: face,
	}
	for code := 0; code < AtlasCols*AtlasRows; code++ {
		if code < 0x21 || code == 0x7f {
			continue
		}
		col, row := code%AtlasCols, code/AtlasCols
		d.Dot = fixed.P(col*GlyphWidth, row*GlyphHeight+top+face.Ascent)
		d.DrawString(string(rune(code)))
	}
	return render.FromImage(img)
}
