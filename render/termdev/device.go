// Package termdev implements render.Device on a tcell screen. Each glyph quad
// is folded back into the terminal cell it covers, so the same command
// stream that drives the GPU renders as text.
package termdev

import (
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"

	"github.com/plus3/glyphon/render"
)

// Layout describes the atlas the quads were generated against.
type Layout struct {
	Cols, Rows  int
	GlyphWidth  float32
	GlyphHeight float32
}

// Device writes one cell per quad. Shaders are accepted and ignored.
type Device struct {
	screen   tcell.Screen
	layout   Layout
	logger   *zap.Logger
	style    tcell.Style
	textures map[render.TextureHandle]struct{}
}

// New wraps screen. The caller owns the screen and is responsible for Show.
func New(screen tcell.Screen, layout Layout, logger *zap.Logger) *Device {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Device{
		screen:   screen,
		layout:   layout,
		logger:   logger,
		style:    tcell.StyleDefault,
		textures: make(map[render.TextureHandle]struct{}),
	}
}

// SetStyle changes the style used for cells written by later draws.
func (d *Device) SetStyle(style tcell.Style) {
	d.style = style
}

func (d *Device) Setup() error {
	return nil
}

func (d *Device) CompileShader(name, _, _ string) error {
	d.logger.Debug("terminal device ignores shader", zap.String("shader", name))
	return nil
}

func (d *Device) CreateTexture(handle render.TextureHandle, _ render.ImageData) error {
	d.textures[handle] = struct{}{}
	return nil
}

// Draw decodes each quad from its second vertex, the top-left corner, which
// carries the cell position and the atlas tile's minimum UV.
func (d *Device) Draw(call render.DrawCall) error {
	if _, ok := d.textures[call.Texture]; !ok {
		return render.ErrUnknownTexture
	}
	sw, sh := d.screen.Size()
	for q := 0; q+render.FloatsPerQuad <= len(call.Vertices); q += render.FloatsPerQuad {
		tl := call.Vertices[q+render.FloatsPerVertex : q+2*render.FloatsPerVertex]
		col := int(math.Round(float64(tl[0] / d.layout.GlyphWidth)))
		row := int(math.Round(float64(tl[1] / d.layout.GlyphHeight)))
		if col < 0 || row < 0 || col >= sw || row >= sh {
			continue
		}
		code := d.decode(tl[2], tl[3])
		d.screen.SetContent(col, row, glyphRune(code), nil, d.style)
	}
	return nil
}

func (d *Device) decode(u, v float32) byte {
	tx := int(math.Round(float64(u) * float64(d.layout.Cols)))
	ty := int(math.Round(float64(v) * float64(d.layout.Rows)))
	return byte(ty*d.layout.Cols + tx)
}

// glyphRune maps an atlas code to a single-width rune.
func glyphRune(code byte) rune {
	if code < 0x20 || code == 0x7f {
		return ' '
	}
	r := rune(code)
	if runewidth.RuneWidth(r) != 1 {
		return '?'
	}
	return r
}
