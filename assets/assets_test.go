package assets_test

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/plus3/glyphon/assets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cellHasInk(t *testing.T, pix []byte, code int) bool {
	t.Helper()
	stride := assets.AtlasCols * assets.GlyphWidth * 4
	x0 := (code % assets.AtlasCols) * assets.GlyphWidth
	y0 := (code / assets.AtlasCols) * assets.GlyphHeight
	for y := y0; y < y0+assets.GlyphHeight; y++ {
		for x := x0; x < x0+assets.GlyphWidth; x++ {
			if pix[y*stride+x*4+3] != 0 {
				return true
			}
		}
	}
	return false
}

func TestBuiltinAtlas(t *testing.T) {
	atlas := assets.BuiltinAtlas()
	require.NoError(t, atlas.Validate())
	assert.Equal(t, 256, atlas.Width)
	assert.Equal(t, 128, atlas.Height)

	assert.True(t, cellHasInk(t, atlas.Pixels, '@'))
	assert.True(t, cellHasInk(t, atlas.Pixels, '#'))
	assert.False(t, cellHasInk(t, atlas.Pixels, ' '))
	assert.False(t, cellHasInk(t, atlas.Pixels, 0))
}

func TestGlyphShaderSources(t *testing.T) {
	s := assets.GlyphShader()
	assert.Equal(t, assets.GlyphShaderName, s.Name)
	assert.Contains(t, s.Vertex, "u_proj")
	assert.Contains(t, s.Fragment, "u_tex")
	assert.Contains(t, s.Kage, "imageSrc0At")
}

func TestLoadImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atlas.png")
	src := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	src.SetNRGBA(3, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, src))
	require.NoError(t, f.Close())

	img, err := assets.LoadImage(path)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Width)
	assert.Equal(t, 2, img.Height)
	off := (1*4 + 3) * 4
	assert.Equal(t, []byte{10, 20, 30, 255}, img.Pixels[off:off+4])

	_, err = assets.LoadImage(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestLoadKageShader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tint.kage")
	require.NoError(t, os.WriteFile(path, []byte("package main"), 0o644))

	s, err := assets.LoadKageShader("tint", path)
	require.NoError(t, err)
	assert.Equal(t, "tint", s.Name)
	assert.Equal(t, "package main", s.Kage)
}
