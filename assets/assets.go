// Package assets loads font atlases and shader sources.
package assets

import (
	"embed"
	"fmt"
	"image"
	_ "image/png"
	"os"

	"github.com/plus3/glyphon/render"
)

//go:embed shaders
var shaderFS embed.FS

// ShaderSource is a named vertex/fragment pair. Kage holds the fragment
// program for backends that compile Kage instead of GLSL.
type ShaderSource struct {
	Name     string
	Vertex   string
	Fragment string
	Kage     string
}

// GlyphShaderName is the name the default glyph shader is registered under.
const GlyphShaderName = "glyph"

// GlyphShader returns the built-in textured-quad shader.
func GlyphShader() ShaderSource {
	return ShaderSource{
		Name:     GlyphShaderName,
		Vertex:   mustRead("shaders/glyph.vert"),
		Fragment: mustRead("shaders/glyph.frag"),
		Kage:     mustRead("shaders/glyph.kage"),
	}
}

// LoadKageShader reads a Kage fragment program from path and pairs it with
// the default GLSL sources.
func LoadKageShader(name, path string) (ShaderSource, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return ShaderSource{}, fmt.Errorf("assets: read shader: %w", err)
	}
	s := GlyphShader()
	s.Name = name
	s.Kage = string(src)
	return s, nil
}

func mustRead(name string) string {
	b, err := shaderFS.ReadFile(name)
	if err != nil {
		panic(err)
	}
	return string(b)
}

// LoadImage decodes a PNG file into RGBA ImageData.
func LoadImage(path string) (render.ImageData, error) {
	f, err := os.Open(path)
	if err != nil {
		return render.ImageData{}, fmt.Errorf("assets: open %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return render.ImageData{}, fmt.Errorf("assets: decode %s: %w", path, err)
	}
	return render.FromImage(img), nil
}
