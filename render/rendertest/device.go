// Package rendertest provides a recording render.Device for tests.
package rendertest

import (
	"errors"
	"slices"

	"github.com/plus3/glyphon/render"
)

// ErrCompile is returned by CompileShader for names listed in FailShaders.
var ErrCompile = errors.New("rendertest: compile failed")

// Device records every call made to it. Draw copies vertex data, so recorded
// calls stay valid after the Backend reuses its buffers.
type Device struct {
	SetupCalls  int
	Shaders     map[string]bool
	Textures    map[render.TextureHandle]render.ImageData
	Calls       []render.DrawCall
	FailShaders map[string]bool
	DrawErr     error
}

// NewDevice returns an empty recording device.
func NewDevice() *Device {
	return &Device{
		Shaders:     make(map[string]bool),
		Textures:    make(map[render.TextureHandle]render.ImageData),
		FailShaders: make(map[string]bool),
	}
}

func (d *Device) Setup() error {
	d.SetupCalls++
	return nil
}

func (d *Device) CompileShader(name, _, _ string) error {
	ok := !d.FailShaders[name]
	d.Shaders[name] = ok
	if !ok {
		return ErrCompile
	}
	return nil
}

func (d *Device) CreateTexture(handle render.TextureHandle, img render.ImageData) error {
	d.Textures[handle] = img
	return nil
}

func (d *Device) Draw(call render.DrawCall) error {
	if d.DrawErr != nil {
		return d.DrawErr
	}
	call.Vertices = slices.Clone(call.Vertices)
	d.Calls = append(d.Calls, call)
	return nil
}

// Reset forgets recorded draw calls.
func (d *Device) Reset() {
	d.Calls = d.Calls[:0]
}

// Image returns a solid w x h RGBA image for texture uploads.
func Image(w, h int) render.ImageData {
	return render.ImageData{
		Width:  w,
		Height: h,
		Format: render.FormatRGBA,
		Pixels: make([]byte, w*h*4),
	}
}

// Quad returns FloatsPerQuad floats describing a w x h quad at (x, y).
func Quad(x, y, w, h float32) []float32 {
	return []float32{
		x, y + h, 0, 1,
		x, y, 0, 0,
		x + w, y, 1, 0,
		x, y + h, 0, 1,
		x + w, y, 1, 0,
		x + w, y + h, 1, 1,
	}
}
