// Package ebitendev implements render.Device on top of ebiten.
//
// Shaders are Kage programs: ebiten owns the vertex stage, so only the
// fragment source passed to CompileShader is used. A program that fails to
// compile falls back to plain textured triangles.
package ebitendev

import (
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/plus3/glyphon/render"
)

// ErrNoTarget is returned by Draw when no frame target has been set.
var ErrNoTarget = errors.New("ebitendev: no render target")

// maxBatchVertices keeps indices within uint16 and on a quad boundary.
const maxBatchVertices = 65532

type texture struct {
	image         *ebiten.Image
	width, height float32
}

// Device draws render.DrawCalls onto the current target image.
type Device struct {
	logger   *zap.Logger
	target   *ebiten.Image
	shaders  map[string]*ebiten.Shader
	textures map[render.TextureHandle]texture

	vertices []ebiten.Vertex
	indices  []uint16
}

// New returns a device with no target.
func New(logger *zap.Logger) *Device {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Device{
		logger:   logger,
		shaders:  make(map[string]*ebiten.Shader),
		textures: make(map[render.TextureHandle]texture),
	}
}

// SetTarget sets the image subsequent draws render into, normally the screen
// passed to ebiten.Game.Draw.
func (d *Device) SetTarget(img *ebiten.Image) {
	d.target = img
}

// Target returns the current target image.
func (d *Device) Target() *ebiten.Image {
	return d.target
}

// Setup builds the shared index buffer. Blend state is set per draw.
func (d *Device) Setup() error {
	d.indices = make([]uint16, maxBatchVertices)
	for i := range d.indices {
		d.indices[i] = uint16(i)
	}
	d.vertices = make([]ebiten.Vertex, 0, render.VerticesPerQuad*1024)
	return nil
}

func (d *Device) CompileShader(name, _, fragmentSource string) error {
	shader, err := ebiten.NewShader([]byte(fragmentSource))
	d.shaders[name] = shader
	if err != nil {
		return fmt.Errorf("ebitendev: %w", err)
	}
	return nil
}

func (d *Device) CreateTexture(handle render.TextureHandle, img render.ImageData) error {
	image := ebiten.NewImageFromImage(img.Image())
	d.textures[handle] = texture{
		image:  image,
		width:  float32(img.Width),
		height: float32(img.Height),
	}
	return nil
}

func (d *Device) Draw(call render.DrawCall) error {
	if d.target == nil {
		return ErrNoTarget
	}
	tex, ok := d.textures[call.Texture]
	if !ok {
		return fmt.Errorf("%w: %d", render.ErrUnknownTexture, call.Texture)
	}
	shader := d.shaders[call.Shader]

	bounds := d.target.Bounds()
	tw, th := float32(bounds.Dx()), float32(bounds.Dy())

	total := call.VertexCount()
	for start := 0; start < total; start += maxBatchVertices {
		end := min(start+maxBatchVertices, total)

		d.vertices = d.vertices[:0]
		for v := start; v < end; v++ {
			f := call.Vertices[v*render.FloatsPerVertex : (v+1)*render.FloatsPerVertex]
			dx, dy := render.ToViewport(call.Projection, f[0], f[1], tw, th)
			d.vertices = append(d.vertices, ebiten.Vertex{
				DstX:   dx,
				DstY:   dy,
				SrcX:   f[2] * tex.width,
				SrcY:   f[3] * tex.height,
				ColorR: 1,
				ColorG: 1,
				ColorB: 1,
				ColorA: 1,
			})
		}
		indices := d.indices[:end-start]

		if shader == nil {
			d.target.DrawTriangles(d.vertices, indices, tex.image, &ebiten.DrawTrianglesOptions{
				Filter: ebiten.FilterNearest,
				Blend:  ebiten.BlendSourceOver,
			})
			continue
		}

		opts := &ebiten.DrawTrianglesShaderOptions{
			Blend: ebiten.BlendSourceOver,
		}
		opts.Images[0] = tex.image
		d.target.DrawTrianglesShader(d.vertices, indices, shader, opts)
	}
	return nil
}

// Dispose releases every texture and shader.
func (d *Device) Dispose() {
	for handle, tex := range d.textures {
		tex.image.Deallocate()
		delete(d.textures, handle)
	}
	for name, shader := range d.shaders {
		if shader != nil {
			shader.Deallocate()
		}
		delete(d.shaders, name)
	}
	d.logger.Debug("ebiten device disposed")
}
