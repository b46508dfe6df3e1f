package render

import "github.com/go-gl/mathgl/mgl32"

// DrawCall is one batched draw handed to a Device: a list of triangles in
// FloatsPerVertex layout, sampled from one texture with one shader.
type DrawCall struct {
	Shader     string
	Texture    TextureHandle
	Projection mgl32.Mat4
	Vertices   []float32
}

// VertexCount returns the number of vertices in the call.
func (c *DrawCall) VertexCount() int {
	return len(c.Vertices) / FloatsPerVertex
}

// Device is the GPU-facing half of the Backend. Implementations own the
// actual shader programs and textures; the Backend only tracks names and
// handles. Vertices passed to Draw are only valid for the duration of the call.
type Device interface {
	// Setup prepares shared geometry and blend state. Called once.
	Setup() error
	// CompileShader builds a program and registers it under name. On failure
	// the device must still accept draws naming the program.
	CompileShader(name, vertexSource, fragmentSource string) error
	// CreateTexture uploads img with nearest-neighbour sampling.
	CreateTexture(handle TextureHandle, img ImageData) error
	// Draw issues one draw call.
	Draw(call DrawCall) error
}
