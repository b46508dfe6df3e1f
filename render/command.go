// Package render turns abstract quad commands into batched draw calls.
//
// Systems Submit RenderCommands to a Frontend during a frame; the Backend
// then groups them by shader and texture, merges their vertex data and issues
// one Device draw per group.
package render

// CommandType tags the kind of draw a RenderCommand requests.
type CommandType uint8

const (
	// TexturedQuad draws triangles sampled from a texture. It is the only
	// command type the Backend executes.
	TexturedQuad CommandType = iota
)

func (t CommandType) String() string {
	switch t {
	case TexturedQuad:
		return "TexturedQuad"
	}
	return "Unknown"
}

const (
	// FloatsPerVertex is x, y, u, v.
	FloatsPerVertex = 4
	// VerticesPerQuad is two triangles.
	VerticesPerQuad = 6
	// FloatsPerQuad is the vertex data length of one glyph.
	FloatsPerQuad = FloatsPerVertex * VerticesPerQuad
)

// TextureHandle names a texture loaded through Backend.LoadTexture. The zero
// value never refers to a texture.
type TextureHandle uint32

// RenderCommand is one draw request. X, Y, W and H are reserved geometry
// offsets; the Backend draws from Vertices only.
type RenderCommand struct {
	Type     CommandType
	X, Y     float32
	W, H     float32
	Color    [4]float32
	Texture  TextureHandle
	Shader   string
	Vertices []float32
}

// VertexCount returns the number of vertices in the command's data.
func (c *RenderCommand) VertexCount() int {
	return len(c.Vertices) / FloatsPerVertex
}

// White is the default command colour.
var White = [4]float32{1, 1, 1, 1}
