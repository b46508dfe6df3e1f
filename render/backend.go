package render

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Stats describes a single Execute.
type Stats struct {
	Commands  int
	DrawCalls int
	Vertices  int
	Skipped   int
}

// Diagnostics counts Execute calls and everything the Backend had to skip
// since it was created. Rendering problems never abort a frame; they show up
// here.
type Diagnostics struct {
	Executes          uint64
	UnknownShader     uint64
	UnknownTexture    uint64
	Unsupported       uint64
	MalformedVertices uint64
	DeviceErrors      uint64
	ShaderFailures    uint64
	TileMapsSkipped   uint64
}

type shaderEntry struct {
	valid bool
}

type textureEntry struct {
	width, height int
}

type batchKey struct {
	shader  string
	texture TextureHandle
}

type batch struct {
	key      batchKey
	vertices []float32
}

// Backend executes RenderCommands on a Device. Commands sharing a shader and
// texture are merged into a single draw; groups are drawn in the order their
// first command was submitted.
type Backend struct {
	device      Device
	logger      *zap.Logger
	initialized bool

	shaders     map[string]shaderEntry
	textures    map[TextureHandle]textureEntry
	nextTexture TextureHandle
	projection  mgl32.Mat4

	batches  []batch
	batchIdx map[batchKey]int

	stats Stats
	diag  Diagnostics
}

// NewBackend wraps device. A nil logger is replaced with a no-op logger.
func NewBackend(device Device, logger *zap.Logger) *Backend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backend{
		device:     device,
		logger:     logger,
		shaders:    make(map[string]shaderEntry),
		textures:   make(map[TextureHandle]textureEntry),
		projection: mgl32.Ident4(),
		batchIdx:   make(map[batchKey]int),
	}
}

// Initialize sets up the device. Calling it again is a no-op.
func (b *Backend) Initialize() error {
	if b.initialized {
		return nil
	}
	if err := b.device.Setup(); err != nil {
		return fmt.Errorf("render: device setup: %w", err)
	}
	b.initialized = true
	return nil
}

// LoadShader compiles a program and registers it under name. A compile
// failure is logged and returned, but the name stays registered so commands
// referencing it still reach the device.
func (b *Backend) LoadShader(name, vertexSource, fragmentSource string) error {
	if !b.initialized {
		return ErrNotInitialized
	}
	err := b.device.CompileShader(name, vertexSource, fragmentSource)
	b.shaders[name] = shaderEntry{valid: err == nil}
	if err != nil {
		b.diag.ShaderFailures++
		b.logger.Error("shader compile failed", zap.String("shader", name), zap.Error(err))
		return fmt.Errorf("render: compile shader %q: %w", name, err)
	}
	b.logger.Debug("shader loaded", zap.String("shader", name))
	return nil
}

// HasShader reports whether name has been registered, valid or not.
func (b *Backend) HasShader(name string) bool {
	_, ok := b.shaders[name]
	return ok
}

// LoadTexture uploads img and returns its handle.
func (b *Backend) LoadTexture(img ImageData) (TextureHandle, error) {
	if !b.initialized {
		return 0, ErrNotInitialized
	}
	if err := img.Validate(); err != nil {
		return 0, err
	}
	handle := b.nextTexture + 1
	if err := b.device.CreateTexture(handle, img); err != nil {
		return 0, fmt.Errorf("render: upload texture: %w", err)
	}
	b.nextTexture = handle
	b.textures[handle] = textureEntry{width: img.Width, height: img.Height}
	b.logger.Debug("texture loaded",
		zap.Uint32("handle", uint32(handle)),
		zap.Int("width", img.Width),
		zap.Int("height", img.Height))
	return handle, nil
}

// TextureSize returns the pixel size of a loaded texture.
func (b *Backend) TextureSize(handle TextureHandle) (int, int, bool) {
	t, ok := b.textures[handle]
	return t.width, t.height, ok
}

// SetProjection sets the matrix passed with every draw.
func (b *Backend) SetProjection(m mgl32.Mat4) {
	b.projection = m
}

// Projection returns the current projection matrix.
func (b *Backend) Projection() mgl32.Mat4 {
	return b.projection
}

// Stats returns the figures for the most recent Execute.
func (b *Backend) Stats() Stats {
	return b.stats
}

// Diagnostics returns the running skip counters.
func (b *Backend) Diagnostics() *Diagnostics {
	return &b.diag
}

// check classifies a command; a non-nil error means it is skipped.
func (b *Backend) check(cmd *RenderCommand) error {
	if cmd.Type != TexturedQuad {
		b.diag.Unsupported++
		return fmt.Errorf("%w: %s", ErrUnsupportedCommand, cmd.Type)
	}
	if len(cmd.Vertices) == 0 || len(cmd.Vertices)%(FloatsPerVertex*3) != 0 {
		b.diag.MalformedVertices++
		return fmt.Errorf("%w: %d floats", ErrMalformedVertices, len(cmd.Vertices))
	}
	if _, ok := b.shaders[cmd.Shader]; !ok {
		b.diag.UnknownShader++
		return fmt.Errorf("%w: %q", ErrUnknownShader, cmd.Shader)
	}
	if _, ok := b.textures[cmd.Texture]; !ok {
		b.diag.UnknownTexture++
		return fmt.Errorf("%w: %d", ErrUnknownTexture, cmd.Texture)
	}
	return nil
}

// Execute draws commands. Invalid commands are skipped and counted; the
// frame always runs to completion.
func (b *Backend) Execute(commands []RenderCommand) Stats {
	b.stats = Stats{Commands: len(commands)}
	b.diag.Executes++
	if !b.initialized {
		b.stats.Skipped = len(commands)
		b.logger.Debug("execute before initialize", zap.Int("commands", len(commands)))
		return b.stats
	}

	b.resetBatches()
	for i := range commands {
		cmd := &commands[i]
		if err := b.check(cmd); err != nil {
			b.stats.Skipped++
			b.logger.Debug("render command skipped", zap.Int("index", i), zap.Error(err))
			continue
		}

		key := batchKey{shader: cmd.Shader, texture: cmd.Texture}
		idx, ok := b.batchIdx[key]
		if !ok {
			idx = len(b.batches)
			if idx < cap(b.batches) {
				b.batches = b.batches[:idx+1]
				b.batches[idx].key = key
			} else {
				b.batches = append(b.batches, batch{key: key})
			}
			b.batchIdx[key] = idx
		}
		b.batches[idx].vertices = append(b.batches[idx].vertices, cmd.Vertices...)
	}

	for i := range b.batches {
		bt := &b.batches[i]
		call := DrawCall{
			Shader:     bt.key.shader,
			Texture:    bt.key.texture,
			Projection: b.projection,
			Vertices:   bt.vertices,
		}
		if err := b.device.Draw(call); err != nil {
			b.diag.DeviceErrors++
			b.logger.Debug("draw failed",
				zap.String("shader", call.Shader),
				zap.Uint32("texture", uint32(call.Texture)),
				zap.Error(err))
			continue
		}
		b.stats.DrawCalls++
		b.stats.Vertices += call.VertexCount()
	}
	return b.stats
}

// Flush executes everything queued on f and clears it.
func (b *Backend) Flush(f *Frontend) Stats {
	stats := b.Execute(f.Commands())
	f.Clear()
	return stats
}

// resetBatches truncates batch vertex buffers while keeping their capacity.
func (b *Backend) resetBatches() {
	full := b.batches[:cap(b.batches)]
	for i := range full {
		full[i].vertices = full[i].vertices[:0]
	}
	b.batches = b.batches[:0]
	clear(b.batchIdx)
}
