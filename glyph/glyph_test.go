package glyph_test

import (
	"testing"

	"github.com/plus3/glyphon/component"
	"github.com/plus3/glyphon/ecs"
	"github.com/plus3/glyphon/glyph"
	"github.com/plus3/glyphon/platform"
	"github.com/plus3/glyphon/render"
	"github.com/plus3/glyphon/render/rendertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeContext struct {
	begins, ends int
	lastClear    platform.Color
}

func (c *fakeContext) BeginFrame(clear platform.Color) {
	c.begins++
	c.lastClear = clear
}

func (c *fakeContext) EndFrame() error {
	c.ends++
	return nil
}

func (c *fakeContext) Size() (int, int) { return 640, 400 }

func (c *fakeContext) Cleanup() error { return nil }

type fixture struct {
	dev      *rendertest.Device
	backend  *render.Backend
	resource glyph.GlyphResource
	world    *ecs.World
}

func newFixture(t *testing.T, logger *zap.Logger) *fixture {
	t.Helper()
	dev := rendertest.NewDevice()
	backend := render.NewBackend(dev, logger)
	require.NoError(t, backend.Initialize())
	require.NoError(t, backend.LoadShader("glyph", "vs", "fs"))
	tex, err := backend.LoadTexture(rendertest.Image(256, 128))
	require.NoError(t, err)

	registry := ecs.NewComponentRegistry()
	component.Register(registry)

	return &fixture{
		dev:     dev,
		backend: backend,
		resource: glyph.GlyphResource{
			Texture:     tex,
			Shader:      "glyph",
			Cols:        32,
			Rows:        8,
			GlyphWidth:  8,
			GlyphHeight: 16,
		},
		world: ecs.NewWorld(registry),
	}
}

func (f *fixture) spawn(t *testing.T, components ...any) ecs.Entity {
	t.Helper()
	e := f.world.CreateEntity()
	for _, c := range components {
		require.NoError(t, f.world.AddComponentAny(e, c))
	}
	return e
}

func at(x, y float32) component.Transform {
	return component.Transform{Position: component.Vec2{X: x, Y: y}}
}

func TestGlyphUV(t *testing.T) {
	res := glyph.GlyphResource{Cols: 32, Rows: 8, GlyphWidth: 8, GlyphHeight: 16, Shader: "glyph"}
	require.NoError(t, res.Validate())

	tx, ty := res.Tile(65)
	assert.Equal(t, uint32(1), tx)
	assert.Equal(t, uint32(2), ty)

	minU, minV, maxU, maxV := res.UV('A')
	assert.InDelta(t, 1.0/32, minU, 1e-7)
	assert.InDelta(t, 2.0/8, minV, 1e-7)
	assert.InDelta(t, 2.0/32, maxU, 1e-7)
	assert.InDelta(t, 3.0/8, maxV, 1e-7)
}

func TestGlyphUVOutsideAtlasUsesTileZero(t *testing.T) {
	res := glyph.GlyphResource{Cols: 16, Rows: 4, GlyphWidth: 8, GlyphHeight: 16, Shader: "glyph"}
	assert.True(t, res.InAtlas(63))
	assert.False(t, res.InAtlas(200))

	minU, minV, maxU, maxV := res.UV(200)
	assert.Equal(t, float32(0), minU)
	assert.Equal(t, float32(0), minV)
	assert.InDelta(t, 1.0/16, maxU, 1e-7)
	assert.InDelta(t, 1.0/4, maxV, 1e-7)
}

func TestGlyphResourceValidate(t *testing.T) {
	assert.ErrorIs(t, glyph.GlyphResource{Rows: 8, GlyphWidth: 8, GlyphHeight: 16, Shader: "s"}.Validate(), glyph.ErrInvalidResource)
	assert.ErrorIs(t, glyph.GlyphResource{Cols: 32, Rows: 8, GlyphHeight: 16, Shader: "s"}.Validate(), glyph.ErrInvalidResource)
	assert.ErrorIs(t, glyph.GlyphResource{Cols: 32, Rows: 8, GlyphWidth: 8, GlyphHeight: 16}.Validate(), glyph.ErrInvalidResource)
}

func TestGlyphRenderSystemSingleEntity(t *testing.T) {
	f := newFixture(t, nil)
	f.spawn(t, at(16, 32), component.GlyphComponent{Glyph: '@'})

	frontend := render.NewFrontend()
	sys := glyph.NewGlyphRenderSystem(f.resource, frontend)
	assert.Equal(t, 1, sys.Update(f.world))

	require.Equal(t, 1, frontend.Len())
	cmd := frontend.Commands()[0]
	assert.Equal(t, render.TexturedQuad, cmd.Type)
	assert.Equal(t, "glyph", cmd.Shader)
	assert.Equal(t, f.resource.Texture, cmd.Texture)
	require.Len(t, cmd.Vertices, 24)
	assert.Equal(t, 6, cmd.VertexCount())

	// '@' is 64: tile (0, 2).
	minU, minV := float32(0), float32(2)/8
	maxU, maxV := float32(1)/32, float32(3)/8
	assert.Equal(t, []float32{
		16, 48, minU, maxV,
		16, 32, minU, minV,
		24, 32, maxU, minV,
		16, 48, minU, maxV,
		24, 32, maxU, minV,
		24, 48, maxU, maxV,
	}, cmd.Vertices)
}

func TestGlyphRenderSystemBatchesAllGlyphs(t *testing.T) {
	f := newFixture(t, nil)
	for i := 0; i < 50; i++ {
		f.spawn(t, at(float32(i*8), 0), component.GlyphComponent{Glyph: 'a'})
	}
	f.spawn(t, at(0, 0))

	frontend := render.NewFrontend()
	sys := glyph.NewGlyphRenderSystem(f.resource, frontend)
	assert.Equal(t, 50, sys.Update(f.world))
	require.Equal(t, 1, frontend.Len())

	stats := f.backend.Flush(frontend)
	assert.Equal(t, 1, stats.DrawCalls)
	assert.Equal(t, 300, stats.Vertices)
}

func TestGlyphRenderSystemNoGlyphs(t *testing.T) {
	f := newFixture(t, nil)
	frontend := render.NewFrontend()

	assert.Zero(t, glyph.NewGlyphRenderSystem(f.resource, frontend).Update(f.world))
	assert.Zero(t, frontend.Len())
}

func TestTileMapSizeMismatchSkipped(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	f := newFixture(t, zap.New(core))
	f.spawn(t, component.TileMap{Glyphs: []byte("....."), Cols: 3, Rows: 2})
	f.spawn(t, component.NewTileMap(4, 2, '#'))

	console := glyph.NewConsoleRenderer(f.resource, f.backend)
	sys := glyph.NewTileMapRenderSystem(console, zap.New(core))

	var drawn int
	require.NotPanics(t, func() { drawn = sys.Update(f.world) })
	assert.Equal(t, 1, drawn)

	warnings := logs.FilterMessage("tile map buffer size mismatch").All()
	require.Len(t, warnings, 1)
	fields := warnings[0].ContextMap()
	assert.EqualValues(t, 3, fields["cols"])
	assert.EqualValues(t, 2, fields["rows"])
	assert.EqualValues(t, 5, fields["len"])
	assert.EqualValues(t, 6, fields["expected"])

	require.Len(t, f.dev.Calls, 1)
	assert.Len(t, f.dev.Calls[0].Vertices, 8*render.FloatsPerQuad)
	assert.Equal(t, uint64(1), f.backend.Diagnostics().TileMapsSkipped)
}

func TestConsoleRendererRejectsShortBuffer(t *testing.T) {
	f := newFixture(t, nil)
	console := glyph.NewConsoleRenderer(f.resource, f.backend)

	err := console.DrawConsole([]byte("abc"), 2, 2)
	assert.ErrorIs(t, err, component.ErrTileMapSize)
	assert.Empty(t, f.dev.Calls)
}

func TestConsoleRenderTextMerged(t *testing.T) {
	f := newFixture(t, nil)
	console := glyph.NewConsoleRenderer(f.resource, f.backend)

	console.RenderText("hello", 1, 2)

	stats := console.TakeStats()
	assert.Equal(t, 5, stats.Commands)
	assert.Equal(t, 1, stats.DrawCalls)
	require.Len(t, f.dev.Calls, 1)

	v := f.dev.Calls[0].Vertices
	require.Len(t, v, 5*render.FloatsPerQuad)
	// Top-left of the first glyph sits at column 1, row 2.
	assert.Equal(t, float32(8), v[4])
	assert.Equal(t, float32(32), v[5])
	// 'o' is the fifth glyph at column 5.
	assert.Equal(t, float32(40), v[4*render.FloatsPerQuad+4])

	assert.Zero(t, console.TakeStats().Commands)
}

func expectedConsole(res glyph.GlyphResource, glyphs []byte, cols int) []float32 {
	var out []float32
	for i, code := range glyphs {
		out = res.AppendQuad(out, code, float32(i%cols)*res.GlyphWidth, float32(i/cols)*res.GlyphHeight)
	}
	return out
}

func TestRenderSystemOverlay(t *testing.T) {
	f := newFixture(t, nil)
	base := component.NewTileMap(80, 25, '.')
	f.spawn(t, base)
	f.spawn(t, at(2*8, 2*16), component.GlyphRenderable{Glyph: '@'})
	f.spawn(t, at(-8, 0), component.GlyphRenderable{Glyph: 'x'})
	f.spawn(t, at(80*8, 0), component.GlyphRenderable{Glyph: 'x'})

	ctx := &fakeContext{}
	sys := glyph.NewRenderSystem(ctx, f.backend, f.resource, glyph.Options{ClearColor: platform.DefaultClearColor})
	sys.SetWorld(f.world)
	require.NoError(t, sys.Render())

	assert.Equal(t, 1, ctx.begins)
	assert.Equal(t, 1, ctx.ends)
	assert.Equal(t, platform.DefaultClearColor, ctx.lastClear)

	require.Len(t, f.dev.Calls, 1, "overlay must be drawn in the same batch as the map")
	want := make([]byte, 80*25)
	copy(want, base.Glyphs)
	want[2*80+2] = '@'
	assert.Equal(t, expectedConsole(f.resource, want, 80), f.dev.Calls[0].Vertices)

	stored, err := ecs.GetComponent[component.TileMap](f.world, ecs.Entity{Index: 0})
	require.NoError(t, err)
	assert.Equal(t, byte('.'), stored.Glyphs[2*80+2], "overlay must not modify the stored map")

	stats := sys.Stats()
	assert.Equal(t, 1, stats.DrawCalls)
	assert.Equal(t, 1, stats.TileMaps)
	assert.Equal(t, 1, stats.Overlays)
}

func TestRenderSystemOverlayWithoutTileMap(t *testing.T) {
	f := newFixture(t, nil)
	f.spawn(t, at(0, 0), component.GlyphRenderable{Glyph: 'a'})
	f.spawn(t, at(8, 0), component.GlyphRenderable{Glyph: 'b'})

	sys := glyph.NewRenderSystem(&fakeContext{}, f.backend, f.resource, glyph.Options{})
	sys.SetWorld(f.world)
	require.NoError(t, sys.Render())

	assert.Len(t, f.dev.Calls, 2)
	assert.Equal(t, 2, sys.Stats().DrawCalls)
}

func TestRenderSystemOverlayFallbackSnapsToCells(t *testing.T) {
	f := newFixture(t, nil)
	f.spawn(t, at(13, 37), component.GlyphRenderable{Glyph: '@'})

	sys := glyph.NewRenderSystem(&fakeContext{}, f.backend, f.resource, glyph.Options{})
	sys.SetWorld(f.world)
	require.NoError(t, sys.Render())

	require.Len(t, f.dev.Calls, 1)
	want := f.resource.AppendQuad(nil, '@', 8, 32)
	assert.Equal(t, want, f.dev.Calls[0].Vertices)
}

func TestRenderSystemIgnoresEmptyTileMap(t *testing.T) {
	f := newFixture(t, nil)
	f.spawn(t, component.TileMap{})
	f.spawn(t, at(0, 0), component.GlyphRenderable{Glyph: '@'})

	sys := glyph.NewRenderSystem(&fakeContext{}, f.backend, f.resource, glyph.Options{})
	sys.SetWorld(f.world)
	require.NoError(t, sys.Render())

	require.Len(t, f.dev.Calls, 1, "the glyph must fall back to its own draw")
	assert.Equal(t, f.resource.AppendQuad(nil, '@', 0, 0), f.dev.Calls[0].Vertices)
	stats := sys.Stats()
	assert.Equal(t, 0, stats.TileMaps)
	assert.Equal(t, 1, stats.Overlays)
	assert.Equal(t, uint64(0), f.backend.Diagnostics().TileMapsSkipped)
}

func TestRenderSystemDrawsGlyphComponentsAfterMaps(t *testing.T) {
	f := newFixture(t, nil)
	f.spawn(t, component.NewTileMap(4, 4, '.'))
	f.spawn(t, component.NewTileMap(2, 2, '#'))
	f.spawn(t, at(100, 100), component.GlyphComponent{Glyph: '!'})

	sys := glyph.NewRenderSystem(&fakeContext{}, f.backend, f.resource, glyph.Options{})
	sys.SetWorld(f.world)
	require.NoError(t, sys.Render())

	require.Len(t, f.dev.Calls, 3)
	assert.Len(t, f.dev.Calls[0].Vertices, 16*render.FloatsPerQuad)
	assert.Len(t, f.dev.Calls[1].Vertices, 4*render.FloatsPerQuad)
	assert.Len(t, f.dev.Calls[2].Vertices, render.FloatsPerQuad)
	assert.Equal(t, 2, sys.Stats().TileMaps)
	assert.Equal(t, 1, sys.Stats().Glyphs)
}

func TestRenderSystemFallbackText(t *testing.T) {
	f := newFixture(t, nil)
	sys := glyph.NewRenderSystem(&fakeContext{}, f.backend, f.resource, glyph.Options{})

	require.NoError(t, sys.Render())
	require.Len(t, f.dev.Calls, 1)
	assert.Len(t, f.dev.Calls[0].Vertices, len(glyph.FallbackText)*render.FloatsPerQuad)

	// First quad starts one cell in from the top-left corner.
	first := f.dev.Calls[0].Vertices[:render.FloatsPerQuad]
	assert.Equal(t, f.resource.AppendQuad(nil, glyph.FallbackText[0], 8, 16), first)
}

func TestRenderSystemUnderScheduler(t *testing.T) {
	f := newFixture(t, nil)
	f.spawn(t, at(0, 0), component.GlyphComponent{Glyph: 'z'})

	ctx := &fakeContext{}
	scheduler := ecs.NewScheduler(f.world, nil)
	scheduler.Register(glyph.NewRenderSystem(ctx, f.backend, f.resource, glyph.Options{}))
	scheduler.Once(0.016)
	scheduler.Once(0.016)

	assert.Equal(t, 2, ctx.ends)
	assert.Len(t, f.dev.Calls, 2)
}
