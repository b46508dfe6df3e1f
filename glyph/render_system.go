package glyph

import (
	"go.uber.org/zap"

	"github.com/plus3/glyphon/component"
	"github.com/plus3/glyphon/ecs"
	"github.com/plus3/glyphon/platform"
	"github.com/plus3/glyphon/render"
)

// FallbackText is drawn when no world is attached.
const FallbackText = "Something went wrong with the world!"

// FrameStats summarizes one Render.
type FrameStats struct {
	render.Stats
	TileMaps int
	Overlays int
	Glyphs   int
}

// Options configures a RenderSystem.
type Options struct {
	ClearColor platform.Color
	Logger     *zap.Logger
}

// RenderSystem is the per-frame driver. It draws the first valid tile map
// with every GlyphRenderable entity stamped onto a copy of its buffer, then
// any further tile maps, then the batched GlyphComponent entities.
type RenderSystem struct {
	ctx      platform.GraphicsContext
	backend  *render.Backend
	frontend *render.Frontend
	console  *ConsoleRenderer
	tileMaps *TileMapRenderSystem
	glyphs   *GlyphRenderSystem
	world    *ecs.World
	clear    platform.Color
	logger   *zap.Logger

	overlay []byte
	others  []*component.TileMap
	stats   FrameStats
}

// NewRenderSystem wires the glyph renderers for resource onto backend. ctx
// is borrowed; the caller keeps ownership.
func NewRenderSystem(ctx platform.GraphicsContext, backend *render.Backend, resource GlyphResource, opts Options) *RenderSystem {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	frontend := render.NewFrontend()
	console := NewConsoleRenderer(resource, backend)
	return &RenderSystem{
		ctx:      ctx,
		backend:  backend,
		frontend: frontend,
		console:  console,
		tileMaps: NewTileMapRenderSystem(console, logger),
		glyphs:   NewGlyphRenderSystem(resource, frontend),
		clear:    opts.ClearColor,
		logger:   logger,
	}
}

// SetWorld attaches the world to draw. A nil world draws FallbackText.
func (s *RenderSystem) SetWorld(world *ecs.World) {
	s.world = world
}

// Console exposes the underlying console renderer for text overlays.
func (s *RenderSystem) Console() *ConsoleRenderer {
	return s.console
}

// Stats returns the figures for the last Render.
func (s *RenderSystem) Stats() FrameStats {
	return s.stats
}

// Render draws one complete frame.
func (s *RenderSystem) Render() error {
	s.stats = FrameStats{}
	s.ctx.BeginFrame(s.clear)

	if s.world == nil {
		s.console.RenderText(FallbackText, 1, 1)
	} else {
		s.drawWorld(s.world)
	}

	s.stats.Stats = s.console.TakeStats()
	flushed := s.backend.Flush(s.frontend)
	s.stats.Commands += flushed.Commands
	s.stats.DrawCalls += flushed.DrawCalls
	s.stats.Vertices += flushed.Vertices
	s.stats.Skipped += flushed.Skipped

	return s.ctx.EndFrame()
}

// Execute lets the system run as the last system of an ecs.Scheduler.
func (s *RenderSystem) Execute(frame *ecs.UpdateFrame) {
	s.world = frame.World
	if err := s.Render(); err != nil {
		s.logger.Debug("render failed", zap.Error(err))
	}
}

func (s *RenderSystem) drawWorld(world *ecs.World) {
	var base *component.TileMap
	s.others = s.others[:0]
	for e, m := range ecs.StorageFor[component.TileMap](world).Iter() {
		if !s.tileMaps.valid(e, m) || len(m.Glyphs) == 0 {
			continue
		}
		if base == nil {
			base = m
			continue
		}
		s.others = append(s.others, m)
	}

	res := s.console.Resource()
	if base != nil {
		s.overlay = append(s.overlay[:0], base.Glyphs...)
		ecs.ForEach2(world, func(_ ecs.Entity, t *component.Transform, g *component.GlyphRenderable) {
			col, row := t.Cell(res.GlyphWidth, res.GlyphHeight)
			if !base.InBounds(col, row) {
				return
			}
			s.overlay[row*base.Cols+col] = g.Glyph
			s.stats.Overlays++
		})
		s.console.DrawConsole(s.overlay, base.Cols, base.Rows)
		s.stats.TileMaps++

		for _, m := range s.others {
			s.console.DrawConsole(m.Glyphs, m.Cols, m.Rows)
			s.stats.TileMaps++
		}
	} else {
		ecs.ForEach2(world, func(_ ecs.Entity, t *component.Transform, g *component.GlyphRenderable) {
			col, row := t.Cell(res.GlyphWidth, res.GlyphHeight)
			s.console.DrawGlyph(g.Glyph, float32(col)*res.GlyphWidth, float32(row)*res.GlyphHeight)
			s.stats.Overlays++
		})
	}

	s.stats.Glyphs = s.glyphs.Update(world)
}
