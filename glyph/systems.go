package glyph

import (
	"go.uber.org/zap"

	"github.com/plus3/glyphon/component"
	"github.com/plus3/glyphon/ecs"
	"github.com/plus3/glyphon/render"
)

// GlyphRenderSystem batches every Transform+GlyphComponent entity into a
// single RenderCommand per frame.
type GlyphRenderSystem struct {
	resource GlyphResource
	frontend *render.Frontend
	vertices []float32
}

// NewGlyphRenderSystem returns a system submitting to frontend.
func NewGlyphRenderSystem(resource GlyphResource, frontend *render.Frontend) *GlyphRenderSystem {
	return &GlyphRenderSystem{resource: resource, frontend: frontend}
}

// Update submits one command holding every glyph in world. Nothing is
// submitted when there are no glyphs. The command's vertex data is reused by
// the next Update, so the frontend must be flushed in between.
func (s *GlyphRenderSystem) Update(world *ecs.World) int {
	s.vertices = s.vertices[:0]
	count := 0
	ecs.ForEach2(world, func(_ ecs.Entity, t *component.Transform, g *component.GlyphComponent) {
		s.vertices = s.resource.AppendQuad(s.vertices, g.Glyph, t.Position.X, t.Position.Y)
		count++
	})
	if count == 0 {
		return 0
	}
	s.frontend.Submit(s.resource.Command(s.vertices))
	return count
}

// Execute lets the system run under an ecs.Scheduler.
func (s *GlyphRenderSystem) Execute(frame *ecs.UpdateFrame) {
	s.Update(frame.World)
}

// TileMapRenderSystem draws every valid TileMap with one draw call each.
// Maps whose buffer does not match their size are logged and skipped.
type TileMapRenderSystem struct {
	console *ConsoleRenderer
	logger  *zap.Logger
}

// NewTileMapRenderSystem returns a system drawing through console.
func NewTileMapRenderSystem(console *ConsoleRenderer, logger *zap.Logger) *TileMapRenderSystem {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TileMapRenderSystem{console: console, logger: logger}
}

// valid reports whether m can be drawn, logging and counting it otherwise.
func (s *TileMapRenderSystem) valid(e ecs.Entity, m *component.TileMap) bool {
	if err := m.Validate(); err != nil {
		s.console.backend.Diagnostics().TileMapsSkipped++
		s.logger.Warn("tile map buffer size mismatch",
			zap.Stringer("entity", e),
			zap.Int("cols", m.Cols),
			zap.Int("rows", m.Rows),
			zap.Int("len", len(m.Glyphs)),
			zap.Int("expected", m.Cols*m.Rows))
		return false
	}
	return true
}

// Update draws all valid tile maps and returns how many were drawn.
func (s *TileMapRenderSystem) Update(world *ecs.World) int {
	drawn := 0
	for e, m := range ecs.StorageFor[component.TileMap](world).Iter() {
		if !s.valid(e, m) || len(m.Glyphs) == 0 {
			continue
		}
		if err := s.console.DrawConsole(m.Glyphs, m.Cols, m.Rows); err == nil {
			drawn++
		}
	}
	return drawn
}

// Execute lets the system run under an ecs.Scheduler.
func (s *TileMapRenderSystem) Execute(frame *ecs.UpdateFrame) {
	s.Update(frame.World)
}
