package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/profile"

	"github.com/plus3/glyphon/assets"
	"github.com/plus3/glyphon/component"
	"github.com/plus3/glyphon/ecs"
	"github.com/plus3/glyphon/glyph"
	"github.com/plus3/glyphon/platform"
	"github.com/plus3/glyphon/platform/termctx"
	"github.com/plus3/glyphon/render"
	"github.com/plus3/glyphon/render/rendertest"
	"github.com/plus3/glyphon/render/termdev"
)

const (
	mapCols = 80
	mapRows = 25
)

// headless satisfies platform.GraphicsContext for the recording device.
type headless struct {
	device *rendertest.Device
	w, h   int
}

func (c *headless) BeginFrame(platform.Color) { c.device.Reset() }
func (c *headless) EndFrame() error           { return nil }
func (c *headless) Size() (int, int)          { return c.w, c.h }
func (c *headless) Cleanup() error            { return nil }

// wander moves every free glyph by up to one cell per tick and keeps it on the map.
type wander struct {
	rng  *rand.Rand
	w, h float32
}

func (s *wander) Execute(frame *ecs.UpdateFrame) {
	ecs.ForEach2(frame.World, func(_ ecs.Entity, t *component.Transform, _ *component.GlyphComponent) {
		t.Position.X = wrap(t.Position.X+float32(s.rng.Intn(3)-1)*assets.GlyphWidth, s.w)
		t.Position.Y = wrap(t.Position.Y+float32(s.rng.Intn(3)-1)*assets.GlyphHeight, s.h)
	})
}

func wrap(v, limit float32) float32 {
	switch {
	case v < 0:
		return v + limit
	case v >= limit:
		return v - limit
	}
	return v
}

func main() {
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	entityCount := flag.Int("entities", 10000, "The number of free glyph entities to create.")
	overlayCount := flag.Int("overlays", 100, "The number of glyphs stamped onto the tile map.")
	deviceName := flag.String("device", "null", "Render device: null (recording) or term (simulated terminal).")
	profileMode := flag.String("profile", "", "Write a cpu or mem profile to the working directory.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	switch *profileMode {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "":
	default:
		log.Fatalf("unknown profile mode %q", *profileMode)
	}

	log.Println("Starting glyph stress test...")

	// 1. Setup registry, world and renderer
	registry := ecs.NewComponentRegistry()
	component.Register(registry)
	world := ecs.NewWorld(registry)

	width, height := mapCols*assets.GlyphWidth, mapRows*assets.GlyphHeight
	gctx, device, err := newContext(*deviceName, width, height)
	if err != nil {
		log.Fatalf("Failed to create context: %v", err)
	}
	defer gctx.Cleanup()

	backend := render.NewBackend(device, nil)
	if err := backend.Initialize(); err != nil {
		log.Fatalf("Failed to initialize backend: %v", err)
	}
	shader := assets.GlyphShader()
	if err := backend.LoadShader(shader.Name, shader.Vertex, shader.Fragment); err != nil {
		log.Fatalf("Failed to load shader: %v", err)
	}
	texture, err := backend.LoadTexture(assets.BuiltinAtlas())
	if err != nil {
		log.Fatalf("Failed to load atlas: %v", err)
	}
	backend.SetProjection(render.ScreenProjection(width, height))

	resource := glyph.GlyphResource{
		Texture:     texture,
		Shader:      shader.Name,
		Cols:        assets.AtlasCols,
		Rows:        assets.AtlasRows,
		GlyphWidth:  assets.GlyphWidth,
		GlyphHeight: assets.GlyphHeight,
	}
	renderer := glyph.NewRenderSystem(gctx, backend, resource, glyph.Options{ClearColor: platform.DefaultClearColor})

	scheduler := ecs.NewScheduler(world, nil)
	scheduler.Register(&wander{rng: rand.New(rand.NewSource(1)), w: float32(width), h: float32(height)})
	scheduler.Register(renderer)

	// 2. Populate the world
	log.Printf("Populating world with %d glyphs and %d overlays...\n", *entityCount, *overlayCount)
	if err := populate(world, *entityCount, *overlayCount); err != nil {
		log.Fatalf("Failed to populate world: %v", err)
	}
	log.Println("Population complete.")

	// 3. Run the frame loop
	report := &Report{
		Duration:       *duration,
		Entities:       *entityCount,
		Overlays:       *overlayCount,
		Device:         *deviceName,
		GCPauseMetrics: *gcPauseMetrics,
		FrameTime: Stats{
			Samples: make([]time.Duration, 0),
		},
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	log.Printf("Running for %s...\n", *duration)
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	startTime := time.Now()
	var totalFrames int64
	lastFrameTime := time.Now()

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			deltaTime := time.Since(lastFrameTime)
			lastFrameTime = time.Now()

			frameStart := time.Now()
			scheduler.Once(float64(deltaTime) / float64(time.Second))
			report.FrameTime.Samples = append(report.FrameTime.Samples, time.Since(frameStart))

			stats := renderer.Stats()
			report.DrawCalls += int64(stats.DrawCalls)
			report.Vertices += int64(stats.Vertices)
			totalFrames++
		}
	}

	report.TotalTime = time.Since(startTime)
	report.TotalFrames = totalFrames
	report.FrameTime.Finalize()
	report.Diagnostics = *backend.Diagnostics()
	runtime.ReadMemStats(&report.MemStatsEnd)

	log.Println("Run finished.")

	// 4. Generate report to console
	fmt.Println("\n\n--- Glyph Stress Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.Fatalf("Failed to generate report: %v", err)
	}
	fmt.Println("--- End of Report ---")
}

func newContext(name string, width, height int) (platform.GraphicsContext, render.Device, error) {
	switch name {
	case "null":
		device := rendertest.NewDevice()
		return &headless{device: device, w: width, h: height}, device, nil
	case "term":
		screen := tcell.NewSimulationScreen("UTF-8")
		screen.SetSize(mapCols, mapRows)
		layout := termdev.Layout{
			Cols:        assets.AtlasCols,
			Rows:        assets.AtlasRows,
			GlyphWidth:  assets.GlyphWidth,
			GlyphHeight: assets.GlyphHeight,
		}
		tc, err := termctx.Create("glyph-stress", screen, layout, 0, nil)
		if err != nil {
			return nil, nil, err
		}
		return tc, tc.Device(), nil
	}
	return nil, nil, fmt.Errorf("unknown device %q", name)
}

func populate(world *ecs.World, entities, overlays int) error {
	rng := rand.New(rand.NewSource(42))

	m := world.CreateEntity()
	if _, err := ecs.AddComponent(world, m, component.NewTileMap(mapCols, mapRows, '.')); err != nil {
		return err
	}

	for i := 0; i < overlays; i++ {
		e := world.CreateEntity()
		pos := component.Vec2{X: float32(rng.Intn(mapCols) * assets.GlyphWidth), Y: float32(rng.Intn(mapRows) * assets.GlyphHeight)}
		if _, err := ecs.AddComponent(world, e, component.Transform{Position: pos}); err != nil {
			return err
		}
		if _, err := ecs.AddComponent(world, e, component.GlyphRenderable{Glyph: byte('a' + rng.Intn(26))}); err != nil {
			return err
		}
	}

	for i := 0; i < entities; i++ {
		e := world.CreateEntity()
		pos := component.Vec2{X: float32(rng.Intn(mapCols * assets.GlyphWidth)), Y: float32(rng.Intn(mapRows * assets.GlyphHeight))}
		if _, err := ecs.AddComponent(world, e, component.Transform{Position: pos}); err != nil {
			return err
		}
		if _, err := ecs.AddComponent(world, e, component.GlyphComponent{Glyph: byte('!' + rng.Intn(94))}); err != nil {
			return err
		}
	}
	return nil
}
