// Command glyphon opens a window (or terminal) and renders a glyph scene.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/plus3/glyphon/assets"
	"github.com/plus3/glyphon/component"
	"github.com/plus3/glyphon/config"
	"github.com/plus3/glyphon/debugui"
	debugui_ebiten "github.com/plus3/glyphon/debugui/ebiten"
	"github.com/plus3/glyphon/ecs"
	"github.com/plus3/glyphon/glyph"
	"github.com/plus3/glyphon/platform"
	"github.com/plus3/glyphon/platform/ebitenctx"
	"github.com/plus3/glyphon/platform/termctx"
	"github.com/plus3/glyphon/render"
	"github.com/plus3/glyphon/render/termdev"
	"github.com/plus3/glyphon/scene"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	backend    string
	scenePath  string
	debug      bool
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.configPath, "config", "", "path to a TOML config file (defaults are used when empty)")
	flag.StringVar(&o.backend, "backend", "", "override the render backend: ebiten or terminal")
	flag.StringVar(&o.scenePath, "scene", "", "override the YAML scene file")
	flag.BoolVar(&o.debug, "debug", false, "show the ImGui debug overlay (ebiten only)")
	flag.Parse()
	return o
}

func loadConfig(o options) (*config.Config, error) {
	cfg := config.Defaults()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return nil, err
		}
	}
	if o.backend != "" {
		cfg.Engine.Backend = o.backend
	}
	if o.scenePath != "" {
		cfg.Engine.Scene = o.scenePath
	}
	if o.debug {
		cfg.Engine.DebugUI = true
	}
	return cfg, cfg.Validate()
}

// FrameInfo is updated once per tick.
type FrameInfo struct {
	Frames  uint64
	Elapsed float64
}

type game struct {
	scheduler *ecs.Scheduler
	renderer  *glyph.RenderSystem
}

func (g *game) Update(dt float64) error {
	g.scheduler.Once(dt)
	return nil
}

func (g *game) Draw() error {
	return g.renderer.Render()
}

func run() error {
	cfg, err := loadConfig(parseFlags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	registry := ecs.NewComponentRegistry()
	component.Register(registry)
	debugui.Register(registry)
	world := ecs.NewWorld(registry)

	sc := scene.Default()
	if cfg.Engine.Scene != "" {
		if sc, err = scene.Load(cfg.Engine.Scene); err != nil {
			return err
		}
	}
	gw, gh := float32(cfg.Atlas.GlyphWidth), float32(cfg.Atlas.GlyphHeight)
	created, err := sc.Build(world, gw, gh)
	if err != nil {
		return fmt.Errorf("build scene %q: %w", sc.Name, err)
	}
	logger.Info("scene loaded", zap.String("scene", sc.Name), zap.Int("entities", len(created)))

	var (
		gctx     platform.GraphicsContext
		runner   platform.Runner
		device   render.Device
		ebitenUI *ebitenctx.Context
	)
	shader := assets.GlyphShader()
	if cfg.Atlas.Shader != "" {
		if shader, err = assets.LoadKageShader(assets.GlyphShaderName, cfg.Atlas.Shader); err != nil {
			return err
		}
	}
	fragment := shader.Fragment

	switch cfg.Engine.Backend {
	case config.BackendTerminal:
		layout := termdev.Layout{
			Cols:        cfg.Atlas.Cols,
			Rows:        cfg.Atlas.Rows,
			GlyphWidth:  gw,
			GlyphHeight: gh,
		}
		tc, err := termctx.Create(cfg.Window.Title, nil, layout, cfg.Engine.TickRate, logger)
		if err != nil {
			return err
		}
		gctx, runner, device = tc, tc, tc.Device()
	default:
		ec, err := ebitenctx.Create(cfg.Window.Title, cfg.Window.Width, cfg.Window.Height, logger)
		if err != nil {
			return err
		}
		gctx, runner, device, ebitenUI = ec, ec, ec.Device(), ec
		fragment = shader.Kage
	}
	defer func() {
		if err := gctx.Cleanup(); err != nil {
			logger.Warn("graphics cleanup failed", zap.Error(err))
		}
	}()

	backend := render.NewBackend(device, logger)
	if err := backend.Initialize(); err != nil {
		return fmt.Errorf("initialize renderer: %w", err)
	}
	if err := backend.LoadShader(shader.Name, shader.Vertex, fragment); err != nil {
		// The device falls back to untinted drawing.
		logger.Warn("using fallback glyph pipeline", zap.Error(err))
	}

	atlas := assets.BuiltinAtlas()
	if cfg.Atlas.Path != "" {
		if atlas, err = assets.LoadImage(cfg.Atlas.Path); err != nil {
			return err
		}
	}
	texture, err := backend.LoadTexture(atlas)
	if err != nil {
		return fmt.Errorf("upload atlas: %w", err)
	}

	resource := glyph.GlyphResource{
		Texture:     texture,
		Shader:      shader.Name,
		Cols:        uint32(cfg.Atlas.Cols),
		Rows:        uint32(cfg.Atlas.Rows),
		GlyphWidth:  gw,
		GlyphHeight: gh,
	}
	if err := resource.Validate(); err != nil {
		return err
	}

	w, h := gctx.Size()
	backend.SetProjection(render.ScreenProjection(w, h))

	renderer := glyph.NewRenderSystem(gctx, backend, resource, glyph.Options{
		ClearColor: platform.Color(cfg.Window.ClearColor),
		Logger:     logger,
	})
	renderer.SetWorld(world)

	scheduler := ecs.NewScheduler(world, logger)
	frameInfo := ecs.NewSingleton[FrameInfo](world)
	scheduler.Register(ecs.SystemFunc(func(frame *ecs.UpdateFrame) {
		info := frameInfo.Get()
		info.Frames++
		info.Elapsed += frame.DeltaTime
	}))

	if cfg.Engine.DebugUI {
		if ebitenUI == nil {
			logger.Warn("debug UI needs the ebiten backend", zap.String("backend", cfg.Engine.Backend))
		} else {
			if _, err := debugui.Spawn(world, scheduler, backend); err != nil {
				return err
			}
			ebitenUI.SetOverlay(debugui_ebiten.NewOverlay(cfg.Window.Title, cfg.Window.Width, cfg.Window.Height, world))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("running",
		zap.String("backend", cfg.Engine.Backend),
		zap.Int("width", w),
		zap.Int("height", h))

	err = runner.Run(ctx, &game{scheduler: scheduler, renderer: renderer})
	if err != nil && !errors.Is(err, platform.ErrContextClosed) {
		return err
	}

	info := frameInfo.Get()
	diag := backend.Diagnostics()
	logger.Info("stopped",
		zap.Uint64("ticks", info.Frames),
		zap.Float64("elapsed", info.Elapsed),
		zap.Uint64("executes", diag.Executes),
		zap.Uint64("skipped_tile_maps", diag.TileMapsSkipped))
	return nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
