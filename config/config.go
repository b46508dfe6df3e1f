package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/plus3/glyphon/assets"
)

type Config struct {
	Window  WindowConfig  `toml:"window"`
	Atlas   AtlasConfig   `toml:"atlas"`
	Engine  EngineConfig  `toml:"engine"`
	Logging LoggingConfig `toml:"logging"`
}

type WindowConfig struct {
	Title      string     `toml:"title"`
	Width      int        `toml:"width"`
	Height     int        `toml:"height"`
	ClearColor [4]float32 `toml:"clear_color"`
}

type AtlasConfig struct {
	Path        string `toml:"path"` // empty = built-in font
	Cols        int    `toml:"cols"`
	Rows        int    `toml:"rows"`
	GlyphWidth  int    `toml:"glyph_width"`
	GlyphHeight int    `toml:"glyph_height"`
	Shader      string `toml:"shader"` // Kage file; empty = built-in
}

type EngineConfig struct {
	Backend  string        `toml:"backend"` // "ebiten" or "terminal"
	TickRate time.Duration `toml:"tick_rate"`
	Scene    string        `toml:"scene"`
	DebugUI  bool          `toml:"debug_ui"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

const (
	BackendEbiten   = "ebiten"
	BackendTerminal = "terminal"
)

// Load reads path over the defaults. Keys absent from the file keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Defaults() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "Colony Sim",
			Width:      800,
			Height:     600,
			ClearColor: [4]float32{0.1, 0.1, 0.1, 1},
		},
		Atlas: AtlasConfig{
			Cols:        assets.AtlasCols,
			Rows:        assets.AtlasRows,
			GlyphWidth:  assets.GlyphWidth,
			GlyphHeight: assets.GlyphHeight,
		},
		Engine: EngineConfig{
			Backend:  BackendEbiten,
			TickRate: time.Second / 60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate rejects sizes that cannot produce a frame, atlas geometry the
// built-in atlas cannot serve, and unknown backends.
func (c *Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if c.Atlas.Cols <= 0 || c.Atlas.Rows <= 0 {
		errs = append(errs, fmt.Errorf("atlas grid %dx%d must be positive", c.Atlas.Cols, c.Atlas.Rows))
	}
	if c.Atlas.GlyphWidth <= 0 || c.Atlas.GlyphHeight <= 0 {
		errs = append(errs, fmt.Errorf("glyph size %dx%d must be positive", c.Atlas.GlyphWidth, c.Atlas.GlyphHeight))
	}
	if c.Atlas.Path == "" && (c.Atlas.Cols != assets.AtlasCols || c.Atlas.Rows != assets.AtlasRows ||
		c.Atlas.GlyphWidth != assets.GlyphWidth || c.Atlas.GlyphHeight != assets.GlyphHeight) {
		errs = append(errs, fmt.Errorf("built-in atlas is %dx%d glyphs of %dx%d; set atlas.path for %dx%d of %dx%d",
			assets.AtlasCols, assets.AtlasRows, assets.GlyphWidth, assets.GlyphHeight,
			c.Atlas.Cols, c.Atlas.Rows, c.Atlas.GlyphWidth, c.Atlas.GlyphHeight))
	}
	if c.Engine.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("tick_rate %s must be positive", c.Engine.TickRate))
	}
	switch c.Engine.Backend {
	case BackendEbiten, BackendTerminal:
	default:
		errs = append(errs, fmt.Errorf("unknown backend %q", c.Engine.Backend))
	}
	return errors.Join(errs...)
}
