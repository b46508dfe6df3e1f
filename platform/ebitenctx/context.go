// Package ebitenctx implements platform.GraphicsContext on an ebiten window.
//
// ebiten owns the main loop, so frames are driven from Run: Update calls
// the game's Update, and Draw calls the game's Draw with the screen image
// installed as the render target.
package ebitenctx

import (
	"context"
	"errors"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/plus3/glyphon/platform"
	"github.com/plus3/glyphon/render/ebitendev"
)

// Overlay draws on top of each frame after the game, e.g. a debug UI.
type Overlay interface {
	Update(dt float64)
	Draw(screen *ebiten.Image)
	Layout(width, height int)
}

// Context is an ebiten window plus the render device drawing into it.
type Context struct {
	width, height int
	device        *ebitendev.Device
	overlay       Overlay
	logger        *zap.Logger

	screen  *ebiten.Image
	drawErr error
	closed  bool
}

// Create configures the ebiten window. The window opens when Run is called.
func Create(title string, width, height int, logger *zap.Logger) (*Context, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if width <= 0 || height <= 0 {
		return nil, errors.New("ebitenctx: window size must be positive")
	}

	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	logger.Info("ebiten context created",
		zap.String("title", title),
		zap.Int("width", width),
		zap.Int("height", height))

	return &Context{
		width:  width,
		height: height,
		device: ebitendev.New(logger),
		logger: logger,
	}, nil
}

// Device returns the render device bound to this window.
func (c *Context) Device() *ebitendev.Device {
	return c.device
}

// SetOverlay installs an overlay drawn after every frame.
func (c *Context) SetOverlay(o Overlay) {
	c.overlay = o
}

func (c *Context) BeginFrame(clear platform.Color) {
	if c.screen == nil {
		return
	}
	r, g, b, a := clear.RGBA8()
	c.screen.Fill(color.NRGBA{R: r, G: g, B: b, A: a})
	c.device.SetTarget(c.screen)
}

func (c *Context) EndFrame() error {
	if c.closed {
		return platform.ErrContextClosed
	}
	if c.overlay != nil && c.screen != nil {
		c.overlay.Draw(c.screen)
	}
	c.device.SetTarget(nil)
	return nil
}

// Size returns the logical screen size.
func (c *Context) Size() (int, int) {
	return c.width, c.height
}

func (c *Context) Cleanup() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.device.Dispose()
	return nil
}

type gameAdapter struct {
	ctx  context.Context
	c    *Context
	game platform.Game
}

func (a *gameAdapter) Update() error {
	if a.ctx.Err() != nil || ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if err := a.c.drawErr; err != nil {
		return err
	}
	dt := 1 / float64(ebiten.TPS())
	if a.c.overlay != nil {
		a.c.overlay.Update(dt)
	}
	return a.game.Update(dt)
}

func (a *gameAdapter) Draw(screen *ebiten.Image) {
	a.c.screen = screen
	if err := a.game.Draw(); err != nil && a.c.drawErr == nil {
		a.c.drawErr = err
	}
	a.c.screen = nil
}

func (a *gameAdapter) Layout(outsideWidth, outsideHeight int) (int, int) {
	if a.c.overlay != nil {
		a.c.overlay.Layout(a.c.width, a.c.height)
	}
	return a.c.width, a.c.height
}

// Run opens the window and blocks until it is closed, Esc is pressed or ctx
// is cancelled. It must be called from the main goroutine.
func (c *Context) Run(ctx context.Context, game platform.Game) error {
	if c.closed {
		return platform.ErrContextClosed
	}
	err := ebiten.RunGame(&gameAdapter{ctx: ctx, c: c, game: game})
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

var _ platform.Runner = (*Context)(nil)
