// Package termctx implements platform.GraphicsContext on a tcell terminal.
// One terminal cell stands in for one glyph-sized block of pixels.
package termctx

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/plus3/glyphon/platform"
	"github.com/plus3/glyphon/render/termdev"
)

// Context owns a tcell screen.
type Context struct {
	screen   tcell.Screen
	layout   termdev.Layout
	device   *termdev.Device
	logger   *zap.Logger
	tickRate time.Duration
	closed   bool

	// events is fed by one poller shared by every Run. quit stops it.
	events   chan tcell.Event
	quit     chan struct{}
	pollOnce sync.Once
}

// Create initializes screen, or the process terminal when screen is nil.
func Create(title string, screen tcell.Screen, layout termdev.Layout, tickRate time.Duration, logger *zap.Logger) (*Context, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if screen == nil {
		var err error
		if screen, err = tcell.NewScreen(); err != nil {
			return nil, fmt.Errorf("termctx: new screen: %w", err)
		}
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("termctx: init screen: %w", err)
	}
	if tickRate <= 0 {
		tickRate = time.Second / 30
	}

	w, h := screen.Size()
	logger.Info("terminal context created",
		zap.String("title", title),
		zap.Int("cols", w),
		zap.Int("rows", h))

	return &Context{
		screen:   screen,
		layout:   layout,
		device:   termdev.New(screen, layout, logger),
		logger:   logger,
		tickRate: tickRate,
		events:   make(chan tcell.Event, 32),
		quit:     make(chan struct{}),
	}, nil
}

// Device returns the render device writing to this terminal.
func (c *Context) Device() *termdev.Device {
	return c.device
}

// Screen returns the underlying tcell screen.
func (c *Context) Screen() tcell.Screen {
	return c.screen
}

func (c *Context) BeginFrame(clear platform.Color) {
	if c.closed {
		return
	}
	r, g, b, _ := clear.RGBA8()
	style := tcell.StyleDefault.Background(tcell.NewRGBColor(int32(r), int32(g), int32(b)))
	c.screen.SetStyle(style)
	c.device.SetStyle(style)
	c.screen.Clear()
}

func (c *Context) EndFrame() error {
	if c.closed {
		return platform.ErrContextClosed
	}
	c.screen.Show()
	return nil
}

// Size reports the terminal in pixels of the configured glyph size.
func (c *Context) Size() (int, int) {
	w, h := c.screen.Size()
	return int(float32(w) * c.layout.GlyphWidth), int(float32(h) * c.layout.GlyphHeight)
}

func (c *Context) Cleanup() error {
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.quit)
	c.screen.Fini()
	return nil
}

func (c *Context) poll() {
	for {
		ev := c.screen.PollEvent()
		if ev == nil {
			close(c.events)
			return
		}
		select {
		case c.events <- ev:
		case <-c.quit:
			return
		}
	}
}

func quitKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q' || ev.Rune() == 'Q'
	}
	return false
}

// Run ticks game at the context's tick rate until ctx is cancelled, the user
// presses Esc, Ctrl-C or q, or the screen goes away.
func (c *Context) Run(ctx context.Context, game platform.Game) error {
	if c.closed {
		return platform.ErrContextClosed
	}

	c.pollOnce.Do(func() { go c.poll() })

	ticker := time.NewTicker(c.tickRate)
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-c.events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventResize:
				c.screen.Sync()
			case *tcell.EventKey:
				if quitKey(ev) {
					c.logger.Debug("quit requested")
					return nil
				}
			}
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			if err := game.Update(dt); err != nil {
				return err
			}
			if err := game.Draw(); err != nil {
				return err
			}
		}
	}
}

var _ platform.Runner = (*Context)(nil)
