// Package platform defines the window/context collaborator the renderer
// draws through, plus the frame loop contract both backends implement.
package platform

import (
	"context"
	"errors"
)

// ErrContextClosed is returned once the user has closed the window or
// terminal, or after Cleanup.
var ErrContextClosed = errors.New("platform: graphics context closed")

// Color is an RGBA clear colour with components in [0, 1].
type Color [4]float32

// DefaultClearColor is a dark grey.
var DefaultClearColor = Color{0.1, 0.1, 0.1, 1}

// RGBA8 converts c to 8-bit channels, clamping out-of-range values.
func (c Color) RGBA8() (r, g, b, a uint8) {
	conv := func(v float32) uint8 {
		switch {
		case v <= 0:
			return 0
		case v >= 1:
			return 255
		}
		return uint8(v*255 + 0.5)
	}
	return conv(c[0]), conv(c[1]), conv(c[2]), conv(c[3])
}

// GraphicsContext owns a window (or terminal) and its drawing surface.
// Renderers borrow it for the duration of a frame and never close it.
type GraphicsContext interface {
	// BeginFrame clears the surface and makes it the current draw target.
	BeginFrame(clear Color)
	// EndFrame presents the frame.
	EndFrame() error
	// Size returns the surface size in pixels.
	Size() (width, height int)
	// Cleanup releases the context. Further frames fail with ErrContextClosed.
	Cleanup() error
}

// Game is driven by a Runner: Update advances simulation by dt seconds and
// Draw renders one frame into the context.
type Game interface {
	Update(dt float64) error
	Draw() error
}

// Runner owns the frame loop for a GraphicsContext. Run returns nil when the
// user closes the context or ctx is cancelled, and the first error returned by
// the Game otherwise.
type Runner interface {
	GraphicsContext
	Run(ctx context.Context, game Game) error
}
