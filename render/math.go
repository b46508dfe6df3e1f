package render

import "github.com/go-gl/mathgl/mgl32"

// ScreenProjection maps pixel coordinates with a top-left origin on a
// width x height surface to normalized device coordinates.
func ScreenProjection(width, height int) mgl32.Mat4 {
	return mgl32.Ortho(0, float32(width), float32(height), 0, -1, 1)
}

// ToViewport maps (x, y) through m into a w x h pixel viewport whose origin
// is the top-left corner.
func ToViewport(m mgl32.Mat4, x, y, w, h float32) (float32, float32) {
	p := m.Mul4x1(mgl32.Vec4{x, y, 0, 1})
	return (p.X() + 1) / 2 * w, (1 - p.Y()) / 2 * h
}
