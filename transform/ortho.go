package transform

import "github.com/go-gl/mathgl/mgl32"

// Orthographic is the projection of the 2D overlay pass.
type Orthographic struct {
	Left, Right float32
	Bottom, Top float32
	Near, Far   float32
}

// ScreenSpace maps pixel coordinates with the origin in the bottom-left
// corner.
func ScreenSpace(width, height int) Orthographic {
	return Orthographic{
		Right: float32(width),
		Top:   float32(height),
		Near:  -1,
		Far:   1,
	}
}

func (o Orthographic) Matrix() mgl32.Mat4 {
	return mgl32.Ortho(o.Left, o.Right, o.Bottom, o.Top, o.Near, o.Far)
}
