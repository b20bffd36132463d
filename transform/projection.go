package transform

import "github.com/go-gl/mathgl/mgl32"

// Distance is the depth range of a projection.
type Distance struct {
	Near float32
	Far  float32
}

// ProjectionData describes a right-handed perspective projection. Fov is the
// vertical field of view in radians.
type ProjectionData struct {
	AspectRatio float32
	Fov         float32
	Distance    Distance
}

// AspectRatio returns width/height, or 1 when the framebuffer has no height
// (a minimised window).
func AspectRatio(width, height int) float32 {
	if width <= 0 || height <= 0 {
		return 1
	}
	return float32(width) / float32(height)
}

func Projection(data ProjectionData) mgl32.Mat4 {
	return mgl32.Perspective(data.Fov, data.AspectRatio, data.Distance.Near, data.Distance.Far)
}
