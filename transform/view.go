package transform

import "github.com/go-gl/mathgl/mgl32"

type ViewData struct {
	Eye    mgl32.Vec3
	Target mgl32.Vec3
	Up     mgl32.Vec3
}

// View is the right-handed look-at matrix of data.
func View(data ViewData) mgl32.Mat4 {
	return mgl32.LookAtV(data.Eye, data.Target, data.Up)
}
