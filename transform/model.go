package transform

import "github.com/go-gl/mathgl/mgl32"

// ModelTransformData places a mesh in the world. Rotation holds Euler angles
// in radians about X, Y and Z.
type ModelTransformData struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Vec3
	Scale       mgl32.Vec3
}

// Identity is the transform that leaves a mesh where it was modelled.
func Identity() ModelTransformData {
	return ModelTransformData{Scale: mgl32.Vec3{1, 1, 1}}
}

// Model composes T * R * S for column vectors: scale first, then rotate,
// then translate.
func Model(data ModelTransformData) mgl32.Mat4 {
	t := mgl32.Translate3D(data.Translation.X(), data.Translation.Y(), data.Translation.Z())
	s := mgl32.Scale3D(data.Scale.X(), data.Scale.Y(), data.Scale.Z())
	return t.Mul4(Rotation(data.Rotation)).Mul4(s)
}

// Rotation is Rz * Ry * Rx: roll about X is applied first, yaw about Z last.
func Rotation(angles mgl32.Vec3) mgl32.Mat4 {
	rx := mgl32.HomogRotate3DX(angles.X())
	ry := mgl32.HomogRotate3DY(angles.Y())
	rz := mgl32.HomogRotate3DZ(angles.Z())
	return rz.Mul4(ry).Mul4(rx)
}
