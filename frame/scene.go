package frame

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/icyseptember2237/nengine/resource"
	"github.com/icyseptember2237/nengine/text"
	"github.com/icyseptember2237/nengine/transform"
)

// Program is a linked shader the passes draw with.
type Program interface {
	Use()
	SetMatrix4(name string, m mgl32.Mat4)
	SetInt(name string, value int32)
	SetBool(name string, value bool)
}

type Drawable interface {
	Draw()
}

type Bindable interface {
	Apply(program resource.IntUniforms, unit uint32, samplerName string)
	Unapply(unit uint32)
}

// Renderable is one draw of the 3D pass. Texture may be nil.
type Renderable struct {
	Name      string
	Mesh      Drawable
	Texture   Bindable
	Transform transform.ModelTransformData
}

type Camera struct {
	// Fov is in radians.
	Fov      float32
	Distance transform.Distance
	View     transform.ViewData
}

// Scene is what the 3D pass draws every frame.
type Scene struct {
	Camera      Camera
	Renderables []*Renderable
}

func (s *Scene) Add(r *Renderable) {
	s.Renderables = append(s.Renderables, r)
}

type OverlayItem interface {
	Draw(program text.Program) error
}

// Overlay is the screen-space pass drawn after the scene with its own
// program and a pixel-unit orthographic projection.
type Overlay struct {
	Program Program
	Items   []OverlayItem
}

func (o *Overlay) Add(item OverlayItem) {
	o.Items = append(o.Items, item)
}
