package frame

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/icyseptember2237/nengine/gfx"
	"github.com/icyseptember2237/nengine/platform"
	"github.com/icyseptember2237/nengine/resource"
	"github.com/icyseptember2237/nengine/transform"
)

type State int

const (
	Running State = iota
	// Closing is terminal.
	Closing
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "closing"
}

// Scripts is the part of the script bridge the driver calls every frame.
type Scripts interface {
	ReloadAll() error
	Update(deltaSeconds float64)
}

type Options struct {
	Window  platform.Window
	Context gfx.Context
	Scripts Scripts
	Host    *Host
	Program Program
	Scene   *Scene
	Overlay *Overlay
	Logger  *zap.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

type Driver struct {
	window  platform.Window
	ctx     gfx.Context
	scripts Scripts
	host    *Host
	program Program
	scene   *Scene
	overlay *Overlay
	logger  *zap.Logger
	now     func() time.Time

	state  State
	last   time.Time
	frames uint64
}

func NewDriver(opt Options) (*Driver, error) {
	switch {
	case opt.Window == nil:
		return nil, errors.New("frame driver needs a window")
	case opt.Context == nil:
		return nil, errors.New("frame driver needs a graphics context")
	case opt.Scripts == nil:
		return nil, errors.New("frame driver needs a script bridge")
	case opt.Program == nil:
		return nil, errors.New("frame driver needs a shader program")
	}
	d := &Driver{
		window:  opt.Window,
		ctx:     opt.Context,
		scripts: opt.Scripts,
		host:    opt.Host,
		program: opt.Program,
		scene:   opt.Scene,
		overlay: opt.Overlay,
		logger:  opt.Logger,
		now:     opt.Now,
	}
	if d.host == nil {
		d.host = NewHost()
	}
	if d.scene == nil {
		d.scene = &Scene{}
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	if d.now == nil {
		d.now = time.Now
	}
	return d, nil
}

// Init sets the GL state every frame relies on.
func (d *Driver) Init() error {
	d.ctx.Enable(gfx.DepthTest)
	d.ctx.Enable(gfx.Blend)
	d.ctx.BlendFunc(gfx.SrcAlpha, gfx.OneMinusSrcAlpha)
	return gfx.Check(d.ctx, "init")
}

func (d *Driver) State() State {
	return d.state
}

func (d *Driver) Frames() uint64 {
	return d.frames
}

// Run draws frames until the driver is closing or ctx is done. A fatal
// script error ends the loop and is returned.
func (d *Driver) Run(ctx context.Context) error {
	d.logger.Info("frame loop started")
	for d.state == Running {
		select {
		case <-ctx.Done():
			d.close("context done")
			continue
		default:
		}
		if err := d.Frame(); err != nil {
			d.state = Closing
			return err
		}
	}
	d.logger.Info("frame loop stopped", zap.Uint64("frames", d.frames))
	return nil
}

// Frame runs one frame. The frame in which closing is observed still
// renders and presents, but does not touch scripts.
func (d *Driver) Frame() error {
	if d.state == Closing {
		return nil
	}

	now := d.now()
	var dt float64
	if !d.last.IsZero() {
		dt = now.Sub(d.last).Seconds()
	}
	d.last = now

	d.pollEvents()

	if d.state == Running {
		if err := d.scripts.ReloadAll(); err != nil {
			return fmt.Errorf("script reload: %w", err)
		}
		d.scripts.Update(dt)
		// Scripts may have asked to close.
		if d.host.closeWanted() {
			d.close("requested by script")
		}
	}

	if c, ok := d.host.takeClearColor(); ok {
		d.ctx.ClearColor(c[0], c[1], c[2], c[3])
	}
	d.ctx.Clear(gfx.ColorBufferBit | gfx.DepthBufferBit)

	width, height := d.window.FramebufferSize()
	d.ctx.Viewport(0, 0, int32(width), int32(height))

	projection := transform.Projection(transform.ProjectionData{
		AspectRatio: transform.AspectRatio(width, height),
		Fov:         d.scene.Camera.Fov,
		Distance:    d.scene.Camera.Distance,
	})
	view := transform.View(d.scene.Camera.View)

	d.program.Use()
	d.program.SetMatrix4("projection", projection)
	d.program.SetMatrix4("view", view)
	if len(d.scene.Renderables) == 0 {
		d.program.SetMatrix4("model", transform.Model(transform.Identity()))
	}
	for _, r := range d.scene.Renderables {
		d.program.SetMatrix4("model", transform.Model(r.Transform))
		if r.Texture != nil {
			r.Texture.Apply(d.program, 0, resource.DefaultSampler)
		}
		if r.Mesh != nil {
			r.Mesh.Draw()
		}
		if r.Texture != nil {
			r.Texture.Unapply(0)
		}
	}

	if err := d.drawOverlay(width, height); err != nil {
		return err
	}

	d.window.SwapBuffers()
	d.frames++
	return nil
}

func (d *Driver) pollEvents() {
	for _, e := range d.window.PollEvents() {
		switch {
		case e.IsEscapeRelease():
			d.window.SetShouldClose(true)
		case e.Kind == platform.EventFramebufferSize:
			d.logger.Debug("framebuffer resized", zap.Int("width", e.Width), zap.Int("height", e.Height))
		}
	}
	if d.window.ShouldClose() {
		d.close("window closed")
	}
	if d.host.closeWanted() {
		d.close("requested by script")
	}
}

func (d *Driver) drawOverlay(width, height int) error {
	if d.overlay == nil || d.overlay.Program == nil || len(d.overlay.Items) == 0 {
		return nil
	}
	p := d.overlay.Program
	p.Use()
	p.SetMatrix4("projection", transform.ScreenSpace(width, height).Matrix())
	p.SetMatrix4("view", mgl32.Ident4())
	for _, item := range d.overlay.Items {
		if err := item.Draw(p); err != nil {
			return fmt.Errorf("overlay: %w", err)
		}
	}
	return nil
}

func (d *Driver) close(reason string) {
	if d.state == Closing {
		return
	}
	d.state = Closing
	d.logger.Info("closing", zap.String("reason", reason))
}
