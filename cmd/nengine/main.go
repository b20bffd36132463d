package main

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	engine "github.com/icyseptember2237/nengine"
	"github.com/icyseptember2237/nengine/config"
	"github.com/icyseptember2237/nengine/frame"
	"github.com/icyseptember2237/nengine/gfx"
	"github.com/icyseptember2237/nengine/gfx/glcore"
	"github.com/icyseptember2237/nengine/logger"
	"github.com/icyseptember2237/nengine/platform"
	"github.com/icyseptember2237/nengine/resource"
	"github.com/icyseptember2237/nengine/shader"
	"github.com/icyseptember2237/nengine/sound"
	"github.com/icyseptember2237/nengine/text"
	"github.com/icyseptember2237/nengine/transform"
)

func main() {
	cfg, err := config.ParseFlags(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log, closeLog, err := logger.New(logger.Options{
		Level:  cfg.Log.Level,
		File:   cfg.Log.File,
		Dedupe: cfg.Log.Dedupe,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, log)
	stop()
	if err != nil {
		log.Error("engine stopped", zap.Error(err))
		closeLog()
		os.Exit(1)
	}
	closeLog()
}

func run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	window, err := platform.NewGLFWWindow(platform.Options{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
	})
	if err != nil {
		return err
	}
	defer window.Destroy()

	gl, err := glcore.Init()
	if err != nil {
		return err
	}
	log.Info("opengl initialized", zap.String("version", gl.Version()))

	host := frame.NewHost()
	scriptLog := log.Named("script")
	bindings := engine.DefaultBindings(host, os.Stdout, engine.NewScheduler(scriptLog))
	bridge := engine.NewBridge(
		engine.WithRetryFailed(cfg.RetryFailedScripts),
		engine.WithLogger(scriptLog),
	)
	defer bridge.Close()
	bridge.InitGlobals(bindings)
	for _, path := range cfg.Scripts {
		d := bridge.Register(path)
		scriptLog.Info("script registered", zap.String("path", path), zap.Stringer("dialect", d))
	}

	program, err := shader.Load(gl, shader.Sources{Vertex: cfg.Shaders.Vertex, Fragment: cfg.Shaders.Fragment}, log.Named("shader"))
	if err != nil {
		return err
	}
	program.Setup()
	defer program.Release()

	scene := &frame.Scene{Camera: frame.Camera{
		Fov:      cfg.Camera.FovRadians(),
		Distance: transform.Distance{Near: cfg.Camera.Near, Far: cfg.Camera.Far},
		View: transform.ViewData{
			Eye:    mgl32.Vec3(cfg.Camera.Eye),
			Target: mgl32.Vec3(cfg.Camera.Target),
			Up:     mgl32.Vec3(cfg.Camera.Up),
		},
	}}
	release, err := loadScene(gl, cfg.Scene, scene, log)
	defer release()
	if err != nil {
		return err
	}

	overlay, releaseOverlay, err := loadOverlay(gl, cfg, log)
	defer releaseOverlay()
	if err != nil {
		return err
	}

	if len(cfg.Sounds) > 0 {
		soundLog := log.Named("sound")
		sounds := sound.NewManager(sound.NewEbitenBackend(soundLog), soundLog)
		for _, s := range cfg.Sounds {
			if _, err := sounds.Add(sound.Sound{
				Source:      s.Source,
				Volume:      s.Volume,
				Muted:       cfg.Mute,
				PlayOnStart: s.PlayOnStart,
			}); err != nil {
				return err
			}
		}
	}

	driver, err := frame.NewDriver(frame.Options{
		Window:  window,
		Context: gl,
		Scripts: bridge,
		Host:    host,
		Program: program,
		Scene:   scene,
		Overlay: overlay,
		Logger:  log.Named("frame"),
	})
	if err != nil {
		return err
	}
	if err := driver.Init(); err != nil {
		return err
	}
	return driver.Run(ctx)
}

// loadScene adds the configured model to scene. The returned release func
// is always safe to call.
func loadScene(ctx gfx.Context, cfg config.Scene, scene *frame.Scene, log *zap.Logger) (func(), error) {
	var releases []func()
	release := func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}
	if cfg.Model == "" {
		return release, nil
	}

	model, err := resource.LoadModel(cfg.Model, log.Named("model"))
	if err != nil {
		return release, err
	}
	if model.Mesh.Empty() {
		return release, nil
	}
	mesh, err := resource.NewMesh(ctx, model.Mesh)
	if err != nil {
		return release, err
	}
	releases = append(releases, mesh.Release)

	r := &frame.Renderable{
		Name: cfg.Model,
		Mesh: mesh,
		Transform: transform.ModelTransformData{
			Translation: mgl32.Vec3(cfg.Position),
			Rotation: mgl32.Vec3{
				mgl32.DegToRad(cfg.Rotation[0]),
				mgl32.DegToRad(cfg.Rotation[1]),
				mgl32.DegToRad(cfg.Rotation[2]),
			},
			Scale: mgl32.Vec3(cfg.Scale),
		},
	}
	if cfg.Texture != "" {
		tex, err := resource.LoadTexture(ctx, cfg.Texture, true, log.Named("texture"))
		if err != nil {
			return release, err
		}
		releases = append(releases, tex.Release)
		r.Texture = tex
	}
	scene.Add(r)
	return release, nil
}

// loadOverlay builds the text overlay. It is nil when no text is configured,
// so the font is only required when it is used.
func loadOverlay(ctx gfx.Context, cfg config.Config, log *zap.Logger) (*frame.Overlay, func(), error) {
	var releases []func()
	release := func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}
	if cfg.Overlay.Text == "" {
		return nil, release, nil
	}

	program, err := shader.Load(ctx, shader.Sources{Vertex: cfg.UIShaders.Vertex, Fragment: cfg.UIShaders.Fragment}, log.Named("shader"))
	if err != nil {
		return nil, release, err
	}
	program.Setup()
	releases = append(releases, program.Release)

	extractor, err := text.NewGlyphExtractor(cfg.Font, float64(cfg.Overlay.Scale))
	if err != nil {
		return nil, release, err
	}
	releases = append(releases, func() { _ = extractor.Close() })

	component, err := text.NewTextComponent(ctx, extractor, log.Named("text"))
	if err != nil {
		return nil, release, err
	}
	releases = append(releases, component.Release)

	c := cfg.Overlay.Color
	component.SetColor(color.RGBA{
		R: uint8(c[0] * 255),
		G: uint8(c[1] * 255),
		B: uint8(c[2] * 255),
		A: uint8(c[3] * 255),
	})
	component.SetText(cfg.Overlay.Text)
	// Pen position is the baseline in pixels from the bottom left.
	component.Position = mgl32.Vec2{cfg.Overlay.Position[0], cfg.Overlay.Position[1] + extractor.LineHeight()}

	overlay := &frame.Overlay{Program: program}
	overlay.Add(component)
	return overlay, release, nil
}
