package config

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/yuin/gluamapper"
	lua "github.com/yuin/gopher-lua"
)

type Window struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
}

type ShaderPair struct {
	Vertex   string
	Fragment string
}

type Camera struct {
	// Fov is the vertical field of view in degrees.
	Fov    float32
	Near   float32
	Far    float32
	Eye    [3]float32
	Target [3]float32
	Up     [3]float32
}

// FovRadians is the field of view the projection expects.
func (c Camera) FovRadians() float32 {
	return mgl32.DegToRad(c.Fov)
}

// Scene is the optional model drawn by the 3D pass.
type Scene struct {
	Model    string
	Texture  string
	Position [3]float32
	// Rotation is the Euler XYZ angles in degrees.
	Rotation [3]float32
	Scale    [3]float32
}

// Overlay is the optional text drawn by the orthographic pass.
type Overlay struct {
	Text     string
	Scale    float32
	Position [2]float32
	Color    [4]float32
}

type Sound struct {
	Source      string
	Volume      float64
	PlayOnStart bool
}

type Log struct {
	Level  string
	File   string
	Dedupe bool
}

type Config struct {
	Window             Window
	Scripts            []string
	RetryFailedScripts bool
	Shaders            ShaderPair
	UIShaders          ShaderPair
	Font               string
	Camera             Camera
	Scene              Scene
	Overlay            Overlay
	Sounds             []Sound
	Mute               bool
	Log                Log
}

// Default is the configuration the engine runs with when nothing overrides it.
func Default() Config {
	return Config{
		Window: Window{
			Title:  "nengine",
			Width:  1024,
			Height: 600,
		},
		Scripts:            []string{"examples/script/test.lua"},
		RetryFailedScripts: true,
		Shaders: ShaderPair{
			Vertex:   "resources/shaders/vertex.glsl",
			Fragment: "resources/shaders/fragment.glsl",
		},
		UIShaders: ShaderPair{
			Vertex:   "resources/shaders/ui/text/vertex.glsl",
			Fragment: "resources/shaders/ui/text/fragment.glsl",
		},
		Font: "resources/fonts/default.ttf",
		Camera: Camera{
			Fov:    45,
			Near:   0.1,
			Far:    1000,
			Eye:    [3]float32{0, 0, 3},
			Target: [3]float32{0, 0, 0},
			Up:     [3]float32{0, 1, 0},
		},
		Scene: Scene{
			Scale: [3]float32{1, 1, 1},
		},
		Overlay: Overlay{
			Scale:    16,
			Position: [2]float32{10, 10},
			Color:    [4]float32{1, 1, 1, 1},
		},
		Log: Log{
			Level:  "info",
			Dedupe: true,
		},
	}
}

// Validate reports settings the engine cannot start with.
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("invalid camera distance near=%g far=%g", c.Camera.Near, c.Camera.Far)
	}
	if c.Camera.Fov <= 0 || c.Camera.Fov >= 180 {
		return fmt.Errorf("invalid field of view %g", c.Camera.Fov)
	}
	if c.Shaders.Vertex == "" || c.Shaders.Fragment == "" {
		return errors.New("shader paths are required")
	}
	return nil
}

// Load executes the Lua file at path, which must return a table, and maps
// that table over cfg. Keys are snake_case versions of the field names;
// keys the file leaves out keep their current value.
//
//	return {
//	  window = { title = "demo", width = 800 },
//	  scripts = { "main.lua", "hud.js" },
//	}
func Load(path string, cfg *Config) error {
	L := lua.NewState()
	defer L.Close()

	if err := L.DoFile(path); err != nil {
		return fmt.Errorf("failed to run config %q: %w", path, err)
	}
	tbl, ok := L.Get(-1).(*lua.LTable)
	if !ok {
		return fmt.Errorf("config %q must return a table, got %s", path, L.Get(-1).Type())
	}

	// Lists replace the default rather than merging into it.
	if tbl.RawGetString("scripts") != lua.LNil {
		cfg.Scripts = nil
	}
	if tbl.RawGetString("sounds") != lua.LNil {
		cfg.Sounds = nil
	}

	mapper := gluamapper.NewMapper(gluamapper.Option{NameFunc: gluamapper.ToUpperCamelCase})
	if err := mapper.Map(tbl, cfg); err != nil {
		return fmt.Errorf("invalid config %q: %w", path, err)
	}
	return nil
}
