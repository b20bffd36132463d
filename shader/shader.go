package shader

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/icyseptember2237/nengine/gfx"
)

// ReadError reports a shader source file that could not be read.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("could not read shader file %q: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Sources are the file paths of a vertex and fragment shader pair.
type Sources struct {
	Vertex   string
	Fragment string
}

type Program struct {
	ID uint32

	ctx       gfx.Context
	logger    *zap.Logger
	sources   Sources
	vertex    string
	fragment  string
	locations map[string]int32
}

// Load reads both shader files. Nothing is compiled until Setup.
func Load(ctx gfx.Context, sources Sources, logger *zap.Logger) (*Program, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	vertex, err := os.ReadFile(sources.Vertex)
	if err != nil {
		return nil, &ReadError{Path: sources.Vertex, Err: err}
	}
	fragment, err := os.ReadFile(sources.Fragment)
	if err != nil {
		return nil, &ReadError{Path: sources.Fragment, Err: err}
	}
	return &Program{
		ctx:       ctx,
		logger:    logger,
		sources:   sources,
		vertex:    string(vertex),
		fragment:  string(fragment),
		locations: make(map[string]int32),
	}, nil
}

// Setup compiles both units and links them. Compile and link failures are
// logged and leave a program that may not be usable; the units are deleted
// either way.
func (p *Program) Setup() {
	vs := p.compile(gfx.VertexShader, "vertex", p.vertex, p.sources.Vertex)
	fs := p.compile(gfx.FragmentShader, "fragment", p.fragment, p.sources.Fragment)

	program := p.ctx.CreateProgram()
	p.ctx.AttachShader(program, vs)
	p.ctx.AttachShader(program, fs)
	p.ctx.LinkProgram(program)
	if ok, log := p.ctx.ProgramStatus(program); !ok {
		p.logger.Error("shader program linking failed",
			zap.String("vertex", p.sources.Vertex),
			zap.String("fragment", p.sources.Fragment),
			zap.String("log", log))
	} else {
		p.logger.Info("shader program compiled and linked", zap.Uint32("program", program))
	}

	p.ID = program
	p.locations = make(map[string]int32)
	p.ctx.DeleteShader(vs)
	p.ctx.DeleteShader(fs)
}

func (p *Program) compile(kind gfx.Enum, stage, source, path string) uint32 {
	shader := p.ctx.CreateShader(kind)
	p.ctx.ShaderSource(shader, source)
	p.ctx.CompileShader(shader)
	if ok, log := p.ctx.ShaderStatus(shader); !ok {
		p.logger.Error("shader compilation failed",
			zap.String("stage", stage),
			zap.String("dir", filepath.Dir(path)),
			zap.String("log", log))
	} else {
		p.logger.Info("shader compiled", zap.String("stage", stage))
	}
	return shader
}

func (p *Program) Use() {
	p.ctx.UseProgram(p.ID)
}

// Location resolves name once per link. It is -1 for names the program does
// not use.
func (p *Program) Location(name string) int32 {
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	loc := p.ctx.GetUniformLocation(p.ID, name)
	p.locations[name] = loc
	return loc
}

// The setters below do nothing when the uniform is not in the program.

func (p *Program) SetMatrix4(name string, m mgl32.Mat4) {
	if loc := p.Location(name); loc != -1 {
		p.ctx.UniformMatrix4fv(loc, m)
	}
}

func (p *Program) SetVec3(name string, v mgl32.Vec3) {
	if loc := p.Location(name); loc != -1 {
		p.ctx.Uniform3f(loc, v[0], v[1], v[2])
	}
}

func (p *Program) SetVec4(name string, v mgl32.Vec4) {
	if loc := p.Location(name); loc != -1 {
		p.ctx.Uniform4f(loc, v[0], v[1], v[2], v[3])
	}
}

func (p *Program) SetInt(name string, value int32) {
	if loc := p.Location(name); loc != -1 {
		p.ctx.Uniform1i(loc, value)
	}
}

func (p *Program) SetBool(name string, value bool) {
	var i int32
	if value {
		i = 1
	}
	p.SetInt(name, i)
}

func (p *Program) Release() {
	if p.ID != 0 {
		p.ctx.DeleteProgram(p.ID)
		p.ID = 0
	}
}
