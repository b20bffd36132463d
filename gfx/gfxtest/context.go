// Package gfxtest provides a gfx.Context that records calls instead of
// drawing.
package gfxtest

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/icyseptember2237/nengine/gfx"
)

type Texture struct {
	Target         gfx.Enum
	InternalFormat gfx.Enum
	Format         gfx.Enum
	Width, Height  int32
	Pixels         []byte
	Mipmapped      bool
}

// Context hands out increasing ids and resolves uniforms from Uniforms. A
// name missing from Uniforms resolves to -1.
type Context struct {
	mu sync.Mutex

	Calls    []string
	Uniforms map[string]int32
	Matrices map[int32]mgl32.Mat4
	Ints     map[int32]int32
	Vec3s    map[int32]mgl32.Vec3
	Vec4s    map[int32]mgl32.Vec4
	Textures map[uint32]*Texture
	Samplers map[uint32]map[gfx.Enum]int32
	Floats   map[uint32][]float32
	Indices  map[uint32][]uint32
	Deleted  []string

	// Errors are returned by GetError in order, then NoError.
	Errors []gfx.Enum
	// CompileFails makes ShaderStatus fail for shaders of these kinds.
	CompileFails map[gfx.Enum]string
	LinkFails    string
	// ZeroIDs makes the named generator return 0, as a failed allocation.
	ZeroIDs map[string]bool

	nextID       uint32
	shaderKinds  map[uint32]gfx.Enum
	boundTexture uint32
	boundBuffer  map[gfx.Enum]uint32
}

func New() *Context {
	return &Context{
		Uniforms:     map[string]int32{},
		Matrices:     map[int32]mgl32.Mat4{},
		Ints:         map[int32]int32{},
		Vec3s:        map[int32]mgl32.Vec3{},
		Vec4s:        map[int32]mgl32.Vec4{},
		Textures:     map[uint32]*Texture{},
		Samplers:     map[uint32]map[gfx.Enum]int32{},
		Floats:       map[uint32][]float32{},
		Indices:      map[uint32][]uint32{},
		CompileFails: map[gfx.Enum]string{},
		ZeroIDs:      map[string]bool{},
		shaderKinds:  map[uint32]gfx.Enum{},
		boundBuffer:  map[gfx.Enum]uint32{},
	}
}

// WithUniforms makes each name resolve to its index.
func (c *Context) WithUniforms(names ...string) *Context {
	for i, name := range names {
		c.Uniforms[name] = int32(i)
	}
	return c
}

func (c *Context) record(format string, args ...interface{}) {
	c.Calls = append(c.Calls, fmt.Sprintf(format, args...))
}

func (c *Context) id(kind string) uint32 {
	c.record("Gen%s", kind)
	if c.ZeroIDs[kind] {
		return 0
	}
	c.nextID++
	return c.nextID
}

// Named returns the recorded calls whose name starts with prefix.
func (c *Context) Named(prefix string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, call := range c.Calls {
		if strings.HasPrefix(call, prefix) {
			out = append(out, call)
		}
	}
	return out
}

// Reset forgets recorded calls but keeps resources.
func (c *Context) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls = nil
}

func (c *Context) ClearColor(red, green, blue, alpha float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("ClearColor(%g, %g, %g, %g)", red, green, blue, alpha)
}

func (c *Context) Clear(mask gfx.Bitfield) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("Clear(0x%X)", mask)
}

func (c *Context) Enable(capability gfx.Enum) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("Enable(0x%X)", capability)
}

func (c *Context) BlendFunc(sfactor, dfactor gfx.Enum) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("BlendFunc(0x%X, 0x%X)", sfactor, dfactor)
}

func (c *Context) Viewport(x, y, width, height int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("Viewport(%d, %d, %d, %d)", x, y, width, height)
}

func (c *Context) PixelStorei(pname gfx.Enum, param int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("PixelStorei(0x%X, %d)", pname, param)
}

func (c *Context) GetError() gfx.Enum {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.Errors) == 0 {
		return gfx.NoError
	}
	code := c.Errors[0]
	c.Errors = c.Errors[1:]
	return code
}

func (c *Context) CreateShader(kind gfx.Enum) uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.id("Shader")
	c.shaderKinds[id] = kind
	return id
}

func (c *Context) ShaderSource(shader uint32, source string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("ShaderSource(%d, %q)", shader, source)
}

func (c *Context) CompileShader(shader uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("CompileShader(%d)", shader)
}

func (c *Context) ShaderStatus(shader uint32) (bool, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if log, ok := c.CompileFails[c.shaderKinds[shader]]; ok {
		return false, log
	}
	return true, ""
}

func (c *Context) DeleteShader(shader uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("DeleteShader(%d)", shader)
	c.Deleted = append(c.Deleted, fmt.Sprintf("shader %d", shader))
}

func (c *Context) CreateProgram() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id("Program")
}

func (c *Context) AttachShader(program, shader uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("AttachShader(%d, %d)", program, shader)
}

func (c *Context) LinkProgram(program uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("LinkProgram(%d)", program)
}

func (c *Context) ProgramStatus(program uint32) (bool, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.LinkFails != "" {
		return false, c.LinkFails
	}
	return true, ""
}

func (c *Context) UseProgram(program uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("UseProgram(%d)", program)
}

func (c *Context) DeleteProgram(program uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("DeleteProgram(%d)", program)
	c.Deleted = append(c.Deleted, fmt.Sprintf("program %d", program))
}

func (c *Context) GetUniformLocation(program uint32, name string) int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("GetUniformLocation(%d, %s)", program, name)
	if loc, ok := c.Uniforms[name]; ok {
		return loc
	}
	return -1
}

func (c *Context) UniformMatrix4fv(location int32, matrix mgl32.Mat4) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("UniformMatrix4fv(%d)", location)
	c.Matrices[location] = matrix
}

func (c *Context) Uniform3f(location int32, x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("Uniform3f(%d, %g, %g, %g)", location, x, y, z)
	c.Vec3s[location] = mgl32.Vec3{x, y, z}
}

func (c *Context) Uniform4f(location int32, x, y, z, w float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("Uniform4f(%d, %g, %g, %g, %g)", location, x, y, z, w)
	c.Vec4s[location] = mgl32.Vec4{x, y, z, w}
}

func (c *Context) Uniform1i(location int32, value int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("Uniform1i(%d, %d)", location, value)
	c.Ints[location] = value
}

func (c *Context) GenTexture() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id("Texture")
}

func (c *Context) ActiveTexture(unit gfx.Enum) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("ActiveTexture(%d)", unit-gfx.Texture0)
}

func (c *Context) BindTexture(target gfx.Enum, texture uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("BindTexture(%d)", texture)
	c.boundTexture = texture
}

func (c *Context) TexImage2D(target gfx.Enum, internalFormat gfx.Enum, width, height int32, format gfx.Enum, pixels []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("TexImage2D(%dx%d)", width, height)
	c.Textures[c.boundTexture] = &Texture{
		Target:         target,
		InternalFormat: internalFormat,
		Format:         format,
		Width:          width,
		Height:         height,
		Pixels:         append([]byte(nil), pixels...),
	}
}

func (c *Context) GenerateMipmap(target gfx.Enum) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("GenerateMipmap")
	if tex, ok := c.Textures[c.boundTexture]; ok {
		tex.Mipmapped = true
	}
}

func (c *Context) DeleteTexture(texture uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("DeleteTexture(%d)", texture)
	c.Deleted = append(c.Deleted, fmt.Sprintf("texture %d", texture))
}

func (c *Context) GenSampler() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.id("Sampler")
	if id != 0 {
		c.Samplers[id] = map[gfx.Enum]int32{}
	}
	return id
}

func (c *Context) SamplerParameteri(sampler uint32, pname gfx.Enum, param int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("SamplerParameteri(%d, 0x%X, 0x%X)", sampler, pname, param)
	if params, ok := c.Samplers[sampler]; ok {
		params[pname] = param
	}
}

func (c *Context) BindSampler(unit uint32, sampler uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("BindSampler(%d, %d)", unit, sampler)
}

func (c *Context) DeleteSampler(sampler uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("DeleteSampler(%d)", sampler)
	c.Deleted = append(c.Deleted, fmt.Sprintf("sampler %d", sampler))
}

func (c *Context) GenBuffer() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id("Buffer")
}

func (c *Context) BindBuffer(target gfx.Enum, buffer uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("BindBuffer(0x%X, %d)", target, buffer)
	c.boundBuffer[target] = buffer
}

func (c *Context) BufferFloat32(target gfx.Enum, data []float32, usage gfx.Enum) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("BufferFloat32(%d)", len(data))
	c.Floats[c.boundBuffer[target]] = append([]float32(nil), data...)
}

func (c *Context) BufferUint32(target gfx.Enum, data []uint32, usage gfx.Enum) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("BufferUint32(%d)", len(data))
	c.Indices[c.boundBuffer[target]] = append([]uint32(nil), data...)
}

func (c *Context) DeleteBuffer(buffer uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("DeleteBuffer(%d)", buffer)
	c.Deleted = append(c.Deleted, fmt.Sprintf("buffer %d", buffer))
}

func (c *Context) GenVertexArray() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id("VertexArray")
}

func (c *Context) BindVertexArray(array uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("BindVertexArray(%d)", array)
}

func (c *Context) DeleteVertexArray(array uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("DeleteVertexArray(%d)", array)
	c.Deleted = append(c.Deleted, fmt.Sprintf("vertex array %d", array))
}

func (c *Context) EnableVertexAttribArray(index uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("EnableVertexAttribArray(%d)", index)
}

func (c *Context) VertexAttribPointer(index uint32, size int32, stride int32, offset int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("VertexAttribPointer(%d, %d, %d, %d)", index, size, stride, offset)
}

func (c *Context) DrawElements(mode gfx.Enum, count int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("DrawElements(%d, %d)", mode, count)
}

func (c *Context) DrawArrays(mode gfx.Enum, first, count int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("DrawArrays(%d, %d, %d)", mode, first, count)
}

var _ gfx.Context = (*Context)(nil)
