// Package glcore implements gfx.Context on the OpenGL 4.1 core profile.
// Every method must be called on the thread that owns the current context.
package glcore

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/icyseptember2237/nengine/gfx"
)

type Context struct{}

// Init loads the GL function pointers for the current context.
func Init() (*Context, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("init opengl: %w", err)
	}
	return &Context{}, nil
}

// Version is the GL_VERSION string of the current context.
func (c *Context) Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

func (c *Context) ClearColor(red, green, blue, alpha float32) {
	gl.ClearColor(red, green, blue, alpha)
}

func (c *Context) Clear(mask gfx.Bitfield) { gl.Clear(mask) }
func (c *Context) Enable(capability gfx.Enum) { gl.Enable(capability) }
func (c *Context) BlendFunc(sfactor, dfactor gfx.Enum) { gl.BlendFunc(sfactor, dfactor) }
func (c *Context) Viewport(x, y, width, height int32) { gl.Viewport(x, y, width, height) }
func (c *Context) PixelStorei(pname gfx.Enum, param int32) { gl.PixelStorei(pname, param) }
func (c *Context) GetError() gfx.Enum { return gl.GetError() }
func (c *Context) CreateShader(kind gfx.Enum) uint32 { return gl.CreateShader(kind) }
func (c *Context) CompileShader(shader uint32) { gl.CompileShader(shader) }
func (c *Context) DeleteShader(shader uint32) { gl.DeleteShader(shader) }
func (c *Context) CreateProgram() uint32 { return gl.CreateProgram() }
func (c *Context) AttachShader(program, shader uint32) { gl.AttachShader(program, shader) }
func (c *Context) LinkProgram(program uint32) { gl.LinkProgram(program) }
func (c *Context) UseProgram(program uint32) { gl.UseProgram(program) }
func (c *Context) DeleteProgram(program uint32) { gl.DeleteProgram(program) }
func (c *Context) Uniform1i(location int32, value int32) { gl.Uniform1i(location, value) }
func (c *Context) ActiveTexture(unit gfx.Enum) { gl.ActiveTexture(unit) }
func (c *Context) BindTexture(target gfx.Enum, tex uint32) { gl.BindTexture(target, tex) }
func (c *Context) GenerateMipmap(target gfx.Enum) { gl.GenerateMipmap(target) }
func (c *Context) BindSampler(unit uint32, sampler uint32) { gl.BindSampler(unit, sampler) }
func (c *Context) BindBuffer(target gfx.Enum, buf uint32) { gl.BindBuffer(target, buf) }
func (c *Context) BindVertexArray(array uint32) { gl.BindVertexArray(array) }
func (c *Context) EnableVertexAttribArray(index uint32) { gl.EnableVertexAttribArray(index) }
func (c *Context) DrawArrays(mode gfx.Enum, first, n int32) { gl.DrawArrays(mode, first, n) }

func (c *Context) ShaderSource(shader uint32, source string) {
	csources, free := gl.Strs(source + "\x00")
	defer free()
	gl.ShaderSource(shader, 1, csources, nil)
}

func (c *Context) ShaderStatus(shader uint32) (bool, string) {
	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.TRUE {
		return true, ""
	}
	var logLength int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
	return false, strings.TrimRight(log, "\x00")
}

func (c *Context) ProgramStatus(program uint32) (bool, string) {
	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.TRUE {
		return true, ""
	}
	var logLength int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
	return false, strings.TrimRight(log, "\x00")
}

func (c *Context) GetUniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (c *Context) UniformMatrix4fv(location int32, matrix mgl32.Mat4) {
	gl.UniformMatrix4fv(location, 1, false, &matrix[0])
}

func (c *Context) Uniform3f(location int32, x, y, z float32) {
	gl.Uniform3f(location, x, y, z)
}

func (c *Context) Uniform4f(location int32, x, y, z, w float32) {
	gl.Uniform4f(location, x, y, z, w)
}

func (c *Context) GenTexture() uint32 {
	var id uint32
	gl.GenTextures(1, &id)
	return id
}

func (c *Context) TexImage2D(target gfx.Enum, internalFormat gfx.Enum, width, height int32, format gfx.Enum, pixels []byte) {
	var ptr unsafe.Pointer
	if len(pixels) > 0 {
		ptr = gl.Ptr(pixels)
	}
	gl.TexImage2D(target, 0, int32(internalFormat), width, height, 0, format, gl.UNSIGNED_BYTE, ptr)
}

func (c *Context) DeleteTexture(texture uint32) {
	gl.DeleteTextures(1, &texture)
}

func (c *Context) GenSampler() uint32 {
	var id uint32
	gl.GenSamplers(1, &id)
	return id
}

func (c *Context) SamplerParameteri(sampler uint32, pname gfx.Enum, param int32) {
	gl.SamplerParameteri(sampler, pname, param)
}

func (c *Context) DeleteSampler(sampler uint32) {
	gl.DeleteSamplers(1, &sampler)
}

func (c *Context) GenBuffer() uint32 {
	var id uint32
	gl.GenBuffers(1, &id)
	return id
}

func (c *Context) BufferFloat32(target gfx.Enum, data []float32, usage gfx.Enum) {
	if len(data) == 0 {
		gl.BufferData(target, 0, nil, usage)
		return
	}
	gl.BufferData(target, len(data)*4, gl.Ptr(data), usage)
}

func (c *Context) BufferUint32(target gfx.Enum, data []uint32, usage gfx.Enum) {
	if len(data) == 0 {
		gl.BufferData(target, 0, nil, usage)
		return
	}
	gl.BufferData(target, len(data)*4, gl.Ptr(data), usage)
}

func (c *Context) DeleteBuffer(buffer uint32) {
	gl.DeleteBuffers(1, &buffer)
}

func (c *Context) GenVertexArray() uint32 {
	var id uint32
	gl.GenVertexArrays(1, &id)
	return id
}

func (c *Context) DeleteVertexArray(array uint32) {
	gl.DeleteVertexArrays(1, &array)
}

func (c *Context) VertexAttribPointer(index uint32, size int32, stride int32, offset int) {
	gl.VertexAttribPointerWithOffset(index, size, gl.FLOAT, false, stride, uintptr(offset))
}

func (c *Context) DrawElements(mode gfx.Enum, count int32) {
	gl.DrawElements(mode, count, gl.UNSIGNED_INT, nil)
}

var _ gfx.Context = (*Context)(nil)
