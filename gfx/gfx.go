// Package gfx is the part of OpenGL the engine draws with. Keeping it behind
// an interface lets the render path run against a recording context in
// tests; glcore provides the real one.
package gfx

import "github.com/go-gl/mathgl/mgl32"

type Context interface {
	ClearColor(red, green, blue, alpha float32)
	Clear(mask Bitfield)
	Enable(capability Enum)
	BlendFunc(sfactor, dfactor Enum)
	Viewport(x, y, width, height int32)
	PixelStorei(pname Enum, param int32)
	GetError() Enum

	CreateShader(kind Enum) uint32
	ShaderSource(shader uint32, source string)
	CompileShader(shader uint32)
	// ShaderStatus reports the compile status and the info log.
	ShaderStatus(shader uint32) (bool, string)
	DeleteShader(shader uint32)

	CreateProgram() uint32
	AttachShader(program, shader uint32)
	LinkProgram(program uint32)
	// ProgramStatus reports the link status and the info log.
	ProgramStatus(program uint32) (bool, string)
	UseProgram(program uint32)
	DeleteProgram(program uint32)

	// GetUniformLocation returns -1 when name is not an active uniform.
	GetUniformLocation(program uint32, name string) int32
	UniformMatrix4fv(location int32, matrix mgl32.Mat4)
	Uniform3f(location int32, x, y, z float32)
	Uniform4f(location int32, x, y, z, w float32)
	Uniform1i(location int32, value int32)

	GenTexture() uint32
	ActiveTexture(unit Enum)
	BindTexture(target Enum, texture uint32)
	TexImage2D(target Enum, internalFormat Enum, width, height int32, format Enum, pixels []byte)
	GenerateMipmap(target Enum)
	DeleteTexture(texture uint32)

	GenSampler() uint32
	SamplerParameteri(sampler uint32, pname Enum, param int32)
	BindSampler(unit uint32, sampler uint32)
	DeleteSampler(sampler uint32)

	GenBuffer() uint32
	BindBuffer(target Enum, buffer uint32)
	BufferFloat32(target Enum, data []float32, usage Enum)
	BufferUint32(target Enum, data []uint32, usage Enum)
	DeleteBuffer(buffer uint32)

	GenVertexArray() uint32
	BindVertexArray(array uint32)
	DeleteVertexArray(array uint32)
	EnableVertexAttribArray(index uint32)
	// VertexAttribPointer describes float attributes; stride and offset are
	// in bytes.
	VertexAttribPointer(index uint32, size int32, stride int32, offset int)

	DrawElements(mode Enum, count int32)
	DrawArrays(mode Enum, first, count int32)
}
