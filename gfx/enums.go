package gfx

type Enum = uint32

type Bitfield = uint32

const (
	ColorBufferBit Bitfield = 0x00004000
	DepthBufferBit Bitfield = 0x00000100
)

const (
	NoError                     Enum = 0
	InvalidEnum                 Enum = 0x0500
	InvalidValue                Enum = 0x0501
	InvalidOperation            Enum = 0x0502
	StackOverflow               Enum = 0x0503
	StackUnderflow              Enum = 0x0504
	OutOfMemory                 Enum = 0x0505
	InvalidFramebufferOperation Enum = 0x0506
)

const (
	DepthTest        Enum = 0x0B71
	Blend            Enum = 0x0BE2
	SrcAlpha         Enum = 0x0302
	OneMinusSrcAlpha Enum = 0x0303
	UnpackAlignment  Enum = 0x0CF5
)

const (
	VertexShader   Enum = 0x8B31
	FragmentShader Enum = 0x8B30
)

const (
	Texture2D          Enum = 0x0DE1
	Texture0           Enum = 0x84C0
	TextureWrapS       Enum = 0x2802
	TextureWrapT       Enum = 0x2803
	TextureMinFilter   Enum = 0x2801
	TextureMagFilter   Enum = 0x2800
	Repeat             Enum = 0x2901
	ClampToEdge        Enum = 0x812F
	Linear             Enum = 0x2601
	LinearMipmapLinear Enum = 0x2703
	RGB                Enum = 0x1907
	RGBA               Enum = 0x1908
	RGB8               Enum = 0x8051
	RGBA8              Enum = 0x8058
)

const (
	ArrayBuffer        Enum = 0x8892
	ElementArrayBuffer Enum = 0x8893
	StaticDraw         Enum = 0x88E4
	Triangles          Enum = 0x0004
	TriangleStrip      Enum = 0x0005
)
