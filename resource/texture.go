package resource

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/icyseptember2237/nengine/gfx"
)

// ErrAllocation is returned when the GL driver hands back a zero object id.
var ErrAllocation = errors.New("gpu resource allocation failed")

// Profile is the sampler state of a texture.
type Profile struct {
	Name      string
	Wrap      gfx.Enum
	MinFilter gfx.Enum
	MagFilter gfx.Enum
}

var (
	// SceneProfile tiles and trilinearly filters mesh textures.
	SceneProfile = Profile{Name: "scene", Wrap: gfx.Repeat, MinFilter: gfx.LinearMipmapLinear, MagFilter: gfx.Linear}
	// BitmapProfile clamps glyphs and other screen-space bitmaps.
	BitmapProfile = Profile{Name: "bitmap", Wrap: gfx.ClampToEdge, MinFilter: gfx.Linear, MagFilter: gfx.Linear}
)

const (
	DefaultSampler  = "texture1"
	HasAlphaUniform = "has_alpha"
)

// IntUniforms is the part of a shader program a texture writes to.
type IntUniforms interface {
	SetInt(name string, value int32)
	SetBool(name string, value bool)
}

type Texture struct {
	ID       uint32
	Sampler  uint32
	Width    int
	Height   int
	HasAlpha bool
	Source   string

	ctx     gfx.Context
	logger  *zap.Logger
	profile Profile
}

// LoadTexture decodes path and uploads it with the scene profile.
func LoadTexture(ctx gfx.Context, path string, flipV bool, logger *zap.Logger) (*Texture, error) {
	img, err := LoadImage(path, flipV)
	if err != nil {
		return nil, err
	}
	t, err := NewTexture(ctx, img, SceneProfile, logger)
	if err != nil {
		return nil, fmt.Errorf("texture %q: %w", path, err)
	}
	t.Source = path
	return t, nil
}

// NewTexture uploads img. Mipmaps are generated for every profile.
func NewTexture(ctx gfx.Context, img *Image, profile Profile, logger *zap.Logger) (*Texture, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Texture{
		Width:    img.Width,
		Height:   img.Height,
		HasAlpha: img.HasAlpha,
		ctx:      ctx,
		logger:   logger,
		profile:  profile,
	}

	t.ID = ctx.GenTexture()
	if t.ID == 0 {
		return nil, fmt.Errorf("texture id: %w", ErrAllocation)
	}
	t.Sampler = ctx.GenSampler()
	if t.Sampler == 0 {
		ctx.DeleteTexture(t.ID)
		return nil, fmt.Errorf("sampler id: %w", ErrAllocation)
	}
	ctx.SamplerParameteri(t.Sampler, gfx.TextureWrapS, int32(profile.Wrap))
	ctx.SamplerParameteri(t.Sampler, gfx.TextureWrapT, int32(profile.Wrap))
	ctx.SamplerParameteri(t.Sampler, gfx.TextureMinFilter, int32(profile.MinFilter))
	ctx.SamplerParameteri(t.Sampler, gfx.TextureMagFilter, int32(profile.MagFilter))

	internalFormat, format := gfx.RGB8, gfx.RGB
	if img.HasAlpha {
		internalFormat, format = gfx.RGBA8, gfx.RGBA
	}

	ctx.BindTexture(gfx.Texture2D, t.ID)
	ctx.PixelStorei(gfx.UnpackAlignment, 1)
	ctx.TexImage2D(gfx.Texture2D, internalFormat, int32(img.Width), int32(img.Height), format, img.Pix)
	ctx.GenerateMipmap(gfx.Texture2D)
	ctx.BindTexture(gfx.Texture2D, 0)
	t.checkError("upload")

	logger.Debug("texture uploaded",
		zap.Uint32("id", t.ID),
		zap.String("profile", profile.Name),
		zap.Bool("has_alpha", img.HasAlpha),
		zap.Int("width", img.Width),
		zap.Int("height", img.Height))
	return t, nil
}

// Apply binds the texture to unit and points samplerName and has_alpha at
// it. Uniforms the program does not use are skipped.
func (t *Texture) Apply(program IntUniforms, unit uint32, samplerName string) {
	if samplerName == "" {
		samplerName = DefaultSampler
	}
	program.SetInt(samplerName, int32(unit))
	program.SetBool(HasAlphaUniform, t.HasAlpha)

	t.ctx.ActiveTexture(gfx.Texture0 + unit)
	t.ctx.BindTexture(gfx.Texture2D, t.ID)
	t.ctx.BindSampler(unit, t.Sampler)
	t.checkError("apply")
}

func (t *Texture) Unapply(unit uint32) {
	t.ctx.ActiveTexture(gfx.Texture0 + unit)
	t.ctx.BindTexture(gfx.Texture2D, 0)
	t.ctx.BindSampler(unit, 0)
}

func (t *Texture) checkError(op string) {
	if code := t.ctx.GetError(); code != gfx.NoError {
		t.logger.Error("opengl error on texture",
			zap.String("op", op),
			zap.Uint32("id", t.ID),
			zap.Uint32("code", code),
			zap.String("reason", gfx.ErrorString(code)))
	}
}

func (t *Texture) Release() {
	if t.Sampler != 0 {
		t.ctx.DeleteSampler(t.Sampler)
		t.Sampler = 0
	}
	if t.ID != 0 {
		t.ctx.DeleteTexture(t.ID)
		t.ID = 0
	}
}
