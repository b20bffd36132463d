package text

import (
	"image/color"
	"unicode"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/icyseptember2237/nengine/gfx"
	"github.com/icyseptember2237/nengine/resource"
)

// Program is what a text component needs from the overlay shader.
type Program interface {
	resource.IntUniforms
	SetMatrix4(name string, m mgl32.Mat4)
}

type cachedGlyph struct {
	glyph   *Glyph
	texture *resource.Texture
}

// TextComponent draws a line of text in screen space, one textured quad
// per rune. Glyph textures are cached per rune and reused between frames.
type TextComponent struct {
	// Position is the left end of the baseline in pixels.
	Position mgl32.Vec2

	text      string
	color     color.RGBA
	extractor *GlyphExtractor
	glyphs    map[rune]*cachedGlyph
	advances  map[rune]float32
	quad      *resource.Mesh
	ctx       gfx.Context
	logger    *zap.Logger
}

func NewTextComponent(ctx gfx.Context, extractor *GlyphExtractor, logger *zap.Logger) (*TextComponent, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	quad, err := resource.NewMesh(ctx, resource.UnitQuad())
	if err != nil {
		return nil, err
	}
	return &TextComponent{
		color:     color.RGBA{R: 255, G: 255, B: 255, A: 255},
		extractor: extractor,
		glyphs:    make(map[rune]*cachedGlyph),
		advances:  make(map[rune]float32),
		quad:      quad,
		ctx:       ctx,
		logger:    logger,
	}, nil
}

func (t *TextComponent) SetText(s string) {
	t.text = s
}

func (t *TextComponent) Text() string {
	return t.text
}

// SetColor changes the text color. Cached glyphs carry the old color, so
// they are released and rasterized again on the next draw.
func (t *TextComponent) SetColor(c color.RGBA) {
	if c == t.color {
		return
	}
	t.color = c
	t.releaseGlyphs()
}

func (t *TextComponent) CacheSize() int {
	return len(t.glyphs)
}

// Prepare rasterizes and uploads every rune of the text not cached yet.
// Whitespace only advances the pen and is never uploaded; its advance is
// measured once per rune.
func (t *TextComponent) Prepare() error {
	for _, r := range t.text {
		if unicode.IsSpace(r) {
			if _, ok := t.advances[r]; !ok {
				t.advances[r] = t.measure(r)
			}
			continue
		}
		if _, ok := t.glyphs[r]; ok {
			continue
		}
		glyph, err := t.extractor.Extract(r, t.color)
		if err != nil {
			return err
		}
		cached := &cachedGlyph{glyph: glyph}
		if !glyph.Empty() {
			img := *glyph.Image
			img.Pix = append([]byte(nil), glyph.Image.Pix...)
			img.FlipV()
			if cached.texture, err = resource.NewTexture(t.ctx, &img, resource.BitmapProfile, t.logger); err != nil {
				return err
			}
		}
		t.glyphs[r] = cached
	}
	return nil
}

// Draw issues one quad per visible rune with program already in use.
func (t *TextComponent) Draw(program Program) error {
	if err := t.Prepare(); err != nil {
		return err
	}
	pen := t.Position.X()
	for _, r := range t.text {
		cached, ok := t.glyphs[r]
		if !ok {
			pen += t.advances[r]
			continue
		}
		g := cached.glyph
		if cached.texture != nil {
			x := pen + float32(g.Bounds.Min.X)
			y := t.Position.Y() - float32(g.Bounds.Max.Y)
			model := mgl32.Translate3D(x, y, 0).Mul4(mgl32.Scale3D(float32(g.Bounds.Dx()), float32(g.Bounds.Dy()), 1))
			program.SetMatrix4("model", model)
			cached.texture.Apply(program, 0, "")
			t.quad.Draw()
			cached.texture.Unapply(0)
		}
		pen += g.Advance
	}
	return nil
}

func (t *TextComponent) measure(r rune) float32 {
	g, err := t.extractor.Extract(r, t.color)
	if err != nil {
		return 0
	}
	return g.Advance
}

func (t *TextComponent) releaseGlyphs() {
	for r, cached := range t.glyphs {
		if cached.texture != nil {
			cached.texture.Release()
		}
		delete(t.glyphs, r)
	}
}

func (t *TextComponent) Release() {
	t.releaseGlyphs()
	t.quad.Release()
}
