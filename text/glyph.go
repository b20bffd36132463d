package text

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/icyseptember2237/nengine/resource"
)

const DefaultScale = 16

// Glyph is one rasterized rune. Bounds are relative to the pen position
// with y growing downwards, as font metrics are.
type Glyph struct {
	Rune    rune
	Image   *resource.Image
	Bounds  image.Rectangle
	Advance float32
}

func (g *Glyph) Empty() bool {
	return g.Bounds.Empty()
}

type GlyphExtractor struct {
	Source string
	Scale  float64

	face font.Face
}

// NewGlyphExtractor loads a TrueType or OpenType font file.
func NewGlyphExtractor(path string, scale float64) (*GlyphExtractor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	g, err := ParseGlyphExtractor(data, scale)
	if err != nil {
		return nil, fmt.Errorf("font %q: %w", path, err)
	}
	g.Source = path
	return g, nil
}

func ParseGlyphExtractor(data []byte, scale float64) (*GlyphExtractor, error) {
	if scale <= 0 {
		scale = DefaultScale
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    scale,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, err
	}
	return &GlyphExtractor{Scale: scale, face: face}, nil
}

// Extract rasterizes r in c. Each pixel takes the color of c and the glyph
// coverage as alpha.
func (g *GlyphExtractor) Extract(r rune, c color.RGBA) (*Glyph, error) {
	dr, mask, maskp, advance, ok := g.face.Glyph(fixed.Point26_6{}, r)
	if !ok {
		return nil, fmt.Errorf("font has no glyph for %q", r)
	}
	glyph := &Glyph{
		Rune:    r,
		Bounds:  dr,
		Advance: float32(advance) / 64,
		Image:   &resource.Image{Width: dr.Dx(), Height: dr.Dy(), HasAlpha: true},
	}
	glyph.Image.Pix = make([]byte, 0, dr.Dx()*dr.Dy()*4)
	for y := 0; y < dr.Dy(); y++ {
		for x := 0; x < dr.Dx(); x++ {
			_, _, _, a := mask.At(maskp.X+x, maskp.Y+y).RGBA()
			glyph.Image.Pix = append(glyph.Image.Pix, c.R, c.G, c.B, uint8(a>>8))
		}
	}
	return glyph, nil
}

// LineHeight is the distance between two baselines.
func (g *GlyphExtractor) LineHeight() float32 {
	return float32(g.face.Metrics().Height) / 64
}

func (g *GlyphExtractor) Close() error {
	return g.face.Close()
}
