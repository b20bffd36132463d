package text

import (
	"image/color"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/icyseptember2237/nengine/gfx/gfxtest"
)

type programSpy struct {
	ints   map[string]int32
	models []mgl32.Mat4
}

func newProgramSpy() *programSpy {
	return &programSpy{ints: map[string]int32{}}
}

func (p *programSpy) SetInt(name string, value int32) { p.ints[name] = value }

func (p *programSpy) SetBool(name string, value bool) {
	p.ints[name] = 0
	if value {
		p.ints[name] = 1
	}
}

func (p *programSpy) SetMatrix4(name string, m mgl32.Mat4) {
	if name == "model" {
		p.models = append(p.models, m)
	}
}

func extractor(t *testing.T) *GlyphExtractor {
	t.Helper()
	g, err := ParseGlyphExtractor(goregular.TTF, 24)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { g.Close() })
	return g
}

func TestExtractUsesColorAndCoverage(t *testing.T) {
	g := extractor(t)
	red := color.RGBA{R: 255, A: 255}
	glyph, err := g.Extract('A', red)
	if err != nil {
		t.Fatal(err)
	}
	if glyph.Empty() || glyph.Advance <= 0 {
		t.Fatalf("glyph %+v", glyph)
	}
	img := glyph.Image
	if !img.HasAlpha || len(img.Pix) != img.Width*img.Height*4 {
		t.Fatalf("image %dx%d with %d bytes", img.Width, img.Height, len(img.Pix))
	}
	var covered, empty int
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 255 || img.Pix[i+1] != 0 || img.Pix[i+2] != 0 {
			t.Fatalf("pixel %d has color %v", i/4, img.Pix[i:i+3])
		}
		if img.Pix[i+3] == 0 {
			empty++
		} else {
			covered++
		}
	}
	if covered == 0 || empty == 0 {
		t.Errorf("coverage looks wrong: %d covered, %d empty", covered, empty)
	}
}

func TestExtractSpaceIsEmpty(t *testing.T) {
	glyph, err := extractor(t).Extract(' ', color.RGBA{A: 255})
	if err != nil {
		t.Fatal(err)
	}
	if !glyph.Empty() || glyph.Advance <= 0 {
		t.Errorf("space glyph %+v", glyph)
	}
}

func TestNewGlyphExtractorMissingFont(t *testing.T) {
	if _, err := NewGlyphExtractor(filepath.Join(t.TempDir(), "default.ttf"), 16); err == nil {
		t.Fatal("missing font loaded")
	}
}

func TestTextComponentCachesPerRune(t *testing.T) {
	ctx := gfxtest.New()
	tc, err := NewTextComponent(ctx, extractor(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	tc.SetText("hello hello")
	tc.Position = mgl32.Vec2{10, 20}

	p := newProgramSpy()
	for i := 0; i < 2; i++ {
		if err := tc.Draw(p); err != nil {
			t.Fatal(err)
		}
	}
	if tc.CacheSize() != 4 {
		t.Errorf("cached %d glyphs, want 4", tc.CacheSize())
	}
	if got := ctx.Named("GenTexture"); len(got) != 4 {
		t.Errorf("uploaded %d glyph textures, want 4", len(got))
	}
	if got := ctx.Named("DrawElements"); len(got) != 20 {
		t.Errorf("drew %d quads, want 20", len(got))
	}
	if len(p.models) != 20 {
		t.Fatalf("model uploads %d", len(p.models))
	}
	if first, second := p.models[0].Col(3).X(), p.models[1].Col(3).X(); second <= first {
		t.Errorf("pen did not advance: %v then %v", first, second)
	}
	if p.ints["has_alpha"] != 1 {
		t.Error("glyphs must be drawn with alpha")
	}
}

func TestTextComponentMeasuresWhitespaceOnce(t *testing.T) {
	tc, err := NewTextComponent(gfxtest.New(), extractor(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	tc.SetText("a b\tc d")
	p := newProgramSpy()
	for i := 0; i < 3; i++ {
		if err := tc.Draw(p); err != nil {
			t.Fatal(err)
		}
	}
	if len(tc.advances) != 2 {
		t.Errorf("measured %d whitespace runes, want 2", len(tc.advances))
	}
	if tc.advances[' '] <= 0 {
		t.Errorf("space advance %v", tc.advances[' '])
	}
	if first, second := p.models[0].Col(3).X(), p.models[1].Col(3).X(); second-first < tc.advances[' '] {
		t.Errorf("space did not move the pen: %v then %v", first, second)
	}

	tc.SetColor(color.RGBA{G: 200, A: 255})
	if len(tc.advances) != 2 {
		t.Error("advances do not depend on color and must survive a color change")
	}
}

func TestTextComponentUnbindsEachGlyph(t *testing.T) {
	ctx := gfxtest.New()
	tc, err := NewTextComponent(ctx, extractor(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	tc.SetText("ab")
	if err := tc.Prepare(); err != nil {
		t.Fatal(err)
	}
	ctx.Reset()
	if err := tc.Draw(newProgramSpy()); err != nil {
		t.Fatal(err)
	}

	var draws int
	for i, call := range ctx.Calls {
		if !strings.HasPrefix(call, "DrawElements") {
			continue
		}
		draws++
		rest := strings.Join(ctx.Calls[i+1:], " ")
		if !strings.HasPrefix(rest, "BindVertexArray(0) ActiveTexture(0) BindTexture(0) BindSampler(0, 0)") {
			t.Errorf("glyph %d left its texture bound: %v", draws, ctx.Calls[i+1:])
		}
	}
	if draws != 2 {
		t.Fatalf("drew %d quads, want 2", draws)
	}
}

func TestTextComponentSetColorReleasesGlyphs(t *testing.T) {
	ctx := gfxtest.New()
	tc, err := NewTextComponent(ctx, extractor(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	tc.SetText("ab")
	if err := tc.Prepare(); err != nil {
		t.Fatal(err)
	}
	tc.SetColor(color.RGBA{R: 10, A: 255})
	if tc.CacheSize() != 0 {
		t.Errorf("cache kept %d glyphs after a color change", tc.CacheSize())
	}
	if got := ctx.Named("DeleteTexture"); len(got) != 2 {
		t.Errorf("released %v", got)
	}

	tc.Release()
	if got := ctx.Named("DeleteVertexArray"); len(got) != 1 {
		t.Errorf("quad not released: %v", got)
	}
}
