package resource

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func writeImage(t *testing.T, name string, encode func(*bytes.Buffer) error) string {
	t.Helper()
	var buf bytes.Buffer
	if err := encode(&buf); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// twoRows is red on top and blue below.
func twoRows(alpha uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for x := 0; x < 2; x++ {
		img.SetNRGBA(x, 0, color.NRGBA{R: 255, A: alpha})
		img.SetNRGBA(x, 1, color.NRGBA{B: 255, A: 255})
	}
	return img
}

func TestLoadImageDetectsAlpha(t *testing.T) {
	path := writeImage(t, "alpha.png", func(b *bytes.Buffer) error { return png.Encode(b, twoRows(128)) })
	img, err := LoadImage(path, false)
	if err != nil {
		t.Fatal(err)
	}
	if !img.HasAlpha || img.Channels() != 4 || len(img.Pix) != 16 {
		t.Fatalf("got alpha=%v len=%d", img.HasAlpha, len(img.Pix))
	}
	if got := img.Pix[:4]; !bytes.Equal(got, []byte{255, 0, 0, 128}) {
		t.Errorf("first pixel %v", got)
	}
}

func TestLoadImageOpaqueFormatsAreRGB(t *testing.T) {
	opaque := image.NewRGBA(image.Rect(0, 0, 3, 2))
	for i := range opaque.Pix {
		opaque.Pix[i] = 255
	}
	tests := []struct {
		name   string
		encode func(*bytes.Buffer) error
	}{
		{"opaque.png", func(b *bytes.Buffer) error { return png.Encode(b, opaque) }},
		{"opaque.bmp", func(b *bytes.Buffer) error { return bmp.Encode(b, opaque) }},
		{"opaque.tiff", func(b *bytes.Buffer) error { return tiff.Encode(b, opaque, nil) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := LoadImage(writeImage(t, tt.name, tt.encode), false)
			if err != nil {
				t.Fatal(err)
			}
			if img.HasAlpha {
				t.Error("opaque image reported alpha")
			}
			if img.Width != 3 || img.Height != 2 || len(img.Pix) != 18 {
				t.Errorf("got %dx%d with %d bytes", img.Width, img.Height, len(img.Pix))
			}
		})
	}
}

func TestLoadImageFlip(t *testing.T) {
	path := writeImage(t, "rows.png", func(b *bytes.Buffer) error { return png.Encode(b, twoRows(255)) })
	img, err := LoadImage(path, true)
	if err != nil {
		t.Fatal(err)
	}
	top := img.Pix[:img.Width*img.Channels()]
	for x := 0; x < img.Width; x++ {
		px := top[x*img.Channels():]
		if px[0] != 0 || px[2] != 255 {
			t.Fatalf("flipped top row pixel %d = %v, want blue", x, px[:img.Channels()])
		}
	}
}

func TestFlipVOddHeight(t *testing.T) {
	img := &Image{Width: 1, Height: 3, Pix: []byte{1, 1, 1, 2, 2, 2, 3, 3, 3}}
	img.FlipV()
	if want := []byte{3, 3, 3, 2, 2, 2, 1, 1, 1}; !bytes.Equal(img.Pix, want) {
		t.Errorf("got %v, want %v", img.Pix, want)
	}
}

func TestLoadImageErrors(t *testing.T) {
	if _, err := LoadImage(filepath.Join(t.TempDir(), "missing.png"), false); err == nil {
		t.Error("missing file loaded")
	}
	garbage := filepath.Join(t.TempDir(), "garbage.png")
	if err := os.WriteFile(garbage, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadImage(garbage, false); err == nil {
		t.Error("garbage decoded")
	}
}
