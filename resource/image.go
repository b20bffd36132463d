package resource

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Image is tightly packed 8-bit pixel data, RGBA when HasAlpha and RGB
// otherwise. Row 0 is the first row of the source file unless flipped.
type Image struct {
	Width    int
	Height   int
	HasAlpha bool
	Pix      []byte
}

func (img *Image) Channels() int {
	if img.HasAlpha {
		return 4
	}
	return 3
}

// LoadImage decodes path and optionally flips it vertically, which is what
// OpenGL expects for files stored top row first.
func LoadImage(path string, flipV bool) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %q: %w", path, err)
	}
	img := FromImage(src)
	if flipV {
		img.FlipV()
	}
	return img, nil
}

// FromImage converts src to packed non-premultiplied bytes.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	rgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), src, b.Min, draw.Src)

	img := &Image{Width: b.Dx(), Height: b.Dy(), HasAlpha: hasAlpha(src)}
	if img.HasAlpha {
		img.Pix = rgba.Pix
		return img
	}
	img.Pix = make([]byte, 0, img.Width*img.Height*3)
	for i := 0; i < len(rgba.Pix); i += 4 {
		img.Pix = append(img.Pix, rgba.Pix[i], rgba.Pix[i+1], rgba.Pix[i+2])
	}
	return img
}

// hasAlpha reports whether the source format carries an alpha channel. Formats
// that always decode to RGBA count only when a pixel is actually translucent.
func hasAlpha(src image.Image) bool {
	switch img := src.(type) {
	case *image.NRGBA, *image.NRGBA64, *image.Alpha, *image.Alpha16:
		return true
	case *image.RGBA:
		return !img.Opaque()
	case *image.RGBA64:
		return !img.Opaque()
	case *image.Paletted:
		for _, c := range img.Palette {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return true
			}
		}
		return false
	}
	switch src.ColorModel() {
	case color.NRGBAModel, color.NRGBA64Model:
		return true
	}
	return false
}

// FlipV reverses the row order in place.
func (img *Image) FlipV() {
	stride := img.Width * img.Channels()
	row := make([]byte, stride)
	for top, bottom := 0, img.Height-1; top < bottom; top, bottom = top+1, bottom-1 {
		t := img.Pix[top*stride : (top+1)*stride]
		b := img.Pix[bottom*stride : (bottom+1)*stride]
		copy(row, t)
		copy(t, b)
		copy(b, row)
	}
}
