package image8bit

import (
	"fmt"
	"image"
	"image/draw"
	"os"

	// Decoders available to Load.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Load decodes the image file at path and converts it to 8-bit grayscale.
func Load(path string) (*image.Gray, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("image8bit: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("image8bit: decoding %s: %w", path, err)
	}
	return Convert(img), nil
}

// Convert returns img as an *image.Gray. An *image.Gray is returned as is;
// anything else is copied through color.GrayModel.
func Convert(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	r := img.Bounds()
	g := image.NewGray(r)
	draw.Draw(g, r, img, r.Min, draw.Src)
	return g
}

// Invert replaces every pixel of g with its negative.
func Invert(g *image.Gray) {
	r := g.Bounds()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := g.Pix[g.PixOffset(r.Min.X, y):][:r.Dx()]
		for i, v := range row {
			row[i] = 255 - v
		}
	}
}

// Uniform returns a w×h image with every pixel set to v.
func Uniform(w, h int, v uint8) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	if v != 0 {
		for i := range g.Pix {
			g.Pix[i] = v
		}
	}
	return g
}
