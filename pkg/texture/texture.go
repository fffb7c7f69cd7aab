// Package texture decodes panel images into the RGBA form uploaded to the GPU.
//
// Panel images are grey-level crops where annotation pixels are drawn in
// colour. Keying turns every pixel whose red and blue channels differ fully
// transparent and keeps the blue channel as the grey level elsewhere.
package texture

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Load decodes the image at path and applies keying
func Load(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("error decoding texture %s: %w", path, err)
	}

	return Key(img), nil
}

// Size returns the pixel dimensions of the image at path without decoding it
func Size(path string) (width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("error reading texture header %s: %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}

// Key converts img to grey levels taken from its blue channel, with alpha 0
// wherever red and blue differ and 255 elsewhere.
func Key(img image.Image) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			a := uint8(255)
			if c.R != c.B {
				a = 0
			}
			out.SetNRGBA(x-b.Min.X, y-b.Min.Y, color.NRGBA{R: c.B, G: c.B, B: c.B, A: a})
		}
	}
	return out
}
