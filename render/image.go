package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// PixelFormat describes the layout of ImageData.Pixels.
type PixelFormat uint8

const (
	FormatRGBA PixelFormat = iota
	FormatRGB
)

// BytesPerPixel returns the pixel stride for f.
func (f PixelFormat) BytesPerPixel() int {
	if f == FormatRGB {
		return 3
	}
	return 4
}

// ImageData is raw, tightly packed pixel data ready for upload.
type ImageData struct {
	Width  int
	Height int
	Format PixelFormat
	Pixels []byte
}

// Validate checks that Pixels matches the declared size.
func (d ImageData) Validate() error {
	want := d.Width * d.Height * d.Format.BytesPerPixel()
	if d.Width <= 0 || d.Height <= 0 || len(d.Pixels) != want {
		return fmt.Errorf("render: image %dx%d needs %d bytes, have %d", d.Width, d.Height, want, len(d.Pixels))
	}
	return nil
}

// FromImage copies img into RGBA ImageData.
func FromImage(img image.Image) ImageData {
	b := img.Bounds()
	rgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return ImageData{
		Width:  b.Dx(),
		Height: b.Dy(),
		Format: FormatRGBA,
		Pixels: rgba.Pix,
	}
}

// Image returns the data as an *image.NRGBA, expanding RGB to opaque RGBA.
func (d ImageData) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, d.Width, d.Height))
	if d.Format == FormatRGBA {
		copy(img.Pix, d.Pixels)
		return img
	}
	for i := 0; i < d.Width*d.Height; i++ {
		img.SetNRGBA(i%d.Width, i/d.Width, color.NRGBA{
			R: d.Pixels[i*3],
			G: d.Pixels[i*3+1],
			B: d.Pixels[i*3+2],
			A: 0xff,
		})
	}
	return img
}
