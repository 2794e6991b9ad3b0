package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/nfnt/resize"
	"gonum.org/v1/gonum/spatial/r3"
)

// PixelBuffer accumulates one RGB triple per supersample cell in row-major
// canonical pixel order. Components live in [0,1] and truncate to 8 bits on
// conversion.
type PixelBuffer struct {
	Side int
	Pix  []r3.Vec
}

// NewPixelBuffer returns a side×side buffer initialized to the white
// background.
func NewPixelBuffer(side int) *PixelBuffer {
	if side < 1 {
		panic("pixel buffer side must be at least 1")
	}
	pix := make([]r3.Vec, side*side)
	white := r3.Vec{X: 1, Y: 1, Z: 1}
	for i := range pix {
		pix[i] = white
	}
	return &PixelBuffer{Side: side, Pix: pix}
}

// Set overwrites the color of one cell, addressed in ray order.
func (b *PixelBuffer) Set(id int, c r3.Vec) {
	b.Pix[id] = c
}

// Image converts the buffer to an 8-bit image. Channels truncate as
// uint8(v·255), they do not round.
func (b *PixelBuffer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.Side, b.Side))
	for i, c := range b.Pix {
		img.SetRGBA(i%b.Side, i/b.Side, color.RGBA{
			R: uint8(c.X * 255),
			G: uint8(c.Y * 255),
			B: uint8(c.Z * 255),
			A: 255,
		})
	}
	return img
}

// Downsample resizes img to side×side with Lanczos resampling, averaging
// supersample cells into antialiased pixels. Images already at the target
// size are returned unchanged.
func Downsample(img *image.RGBA, side int) *image.RGBA {
	if img.Bounds().Dx() == side && img.Bounds().Dy() == side {
		return img
	}
	out := resize.Resize(uint(side), uint(side), img, resize.Lanczos3)
	if rgba, ok := out.(*image.RGBA); ok {
		return rgba
	}
	b := out.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), out, b.Min, draw.Src)
	return dst
}
