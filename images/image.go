// Package images provides the image primitives used to place a picture on a
// fixed-size canvas: canvas sizes, placement math, resampling, RGB conversion
// and format detection.
package images

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/pkg/errors"
)

// ErrInvalidCanvas is returned when a canvas has a non-positive dimension.
var ErrInvalidCanvas = errors.New("invalid canvas size")

// CanvasSize is the fixed target size every image is placed on.
type CanvasSize struct {
	// The width of the canvas in pixels.
	Width int `json:"width" yaml:"width"`
	// The height of the canvas in pixels.
	Height int `json:"height" yaml:"height"`
}

// DefaultCanvas is the canvas used when none is configured.
var DefaultCanvas = CanvasSize{Width: 1024, Height: 1024}

// Validate ensures both dimensions are positive.
func (c CanvasSize) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.Wrapf(ErrInvalidCanvas, "%dx%d", c.Width, c.Height)
	}
	return nil
}

// Bounds returns the canvas rectangle anchored at the origin.
func (c CanvasSize) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.Width, c.Height)
}

// String returns the canvas as WIDTHxHEIGHT.
func (c CanvasSize) String() string {
	return fmt.Sprintf("%dx%d", c.Width, c.Height)
}

// ToRGB converts img into an opaque RGB buffer anchored at the origin.
//
// The alpha channel is dropped rather than composited: a half transparent red
// pixel becomes opaque red.
//
// Arguments:
//   - img: The decoded source image.
//
// Returns:
//   - *image.RGBA: A copy of img where every pixel has alpha 255.
func ToRGB(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return dst
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			dst.SetRGBA(x-b.Min.X, y-b.Min.Y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff})
		}
	}

	return dst
}
