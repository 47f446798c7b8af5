package images

import (
	"image"
	"image/color"
	"image/draw"
	"sort"
	"strings"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

// Filter names a resampling algorithm.
type Filter string

const (
	FilterNearest  Filter = "nearest"
	FilterBilinear Filter = "bilinear"
	FilterBicubic  Filter = "bicubic"
	FilterMitchell Filter = "mitchell"
	FilterLanczos2 Filter = "lanczos2"
	FilterLanczos3 Filter = "lanczos3"
)

// DefaultFilter is used unless another filter is configured. It is pure Go,
// so output does not vary by platform.
const DefaultFilter = FilterLanczos3

// ErrUnknownFilter is returned by ParseFilter for unrecognised names.
var ErrUnknownFilter = errors.New("unknown resampling filter")

var interpolations = map[Filter]resize.InterpolationFunction{
	FilterNearest:  resize.NearestNeighbor,
	FilterBilinear: resize.Bilinear,
	FilterBicubic:  resize.Bicubic,
	FilterMitchell: resize.MitchellNetravali,
	FilterLanczos2: resize.Lanczos2,
	FilterLanczos3: resize.Lanczos3,
}

// ParseFilter resolves a case-insensitive filter name. An empty name yields
// DefaultFilter.
func ParseFilter(name string) (Filter, error) {
	if name == "" {
		return DefaultFilter, nil
	}
	f := Filter(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := interpolations[f]; !ok {
		return "", errors.Wrapf(ErrUnknownFilter, "%q (want one of %s)", name, strings.Join(FilterNames(), ", "))
	}
	return f, nil
}

// FilterNames lists every known filter, sorted.
func FilterNames() []string {
	names := make([]string, 0, len(interpolations))
	for f := range interpolations {
		names = append(names, string(f))
	}
	sort.Strings(names)
	return names
}

// Placement describes where a scaled source lands on a canvas.
type Placement struct {
	// NewWidth is the width of the scaled source.
	NewWidth int
	// NewHeight is the height of the scaled source.
	NewHeight int
	// OffsetX is the left margin.
	OffsetX int
	// OffsetY is the top margin.
	OffsetY int
}

// Rect returns the area of the canvas covered by the scaled source.
func (p Placement) Rect() image.Rectangle {
	return image.Rect(p.OffsetX, p.OffsetY, p.OffsetX+p.NewWidth, p.OffsetY+p.NewHeight)
}

// ComputePlacement scales a srcWidth x srcHeight image to fit canvas while
// keeping its aspect ratio, and centers it.
//
// The axis where the source is relatively larger is matched exactly. The other
// axis is floored, so it may fall one pixel short of an exact fit. Offsets use
// floor division, so an odd leftover pixel goes to the bottom/right margin.
//
// Arguments:
//   - srcWidth: The source width, must be positive.
//   - srcHeight: The source height, must be positive.
//   - canvas: The target canvas.
//
// Returns:
//   - Placement: The scaled size and offset.
//   - error: If any dimension is not positive.
//
// Example:
//
//	p, _ := ComputePlacement(800, 600, CanvasSize{Width: 1024, Height: 1024})
//	// p == Placement{NewWidth: 1024, NewHeight: 768, OffsetX: 0, OffsetY: 128}
func ComputePlacement(srcWidth, srcHeight int, canvas CanvasSize) (Placement, error) {
	if err := canvas.Validate(); err != nil {
		return Placement{}, err
	}
	if srcWidth <= 0 || srcHeight <= 0 {
		return Placement{}, errors.Errorf("invalid source dimensions: %dx%d", srcWidth, srcHeight)
	}

	imgRatio := float64(srcWidth) / float64(srcHeight)
	canvasRatio := float64(canvas.Width) / float64(canvas.Height)

	var newWidth, newHeight int
	if imgRatio > canvasRatio {
		newWidth = canvas.Width
		newHeight = int(float64(newWidth) / imgRatio)
	} else {
		newHeight = canvas.Height
		newWidth = int(float64(newHeight) * imgRatio)
	}

	// Extreme ratios floor to zero; a zero-sized image cannot be drawn.
	newWidth = clamp(newWidth, 1, canvas.Width)
	newHeight = clamp(newHeight, 1, canvas.Height)

	return Placement{
		NewWidth:  newWidth,
		NewHeight: newHeight,
		OffsetX:   (canvas.Width - newWidth) / 2,
		OffsetY:   (canvas.Height - newHeight) / 2,
	}, nil
}

// Resize scales img to width x height with filter. When img already has the
// requested size it is returned unchanged.
func Resize(img image.Image, width, height int, filter Filter) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid dimensions: width=%d, height=%d", width, height)
	}
	interp, ok := interpolations[filter]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownFilter, "%q", filter)
	}

	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return img, nil
	}

	return resize.Resize(uint(width), uint(height), img, interp), nil
}

// Composite draws src onto a new canvas filled with background at the
// placement offset.
//
// Arguments:
//   - src: The already scaled image; its size must match the placement.
//   - canvas: The canvas size.
//   - p: Where src goes.
//   - background: The fill color for uncovered pixels.
//
// Returns:
//   - *image.RGBA: The letterboxed image.
func Composite(src image.Image, canvas CanvasSize, p Placement, background color.Color) *image.RGBA {
	dst := image.NewRGBA(canvas.Bounds())
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)
	draw.Draw(dst, p.Rect(), src, src.Bounds().Min, draw.Src)
	return dst
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
