// Package fitter places a single image onto a fixed-size canvas while keeping
// its aspect ratio, and persists the result as PNG.
package fitter

import (
	"bufio"
	"bytes"
	"image"
	"image/color"
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"github.com/pkg/errors"

	"github.com/nvr-ai/imgpad/images"
)

// OutputMode is the permission of written files.
const OutputMode fs.FileMode = 0o644

// Options configures a Fitter. It is read-only after New.
type Options struct {
	// Canvas is the output size every image is placed on.
	Canvas images.CanvasSize
	// Filter is the resampling filter; empty means images.DefaultFilter.
	Filter images.Filter
	// Background fills the canvas outside the scaled image; nil means white.
	Background color.Color
}

// Result describes one written output.
type Result struct {
	// Source is the decoded input path.
	Source string
	// Dest is the written PNG path.
	Dest string
	// Format is the sniffed source format.
	Format images.ImageFormat
	// SourceWidth is the width of the decoded source.
	SourceWidth int
	// SourceHeight is the height of the decoded source.
	SourceHeight int
	// Placement is where the scaled source sits on the canvas.
	Placement images.Placement
	// Bytes is the size of the written PNG.
	Bytes int
	// Checksum is the SHA-256 of the written PNG.
	Checksum string
}

// Fitter letterboxes images onto a canvas. It holds no per-file state and is
// safe for concurrent use.
type Fitter struct {
	opts       Options
	logger     *slog.Logger
	encoder    *png.Encoder
	bufferPool *sync.Pool
}

// New validates opts and returns a Fitter.
//
// Arguments:
//   - opts: Canvas, filter and background.
//   - logger: Receives debug output per step; nil discards.
//
// Returns:
//   - *Fitter: The configured fitter.
//   - error: If the canvas or filter is invalid.
func New(opts Options, logger *slog.Logger) (*Fitter, error) {
	if err := opts.Canvas.Validate(); err != nil {
		return nil, err
	}

	filter, err := images.ParseFilter(string(opts.Filter))
	if err != nil {
		return nil, err
	}
	opts.Filter = filter

	if opts.Background == nil {
		opts.Background = images.White
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Fitter{
		opts:    opts,
		logger:  logger,
		encoder: &png.Encoder{CompressionLevel: png.DefaultCompression},
		bufferPool: &sync.Pool{
			New: func() interface{} {
				return new(bytes.Buffer)
			},
		},
	}, nil
}

// Canvas returns the configured canvas size.
func (f *Fitter) Canvas() images.CanvasSize {
	return f.opts.Canvas
}

// Fit decodes source, places it on the canvas and writes a PNG to dest,
// replacing any existing file.
//
// Arguments:
//   - source: Path of a PNG or JPEG file.
//   - dest: Path of the PNG to write; its directory must exist.
//
// Returns:
//   - *Result: What was written.
//   - error: A *FitError describing the failed step.
//
// Example:
//
//	f, _ := fitter.New(fitter.Options{Canvas: images.DefaultCanvas}, nil)
//	res, err := f.Fit("in/cat.jpg", "out/cat.png")
func (f *Fitter) Fit(source, dest string) (*Result, error) {
	img, format, err := decode(source)
	if err != nil {
		return nil, newFitError(KindDecode, source, err)
	}

	srcW, srcH := img.Bounds().Dx(), img.Bounds().Dy()
	placement, err := images.ComputePlacement(srcW, srcH, f.opts.Canvas)
	if err != nil {
		return nil, newFitError(KindResize, source, err)
	}

	f.logger.Debug("placement computed",
		"path", source, "format", format,
		"source", images.CanvasSize{Width: srcW, Height: srcH}.String(),
		"scaled", images.CanvasSize{Width: placement.NewWidth, Height: placement.NewHeight}.String(),
		"offset_x", placement.OffsetX, "offset_y", placement.OffsetY)

	resized, err := images.Resize(img, placement.NewWidth, placement.NewHeight, f.opts.Filter)
	if err != nil {
		return nil, newFitError(KindResize, source, err)
	}
	canvas := images.Composite(resized, f.opts.Canvas, placement, f.opts.Background)

	buf := f.bufferPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		f.bufferPool.Put(buf)
	}()

	if err := f.encoder.Encode(buf, canvas); err != nil {
		return nil, newFitError(KindEncode, dest, errors.Wrap(err, "png encode"))
	}

	if err := writeFileAtomic(dest, buf.Bytes(), OutputMode); err != nil {
		return nil, newFitError(KindWrite, dest, err)
	}

	return &Result{
		Source:       source,
		Dest:         dest,
		Format:       format,
		SourceWidth:  srcW,
		SourceHeight: srcH,
		Placement:    placement,
		Bytes:        buf.Len(),
		Checksum:     images.Checksum(buf.Bytes()),
	}, nil
}

// decode opens path, checks that its content really is PNG or JPEG and
// returns it as an RGB buffer.
func decode(path string) (*image.RGBA, images.ImageFormat, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to open image")
	}
	defer file.Close()

	format, err := images.DetectFormat(file)
	if err != nil {
		return nil, "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, "", errors.Wrap(err, "failed to rewind image")
	}

	img, _, err := image.Decode(bufio.NewReader(file))
	if err != nil {
		return nil, format, errors.Wrapf(err, "failed to decode %s", format)
	}
	if img.Bounds().Empty() {
		return nil, format, errors.New("decoded image has no pixels")
	}

	return images.ToRGB(img), format, nil
}
