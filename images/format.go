package images

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
)

// ImageFormat represents supported image formats
type ImageFormat string

const (
	FormatJPEG ImageFormat = "jpeg"
	FormatPNG  ImageFormat = "png"
)

// OutputExtension is the extension of every written file.
const OutputExtension = ".png"

// ErrUnsupportedFormat is returned when content is neither PNG nor JPEG.
var ErrUnsupportedFormat = errors.New("unsupported image format")

var extensions = map[string]ImageFormat{
	".png":  FormatPNG,
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
}

var mimeTypes = map[string]ImageFormat{
	"image/png":  FormatPNG,
	"image/jpeg": FormatJPEG,
}

// FormatFromExtension maps a file name to its format using a case-insensitive
// extension match.
func FormatFromExtension(name string) (ImageFormat, bool) {
	f, ok := extensions[strings.ToLower(filepath.Ext(name))]
	return f, ok
}

// IsSupported reports whether name has a .png, .jpg or .jpeg extension.
func IsSupported(name string) bool {
	_, ok := FormatFromExtension(name)
	return ok
}

// OutputName returns the file name a source is written under: the stem is
// kept and the extension is replaced with .png.
func OutputName(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base)) + OutputExtension
}

// DetectFormat sniffs the content of r and returns its format.
//
// Arguments:
//   - r: A reader positioned at the start of the image data.
//
// Returns:
//   - ImageFormat: The detected format.
//   - error: ErrUnsupportedFormat if the content is not PNG or JPEG.
func DetectFormat(r io.Reader) (ImageFormat, error) {
	mt, err := mimetype.DetectReader(r)
	if err != nil {
		return "", errors.Wrap(err, "failed to sniff content type")
	}

	for m := mt; m != nil; m = m.Parent() {
		if f, ok := mimeTypes[m.String()]; ok {
			return f, nil
		}
	}

	return "", errors.Wrapf(ErrUnsupportedFormat, "detected %s", mt.String())
}
