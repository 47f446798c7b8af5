package images

import (
	"crypto/sha256"
	"encoding/hex"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

// Checksum returns a hex-encoded SHA-256 of data, used to verify that the
// same input always encodes to the same bytes.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// White is the default canvas background.
var White = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// ParseHexColor parses "#rrggbb", "rrggbb" or "#rgb" into an opaque color.
func ParseHexColor(s string) (color.RGBA, error) {
	h := strings.TrimSpace(s)
	if !strings.HasPrefix(h, "#") {
		h = "#" + h
	}
	// colorful.Hex ignores trailing input and accepts short hex pairs.
	if len(h) != 4 && len(h) != 7 {
		return color.RGBA{}, errors.Errorf("invalid color %q", s)
	}

	c, err := colorful.Hex(h)
	if err != nil {
		return color.RGBA{}, errors.Wrapf(err, "invalid color %q", s)
	}

	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}
