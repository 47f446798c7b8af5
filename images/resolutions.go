package images

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnknownPreset is returned when a preset name is not in the table.
var ErrUnknownPreset = errors.New("unknown canvas preset")

// PresetName identifies a named canvas size.
type PresetName string

// Defines the built-in canvas presets.
const (
	PresetSquare512  PresetName = "square-512"
	PresetSquare1024 PresetName = "square-1024"
	PresetSquare2048 PresetName = "square-2048"
	Preset720p       PresetName = "720p"
	Preset1080p      PresetName = "1080p"
	Preset1440p      PresetName = "1440p"
	Preset4K         PresetName = "4k"
	PresetOGImage    PresetName = "og-image"
	PresetA4Portrait PresetName = "a4-300dpi"
)

// Preset is a named canvas with its aspect ratio label.
type Preset struct {
	Name        PresetName `json:"name" yaml:"name"`
	AspectRatio string     `json:"aspectRatio" yaml:"aspectRatio"`
	Canvas      CanvasSize `json:"canvas" yaml:"canvas"`
}

// MegaPixels returns the canvas area in megapixels rounded to two decimals.
func (p Preset) MegaPixels() float64 {
	if p.Canvas.Width <= 0 || p.Canvas.Height <= 0 {
		return 0.0
	}
	mp := float64(p.Canvas.Width*p.Canvas.Height) / 1_000_000.0
	return math.Round(mp*100) / 100
}

// String returns a human-readable summary of the preset.
func (p Preset) String() string {
	return fmt.Sprintf("%s (%s, %s, %.2fMP)", p.Name, p.Canvas, p.AspectRatio, p.MegaPixels())
}

var presets = map[PresetName]Preset{
	PresetSquare512:  {Name: PresetSquare512, AspectRatio: "1:1", Canvas: CanvasSize{Width: 512, Height: 512}},
	PresetSquare1024: {Name: PresetSquare1024, AspectRatio: "1:1", Canvas: CanvasSize{Width: 1024, Height: 1024}},
	PresetSquare2048: {Name: PresetSquare2048, AspectRatio: "1:1", Canvas: CanvasSize{Width: 2048, Height: 2048}},
	Preset720p:       {Name: Preset720p, AspectRatio: "16:9", Canvas: CanvasSize{Width: 1280, Height: 720}},
	Preset1080p:      {Name: Preset1080p, AspectRatio: "16:9", Canvas: CanvasSize{Width: 1920, Height: 1080}},
	Preset1440p:      {Name: Preset1440p, AspectRatio: "16:9", Canvas: CanvasSize{Width: 2560, Height: 1440}},
	Preset4K:         {Name: Preset4K, AspectRatio: "16:9", Canvas: CanvasSize{Width: 3840, Height: 2160}},
	PresetOGImage:    {Name: PresetOGImage, AspectRatio: "1.91:1", Canvas: CanvasSize{Width: 1200, Height: 630}},
	PresetA4Portrait: {Name: PresetA4Portrait, AspectRatio: "1:1.41", Canvas: CanvasSize{Width: 2480, Height: 3508}},
}

// LookupPreset finds a preset by case-insensitive name.
func LookupPreset(name string) (Preset, error) {
	p, ok := presets[PresetName(strings.ToLower(strings.TrimSpace(name)))]
	if !ok {
		return Preset{}, errors.Wrapf(ErrUnknownPreset, "%q", name)
	}
	return p, nil
}

// Presets returns every preset ordered by area, then name.
func Presets() []Preset {
	all := make([]Preset, 0, len(presets))
	for _, p := range presets {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		ai := all[i].Canvas.Width * all[i].Canvas.Height
		aj := all[j].Canvas.Width * all[j].Canvas.Height
		if ai != aj {
			return ai < aj
		}
		return all[i].Name < all[j].Name
	})
	return all
}
