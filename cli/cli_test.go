package cli

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- normalizeSizeArgs ---

func TestNormalizeSizeArgs(t *testing.T) {
	cases := []struct {
		input []string
		want  []string
	}{
		{[]string{"in", "-s", "800", "600"}, []string{"in", "--size=800,600"}},
		{[]string{"--size", "800", "600", "in"}, []string{"--size=800,600", "in"}},
		{[]string{"in", "-s", "800x600"}, []string{"in", "--size=800,600"}},
		{[]string{"in", "--size=10,20"}, []string{"in", "--size=10,20"}},
		{[]string{"in", "-s", "800"}, []string{"in", "-s", "800"}},
		{[]string{"in", "-o", "out"}, []string{"in", "-o", "out"}},
		{[]string{"--", "-s", "1", "2"}, []string{"--", "-s", "1", "2"}},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, normalizeSizeArgs(c.input), "%v", c.input)
	}
}

// --- Run ---

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+3] = 200, 255
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func decodeSize(t *testing.T, path string) image.Point {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	return image.Pt(cfg.Width, cfg.Height)
}

func TestRunDefaultsToOutputSubfolder(t *testing.T) {
	in := t.TempDir()
	writePNG(t, filepath.Join(in, "a.png"), 80, 60)

	var stderr bytes.Buffer
	code := Run(context.Background(), []string{in, "-s", "40", "30"}, &stderr)
	require.Equal(t, 0, code, stderr.String())

	assert.Equal(t, image.Pt(40, 30), decodeSize(t, filepath.Join(in, "output", "a.png")))
	assert.Contains(t, stderr.String(), "Image processing complete.")
}

func TestRunExplicitOutputAndLetterbox(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "padded")
	writePNG(t, filepath.Join(in, "wide.png"), 800, 600)

	var stderr bytes.Buffer
	code := Run(context.Background(), []string{in, "--output_folder", out, "--size", "100", "100"}, &stderr)
	require.Equal(t, 0, code, stderr.String())

	f, err := os.Open(filepath.Join(out, "wide.png"))
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 100, 100), img.Bounds())
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	assert.Equal(t, white, color.RGBAModel.Convert(img.At(50, 5)))
	assert.NotEqual(t, white, color.RGBAModel.Convert(img.At(50, 50)))
}

func TestRunMissingFolder(t *testing.T) {
	in := filepath.Join(t.TempDir(), "missing")

	var stderr bytes.Buffer
	code := Run(context.Background(), []string{in}, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "input folder does not exist")

	_, err := os.Stat(filepath.Join(in, "output"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunEmptyFolder(t *testing.T) {
	var stderr bytes.Buffer
	code := Run(context.Background(), []string{t.TempDir()}, &stderr)
	assert.Equal(t, 0, code, stderr.String())
}

func TestRunPerFileFailureExitCode(t *testing.T) {
	in := t.TempDir()
	writePNG(t, filepath.Join(in, "good.png"), 10, 10)
	require.NoError(t, os.WriteFile(filepath.Join(in, "bad.jpg"), []byte("nope"), 0o600))

	var stderr bytes.Buffer
	assert.Equal(t, 0, Run(context.Background(), []string{in, "-s", "8", "8"}, &stderr), stderr.String())
	assert.Contains(t, stderr.String(), "fit failed")
	assert.FileExists(t, filepath.Join(in, "output", "good.png"))

	stderr.Reset()
	assert.Equal(t, 1, Run(context.Background(), []string{in, "-s", "8", "8", "--strict"}, &stderr))
	assert.Contains(t, stderr.String(), "one or more images failed")
}

func TestRunRejectsInvalidArguments(t *testing.T) {
	in := t.TempDir()
	zeroSize := filepath.Join(t.TempDir(), "zero.yaml")
	require.NoError(t, os.WriteFile(zeroSize, []byte("size: {width: 0, height: 0}\n"), 0o600))

	tests := map[string][]string{
		"no folder":      {},
		"two folders":    {in, in},
		"one size value": {in, "-s", "100"},
		"zero size":      {in, "-s", "0", "100"},
		"zero zero size": {in, "-s", "0", "0"},
		"negative size":  {in, "--size", "100", "-4"},
		"unknown filter": {in, "--filter", "box"},
		"unknown preset": {in, "--preset", "vga"},
		"zero size file": {in, "--config", zeroSize},
		"bad background": {in, "--background", "blue"},
		"zero workers":   {in, "--workers", "0"},
		"missing config": {in, "--config", filepath.Join(in, "nope.yaml")},
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			var stderr bytes.Buffer
			assert.Equal(t, 1, Run(context.Background(), args, &stderr))
			assert.Contains(t, stderr.String(), "Error:")
		})
	}

	_, err := os.Stat(filepath.Join(in, "output"))
	assert.True(t, os.IsNotExist(err), "invalid arguments must not create the output folder")
}

func TestRunConfigFileWithFlagOverride(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writePNG(t, filepath.Join(in, "a.png"), 30, 20)

	cfgPath := filepath.Join(t.TempDir(), "imgpad.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("preset: 720p\nfilter: bilinear\noutput: "+out+"\n"), 0o600))

	var stderr bytes.Buffer
	require.Equal(t, 0, Run(context.Background(), []string{in, "--config", cfgPath}, &stderr), stderr.String())
	assert.Equal(t, image.Pt(1280, 720), decodeSize(t, filepath.Join(out, "a.png")))

	stderr.Reset()
	require.Equal(t, 0, Run(context.Background(), []string{in, "--config", cfgPath, "-s", "64", "32"}, &stderr), stderr.String())
	assert.Equal(t, image.Pt(64, 32), decodeSize(t, filepath.Join(out, "a.png")))
}

func TestRunPresetFlag(t *testing.T) {
	in := t.TempDir()
	writePNG(t, filepath.Join(in, "a.png"), 10, 10)

	var stderr bytes.Buffer
	require.Equal(t, 0, Run(context.Background(), []string{in, "--preset", "square-512", "--workers", "2"}, &stderr), stderr.String())
	assert.Equal(t, image.Pt(512, 512), decodeSize(t, filepath.Join(in, "output", "a.png")))
}
