package main

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/kovidgoyal/gllcms"
	"github.com/kovidgoyal/gllcms/frames"
	"github.com/kovidgoyal/gllcms/prism/meta/icc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	opts, inputs, err := parse_args([]string{"--hue", "30", "-v", "a.png", "b.gif"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png", "b.gif"}, inputs)
	assert.Equal(t, gllcms.Settings{Contrast: 1, Hue: 30}, opts.settings)
	assert.True(t, opts.verbose)

	config := filepath.Join(t.TempDir(), "s.toml")
	require.NoError(t, os.WriteFile(config, []byte("hue = 10\nbrightness = 4\nicc_profile = \"cam.icc\"\n"), 0o644))
	opts, _, err = parse_args([]string{"--config", config, "--hue", "20"})
	require.NoError(t, err)
	assert.Equal(t, gllcms.Settings{
		ICCProfilePath: filepath.Join(filepath.Dir(config), "cam.icc"), Brightness: 4, Contrast: 1, Hue: 20,
	}, opts.settings, "flags override the config file")

	_, _, err = parse_args([]string{"-o", "x.png", "a.png", "b.png"})
	assert.Error(t, err)
	_, _, err = parse_args([]string{"--contrast", "NaN"})
	assert.ErrorIs(t, err, gllcms.ErrInvalidSettings)
}

func TestOutputPath(t *testing.T) {
	still := &frames.Image{Frames: []*frames.Frame{{}}}
	anim := &frames.Image{Frames: []*frames.Frame{{}, {}}}
	assert.Equal(t, "/d/pic-gllcms.jpg", output_path("/d/pic.jpg", still))
	assert.Equal(t, "/d/pic-gllcms.png", output_path("/d/pic.webp", still))
	assert.Equal(t, "/d/pic-gllcms.apng", output_path("/d/pic.gif", anim))
}

func TestProcessFile(t *testing.T) {
	dir := t.TempDir()
	src := image.NewNRGBA(image.Rect(0, 0, 5, 3))
	for i := range src.Pix {
		src.Pix[i] = uint8(i * 7)
	}
	input := filepath.Join(dir, "in.png")
	require.NoError(t, frames.Save(&frames.Image{Width: 5, Height: 3, Frames: []*frames.Frame{{Number: 1, Image: src}}}, input))

	r := new_cpu_runner(gllcms.NewStore())
	defer r.Close()
	var output string
	require.NoError(t, process_file(r, input, &output, gllcms.DefaultSettings()))
	assert.Equal(t, filepath.Join(dir, "in-gllcms.png"), output)
	back, err := frames.Open(output)
	require.NoError(t, err)
	got := back.Frames[0].Image
	for y := range 3 {
		for x := range 5 {
			assert.Equal(t, src.At(x, y), got.At(x, y))
		}
	}
	assert.Equal(t, uint64(1), r.Stats().Passthrough)
}

func TestWriteOutputs(t *testing.T) {
	dir := t.TempDir()
	opts := options{
		settings:      gllcms.Settings{Contrast: 1.2, Hue: 15},
		save_profile:  filepath.Join(dir, "adj.icc"),
		save_settings: filepath.Join(dir, "adj.toml"),
	}
	require.NoError(t, write_outputs(&opts))
	p, err := icc.LoadProfile(opts.save_profile)
	require.NoError(t, err)
	assert.True(t, p.IsAbstract())
	_, err = os.Stat(opts.save_settings)
	assert.NoError(t, err)
}
