package frames

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	for name, want := range map[string]Format{
		"a.JPG": JPEG, "b.jpeg": JPEG, "c.png": PNG, "d.apng": PNG, "e.gif": GIF, "f.tif": TIFF, "g.bmp": BMP, "h.webp": WEBP,
	} {
		f, err := FormatFromFilename(name)
		require.NoError(t, err)
		assert.Equal(t, want, f, name)
	}
	_, err := FormatFromFilename("x.xcf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Equal(t, "PNG", PNG.String())
	assert.Equal(t, "UNKNOWN", Format(99).String())
}

var test_palette = color.Palette{color.RGBA{255, 0, 0, 255}, color.RGBA{0, 0, 255, 255}, color.RGBA{0, 255, 0, 255}}

func solid(r image.Rectangle, c color.Color) *image.Paletted {
	img := image.NewPaletted(r, test_palette)
	idx := uint8(test_palette.Index(c))
	for i := range img.Pix {
		img.Pix[i] = idx
	}
	return img
}

func two_frame_gif(t *testing.T) []byte {
	t.Helper()
	red, blue := color.RGBA{255, 0, 0, 255}, color.RGBA{0, 0, 255, 255}
	g := &gif.GIF{
		Image:    []*image.Paletted{solid(image.Rect(0, 0, 4, 4), red), solid(image.Rect(1, 1, 3, 3), blue)},
		Delay:    []int{5, 20},
		Disposal: []byte{gif.DisposalNone, gif.DisposalNone},
		Config:   image.Config{Width: 4, Height: 4},
	}
	var buf bytes.Buffer
	require.NoError(t, gif.EncodeAll(&buf, g))
	return buf.Bytes()
}

func compose_onto(img *Image) (ans []uint) {
	for _, f := range img.Frames {
		ans = append(ans, f.ComposeOnto)
	}
	return
}

func rgba(c color.Color) [4]uint32 {
	r, g, b, a := c.RGBA()
	return [4]uint32{r >> 8, g >> 8, b >> 8, a >> 8}
}

func TestDecodePlainPNG(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := range src.Pix {
		src.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))
	img, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, PNG, img.Format)
	require.Len(t, img.Frames, 1)
	assert.False(t, img.IsAnimated())
	assert.Equal(t, image.Rect(0, 0, 2, 2), img.Frames[0].Image.Bounds())
	assert.Equal(t, PNG, format_from_decoder("apng"))
}

func TestAnimatedRoundTrip(t *testing.T) {
	img, err := Decode(bytes.NewReader(two_frame_gif(t)))
	require.NoError(t, err)
	assert.Equal(t, GIF, img.Format)
	assert.True(t, img.IsAnimated())
	assert.Equal(t, []uint{0, 1}, compose_onto(img))
	assert.Equal(t, image.Pt(1, 1), image.Pt(img.Frames[1].X, img.Frames[1].Y))
	assert.Equal(t, 50*time.Millisecond, img.Frames[0].Delay)
	assert.Equal(t, 200*time.Millisecond, img.Frames[1].Delay)
	assert.Equal(t, uint(0), img.LoopCount)

	img.Coalesce()
	for _, f := range img.Frames {
		require.IsType(t, &image.NRGBA{}, f.Image)
		assert.Equal(t, image.Rect(0, 0, 4, 4), f.Image.Bounds())
		assert.True(t, f.Replace)
	}
	second := img.Frames[1].Image.(*image.NRGBA)
	assert.Equal(t, [4]uint32{255, 0, 0, 255}, rgba(second.At(0, 0)))
	assert.Equal(t, [4]uint32{0, 0, 255, 255}, rgba(second.At(2, 2)))
	assert.Equal(t, [4]uint32{255, 0, 0, 255}, rgba(second.At(3, 3)))

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, img, PNG))
	back, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, PNG, back.Format)
	require.Len(t, back.Frames, 2)
	assert.InDelta(t, float64(200*time.Millisecond), float64(back.Frames[1].Delay), float64(time.Millisecond))
	back.Coalesce()
	for i, f := range back.Frames {
		want := img.Frames[i].Image
		for y := range 4 {
			for x := range 4 {
				assert.Equal(t, rgba(want.At(x, y)), rgba(f.Image.At(x, y)), "frame %d at %d,%d", i+1, x, y)
			}
		}
	}

	buf.Reset()
	require.NoError(t, Encode(&buf, img, GIF))
	g, err := gif.DecodeAll(&buf)
	require.NoError(t, err)
	assert.Len(t, g.Image, 2)
	assert.Equal(t, []int{5, 20}, g.Delay)
}

func TestGIFDisposePrevious(t *testing.T) {
	red := color.RGBA{255, 0, 0, 255}
	g := &gif.GIF{
		Image: []*image.Paletted{
			solid(image.Rect(0, 0, 2, 2), red), solid(image.Rect(0, 0, 1, 1), red), solid(image.Rect(1, 1, 2, 2), red),
		},
		Delay:    []int{10, 10, 10},
		Disposal: []byte{gif.DisposalNone, gif.DisposalPrevious, gif.DisposalNone},
		Config:   image.Config{Width: 2, Height: 2},
	}
	var buf bytes.Buffer
	require.NoError(t, gif.EncodeAll(&buf, g))
	img, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, []uint{0, 1, 1}, compose_onto(img))
}

func jpeg_with_exif(t *testing.T, color_space uint16) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, 8, 8)), nil))
	if color_space == 0 {
		return buf.Bytes()
	}
	le := binary.LittleEndian
	tiff := []byte("II*\x00")
	tiff = le.AppendUint32(tiff, 8)
	// IFD0 with a pointer to the Exif IFD
	tiff = le.AppendUint16(tiff, 1)
	tiff = le.AppendUint16(tiff, 0x8769)
	tiff = le.AppendUint16(tiff, 4)
	tiff = le.AppendUint32(tiff, 1)
	tiff = le.AppendUint32(tiff, 26)
	tiff = le.AppendUint32(tiff, 0)
	// Exif IFD with ColorSpace
	tiff = le.AppendUint16(tiff, 1)
	tiff = le.AppendUint16(tiff, 0xa001)
	tiff = le.AppendUint16(tiff, 3)
	tiff = le.AppendUint32(tiff, 1)
	tiff = le.AppendUint16(tiff, color_space)
	tiff = le.AppendUint16(tiff, 0)
	tiff = le.AppendUint32(tiff, 0)

	payload := append([]byte("Exif\x00\x00"), tiff...)
	app1 := []byte{0xff, 0xe1}
	app1 = binary.BigEndian.AppendUint16(app1, uint16(len(payload)+2))
	app1 = append(app1, payload...)
	data := buf.Bytes()
	return append(append(append([]byte{}, data[:2]...), app1...), data[2:]...)
}

func TestJPEGColorSpace(t *testing.T) {
	for _, c := range []struct {
		tag  uint16
		want ColorSpace
	}{{0, ColorSpaceUnknown}, {1, ColorSpaceSRGB}, {0xffff, ColorSpaceUncalibrated}} {
		img, err := Decode(bytes.NewReader(jpeg_with_exif(t, c.tag)))
		require.NoError(t, err)
		assert.Equal(t, JPEG, img.Format)
		assert.Equal(t, c.want, img.ColorSpace, "tag: %#x", c.tag)
		assert.False(t, img.IsAnimated())
	}
}

func TestStillImages(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for i := range src.Pix {
		src.Pix[i] = uint8(i * 20)
	}
	for i := 3; i < len(src.Pix); i += 4 {
		src.Pix[i] = 0xff
	}
	dir := t.TempDir()
	for _, name := range []string{"out.png", "out.bmp", "out.tiff"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, Save(&Image{Width: 3, Height: 2, Frames: []*Frame{{Number: 1, Image: src}}}, path))
			back, err := Open(path)
			require.NoError(t, err)
			require.Len(t, back.Frames, 1)
			for y := range 2 {
				for x := range 3 {
					assert.Equal(t, rgba(src.At(x, y)), rgba(back.Frames[0].Image.At(x, y)))
				}
			}
		})
	}
	path := filepath.Join(dir, "out.jpg")
	require.NoError(t, Save(&Image{Width: 3, Height: 2, Frames: []*Frame{{Number: 1, Image: src}}}, path, JPEGQuality(80)))
	back, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), back.Frames[0].Image.Bounds())

	assert.ErrorIs(t, Save(&Image{Frames: []*Frame{{Image: src}}}, filepath.Join(dir, "out.webp")), ErrUnsupportedFormat)
	_, err = Decode(bytes.NewReader([]byte("definitely not an image")))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestAsFraction(t *testing.T) {
	for d, want := range map[time.Duration][2]uint16{
		0:                       {0, 1},
		100 * time.Millisecond:  {1, 10},
		1500 * time.Millisecond: {3, 2},
		40 * time.Millisecond:   {1, 25},
	} {
		n, den := as_fraction(d)
		assert.Equal(t, want, [2]uint16{n, den}, "%s", d)
	}
}
