package frames

import (
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"github.com/kettek/apng"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

type encodeConfig struct {
	jpegQuality         int
	pngCompressionLevel png.CompressionLevel
}

var defaultEncodeConfig = encodeConfig{
	jpegQuality:         95,
	pngCompressionLevel: png.DefaultCompression,
}

// EncodeOption sets an optional parameter for the Encode and Save functions.
type EncodeOption func(*encodeConfig)

// JPEGQuality sets the output JPEG quality, from 1 to 100 inclusive. Default is 95.
func JPEGQuality(quality int) EncodeOption {
	return func(c *encodeConfig) {
		c.jpegQuality = quality
	}
}

// PNGCompressionLevel sets the compression level of PNG output. Default is png.DefaultCompression.
func PNGCompressionLevel(level png.CompressionLevel) EncodeOption {
	return func(c *encodeConfig) {
		c.pngCompressionLevel = level
	}
}

func (self *Image) first() image.Image {
	if self.DefaultImage != nil {
		return self.DefaultImage
	}
	return self.Frames[0].Image
}

func to_paletted(img image.Image) *image.Paletted {
	if p, ok := img.(*image.Paletted); ok {
		return p
	}
	ans := image.NewPaletted(img.Bounds(), palette.Plan9)
	draw.FloydSteinberg.Draw(ans, ans.Rect, img, img.Bounds().Min)
	return ans
}

func (self *Image) as_gif() *gif.GIF {
	ans := &gif.GIF{Config: image.Config{Width: self.Width, Height: self.Height}}
	switch self.LoopCount {
	case 0:
		ans.LoopCount = 0
	case 1:
		ans.LoopCount = -1
	default:
		ans.LoopCount = int(self.LoopCount) - 1
	}
	for _, f := range self.Frames {
		ans.Image = append(ans.Image, to_paletted(f.Image))
		ans.Delay = append(ans.Delay, int(f.Delay.Milliseconds()/10))
		ans.Disposal = append(ans.Disposal, gif.DisposalNone)
	}
	return ans
}

// Encode writes img to w. Animations are written as APNG or GIF, the other
// formats only get the first frame. Animated images are coalesced first.
func Encode(w io.Writer, img *Image, format Format, opts ...EncodeOption) error {
	cfg := defaultEncodeConfig
	for _, option := range opts {
		option(&cfg)
	}
	if img.IsAnimated() {
		img.Coalesce()
	}
	switch format {
	case PNG:
		if img.IsAnimated() {
			return apng.Encode(w, img.as_apng())
		}
		encoder := png.Encoder{CompressionLevel: cfg.pngCompressionLevel}
		return encoder.Encode(w, img.first())
	case GIF:
		return gif.EncodeAll(w, img.as_gif())
	case JPEG:
		return jpeg.Encode(w, img.first(), &jpeg.Options{Quality: cfg.jpegQuality})
	case TIFF:
		return tiff.Encode(w, img.first(), &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	case BMP:
		return bmp.Encode(w, img.first())
	}
	return ErrUnsupportedFormat
}

// Save writes img to a file, choosing the format from the filename extension.
func Save(img *Image, filename string, opts ...EncodeOption) (err error) {
	f, err := FormatFromFilename(filename)
	if err != nil {
		return err
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	err = Encode(file, img, f, opts...)
	errc := file.Close()
	if err == nil {
		err = errc
	}
	return err
}
