// Package frames reads still and animated images into a list of frames and
// writes them back out, so that every frame can be pushed through a color
// filter.
package frames

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	_ "image/jpeg"
	"io"
	"os"
	"time"

	"github.com/kettek/apng"
	"github.com/rwcarlsen/goexif/exif"
	exif_tiff "github.com/rwcarlsen/goexif/tiff"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ColorSpace is the color space an image declares in its EXIF data.
type ColorSpace int

const (
	ColorSpaceUnknown ColorSpace = iota
	ColorSpaceSRGB
	// Anything other than sRGB, usually meaning an embedded profile is
	// required to interpret the pixels
	ColorSpaceUncalibrated
)

func (c ColorSpace) String() string {
	switch c {
	case ColorSpaceSRGB:
		return "sRGB"
	case ColorSpaceUncalibrated:
		return "uncalibrated"
	}
	return "unknown"
}

type Frame struct {
	Number uint
	X, Y   int
	Image  image.Image
	Delay  time.Duration
	// The number of the frame this one is drawn on top of, 0 for a blank canvas
	ComposeOnto uint
	// Do a simple pixel replacement rather than a full alpha blend when compositing this frame
	Replace bool
}

type Image struct {
	Frames        []*Frame
	Width, Height int
	Format        Format
	ColorSpace    ColorSpace
	LoopCount     uint // 0 means loop forever, 1 means loop once, ...
	// a "default image" for an animation that is not part of the actual animation
	DefaultImage image.Image
}

// IsAnimated reports whether the image has more than one frame.
func (self *Image) IsAnimated() bool { return len(self.Frames) > 1 }

// gif_delay converts a GIF delay in hundredths of a second, treating very
// short delays the way browsers do
func gif_delay(centiseconds int) time.Duration {
	if centiseconds <= 1 {
		centiseconds = 10
	}
	return time.Duration(centiseconds) * 10 * time.Millisecond
}

func (self *Image) populate_from_apng(p *apng.APNG) {
	self.LoopCount = p.LoopCount
	prev_disposal := apng.DISPOSE_OP_BACKGROUND
	var prev_compose_onto uint
	for _, f := range p.Frames {
		if f.IsDefault {
			self.DefaultImage = f.Image
			continue
		}
		frame := Frame{Number: uint(len(self.Frames) + 1), Image: f.Image, X: f.XOffset, Y: f.YOffset,
			Replace: f.BlendOp == apng.BLEND_OP_SOURCE,
			Delay:   time.Duration(float64(time.Second) * f.GetDelay())}
		switch prev_disposal {
		case apng.DISPOSE_OP_NONE:
			frame.ComposeOnto = frame.Number - 1
		case apng.DISPOSE_OP_PREVIOUS:
			frame.ComposeOnto = prev_compose_onto
		}
		prev_disposal, prev_compose_onto = int(f.DisposeOp), frame.ComposeOnto
		self.Frames = append(self.Frames, &frame)
	}
	if len(self.Frames) == 0 && self.DefaultImage != nil {
		self.Frames = append(self.Frames, &Frame{Number: 1, Image: self.DefaultImage})
		self.DefaultImage = nil
	}
}

func (self *Image) populate_from_gif(g *gif.GIF) {
	prev_disposal := uint8(gif.DisposalBackground)
	var prev_compose_onto uint
	for i, img := range g.Image {
		b := img.Bounds()
		frame := Frame{
			Number: uint(len(self.Frames) + 1), Image: img, X: b.Min.X, Y: b.Min.Y,
			Delay: gif_delay(g.Delay[i]),
		}
		var disposal uint8
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		// browsers and gif2apng treat background disposal as none
		frame.ComposeOnto = frame.Number - 1
		if prev_disposal == gif.DisposalPrevious {
			frame.ComposeOnto = prev_compose_onto
		}
		prev_disposal, prev_compose_onto = disposal, frame.ComposeOnto
		self.Frames = append(self.Frames, &frame)
	}
	switch {
	case g.LoopCount == 0:
		self.LoopCount = 0
	case g.LoopCount < 0:
		self.LoopCount = 1
	default:
		self.LoopCount = uint(g.LoopCount) + 1
	}
}

func exif_color_space(data []byte) ColorSpace {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil || x == nil {
		return ColorSpaceUnknown
	}
	tag, err := x.Get(exif.ColorSpace)
	if err != nil || tag == nil || tag.Format() != exif_tiff.IntVal {
		return ColorSpaceUnknown
	}
	switch v, err := tag.Int(0); {
	case err != nil:
		return ColorSpaceUnknown
	case v == 1:
		return ColorSpaceSRGB
	default:
		return ColorSpaceUncalibrated
	}
}

// Decode reads an image from r including all animation frames if it is an
// animated GIF or PNG.
func Decode(r io.Reader) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	cfg, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, ErrUnsupportedFormat
		}
		return nil, err
	}
	ans := &Image{Width: cfg.Width, Height: cfg.Height, Format: format_from_decoder(name)}
	switch ans.Format {
	case GIF:
		g, err := gif.DecodeAll(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		ans.populate_from_gif(g)
	case PNG:
		p, err := apng.DecodeAll(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		ans.populate_from_apng(&p)
	default:
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		ans.Frames = append(ans.Frames, &Frame{Number: 1, Image: img})
		if ans.Format == JPEG || ans.Format == TIFF {
			ans.ColorSpace = exif_color_space(data)
		}
	}
	if len(ans.Frames) == 0 {
		return nil, fmt.Errorf("frames: %s image has no frames", ans.Format)
	}
	return ans, nil
}

// Open loads an image from a file.
func Open(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ans, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return ans, nil
}
