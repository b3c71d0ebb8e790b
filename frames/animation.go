package frames

import (
	"image"
	"image/draw"
	"math"
	"time"

	"github.com/kettek/apng"
)

func clone_nrgba(img *image.NRGBA) *image.NRGBA {
	ans := image.NewNRGBA(img.Rect)
	copy(ans.Pix, img.Pix)
	return ans
}

// Coalesce replaces every frame with a full canvas snapshot of the
// animation at that instant. All frames become *image.NRGBA of the image
// size with their origin at zero.
func (self *Image) Coalesce() {
	canvas_rect := image.Rect(0, 0, self.Width, self.Height)
	coalesced := make([]*image.NRGBA, len(self.Frames))
	for i, f := range self.Frames {
		var canvas *image.NRGBA
		if f.ComposeOnto == 0 || int(f.ComposeOnto) > i {
			canvas = image.NewNRGBA(canvas_rect)
		} else {
			canvas = clone_nrgba(coalesced[f.ComposeOnto-1])
		}
		b := f.Image.Bounds()
		op := draw.Over
		if f.Replace {
			op = draw.Src
		}
		draw.Draw(canvas, image.Rect(f.X, f.Y, f.X+b.Dx(), f.Y+b.Dy()), f.Image, b.Min, op)
		coalesced[i] = canvas
	}
	for i, f := range self.Frames {
		f.Image = coalesced[i]
		f.X, f.Y = 0, 0
		f.ComposeOnto = 0
		f.Replace = true
	}
}

// as_fraction finds the best rational approximation of d in seconds with
// a numerator and denominator that fit in an uint16
func as_fraction(d time.Duration) (num, den uint16) {
	if d <= 0 {
		return 0, 1
	}
	val := d.Seconds()
	best_num, best_den := uint16(0), uint16(1)
	best_error := math.Abs(val)

	// continued fraction convergents
	var h, k [3]int64
	h[0], k[0] = 0, 1
	h[1], k[1] = 1, 0
	f := val
	for range 100 {
		a := int64(f)
		h[2] = a*h[1] + h[0]
		k[2] = a*k[1] + k[0]
		if h[2] > math.MaxUint16 || k[2] > math.MaxUint16 {
			break
		}
		cn, cd := uint16(h[2]), uint16(k[2])
		if e := math.Abs(val - float64(cn)/float64(cd)); e < best_error {
			best_error, best_num, best_den = e, cn, cd
		}
		if f-float64(a) == 0 {
			break
		}
		f = 1 / (f - float64(a))
		h[0], h[1] = h[1], h[2]
		k[0], k[1] = k[1], k[2]
	}
	return best_num, best_den
}

// as_apng expects coalesced frames
func (self *Image) as_apng() (ans apng.APNG) {
	ans.LoopCount = self.LoopCount
	if self.DefaultImage != nil {
		ans.Frames = append(ans.Frames, apng.Frame{Image: self.DefaultImage, IsDefault: true})
	}
	for _, f := range self.Frames {
		d := apng.Frame{
			DisposeOp: apng.DISPOSE_OP_NONE, BlendOp: apng.BLEND_OP_SOURCE, XOffset: f.X, YOffset: f.Y, Image: f.Image,
		}
		d.DelayNumerator, d.DelayDenominator = as_fraction(f.Delay)
		ans.Frames = append(ans.Frames, d)
	}
	return
}
