package convert

import (
	"fmt"
	"image"
	"image/color"

	"github.com/kovidgoyal/gllcms/prism/lut"
	"github.com/kovidgoyal/go-parallel"
)

var _ = fmt.Print

func unpremultiply8(r, a uint8) uint8 {
	return uint8((uint16(r) * 0xff) / uint16(a))
}

func apply_lut(l *lut.LUT, in, out *image.NRGBA) error {
	width, data := in.Rect.Dx(), l.Data()
	if width == 0 {
		return nil
	}
	f := func(start, limit int) {
		for y := start; y < limit; y++ {
			src := in.Pix[in.Stride*y:]
			dst := out.Pix[out.Stride*y:]
			_, _ = src[4*(width-1)+3], dst[4*(width-1)+3]
			for range width {
				v := data[lut.Index(src[0], src[1], src[2])]
				d := dst[0:4:4]
				d[0], d[1], d[2], d[3] = uint8(v), uint8(v>>8), uint8(v>>16), 0xff
				src, dst = src[4:], dst[4:]
			}
		}
	}
	return parallel.Run_in_parallel_over_range(0, f, 0, in.Rect.Dy())
}

// ToNRGBA returns img as an image.NRGBA with its origin at zero. An image
// that already is one is returned unchanged.
func ToNRGBA(img image.Image) (*image.NRGBA, error) {
	b := img.Bounds()
	if ans, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return ans, nil
	}
	width, height := b.Dx(), b.Dy()
	d := image.NewNRGBA(image.Rect(0, 0, width, height))
	if width == 0 || height == 0 {
		return d, nil
	}
	var f func(start, limit int)
	switch src := img.(type) {
	case *image.NRGBA:
		f = func(start, limit int) {
			for y := start; y < limit; y++ {
				copy(d.Pix[d.Stride*y:d.Stride*(y+1)], src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):])
			}
		}
	case *image.RGBA:
		f = func(start, limit int) {
			for y := start; y < limit; y++ {
				row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
				drow := d.Pix[d.Stride*y:]
				_, _ = row[4*(width-1)+3], drow[4*(width-1)+3]
				for range width {
					s, o := row[0:4:4], drow[0:4:4]
					if a := s[3]; a != 0 {
						o[0], o[1], o[2], o[3] = unpremultiply8(s[0], a), unpremultiply8(s[1], a), unpremultiply8(s[2], a), a
					}
					row, drow = row[4:], drow[4:]
				}
			}
		}
	case *image.Gray:
		f = func(start, limit int) {
			for y := start; y < limit; y++ {
				row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
				drow := d.Pix[d.Stride*y:]
				_, _ = row[width-1], drow[4*(width-1)+3]
				for _, gray := range row[:width] {
					o := drow[0:4:4]
					o[0], o[1], o[2], o[3] = gray, gray, gray, 0xff
					drow = drow[4:]
				}
			}
		}
	case *image.Paletted:
		palette := make([]color.NRGBA, len(src.Palette))
		for i, c := range src.Palette {
			palette[i] = color.NRGBAModel.Convert(c).(color.NRGBA)
		}
		f = func(start, limit int) {
			for y := start; y < limit; y++ {
				row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
				drow := d.Pix[d.Stride*y:]
				for _, idx := range row[:width] {
					var c color.NRGBA
					if int(idx) < len(palette) {
						c = palette[idx]
					}
					o := drow[0:4:4]
					o[0], o[1], o[2], o[3] = c.R, c.G, c.B, c.A
					drow = drow[4:]
				}
			}
		}
	default:
		f = func(start, limit int) {
			for y := start; y < limit; y++ {
				for x := range width {
					d.SetNRGBA(x, y, color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA))
				}
			}
		}
	}
	if err := parallel.Run_in_parallel_over_range(0, f, 0, height); err != nil {
		return nil, err
	}
	return d, nil
}
