// Package convert is the CPU rendition of the LUT filter. It applies a LUT
// to image.NRGBA frames exactly as the fragment shader applies it to
// textures, and normalises decoded images into that frame type.
package convert

import (
	"errors"
	"fmt"
	"image"

	"github.com/kovidgoyal/gllcms/prism/lut"
)

var _ = fmt.Print

var (
	ErrNotInitialized = errors.New("convert: backend is not initialized")
	ErrFrameSize      = errors.New("convert: input and output frames differ in size")
	ErrNoLUT          = errors.New("convert: no LUT has been uploaded")
)

// CPUBackend renders frames on the CPU. The zero value is ready for use.
type CPUBackend struct {
	initialized bool
	lut         *lut.LUT
	uploads     int
}

// EnsureInitialized marks the backend ready. The CPU needs no rendering
// context so provider is ignored.
func (c *CPUBackend) EnsureInitialized(provider any) error {
	c.initialized = true
	return nil
}

// Upload makes l the active LUT.
func (c *CPUBackend) Upload(l *lut.LUT) error {
	if !c.initialized {
		return ErrNotInitialized
	}
	c.lut = l
	c.uploads++
	return nil
}

// Uploads returns the number of successful uploads since the last Release.
func (c *CPUBackend) Uploads() int { return c.uploads }

func check_frames(in, out *image.NRGBA) error {
	if in.Rect.Dx() != out.Rect.Dx() || in.Rect.Dy() != out.Rect.Dy() {
		return fmt.Errorf("%w: %v != %v", ErrFrameSize, in.Rect.Size(), out.Rect.Size())
	}
	return nil
}

// Render writes in, looked up through the active LUT, into out. The output
// is opaque.
func (c *CPUBackend) Render(in, out *image.NRGBA) error {
	if !c.initialized {
		return ErrNotInitialized
	}
	if c.lut == nil {
		return ErrNoLUT
	}
	if err := check_frames(in, out); err != nil {
		return err
	}
	return apply_lut(c.lut, in, out)
}

// Copy writes in into out unchanged.
func (c *CPUBackend) Copy(in, out *image.NRGBA) error {
	if !c.initialized {
		return ErrNotInitialized
	}
	if err := check_frames(in, out); err != nil {
		return err
	}
	w := 4 * in.Rect.Dx()
	for y := range in.Rect.Dy() {
		copy(out.Pix[y*out.Stride:y*out.Stride+w], in.Pix[y*in.Stride:])
	}
	return nil
}

func (c *CPUBackend) Release() {
	*c = CPUBackend{}
}
