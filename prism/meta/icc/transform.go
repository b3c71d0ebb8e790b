package icc

import (
	"errors"
	"fmt"
	"math"

	"github.com/kovidgoyal/go-parallel"
	"github.com/kovidgoyal/gllcms/prism/srgb"
)

type Flags uint32

const (
	// NoNegatives clamps connection space values after every stage so that
	// no negative XYZ or L* values reach the next profile
	NoNegatives Flags = 1 << iota
	// KeepSequence records the descriptions of the profiles in the chain
	KeepSequence
)

// Transform is a compiled transform from 8-bit RGB in the data color space
// of the first profile of a chain to 8-bit RGB in the data color space of
// the last profile. It is immutable and safe for concurrent use.
type Transform struct {
	pipeline    *Pipeline
	input       [3][256]unit_float
	srgb_output bool
	sequence    []string
	intent      RenderingIntent
	flags       Flags
}

// NewTransform creates a transform between two profiles
func NewTransform(input, output *Profile, intent RenderingIntent) (*Transform, error) {
	return NewMultiProfileTransform([]*Profile{input, output}, intent, 0)
}

func stage_error(i int, p *Profile, err error) error {
	return fmt.Errorf("profile %d (%s) in the chain: %w", i, p, err)
}

// NewMultiProfileTransform creates a transform that chains profiles in
// order. The first profile must be an RGB device profile, the last an RGB
// output profile and any profiles in between are applied in the profile
// connection space.
func NewMultiProfileTransform(profiles []*Profile, intent RenderingIntent, flags Flags) (ans *Transform, err error) {
	if len(profiles) < 2 {
		return nil, fmt.Errorf("a transform needs at least two profiles, got %d", len(profiles))
	}
	first, last := profiles[0], profiles[len(profiles)-1]
	if first.IsAbstract() {
		return nil, stage_error(0, first, fmt.Errorf("%w: an abstract profile cannot start a chain", ErrUnsupportedProfile))
	}
	if last.Header.DataColorSpace != ColorSpaceRGB {
		return nil, stage_error(len(profiles)-1, last, fmt.Errorf("%w: the last profile in a chain must output RGB", ErrUnsupportedProfile))
	}
	ans = &Transform{pipeline: NewPipeline(), intent: intent, flags: flags}
	p := ans.pipeline
	clamp := func(space ColorSpace) {
		if flags&NoNegatives != 0 {
			p.Append(NewClampPCS(space))
		}
	}
	t, err := first.device_to_pcs(intent)
	if err != nil {
		return nil, stage_error(0, first, err)
	}
	p.Append(t)
	current := first.Header.ProfileConnectionSpace
	clamp(current)
	for i, pr := range profiles[1 : len(profiles)-1] {
		if pr.IsAbstract() {
			p.Append(pcs_conversion(current, pr.Header.DataColorSpace))
		} else {
			p.Append(pcs_conversion(current, pr.Header.ProfileConnectionSpace))
			if t, err = pr.pcs_to_device(intent); err != nil {
				return nil, stage_error(i+1, pr, err)
			}
			p.Append(t)
		}
		if t, err = pr.device_to_pcs(intent); err != nil {
			return nil, stage_error(i+1, pr, err)
		}
		p.Append(t)
		current = pr.Header.ProfileConnectionSpace
		clamp(current)
	}
	p.Append(pcs_conversion(current, last.Header.ProfileConnectionSpace))
	if t, err = last.pcs_to_device(intent); err != nil {
		return nil, stage_error(len(profiles)-1, last, err)
	}
	p.Append(t)
	if flags&KeepSequence != 0 {
		for _, pr := range profiles {
			d, err := pr.Description()
			if err != nil {
				d = ""
			}
			ans.sequence = append(ans.sequence, d)
		}
	}
	ans.optimize()
	return ans, nil
}

// optimize replaces a leading per channel curve with lookup tables indexed
// by the 8-bit input and a trailing inverse sRGB curve with a fast encoder
func (t *Transform) optimize() {
	var first Curves
	if c, ok := t.pipeline.first().(*CurveTransformer); ok {
		first = c
		t.pipeline.pop_first()
	}
	for ch := range 3 {
		for i := range 256 {
			v := unit_float(i) / 255
			if first != nil {
				v = first.Curves()[ch].Transform(v)
			}
			t.input[ch][i] = v
		}
	}
	if c, ok := t.pipeline.last().(*InverseCurveTransformer); ok && all_srgb(c.Curves()...) {
		t.srgb_output = true
		t.pipeline.pop_last()
	}
}

// Sequence returns the descriptions of the profiles in the chain when the
// transform was created with KeepSequence
func (t *Transform) Sequence() []string { return t.sequence }

func (t *Transform) String() string {
	return fmt.Sprintf("Transform{intent: %s srgb_output: %v pipeline: %s}", t.intent, t.srgb_output, t.pipeline)
}

func to_8bit(v unit_float) uint8 {
	if !(v > 0) {
		return 0
	}
	return uint8(math.Round(min(v, 1) * 255))
}

// TransformRGB8 transforms a single color
func (t *Transform) TransformRGB8(r, g, b uint8) (uint8, uint8, uint8) {
	fr, fg, fb := t.pipeline.Transform(t.input[0][r], t.input[1][g], t.input[2][b])
	if t.srgb_output {
		return srgb.To8Bit(fr), srgb.To8Bit(fg), srgb.To8Bit(fb)
	}
	return to_8bit(fr), to_8bit(fg), to_8bit(fb)
}

// TransformInPlace transforms packed little-endian RGBA pixels, each stored
// as r | g<<8 | b<<16 | a<<24. The input alpha is ignored and the output
// alpha is opaque. The work is split across all available cores.
func (t *Transform) TransformInPlace(data []uint32) error {
	if len(data) == 0 {
		return nil
	}
	f := func(start, limit int) {
		for i, px := range data[start:limit] {
			r, g, b := t.TransformRGB8(uint8(px), uint8(px>>8), uint8(px>>16))
			data[start+i] = uint32(r) | uint32(g)<<8 | uint32(b)<<16 | 0xff<<24
		}
	}
	if err := parallel.Run_in_parallel_over_range(0, f, 0, len(data)); err != nil {
		return errors.Join(errors.New("failed to transform pixels"), err)
	}
	return nil
}
