package gllcms

import (
	"fmt"
	"time"

	"github.com/kovidgoyal/gllcms/prism/lut"
	"github.com/kovidgoyal/gllcms/prism/meta/icc"
)

// AbstractGridPoints is the number of samples per axis of the CLUT in the
// adjustment profile.
const AbstractGridPoints = 65

// ProfileChain returns the profiles a transform for s converts through,
// ending with the sRGB output profile. Identity settings give an empty
// chain.
func ProfileChain(s Settings) (ans []*icc.Profile, err error) {
	if err = s.Validate(); err != nil {
		return nil, err
	}
	if s.IsIdentity() {
		return nil, nil
	}
	if s.ICCProfilePath != "" {
		p, err := icc.LoadProfile(s.ICCProfilePath)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrProfile, err)
		}
		ans = append(ans, p)
	}
	if s.HasAdjustments() {
		p, err := icc.NewBCHSWProfile(AbstractGridPoints, s.adjustments())
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
		}
		ans = append(ans, p)
	}
	// frames are RGB, an abstract profile first in line would read them as
	// encoded Lab
	if ans[0].IsAbstract() {
		ans = append([]*icc.Profile{icc.SRGBProfile()}, ans...)
	}
	return append(ans, icc.SRGBProfile()), nil
}

// BuildTransform returns the transform for s, or nil for identity
// settings.
func BuildTransform(s Settings) (*icc.Transform, error) {
	profiles, err := ProfileChain(s)
	if err != nil || len(profiles) == 0 {
		return nil, err
	}
	var t *icc.Transform
	if len(profiles) == 2 {
		t, err = icc.NewTransform(profiles[0], profiles[1], icc.PerceptualRenderingIntent)
	} else {
		t, err = icc.NewMultiProfileTransform(profiles, icc.PerceptualRenderingIntent, icc.NoNegatives|icc.KeepSequence)
	}
	if err != nil {
		return nil, fmt.Errorf("%w for %s: %w", ErrTransform, s, err)
	}
	slogger().Debug("gllcms: built color transform", "settings", s, "profiles", len(profiles), "sequence", t.Sequence())
	return t, nil
}

// Builder materializes the table for non-identity settings.
type Builder func(Settings) (*lut.LUT, error)

// DefaultBuilder builds the ICC transform for s and materializes it.
func DefaultBuilder(s Settings) (*lut.LUT, error) {
	t, err := BuildTransform(s)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: no table is needed for identity settings", ErrTransform)
	}
	start := time.Now()
	l, err := lut.Build(t)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransform, err)
	}
	slogger().Debug("gllcms: materialized LUT", "entries", lut.Size, "took", time.Since(start))
	return l, nil
}
