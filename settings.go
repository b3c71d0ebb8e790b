package gllcms

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/kovidgoyal/gllcms/prism/meta/icc"
)

// Settings is a complete set of user parameters. It is a comparable value;
// two snapshots describe the same table exactly when they are ==.
type Settings struct {
	// Path to an ICC profile describing the input. Empty for none.
	ICCProfilePath string
	// Added to L*
	Brightness float64
	// L* is scaled around 50 by this factor
	Contrast float64
	// Rotation of the hue angle in degrees
	Hue float64
	// Added to the chroma
	Saturation float64
}

// DefaultSettings leave frames unchanged.
func DefaultSettings() Settings {
	return Settings{Contrast: 1}
}

func (s Settings) Validate() error {
	for _, x := range []struct {
		name string
		val  float64
	}{{"brightness", s.Brightness}, {"contrast", s.Contrast}, {"hue", s.Hue}, {"saturation", s.Saturation}} {
		if math.IsNaN(x.val) || math.IsInf(x.val, 0) {
			return fmt.Errorf("%w: %s must be a finite number not %v", ErrInvalidSettings, x.name, x.val)
		}
	}
	return nil
}

// HasAdjustments is true when any of the scalar adjustments differs from
// its default.
func (s Settings) HasAdjustments() bool {
	d := DefaultSettings()
	return s.Brightness != d.Brightness || s.Contrast != d.Contrast || s.Hue != d.Hue || s.Saturation != d.Saturation
}

// IsIdentity is true when s would not change any pixel.
func (s Settings) IsIdentity() bool {
	return s.ICCProfilePath == "" && !s.HasAdjustments()
}

func (s Settings) adjustments() icc.BCHSW {
	return icc.BCHSW{Brightness: s.Brightness, Contrast: s.Contrast, Hue: s.Hue, Saturation: s.Saturation}
}

func (s Settings) String() string {
	return fmt.Sprintf("Settings{icc: %q brightness: %g contrast: %g hue: %g saturation: %g}", s.ICCProfilePath, s.Brightness, s.Contrast, s.Hue, s.Saturation)
}

func (s Settings) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("icc", s.ICCProfilePath),
		slog.Float64("brightness", s.Brightness),
		slog.Float64("contrast", s.Contrast),
		slog.Float64("hue", s.Hue),
		slog.Float64("saturation", s.Saturation),
	)
}
