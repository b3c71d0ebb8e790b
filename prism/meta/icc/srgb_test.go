package icc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSRGBProfile(t *testing.T) {
	p := SRGBProfile()
	assert.Same(t, p, SRGBProfile())
	d, err := p.Description()
	require.NoError(t, err)
	assert.Equal(t, SRGBDescription, d)
	require.NoError(t, p.check_supported())

	curves, err := p.rgb_curves()
	require.NoError(t, err)
	for _, c := range curves {
		assert.True(t, all_srgb(c), "%s", c)
		in_delta(t, srgb_curve().Transform(0.5), c.Transform(0.5), 1e-4)
	}
	wtpt, err := p.TagTable.load_xyz(MediaWhitePointTagSignature)
	require.NoError(t, err)
	in_delta_rgb(t, rgb(D50.X, D50.Y, D50.Z), rgb(wtpt.X, wtpt.Y, wtpt.Z), 1e-4)

	fwd, err := p.device_to_pcs(PerceptualRenderingIntent)
	require.NoError(t, err)
	x, y, z := fwd.Transform(1, 1, 1)
	// the colorants sum to the D50 white point
	in_delta_rgb(t, rgb(D50.X, D50.Y, D50.Z), rgb(x, y, z), 1e-3)
	inv, err := p.pcs_to_device(PerceptualRenderingIntent)
	require.NoError(t, err)
	for _, c := range [][3]unit_float{{0, 0, 0}, {1, 1, 1}, {0.2, 0.5, 0.8}} {
		r, g, b := inv.Transform(fwd.Transform(c[0], c[1], c[2]))
		in_delta_rgb(t, c, rgb(r, g, b), 1e-6)
	}
}
