package colorconv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tableCases = []struct {
	name    string
	L, a, b float64
}{
	{"neutral gray", 50, 0, 0},
	{"vivid warm", 60, 80, 60},
	{"vivid cyan-ish", 75, -70, 70},
	{"light slightly red", 90, 30, 0},
	{"dark saturated green-blue", 20, 80, -60},
	{"very dark saturated", 5, 60, -40},
	{"very bright saturated", 99, -80, 90},
}

func TestLabXYZ_Roundtrip_TableDriven(t *testing.T) {
	for _, tc := range tableCases {
		t.Run(tc.name, func(t *testing.T) {
			X, Y, Z := LabToXYZ_D50(tc.L, tc.a, tc.b)
			L2, a2, b2 := XYZToLab_D50(X, Y, Z)
			assert.InDelta(t, tc.L, L2, 1e-9)
			assert.InDelta(t, tc.a, a2, 1e-8)
			assert.InDelta(t, tc.b, b2, 1e-8)
		})
	}
}

func TestLabLCh_Roundtrip_TableDriven(t *testing.T) {
	for _, tc := range tableCases {
		t.Run(tc.name, func(t *testing.T) {
			L, c, h := LabToLCh(tc.L, tc.a, tc.b)
			assert.Equal(t, tc.L, L)
			assert.GreaterOrEqual(t, h, 0.)
			assert.Less(t, h, 360.)
			assert.InDelta(t, math.Hypot(tc.a, tc.b), c, 1e-12)
			_, a2, b2 := LChToLab(L, c, h)
			assert.InDelta(t, tc.a, a2, 1e-9)
			assert.InDelta(t, tc.b, b2, 1e-9)
		})
	}
}

func TestLChHueAngles(t *testing.T) {
	_, _, h := LabToLCh(50, 0, -10)
	assert.InDelta(t, 270, h, 1e-12)
	_, a, b := LChToLab(50, 10, 90)
	assert.InDelta(t, 0, a, 1e-12)
	assert.InDelta(t, 10, b, 1e-12)
}

func TestWhiteMapsToSRGBWhite(t *testing.T) {
	X, Y, Z := D50()
	L, a, b := XYZToLab_D50(X, Y, Z)
	require.InDelta(t, 100, L, 1e-9)
	r, g, bl := LabToSRGB(L, a, b)
	assert.Greater(t, r, 0.99)
	assert.Greater(t, g, 0.99)
	assert.Greater(t, bl, 0.99)
}

func TestSRGBLab_Roundtrip(t *testing.T) {
	for _, v := range []float64{0.1, 0.25, 0.5, 0.75, 0.9} {
		L, a, b := SRGBToLab(v, v, v)
		assert.InDelta(t, 0, a, 0.05, "gray %v should be neutral", v)
		assert.InDelta(t, 0, b, 0.05, "gray %v should be neutral", v)
		r, g, bl := LabToSRGB(L, a, b)
		assert.InDelta(t, v, r, 2e-3)
		assert.InDelta(t, v, g, 2e-3)
		assert.InDelta(t, v, bl, 2e-3)
	}
	L, _, _ := SRGBToLab(128./255, 128./255, 128./255)
	assert.InDelta(t, 53.585, L, 0.02)
}

func TestOutOfGamutIsClipped(t *testing.T) {
	r, g, b := LabToSRGB(50, 120, 120)
	for _, x := range []float64{r, g, b} {
		assert.GreaterOrEqual(t, x, 0.)
		assert.LessOrEqual(t, x, 1.)
	}
}
