// Package colorconv has the handful of colorimetric conversions the color
// engine needs: CIE L*a*b* and XYZ relative to the D50 profile connection
// space white, the cylindrical LCh form of L*a*b* and gamma encoded sRGB.
// sRGB is defined relative to D65, the conversions adapt between the two
// whites with the Bradford method.
package colorconv

import (
	"math"

	"github.com/kovidgoyal/gllcms/prism/srgb"
)

type Vec3 [3]float64
type Mat3 [3][3]float64

func (m Mat3) Mul(o Mat3) (ans Mat3) {
	for i := range 3 {
		for j := range 3 {
			ans[i][j] = m[i][0]*o[0][j] + m[i][1]*o[1][j] + m[i][2]*o[2][j]
		}
	}
	return
}

func (m Mat3) Apply(v Vec3) Vec3 {
	return Vec3{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

// Reference whites with Y = 1. The D50 Z is the ICC value, not the CIE one.
var (
	whiteD50 = Vec3{0.96422, 1.00000, 0.82491}
	whiteD65 = Vec3{0.95047, 1.00000, 1.08883}
)

var (
	bradfordCone = Mat3{
		{0.8951, 0.2664, -0.1614},
		{-0.7502, 1.7135, 0.0367},
		{0.0389, -0.0685, 1.0296},
	}
	bradfordConeInverse = Mat3{
		{0.9869929, -0.1470543, 0.1599627},
		{0.4323053, 0.5183603, 0.0492912},
		{-0.0085287, 0.0400428, 0.9684867},
	}
	// linear sRGB <-> XYZ, both relative to D65
	xyzToLinear = Mat3{
		{3.2406, -1.5372, -0.4986},
		{-0.9689, 1.8758, 0.0415},
		{0.0557, -0.2040, 1.0570},
	}
	linearToXYZ = Mat3{
		{0.4124, 0.3576, 0.1805},
		{0.2126, 0.7152, 0.0722},
		{0.0193, 0.1192, 0.9505},
	}
)

// adaptation returns the Bradford matrix taking XYZ relative to from into
// XYZ relative to to
func adaptation(from, to Vec3) Mat3 {
	s, d := bradfordCone.Apply(from), bradfordCone.Apply(to)
	scale := Mat3{{d[0] / s[0]}, {1: d[1] / s[1]}, {2: d[2] / s[2]}}
	return bradfordConeInverse.Mul(scale.Mul(bradfordCone))
}

var (
	d50ToLinearSRGB = xyzToLinear.Mul(adaptation(whiteD50, whiteD65))
	linearSRGBToD50 = adaptation(whiteD65, whiteD50).Mul(linearToXYZ)
)

// D50 returns the reference white used by the Lab conversions
func D50() (X, Y, Z float64) { return whiteD50[0], whiteD50[1], whiteD50[2] }

// LabToSRGB converts D50 Lab to gamma encoded sRGB, clipping out of gamut
// values to [0,1].
func LabToSRGB(L, a, b float64) (r, g, bl float64) {
	X, Y, Z := LabToXYZ_D50(L, a, b)
	lin := d50ToLinearSRGB.Apply(Vec3{X, Y, Z})
	enc := func(v float64) float64 { return max(0, min(srgb.LinearToEncoded(v), 1)) }
	return enc(lin[0]), enc(lin[1]), enc(lin[2])
}

// SRGBToLab converts gamma encoded sRGB in [0,1] to D50 Lab
func SRGBToLab(r, g, b float64) (L, a, bl float64) {
	v := linearSRGBToD50.Apply(Vec3{srgb.EncodedToLinear(r), srgb.EncodedToLinear(g), srgb.EncodedToLinear(b)})
	return XYZToLab_D50(v[0], v[1], v[2])
}

const (
	labEpsilon = 6.0 / 29.0
	labKappa   = 3 * labEpsilon * labEpsilon
)

func labF(t float64) float64 {
	if t > labEpsilon*labEpsilon*labEpsilon {
		return math.Cbrt(t)
	}
	return t/labKappa + 4.0/29.0
}

func labFInverse(t float64) float64 {
	if t > labEpsilon {
		return t * t * t
	}
	return labKappa * (t - 4.0/29.0)
}

// LabToXYZ_D50 converts D50 Lab to XYZ relative to the D50 white (Y=1).
func LabToXYZ_D50(L, a, b float64) (X, Y, Z float64) {
	fy := (L + 16) / 116
	return labFInverse(fy+a/500) * whiteD50[0], labFInverse(fy) * whiteD50[1], labFInverse(fy-b/200) * whiteD50[2]
}

// XYZToLab_D50 is the inverse of LabToXYZ_D50.
func XYZToLab_D50(X, Y, Z float64) (L, a, b float64) {
	fx, fy, fz := labF(X/whiteD50[0]), labF(Y/whiteD50[1]), labF(Z/whiteD50[2])
	return 116*fy - 16, 500 * (fx - fy), 200 * (fy - fz)
}

// LabToLCh converts CIELAB to its cylindrical form. The hue angle is in
// degrees in [0, 360).
func LabToLCh(L, a, b float64) (l, c, h float64) {
	h = math.Atan2(b, a) * 180 / math.Pi
	if h < 0 {
		h += 360
	}
	return L, math.Hypot(a, b), h
}

// LChToLab is the inverse of LabToLCh
func LChToLab(L, c, h float64) (l, a, b float64) {
	s, co := math.Sincos(h * math.Pi / 180)
	return L, c * co, c * s
}
