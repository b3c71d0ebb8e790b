package icc

import (
	"fmt"
	"math"

	"github.com/kovidgoyal/gllcms/colorconv"
)

// The grid size of a CLUT is stored in a single byte
const MaxGridPoints = math.MaxUint8

// BCHSW holds the parameters of a brightness, contrast, hue and saturation
// adjustment performed in CIE LCh
type BCHSW struct {
	Brightness, Contrast, Hue, Saturation float64
}

func (a BCHSW) String() string {
	return fmt.Sprintf("BCHSW{brightness: %g contrast: %g hue: %g saturation: %g}", a.Brightness, a.Contrast, a.Hue, a.Saturation)
}

// Apply adjusts a single Lab color. Contrast pivots around L* = 50 and
// results are clamped to the range representable in an ICC Lab encoding.
func (a BCHSW) Apply(L, A, B float64) (float64, float64, float64) {
	l, c, h := colorconv.LabToLCh(L, A, B)
	l = (l-50)*a.Contrast + 50 + a.Brightness
	c = max(0, c+a.Saturation)
	h = math.Mod(h+a.Hue, 360)
	if h < 0 {
		h += 360
	}
	l, A, B = colorconv.LChToLab(l, c, h)
	return max(0, min(l, 100)), max(-128, min(A, 127)), max(-128, min(B, 127))
}

// NewBCHSWProfile creates an abstract Lab to Lab profile applying adj,
// sampled on a grid_points^3 grid
func NewBCHSWProfile(grid_points int, adj BCHSW) (*Profile, error) {
	b, err := bchsw_builder(grid_points, adj)
	if err != nil {
		return nil, err
	}
	return b.Profile()
}

// BCHSWProfileData is the serialized form of NewBCHSWProfile
func BCHSWProfileData(grid_points int, adj BCHSW) ([]byte, error) {
	b, err := bchsw_builder(grid_points, adj)
	if err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func bchsw_builder(grid_points int, adj BCHSW) (*ProfileBuilder, error) {
	if grid_points < 2 || grid_points > MaxGridPoints {
		return nil, fmt.Errorf("invalid number of grid points for abstract profile: %d", grid_points)
	}
	for _, v := range []float64{adj.Brightness, adj.Contrast, adj.Hue, adj.Saturation} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("invalid adjustment parameters: %s", adj)
		}
	}
	grid := [3]int{grid_points, grid_points, grid_points}
	samples := make([]unit_float, 0, expectedValues(grid))
	enc := NewPCSEncoder(ColorSpaceLab, false)
	dec := NewPCSDecoder(ColorSpaceLab, false)
	step := 1 / unit_float(grid_points-1)
	for i := range grid_points {
		for j := range grid_points {
			for k := range grid_points {
				L, A, B := dec.Transform(unit_float(i)*step, unit_float(j)*step, unit_float(k)*step)
				r, g, b := enc.Transform(adj.Apply(L, A, B))
				samples = append(samples, r, g, b)
			}
		}
	}
	b := NewProfileBuilder(DeviceClassAbstract, ColorSpaceLab, ColorSpaceLab)
	b.SetDescription("BCHSW abstract profile")
	b.AddTag(MediaWhitePointTagSignature, encode_xyz_tag(D50))
	b.AddTag(AToB0TagSignature, encode_mAB(grid, samples))
	return b, nil
}
