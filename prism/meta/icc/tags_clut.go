package icc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// CLUT3D is a three input, three output color lookup table with samples
// normalized to [0, 1]
type CLUT3D struct {
	d         *interpolation_data
	trilinear bool
}

var _ ChannelTransformer = (*CLUT3D)(nil)

func (c *CLUT3D) Samples() []unit_float { return c.d.samples }
func (c *CLUT3D) GridPoints() [3]int     { return c.d.grid_points }

func (c *CLUT3D) String() string {
	return fmt.Sprintf("CLUT3D{grid:%v trilinear:%v values[:9]:%v}", c.d.grid_points, c.trilinear, c.d.samples[:min(9, len(c.d.samples))])
}

func (c *CLUT3D) Iter(f func(ChannelTransformer) bool) { f(c) }

func (c *CLUT3D) Transform(r, g, b unit_float) (unit_float, unit_float, unit_float) {
	if c.trilinear {
		return c.d.trilinear_interpolation(r, g, b)
	}
	return c.d.tetrahedral_interpolation(r, g, b)
}

// with_trilinear returns a copy of this table that uses trilinear
// interpolation, used for tables indexed by Lab values.
func (c *CLUT3D) with_trilinear() *CLUT3D {
	return &CLUT3D{d: c.d, trilinear: true}
}

func expectedValues(grid_points [3]int) int {
	return grid_points[0] * grid_points[1] * grid_points[2] * 3
}

func decode_clut_table(raw []byte, bytes_per_channel int, grid_points [3]int) ([]unit_float, error) {
	n := expectedValues(grid_points)
	if len(raw) < n*bytes_per_channel {
		return nil, fmt.Errorf("CLUT unexpected body length %d < %d", len(raw), n*bytes_per_channel)
	}
	ans := make([]unit_float, n)
	switch bytes_per_channel {
	case 1:
		for i := range ans {
			ans[i] = unit_float(raw[i]) / math.MaxUint8
		}
	case 2:
		for i := range ans {
			ans[i] = unit_float(binary.BigEndian.Uint16(raw[2*i:])) / math.MaxUint16
		}
	default:
		return nil, fmt.Errorf("CLUT has invalid precision: %d", bytes_per_channel)
	}
	return ans, nil
}

func check_grid_points(grid_points [3]int) error {
	for i, n := range grid_points {
		if n < 2 {
			return fmt.Errorf("CLUT input channel %d has invalid grid points: %d", i, n)
		}
	}
	return nil
}

// section 10.12.3 (CLUT) in ICC.1-2202-05.pdf
func embeddedClutDecoder(raw []byte, input_channels, output_channels int) (*CLUT3D, error) {
	if len(raw) < 20 {
		return nil, errors.New("clut tag too short")
	}
	if input_channels != 3 || output_channels != 3 {
		return nil, fmt.Errorf("%w: CLUT with %d inputs and %d outputs", ErrUnsupportedProfile, input_channels, output_channels)
	}
	grid_points := [3]int{int(raw[0]), int(raw[1]), int(raw[2])}
	if err := check_grid_points(grid_points); err != nil {
		return nil, err
	}
	values, err := decode_clut_table(raw[20:], int(raw[16]), grid_points)
	if err != nil {
		return nil, err
	}
	return &CLUT3D{d: make_interpolation_data(grid_points, values)}, nil
}

// Encodes a CLUT with 16-bit precision, samples are clamped to [0, 1]
func encode_clut16(grid_points [3]int, samples []unit_float) []byte {
	ans := make([]byte, 20, 20+2*len(samples))
	ans[0], ans[1], ans[2] = uint8(grid_points[0]), uint8(grid_points[1]), uint8(grid_points[2])
	ans[16] = 2
	for _, x := range samples {
		ans = binary.BigEndian.AppendUint16(ans, uint16(math.Round(clamp01(x)*math.MaxUint16)))
	}
	return ans
}
