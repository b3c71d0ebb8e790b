package icc

import (
	"fmt"
)

var _ = fmt.Print

// Grid data for a three dimensional lookup table. The first input channel
// varies least rapidly.
type interpolation_data struct {
	grid_points          [3]int
	stride_r, stride_g   int
	max_r, max_g, max_b  unit_float
	samples              []unit_float
}

func make_interpolation_data(grid_points [3]int, samples []unit_float) *interpolation_data {
	return &interpolation_data{
		grid_points: grid_points,
		stride_r:    grid_points[1] * grid_points[2] * 3,
		stride_g:    grid_points[2] * 3,
		max_r:       unit_float(grid_points[0] - 1),
		max_g:       unit_float(grid_points[1] - 1),
		max_b:       unit_float(grid_points[2] - 1),
		samples:     samples,
	}
}

// Split a normalized input into the lower grid index, the offset to the
// next grid node and the fractional position between them.
func grid_position(v, max_idx unit_float, stride int) (base, next int, frac unit_float) {
	pos := clamp01(v) * max_idx
	lo := int(pos)
	frac = pos - unit_float(lo)
	if unit_float(lo) >= max_idx {
		return lo * stride, 0, 0
	}
	return lo * stride, stride, frac
}

// Tetrahedral interpolation, splitting each grid cube into six tetrahedra
// along its main diagonal.
func (d *interpolation_data) tetrahedral_interpolation(r, g, b unit_float) (unit_float, unit_float, unit_float) {
	x0, dx, rx := grid_position(r, d.max_r, d.stride_r)
	y0, dy, ry := grid_position(g, d.max_g, d.stride_g)
	z0, dz, rz := grid_position(b, d.max_b, 3)
	s := d.samples
	base := x0 + y0 + z0
	var out [3]unit_float
	for i := range 3 {
		at := func(x, y, z int) unit_float { return s[base+x+y+z+i] }
		c0 := at(0, 0, 0)
		var c1, c2, c3 unit_float
		switch {
		case rx >= ry && ry >= rz:
			c1 = at(dx, 0, 0) - c0
			c2 = at(dx, dy, 0) - at(dx, 0, 0)
			c3 = at(dx, dy, dz) - at(dx, dy, 0)
		case rx >= rz && rz >= ry:
			c1 = at(dx, 0, 0) - c0
			c2 = at(dx, dy, dz) - at(dx, 0, dz)
			c3 = at(dx, 0, dz) - at(dx, 0, 0)
		case rz >= rx && rx >= ry:
			c1 = at(dx, 0, dz) - at(0, 0, dz)
			c2 = at(dx, dy, dz) - at(dx, 0, dz)
			c3 = at(0, 0, dz) - c0
		case ry >= rx && rx >= rz:
			c1 = at(dx, dy, 0) - at(0, dy, 0)
			c2 = at(0, dy, 0) - c0
			c3 = at(dx, dy, dz) - at(dx, dy, 0)
		case ry >= rz && rz >= rx:
			c1 = at(dx, dy, dz) - at(0, dy, dz)
			c2 = at(0, dy, 0) - c0
			c3 = at(0, dy, dz) - at(0, dy, 0)
		default: // rz >= ry >= rx
			c1 = at(dx, dy, dz) - at(0, dy, dz)
			c2 = at(0, dy, dz) - at(0, 0, dz)
			c3 = at(0, 0, dz) - c0
		}
		out[i] = c0 + c1*rx + c2*ry + c3*rz
	}
	return out[0], out[1], out[2]
}

// Trilinear interpolation, a weighted average of the eight corners of the
// enclosing grid cube.
func (d *interpolation_data) trilinear_interpolation(r, g, b unit_float) (unit_float, unit_float, unit_float) {
	x0, dx, rx := grid_position(r, d.max_r, d.stride_r)
	y0, dy, ry := grid_position(g, d.max_g, d.stride_g)
	z0, dz, rz := grid_position(b, d.max_b, 3)
	s := d.samples
	base := x0 + y0 + z0
	lerp := func(a, b, t unit_float) unit_float { return a + (b-a)*t }
	var out [3]unit_float
	for i := range 3 {
		at := func(x, y, z int) unit_float { return s[base+x+y+z+i] }
		c00 := lerp(at(0, 0, 0), at(0, 0, dz), rz)
		c01 := lerp(at(0, dy, 0), at(0, dy, dz), rz)
		c10 := lerp(at(dx, 0, 0), at(dx, 0, dz), rz)
		c11 := lerp(at(dx, dy, 0), at(dx, dy, dz), rz)
		out[i] = lerp(lerp(c00, c01, ry), lerp(c10, c11, ry), rx)
	}
	return out[0], out[1], out[2]
}
