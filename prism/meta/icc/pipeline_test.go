package icc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineCoalescesMatrices(t *testing.T) {
	a := &Matrix3{{1, 2, 0}, {0, 1, 0}, {0, 0, 3}}
	b := &Matrix3{{0, 1, 0}, {1, 0, 0}, {0, 0, 1}}
	p := NewPipeline()
	p.Append(a, b)
	require.Equal(t, 1, p.Len())
	r, g, bl := p.Transform(1, 2, 3)
	// a gives (5, 2, 9) then b swaps the first two channels
	in_delta_rgb(t, rgb(2, 5, 9), rgb(r, g, bl), 1e-12)
}

func TestPipelineSkipsNoops(t *testing.T) {
	id := IdentityMatrix(0)
	var missing *Matrix3
	p := NewPipeline()
	p.Append(nil, &id, missing, pcs_conversion(ColorSpaceLab, ColorSpaceLab))
	assert.Equal(t, 0, p.Len())
	r, g, b := p.Transform(0.1, 0.2, 0.3)
	in_delta_rgb(t, rgb(0.1, 0.2, 0.3), rgb(r, g, b), 0)
}

func TestPipelineFlattens(t *testing.T) {
	inner := NewPipeline()
	inner.Append(&Matrix3{{2, 0, 0}, {0, 2, 0}, {0, 0, 2}}, NewClampPCS(ColorSpaceXYZ))
	offset := &MatrixWithOffset{m: Matrix3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}, offset1: -1}
	p := NewPipeline()
	p.Append(offset, inner)
	// matrices with offsets are never merged
	require.Equal(t, 3, p.Len())
	r, g, b := p.Transform(0.25, 0.5, 1)
	in_delta_rgb(t, rgb(0, 1, 2), rgb(r, g, b), 1e-12)
	assert.Contains(t, p.String(), "ClampPCS")

	first := p.pop_first()
	assert.Same(t, offset, first)
	last := p.pop_last()
	assert.IsType(t, &ClampPCS{}, last)
	require.Equal(t, 1, p.Len())
	r, g, b = p.Transform(1, 1, 1)
	in_delta_rgb(t, rgb(2, 2, 2), rgb(r, g, b), 1e-12)
	p.pop_last()
	assert.Nil(t, p.pop_last())
	assert.Nil(t, p.pop_first())
}

func TestPCSConversions(t *testing.T) {
	t.Run("LabEncoding", func(t *testing.T) {
		enc, dec := NewPCSEncoder(ColorSpaceLab, false), NewPCSDecoder(ColorSpaceLab, false)
		l, a, b := dec.Transform(1, 128./255, 0)
		in_delta_rgb(t, rgb(100, 0, -128), rgb(l, a, b), 1e-9)
		r, g, bl := enc.Transform(50, -128, 127)
		in_delta_rgb(t, rgb(0.5, 0, 1), rgb(r, g, bl), 1e-9)
	})
	t.Run("LegacyLab", func(t *testing.T) {
		dec := NewPCSDecoder(ColorSpaceLab, true)
		l, _, _ := dec.Transform(0xff00/65535., 0, 0)
		in_delta(t, 100, l, 1e-9)
		// legacy only applies to Lab
		assert.False(t, NewPCSDecoder(ColorSpaceXYZ, true).legacy)
	})
	t.Run("XYZEncoding", func(t *testing.T) {
		dec := NewPCSDecoder(ColorSpaceXYZ, false)
		x, _, _ := dec.Transform(0x8000/65535., 0, 0)
		in_delta(t, 1, x, 1e-9)
		enc := NewPCSEncoder(ColorSpaceXYZ, false)
		x, _, _ = enc.Transform(dec.Transform(0.3, 0.3, 0.3))
		in_delta(t, 0.3, x, 1e-12)
	})
	t.Run("LabXYZ", func(t *testing.T) {
		to_lab, to_xyz := pcs_conversion(ColorSpaceXYZ, ColorSpaceLab), pcs_conversion(ColorSpaceLab, ColorSpaceXYZ)
		l, a, b := to_lab.Transform(D50.X, D50.Y, D50.Z)
		in_delta_rgb(t, rgb(100, 0, 0), rgb(l, a, b), 0.01)
		x, y, z := to_xyz.Transform(to_lab.Transform(0.2, 0.3, 0.4))
		in_delta_rgb(t, rgb(0.2, 0.3, 0.4), rgb(x, y, z), 1e-9)
	})
	t.Run("Clamp", func(t *testing.T) {
		l, a, b := NewClampPCS(ColorSpaceLab).Transform(-1, -20, -30)
		in_delta_rgb(t, rgb(0, -20, -30), rgb(l, a, b), 0)
		x, y, z := NewClampPCS(ColorSpaceXYZ).Transform(-1, 0.5, -0.1)
		in_delta_rgb(t, rgb(0, 0.5, 0), rgb(x, y, z), 0)
	})
}
