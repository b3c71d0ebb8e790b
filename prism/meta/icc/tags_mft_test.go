package icc

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mft_layout struct {
	is8bit       bool
	matrix       [9]unit_float
	in_channels  int
	grid         int
	input, out   func(unit_float) unit_float
	table_size   int
	clut_samples []unit_float
}

func ramp(x unit_float) unit_float { return x }

func (s mft_layout) bytes() []byte {
	var buf bytes.Buffer
	buf.WriteString(IfElse(s.is8bit, "mft1", "mft2"))
	buf.Write(make([]byte, 4))
	buf.Write([]byte{uint8(s.in_channels), 3, uint8(s.grid), 0})
	for _, x := range s.matrix {
		buf.Write(encodeS15Fixed16BE(x))
	}
	write := func(x unit_float) {
		if s.is8bit {
			buf.WriteByte(uint8(math.Round(clamp01(x) * math.MaxUint8)))
		} else {
			_ = binary.Write(&buf, binary.BigEndian, uint16(math.Round(clamp01(x)*math.MaxUint16)))
		}
	}
	n := 256
	if !s.is8bit {
		n = s.table_size
		_ = binary.Write(&buf, binary.BigEndian, [2]uint16{uint16(n), uint16(n)})
	}
	curves := func(f func(unit_float) unit_float) {
		for range 3 {
			for i := range n {
				write(f(unit_float(i) / unit_float(n-1)))
			}
		}
	}
	curves(s.input)
	for _, x := range s.clut_samples {
		write(x)
	}
	curves(s.out)
	return buf.Bytes()
}

var identity3 = [9]unit_float{1, 0, 0, 0, 1, 0, 0, 0, 1}

func TestMFTDecoder(t *testing.T) {
	t.Run("mft1", func(t *testing.T) {
		layout := mft_layout{is8bit: true, matrix: identity3, in_channels: 3, grid: 2, input: ramp, out: ramp, clut_samples: identity_clut([3]int{2, 2, 2})}
		v, err := decode_mft8(layout.bytes())
		require.NoError(t, err)
		m := v.(*MFT)
		assert.False(t, m.legacy_lab())
		// 256 entry ramps are sampled curves, not identities
		assert.Len(t, collect(m), 3)
		for _, p := range [][3]unit_float{{0, 0, 0}, {1, 1, 1}, {0.2, 0.4, 0.6}, {0.9, 0.1, 0.5}} {
			r, g, b := m.Transform(p[0], p[1], p[2])
			in_delta_rgb(t, p, rgb(r, g, b), 1e-6)
		}
	})
	t.Run("mft2", func(t *testing.T) {
		layout := mft_layout{matrix: identity3, in_channels: 3, grid: 2, input: ramp, out: ramp, table_size: 2, clut_samples: identity_clut([3]int{2, 2, 2})}
		v, err := decode_mft16(layout.bytes())
		require.NoError(t, err)
		m := v.(*MFT)
		assert.True(t, m.legacy_lab())
		stages := collect(m)
		require.Len(t, stages, 1)
		assert.IsType(t, &CLUT3D{}, stages[0])
		r, g, b := m.Transform(0.25, 0.5, 0.75)
		in_delta_rgb(t, rgb(0.25, 0.5, 0.75), rgb(r, g, b), 1e-4)
	})
	t.Run("MatrixComesFirst", func(t *testing.T) {
		layout := mft_layout{matrix: [9]unit_float{0.5, 0, 0, 0, 0.5, 0, 0, 0, 0.5}, in_channels: 3, grid: 2, input: ramp, out: ramp, table_size: 2, clut_samples: identity_clut([3]int{2, 2, 2})}
		v, err := decode_mft16(layout.bytes())
		require.NoError(t, err)
		m := v.(*MFT)
		stages := collect(m)
		require.Len(t, stages, 2)
		assert.IsType(t, &Matrix3{}, stages[0])
		r, g, b := m.Transform(1, 0.5, 0)
		in_delta_rgb(t, rgb(0.5, 0.25, 0), rgb(r, g, b), 1e-4)
	})
	t.Run("CurvesApplied", func(t *testing.T) {
		square := func(x unit_float) unit_float { return x * x }
		layout := mft_layout{matrix: identity3, in_channels: 3, grid: 2, input: square, out: ramp, table_size: 1024, clut_samples: identity_clut([3]int{2, 2, 2})}
		v, err := decode_mft16(layout.bytes())
		require.NoError(t, err)
		r, g, b := v.(*MFT).Transform(0.5, 0.1, 0.9)
		in_delta_rgb(t, rgb(0.25, 0.01, 0.81), rgb(r, g, b), 1e-3)
	})
	t.Run("LabIndexed", func(t *testing.T) {
		layout := mft_layout{matrix: identity3, in_channels: 3, grid: 2, input: ramp, out: ramp, table_size: 2, clut_samples: identity_clut([3]int{2, 2, 2})}
		v, err := decode_mft16(layout.bytes())
		require.NoError(t, err)
		m := v.(*MFT)
		li := m.lab_indexed().(*MFT)
		assert.True(t, li.clut.trilinear)
		assert.False(t, m.clut.trilinear)
	})
	t.Run("Errors", func(t *testing.T) {
		_, err := decode_mft8(make([]byte, 40))
		assert.ErrorContains(t, err, "mft tag too short")
		layout := mft_layout{is8bit: true, matrix: identity3, in_channels: 4, grid: 2, input: ramp, out: ramp, clut_samples: identity_clut([3]int{2, 2, 2})}
		_, err = decode_mft8(layout.bytes())
		assert.ErrorIs(t, err, ErrUnsupportedProfile)
		layout = mft_layout{is8bit: true, matrix: identity3, in_channels: 3, grid: 1, input: ramp, out: ramp}
		_, err = decode_mft8(layout.bytes())
		assert.ErrorContains(t, err, "invalid number of CLUT grid points")
		layout = mft_layout{is8bit: true, matrix: identity3, in_channels: 3, grid: 3, input: ramp, out: ramp, clut_samples: identity_clut([3]int{2, 2, 2})}
		_, err = decode_mft8(layout.bytes())
		assert.ErrorContains(t, err, "mft tag too short")
		layout = mft_layout{matrix: identity3, in_channels: 3, grid: 2, input: ramp, out: ramp, table_size: 1}
		_, err = decode_mft16(layout.bytes())
		assert.ErrorContains(t, err, "invalid table sizes")
	})
}
