package icc

import (
	"encoding/binary"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// an mBA tag with gamma 2 B curves followed by a matrix halving all values
func mba_bytes() []byte {
	gamma := encode_parametric_curve(SimpleGammaFunction, 2)
	curves := slices.Concat(gamma, gamma, gamma)
	ans := append(LutBtoATypeSignature.bytes(), 0, 0, 0, 0, 3, 3, 0, 0)
	for _, x := range []int{32, 32 + len(curves), 0, 0, 0} {
		ans = binary.BigEndian.AppendUint32(ans, uint32(x))
	}
	ans = append(ans, curves...)
	return append(ans, encode_matrix(&Matrix3{{0.5, 0, 0}, {0, 0.5, 0}, {0, 0, 0.5}}, &[3]unit_float{})...)
}

func TestModularDecoder(t *testing.T) {
	t.Run("mABRoundtrip", func(t *testing.T) {
		grid := [3]int{3, 3, 3}
		v, err := modularDecoder(encode_mAB(grid, identity_clut(grid)))
		require.NoError(t, err)
		m := v.(*ModularTag)
		assert.True(t, m.is_a_to_b)
		require.Len(t, m.transform_objects, 1)
		assert.Equal(t, grid, m.transform_objects[0].(*CLUT3D).GridPoints())
		for _, p := range [][3]unit_float{{0, 0, 0}, {1, 1, 1}, {0.3, 0.6, 0.9}} {
			r, g, b := m.Transform(p[0], p[1], p[2])
			in_delta_rgb(t, p, rgb(r, g, b), 1e-4)
		}
	})
	t.Run("mBA", func(t *testing.T) {
		v, err := modularDecoder(mba_bytes())
		require.NoError(t, err)
		m := v.(*ModularTag)
		assert.False(t, m.is_a_to_b)
		require.Len(t, m.transform_objects, 2)
		assert.IsType(t, &CurveTransformer{}, m.transform_objects[0])
		r, g, b := m.Transform(0.5, 1, 0)
		in_delta_rgb(t, rgb(0.125, 0.5, 0), rgb(r, g, b), 1e-4)
	})
	t.Run("LabIndexed", func(t *testing.T) {
		grid := [3]int{2, 2, 2}
		v, err := modularDecoder(encode_mAB(grid, identity_clut(grid)))
		require.NoError(t, err)
		m := v.(*ModularTag)
		li := m.lab_indexed().(*ModularTag)
		assert.True(t, li.clut.trilinear)
		assert.True(t, li.transform_objects[0].(*CLUT3D).trilinear)
		assert.False(t, m.clut.trilinear)
		// tags without a CLUT are returned as is
		v, err = modularDecoder(mba_bytes())
		require.NoError(t, err)
		assert.Same(t, v, v.(*ModularTag).lab_indexed())
	})
	t.Run("Errors", func(t *testing.T) {
		_, err := modularDecoder(make([]byte, 16))
		assert.ErrorContains(t, err, "too short")

		raw := mba_bytes()
		copy(raw, "mft2")
		_, err = modularDecoder(raw)
		assert.ErrorContains(t, err, "unknown signature")

		raw = mba_bytes()
		raw[8] = 4
		_, err = modularDecoder(raw)
		assert.ErrorIs(t, err, ErrUnsupportedProfile)

		raw = mba_bytes()
		binary.BigEndian.PutUint32(raw[12:], 0)
		_, err = modularDecoder(raw)
		assert.ErrorContains(t, err, "missing its required B curves")

		raw = mba_bytes()
		binary.BigEndian.PutUint32(raw[16:], 10000)
		_, err = modularDecoder(raw)
		assert.ErrorContains(t, err, "out of bounds offset")
	})
}
