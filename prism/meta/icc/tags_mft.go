package icc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var _ = fmt.Print

// MFT is a decoded lut8Type (mft1) or lut16Type (mft2) tag
type MFT struct {
	matrix                      ChannelTransformer
	input_curves, output_curves *CurveTransformer
	clut                        *CLUT3D
	is8bit                      bool
}

var _ ChannelTransformer = (*MFT)(nil)

func (m *MFT) Transform(r, g, b unit_float) (unit_float, unit_float, unit_float) {
	for t := range m.Iter {
		r, g, b = t.Transform(r, g, b)
	}
	return r, g, b
}

func (m *MFT) Iter(f func(ChannelTransformer) bool) {
	if _, is_identity := m.matrix.(*IdentityMatrix); !is_identity {
		if !f(m.matrix) {
			return
		}
	}
	if !all_identity(m.input_curves.Curves()...) {
		if !f(m.input_curves) {
			return
		}
	}
	if !f(m.clut) {
		return
	}
	if !all_identity(m.output_curves.Curves()...) {
		f(m.output_curves)
	}
}

func (m *MFT) String() string {
	return fmt.Sprintf("%s{ %s }", IfElse(m.is8bit, "mft1", "mft2"), transformers_as_string(collect(m)...))
}

// legacy_lab is true when Lab values in this table use the 16-bit legacy
// encoding where 0xff00 is 100 for L*.
func (m *MFT) legacy_lab() bool { return !m.is8bit }

// lab_indexed returns a copy of this table whose CLUT is evaluated with
// trilinear interpolation
func (m *MFT) lab_indexed() ChannelTransformer {
	ans := *m
	ans.clut = m.clut.with_trilinear()
	return &ans
}

func collect(c ChannelTransformer) (ans []ChannelTransformer) {
	for x := range c.Iter {
		ans = append(ans, x)
	}
	return
}

func load_table(raw []byte, n, bytes_per_entry int) (output []unit_float, leftover []byte, err error) {
	if len(raw) < n*bytes_per_entry {
		return nil, raw, fmt.Errorf("mft tag too short")
	}
	output = make([]unit_float, n)
	for i := range n {
		if bytes_per_entry == 1 {
			output[i] = unit_float(raw[i]) / math.MaxUint8
		} else {
			output[i] = unit_float(binary.BigEndian.Uint16(raw[2*i:])) / math.MaxUint16
		}
	}
	return output, raw[n*bytes_per_entry:], nil
}

func load_curves(raw []byte, entries, bytes_per_entry int) (ans *CurveTransformer, leftover []byte, err error) {
	var curves [3]Curve1D
	for i := range curves {
		var points []unit_float
		if points, raw, err = load_table(raw, entries, bytes_per_entry); err != nil {
			return nil, raw, err
		}
		if entries == 2 && points[0] == 0 && points[1] == 1 {
			c := IdentityCurve(0)
			curves[i] = &c
			continue
		}
		c := &PointsCurve{points: points}
		if err = c.Prepare(); err != nil {
			return nil, raw, err
		}
		curves[i] = c
	}
	return NewCurveTransformer(curves[0], curves[1], curves[2]), raw, nil
}

func decode_mft(raw []byte, is8bit bool) (ans *MFT, err error) {
	if len(raw) < 48 {
		return nil, errors.New("mft tag too short")
	}
	in_channels, out_channels, grid := int(raw[8]), int(raw[9]), int(raw[10])
	if in_channels != 3 || out_channels != 3 {
		return nil, fmt.Errorf("%w: mft tag with %d inputs and %d outputs", ErrUnsupportedProfile, in_channels, out_channels)
	}
	if grid < 2 {
		return nil, fmt.Errorf("mft tag has invalid number of CLUT grid points: %d", grid)
	}
	ans = &MFT{is8bit: is8bit}
	if ans.matrix, err = embeddedMatrixDecoder(raw[12:48]); err != nil {
		return nil, err
	}
	raw = raw[48:]
	bytes_per_entry, input_entries, output_entries := 1, 256, 256
	if !is8bit {
		if len(raw) < 4 {
			return nil, errors.New("mft tag too short")
		}
		bytes_per_entry = 2
		input_entries, output_entries = int(binary.BigEndian.Uint16(raw[:2])), int(binary.BigEndian.Uint16(raw[2:4]))
		raw = raw[4:]
		if input_entries < 2 || output_entries < 2 {
			return nil, fmt.Errorf("mft2 tag has invalid table sizes: %d %d", input_entries, output_entries)
		}
	}
	if ans.input_curves, raw, err = load_curves(raw, input_entries, bytes_per_entry); err != nil {
		return nil, err
	}
	grid_points := [3]int{grid, grid, grid}
	var samples []unit_float
	if samples, raw, err = load_table(raw, expectedValues(grid_points), bytes_per_entry); err != nil {
		return nil, err
	}
	ans.clut = &CLUT3D{d: make_interpolation_data(grid_points, samples)}
	if ans.output_curves, _, err = load_curves(raw, output_entries, bytes_per_entry); err != nil {
		return nil, err
	}
	return ans, nil
}

func decode_mft8(raw []byte) (any, error)  { return decode_mft(raw, true) }
func decode_mft16(raw []byte) (any, error) { return decode_mft(raw, false) }
