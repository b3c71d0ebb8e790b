package icc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
)

// ModularTag represents a modular tag section 10.12 and 10.13 of ICC.1-2202-05.pdf
type ModularTag struct {
	a_curves, m_curves, b_curves *CurveTransformer
	clut                         *CLUT3D
	matrix                       ChannelTransformer
	transform_objects            []ChannelTransformer
	is_a_to_b                    bool
}

var _ ChannelTransformer = (*ModularTag)(nil)

func (m *ModularTag) String() string {
	return fmt.Sprintf("%s{ %s }", IfElse(m.is_a_to_b, "mAB", "mBA"), transformers_as_string(m.transform_objects...))
}

func (m *ModularTag) Transform(r, g, b unit_float) (unit_float, unit_float, unit_float) {
	for _, t := range m.transform_objects {
		r, g, b = t.Transform(r, g, b)
	}
	return r, g, b
}

func (m *ModularTag) Iter(f func(ChannelTransformer) bool) {
	for _, t := range m.transform_objects {
		if !f(t) {
			return
		}
	}
}

func (m *ModularTag) build_transforms() {
	m.transform_objects = nil
	add := func(c ChannelTransformer) {
		if !absent(c) {
			m.transform_objects = append(m.transform_objects, c)
		}
	}
	add_curves := func(c *CurveTransformer) {
		if c != nil && !all_identity(c.Curves()...) {
			m.transform_objects = append(m.transform_objects, c)
		}
	}
	add_curves(m.a_curves)
	if m.clut != nil {
		add(m.clut)
	}
	add_curves(m.m_curves)
	add(m.matrix)
	add_curves(m.b_curves)
	if !m.is_a_to_b {
		slices.Reverse(m.transform_objects)
	}
}

// lab_indexed returns a copy of this tag whose CLUT, if any, is evaluated
// with trilinear interpolation.
func (m *ModularTag) lab_indexed() ChannelTransformer {
	if m.clut == nil {
		return m
	}
	ans := *m
	ans.clut = m.clut.with_trilinear()
	ans.build_transforms()
	return &ans
}

func modularDecoder(raw []byte) (ans any, err error) {
	if len(raw) < 32 {
		return nil, errors.New("modular (mAB/mBA) tag too short")
	}
	is_a_to_b := false
	switch s := Signature(binary.BigEndian.Uint32(raw[:4])); s {
	case LutAtoBTypeSignature:
		is_a_to_b = true
	case LutBtoATypeSignature:
	default:
		return nil, fmt.Errorf("modular tag has unknown signature: %s", s)
	}
	inputCh, outputCh := int(raw[8]), int(raw[9])
	if inputCh != 3 || outputCh != 3 {
		return nil, fmt.Errorf("%w: modular tag with %d inputs and %d outputs", ErrUnsupportedProfile, inputCh, outputCh)
	}
	var offsets [5]uint32
	if _, err := binary.Decode(raw[12:32], binary.BigEndian, offsets[:]); err != nil {
		return nil, err
	}
	b, matrix, m, clut, a := offsets[0], offsets[1], offsets[2], offsets[3], offsets[4]
	block_at := func(offset uint32) ([]byte, error) {
		if int(offset) >= len(raw) {
			return nil, fmt.Errorf("modular (mAB/mBA) tag has out of bounds offset: %d", offset)
		}
		return raw[offset:], nil
	}
	read_curves := func(offset uint32) (*CurveTransformer, error) {
		if offset == 0 {
			return nil, nil
		}
		block, err := block_at(offset)
		if err != nil {
			return nil, err
		}
		var curves [3]Curve1D
		for i := range curves {
			c, consumed, err := embeddedAnyCurveDecoder(block)
			if err != nil {
				return nil, err
			}
			curves[i] = c
			block = block[min(consumed, len(block)):]
		}
		return NewCurveTransformer(curves[0], curves[1], curves[2]), nil
	}
	mt := &ModularTag{is_a_to_b: is_a_to_b}
	if mt.b_curves, err = read_curves(b); err != nil {
		return nil, err
	}
	if mt.b_curves == nil {
		return nil, errors.New("modular (mAB/mBA) tag is missing its required B curves")
	}
	if mt.a_curves, err = read_curves(a); err != nil {
		return nil, err
	}
	if mt.m_curves, err = read_curves(m); err != nil {
		return nil, err
	}
	if clut > 0 {
		block, err := block_at(clut)
		if err != nil {
			return nil, err
		}
		if mt.clut, err = embeddedClutDecoder(block, inputCh, outputCh); err != nil {
			return nil, err
		}
	}
	if matrix > 0 {
		block, err := block_at(matrix)
		if err != nil {
			return nil, err
		}
		if mt.matrix, err = embeddedMatrixDecoder(block); err != nil {
			return nil, err
		}
		if _, is_identity := mt.matrix.(*IdentityMatrix); is_identity {
			mt.matrix = nil
		}
	}
	mt.build_transforms()
	return mt, nil
}

// encode_mAB writes a lutAtoBType tag with identity A, M and B curves around
// a 16-bit CLUT. This is all that is needed for abstract profiles.
func encode_mAB(grid_points [3]int, samples []unit_float) []byte {
	curves := slices.Concat(encode_identity_curve(), encode_identity_curve(), encode_identity_curve())
	const header_size = 32
	b_offset := header_size
	a_offset := b_offset + len(curves)
	clut_offset := a_offset + len(curves)
	ans := append(LutAtoBTypeSignature.bytes(), 0, 0, 0, 0, 3, 3, 0, 0)
	for _, x := range []int{b_offset, 0, 0, clut_offset, a_offset} {
		ans = binary.BigEndian.AppendUint32(ans, uint32(x))
	}
	ans = append(ans, curves...)
	ans = append(ans, curves...)
	return append(ans, encode_clut16(grid_points, samples)...)
}
