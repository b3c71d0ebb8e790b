package icc

import (
	"fmt"

	"github.com/kovidgoyal/gllcms/colorconv"
)

var D50 = XYZType{0.9642, 1.0, 0.8249}

// Scale of the legacy 16-bit Lab encoding used by lut16Type tags, where
// 0xff00 rather than 0xffff represents L* = 100
const legacy_lab_scale = 65535. / 65280.

// Scale of the 16-bit XYZ encoding, where 0x8000 represents 1.0
const xyz_scale = 65535. / 32768.

// PCSDecoder converts normalized [0,1] tag values into actual Lab or XYZ
// values
type PCSDecoder struct {
	space  ColorSpace
	legacy bool
}

// PCSEncoder converts actual Lab or XYZ values into the normalized [0,1]
// values used to index tags
type PCSEncoder struct {
	space  ColorSpace
	legacy bool
}

// XYZtoLAB and LABtoXYZ convert between the two connection spaces using the D50 white point
type XYZtoLAB int
type LABtoXYZ int

// ClampPCS removes negative values from connection space colors
type ClampPCS struct {
	space ColorSpace
}

var _ ChannelTransformer = (*PCSDecoder)(nil)
var _ ChannelTransformer = (*PCSEncoder)(nil)
var _ ChannelTransformer = (*XYZtoLAB)(nil)
var _ ChannelTransformer = (*LABtoXYZ)(nil)
var _ ChannelTransformer = (*ClampPCS)(nil)

func NewPCSDecoder(space ColorSpace, legacy bool) *PCSDecoder {
	return &PCSDecoder{space: space, legacy: legacy && space == ColorSpaceLab}
}

func NewPCSEncoder(space ColorSpace, legacy bool) *PCSEncoder {
	return &PCSEncoder{space: space, legacy: legacy && space == ColorSpaceLab}
}

func (n *PCSDecoder) String() string {
	return fmt.Sprintf("PCSDecoder{%s legacy:%v}", n.space, n.legacy)
}
func (n *PCSDecoder) Iter(f func(ChannelTransformer) bool) { f(n) }
func (n *PCSDecoder) Transform(r, g, b unit_float) (unit_float, unit_float, unit_float) {
	if n.space == ColorSpaceXYZ {
		return r * xyz_scale, g * xyz_scale, b * xyz_scale
	}
	if n.legacy {
		r, g, b = r*legacy_lab_scale, g*legacy_lab_scale, b*legacy_lab_scale
	}
	return r * 100, g*255 - 128, b*255 - 128
}

func (n *PCSEncoder) String() string {
	return fmt.Sprintf("PCSEncoder{%s legacy:%v}", n.space, n.legacy)
}
func (n *PCSEncoder) Iter(f func(ChannelTransformer) bool) { f(n) }
func (n *PCSEncoder) Transform(r, g, b unit_float) (unit_float, unit_float, unit_float) {
	if n.space == ColorSpaceXYZ {
		return r / xyz_scale, g / xyz_scale, b / xyz_scale
	}
	r, g, b = r/100, (g+128)/255, (b+128)/255
	if n.legacy {
		r, g, b = r/legacy_lab_scale, g/legacy_lab_scale, b/legacy_lab_scale
	}
	return r, g, b
}

func (n *XYZtoLAB) String() string                        { return "XYZtoLAB" }
func (n *XYZtoLAB) Iter(f func(ChannelTransformer) bool) { f(n) }
func (n *XYZtoLAB) Transform(x, y, z unit_float) (unit_float, unit_float, unit_float) {
	return colorconv.XYZToLab_D50(x, y, z)
}

func (n *LABtoXYZ) String() string                        { return "LABtoXYZ" }
func (n *LABtoXYZ) Iter(f func(ChannelTransformer) bool) { f(n) }
func (n *LABtoXYZ) Transform(l, a, b unit_float) (unit_float, unit_float, unit_float) {
	return colorconv.LabToXYZ_D50(l, a, b)
}

func NewClampPCS(space ColorSpace) *ClampPCS { return &ClampPCS{space: space} }

func (n *ClampPCS) String() string                        { return fmt.Sprintf("ClampPCS{%s}", n.space) }
func (n *ClampPCS) Iter(f func(ChannelTransformer) bool) { f(n) }
func (n *ClampPCS) Transform(x, y, z unit_float) (unit_float, unit_float, unit_float) {
	if n.space == ColorSpaceLab {
		return max(0, x), y, z
	}
	return max(0, x), max(0, y), max(0, z)
}

// pcs_conversion returns the transformer needed to move actual connection
// space values from one space to the other, or nil if none is needed
func pcs_conversion(from, to ColorSpace) ChannelTransformer {
	switch {
	case from == to:
		return nil
	case from == ColorSpaceXYZ && to == ColorSpaceLab:
		x := XYZtoLAB(0)
		return &x
	case from == ColorSpaceLab && to == ColorSpaceXYZ:
		x := LABtoXYZ(0)
		return &x
	}
	return nil
}
