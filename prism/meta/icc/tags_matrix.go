package icc

import (
	"errors"
	"fmt"
	"math"
)

// Matrices with a determinant smaller than this cannot be inverted
const singular_det_tolerance = 1e-8

type Matrix3 [3][3]unit_float
type IdentityMatrix int

type MatrixWithOffset struct {
	m                         Matrix3
	offset1, offset2, offset3 unit_float
}

var _ ChannelTransformer = (*Matrix3)(nil)
var _ ChannelTransformer = (*IdentityMatrix)(nil)
var _ ChannelTransformer = (*MatrixWithOffset)(nil)

func is_identity_matrix(m *Matrix3) bool {
	return m[0][0] == 1 && m[0][1] == 0 && m[0][2] == 0 && m[1][0] == 0 && m[1][1] == 1 && m[1][2] == 0 && m[2][0] == 0 && m[2][1] == 0 && m[2][2] == 1
}

// Decodes a 3x3 matrix optionally followed by a 3 element offset vector, as
// used in mft1/mft2 and lutAtoB/lutBtoA tags.
func embeddedMatrixDecoder(body []byte) (ChannelTransformer, error) {
	if len(body) < 36 {
		return nil, errors.New("matrix too short")
	}
	var m Matrix3
	for i := range 9 {
		m[i/3][i%3] = readS15Fixed16BE(body[i*4 : (i+1)*4])
	}
	body = body[36:]
	if len(body) >= 12 {
		ans := &MatrixWithOffset{m: m, offset1: readS15Fixed16BE(body[:4]), offset2: readS15Fixed16BE(body[4:8]), offset3: readS15Fixed16BE(body[8:12])}
		if ans.offset1 != 0 || ans.offset2 != 0 || ans.offset3 != 0 {
			return ans, nil
		}
	}
	if is_identity_matrix(&m) {
		t := IdentityMatrix(0)
		return &t, nil
	}
	return &m, nil
}

func encode_matrix(m *Matrix3, offset *[3]unit_float) []byte {
	var ans []byte
	for _, row := range m {
		for _, x := range row {
			ans = append(ans, encodeS15Fixed16BE(x)...)
		}
	}
	if offset != nil {
		for _, x := range offset {
			ans = append(ans, encodeS15Fixed16BE(x)...)
		}
	}
	return ans
}

func (m *Matrix3) Transform(r, g, b unit_float) (unit_float, unit_float, unit_float) {
	return m[0][0]*r + m[0][1]*g + m[0][2]*b,
		m[1][0]*r + m[1][1]*g + m[1][2]*b,
		m[2][0]*r + m[2][1]*g + m[2][2]*b
}
func (m *Matrix3) Iter(f func(ChannelTransformer) bool) { f(m) }
func (m *Matrix3) AsMatrix3() *Matrix3                  { return m }
func (m *Matrix3) String() string                       { return fmt.Sprintf("Matrix3{%v}", *m) }

// Multiply returns m × o
func (m *Matrix3) Multiply(o Matrix3) (ans Matrix3) {
	for i := range 3 {
		for j := range 3 {
			for k := range 3 {
				ans[i][j] += m[i][k] * o[k][j]
			}
		}
	}
	return
}

func (m *Matrix3) Equals(o *Matrix3, threshold unit_float) bool {
	for i := range 3 {
		for j := range 3 {
			if math.Abs(m[i][j]-o[i][j]) > threshold {
				return false
			}
		}
	}
	return true
}

func (mat *Matrix3) Inverted() (ans Matrix3, err error) {
	det := mat[0][0]*(mat[1][1]*mat[2][2]-mat[1][2]*mat[2][1]) -
		mat[0][1]*(mat[1][0]*mat[2][2]-mat[1][2]*mat[2][0]) +
		mat[0][2]*(mat[1][0]*mat[2][1]-mat[1][1]*mat[2][0])
	if math.Abs(det) < singular_det_tolerance {
		return ans, fmt.Errorf("matrix is singular and cannot be inverted")
	}
	invDet := 1 / det
	adj := Matrix3{
		{
			mat[1][1]*mat[2][2] - mat[1][2]*mat[2][1],
			mat[0][2]*mat[2][1] - mat[0][1]*mat[2][2],
			mat[0][1]*mat[1][2] - mat[0][2]*mat[1][1],
		},
		{
			mat[1][2]*mat[2][0] - mat[1][0]*mat[2][2],
			mat[0][0]*mat[2][2] - mat[0][2]*mat[2][0],
			mat[0][2]*mat[1][0] - mat[0][0]*mat[1][2],
		},
		{
			mat[1][0]*mat[2][1] - mat[1][1]*mat[2][0],
			mat[0][1]*mat[2][0] - mat[0][0]*mat[2][1],
			mat[0][0]*mat[1][1] - mat[0][1]*mat[1][0],
		},
	}
	for i := range 3 {
		for j := range 3 {
			ans[i][j] = invDet * adj[i][j]
		}
	}
	return
}

func (m *IdentityMatrix) Transform(r, g, b unit_float) (unit_float, unit_float, unit_float) {
	return r, g, b
}
func (m *IdentityMatrix) Iter(f func(ChannelTransformer) bool) { f(m) }
func (m *IdentityMatrix) String() string                       { return "IdentityMatrix" }
func (m *IdentityMatrix) AsMatrix3() *Matrix3 {
	return &Matrix3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

func (m *MatrixWithOffset) Transform(r, g, b unit_float) (unit_float, unit_float, unit_float) {
	r, g, b = m.m.Transform(r, g, b)
	return r + m.offset1, g + m.offset2, b + m.offset3
}
func (m *MatrixWithOffset) Iter(f func(ChannelTransformer) bool) { f(m) }
func (m *MatrixWithOffset) String() string {
	return fmt.Sprintf("MatrixWithOffset{%v %v}", m.m, [3]unit_float{m.offset1, m.offset2, m.offset3})
}
