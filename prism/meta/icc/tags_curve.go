package icc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Number of samples used to build the inverse of a sampled curve
const reverse_lookup_size = 4096

// Gammas closer to one than this are treated as linear
const unit_gamma_tolerance = 0.0001

type Curve1D interface {
	Transform(x unit_float) unit_float
	InverseTransform(x unit_float) unit_float
	Prepare() error
	String() string
}

type IsSRGB interface {
	IsSRGB() bool
}

type IdentityCurve int

type PointsCurve struct {
	points, reverse_lookup []unit_float
	max_idx, max_rev_idx   unit_float
}

// ParametricCurve is one of the five ICC parametric curve functions. Only
// the parameters the function uses are meaningful.
type ParametricCurve struct {
	fn                  ParametricCurveFunction
	g, a, b, c, d, e, f unit_float

	inv_g, inv_a, inv_c, threshold unit_float
	is_one                         bool
}

var _ Curve1D = (*IdentityCurve)(nil)
var _ Curve1D = (*PointsCurve)(nil)
var _ Curve1D = (*ParametricCurve)(nil)

// CurveTransformer applies one curve per channel
type CurveTransformer struct {
	r, g, b Curve1D
}

// InverseCurveTransformer applies the inverse of one curve per channel
type InverseCurveTransformer struct {
	r, g, b Curve1D
}

var _ ChannelTransformer = (*CurveTransformer)(nil)
var _ ChannelTransformer = (*InverseCurveTransformer)(nil)

func NewCurveTransformer(r, g, b Curve1D) *CurveTransformer {
	return &CurveTransformer{r, g, b}
}

func NewInverseCurveTransformer(r, g, b Curve1D) *InverseCurveTransformer {
	return &InverseCurveTransformer{r, g, b}
}

func (c *CurveTransformer) Transform(r, g, b unit_float) (unit_float, unit_float, unit_float) {
	return c.r.Transform(r), c.g.Transform(g), c.b.Transform(b)
}
func (c *CurveTransformer) Iter(f func(ChannelTransformer) bool) { f(c) }
func (c *CurveTransformer) Curves() []Curve1D                    { return []Curve1D{c.r, c.g, c.b} }
func (c *CurveTransformer) String() string {
	return fmt.Sprintf("Curves{%s, %s, %s}", c.r, c.g, c.b)
}

func (c *InverseCurveTransformer) Transform(r, g, b unit_float) (unit_float, unit_float, unit_float) {
	return c.r.InverseTransform(r), c.g.InverseTransform(g), c.b.InverseTransform(b)
}
func (c *InverseCurveTransformer) Iter(f func(ChannelTransformer) bool) { f(c) }
func (c *InverseCurveTransformer) Curves() []Curve1D                    { return []Curve1D{c.r, c.g, c.b} }
func (c *InverseCurveTransformer) String() string {
	return fmt.Sprintf("InverseCurves{%s, %s, %s}", c.r, c.g, c.b)
}

func all_identity(curves ...Curve1D) bool {
	for _, c := range curves {
		if _, ok := c.(*IdentityCurve); !ok {
			return false
		}
	}
	return true
}

func all_srgb(curves ...Curve1D) bool {
	for _, c := range curves {
		if q, ok := c.(IsSRGB); !ok || !q.IsSRGB() {
			return false
		}
	}
	return true
}

type ParametricCurveFunction uint16

const (
	SimpleGammaFunction     ParametricCurveFunction = 0 // Y = X^g
	ConditionalZeroFunction ParametricCurveFunction = 1 // Y = (aX+b)^g for X >= -b/a, else 0
	ConditionalCFunction    ParametricCurveFunction = 2 // Y = (aX+b)^g + c for X >= -b/a, else c
	SplitFunction           ParametricCurveFunction = 3 // Y = (aX+b)^g for X >= d, else cX
	ComplexFunction         ParametricCurveFunction = 4 // Y = (aX+b)^g + e for X >= d, else cX+f
)

var parametric_param_count = [...]int{1, 3, 4, 5, 7}

var parametric_names = [...]string{"Gamma", "ConditionalZero", "ConditionalC", "Split", "Complex"}

func (f ParametricCurveFunction) String() string {
	if int(f) < len(parametric_names) {
		return parametric_names[f]
	}
	return fmt.Sprintf("ParametricCurveFunction(%d)", int(f))
}

// NewParametricCurve creates a prepared curve from the parameters in the
// order they are serialized: g, a, b, c, d, e, f.
func NewParametricCurve(fn ParametricCurveFunction, params ...unit_float) (*ParametricCurve, error) {
	if int(fn) >= len(parametric_param_count) {
		return nil, fmt.Errorf("unknown parametric function type: %d", fn)
	}
	if n := parametric_param_count[fn]; len(params) != n {
		return nil, fmt.Errorf("%s curve needs %d parameters not %d", fn, n, len(params))
	}
	var p [7]unit_float
	copy(p[:], params)
	ans := &ParametricCurve{fn: fn, g: p[0], a: p[1], b: p[2], c: p[3], d: p[4], e: p[5], f: p[6]}
	if err := ans.Prepare(); err != nil {
		return nil, err
	}
	return ans, nil
}

func gamma_curve(g unit_float) *ParametricCurve {
	return &ParametricCurve{fn: SimpleGammaFunction, g: g}
}

func align_to_4(x int) int {
	if extra := x % 4; extra > 0 {
		x += 4 - extra
	}
	return x
}

func embeddedCurveDecoder(raw []byte) (Curve1D, int, error) {
	if len(raw) < 12 {
		return nil, 0, errors.New("curv tag too short")
	}
	count := int(binary.BigEndian.Uint32(raw[8:12]))
	consumed := align_to_4(12 + count*2)
	switch count {
	case 0:
		c := IdentityCurve(0)
		return &c, consumed, nil
	case 1:
		if len(raw) < 14 {
			return nil, 0, errors.New("curv tag missing gamma value")
		}
		// 8.8 fixed-point
		gamma := unit_float(binary.BigEndian.Uint16(raw[12:14])) / 256
		if gamma == 1 {
			c := IdentityCurve(0)
			return &c, consumed, nil
		}
		c := gamma_curve(gamma)
		if err := c.Prepare(); err != nil {
			return nil, 0, err
		}
		return c, consumed, nil
	default:
		if len(raw) < 12+count*2 {
			return nil, 0, errors.New("curv tag truncated")
		}
		points := make([]unit_float, count)
		for i := range points {
			points[i] = unit_float(binary.BigEndian.Uint16(raw[12+2*i:])) / math.MaxUint16
		}
		c := &PointsCurve{points: points}
		if err := c.Prepare(); err != nil {
			return nil, 0, err
		}
		return c, consumed, nil
	}
}

func curveDecoder(raw []byte) (any, error) {
	ans, _, err := embeddedCurveDecoder(raw)
	return ans, err
}

func embeddedParametricCurveDecoder(raw []byte) (ans Curve1D, consumed int, err error) {
	block_len := len(raw)
	if block_len < 16 {
		return nil, 0, errors.New("para tag too short")
	}
	fn := ParametricCurveFunction(binary.BigEndian.Uint16(raw[8:10]))
	if int(fn) >= len(parametric_param_count) {
		return nil, 0, fmt.Errorf("unknown parametric function type: %d", fn)
	}
	const header_len = 12
	num_params := parametric_param_count[fn]
	if consumed = header_len + 4*num_params; block_len < consumed {
		return nil, 0, errors.New("para tag too short")
	}
	params := make([]unit_float, num_params)
	for i := range params {
		params[i] = readS15Fixed16BE(raw[header_len+4*i:])
	}
	if ans, err = NewParametricCurve(fn, params...); err != nil {
		return nil, 0, err
	}
	return ans, align_to_4(consumed), nil
}

func parametricCurveDecoder(raw []byte) (any, error) {
	ans, _, err := embeddedParametricCurveDecoder(raw)
	return ans, err
}

// decode either a curv or para curve at the start of raw
func embeddedAnyCurveDecoder(raw []byte) (Curve1D, int, error) {
	if len(raw) < 4 {
		return nil, 0, errors.New("curve tag too short")
	}
	switch sig := Signature(binary.BigEndian.Uint32(raw[:4])); sig {
	case CurveTypeSignature:
		return embeddedCurveDecoder(raw)
	case ParametricCurveTypeSignature:
		return embeddedParametricCurveDecoder(raw)
	default:
		return nil, 0, fmt.Errorf("unknown curve type: %s", sig)
	}
}

func encode_identity_curve() []byte {
	return append(CurveTypeSignature.bytes(), make([]byte, 8)...)
}

func encode_parametric_curve(f ParametricCurveFunction, params ...unit_float) []byte {
	ans := append(ParametricCurveTypeSignature.bytes(), make([]byte, 4)...)
	ans = binary.BigEndian.AppendUint16(ans, uint16(f))
	ans = append(ans, 0, 0)
	for _, p := range params {
		ans = append(ans, encodeS15Fixed16BE(p)...)
	}
	return ans
}

func (c IdentityCurve) Transform(x unit_float) unit_float        { return x }
func (c IdentityCurve) InverseTransform(x unit_float) unit_float { return x }
func (c IdentityCurve) Prepare() error                           { return nil }
func (c IdentityCurve) String() string                           { return "IdentityCurve{}" }

func clamp01(v unit_float) unit_float {
	return max(0, min(v, 1))
}

func sampled_value(samples []unit_float, max_idx unit_float, x unit_float) unit_float {
	idx := clamp01(x) * max_idx
	lof := math.Trunc(idx)
	lo := int(lof)
	if lof == idx {
		return samples[lo]
	}
	p := idx - lof
	vlo, vhi := samples[lo], samples[lo+1]
	return vlo + p*(vhi-vlo)
}

func (c *PointsCurve) Prepare() error {
	if len(c.points) < 2 {
		return fmt.Errorf("sampled curve must have at least two points, not %d", len(c.points))
	}
	c.max_idx = unit_float(len(c.points) - 1)
	reverse_lookup := make([]unit_float, max(len(c.points), reverse_lookup_size))
	c.max_rev_idx = unit_float(len(reverse_lookup) - 1)
	for i := range reverse_lookup {
		y := unit_float(i) / c.max_rev_idx
		idx := get_interval(c.points, y)
		if idx < 0 {
			// y is outside the range of the curve, use the nearest end
			if (c.points[0] <= c.points[len(c.points)-1]) == (y < c.points[0]) {
				reverse_lookup[i] = 0
			} else {
				reverse_lookup[i] = 1
			}
			continue
		}
		y1, y2 := c.points[idx], c.points[idx+1]
		x1, x2 := unit_float(idx)/c.max_idx, unit_float(idx+1)/c.max_idx
		if y1 == y2 {
			reverse_lookup[i] = x1
			continue
		}
		frac := (y - y1) / (y2 - y1)
		reverse_lookup[i] = x1 + frac*(x2-x1)
	}
	c.reverse_lookup = reverse_lookup
	return nil
}

func (c PointsCurve) Transform(v unit_float) unit_float {
	return sampled_value(c.points, c.max_idx, v)
}

func (c PointsCurve) InverseTransform(v unit_float) unit_float {
	return sampled_value(c.reverse_lookup, c.max_rev_idx, v)
}
func (c PointsCurve) String() string { return fmt.Sprintf("PointsCurve{%d}", len(c.points)) }

func get_interval(lookup []unit_float, y unit_float) int {
	for i := range len(lookup) - 1 {
		y0, y1 := lookup[i], lookup[i+1]
		if y1 < y0 {
			y0, y1 = y1, y0
		}
		if y0 <= y && y <= y1 {
			return i
		}
	}
	return -1
}

func (c *ParametricCurve) Prepare() error {
	switch c.fn {
	case SimpleGammaFunction:
		if c.g == 0 {
			return fmt.Errorf("gamma curve has zero gamma value")
		}
		c.inv_g = 1 / c.g
		c.is_one = math.Abs(c.g-1) < unit_gamma_tolerance
	case ConditionalZeroFunction, ConditionalCFunction:
		if c.a == 0 || c.g == 0 {
			return fmt.Errorf("%s curve has zero parameter value: a=%f or g=%f", c.fn, c.a, c.g)
		}
		c.threshold, c.inv_g, c.inv_a = -c.b/c.a, 1/c.g, 1/c.a
	case SplitFunction, ComplexFunction:
		if c.a == 0 || c.g == 0 || c.c == 0 {
			return fmt.Errorf("%s curve has zero parameter value: a=%f or g=%f or c=%f", c.fn, c.a, c.g, c.c)
		}
		c.inv_g, c.inv_a, c.inv_c = 1/c.g, 1/c.a, 1/c.c
		// the output value at the split point
		c.threshold = math.Pow(c.a*c.d+c.b, c.g)
		if c.fn == ComplexFunction {
			c.threshold += c.e
		}
	default:
		return fmt.Errorf("unknown parametric function type: %d", c.fn)
	}
	return nil
}

func (c *ParametricCurve) String() string {
	p := []unit_float{c.g, c.a, c.b, c.c, c.d, c.e, c.f}
	if int(c.fn) < len(parametric_param_count) {
		p = p[:parametric_param_count[c.fn]]
	}
	return fmt.Sprintf("%sCurve%v", c.fn, p)
}

func (c *ParametricCurve) IsSRGB() bool {
	const tolerance = 0.001
	return c.fn == SplitFunction && math.Abs(c.g-2.4) < tolerance && math.Abs(c.a-1/1.055) < tolerance &&
		math.Abs(c.b-0.055/1.055) < tolerance && math.Abs(c.c-1/12.92) < tolerance &&
		math.Abs(c.d-0.04045) < tolerance
}

// power returns (aX+b)^g or ok == false when aX+b is not positive
func (c *ParametricCurve) power(x unit_float) (y unit_float, ok bool) {
	if v := c.a*x + c.b; v > 0 {
		return math.Pow(v, c.g), true
	}
	return 0, false
}

func (c *ParametricCurve) Transform(x unit_float) unit_float {
	switch c.fn {
	case SimpleGammaFunction:
		if x < 0 {
			if c.is_one {
				return x
			}
			return 0
		}
		return math.Pow(x, c.g)
	case ConditionalZeroFunction:
		if x >= c.threshold {
			if y, ok := c.power(x); ok {
				return y
			}
		}
		return 0
	case ConditionalCFunction:
		if x >= c.threshold {
			if y, ok := c.power(x); ok {
				return y + c.c
			}
		}
		return c.c
	case SplitFunction:
		if x < c.d {
			return c.c * x
		}
		y, _ := c.power(x)
		return y
	case ComplexFunction:
		if x < c.d {
			return c.c*x + c.f
		}
		y, _ := c.power(x)
		return y + c.e
	}
	return x
}

func (c *ParametricCurve) InverseTransform(y unit_float) unit_float {
	switch c.fn {
	case SimpleGammaFunction:
		if y < 0 {
			if c.is_one {
				return y
			}
			return 0
		}
		return math.Pow(y, c.inv_g)
	case ConditionalZeroFunction:
		return max(0, (math.Pow(max(0, y), c.inv_g)-c.b)*c.inv_a)
	case ConditionalCFunction:
		if v := y - c.c; v > 0 {
			return (math.Pow(v, c.inv_g) - c.b) * c.inv_a
		}
		return c.threshold
	case SplitFunction:
		if y < c.threshold {
			return y * c.inv_c
		}
		return (math.Pow(y, c.inv_g) - c.b) * c.inv_a
	case ComplexFunction:
		if y < c.threshold {
			return (y - c.f) * c.inv_c
		}
		if v := y - c.e; v > 0 {
			return (math.Pow(v, c.inv_g) - c.b) * c.inv_a
		}
		return 0
	}
	return y
}
