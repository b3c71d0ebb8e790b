// Package lut materializes a color transform into a lookup table covering
// every 24-bit RGB value, stored in the layout the fragment shader indexes.
package lut

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/chewxy/math32"
	"github.com/kovidgoyal/go-parallel"
)

var _ = fmt.Print

const (
	// Size is the number of entries in a LUT, one per 24-bit RGB value
	Size = 1 << 24
	// ByteSize is the size of the encoded LUT in bytes
	ByteSize = Size * 4
)

var ErrShortOutput = errors.New("output buffer too small for the LUT")

// Transformer converts packed little-endian RGBA pixels in place. Output
// pixels must be packed the same way.
type Transformer interface {
	TransformInPlace(data []uint32) error
}

// LUT maps a packed RGB index (r | g<<8 | b<<16) to a packed RGBA value. It is
// immutable once built.
type LUT struct {
	data []uint32
}

// Build fills a table with every index and transforms it with a single call
// to t.
func Build(t Transformer) (*LUT, error) {
	data := make([]uint32, Size)
	for i := range data {
		data[i] = uint32(i)
	}
	if err := t.TransformInPlace(data); err != nil {
		return nil, fmt.Errorf("failed to materialize LUT: %w", err)
	}
	return &LUT{data: data}, nil
}

// FromData wraps an existing table, which must have exactly Size entries.
// The LUT takes ownership of data.
func FromData(data []uint32) (*LUT, error) {
	if len(data) != Size {
		return nil, fmt.Errorf("a LUT must have %d entries not %d", Size, len(data))
	}
	return &LUT{data: data}, nil
}

// Data returns the underlying table. It must not be modified.
func (l *LUT) Data() []uint32 { return l.data }

func (l *LUT) Lookup(r, g, b uint8) (uint8, uint8, uint8) {
	v := l.data[Index(r, g, b)]
	return uint8(v), uint8(v >> 8), uint8(v >> 16)
}

// Encode writes the table into dst as little-endian uint32 values.
func (l *LUT) Encode(dst []byte) error {
	if len(dst) < ByteSize {
		return fmt.Errorf("%w: need %d bytes have %d", ErrShortOutput, ByteSize, len(dst))
	}
	f := func(start, limit int) {
		for i := start; i < limit; i++ {
			binary.LittleEndian.PutUint32(dst[4*i:], l.data[i])
		}
	}
	return parallel.Run_in_parallel_over_range(0, f, 0, Size)
}

func (l *LUT) Bytes() []byte {
	ans := make([]byte, ByteSize)
	if err := l.Encode(ans); err != nil {
		panic(err)
	}
	return ans
}

func (l *LUT) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(l.Bytes())
	return int64(n), err
}

// Index returns the table index for an RGB color, identical to
// pack4x8unorm(vec4(r, g, b, 0)) in the shader for unorm8 texels.
func Index(r, g, b uint8) uint32 {
	return uint32(r) | uint32(g)<<8 | uint32(b)<<16
}

func unorm8(v float32) uint32 {
	if !(v > 0) {
		return 0
	}
	return uint32(math32.Floor(0.5 + 255*math32.Min(v, 1)))
}

// PackUnorm4x8 mirrors the WGSL pack4x8unorm builtin.
func PackUnorm4x8(v [4]float32) uint32 {
	return unorm8(v[0]) | unorm8(v[1])<<8 | unorm8(v[2])<<16 | unorm8(v[3])<<24
}

// UnpackUnorm4x8 mirrors the WGSL unpack4x8unorm builtin.
func UnpackUnorm4x8(v uint32) (ans [4]float32) {
	for i := range ans {
		ans[i] = float32(uint8(v>>(8*i))) / 255
	}
	return
}
