package icc

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func pow(x, y unit_float) unit_float { return math.Pow(x, y) }

func in_delta(t *testing.T, expected, actual, delta unit_float, msgAndArgs ...any) {
	t.Helper()
	assert.InDelta(t, expected, actual, delta, msgAndArgs...)
}

func in_delta_slice(t *testing.T, expected, actual []unit_float, delta unit_float, msgAndArgs ...any) {
	t.Helper()
	assert.InDeltaSlice(t, expected, actual, delta, msgAndArgs...)
}

func in_delta_rgb(t *testing.T, expected, actual [3]unit_float, delta unit_float, msgAndArgs ...any) {
	t.Helper()
	assert.InDeltaSlice(t, expected[:], actual[:], delta, msgAndArgs...)
}

func rgb(r, g, b unit_float) [3]unit_float { return [3]unit_float{r, g, b} }

// tag_table_bytes serializes a tag table followed by the tag data, with
// offsets relative to the start of the profile
func tag_table_bytes(sigs []Signature, data [][]byte) []byte {
	var table, body bytes.Buffer
	_ = binary.Write(&table, binary.BigEndian, uint32(len(sigs)))
	offset := HeaderSize + 4 + 12*len(sigs)
	for i, sig := range sigs {
		_ = binary.Write(&table, binary.BigEndian, [3]uint32{uint32(sig), uint32(offset + body.Len()), uint32(len(data[i]))})
		body.Write(data[i])
	}
	return append(table.Bytes(), body.Bytes()...)
}

func test_header(class DeviceClass, data_space, pcs ColorSpace) []byte {
	h := Header{
		Version:                Version{Major: 4, Minor: 3},
		DeviceClass:            class,
		DataColorSpace:         data_space,
		ProfileConnectionSpace: pcs,
		PCSIlluminant:          D50,
	}
	return h.encode()
}
