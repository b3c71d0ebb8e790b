package icc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

type unit_float = float64

// Values closer than this are considered equal when comparing transforms
const FLOAT_EQUALITY_THRESHOLD = 0.0002

type XYZType struct{ X, Y, Z unit_float }

func (x XYZType) String() string { return fmt.Sprintf("XYZ{%.6f %.6f %.6f}", x.X, x.Y, x.Z) }

func readS15Fixed16BE(raw []byte) unit_float {
	return unit_float(int32(binary.BigEndian.Uint32(raw))) / 65536
}

func encodeS15Fixed16BE(value unit_float) []byte {
	value = max(-32768, min(value, 32767.99998))
	return binary.BigEndian.AppendUint32(nil, uint32(int32(math.Round(value*65536))))
}

func read_xyz_number(raw []byte) XYZType {
	return XYZType{readS15Fixed16BE(raw[0:4]), readS15Fixed16BE(raw[4:8]), readS15Fixed16BE(raw[8:12])}
}

func encode_xyz_number(x XYZType) []byte {
	ans := encodeS15Fixed16BE(x.X)
	ans = append(ans, encodeS15Fixed16BE(x.Y)...)
	return append(ans, encodeS15Fixed16BE(x.Z)...)
}

func xyzDecoder(raw []byte) (any, error) {
	if len(raw) < 20 {
		return nil, errors.New("XYZ tag too short")
	}
	ans := read_xyz_number(raw[8:20])
	return &ans, nil
}

func encode_xyz_tag(x XYZType) []byte {
	return append(XYZTypeSignature.bytes(), append(make([]byte, 4), encode_xyz_number(x)...)...)
}

// sf32Decoder decodes an s15Fixed16ArrayType tag. A nine element array, as
// used by the chad tag, is returned as a *Matrix3.
func sf32Decoder(raw []byte) (any, error) {
	if len(raw) < 8 {
		return nil, errors.New("sf32 tag too short")
	}
	raw = raw[8:]
	values := make([]unit_float, len(raw)/4)
	for i := range values {
		values[i] = readS15Fixed16BE(raw[4*i:])
	}
	if len(values) == 9 {
		var m Matrix3
		for i, v := range values {
			m[i/3][i%3] = v
		}
		return &m, nil
	}
	return values, nil
}
