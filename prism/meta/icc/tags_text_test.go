package icc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func desc_bytes(ascii string) []byte {
	var buf bytes.Buffer
	buf.WriteString("desc")
	buf.Write(make([]byte, 4))
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ascii)+1))
	buf.WriteString(ascii)
	buf.WriteByte(0)
	// unicode and scriptcode sections, left empty
	buf.Write(make([]byte, 4+4+2+1+67))
	return buf.Bytes()
}

type mluc_record struct {
	lang, country string
	text          string
}

func mluc_bytes(records ...mluc_record) []byte {
	var header, body bytes.Buffer
	header.WriteString("mluc")
	header.Write(make([]byte, 4))
	_ = binary.Write(&header, binary.BigEndian, [2]uint32{uint32(len(records)), 12})
	offset := 16 + 12*len(records)
	for _, r := range records {
		units := utf16.Encode([]rune(r.text))
		header.WriteString(r.lang + r.country)
		_ = binary.Write(&header, binary.BigEndian, [2]uint32{uint32(2 * len(units)), uint32(offset + body.Len())})
		_ = binary.Write(&body, binary.BigEndian, units)
	}
	return append(header.Bytes(), body.Bytes()...)
}

func TestDescDecoder(t *testing.T) {
	v, err := descDecoder(desc_bytes("Display P3"))
	require.NoError(t, err)
	assert.Equal(t, "Display P3", fmt.Sprint(v))
	v, err = descDecoder(desc_bytes(""))
	require.NoError(t, err)
	assert.Equal(t, "", fmt.Sprint(v))

	_, err = descDecoder([]byte("desc"))
	assert.ErrorContains(t, err, "too short")
	_, err = descDecoder(append([]byte("text"), make([]byte, 12)...))
	assert.ErrorContains(t, err, "expected")
	bad := desc_bytes("abc")
	binary.BigEndian.PutUint32(bad[8:], 1000)
	_, err = descDecoder(bad)
	assert.ErrorContains(t, err, "exceeds tag length")
}

func TestMLUCDecoder(t *testing.T) {
	t.Run("Records", func(t *testing.T) {
		v, err := mlucDecoder(mluc_bytes(
			mluc_record{"de", "DE", "Farbraum"},
			mluc_record{"en", "GB", "Colour space"},
			mluc_record{"en", "US", "Color space"},
		))
		require.NoError(t, err)
		m := v.(*MultiLocalisedUnicode)
		assert.Equal(t, "Colour space", m.String())
		assert.Equal(t, "Farbraum", m.getAnyString())
		assert.Equal(t, "Color space", m.getString([2]byte{'e', 'n'}, [2]byte{'U', 'S'}))
		assert.Equal(t, "", m.getString([2]byte{'f', 'r'}, [2]byte{'F', 'R'}))
	})
	t.Run("NonASCII", func(t *testing.T) {
		v, err := mlucDecoder(mluc_bytes(mluc_record{"ja", "JP", "色空間 🎨"}))
		require.NoError(t, err)
		assert.Equal(t, "色空間 🎨", fmt.Sprint(v))
	})
	t.Run("Roundtrip", func(t *testing.T) {
		v, err := mlucDecoder(encode_mluc("BCHSW abstract profile"))
		require.NoError(t, err)
		m := v.(*MultiLocalisedUnicode)
		assert.Equal(t, "BCHSW abstract profile", m.getString([2]byte{'e', 'n'}, [2]byte{'U', 'S'}))
	})
	t.Run("Errors", func(t *testing.T) {
		_, err := mlucDecoder([]byte("mluc"))
		assert.ErrorContains(t, err, "too short")
		bad := mluc_bytes(mluc_record{"en", "US", "x"})
		binary.BigEndian.PutUint32(bad[12:], 4)
		_, err = mlucDecoder(bad)
		assert.ErrorContains(t, err, "invalid record size")
		bad = mluc_bytes(mluc_record{"en", "US", "x"})
		binary.BigEndian.PutUint32(bad[8:], 3)
		_, err = mlucDecoder(bad)
		assert.ErrorContains(t, err, "too short for 3 records")
		bad = mluc_bytes(mluc_record{"en", "US", "x"})
		binary.BigEndian.PutUint32(bad[24:], 200)
		_, err = mlucDecoder(bad)
		assert.ErrorContains(t, err, "exceeds tag data length")
	})
}

func TestTextDecoder(t *testing.T) {
	v, err := textDecoder([]byte("text\x00\x00\x00\x00Copyright nobody\x00\x00\x00"))
	require.NoError(t, err)
	assert.Equal(t, "Copyright nobody", fmt.Sprint(v))
	v, err = textDecoder([]byte("text\x00\x00\x00\x00unterminated"))
	require.NoError(t, err)
	assert.Equal(t, "unterminated", fmt.Sprint(v))
	_, err = textDecoder([]byte("text"))
	assert.Error(t, err)
}

func TestDescriptionLookup(t *testing.T) {
	tt := emptyTagTable()
	tt.add(ProfileDescriptionTagSignature, encode_mluc("Some monitor"))
	tt.add(CopyrightTagSignature, []byte("text\x00\x00\x00\x00No copyright\x00"))
	tt.add(DeviceModelDescSignature, desc_bytes("Model X"))
	d, err := tt.getProfileDescription()
	require.NoError(t, err)
	assert.Equal(t, "Some monitor", d)
	d, err = tt.getDescription(CopyrightTagSignature)
	require.NoError(t, err)
	assert.Equal(t, "No copyright", d)
	d, err = tt.getDescription(DeviceModelDescSignature)
	require.NoError(t, err)
	assert.Equal(t, "Model X", d)
	_, err = tt.getDescription(DeviceManufacturerDescSignature)
	assert.ErrorIs(t, err, ErrTagNotFound)
}
