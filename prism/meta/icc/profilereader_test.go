package icc

import (
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadProfile(t *testing.T) {
	p, err := NewProfileFromBytes(SRGBProfileData())
	require.NoError(t, err)
	h := p.Header
	assert.Equal(t, DeviceClassDisplay, h.DeviceClass)
	assert.Equal(t, ColorSpaceRGB, h.DataColorSpace)
	assert.Equal(t, ColorSpaceXYZ, h.ProfileConnectionSpace)
	assert.Equal(t, Version{Major: 4, Minor: 3}, h.Version)
	assert.Equal(t, IECManufacturerSig, h.DeviceManufacturer)
	assert.Equal(t, SRGBModelSignature, h.DeviceModel)
	assert.Equal(t, uint32(len(SRGBProfileData())), h.ProfileSize)
	in_delta_slice(t, []unit_float{D50.X, D50.Y, D50.Z}, []unit_float{h.PCSIlluminant.X, h.PCSIlluminant.Y, h.PCSIlluminant.Z}, 1e-4)
	assert.Equal(t, []Signature{
		ProfileDescriptionTagSignature, MediaWhitePointTagSignature,
		RedColorantTagSignature, GreenColorantTagSignature, BlueColorantTagSignature,
		RedTRCTagSignature, GreenTRCTagSignature, BlueTRCTagSignature,
	}, p.TagTable.Signatures())
	assert.Equal(t, p.TagTable.Raw(RedTRCTagSignature), p.TagTable.Raw(BlueTRCTagSignature))
	d, err := p.Description()
	require.NoError(t, err)
	assert.Equal(t, SRGBDescription, d)
	assert.Contains(t, p.String(), SRGBDescription)
}

func TestReadHandBuiltProfile(t *testing.T) {
	data := test_header(DeviceClassColorSpace, ColorSpaceRGB, ColorSpaceLab)
	data = append(data, tag_table_bytes(
		[]Signature{ProfileDescriptionTagSignature, CopyrightTagSignature},
		[][]byte{desc_bytes("hand built"), []byte("text\x00\x00\x00\x00none\x00")},
	)...)
	p, err := DecodeProfile(&reader_without_size{data})
	require.NoError(t, err)
	assert.Equal(t, DeviceClassColorSpace, p.Header.DeviceClass)
	assert.Equal(t, ColorSpaceLab, p.Header.ProfileConnectionSpace)
	d, err := p.Description()
	require.NoError(t, err)
	assert.Equal(t, "hand built", d)
	assert.False(t, p.TagTable.Has(AToB0TagSignature))
	_, err = p.TagTable.get_parsed(AToB0TagSignature)
	assert.ErrorIs(t, err, ErrTagNotFound)
}

// reader_without_size hides the length of the data from the reader
type reader_without_size struct{ data []byte }

func (r *reader_without_size) Read(b []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	n := copy(b, r.data[:min(len(r.data), 7)])
	r.data = r.data[n:]
	return n, nil
}

func TestReadProfileErrors(t *testing.T) {
	valid := SRGBProfileData()
	corrupt := func(f func([]byte) []byte) []byte {
		return f(append([]byte(nil), valid...))
	}
	t.Run("Empty", func(t *testing.T) {
		_, err := NewProfileFromBytes(nil)
		assert.ErrorIs(t, err, ErrNotICCProfile)
	})
	t.Run("ShortHeader", func(t *testing.T) {
		_, err := NewProfileFromBytes(valid[:100])
		assert.ErrorIs(t, err, ErrNotICCProfile)
	})
	t.Run("BadSignature", func(t *testing.T) {
		_, err := NewProfileFromBytes(corrupt(func(b []byte) []byte { copy(b[36:], "xxxx"); return b }))
		assert.ErrorIs(t, err, ErrNotICCProfile)
	})
	t.Run("NoTagCount", func(t *testing.T) {
		_, err := NewProfileFromBytes(valid[:HeaderSize+2])
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})
	t.Run("TruncatedTagTable", func(t *testing.T) {
		_, err := NewProfileFromBytes(valid[:HeaderSize+4+12*3+5])
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})
	t.Run("TruncatedTagData", func(t *testing.T) {
		_, err := NewProfileFromBytes(valid[:len(valid)-20])
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})
	t.Run("TooManyTags", func(t *testing.T) {
		_, err := NewProfileFromBytes(corrupt(func(b []byte) []byte {
			binary.BigEndian.PutUint32(b[HeaderSize:], max_tag_count+1)
			return b
		}))
		assert.ErrorContains(t, err, "too many tags")
	})
	t.Run("OffsetInsideTable", func(t *testing.T) {
		_, err := NewProfileFromBytes(corrupt(func(b []byte) []byte {
			binary.BigEndian.PutUint32(b[HeaderSize+4+4:], HeaderSize)
			return b
		}))
		assert.ErrorContains(t, err, "inside the tag table")
	})
	t.Run("UnsupportedTagType", func(t *testing.T) {
		data := test_header(DeviceClassDisplay, ColorSpaceRGB, ColorSpaceXYZ)
		data = append(data, tag_table_bytes([]Signature{RedTRCTagSignature}, [][]byte{[]byte("abcd\x00\x00\x00\x00")})...)
		p, err := NewProfileFromBytes(data)
		require.NoError(t, err)
		_, err = p.TagTable.load_curve_tag(RedTRCTagSignature)
		assert.ErrorIs(t, err, ErrUnsupportedProfile)
		// the error is cached
		_, err2 := p.TagTable.get_parsed(RedTRCTagSignature)
		assert.Equal(t, err, err2)
	})
}

func TestLoadProfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "srgb.icc")
	require.NoError(t, os.WriteFile(path, SRGBProfileData(), 0o644))
	p, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, ColorSpaceRGB, p.Header.DataColorSpace)

	_, err = LoadProfile(filepath.Join(dir, "missing.icc"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.icc")
	require.NoError(t, os.WriteFile(bad, []byte("not a profile"), 0o644))
	_, err = LoadProfile(bad)
	assert.ErrorIs(t, err, ErrNotICCProfile)
	assert.ErrorContains(t, err, bad)
}
