package icc

import (
	"bytes"
	"encoding/binary"
)

type builder_tag struct {
	sig  Signature
	data []byte
}

// ProfileBuilder serializes ICC profiles. Tags with identical contents are
// stored once and shared between tag table entries.
type ProfileBuilder struct {
	Header Header
	tags   []builder_tag
}

func NewProfileBuilder(class DeviceClass, data_space, pcs ColorSpace) *ProfileBuilder {
	return &ProfileBuilder{Header: Header{
		PreferredCMM:           CreatorSignature,
		Version:                Version{Major: 4, Minor: 3},
		DeviceClass:            class,
		DataColorSpace:         data_space,
		ProfileConnectionSpace: pcs,
		FileSignature:          ProfileFileSignature,
		RenderingIntent:        PerceptualRenderingIntent,
		PCSIlluminant:          D50,
		ProfileCreator:         CreatorSignature,
	}}
}

func (b *ProfileBuilder) AddTag(sig Signature, data []byte) *ProfileBuilder {
	for i, t := range b.tags {
		if t.sig == sig {
			b.tags[i].data = data
			return b
		}
	}
	b.tags = append(b.tags, builder_tag{sig, data})
	return b
}

func (b *ProfileBuilder) SetDescription(text string) *ProfileBuilder {
	return b.AddTag(ProfileDescriptionTagSignature, encode_mluc(text))
}

func (b *ProfileBuilder) Bytes() []byte {
	table_size := 4 + 12*len(b.tags)
	offset := HeaderSize + table_size
	var table, body bytes.Buffer
	table.Grow(table_size)
	_ = binary.Write(&table, binary.BigEndian, uint32(len(b.tags)))
	seen := make(map[string]uint32, len(b.tags))
	for _, t := range b.tags {
		pos, found := seen[string(t.data)]
		if !found {
			pos = uint32(offset + body.Len())
			seen[string(t.data)] = pos
			body.Write(t.data)
			body.Write(make([]byte, align_to_4(len(t.data))-len(t.data)))
		}
		_ = binary.Write(&table, binary.BigEndian, [3]uint32{uint32(t.sig), pos, uint32(len(t.data))})
	}
	h := b.Header
	h.ProfileSize = uint32(offset + body.Len())
	ans := make([]byte, 0, h.ProfileSize)
	ans = append(ans, h.encode()...)
	ans = append(ans, table.Bytes()...)
	return append(ans, body.Bytes()...)
}

// Profile returns the parsed form of the serialized profile
func (b *ProfileBuilder) Profile() (*Profile, error) {
	return NewProfileFromBytes(b.Bytes())
}
