package icc

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

type TextDescription struct {
	ASCII string
}

func (t TextDescription) String() string { return t.ASCII }

func parseTextDescription(data []byte) (*TextDescription, error) {
	if len(data) < 12 {
		return nil, fmt.Errorf("desc tag too short")
	}
	if s := Signature(binary.BigEndian.Uint32(data[:4])); s != DescSignature {
		return nil, fmt.Errorf("expected %v but got %v", DescSignature, s)
	}
	asciiCount := int(binary.BigEndian.Uint32(data[8:12]))
	data = data[12:]
	if asciiCount > len(data) {
		return nil, fmt.Errorf("desc tag ASCII count %d exceeds tag length", asciiCount)
	}
	desc := &TextDescription{}
	if asciiCount > 1 {
		desc.ASCII = string(data[:asciiCount-1]) // skip terminating null
	}
	return desc, nil
}

func descDecoder(raw []byte) (any, error) { return parseTextDescription(raw) }

// textType holds the contents of a 'text' tag, a null terminated ASCII string
type textType string

func (t textType) String() string { return string(t) }

func textDecoder(raw []byte) (any, error) {
	if len(raw) < 8 {
		return nil, fmt.Errorf("text tag too short")
	}
	raw = raw[8:]
	if idx := bytes.IndexByte(raw, 0); idx > -1 {
		raw = raw[:idx]
	}
	return textType(raw), nil
}
