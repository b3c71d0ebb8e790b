package icc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Tag tables larger than this are assumed to be corrupt
const max_tag_count = 1024

type ProfileReader struct {
	reader io.Reader
}

func NewProfileReader(r io.Reader) *ProfileReader {
	return &ProfileReader{reader: r}
}

type tag_index_entry struct {
	sig          Signature
	offset, size uint32
}

func (pr *ProfileReader) ReadProfile() (p *Profile, err error) {
	p = newProfile()
	if err = pr.readHeader(&p.Header); err != nil {
		return nil, err
	}
	if err = pr.readTagTable(p.TagTable); err != nil {
		return nil, err
	}
	return p, nil
}

func (pr *ProfileReader) readHeader(header *Header) error {
	var data [HeaderSize]byte
	if _, err := io.ReadFull(pr.reader, data[:]); err != nil {
		return fmt.Errorf("%w: failed to read profile header: %w", ErrNotICCProfile, err)
	}
	return parse_header(data[:], header)
}

func (pr *ProfileReader) readTagTable(tagTable *TagTable) error {
	var count uint32
	if err := binary.Read(pr.reader, binary.BigEndian, &count); err != nil {
		return fmt.Errorf("failed to read tag count: %w", io.ErrUnexpectedEOF)
	}
	if count > max_tag_count {
		return fmt.Errorf("profile has too many tags: %d", count)
	}
	index := make([]tag_index_entry, count)
	end_of_tags := HeaderSize + 4 + 12*uint64(count)
	var raw [12]byte
	for i := range index {
		if _, err := io.ReadFull(pr.reader, raw[:]); err != nil {
			return fmt.Errorf("failed to read tag table entry %d: %w", i, io.ErrUnexpectedEOF)
		}
		e := &index[i]
		e.sig = Signature(binary.BigEndian.Uint32(raw[:4]))
		e.offset, e.size = binary.BigEndian.Uint32(raw[4:8]), binary.BigEndian.Uint32(raw[8:12])
		if uint64(e.offset) < end_of_tags {
			return fmt.Errorf("tag %s has offset %d inside the tag table", e.sig, e.offset)
		}
	}
	rest, err := io.ReadAll(pr.reader)
	if err != nil {
		return err
	}
	for _, e := range index {
		start := uint64(e.offset) - end_of_tags
		end := start + uint64(e.size)
		if end > uint64(len(rest)) {
			return fmt.Errorf("tag %s extends past the end of the profile: %w", e.sig, io.ErrUnexpectedEOF)
		}
		tagTable.add(e.sig, rest[start:end])
	}
	return nil
}

// DecodeProfile reads a complete ICC profile from r
func DecodeProfile(r io.Reader) (*Profile, error) {
	return NewProfileReader(r).ReadProfile()
}

// NewProfileFromBytes parses an in-memory ICC profile
func NewProfileFromBytes(data []byte) (*Profile, error) {
	return DecodeProfile(bytes.NewReader(data))
}

// LoadProfile reads and parses the ICC profile file at path
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := NewProfileFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ICC profile from %s: %w", path, err)
	}
	return p, nil
}
