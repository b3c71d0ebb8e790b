package icc

import (
	"encoding/binary"
	"fmt"
	"slices"
	"unicode/utf16"
)

type languageCountry struct {
	language [2]byte
	country  [2]byte
}

func (lc languageCountry) String() string {
	return fmt.Sprintf("%c%c_%c%c", lc.language[0], lc.language[1], lc.country[0], lc.country[1])
}

type MultiLocalisedUnicode struct {
	entries map[languageCountry]string
	order   []languageCountry
}

func (mluc *MultiLocalisedUnicode) getAnyString() string {
	if len(mluc.order) > 0 {
		return mluc.entries[mluc.order[0]]
	}
	return ""
}

func (mluc *MultiLocalisedUnicode) getString(language [2]byte, country [2]byte) string {
	return mluc.entries[languageCountry{language, country}]
}

func (mluc *MultiLocalisedUnicode) getStringForLanguage(language [2]byte) string {
	for _, lc := range mluc.order {
		if lc.language == language {
			return mluc.entries[lc]
		}
	}
	return ""
}

func (mluc *MultiLocalisedUnicode) setString(language [2]byte, country [2]byte, text string) {
	lc := languageCountry{language, country}
	if _, exists := mluc.entries[lc]; !exists {
		mluc.order = append(mluc.order, lc)
	}
	mluc.entries[lc] = text
}

// String returns the English text if present, otherwise the first entry
func (mluc *MultiLocalisedUnicode) String() string {
	if ans := mluc.getStringForLanguage([2]byte{'e', 'n'}); ans != "" {
		return ans
	}
	return mluc.getAnyString()
}

func parseMultiLocalisedUnicode(data []byte) (*MultiLocalisedUnicode, error) {
	result := &MultiLocalisedUnicode{entries: make(map[languageCountry]string)}
	if len(data) < 16 {
		return nil, fmt.Errorf("mluc tag too short")
	}
	if s := Signature(binary.BigEndian.Uint32(data[:4])); s != MultiLocalisedUnicodeSignature {
		return nil, fmt.Errorf("expected %v but got %v", MultiLocalisedUnicodeSignature, s)
	}
	recordCount, recordSize := int(binary.BigEndian.Uint32(data[8:12])), int(binary.BigEndian.Uint32(data[12:16]))
	if recordSize < 12 {
		return nil, fmt.Errorf("mluc tag has invalid record size: %d", recordSize)
	}
	records := data[16:]
	for i := range recordCount {
		if len(records) < (i+1)*recordSize {
			return nil, fmt.Errorf("mluc tag too short for %d records", recordCount)
		}
		rec := records[i*recordSize:]
		language, country := [2]byte{rec[0], rec[1]}, [2]byte{rec[2], rec[3]}
		length, offset := uint64(binary.BigEndian.Uint32(rec[4:8])), uint64(binary.BigEndian.Uint32(rec[8:12]))
		if offset+length > uint64(len(data)) {
			return nil, fmt.Errorf("record exceeds tag data length")
		}
		raw := data[offset : offset+length]
		units := make([]uint16, len(raw)/2)
		for j := range units {
			units[j] = binary.BigEndian.Uint16(raw[2*j:])
		}
		result.setString(language, country, string(utf16.Decode(units)))
	}
	return result, nil
}

func mlucDecoder(raw []byte) (any, error) { return parseMultiLocalisedUnicode(raw) }

// encode_mluc writes a single record en_US mluc tag
func encode_mluc(text string) []byte {
	units := utf16.Encode([]rune(text))
	const header_size, record_size = 16, 12
	ans := append(MultiLocalisedUnicodeSignature.bytes(), 0, 0, 0, 0)
	ans = binary.BigEndian.AppendUint32(ans, 1)
	ans = binary.BigEndian.AppendUint32(ans, record_size)
	ans = append(ans, 'e', 'n', 'U', 'S')
	ans = binary.BigEndian.AppendUint32(ans, uint32(2*len(units)))
	ans = binary.BigEndian.AppendUint32(ans, header_size+record_size)
	for _, u := range units {
		ans = binary.BigEndian.AppendUint16(ans, u)
	}
	return slices.Clip(ans)
}
