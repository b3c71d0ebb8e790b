package icc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
)

var ErrTagNotFound = errors.New("tag not found in ICC profile")

type parsed_tag struct {
	tag any
	err error
}

type raw_tag_entry struct {
	data   []byte
	parsed *parsed_tag
}

type TagTable struct {
	mutex   sync.Mutex
	entries map[Signature]*raw_tag_entry
	order   []Signature
}

func emptyTagTable() *TagTable {
	return &TagTable{entries: make(map[Signature]*raw_tag_entry)}
}

func (t *TagTable) add(sig Signature, data []byte) {
	if _, exists := t.entries[sig]; !exists {
		t.order = append(t.order, sig)
	}
	t.entries[sig] = &raw_tag_entry{data: data}
}

func (t *TagTable) Has(sig Signature) bool {
	_, found := t.entries[sig]
	return found
}

// Signatures returns the tag signatures in the order they appear in the tag table
func (t *TagTable) Signatures() []Signature { return t.order }

// Raw returns the undecoded bytes of the tag, including its type signature
func (t *TagTable) Raw(sig Signature) []byte {
	if e := t.entries[sig]; e != nil {
		return e.data
	}
	return nil
}

func type_signature(data []byte) Signature {
	if len(data) < 4 {
		return UnknownSignature
	}
	return Signature(binary.BigEndian.Uint32(data[:4]))
}

func decoder_for(sig Signature) func([]byte) (any, error) {
	switch sig {
	case CurveTypeSignature:
		return curveDecoder
	case ParametricCurveTypeSignature:
		return parametricCurveDecoder
	case XYZTypeSignature:
		return xyzDecoder
	case Lut8TypeSignature:
		return decode_mft8
	case Lut16TypeSignature:
		return decode_mft16
	case LutAtoBTypeSignature, LutBtoATypeSignature:
		return modularDecoder
	case DescSignature:
		return descDecoder
	case MultiLocalisedUnicodeSignature:
		return mlucDecoder
	case TextTagSignature:
		return textDecoder
	case S15Fixed16ArrayTypeSignature:
		return sf32Decoder
	}
	return nil
}

// get_parsed decodes the tag on first use and caches the result, including
// any decode error
func (t *TagTable) get_parsed(sig Signature) (any, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	e := t.entries[sig]
	if e == nil {
		return nil, fmt.Errorf("%w: %s", ErrTagNotFound, sig)
	}
	if e.parsed == nil {
		typ := type_signature(e.data)
		decoder := decoder_for(typ)
		if decoder == nil {
			e.parsed = &parsed_tag{err: fmt.Errorf("%w: tag %s has unsupported type %s", ErrUnsupportedProfile, sig, typ)}
		} else {
			tag, err := decoder(e.data)
			if err != nil {
				err = fmt.Errorf("failed to decode tag %s: %w", sig, err)
			}
			e.parsed = &parsed_tag{tag: tag, err: err}
		}
	}
	return e.parsed.tag, e.parsed.err
}

func (t *TagTable) load_curve_tag(sig Signature) (Curve1D, error) {
	x, err := t.get_parsed(sig)
	if err != nil {
		return nil, err
	}
	ans, ok := x.(Curve1D)
	if !ok {
		return nil, fmt.Errorf("tag %s is not a curve", sig)
	}
	return ans, nil
}

func (t *TagTable) load_xyz(sig Signature) (*XYZType, error) {
	x, err := t.get_parsed(sig)
	if err != nil {
		return nil, err
	}
	ans, ok := x.(*XYZType)
	if !ok {
		return nil, fmt.Errorf("tag %s is not an XYZ tag", sig)
	}
	return ans, nil
}

// load_rgb_matrix builds the matrix whose columns are the red, green and
// blue colorants
func (t *TagTable) load_rgb_matrix() (ans *Matrix3, err error) {
	var cols [3]*XYZType
	for i, sig := range []Signature{RedColorantTagSignature, GreenColorantTagSignature, BlueColorantTagSignature} {
		if cols[i], err = t.load_xyz(sig); err != nil {
			return nil, err
		}
	}
	ans = &Matrix3{}
	for i, c := range cols {
		ans[0][i], ans[1][i], ans[2][i] = c.X, c.Y, c.Z
	}
	return ans, nil
}

func (t *TagTable) getDescription(s Signature) (string, error) {
	x, err := t.get_parsed(s)
	if err != nil {
		return "", err
	}
	if st, ok := x.(fmt.Stringer); ok {
		return st.String(), nil
	}
	return "", fmt.Errorf("unknown profile description type: %s", type_signature(t.Raw(s)))
}

func (t *TagTable) getProfileDescription() (string, error) {
	return t.getDescription(ProfileDescriptionTagSignature)
}
