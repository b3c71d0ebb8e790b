package icc

import (
	"errors"
	"fmt"
)

var ErrNotICCProfile = errors.New("not a valid ICC profile")
var ErrUnsupportedProfile = errors.New("unsupported ICC profile")

type Profile struct {
	Header   Header
	TagTable *TagTable
}

func newProfile() *Profile {
	return &Profile{TagTable: emptyTagTable()}
}

func (p *Profile) Description() (string, error) {
	return p.TagTable.getProfileDescription()
}

func (p *Profile) String() string {
	d, err := p.Description()
	if err != nil || d == "" {
		d = "unnamed"
	}
	return fmt.Sprintf("Profile{%q class: %s data: %s pcs: %s version: %s}", d, p.Header.DeviceClass, p.Header.DataColorSpace, p.Header.ProfileConnectionSpace, p.Header.Version)
}

func (p *Profile) IsAbstract() bool { return p.Header.DeviceClass == DeviceClassAbstract }

// check_supported returns an error wrapping ErrUnsupportedProfile for
// profiles that cannot take part in a three channel transform chain
func (p *Profile) check_supported() error {
	h := &p.Header
	switch h.DeviceClass {
	case DeviceClassLink, DeviceClassNamedColor:
		return fmt.Errorf("%w: %s profiles are not supported", ErrUnsupportedProfile, h.DeviceClass)
	}
	if !h.ProfileConnectionSpace.IsPCS() {
		return fmt.Errorf("%w: profile connection space %s", ErrUnsupportedProfile, h.ProfileConnectionSpace)
	}
	if h.DeviceClass == DeviceClassAbstract {
		if !h.DataColorSpace.IsPCS() {
			return fmt.Errorf("%w: abstract profile with data color space %s", ErrUnsupportedProfile, h.DataColorSpace)
		}
		return nil
	}
	if h.DataColorSpace != ColorSpaceRGB {
		return fmt.Errorf("%w: data color space %s", ErrUnsupportedProfile, h.DataColorSpace)
	}
	return nil
}

func a2b_for_intent(intent RenderingIntent) []Signature {
	ans := []Signature{AToB0TagSignature, AToB1TagSignature}
	switch intent {
	case RelativeColorimetricRenderingIntent:
		ans = []Signature{AToB1TagSignature, AToB0TagSignature}
	case SaturationRenderingIntent:
		ans = []Signature{AToB2TagSignature, AToB0TagSignature, AToB1TagSignature}
	}
	return ans
}

func b2a_for_intent(intent RenderingIntent) []Signature {
	ans := []Signature{BToA0TagSignature, BToA1TagSignature}
	switch intent {
	case RelativeColorimetricRenderingIntent:
		ans = []Signature{BToA1TagSignature, BToA0TagSignature}
	case SaturationRenderingIntent:
		ans = []Signature{BToA2TagSignature, BToA0TagSignature, BToA1TagSignature}
	}
	return ans
}

// find_lut returns the first present LUT based tag from candidates, or nil
// if there are none. legacy is true for lut16Type tags which use the legacy
// 16-bit Lab encoding.
func (p *Profile) find_lut(candidates ...Signature) (tag ChannelTransformer, legacy bool, err error) {
	for _, sig := range candidates {
		if !p.TagTable.Has(sig) {
			continue
		}
		x, err := p.TagTable.get_parsed(sig)
		if err != nil {
			return nil, false, err
		}
		switch t := x.(type) {
		case *MFT:
			return t, t.legacy_lab(), nil
		case *ModularTag:
			return t, false, nil
		default:
			return nil, false, fmt.Errorf("tag %s is not a lookup table", sig)
		}
	}
	return nil, false, nil
}

func lab_indexed(t ChannelTransformer) ChannelTransformer {
	if x, ok := t.(interface{ lab_indexed() ChannelTransformer }); ok {
		return x.lab_indexed()
	}
	return t
}

func (p *Profile) rgb_curves() (ans [3]Curve1D, err error) {
	for i, sig := range []Signature{RedTRCTagSignature, GreenTRCTagSignature, BlueTRCTagSignature} {
		if ans[i], err = p.TagTable.load_curve_tag(sig); err != nil {
			return
		}
	}
	return
}

// device_to_pcs returns the transform from actual values in the data
// color space of this profile to actual values in its connection space.
// See section 8.10.2 of ICC.1-2202-05.pdf for tag selection algorithm.
func (p *Profile) device_to_pcs(intent RenderingIntent) (ChannelTransformer, error) {
	if err := p.check_supported(); err != nil {
		return nil, err
	}
	data_space, pcs := p.Header.DataColorSpace, p.Header.ProfileConnectionSpace
	tag, legacy, err := p.find_lut(a2b_for_intent(intent)...)
	if err != nil {
		return nil, err
	}
	ans := NewPipeline()
	if tag != nil {
		if data_space.IsPCS() {
			ans.Append(NewPCSEncoder(data_space, legacy))
		}
		if data_space == ColorSpaceLab {
			tag = lab_indexed(tag)
		}
		ans.Append(tag, NewPCSDecoder(pcs, legacy))
		return ans, nil
	}
	if data_space != ColorSpaceRGB || pcs != ColorSpaceXYZ {
		return nil, fmt.Errorf("%w: %s profile has no A2B tag", ErrUnsupportedProfile, data_space)
	}
	// See section F.3 of ICC.1-2202-5.pdf for how these transforms are composed
	c, err := p.rgb_curves()
	if err != nil {
		return nil, err
	}
	m, err := p.TagTable.load_rgb_matrix()
	if err != nil {
		return nil, err
	}
	ans.Append(NewCurveTransformer(c[0], c[1], c[2]), m)
	return ans, nil
}

// pcs_to_device returns the transform from actual values in the connection
// space of this profile to its data color space
func (p *Profile) pcs_to_device(intent RenderingIntent) (ChannelTransformer, error) {
	if err := p.check_supported(); err != nil {
		return nil, err
	}
	if p.IsAbstract() {
		return nil, fmt.Errorf("%w: abstract profiles cannot be used for output", ErrUnsupportedProfile)
	}
	pcs := p.Header.ProfileConnectionSpace
	tag, legacy, err := p.find_lut(b2a_for_intent(intent)...)
	if err != nil {
		return nil, err
	}
	ans := NewPipeline()
	if tag != nil {
		if pcs == ColorSpaceLab {
			tag = lab_indexed(tag)
		}
		ans.Append(NewPCSEncoder(pcs, legacy), tag)
		return ans, nil
	}
	if pcs != ColorSpaceXYZ {
		return nil, fmt.Errorf("%w: Lab profile has no B2A tag", ErrUnsupportedProfile)
	}
	c, err := p.rgb_curves()
	if err != nil {
		return nil, err
	}
	m, err := p.TagTable.load_rgb_matrix()
	if err != nil {
		return nil, err
	}
	inv, err := m.Inverted()
	if err != nil {
		return nil, fmt.Errorf("the colorant matrix of the profile is not invertible: %w", err)
	}
	ans.Append(&inv, NewInverseCurveTransformer(c[0], c[1], c[2]))
	return ans, nil
}
