package icc

import (
	"fmt"
	"sync"
)

const SRGBDescription = "sRGB IEC61966-2.1"

// Colorants of sRGB adapted to D50 with the Bradford transform
var srgb_colorants = [3]XYZType{
	{0.436066, 0.222488, 0.013916},
	{0.385147, 0.716873, 0.097076},
	{0.143066, 0.060608, 0.714096},
}

func build_srgb_profile() []byte {
	b := NewProfileBuilder(DeviceClassDisplay, ColorSpaceRGB, ColorSpaceXYZ)
	b.Header.DeviceManufacturer = IECManufacturerSig
	b.Header.DeviceModel = SRGBModelSignature
	b.SetDescription(SRGBDescription)
	b.AddTag(MediaWhitePointTagSignature, encode_xyz_tag(D50))
	b.AddTag(RedColorantTagSignature, encode_xyz_tag(srgb_colorants[0]))
	b.AddTag(GreenColorantTagSignature, encode_xyz_tag(srgb_colorants[1]))
	b.AddTag(BlueColorantTagSignature, encode_xyz_tag(srgb_colorants[2]))
	trc := encode_parametric_curve(SplitFunction, 2.4, 1/1.055, 0.055/1.055, 1/12.92, 0.04045)
	for _, sig := range []Signature{RedTRCTagSignature, GreenTRCTagSignature, BlueTRCTagSignature} {
		b.AddTag(sig, trc)
	}
	return b.Bytes()
}

// SRGBProfileData returns the serialized built-in sRGB display profile
var SRGBProfileData = sync.OnceValue(build_srgb_profile)

// SRGBProfile returns the built-in sRGB display profile. It is shared and
// must not be modified.
var SRGBProfile = sync.OnceValue(func() *Profile {
	p, err := NewProfileFromBytes(SRGBProfileData())
	if err != nil {
		panic(fmt.Sprintf("the built-in sRGB profile is invalid: %s", err))
	}
	return p
})
