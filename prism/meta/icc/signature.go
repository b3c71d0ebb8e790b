package icc

import (
	"encoding/binary"
	"strings"
)

type Signature uint32

const (
	UnknownSignature     Signature = 0
	ProfileFileSignature Signature = 0x61637370 // 'acsp'

	// tag type signatures
	TextTagSignature               Signature = 0x74657874 // 'text'
	DescSignature                  Signature = 0x64657363 // 'desc'
	MultiLocalisedUnicodeSignature Signature = 0x6D6C7563 // 'mluc'
	SignatureTypeSignature         Signature = 0x73696720 // 'sig '
	XYZTypeSignature               Signature = 0x58595A20 // 'XYZ '
	S15Fixed16ArrayTypeSignature   Signature = 0x73663332 // 'sf32'
	CurveTypeSignature             Signature = 0x63757276 // 'curv'
	ParametricCurveTypeSignature   Signature = 0x70617261 // 'para'
	Lut8TypeSignature              Signature = 0x6D667431 // 'mft1'
	Lut16TypeSignature             Signature = 0x6D667432 // 'mft2'
	LutAtoBTypeSignature           Signature = 0x6D414220 // 'mAB '
	LutBtoATypeSignature           Signature = 0x6D424120 // 'mBA '

	// tag signatures
	AToB0TagSignature               Signature = 0x41324230 // 'A2B0'
	AToB1TagSignature               Signature = 0x41324231 // 'A2B1'
	AToB2TagSignature               Signature = 0x41324232 // 'A2B2'
	BToA0TagSignature               Signature = 0x42324130 // 'B2A0'
	BToA1TagSignature               Signature = 0x42324131 // 'B2A1'
	BToA2TagSignature               Signature = 0x42324132 // 'B2A2'
	RedColorantTagSignature         Signature = 0x7258595A // 'rXYZ'
	GreenColorantTagSignature       Signature = 0x6758595A // 'gXYZ'
	BlueColorantTagSignature        Signature = 0x6258595A // 'bXYZ'
	RedTRCTagSignature              Signature = 0x72545243 // 'rTRC'
	GreenTRCTagSignature            Signature = 0x67545243 // 'gTRC'
	BlueTRCTagSignature             Signature = 0x62545243 // 'bTRC'
	GrayTRCTagSignature             Signature = 0x6B545243 // 'kTRC'
	MediaWhitePointTagSignature     Signature = 0x77747074 // 'wtpt'
	ChromaticAdaptationTagSignature Signature = 0x63686164 // 'chad'
	ProfileDescriptionTagSignature  Signature = 0x64657363 // 'desc'
	CopyrightTagSignature           Signature = 0x63707274 // 'cprt'
	DeviceManufacturerDescSignature Signature = 0x646d6e64 // 'dmnd'
	DeviceModelDescSignature        Signature = 0x646d6464 // 'dmdd'

	// platform and creator signatures used when writing profiles
	AppleSignature     Signature = 0x4150504c // 'APPL'
	CreatorSignature   Signature = 0x676c6c63 // 'gllc'
	IECManufacturerSig Signature = 0x49454320 // 'IEC '
	SRGBModelSignature Signature = 0x73524742 // 'sRGB'
)

func SignatureFromString(s string) Signature {
	var b [4]byte
	copy(b[:], strings.Repeat(" ", 4))
	copy(b[:], s)
	return Signature(binary.BigEndian.Uint32(b[:]))
}

func maskNull(b byte) byte {
	if b == 0 {
		return ' '
	}
	return b
}

func (s Signature) String() string {
	v := []byte{
		maskNull(byte(s >> 24)),
		maskNull(byte(s >> 16)),
		maskNull(byte(s >> 8)),
		maskNull(byte(s)),
	}
	return "'" + string(v) + "'"
}

func (s Signature) bytes() []byte {
	return binary.BigEndian.AppendUint32(nil, uint32(s))
}
