package icc

import (
	"encoding/binary"
	"fmt"
	"time"
)

const HeaderSize = 128

type ColorSpace Signature

const (
	ColorSpaceXYZ  ColorSpace = 0x58595A20 // 'XYZ '
	ColorSpaceLab  ColorSpace = 0x4C616220 // 'Lab '
	ColorSpaceRGB  ColorSpace = 0x52474220 // 'RGB '
	ColorSpaceGray ColorSpace = 0x47524159 // 'GRAY'
	ColorSpaceCMYK ColorSpace = 0x434D594B // 'CMYK'
)

func (c ColorSpace) String() string { return Signature(c).String() }

// IsPCS is true for the color spaces that can be used as a profile
// connection space.
func (c ColorSpace) IsPCS() bool { return c == ColorSpaceXYZ || c == ColorSpaceLab }

type DeviceClass Signature

const (
	DeviceClassInput      DeviceClass = 0x73636E72 // 'scnr'
	DeviceClassDisplay    DeviceClass = 0x6D6E7472 // 'mntr'
	DeviceClassOutput     DeviceClass = 0x70727472 // 'prtr'
	DeviceClassLink       DeviceClass = 0x6C696E6B // 'link'
	DeviceClassColorSpace DeviceClass = 0x73706163 // 'spac'
	DeviceClassAbstract   DeviceClass = 0x61627374 // 'abst'
	DeviceClassNamedColor DeviceClass = 0x6E6D636C // 'nmcl'
)

func (c DeviceClass) String() string {
	switch c {
	case DeviceClassInput:
		return "Input"
	case DeviceClassDisplay:
		return "Display"
	case DeviceClassOutput:
		return "Output"
	case DeviceClassLink:
		return "DeviceLink"
	case DeviceClassColorSpace:
		return "ColorSpace"
	case DeviceClassAbstract:
		return "Abstract"
	case DeviceClassNamedColor:
		return "NamedColor"
	}
	return Signature(c).String()
}

type RenderingIntent uint32

const (
	PerceptualRenderingIntent RenderingIntent = iota
	RelativeColorimetricRenderingIntent
	SaturationRenderingIntent
	AbsoluteColorimetricRenderingIntent
)

func (ri RenderingIntent) String() string {
	switch ri {
	case PerceptualRenderingIntent:
		return "Perceptual"
	case RelativeColorimetricRenderingIntent:
		return "Relative"
	case SaturationRenderingIntent:
		return "Saturation"
	case AbsoluteColorimetricRenderingIntent:
		return "Absolute"
	}
	return fmt.Sprintf("RenderingIntent(%d)", uint32(ri))
}

type Version struct {
	Major, Minor, Bugfix uint8
}

func (v Version) String() string { return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Bugfix) }

type Header struct {
	ProfileSize            uint32
	PreferredCMM           Signature
	Version                Version
	DeviceClass            DeviceClass
	DataColorSpace         ColorSpace
	ProfileConnectionSpace ColorSpace
	CreatedAt              time.Time
	FileSignature          Signature
	PrimaryPlatform        Signature
	Flags                  uint32
	DeviceManufacturer     Signature
	DeviceModel            Signature
	DeviceAttributes       uint64
	RenderingIntent        RenderingIntent
	PCSIlluminant          XYZType
	ProfileCreator         Signature
	ProfileID              [16]byte
}

func (h Header) String() string {
	return fmt.Sprintf("Header{version: %s class: %s data: %s pcs: %s intent: %s}",
		h.Version, h.DeviceClass, h.DataColorSpace, h.ProfileConnectionSpace, h.RenderingIntent)
}

func read_datetime(raw []byte) time.Time {
	var v [6]uint16
	for i := range v {
		v[i] = binary.BigEndian.Uint16(raw[i*2:])
	}
	if v[0] == 0 {
		return time.Time{}
	}
	return time.Date(int(v[0]), time.Month(v[1]), int(v[2]), int(v[3]), int(v[4]), int(v[5]), 0, time.UTC)
}

func write_datetime(t time.Time) []byte {
	ans := make([]byte, 0, 12)
	if t.IsZero() {
		return append(ans, make([]byte, 12)...)
	}
	t = t.UTC()
	for _, x := range []int{t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second()} {
		ans = binary.BigEndian.AppendUint16(ans, uint16(x))
	}
	return ans
}

func parse_header(raw []byte, h *Header) error {
	if len(raw) < HeaderSize {
		return fmt.Errorf("ICC header too short: %d bytes", len(raw))
	}
	u32 := func(off int) uint32 { return binary.BigEndian.Uint32(raw[off:]) }
	h.FileSignature = Signature(u32(36))
	if h.FileSignature != ProfileFileSignature {
		return fmt.Errorf("%w: invalid profile file signature %s", ErrNotICCProfile, h.FileSignature)
	}
	h.ProfileSize = u32(0)
	h.PreferredCMM = Signature(u32(4))
	h.Version = Version{Major: raw[8], Minor: raw[9] >> 4, Bugfix: raw[9] & 0xf}
	h.DeviceClass = DeviceClass(u32(12))
	h.DataColorSpace = ColorSpace(u32(16))
	h.ProfileConnectionSpace = ColorSpace(u32(20))
	h.CreatedAt = read_datetime(raw[24:36])
	h.PrimaryPlatform = Signature(u32(40))
	h.Flags = u32(44)
	h.DeviceManufacturer = Signature(u32(48))
	h.DeviceModel = Signature(u32(52))
	h.DeviceAttributes = binary.BigEndian.Uint64(raw[56:])
	h.RenderingIntent = RenderingIntent(u32(64) & 0xffff)
	h.PCSIlluminant = read_xyz_number(raw[68:80])
	h.ProfileCreator = Signature(u32(80))
	copy(h.ProfileID[:], raw[84:100])
	return nil
}

func (h *Header) encode() []byte {
	ans := make([]byte, 0, HeaderSize)
	ans = binary.BigEndian.AppendUint32(ans, h.ProfileSize)
	ans = append(ans, h.PreferredCMM.bytes()...)
	ans = append(ans, h.Version.Major, h.Version.Minor<<4|h.Version.Bugfix&0xf, 0, 0)
	ans = append(ans, Signature(h.DeviceClass).bytes()...)
	ans = append(ans, Signature(h.DataColorSpace).bytes()...)
	ans = append(ans, Signature(h.ProfileConnectionSpace).bytes()...)
	ans = append(ans, write_datetime(h.CreatedAt)...)
	ans = append(ans, ProfileFileSignature.bytes()...)
	ans = append(ans, h.PrimaryPlatform.bytes()...)
	ans = binary.BigEndian.AppendUint32(ans, h.Flags)
	ans = append(ans, h.DeviceManufacturer.bytes()...)
	ans = append(ans, h.DeviceModel.bytes()...)
	ans = binary.BigEndian.AppendUint64(ans, h.DeviceAttributes)
	ans = binary.BigEndian.AppendUint32(ans, uint32(h.RenderingIntent))
	ans = append(ans, encode_xyz_number(h.PCSIlluminant)...)
	ans = append(ans, h.ProfileCreator.bytes()...)
	ans = append(ans, h.ProfileID[:]...)
	return append(ans, make([]byte, HeaderSize-len(ans))...)
}
