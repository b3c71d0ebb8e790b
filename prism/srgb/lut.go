package srgb

import (
	"math"
	"sync"
)

// Number of entries in the table used to encode linear values
const linear_table_size = 1 << 16

// EncodedToLinear converts a normalised sRGB encoded value to a linear value
func EncodedToLinear(v float64) float64 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// LinearToEncoded converts a normalised linear value to an sRGB encoded value
func LinearToEncoded(v float64) float64 {
	if v <= 0.0031308 {
		return v * 12.92
	}
	return 1.055*math.Pow(v, 1/2.4) - 0.055
}

var encoded8ToLinearLUT = sync.OnceValue(func() (ans [256]float64) {
	for i := range ans {
		ans[i] = EncodedToLinear(float64(i) / 255)
	}
	return
})

var linearToEncoded8LUT = sync.OnceValue(func() []uint8 {
	ans := make([]uint8, linear_table_size)
	for i := range ans {
		ans[i] = uint8(math.Round(LinearToEncoded(float64(i)/(linear_table_size-1)) * 255))
	}
	return ans
})

// From8Bit converts an 8-bit sRGB encoded value to a normalised linear value
// between 0.0 and 1.0.
//
// This implementation uses a fast look-up table without sacrificing accuracy.
func From8Bit(v uint8) float64 {
	return encoded8ToLinearLUT()[v]
}

// To8Bit converts a linear value to an 8-bit sRGB encoded value, clipping the
// linear value to between 0.0 and 1.0.
//
// This implementation uses a fast look-up table and is approximate. For more
// accuracy, use LinearToEncoded.
func To8Bit(v float64) uint8 {
	if !(v > 0) {
		return 0
	}
	return linearToEncoded8LUT()[int(math.Round(min(v, 1)*(linear_table_size-1)))]
}
