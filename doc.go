/*
Package gllcms applies color management to video frames on the GPU.

A Store holds the user's Settings: an optional ICC profile for the source
plus brightness, contrast, hue and saturation adjustments. On the first
frame after the settings change, a Filter builds a color transform from
the chain [ICC profile] -> [adjustment profile] -> sRGB, materializes it
into a lookup table covering all 2^24 RGB values and uploads that table to
the GPU. Every frame is then drawn through a fragment shader that looks up
each pixel in the table. Default settings bypass the table and copy frames
unchanged.
*/
package gllcms

import "fmt"

type Version struct {
	Major, Minor, Patch uint
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

var CurrentVersion = Version{0, 3, 0}
