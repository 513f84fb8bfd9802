package model

import "fmt"

// Color is a 24-bit RGB color as used for text fills.
type Color struct {
	R, G, B uint8
}

// ColorFromPacked decomposes a packed 24-bit integer into channels:
// red in bits 16-23, green in 8-15, blue in 0-7.
func ColorFromPacked(c uint32) Color {
	return Color{
		R: uint8((c >> 16) & 0xFF),
		G: uint8((c >> 8) & 0xFF),
		B: uint8(c & 0xFF),
	}
}

// Packed re-encodes the channels into a 24-bit integer. Packed and
// ColorFromPacked are exact inverses over [0, 0xFFFFFF].
func (c Color) Packed() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// Hex returns the "#rrggbb" form.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ColorInfo pairs a color with its hex form for summary reporting.
type ColorInfo struct {
	RGB Color  `json:"rgb"`
	Hex string `json:"hex"`
}
