package color

import "math"

// sRGBToLinearLUT provides O(1) decoding of byte colors.
// Pre-computed 256 entries, 1KB memory cost.
// Converts sRGB byte [0-255] → Linear float32 [0.0-1.0].
var sRGBToLinearLUT [256]float32

func init() {
	for i := 0; i < 256; i++ {
		sRGBToLinearLUT[i] = SRGBToLinearSlow(uint8(i))
	}
}

// SRGBToLinearFast converts an sRGB byte to linear float32 using the lookup table.
// Decoding happens once per element whenever a byte color attribute is read
// as any other kind, so it sits on the hot path of attribute conversion.
//
// Example:
//
//	r := SRGBToLinearFast(128) // ~0.2159 (not 0.5!)
func SRGBToLinearFast(s uint8) float32 {
	return sRGBToLinearLUT[s]
}

// SRGBToLinearSlow converts an sRGB byte to linear float32 using math.Pow.
// This is the reference implementation used to build the table.
func SRGBToLinearSlow(s uint8) float32 {
	sf := float64(s) / 255.0
	if sf <= 0.04045 {
		return float32(sf / 12.92)
	}
	return float32(math.Pow((sf+0.055)/1.055, 2.4))
}
