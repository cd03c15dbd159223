// Package color provides the two color representations stored in geometry
// attributes and the conversions between them.
package color

// Linear is a scene-linear RGBA color with float components.
// Components are not clamped; values above 1 are valid light intensities.
type Linear struct {
	R, G, B, A float32
}

// Encoded is an sRGB-encoded RGBA color with byte components.
// RGB are gamma-encoded; alpha is always linear (never gamma-encoded).
type Encoded struct {
	R, G, B, A uint8
}

// Rec.709 luminance weights used when a color collapses to a scalar.
const (
	LumaR = 0.2126
	LumaG = 0.7152
	LumaB = 0.0722
)

// Encode converts a linear color to its sRGB byte representation.
func (c Linear) Encode() Encoded {
	return Encoded{
		R: UnitToByte(LinearToSRGB(c.R)),
		G: UnitToByte(LinearToSRGB(c.G)),
		B: UnitToByte(LinearToSRGB(c.B)),
		A: UnitToByte(c.A),
	}
}

// Decode converts an sRGB byte color to linear space.
func (c Encoded) Decode() Linear {
	return Linear{
		R: SRGBToLinearFast(c.R),
		G: SRGBToLinearFast(c.G),
		B: SRGBToLinearFast(c.B),
		A: float32(c.A) / 255.0,
	}
}

// Luminance returns the Rec.709 weighted grayscale value of the color.
// Alpha does not contribute.
func Luminance(c Linear) float32 {
	return LumaR*c.R + LumaG*c.G + LumaB*c.B
}
