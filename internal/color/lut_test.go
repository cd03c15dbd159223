package color

import (
	"math"
	"testing"
)

// TestSRGBToLinearAccuracy tests that the LUT matches the math.Pow implementation.
func TestSRGBToLinearAccuracy(t *testing.T) {
	for i := 0; i < 256; i++ {
		fast := SRGBToLinearFast(uint8(i))
		slow := SRGBToLinearSlow(uint8(i))
		if fast != slow {
			t.Errorf("sRGB %d: fast=%f, slow=%f", i, fast, slow)
		}
	}
}

// TestSRGBToLinearMonotonic ensures decoding preserves ordering.
func TestSRGBToLinearMonotonic(t *testing.T) {
	prev := float32(-1)
	for i := 0; i < 256; i++ {
		v := SRGBToLinearFast(uint8(i))
		if v <= prev {
			t.Fatalf("LUT not strictly increasing at %d: %f <= %f", i, v, prev)
		}
		prev = v
	}
}

func TestSRGBToLinearKnownValues(t *testing.T) {
	tests := []struct {
		in   uint8
		want float64
	}{
		{0, 0},
		{255, 1},
		{128, math.Pow((128.0/255.0+0.055)/1.055, 2.4)},
	}
	for _, tt := range tests {
		got := SRGBToLinearFast(tt.in)
		if !floatNear(got, float32(tt.want), 1e-6) {
			t.Errorf("SRGBToLinearFast(%d) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func BenchmarkSRGBToLinear_LUT(b *testing.B) {
	var result float32
	for i := 0; i < b.N; i++ {
		result = SRGBToLinearFast(uint8(i))
	}
	_ = result
}

func BenchmarkSRGBToLinear_MathPow(b *testing.B) {
	var result float32
	for i := 0; i < b.N; i++ {
		result = SRGBToLinearSlow(uint8(i))
	}
	_ = result
}
