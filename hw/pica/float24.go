package pica

import (
	"fmt"
	"math"
)

// Float24 is a PICA 24-bit float (1 sign, 7 exponent, 16 mantissa bits),
// held as the float32 it converts to.
type Float24 float32

const (
	f24Mantissa = 16
	f24Exponent = 7
	f24Bias     = 128 - (1 << (f24Exponent - 1))
)

// Float24FromRaw converts the low 24 bits of raw to a float.
func Float24FromRaw(raw uint32) Float24 {
	raw &= 0xFFFFFF
	exp := (raw >> f24Mantissa) & (1<<f24Exponent - 1)
	mant := raw & (1<<f24Mantissa - 1)
	sign := (raw >> (f24Exponent + f24Mantissa)) << 31

	bits := sign
	if raw&(1<<(f24Mantissa+f24Exponent)-1) != 0 {
		if exp == 1<<f24Exponent-1 {
			exp = 255
		} else {
			exp += f24Bias
		}
		bits |= mant<<(23-f24Mantissa) | exp<<23
	}
	return Float24(math.Float32frombits(bits))
}

func Float24FromFloat32(f float32) Float24 { return Float24(f) }

func (f Float24) Float32() float32 { return float32(f) }

// Vec4 is a 4-component vector of x, y, z, w.
type Vec4 [4]Float24

func MakeVec4(x, y, z, w float32) Vec4 {
	return Vec4{Float24(x), Float24(y), Float24(z), Float24(w)}
}

func (v Vec4) String() string {
	return fmt.Sprintf("(%g, %g, %g, %g)", v[0], v[1], v[2], v[3])
}

func f32(bits uint32) float32 { return math.Float32frombits(bits) }

// AttributeBuffer holds the 16 attributes of one vertex.
type AttributeBuffer struct {
	Attr [16]Vec4
}
