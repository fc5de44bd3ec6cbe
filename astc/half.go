package astc

import (
	"math"

	"github.com/mrjoshuak/go-openexr/half"
)

const halfOne = 0x3C00

// halfToFloat32 converts an IEEE 754 binary16 value to float32.
func halfToFloat32(h uint16) float32 { return half.Half(h).Float32() }

// float32ToHalf converts f to binary16 with round-to-nearest, ties-to-even.
func float32ToHalf(f float32) uint16 { return uint16(half.FromFloat32(f)) }

// unorm16ToHalf maps a UNORM16 value onto [0,1] in binary16.
func unorm16ToHalf(v uint16) uint16 {
	return float32ToHalf(float32(v) * (1.0 / 65535.0))
}

// halfToUnorm16 clamps h to [0,1] and rescales it to UNORM16.
func halfToUnorm16(h uint16) uint16 {
	f := halfToFloat32(h)
	if !(f > 0) {
		return 0
	}
	if f >= 1 {
		return 0xFFFF
	}
	return uint16(f*65535 + 0.5)
}

func unorm16ToUnorm8(v uint16) uint8 {
	// Exact inverse of 8->16 bit replication.
	return uint8((uint32(v) + 128) / 257)
}

// lnsToHalf converts a 16-bit ASTC LNS value to binary16. The piecewise
// mantissa map is fixed by the ASTC HDR decode procedure.
func lnsToHalf(p uint16) uint16 {
	mc := int(p & 0x7FF)
	ec := int(p >> 11)

	var mt int
	switch {
	case mc < 512:
		mt = mc * 3
	case mc < 1536:
		mt = mc*4 - 512
	default:
		mt = mc*5 - 2048
	}
	return uint16(min(ec<<10|mt>>3, 0x7BFF))
}

// halfToLNS maps a binary16 value into the ASTC LNS domain. It is the
// inverse of lnsToHalf up to rounding. Negative values and NaN map to 0.
func halfToLNS(h uint16) uint16 {
	v := float64(halfToFloat32(h))
	if !(v > 1.0/67108864.0) {
		return 0
	}
	if v >= 65536 {
		return 0xFFFF
	}

	mant, exp := math.Frexp(v)
	var a float64
	if exp < -13 {
		// Below 2^-14 the LNS code is linear.
		a, exp = v*33554432, 0
	} else {
		a, exp = (mant-0.5)*4096, exp+14
	}
	switch {
	case a < 384:
		a *= 4.0 / 3.0
	case a <= 1408:
		a += 128
	default:
		a = (a + 512) * (4.0 / 5.0)
	}
	a += float64(exp)*2048 + 1
	if a <= 0 {
		return 0
	}
	if a >= 65535 {
		return 0xFFFF
	}
	return uint16(a + 0.5)
}
