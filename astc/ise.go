package astc

import "math/bits"

// Trit and quint block tables. The forward tables follow the ASTC decode
// procedure; the inverse tables keep the smallest packed value for each
// tuple so that trailing zero elements leave the unwritten high bits clear.
var (
	tritsOfInteger  [256][5]uint8
	quintsOfInteger [128][3]uint8
	integerOfTrits  [3][3][3][3][3]uint8
	integerOfQuints [5][5][5]uint8
)

var (
	tritBitCounts  = [5]int{2, 2, 1, 2, 1}
	tritBitShifts  = [5]int{0, 2, 4, 5, 7}
	quintBitCounts = [3]int{3, 2, 2}
	quintBitShifts = [3]int{0, 3, 5}
)

func init() {
	for t := 255; t >= 0; t-- {
		v := unpackTrits(t)
		tritsOfInteger[t] = v
		integerOfTrits[v[4]][v[3]][v[2]][v[1]][v[0]] = uint8(t)
	}
	for q := 127; q >= 0; q-- {
		v := unpackQuints(q)
		quintsOfInteger[q] = v
		integerOfQuints[v[2]][v[1]][v[0]] = uint8(q)
	}
}

func unpackTrits(t int) (out [5]uint8) {
	var c int
	if t>>2&7 == 7 {
		c = (t>>5&7)<<2 | t&3
		out[4], out[3] = 2, 2
	} else {
		c = t & 0x1F
		if t>>5&3 == 3 {
			out[4], out[3] = 2, uint8(t>>7&1)
		} else {
			out[4], out[3] = uint8(t>>7&1), uint8(t>>5&3)
		}
	}

	switch {
	case c&3 == 3:
		out[2], out[1] = 2, uint8(c>>4&1)
		out[0] = uint8((c>>3&1)<<1 | (c>>2&1)&^(c>>3&1))
	case c>>2&3 == 3:
		out[2], out[1], out[0] = 2, 2, uint8(c&3)
	default:
		out[2], out[1] = uint8(c>>4&1), uint8(c>>2&3)
		out[0] = uint8((c>>1&1)<<1 | (c&1)&^(c>>1&1))
	}
	return out
}

func unpackQuints(q int) (out [3]uint8) {
	if q>>1&3 == 3 && q>>5&3 == 0 {
		q0 := q & 1
		out[2] = uint8(q0<<2 | (q>>4&1&^q0)<<1 | q>>3&1&^q0)
		out[1], out[0] = 4, 4
		return out
	}

	var c int
	if q>>1&3 == 3 {
		out[2] = 4
		c = (q>>3&3)<<3 | (^(q>>5)&3)<<1 | q&1
	} else {
		out[2] = uint8(q >> 5 & 3)
		c = q & 0x1F
	}

	if c&7 == 5 {
		out[1], out[0] = 4, uint8(c>>3&3)
	} else {
		out[1], out[0] = uint8(c>>3&3), uint8(c&7)
	}
	return out
}

// getBits reads count bits starting at bit offset, LSB first.
func getBits(data []byte, offset, count int) uint32 {
	var v uint32
	for i := 0; i < count; i++ {
		p := offset + i
		v |= uint32(data[p>>3]>>(p&7)&1) << i
	}
	return v
}

// setBits writes the low count bits of v starting at bit offset.
func setBits(data []byte, offset, count int, v uint32) {
	for i := 0; i < count; i++ {
		p := offset + i
		if v>>i&1 != 0 {
			data[p>>3] |= 1 << (p & 7)
		} else {
			data[p>>3] &^= 1 << (p & 7)
		}
	}
}

// reverseBlock mirrors all 128 bits of a block.
func reverseBlock(b *[BlockBytes]byte) (out [BlockBytes]byte) {
	for i := range b {
		out[BlockBytes-1-i] = bits.Reverse8(b[i])
	}
	return out
}

// decodeISE reads count elements of range q from data at bit offset.
func decodeISE(q quantMethod, count int, data []byte, offset int, out []uint8) {
	r := iseRanges[q]
	nb := int(r.bits)

	switch {
	case r.trits:
		for i := 0; i < count; i += 5 {
			var low [5]uint32
			t := 0
			for j := 0; j < 5 && i+j < count; j++ {
				low[j] = getBits(data, offset, nb)
				offset += nb
				t |= int(getBits(data, offset, tritBitCounts[j])) << tritBitShifts[j]
				offset += tritBitCounts[j]
			}
			tv := tritsOfInteger[t]
			for j := 0; j < 5 && i+j < count; j++ {
				out[i+j] = tv[j]<<nb | uint8(low[j])
			}
		}
	case r.quints:
		for i := 0; i < count; i += 3 {
			var low [3]uint32
			t := 0
			for j := 0; j < 3 && i+j < count; j++ {
				low[j] = getBits(data, offset, nb)
				offset += nb
				t |= int(getBits(data, offset, quintBitCounts[j])) << quintBitShifts[j]
				offset += quintBitCounts[j]
			}
			qv := quintsOfInteger[t]
			for j := 0; j < 3 && i+j < count; j++ {
				out[i+j] = qv[j]<<nb | uint8(low[j])
			}
		}
	default:
		for i := 0; i < count; i++ {
			out[i] = uint8(getBits(data, offset, nb))
			offset += nb
		}
	}
}

// encodeISE writes count elements of range q to data at bit offset.
//
// Missing elements of a trailing trit or quint group are encoded as zero.
func encodeISE(q quantMethod, count int, in []uint8, data []byte, offset int) {
	r := iseRanges[q]
	nb := int(r.bits)
	mask := uint8(1)<<nb - 1

	switch {
	case r.trits:
		for i := 0; i < count; i += 5 {
			var hi [5]uint8
			for j := 0; j < 5 && i+j < count; j++ {
				hi[j] = in[i+j] >> nb
			}
			t := uint32(integerOfTrits[hi[4]][hi[3]][hi[2]][hi[1]][hi[0]])
			for j := 0; j < 5 && i+j < count; j++ {
				setBits(data, offset, nb, uint32(in[i+j]&mask))
				offset += nb
				setBits(data, offset, tritBitCounts[j], t>>tritBitShifts[j])
				offset += tritBitCounts[j]
			}
		}
	case r.quints:
		for i := 0; i < count; i += 3 {
			var hi [3]uint8
			for j := 0; j < 3 && i+j < count; j++ {
				hi[j] = in[i+j] >> nb
			}
			t := uint32(integerOfQuints[hi[2]][hi[1]][hi[0]])
			for j := 0; j < 3 && i+j < count; j++ {
				setBits(data, offset, nb, uint32(in[i+j]&mask))
				offset += nb
				setBits(data, offset, quintBitCounts[j], t>>quintBitShifts[j])
				offset += quintBitCounts[j]
			}
		}
	default:
		for i := 0; i < count; i++ {
			setBits(data, offset, nb, uint32(in[i]))
			offset += nb
		}
	}
}
