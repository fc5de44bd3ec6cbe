package astc

import (
	"bytes"
	"encoding/binary"
)

// Void-extent prefixes of constant blocks with all extent coordinates set to
// ones. The HDR prefix sets bit 9 and stores binary16 colour.
var (
	constBlockPrefix    = [8]byte{0xFC, 0xFD, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	constBlockF16Prefix = [8]byte{0xFC, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
)

// constBlock packs a constant colour, UNORM16 or binary16 when f16 is set.
func constBlock(c [4]uint16, f16 bool) (out [BlockBytes]byte) {
	if f16 {
		copy(out[:8], constBlockF16Prefix[:])
	} else {
		copy(out[:8], constBlockPrefix[:])
	}
	for i, v := range c {
		binary.LittleEndian.PutUint16(out[8+2*i:], v)
	}
	return out
}

// isConstBlock reports whether block carries either constant-block prefix.
func isConstBlock(block []byte) bool {
	return len(block) >= BlockBytes &&
		(bytes.Equal(block[:8], constBlockPrefix[:]) || bytes.Equal(block[:8], constBlockF16Prefix[:]))
}

// isConstant reports whether every texel of blk has the same colour.
func isConstant(blk *DecodedBlock) bool {
	n := blk.Footprint.Texels()
	for t := 1; t < n; t++ {
		if blk.Texels[t] != blk.Texels[0] {
			return false
		}
	}
	return true
}
