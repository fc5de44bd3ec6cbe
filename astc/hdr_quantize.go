package astc

// quantizeColorInt returns the unquantized value nearest to v at range q.
func quantizeColorInt(q quantMethod, v int) uint8 {
	return colorUnquant[q][colorQuantize[q][clampInt(v, 0, 255)]]
}

// quantizeKeepTopBits quantizes v, stepping down until the result keeps the
// bits of v selected by mask. HDR integers carry mode bits there.
func quantizeKeepTopBits(q quantMethod, v int, mask int) uint8 {
	for u := v & 0xFF; u >= 0; u-- {
		r := quantizeColorInt(q, u)
		if u&mask == int(r)&mask {
			return r
		}
	}
	return quantizeColorInt(q, v)
}

func clampF(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func roundF(v float32) int { return int(v + 0.5) }

// hdrRGBSubmode is one of the eight CEM 11 layouts: the bit widths of a, b,
// c and d, the largest encodable b, c and |d|, and the value scale.
type hdrRGBSubmode struct {
	aBits, bBits, cBits, dBits int
	bMax, cMax, dMax           float32
	scale                      float32
}

var hdrRGBSubmodes = [8]hdrRGBSubmode{
	{9, 7, 6, 7, 16384, 8192, 8192, 128},
	{9, 8, 6, 6, 32768, 8192, 4096, 128},
	{10, 6, 7, 7, 4096, 8192, 4096, 64},
	{10, 7, 7, 6, 8192, 8192, 2048, 64},
	{11, 8, 6, 5, 8192, 2048, 512, 32},
	{11, 6, 8, 6, 2048, 8192, 1024, 32},
	{12, 7, 7, 5, 2048, 2048, 256, 16},
	{12, 6, 7, 6, 1024, 2048, 512, 16},
}

// quantizeHDRRGB encodes two LNS colours, 0..65535 per channel, as the six
// integers of CEM 11. It takes the most precise submode whose ranges hold
// the endpoints and falls back to the direct layout.
func quantizeHDRRGB(c0, c1 [4]float32, q quantMethod) (out [6]uint8) {
	for i := 0; i < 3; i++ {
		c0[i] = clampF(c0[i], 0, 65535)
		c1[i] = clampF(c1[i], 0, 65535)
	}
	raw0, raw1 := c0, c1

	major := 2
	if c1[0] > c1[1] && c1[0] > c1[2] {
		major = 0
	} else if c1[1] > c1[2] {
		major = 1
	}
	if major != 0 {
		c0[0], c0[major] = c0[major], c0[0]
		c1[0], c1[major] = c1[major], c1[0]
	}

	aBase := c1[0]
	b0Base := aBase - c1[1]
	b1Base := aBase - c1[2]
	cBase := aBase - c0[0]
	d0Base := aBase - b0Base - cBase - c0[1]
	d1Base := aBase - b1Base - cBase - c0[2]

	for mode := 7; mode >= 0; mode-- {
		sm := &hdrRGBSubmodes[mode]
		if b0Base > sm.bMax || b1Base > sm.bMax || cBase > sm.cMax ||
			absF(d0Base) > sm.dMax || absF(d1Base) > sm.dMax {
			continue
		}
		scale := 1 / sm.scale

		aInt := roundF(aBase * scale)
		if aInt >= 1<<sm.aBits {
			continue
		}
		aQuant := int(quantizeColorInt(q, aInt&0xFF))
		aInt = aInt&^0xFF | aQuant
		aF := float32(aInt) * sm.scale

		cInt := roundF(clampF(aF-c0[0], 0, 65535) * scale)
		if cInt >= 1<<sm.cBits {
			continue
		}
		cLow := cInt&0x3F | (mode&1)<<7 | (aInt&0x100)>>2
		cQuant := quantizeKeepTopBits(q, cLow, 0xC0)
		cInt = cInt&^0x3F | int(cQuant&0x3F)
		cF := float32(cInt) * sm.scale

		b0Int := roundF(clampF(aF-c1[1], 0, 65535) * scale)
		b1Int := roundF(clampF(aF-c1[2], 0, 65535) * scale)
		if b0Int >= 1<<sm.bBits || b1Int >= 1<<sm.bBits {
			continue
		}

		var bit0, bit1 int
		switch mode {
		case 0, 1, 3, 4, 6:
			bit0, bit1 = b0Int>>6&1, b1Int>>6&1
		case 2:
			bit0, bit1 = aInt>>9&1, cInt>>6&1
		case 5, 7:
			bit0, bit1 = aInt>>9&1, aInt>>10&1
		}
		b0Low := b0Int&0x3F | bit0<<6 | (mode>>1&1)<<7
		b1Low := b1Int&0x3F | bit1<<6 | (mode>>2&1)<<7
		b0Quant := quantizeKeepTopBits(q, b0Low, 0xC0)
		b1Quant := quantizeKeepTopBits(q, b1Low, 0xC0)
		b0Int = b0Int&^0x3F | int(b0Quant&0x3F)
		b1Int = b1Int&^0x3F | int(b1Quant&0x3F)
		b0F := float32(b0Int) * sm.scale
		b1F := float32(b1Int) * sm.scale

		d0Int := roundF(clampF(aF-b0F-cF-c0[1], -65535, 65535) * scale)
		d1Int := roundF(clampF(aF-b1F-cF-c0[2], -65535, 65535) * scale)
		if absInt(d0Int) >= 1<<(sm.dBits-1) || absInt(d1Int) >= 1<<(sm.dBits-1) {
			continue
		}

		var bit2, bit3 int
		switch mode {
		case 0, 2:
			bit2, bit3 = d0Int>>6&1, d1Int>>6&1
		case 1, 4:
			bit2, bit3 = b0Int>>7&1, b1Int>>7&1
		case 3:
			bit2, bit3 = aInt>>9&1, cInt>>6&1
		case 5:
			bit2, bit3 = cInt>>7&1, cInt>>6&1
		case 6, 7:
			bit2, bit3 = aInt>>11&1, cInt>>6&1
		}
		var bit4, bit5 int
		if mode == 4 || mode == 6 {
			bit4, bit5 = aInt>>9&1, aInt>>10&1
		} else {
			bit4, bit5 = d0Int>>5&1, d1Int>>5&1
		}

		d0Low := d0Int&0x1F | bit4<<5 | bit2<<6 | (major&1)<<7
		d1Low := d1Int&0x1F | bit5<<5 | bit3<<6 | (major>>1&1)<<7

		out[0] = uint8(aQuant)
		out[1] = cQuant
		out[2] = b0Quant
		out[3] = b1Quant
		out[4] = quantizeKeepTopBits(q, d0Low, 0xF0)
		out[5] = quantizeKeepTopBits(q, d1Low, 0xF0)
		return out
	}

	// Direct layout: 8-bit red and green, 7-bit blue with both top bits set.
	vals := [6]float32{raw0[0], raw1[0], raw0[1], raw1[1], raw0[2], raw1[2]}
	for i := range vals {
		vals[i] = clampF(vals[i], 0, 65020)
	}
	for i := 0; i < 4; i++ {
		out[i] = quantizeColorInt(q, roundF(vals[i]/256))
	}
	for i := 4; i < 6; i++ {
		out[i] = quantizeKeepTopBits(q, roundF(vals[i]/512)+128, 0xC0)
	}
	return out
}

// quantizeHDRRGBLDRAlpha encodes CEM 14: HDR colour plus 8-bit alpha taken
// from the UNORM16 alpha of the endpoints.
func quantizeHDRRGBLDRAlpha(c0, c1 [4]float32, q quantMethod) (out [8]uint8) {
	rgb := quantizeHDRRGB(c0, c1, q)
	copy(out[:6], rgb[:])
	out[6] = quantizeColorInt(q, roundF(clampF(c0[3]/257, 0, 255)))
	out[7] = quantizeColorInt(q, roundF(clampF(c1[3]/257, 0, 255)))
	return out
}

func absF(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
