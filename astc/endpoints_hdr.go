package astc

// HDR colour endpoint modes. HDR channels unpack to 12-bit LNS values
// shifted left by four.
const (
	cemHDRLuminanceLarge  = 2
	cemHDRLuminanceSmall  = 3
	cemHDRRGBScale        = 7
	cemHDRRGB             = 11
	cemHDRRGBLDRAlpha     = 14
	cemHDRRGBA            = 15
	lnsRGB                = 0x7
	lnsRGBA               = 0xF
	hdrAlphaOne       int = 0xFFFF
)

// isHDREndpointMode reports whether cem carries LNS colour channels.
func isHDREndpointMode(cem uint8) bool {
	switch cem {
	case cemHDRLuminanceLarge, cemHDRLuminanceSmall, cemHDRRGBScale,
		cemHDRRGB, cemHDRRGBLDRAlpha, cemHDRRGBA:
		return true
	}
	return false
}

// signExtend interprets the low bits of v as a two's complement number.
func signExtend(v, bits int) int {
	shift := 32 - bits
	return int(int32(uint32(v)<<shift) >> shift)
}

func hdrLuminanceLarge(v0, v1 int) (rgba, rgba) {
	var y0, y1 int
	if v1 >= v0 {
		y0, y1 = v0<<4, v1<<4
	} else {
		y0, y1 = v1<<4+8, v0<<4-8
	}
	return rgba{y0 << 4, y0 << 4, y0 << 4, hdrAlphaOne}, rgba{y1 << 4, y1 << 4, y1 << 4, hdrAlphaOne}
}

func hdrLuminanceSmall(v0, v1 int) (rgba, rgba) {
	var y0, y1 int
	if v0&0x80 != 0 {
		y0 = (v1&0xE0)<<4 | (v0&0x7F)<<2
		y1 = (v1 & 0x1F) << 2
	} else {
		y0 = (v1&0xF0)<<4 | (v0&0x7F)<<1
		y1 = (v1 & 0xF) << 1
	}
	y1 = min(y1+y0, 0xFFF)
	return rgba{y0 << 4, y0 << 4, y0 << 4, hdrAlphaOne}, rgba{y1 << 4, y1 << 4, y1 << 4, hdrAlphaOne}
}

// hdrRGBScale unpacks CEM 7: a base colour and a scale subtracted from
// every channel for the low endpoint.
func hdrRGBScale(v []uint8) (rgba, rgba) {
	v0, v1, v2, v3 := int(v[0]), int(v[1]), int(v[2]), int(v[3])

	modeval := (v0&0xC0)>>6 | (v1&0x80)>>7<<2 | (v2&0x80)>>7<<3
	var major, mode int
	switch {
	case modeval&0xC != 0xC:
		major, mode = modeval>>2, modeval&3
	case modeval != 0xF:
		major, mode = modeval&3, 4
	default:
		major, mode = 0, 5
	}

	red, green, blue, scale := v0&0x3F, v1&0x1F, v2&0x1F, v3&0x1F
	bit0, bit1 := v1>>6&1, v1>>5&1
	bit2, bit3 := v2>>6&1, v2>>5&1
	bit4, bit5, bit6 := v3>>7&1, v3>>6&1, v3>>5&1

	oh := 1 << mode
	if oh&0x30 != 0 {
		green |= bit0 << 6
		blue |= bit2 << 6
	}
	if oh&0x3A != 0 {
		green |= bit1 << 5
		blue |= bit3 << 5
	}
	if oh&0x3D != 0 {
		scale |= bit6 << 5
	}
	if oh&0x2D != 0 {
		scale |= bit5 << 6
	}
	if oh&0x04 != 0 {
		scale |= bit4 << 7
		red |= bit3 << 6
	}
	if oh&0x3B != 0 {
		red |= bit4 << 6
	}
	if oh&0x10 != 0 {
		red |= bit5 << 7
	}
	if oh&0x0F != 0 {
		red |= bit2 << 7
	}
	if oh&0x05 != 0 {
		red |= bit1<<8 | bit0<<9
	}
	if oh&0x0A != 0 {
		red |= bit0 << 8
	}
	if oh&0x02 != 0 {
		red |= bit6<<9 | bit5<<10
	}
	if oh&0x01 != 0 {
		red |= bit3 << 10
	}

	shift := [...]int{1, 1, 2, 3, 4, 5}[mode]
	red, green, blue, scale = red<<shift, green<<shift, blue<<shift, scale<<shift
	if mode != 5 {
		green = red - green
		blue = red - blue
	}
	switch major {
	case 1:
		red, green = green, red
	case 2:
		red, blue = blue, red
	}

	hi := rgba{max(red, 0) << 4, max(green, 0) << 4, max(blue, 0) << 4, hdrAlphaOne}
	lo := rgba{max(red-scale, 0) << 4, max(green-scale, 0) << 4, max(blue-scale, 0) << 4, hdrAlphaOne}
	return lo, hi
}

// hdrRGB unpacks the six integers of CEM 11.
func hdrRGB(v []uint8) (rgba, rgba) {
	v0, v1, v2, v3, v4, v5 := int(v[0]), int(v[1]), int(v[2]), int(v[3]), int(v[4]), int(v[5])

	modeval := (v1&0x80)>>7 | (v2&0x80)>>7<<1 | (v3&0x80)>>7<<2
	major := (v4&0x80)>>7 | (v5&0x80)>>7<<1
	if major == 3 {
		return rgba{v0 << 8, v2 << 8, (v4 & 0x7F) << 9, hdrAlphaOne},
			rgba{v1 << 8, v3 << 8, (v5 & 0x7F) << 9, hdrAlphaOne}
	}

	a := v0 | (v1&0x40)<<2
	b0, b1 := v2&0x3F, v3&0x3F
	c := v1 & 0x3F
	d0, d1 := v4&0x7F, v5&0x7F
	dbits := [...]int{7, 6, 7, 6, 5, 6, 5, 6}[modeval]

	bit0, bit1 := v2>>6&1, v3>>6&1
	bit2, bit3 := v4>>6&1, v5>>6&1
	bit4, bit5 := v4>>5&1, v5>>5&1

	oh := 1 << modeval
	if oh&0xA4 != 0 {
		a |= bit0 << 9
	}
	if oh&0x8 != 0 {
		a |= bit2 << 9
	}
	if oh&0x50 != 0 {
		a |= bit4<<9 | bit5<<10
	}
	if oh&0xA0 != 0 {
		a |= bit1 << 10
	}
	if oh&0xC0 != 0 {
		a |= bit2 << 11
	}
	if oh&0x4 != 0 {
		c |= bit1 << 6
	}
	if oh&0xE8 != 0 {
		c |= bit3 << 6
	}
	if oh&0x20 != 0 {
		c |= bit2 << 7
	}
	if oh&0x5B != 0 {
		b0 |= bit0 << 6
		b1 |= bit1 << 6
	}
	if oh&0x12 != 0 {
		b0 |= bit2 << 7
		b1 |= bit3 << 7
	}
	if oh&0xAF != 0 {
		d0 |= bit4 << 5
		d1 |= bit5 << 5
	}
	if oh&0x5 != 0 {
		d0 |= bit2 << 6
		d1 |= bit3 << 6
	}
	d0, d1 = signExtend(d0, dbits), signExtend(d1, dbits)

	shift := modeval>>1 ^ 3
	a, b0, b1, c, d0, d1 = a<<shift, b0<<shift, b1<<shift, c<<shift, d0*(1<<shift), d1*(1<<shift)

	hi := rgba{a, a - b0, a - b1, 0}
	lo := rgba{a - c, a - b0 - c - d0, a - b1 - c - d1, 0}
	for i := 0; i < 3; i++ {
		lo[i] = clampInt(lo[i], 0, 0xFFF)
		hi[i] = clampInt(hi[i], 0, 0xFFF)
	}
	switch major {
	case 1:
		lo[0], lo[1] = lo[1], lo[0]
		hi[0], hi[1] = hi[1], hi[0]
	case 2:
		lo[0], lo[2] = lo[2], lo[0]
		hi[0], hi[2] = hi[2], hi[0]
	}
	for i := 0; i < 3; i++ {
		lo[i] <<= 4
		hi[i] <<= 4
	}
	lo[3], hi[3] = hdrAlphaOne, hdrAlphaOne
	return lo, hi
}

// hdrAlpha unpacks the two HDR alpha integers of CEM 15.
func hdrAlpha(v6, v7 int) (int, int) {
	sel := v6>>7&1 | v7>>6&2
	v6 &= 0x7F
	v7 &= 0x7F
	if sel == 3 {
		return v6 << 5 << 4, v7 << 5 << 4
	}
	v6 |= v7 << (sel + 1) & 0x780
	v7 &= 0x3F >> sel
	v7 ^= 32 >> sel
	v7 -= 32 >> sel
	v6 <<= 4 - sel
	v7 <<= 4 - sel
	v7 = clampInt(v7+v6, 0, 0xFFF)
	return v6 << 4, v7 << 4
}

// unpackHDREndpoints expands the HDR endpoint modes. lns has bit c set for
// every channel c that holds an LNS value. Modes without alpha decode alpha
// as UNORM16 one.
func unpackHDREndpoints(cem uint8, v []uint8) (e0, e1 rgba, lns uint8) {
	switch cem {
	case cemHDRLuminanceLarge:
		e0, e1 = hdrLuminanceLarge(int(v[0]), int(v[1]))
	case cemHDRLuminanceSmall:
		e0, e1 = hdrLuminanceSmall(int(v[0]), int(v[1]))
	case cemHDRRGBScale:
		e0, e1 = hdrRGBScale(v)
	case cemHDRRGB:
		e0, e1 = hdrRGB(v)
	case cemHDRRGBLDRAlpha:
		e0, e1 = hdrRGB(v)
		e0[3], e1[3] = int(v[6])*257, int(v[7])*257
	case cemHDRRGBA:
		e0, e1 = hdrRGB(v)
		e0[3], e1[3] = hdrAlpha(int(v[6]), int(v[7]))
		return e0, e1, lnsRGBA
	}
	return e0, e1, lnsRGB
}
