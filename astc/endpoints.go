package astc

// Colour endpoint modes. Values are fixed by ASTC.
const (
	cemLuminance           = 0
	cemLuminanceDelta      = 1
	cemLuminanceAlpha      = 4
	cemLuminanceAlphaDelta = 5
	cemRGBScale            = 6
	cemRGB                 = 8
	cemRGBDelta            = 9
	cemRGBScaleAlpha       = 10
	cemRGBA                = 12
	cemRGBADelta           = 13
)

// cemValueCount returns the number of colour integers of an endpoint mode.
func cemValueCount(cem uint8) int { return int(cem>>2+1) * 2 }

type rgba [4]int

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (c rgba) rgbSum() int { return c[0] + c[1] + c[2] }

// blueContract undoes the blue-contraction applied by the encoder.
func (c rgba) blueContract() rgba {
	c[0] = (c[0] + c[2]) >> 1
	c[1] = (c[1] + c[2]) >> 1
	return c
}

// bitTransfer moves the top bit of each b channel into a and sign-extends
// the 6-bit remainder of b.
func bitTransfer(a, b rgba) (rgba, rgba) {
	for i := range a {
		a[i] = a[i]>>1 | b[i]&0x80
		b[i] = b[i] >> 1 & 0x3F
		if b[i]&0x20 != 0 {
			b[i] -= 0x40
		}
	}
	return a, b
}

func unpackRGBA(e0, e1 rgba) (rgba, rgba) {
	if e0.rgbSum() > e1.rgbSum() {
		return e1.blueContract(), e0.blueContract()
	}
	return e0, e1
}

func unpackRGBADelta(e0, e1 rgba) (rgba, rgba) {
	e0, e1 = bitTransfer(e0, e1)
	sum := e1.rgbSum()
	for i := range e1 {
		e1[i] += e0[i]
	}
	if sum < 0 {
		e0, e1 = e1.blueContract(), e0.blueContract()
	}
	for i := range e0 {
		e0[i] = clampInt(e0[i], 0, 255)
		e1[i] = clampInt(e1[i], 0, 255)
	}
	return e0, e1
}

// unpackEndpoints expands the colour integers of one partition into endpoint
// pairs. LDR channels come out as UNORM16. lns has bit c set for every
// channel c that holds an HDR LNS value instead.
func unpackEndpoints(cem uint8, v []uint8) (e0, e1 rgba, lns uint8) {
	if isHDREndpointMode(cem) {
		return unpackHDREndpoints(cem, v)
	}
	at := func(i int) int { return int(v[i]) }

	switch cem {
	case cemLuminance:
		e0 = rgba{at(0), at(0), at(0), 255}
		e1 = rgba{at(1), at(1), at(1), 255}
	case cemLuminanceDelta:
		l0 := at(0)>>2 | at(1)&0xC0
		l1 := clampInt(l0+at(1)&0x3F, 0, 255)
		e0 = rgba{l0, l0, l0, 255}
		e1 = rgba{l1, l1, l1, 255}
	case cemLuminanceAlpha:
		e0 = rgba{at(0), at(0), at(0), at(2)}
		e1 = rgba{at(1), at(1), at(1), at(3)}
	case cemLuminanceAlphaDelta:
		l0, a0 := at(0)|at(1)&0x80<<1, at(2)|at(3)&0x80<<1
		l1, a1 := at(1)&0x7F, at(3)&0x7F
		if l1&0x40 != 0 {
			l1 -= 0x80
		}
		if a1&0x40 != 0 {
			a1 -= 0x80
		}
		l0, a0, l1, a1 = l0>>1, a0>>1, l1>>1, a1>>1
		l1 = clampInt(l1+l0, 0, 255)
		a1 = clampInt(a1+a0, 0, 255)
		e0 = rgba{l0, l0, l0, a0}
		e1 = rgba{l1, l1, l1, a1}
	case cemRGBScale:
		s := at(3)
		e1 = rgba{at(0), at(1), at(2), 255}
		e0 = rgba{at(0) * s >> 8, at(1) * s >> 8, at(2) * s >> 8, 255}
	case cemRGBScaleAlpha:
		s := at(3)
		e1 = rgba{at(0), at(1), at(2), at(5)}
		e0 = rgba{at(0) * s >> 8, at(1) * s >> 8, at(2) * s >> 8, at(4)}
	case cemRGB:
		e0, e1 = unpackRGBA(rgba{at(0), at(2), at(4), 255}, rgba{at(1), at(3), at(5), 255})
		e0[3], e1[3] = 255, 255
	case cemRGBDelta:
		e0, e1 = unpackRGBADelta(rgba{at(0), at(2), at(4), 0}, rgba{at(1), at(3), at(5), 0})
		e0[3], e1[3] = 255, 255
	case cemRGBA:
		e0, e1 = unpackRGBA(rgba{at(0), at(2), at(4), at(6)}, rgba{at(1), at(3), at(5), at(7)})
	case cemRGBADelta:
		e0, e1 = unpackRGBADelta(rgba{at(0), at(2), at(4), at(6)}, rgba{at(1), at(3), at(5), at(7)})
	}

	for i := range e0 {
		e0[i] *= 257
		e1[i] *= 257
	}
	return e0, e1, 0
}
