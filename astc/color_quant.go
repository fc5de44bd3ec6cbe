package astc

// Endpoint colour tables for every range from quant6 up, generated from the
// ASTC unquantization rules:
//
//	colorUnquant[q][symbol]   8-bit value of an ISE symbol
//	colorQuantize[q][value]   nearest symbol for an 8-bit value
var (
	colorUnquant  [quant256 + 1][256]uint8
	colorQuantize [quant256 + 1][256]uint8
)

func init() {
	for q := quant6; q <= quant256; q++ {
		n := q.levels()
		for s := 0; s < n; s++ {
			colorUnquant[q][s] = colorUnquantSymbol(q, s)
		}
		for v := 0; v < 256; v++ {
			best, bestErr := 0, 1<<30
			for s := 0; s < n; s++ {
				d := int(colorUnquant[q][s]) - v
				if d < 0 {
					d = -d
				}
				if d < bestErr {
					best, bestErr = s, d
				}
			}
			colorQuantize[q][v] = uint8(best)
		}
	}
}

func colorUnquantSymbol(q quantMethod, sym int) uint8 {
	r := iseRanges[q]
	nb := int(r.bits)
	if !r.trits && !r.quints {
		return replicateBits(sym, nb)
	}

	d := sym >> nb
	bit := func(i int) int { return sym >> i & 1 }
	a := 0
	if bit(0) != 0 {
		a = 0x1FF
	}

	// b..f are the low bits above bit 0.
	b, c, e, f := bit(1), bit(2), bit(4), bit(5)
	dd := bit(3)

	var scale, base int
	if r.trits {
		switch nb {
		case 1:
			scale = 204
		case 2:
			scale, base = 93, b<<8|b<<4|b<<2|b<<1
		case 3:
			scale, base = 44, c<<8|b<<7|c<<3|b<<2|c<<1|b
		case 4:
			scale, base = 22, dd<<8|c<<7|b<<6|dd<<2|c<<1|b
		case 5:
			scale, base = 11, e<<8|dd<<7|c<<6|b<<5|e<<1|dd
		case 6:
			scale, base = 5, f<<8|e<<7|dd<<6|c<<5|b<<4|f
		}
	} else {
		switch nb {
		case 1:
			scale = 113
		case 2:
			scale, base = 54, b<<8|b<<3|b<<2
		case 3:
			scale, base = 26, c<<8|b<<7|c<<2|b<<1|c
		case 4:
			scale, base = 13, dd<<8|c<<7|b<<6|dd<<1|c
		case 5:
			scale, base = 6, e<<8|dd<<7|c<<6|b<<5|e
		}
	}

	t := d*scale + base
	t ^= a
	return uint8(a&0x80 | t>>2)
}

// replicateBits widens an n-bit value to 8 bits by repeating its pattern.
func replicateBits(v, n int) uint8 {
	if n <= 0 {
		return 0
	}
	out, have := 0, 0
	for have < 8 {
		out = out<<n | v
		have += n
	}
	return uint8(out >> (have - 8))
}
