package astc

const (
	blockMaxWeights     = 64
	blockMinWeightBits  = 24
	blockMaxWeightBits  = 96
	blockMaxPartitions  = 4
	blockMaxTexels      = 216
	blockMaxColorInts   = 18
	partitionIndexBits  = 10
	weightsPlane2Offset = 32
	blockModeCount      = 1 << 11
)

// blockMode is the decoded form of the 11-bit block mode field.
type blockMode struct {
	ok          bool
	gridX       int
	gridY       int
	gridZ       int
	dualPlane   bool
	weightQuant quantMethod
	weightBits  int
}

// weightCount returns the number of weights per plane.
func (m blockMode) weightCount() int { return m.gridX * m.gridY * m.gridZ }

// symbolCount returns the number of ISE symbols in the weight stream.
func (m blockMode) symbolCount() int {
	if m.dualPlane {
		return 2 * m.weightCount()
	}
	return m.weightCount()
}

// decodeBlockMode2D decodes the block mode field of a 2D block.
func decodeBlockMode2D(mode int) blockMode {
	r := mode>>4&1 | mode&3<<1
	h := mode >> 9 & 1
	d := mode >> 10 & 1
	a := mode >> 5 & 3
	var x, y int

	if mode&3 != 0 {
		b := mode >> 7 & 3
		switch mode >> 2 & 3 {
		case 0:
			x, y = b+4, a+2
		case 1:
			x, y = b+8, a+2
		case 2:
			x, y = a+2, b+8
		case 3:
			b &= 1
			if mode&0x100 != 0 {
				x, y = b+2, a+2
			} else {
				x, y = a+2, b+6
			}
		}
	} else {
		r = mode>>4&1 | mode>>2&3<<1
		if mode>>2&3 == 0 {
			return blockMode{}
		}
		b := mode >> 9 & 3
		switch mode >> 7 & 3 {
		case 0:
			x, y = 12, a+2
		case 1:
			x, y = a+2, 12
		case 2:
			x, y = a+6, b+6
			d, h = 0, 0
		case 3:
			switch a {
			case 0:
				x, y = 6, 10
			case 1:
				x, y = 10, 6
			default:
				return blockMode{}
			}
		}
	}
	return finishBlockMode(x, y, 1, r, h, d)
}

// decodeBlockMode3D decodes the block mode field of a 3D block.
func decodeBlockMode3D(mode int) blockMode {
	r := mode>>4&1 | mode&3<<1
	h := mode >> 9 & 1
	d := mode >> 10 & 1
	a := mode >> 5 & 3
	var x, y, z int

	if mode&3 != 0 {
		x, y, z = a+2, mode>>7&3+2, mode>>2&3+2
	} else {
		r = mode>>4&1 | mode>>2&3<<1
		if mode>>2&3 == 0 {
			return blockMode{}
		}
		b := mode >> 9 & 3
		if mode>>7&3 != 3 {
			d, h = 0, 0
		}
		switch mode >> 7 & 3 {
		case 0:
			x, y, z = 6, b+2, a+2
		case 1:
			x, y, z = a+2, 6, b+2
		case 2:
			x, y, z = a+2, b+2, 6
		case 3:
			x, y, z = 2, 2, 2
			switch a {
			case 0:
				x = 6
			case 1:
				y = 6
			case 2:
				z = 6
			default:
				return blockMode{}
			}
		}
	}
	return finishBlockMode(x, y, z, r, h, d)
}

func finishBlockMode(x, y, z, r, h, d int) blockMode {
	q := r - 2 + 6*h
	if q < int(quant2) || q > int(quant32) {
		return blockMode{}
	}
	m := blockMode{
		gridX:       x,
		gridY:       y,
		gridZ:       z,
		dualPlane:   d != 0,
		weightQuant: quantMethod(q),
	}
	n := m.symbolCount()
	m.weightBits = iseBitCount(n, m.weightQuant)
	if n > blockMaxWeights || m.weightBits < blockMinWeightBits || m.weightBits > blockMaxWeightBits {
		return blockMode{}
	}
	m.ok = true
	return m
}
