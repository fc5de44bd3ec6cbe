package astc

import "encoding/binary"

// unpackBlock converts a physical block into its symbolic form. For error
// blocks the returned reason says why the block is invalid.
func unpackBlock(ctx *blockContext, block []byte) (sb SymbolicBlock, reason string) {
	sb.Plane2Component = -1
	if len(block) < BlockBytes {
		return sb, "short block"
	}

	mode := int(getBits(block, 0, 11))
	if mode&0x1FF == 0x1FC {
		return unpackVoidExtent(ctx, block, mode)
	}

	m := ctx.modes[mode]
	if !m.ok {
		return sb, "reserved or oversized block mode"
	}

	pc := int(getBits(block, 11, 2)) + 1
	if m.dualPlane && pc == 4 {
		return sb, "dual plane with four partitions"
	}

	sb.Mode = uint16(mode)
	sb.Partitions = pc

	// Weights are stored bit-reversed from the top of the block.
	var raw [BlockBytes]byte
	copy(raw[:], block)
	rev := reverseBlock(&raw)
	var syms [blockMaxWeights]uint8
	decodeISE(m.weightQuant, m.symbolCount(), rev[:], 0, syms[:])
	uq := &weightUnquant[m.weightQuant]
	n := m.weightCount()
	if m.dualPlane {
		for i := 0; i < n; i++ {
			sb.Weights[i] = uq[syms[2*i]]
			sb.Weights[i+weightsPlane2Offset] = uq[syms[2*i+1]]
		}
	} else {
		for i := 0; i < n; i++ {
			sb.Weights[i] = uq[syms[i]]
		}
	}

	belowWeights := 128 - m.weightBits
	extraCEMBits := 0
	start := 17
	if pc == 1 {
		sb.Formats[0] = uint8(getBits(block, 13, 4))
	} else {
		start = 13 + partitionIndexBits + 6
		sb.PartitionIndex = int(getBits(block, 13, partitionIndexBits))
		enc := int(getBits(block, 13+partitionIndexBits, 6))
		if base := enc & 3; base == 0 {
			for i := 0; i < pc; i++ {
				sb.Formats[i] = uint8(enc >> 2 & 0xF)
			}
		} else {
			extraCEMBits = 3*pc - 4
			enc |= int(getBits(block, belowWeights-extraCEMBits, extraCEMBits)) << 6
			base--
			bit := 2
			for i := 0; i < pc; i++ {
				sb.Formats[i] = uint8((enc>>bit&1 + base) << 2)
				bit++
			}
			for i := 0; i < pc; i++ {
				sb.Formats[i] |= uint8(enc >> bit & 3)
				bit += 2
			}
		}
	}

	ints := 0
	for i := 0; i < pc; i++ {
		ints += cemValueCount(sb.Formats[i])
	}
	if ints > blockMaxColorInts {
		return sb, "too many colour integers"
	}

	colorBits := belowWeights - extraCEMBits - start
	if m.dualPlane {
		colorBits -= 2
	}
	q := colorQuantForBits(ints, colorBits)
	if q < int(quant6) {
		return sb, "not enough colour bits"
	}
	sb.ColorQuant = uint8(q)

	var vals [blockMaxColorInts]uint8
	decodeISE(quantMethod(q), ints, block, start, vals[:])
	k := 0
	for i := 0; i < pc; i++ {
		for j := 0; j < cemValueCount(sb.Formats[i]); j++ {
			sb.Colors[i][j] = colorUnquant[q][vals[k]]
			k++
		}
	}

	if m.dualPlane {
		sb.Plane2Component = int8(getBits(block, belowWeights-extraCEMBits-2, 2))
	}
	sb.Kind = BlockNormal
	return sb, ""
}

// unpackVoidExtent reads a constant block. Bit 9 selects binary16 instead of
// UNORM16 colour.
func unpackVoidExtent(ctx *blockContext, block []byte, mode int) (sb SymbolicBlock, reason string) {
	sb.Plane2Component = -1

	if ctx.fp.Z == 1 {
		if getBits(block, 10, 2) != 3 {
			return sb, "void-extent reserved bits"
		}
		ls, hs := getBits(block, 12, 13), getBits(block, 25, 13)
		lt, ht := getBits(block, 38, 13), getBits(block, 51, 13)
		all := ls == 0x1FFF && hs == 0x1FFF && lt == 0x1FFF && ht == 0x1FFF
		if !all && (ls >= hs || lt >= ht) {
			return sb, "void-extent coordinates"
		}
	} else {
		var c [6]uint32
		all := true
		for i := range c {
			c[i] = getBits(block, 10+9*i, 9)
			all = all && c[i] == 0x1FF
		}
		if !all && (c[0] >= c[1] || c[2] >= c[3] || c[4] >= c[5]) {
			return sb, "void-extent coordinates"
		}
	}

	sb.Kind = BlockConstant
	sb.ConstantF16 = mode&0x200 != 0
	for i := range sb.Constant {
		sb.Constant[i] = binary.LittleEndian.Uint16(block[8+2*i:])
	}
	return sb, ""
}
