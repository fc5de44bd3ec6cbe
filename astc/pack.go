package astc

// PackBlock encodes a symbolic block into its 16-byte physical form. Error
// blocks pack as a magenta constant block. Partitions share the endpoint
// mode of the first.
func (Codec) PackBlock(sb *SymbolicBlock, fp Footprint) [BlockBytes]byte {
	switch sb.Kind {
	case BlockConstant:
		return constBlock(sb.Constant, sb.ConstantF16)
	case BlockNormal:
	default:
		return constBlock(errorTexel, false)
	}

	ctx := getBlockContext(fp)
	m := ctx.modes[sb.Mode]
	if !m.ok {
		return constBlock(errorTexel, false)
	}

	var syms [blockMaxWeights]uint8
	wq := &weightQuantize[m.weightQuant]
	n := m.weightCount()
	for i := 0; i < n; i++ {
		if m.dualPlane {
			syms[2*i] = wq[sb.Weights[i]]
			syms[2*i+1] = wq[sb.Weights[i+weightsPlane2Offset]]
		} else {
			syms[i] = wq[sb.Weights[i]]
		}
	}
	var weights [BlockBytes]byte
	encodeISE(m.weightQuant, m.symbolCount(), syms[:], weights[:], 0)
	out := reverseBlock(&weights)

	setBits(out[:], 0, 11, uint32(sb.Mode))
	setBits(out[:], 11, 2, uint32(sb.Partitions-1))
	start := 17
	if sb.Partitions == 1 {
		setBits(out[:], 13, 4, uint32(sb.Formats[0]))
	} else {
		setBits(out[:], 13, partitionIndexBits, uint32(sb.PartitionIndex))
		setBits(out[:], 13+partitionIndexBits, 6, uint32(sb.Formats[0])<<2)
		start = 13 + partitionIndexBits + 6
	}

	var vals [blockMaxColorInts]uint8
	k := 0
	q := quantMethod(sb.ColorQuant)
	for p := 0; p < sb.Partitions; p++ {
		for j := 0; j < cemValueCount(sb.Formats[0]); j++ {
			vals[k] = colorQuantize[q][sb.Colors[p][j]]
			k++
		}
	}
	encodeISE(q, k, vals[:], out[:], start)

	if m.dualPlane {
		setBits(out[:], 128-m.weightBits-2, 2, uint32(sb.Plane2Component))
	}
	return out
}
