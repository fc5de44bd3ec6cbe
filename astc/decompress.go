package astc

var errorTexel = [4]uint16{0xFFFF, 0, 0xFFFF, 0xFFFF}

// DecompressBlock decodes a symbolic block. Blocks with HDR content decode to
// binary16 with dst.HDR set. All other blocks decode to UNORM16.
func (Codec) DecompressBlock(sb *SymbolicBlock, fp Footprint, dst *DecodedBlock) {
	dst.Footprint = fp
	decodeSymbolic(getBlockContext(fp), sb, dst)
}

func decodeSymbolic(ctx *blockContext, sb *SymbolicBlock, dst *DecodedBlock) {
	n := ctx.texels
	dst.HDR = false
	switch sb.Kind {
	case BlockConstant:
		dst.HDR = sb.ConstantF16
		for t := 0; t < n; t++ {
			dst.Texels[t] = sb.Constant
		}
		return
	case BlockNormal:
		var lns [blockMaxTexels]uint8
		hdr, ok := decodeTexels(ctx, sb, &dst.Texels, &lns)
		if !ok {
			break
		}
		if !hdr {
			return
		}
		dst.HDR = true
		for t := 0; t < n; t++ {
			mask := lns[t]
			for c := 0; c < 4; c++ {
				if mask&(1<<c) != 0 {
					dst.Texels[t][c] = lnsToHalf(dst.Texels[t][c])
				} else {
					dst.Texels[t][c] = unorm16ToHalf(dst.Texels[t][c])
				}
			}
		}
		return
	}
	for t := 0; t < n; t++ {
		dst.Texels[t] = errorTexel
	}
}

// decodeTexels interpolates the texels of a normal block. Channels of HDR
// endpoints stay in the LNS domain and hdr reports whether any partition has
// them. A non-nil lns receives each texel's mask of LNS channels.
func decodeTexels(ctx *blockContext, sb *SymbolicBlock, out *[blockMaxTexels][4]uint16, lns *[blockMaxTexels]uint8) (hdr, ok bool) {
	m := ctx.modes[sb.Mode]
	if !m.ok {
		return false, false
	}

	var e0, e1 [blockMaxPartitions]rgba
	var partLNS [blockMaxPartitions]uint8
	for p := 0; p < sb.Partitions; p++ {
		e0[p], e1[p], partLNS[p] = unpackEndpoints(sb.Formats[p], sb.Colors[p][:])
		hdr = hdr || partLNS[p] != 0
	}

	var assign []uint8
	if sb.Partitions > 1 {
		assign = getPartitionings(ctx.fp, sb.Partitions)[sb.PartitionIndex].assign
	}

	dec := ctx.dec[sb.Mode]
	plane1 := sb.Weights[:]
	plane2 := sb.Weights[weightsPlane2Offset:]
	p2 := int(sb.Plane2Component)

	for t := 0; t < ctx.texels; t++ {
		p := 0
		if assign != nil {
			p = int(assign[t])
		}
		if lns != nil {
			lns[t] = partLNS[p]
		}
		var w1, w2 int
		if dec.full {
			w1 = int(plane1[t])
			if p2 >= 0 {
				w2 = int(plane2[t])
			}
		} else {
			w1 = dec.texels[t].infillWeight(plane1)
			if p2 >= 0 {
				w2 = dec.texels[t].infillWeight(plane2)
			}
		}
		for c := 0; c < 4; c++ {
			w := w1
			if c == p2 {
				w = w2
			}
			a, b := e0[p][c], e1[p][c]
			out[t][c] = uint16(a + ((b-a)*w+32)>>6)
		}
	}
	return hdr, true
}

// DecodeImage decodes packed blocks into an image of the given kind.
func DecodeImage(blocks []byte, fp Footprint, dimX, dimY, dimZ int, kind ElementKind) (*Image, error) {
	if err := fp.Validate(); err != nil {
		return nil, err
	}
	grid := fp.Blocks(dimX, dimY, dimZ)
	if len(blocks) < grid.Total()*BlockBytes {
		return nil, newError(ErrBadData, "astc: block data too short")
	}

	ctx := getBlockContext(fp)
	img := NewImage(dimX, dimY, dimZ, kind)
	var blk DecodedBlock
	blk.Footprint = fp
	i := 0
	for z := 0; z < grid.Z; z++ {
		for y := 0; y < grid.Y; y++ {
			for x := 0; x < grid.X; x++ {
				sb, _ := unpackBlock(ctx, blocks[i*BlockBytes:(i+1)*BlockBytes])
				decodeSymbolic(ctx, &sb, &blk)
				writeBlock(img, x*fp.X, y*fp.Y, z*fp.Z, &blk)
				i++
			}
		}
	}
	return img, nil
}
