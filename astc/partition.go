package astc

// hash52 is the ASTC partition hash.
func hash52(v uint32) uint32 {
	v ^= v >> 15
	v *= 0xEEDE0891
	v ^= v >> 5
	v += v << 16
	v ^= v >> 7
	v ^= v >> 3
	v ^= v << 6
	v ^= v >> 17
	return v
}

// selectPartition returns the partition of texel (x, y, z) for a seed.
func selectPartition(seed, x, y, z, count int, small bool) uint8 {
	if small {
		x, y, z = x<<1, y<<1, z<<1
	}

	seed += (count - 1) * 1024
	rnum := hash52(uint32(seed))

	var s [12]uint8
	for i := 0; i < 8; i++ {
		s[i] = uint8(rnum >> (4 * i) & 0xF)
	}
	s[8] = uint8(rnum >> 18 & 0xF)
	s[9] = uint8(rnum >> 22 & 0xF)
	s[10] = uint8(rnum >> 26 & 0xF)
	s[11] = uint8((rnum>>30 | rnum<<2) & 0xF)
	for i := range s {
		s[i] *= s[i]
	}

	var sh1, sh2 uint8
	if seed&1 != 0 {
		sh1, sh2 = 5, 5
		if seed&2 != 0 {
			sh1 = 4
		}
		if count == 3 {
			sh2 = 6
		}
	} else {
		sh1, sh2 = 5, 5
		if count == 3 {
			sh1 = 6
		}
		if seed&2 != 0 {
			sh2 = 4
		}
	}
	sh3 := sh2
	if seed&0x10 != 0 {
		sh3 = sh1
	}

	for i := 0; i < 8; i += 2 {
		s[i] >>= sh1
		s[i+1] >>= sh2
	}
	for i := 8; i < 12; i++ {
		s[i] >>= sh3
	}

	a := (int(s[0])*x + int(s[1])*y + int(s[10])*z + int(rnum>>14)) & 0x3F
	b := (int(s[2])*x + int(s[3])*y + int(s[11])*z + int(rnum>>10)) & 0x3F
	c := (int(s[4])*x + int(s[5])*y + int(s[8])*z + int(rnum>>6)) & 0x3F
	d := (int(s[6])*x + int(s[7])*y + int(s[9])*z + int(rnum>>2)) & 0x3F

	if count <= 3 {
		d = 0
	}
	if count <= 2 {
		c = 0
	}
	if count <= 1 {
		b = 0
	}

	switch {
	case a >= b && a >= c && a >= d:
		return 0
	case b >= c && b >= d:
		return 1
	case c >= d:
		return 2
	default:
		return 3
	}
}

// partitioning is one partition assignment of a footprint.
type partitioning struct {
	assign []uint8
	counts [blockMaxPartitions]int
	// used is the number of non-empty partitions.
	used int
}

type partitionKey struct {
	fp    Footprint
	count int
}

var partitionings tableCache[partitionKey, []partitioning]

// getPartitionings returns all 1024 assignments of a footprint for count
// partitions, indexed by seed.
func getPartitionings(fp Footprint, count int) []partitioning {
	return partitionings.get(partitionKey{fp, count}, func() []partitioning {
		n := fp.Texels()
		small := n < 32
		out := make([]partitioning, 1<<partitionIndexBits)
		for seed := range out {
			p := &out[seed]
			p.assign = make([]uint8, n)
			tix := 0
			for z := 0; z < fp.Z; z++ {
				for y := 0; y < fp.Y; y++ {
					for x := 0; x < fp.X; x++ {
						part := selectPartition(seed, x, y, z, count, small)
						p.assign[tix] = part
						p.counts[part]++
						tix++
					}
				}
			}
			for _, c := range p.counts {
				if c > 0 {
					p.used++
				}
			}
		}
		return out
	})
}
