package astc

// texelInfill lists the weight-grid points that contribute to one texel and
// their 1/16 factors. Unused taps have a zero factor.
type texelInfill struct {
	idx [4]uint8
	w   [4]uint8
}

// decimation maps a weight grid onto the texels of a footprint.
type decimation struct {
	texels  []texelInfill
	weights int // grid points per plane
	// full is set when every texel has its own grid point.
	full bool
	// coverage[j] is the summed factor of grid point j over all texels.
	coverage [blockMaxWeights]float32
}

type decimationKey struct {
	fp         Footprint
	gx, gy, gz int
}

var decimations tableCache[decimationKey, *decimation]

func getDecimation(fp Footprint, gx, gy, gz int) *decimation {
	return decimations.get(decimationKey{fp, gx, gy, gz}, func() *decimation {
		return buildDecimation(fp, gx, gy, gz)
	})
}

func buildDecimation(fp Footprint, gx, gy, gz int) *decimation {
	d := &decimation{
		texels:  make([]texelInfill, fp.Texels()),
		weights: gx * gy * gz,
		full:    gx == fp.X && gy == fp.Y && gz == fp.Z,
	}

	scale := func(n int) int {
		if n <= 1 {
			return 0
		}
		return (1024 + n/2) / (n - 1)
	}
	sx, sy, sz := scale(fp.X), scale(fp.Y), scale(fp.Z)

	for z := 0; z < fp.Z; z++ {
		for y := 0; y < fp.Y; y++ {
			for x := 0; x < fp.X; x++ {
				tix := (z*fp.Y+y)*fp.X + x
				wx := (sx*x*(gx-1) + 32) >> 6
				wy := (sy*y*(gy-1) + 32) >> 6
				wz := (sz*z*(gz-1) + 32) >> 6

				var idx, w [4]int
				if fp.Z == 1 {
					idx, w = infill2D(wx, wy, gx)
				} else {
					idx, w = infill3D(wx, wy, wz, gx, gy)
				}

				var e texelInfill
				for i := 0; i < 4; i++ {
					if w[i] == 0 || idx[i] < 0 || idx[i] >= d.weights {
						continue
					}
					e.idx[i] = uint8(idx[i])
					e.w[i] = uint8(w[i])
					d.coverage[idx[i]] += float32(w[i])
				}
				d.texels[tix] = e
			}
		}
	}
	return d
}

// infill2D is the bilinear weight infill of the ASTC decoder.
func infill2D(wx, wy, gx int) (idx, w [4]int) {
	fx, fy := wx&0xF, wy&0xF
	q0 := wx>>4 + (wy>>4)*gx
	w3 := (fx*fy + 8) >> 4
	idx = [4]int{q0, q0 + 1, q0 + gx, q0 + gx + 1}
	w = [4]int{16 - fx - fy + w3, fx - w3, fy - w3, w3}
	return idx, w
}

// infill3D is the simplex weight infill of the ASTC decoder.
func infill3D(wx, wy, wz, gx, gy int) (idx, w [4]int) {
	fs, ft, fp := wx&0xF, wy&0xF, wz&0xF
	n, nm := gx, gx*gy
	q0 := ((wz>>4)*gy+wy>>4)*gx + wx>>4
	q3 := ((wz>>4+1)*gy+(wy>>4+1))*gx + wx>>4 + 1

	var s1, s2 int
	switch {
	case fs > ft && ft > fp:
		s1, s2 = 1, n
		w = [4]int{16 - fs, fs - ft, ft - fp, fp}
	case ft >= fs && fs > fp:
		s1, s2 = n, 1
		w = [4]int{16 - ft, ft - fs, fs - fp, fp}
	case fs > fp && fp >= ft:
		s1, s2 = 1, nm
		w = [4]int{16 - fs, fs - fp, fp - ft, ft}
	case fp >= fs && fs > ft:
		s1, s2 = nm, 1
		w = [4]int{16 - fp, fp - fs, fs - ft, ft}
	case ft > fp && fp >= fs:
		s1, s2 = n, nm
		w = [4]int{16 - ft, ft - fp, fp - fs, fs}
	default:
		s1, s2 = nm, n
		w = [4]int{16 - fp, fp - ft, ft - fs, fs}
	}
	idx = [4]int{q0, q0 + s1, q0 + s1 + s2, q3}
	return idx, w
}

// infillWeight returns the 0..64 weight of one texel from a grid plane.
func (e *texelInfill) infillWeight(grid []uint8) int {
	sum := 8
	for i := 0; i < 4; i++ {
		sum += int(grid[e.idx[i]]) * int(e.w[i])
	}
	return sum >> 4
}
