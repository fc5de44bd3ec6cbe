package astc

import "math"

// Weighting controls perceptual error weighting. Channel values are taken to
// the RGB or alpha power before local statistics are gathered, and each
// texel's channel error weight is the reciprocal of
// base + mean*localMean + stdev*localStdev.
type Weighting struct {
	RGBPower    float32 `yaml:"rgb_power"`
	AlphaPower  float32 `yaml:"alpha_power"`
	RGBBase     float32 `yaml:"rgb_base"`
	AlphaBase   float32 `yaml:"alpha_base"`
	RGBMean     float32 `yaml:"rgb_mean"`
	AlphaMean   float32 `yaml:"alpha_mean"`
	RGBStdev    float32 `yaml:"rgb_stdev"`
	AlphaStdev  float32 `yaml:"alpha_stdev"`
	Radius      int     `yaml:"radius"`
	AlphaRadius int     `yaml:"alpha_radius"`
}

// DefaultWeighting returns the weighting defaults for an element kind.
// Half-float sources weight RGB by a compressed local mean.
func DefaultWeighting(kind ElementKind) Weighting {
	w := Weighting{
		RGBPower:   1,
		AlphaPower: 1,
		RGBBase:    1,
		AlphaBase:  1,
	}
	if kind == KindF16 {
		w.RGBPower = 0.75
		w.RGBBase = 0
		w.RGBMean = 1
		w.AlphaBase = 0.05
	}
	return w
}

// enabled reports whether any statistics pass is needed.
func (w Weighting) enabled() bool { return w.Radius > 0 || w.AlphaRadius > 0 }

// statistics holds per-texel, per-channel error weights for a whole image.
type statistics struct {
	weights [][4]float32
}

const minWeightDenominator = 1e-4

// computeStatistics derives error weights from local means and deviations
// over a box of Radius texels. With AlphaRadius set, RGB weights are also
// scaled by the local mean alpha so that transparent areas matter less.
func computeStatistics(img *Image, w Weighting) *statistics {
	n := img.DimX * img.DimY * img.DimZ
	st := &statistics{weights: make([][4]float32, n)}

	vals := make([][4]float64, n)
	for i := 0; i < n; i++ {
		x, y, z := i%img.DimX, i/img.DimX%img.DimY, i/(img.DimX*img.DimY)
		for c := 0; c < 4; c++ {
			v := float64(img.texel(x, y, z, c, false)) / 65535
			p := w.RGBPower
			if c == 3 {
				p = w.AlphaPower
			}
			if p != 1 {
				v = math.Pow(v, float64(p))
			}
			vals[i][c] = v
		}
	}

	var mean, variance [][4]float64
	if w.Radius > 0 {
		mean, variance = boxMoments(img, vals, w.Radius)
	}
	var alphaMean [][4]float64
	if w.AlphaRadius > 0 {
		alphaMean, _ = boxMoments(img, vals, w.AlphaRadius)
	}

	for i := 0; i < n; i++ {
		for c := 0; c < 4; c++ {
			base, mw, sw := w.RGBBase, w.RGBMean, w.RGBStdev
			if c == 3 {
				base, mw, sw = w.AlphaBase, w.AlphaMean, w.AlphaStdev
			}
			d := float64(base)
			if mean != nil {
				d += float64(mw)*mean[i][c] + float64(sw)*math.Sqrt(math.Max(variance[i][c], 0))
			}
			wt := 1 / math.Max(d, minWeightDenominator)
			if alphaMean != nil && c < 3 {
				wt *= math.Max(alphaMean[i][3], minWeightDenominator)
			}
			st.weights[i][c] = float32(wt)
		}
	}
	return st
}

// boxMoments returns the mean and variance of every channel over a
// (2r+1)-wide box around each texel, clipped to the image. It uses summed
// area tables, one slice at a time for volumes.
func boxMoments(img *Image, vals [][4]float64, r int) (mean, variance [][4]float64) {
	w, h := img.DimX, img.DimY
	n := len(vals)
	mean = make([][4]float64, n)
	variance = make([][4]float64, n)

	stride := w + 1
	sum := make([][4]float64, stride*(h+1))
	sq := make([][4]float64, stride*(h+1))

	for z := 0; z < img.DimZ; z++ {
		base := z * w * h
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				v := vals[base+y*w+x]
				i := (y+1)*stride + x + 1
				for c := 0; c < 4; c++ {
					sum[i][c] = v[c] + sum[i-1][c] + sum[i-stride][c] - sum[i-stride-1][c]
					sq[i][c] = v[c]*v[c] + sq[i-1][c] + sq[i-stride][c] - sq[i-stride-1][c]
				}
			}
		}

		for y := 0; y < h; y++ {
			y0, y1 := max(y-r, 0), min(y+r+1, h)
			for x := 0; x < w; x++ {
				x0, x1 := max(x-r, 0), min(x+r+1, w)
				cnt := float64((y1 - y0) * (x1 - x0))
				a, b := y0*stride+x0, y0*stride+x1
				c, d := y1*stride+x0, y1*stride+x1
				o := base + y*w + x
				for ch := 0; ch < 4; ch++ {
					s := sum[d][ch] - sum[b][ch] - sum[c][ch] + sum[a][ch]
					s2 := sq[d][ch] - sq[b][ch] - sq[c][ch] + sq[a][ch]
					m := s / cnt
					mean[o][ch] = m
					variance[o][ch] = s2/cnt - m*m
				}
			}
		}
	}
	return mean, variance
}
