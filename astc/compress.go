package astc

import "math"

// endpointClass is the endpoint mode family used for a whole block.
type endpointClass struct {
	cem      uint8
	maxParts int
	alpha    bool
	grey     bool
	hdr      bool
}

var (
	classL       = endpointClass{cem: cemLuminance, maxParts: 3, grey: true}
	classLA      = endpointClass{cem: cemLuminanceAlpha, maxParts: 3, alpha: true, grey: true}
	classRGB     = endpointClass{cem: cemRGB, maxParts: 3}
	classRGBA    = endpointClass{cem: cemRGBA, maxParts: 2, alpha: true}
	classHDRRGB  = endpointClass{cem: cemHDRRGB, maxParts: 3, hdr: true}
	classHDRRGBA = endpointClass{cem: cemHDRRGBLDRAlpha, maxParts: 2, alpha: true, hdr: true}
)

func (c endpointClass) ints() int { return cemValueCount(c.cem) }

// classify picks the endpoint class from texels in the encoding domain. HDR
// blocks keep alpha in UNORM16, so opacity is tested the same way.
func classify(tex *[blockMaxTexels][4]uint16, n int, hdr bool) endpointClass {
	opaque, grey := true, true
	for t := 0; t < n; t++ {
		v := &tex[t]
		opaque = opaque && v[3] == 0xFFFF
		grey = grey && v[0] == v[1] && v[1] == v[2]
	}
	switch {
	case hdr && opaque:
		return classHDRRGB
	case hdr:
		return classHDRRGBA
	case grey && opaque:
		return classL
	case grey:
		return classLA
	case opaque:
		return classRGB
	default:
		return classRGBA
	}
}

// lnsTexels converts binary16 texels to the HDR encoding domain: LNS colour
// and UNORM16 alpha.
func lnsTexels(src *[blockMaxTexels][4]uint16, n int, dst *[blockMaxTexels][4]uint16) {
	for t := 0; t < n; t++ {
		for c := 0; c < 3; c++ {
			dst[t][c] = halfToLNS(src[t][c])
		}
		dst[t][3] = halfToUnorm16(src[t][3])
	}
}

// endpointPair holds float endpoints on the 0..255 scale.
type endpointPair [2][4]float32

// blockEncoder is the search state of one CompressBlock call.
type blockEncoder struct {
	ctx *blockContext
	blk *DecodedBlock
	p   *Params
	s   *Scratch
	cls endpointClass
	n   int

	// tex is the block in the encoding domain.
	tex *[blockMaxTexels][4]uint16

	limit   float64
	best    SymbolicBlock
	bestErr float64
}

// CompressBlock searches for the best encoding of blk under p. Binary16
// blocks get HDR endpoint modes and binary16 constant blocks.
func (Codec) CompressBlock(blk *DecodedBlock, p *Params, s *Scratch) SymbolicBlock {
	if isConstant(blk) {
		return SymbolicBlock{Kind: BlockConstant, Constant: blk.Texels[0], ConstantF16: blk.HDR, Plane2Component: -1}
	}

	ctx := getBlockContext(blk.Footprint)
	e := &blockEncoder{
		ctx:     ctx,
		blk:     blk,
		p:       p,
		s:       s,
		n:       ctx.texels,
		tex:     &blk.Texels,
		bestErr: math.Inf(1),
	}
	if blk.HDR {
		lnsTexels(&blk.Texels, e.n, &s.lns)
		e.tex = &s.lns
	}
	e.cls = classify(e.tex, e.n, blk.HDR)
	e.limit = float64(p.TexelAvgErrorLimit) * float64(e.n)
	e.prepareWeights()

	var buf [4]int
	planes := e.dualChannels(&buf)

	e.search(1, 0, nil, -1)
	for _, p2 := range planes {
		if e.done() {
			break
		}
		e.search(1, 0, nil, p2)
	}
	if e.bestErr < e.limit*float64(p.OneToTwoPartitionLimit) {
		return e.result()
	}

	for pc := 2; pc <= e.cls.maxParts && !e.done(); pc++ {
		parts := getPartitionings(blk.Footprint, pc)
		e.searchPartitions(pc, parts, -1)
		for _, p2 := range planes {
			if e.done() {
				break
			}
			e.searchPartitions(pc, parts, p2)
		}
	}
	return e.result()
}

func (e *blockEncoder) done() bool { return e.bestErr < e.limit }

func (e *blockEncoder) result() SymbolicBlock {
	if !math.IsInf(e.bestErr, 1) {
		return e.best
	}
	c := e.meanColor()
	if e.cls.hdr {
		for i := 0; i < 3; i++ {
			c[i] = lnsToHalf(c[i])
		}
		c[3] = unorm16ToHalf(c[3])
	}
	return SymbolicBlock{Kind: BlockConstant, Constant: c, ConstantF16: e.cls.hdr, Plane2Component: -1}
}

func (e *blockEncoder) meanColor() (out [4]uint16) {
	var sum [4]int
	for t := 0; t < e.n; t++ {
		for c := 0; c < 4; c++ {
			sum[c] += int(e.tex[t][c])
		}
	}
	for c := range out {
		out[c] = uint16((sum[c] + e.n/2) / e.n)
	}
	return out
}

func (e *blockEncoder) prepareWeights() {
	cw := e.p.ComponentWeights
	for t := 0; t < e.n; t++ {
		for c := 0; c < 4; c++ {
			w := cw[c]
			if e.blk.Weighted {
				w *= e.blk.ErrorWeights[t][c]
			}
			e.s.weight[t][c] = w
		}
	}
}

func (e *blockEncoder) texel(t, c int) float32 {
	return float32(e.tex[t][c]) * (1.0 / 257.0)
}

// correlation returns the correlation of channel c with the rest of the
// colour: luma for alpha, the sum of the other two channels for a colour
// channel. A flat channel counts as fully correlated.
func (e *blockEncoder) correlation(c int) float64 {
	var sa, sl, saa, sll, sal float64
	for t := 0; t < e.n; t++ {
		v := &e.tex[t]
		a := float64(v[c])
		l := float64(v[0]) + float64(v[1]) + float64(v[2])
		if c < 3 {
			l -= a
		}
		sa += a
		sl += l
		saa += a * a
		sll += l * l
		sal += a * l
	}
	n := float64(e.n)
	va := saa - sa*sa/n
	vl := sll - sl*sl/n
	if va <= 1e-9 {
		return 1
	}
	if vl <= 1e-9 {
		return 0
	}
	return (sal - sa*sl/n) / math.Sqrt(va*vl)
}

// dualChannels lists the channels tried on the second weight plane, least
// correlated first. Grey blocks only ever separate alpha.
func (e *blockEncoder) dualChannels(buf *[4]int) []int {
	var corr [4]float64
	out := buf[:0]
	try := func(c int) {
		r := math.Abs(e.correlation(c))
		if r >= e.p.CorrelationCutoff {
			return
		}
		corr[c] = r
		i := len(out)
		out = append(out, c)
		for i > 0 && corr[out[i-1]] > r {
			out[i] = out[i-1]
			i--
		}
		out[i] = c
	}
	if !e.cls.grey {
		for c := 0; c < 3; c++ {
			try(c)
		}
	}
	if e.cls.alpha {
		try(3)
	}
	return out
}

// lineChannels returns the channels fitted along one line. The channel on
// the second plane, p2, is fitted on its own.
func (e *blockEncoder) lineChannels(p2 int) (ch [4]bool) {
	ch[0] = true
	ch[1], ch[2] = !e.cls.grey, !e.cls.grey
	ch[3] = e.cls.alpha
	if p2 >= 0 {
		ch[p2] = false
	}
	return ch
}

// fitLine fits the principal axis of the texels of one partition. It returns
// endpoints spanning the projections and the weighted residual off the line.
// Channel p2 spans its own range.
func (e *blockEncoder) fitLine(assign []uint8, part int, ch [4]bool, p2 int) (ep endpointPair, residual float64) {
	var mean [4]float64
	var sumW float64
	var lo, hi [4]float64
	for c := range lo {
		lo[c], hi[c] = 255, 0
	}

	for t := 0; t < e.n; t++ {
		if assign != nil && int(assign[t]) != part {
			continue
		}
		w := 0.0
		for c := 0; c < 4; c++ {
			if ch[c] {
				w += float64(e.s.weight[t][c])
			}
		}
		w = math.Max(w, 1e-6)
		sumW += w
		for c := 0; c < 4; c++ {
			x := float64(e.texel(t, c))
			mean[c] += w * x
			lo[c] = math.Min(lo[c], x)
			hi[c] = math.Max(hi[c], x)
		}
	}
	if sumW == 0 {
		return ep, 0
	}
	for c := range mean {
		mean[c] /= sumW
	}

	var cov [4][4]float64
	for t := 0; t < e.n; t++ {
		if assign != nil && int(assign[t]) != part {
			continue
		}
		w := 0.0
		var d [4]float64
		for c := 0; c < 4; c++ {
			if ch[c] {
				w += float64(e.s.weight[t][c])
				d[c] = float64(e.texel(t, c)) - mean[c]
			}
		}
		w = math.Max(w, 1e-6)
		for i := 0; i < 4; i++ {
			for j := 0; j < 4; j++ {
				cov[i][j] += w * d[i] * d[j]
			}
		}
	}

	// Start from the covariance column of the widest channel.
	k := 0
	for c := 1; c < 4; c++ {
		if cov[c][c] > cov[k][k] {
			k = c
		}
	}
	var dir [4]float64
	for c := 0; c < 4; c++ {
		dir[c] = cov[c][k]
	}
	for it := 0; it < 4; it++ {
		var next [4]float64
		for i := 0; i < 4; i++ {
			for j := 0; j < 4; j++ {
				next[i] += cov[i][j] * dir[j]
			}
		}
		norm := math.Sqrt(next[0]*next[0] + next[1]*next[1] + next[2]*next[2] + next[3]*next[3])
		if norm < 1e-12 {
			break
		}
		for i := range dir {
			dir[i] = next[i] / norm
		}
	}
	if norm := math.Sqrt(dir[0]*dir[0] + dir[1]*dir[1] + dir[2]*dir[2] + dir[3]*dir[3]); norm > 1e-12 {
		for i := range dir {
			dir[i] /= norm
		}
	}

	trace, lambda := 0.0, 0.0
	for i := 0; i < 4; i++ {
		trace += cov[i][i]
		for j := 0; j < 4; j++ {
			lambda += dir[i] * cov[i][j] * dir[j]
		}
	}
	residual = math.Max(trace-lambda, 0)

	tmin, tmax := math.Inf(1), math.Inf(-1)
	for t := 0; t < e.n; t++ {
		if assign != nil && int(assign[t]) != part {
			continue
		}
		proj := 0.0
		for c := 0; c < 4; c++ {
			if ch[c] {
				proj += (float64(e.texel(t, c)) - mean[c]) * dir[c]
			}
		}
		tmin = math.Min(tmin, proj)
		tmax = math.Max(tmax, proj)
	}

	for c := 0; c < 4; c++ {
		switch {
		case ch[c]:
			ep[0][c] = float32(mean[c] + dir[c]*tmin)
			ep[1][c] = float32(mean[c] + dir[c]*tmax)
		case c == p2:
			ep[0][c], ep[1][c] = float32(lo[c]), float32(hi[c])
		default:
			ep[0][c], ep[1][c] = float32(mean[c]), float32(mean[c])
		}
	}
	return ep, residual
}

// rankSeeds returns the most promising partition seeds for pc partitions
// with channel p2 on the second plane. The slice lives in Scratch and is
// valid until the next call.
func (e *blockEncoder) rankSeeds(pc int, parts []partitioning, p2 int) []int {
	limit := e.p.PartitionSearchLimit
	if limit > len(parts) {
		limit = len(parts)
	}
	keep := partitionCandidates(e.p.PartitionSearchLimit)
	seeds, scores := e.s.seeds[:0], e.s.scores[:0]
	ch := e.lineChannels(p2)

	for seed := 0; seed < limit; seed++ {
		pt := &parts[seed]
		if pt.used < pc {
			continue
		}
		score := 0.0
		for part := 0; part < pc; part++ {
			_, r := e.fitLine(pt.assign, part, ch, p2)
			score += r
		}

		i := len(seeds)
		seeds = append(seeds, seed)
		scores = append(scores, score)
		for i > 0 && scores[i-1] > score {
			seeds[i], scores[i] = seeds[i-1], scores[i-1]
			i--
		}
		seeds[i], scores[i] = seed, score
		if len(seeds) > keep {
			seeds, scores = seeds[:keep], scores[:keep]
		}
	}
	e.s.seeds, e.s.scores = seeds, scores
	return seeds
}

// searchPartitions searches the ranked seeds of one partition count.
func (e *blockEncoder) searchPartitions(pc int, parts []partitioning, p2 int) {
	for _, seed := range e.rankSeeds(pc, parts, p2) {
		e.search(pc, seed, parts[seed].assign, p2)
		if e.done() {
			return
		}
	}
}

// partitionCandidates is the number of ranked seeds tried per partition count.
func partitionCandidates(searchLimit int) int {
	return clampInt(searchLimit/8, 1, 4)
}

// search tries the block modes for one partitioning. p2 is the channel on
// the second weight plane, or -1 for a single plane. A candidate is dropped
// as soon as its running error passes the best one of this search.
func (e *blockEncoder) search(pc, seed int, assign []uint8, p2 int) {
	dual := p2 >= 0
	ch := e.lineChannels(p2)
	var eps [blockMaxPartitions]endpointPair
	for part := 0; part < pc; part++ {
		eps[part], _ = e.fitLine(assign, part, ch, p2)
	}

	modes := int(math.Ceil(float64(len(e.ctx.search)) * float64(e.p.BlockModeCutoff)))
	if modes > len(e.ctx.search) {
		modes = len(e.ctx.search)
	}

	var local SymbolicBlock
	localErr := math.Inf(1)
	for _, id := range e.ctx.search[:modes] {
		m := e.ctx.modes[id]
		if m.dualPlane != dual {
			continue
		}
		q := e.colorQuant(m, pc)
		if q < int(quant6) {
			continue
		}

		sb := e.candidate(id, pc, seed, assign, quantMethod(q), &eps, p2)
		if err := e.evaluate(&sb, localErr); err < localErr {
			local, localErr = sb, err
			if localErr < e.limit {
				break
			}
		}
	}
	if math.IsInf(localErr, 1) {
		return
	}

	for it := 0; it < e.p.MaxRefinementIters && localErr >= e.limit; it++ {
		refined := e.leastSquares(&local, assign)
		sb := e.candidate(int(local.Mode), pc, seed, assign, quantMethod(local.ColorQuant), &refined, p2)
		err := e.evaluate(&sb, localErr)
		if err >= localErr {
			break
		}
		local, localErr = sb, err
	}

	if localErr < e.bestErr {
		e.best, e.bestErr = local, localErr
	}
}

// colorQuant returns the endpoint range that fits next to mode m, or -1.
func (e *blockEncoder) colorQuant(m blockMode, pc int) int {
	bits := 128 - m.weightBits - 17
	if pc > 1 {
		bits = 128 - m.weightBits - (13 + partitionIndexBits + 6)
	}
	if m.dualPlane {
		bits -= 2
	}
	return colorQuantForBits(pc*e.cls.ints(), bits)
}

// candidate quantizes endpoints and weights for one block mode.
func (e *blockEncoder) candidate(id, pc, seed int, assign []uint8, q quantMethod, eps *[blockMaxPartitions]endpointPair, p2 int) SymbolicBlock {
	sb := SymbolicBlock{
		Kind:            BlockNormal,
		Mode:            uint16(id),
		Partitions:      pc,
		PartitionIndex:  seed,
		ColorQuant:      uint8(q),
		Plane2Component: int8(p2),
	}

	var qe [blockMaxPartitions]endpointPair
	for part := 0; part < pc; part++ {
		sb.Formats[part] = e.cls.cem
		qe[part] = e.quantizeEndpoints(&eps[part], q, &sb.Colors[part])
	}

	e.idealWeights(assign, &qe, p2)
	m := e.ctx.modes[id]
	dec := e.ctx.dec[id]
	e.gridWeights(dec, 0, m.weightQuant, sb.Weights[:])
	if p2 >= 0 {
		e.gridWeights(dec, 1, m.weightQuant, sb.Weights[weightsPlane2Offset:])
	}
	return sb
}

// quantizeEndpoints writes the colour integers of one partition and returns
// the endpoints they decode to. RGB endpoints are ordered so that the decoder
// never applies blue contraction.
func (e *blockEncoder) quantizeEndpoints(ep *endpointPair, q quantMethod, out *[8]uint8) (qe endpointPair) {
	if e.cls.hdr {
		return e.quantizeHDREndpoints(ep, q, out)
	}
	var lo, hi [4]uint8
	for c := 0; c < 4; c++ {
		lo[c] = quantizeColorInt(q, roundF(ep[0][c]))
		hi[c] = quantizeColorInt(q, roundF(ep[1][c]))
	}

	switch e.cls.cem {
	case cemLuminance:
		lo[1], lo[2], lo[3] = lo[0], lo[0], 255
		hi[1], hi[2], hi[3] = hi[0], hi[0], 255
		out[0], out[1] = lo[0], hi[0]
	case cemLuminanceAlpha:
		lo[1], lo[2] = lo[0], lo[0]
		hi[1], hi[2] = hi[0], hi[0]
		out[0], out[1], out[2], out[3] = lo[0], hi[0], lo[3], hi[3]
	default:
		if int(lo[0])+int(lo[1])+int(lo[2]) > int(hi[0])+int(hi[1])+int(hi[2]) {
			lo, hi = hi, lo
		}
		if e.cls.cem == cemRGB {
			lo[3], hi[3] = 255, 255
		}
		for c := 0; c < 4; c++ {
			out[2*c], out[2*c+1] = lo[c], hi[c]
		}
	}

	for c := 0; c < 4; c++ {
		qe[0][c], qe[1][c] = float32(lo[c]), float32(hi[c])
	}
	return qe
}

// quantizeHDREndpoints writes the colour integers of one HDR partition and
// returns the endpoints they decode to, on the 0..255 scale of the encoding
// domain.
func (e *blockEncoder) quantizeHDREndpoints(ep *endpointPair, q quantMethod, out *[8]uint8) (qe endpointPair) {
	var c0, c1 [4]float32
	for c := 0; c < 4; c++ {
		c0[c], c1[c] = ep[0][c]*257, ep[1][c]*257
	}
	if c0[0]+c0[1]+c0[2] > c1[0]+c1[1]+c1[2] {
		c0, c1 = c1, c0
	}

	if e.cls.cem == cemHDRRGB {
		v := quantizeHDRRGB(c0, c1, q)
		copy(out[:], v[:])
	} else {
		v := quantizeHDRRGBLDRAlpha(c0, c1, q)
		copy(out[:], v[:])
	}

	e0, e1, _ := unpackEndpoints(e.cls.cem, out[:])
	for c := 0; c < 4; c++ {
		qe[0][c], qe[1][c] = float32(e0[c])/257, float32(e1[c])/257
	}
	return qe
}

// idealWeights projects every texel onto its quantized endpoints. It fills
// the unquantized weight and the error sensitivity of each plane.
func (e *blockEncoder) idealWeights(assign []uint8, qe *[blockMaxPartitions]endpointPair, p2 int) {
	s := e.s
	for t := 0; t < e.n; t++ {
		part := 0
		if assign != nil {
			part = int(assign[t])
		}
		ep := &qe[part]
		var num, den [2]float32
		for c := 0; c < 4; c++ {
			plane := 0
			if c == p2 {
				plane = 1
			}
			d := ep[1][c] - ep[0][c]
			w := s.weight[t][c]
			num[plane] += w * d * (e.texel(t, c) - ep[0][c])
			den[plane] += w * d * d
		}
		for plane := 0; plane < 2; plane++ {
			u := float32(0)
			if den[plane] > 1e-9 {
				u = num[plane] / den[plane]
				if u < 0 {
					u = 0
				} else if u > 1 {
					u = 1
				}
			}
			s.ideal[plane][t] = u
			s.sens[plane][t] = den[plane]
		}
	}
}

// gridWeights reduces the ideal texel weights of one plane onto the weight
// grid and quantizes them.
func (e *blockEncoder) gridWeights(dec *decimation, plane int, wq quantMethod, dst []uint8) {
	s := e.s
	var g [blockMaxWeights]float32
	if dec.full {
		copy(g[:e.n], s.ideal[plane][:e.n])
	} else {
		var num, den, numU [blockMaxWeights]float32
		for t := 0; t < e.n; t++ {
			tx := &dec.texels[t]
			u := s.ideal[plane][t]
			sens := s.sens[plane][t]
			for i := 0; i < 4; i++ {
				f := float32(tx.w[i])
				if f == 0 {
					continue
				}
				j := tx.idx[i]
				num[j] += f * sens * u
				den[j] += f * sens
				numU[j] += f * u
			}
		}
		for j := 0; j < dec.weights; j++ {
			switch {
			case den[j] > 1e-9:
				g[j] = num[j] / den[j]
			case dec.coverage[j] > 0:
				g[j] = numU[j] / dec.coverage[j]
			}
		}
	}

	for j := 0; j < dec.weights; j++ {
		v := clampInt(int(g[j]*64+0.5), 0, 64)
		dst[j] = weightUnquant[wq][weightQuantize[wq][v]]
	}
}

// evaluate decodes sb in the encoding domain and returns its weighted
// squared error. It stops early once the error exceeds cutoff.
func (e *blockEncoder) evaluate(sb *SymbolicBlock, cutoff float64) float64 {
	s := e.s
	if _, ok := decodeTexels(e.ctx, sb, &s.decoded, nil); !ok {
		return math.Inf(1)
	}
	err := 0.0
	for t := 0; t < e.n; t++ {
		for c := 0; c < 4; c++ {
			d := float64(int(s.decoded[t][c]) - int(e.tex[t][c]))
			err += float64(s.weight[t][c]) * d * d
		}
		if err > cutoff {
			return err
		}
	}
	return err
}

// leastSquares refits the endpoints of every partition against the
// quantized weights of sb.
func (e *blockEncoder) leastSquares(sb *SymbolicBlock, assign []uint8) (out [blockMaxPartitions]endpointPair) {
	dec := e.ctx.dec[sb.Mode]
	p2 := int(sb.Plane2Component)

	var a, b, cc, x, y [blockMaxPartitions][4]float64
	for t := 0; t < e.n; t++ {
		part := 0
		if assign != nil {
			part = int(assign[t])
		}
		var u [2]float64
		if dec.full {
			u[0] = float64(sb.Weights[t]) / 64
			if p2 >= 0 {
				u[1] = float64(sb.Weights[weightsPlane2Offset+t]) / 64
			}
		} else {
			u[0] = float64(dec.texels[t].infillWeight(sb.Weights[:])) / 64
			if p2 >= 0 {
				u[1] = float64(dec.texels[t].infillWeight(sb.Weights[weightsPlane2Offset:])) / 64
			}
		}
		for c := 0; c < 4; c++ {
			uc := u[0]
			if c == p2 {
				uc = u[1]
			}
			w := math.Max(float64(e.s.weight[t][c]), 1e-6)
			v := float64(e.texel(t, c))
			a[part][c] += w * (1 - uc) * (1 - uc)
			b[part][c] += w * uc * (1 - uc)
			cc[part][c] += w * uc * uc
			x[part][c] += w * (1 - uc) * v
			y[part][c] += w * uc * v
		}
	}

	for part := 0; part < sb.Partitions; part++ {
		for c := 0; c < 4; c++ {
			A, B, C := a[part][c], b[part][c], cc[part][c]
			det := A*C - B*B
			var e0, e1 float64
			if math.Abs(det) < 1e-9*(A+C)*(A+C)+1e-12 {
				m := (x[part][c] + y[part][c]) / math.Max(A+2*B+C, 1e-12)
				e0, e1 = m, m
			} else {
				e0 = (C*x[part][c] - B*y[part][c]) / det
				e1 = (A*y[part][c] - B*x[part][c]) / det
			}
			out[part][0][c] = float32(math.Min(math.Max(e0, 0), 255))
			out[part][1][c] = float32(math.Min(math.Max(e1, 0), 255))
		}
	}
	return out
}
