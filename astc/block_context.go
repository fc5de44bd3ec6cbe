package astc

import "sort"

// blockContext holds the immutable tables for one footprint.
type blockContext struct {
	fp     Footprint
	texels int
	modes  [blockModeCount]blockMode
	dec    [blockModeCount]*decimation
	// search lists the valid mode ids in encoder search order.
	search []int
}

var blockContexts tableCache[Footprint, *blockContext]

func getBlockContext(fp Footprint) *blockContext {
	return blockContexts.get(fp, func() *blockContext { return newBlockContext(fp) })
}

func newBlockContext(fp Footprint) *blockContext {
	ctx := &blockContext{fp: fp, texels: fp.Texels()}
	for id := 0; id < blockModeCount; id++ {
		var m blockMode
		if fp.Z == 1 {
			m = decodeBlockMode2D(id)
		} else {
			m = decodeBlockMode3D(id)
		}
		if !m.ok || m.gridX > fp.X || m.gridY > fp.Y || m.gridZ > fp.Z {
			continue
		}
		ctx.modes[id] = m
		ctx.dec[id] = getDecimation(fp, m.gridX, m.gridY, m.gridZ)
		ctx.search = append(ctx.search, id)
	}

	// Denser grids first, then finer weight ranges, single plane before
	// dual plane. Ties keep mode id order.
	sort.SliceStable(ctx.search, func(i, j int) bool {
		a, b := ctx.modes[ctx.search[i]], ctx.modes[ctx.search[j]]
		if a.weightCount() != b.weightCount() {
			return a.weightCount() > b.weightCount()
		}
		if a.weightQuant != b.weightQuant {
			return a.weightQuant > b.weightQuant
		}
		return !a.dualPlane && b.dualPlane
	})
	return ctx
}
