package astc

import "sync"

// tileJob is the shared, read-only state of one scheduler run. Workers write
// disjoint 16-byte ranges of out, or disjoint block origins of preview.
type tileJob struct {
	img   *Image
	stats *statistics
	fp    Footprint
	grid  BlockGrid
	p     *Params
	codec BlockCodec

	out     []byte
	preview *Image

	progress *progress
}

// run executes the job on workers goroutines. A single worker runs on the
// caller's goroutine.
func (j *tileJob) run(workers int) {
	defer j.progress.finish()
	if workers <= 1 {
		j.work(0, 1)
		return
	}
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(index int) {
			defer wg.Done()
			j.work(index, workers)
		}(i)
	}
	wg.Wait()
}

// work visits every block in z, y, x order and handles one in every workers
// blocks, starting at block index.
func (j *tileJob) work(index, workers int) {
	scratch := NewScratch()
	var blk, decoded DecodedBlock
	wp := j.progress.worker(index)

	counter := index
	g := j.grid
	for z := 0; z < g.Z; z++ {
		for y := 0; y < g.Y; y++ {
			for x := 0; x < g.X; x++ {
				if counter != 0 {
					counter--
					continue
				}
				counter = workers - 1
				j.block(x, y, z, scratch, &blk, &decoded)
				wp.blockDone()
			}
		}
	}

	wp.complete()
}

func (j *tileJob) block(x, y, z int, scratch *Scratch, blk, decoded *DecodedBlock) {
	x0, y0, z0 := x*j.fp.X, y*j.fp.Y, z*j.fp.Z
	fetchBlock(j.img, j.stats, x0, y0, z0, j.fp, j.p.HDR, blk)
	sb := j.codec.CompressBlock(blk, j.p, scratch)

	if j.p.RoundTrip {
		j.codec.DecompressBlock(&sb, j.fp, decoded)
		writeBlock(j.preview, x0, y0, z0, decoded)
		return
	}

	packed := j.codec.PackBlock(&sb, j.fp)
	off := ((z*j.grid.Y+y)*j.grid.X + x) * BlockBytes
	copy(j.out[off:off+BlockBytes], packed[:])
}
