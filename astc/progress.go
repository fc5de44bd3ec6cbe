package astc

import (
	"fmt"
	"io"
	"sync/atomic"
)

// progress aggregates per-worker block counts without locks. Each counter and
// completion flag has exactly one writer. Readers may observe stale values.
// At most one worker prints at a time, so reported totals never decrease.
type progress struct {
	counts   []atomic.Int64
	finished []atomic.Bool
	printed  atomic.Int64
	out      io.Writer
	divisor  int64
	suppress bool
}

func newProgress(workers int, out io.Writer, divisor int, suppress bool) *progress {
	if divisor < 1 {
		divisor = 1
	}
	return &progress{
		counts:   make([]atomic.Int64, workers),
		finished: make([]atomic.Bool, workers),
		out:      out,
		divisor:  int64(divisor),
		suppress: suppress || out == nil,
	}
}

// total sums every worker's counter.
func (p *progress) total() int64 {
	var n int64
	for i := range p.counts {
		n += p.counts[i].Load()
	}
	return n
}

// workerProgress is the worker-local view of the coordinator.
type workerProgress struct {
	p     *progress
	index int
	pctr  int64
	owns  bool
}

func (p *progress) worker(index int) *workerProgress {
	return &workerProgress{p: p, index: index}
}

// blockDone records one finished block. A worker takes over printing once
// every lower-indexed worker has completed, and keeps it from then on.
func (w *workerProgress) blockDone() {
	p := w.p
	p.counts[w.index].Add(1)
	w.pctr++
	if p.suppress || w.pctr%p.divisor != 0 {
		return
	}
	if !w.owns {
		for i := 0; i < w.index; i++ {
			if !p.finished[i].Load() {
				return
			}
		}
		w.owns = true
	}
	n := p.total()
	p.printed.Store(n)
	fmt.Fprintf(p.out, "\r%d", n)
}

// finish runs once every worker has returned. It prints the final total when
// progress was shown but the last report fell short of it.
func (p *progress) finish() {
	if p.suppress {
		return
	}
	last, n := p.printed.Load(), p.total()
	if last > 0 && last < n {
		p.printed.Store(n)
		fmt.Fprintf(p.out, "\r%d", n)
	}
}

// complete publishes that this worker has finished its share.
func (w *workerProgress) complete() {
	w.p.finished[w.index].Store(true)
}
