package mac

import (
	"runtime"
	"sync"
)

// parallelThreshold is the minimum index-domain size to use parallel
// processing. Below this, single-threaded is faster due to dispatch overhead.
const parallelThreshold = 4096

// passChunk is a range of indices for a worker to process.
type passChunk struct {
	start, end int
	fn         func(start, end int)
}

// passPool runs data-parallel passes over index domains. Every pass ends
// with a full barrier: forEach does not return until all chunks finish, so
// no pass can observe partial results of another.
type passPool struct {
	numWorkers int

	workChan chan passChunk
	doneChan chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
}

// newPassPool creates a pool with the given worker count.
// workers <= 0 means GOMAXPROCS. Workers start lazily on first dispatch.
func newPassPool(workers int) *passPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &passPool{numWorkers: workers}
}

// start launches persistent worker goroutines.
func (p *passPool) start() {
	if p.running {
		return
	}

	p.workChan = make(chan passChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// stop signals all workers to exit and waits for them.
func (p *passPool) stop() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *passPool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			chunk.fn(chunk.start, chunk.end)
			p.doneChan <- struct{}{}
		}
	}
}

// forEach runs fn over [0, n) split into per-worker chunks and blocks until
// every chunk has completed. Small domains run on the calling goroutine.
func (p *passPool) forEach(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if n < parallelThreshold || p.numWorkers == 1 {
		fn(0, n)
		return
	}

	if !p.running {
		p.start()
	}

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers

	dispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}

		p.workChan <- passChunk{start: start, end: end, fn: fn}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-p.doneChan
	}
}
