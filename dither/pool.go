// seehuhn.de/go/xtc - convert page images to XTC/XTCH e-book containers
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package dither

import (
	"runtime"
	"sync"

	"seehuhn.de/go/xtc/raster"
)

// A Quantizer reduces a page buffer to quantized gray levels.  The two
// implementations, [Direct] and [Pool], are interchangeable and produce
// numerically identical output for identical input.
type Quantizer interface {
	Quantize(src *raster.Buffer, depth int, strength float64) (*raster.Buffer, error)
}

// Direct runs [Dither] synchronously in the calling goroutine.
type Direct struct{}

// Quantize implements [Quantizer].
func (Direct) Quantize(src *raster.Buffer, depth int, strength float64) (*raster.Buffer, error) {
	return Dither(src, depth, strength)
}

// Pool runs dithering on a fixed set of worker goroutines.  Each
// request is tagged with a monotonically increasing id, and the result
// carrying the same id is routed back to the submitter; completions can
// arrive in any order.  After [Pool.Close], Quantize falls back to the
// synchronous path, which produces identical pixels.
type Pool struct {
	requests chan poolRequest
	done     chan struct{}
	wg       sync.WaitGroup

	mu      sync.Mutex
	closed  bool
	nextID  uint64
	waiters map[uint64]chan poolResult
}

type poolRequest struct {
	id       uint64
	src      *raster.Buffer
	depth    int
	strength float64
}

type poolResult struct {
	id  uint64
	buf *raster.Buffer
	err error
}

// NewPool starts a pool with the given number of workers.  If workers
// is not positive, [runtime.NumCPU] workers are started.  The caller
// must call [Pool.Close] when done.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	p := &Pool{
		requests: make(chan poolRequest),
		done:     make(chan struct{}),
		waiters:  make(map[uint64]chan poolResult),
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.done:
			return
		case req := <-p.requests:
			buf, err := Dither(req.src, req.depth, req.strength)

			p.mu.Lock()
			ch := p.waiters[req.id]
			delete(p.waiters, req.id)
			p.mu.Unlock()

			if ch != nil {
				ch <- poolResult{id: req.id, buf: buf, err: err}
			}
		}
	}
}

// Quantize implements [Quantizer].  The call blocks until a worker has
// processed the request.  If the pool is closed, the work is done
// synchronously instead.
func (p *Pool) Quantize(src *raster.Buffer, depth int, strength float64) (*raster.Buffer, error) {
	ch := make(chan poolResult, 1)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return Dither(src, depth, strength)
	}
	p.nextID++
	id := p.nextID
	p.waiters[id] = ch
	p.mu.Unlock()

	select {
	case p.requests <- poolRequest{id: id, src: src, depth: depth, strength: strength}:
	case <-p.done:
		p.mu.Lock()
		delete(p.waiters, id)
		p.mu.Unlock()
		return Dither(src, depth, strength)
	}

	res := <-ch
	return res.buf, res.err
}

// Close stops the workers and waits for in-flight requests to finish.
// Close is idempotent.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	close(p.done)
	p.wg.Wait()
}

// compile-time interface checks
var (
	_ Quantizer = Direct{}
	_ Quantizer = (*Pool)(nil)
)
