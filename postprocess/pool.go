package postprocess

import (
	"sync"
)

// Pool is a simple pool of DFL processors used to post process several
// frames or camera streams concurrently
type Pool struct {
	// pool of processors
	processors chan *DFL
	// size of pool
	size   int
	mu     sync.Mutex
	closed bool
}

// NewPool creates a pool of size processors sharing the given parameters.
// Unless an arena is passed in the options each processor has its own.
func NewPool(size int, p DFLParams, opts ...Option) (*Pool, error) {

	if size < 1 {
		return nil, configErrorf("size", "pool size must be at least 1, got %d", size)
	}

	pl := &Pool{
		processors: make(chan *DFL, size),
		size:       size,
	}

	for i := 0; i < size; i++ {
		d, err := NewDFL(p, opts...)

		if err != nil {
			pl.Close()
			return nil, err
		}

		// attach to pool
		pl.Return(d)
	}

	return pl, nil
}

// Get a processor from the pool, blocking until one is free.  Returns nil
// once the pool is closed.
func (p *Pool) Get() *DFL {
	return <-p.processors
}

// Return a processor to the pool
func (p *Pool) Return(d *DFL) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	select {
	case p.processors <- d:
	default:
		// pool is full
	}
}

// Size returns the number of processors in the pool
func (p *Pool) Size() int {
	return p.size
}

// Close the pool and release the processors in it
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	p.closed = true
	close(p.processors)

	// drain so the processors and their arenas can be collected
	for range p.processors {
	}
}
