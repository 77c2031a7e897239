package postprocess

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
)

// Arena holds a set of named float32 scratch buffer pools.  Buffers are
// taken on entry to a processing stage and returned on exit, so frames of a
// video stream reuse the same memory.  An Arena is safe for concurrent use
// and may be shared by several processors.
type Arena struct {
	mu    sync.Mutex
	pools map[string]*arenaEntry
}

// arenaEntry defines a single named pool
type arenaEntry struct {
	pool    sync.Pool
	maxSize int
}

// NewArena returns an empty Arena
func NewArena() *Arena {
	return &Arena{
		pools: make(map[string]*arenaEntry),
	}
}

// Create registers a new pool under 'name' that will produce buffers
// of maxSize. Calling it twice with the same name returns an error.
func (a *Arena) Create(name string, maxSize int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.pools[name]; exists {
		return errors.Errorf("arena pool %q already exists", name)
	}

	a.pools[name] = newArenaEntry(maxSize)
	return nil
}

// Ensure registers a pool under 'name' unless one exists.  An existing pool
// is reused only if its buffers hold at least maxSize elements.
func (a *Arena) Ensure(name string, maxSize int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if entry, exists := a.pools[name]; exists {
		if entry.maxSize < maxSize {
			return errors.Errorf("arena pool %q holds %d elements, need %d",
				name, entry.maxSize, maxSize)
		}

		return nil
	}

	a.pools[name] = newArenaEntry(maxSize)
	return nil
}

func newArenaEntry(maxSize int) *arenaEntry {

	entry := &arenaEntry{maxSize: maxSize}

	entry.pool.New = func() any {
		return make([]float32, maxSize)
	}

	return entry
}

// Get returns a zeroed []float32 slice of length 'size' from the named pool.
// If size > maxSize, it allocates a new slice of exactly size.
// Panics if the pool name is unknown.
func (a *Arena) Get(name string, size int) []float32 {
	a.mu.Lock()
	entry, ok := a.pools[name]
	a.mu.Unlock()

	if !ok {
		panic(fmt.Sprintf("arena pool %q not registered", name))
	}

	buf := entry.pool.Get().([]float32)

	if cap(buf) < size {
		return make([]float32, size)
	}

	buf = buf[:size]

	for i := range buf {
		buf[i] = 0
	}

	return buf
}

// Put returns a buffer back into its named pool.  Buffers smaller than the
// pool size, which Get never hands out, are dropped.
func (a *Arena) Put(name string, buf []float32) {
	a.mu.Lock()
	entry, ok := a.pools[name]
	a.mu.Unlock()

	if !ok {
		panic(fmt.Sprintf("arena pool %q not registered", name))
	}

	if cap(buf) < entry.maxSize {
		return
	}

	// restore to full capacity so it matches entry.New next time
	entry.pool.Put(buf[:entry.maxSize])
}
