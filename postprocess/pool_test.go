package postprocess

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool(t *testing.T) {

	p := toyParams()

	pool, err := NewPool(2, p)
	require.NoError(t, err)
	assert.Equal(t, 2, pool.Size())

	in := toyInputs(p)

	var wg sync.WaitGroup

	results := make([]*Detections, 8)

	for i := range results {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			d := pool.Get()
			defer pool.Return(d)

			res, err := d.Process(in)
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}

	wg.Wait()

	for _, res := range results[1:] {
		assert.Equal(t, results[0].Data, res.Data)
	}

	pool.Close()
	pool.Close()

	// returning after close is ignored
	pool.Return(&DFL{})
	assert.Nil(t, pool.Get())
}

func TestPoolInvalid(t *testing.T) {

	_, err := NewPool(0, toyParams())
	assert.ErrorIs(t, err, ErrConfiguration)

	bad := toyParams()
	bad.RegMax = 0

	_, err = NewPool(2, bad)
	assert.ErrorIs(t, err, ErrConfiguration)
}
