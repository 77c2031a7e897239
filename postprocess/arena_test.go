package postprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArenaCreate(t *testing.T) {

	a := NewArena()

	require.NoError(t, a.Create("planes", 8))
	assert.Error(t, a.Create("planes", 8), "duplicate name")
}

func TestArenaEnsure(t *testing.T) {

	a := NewArena()

	require.NoError(t, a.Ensure("planes", 8))
	require.NoError(t, a.Ensure("planes", 4), "smaller request reuses pool")
	assert.Error(t, a.Ensure("planes", 16), "pool too small")
}

func TestArenaGetPut(t *testing.T) {

	a := NewArena()
	require.NoError(t, a.Create("planes", 8))

	buf := a.Get("planes", 6)
	assert.Len(t, buf, 6)

	for i := range buf {
		buf[i] = 7
	}

	a.Put("planes", buf)

	// buffers are zeroed whichever one comes back
	again := a.Get("planes", 8)
	assert.Equal(t, make([]float32, 8), again)

	big := a.Get("planes", 20)
	assert.Len(t, big, 20)
	a.Put("planes", big)

	assert.Panics(t, func() { a.Get("missing", 1) })
	assert.Panics(t, func() { a.Put("missing", nil) })
}
