package postprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReduceReduced(t *testing.T) {

	const regMax, points = 2, 2

	raw := make([]float32, NumEdges*regMax*points)

	for i := range raw {
		raw[i] = float32(i)
	}

	planes := make([]float32, NumEdges*points)
	reduce(ReductionReduced, raw, regMax, points, planes, nil)

	// channels 0..3 are taken as the edge planes
	assert.Equal(t, []float32{0, 1, 2, 3, 4, 5, 6, 7}, planes)
}

func TestReduceExpectation(t *testing.T) {

	const regMax, points = 4, 2

	raw := make([]float32, NumEdges*regMax*points)

	set := func(edge, bin, point int, v float32) {
		raw[(edge*regMax+bin)*points+point] = v
	}

	// point 0 peaks on bin e for edge e, point 1 is uniform
	for e := 0; e < NumEdges; e++ {
		set(e, e, 0, 100)
	}

	planes := make([]float32, NumEdges*points)
	scratch := make([]float32, reduceScratchSize(ReductionExpectation, regMax))

	reduce(ReductionExpectation, raw, regMax, points, planes, scratch)

	for e := 0; e < NumEdges; e++ {
		assert.InDelta(t, float32(e), planes[e*points+0], 1e-5, "edge %d peak", e)
		assert.Equal(t, float32(1.5), planes[e*points+1], "edge %d uniform", e)
	}
}

func TestReduceScratchSize(t *testing.T) {
	assert.Equal(t, 0, reduceScratchSize(ReductionReduced, 16))
	assert.Equal(t, 32, reduceScratchSize(ReductionExpectation, 16))
}
