package postprocess

// reduceScratchSize returns the scratch elements needed by reduce
func reduceScratchSize(mode Reduction, regMax int) int {

	if mode == ReductionExpectation {
		return 2 * regMax
	}

	return 0
}

// reduce collapses the raw box regression tensor of one scale, laid out as
// 4*regMax channels of points values, into the four edge planes written
// channel planar into planes
func reduce(mode Reduction, raw []float32, regMax, points int,
	planes, scratch []float32) {

	if mode != ReductionExpectation {
		copy(planes, raw[:NumEdges*points])
		return
	}

	bins := scratch[:regMax]
	probs := scratch[regMax : 2*regMax]

	for e := 0; e < NumEdges; e++ {
		for p := 0; p < points; p++ {

			offset := e*regMax*points + p

			for k := 0; k < regMax; k++ {
				bins[k] = raw[offset]
				offset += points
			}

			Softmax(bins, probs)
			planes[e*points+p] = WeightedIndex(probs)
		}
	}
}
