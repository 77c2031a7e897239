package postprocess

// assemble stacks the four edge sequences followed by the numClass class
// sequences, each of total values, into the row major detection tensor dst
func assemble(edges, classes []float32, numClass, total int, dst []float32) {

	for i := 0; i < NumEdges; i++ {
		copy(dst[i*total:(i+1)*total], edges[i*total:(i+1)*total])
	}

	for i := 0; i < numClass; i++ {
		copy(dst[(NumEdges+i)*total:(NumEdges+i+1)*total], classes[i*total:(i+1)*total])
	}
}
