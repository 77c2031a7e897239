package postprocess

// concatScales flattens the channel planar tensor of every scale and
// concatenates the scales per channel.  tensors[s] holds channels planes of
// scales[s].Points() values and dst receives channels sequences of total
// values.  Scales are taken in configured order and each grid row major, so
// index k of every channel refers to the same grid point.
func concatScales(tensors [][]float32, scales []Scale, channels, total int,
	dst []float32) {

	for c := 0; c < channels; c++ {

		idx := 0
		row := dst[c*total : (c+1)*total]

		for s, scale := range scales {

			g := scale.Grid
			gg := g * g
			src := tensors[s][c*gg : (c+1)*gg]

			for i := 0; i < g; i++ {
				for j := 0; j < g; j++ {
					row[idx] = src[i*g+j]
					idx++
				}
			}
		}
	}
}
