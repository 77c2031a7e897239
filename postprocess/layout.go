package postprocess

// interleave converts channels planes of points values (CHW) into points
// groups of channels values (HWC)
func interleave(src []float32, channels, points int, dst []float32) {

	for idx := 0; idx < points; idx++ {
		for c := 0; c < channels; c++ {
			dst[idx*channels+c] = src[c*points+idx]
		}
	}
}

// planar converts points groups of channels values (HWC) back into channels
// planes of points values (CHW)
func planar(src []float32, channels, points int, dst []float32) {

	for c := 0; c < channels; c++ {
		for idx := 0; idx < points; idx++ {
			dst[c*points+idx] = src[idx*channels+c]
		}
	}
}
