package postprocess

// Edge indexes of the decoded planes and of the first rows of the detection
// tensor
const (
	EdgeLeft = iota
	EdgeTop
	EdgeRight
	EdgeBottom
	// NumEdges is the number of decoded edge planes
	NumEdges
)

// decodeScratchSize returns the scratch elements decodeEdges needs for a
// grid of the given size
func decodeScratchSize(grid int) int {
	return 3 * NumEdges * grid * grid
}

// decodeEdges decodes the four reduced edge planes P0..P3 of one scale into
// the left, top, right and bottom planes in input image pixels, written
// channel planar into dst.  The order of the float operations is fixed so
// results are bit reproducible.
func decodeEdges(planes []float32, grid, stride int, dst, scratch []float32) {

	h := grid
	w := grid
	gg := h * w

	// split
	intm0 := planes[0*gg : 1*gg]
	intm1 := planes[1*gg : 2*gg]
	intm2 := planes[2*gg : 3*gg]
	intm3 := planes[3*gg : 4*gg]

	// add and sub by the grid cell centres
	sub0 := scratch[0*gg : 1*gg]
	sub1 := scratch[1*gg : 2*gg]
	add0 := scratch[2*gg : 3*gg]
	add1 := scratch[3*gg : 4*gg]

	stageSub0(intm0, h, w, sub0)
	stageSub1(intm1, h, w, sub1)
	stageAdd0(intm2, h, w, add0)
	stageAdd1(intm3, h, w, add1)

	// mean and difference of each axis pair
	out := scratch[4*gg : 8*gg]
	left := out[EdgeLeft*gg : (EdgeLeft+1)*gg]
	top := out[EdgeTop*gg : (EdgeTop+1)*gg]
	right := out[EdgeRight*gg : (EdgeRight+1)*gg]
	bottom := out[EdgeBottom*gg : (EdgeBottom+1)*gg]

	for i := 0; i < gg; i++ {
		left[i] = (sub0[i] + add0[i]) / 2
	}

	for i := 0; i < gg; i++ {
		top[i] = (sub1[i] + add1[i]) / 2
	}

	for i := 0; i < gg; i++ {
		right[i] = add0[i] - sub0[i]
	}

	for i := 0; i < gg; i++ {
		bottom[i] = add1[i] - sub1[i]
	}

	// scale to input pixels
	mul := float32(stride)

	for i := 0; i < gg; i++ {
		left[i] = left[i] * mul
		top[i] = top[i] * mul
		right[i] = right[i] * mul
		bottom[i] = bottom[i] * mul
	}

	// pack per grid point then return to planar layout
	hwc := scratch[8*gg : 12*gg]
	interleave(out, NumEdges, gg, hwc)
	planar(hwc, NumEdges, gg, dst)
}

// stageSub0 subtracts arr from the column centre of each cell,
// [0.5, 1.5, ...] repeated on every row
func stageSub0(arr []float32, h, w int, dst []float32) {

	for _h := 0; _h < h; _h++ {
		for _w := 0; _w < w; _w++ {
			dst[_h*w+_w] = (float32(_w) + 0.5) - arr[_h*w+_w]
		}
	}
}

// stageSub1 subtracts arr from the row centre of each cell, the centre
// starting at 0.5 and increasing by 1 per row
func stageSub1(arr []float32, h, w int, dst []float32) {

	param := float32(0.5)

	for _h := 0; _h < h; _h++ {
		for _w := 0; _w < w; _w++ {
			dst[_h*w+_w] = param - arr[_h*w+_w]
		}

		param += 1
	}
}

// stageAdd0 adds the column centre of each cell to arr
func stageAdd0(arr []float32, h, w int, dst []float32) {

	for _h := 0; _h < h; _h++ {
		for _w := 0; _w < w; _w++ {
			dst[_h*w+_w] = arr[_h*w+_w] + (float32(_w) + 0.5)
		}
	}
}

// stageAdd1 adds the row centre of each cell to arr
func stageAdd1(arr []float32, h, w int, dst []float32) {

	param := float32(0.5)

	for _h := 0; _h < h; _h++ {
		for _w := 0; _w < w; _w++ {
			dst[_h*w+_w] = arr[_h*w+_w] + param
		}

		param += 1
	}
}
