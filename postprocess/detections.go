package postprocess

import "gorgonia.org/tensor"

// Detections is the merged detection tensor handed to the thresholding and
// NMS stage.  Data is row major with Rows = 4 + classes and Cols = total grid
// points.  Rows 0 to 3 hold the left, top, right and bottom edge distances in
// input image pixels, the remaining rows the class scores in class order.
type Detections struct {
	Data []float32
	Rows int
	Cols int
}

// Row returns row r of the tensor without copying
func (d *Detections) Row(r int) []float32 {
	return d.Data[r*d.Cols : (r+1)*d.Cols]
}

// Edge returns the sequence of edge e (EdgeLeft..EdgeBottom) over all grid
// points
func (d *Detections) Edge(e int) []float32 {
	return d.Row(e)
}

// Class returns the scores of class c over all grid points
func (d *Detections) Class(c int) []float32 {
	return d.Row(NumEdges + c)
}

// NumClasses returns the number of class rows
func (d *Detections) NumClasses() int {
	return d.Rows - NumEdges
}

// Point gathers the column of grid point k, being the four edges followed by
// the class scores
func (d *Detections) Point(k int) []float32 {

	col := make([]float32, d.Rows)

	for r := 0; r < d.Rows; r++ {
		col[r] = d.Data[r*d.Cols+k]
	}

	return col
}

// Tensor returns a (Rows, Cols) tensor view backed by Data, or nil when the
// tensor has no grid points
func (d *Detections) Tensor() *tensor.Dense {

	if d.Rows == 0 || d.Cols == 0 {
		return nil
	}

	return tensor.New(
		tensor.WithShape(d.Rows, d.Cols),
		tensor.WithBacking(d.Data),
	)
}
