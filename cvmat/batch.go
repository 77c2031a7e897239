package cvmat

import (
	"github.com/pkg/errors"
	"github.com/swdee/go-drpai/postprocess"
	"gocv.io/x/gocv"
)

// Batch defines a struct used for stacking the detection tensors of several
// frames into a single (frames, rows, cols) float32 gocv.Mat, so a batch of
// frames can be filtered in one pass
type Batch struct {
	mat gocv.Mat
	// size of the batch
	size int
	// rows is the detection tensor row count, 4 + classes
	rows int
	// cols is the detection tensor column count, the total grid points
	cols int
	// frameCnt is a counter for how many frames have been added with Add()
	frameCnt int
	// frameSize stores a detection tensor size made up from its elements
	frameSize int
}

// NewBatch creates a batch of stacked detection tensors for the given
// processor output shape and batch size
func NewBatch(batchSize, rows, cols int) *Batch {

	shape := []int{batchSize, rows, cols}

	return &Batch{
		size:      batchSize,
		rows:      rows,
		cols:      cols,
		mat:       gocv.NewMatWithSizes(shape, gocv.MatTypeCV32F),
		frameSize: rows * cols,
	}
}

// NewBatchFor creates a batch shaped for the output of the DFL processor
func NewBatchFor(batchSize int, d *postprocess.DFL) *Batch {
	return NewBatch(batchSize, postprocess.NumEdges+d.Params().ObjectClassNum, d.TotalGridPoints())
}

// Add a detection tensor to the batch
func (b *Batch) Add(d *postprocess.Detections) error {

	if b.frameCnt >= b.size {
		return errors.New("batch full")
	}

	if err := b.addAt(b.frameCnt, d); err != nil {
		return err
	}

	b.frameCnt++
	return nil
}

// AddAt adds a detection tensor to the batch at the specific index location
func (b *Batch) AddAt(idx int, d *postprocess.Detections) error {

	if idx < 0 || idx >= b.size {
		return errors.Errorf("index %d out of range [0-%d)", idx, b.size)
	}

	return b.addAt(idx, d)
}

// addAt copies the detection tensor to the specified index location
func (b *Batch) addAt(idx int, d *postprocess.Detections) error {

	if d.Rows != b.rows || d.Cols != b.cols || len(d.Data) != b.frameSize {
		return errors.Errorf("detection tensor %dx%d does not match batch shape %dx%d",
			d.Rows, d.Cols, b.rows, b.cols)
	}

	dstAll, err := b.mat.DataPtrFloat32()

	if err != nil {
		return errors.Wrap(err, "error accessing float32 batch memory")
	}

	offset := idx * b.frameSize
	copy(dstAll[offset:offset+b.frameSize], d.Data)

	return nil
}

// Frame returns the detection tensor stored at idx.  The data aliases the
// batch memory and is only valid until the batch is closed.
func (b *Batch) Frame(idx int) (*postprocess.Detections, error) {

	if idx < 0 || idx >= b.size {
		return nil, errors.Errorf("index %d out of range [0-%d)", idx, b.size)
	}

	all, err := b.mat.DataPtrFloat32()

	if err != nil {
		return nil, errors.Wrap(err, "error accessing float32 batch memory")
	}

	offset := idx * b.frameSize

	return &postprocess.Detections{
		Data: all[offset : offset+b.frameSize],
		Rows: b.rows,
		Cols: b.cols,
	}, nil
}

// Len returns the number of frames added since the last Clear
func (b *Batch) Len() int {
	return b.frameCnt
}

// Mat returns the stacked mat
func (b *Batch) Mat() gocv.Mat {
	return b.mat
}

// Clear the batch so it can be reused again
func (b *Batch) Clear() {
	// the mat memory is overwritten by the next Add()
	b.frameCnt = 0
}

// Close the batch and free allocated memory
func (b *Batch) Close() error {
	return b.mat.Close()
}
