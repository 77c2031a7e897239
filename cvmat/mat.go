// Package cvmat hands DFL detection tensors to OpenCV for the thresholding,
// NMS and drawing stages that follow post processing.
package cvmat

import (
	"github.com/pkg/errors"
	"github.com/swdee/go-drpai/postprocess"
	"gocv.io/x/gocv"
)

// ToMat copies the detection tensor into a new single channel float32 Mat of
// (4 + classes) rows by grid point columns.  The caller must Close the Mat.
func ToMat(d *postprocess.Detections) (gocv.Mat, error) {

	if d == nil || d.Rows == 0 || d.Cols == 0 {
		return gocv.NewMat(), errors.New("detection tensor is empty")
	}

	if len(d.Data) != d.Rows*d.Cols {
		return gocv.NewMat(), errors.Errorf("detection tensor holds %d elements, shape is %dx%d",
			len(d.Data), d.Rows, d.Cols)
	}

	mat := gocv.NewMatWithSize(d.Rows, d.Cols, gocv.MatTypeCV32F)

	dst, err := mat.DataPtrFloat32()

	if err != nil {
		mat.Close()
		return gocv.NewMat(), errors.Wrap(err, "error accessing float32 mat memory")
	}

	copy(dst, d.Data)

	return mat, nil
}

// ToMatTransposed returns the detection tensor as a Mat of one row per grid
// point, each row holding the four edges followed by the class scores.  This
// is the layout gocv.NMSBoxes style filtering iterates over.
func ToMatTransposed(d *postprocess.Detections) (gocv.Mat, error) {

	mat, err := ToMat(d)

	if err != nil {
		return mat, err
	}

	defer mat.Close()

	t := gocv.NewMat()
	gocv.Transpose(mat, &t)

	if t.Rows() != d.Cols || t.Cols() != d.Rows {
		t.Close()
		return gocv.NewMat(), errors.Errorf("transpose produced %dx%d, expected %dx%d",
			t.Rows(), t.Cols(), d.Cols, d.Rows)
	}

	return t, nil
}
