package drpai

import (
	"fmt"

	"github.com/pkg/errors"
)

// TensorType is the element type of an accelerator output buffer
type TensorType int

const (
	TensorFloat32 TensorType = iota
	TensorFloat16
	TensorInt8
)

// TensorFormat is the memory layout of an accelerator output buffer
type TensorFormat int

const (
	TensorNCHW TensorFormat = iota
	TensorNHWC
)

// AttrMaxDimension is the maximum number of dimensions for a tensor
const AttrMaxDimension = 4

// TensorAttr describes a single accelerator output tensor
type TensorAttr struct {
	Index uint32
	Name  string
	NDims uint32
	Dims  [AttrMaxDimension]uint32
	Fmt   TensorFormat
	Type  TensorType
	// ZP is the zero point used for affine quantized INT8 outputs
	ZP int32
	// Scale is the scale used for affine quantized INT8 outputs
	Scale float32
}

// NElems returns the number of elements described by the tensor dimensions
func (a TensorAttr) NElems() uint32 {

	if a.NDims == 0 {
		return 0
	}

	n := uint32(1)

	for i := uint32(0); i < a.NDims && i < AttrMaxDimension; i++ {
		n *= a.Dims[i]
	}

	return n
}

// String returns the TensorAttr's attributes formatted as a string
func (a TensorAttr) String() string {

	return fmt.Sprintf("index=%d, name=%s, n_dims=%d, "+
		"dims=[%d, %d, %d, %d], n_elems=%d, fmt=%s, type=%s, zp=%d, scale=%f",
		a.Index, a.Name, a.NDims, a.Dims[0], a.Dims[1], a.Dims[2], a.Dims[3],
		a.NElems(), a.Fmt.String(), a.Type.String(), a.ZP, a.Scale,
	)
}

// String returns a readable description of the TensorType
func (t TensorType) String() string {
	switch t {
	case TensorFloat32:
		return "FP32"
	case TensorFloat16:
		return "FP16"
	case TensorInt8:
		return "INT8"
	default:
		return "UNKNOW"
	}
}

// String returns a readable description of the TensorFormat
func (t TensorFormat) String() string {
	switch t {
	case TensorNCHW:
		return "NCHW"
	case TensorNHWC:
		return "NHWC"
	default:
		return "UNKNOW"
	}
}

// Output holds one raw accelerator output buffer.  Only the buffer matching
// the Type of the tensor attribute is populated.
type Output struct {
	// Index is the output index
	Index uint32
	// BufFloat is the buffer of a FP32 output
	BufFloat []float32
	// BufHalf is the buffer of a FP16 output as raw IEEE 754 half bits
	BufHalf []uint16
	// BufInt is the buffer of an affine quantized INT8 output
	BufInt []int8
	// Size is the number of elements in the buffer
	Size uint32
}

// Outputs is the set of output buffers produced by one inference frame
type Outputs struct {
	Output []Output
	attrs  []TensorAttr
}

// NewOutputs wraps the given output buffers with their tensor attributes.  The
// buffers are not copied, the Outputs only reads them.
func NewOutputs(attrs []TensorAttr, outputs []Output) (*Outputs, error) {

	if len(attrs) != len(outputs) {
		return nil, errors.Errorf("have %d tensor attributes for %d outputs",
			len(attrs), len(outputs))
	}

	for i, out := range outputs {

		var n int

		switch attrs[i].Type {
		case TensorFloat32:
			n = len(out.BufFloat)
		case TensorFloat16:
			n = len(out.BufHalf)
		case TensorInt8:
			n = len(out.BufInt)
		default:
			return nil, errors.Errorf("output %d has unsupported tensor type %s",
				i, attrs[i].Type)
		}

		if uint32(n) != out.Size {
			return nil, errors.Errorf("output %d %s buffer holds %d elements, size is %d",
				i, attrs[i].Type, n, out.Size)
		}
	}

	return &Outputs{
		Output: outputs,
		attrs:  attrs,
	}, nil
}

// OutputAttrs returns the tensor attributes of the outputs
func (o *Outputs) OutputAttrs() []TensorAttr {
	return o.attrs
}

// Len returns the number of outputs
func (o *Outputs) Len() int {
	return len(o.Output)
}

// Float32 returns output idx as a float32 buffer.  FP32 outputs are returned
// without copying, FP16 and INT8 outputs are converted into a new buffer.
func (o *Outputs) Float32(idx int) ([]float32, error) {

	if idx < 0 || idx >= len(o.Output) {
		return nil, errors.Errorf("output index %d out of range [0-%d)", idx, len(o.Output))
	}

	out := o.Output[idx]
	attr := o.attrs[idx]

	switch attr.Type {
	case TensorFloat32:
		return out.BufFloat, nil

	case TensorFloat16:
		return convertFloat16BufferToFloat32(out.BufHalf), nil

	case TensorInt8:
		buf := make([]float32, len(out.BufInt))

		for i, q := range out.BufInt {
			buf[i] = deqntAffineToF32(q, attr.ZP, attr.Scale)
		}

		return buf, nil
	}

	return nil, errors.Errorf("output %d has unsupported tensor type %s", idx, attr.Type)
}

// deqntAffineToF32 converts a quantized int8 value back to a float32 using
// the provided zero point and scale
func deqntAffineToF32(qnt int8, zp int32, scale float32) float32 {
	return (float32(qnt) - float32(zp)) * scale
}
