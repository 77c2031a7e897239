package drpai

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

func TestOutputsFloat32(t *testing.T) {

	half := []uint16{
		float16.Fromfloat32(1.5).Bits(),
		float16.Fromfloat32(-2).Bits(),
		float16.Fromfloat32(0.25).Bits(),
	}

	attrs := []TensorAttr{
		{Index: 0, Name: "fp32", NDims: 1, Dims: [4]uint32{2}, Type: TensorFloat32},
		{Index: 1, Name: "fp16", NDims: 1, Dims: [4]uint32{3}, Type: TensorFloat16},
		{Index: 2, Name: "int8", NDims: 1, Dims: [4]uint32{3}, Type: TensorInt8, ZP: -4, Scale: 0.5},
	}

	outs, err := NewOutputs(attrs, []Output{
		{Index: 0, BufFloat: []float32{3, 4}, Size: 2},
		{Index: 1, BufHalf: half, Size: 3},
		{Index: 2, BufInt: []int8{-4, 0, 6}, Size: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, outs.Len())

	f32, err := outs.Float32(0)
	require.NoError(t, err)
	assert.Equal(t, []float32{3, 4}, f32)

	f16, err := outs.Float32(1)
	require.NoError(t, err)
	assert.Equal(t, []float32{1.5, -2, 0.25}, f16)

	i8, err := outs.Float32(2)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 2, 5}, i8)

	_, err = outs.Float32(3)
	assert.Error(t, err)

	_, err = outs.Float32(-1)
	assert.Error(t, err)
}

func TestNewOutputsValidation(t *testing.T) {

	attrs := []TensorAttr{{Type: TensorFloat32}}

	_, err := NewOutputs(attrs, nil)
	assert.Error(t, err, "attribute and output count mismatch")

	_, err = NewOutputs(attrs, []Output{{BufFloat: []float32{1, 2}, Size: 3}})
	assert.Error(t, err, "buffer length does not match size")

	_, err = NewOutputs([]TensorAttr{{Type: TensorType(42)}},
		[]Output{{BufFloat: []float32{1}, Size: 1}})
	assert.Error(t, err, "unsupported type")
}

func TestFloat16LookupTable(t *testing.T) {

	for _, v := range []float32{0, 1, -1, 65504, 0.000061035156} {
		bits := float16.Fromfloat32(v).Bits()
		assert.Equal(t, float16.Frombits(bits).Float32(), f16LookupTable[bits])
	}
}

func TestOutputsQuery(t *testing.T) {

	attrs := []TensorAttr{
		{Index: 0, Name: "dfl80", NDims: 4, Dims: [4]uint32{1, 64, 80, 80}, Type: TensorFloat16},
	}

	outs, err := NewOutputs(attrs, []Output{{BufHalf: make([]uint16, 64*80*80), Size: 64 * 80 * 80}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, outs.Query(&buf))

	assert.Contains(t, buf.String(), "Output Number: 1")
	assert.Contains(t, buf.String(), "name=dfl80")
	assert.Contains(t, buf.String(), "n_elems=409600")
	assert.Contains(t, buf.String(), "type=FP16")
}
