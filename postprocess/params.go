package postprocess

import "fmt"

// Activation selects how the class confidence tensors are treated before
// they are merged into the detection tensor
type Activation int

const (
	// ActivationPassthrough copies the class scores unchanged.  Used when the
	// sigmoid is deferred to after argmax or thresholding downstream, which
	// only has to activate the few surviving candidates.
	ActivationPassthrough Activation = iota
	// ActivationSigmoid applies the logistic function to every class score
	ActivationSigmoid
)

// String returns a readable description of the Activation
func (a Activation) String() string {
	switch a {
	case ActivationPassthrough:
		return "passthrough"
	case ActivationSigmoid:
		return "sigmoid"
	default:
		return fmt.Sprintf("Activation(%d)", int(a))
	}
}

// Reduction selects how the 4*RegMax channel box regression tensor is
// collapsed into the four edge planes the decoder works on
type Reduction int

const (
	// ReductionReduced treats channels 0..3 of the regression tensor as the
	// already reduced edge planes, the model head having folded the
	// distribution bins before the tensor left the accelerator
	ReductionReduced Reduction = iota
	// ReductionExpectation takes the softmax over the RegMax bins of each
	// edge at every grid point and reduces it to the expected bin index
	ReductionExpectation
)

// String returns a readable description of the Reduction
func (r Reduction) String() string {
	switch r {
	case ReductionReduced:
		return "reduced"
	case ReductionExpectation:
		return "expectation"
	default:
		return fmt.Sprintf("Reduction(%d)", int(r))
	}
}

// Scale describes one feature pyramid level of the detection head
type Scale struct {
	// Grid is the width and height of the square grid in cells
	Grid int
	// Stride is the number of input image pixels per grid cell
	Stride int
}

// Points returns the number of grid points of the scale
func (s Scale) Points() int {
	return s.Grid * s.Grid
}

// DFLParams defines the struct containing the model parameters to use for
// the DFL decode and merge.  The parameters are fixed for the lifetime of a
// loaded model.
type DFLParams struct {
	// ObjectClassNum is the number of different object classes the Model has
	// been trained with
	ObjectClassNum int
	// Grids are the grid sizes of each output scale, ordered from the largest
	// grid (smallest stride) to the smallest.  The number of entries is the
	// number of inference output layers.
	Grids []int
	// ModelInputHeight is the pixel height of the Model input image, the
	// stride of each scale is ModelInputHeight / grid
	ModelInputHeight int
	// RegMax is the number of distribution bins per box edge
	RegMax int
	// Activation is applied to the class confidence tensors
	Activation Activation
	// Reduction collapses the regression tensor into the edge planes
	Reduction Reduction
	// MultiThread decodes each scale on its own goroutine
	MultiThread bool
}

// DFLCOCOParams returns an instance of DFLParams configured with default
// values for a YOLOv8/YOLOv9 Model trained on the COCO dataset and compiled
// for DRP-AI, featuring:
// - Object Classes: 80
// - Grids: 80, 40, 20 (strides 8, 16, 32)
// - Model Input Height: 640
// - RegMax: 16
// - Activation: passthrough, the sigmoid is applied after thresholding
// - Reduction: reduced by the model head
// - MultiThread: enabled
func DFLCOCOParams() DFLParams {
	return DFLParams{
		ObjectClassNum:   80,
		Grids:            []int{80, 40, 20},
		ModelInputHeight: 640,
		RegMax:           16,
		Activation:       ActivationPassthrough,
		Reduction:        ReductionReduced,
		MultiThread:      true,
	}
}

// Validate checks the parameters are consistent and returns a
// ConfigurationError describing the first problem found
func (p DFLParams) Validate() error {

	if p.ObjectClassNum < 1 {
		return configErrorf("ObjectClassNum", "must be at least 1, got %d", p.ObjectClassNum)
	}

	if p.RegMax < 1 {
		return configErrorf("RegMax", "must be at least 1, got %d", p.RegMax)
	}

	if p.ModelInputHeight < 1 {
		return configErrorf("ModelInputHeight", "must be at least 1, got %d", p.ModelInputHeight)
	}

	for i, g := range p.Grids {
		if g < 1 {
			return configErrorf("Grids", "grid %d has size %d", i, g)
		}

		if g > p.ModelInputHeight {
			return configErrorf("Grids", "grid %d size %d exceeds model input height %d",
				i, g, p.ModelInputHeight)
		}

		if i > 0 && g > p.Grids[i-1] {
			return configErrorf("Grids", "grid %d size %d is larger than the preceding %d, "+
				"grids must be ordered large to small", i, g, p.Grids[i-1])
		}
	}

	switch p.Activation {
	case ActivationPassthrough, ActivationSigmoid:
	default:
		return configErrorf("Activation", "unknown mode %s", p.Activation)
	}

	switch p.Reduction {
	case ReductionReduced, ReductionExpectation:
	default:
		return configErrorf("Reduction", "unknown strategy %s", p.Reduction)
	}

	return nil
}

// CheckLabels checks the labels the Model was trained on agree with the
// configured number of object classes
func (p DFLParams) CheckLabels(labels []string) error {

	if len(labels) != p.ObjectClassNum {
		return configErrorf("ObjectClassNum", "%d classes configured but %d labels given",
			p.ObjectClassNum, len(labels))
	}

	return nil
}

// Scales returns the scale descriptors in configured order
func (p DFLParams) Scales() []Scale {

	scales := make([]Scale, len(p.Grids))

	for i, g := range p.Grids {
		scales[i] = Scale{
			Grid:   g,
			Stride: p.ModelInputHeight / g,
		}
	}

	return scales
}

// TotalGridPoints returns the number of grid points across all scales
func (p DFLParams) TotalGridPoints() int {

	total := 0

	for _, g := range p.Grids {
		total += g * g
	}

	return total
}

// RegressionSize returns the number of elements of the raw box regression
// tensor of scale i
func (p DFLParams) RegressionSize(i int) int {
	return NumEdges * p.RegMax * p.Grids[i] * p.Grids[i]
}

// ClassSize returns the number of elements of the raw class confidence
// tensor of scale i
func (p DFLParams) ClassSize(i int) int {
	return p.ObjectClassNum * p.Grids[i] * p.Grids[i]
}

// OutputSize returns the number of elements of the detection tensor
func (p DFLParams) OutputSize() int {
	return (NumEdges + p.ObjectClassNum) * p.TotalGridPoints()
}

// clone returns a copy of the parameters that shares no memory with p
func (p DFLParams) clone() DFLParams {
	c := p
	c.Grids = append([]int(nil), p.Grids...)
	return c
}
