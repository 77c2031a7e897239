package postprocess

import (
	"fmt"
	"io"
	"sync"

	"github.com/pkg/errors"
	"github.com/swdee/go-drpai"
	"go.uber.org/zap"
)

// DFL defines the struct for decoding and merging the per scale Distribution
// Focal Loss outputs of an anchor free YOLO detection head into a single
// detection tensor
type DFL struct {
	// params are the Model configuration parameters
	params DFLParams
	scales []Scale
	total  int
	arena  *Arena
	log    *zap.Logger
	// names of the arena pools used by each scale
	names []scalePools
	// names of the arena pools holding the concatenated sequences
	edgeSeq  string
	classSeq string
}

// scalePools are the arena pool names of one scale's stages
type scalePools struct {
	reduce string
	bins   string
	decode string
	edges  string
	class  string
}

// Option configures optional DFL behaviour
type Option func(*DFL)

// WithLogger sets the logger used by the processor, by default nothing is
// logged
func WithLogger(l *zap.Logger) Option {
	return func(d *DFL) {
		if l != nil {
			d.log = l
		}
	}
}

// WithArena sets the scratch arena, allowing it to be shared between
// processors.  By default each processor has its own.
func WithArena(a *Arena) Option {
	return func(d *DFL) {
		if a != nil {
			d.arena = a
		}
	}
}

// Inputs are the raw accelerator tensors of one inference frame, one entry
// per scale in configured order.  The buffers are only read.
type Inputs struct {
	// Regression holds the 4*RegMax x grid x grid box regression tensors
	Regression [][]float32
	// Classification holds the classes x grid x grid class confidence tensors
	Classification [][]float32
}

// NewDFL returns an instance of the DFL post processor.  The parameters are
// validated and copied, a ConfigurationError is returned if they are invalid.
func NewDFL(p DFLParams, opts ...Option) (*DFL, error) {

	d := &DFL{
		log: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(d)
	}

	if err := p.Validate(); err != nil {
		d.log.Error("invalid DFL parameters", zap.Error(err))
		return nil, err
	}

	d.params = p.clone()
	d.scales = d.params.Scales()
	d.total = d.params.TotalGridPoints()

	if d.arena == nil {
		d.arena = NewArena()
	}

	if err := d.createPools(); err != nil {
		return nil, err
	}

	d.log.Debug("created DFL post processor",
		zap.Any("params", d.params),
		zap.Int("gridPoints", d.total),
		zap.Int("outputSize", d.params.OutputSize()),
	)

	return d, nil
}

// createPools registers the scratch buffers every stage needs
func (d *DFL) createPools() error {

	numClass := d.params.ObjectClassNum
	d.names = make([]scalePools, len(d.scales))

	for i, s := range d.scales {

		gg := s.Points()

		names := scalePools{
			reduce: fmt.Sprintf("dfl/%d/reduce", s.Grid),
			bins:   fmt.Sprintf("dfl/%d/bins", d.params.RegMax),
			decode: fmt.Sprintf("dfl/%d/decode", s.Grid),
			edges:  fmt.Sprintf("dfl/%d/edges", s.Grid),
			class:  fmt.Sprintf("dfl/%d/class%d", s.Grid, numClass),
		}

		sizes := map[string]int{
			names.reduce: NumEdges * gg,
			names.bins:   reduceScratchSize(ReductionExpectation, d.params.RegMax),
			names.decode: decodeScratchSize(s.Grid),
			names.edges:  NumEdges * gg,
			names.class:  numClass * gg,
		}

		for name, size := range sizes {
			if err := d.arena.Ensure(name, size); err != nil {
				return errors.Wrap(err, "error creating scratch arena")
			}
		}

		d.names[i] = names
	}

	d.edgeSeq = fmt.Sprintf("dfl/edge-seq/%d", d.total)
	d.classSeq = fmt.Sprintf("dfl/class-seq/%d/%d", d.total, numClass)

	if err := d.arena.Ensure(d.edgeSeq, NumEdges*d.total); err != nil {
		return errors.Wrap(err, "error creating scratch arena")
	}

	if err := d.arena.Ensure(d.classSeq, numClass*d.total); err != nil {
		return errors.Wrap(err, "error creating scratch arena")
	}

	return nil
}

// Params returns a copy of the processor parameters
func (d *DFL) Params() DFLParams {
	return d.params.clone()
}

// Scales returns the scale descriptors in configured order
func (d *DFL) Scales() []Scale {
	return append([]Scale(nil), d.scales...)
}

// TotalGridPoints returns the number of grid points across all scales
func (d *DFL) TotalGridPoints() int {
	return d.total
}

// OutputSize returns the number of elements of the detection tensor
func (d *DFL) OutputSize() int {
	return (NumEdges + d.params.ObjectClassNum) * d.total
}

// Process decodes and merges the raw tensors of one frame and returns the
// detection tensor.  Ownership of the returned tensor passes to the caller.
func (d *DFL) Process(in Inputs) (*Detections, error) {

	out := make([]float32, d.OutputSize())

	if err := d.ProcessInto(in, out); err != nil {
		return nil, err
	}

	return &Detections{
		Data: out,
		Rows: NumEdges + d.params.ObjectClassNum,
		Cols: d.total,
	}, nil
}

// ProcessInto decodes and merges the raw tensors of one frame into dst, which
// must hold exactly OutputSize() elements.  It allows a video pipeline to
// reuse one output buffer across frames.
func (d *DFL) ProcessInto(in Inputs, dst []float32) error {

	if err := d.checkInputs(in); err != nil {
		d.log.Warn("rejected frame", zap.Error(err))
		return err
	}

	if len(dst) != d.OutputSize() {
		err := configErrorf("dst", "output buffer holds %d elements, need %d",
			len(dst), d.OutputSize())
		d.log.Warn("rejected frame", zap.Error(err))
		return err
	}

	edges := make([][]float32, len(d.scales))
	classes := make([][]float32, len(d.scales))

	if d.params.MultiThread {
		var wg sync.WaitGroup
		wg.Add(len(d.scales))

		// each worker reads its own scale and writes its own buffers
		for s := range d.scales {
			go func(s int) {
				defer wg.Done()
				edges[s], classes[s] = d.processScale(s, in.Regression[s], in.Classification[s])
			}(s)
		}

		wg.Wait()

	} else {
		for s := range d.scales {
			edges[s], classes[s] = d.processScale(s, in.Regression[s], in.Classification[s])
		}
	}

	numClass := d.params.ObjectClassNum

	edgeSeq := d.arena.Get(d.edgeSeq, NumEdges*d.total)
	concatScales(edges, d.scales, NumEdges, d.total, edgeSeq)

	for s, names := range d.names {
		d.arena.Put(names.edges, edges[s])
	}

	classSeq := d.arena.Get(d.classSeq, numClass*d.total)
	concatScales(classes, d.scales, numClass, d.total, classSeq)

	for s, names := range d.names {
		d.arena.Put(names.class, classes[s])
	}

	assemble(edgeSeq, classSeq, numClass, d.total, dst)

	d.arena.Put(d.edgeSeq, edgeSeq)
	d.arena.Put(d.classSeq, classSeq)

	return nil
}

// ProcessOutputs takes the accelerator outputs of one frame, ordered as the
// regression then class tensor of each scale in turn, converts them to
// float32 and runs Process
func (d *DFL) ProcessOutputs(outputs *drpai.Outputs) (*Detections, error) {

	if outputs == nil {
		err := configErrorf("outputs", "no accelerator outputs given")
		d.log.Warn("rejected frame", zap.Error(err))
		return nil, err
	}

	want := 2 * len(d.scales)

	if outputs.Len() != want {
		err := configErrorf("outputs", "have %d accelerator outputs, need %d", outputs.Len(), want)
		d.log.Warn("rejected frame", zap.Error(err))
		return nil, err
	}

	in := Inputs{
		Regression:     make([][]float32, len(d.scales)),
		Classification: make([][]float32, len(d.scales)),
	}

	for s := range d.scales {

		var err error

		in.Regression[s], err = outputs.Float32(2 * s)

		if err != nil {
			return nil, errors.Wrapf(err, "error reading regression output of scale %d", s)
		}

		in.Classification[s], err = outputs.Float32(2*s + 1)

		if err != nil {
			return nil, errors.Wrapf(err, "error reading class output of scale %d", s)
		}
	}

	return d.Process(in)
}

// DecodeScale runs the edge decoder alone on the raw regression tensor of the
// scale with the given grid size, returning the left, top, right and bottom
// planes of grid x grid values.  A grid size that is not configured is a
// ConfigurationError.
func (d *DFL) DecodeScale(grid int, raw []float32) ([NumEdges][]float32, error) {

	var planes [NumEdges][]float32

	s := d.scaleIndex(grid)

	if s < 0 {
		return planes, configErrorf("grid", "grid size %d is not one of %v", grid, d.params.Grids)
	}

	if len(raw) != d.params.RegressionSize(s) {
		return planes, configErrorf("regression", "grid %d tensor has %d elements, need %d",
			grid, len(raw), d.params.RegressionSize(s))
	}

	names := d.names[s]
	gg := d.scales[s].Points()

	decoded := d.decodeScale(s, raw)

	for e := range planes {
		planes[e] = make([]float32, gg)
		copy(planes[e], decoded[e*gg:(e+1)*gg])
	}

	d.arena.Put(names.edges, decoded)

	return planes, nil
}

// scaleIndex returns the index of the first scale with the grid size, or -1
func (d *DFL) scaleIndex(grid int) int {

	for i, s := range d.scales {
		if s.Grid == grid {
			return i
		}
	}

	return -1
}

// checkInputs rejects frames whose tensors do not match the configuration
func (d *DFL) checkInputs(in Inputs) error {

	if len(in.Regression) != len(d.scales) {
		return configErrorf("Regression", "have %d tensors for %d scales",
			len(in.Regression), len(d.scales))
	}

	if len(in.Classification) != len(d.scales) {
		return configErrorf("Classification", "have %d tensors for %d scales",
			len(in.Classification), len(d.scales))
	}

	for s := range d.scales {
		if len(in.Regression[s]) != d.params.RegressionSize(s) {
			return configErrorf("Regression", "scale %d (grid %d) tensor has %d elements, need %d",
				s, d.scales[s].Grid, len(in.Regression[s]), d.params.RegressionSize(s))
		}

		if len(in.Classification[s]) != d.params.ClassSize(s) {
			return configErrorf("Classification", "scale %d (grid %d) tensor has %d elements, need %d",
				s, d.scales[s].Grid, len(in.Classification[s]), d.params.ClassSize(s))
		}
	}

	return nil
}

// processScale decodes the edges and activates the class scores of scale s.
// The returned buffers belong to the scale's edges and class arena pools.
func (d *DFL) processScale(s int, reg, cls []float32) ([]float32, []float32) {

	names := d.names[s]
	gg := d.scales[s].Points()

	edges := d.decodeScale(s, reg)

	class := d.arena.Get(names.class, d.params.ObjectClassNum*gg)
	activate(d.params.Activation, cls, class)

	return edges, class
}

// decodeScale reduces and decodes the regression tensor of scale s into a
// buffer from the scale's edges arena pool
func (d *DFL) decodeScale(s int, reg []float32) []float32 {

	names := d.names[s]
	scale := d.scales[s]
	gg := scale.Points()

	planes := d.arena.Get(names.reduce, NumEdges*gg)

	if d.params.Reduction == ReductionExpectation {
		bins := d.arena.Get(names.bins, reduceScratchSize(ReductionExpectation, d.params.RegMax))
		reduce(d.params.Reduction, reg, d.params.RegMax, gg, planes, bins)
		d.arena.Put(names.bins, bins)
	} else {
		reduce(d.params.Reduction, reg, d.params.RegMax, gg, planes, nil)
	}

	scratch := d.arena.Get(names.decode, decodeScratchSize(scale.Grid))
	edges := d.arena.Get(names.edges, NumEdges*gg)

	decodeEdges(planes, scale.Grid, scale.Stride, edges, scratch)

	d.arena.Put(names.decode, scratch)
	d.arena.Put(names.reduce, planes)

	return edges
}

// Query writes the processor configuration and per scale tensor sizes in
// human readable format
func (d *DFL) Query(w io.Writer) error {

	p := d.params

	if _, err := fmt.Fprintf(w, "Classes: %d, RegMax: %d, Model Input Height: %d\n",
		p.ObjectClassNum, p.RegMax, p.ModelInputHeight); err != nil {
		return err
	}

	fmt.Fprintf(w, "Activation: %s, Reduction: %s, MultiThread: %t\n",
		p.Activation, p.Reduction, p.MultiThread)
	fmt.Fprintf(w, "Scales:\n")

	for i, s := range d.scales {
		fmt.Fprintf(w, "  index=%d, grid=%dx%d, stride=%d, regression=%d, class=%d\n",
			i, s.Grid, s.Grid, s.Stride, p.RegressionSize(i), p.ClassSize(i))
	}

	_, err := fmt.Fprintf(w, "Output: [%d, %d] (%d elements)\n",
		NumEdges+p.ObjectClassNum, d.total, d.OutputSize())

	return err
}
