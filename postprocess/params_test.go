package postprocess

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDFLCOCOParams(t *testing.T) {

	p := DFLCOCOParams()
	require.NoError(t, p.Validate())

	assert.Equal(t, 8400, p.TotalGridPoints())
	assert.Equal(t, 84*8400, p.OutputSize())
	assert.Equal(t, []Scale{{80, 8}, {40, 16}, {20, 32}}, p.Scales())
	assert.Equal(t, 64*80*80, p.RegressionSize(0))
	assert.Equal(t, 64*20*20, p.RegressionSize(2))
	assert.Equal(t, 80*40*40, p.ClassSize(1))
}

func TestDFLParamsValidate(t *testing.T) {

	valid := func() DFLParams {
		return DFLParams{
			ObjectClassNum:   1,
			Grids:            []int{2, 1, 1},
			ModelInputHeight: 2,
			RegMax:           1,
		}
	}

	tests := []struct {
		name   string
		modify func(p *DFLParams)
		field  string
	}{
		{"no classes", func(p *DFLParams) { p.ObjectClassNum = 0 }, "ObjectClassNum"},
		{"no bins", func(p *DFLParams) { p.RegMax = 0 }, "RegMax"},
		{"no input height", func(p *DFLParams) { p.ModelInputHeight = 0 }, "ModelInputHeight"},
		{"zero grid", func(p *DFLParams) { p.Grids = []int{2, 0} }, "Grids"},
		{"grid exceeds input", func(p *DFLParams) { p.Grids = []int{4} }, "Grids"},
		{"grids small to large", func(p *DFLParams) { p.Grids = []int{1, 2} }, "Grids"},
		{"unknown activation", func(p *DFLParams) { p.Activation = Activation(9) }, "Activation"},
		{"unknown reduction", func(p *DFLParams) { p.Reduction = Reduction(9) }, "Reduction"},
	}

	require.NoError(t, valid().Validate())

	for _, tc := range tests {
		p := valid()
		tc.modify(&p)

		err := p.Validate()
		require.Error(t, err, tc.name)
		assert.ErrorIs(t, err, ErrConfiguration, tc.name)
		assert.Equal(t, ErrConfiguration, errors.Cause(err), tc.name)

		var cfgErr *ConfigurationError
		require.ErrorAs(t, err, &cfgErr, tc.name)
		assert.Equal(t, tc.field, cfgErr.Field, tc.name)
	}
}

func TestDFLParamsDegenerate(t *testing.T) {

	// single and empty scale lists are valid
	single := DFLParams{ObjectClassNum: 3, Grids: []int{4}, ModelInputHeight: 16, RegMax: 1}
	require.NoError(t, single.Validate())
	assert.Equal(t, 16, single.TotalGridPoints())
	assert.Equal(t, []Scale{{4, 4}}, single.Scales())

	empty := DFLParams{ObjectClassNum: 3, ModelInputHeight: 16, RegMax: 1}
	require.NoError(t, empty.Validate())
	assert.Equal(t, 0, empty.TotalGridPoints())
	assert.Equal(t, 0, empty.OutputSize())
}

func TestDFLParamsCheckLabels(t *testing.T) {

	p := DFLParams{ObjectClassNum: 2}

	assert.NoError(t, p.CheckLabels([]string{"person", "car"}))
	assert.ErrorIs(t, p.CheckLabels([]string{"person"}), ErrConfiguration)
}

func TestModeStrings(t *testing.T) {
	assert.Equal(t, "passthrough", ActivationPassthrough.String())
	assert.Equal(t, "sigmoid", ActivationSigmoid.String())
	assert.Equal(t, "Activation(5)", Activation(5).String())
	assert.Equal(t, "reduced", ReductionReduced.String())
	assert.Equal(t, "expectation", ReductionExpectation.String())
}
