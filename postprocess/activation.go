package postprocess

import (
	"math"

	"github.com/chewxy/math32"
)

// Sigmoid returns the logistic function of x.  It is evaluated in double
// precision and rounded once to float32, so the result saturates to exactly
// 0 below about -104 and to exactly 1 above about 17.
func Sigmoid(x float32) float32 {
	return float32(1.0 / (1.0 + math.Exp(-float64(x))))
}

// Softmax writes the softmax of input into output, which must be at least
// as long as input.  The maximum is subtracted before exponentiation.
func Softmax(input, output []float32) {

	if len(input) == 0 {
		return
	}

	maxVal := input[0]

	for _, v := range input[1:] {
		if v > maxVal {
			maxVal = v
		}
	}

	sum := float32(0)

	for i, v := range input {
		output[i] = math32.Exp(v - maxVal)
		sum += output[i]
	}

	for i := range input {
		output[i] /= sum
	}
}

// WeightedIndex returns the sum of each value multiplied by its index, which
// for a probability distribution over bins is the expected bin
func WeightedIndex(input []float32) float32 {

	result := float32(0)

	for i, v := range input {
		// explicit conversion stops the multiply add being fused
		result += float32(v * float32(i))
	}

	return result
}

// Activate returns a copy of the class confidence tensor src with the given
// activation applied
func Activate(mode Activation, src []float32) ([]float32, error) {

	switch mode {
	case ActivationPassthrough, ActivationSigmoid:
	default:
		return nil, configErrorf("Activation", "unknown mode %s", mode)
	}

	dst := make([]float32, len(src))
	activate(mode, src, dst)

	return dst, nil
}

// activate writes src into dst with the activation applied.  mode must
// already be validated.
func activate(mode Activation, src, dst []float32) {

	if mode == ActivationSigmoid {
		for i, v := range src {
			dst[i] = Sigmoid(v)
		}

		return
	}

	copy(dst, src)
}
