// Package layer provides the fully connected layer used by the network.
package layer

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/FlavioCFOliveira/GoMLP/internal/activations"
	"gonum.org/v1/gonum/mat"
)

// Layer is one affine transform followed by an activation.
//
// Batches are laid out with one sample per column. Gradients are laid out with one sample
// per row.
type Layer interface {
	Linear(input mat.Matrix) *mat.Dense
	Activate(input mat.Matrix) *mat.Dense
	BackPropagate(input, grad mat.Matrix) *mat.Dense
	CalculateGradient(input, grad mat.Matrix) (*mat.Dense, *mat.VecDense)
	Backward(input, grad mat.Matrix) (weightGrad *mat.Dense, biasGrad *mat.VecDense, gradIn *mat.Dense)
	UpdateWeights(deltaW mat.Matrix, deltaB mat.Vector)
	InSize() int
	OutSize() int
}

// Dense is a fully connected layer.
type Dense struct {
	// weights has shape [out, in]
	weights *mat.Dense
	biases  *mat.VecDense
	act     activations.Function
}

var _ Layer = (*Dense)(nil)

// NewDense creates a dense layer with Xavier/Glorot initialised weights drawn from rng.
func NewDense(in, out int, act activations.Function, rng *rand.Rand) *Dense {
	if in <= 0 || out <= 0 {
		panic(fmt.Sprintf("Dense: sizes must be positive, got in=%d out=%d", in, out))
	}

	weights := make([]float64, out*in)
	biases := make([]float64, out)

	scale := math.Sqrt(2.0 / (float64(in) + float64(out)))
	for i := range weights {
		weights[i] = rng.Float64()*2*scale - scale
	}
	for i := range biases {
		biases[i] = rng.Float64()*0.2 - 0.1
	}

	return &Dense{
		weights: mat.NewDense(out, in, weights),
		biases:  mat.NewVecDense(out, biases),
		act:     act,
	}
}

// NewDenseFrom creates a dense layer that takes ownership of the given parameters.
func NewDenseFrom(weights *mat.Dense, biases *mat.VecDense, act activations.Function) *Dense {
	r, _ := weights.Dims()
	if biases.Len() != r {
		panic(fmt.Sprintf("Dense: bias length %d does not match weight rows %d", biases.Len(), r))
	}
	return &Dense{weights: weights, biases: biases, act: act}
}

// Linear computes weights * input + bias, with the bias broadcast across columns.
func (d *Dense) Linear(input mat.Matrix) *mat.Dense {
	d.checkInput(input)

	var z mat.Dense
	z.Mul(d.weights, input)
	z.Apply(func(i, _ int, v float64) float64 {
		return v + d.biases.AtVec(i)
	}, &z)
	return &z
}

// Activate computes the layer output for a batch.
func (d *Dense) Activate(input mat.Matrix) *mat.Dense {
	return d.act.Calculate(d.Linear(input))
}

// BackPropagate maps the gradient with respect to the layer output onto the layer input.
// input is [in, n] and grad is [n, out]; the result is [n, in].
func (d *Dense) BackPropagate(input, grad mat.Matrix) *mat.Dense {
	return d.inputGrad(d.delta(input, grad))
}

// CalculateGradient returns the batch mean gradient of the loss with respect to the weights
// ([out, in]) and biases ([out]).
func (d *Dense) CalculateGradient(input, grad mat.Matrix) (*mat.Dense, *mat.VecDense) {
	return d.paramGrads(input, d.delta(input, grad))
}

// Backward returns the results of CalculateGradient and BackPropagate for the same batch,
// evaluating the activation Jacobians once.
func (d *Dense) Backward(input, grad mat.Matrix) (*mat.Dense, *mat.VecDense, *mat.Dense) {
	delta := d.delta(input, grad)
	weightGrad, biasGrad := d.paramGrads(input, delta)
	return weightGrad, biasGrad, d.inputGrad(delta)
}

func (d *Dense) inputGrad(delta *mat.Dense) *mat.Dense {
	var gradIn mat.Dense
	gradIn.Mul(delta, d.weights)
	return &gradIn
}

func (d *Dense) paramGrads(input mat.Matrix, delta *mat.Dense) (*mat.Dense, *mat.VecDense) {
	n, out := delta.Dims()

	var weightGrad mat.Dense
	weightGrad.Mul(delta.T(), input.T())
	weightGrad.Scale(1/float64(n), &weightGrad)

	biasGrad := mat.NewVecDense(out, nil)
	col := make([]float64, n)
	for o := 0; o < out; o++ {
		mat.Col(col, o, delta)
		var sum float64
		for _, v := range col {
			sum += v
		}
		biasGrad.SetVec(o, sum/float64(n))
	}

	return &weightGrad, biasGrad
}

// delta returns the gradient with respect to the pre-activation, one row per sample.
// Each row is the sample's upstream gradient row multiplied by the activation Jacobian at
// that sample. The Jacobian is taken per sample because softmax couples its outputs.
func (d *Dense) delta(input, grad mat.Matrix) *mat.Dense {
	d.checkInput(input)
	_, n := input.Dims()
	gr, gc := grad.Dims()
	if gr != n {
		panic(fmt.Sprintf("Dense: gradient has %d rows, batch has %d samples", gr, n))
	}
	if out := d.OutSize(); gc != out {
		panic(fmt.Sprintf("Dense: gradient has %d columns, layer has %d outputs", gc, out))
	}

	z := d.Linear(input)
	delta := mat.NewDense(n, gc, nil)
	upstream := mat.NewVecDense(gc, nil)
	var row mat.VecDense
	for i := 0; i < n; i++ {
		mat.Row(upstream.RawVector().Data, i, grad)
		jac := d.act.Grad(z.ColView(i))
		// (g J)^T = J^T g^T
		row.MulVec(jac.T(), upstream)
		delta.SetRow(i, row.RawVector().Data)
	}
	return delta
}

// UpdateWeights subtracts the given deltas from the parameters in place.
func (d *Dense) UpdateWeights(deltaW mat.Matrix, deltaB mat.Vector) {
	wr, wc := d.weights.Dims()
	dr, dc := deltaW.Dims()
	if wr != dr || wc != dc {
		panic(fmt.Sprintf("Dense: weight delta shape %dx%d does not match weights %dx%d", dr, dc, wr, wc))
	}
	if deltaB.Len() != d.biases.Len() {
		panic(fmt.Sprintf("Dense: bias delta length %d does not match biases %d", deltaB.Len(), d.biases.Len()))
	}
	d.weights.Sub(d.weights, deltaW)
	d.biases.SubVec(d.biases, deltaB)
}

func (d *Dense) checkInput(input mat.Matrix) {
	r, _ := input.Dims()
	if _, in := d.weights.Dims(); r != in {
		panic(fmt.Sprintf("Dense: input has %d rows, layer expects %d", r, in))
	}
}

// Weights returns the weight matrix. It is shared with the layer, not copied.
func (d *Dense) Weights() *mat.Dense {
	return d.weights
}

// Biases returns the bias vector. It is shared with the layer, not copied.
func (d *Dense) Biases() *mat.VecDense {
	return d.biases
}

// InSize returns the input size of the layer.
func (d *Dense) InSize() int {
	_, c := d.weights.Dims()
	return c
}

// OutSize returns the output size of the layer.
func (d *Dense) OutSize() int {
	r, _ := d.weights.Dims()
	return r
}

// Activation returns the activation function used by this layer.
func (d *Dense) Activation() activations.Function {
	return d.act
}
