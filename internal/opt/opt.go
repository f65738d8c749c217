// Package opt provides the moment-based parameter update applied after each batch.
package opt

import (
	"fmt"
	"math"

	"github.com/FlavioCFOliveira/GoMLP/internal/layer"
	"gonum.org/v1/gonum/mat"
)

// Config holds the optimizer hyperparameters.
type Config struct {
	LearningRate float64
	Beta1        float64 // Exponential decay rate for the momentum
	Beta2        float64 // Exponential decay rate for the velocity
	Epsilon      float64 // Added to the velocity under the square root
}

// DefaultConfig returns lr=1, beta1=0.9, beta2=0.99, eps=1e-8.
func DefaultConfig() Config {
	return Config{
		LearningRate: 1,
		Beta1:        0.9,
		Beta2:        0.99,
		Epsilon:      1e-8,
	}
}

// Optimizer keeps first (momentum) and second (velocity) moment accumulators for the weights
// and biases of every layer, indexed by layer position.
//
// Update rule, element-wise:
//
//	m = beta1*m + (1-beta1)*g
//	v = beta2*v + (1-beta2)*g*g
//	delta = lr * m / (lr + sqrt(v + eps))
//
// Unlike Adam there is no bias correction and the learning rate, not a small constant, is
// added to the denominator.
type Optimizer struct {
	cfg Config

	momentumsW  []*mat.Dense
	velocitiesW []*mat.Dense
	momentumsB  []*mat.VecDense
	velocitiesB []*mat.VecDense
}

// New allocates zeroed accumulators shaped like the parameters of layers. The optimizer is
// bound to this layer set and must be rebuilt if the layers change.
func New(layers []layer.Layer, cfg Config) *Optimizer {
	o := &Optimizer{
		cfg:         cfg,
		momentumsW:  make([]*mat.Dense, 0, len(layers)),
		velocitiesW: make([]*mat.Dense, 0, len(layers)),
		momentumsB:  make([]*mat.VecDense, 0, len(layers)),
		velocitiesB: make([]*mat.VecDense, 0, len(layers)),
	}
	for _, l := range layers {
		out, in := l.OutSize(), l.InSize()
		o.momentumsW = append(o.momentumsW, mat.NewDense(out, in, nil))
		o.velocitiesW = append(o.velocitiesW, mat.NewDense(out, in, nil))
		o.momentumsB = append(o.momentumsB, mat.NewVecDense(out, nil))
		o.velocitiesB = append(o.velocitiesB, mat.NewVecDense(out, nil))
	}
	return o
}

// Len returns the number of layers the optimizer tracks.
func (o *Optimizer) Len() int {
	return len(o.momentumsW)
}

// Step updates the accumulators of layer index with the given gradients and applies the
// resulting change to l immediately.
func (o *Optimizer) Step(l layer.Layer, weightGrad mat.Matrix, biasGrad mat.Vector, index int) {
	if index < 0 || index >= len(o.momentumsW) {
		panic(fmt.Sprintf("Optimizer: layer index %d out of range [0, %d)", index, len(o.momentumsW)))
	}
	mw, vw := o.momentumsW[index], o.velocitiesW[index]
	mb, vb := o.momentumsB[index], o.velocitiesB[index]

	wr, wc := mw.Dims()
	gr, gc := weightGrad.Dims()
	if wr != gr || wc != gc {
		panic(fmt.Sprintf("Optimizer: weight gradient %dx%d does not match layer %d (%dx%d)", gr, gc, index, wr, wc))
	}
	if biasGrad.Len() != mb.Len() {
		panic(fmt.Sprintf("Optimizer: bias gradient length %d does not match layer %d (%d)", biasGrad.Len(), index, mb.Len()))
	}

	b1, b2 := o.cfg.Beta1, o.cfg.Beta2

	// m = b1*m + (1-b1)*g
	mw.Apply(func(i, j int, m float64) float64 {
		return b1*m + (1-b1)*weightGrad.At(i, j)
	}, mw)
	// v = b2*v + (1-b2)*g*g
	vw.Apply(func(i, j int, v float64) float64 {
		g := weightGrad.At(i, j)
		return b2*v + (1-b2)*g*g
	}, vw)
	for i := 0; i < mb.Len(); i++ {
		g := biasGrad.AtVec(i)
		mb.SetVec(i, b1*mb.AtVec(i)+(1-b1)*g)
		vb.SetVec(i, b2*vb.AtVec(i)+(1-b2)*g*g)
	}

	var deltaW mat.Dense
	deltaW.Apply(func(i, j int, m float64) float64 {
		return o.change(m, vw.At(i, j))
	}, mw)
	deltaB := mat.NewVecDense(mb.Len(), nil)
	for i := 0; i < mb.Len(); i++ {
		deltaB.SetVec(i, o.change(mb.AtVec(i), vb.AtVec(i)))
	}

	l.UpdateWeights(&deltaW, deltaB)
}

// change computes lr * m / (lr + sqrt(v + eps))
func (o *Optimizer) change(m, v float64) float64 {
	lr := o.cfg.LearningRate
	return lr * m / (lr + math.Sqrt(v+o.cfg.Epsilon))
}

// SetZeros resets every accumulator to zero.
func (o *Optimizer) SetZeros() {
	for i := range o.momentumsW {
		o.momentumsW[i].Zero()
		o.velocitiesW[i].Zero()
		o.momentumsB[i].Zero()
		o.velocitiesB[i].Zero()
	}
}
