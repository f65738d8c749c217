// Package activations provides the nonlinearities applied to a layer's linear output,
// together with their per-sample Jacobians.
package activations

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrUnknown is returned when an activation name is not one of the supported variants.
var ErrUnknown = errors.New("unknown activation function")

// Kind identifies an activation variant.
type Kind int

const (
	// Unbound is the zero Kind. A Function of this kind cannot be evaluated.
	Unbound Kind = iota
	Sigmoid
	ReLU
	Softmax
)

var names = map[string]Kind{
	"sigmoid": Sigmoid,
	"relu":    ReLU,
	"softmax": Softmax,
}

// String returns the configuration name of the kind.
func (k Kind) String() string {
	switch k {
	case Sigmoid:
		return "sigmoid"
	case ReLU:
		return "relu"
	case Softmax:
		return "softmax"
	default:
		return "unbound"
	}
}

// Parse resolves a configuration name into a Kind.
func Parse(name string) (Kind, error) {
	k, ok := names[name]
	if !ok {
		return Unbound, fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	return k, nil
}

// Function is an activation resolved once at construction into a value transform and a
// Jacobian transform. The zero value is unbound and panics when used.
type Function struct {
	kind Kind
	// apply writes f(x) into dst; dst and x may alias.
	apply func(dst, x []float64)
	// jacobian returns df/dx for a single pre-activation vector.
	jacobian func(x []float64) *mat.Dense
}

// New creates the Function registered under name.
func New(name string) (Function, error) {
	k, err := Parse(name)
	if err != nil {
		return Function{}, err
	}
	return ForKind(k), nil
}

// ForKind creates the Function for k. It panics for Unbound or out of range kinds.
func ForKind(k Kind) Function {
	switch k {
	case Sigmoid:
		return Function{kind: k, apply: sigmoidVec, jacobian: sigmoidJacobian}
	case ReLU:
		return Function{kind: k, apply: reluVec, jacobian: reluJacobian}
	case Softmax:
		return Function{kind: k, apply: softmaxVec, jacobian: softmaxJacobian}
	}
	panic(fmt.Sprintf("activations: cannot bind kind %d", int(k)))
}

// Kind reports which variant f evaluates.
func (f Function) Kind() Kind {
	return f.kind
}

func (f Function) mustBeBound() {
	if f.apply == nil || f.jacobian == nil {
		panic("activations: function is not bound to a variant")
	}
}

// Calculate applies the function to every column of batch independently and returns a new
// matrix of the same shape.
func (f Function) Calculate(batch mat.Matrix) *mat.Dense {
	f.mustBeBound()
	r, c := batch.Dims()
	out := mat.NewDense(r, c, nil)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, batch)
		f.apply(col, col)
		out.SetCol(j, col)
	}
	return out
}

// Apply evaluates the function on a single sample.
func (f Function) Apply(x mat.Vector) *mat.VecDense {
	f.mustBeBound()
	v := make([]float64, x.Len())
	mat.Col(v, 0, x)
	f.apply(v, v)
	return mat.NewVecDense(len(v), v)
}

// Grad returns the Jacobian of the function at the pre-activation vector x of one sample.
// Row i holds the partial derivatives of output i.
func (f Function) Grad(x mat.Vector) *mat.Dense {
	f.mustBeBound()
	v := make([]float64, x.Len())
	mat.Col(v, 0, x)
	return f.jacobian(v)
}

// sigmoid computes the logistic function
func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func sigmoidVec(dst, x []float64) {
	for i, v := range x {
		dst[i] = sigmoid(v)
	}
}

// sigmoidJacobian is diagonal with f(x)(1-f(x)).
func sigmoidJacobian(x []float64) *mat.Dense {
	n := len(x)
	jac := mat.NewDense(n, n, nil)
	for i, v := range x {
		sigma := sigmoid(v)
		jac.Set(i, i, sigma*(1-sigma))
	}
	return jac
}

func reluVec(dst, x []float64) {
	for i, v := range x {
		if v > 0 {
			dst[i] = v
		} else {
			dst[i] = 0
		}
	}
}

// reluJacobian is diagonal with 1 where x > 0. The subgradient at 0 is 0.
func reluJacobian(x []float64) *mat.Dense {
	n := len(x)
	jac := mat.NewDense(n, n, nil)
	for i, v := range x {
		if v > 0 {
			jac.Set(i, i, 1)
		}
	}
	return jac
}

// softmaxVec shifts by the maximum before exponentiating; the result is unchanged and
// large logits do not overflow.
func softmaxVec(dst, x []float64) {
	maxVal := floats.Max(x)
	sum := 0.0
	for i, v := range x {
		dst[i] = math.Exp(v - maxVal)
		sum += dst[i]
	}
	floats.Scale(1/sum, dst)
}

// softmaxJacobian returns diag(s) - s s^T.
func softmaxJacobian(x []float64) *mat.Dense {
	n := len(x)
	s := make([]float64, n)
	softmaxVec(s, x)
	sv := mat.NewVecDense(n, s)

	jac := mat.NewDense(n, n, nil)
	jac.Outer(-1, sv, sv)
	for i, si := range s {
		jac.Set(i, i, jac.At(i, i)+si)
	}
	return jac
}
