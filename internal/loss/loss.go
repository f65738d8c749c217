// Package loss provides the discrepancy measures between a predicted output vector and a
// target vector, together with their gradients.
package loss

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Epsilon is added to predictions before taking logarithms or dividing by them.
const Epsilon = 1e-12

// ErrUnknown is returned when a loss name is not one of the supported variants.
var ErrUnknown = errors.New("unknown loss function")

// Kind identifies a loss variant.
type Kind int

const (
	// Unbound is the zero Kind. A Function of this kind cannot be evaluated.
	Unbound Kind = iota
	MSE
	CrossEntropy
)

// String returns the configuration name of the kind.
func (k Kind) String() string {
	switch k {
	case MSE:
		return "MSE"
	case CrossEntropy:
		return "Cross-entropy"
	default:
		return "unbound"
	}
}

// Parse resolves a configuration name into a Kind.
func Parse(name string) (Kind, error) {
	switch name {
	case "MSE":
		return MSE, nil
	case "Cross-entropy":
		return CrossEntropy, nil
	}
	return Unbound, fmt.Errorf("%w: %q", ErrUnknown, name)
}

// Function is a loss resolved once at construction. The zero value is unbound and panics
// when used.
type Function struct {
	kind  Kind
	value func(output, target []float64) float64
	// grad writes dL/d(output) into dst.
	grad func(dst, output, target []float64)
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
	case MSE:
		return Function{kind: k, value: mseValue, grad: mseGrad}
	case CrossEntropy:
		return Function{kind: k, value: crossEntropyValue, grad: crossEntropyGrad}
	}
	panic(fmt.Sprintf("loss: cannot bind kind %d", int(k)))
}

// Kind reports which variant f evaluates.
func (f Function) Kind() Kind {
	return f.kind
}

func (f Function) mustBeBound() {
	if f.value == nil || f.grad == nil {
		panic("loss: function is not bound to a variant")
	}
}

// Error computes the loss of a single output vector against its target.
func (f Function) Error(output, target mat.Vector) float64 {
	f.mustBeBound()
	if output.Len() != target.Len() {
		panic(fmt.Sprintf("%v: output length %d does not match target length %d", f.kind, output.Len(), target.Len()))
	}
	return f.value(mat.Col(nil, 0, output), mat.Col(nil, 0, target))
}

// BatchError returns the mean loss over the columns of a batch.
func (f Function) BatchError(output, target mat.Matrix) float64 {
	f.mustBeBound()
	r, c := mustMatch(f.kind, output, target)
	out := make([]float64, r)
	tgt := make([]float64, r)
	var sum float64
	for j := 0; j < c; j++ {
		mat.Col(out, j, output)
		mat.Col(tgt, j, target)
		sum += f.value(out, tgt)
	}
	return sum / float64(c)
}

// MatrixGrad returns the per-sample loss gradients of a batch. The result has one row per
// sample (column of output) and one column per output component.
func (f Function) MatrixGrad(output, target mat.Matrix) *mat.Dense {
	f.mustBeBound()
	r, c := mustMatch(f.kind, output, target)
	grad := mat.NewDense(c, r, nil)
	out := make([]float64, r)
	tgt := make([]float64, r)
	for i := 0; i < c; i++ {
		mat.Col(out, i, output)
		mat.Col(tgt, i, target)
		f.grad(grad.RawRowView(i), out, tgt)
	}
	return grad
}

func mustMatch(k Kind, output, target mat.Matrix) (r, c int) {
	r, c = output.Dims()
	tr, tc := target.Dims()
	if r != tr || c != tc {
		panic(fmt.Sprintf("%v: output shape %dx%d does not match target shape %dx%d", k, r, c, tr, tc))
	}
	return r, c
}

// mseValue computes the squared Euclidean distance sum((out - target)^2)
func mseValue(output, target []float64) float64 {
	var sum float64
	for i := range output {
		diff := output[i] - target[i]
		sum += diff * diff
	}
	return sum
}

// mseGrad computes 2 * (out - target)
func mseGrad(dst, output, target []float64) {
	for i := range output {
		dst[i] = 2 * (output[i] - target[i])
	}
}

// crossEntropyValue computes -sum(target * log(out + eps))
func crossEntropyValue(output, target []float64) float64 {
	var sum float64
	for i := range output {
		sum -= target[i] * math.Log(output[i]+Epsilon)
	}
	return sum
}

// crossEntropyGrad computes -target / (out + eps)
func crossEntropyGrad(dst, output, target []float64) {
	for i := range output {
		dst[i] = -target[i] / (output[i] + Epsilon)
	}
}
