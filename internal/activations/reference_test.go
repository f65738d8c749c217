// Package activations provides validation tests against PyTorch reference values.
package activations

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// PyTorch reference values (computed with Python):
// import torch
// torch.set_printoptions(precision=10)

// TestReLUAgainstPyTorchReference validates ReLU against PyTorch
func TestReLUAgainstPyTorchReference(t *testing.T) {
	// Values from PyTorch: torch.relu(torch.tensor(x))
	xs := []float64{-2.0, -1.0, -0.5, 0.0, 0.5, 1.0, 2.0}
	expected := []float64{0, 0, 0, 0, 0.5, 1.0, 2.0}

	got := ForKind(ReLU).Apply(mat.NewVecDense(len(xs), xs))
	for i := range xs {
		if !float64Near(got.AtVec(i), expected[i], 1e-10) {
			t.Errorf("ReLU(%v) = %v, PyTorch would give %v", xs[i], got.AtVec(i), expected[i])
		}
	}
}

// TestSigmoidAgainstPyTorchReference validates Sigmoid against PyTorch
func TestSigmoidAgainstPyTorchReference(t *testing.T) {
	// Values from PyTorch: torch.sigmoid(torch.tensor(x))
	xs := []float64{-3.0, -2.0, -1.0, -0.5, 0.0, 0.5, 1.0, 2.0, 3.0}
	expected := []float64{
		0.04742587317474628,
		0.11920292202211755,
		0.2689414213699951,
		0.3775406687981454,
		0.5,
		0.6224593312018546,
		0.7310585786300049,
		0.8807970779778823,
		0.9525741268252538,
	}

	got := ForKind(Sigmoid).Apply(mat.NewVecDense(len(xs), xs))
	for i := range xs {
		if !float64Near(got.AtVec(i), expected[i], 1e-10) {
			t.Errorf("Sigmoid(%v) = %v, PyTorch would give %v", xs[i], got.AtVec(i), expected[i])
		}
	}
}

// TestSigmoidDerivativeAgainstPyTorchReference validates the Jacobian diagonal
// PyTorch: d/dx sigmoid(x) = sigmoid(x) * (1 - sigmoid(x))
func TestSigmoidDerivativeAgainstPyTorchReference(t *testing.T) {
	xs := []float64{-2.0, -1.0, -0.5, 0.0, 0.5, 1.0, 2.0}
	expected := []float64{
		0.10499358540350658,
		0.19661193324148185,
		0.2350037122015942,
		0.25,
		0.2350037122015942,
		0.19661193324148185,
		0.10499358540350658,
	}

	jac := ForKind(Sigmoid).Grad(mat.NewVecDense(len(xs), xs))
	for i := range xs {
		if !float64Near(jac.At(i, i), expected[i], 1e-10) {
			t.Errorf("Sigmoid'(%v) = %v, PyTorch would give %v", xs[i], jac.At(i, i), expected[i])
		}
	}
}

// TestSoftmaxAgainstPyTorchReference validates Softmax against PyTorch
func TestSoftmaxAgainstPyTorchReference(t *testing.T) {
	// Values from PyTorch: torch.softmax(torch.tensor([1.0, 2.0, 3.0]), dim=0)
	xs := []float64{1.0, 2.0, 3.0}
	expected := []float64{0.09003057317038046, 0.24472847105479767, 0.6652409557748219}

	got := ForKind(Softmax).Apply(mat.NewVecDense(len(xs), xs))
	for i := range xs {
		if !float64Near(got.AtVec(i), expected[i], 1e-10) {
			t.Errorf("Softmax[%d] = %v, PyTorch would give %v", i, got.AtVec(i), expected[i])
		}
	}
}

// TestSigmoidIdentity verifies sigmoid(x) + sigmoid(-x) = 1 (PyTorch property)
func TestSigmoidIdentity(t *testing.T) {
	for _, x := range []float64{-3, -2, -1, -0.5, 0.5, 1, 2, 3} {
		sum := sigmoid(x) + sigmoid(-x)
		if math.Abs(sum-1.0) > 1e-10 {
			t.Errorf("Sigmoid identity failed: sigmoid(%v) + sigmoid(-%v) = %v (expected 1)", x, x, sum)
		}
	}
}

// Helper function
func float64Near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
