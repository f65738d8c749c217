// Package activations provides unit tests for activation functions.
package activations

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// TestParse tests name resolution for every variant.
func TestParse(t *testing.T) {
	tests := []struct {
		name string
		want Kind
	}{
		{"sigmoid", Sigmoid},
		{"relu", ReLU},
		{"softmax", Softmax},
	}

	for _, tt := range tests {
		got, err := Parse(tt.name)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.name, got.String())
	}
}

// TestUnknownName tests that construction fails for unsupported names.
func TestUnknownName(t *testing.T) {
	for _, name := range []string{"", "tanh", "Sigmoid", "soft max"} {
		_, err := New(name)
		if !errors.Is(err, ErrUnknown) {
			t.Errorf("New(%q) error = %v, want ErrUnknown", name, err)
		}
	}
}

// TestUnboundPanics tests that the zero Function cannot be evaluated.
func TestUnboundPanics(t *testing.T) {
	var f Function
	assert.Panics(t, func() { f.Calculate(mat.NewDense(1, 1, nil)) })
	assert.Panics(t, func() { f.Grad(mat.NewVecDense(1, nil)) })
	assert.Panics(t, func() { ForKind(Unbound) })
}

// TestCalculateIsColumnwise tests that batching does not change per-sample results.
func TestCalculateIsColumnwise(t *testing.T) {
	batch := mat.NewDense(3, 4, []float64{
		-1.0, 0.0, 2.5, -0.3,
		0.5, -2.0, 1.0, 7.0,
		3.0, 0.1, -4.0, 0.0,
	})

	for _, k := range []Kind{Sigmoid, ReLU, Softmax} {
		f := ForKind(k)
		out := f.Calculate(batch)

		r, c := out.Dims()
		require.Equal(t, 3, r)
		require.Equal(t, 4, c)

		for j := 0; j < c; j++ {
			single := f.Apply(batch.ColView(j))
			for i := 0; i < r; i++ {
				assert.InDelta(t, single.AtVec(i), out.At(i, j), 1e-15, "%v column %d row %d", k, j, i)
			}
		}
	}
}

// TestSigmoidValues tests sigmoid against its closed form.
func TestSigmoidValues(t *testing.T) {
	f := ForKind(Sigmoid)
	x := mat.NewVecDense(3, []float64{-1, 0, 2})
	got := f.Apply(x)

	for i := 0; i < x.Len(); i++ {
		want := 1 / (1 + math.Exp(-x.AtVec(i)))
		assert.InDelta(t, want, got.AtVec(i), 1e-12)
	}
}

// TestReLUValues tests that negative inputs are clamped to zero.
func TestReLUValues(t *testing.T) {
	f := ForKind(ReLU)
	got := f.Apply(mat.NewVecDense(4, []float64{-1, 0, 0.5, 3}))
	assert.Equal(t, []float64{0, 0, 0.5, 3}, got.RawVector().Data)
}

// TestSoftmaxIsDistribution tests that every output column sums to one and is non-negative.
func TestSoftmaxIsDistribution(t *testing.T) {
	batch := mat.NewDense(3, 3, []float64{
		1000, -1000, 0,
		999, -999, 0,
		-5, 3, 0,
	})
	out := ForKind(Softmax).Calculate(batch)

	col := make([]float64, 3)
	for j := 0; j < 3; j++ {
		mat.Col(col, j, out)
		for i, v := range col {
			if v < 0 || math.IsNaN(v) {
				t.Errorf("softmax column %d row %d = %v", j, i, v)
			}
		}
		assert.InDelta(t, 1.0, floats.Sum(col), 1e-12)
	}
}

// TestSigmoidJacobian tests the diagonal f(x)(1-f(x)) form.
func TestSigmoidJacobian(t *testing.T) {
	x := mat.NewVecDense(3, []float64{-2, 0, 1.5})
	jac := ForKind(Sigmoid).Grad(x)

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if i != j {
				assert.Zero(t, jac.At(i, j))
				continue
			}
			s := sigmoid(x.AtVec(i))
			assert.InDelta(t, s*(1-s), jac.At(i, i), 1e-15)
		}
	}
}

// TestReLUJacobian tests that the diagonal is exactly 0 or 1 following the input sign.
func TestReLUJacobian(t *testing.T) {
	x := mat.NewVecDense(4, []float64{-1, 0, 1e-9, 5})
	jac := ForKind(ReLU).Grad(x)

	want := mat.NewDense(4, 4, []float64{
		0, 0, 0, 0,
		0, 0, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})
	assert.True(t, mat.Equal(want, jac), "jacobian = %v", mat.Formatted(jac))
}

// TestSoftmaxJacobian tests diag(s) - s s^T against the closed form and finite differences.
func TestSoftmaxJacobian(t *testing.T) {
	xs := []float64{0.3, -1.2, 2.0, 0.0}
	x := mat.NewVecDense(len(xs), xs)
	f := ForKind(Softmax)
	jac := f.Grad(x)
	s := f.Apply(x)

	for i := 0; i < len(xs); i++ {
		for j := 0; j < len(xs); j++ {
			want := -s.AtVec(i) * s.AtVec(j)
			if i == j {
				want += s.AtVec(i)
			}
			assert.InDelta(t, want, jac.At(i, j), 1e-15)
		}
	}

	numeric := mat.NewDense(len(xs), len(xs), nil)
	fd.Jacobian(numeric, func(y, in []float64) {
		softmaxVec(y, in)
	}, xs, &fd.JacobianSettings{Formula: fd.Central})
	assert.True(t, mat.EqualApprox(numeric, jac, 1e-7), "numeric %v\nanalytic %v", mat.Formatted(numeric), mat.Formatted(jac))
}

// TestJacobiansMatchFiniteDifferences checks every variant away from non-differentiable points.
func TestJacobiansMatchFiniteDifferences(t *testing.T) {
	xs := []float64{0.7, -0.4, 1.3}
	for _, k := range []Kind{Sigmoid, ReLU, Softmax} {
		f := ForKind(k)
		numeric := mat.NewDense(len(xs), len(xs), nil)
		fd.Jacobian(numeric, func(y, in []float64) {
			f.apply(y, in)
		}, xs, &fd.JacobianSettings{Formula: fd.Central})

		jac := f.Grad(mat.NewVecDense(len(xs), xs))
		if !mat.EqualApprox(numeric, jac, 1e-7) {
			t.Errorf("%v jacobian mismatch\nnumeric %v\nanalytic %v", k, mat.Formatted(numeric), mat.Formatted(jac))
		}
	}
}

// TestSoftmaxCrossEntropyGradient tests that the Jacobian turns the cross-entropy gradient
// of a one-hot target into output - target.
func TestSoftmaxCrossEntropyGradient(t *testing.T) {
	const eps = 1e-12
	x := mat.NewVecDense(3, []float64{1.0, 2.0, 0.5})
	target := []float64{0, 1, 0}

	f := ForKind(Softmax)
	s := f.Apply(x)

	upstream := mat.NewVecDense(3, nil)
	for i := range target {
		upstream.SetVec(i, -target[i]/(s.AtVec(i)+eps))
	}

	var combined mat.VecDense
	combined.MulVec(f.Grad(x).T(), upstream)

	for i := range target {
		assert.InDelta(t, s.AtVec(i)-target[i], combined.AtVec(i), 1e-9)
	}
}
