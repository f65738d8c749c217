// Package layer provides benchmarks for the dense layer.
package layer

import (
	"math/rand"
	"testing"

	"github.com/FlavioCFOliveira/GoMLP/internal/activations"
	"gonum.org/v1/gonum/mat"
)

func randomMatrix(rng *rand.Rand, rows, cols int) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = rng.Float64()*2 - 1
	}
	return mat.NewDense(rows, cols, data)
}

func benchmarkDense(b *testing.B, k activations.Kind, backward bool) {
	rng := rand.New(rand.NewSource(42))
	d := NewDense(784, 30, activations.ForKind(k), rng)
	input := randomMatrix(rng, 784, 100)
	grad := randomMatrix(rng, 100, 30)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if backward {
			d.CalculateGradient(input, grad)
			d.BackPropagate(input, grad)
		} else {
			d.Activate(input)
		}
	}
}

// BenchmarkDenseActivate benchmarks a 784 -> 30 sigmoid layer on a 100 sample batch.
func BenchmarkDenseActivate(b *testing.B) { benchmarkDense(b, activations.Sigmoid, false) }

// BenchmarkDenseBackward benchmarks gradient and backpropagation for the same layer.
func BenchmarkDenseBackward(b *testing.B) { benchmarkDense(b, activations.Sigmoid, true) }

// BenchmarkDenseSoftmaxBackward benchmarks the full-Jacobian path.
func BenchmarkDenseSoftmaxBackward(b *testing.B) { benchmarkDense(b, activations.Softmax, true) }
