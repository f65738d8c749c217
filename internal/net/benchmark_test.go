package net

import (
	"math/rand"
	"testing"

	"github.com/FlavioCFOliveira/GoMLP/internal/data"
	"github.com/FlavioCFOliveira/GoMLP/internal/loss"
	"github.com/FlavioCFOliveira/GoMLP/internal/opt"
	"gonum.org/v1/gonum/mat"
)

func benchNetwork(b *testing.B) *Network {
	n, err := New([]int{784, 30, 20, 10}, []string{"sigmoid", "sigmoid", "softmax"}, rand.New(rand.NewSource(1)))
	if err != nil {
		b.Fatal(err)
	}
	return n
}

func randomBatch(rows, cols int) *mat.Dense {
	rng := rand.New(rand.NewSource(2))
	m := mat.NewDense(rows, cols, nil)
	m.Apply(func(_, _ int, _ float64) float64 { return rng.Float64() }, m)
	return m
}

// BenchmarkFeedForward benchmarks a forward pass of one 100 sample batch.
func BenchmarkFeedForward(b *testing.B) {
	n := benchNetwork(b)
	input := randomBatch(784, 100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		n.FeedForward(input)
	}
}

// BenchmarkFeedBackward benchmarks a backward pass of one 100 sample batch.
func BenchmarkFeedBackward(b *testing.B) {
	n := benchNetwork(b)
	input := randomBatch(784, 100)
	labels := make([]int, 100)
	for i := range labels {
		labels[i] = i % 10
	}
	target, err := data.OneHot(labels, 10)
	if err != nil {
		b.Fatal(err)
	}
	lossFn := loss.ForKind(loss.CrossEntropy)
	o := opt.New(n.Layers(), opt.DefaultConfig())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		n.FeedBackward(n.FeedForward(input), target, lossFn, o)
	}
}
