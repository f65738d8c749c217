// Package net provides the feedforward network and its training loop.
package net

import (
	"fmt"
	"math/rand"

	"github.com/FlavioCFOliveira/GoMLP/internal/activations"
	"github.com/FlavioCFOliveira/GoMLP/internal/data"
	"github.com/FlavioCFOliveira/GoMLP/internal/layer"
	"github.com/FlavioCFOliveira/GoMLP/internal/loss"
	"github.com/FlavioCFOliveira/GoMLP/internal/opt"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Network is an ordered sequence of layers, each feeding the next.
type Network struct {
	layers []layer.Layer
}

// New creates a network from a list of sizes and one activation name per layer.
// sizes[i] is the input width of layer i and sizes[i+1] its output width.
// An unknown activation name is returned as an error; mismatched list lengths panic.
func New(sizes []int, acts []string, rng *rand.Rand) (*Network, error) {
	if len(sizes) < 2 || len(sizes)-1 != len(acts) {
		panic(fmt.Sprintf("Network: %d sizes need %d activations, got %d", len(sizes), len(sizes)-1, len(acts)))
	}

	layers := make([]layer.Layer, len(acts))
	for i, name := range acts {
		act, err := activations.New(name)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		layers[i] = layer.NewDense(sizes[i], sizes[i+1], act, rng)
	}
	return &Network{layers: layers}, nil
}

// FromLayers creates a network from existing layers. Consecutive layers must agree on their
// widths.
func FromLayers(layers ...layer.Layer) *Network {
	if len(layers) == 0 {
		panic("Network: no layers")
	}
	for i := 1; i < len(layers); i++ {
		if layers[i-1].OutSize() != layers[i].InSize() {
			panic(fmt.Sprintf("Network: layer %d outputs %d values, layer %d expects %d",
				i-1, layers[i-1].OutSize(), i, layers[i].InSize()))
		}
	}
	return &Network{layers: layers}
}

// Layers returns the network's layers slice.
func (n *Network) Layers() []layer.Layer {
	return n.layers
}

// Sizes returns the input width followed by every layer's output width.
func (n *Network) Sizes() []int {
	sizes := []int{n.layers[0].InSize()}
	for _, l := range n.layers {
		sizes = append(sizes, l.OutSize())
	}
	return sizes
}

// FeedForward activates every layer in order and returns every intermediate result. The first
// element is input itself and the last is the network output.
func (n *Network) FeedForward(input *mat.Dense) []*mat.Dense {
	mids := make([]*mat.Dense, 0, len(n.layers)+1)
	mids = append(mids, input)
	curr := input
	for _, l := range n.layers {
		curr = l.Activate(curr)
		mids = append(mids, curr)
	}
	return mids
}

// FeedBackward propagates the loss gradient from the last layer to the first. Each layer's
// update is applied by the optimizer as soon as its gradient is known; the gradient passed to
// the previous layer is computed from the weights before that update.
func (n *Network) FeedBackward(mids []*mat.Dense, target mat.Matrix, lossFn loss.Function, o *opt.Optimizer) {
	if len(mids) != len(n.layers)+1 {
		panic(fmt.Sprintf("Network: %d intermediate results for %d layers", len(mids), len(n.layers)))
	}
	if o.Len() != len(n.layers) {
		panic(fmt.Sprintf("Network: optimizer tracks %d layers, network has %d", o.Len(), len(n.layers)))
	}

	grad := lossFn.MatrixGrad(mids[len(mids)-1], target)
	for i := len(n.layers) - 1; i >= 0; i-- {
		l := n.layers[i]
		weightGrad, biasGrad, next := l.Backward(mids[i], grad)
		o.Step(l, weightGrad, biasGrad, i)
		grad = next
	}
}

// Train runs epochs passes over ds. Every epoch resets the optimizer's moments, reshuffles
// ds with loader, and runs one forward and backward pass per batch. The estimate over the whole
// of ds after each epoch is handed to r, which may be nil.
func (n *Network) Train(ds *data.Dataset, epochs, batchSize int, loader *data.Loader, lossFn loss.Function, cfg opt.Config, r Reporter) {
	if r == nil {
		r = BaseReporter{}
	}
	o := opt.New(n.layers, cfg)

	r.OnTrainBegin(n)
	for epoch := 1; epoch <= epochs; epoch++ {
		r.OnEpochBegin(epoch)
		o.SetZeros()
		loader.Shuffle(ds)
		for _, batch := range loader.Split(*ds, batchSize) {
			mids := n.FeedForward(batch.Inputs)
			n.FeedBackward(mids, batch.Targets, lossFn, o)
		}
		r.OnEpochEnd(epoch, n.Estimate(*ds))
	}
	r.OnTrainEnd(n)
}

// Estimate is the classification result over a dataset.
type Estimate struct {
	Total    int
	Wrong    int
	Accuracy float64
}

func (e Estimate) String() string {
	return fmt.Sprintf("%d/%d wrong, accuracy %.4f", e.Wrong, e.Total, e.Accuracy)
}

// Estimate compares the arg-max of every output column with the arg-max of the matching target
// column.
func (n *Network) Estimate(ds data.Dataset) Estimate {
	mids := n.FeedForward(ds.Inputs)
	output := mids[len(mids)-1]

	total := ds.Len()
	outCol := make([]float64, ds.Labels())
	targetCol := make([]float64, ds.Labels())
	wrong := 0
	for i := 0; i < total; i++ {
		mat.Col(outCol, i, output)
		mat.Col(targetCol, i, ds.Targets)
		if floats.MaxIdx(outCol) != floats.MaxIdx(targetCol) {
			wrong++
		}
	}

	return Estimate{
		Total:    total,
		Wrong:    wrong,
		Accuracy: 1 - float64(wrong)/float64(total),
	}
}

// Predict runs every sample of input through the network one at a time and returns the
// outputs, one column per sample.
func (n *Network) Predict(input mat.Matrix) *mat.Dense {
	rows, cols := input.Dims()
	if rows != n.layers[0].InSize() {
		panic(fmt.Sprintf("Network: input has %d rows, want %d", rows, n.layers[0].InSize()))
	}

	out := mat.NewDense(n.layers[len(n.layers)-1].OutSize(), cols, nil)
	sample := make([]float64, rows)
	for i := 0; i < cols; i++ {
		mat.Col(sample, i, input)
		curr := mat.NewDense(rows, 1, sample)
		for _, l := range n.layers {
			curr = l.Activate(curr)
		}
		out.SetCol(i, mat.Col(nil, 0, curr))
	}
	return out
}
