package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"

	"github.com/FlavioCFOliveira/GoMLP/internal/data"
	"github.com/FlavioCFOliveira/GoMLP/internal/loss"
	"github.com/FlavioCFOliveira/GoMLP/internal/net"
	"github.com/FlavioCFOliveira/GoMLP/internal/opt"
	"github.com/google/subcommands"
	"gonum.org/v1/gonum/mat"
)

// XORCommand trains a 2-N-2 network on the XOR truth table.
type XORCommand struct {
	epochs   int
	hidden   int
	seed     int64
	lr       float64
	logEvery int
}

var _ subcommands.Command = (*XORCommand)(nil)

func (*XORCommand) Name() string {
	return "xor"
}

func (*XORCommand) Synopsis() string {
	return "Train a small network on XOR"
}

func (*XORCommand) Usage() string {
	return `xor [--epochs=N] [--hidden=N]:
  Train a 2-N-2 sigmoid/softmax network on the four XOR samples and print its
  predictions.
`
}

func (c *XORCommand) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.epochs, "epochs", 2000, "Number of epochs")
	f.IntVar(&c.hidden, "hidden", 4, "Hidden layer width")
	f.Int64Var(&c.seed, "seed", 42, "Random seed")
	f.Float64Var(&c.lr, "lr", 1, "Learning rate")
	f.IntVar(&c.logEvery, "log-every", 500, "Log accuracy every N epochs")
}

func (c *XORCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.epochs <= 0 || c.hidden <= 0 || c.lr <= 0 || c.logEvery <= 0 {
		log.Printf("Error: --epochs, --hidden, --lr and --log-every must be positive")
		return subcommands.ExitUsageError
	}

	network, err := net.New([]int{2, c.hidden, 2}, []string{"sigmoid", "softmax"}, rand.New(rand.NewSource(c.seed)))
	if err != nil {
		log.Printf("Error: %v", err)
		return subcommands.ExitFailure
	}

	ds := xorDataset()
	cfg := opt.DefaultConfig()
	cfg.LearningRate = c.lr
	network.Train(&ds, c.epochs, len(xorInputs), data.NewLoader(c.seed),
		loss.ForKind(loss.CrossEntropy), cfg, &everyN{n: c.logEvery, inner: net.NewLogReporter(nil)})

	in := mat.NewDense(2, len(xorInputs), nil)
	for j, x := range xorInputs {
		in.SetCol(j, x[:])
	}
	pred := network.Predict(in)
	for j, x := range xorInputs {
		fmt.Printf("Input: %v, P(0)=%.4f P(1)=%.4f, Target: %d\n", x, pred.At(0, j), pred.At(1, j), xorLabels[j])
	}
	return subcommands.ExitSuccess
}

var (
	xorInputs = [][2]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	xorLabels = []int{0, 1, 1, 0}
)

func xorDataset() data.Dataset {
	inputs := mat.NewDense(2, len(xorInputs), nil)
	for j, x := range xorInputs {
		inputs.SetCol(j, x[:])
	}
	targets, err := data.OneHot(xorLabels, 2)
	if err != nil {
		panic(err)
	}
	ds, err := data.New(inputs, targets)
	if err != nil {
		panic(err)
	}
	return ds
}

// everyN forwards every n-th epoch, and the last, to inner.
type everyN struct {
	net.BaseReporter
	n     int
	inner net.Reporter
	last  net.Estimate
	epoch int
}

func (r *everyN) OnTrainBegin(n *net.Network) {
	r.inner.OnTrainBegin(n)
}

func (r *everyN) OnEpochEnd(epoch int, e net.Estimate) {
	r.epoch, r.last = epoch, e
	if epoch%r.n == 0 {
		r.inner.OnEpochEnd(epoch, e)
	}
}

func (r *everyN) OnTrainEnd(n *net.Network) {
	if r.epoch%r.n != 0 {
		r.inner.OnEpochEnd(r.epoch, r.last)
	}
	r.inner.OnTrainEnd(n)
}
