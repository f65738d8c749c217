// Package gomlp re-exports the trainer for use outside this module.
package gomlp

import (
	"math/rand"

	"github.com/FlavioCFOliveira/GoMLP/internal/activations"
	"github.com/FlavioCFOliveira/GoMLP/internal/data"
	"github.com/FlavioCFOliveira/GoMLP/internal/layer"
	"github.com/FlavioCFOliveira/GoMLP/internal/loss"
	"github.com/FlavioCFOliveira/GoMLP/internal/net"
	"github.com/FlavioCFOliveira/GoMLP/internal/opt"
	"gonum.org/v1/gonum/mat"
)

// Re-export common types and functions for easier access
type (
	Network         = net.Network
	Layer           = layer.Layer
	Optimizer       = opt.Optimizer
	OptimizerConfig = opt.Config
	Activation      = activations.Function
	Loss            = loss.Function
	Dataset         = data.Dataset
	Loader          = data.Loader
	Estimate        = net.Estimate
	Reporter        = net.Reporter
)

// Model creation
func NewNetwork(sizes []int, activationNames []string, seed int64) (*Network, error) {
	return net.New(sizes, activationNames, rand.New(rand.NewSource(seed)))
}

// Activations
var (
	Sigmoid = activations.ForKind(activations.Sigmoid)
	ReLU    = activations.ForKind(activations.ReLU)
	Softmax = activations.ForKind(activations.Softmax)
)

// Losses
var (
	MSE          = loss.ForKind(loss.MSE)
	CrossEntropy = loss.ForKind(loss.CrossEntropy)
)

func NewLoss(name string) (Loss, error) {
	return loss.New(name)
}

// Optimizers
func DefaultOptimizerConfig() OptimizerConfig {
	return opt.DefaultConfig()
}

// Data
func NewDataset(inputs, targets *mat.Dense) (Dataset, error) {
	return data.New(inputs, targets)
}

func NewLoader(seed int64) *Loader {
	return data.NewLoader(seed)
}

func OneHot(labels []int, classes int) (*mat.Dense, error) {
	return data.OneHot(labels, classes)
}

// Reporters
func LogReporter() Reporter {
	return net.NewLogReporter(nil)
}

func CSVLogger(filename string, append bool) Reporter {
	return net.NewCSVLogger(filename, append)
}

func Checkpoint(filename string) Reporter {
	return net.NewCheckpoint(filename)
}

// Model Persistence
func Load(filename string) (*Network, error) {
	return net.Load(filename)
}
