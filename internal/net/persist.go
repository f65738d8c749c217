package net

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"

	"github.com/FlavioCFOliveira/GoMLP/internal/activations"
	"github.com/FlavioCFOliveira/GoMLP/internal/layer"
	"gonum.org/v1/gonum/mat"
)

// LayerConfig holds what is needed to reconstruct a dense layer. Parameters are stored in
// gonum's binary matrix format.
type LayerConfig struct {
	Activation string
	Weights    []byte
	Biases     []byte
}

// ExtractLayerConfig extracts the configuration from a layer.
func ExtractLayerConfig(l layer.Layer) (LayerConfig, error) {
	dense, ok := l.(*layer.Dense)
	if !ok {
		return LayerConfig{}, fmt.Errorf("unsupported layer type %T", l)
	}

	weights, err := dense.Weights().MarshalBinary()
	if err != nil {
		return LayerConfig{}, fmt.Errorf("failed to marshal weights: %w", err)
	}
	biases, err := dense.Biases().MarshalBinary()
	if err != nil {
		return LayerConfig{}, fmt.Errorf("failed to marshal biases: %w", err)
	}
	return LayerConfig{
		Activation: dense.Activation().Kind().String(),
		Weights:    weights,
		Biases:     biases,
	}, nil
}

// CreateLayer creates a new layer from the configuration.
func (c *LayerConfig) CreateLayer() (layer.Layer, error) {
	act, err := activations.New(c.Activation)
	if err != nil {
		return nil, err
	}

	var weights mat.Dense
	if err := weights.UnmarshalBinary(c.Weights); err != nil {
		return nil, fmt.Errorf("failed to unmarshal weights: %w", err)
	}
	var biases mat.VecDense
	if err := biases.UnmarshalBinary(c.Biases); err != nil {
		return nil, fmt.Errorf("failed to unmarshal biases: %w", err)
	}
	if r, _ := weights.Dims(); r != biases.Len() {
		return nil, fmt.Errorf("bias length %d does not match weight rows %d", biases.Len(), r)
	}
	return layer.NewDenseFrom(&weights, &biases, act), nil
}

// Save saves the network to a file using gob encoding.
func (n *Network) Save(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := n.Encode(file); err != nil {
		return err
	}
	return file.Close()
}

// Encode writes the network to an io.Writer using gob encoding.
func (n *Network) Encode(w io.Writer) error {
	configs := make([]LayerConfig, len(n.layers))
	for i, l := range n.layers {
		cfg, err := ExtractLayerConfig(l)
		if err != nil {
			return fmt.Errorf("failed to encode layer %d: %w", i, err)
		}
		configs[i] = cfg
	}

	if err := gob.NewEncoder(w).Encode(configs); err != nil {
		return fmt.Errorf("failed to encode layers: %w", err)
	}
	return nil
}

// Load loads a network from a file written by Save.
func Load(filename string) (*Network, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Decode(file)
}

// Decode reads a network written by Encode.
func Decode(r io.Reader) (*Network, error) {
	var configs []LayerConfig
	if err := gob.NewDecoder(r).Decode(&configs); err != nil {
		return nil, fmt.Errorf("failed to decode layers: %w", err)
	}
	if len(configs) == 0 {
		return nil, fmt.Errorf("no layers in encoded network")
	}

	layers := make([]layer.Layer, len(configs))
	for i := range configs {
		l, err := configs[i].CreateLayer()
		if err != nil {
			return nil, fmt.Errorf("failed to create layer %d: %w", i, err)
		}
		layers[i] = l
	}
	for i := 1; i < len(layers); i++ {
		if layers[i-1].OutSize() != layers[i].InSize() {
			return nil, fmt.Errorf("layer %d outputs %d values, layer %d expects %d",
				i-1, layers[i-1].OutSize(), i, layers[i].InSize())
		}
	}
	return &Network{layers: layers}, nil
}
