// Package config holds the run configuration of a training job.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/FlavioCFOliveira/GoMLP/internal/activations"
	"github.com/FlavioCFOliveira/GoMLP/internal/loss"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid config")

// Dataset formats.
const (
	FormatIDX = "idx"
	FormatNPZ = "npz"
	FormatCSV = "csv"
)

// Config captures the runtime knobs for a training run.
type Config struct {
	Sizes        []int    `yaml:"sizes"`
	Activations  []string `yaml:"activations"`
	Loss         string   `yaml:"loss"`
	Epochs       int      `yaml:"epochs"`
	BatchSize    int      `yaml:"batch_size"`
	LearningRate float64  `yaml:"learning_rate"`
	Beta1        float64  `yaml:"beta1"`
	Beta2        float64  `yaml:"beta2"`
	Epsilon      float64  `yaml:"epsilon"`
	Seed         int64    `yaml:"seed"`

	Train Source `yaml:"train"`
	Test  Source `yaml:"test"`

	CSVLog     string `yaml:"csv_log"`
	Checkpoint string `yaml:"checkpoint"`
	Save       string `yaml:"save"`
}

// Source describes where a dataset is read from.
//
// For idx, Images and Labels are the two IDX files. For npz, Path is the archive and Images and
// Labels name its members (e.g. x_train.npy). For csv, Path is the file and LabelColumns the
// target columns.
type Source struct {
	Format       string `yaml:"format"`
	Path         string `yaml:"path"`
	Images       string `yaml:"images"`
	Labels       string `yaml:"labels"`
	LabelColumns []int  `yaml:"label_columns"`
	Header       bool   `yaml:"header"`
	Classes      int    `yaml:"classes"`
	Limit        int    `yaml:"limit"`
	Normalize    bool   `yaml:"normalize"`
}

// Overrides captures CLI supplied values.
type Overrides struct {
	Epochs       int
	BatchSize    int
	LearningRate float64
	Seed         int64
	CSVLog       string
	Checkpoint   string
	Save         string
}

// Default returns the configuration of the reference MNIST run.
func Default() *Config {
	return &Config{
		Sizes:        []int{784, 30, 20, 10},
		Activations:  []string{"sigmoid", "sigmoid", "softmax"},
		Loss:         "Cross-entropy",
		Epochs:       5,
		BatchSize:    100,
		LearningRate: 1,
		Beta1:        0.9,
		Beta2:        0.99,
		Epsilon:      1e-8,
		Seed:         1337,
		Train: Source{
			Format:  FormatIDX,
			Images:  "train-images-idx3-ubyte",
			Labels:  "train-labels-idx1-ubyte",
			Classes: 10,
			Limit:   60000,
		},
		Test: Source{
			Format:  FormatIDX,
			Images:  "t10k-images-idx3-ubyte",
			Labels:  "t10k-labels-idx1-ubyte",
			Classes: 10,
		},
	}
}

// Load reads a Config from YAML on top of Default and validates it.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg := Default()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyOverrides updates cfg using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.Epochs > 0 {
		c.Epochs = o.Epochs
	}
	if o.BatchSize > 0 {
		c.BatchSize = o.BatchSize
	}
	if o.LearningRate > 0 {
		c.LearningRate = o.LearningRate
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.CSVLog != "" {
		c.CSVLog = o.CSVLog
	}
	if o.Checkpoint != "" {
		c.Checkpoint = o.Checkpoint
	}
	if o.Save != "" {
		c.Save = o.Save
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalid)
	}
	if len(c.Sizes) < 2 {
		return fmt.Errorf("%w: sizes needs at least 2 entries (got %d)", ErrInvalid, len(c.Sizes))
	}
	for i, s := range c.Sizes {
		if s <= 0 {
			return fmt.Errorf("%w: sizes[%d] must be > 0 (got %d)", ErrInvalid, i, s)
		}
	}
	if len(c.Activations) != len(c.Sizes)-1 {
		return fmt.Errorf("%w: %d sizes need %d activations (got %d)", ErrInvalid, len(c.Sizes), len(c.Sizes)-1, len(c.Activations))
	}
	for i, name := range c.Activations {
		if _, err := activations.Parse(name); err != nil {
			return fmt.Errorf("%w: activations[%d]: %v", ErrInvalid, i, err)
		}
	}
	if _, err := loss.Parse(c.Loss); err != nil {
		return fmt.Errorf("%w: loss: %v", ErrInvalid, err)
	}
	if c.Epochs <= 0 {
		return fmt.Errorf("%w: epochs must be > 0 (got %d)", ErrInvalid, c.Epochs)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: batch_size must be > 0 (got %d)", ErrInvalid, c.BatchSize)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("%w: learning_rate must be > 0 (got %g)", ErrInvalid, c.LearningRate)
	}
	if c.Beta1 < 0 || c.Beta1 >= 1 {
		return fmt.Errorf("%w: beta1 must be in [0, 1) (got %g)", ErrInvalid, c.Beta1)
	}
	if c.Beta2 < 0 || c.Beta2 >= 1 {
		return fmt.Errorf("%w: beta2 must be in [0, 1) (got %g)", ErrInvalid, c.Beta2)
	}
	if c.Epsilon < 0 {
		return fmt.Errorf("%w: epsilon must be >= 0 (got %g)", ErrInvalid, c.Epsilon)
	}
	if err := c.Train.validate("train"); err != nil {
		return err
	}
	if c.Test.Format != "" {
		if err := c.Test.validate("test"); err != nil {
			return err
		}
		// The test set is scaled with the training range, so both must agree.
		if c.Test.Normalize != c.Train.Normalize {
			return fmt.Errorf("%w: test.normalize (%t) must match train.normalize (%t)", ErrInvalid, c.Test.Normalize, c.Train.Normalize)
		}
	}
	return nil
}

func (s *Source) validate(name string) error {
	switch s.Format {
	case FormatIDX:
		if s.Images == "" || s.Labels == "" {
			return fmt.Errorf("%w: %s: idx needs images and labels", ErrInvalid, name)
		}
	case FormatNPZ:
		if s.Path == "" || s.Images == "" || s.Labels == "" {
			return fmt.Errorf("%w: %s: npz needs path, images and labels", ErrInvalid, name)
		}
	case FormatCSV:
		if s.Path == "" || len(s.LabelColumns) == 0 {
			return fmt.Errorf("%w: %s: csv needs path and label_columns", ErrInvalid, name)
		}
		if s.Classes > 0 && len(s.LabelColumns) != 1 {
			return fmt.Errorf("%w: %s: classes needs exactly one label column (got %d)", ErrInvalid, name, len(s.LabelColumns))
		}
		return s.validateCommon(name)
	default:
		return fmt.Errorf("%w: %s: unknown format %q", ErrInvalid, name, s.Format)
	}
	if s.Classes <= 0 {
		return fmt.Errorf("%w: %s: classes must be > 0 (got %d)", ErrInvalid, name, s.Classes)
	}
	return s.validateCommon(name)
}

func (s *Source) validateCommon(name string) error {
	if s.Limit < 0 {
		return fmt.Errorf("%w: %s: limit must be >= 0 (got %d)", ErrInvalid, name, s.Limit)
	}
	return nil
}
