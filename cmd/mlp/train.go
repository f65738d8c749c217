package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"

	"github.com/FlavioCFOliveira/GoMLP/internal/config"
	"github.com/FlavioCFOliveira/GoMLP/internal/data"
	"github.com/FlavioCFOliveira/GoMLP/internal/loss"
	"github.com/FlavioCFOliveira/GoMLP/internal/net"
	"github.com/FlavioCFOliveira/GoMLP/internal/opt"
	"github.com/google/subcommands"
)

type TrainCommand struct {
	configFile string
	overrides  config.Overrides
}

var _ subcommands.Command = (*TrainCommand)(nil)

func (*TrainCommand) Name() string {
	return "train"
}

func (*TrainCommand) Synopsis() string {
	return "Train a network and report its accuracy"
}

func (*TrainCommand) Usage() string {
	return `train [--config=run.yaml] [flags]:
  Train on the configured training set, logging accuracy after every epoch,
  then estimate accuracy on the test set if one is configured.
`
}

func (c *TrainCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configFile, "config", "", "Path to a YAML run configuration (defaults to the MNIST run)")
	f.IntVar(&c.overrides.Epochs, "epochs", 0, "Override the number of epochs")
	f.IntVar(&c.overrides.BatchSize, "batch-size", 0, "Override the mini-batch size")
	f.Float64Var(&c.overrides.LearningRate, "lr", 0, "Override the learning rate")
	f.Int64Var(&c.overrides.Seed, "seed", 0, "Override the random seed")
	f.StringVar(&c.overrides.CSVLog, "csv-log", "", "Write per-epoch results to this CSV file")
	f.StringVar(&c.overrides.Checkpoint, "checkpoint", "", "Save the network whenever training accuracy improves")
	f.StringVar(&c.overrides.Save, "save", "", "Save the trained network to this file")
}

func (c *TrainCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.executeErr(ctx); err != nil {
		log.Printf("Error: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *TrainCommand) executeErr(ctx context.Context) error {
	cfg, err := loadConfig(c.configFile, c.overrides)
	if err != nil {
		return err
	}

	lossFn, err := loss.New(cfg.Loss)
	if err != nil {
		return fmt.Errorf("while resolving loss: %w", err)
	}

	train, scale, err := loadSource(cfg.Train, nil)
	if err != nil {
		return fmt.Errorf("while loading training set: %w", err)
	}
	if err := checkDims(train, cfg.Sizes); err != nil {
		return fmt.Errorf("training set: %w", err)
	}
	log.Printf("Training set loaded: samples=%d features=%d labels=%d", train.Len(), train.Features(), train.Labels())

	network, err := net.New(cfg.Sizes, cfg.Activations, rand.New(rand.NewSource(cfg.Seed)))
	if err != nil {
		return fmt.Errorf("while building network: %w", err)
	}

	reporters := net.MultiReporter{net.NewLogReporter(nil)}
	if cfg.CSVLog != "" {
		reporters = append(reporters, net.NewCSVLogger(cfg.CSVLog, false))
	}
	if cfg.Checkpoint != "" {
		reporters = append(reporters, net.NewCheckpoint(cfg.Checkpoint))
	}

	optCfg := opt.Config{
		LearningRate: cfg.LearningRate,
		Beta1:        cfg.Beta1,
		Beta2:        cfg.Beta2,
		Epsilon:      cfg.Epsilon,
	}
	network.Train(&train, cfg.Epochs, cfg.BatchSize, data.NewLoader(cfg.Seed), lossFn, optCfg, reporters)

	if cfg.Save != "" {
		if err := network.Save(cfg.Save); err != nil {
			return fmt.Errorf("while saving network: %w", err)
		}
		log.Printf("Network saved to %s", cfg.Save)
	}

	if cfg.Test.Format == "" {
		return nil
	}
	test, _, err := loadSource(cfg.Test, scale)
	if err != nil {
		return fmt.Errorf("while loading test set: %w", err)
	}
	if err := checkDims(test, cfg.Sizes); err != nil {
		return fmt.Errorf("test set: %w", err)
	}
	e := network.Estimate(test)
	log.Printf("Test set: total=%d wrong=%d accuracy=%.4f", e.Total, e.Wrong, e.Accuracy)
	return nil
}

func loadConfig(path string, o config.Overrides) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("while loading config: %w", err)
		}
	}
	cfg.ApplyOverrides(o)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
