package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/FlavioCFOliveira/GoMLP/internal/config"
	"github.com/FlavioCFOliveira/GoMLP/internal/net"
	"github.com/google/subcommands"
)

type EvalCommand struct {
	configFile string
	modelFile  string
}

var _ subcommands.Command = (*EvalCommand)(nil)

func (*EvalCommand) Name() string {
	return "eval"
}

func (*EvalCommand) Synopsis() string {
	return "Estimate the accuracy of a saved network"
}

func (*EvalCommand) Usage() string {
	return `eval --model=net.gob [--config=run.yaml]:
  Load a network written by train --save and estimate its accuracy on the
  configured test set.
`
}

func (c *EvalCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configFile, "config", "", "Path to a YAML run configuration (defaults to the MNIST run)")
	f.StringVar(&c.modelFile, "model", "", "Path to a saved network")
}

func (c *EvalCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.modelFile == "" {
		log.Printf("Error: --model is required")
		return subcommands.ExitUsageError
	}
	if err := c.executeErr(ctx); err != nil {
		log.Printf("Error: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *EvalCommand) executeErr(ctx context.Context) error {
	cfg, err := loadConfig(c.configFile, config.Overrides{})
	if err != nil {
		return err
	}
	if cfg.Test.Format == "" {
		return fmt.Errorf("config has no test set")
	}

	network, err := net.Load(c.modelFile)
	if err != nil {
		return fmt.Errorf("while loading network: %w", err)
	}

	scale, err := trainingScale(cfg)
	if err != nil {
		return err
	}
	test, _, err := loadSource(cfg.Test, scale)
	if err != nil {
		return fmt.Errorf("while loading test set: %w", err)
	}
	if err := checkDims(test, network.Sizes()); err != nil {
		return fmt.Errorf("test set: %w", err)
	}

	e := network.Estimate(test)
	log.Printf("Test set: total=%d wrong=%d accuracy=%.4f", e.Total, e.Wrong, e.Accuracy)
	return nil
}
