// Command mlp trains and evaluates feedforward classifiers.
//
// To train: `go run ./cmd/mlp train --config=mnist.yaml --save=mnist.gob`
//
// To evaluate: `go run ./cmd/mlp eval --config=mnist.yaml --model=mnist.gob`
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")

	subcommands.Register(&TrainCommand{}, "")
	subcommands.Register(&EvalCommand{}, "")
	subcommands.Register(&XORCommand{}, "examples")

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}
