// Copyright 2024 The dawgz authors
// SPDX-License-Identifier: MIT

// Package runner is the payload-side entry of batch submissions. The
// generated submission scripts invoke a binary built on Main, which loads
// the JSON task descriptor written at submission time, resolves it against
// the task registry and runs it, passing the array index when there is
// one.
package runner

import (
	"context"
	"os"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/iSach/dawgz/task"
)

// CLI is the command line surface of the payload runner.
type CLI struct {
	Descriptor string `help:"Path of the task descriptor to run." required:"" type:"existingfile"`
	Index      int    `help:"Array index passed to the task." default:"-1"`
	LogLevel   string `help:"Log level (trace, debug, info, warn, error)." default:"warn" name:"log-level"`
}

// Main parses os.Args and runs the descriptor against the given registry,
// exiting non-zero on failure. Call it from a main() after registering
// the tasks the workflow references.
func Main(reg *task.Registry) {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("dawgz-run"),
		kong.Description("Runs one dawgz task descriptor."),
	)

	level, err := zerolog.ParseLevel(cli.LogLevel)
	if err != nil {
		kctx.FatalIfErrorf(err)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)

	kctx.FatalIfErrorf(Run(context.Background(), reg, cli.Descriptor, cli.Index))
}

// Run loads the descriptor at the given path and invokes its task.
func Run(ctx context.Context, reg *task.Registry, path string, index int) error {
	ref, err := task.Load(path)
	if err != nil {
		return err
	}

	fn, err := reg.Lookup(ref.Name)
	if err != nil {
		return err
	}

	log.Debug().
		Str("action", "runner.Run()").
		Str("task", ref.Name).
		Int("index", index).
		Msg("Invoking task.")

	_, err = fn(ctx, task.Invocation{Args: ref.Args, Index: index})
	return err
}
