// Copyright 2024 The dawgz authors
// SPDX-License-Identifier: MIT

package runner_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/madlambda/spells/assert"

	"github.com/iSach/dawgz/errors"
	"github.com/iSach/dawgz/runner"
	"github.com/iSach/dawgz/task"
)

func TestRunInvokesDescriptor(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "train.json")
	ref := task.Ref{Name: "train", Args: []string{"--seed=7"}}
	assert.NoError(t, ref.Save(path))

	var got task.Invocation
	reg := task.NewRegistry()
	assert.NoError(t, reg.Register("train", func(
		_ context.Context, inv task.Invocation,
	) (interface{}, error) {
		got = inv
		return nil, nil
	}))

	assert.NoError(t, runner.Run(context.Background(), reg, path, 3))
	assert.EqualInts(t, 3, got.Index)
	assert.EqualInts(t, 1, len(got.Args))
	assert.EqualStrings(t, "--seed=7", got.Args[0])
}

func TestRunUnknownTask(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ghost.json")
	assert.NoError(t, task.Ref{Name: "ghost"}.Save(path))

	err := runner.Run(context.Background(), task.NewRegistry(), path, task.NoIndex)
	errors.AssertIsKind(t, err, task.ErrNotRegistered)
}

func TestRunMissingDescriptor(t *testing.T) {
	t.Parallel()

	err := runner.Run(
		context.Background(),
		task.NewRegistry(),
		filepath.Join(t.TempDir(), "missing.json"),
		task.NoIndex,
	)
	errors.AssertIsKind(t, err, task.ErrDescriptor)
}
