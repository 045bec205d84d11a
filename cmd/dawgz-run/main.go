// Copyright 2024 The dawgz authors
// SPDX-License-Identifier: MIT

// dawgz-run executes one task descriptor against the default task
// registry. It is the payload command referenced by generated batch
// submission scripts; workflows with their own tasks typically build a
// dedicated binary calling runner.Main with their registry instead.
package main

import (
	"github.com/iSach/dawgz/runner"
	"github.com/iSach/dawgz/task"
)

func main() {
	runner.Main(task.Default)
}
