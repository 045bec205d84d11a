// Copyright 2024 The dawgz authors
// SPDX-License-Identifier: MIT

package sched

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/iSach/dawgz/errors"
	"github.com/iSach/dawgz/sched/resource"
	"github.com/iSach/dawgz/task"
	"github.com/iSach/dawgz/workflow"
)

// LocalConfig configures the local backend.
type LocalConfig struct {
	// Workers bounds how many task invocations run at once.
	// Defaults to runtime.NumCPU().
	Workers int

	// Registry resolves task references. Defaults to task.Default.
	Registry *task.Registry
}

// Local executes jobs in-process on a bounded worker pool.
type Local struct {
	registry *task.Registry
	pool     resource.R
}

// NewLocal creates a local execution backend.
func NewLocal(cfg LocalConfig) *Local {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Registry == nil {
		cfg.Registry = task.Default
	}
	return &Local{
		registry: cfg.Registry,
		pool:     resource.Workers(cfg.Workers),
	}
}

// Satisfy resolves the job's dependency condition by racing the outcome of
// every dependency against its required status.
//
// Outcomes classify as they arrive: a failed dependency satisfies any edge
// not requiring success, a successful dependency violates an edge
// requiring failure. Under wait mode "all" the first violation fails the
// job immediately, abandoning in-flight dependencies; under "any" the
// first satisfaction wins, and the job fails only if every dependency
// classifies as violated.
func (b *Local) Satisfy(ctx context.Context, s *Scheduler, job *workflow.Job) error {
	deps := job.Dependencies()
	if len(deps) == 0 {
		return nil
	}

	type depOutcome struct {
		dep    *workflow.Job
		status workflow.Status
		err    error
	}
	outcomes := make(chan depOutcome, len(deps))
	for _, d := range deps {
		d := d
		go func() {
			_, err := s.Submit(ctx, d.Job).Wait(ctx)
			outcomes <- depOutcome{dep: d.Job, status: d.Status, err: err}
		}()
	}

	for range deps {
		o := <-outcomes

		var violation error
		switch {
		case o.err != nil && o.status != workflow.Success:
			// The failure was expected or acceptable.
		case o.err == nil && o.status == workflow.Failure:
			violation = errors.E(ErrJobNotFailed, o.dep.String())
		case o.err != nil:
			violation = o.err
		}

		if violation == nil {
			if job.Mode() == workflow.WaitAny {
				return nil
			}
			continue
		}
		if job.Mode() == workflow.WaitAll {
			if errors.IsKind(violation, ErrJobNotFailed) {
				return violation
			}
			return errors.E(ErrNeverSatisfied, job.String(), violation)
		}
	}

	if job.Mode() == workflow.WaitAny {
		return errors.E(ErrNeverSatisfied, job.String())
	}
	return nil
}

// Exec invokes the job's task on the worker pool: once for a plain job,
// once per index for an array job, all indices concurrently. For arrays
// the outcome is the slice of per-index results in index order; when some
// indices fail, the partial results are returned alongside the aggregate
// "job failed" error.
func (b *Local) Exec(ctx context.Context, s *Scheduler, job *workflow.Job) (interface{}, error) {
	logger := log.With().
		Str("action", "sched.Local.Exec()").
		Str("tag", s.Tag(job)).
		Stringer("job", job).
		Logger()

	ref := job.Task()
	fn, err := b.registry.Lookup(ref.Name)
	if err != nil {
		return nil, errors.E(ErrJobFailed, job.String(), err)
	}

	call := func(index int) (interface{}, error) {
		if !b.pool.Acquire(ctx) {
			return nil, ctx.Err()
		}
		defer b.pool.Release()

		v, err := fn(ctx, task.Invocation{Args: ref.Args, Index: index})
		if err != nil {
			return nil, err
		}
		if !job.Verify(index) {
			return nil, errors.E("job does not satisfy its postconditions")
		}
		return v, nil
	}

	if job.Array() == nil {
		logger.Debug().Msg("Running job on the worker pool.")
		v, err := call(task.NoIndex)
		if err != nil {
			return nil, errors.E(ErrJobFailed, job.String(), err)
		}
		return v, nil
	}

	indices := job.Array().Indices()
	logger.Debug().Int("indices", len(indices)).Msg("Running array job.")

	values := make([]interface{}, len(indices))
	fails := make([]error, len(indices))

	var wg sync.WaitGroup
	for k, i := range indices {
		k, i := k, i
		wg.Add(1)
		go func() {
			defer wg.Done()
			values[k], fails[k] = call(i)
		}()
	}
	wg.Wait()

	failed := errors.L()
	for k, err := range fails {
		if err != nil {
			failed.Append(errors.E(fmt.Sprintf("index %d", indices[k]), err))
		}
	}
	if err := failed.AsError(); err != nil {
		return values, errors.E(ErrJobFailed, job.String(), err)
	}
	return values, nil
}
