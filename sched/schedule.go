// Copyright 2024 The dawgz authors
// SPDX-License-Identifier: MIT

package sched

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/iSach/dawgz/errors"
	"github.com/iSach/dawgz/workflow"
)

// Options tune a Schedule call.
type Options struct {
	// Prune rewrites the graph before scheduling, dropping work whose
	// postconditions already hold.
	Prune bool

	// Quiet suppresses the aggregated error report logged at the end of
	// the run.
	Quiet bool
}

// Schedule drives the given target jobs to completion on the backend.
//
// The dependency graph must be acyclic: every cycle reachable from the
// targets is reported and the whole call aborts before any work starts.
// Individual job failures never abort the run; they are captured in the
// returned report, job by job, and logged as an aggregated report unless
// Options.Quiet is set.
func Schedule(
	ctx context.Context,
	backend Backend,
	opts Options,
	targets ...*workflow.Job,
) (Report, error) {
	logger := log.With().
		Str("action", "sched.Schedule()").
		Logger()

	if len(targets) == 0 {
		return newReport(), nil
	}

	graph := targets[0].Graph()
	if found := graph.Cycles(targets...); len(found) > 0 {
		errs := errors.L()
		for _, cycle := range found {
			names := make([]string, len(cycle))
			for i, job := range cycle {
				names[i] = job.String()
			}
			errs.Append(errors.E(ErrCyclicGraph, strings.Join(names, " <- ")))
		}
		return newReport(), errs.AsError()
	}

	jobs := targets
	if opts.Prune {
		jobs = graph.Prune(targets...)
		logger.Debug().
			Int("requested", len(targets)).
			Int("pending", len(jobs)).
			Msg("Graph pruned.")
	}

	s := New(backend)
	report := s.Wait(ctx, jobs...)

	if !opts.Quiet {
		if errs := report.Errs(); errs.Len() > 0 {
			logger.Warn().Msg("errors occurred while scheduling\n" + errs.Detailed())
		}
	}
	return report, nil
}
