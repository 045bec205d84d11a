// Copyright 2024 The dawgz authors
// SPDX-License-Identifier: MIT

package workflow

import (
	"github.com/rs/zerolog/log"
)

// Prune rewrites the graph reachable backward from the given targets,
// removing work and edges already proven satisfied:
//
//   - a job whose postconditions hold is marked skipped and detached from
//     all of its own dependencies;
//   - an array job shrinks its spec to the indices still pending;
//   - dependencies already done in a way consistent with their edge status
//     are detached: all edges at once under wait mode "any" as soon as one
//     is satisfied, only the satisfied ones under "all".
//
// Failure edges are never considered satisfied by a done dependency, since
// they require the dependency to fail.
//
// It returns the subset of targets not fully done, the work left to
// schedule.
func (g *Graph) Prune(targets ...*Job) []*Job {
	logger := log.With().
		Str("action", "workflow.Prune()").
		Logger()

	for _, job := range g.Visit(true, targets...) {
		if job.Done() {
			logger.Debug().
				Stringer("job", job).
				Msg("Job already done, skipping it.")
			job.skip = true
			detachAll(job)
			continue
		}

		if job.array != nil {
			var pending []int
			for _, i := range job.array.Indices() {
				if !job.DoneIndex(i) {
					pending = append(pending, i)
				}
			}
			if len(pending) < job.array.Len() {
				logger.Debug().
					Stringer("job", job).
					Ints("pending", pending).
					Msg("Shrinking array spec to pending indices.")
				job.array = Indices(pending...)
			}
		}

		var satisfied []*Job
		for _, dep := range job.Dependencies() {
			if dep.Status != Failure && dep.Job.Done() {
				satisfied = append(satisfied, dep.Job)
			}
		}

		if job.wait == WaitAny && len(satisfied) > 0 {
			detachAll(job)
		} else if job.wait == WaitAll {
			job.Detach(satisfied...)
		}
	}

	var left []*Job
	for _, job := range targets {
		if !job.Done() {
			left = append(left, job)
		}
	}
	return left
}

func detachAll(job *Job) {
	for _, dep := range job.Dependencies() {
		job.Detach(dep.Job)
	}
}
