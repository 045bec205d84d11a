// Copyright 2024 The dawgz authors
// SPDX-License-Identifier: MIT

// Package sched drives a workflow graph to completion. The Scheduler
// memoizes job submissions so each job resolves and executes at most once
// per run, however many dependents request it. What "execute" means is up
// to the Backend: the local backend runs tasks in-process on a bounded
// worker pool, the Slurm backend translates jobs into batch submissions.
package sched

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/iSach/dawgz/errors"
	"github.com/iSach/dawgz/workflow"
)

// Errors captured as job outcomes, or aborting the run for cycles.
const (
	// ErrCyclicGraph means the dependency graph has at least one cycle.
	// It aborts the whole run before any work starts.
	ErrCyclicGraph errors.Kind = "cyclic dependency graph"

	// ErrNeverSatisfied means a job's dependency condition cannot be met.
	ErrNeverSatisfied errors.Kind = "dependency never satisfied"

	// ErrJobFailed means the job's own work failed.
	ErrJobFailed errors.Kind = "job failed"

	// ErrJobNotFailed means a failure-status dependency succeeded.
	ErrJobNotFailed errors.Kind = "job did not fail as required"

	// ErrSubmission means the external submission mechanism itself failed.
	ErrSubmission errors.Kind = "job submission failed"
)

// Backend executes jobs whose dependencies the engine resolved.
type Backend interface {
	// Satisfy blocks until the job's dependency condition is met,
	// submitting dependencies through the scheduler as needed. A non-nil
	// error means the condition can never be met.
	Satisfy(ctx context.Context, s *Scheduler, job *workflow.Job) error

	// Exec runs or submits the job's work and returns its outcome.
	Exec(ctx context.Context, s *Scheduler, job *workflow.Job) (interface{}, error)
}

// Future is the pending outcome of a submitted job.
//
// Both a value and an error may end up recorded: a partially failed array
// job retains the per-index results next to the aggregate failure.
type Future struct {
	done  chan struct{}
	value interface{}
	err   error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Wait blocks until the outcome is recorded or the context is canceled.
func (f *Future) Wait(ctx context.Context) (interface{}, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-f.done:
		return f.value, f.err
	}
}

// Scheduler is the submission engine: it owns the per-run table of job
// submissions and orchestrates resolver and backend. It never mutates the
// graph.
type Scheduler struct {
	backend Backend
	subs    *onceMap[workflow.ID, *Future]

	mtx  sync.Mutex
	jobs map[workflow.ID]*workflow.Job
	tags map[workflow.ID]string
}

// New creates a scheduler bound to the given backend.
func New(backend Backend) *Scheduler {
	return &Scheduler{
		backend: backend,
		subs:    newOnceMap[workflow.ID, *Future](),
		jobs:    make(map[workflow.ID]*workflow.Job),
		tags:    make(map[workflow.ID]string),
	}
}

// Submit requests the job's resolution and execution and returns its
// pending outcome. The first call for a given job starts a single
// resolution task; concurrent and later calls observe the same handle,
// guaranteeing at most one execution attempt per job per run.
func (s *Scheduler) Submit(ctx context.Context, job *workflow.Job) *Future {
	fut, created := s.subs.GetOrInit(job.ID(), newFuture)
	if created {
		s.mtx.Lock()
		s.jobs[job.ID()] = job
		s.mtx.Unlock()
		go s.resolve(ctx, job, fut)
	}
	return fut
}

// resolve is the per-job resolution task: dependency resolution first,
// then execution, with the outcome recorded on the future.
func (s *Scheduler) resolve(ctx context.Context, job *workflow.Job, fut *Future) {
	defer close(fut.done)

	logger := log.With().
		Str("action", "sched.resolve()").
		Stringer("job", job).
		Logger()

	if job.Skipped() {
		logger.Debug().Msg("Job already satisfied, not executing.")
		return
	}

	if err := s.backend.Satisfy(ctx, s, job); err != nil {
		logger.Debug().Err(err).Msg("Dependency condition not met.")
		fut.err = err
		return
	}

	logger.Debug().Msg("Dependencies satisfied, executing.")
	fut.value, fut.err = s.backend.Exec(ctx, s, job)
}

// Wait submits every target and blocks until every recorded submission,
// transitively submitted dependencies included, has an outcome. Failures
// are captured per job, never raised.
func (s *Scheduler) Wait(ctx context.Context, targets ...*workflow.Job) Report {
	for _, job := range targets {
		s.Submit(ctx, job)
	}

	// Resolution tasks submit further jobs while we wait, so drain
	// until the submission table stops growing.
	waited := make(map[workflow.ID]struct{})
	report := newReport()
	for {
		pending := s.subs.Keys()
		stable := true
		for _, id := range pending {
			if _, ok := waited[id]; ok {
				continue
			}
			stable = false
			waited[id] = struct{}{}

			fut, _ := s.subs.Get(id)
			value, err := fut.Wait(ctx)

			s.mtx.Lock()
			job := s.jobs[id]
			s.mtx.Unlock()
			report.add(Result{Job: job, Value: value, Err: err})
		}
		if stable {
			break
		}
	}
	return report
}

// Tag returns a per-run, filename-safe label for the job, unique within
// the run.
func (s *Scheduler) Tag(job *workflow.Job) string {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if tag, ok := s.tags[job.ID()]; ok {
		return tag
	}
	tag := fmt.Sprintf("%s_%03d", slugify(job.Name()), len(s.tags))
	s.tags[job.ID()] = tag
	return tag
}

// slugify keeps only alphanumeric characters, replacing anything else
// with underscores.
func slugify(text string) string {
	out := []rune(text)
	for i, r := range out {
		if !isAlnum(r) {
			out[i] = '_'
		}
	}
	return string(out)
}

func isAlnum(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
}
