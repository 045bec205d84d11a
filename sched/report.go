// Copyright 2024 The dawgz authors
// SPDX-License-Identifier: MIT

package sched

import (
	"github.com/iSach/dawgz/errors"
	"github.com/iSach/dawgz/workflow"
)

// Result is the recorded outcome of one job: a value, an error, or both
// for partially failed array jobs.
type Result struct {
	Job   *workflow.Job
	Value interface{}
	Err   error
}

// Report collects the outcome of every job submitted during a run, keyed
// by job identity.
type Report struct {
	order   []workflow.ID
	results map[workflow.ID]Result
}

func newReport() Report {
	return Report{results: make(map[workflow.ID]Result)}
}

func (r *Report) add(res Result) {
	id := res.Job.ID()
	if _, ok := r.results[id]; !ok {
		r.order = append(r.order, id)
	}
	r.results[id] = res
}

// Len returns how many jobs have a recorded outcome.
func (r Report) Len() int {
	return len(r.results)
}

// Result returns the outcome recorded for the given job.
func (r Report) Result(job *workflow.Job) (Result, bool) {
	res, ok := r.results[job.ID()]
	return res, ok
}

// Each calls fn for every recorded outcome, in submission order.
func (r Report) Each(fn func(Result)) {
	for _, id := range r.order {
		fn(r.results[id])
	}
}

// Errs returns the failures of the run aggregated into an error list, one
// entry per failed job, in submission order.
func (r Report) Errs() *errors.List {
	errs := errors.L()
	r.Each(func(res Result) {
		errs.Append(res.Err)
	})
	return errs
}
