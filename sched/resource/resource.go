// Copyright 2024 The dawgz authors
// SPDX-License-Identifier: MIT

// Package resource provides the execution resources backends draw from:
// worker slots for in-process execution and submission rate caps for
// external batch systems.
package resource

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"
)

// R is the resource interface. Acquire blocks until a unit of the
// resource is available or the context is done, reporting which.
type R interface {
	Acquire(ctx context.Context) bool
	Release()
}

// Workers returns a resource of n concurrently holdable worker slots.
// It bounds how many task invocations run at once.
func Workers(n int) R {
	return &workers{sem: semaphore.NewWeighted(int64(n))}
}

type workers struct {
	sem *semaphore.Weighted
}

func (w *workers) Acquire(ctx context.Context) bool {
	return w.sem.Acquire(ctx, 1) == nil
}

func (w *workers) Release() {
	w.sem.Release(1)
}

// Rate returns a resource letting through the given number of
// acquisitions per second. Concurrent callers queue on the shared tick.
// Release is a no-op: the cap applies to acquisitions only.
func Rate(acquiresPerSecond int64) R {
	interval := time.Duration(float64(time.Second) / float64(acquiresPerSecond))
	return &rate{ticker: time.NewTicker(interval)}
}

type rate struct {
	ticker *time.Ticker
}

func (r *rate) Acquire(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-r.ticker.C:
		return true
	}
}

func (*rate) Release() {}
