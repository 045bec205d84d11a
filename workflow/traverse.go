// Copyright 2024 The dawgz authors
// SPDX-License-Identifier: MIT

package workflow

// Visit returns every job reachable from the given seeds, following
// dependency edges backward (job to its dependencies) or forward (job to
// its dependents). Each reachable job appears exactly once. The traversal
// is stack-based and its order is an implementation detail: callers must
// not rely on it.
func (g *Graph) Visit(backward bool, seeds ...*Job) []*Job {
	queue := append([]*Job(nil), seeds...)
	visited := make(map[ID]struct{})

	var reached []*Job
	for len(queue) > 0 {
		job := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		if _, ok := visited[job.id]; ok {
			continue
		}
		visited[job.id] = struct{}{}
		reached = append(reached, job)

		edges := g.dependents[job.id]
		if backward {
			edges = g.deps[job.id]
		}
		for _, e := range edges {
			queue = append(queue, g.jobs[e.id])
		}
	}
	return reached
}
