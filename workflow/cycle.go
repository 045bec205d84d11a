// Copyright 2024 The dawgz authors
// SPDX-License-Identifier: MIT

package workflow

// Cycles reports every dependency cycle reachable from the given seeds.
// Each cycle is an ordered slice of jobs from the first repeated job to
// its revisit, inclusive, readable as "a depends on b depends on ... a".
//
// The walk is a path-aware depth-first search over dependency edges: the
// current path is kept both as an ordered sequence and as a membership
// set, and revisiting a job already on the path closes one cycle.
func (g *Graph) Cycles(seeds ...*Job) [][]*Job {
	var found [][]*Job

	queue := [][]*Job{append([]*Job(nil), seeds...)}
	var path []*Job
	onPath := make(map[ID]int)
	visited := make(map[ID]struct{})

	for len(queue) > 0 {
		branch := queue[len(queue)-1]

		if len(branch) == 0 {
			if len(path) == 0 {
				break
			}
			queue = queue[:len(queue)-1]
			last := path[len(path)-1]
			path = path[:len(path)-1]
			delete(onPath, last.id)
			continue
		}

		job := branch[len(branch)-1]
		queue[len(queue)-1] = branch[:len(branch)-1]

		if _, ok := visited[job.id]; ok {
			if at, ok := onPath[job.id]; ok {
				cycle := append([]*Job(nil), path[at:]...)
				found = append(found, append(cycle, job))
			}
			continue
		}

		deps := g.deps[job.id]
		next := make([]*Job, len(deps))
		for i, e := range deps {
			next[i] = g.jobs[e.id]
		}
		queue = append(queue, next)
		onPath[job.id] = len(path)
		path = append(path, job)
		visited[job.id] = struct{}{}
	}
	return found
}
