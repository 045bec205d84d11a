// Copyright 2024 The dawgz authors
// SPDX-License-Identifier: MIT

package workflow

import (
	"fmt"
	"sort"
	"strings"
)

// IndexSet is the array spec of a job: a sorted set of integer indices,
// one logical unit of work per index.
type IndexSet struct {
	indices []int
}

// Count builds the index set [0, n).
func Count(n int) *IndexSet {
	return Span(0, n)
}

// Span builds the index set [lo, hi).
func Span(lo, hi int) *IndexSet {
	s := &IndexSet{}
	for i := lo; i < hi; i++ {
		s.indices = append(s.indices, i)
	}
	return s
}

// Indices builds an index set from explicit indices, deduplicated and
// sorted.
func Indices(indices ...int) *IndexSet {
	seen := make(map[int]struct{}, len(indices))
	s := &IndexSet{}
	for _, i := range indices {
		if _, ok := seen[i]; ok {
			continue
		}
		seen[i] = struct{}{}
		s.indices = append(s.indices, i)
	}
	sort.Ints(s.indices)
	return s
}

// Len returns how many indices are in the set.
func (s *IndexSet) Len() int {
	return len(s.indices)
}

// Has tells if the given index is in the set.
func (s *IndexSet) Has(i int) bool {
	n := sort.SearchInts(s.indices, i)
	return n < len(s.indices) && s.indices[n] == i
}

// Indices returns the sorted indices of the set.
func (s *IndexSet) Indices() []int {
	return append([]int(nil), s.indices...)
}

// String renders the set as a comma separated list of intervals, the
// format batch submissions take: "0-2,5".
func (s *IndexSet) String() string {
	if len(s.indices) == 0 {
		return ""
	}

	var intervals []string
	lo, hi := s.indices[0], s.indices[0]
	flush := func() {
		if lo == hi {
			intervals = append(intervals, fmt.Sprintf("%d", lo))
		} else {
			intervals = append(intervals, fmt.Sprintf("%d-%d", lo, hi))
		}
	}
	for _, i := range s.indices[1:] {
		if i > hi+1 {
			flush()
			lo = i
		}
		hi = i
	}
	flush()
	return strings.Join(intervals, ",")
}
