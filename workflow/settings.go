// Copyright 2024 The dawgz authors
// SPDX-License-Identifier: MIT

package workflow

// Settings is an insertion-ordered, string-keyed mapping of deployment
// directives. The core does not interpret them beyond pass-through:
// backends render them into submission records, preserving the order the
// keys were first set in.
type Settings struct {
	keys   []string
	values map[string]interface{}
}

// NewSettings creates a new empty settings mapping.
func NewSettings() *Settings {
	return &Settings{values: make(map[string]interface{})}
}

// Set records a value under the given key, keeping the position of the
// first insertion when the key is already present. It returns the settings
// so calls can be chained.
func (s *Settings) Set(key string, value interface{}) *Settings {
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
	return s
}

// Get returns the value recorded under the given key.
func (s *Settings) Get(key string) (interface{}, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.values[key]
	return v, ok
}

// Len returns how many keys are recorded.
func (s *Settings) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Each calls fn for every key/value pair in insertion order.
func (s *Settings) Each(fn func(key string, value interface{})) {
	if s == nil {
		return
	}
	for _, k := range s.keys {
		fn(k, s.values[k])
	}
}

// Merge returns a copy of the settings with the other settings layered on
// top: keys of the receiver keep their position, keys only present in
// other are appended in their own order.
func (s *Settings) Merge(other *Settings) *Settings {
	merged := s.clone()
	if merged == nil {
		merged = other.clone()
		if merged == nil {
			merged = NewSettings()
		}
		return merged
	}
	other.Each(func(k string, v interface{}) {
		merged.Set(k, v)
	})
	return merged
}

// clone returns a copy of the settings, nil for nil.
func (s *Settings) clone() *Settings {
	if s == nil {
		return nil
	}
	c := NewSettings()
	s.Each(func(k string, v interface{}) {
		c.Set(k, v)
	})
	return c
}
