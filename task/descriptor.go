// Copyright 2024 The dawgz authors
// SPDX-License-Identifier: MIT

package task

import (
	"encoding/json"
	"os"

	"github.com/iSach/dawgz/errors"
)

// ErrDescriptor represents a failure loading or storing a task descriptor.
const ErrDescriptor errors.Kind = "invalid task descriptor"

// Ref identifies a registered task plus the arguments to invoke it with.
// It is the serializable work reference carried by jobs: batch submissions
// write it to disk and the payload runner loads it back.
type Ref struct {
	Name string   `json:"task"`
	Args []string `json:"args,omitempty"`
}

// Save writes the ref as a JSON descriptor at the given path.
func (r Ref) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.E(ErrDescriptor, r.Name, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.E(ErrDescriptor, r.Name, err)
	}
	return nil
}

// Load reads a JSON descriptor from the given path.
func Load(path string) (Ref, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Ref{}, errors.E(ErrDescriptor, err)
	}
	var r Ref
	if err := json.Unmarshal(data, &r); err != nil {
		return Ref{}, errors.E(ErrDescriptor, err)
	}
	if r.Name == "" {
		return Ref{}, errors.E(ErrDescriptor, "descriptor has no task name")
	}
	return r, nil
}
