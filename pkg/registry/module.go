// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"fmt"
	"os"

	"github.com/knapsac/knapsac/pkg/dependency"
	"github.com/knapsac/knapsac/pkg/types"
)

type (
	// DependencySet is the dependency map owned by every build unit, keyed
	// by the target's identifier. The set performs no cross-unit checks:
	// referential integrity and acyclicity are the registry's job, enforced
	// before any set mutation.
	DependencySet map[types.Identifier]dependency.Dependency

	// StandaloneModule is a registered module that is not owned by any
	// package. It is created once, mutated through its dependency edges,
	// and destroyed either by explicit removal or by promotion into a
	// package.
	StandaloneModule struct {
		Identifier     types.Identifier     `json:"identifier"`
		SourcePath     types.FilesystemPath `json:"source_path"`
		OutputLocation types.FilesystemPath `json:"output_location"`
		Dependencies   DependencySet        `json:"dependencies"`
	}

	// Executable is an anonymous build unit keyed externally by its source
	// path. It carries dependency edges like a module but is never itself
	// a dependency target.
	Executable struct {
		Dependencies DependencySet `json:"dependencies"`
	}
)

// Add inserts or overwrites an edge.
func (s DependencySet) Add(id types.Identifier, dep dependency.Dependency) {
	s[id] = dep
}

// Get returns the edge stored under id.
func (s DependencySet) Get(id types.Identifier) (dependency.Dependency, bool) {
	dep, ok := s[id]
	return dep, ok
}

// Has reports whether an edge is stored under id.
func (s DependencySet) Has(id types.Identifier) bool {
	_, ok := s[id]
	return ok
}

// Remove deletes the edge under id only if the stored edge equals dep.
// This defends against stale removal requests that reference an edge that
// has since been replaced.
func (s DependencySet) Remove(id types.Identifier, dep dependency.Dependency) bool {
	stored, ok := s[id]
	if !ok || !stored.Equal(dep) {
		return false
	}
	delete(s, id)
	return true
}

// HasOnlyPackageReferences reports whether every edge in the set is a
// package reference.
func (s DependencySet) HasOnlyPackageReferences() bool {
	for _, dep := range s {
		if !dep.IsPackageReference() {
			return false
		}
	}
	return true
}

// NewStandaloneModule validates the output location and builds a module.
// The output location must be an absolute path to an existing directory.
func NewStandaloneModule(id types.Identifier, sourcePath, outputLocation types.FilesystemPath) (*StandaloneModule, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if err := sourcePath.Validate(); err != nil {
		return nil, err
	}
	if !outputLocation.IsAbs() {
		return nil, fmt.Errorf("%q: %w", outputLocation, ErrOutputLocationNotAbsolute)
	}
	info, err := os.Stat(string(outputLocation))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%q: %w", outputLocation, ErrOutputLocationDoesNotExist)
		}
		return nil, fmt.Errorf("checking output location %q: %w", outputLocation, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%q: %w", outputLocation, ErrOutputLocationNotADirectory)
	}

	return &StandaloneModule{
		Identifier:     id,
		SourcePath:     sourcePath,
		OutputLocation: outputLocation,
		Dependencies:   make(DependencySet),
	}, nil
}

// AddDependency inserts or overwrites an edge unconditionally. The registry
// validates referential integrity and acyclicity before calling this.
func (m *StandaloneModule) AddDependency(id types.Identifier, dep dependency.Dependency) {
	if m.Dependencies == nil {
		m.Dependencies = make(DependencySet)
	}
	m.Dependencies.Add(id, dep)
}

// GetDependency returns the edge stored under id.
func (m *StandaloneModule) GetDependency(id types.Identifier) (dependency.Dependency, bool) {
	return m.Dependencies.Get(id)
}

// HasDependency reports whether an edge is stored under id.
func (m *StandaloneModule) HasDependency(id types.Identifier) bool {
	return m.Dependencies.Has(id)
}

// RemoveDependency deletes the edge under id only if the stored edge
// equals dep.
func (m *StandaloneModule) RemoveDependency(id types.Identifier, dep dependency.Dependency) bool {
	return m.Dependencies.Remove(id, dep)
}

// NewExecutable builds an executable with an empty dependency set.
func NewExecutable() *Executable {
	return &Executable{Dependencies: make(DependencySet)}
}

// AddDependency inserts or overwrites an edge unconditionally.
func (e *Executable) AddDependency(id types.Identifier, dep dependency.Dependency) {
	if e.Dependencies == nil {
		e.Dependencies = make(DependencySet)
	}
	e.Dependencies.Add(id, dep)
}

// GetDependency returns the edge stored under id.
func (e *Executable) GetDependency(id types.Identifier) (dependency.Dependency, bool) {
	return e.Dependencies.Get(id)
}

// HasDependency reports whether an edge is stored under id.
func (e *Executable) HasDependency(id types.Identifier) bool {
	return e.Dependencies.Has(id)
}

// RemoveDependency deletes the edge under id only if the stored edge
// equals dep.
func (e *Executable) RemoveDependency(id types.Identifier, dep dependency.Dependency) bool {
	return e.Dependencies.Remove(id, dep)
}
