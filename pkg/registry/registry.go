// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"github.com/knapsac/knapsac/pkg/types"
)

type (
	// Persister writes a registry snapshot to durable storage. Every public
	// mutation ends with one Persist call; there is no partial or batched
	// persistence. A nil persister (NewInMemory) keeps the registry purely
	// in memory, which is how the tests exercise the graph engine without
	// touching disk.
	Persister interface {
		Persist(r *Registry) error
	}

	// Registry is the dependency-graph engine: the single source of truth
	// for every build unit and every edge between them. All invariant
	// enforcement lives here; the entities themselves mutate blindly.
	//
	// Registry is not safe for concurrent use. The design is single-writer:
	// load, mutate, persist.
	Registry struct {
		Modules     map[types.Identifier]*StandaloneModule `json:"modules"`
		Executables map[types.FilesystemPath]*Executable   `json:"executables"`
		Packages    map[types.Identifier]*Package          `json:"packages"`

		persister Persister
	}
)

// New builds an empty registry that persists through the given Persister.
func New(p Persister) *Registry {
	r := NewInMemory()
	r.persister = p
	return r
}

// NewInMemory builds an empty registry with no persistence. Mutations
// succeed without ever touching disk.
func NewInMemory() *Registry {
	return &Registry{
		Modules:     make(map[types.Identifier]*StandaloneModule),
		Executables: make(map[types.FilesystemPath]*Executable),
		Packages:    make(map[types.Identifier]*Package),
	}
}

// SetPersister attaches a persister to a registry, typically one restored
// by Store.Load.
func (r *Registry) SetPersister(p Persister) { r.persister = p }

// save persists the full registry snapshot. Called at the end of every
// successful mutation, after all in-memory state changes are complete.
func (r *Registry) save() error {
	if r.persister == nil {
		return nil
	}
	return r.persister.Persist(r)
}

// normalize replaces nil maps left behind by JSON decoding of an empty or
// partial document, so that lookups and inserts never hit a nil map.
func (r *Registry) normalize() {
	if r.Modules == nil {
		r.Modules = make(map[types.Identifier]*StandaloneModule)
	}
	if r.Executables == nil {
		r.Executables = make(map[types.FilesystemPath]*Executable)
	}
	if r.Packages == nil {
		r.Packages = make(map[types.Identifier]*Package)
	}
}

// CountModules returns the number of standalone modules.
func (r *Registry) CountModules() int { return len(r.Modules) }

// CountExecutables returns the number of executables.
func (r *Registry) CountExecutables() int { return len(r.Executables) }

// CountPackages returns the number of packages.
func (r *Registry) CountPackages() int { return len(r.Packages) }

// IsEmpty reports whether the registry holds no units at all.
func (r *Registry) IsEmpty() bool {
	return len(r.Modules) == 0 && len(r.Executables) == 0 && len(r.Packages) == 0
}
