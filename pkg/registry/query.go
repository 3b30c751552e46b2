// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"github.com/knapsac/knapsac/pkg/dependency"
	"github.com/knapsac/knapsac/pkg/types"
)

// GetModule returns the standalone module with the given identifier.
func (r *Registry) GetModule(id types.Identifier) (*StandaloneModule, bool) {
	m, ok := r.Modules[id]
	return m, ok
}

// GetModuleBySource returns the standalone module registered for the given
// source path.
func (r *Registry) GetModuleBySource(sourcePath types.FilesystemPath) (*StandaloneModule, bool) {
	for _, m := range r.Modules {
		if m.SourcePath == sourcePath {
			return m, true
		}
	}
	return nil, false
}

// GetExecutable returns the executable registered for the source path.
func (r *Registry) GetExecutable(sourcePath types.FilesystemPath) (*Executable, bool) {
	e, ok := r.Executables[sourcePath]
	return e, ok
}

// GetPackage returns the package with the given identifier.
func (r *Registry) GetPackage(id types.Identifier) (*Package, bool) {
	p, ok := r.Packages[id]
	return p, ok
}

// GetPackageModule returns the module owned by the addressed package.
func (r *Registry) GetPackageModule(packageID, moduleID types.Identifier) (*PackageModule, bool) {
	p, ok := r.Packages[packageID]
	if !ok {
		return nil, false
	}
	return p.Module(moduleID)
}

// HasModule reports whether a standalone module with the identifier exists.
func (r *Registry) HasModule(id types.Identifier) bool {
	_, ok := r.Modules[id]
	return ok
}

// HasModuleSource reports whether a standalone module is registered for
// the source path.
func (r *Registry) HasModuleSource(sourcePath types.FilesystemPath) bool {
	_, ok := r.GetModuleBySource(sourcePath)
	return ok
}

// HasExecutableSource reports whether an executable is registered for the
// source path.
func (r *Registry) HasExecutableSource(sourcePath types.FilesystemPath) bool {
	_, ok := r.Executables[sourcePath]
	return ok
}

// HasPackage reports whether a package with the identifier exists.
func (r *Registry) HasPackage(id types.Identifier) bool {
	_, ok := r.Packages[id]
	return ok
}

// GetDependency returns the edge stored under depID by the addressed owner.
func (r *Registry) GetDependency(owner Unit, depID types.Identifier) (dependency.Dependency, bool) {
	set, err := r.dependencySet(owner)
	if err != nil {
		return dependency.Dependency{}, false
	}
	return set.Get(depID)
}

// HasDependency reports whether the addressed owner stores an edge under
// depID.
func (r *Registry) HasDependency(owner Unit, depID types.Identifier) bool {
	_, ok := r.GetDependency(owner, depID)
	return ok
}

// SearchModulesByID returns every package owning a module with the given
// identifier. Standalone identifiers are unique, but the same module
// identifier may recur across packages.
func (r *Registry) SearchModulesByID(id types.Identifier) []*Package {
	var found []*Package
	for _, p := range r.Packages {
		if p.HasModule(id) {
			found = append(found, p)
		}
	}
	return found
}

// modulesUnder returns the standalone modules whose source path lives
// under root.
func (r *Registry) modulesUnder(root types.FilesystemPath) []*StandaloneModule {
	var found []*StandaloneModule
	for _, m := range r.Modules {
		if m.SourcePath.IsUnder(root) {
			found = append(found, m)
		}
	}
	return found
}

// dependencySet resolves the addressed owner to its dependency set.
func (r *Registry) dependencySet(owner Unit) (DependencySet, error) {
	switch owner.Kind {
	case UnitExecutable:
		e, ok := r.Executables[owner.SourcePath]
		if !ok {
			return nil, ErrNoSuchExecutable
		}
		if e.Dependencies == nil {
			e.Dependencies = make(DependencySet)
		}
		return e.Dependencies, nil
	case UnitModule:
		m, ok := r.Modules[owner.ModuleID]
		if !ok {
			return nil, ErrNoSuchModule
		}
		if m.Dependencies == nil {
			m.Dependencies = make(DependencySet)
		}
		return m.Dependencies, nil
	case UnitPackageModule:
		p, ok := r.Packages[owner.PackageID]
		if !ok {
			return nil, ErrNoSuchPackage
		}
		m, ok := p.Module(owner.ModuleID)
		if !ok {
			return nil, ErrNoSuchPackageModule
		}
		if m.Dependencies == nil {
			m.Dependencies = make(DependencySet)
		}
		return m.Dependencies, nil
	default:
		return nil, ErrNoSuchModule
	}
}

// dependencyExists checks referential integrity for one edge. Stray edges
// are always valid: they point outside the registry, so there is nothing
// to resolve. Standalone edges must resolve to a registered module by
// source path; package edges must resolve to an existing package that owns
// the addressed module.
func (r *Registry) dependencyExists(dep dependency.Dependency) bool {
	switch dep.Kind {
	case dependency.KindStray:
		return true
	case dependency.KindStandalone:
		return r.HasModuleSource(dep.SourcePath)
	case dependency.KindPackage:
		p, ok := r.Packages[dep.PackageID]
		return ok && p.HasModule(dep.ModuleID)
	default:
		return false
	}
}
