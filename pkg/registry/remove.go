// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"fmt"

	"github.com/knapsac/knapsac/pkg/dependency"
	"github.com/knapsac/knapsac/pkg/types"
)

// RemoveModule deletes a standalone module and cascades: every edge in any
// remaining unit that references the removed module is deleted too, so no
// dangling reference survives the removal.
func (r *Registry) RemoveModule(id types.Identifier) error {
	module, ok := r.Modules[id]
	if !ok {
		return fmt.Errorf("%q: %w", id, ErrNoSuchModule)
	}
	delete(r.Modules, id)
	r.cascadeRemoval(func(dep dependency.Dependency) bool {
		switch dep.Kind {
		case dependency.KindStandalone:
			return dep.SourcePath == module.SourcePath
		case dependency.KindStray:
			// A stray edge carrying the removed module's identity is a
			// leftover from before the module was registered.
			return dep.Identifier == id
		default:
			return false
		}
	})
	return r.save()
}

// RemoveExecutable deletes an executable. Executables are never dependency
// targets, so no cascade is needed for inbound edges; their own outgoing
// edges disappear with them.
func (r *Registry) RemoveExecutable(sourcePath types.FilesystemPath) error {
	if _, ok := r.Executables[sourcePath]; !ok {
		return fmt.Errorf("%q: %w", sourcePath, ErrNoSuchExecutable)
	}
	delete(r.Executables, sourcePath)
	return r.save()
}

// RemovePackage deletes a package and cascades removal of every edge that
// referenced any of its owned modules, across standalone modules,
// executables and every other package's modules.
func (r *Registry) RemovePackage(id types.Identifier) error {
	pkg, ok := r.Packages[id]
	if !ok {
		return fmt.Errorf("%q: %w", id, ErrNoSuchPackage)
	}
	delete(r.Packages, id)
	r.cascadeRemoval(func(dep dependency.Dependency) bool {
		return dep.Kind == dependency.KindPackage && dep.PackageID == pkg.Identifier
	})
	return r.save()
}

// RemoveItem deletes the addressed unit, dispatching on its kind.
func (r *Registry) RemoveItem(unit Unit) error {
	switch unit.Kind {
	case UnitExecutable:
		return r.RemoveExecutable(unit.SourcePath)
	case UnitModule:
		return r.RemoveModule(unit.ModuleID)
	case UnitPackageModule:
		return r.removePackageModule(unit.PackageID, unit.ModuleID)
	default:
		return fmt.Errorf("%s: %w", unit, ErrNoSuchModule)
	}
}

// RemoveDependency deletes the addressed owner's edge under depID, only if
// the stored edge equals dep. Removing an edge that has since changed is a
// no-op; removing from a missing owner is an error.
func (r *Registry) RemoveDependency(owner Unit, depID types.Identifier, dep dependency.Dependency) error {
	set, err := r.dependencySet(owner)
	if err != nil {
		return fmt.Errorf("dependency owner %s: %w", owner, err)
	}
	if !set.Remove(depID, dep) {
		return nil
	}
	return r.save()
}

// removePackageModule deletes one module owned by a package and cascades
// removal of edges referencing it.
func (r *Registry) removePackageModule(packageID, moduleID types.Identifier) error {
	pkg, ok := r.Packages[packageID]
	if !ok {
		return fmt.Errorf("%q: %w", packageID, ErrNoSuchPackage)
	}
	if !pkg.HasModule(moduleID) {
		return fmt.Errorf("%s/%s: %w", packageID, moduleID, ErrNoSuchPackageModule)
	}
	delete(pkg.Modules, moduleID)
	r.cascadeRemoval(func(dep dependency.Dependency) bool {
		return dep.Kind == dependency.KindPackage && dep.PackageID == packageID && dep.ModuleID == moduleID
	})
	return r.save()
}

// cascadeRemoval walks every dependency set in the registry and deletes
// the edges matching the predicate. This re-establishes referential
// integrity after a unit removal instead of rejecting the removal.
func (r *Registry) cascadeRemoval(matches func(dependency.Dependency) bool) {
	for _, m := range r.Modules {
		dropMatching(m.Dependencies, matches)
	}
	for _, e := range r.Executables {
		dropMatching(e.Dependencies, matches)
	}
	for _, p := range r.Packages {
		for _, entry := range p.Modules {
			dropMatching(entry.Module.Dependencies, matches)
		}
	}
}

func dropMatching(set DependencySet, matches func(dependency.Dependency) bool) {
	for id, dep := range set {
		if matches(dep) {
			delete(set, id)
		}
	}
}
