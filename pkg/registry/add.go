// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"fmt"

	"github.com/knapsac/knapsac/pkg/dependency"
	"github.com/knapsac/knapsac/pkg/types"
)

// AddModule registers a standalone module. The identifier must be free in
// the registry's module namespace.
func (r *Registry) AddModule(module *StandaloneModule) error {
	if _, exists := r.Modules[module.Identifier]; exists {
		return fmt.Errorf("%q: %w", module.Identifier, ErrModuleAlreadyInRegistry)
	}
	r.Modules[module.Identifier] = module
	return r.save()
}

// AddExecutable registers an empty executable keyed by its source path.
// Re-adding an already registered path leaves the existing executable and
// its edges untouched.
func (r *Registry) AddExecutable(sourcePath types.FilesystemPath) error {
	if err := sourcePath.Validate(); err != nil {
		return err
	}
	if _, exists := r.Executables[sourcePath]; exists {
		return nil
	}
	r.Executables[sourcePath] = NewExecutable()
	return r.save()
}

// AddDependency records that the addressed owner depends on the unit the
// edge points at. Referential integrity and acyclicity are checked before
// any state changes; a rejected add leaves the registry untouched.
// Re-adding an identical edge is a no-op success.
//
// Package-owned modules may only reference other package modules or stray
// artifacts; a standalone edge would tie the package back to machine-local
// state, so it is rejected regardless of which entry point adds it.
func (r *Registry) AddDependency(owner Unit, depID types.Identifier, dep dependency.Dependency) error {
	if err := depID.Validate(); err != nil {
		return err
	}
	if err := dep.Validate(); err != nil {
		return err
	}
	if owner.Kind == UnitPackageModule && dep.Kind == dependency.KindStandalone {
		return fmt.Errorf("package module %s/%s cannot depend on %s: %w",
			owner.PackageID, owner.ModuleID, dep, ErrNonPackageDependencies)
	}

	set, err := r.dependencySet(owner)
	if err != nil {
		return fmt.Errorf("dependency owner %s: %w", owner, err)
	}

	if !r.dependencyExists(dep) {
		return fmt.Errorf("%s: %w", dep, ErrNoSuchDependency)
	}

	if err := r.checkAcyclic(owner, dep); err != nil {
		return err
	}

	if stored, ok := set.Get(depID); ok && stored.Equal(dep) {
		return nil
	}

	set.Add(depID, dep)
	return r.save()
}

// AddPackageModuleDependency adds an edge to a package-owned module,
// addressed by the package/module identifier pair.
func (r *Registry) AddPackageModuleDependency(packageID, moduleID, depID types.Identifier, dep dependency.Dependency) error {
	return r.AddDependency(PackageModuleUnit(packageID, moduleID), depID, dep)
}
