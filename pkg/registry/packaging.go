// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/knapsac/knapsac/pkg/dependency"
	"github.com/knapsac/knapsac/pkg/types"
)

// Package promotes every standalone module rooted under rootPath into a
// new package. The promotion is a transaction: all pre-checks run before
// any state changes, and a failed check leaves the registry exactly as it
// was.
//
// The steps, in order:
//  1. the new identifier must not name an existing package;
//  2. no collected module may carry a standalone edge to a module outside
//     the root — such an edge would tie the package to machine-local state
//     it does not own. Standalone edges between collected modules are fine:
//     they are rewritten in step 5. Package and stray edges are fine too.
//  3. each collected module becomes a package module with a fresh output
//     location under the package root;
//  4. the output directories are created on disk — the first step with a
//     side effect, so a failure here rolls back the directories it made;
//  5. the original standalone entries are deleted;
//  6. every remaining standalone edge that pointed at a converted module
//     is rewritten to the matching package edge, so no stale reference to
//     a module that no longer exists as standalone survives;
//  7. the registry is persisted and the package manifest is written to the
//     package root.
func (r *Registry) Package(id types.Identifier, rootPath types.FilesystemPath, language Language) (*Package, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if r.HasPackage(id) {
		return nil, fmt.Errorf("%q: %w", id, ErrPackageAlreadyInRegistry)
	}

	collected := r.modulesUnder(rootPath)

	collectedSources := make(map[types.FilesystemPath]bool, len(collected))
	for _, m := range collected {
		collectedSources[m.SourcePath] = true
	}
	for _, m := range collected {
		for _, dep := range m.Dependencies {
			if dep.Kind == dependency.KindStandalone && !collectedSources[dep.SourcePath] {
				return nil, fmt.Errorf("module %q @ %q depends on %s: %w", m.Identifier, m.SourcePath, dep, ErrNonPackageDependencies)
			}
		}
	}

	pkg := NewPackage(id, rootPath, language)

	for _, m := range collected {
		relSource, err := m.SourcePath.Rel(rootPath)
		if err != nil {
			return nil, err
		}

		converted := &PackageModule{
			Identifier:     m.Identifier,
			OutputLocation: types.FilesystemPath(filepath.Join(string(m.Identifier), "output")),
			Dependencies:   m.Dependencies,
		}
		if converted.Dependencies == nil {
			converted.Dependencies = make(DependencySet)
		}
		if err := pkg.AddModule(relSource, converted); err != nil {
			return nil, err
		}
	}

	if err := createOutputLocations(pkg); err != nil {
		return nil, err
	}

	// Point of no return: every check passed, start mutating.
	for _, m := range collected {
		delete(r.Modules, m.Identifier)
	}
	r.Packages[id] = pkg

	r.rewriteStandaloneEdges(id, collected)

	if err := r.save(); err != nil {
		return nil, err
	}
	if err := WriteManifest(pkg); err != nil {
		return nil, err
	}
	return pkg, nil
}

// createOutputLocations creates the on-disk output directory of every
// module in the package. On failure it removes the directories it created,
// so a rejected promotion leaves no trace on disk. Only empty directories
// are removed, which keeps pre-existing user directories intact.
func createOutputLocations(pkg *Package) error {
	var created []string
	for _, entry := range pkg.Modules {
		dir := string(pkg.LocalLocation.Join(string(entry.Module.OutputLocation)))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			for _, d := range created {
				_ = os.Remove(d)
				_ = os.Remove(filepath.Dir(d))
			}
			return fmt.Errorf("creating output location for module %q: %w", entry.Module.Identifier, err)
		}
		created = append(created, dir)
	}
	return nil
}

// rewriteStandaloneEdges replaces every remaining standalone edge pointing
// at one of the converted modules with the package edge addressing its new
// home. Edges are keyed by the converted module's identifier, so the
// rewrite overwrites in place.
func (r *Registry) rewriteStandaloneEdges(packageID types.Identifier, converted []*StandaloneModule) {
	bySource := make(map[types.FilesystemPath]types.Identifier, len(converted))
	for _, m := range converted {
		bySource[m.SourcePath] = m.Identifier
	}

	rewrite := func(set DependencySet) {
		for id, dep := range set {
			if dep.Kind != dependency.KindStandalone {
				continue
			}
			moduleID, ok := bySource[dep.SourcePath]
			if !ok {
				continue
			}
			set[id] = dependency.NewPackage(packageID, moduleID)
		}
	}

	for _, m := range r.Modules {
		rewrite(m.Dependencies)
	}
	for _, e := range r.Executables {
		rewrite(e.Dependencies)
	}
	for _, p := range r.Packages {
		for _, entry := range p.Modules {
			rewrite(entry.Module.Dependencies)
		}
	}
}
