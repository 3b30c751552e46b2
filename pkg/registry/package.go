// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"context"
	"fmt"
	"sort"

	"github.com/knapsac/knapsac/internal/dag"
	"github.com/knapsac/knapsac/pkg/dependency"
	"github.com/knapsac/knapsac/pkg/types"
	"github.com/knapsac/knapsac/pkg/version"
)

type (
	// Language holds the compiler configuration a package was created with.
	// The compiler itself is an external collaborator; the package only
	// records how to invoke it.
	Language struct {
		CompilerCommand string `json:"compiler_command"`
		OutputOption    string `json:"output_option"`
	}

	// PackageModule is a module owned by exactly one package, addressed as
	// (package identifier, module identifier). It has the same dependency
	// semantics as a standalone module, except that only package and stray
	// edges are permitted once it is owned.
	PackageModule struct {
		Identifier     types.Identifier     `json:"identifier"`
		OutputLocation types.FilesystemPath `json:"output_location"`
		Dependencies   DependencySet        `json:"dependencies"`
	}

	// PackageEntry pairs a package module with its source path relative to
	// the package root.
	PackageEntry struct {
		SourcePath types.FilesystemPath `json:"source_path"`
		Module     *PackageModule       `json:"module"`
	}

	// Package aggregates the modules promoted under one identifier together
	// with its version, compiler configuration and optional git remote.
	Package struct {
		Identifier     types.Identifier              `json:"identifier"`
		Version        version.Version               `json:"version"`
		Language       Language                      `json:"language"`
		LocalLocation  types.FilesystemPath          `json:"local_location"`
		RemoteLocation string                        `json:"remote_location,omitempty"`
		Modules        map[types.Identifier]*PackageEntry `json:"modules"`
	}
)

// Compiler is the external build collaborator. It is invoked once per
// module with the positional argument contract
// (source file, output flag, output path); a spawn failure or non-zero
// exit is a build failure, surfaced without retry.
type Compiler interface {
	Compile(ctx context.Context, command string, source, outputFlag, output string) error
}

// NewPackage builds an empty, unversioned package rooted at localLocation.
func NewPackage(id types.Identifier, localLocation types.FilesystemPath, language Language) *Package {
	return &Package{
		Identifier:    id,
		Version:       version.NotVersioned(),
		Language:      language,
		LocalLocation: localLocation,
		Modules:       make(map[types.Identifier]*PackageEntry),
	}
}

// AddDependency inserts or overwrites an edge unconditionally.
func (m *PackageModule) AddDependency(id types.Identifier, dep dependency.Dependency) {
	if m.Dependencies == nil {
		m.Dependencies = make(DependencySet)
	}
	m.Dependencies.Add(id, dep)
}

// GetDependency returns the edge stored under id.
func (m *PackageModule) GetDependency(id types.Identifier) (dependency.Dependency, bool) {
	return m.Dependencies.Get(id)
}

// HasDependency reports whether an edge is stored under id.
func (m *PackageModule) HasDependency(id types.Identifier) bool {
	return m.Dependencies.Has(id)
}

// RemoveDependency deletes the edge under id only if the stored edge
// equals dep.
func (m *PackageModule) RemoveDependency(id types.Identifier, dep dependency.Dependency) bool {
	return m.Dependencies.Remove(id, dep)
}

// AddModule records a module under its identifier together with its source
// path relative to the package root. The path must be relative; absolute
// paths would leak the machine the package was created on into the
// package's portable state.
func (p *Package) AddModule(relativeSourcePath types.FilesystemPath, module *PackageModule) error {
	if relativeSourcePath.IsAbs() {
		return fmt.Errorf("%q: %w", relativeSourcePath, ErrLocationNotRelative)
	}
	if p.Modules == nil {
		p.Modules = make(map[types.Identifier]*PackageEntry)
	}
	p.Modules[module.Identifier] = &PackageEntry{SourcePath: relativeSourcePath, Module: module}
	return nil
}

// Module returns the owned module with the given identifier.
func (p *Package) Module(id types.Identifier) (*PackageModule, bool) {
	entry, ok := p.Modules[id]
	if !ok {
		return nil, false
	}
	return entry.Module, true
}

// HasModule reports whether the package owns a module with the identifier.
func (p *Package) HasModule(id types.Identifier) bool {
	_, ok := p.Modules[id]
	return ok
}

// HasModuleSource reports whether the package owns a module whose source
// lives at the given absolute path under root. It fails when path is not
// under root.
func (p *Package) HasModuleSource(root, path types.FilesystemPath) (bool, error) {
	rel, err := path.Rel(root)
	if err != nil {
		return false, err
	}
	for _, entry := range p.Modules {
		if entry.SourcePath == rel {
			return true, nil
		}
	}
	return false, nil
}

// SearchModules returns every owned module matching the identifier,
// together with its relative source path. Identifiers are unique per
// package in the current shape; the slice return keeps compatibility with
// duplicate identifiers across source locations.
func (p *Package) SearchModules(id types.Identifier) []*PackageEntry {
	var found []*PackageEntry
	for moduleID, entry := range p.Modules {
		if moduleID == id {
			found = append(found, entry)
		}
	}
	return found
}

// IncrementVersion bumps the package version by the given kind.
func (p *Package) IncrementVersion(kind version.Increment) error {
	next, err := p.Version.Increment(kind)
	if err != nil {
		return err
	}
	p.Version = next
	return nil
}

// IsRegistered reports whether the package has a git remote assigned.
// A package without a remote is only known locally and cannot be uploaded
// until one is provided.
func (p *Package) IsRegistered() bool { return p.RemoteLocation != "" }

// Build compiles every owned module by invoking the compiler collaborator
// with the package's language configuration. Modules are compiled in
// dependency order, so a module's package-internal dependencies build
// before it. Source and output paths are resolved against root. The first
// failure aborts the build and is returned as-is.
func (p *Package) Build(ctx context.Context, root types.FilesystemPath, compiler Compiler) error {
	order, err := p.buildOrder()
	if err != nil {
		return err
	}
	for _, id := range order {
		entry := p.Modules[id]
		source := root.Join(string(entry.SourcePath))
		output := root.Join(string(entry.Module.OutputLocation))
		if err := compiler.Compile(ctx, p.Language.CompilerCommand, string(source), p.Language.OutputOption, string(output)); err != nil {
			return fmt.Errorf("building module %q: %w", id, err)
		}
	}
	return nil
}

// buildOrder topologically sorts the owned modules by their edges into
// this package. Edges into other packages or stray artifacts do not
// constrain the order. The registry keeps the graph acyclic, so a cycle
// here means the registry file was edited by hand.
func (p *Package) buildOrder() ([]types.Identifier, error) {
	ids := make([]string, 0, len(p.Modules))
	for id := range p.Modules {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)

	g := dag.New()
	for _, id := range ids {
		g.AddNode(id)
	}
	for _, id := range ids {
		entry := p.Modules[types.Identifier(id)]
		for _, dep := range entry.Module.Dependencies {
			if dep.Kind == dependency.KindPackage && dep.PackageID == p.Identifier && p.HasModule(dep.ModuleID) {
				g.AddEdge(string(dep.ModuleID), id)
			}
		}
	}

	sorted, err := g.TopologicalSort()
	if err != nil {
		return nil, fmt.Errorf("ordering modules of package %q: %w", p.Identifier, err)
	}
	order := make([]types.Identifier, len(sorted))
	for i, s := range sorted {
		order[i] = types.Identifier(s)
	}
	return order, nil
}
