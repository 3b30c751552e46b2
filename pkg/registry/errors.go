// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"errors"
	"fmt"

	"github.com/knapsac/knapsac/pkg/types"
)

var (
	// ErrModuleAlreadyInRegistry is returned when adding a standalone module
	// whose identifier is already taken.
	ErrModuleAlreadyInRegistry = errors.New("module already in registry")
	// ErrPackageAlreadyInRegistry is returned when creating a package whose
	// identifier is already taken.
	ErrPackageAlreadyInRegistry = errors.New("package already in registry")
	// ErrCyclicDependency is the sentinel error wrapped by CyclicDependencyError.
	ErrCyclicDependency = errors.New("cyclic dependency")
	// ErrNoSuchDependency is returned when a dependency edge does not resolve
	// to a registered unit.
	ErrNoSuchDependency = errors.New("no such dependency")
	// ErrNoSuchModule is returned when a standalone module lookup fails.
	ErrNoSuchModule = errors.New("no such module")
	// ErrNoSuchExecutable is returned when an executable lookup fails.
	ErrNoSuchExecutable = errors.New("no such executable")
	// ErrNoSuchPackage is returned when a package lookup fails.
	ErrNoSuchPackage = errors.New("no such package")
	// ErrNoSuchPackageModule is returned when a package does not own the
	// addressed module.
	ErrNoSuchPackageModule = errors.New("no such package module")
	// ErrNonPackageDependencies rejects a promotion while a collected module
	// still carries standalone or stray edges.
	ErrNonPackageDependencies = errors.New("module still depends on modules that are not package modules")
	// ErrNoRemoteLocation is returned when uploading a package that has no
	// remote location assigned and none was provided.
	ErrNoRemoteLocation = errors.New("package has no remote location")

	// ErrOutputLocationNotAbsolute rejects a module output location that is
	// not an absolute path.
	ErrOutputLocationNotAbsolute = errors.New("output location is not absolute")
	// ErrOutputLocationDoesNotExist rejects a module output location that
	// does not exist on disk.
	ErrOutputLocationDoesNotExist = errors.New("output location does not exist")
	// ErrOutputLocationNotADirectory rejects a module output location that
	// exists but is not a directory.
	ErrOutputLocationNotADirectory = errors.New("output location is not a directory")
	// ErrLocationNotRelative rejects a package module source path that is
	// not relative to its package root.
	ErrLocationNotRelative = errors.New("location is not relative")

	// ErrRegistryPathNotAbsolute rejects persisting to a relative path.
	ErrRegistryPathNotAbsolute = errors.New("registry path is not absolute")
	// ErrRegistryPathNotJSON rejects persisting to a non-JSON file.
	ErrRegistryPathNotJSON = errors.New("registry path does not point to a JSON file")
	// ErrRegistryPathNotFile rejects persisting to a path without a file name.
	ErrRegistryPathNotFile = errors.New("registry path does not point to a file")
	// ErrInvalidRegistry is returned when a present registry file cannot be
	// parsed. A missing file is not an error; a malformed one always is.
	ErrInvalidRegistry = errors.New("invalid registry")
)

type (
	// CyclicDependencyError reports the dependency chain that closes a cycle.
	// Chain runs from the requested target back to the owner.
	CyclicDependencyError struct {
		Owner types.Identifier
		Chain []types.Identifier
	}
)

// Error implements the error interface for CyclicDependencyError.
func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("adding dependency to %q would create a cycle: %s", e.Owner, joinChain(e.Chain))
}

// Unwrap returns ErrCyclicDependency for errors.Is() compatibility.
func (e *CyclicDependencyError) Unwrap() error { return ErrCyclicDependency }

func joinChain(chain []types.Identifier) string {
	out := ""
	for i, id := range chain {
		if i > 0 {
			out += " -> "
		}
		out += string(id)
	}
	return out
}
