// SPDX-License-Identifier: MPL-2.0

// Package dependency defines the edge type of the registry's dependency
// graph. An edge points at an untracked build artifact (stray), at a
// registered standalone module, or at a module owned by a package. The
// three kinds form a closed sum: every consumer switches exhaustively on
// Kind so that adding a fourth kind is a compile-visible change.
package dependency

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/knapsac/knapsac/pkg/types"
)

// ErrUnknownDependencyKind is returned when a serialized dependency carries
// a kind outside the closed set.
var ErrUnknownDependencyKind = errors.New("unknown dependency kind")

type (
	// Kind discriminates the dependency variants.
	Kind string

	// Dependency is a directed reference from one build unit to another.
	// Exactly the fields belonging to the Kind are populated; the rest are
	// zero. Values are compared with Equal, which compares every field, so
	// two edges of different kinds are never equal.
	Dependency struct {
		Kind Kind `json:"kind"`

		// Identifier and OutputLocation describe a stray artifact outside
		// the registry. Stray edges are always considered valid: there is
		// nothing registered to check them against.
		Identifier     types.Identifier     `json:"identifier,omitempty"`
		OutputLocation types.FilesystemPath `json:"output_location,omitempty"`

		// SourcePath resolves a standalone edge to a registered module.
		SourcePath types.FilesystemPath `json:"source_path,omitempty"`

		// PackageID and ModuleID address a module owned by a package.
		PackageID types.Identifier `json:"package_id,omitempty"`
		ModuleID  types.Identifier `json:"module_id,omitempty"`
	}
)

const (
	// KindStray is an untracked reference to an artifact outside the registry.
	KindStray Kind = "stray"
	// KindStandalone is a reference to a registered standalone module.
	KindStandalone Kind = "standalone"
	// KindPackage is a reference to a module owned by a package.
	KindPackage Kind = "package"
)

// NewStray builds an edge to an untracked artifact.
func NewStray(identifier types.Identifier, outputLocation types.FilesystemPath) Dependency {
	return Dependency{Kind: KindStray, Identifier: identifier, OutputLocation: outputLocation}
}

// NewStandalone builds an edge to a registered standalone module,
// addressed by its source path.
func NewStandalone(sourcePath types.FilesystemPath) Dependency {
	return Dependency{Kind: KindStandalone, SourcePath: sourcePath}
}

// NewPackage builds an edge to a module owned by a package.
func NewPackage(packageID, moduleID types.Identifier) Dependency {
	return Dependency{Kind: KindPackage, PackageID: packageID, ModuleID: moduleID}
}

// IsPackageReference reports whether the edge points into a package.
// Package-owned modules may only carry package or stray edges, and this is
// the gate the registry uses to enforce that.
func (d Dependency) IsPackageReference() bool { return d.Kind == KindPackage }

// Equal reports whether two edges are identical in kind and payload.
func (d Dependency) Equal(other Dependency) bool { return d == other }

// Validate checks that the populated fields match the Kind.
func (d Dependency) Validate() error {
	switch d.Kind {
	case KindStray:
		if err := d.Identifier.Validate(); err != nil {
			return fmt.Errorf("stray dependency: %w", err)
		}
		if err := d.OutputLocation.Validate(); err != nil {
			return fmt.Errorf("stray dependency: %w", err)
		}
	case KindStandalone:
		if err := d.SourcePath.Validate(); err != nil {
			return fmt.Errorf("standalone dependency: %w", err)
		}
	case KindPackage:
		if err := d.PackageID.Validate(); err != nil {
			return fmt.Errorf("package dependency: %w", err)
		}
		if err := d.ModuleID.Validate(); err != nil {
			return fmt.Errorf("package dependency: %w", err)
		}
	default:
		return fmt.Errorf("%q: %w", d.Kind, ErrUnknownDependencyKind)
	}
	return nil
}

// String renders the edge for log and error messages.
func (d Dependency) String() string {
	switch d.Kind {
	case KindStray:
		return fmt.Sprintf("stray(%s @ %s)", d.Identifier, d.OutputLocation)
	case KindStandalone:
		return fmt.Sprintf("standalone(%s)", d.SourcePath)
	case KindPackage:
		return fmt.Sprintf("package(%s/%s)", d.PackageID, d.ModuleID)
	default:
		return fmt.Sprintf("unknown(%s)", d.Kind)
	}
}

// UnmarshalJSON decodes an edge and rejects unknown kinds. A registry file
// containing an unrecognized kind is malformed, never silently recovered.
func (d *Dependency) UnmarshalJSON(data []byte) error {
	type raw Dependency
	var decoded raw
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("decoding dependency: %w", err)
	}
	dep := Dependency(decoded)
	if err := dep.Validate(); err != nil {
		return err
	}
	*d = dep
	return nil
}
