// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"fmt"

	"github.com/knapsac/knapsac/pkg/types"
)

type (
	// UnitKind discriminates the three addressable build unit kinds.
	UnitKind string

	// Unit addresses a build unit in the registry. Executables are addressed
	// by source path, standalone modules by identifier, and package modules
	// by the package/module identifier pair. Unit is how callers name the
	// owner of a dependency edge and the subject of a removal.
	Unit struct {
		Kind UnitKind

		// SourcePath addresses an executable.
		SourcePath types.FilesystemPath

		// ModuleID addresses a standalone module, or together with
		// PackageID a module owned by a package.
		ModuleID  types.Identifier
		PackageID types.Identifier
	}
)

const (
	// UnitExecutable addresses an executable by source path.
	UnitExecutable UnitKind = "executable"
	// UnitModule addresses a standalone module by identifier.
	UnitModule UnitKind = "module"
	// UnitPackageModule addresses a module owned by a package.
	UnitPackageModule UnitKind = "package_module"
)

// ExecutableUnit addresses an executable by its source path.
func ExecutableUnit(sourcePath types.FilesystemPath) Unit {
	return Unit{Kind: UnitExecutable, SourcePath: sourcePath}
}

// ModuleUnit addresses a standalone module by identifier.
func ModuleUnit(id types.Identifier) Unit {
	return Unit{Kind: UnitModule, ModuleID: id}
}

// PackageModuleUnit addresses a module owned by a package.
func PackageModuleUnit(packageID, moduleID types.Identifier) Unit {
	return Unit{Kind: UnitPackageModule, PackageID: packageID, ModuleID: moduleID}
}

// String renders the unit address for error messages.
func (u Unit) String() string {
	switch u.Kind {
	case UnitExecutable:
		return fmt.Sprintf("executable(%s)", u.SourcePath)
	case UnitModule:
		return fmt.Sprintf("module(%s)", u.ModuleID)
	case UnitPackageModule:
		return fmt.Sprintf("package_module(%s/%s)", u.PackageID, u.ModuleID)
	default:
		return fmt.Sprintf("unit(%s)", u.Kind)
	}
}
