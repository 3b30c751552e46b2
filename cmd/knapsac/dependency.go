// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/knapsac/knapsac/pkg/dependency"
	"github.com/knapsac/knapsac/pkg/registry"
	"github.com/knapsac/knapsac/pkg/types"
)

var (
	// Owner addressing flags, shared by add and remove.
	depOwnerModule     string
	depOwnerExecutable string
	depOwnerPackage    string
	depOwnerPackageMod string

	// Target flags: exactly one of stray, standalone or package.
	depStrayID       string
	depStrayArtifact string
	depStandalone    string
	depToPackage     string
	depToModule      string

	// dependencyCmd represents the dependency command group
	dependencyCmd = &cobra.Command{
		Use:   "dependency",
		Short: "Manage dependency edges",
		Long: `Manage dependency edges between build units.

An edge points at an untracked artifact (stray), a registered standalone
module, or a module owned by a package. The registry rejects edges that
would dangle or close a cycle.`,
	}

	// dependencyAddCmd adds an edge
	dependencyAddCmd = &cobra.Command{
		Use:   "add",
		Short: "Add a dependency edge",
		Args:  cobra.NoArgs,
		RunE:  runDependencyAdd,
	}

	// dependencyRemoveCmd removes an edge
	dependencyRemoveCmd = &cobra.Command{
		Use:   "remove",
		Short: "Remove a dependency edge",
		Args:  cobra.NoArgs,
		RunE:  runDependencyRemove,
	}
)

func init() {
	for _, c := range []*cobra.Command{dependencyAddCmd, dependencyRemoveCmd} {
		c.Flags().StringVar(&depOwnerModule, "module", "", "owner: standalone module identifier")
		c.Flags().StringVar(&depOwnerExecutable, "executable", "", "owner: executable source path")
		c.Flags().StringVar(&depOwnerPackage, "package", "", "owner: package identifier (with --package-module)")
		c.Flags().StringVar(&depOwnerPackageMod, "package-module", "", "owner: package module identifier")

		c.Flags().StringVar(&depStrayID, "stray", "", "target: identifier of an untracked artifact")
		c.Flags().StringVar(&depStrayArtifact, "artifact", "", "target: output location of the untracked artifact")
		c.Flags().StringVar(&depStandalone, "standalone", "", "target: source path of a registered module")
		c.Flags().StringVar(&depToPackage, "to-package", "", "target: package identifier (with --to-module)")
		c.Flags().StringVar(&depToModule, "to-module", "", "target: package module identifier")
	}

	dependencyCmd.AddCommand(dependencyAddCmd)
	dependencyCmd.AddCommand(dependencyRemoveCmd)
}

func runDependencyAdd(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}

	owner, err := ownerFromFlags()
	if err != nil {
		return err
	}
	depID, dep, err := targetFromFlags(reg)
	if err != nil {
		return err
	}

	if err := reg.AddDependency(owner, depID, dep); err != nil {
		return err
	}

	fmt.Printf("%s %s now depends on %s\n", SuccessStyle.Render("✓"), owner, dep)
	return nil
}

func runDependencyRemove(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}

	owner, err := ownerFromFlags()
	if err != nil {
		return err
	}
	depID, dep, err := targetFromFlags(reg)
	if err != nil {
		return err
	}

	if err := reg.RemoveDependency(owner, depID, dep); err != nil {
		return err
	}

	fmt.Printf("%s %s no longer depends on %s\n", SuccessStyle.Render("✓"), owner, dep)
	return nil
}

// ownerFromFlags resolves the owner addressing flags into a Unit.
func ownerFromFlags() (registry.Unit, error) {
	switch {
	case depOwnerModule != "" && depOwnerExecutable == "" && depOwnerPackage == "":
		return registry.ModuleUnit(types.Identifier(depOwnerModule)), nil
	case depOwnerExecutable != "" && depOwnerModule == "" && depOwnerPackage == "":
		return registry.ExecutableUnit(types.FilesystemPath(depOwnerExecutable)), nil
	case depOwnerPackage != "" && depOwnerPackageMod != "" && depOwnerModule == "" && depOwnerExecutable == "":
		return registry.PackageModuleUnit(types.Identifier(depOwnerPackage), types.Identifier(depOwnerPackageMod)), nil
	default:
		return registry.Unit{}, fmt.Errorf("specify exactly one owner: --module, --executable, or --package with --package-module")
	}
}

// targetFromFlags resolves the target flags into an edge and its key. The
// key is the target module's identifier for tracked targets, or the given
// identifier for stray ones.
func targetFromFlags(reg *registry.Registry) (types.Identifier, dependency.Dependency, error) {
	switch {
	case depStrayID != "" && depStandalone == "" && depToPackage == "":
		if depStrayArtifact == "" {
			return "", dependency.Dependency{}, fmt.Errorf("--stray requires --artifact")
		}
		id := types.Identifier(depStrayID)
		return id, dependency.NewStray(id, types.FilesystemPath(depStrayArtifact)), nil

	case depStandalone != "" && depStrayID == "" && depToPackage == "":
		module, ok := reg.GetModuleBySource(types.FilesystemPath(depStandalone))
		if !ok {
			return "", dependency.Dependency{}, fmt.Errorf("%q: %w", depStandalone, registry.ErrNoSuchDependency)
		}
		return module.Identifier, dependency.NewStandalone(module.SourcePath), nil

	case depToPackage != "" && depToModule != "" && depStrayID == "" && depStandalone == "":
		return types.Identifier(depToModule), dependency.NewPackage(types.Identifier(depToPackage), types.Identifier(depToModule)), nil

	default:
		return "", dependency.Dependency{}, fmt.Errorf("specify exactly one target: --stray with --artifact, --standalone, or --to-package with --to-module")
	}
}
