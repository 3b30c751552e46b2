// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/knapsac/knapsac/internal/config"
	"github.com/knapsac/knapsac/pkg/registry"
	"github.com/knapsac/knapsac/pkg/types"
)

var (
	// registryCmd represents the registry command group
	registryCmd = &cobra.Command{
		Use:   "registry",
		Short: "Inspect and initialize the registry",
	}

	// registryInitCmd writes an empty registry file
	registryInitCmd = &cobra.Command{
		Use:   "init",
		Short: "Write an empty registry file",
		Args:  cobra.NoArgs,
		RunE:  runRegistryInit,
	}

	// registryShowCmd prints the registry contents
	registryShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Show everything the registry tracks",
		Args:  cobra.NoArgs,
		RunE:  runRegistryShow,
	}
)

func init() {
	registryCmd.AddCommand(registryInitCmd)
	registryCmd.AddCommand(registryShowCmd)
}

func runRegistryInit(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store := registry.NewStore(cfg.RegistryPath)
	if _, err := store.Initialize(); err != nil {
		return err
	}

	fmt.Printf("%s initialized registry at %q\n", SuccessStyle.Render("✓"), cfg.RegistryPath)
	return nil
}

func runRegistryShow(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}

	if reg.IsEmpty() {
		fmt.Println(SubtitleStyle.Render("registry is empty"))
		return nil
	}

	if reg.CountModules() > 0 {
		fmt.Println(TitleStyle.Render("Modules"))
		for _, id := range sortedModuleIDs(reg) {
			m := reg.Modules[id]
			fmt.Printf("  %s @ %s (%d dependencies)\n", id, m.SourcePath, len(m.Dependencies))
		}
	}

	if reg.CountExecutables() > 0 {
		fmt.Println(TitleStyle.Render("Executables"))
		paths := make([]string, 0, reg.CountExecutables())
		for p := range reg.Executables {
			paths = append(paths, string(p))
		}
		sort.Strings(paths)
		for _, p := range paths {
			e := reg.Executables[types.FilesystemPath(p)]
			fmt.Printf("  %s (%d dependencies)\n", p, len(e.Dependencies))
		}
	}

	if reg.CountPackages() > 0 {
		fmt.Println(TitleStyle.Render("Packages"))
		ids := make([]string, 0, reg.CountPackages())
		for id := range reg.Packages {
			ids = append(ids, string(id))
		}
		sort.Strings(ids)
		for _, raw := range ids {
			pkg := reg.Packages[types.Identifier(raw)]
			fmt.Printf("  %s %s @ %s\n", raw, pkg.Version, pkg.LocalLocation)
			for _, mid := range sortedPackageModuleIDs(pkg) {
				entry := pkg.Modules[mid]
				fmt.Printf("    %s @ %s\n", mid, entry.SourcePath)
			}
		}
	}

	return nil
}

func sortedModuleIDs(reg *registry.Registry) []types.Identifier {
	ids := make([]types.Identifier, 0, len(reg.Modules))
	for id := range reg.Modules {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func sortedPackageModuleIDs(pkg *registry.Package) []types.Identifier {
	ids := make([]types.Identifier, 0, len(pkg.Modules))
	for id := range pkg.Modules {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
