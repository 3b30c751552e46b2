// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/knapsac/knapsac/pkg/registry"
	"github.com/knapsac/knapsac/pkg/types"
)

var (
	// moduleAddSource is the module's source file path
	moduleAddSource string
	// moduleAddOutput is the module's output directory
	moduleAddOutput string

	// moduleCmd represents the module command group
	moduleCmd = &cobra.Command{
		Use:   "module",
		Short: "Manage standalone modules",
		Long: `Manage standalone modules in the registry.

A standalone module is a buildable unit identified by a unique name,
with a source file and an output directory for its build artifact.
Modules can depend on other modules; the registry keeps those edges
free of cycles and dangling references.`,
	}

	// moduleAddCmd registers a standalone module
	moduleAddCmd = &cobra.Command{
		Use:   "add <identifier>",
		Short: "Register a standalone module",
		Args:  cobra.ExactArgs(1),
		RunE:  runModuleAdd,
	}

	// moduleRemoveCmd removes a standalone module
	moduleRemoveCmd = &cobra.Command{
		Use:   "remove <identifier>",
		Short: "Remove a standalone module and every edge pointing at it",
		Args:  cobra.ExactArgs(1),
		RunE:  runModuleRemove,
	}

	// moduleListCmd lists registered standalone modules
	moduleListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered standalone modules",
		Args:  cobra.NoArgs,
		RunE:  runModuleList,
	}
)

func init() {
	moduleAddCmd.Flags().StringVar(&moduleAddSource, "source", "", "path to the module's source file (required)")
	moduleAddCmd.Flags().StringVar(&moduleAddOutput, "output", "", "absolute path to an existing output directory (required)")
	_ = moduleAddCmd.MarkFlagRequired("source")
	_ = moduleAddCmd.MarkFlagRequired("output")

	moduleCmd.AddCommand(moduleAddCmd)
	moduleCmd.AddCommand(moduleRemoveCmd)
	moduleCmd.AddCommand(moduleListCmd)
}

func runModuleAdd(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}

	module, err := registry.NewStandaloneModule(
		types.Identifier(args[0]),
		types.FilesystemPath(moduleAddSource),
		types.FilesystemPath(moduleAddOutput),
	)
	if err != nil {
		return err
	}
	if err := reg.AddModule(module); err != nil {
		return err
	}

	fmt.Printf("%s Registered module %s\n", SuccessStyle.Render("✓"), module.Identifier)
	return nil
}

func runModuleRemove(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}
	if err := reg.RemoveModule(types.Identifier(args[0])); err != nil {
		return err
	}

	fmt.Printf("%s Removed module %s\n", SuccessStyle.Render("✓"), args[0])
	return nil
}

func runModuleList(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(reg.Modules))
	for id := range reg.Modules {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)

	if len(ids) == 0 {
		fmt.Println(SubtitleStyle.Render("No modules registered."))
		return nil
	}
	for _, id := range ids {
		module := reg.Modules[types.Identifier(id)]
		fmt.Printf("%s\t%s -> %s\n", id, module.SourcePath, module.OutputLocation)
	}
	return nil
}
