// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/knapsac/knapsac/pkg/types"
)

var (
	// executableCmd represents the executable command group
	executableCmd = &cobra.Command{
		Use:   "executable",
		Short: "Manage executables",
		Long: `Manage executables in the registry.

An executable is an anonymous build unit keyed by its source path. It
carries dependency edges like a module but can never be depended upon.`,
	}

	// executableAddCmd registers an executable
	executableAddCmd = &cobra.Command{
		Use:   "add <source-path>",
		Short: "Register an executable by source path",
		Args:  cobra.ExactArgs(1),
		RunE:  runExecutableAdd,
	}

	// executableRemoveCmd removes an executable
	executableRemoveCmd = &cobra.Command{
		Use:   "remove <source-path>",
		Short: "Remove an executable",
		Args:  cobra.ExactArgs(1),
		RunE:  runExecutableRemove,
	}
)

func init() {
	executableCmd.AddCommand(executableAddCmd)
	executableCmd.AddCommand(executableRemoveCmd)
}

func runExecutableAdd(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}
	if err := reg.AddExecutable(types.FilesystemPath(args[0])); err != nil {
		return err
	}

	fmt.Printf("%s Registered executable %s\n", SuccessStyle.Render("✓"), args[0])
	return nil
}

func runExecutableRemove(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}
	if err := reg.RemoveExecutable(types.FilesystemPath(args[0])); err != nil {
		return err
	}

	fmt.Printf("%s Removed executable %s\n", SuccessStyle.Render("✓"), args[0])
	return nil
}
