// SPDX-License-Identifier: MPL-2.0

// Package main implements the knapsac CLI: a package manager for compiled
// modules that tracks build units and the dependency edges between them,
// delegating builds to an external compiler and distribution to git.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/knapsac/knapsac/internal/config"
	"github.com/knapsac/knapsac/pkg/registry"
	"github.com/knapsac/knapsac/pkg/types"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"

	// verbose enables debug logging
	verbose bool
	// registryPath allows specifying a custom registry file
	registryPath string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "knapsac",
		Short: "A package manager for compiled modules",
		Long: TitleStyle.Render("knapsac") + SubtitleStyle.Render(" - A package manager for compiled modules") + `

knapsac tracks buildable units (standalone modules, executables, and
package-owned modules) and the dependency edges between them. It keeps
the dependency graph consistent - unique identifiers, no dangling
references, no cycles - and delegates builds to an external compiler
and distribution to git.

` + SubtitleStyle.Render("Examples:") + `
  knapsac module add a --source /src/a.sac --output /tmp/a
  knapsac dependency add --module a --standalone /src/b.sac
  knapsac package create mypackage --root /src/mypackage --compiler cc
  knapsac package publish mypackage minor`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&registryPath, "registry", "", "registry file (default is $HOME/.knapsac/registry.json)")

	rootCmd.AddCommand(moduleCmd)
	rootCmd.AddCommand(executableCmd)
	rootCmd.AddCommand(dependencyCmd)
	rootCmd.AddCommand(packageCmd)
	rootCmd.AddCommand(registryCmd)
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(Version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

// initRootConfig wires the global flags into configuration and logging.
func initRootConfig() {
	if registryPath != "" {
		config.SetRegistryPathOverride(types.FilesystemPath(registryPath))
	}
	if verbose {
		log.SetLevel(log.DebugLevel)
	}
}

// openRegistry loads the registry through the configured store. A missing
// registry file yields an empty registry.
func openRegistry() (*registry.Registry, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.Verbose {
		log.SetLevel(log.DebugLevel)
	}
	store := registry.NewStore(cfg.RegistryPath)
	reg, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading registry: %w", err)
	}
	return reg, nil
}
