// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/knapsac/knapsac/internal/compiler"
	"github.com/knapsac/knapsac/internal/gitops"
	"github.com/knapsac/knapsac/pkg/registry"
	"github.com/knapsac/knapsac/pkg/types"
	"github.com/knapsac/knapsac/pkg/version"
)

var (
	pkgCreateRoot     string
	pkgCreateCompiler string
	pkgCreateFlag     string
	pkgCreateBuild    bool

	pkgDownloadDest string

	// packageCmd represents the package command group
	packageCmd = &cobra.Command{
		Use:   "package",
		Short: "Manage packages",
		Long: `Manage packages.

A package bundles the standalone modules under a source tree into one
versioned, publishable unit. Creating a package rewrites every edge that
pointed at the promoted modules so the rest of the registry follows them
to their new home.`,
	}

	// packageCreateCmd promotes modules under a root into a package
	packageCreateCmd = &cobra.Command{
		Use:   "create <identifier>",
		Short: "Promote the modules under a source tree into a package",
		Args:  cobra.ExactArgs(1),
		RunE:  runPackageCreate,
	}

	// packageRemoveCmd removes a package
	packageRemoveCmd = &cobra.Command{
		Use:   "remove <identifier>",
		Short: "Remove a package and every edge pointing into it",
		Args:  cobra.ExactArgs(1),
		RunE:  runPackageRemove,
	}

	// packageListCmd lists registered packages
	packageListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered packages",
		Args:  cobra.NoArgs,
		RunE:  runPackageList,
	}

	// packagePublishCmd bumps, commits and tags
	packagePublishCmd = &cobra.Command{
		Use:   "publish <identifier> <major|minor|patch>",
		Short: "Increment a package version, then commit and tag the bump",
		Args:  cobra.ExactArgs(2),
		RunE:  runPackagePublish,
	}

	// packageUploadCmd pushes to a remote
	packageUploadCmd = &cobra.Command{
		Use:   "upload <identifier> [remote-url]",
		Short: "Push a package to its remote location",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runPackageUpload,
	}

	// packageDownloadCmd clones and registers a remote package
	packageDownloadCmd = &cobra.Command{
		Use:   "download <remote-url>",
		Short: "Clone a remote package and register it",
		Args:  cobra.ExactArgs(1),
		RunE:  runPackageDownload,
	}

	// packageBuildCmd compiles every module of a package
	packageBuildCmd = &cobra.Command{
		Use:   "build <identifier>",
		Short: "Compile every module of a package into its output location",
		Args:  cobra.ExactArgs(1),
		RunE:  runPackageBuild,
	}
)

func init() {
	packageCreateCmd.Flags().StringVar(&pkgCreateRoot, "root", "", "source tree holding the modules to promote (required)")
	packageCreateCmd.Flags().StringVar(&pkgCreateCompiler, "compiler", "", "compiler command for the package language (required)")
	packageCreateCmd.Flags().StringVar(&pkgCreateFlag, "output-option", "-o", "compiler flag selecting the output location")
	packageCreateCmd.Flags().BoolVar(&pkgCreateBuild, "build", false, "compile the promoted modules after creating the package")
	_ = packageCreateCmd.MarkFlagRequired("root")
	_ = packageCreateCmd.MarkFlagRequired("compiler")

	packageDownloadCmd.Flags().StringVar(&pkgDownloadDest, "dest", "", "directory to clone the package into (required)")
	_ = packageDownloadCmd.MarkFlagRequired("dest")

	packageCmd.AddCommand(packageCreateCmd)
	packageCmd.AddCommand(packageRemoveCmd)
	packageCmd.AddCommand(packageListCmd)
	packageCmd.AddCommand(packagePublishCmd)
	packageCmd.AddCommand(packageUploadCmd)
	packageCmd.AddCommand(packageDownloadCmd)
	packageCmd.AddCommand(packageBuildCmd)
}

func runPackageCreate(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}

	id := types.Identifier(args[0])
	root := types.FilesystemPath(pkgCreateRoot)
	language := registry.Language{
		CompilerCommand: pkgCreateCompiler,
		OutputOption:    pkgCreateFlag,
	}

	pkg, err := reg.Package(id, root, language)
	if err != nil {
		return err
	}

	if err := gitops.New().InitOrOpen(root); err != nil {
		return fmt.Errorf("initializing repository at %q: %w", root, err)
	}

	if pkgCreateBuild {
		if err := pkg.Build(cmd.Context(), root, compiler.New()); err != nil {
			return err
		}
	}

	fmt.Printf("%s created package %q with %d module(s)\n", SuccessStyle.Render("✓"), id, len(pkg.Modules))
	return nil
}

func runPackageRemove(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}

	id := types.Identifier(args[0])
	if err := reg.RemovePackage(id); err != nil {
		return err
	}

	fmt.Printf("%s removed package %q\n", SuccessStyle.Render("✓"), id)
	return nil
}

func runPackageList(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}

	if reg.CountPackages() == 0 {
		fmt.Println(SubtitleStyle.Render("no packages registered"))
		return nil
	}

	ids := make([]string, 0, reg.CountPackages())
	for id := range reg.Packages {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)

	fmt.Println(TitleStyle.Render("Packages"))
	for _, id := range ids {
		pkg := reg.Packages[types.Identifier(id)]
		fmt.Printf("  %s %s (%d module(s))\n", id, pkg.Version, len(pkg.Modules))
	}
	return nil
}

func runPackagePublish(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}

	id := types.Identifier(args[0])
	increment, err := version.ParseIncrement(args[1])
	if err != nil {
		return err
	}

	if err := reg.Publish(cmd.Context(), id, increment, gitops.New()); err != nil {
		return err
	}

	pkg, _ := reg.GetPackage(id)
	fmt.Printf("%s published %q at version %s\n", SuccessStyle.Render("✓"), id, pkg.Version)
	return nil
}

func runPackageUpload(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}

	id := types.Identifier(args[0])
	remoteURL := ""
	if len(args) == 2 {
		remoteURL = args[1]
	}

	if err := reg.Upload(cmd.Context(), id, remoteURL, gitops.New()); err != nil {
		return err
	}

	fmt.Printf("%s uploaded %q\n", SuccessStyle.Render("✓"), id)
	return nil
}

func runPackageDownload(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}

	pkg, err := reg.Download(cmd.Context(), args[0], types.FilesystemPath(pkgDownloadDest), gitops.New())
	if err != nil {
		return err
	}

	fmt.Printf("%s downloaded %q at version %s into %q\n", SuccessStyle.Render("✓"), pkg.Identifier, pkg.Version, pkgDownloadDest)
	return nil
}

func runPackageBuild(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}

	id := types.Identifier(args[0])
	pkg, ok := reg.GetPackage(id)
	if !ok {
		return fmt.Errorf("%q: %w", id, registry.ErrNoSuchPackage)
	}

	if err := pkg.Build(cmd.Context(), pkg.LocalLocation, compiler.New()); err != nil {
		return err
	}

	fmt.Printf("%s built %d module(s) of %q\n", SuccessStyle.Render("✓"), len(pkg.Modules), id)
	return nil
}
