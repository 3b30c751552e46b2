// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"context"
	"fmt"

	"github.com/knapsac/knapsac/pkg/types"
	"github.com/knapsac/knapsac/pkg/version"
)

// VCS is the external version-control collaborator. The registry drives it
// during publish and upload; any step failure is fatal for the pipeline
// and nothing is rolled back — the repository's own state is the source of
// truth for partial progress.
type VCS interface {
	// Discover resolves the repository root containing path.
	Discover(path types.FilesystemPath) (types.FilesystemPath, error)
	// InitOrOpen opens the repository at path, initializing one if absent.
	InitOrOpen(path types.FilesystemPath) error
	// Clone clones url into dest.
	Clone(ctx context.Context, url string, dest types.FilesystemPath) error
	// Remotes lists the configured remote names of the repository at root.
	Remotes(root types.FilesystemPath) ([]string, error)
	// AddRemote configures a named remote on the repository at root.
	AddRemote(root types.FilesystemPath, name, url string) error
	// CommitAll stages every change in the worktree and commits it.
	CommitAll(root types.FilesystemPath, message string) error
	// Tag creates a lightweight tag at the current head.
	Tag(root types.FilesystemPath, name string) error
	// Push pushes the branch to the named remote.
	Push(ctx context.Context, root types.FilesystemPath, remote, branch string) error
}

// DefaultRemote is the remote name assigned on first upload.
const DefaultRemote = "origin"

// DefaultBranch is the branch pushed on upload.
const DefaultBranch = "master"

// Publish bumps the package version, persists the registry and the package
// manifest, then commits and tags the package repository.
//
// The pipeline is best-effort, not atomic: the version increment is
// persisted before the VCS steps run, so a git failure leaves the registry
// already showing the new version. Callers retry the publish; the version
// is bumped again, which is the original behavior.
func (r *Registry) Publish(ctx context.Context, id types.Identifier, increment version.Increment, vcs VCS) error {
	pkg, ok := r.Packages[id]
	if !ok {
		return fmt.Errorf("%q: %w", id, ErrNoSuchPackage)
	}

	if err := pkg.IncrementVersion(increment); err != nil {
		return err
	}
	if err := r.save(); err != nil {
		return err
	}
	if err := WriteManifest(pkg); err != nil {
		return err
	}

	if err := vcs.CommitAll(pkg.LocalLocation, fmt.Sprintf("updated to version: %s", pkg.Version)); err != nil {
		return fmt.Errorf("publishing package %q: %w", id, err)
	}
	if err := vcs.Tag(pkg.LocalLocation, pkg.Version.String()); err != nil {
		return fmt.Errorf("tagging package %q: %w", id, err)
	}
	return nil
}

// Upload pushes the package repository to its remote. When the package has
// no remote yet, remoteURL is assigned and configured as origin; when it
// already has one, remoteURL may be empty.
func (r *Registry) Upload(ctx context.Context, id types.Identifier, remoteURL string, vcs VCS) error {
	pkg, ok := r.Packages[id]
	if !ok {
		return fmt.Errorf("%q: %w", id, ErrNoSuchPackage)
	}

	if !pkg.IsRegistered() {
		if remoteURL == "" {
			return fmt.Errorf("%q: %w", id, ErrNoRemoteLocation)
		}
		pkg.RemoteLocation = remoteURL
		if err := r.save(); err != nil {
			return err
		}
		if err := WriteManifest(pkg); err != nil {
			return err
		}
	}

	remotes, err := vcs.Remotes(pkg.LocalLocation)
	if err != nil {
		return fmt.Errorf("uploading package %q: %w", id, err)
	}
	if !contains(remotes, DefaultRemote) {
		if err := vcs.AddRemote(pkg.LocalLocation, DefaultRemote, pkg.RemoteLocation); err != nil {
			return fmt.Errorf("uploading package %q: %w", id, err)
		}
	}

	if err := vcs.Push(ctx, pkg.LocalLocation, DefaultRemote, DefaultBranch); err != nil {
		return fmt.Errorf("uploading package %q: %w", id, err)
	}
	return nil
}

// Download clones a published package into dest and registers it. The
// cloned repository must carry a manifest; its identifier must be free.
func (r *Registry) Download(ctx context.Context, url string, dest types.FilesystemPath, vcs VCS) (*Package, error) {
	if err := vcs.Clone(ctx, url, dest); err != nil {
		return nil, fmt.Errorf("downloading package from %q: %w", url, err)
	}

	pkg, err := LoadManifest(dest)
	if err != nil {
		return nil, err
	}
	pkg.LocalLocation = dest
	if pkg.RemoteLocation == "" {
		pkg.RemoteLocation = url
	}

	if r.HasPackage(pkg.Identifier) {
		return nil, fmt.Errorf("%q: %w", pkg.Identifier, ErrPackageAlreadyInRegistry)
	}
	r.Packages[pkg.Identifier] = pkg
	if err := r.save(); err != nil {
		return nil, err
	}
	return pkg, nil
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
