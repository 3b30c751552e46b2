// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/knapsac/knapsac/pkg/types"
	"github.com/knapsac/knapsac/pkg/version"
)

// fakeVCS records the git operations driven by publish, upload and
// download. Any operation listed in fail returns an error.
type fakeVCS struct {
	commits []string
	tags    []string
	remotes map[string]string
	pushes  []string
	clones  []string

	fail map[string]error

	// writeManifestOnClone simulates a published repository carrying a
	// manifest sidecar.
	cloneManifest *Package
}

func newFakeVCS() *fakeVCS {
	return &fakeVCS{remotes: map[string]string{}, fail: map[string]error{}}
}

func (v *fakeVCS) Discover(path types.FilesystemPath) (types.FilesystemPath, error) {
	return path, v.fail["discover"]
}

func (v *fakeVCS) InitOrOpen(path types.FilesystemPath) error {
	return v.fail["init"]
}

func (v *fakeVCS) Clone(ctx context.Context, url string, dest types.FilesystemPath) error {
	if err := v.fail["clone"]; err != nil {
		return err
	}
	v.clones = append(v.clones, url)
	if v.cloneManifest != nil {
		pkg := *v.cloneManifest
		pkg.LocalLocation = dest
		if err := WriteManifest(&pkg); err != nil {
			return err
		}
	}
	return nil
}

func (v *fakeVCS) Remotes(root types.FilesystemPath) ([]string, error) {
	if err := v.fail["remotes"]; err != nil {
		return nil, err
	}
	names := make([]string, 0, len(v.remotes))
	for name := range v.remotes {
		names = append(names, name)
	}
	return names, nil
}

func (v *fakeVCS) AddRemote(root types.FilesystemPath, name, url string) error {
	if err := v.fail["add-remote"]; err != nil {
		return err
	}
	v.remotes[name] = url
	return nil
}

func (v *fakeVCS) CommitAll(root types.FilesystemPath, message string) error {
	if err := v.fail["commit"]; err != nil {
		return err
	}
	v.commits = append(v.commits, message)
	return nil
}

func (v *fakeVCS) Tag(root types.FilesystemPath, name string) error {
	if err := v.fail["tag"]; err != nil {
		return err
	}
	v.tags = append(v.tags, name)
	return nil
}

func (v *fakeVCS) Push(ctx context.Context, root types.FilesystemPath, remote, branch string) error {
	if err := v.fail["push"]; err != nil {
		return err
	}
	v.pushes = append(v.pushes, fmt.Sprintf("%s/%s", remote, branch))
	return nil
}

func newPublishablePackage(t *testing.T, reg *Registry, id types.Identifier) *Package {
	t.Helper()
	pkg := NewPackage(id, types.FilesystemPath(t.TempDir()), testLanguage)
	reg.Packages[id] = pkg
	return pkg
}

func TestPublish(t *testing.T) {
	t.Parallel()

	reg := NewInMemory()
	pkg := newPublishablePackage(t, reg, "p")
	vcs := newFakeVCS()

	if err := reg.Publish(context.Background(), "p", version.Minor, vcs); err != nil {
		t.Fatalf("Publish() returned unexpected error: %v", err)
	}

	if pkg.Version != version.SemVer(0, 1, 0) {
		t.Errorf("version after first publish = %s, want 0.1.0", pkg.Version)
	}
	if len(vcs.commits) != 1 || vcs.commits[0] != "updated to version: 0.1.0" {
		t.Errorf("commits = %v, want [updated to version: 0.1.0]", vcs.commits)
	}
	if len(vcs.tags) != 1 || vcs.tags[0] != "0.1.0" {
		t.Errorf("tags = %v, want [0.1.0]", vcs.tags)
	}

	// The manifest sidecar is written into the package root.
	loaded, err := LoadManifest(pkg.LocalLocation)
	if err != nil {
		t.Fatalf("LoadManifest() returned unexpected error: %v", err)
	}
	if loaded.Version != pkg.Version {
		t.Errorf("manifest version = %s, want %s", loaded.Version, pkg.Version)
	}
}

func TestPublish_VersionBumpSurvivesGitFailure(t *testing.T) {
	t.Parallel()

	reg := NewInMemory()
	pkg := newPublishablePackage(t, reg, "p")
	vcs := newFakeVCS()
	vcs.fail["commit"] = errors.New("worktree is locked")

	err := reg.Publish(context.Background(), "p", version.Major, vcs)
	if err == nil {
		t.Fatal("Publish() returned nil error despite failing commit")
	}
	// The bump is persisted before the git pipeline runs and is not
	// rolled back on failure.
	if pkg.Version != version.SemVer(1, 0, 0) {
		t.Errorf("version after failed publish = %s, want 1.0.0", pkg.Version)
	}
}

func TestPublish_MissingPackage(t *testing.T) {
	t.Parallel()

	reg := NewInMemory()
	err := reg.Publish(context.Background(), "ghost", version.Patch, newFakeVCS())
	if !errors.Is(err, ErrNoSuchPackage) {
		t.Errorf("Publish(missing) error = %v, want ErrNoSuchPackage", err)
	}
}

func TestUpload_AssignsRemoteOnFirstUpload(t *testing.T) {
	t.Parallel()

	reg := NewInMemory()
	pkg := newPublishablePackage(t, reg, "p")
	vcs := newFakeVCS()

	if err := reg.Upload(context.Background(), "p", "git@example.com:p.git", vcs); err != nil {
		t.Fatalf("Upload() returned unexpected error: %v", err)
	}

	if pkg.RemoteLocation != "git@example.com:p.git" {
		t.Errorf("remote location = %q, want the provided URL", pkg.RemoteLocation)
	}
	if vcs.remotes[DefaultRemote] != "git@example.com:p.git" {
		t.Errorf("origin remote = %q, want the provided URL", vcs.remotes[DefaultRemote])
	}
	if len(vcs.pushes) != 1 || vcs.pushes[0] != "origin/master" {
		t.Errorf("pushes = %v, want [origin/master]", vcs.pushes)
	}
}

func TestUpload_KeepsExistingRemote(t *testing.T) {
	t.Parallel()

	reg := NewInMemory()
	pkg := newPublishablePackage(t, reg, "p")
	pkg.RemoteLocation = "git@example.com:p.git"
	vcs := newFakeVCS()
	vcs.remotes[DefaultRemote] = "git@example.com:p.git"

	if err := reg.Upload(context.Background(), "p", "", vcs); err != nil {
		t.Fatalf("Upload() returned unexpected error: %v", err)
	}
	if len(vcs.pushes) != 1 {
		t.Errorf("pushes = %v, want exactly one", vcs.pushes)
	}
}

func TestUpload_NoRemoteLocation(t *testing.T) {
	t.Parallel()

	reg := NewInMemory()
	newPublishablePackage(t, reg, "p")

	err := reg.Upload(context.Background(), "p", "", newFakeVCS())
	if !errors.Is(err, ErrNoRemoteLocation) {
		t.Errorf("Upload(no remote) error = %v, want ErrNoRemoteLocation", err)
	}
}

func TestDownload(t *testing.T) {
	t.Parallel()

	reg := NewInMemory()
	vcs := newFakeVCS()
	vcs.cloneManifest = &Package{
		Identifier: "p",
		Version:    version.SemVer(2, 0, 0),
		Language:   testLanguage,
		Modules:    map[types.Identifier]*PackageEntry{"m": {SourcePath: "m.sac", Module: &PackageModule{Identifier: "m"}}},
	}

	dest := types.FilesystemPath(t.TempDir())
	pkg, err := reg.Download(context.Background(), "git@example.com:p.git", dest, vcs)
	if err != nil {
		t.Fatalf("Download() returned unexpected error: %v", err)
	}

	if !reg.HasPackage("p") {
		t.Fatal("downloaded package not registered")
	}
	if pkg.LocalLocation != dest {
		t.Errorf("local location = %q, want %q", pkg.LocalLocation, dest)
	}
	if pkg.RemoteLocation != "git@example.com:p.git" {
		t.Errorf("remote location = %q, want the clone URL", pkg.RemoteLocation)
	}
	if pkg.Version != version.SemVer(2, 0, 0) {
		t.Errorf("version = %s, want 2.0.0", pkg.Version)
	}
}

func TestDownload_NoManifest(t *testing.T) {
	t.Parallel()

	reg := NewInMemory()
	_, err := reg.Download(context.Background(), "git@example.com:p.git", types.FilesystemPath(t.TempDir()), newFakeVCS())
	if !errors.Is(err, ErrNoManifestFound) {
		t.Errorf("Download(no manifest) error = %v, want ErrNoManifestFound", err)
	}
}

func TestDownload_DuplicateIdentifier(t *testing.T) {
	t.Parallel()

	reg := NewInMemory()
	newPublishablePackage(t, reg, "p")

	vcs := newFakeVCS()
	vcs.cloneManifest = &Package{Identifier: "p", Language: testLanguage}

	_, err := reg.Download(context.Background(), "git@example.com:p.git", types.FilesystemPath(t.TempDir()), vcs)
	if !errors.Is(err, ErrPackageAlreadyInRegistry) {
		t.Errorf("Download(duplicate) error = %v, want ErrPackageAlreadyInRegistry", err)
	}
}
