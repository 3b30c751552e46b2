// SPDX-License-Identifier: MPL-2.0

// Package gitops implements the version-control collaborator on top of
// go-git. The registry drives it during publish, upload and download; this
// package never inspects or mutates registry state.
package gitops

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"github.com/knapsac/knapsac/pkg/types"
)

var (
	// ErrBareRepository is returned when a discovered repository has no
	// worktree to operate on.
	ErrBareRepository = errors.New("bare repository")
	// ErrRepositoryNotFound is returned when no repository contains the
	// given path.
	ErrRepositoryNotFound = errors.New("no repository found")
)

// Client performs git operations for the registry. The zero value is not
// usable; construct one with New so authentication is configured.
type Client struct {
	auth transport.AuthMethod
}

// New builds a Client with authentication resolved from the environment:
// SSH keys under ~/.ssh first, then token environment variables, then
// anonymous access (sufficient for public HTTPS remotes).
func New() *Client {
	c := &Client{}
	c.setupAuth()
	return c
}

// Discover resolves the repository root containing path by walking up the
// directory tree until a .git directory is found.
func (c *Client) Discover(path types.FilesystemPath) (types.FilesystemPath, error) {
	current := filepath.Clean(string(path))
	for {
		repo, err := git.PlainOpen(current)
		if err == nil {
			worktree, wtErr := repo.Worktree()
			if wtErr != nil {
				return "", fmt.Errorf("%q: %w", path, ErrBareRepository)
			}
			return types.FilesystemPath(worktree.Filesystem.Root()), nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", fmt.Errorf("%q: %w", path, ErrRepositoryNotFound)
		}
		current = parent
	}
}

// InitOrOpen opens the repository at path, initializing a fresh one when
// none exists yet.
func (c *Client) InitOrOpen(path types.FilesystemPath) error {
	if _, err := git.PlainOpen(string(path)); err == nil {
		return nil
	}
	if _, err := git.PlainInit(string(path), false); err != nil {
		return fmt.Errorf("initializing repository at %q: %w", path, err)
	}
	log.Debug("initialized repository", "path", path)
	return nil
}

// Clone clones url into dest.
func (c *Client) Clone(ctx context.Context, url string, dest types.FilesystemPath) error {
	if err := os.MkdirAll(filepath.Dir(string(dest)), 0o755); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}
	_, err := git.PlainCloneContext(ctx, string(dest), false, &git.CloneOptions{
		URL:  url,
		Auth: c.auth,
	})
	if err != nil {
		return fmt.Errorf("cloning %q: %w", url, err)
	}
	log.Debug("cloned repository", "url", url, "dest", dest)
	return nil
}

// Remotes lists the configured remote names of the repository at root.
func (c *Client) Remotes(root types.FilesystemPath) ([]string, error) {
	repo, err := git.PlainOpen(string(root))
	if err != nil {
		return nil, fmt.Errorf("opening repository at %q: %w", root, err)
	}
	remotes, err := repo.Remotes()
	if err != nil {
		return nil, fmt.Errorf("listing remotes: %w", err)
	}
	names := make([]string, 0, len(remotes))
	for _, remote := range remotes {
		names = append(names, remote.Config().Name)
	}
	return names, nil
}

// AddRemote configures a named remote on the repository at root.
func (c *Client) AddRemote(root types.FilesystemPath, name, url string) error {
	repo, err := git.PlainOpen(string(root))
	if err != nil {
		return fmt.Errorf("opening repository at %q: %w", root, err)
	}
	_, err = repo.CreateRemote(&config.RemoteConfig{
		Name: name,
		URLs: []string{url},
	})
	if err != nil && !errors.Is(err, git.ErrRemoteExists) {
		return fmt.Errorf("adding remote %q: %w", name, err)
	}
	return nil
}

// CommitAll stages every change in the worktree and commits it. An empty
// worktree still produces a commit so that a version bump without source
// changes remains taggable.
func (c *Client) CommitAll(root types.FilesystemPath, message string) error {
	repo, err := git.PlainOpen(string(root))
	if err != nil {
		return fmt.Errorf("opening repository at %q: %w", root, err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("%q: %w", root, ErrBareRepository)
	}
	if err := worktree.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return fmt.Errorf("staging changes: %w", err)
	}
	_, err = worktree.Commit(message, &git.CommitOptions{
		AllowEmptyCommits: true,
		Author: &object.Signature{
			Name:  "knapsac",
			Email: "knapsac@localhost",
			When:  time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	log.Debug("committed changes", "root", root, "message", message)
	return nil
}

// Tag creates a lightweight tag at the current head.
func (c *Client) Tag(root types.FilesystemPath, name string) error {
	repo, err := git.PlainOpen(string(root))
	if err != nil {
		return fmt.Errorf("opening repository at %q: %w", root, err)
	}
	head, err := repo.Head()
	if err != nil {
		return fmt.Errorf("resolving head: %w", err)
	}
	if _, err := repo.CreateTag(name, head.Hash(), nil); err != nil {
		return fmt.Errorf("tagging %q: %w", name, err)
	}
	log.Debug("created tag", "root", root, "tag", name)
	return nil
}

// Push pushes the branch to the named remote.
func (c *Client) Push(ctx context.Context, root types.FilesystemPath, remote, branch string) error {
	repo, err := git.PlainOpen(string(root))
	if err != nil {
		return fmt.Errorf("opening repository at %q: %w", root, err)
	}
	refSpec := config.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch))
	err = repo.PushContext(ctx, &git.PushOptions{
		RemoteName: remote,
		RefSpecs:   []config.RefSpec{refSpec},
		Auth:       c.auth,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("pushing %q to %q: %w", branch, remote, err)
	}
	log.Debug("pushed branch", "root", root, "remote", remote, "branch", branch)
	return nil
}

// setupAuth configures authentication based on available credentials.
func (c *Client) setupAuth() {
	if sshAuth := trySSHAuth(); sshAuth != nil {
		c.auth = sshAuth
		return
	}
	if httpAuth := tryHTTPAuth(); httpAuth != nil {
		c.auth = httpAuth
		return
	}
	// No authentication configured - will work for public repos
}

// trySSHAuth attempts to configure SSH authentication from common key
// locations.
func trySSHAuth() transport.AuthMethod {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	keyPaths := []string{
		filepath.Join(homeDir, ".ssh", "id_ed25519"),
		filepath.Join(homeDir, ".ssh", "id_rsa"),
		filepath.Join(homeDir, ".ssh", "id_ecdsa"),
	}

	for _, keyPath := range keyPaths {
		if _, err := os.Stat(keyPath); err == nil {
			auth, err := ssh.NewPublicKeysFromFile("git", keyPath, "")
			if err == nil {
				return auth
			}
		}
	}

	return nil
}

// tryHTTPAuth attempts to configure HTTP authentication from token
// environment variables.
func tryHTTPAuth() transport.AuthMethod {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return &http.BasicAuth{
			Username: "x-access-token",
			Password: token,
		}
	}
	if token := os.Getenv("GITLAB_TOKEN"); token != "" {
		return &http.BasicAuth{
			Username: "gitlab-ci-token",
			Password: token,
		}
	}
	if token := os.Getenv("GIT_TOKEN"); token != "" {
		return &http.BasicAuth{
			Username: "git",
			Password: token,
		}
	}
	return nil
}
