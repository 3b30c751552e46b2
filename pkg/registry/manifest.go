// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/knapsac/knapsac/pkg/types"
	"github.com/knapsac/knapsac/pkg/version"
)

// ManifestFileName is the per-package sidecar written into the package
// root. It travels with the repository, so a downloaded package can be
// registered without access to the publisher's registry file.
const ManifestFileName = "manifest.json"

// ErrNoManifestFound is returned when a package root carries no manifest.
var ErrNoManifestFound = errors.New("no package manifest found")

// manifestDocument is the serialized shape of the sidecar.
type manifestDocument struct {
	Identifier     types.Identifier                   `json:"identifier"`
	Version        version.Version                    `json:"version"`
	Language       Language                           `json:"language"`
	RemoteLocation string                             `json:"remote_location,omitempty"`
	Modules        map[types.Identifier]*PackageEntry `json:"modules"`
}

// WriteManifest writes the package's manifest sidecar into its root.
func WriteManifest(pkg *Package) error {
	doc := manifestDocument{
		Identifier:     pkg.Identifier,
		Version:        pkg.Version,
		Language:       pkg.Language,
		RemoteLocation: pkg.RemoteLocation,
		Modules:        pkg.Modules,
	}
	data, err := json.MarshalIndent(doc, "", "\t")
	if err != nil {
		return fmt.Errorf("encoding manifest for package %q: %w", pkg.Identifier, err)
	}

	path := pkg.LocalLocation.Join(ManifestFileName)
	tmpPath := string(path) + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest for package %q: %w", pkg.Identifier, err)
	}
	if err := os.Rename(tmpPath, string(path)); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("committing manifest for package %q: %w", pkg.Identifier, err)
	}
	return nil
}

// LoadManifest reads the manifest sidecar from a package root and rebuilds
// the package it describes. A missing manifest is ErrNoManifestFound; a
// present but malformed one is a hard error.
func LoadManifest(root types.FilesystemPath) (*Package, error) {
	data, err := os.ReadFile(string(root.Join(ManifestFileName)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%q: %w", root, ErrNoManifestFound)
		}
		return nil, fmt.Errorf("reading manifest at %q: %w", root, err)
	}

	var doc manifestDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing manifest at %q: %w", root, err)
	}
	if err := doc.Identifier.Validate(); err != nil {
		return nil, fmt.Errorf("manifest at %q: %w", root, err)
	}

	pkg := &Package{
		Identifier:     doc.Identifier,
		Version:        doc.Version,
		Language:       doc.Language,
		LocalLocation:  root,
		RemoteLocation: doc.RemoteLocation,
		Modules:        doc.Modules,
	}
	if pkg.Modules == nil {
		pkg.Modules = make(map[types.Identifier]*PackageEntry)
	}
	return pkg, nil
}
