// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/knapsac/knapsac/pkg/dependency"
	"github.com/knapsac/knapsac/pkg/types"
)

func testStorePath(t *testing.T) types.FilesystemPath {
	t.Helper()
	return types.FilesystemPath(filepath.Join(t.TempDir(), "registry.json"))
}

func TestStore_LoadMissingFileYieldsEmptyRegistry(t *testing.T) {
	t.Parallel()

	store := NewStore(testStorePath(t))
	reg, err := store.Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if !reg.IsEmpty() {
		t.Error("registry loaded from a missing file is not empty")
	}

	// The lazily created registry is wired to the store: the first
	// mutation persists it.
	newTestModule(t, reg, "a", "/src/a.sac")
	if _, err := os.Stat(string(store.Path())); err != nil {
		t.Errorf("first mutation did not create the registry file: %v", err)
	}
}

func TestStore_RoundTrip(t *testing.T) {
	t.Parallel()

	path := testStorePath(t)
	store := NewStore(path)
	reg, err := store.Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	newTestModule(t, reg, "a", "/src/a.sac")
	newTestModule(t, reg, "b", "/src/b.sac")
	if err := reg.AddExecutable("/src/main.sac"); err != nil {
		t.Fatalf("AddExecutable() returned unexpected error: %v", err)
	}
	if err := reg.AddDependency(ModuleUnit("a"), "b", dependency.NewStandalone("/src/b.sac")); err != nil {
		t.Fatalf("AddDependency() returned unexpected error: %v", err)
	}

	restored, err := NewStore(path).Load()
	if err != nil {
		t.Fatalf("Load(restored) returned unexpected error: %v", err)
	}
	if restored.CountModules() != 2 || restored.CountExecutables() != 1 {
		t.Fatalf("restored registry holds %d modules and %d executables, want 2 and 1",
			restored.CountModules(), restored.CountExecutables())
	}
	dep, ok := restored.GetDependency(ModuleUnit("a"), "b")
	if !ok {
		t.Fatal("restored registry lost the dependency edge")
	}
	if !dep.Equal(dependency.NewStandalone("/src/b.sac")) {
		t.Errorf("restored edge = %s, want standalone(/src/b.sac)", dep)
	}
}

func TestStore_LoadMalformedFile(t *testing.T) {
	t.Parallel()

	path := testStorePath(t)
	if err := os.WriteFile(string(path), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("writing malformed registry: %v", err)
	}

	_, err := NewStore(path).Load()
	if !errors.Is(err, ErrInvalidRegistry) {
		t.Errorf("Load(malformed) error = %v, want ErrInvalidRegistry", err)
	}
}

func TestStore_Initialize(t *testing.T) {
	t.Parallel()

	path := testStorePath(t)
	reg, err := NewStore(path).Initialize()
	if err != nil {
		t.Fatalf("Initialize() returned unexpected error: %v", err)
	}
	if !reg.IsEmpty() {
		t.Error("Initialize() returned a non-empty registry")
	}
	if _, err := os.Stat(string(path)); err != nil {
		t.Errorf("Initialize() did not create the registry file: %v", err)
	}
}

func TestStore_PersistPathValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		path    func(t *testing.T) types.FilesystemPath
		wantErr error
	}{
		{
			name:    "relative path",
			path:    func(t *testing.T) types.FilesystemPath { return "registry.json" },
			wantErr: ErrRegistryPathNotAbsolute,
		},
		{
			name: "wrong extension",
			path: func(t *testing.T) types.FilesystemPath {
				return types.FilesystemPath(filepath.Join(t.TempDir(), "registry.toml"))
			},
			wantErr: ErrRegistryPathNotJSON,
		},
		{
			name: "no extension",
			path: func(t *testing.T) types.FilesystemPath {
				return types.FilesystemPath(filepath.Join(t.TempDir(), "registry"))
			},
			wantErr: ErrRegistryPathNotFile,
		},
		{
			name: "existing directory",
			path: func(t *testing.T) types.FilesystemPath {
				dir := filepath.Join(t.TempDir(), "registry.json")
				if err := os.Mkdir(dir, 0o755); err != nil {
					t.Fatalf("creating directory: %v", err)
				}
				return types.FilesystemPath(dir)
			},
			wantErr: ErrRegistryPathNotFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := NewStore(tt.path(t))
			err := store.Persist(NewInMemory())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Persist() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
