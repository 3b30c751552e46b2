// SPDX-License-Identifier: MPL-2.0

package dependency

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/knapsac/knapsac/pkg/types"
)

func TestDependency_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		dep     Dependency
		wantErr error
	}{
		{"stray", NewStray("lib", "/artifacts/lib"), nil},
		{"standalone", NewStandalone("/src/mod.sac"), nil},
		{"package", NewPackage("mypkg", "mod"), nil},
		{"stray without identifier", Dependency{Kind: KindStray, OutputLocation: "/artifacts/lib"}, types.ErrInvalidIdentifier},
		{"stray without output", Dependency{Kind: KindStray, Identifier: "lib"}, types.ErrInvalidFilesystemPath},
		{"standalone without source", Dependency{Kind: KindStandalone}, types.ErrInvalidFilesystemPath},
		{"package without module id", Dependency{Kind: KindPackage, PackageID: "mypkg"}, types.ErrInvalidIdentifier},
		{"unknown kind", Dependency{Kind: "remote"}, ErrUnknownDependencyKind},
		{"zero value", Dependency{}, ErrUnknownDependencyKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.dep.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() returned unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDependency_Equal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b Dependency
		want bool
	}{
		{"same stray", NewStray("lib", "/out"), NewStray("lib", "/out"), true},
		{"same standalone", NewStandalone("/src/a.sac"), NewStandalone("/src/a.sac"), true},
		{"same package", NewPackage("p", "m"), NewPackage("p", "m"), true},
		{"different output", NewStray("lib", "/out"), NewStray("lib", "/other"), false},
		{"different source", NewStandalone("/src/a.sac"), NewStandalone("/src/b.sac"), false},
		{"different module", NewPackage("p", "m"), NewPackage("p", "n"), false},
		{"different kind", NewStray("a", "/src/a.sac"), NewStandalone("/src/a.sac"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestDependency_IsPackageReference(t *testing.T) {
	t.Parallel()

	if !NewPackage("p", "m").IsPackageReference() {
		t.Error("package edge: IsPackageReference() = false")
	}
	if NewStandalone("/src/a.sac").IsPackageReference() {
		t.Error("standalone edge: IsPackageReference() = true")
	}
	if NewStray("lib", "/out").IsPackageReference() {
		t.Error("stray edge: IsPackageReference() = true")
	}
}

func TestDependency_JSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		dep  Dependency
	}{
		{"stray", NewStray("lib", "/artifacts/lib")},
		{"standalone", NewStandalone("/src/mod.sac")},
		{"package", NewPackage("mypkg", "mod")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			data, err := json.Marshal(tt.dep)
			if err != nil {
				t.Fatalf("Marshal(%s) returned unexpected error: %v", tt.dep, err)
			}
			var back Dependency
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatalf("Unmarshal(%s) returned unexpected error: %v", data, err)
			}
			if !back.Equal(tt.dep) {
				t.Errorf("round-trip changed the edge: got %s, want %s", back, tt.dep)
			}
		})
	}
}

func TestDependency_UnmarshalJSON_UnknownKind(t *testing.T) {
	t.Parallel()

	var dep Dependency
	err := json.Unmarshal([]byte(`{"kind":"remote","identifier":"x"}`), &dep)
	if !errors.Is(err, ErrUnknownDependencyKind) {
		t.Errorf("Unmarshal unknown kind error = %v, want ErrUnknownDependencyKind", err)
	}
}
