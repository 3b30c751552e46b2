// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"errors"
	"testing"

	"github.com/knapsac/knapsac/pkg/dependency"
	"github.com/knapsac/knapsac/pkg/types"
)

func TestRemoveModule_CascadesInboundEdges(t *testing.T) {
	t.Parallel()

	reg := NewInMemory()
	newTestModule(t, reg, "a", "/src/a.sac")
	newTestModule(t, reg, "b", "/src/b.sac")
	if err := reg.AddExecutable("/src/main.sac"); err != nil {
		t.Fatalf("AddExecutable() returned unexpected error: %v", err)
	}

	if err := reg.AddDependency(ModuleUnit("a"), "b", dependency.NewStandalone("/src/b.sac")); err != nil {
		t.Fatalf("AddDependency(a->b) returned unexpected error: %v", err)
	}
	if err := reg.AddDependency(ExecutableUnit("/src/main.sac"), "b", dependency.NewStandalone("/src/b.sac")); err != nil {
		t.Fatalf("AddDependency(main->b) returned unexpected error: %v", err)
	}

	if err := reg.RemoveModule("b"); err != nil {
		t.Fatalf("RemoveModule(b) returned unexpected error: %v", err)
	}

	if reg.HasModule("b") {
		t.Error("removed module still registered")
	}
	if reg.HasDependency(ModuleUnit("a"), "b") {
		t.Error("module edge to the removed module survived")
	}
	if reg.HasDependency(ExecutableUnit("/src/main.sac"), "b") {
		t.Error("executable edge to the removed module survived")
	}
}

func TestRemoveModule_CascadesStrayEdgesByIdentity(t *testing.T) {
	t.Parallel()

	reg := NewInMemory()
	newTestModule(t, reg, "a", "/src/a.sac")
	newTestModule(t, reg, "b", "/src/b.sac")

	// A stray edge recorded before "b" was registered still carries its
	// identity; removing "b" sweeps it too.
	if err := reg.AddDependency(ModuleUnit("a"), "b", dependency.NewStray("b", "/artifacts/b")); err != nil {
		t.Fatalf("AddDependency(a->stray b) returned unexpected error: %v", err)
	}
	if err := reg.AddDependency(ModuleUnit("a"), "other", dependency.NewStray("other", "/artifacts/other")); err != nil {
		t.Fatalf("AddDependency(a->stray other) returned unexpected error: %v", err)
	}

	if err := reg.RemoveModule("b"); err != nil {
		t.Fatalf("RemoveModule(b) returned unexpected error: %v", err)
	}
	if reg.HasDependency(ModuleUnit("a"), "b") {
		t.Error("stray edge carrying the removed module's identity survived")
	}
	if !reg.HasDependency(ModuleUnit("a"), "other") {
		t.Error("unrelated stray edge was swept")
	}
}

func TestRemoveModule_Missing(t *testing.T) {
	t.Parallel()

	reg := NewInMemory()
	if err := reg.RemoveModule("ghost"); !errors.Is(err, ErrNoSuchModule) {
		t.Errorf("RemoveModule(ghost) error = %v, want ErrNoSuchModule", err)
	}
}

func TestRemoveExecutable(t *testing.T) {
	t.Parallel()

	reg := NewInMemory()
	if err := reg.AddExecutable("/src/main.sac"); err != nil {
		t.Fatalf("AddExecutable() returned unexpected error: %v", err)
	}
	if err := reg.RemoveExecutable("/src/main.sac"); err != nil {
		t.Fatalf("RemoveExecutable() returned unexpected error: %v", err)
	}
	if reg.HasExecutableSource("/src/main.sac") {
		t.Error("removed executable still registered")
	}
	if err := reg.RemoveExecutable("/src/main.sac"); !errors.Is(err, ErrNoSuchExecutable) {
		t.Errorf("RemoveExecutable(again) error = %v, want ErrNoSuchExecutable", err)
	}
}

func TestRemovePackage_CascadesInboundEdges(t *testing.T) {
	t.Parallel()

	reg := NewInMemory()
	newTestModule(t, reg, "a", "/src/a.sac")

	pkg := NewPackage("p", types.FilesystemPath(t.TempDir()), Language{CompilerCommand: "cc", OutputOption: "-o"})
	if err := pkg.AddModule("m.sac", &PackageModule{Identifier: "m", OutputLocation: "m/output", Dependencies: make(DependencySet)}); err != nil {
		t.Fatalf("AddModule() returned unexpected error: %v", err)
	}
	reg.Packages["p"] = pkg

	if err := reg.AddDependency(ModuleUnit("a"), "m", dependency.NewPackage("p", "m")); err != nil {
		t.Fatalf("AddDependency(a->p/m) returned unexpected error: %v", err)
	}

	if err := reg.RemovePackage("p"); err != nil {
		t.Fatalf("RemovePackage() returned unexpected error: %v", err)
	}
	if reg.HasPackage("p") {
		t.Error("removed package still registered")
	}
	if reg.HasDependency(ModuleUnit("a"), "m") {
		t.Error("edge into the removed package survived")
	}
}

func TestRemoveItem_PackageModule(t *testing.T) {
	t.Parallel()

	reg := NewInMemory()
	newTestModule(t, reg, "a", "/src/a.sac")

	pkg := NewPackage("p", types.FilesystemPath(t.TempDir()), Language{CompilerCommand: "cc", OutputOption: "-o"})
	for _, id := range []types.Identifier{"m", "n"} {
		mod := &PackageModule{Identifier: id, OutputLocation: types.FilesystemPath(string(id) + "/output"), Dependencies: make(DependencySet)}
		if err := pkg.AddModule(types.FilesystemPath(string(id)+".sac"), mod); err != nil {
			t.Fatalf("AddModule(%q) returned unexpected error: %v", id, err)
		}
	}
	reg.Packages["p"] = pkg

	if err := reg.AddDependency(ModuleUnit("a"), "m", dependency.NewPackage("p", "m")); err != nil {
		t.Fatalf("AddDependency(a->p/m) returned unexpected error: %v", err)
	}
	if err := reg.AddDependency(ModuleUnit("a"), "n", dependency.NewPackage("p", "n")); err != nil {
		t.Fatalf("AddDependency(a->p/n) returned unexpected error: %v", err)
	}

	if err := reg.RemoveItem(PackageModuleUnit("p", "m")); err != nil {
		t.Fatalf("RemoveItem(p/m) returned unexpected error: %v", err)
	}

	if pkg.HasModule("m") {
		t.Error("removed package module still owned")
	}
	if reg.HasDependency(ModuleUnit("a"), "m") {
		t.Error("edge to the removed package module survived")
	}
	if !reg.HasDependency(ModuleUnit("a"), "n") {
		t.Error("edge to the sibling module was swept")
	}
}

func TestRemoveDependency_EqualityGuard(t *testing.T) {
	t.Parallel()

	reg := NewInMemory()
	newTestModule(t, reg, "a", "/src/a.sac")
	stored := dependency.NewStray("lib", "/artifacts/lib")
	if err := reg.AddDependency(ModuleUnit("a"), "lib", stored); err != nil {
		t.Fatalf("AddDependency() returned unexpected error: %v", err)
	}

	// A stale request naming a different edge under the same key is a no-op.
	if err := reg.RemoveDependency(ModuleUnit("a"), "lib", dependency.NewStray("lib", "/artifacts/elsewhere")); err != nil {
		t.Fatalf("RemoveDependency(stale) returned unexpected error: %v", err)
	}
	if !reg.HasDependency(ModuleUnit("a"), "lib") {
		t.Fatal("stale removal deleted the stored edge")
	}

	if err := reg.RemoveDependency(ModuleUnit("a"), "lib", stored); err != nil {
		t.Fatalf("RemoveDependency() returned unexpected error: %v", err)
	}
	if reg.HasDependency(ModuleUnit("a"), "lib") {
		t.Error("edge survived its removal")
	}
}

func TestRemoveDependency_MissingOwner(t *testing.T) {
	t.Parallel()

	reg := NewInMemory()
	err := reg.RemoveDependency(ModuleUnit("ghost"), "lib", dependency.NewStray("lib", "/artifacts/lib"))
	if !errors.Is(err, ErrNoSuchModule) {
		t.Errorf("RemoveDependency(missing owner) error = %v, want ErrNoSuchModule", err)
	}
}
