// SPDX-License-Identifier: MPL-2.0

// Package registry implements the dependency-graph engine at the heart of
// knapsac. It tracks three kinds of build units — standalone modules,
// executables and package-owned modules — and the directed dependency
// edges between them.
//
// The registry is the single place where graph invariants are enforced:
// identifiers are unique per namespace, every non-stray edge resolves to a
// registered unit, the module subgraph stays acyclic, and package-owned
// modules never carry standalone edges. Entities mutate blindly; every
// check happens here, before any in-memory state changes, so a rejected
// operation never leaves the registry inconsistent.
//
// Persistence is write-through: each successful mutation re-serializes the
// whole registry through its Store. External collaborators — the compiler
// and the version-control system — are consumed behind the Compiler and
// VCS interfaces and never implemented in this package.
package registry
