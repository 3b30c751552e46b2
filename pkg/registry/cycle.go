// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"fmt"

	"github.com/knapsac/knapsac/pkg/dependency"
	"github.com/knapsac/knapsac/pkg/types"
)

type (
	// node identifies a module vertex during a reachability walk. Only
	// modules participate: stray edges leave the graph and executables are
	// never dependency targets, so neither can close a cycle.
	node struct {
		packageID types.Identifier // empty for standalone modules
		moduleID  types.Identifier
	}
)

func (n node) String() string {
	if n.packageID == "" {
		return string(n.moduleID)
	}
	return fmt.Sprintf("%s/%s", n.packageID, n.moduleID)
}

// checkAcyclic rejects an edge from owner to target when target can already
// reach owner through existing edges. The walk is an explicit worklist
// traversal with a visited set rather than recursion, so arbitrarily deep
// dependency chains cannot exhaust the call stack. A self-edge (target ==
// owner) is the base case and is itself a cycle.
func (r *Registry) checkAcyclic(owner Unit, dep dependency.Dependency) error {
	ownerNode, ok := r.ownerNode(owner)
	if !ok {
		// Executables cannot be reached by any edge, so no edge added to
		// an executable can close a cycle.
		return nil
	}

	target, ok := r.resolveNode(dep)
	if !ok {
		return nil
	}

	visited := map[node]bool{}
	parent := map[node]node{}
	stack := []node{target}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if current == ownerNode {
			return &CyclicDependencyError{
				Owner: owner.ModuleID,
				Chain: chainTo(current, parent, target),
			}
		}
		if visited[current] {
			continue
		}
		visited[current] = true

		for _, edge := range r.nodeEdges(current) {
			next, ok := r.resolveNode(edge)
			if !ok || visited[next] {
				continue
			}
			parent[next] = current
			stack = append(stack, next)
		}
	}

	return nil
}

// ownerNode maps the addressed owner to a graph node. Executables have no
// node: they cannot be dependency targets.
func (r *Registry) ownerNode(owner Unit) (node, bool) {
	switch owner.Kind {
	case UnitModule:
		return node{moduleID: owner.ModuleID}, true
	case UnitPackageModule:
		return node{packageID: owner.PackageID, moduleID: owner.ModuleID}, true
	default:
		return node{}, false
	}
}

// resolveNode maps an edge to the module node it points at. Stray edges
// and dangling references resolve to nothing.
func (r *Registry) resolveNode(dep dependency.Dependency) (node, bool) {
	switch dep.Kind {
	case dependency.KindStandalone:
		m, ok := r.GetModuleBySource(dep.SourcePath)
		if !ok {
			return node{}, false
		}
		return node{moduleID: m.Identifier}, true
	case dependency.KindPackage:
		p, ok := r.Packages[dep.PackageID]
		if !ok || !p.HasModule(dep.ModuleID) {
			return node{}, false
		}
		return node{packageID: dep.PackageID, moduleID: dep.ModuleID}, true
	default:
		return node{}, false
	}
}

// nodeEdges returns the outgoing edges of a node.
func (r *Registry) nodeEdges(n node) []dependency.Dependency {
	var set DependencySet
	if n.packageID == "" {
		m, ok := r.Modules[n.moduleID]
		if !ok {
			return nil
		}
		set = m.Dependencies
	} else {
		m, ok := r.GetPackageModule(n.packageID, n.moduleID)
		if !ok {
			return nil
		}
		set = m.Dependencies
	}
	edges := make([]dependency.Dependency, 0, len(set))
	for _, dep := range set {
		edges = append(edges, dep)
	}
	return edges
}

// chainTo reconstructs the walk path from the start node to end, rendered
// as module identifiers for the error message.
func chainTo(end node, parent map[node]node, start node) []types.Identifier {
	var reversed []node
	for current := end; ; {
		reversed = append(reversed, current)
		if current == start {
			break
		}
		next, ok := parent[current]
		if !ok {
			break
		}
		current = next
	}
	chain := make([]types.Identifier, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		chain = append(chain, types.Identifier(reversed[i].String()))
	}
	return chain
}
