package workspace

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/pyr-sh/dag"
)

// Graph is the dependency DAG over a Catalog's nodes: one edge per
// workspace-local dependency declared in a package's manifest. Package
// names that resolve to nothing in the catalog are treated as external
// and never become edges.
type Graph struct {
	Catalog *Catalog
	Edges   map[string][]string // node name -> direct workspace-local dependency names
	g       dag.AcyclicGraph
}

// BuildGraph reads every node's manifest out of the catalog and connects an
// edge for each dependency name that is itself a workspace member. It
// returns an error if the resulting graph contains a cycle.
func BuildGraph(catalog *Catalog) (*Graph, error) {
	graph := &Graph{
		Catalog: catalog,
		Edges:   map[string][]string{},
	}

	for name := range catalog.Nodes {
		graph.g.Add(name)
	}

	for name := range catalog.Nodes {
		manifest, err := catalog.manifestByName(name)
		if err != nil {
			return nil, errors.Wrapf(err, "reading manifest for %s", name)
		}
		if manifest == nil {
			continue
		}

		var deps []string
		for _, dep := range manifest.AllDependencyNames() {
			if _, ok := catalog.Nodes[dep]; !ok {
				continue // external dependency, not a workspace edge
			}
			if dep == name {
				continue
			}
			deps = append(deps, dep)
			graph.g.Connect(dag.BasicEdge(name, dep))
		}
		sort.Strings(deps)
		graph.Edges[name] = deps
	}

	if cycles := graph.g.Cycles(); len(cycles) > 0 {
		return nil, errors.Errorf("dependency graph contains a cycle: %v", cycles)
	}

	return graph, nil
}

// BuildOrder returns every node in an order where a node always appears
// after every workspace-local package it depends on (Kahn's algorithm).
// Ties are broken lexicographically so the order is deterministic.
func (g *Graph) BuildOrder() []string {
	remaining := map[string]int{}
	dependents := map[string][]string{}
	for name, deps := range g.Edges {
		remaining[name] = len(deps)
		for _, dep := range deps {
			dependents[dep] = append(dependents[dep], name)
		}
	}

	var ready []string
	for name, count := range remaining {
		if count == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	var order []string
	for len(ready) > 0 {
		sort.Strings(ready)
		name := ready[0]
		ready = ready[1:]
		order = append(order, name)

		var freed []string
		for _, dependent := range dependents[name] {
			remaining[dependent]--
			if remaining[dependent] == 0 {
				freed = append(freed, dependent)
			}
		}
		sort.Strings(freed)
		ready = append(ready, freed...)
	}

	return order
}

// Affected returns the reflexive-transitive closure of dependents of the
// given package names: the package itself, plus every package that
// depends on it directly or indirectly.
func (g *Graph) Affected(changed ...string) []string {
	dependents := map[string][]string{}
	for name, deps := range g.Edges {
		for _, dep := range deps {
			dependents[dep] = append(dependents[dep], name)
		}
	}

	seen := map[string]struct{}{}
	var queue []string
	for _, name := range changed {
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			queue = append(queue, name)
		}
	}

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		for _, dependent := range dependents[name] {
			if _, ok := seen[dependent]; !ok {
				seen[dependent] = struct{}{}
				queue = append(queue, dependent)
			}
		}
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ExplainAffected reports, for every package affected by a change to root,
// the chain of workspace dependencies connecting it back to root — the
// data behind the `why` command.
func (g *Graph) ExplainAffected(root string) map[string][]string {
	dependents := map[string][]string{}
	for name, deps := range g.Edges {
		for _, dep := range deps {
			dependents[dep] = append(dependents[dep], name)
		}
	}

	chains := map[string][]string{root: {root}}
	queue := []string{root}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		for _, dependent := range dependents[name] {
			if _, ok := chains[dependent]; ok {
				continue
			}
			chain := append(append([]string{}, chains[name]...), dependent)
			chains[dependent] = chain
			queue = append(queue, dependent)
		}
	}

	return chains
}

// Dependencies returns the reflexive-transitive closure of dependencies of
// the given package names: each package plus every workspace package it
// depends on, directly or indirectly. This is the set `prune` keeps.
func (g *Graph) Dependencies(scope ...string) []string {
	seen := map[string]struct{}{}
	var queue []string
	for _, name := range scope {
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			queue = append(queue, name)
		}
	}

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		for _, dep := range g.Edges[name] {
			if _, ok := seen[dep]; !ok {
				seen[dep] = struct{}{}
				queue = append(queue, dep)
			}
		}
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Subgraph is the result of Prune: the subset of a Catalog and Graph
// reachable from a scope, kept just large enough to build that scope
// in isolation.
type Subgraph struct {
	Nodes map[string]*Node
	Edges map[string][]string
}

// Prune computes the pruned workspace for the given scope: every package in
// scope plus every workspace package it depends on, directly or indirectly
// (Dependencies), along with the edges between them. It is the package set
// a deploy of scope actually needs, the data behind the `prune` command.
func (g *Graph) Prune(scope ...string) (*Subgraph, error) {
	for _, name := range scope {
		if _, ok := g.Catalog.Nodes[name]; !ok {
			return nil, errors.Errorf("prune: unknown package %q", name)
		}
	}

	kept := g.Dependencies(scope...)
	sub := &Subgraph{
		Nodes: make(map[string]*Node, len(kept)),
		Edges: make(map[string][]string, len(kept)),
	}
	for _, name := range kept {
		sub.Nodes[name] = g.Catalog.Nodes[name]
		sub.Edges[name] = g.Edges[name]
	}
	return sub, nil
}
