package symbols

import "sort"

// Key identifies an exported symbol by the package that declares it and its
// name.
type Key struct {
	Package string
	Symbol  string
}

// ConsumerIndex maps an exported (package, symbol) to every file that
// imports it. It is always rebuilt from scratch from a fresh import pass
// — never partially updated in place.
type ConsumerIndex map[Key]map[string]struct{}

// Graph is the built symbol graph: per-package exports plus the reverse
// consumer index derived from the import pass.
type Graph struct {
	// Exports maps package name to its declared symbols.
	Exports map[string][]Symbol
	// Consumers is the ConsumerIndex described above.
	Consumers ConsumerIndex
}

// PackageSource is one file's extracted symbols annotated with the
// workspace package name that owns it, the unit the symbol graph builder
// scans: each package's source tree plus any top-level
// index.{ts,tsx,js,jsx}.
type PackageSource struct {
	Package string
	File    FileSymbols
}

// Build constructs a fresh Graph from every package's scanned files, and
// the set of workspace package names (an import counts only when its
// source is exactly one of these names).
func Build(sources []PackageSource, workspaceNames map[string]struct{}) *Graph {
	g := &Graph{
		Exports:   map[string][]Symbol{},
		Consumers: ConsumerIndex{},
	}

	for _, src := range sources {
		g.Exports[src.Package] = append(g.Exports[src.Package], src.File.Exports...)
	}

	for _, src := range sources {
		for _, imp := range src.File.Imports {
			if _, ok := workspaceNames[imp.Source]; !ok {
				continue
			}
			for _, name := range imp.Symbols {
				key := Key{Package: imp.Source, Symbol: name}
				if g.Consumers[key] == nil {
					g.Consumers[key] = map[string]struct{}{}
				}
				g.Consumers[key][src.File.Path] = struct{}{}
			}
		}
	}

	return g
}

// SymbolCache is the previously-recorded digest for every (package, symbol),
// the input to ChangedSymbols.
type SymbolCache map[Key]string

// Snapshot produces a SymbolCache from the current graph, suitable for
// persisting to symbols.json and diffing against on the next run.
func (g *Graph) Snapshot() SymbolCache {
	cache := make(SymbolCache)
	for pkg, syms := range g.Exports {
		for _, s := range syms {
			cache[Key{Package: pkg, Symbol: s.Name}] = s.Digest
		}
	}
	return cache
}

// ChangedSymbols returns the symbols present in g whose digest differs from
// prev, plus any symbol new to g. Removed symbols are not reported.
func (g *Graph) ChangedSymbols(prev SymbolCache) []Key {
	var changed []Key
	for pkg, syms := range g.Exports {
		for _, s := range syms {
			key := Key{Package: pkg, Symbol: s.Name}
			if prevDigest, ok := prev[key]; !ok || prevDigest != s.Digest {
				changed = append(changed, key)
			}
		}
	}
	sort.Slice(changed, func(i, j int) bool {
		if changed[i].Package != changed[j].Package {
			return changed[i].Package < changed[j].Package
		}
		return changed[i].Symbol < changed[j].Symbol
	})
	return changed
}

// AffectedFiles is the union of the consumer sets of every changed symbol —
// the primary input to incremental rebuild.
func (g *Graph) AffectedFiles(changed []Key) []string {
	set := map[string]struct{}{}
	for _, key := range changed {
		for file := range g.Consumers[key] {
			set[file] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for file := range set {
		out = append(out, file)
	}
	sort.Strings(out)
	return out
}
