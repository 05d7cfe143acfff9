// Package symbols implements the symbol-level change propagation engines:
// the per-file export/import extractor and the cross-package consumer
// index / change detector.
package symbols

// Kind enumerates the exported-symbol kinds this system tracks.
type Kind string

const (
	KindFunction  Kind = "function"
	KindClass     Kind = "class"
	KindConst     Kind = "const"
	KindVariable  Kind = "variable"
	KindType      Kind = "type"
	KindInterface Kind = "interface"
	KindEnum      Kind = "enum"
)

// Symbol is an exported named entity extracted from a JS/TS source file.
// Identity across runs is (package name, symbol name); Digest is over the
// syntactic subtree of the declaration.
type Symbol struct {
	Name   string
	Kind   Kind
	Digest string
	Line   int
}

// Import is a single `import` statement's resolved shape: the module
// specifier string with quotes stripped, and the local names it binds.
type Import struct {
	Source  string
	Symbols []string
	Line    int
}

// FileSymbols is one file's extracted exports and imports.
type FileSymbols struct {
	Path    string
	Exports []Symbol
	Imports []Import
}
