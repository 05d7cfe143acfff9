package symbols

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/neex-build/neex/internal/hashing"
)

// Extract parses source (routed by ext, the same way the syntax hasher
// routes grammars) and returns its exported symbols and its imports.
// Files whose extension isn't JS/TS-shaped, or that fail to parse, return
// an empty FileSymbols with no error — extraction is a best-effort,
// non-mandatory scan.
func Extract(path, ext string, source []byte) (FileSymbols, error) {
	tree, err := hashing.ParseTree(ext, source)
	if err != nil || tree == nil {
		return FileSymbols{Path: path}, nil
	}
	defer tree.Close()

	fs := FileSymbols{Path: path}
	root := tree.RootNode()
	count := int(root.ChildCount())
	for i := 0; i < count; i++ {
		child := root.Child(i)
		switch child.Type() {
		case "export_statement":
			fs.Exports = append(fs.Exports, extractExports(child, source)...)
		case "import_statement":
			if imp, ok := extractImport(child, source); ok {
				fs.Imports = append(fs.Imports, imp)
			}
		}
	}
	return fs, nil
}

func line(node *sitter.Node) int {
	return int(node.StartPoint().Row) + 1
}

func digestOf(node *sitter.Node, source []byte) string {
	return hashing.SyntaxHash(".ts", source[node.StartByte():node.EndByte()])
}

// extractExports handles the three export shapes: a wrapped declaration,
// an `export { a, b }` clause, and `export default`.
func extractExports(node *sitter.Node, source []byte) []Symbol {
	// export default ...
	hasDefault := false
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == "default" {
			hasDefault = true
			break
		}
	}

	if decl := node.ChildByFieldName("declaration"); decl != nil {
		if hasDefault {
			return []Symbol{{
				Name:   "default",
				Kind:   kindFromDeclaration(decl),
				Digest: digestOf(decl, source),
				Line:   line(decl),
			}}
		}
		return declarationExports(decl, source)
	}

	if hasDefault {
		// `export default <expression>;` with no named declaration child —
		// the exported value is the remaining non-keyword child.
		for i := 0; i < int(node.ChildCount()); i++ {
			c := node.Child(i)
			t := c.Type()
			if t == "export" || t == "default" || t == ";" {
				continue
			}
			return []Symbol{{Name: "default", Kind: KindVariable, Digest: digestOf(c, source), Line: line(c)}}
		}
	}

	// `export { a, b as c }` — a clause with zero-body digest.
	if clause := findChildOfType(node, "export_clause"); clause != nil {
		return exportClauseSymbols(clause, source)
	}

	return nil
}

// declarationExports expands a lexical_declaration into one Symbol per
// declarator — each top-level declarator in a lexical declaration is a
// distinct export — or a single Symbol for a function, class, type-alias,
// interface, or enum declaration.
func declarationExports(decl *sitter.Node, source []byte) []Symbol {
	switch decl.Type() {
	case "lexical_declaration", "variable_declaration":
		var out []Symbol
		for i := 0; i < int(decl.NamedChildCount()); i++ {
			d := decl.NamedChild(i)
			if d.Type() != "variable_declarator" {
				continue
			}
			nameNode := d.ChildByFieldName("name")
			if nameNode == nil {
				continue
			}
			out = append(out, Symbol{
				Name:   nameNode.Content(source),
				Kind:   KindConst,
				Digest: digestOf(d, source),
				Line:   line(d),
			})
		}
		return out
	default:
		nameNode := decl.ChildByFieldName("name")
		name := "default"
		if nameNode != nil {
			name = nameNode.Content(source)
		}
		return []Symbol{{
			Name:   name,
			Kind:   kindFromDeclaration(decl),
			Digest: digestOf(decl, source),
			Line:   line(decl),
		}}
	}
}

func kindFromDeclaration(decl *sitter.Node) Kind {
	switch decl.Type() {
	case "function_declaration", "generator_function_declaration":
		return KindFunction
	case "class_declaration":
		return KindClass
	case "interface_declaration":
		return KindInterface
	case "enum_declaration":
		return KindEnum
	case "type_alias_declaration":
		return KindType
	case "lexical_declaration":
		return KindConst
	default:
		return KindVariable
	}
}

// exportClauseSymbols reads `{ a, b as c }`; each named export gets an empty
// body digest since it re-exports rather than declares.
func exportClauseSymbols(clause *sitter.Node, source []byte) []Symbol {
	var out []Symbol
	for i := 0; i < int(clause.NamedChildCount()); i++ {
		spec := clause.NamedChild(i)
		if spec.Type() != "export_specifier" {
			continue
		}
		out = append(out, Symbol{
			Name:   specifierLocalName(spec, source),
			Kind:   KindVariable,
			Digest: hashing.SyntaxHash(".ts", []byte{}),
			Line:   line(spec),
		})
	}
	return out
}

func specifierLocalName(spec *sitter.Node, source []byte) string {
	if alias := spec.ChildByFieldName("alias"); alias != nil {
		return alias.Content(source)
	}
	if name := spec.ChildByFieldName("name"); name != nil {
		return name.Content(source)
	}
	return ""
}

// extractImport reads a single `import` statement into its source module
// and bound local names.
func extractImport(node *sitter.Node, source []byte) (Import, bool) {
	srcNode := node.ChildByFieldName("source")
	if srcNode == nil {
		return Import{}, false
	}
	spec := strings.Trim(srcNode.Content(source), `"'`)

	var names []string
	clause := findChildOfType(node, "import_clause")
	if clause != nil {
		for i := 0; i < int(clause.ChildCount()); i++ {
			c := clause.Child(i)
			switch c.Type() {
			case "identifier":
				names = append(names, c.Content(source))
			case "namespace_import":
				names = append(names, "* as "+namespaceAlias(c, source))
			case "named_imports":
				for j := 0; j < int(c.NamedChildCount()); j++ {
					spec := c.NamedChild(j)
					if spec.Type() != "import_specifier" {
						continue
					}
					names = append(names, importSpecifierLocalName(spec, source))
				}
			}
		}
	}

	return Import{Source: spec, Symbols: names, Line: line(node)}, true
}

func namespaceAlias(node *sitter.Node, source []byte) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		if c.Type() == "identifier" {
			return c.Content(source)
		}
	}
	return ""
}

func importSpecifierLocalName(spec *sitter.Node, source []byte) string {
	if alias := spec.ChildByFieldName("alias"); alias != nil {
		return alias.Content(source)
	}
	if name := spec.ChildByFieldName("name"); name != nil {
		return name.Content(source)
	}
	return ""
}

func findChildOfType(node *sitter.Node, t string) *sitter.Node {
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == t {
			return node.Child(i)
		}
	}
	return nil
}
