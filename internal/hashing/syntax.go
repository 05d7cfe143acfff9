package hashing

import (
	"context"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"lukechampine.com/blake3"
)

// jsExtensions are the file extensions routed to the syntax hasher; anything
// else falls back to raw file hashing.
var jsExtensions = map[string]bool{
	".js": true, ".jsx": true, ".mjs": true, ".cjs": true,
	".ts": true, ".tsx": true, ".mts": true, ".cts": true,
}

// IsSyntaxHashable reports whether ext (including the leading dot) names a
// JS/TS/JSX/TSX source file.
func IsSyntaxHashable(ext string) bool {
	return jsExtensions[strings.ToLower(ext)]
}

// languageFor routes an extension to the tree-sitter grammar that parses it.
// .tsx and .jsx both need the JSX-aware grammars; everything else uses the
// plain JS or TS grammar.
func languageFor(ext string) *sitter.Language {
	switch strings.ToLower(ext) {
	case ".ts", ".mts", ".cts":
		return typescript.GetLanguage()
	case ".tsx":
		return tsx.GetLanguage()
	case ".jsx", ".js", ".mjs", ".cjs":
		return javascript.GetLanguage()
	default:
		return nil
	}
}

var parserPools sync.Map // ext -> *sync.Pool

func parserFor(ext string) *sitter.Parser {
	poolIface, _ := parserPools.LoadOrStore(ext, &sync.Pool{
		New: func() interface{} {
			lang := languageFor(ext)
			if lang == nil {
				return nil
			}
			p := sitter.NewParser()
			p.SetLanguage(lang)
			return p
		},
	})
	pool := poolIface.(*sync.Pool)
	v := pool.Get()
	if v == nil {
		return nil
	}
	return v.(*sitter.Parser)
}

func releaseParser(ext string, p *sitter.Parser) {
	if p == nil {
		return
	}
	poolIface, ok := parserPools.Load(ext)
	if !ok {
		return
	}
	poolIface.(*sync.Pool).Put(p)
}

// SyntaxHash is a pure function of (ext, source): it produces a BLAKE3 digest
// over the pre-order walk of the syntax tree, skipping any subtree whose
// node-kind name contains "comment", and folding in leaf source bytes so
// that identifiers and literals still distinguish the digest. A parse
// failure (or an unsupported extension) falls back to a raw content hash of
// the same bytes.
func SyntaxHash(ext string, source []byte) string {
	lang := languageFor(ext)
	if lang == nil {
		return rawBytesHash(source)
	}

	parser := parserFor(ext)
	if parser == nil {
		return rawBytesHash(source)
	}
	defer releaseParser(ext, parser)

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil || tree == nil {
		return rawBytesHash(source)
	}
	defer tree.Close()

	h := blake3.New(32, nil)
	walkHash(tree.RootNode(), source, h)
	return hexEncode(h.Sum(nil))
}

func walkHash(node *sitter.Node, source []byte, h *blake3.Hasher) {
	if node == nil {
		return
	}
	kind := node.Type()
	if strings.Contains(kind, "comment") {
		return
	}
	_, _ = h.Write([]byte(kind))

	count := int(node.ChildCount())
	if count == 0 {
		start, end := node.StartByte(), node.EndByte()
		if int(end) <= len(source) && start <= end {
			_, _ = h.Write(source[start:end])
		}
		return
	}
	for i := 0; i < count; i++ {
		walkHash(node.Child(i), source, h)
	}
}

func rawBytesHash(source []byte) string {
	sum := blake3.Sum256(source)
	return hexEncode(sum[:])
}

// parseTree parses source for ext and returns the tree, for callers (the
// symbol extractor) that need to walk the same tree the hasher built rather
// than re-deriving a digest. Returns nil, nil on unsupported extensions.
func parseTree(ext string, source []byte) (*sitter.Tree, error) {
	lang := languageFor(ext)
	if lang == nil {
		return nil, nil
	}
	parser := parserFor(ext)
	if parser == nil {
		return nil, nil
	}
	defer releaseParser(ext, parser)
	return parser.ParseCtx(context.Background(), nil, source)
}

// ParseTree is the exported form of parseTree, used by internal/symbols.
func ParseTree(ext string, source []byte) (*sitter.Tree, error) {
	return parseTree(ext, source)
}
