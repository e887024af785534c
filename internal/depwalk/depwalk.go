// Package depwalk extracts the module specifiers a compiled source file
// references — from import declarations and re-exporting export
// declarations — and turns each into either a resolved relative path or a
// bare specifier destined for the Resolver.
package depwalk

import (
	"path/filepath"
	"strings"

	"github.com/microsoft/typescript-go/shim/ast"
)

// Specifier is one module reference found in a source file.
type Specifier struct {
	// Relative is true when the written specifier began with ".": Path
	// already holds its resolved absolute form. When false, Path holds the
	// bare specifier text, unresolved, for the Resolver to handle.
	Relative bool
	Path     string
	IsJSON   bool
}

// Walk traverses sf's top-level statements, recursing into each for nested
// import/export forms the way the teacher's marker-call extractor does,
// and returns every module specifier referenced by an import declaration
// or a re-exporting export declaration (spec.md §4.5).
func Walk(sf *ast.SourceFile, requesterDir string) []Specifier {
	var out []Specifier
	for _, stmt := range sf.Statements.Nodes {
		walkNode(stmt, requesterDir, &out)
	}
	return out
}

func walkNode(node *ast.Node, requesterDir string, out *[]Specifier) {
	if node == nil {
		return
	}

	switch node.Kind {
	case ast.KindImportDeclaration:
		if spec := moduleSpecifierText(node.AsImportDeclaration().ModuleSpecifier); spec != "" {
			*out = append(*out, classify(spec, requesterDir))
		}
	case ast.KindExportDeclaration:
		if spec := moduleSpecifierText(node.AsExportDeclaration().ModuleSpecifier); spec != "" {
			*out = append(*out, classify(spec, requesterDir))
		}
	}

	node.ForEachChild(func(child *ast.Node) bool {
		walkNode(child, requesterDir, out)
		return false
	})
}

func moduleSpecifierText(specifier *ast.Node) string {
	if specifier == nil || specifier.Kind != ast.KindStringLiteral {
		return ""
	}
	return specifier.AsStringLiteral().Text
}

// classify resolves a relative specifier against requesterDir and marks
// whether it names a JSON asset (spec.md §4.5).
func classify(specifier, requesterDir string) Specifier {
	isJSON := strings.HasSuffix(specifier, ".json")
	if strings.HasPrefix(specifier, ".") {
		resolved := filepath.Join(requesterDir, filepath.FromSlash(specifier))
		return Specifier{Relative: true, Path: resolved, IsJSON: isJSON}
	}
	return Specifier{Relative: false, Path: specifier, IsJSON: isJSON}
}

// WalkText scans already-compiled plain JavaScript text for import/export
// "from" specifiers and require() calls. It is used for files discovered
// outside the typed-source compiler's own program — shims and package
// entries read directly off disk — which have no ast.SourceFile to walk,
// following the same line-scanning approach the teacher uses to rewrite
// import specifiers post-emit.
func WalkText(text, requesterDir string) []Specifier {
	var out []Specifier
	for _, line := range strings.Split(text, "\n") {
		for _, spec := range specifiersInLine(line) {
			out = append(out, classify(spec, requesterDir))
		}
	}
	return out
}

func specifiersInLine(line string) []string {
	var specs []string
	for _, pattern := range []string{`require("`, `require('`, `from "`, `from '`} {
		idx := strings.Index(line, pattern)
		if idx < 0 {
			continue
		}
		quote := pattern[len(pattern)-1]
		start := idx + len(pattern)
		end := strings.IndexByte(line[start:], quote)
		if end < 0 {
			continue
		}
		specs = append(specs, line[start:start+end])
	}
	return specs
}
