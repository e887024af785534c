// Package module holds the Module record the bundler's closure loop
// accumulates: one immutable entry per discovered source file, carrying its
// parsed representation and module-system classification.
package module

import (
	"github.com/microsoft/typescript-go/shim/ast"

	"github.com/fridacompile/gobundle/internal/modulekind"
)

// Module is created when first encountered by the Dependency Walker, or as
// a compiled entrypoint. It is never mutated after insertion; it is
// destroyed only when the asset table is reset by invalidation.
type Module struct {
	Kind modulekind.Kind
	Path string // absolute host path
	File *ast.SourceFile
}

// New constructs a Module record. File is nil for modules the closure loop
// resolves and reads directly from disk (§4.8); their text is scanned with
// depwalk.WalkText instead of an AST walk.
func New(kind modulekind.Kind, path string, file *ast.SourceFile) *Module {
	return &Module{Kind: kind, Path: path, File: file}
}
