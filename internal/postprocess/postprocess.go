// Package postprocess implements the strict-mode removal transformer and
// the Post-Processor pass that runs over every ".js" asset before
// serialization: dropping the sourceMappingURL comment, and — when
// minification is enabled — invoking the minifier and fusing its map.
package postprocess

import (
	"path/filepath"
	"strings"

	"github.com/fridacompile/gobundle/internal/minify"
	"github.com/fridacompile/gobundle/internal/pathutil"
)

const useStrictDirective = `"use strict"`

// StripUseStrict deletes a top-level expression statement whose
// expression is the string literal "use strict", operating on the
// compiler's emitted text directly rather than re-parsing (spec.md §4.7).
// It recognizes the directive at the start of the file, optionally
// preceded only by other string-literal directives, and removes just
// that one statement and its terminating semicolon/newline.
func StripUseStrict(text string) string {
	lines := strings.SplitN(text, "\n", -1)
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if isUseStrictStatement(trimmed) {
			return strings.Join(append(append([]string{}, lines[:i]...), lines[i+1:]...), "\n")
		}
		// First non-blank, non-directive line ends the directive prologue.
		if !isDirectiveLike(trimmed) {
			break
		}
	}
	return text
}

func isUseStrictStatement(line string) bool {
	stripped := strings.TrimSuffix(line, ";")
	return stripped == useStrictDirective || stripped == `'use strict'`
}

func isDirectiveLike(line string) bool {
	if len(line) < 2 {
		return false
	}
	quote := line[0]
	if quote != '"' && quote != '\'' {
		return false
	}
	stripped := strings.TrimSuffix(line, ";")
	return len(stripped) >= 2 && stripped[len(stripped)-1] == quote
}

const sourceMappingURLPrefix = "//# sourceMappingURL="

// StripSourceMappingURL removes a trailing sourceMappingURL comment line,
// if present, since the map travels as its own independent asset
// (spec.md §4.9).
func StripSourceMappingURL(text string) string {
	trimmed := strings.TrimRight(text, "\n")
	idx := strings.LastIndex(trimmed, "\n")
	lastLine := trimmed
	if idx >= 0 {
		lastLine = trimmed[idx+1:]
	}
	if !strings.HasPrefix(strings.TrimSpace(lastLine), sourceMappingURLPrefix) {
		return text
	}
	if idx < 0 {
		return ""
	}
	return trimmed[:idx]
}

// Asset is one ".js" asset the Post-Processor considers, along with its
// origin (the absolute host path it was compiled or copied from) and any
// prior ".map" asset bytes emitted alongside it.
type Asset struct {
	Name     string
	Text     string
	Origin   string
	PriorMap []byte
}

// Result is the Post-Processor's output for one asset: the rewritten
// text, and — when minification produced one — the fused source map to
// install as a sibling ".map" asset.
type Result struct {
	Text string
	Map  *minify.SourceMap
}

// Process applies spec.md §4.9 to a single asset: strip any trailing
// sourceMappingURL comment, then, if m is non-nil, minify with the fixed
// options and fuse the map.
func Process(asset Asset, m minify.Minifier) (Result, error) {
	text := StripSourceMappingURL(asset.Text)

	if m == nil {
		return Result{Text: text}, nil
	}

	root := pathutil.EnsureLeadingSlash(pathutil.ToPortable(filepath.Dir(asset.Origin))) + "/"
	in := minify.Input{
		Code:     text,
		PriorMap: asset.PriorMap,
		MapRoot:  root,
		MapFile:  filepath.Base(asset.Name),
	}

	out, err := m.Minify(minify.DefaultOptions(), in)
	if err != nil {
		return Result{}, err
	}

	if out.Map != nil {
		minify.StripSourcesRoot(out.Map, root)
	}

	return Result{Text: out.Code, Map: out.Map}, nil
}
