// Package jsonmod encodes a JSON asset's text as an ES module: a default
// export of the parsed value, plus one named export per top-level object
// property whose name is a valid modern-dialect identifier. Top-level
// property order must match the source JSON exactly, which is why
// decoding goes through go-json-experiment/json's token-level jsontext
// reader instead of encoding/json's order-losing map decode.
package jsonmod

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-json-experiment/json/jsontext"
)

// reservedWords is the fixed set of modern-dialect identifiers a named
// export must not collide with (spec.md §4.10: "reject reserved words
// under that dialect").
var reservedWords = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "debugger": true, "default": true, "delete": true, "do": true,
	"else": true, "export": true, "extends": true, "finally": true, "for": true,
	"function": true, "if": true, "import": true, "in": true, "instanceof": true,
	"new": true, "return": true, "super": true, "switch": true, "this": true,
	"throw": true, "try": true, "typeof": true, "var": true, "void": true,
	"while": true, "with": true, "yield": true, "let": true, "static": true,
	"enum": true, "await": true, "implements": true, "package": true,
	"protected": true, "interface": true, "private": true, "public": true,
	"null": true, "true": true, "false": true,
}

// Encode turns raw JSON text into the equivalent ES module source
// (spec.md §4.10).
func Encode(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)

	keys, isObject, err := topLevelKeys(trimmed)
	if err != nil {
		return "", fmt.Errorf("jsonmod: %w", err)
	}

	if !isObject {
		return fmt.Sprintf("export default %s;\n", trimmed), nil
	}

	id := freeIdentifier(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "const %s = %s;\n", id, trimmed)
	fmt.Fprintf(&b, "export default %s;\n", id)
	for _, k := range keys {
		if isValidIdentifier(k) && !reservedWords[k] {
			fmt.Fprintf(&b, "export const %s = %s.%s;\n", k, id, k)
		}
	}
	return b.String(), nil
}

// freeIdentifier picks "d", or the first "d1", "d2", ... not already used
// as a top-level property name (spec.md §4.10).
func freeIdentifier(keys []string) string {
	used := make(map[string]bool, len(keys))
	for _, k := range keys {
		used[k] = true
	}
	if !used["d"] {
		return "d"
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("d%d", i)
		if !used[candidate] {
			return candidate
		}
	}
}

// topLevelKeys reports whether raw's top-level value is a non-null
// object, and if so its property names in source order.
func topLevelKeys(raw string) (keys []string, isObject bool, err error) {
	dec := jsontext.NewDecoder(bytes.NewReader([]byte(raw)))

	tok, err := dec.ReadToken()
	if err != nil {
		return nil, false, err
	}
	if tok.Kind() != '{' {
		return nil, false, nil
	}

	for {
		nameTok, err := dec.ReadToken()
		if err != nil {
			return nil, false, err
		}
		if nameTok.Kind() == '}' {
			break
		}
		keys = append(keys, nameTok.String())
		if err := dec.SkipValue(); err != nil {
			return nil, false, err
		}
	}
	return keys, true, nil
}

// isValidIdentifier reports whether name is a syntactically valid modern
// identifier: starts with a letter, "_" or "$", followed by letters,
// digits, "_" or "$". This does not attempt full Unicode ID_Start/ID_Continue
// classification, matching the ASCII-identifier property names JSON
// configuration objects use in practice.
func isValidIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_', r == '$':
			// valid start and continuation
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
