// Package modulekind classifies a source file as legacy or modern by walking
// upward from its directory looking for a package.json whose "type" field
// equals "module".
package modulekind

import (
	"encoding/json"
	"path/filepath"

	"github.com/microsoft/typescript-go/shim/vfs"
)

// Kind is the module system a file belongs to.
type Kind int

const (
	// Legacy is CommonJS-shaped: no ancestor package.json, or one whose
	// "type" field is anything other than "module".
	Legacy Kind = iota
	// Modern is ESM-shaped: the nearest ancestor package.json declares
	// "type": "module".
	Modern
)

func (k Kind) String() string {
	if k == Modern {
		return "modern"
	}
	return "legacy"
}

type packageDescriptor struct {
	Type string `json:"type"`
}

// Detect walks parent directories of filePath looking for the nearest
// package.json. It stops at the first one found (or at the filesystem
// root). A file with no ancestor descriptor is Legacy.
func Detect(fs vfs.FS, filePath string) Kind {
	dir := filepath.Dir(filePath)
	for {
		candidate := filepath.Join(dir, "package.json")
		if fs.FileExists(candidate) {
			return kindFromDescriptor(fs, candidate)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Legacy
		}
		dir = parent
	}
}

func kindFromDescriptor(fs vfs.FS, path string) Kind {
	content, ok := fs.ReadFile(path)
	if !ok {
		return Legacy
	}

	var desc packageDescriptor
	if err := json.Unmarshal([]byte(content), &desc); err != nil {
		return Legacy
	}

	if desc.Type == "module" {
		return Modern
	}
	return Legacy
}
