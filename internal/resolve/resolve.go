// Package resolve turns a module specifier, plus the path of the module
// that referenced it, into an on-disk path — consulting the Shim Registry
// first, then falling back to the compiler's or the project's installed
// modules directory, and finally the package.json "module"/"main"
// convention. It is the sole place that decides whether an asset needs an
// alias to remain reachable under the specifier a consumer actually wrote.
package resolve

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/microsoft/typescript-go/shim/vfs"

	"github.com/fridacompile/gobundle/internal/pathutil"
	"github.com/fridacompile/gobundle/internal/shimreg"
)

// Roots names the directories a bare specifier can resolve under.
type Roots struct {
	CompilerRoot        string // symbolic root, e.g. "/frida-compile"
	CompilerModulesDir  string
	ProjectModulesDir   string
	ProjectLinkedCompilerDir string // project's modules dir's own "frida-compile" link, if any
}

// Result is the Resolver's output for one specifier.
type Result struct {
	ResolvedPath string
	AliasNeeded  bool
	Missing      bool
}

// Resolve implements spec.md §4.4 steps 1-7. Alias registration (step 8) is
// left to the caller, which holds the asset table the alias is recorded
// into and computes the asset name from ResolvedPath.
func Resolve(fs vfs.FS, roots Roots, specifier, requesterPath string) Result {
	if filepath.IsAbs(specifier) {
		return finishDirectory(fs, specifier, false)
	}

	pkgName, subPath := splitSpecifier(specifier)

	if shimreg.Has(pkgName) {
		dirs := shimreg.Dirs{CompilerModulesDir: roots.CompilerModulesDir, ProjectModulesDir: roots.ProjectModulesDir}
		root := dirs.Root(fs)
		resolved := shimreg.Locate(root, pkgName, subPath)
		return finishDirectory(fs, resolved, true)
	}

	var base string
	if underCompilerRoot(requesterPath, roots) {
		base = roots.CompilerModulesDir
	} else {
		base = roots.ProjectModulesDir
	}
	parts := append([]string{base, pkgName}, subPath...)
	resolved := filepath.Join(parts...)
	aliasNeeded := len(subPath) > 0
	return finishDirectory(fs, resolved, aliasNeeded)
}

// underCompilerRoot reports whether requesterPath lies under the compiler
// root, or under the project's modules directory's own linked
// "frida-compile" subdirectory.
func underCompilerRoot(requesterPath string, roots Roots) bool {
	if roots.CompilerRoot != "" && isUnder(requesterPath, roots.CompilerRoot) {
		return true
	}
	if roots.ProjectLinkedCompilerDir != "" && isUnder(requesterPath, roots.ProjectLinkedCompilerDir) {
		return true
	}
	return false
}

func isUnder(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// splitSpecifier divides a bare specifier into its package name and the
// remaining path segments, honoring scoped package names ("@scope/name").
func splitSpecifier(specifier string) (pkgName string, subPath []string) {
	tokens := strings.Split(specifier, "/")
	if strings.HasPrefix(tokens[0], "@") && len(tokens) > 1 {
		pkgName = tokens[0] + "/" + tokens[1]
		if len(tokens) > 2 {
			subPath = tokens[2:]
		}
		return pkgName, subPath
	}
	pkgName = tokens[0]
	if len(tokens) > 1 {
		subPath = tokens[1:]
	}
	return pkgName, subPath
}

type packageEntry struct {
	Main   string `json:"main"`
	Module string `json:"module"`
}

// finishDirectory applies steps 5-7: resolving a directory via its
// package.json, appending "index.js" where needed, and the final ".js"
// fallback / missing determination.
func finishDirectory(fs vfs.FS, resolvedPath string, aliasNeeded bool) Result {
	if fs.DirectoryExists(resolvedPath) {
		descriptor := filepath.Join(resolvedPath, "package.json")
		if fs.FileExists(descriptor) {
			entry := filepath.Join(resolvedPath, "index.js")
			if content, ok := fs.ReadFile(descriptor); ok {
				var pkg packageEntry
				if err := json.Unmarshal([]byte(content), &pkg); err == nil {
					switch {
					case pkg.Module != "":
						entry = filepath.Join(resolvedPath, pkg.Module)
					case pkg.Main != "":
						entry = filepath.Join(resolvedPath, pkg.Main)
					}
				}
			}
			if fs.DirectoryExists(entry) {
				entry = filepath.Join(entry, "index.js")
			}
			resolvedPath = entry
			aliasNeeded = true
		} else {
			resolvedPath = filepath.Join(resolvedPath, "index.js")
		}
	}

	if !fs.FileExists(resolvedPath) {
		withJS := resolvedPath + ".js"
		if fs.FileExists(withJS) {
			resolvedPath = withJS
		} else {
			return Result{ResolvedPath: resolvedPath, AliasNeeded: aliasNeeded, Missing: true}
		}
	}

	return Result{ResolvedPath: resolvedPath, AliasNeeded: aliasNeeded}
}

// AssetSubPath computes resolvedPath's portable path relative to whichever
// root (project or compiler modules directory) it falls under, for use as
// the alias key's asset name (spec.md §4.4 step 8).
func AssetSubPath(resolvedPath string, roots Roots) string {
	for _, root := range []string{roots.CompilerModulesDir, roots.ProjectModulesDir} {
		if root == "" {
			continue
		}
		if rel, err := filepath.Rel(root, resolvedPath); err == nil && !strings.HasPrefix(rel, "..") {
			return pathutil.EnsureLeadingSlash(pathutil.ToPortable(rel))
		}
	}
	return pathutil.EnsureLeadingSlash(pathutil.ToPortable(resolvedPath))
}
