package bundler

import (
	"os"
	"path/filepath"
)

// CompilerRootEnvVar names the environment variable that, when set,
// pins the compiler root to the fixed symbolic path "/frida-compile"
// rather than deriving it from the running executable's location
// (spec.md §6).
const CompilerRootEnvVar = "FBUNDLE_COMPILER_ROOT"

const symbolicCompilerRoot = "/frida-compile"

// CompilerRoot derives the process-wide compiler root: the symbolic
// root when CompilerRootEnvVar is set, else the directory two levels
// above the running executable.
func CompilerRoot() (string, error) {
	if _, ok := os.LookupEnv(CompilerRootEnvVar); ok {
		return symbolicCompilerRoot, nil
	}

	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(filepath.Dir(exe)), nil
}

// AssetSubPathRoots finds which of roots is the longest (most specific)
// prefix of p, per the "Asset name derivation" rule in spec.md §3: every
// asset's name is p stripped of whichever candidate root matches it best,
// so a file under a nested modules directory names under that directory
// rather than the wider compiler/project root it also falls under. It
// returns ok=false when no candidate root is a prefix of p.
func AssetSubPathRoots(p string, roots ...string) (root string, ok bool) {
	var best string
	for _, r := range roots {
		if r == "" {
			continue
		}
		if rel, err := filepath.Rel(r, p); err == nil && rel != ".." && !hasParentPrefix(rel) {
			if len(r) > len(best) {
				best = r
			}
		}
	}
	if best == "" {
		return "", false
	}
	return best, true
}

func hasParentPrefix(rel string) bool {
	return len(rel) >= 2 && rel[:2] == ".."+string(filepath.Separator)
}
