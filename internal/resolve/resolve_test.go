package resolve

import (
	"testing"

	"github.com/fridacompile/gobundle/internal/testutil"
)

func TestResolveShimPackage(t *testing.T) {
	fs := testutil.NewDefaultOverlayVFS(map[string]string{
		"/compiler-modules/frida-fs/index.js": "module.exports = {};",
	})
	roots := Roots{CompilerModulesDir: "/compiler-modules", ProjectModulesDir: "/project-modules"}

	result := Resolve(fs, roots, "fs", "/project/src/main.ts")
	if result.Missing {
		t.Fatalf("expected fs shim to resolve, got missing")
	}
	if result.ResolvedPath != "/compiler-modules/frida-fs/index.js" {
		t.Fatalf("unexpected resolved path: %s", result.ResolvedPath)
	}
	if !result.AliasNeeded {
		t.Fatalf("expected alias needed for shim resolution")
	}
}

func TestResolveAbsoluteSpecifier(t *testing.T) {
	fs := testutil.NewDefaultOverlayVFS(map[string]string{
		"/project/src/util.js": "export const x = 1;",
	})
	result := Resolve(fs, Roots{}, "/project/src/util.js", "/project/src/main.js")
	if result.Missing || result.AliasNeeded {
		t.Fatalf("unexpected result for absolute specifier: %+v", result)
	}
	if result.ResolvedPath != "/project/src/util.js" {
		t.Fatalf("unexpected resolved path: %s", result.ResolvedPath)
	}
}

func TestResolveProjectPackageWithSubPath(t *testing.T) {
	fs := testutil.NewDefaultOverlayVFS(map[string]string{
		"/project-modules/lodash/get.js": "module.exports = function(){};",
	})
	roots := Roots{ProjectModulesDir: "/project-modules"}

	result := Resolve(fs, roots, "lodash/get", "/project/src/main.js")
	if result.Missing {
		t.Fatalf("expected lodash/get to resolve")
	}
	if result.ResolvedPath != "/project-modules/lodash/get.js" {
		t.Fatalf("unexpected resolved path: %s", result.ResolvedPath)
	}
	if !result.AliasNeeded {
		t.Fatalf("expected alias needed when subPath is nonempty")
	}
}

func TestResolvePackageJSONModuleField(t *testing.T) {
	fs := testutil.NewDefaultOverlayVFS(map[string]string{
		"/project-modules/pkg/package.json": `{"module":"esm/index.js","main":"cjs/index.js"}`,
		"/project-modules/pkg/esm/index.js": "export default {};",
	})
	roots := Roots{ProjectModulesDir: "/project-modules"}

	result := Resolve(fs, roots, "pkg", "/project/src/main.js")
	if result.Missing {
		t.Fatalf("expected pkg to resolve via module field")
	}
	if result.ResolvedPath != "/project-modules/pkg/esm/index.js" {
		t.Fatalf("unexpected resolved path: %s", result.ResolvedPath)
	}
	if !result.AliasNeeded {
		t.Fatalf("expected alias needed for directory resolution via descriptor")
	}
}

func TestResolveMissing(t *testing.T) {
	fs := testutil.NewDefaultOverlayVFS(map[string]string{})
	roots := Roots{ProjectModulesDir: "/project-modules"}

	result := Resolve(fs, roots, "nope", "/project/src/main.js")
	if !result.Missing {
		t.Fatalf("expected missing result for nonexistent package")
	}
}
