package shimreg

import (
	"testing"

	"github.com/fridacompile/gobundle/internal/testutil"
)

func TestHas(t *testing.T) {
	if !Has("fs") {
		t.Fatalf("expected fs to be a known shim")
	}
	if Has("left-pad") {
		t.Fatalf("did not expect left-pad to be a known shim")
	}
}

func TestLocateDirectoryShim(t *testing.T) {
	got := Locate("/modules", "fs", nil)
	want := "/modules/frida-fs"
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestLocateDirectoryShimWithSubPath(t *testing.T) {
	got := Locate("/modules", "buffer", []string{"index.js"})
	want := "/modules/frida-buffer/index.js"
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestLocatePassthroughFileShim(t *testing.T) {
	// base64-js maps to itself as a bare name; Locate should not treat it
	// as a ".js" file since the mapped shim name has no extension.
	got := Locate("/modules", "base64-js", nil)
	want := "/modules/base64-js"
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestDirsRootPrefersCompilerDirWhenPresent(t *testing.T) {
	fs := testutil.NewDefaultOverlayVFS(map[string]string{
		"/compiler-modules/frida-fs/index.js": "module.exports = {};",
	})
	dirs := Dirs{CompilerModulesDir: "/compiler-modules", ProjectModulesDir: "/project-modules"}
	if root := dirs.Root(fs); root != "/compiler-modules" {
		t.Fatalf("expected compiler modules dir, got %s", root)
	}
}

func TestDirsRootFallsBackToProjectDir(t *testing.T) {
	fs := testutil.NewDefaultOverlayVFS(map[string]string{
		"/project-modules/frida-fs/index.js": "module.exports = {};",
	})
	dirs := Dirs{CompilerModulesDir: "/compiler-modules-missing", ProjectModulesDir: "/project-modules"}
	if root := dirs.Root(fs); root != "/project-modules" {
		t.Fatalf("expected project modules dir fallback, got %s", root)
	}
}
