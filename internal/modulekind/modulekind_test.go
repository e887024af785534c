package modulekind

import (
	"testing"

	"github.com/fridacompile/gobundle/internal/testutil"
)

func TestDetectModern(t *testing.T) {
	fs := testutil.NewDefaultOverlayVFS(map[string]string{
		"/project/package.json": `{"type":"module"}`,
		"/project/src/main.js":  "export {};",
	})
	if kind := Detect(fs, "/project/src/main.js"); kind != Modern {
		t.Fatalf("expected Modern, got %s", kind)
	}
}

func TestDetectLegacyWhenTypeCommonJS(t *testing.T) {
	fs := testutil.NewDefaultOverlayVFS(map[string]string{
		"/project/package.json": `{"type":"commonjs"}`,
		"/project/src/main.js":  "module.exports = {};",
	})
	if kind := Detect(fs, "/project/src/main.js"); kind != Legacy {
		t.Fatalf("expected Legacy, got %s", kind)
	}
}

func TestDetectLegacyWhenNoDescriptor(t *testing.T) {
	fs := testutil.NewDefaultOverlayVFS(map[string]string{
		"/project/src/main.js": "module.exports = {};",
	})
	if kind := Detect(fs, "/project/src/main.js"); kind != Legacy {
		t.Fatalf("expected Legacy with no ancestor package.json, got %s", kind)
	}
}

func TestDetectStopsAtNearestDescriptor(t *testing.T) {
	fs := testutil.NewDefaultOverlayVFS(map[string]string{
		"/project/package.json":     `{"type":"module"}`,
		"/project/lib/package.json": `{"type":"commonjs"}`,
		"/project/lib/main.js":      "module.exports = {};",
	})
	if kind := Detect(fs, "/project/lib/main.js"); kind != Legacy {
		t.Fatalf("expected nearest descriptor (commonjs) to win, got %s", kind)
	}
}
