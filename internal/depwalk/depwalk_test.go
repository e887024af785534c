package depwalk_test

import (
	"path"
	"runtime"
	"testing"

	"github.com/microsoft/typescript-go/shim/bundled"
	shimcompiler "github.com/microsoft/typescript-go/shim/compiler"
	"github.com/microsoft/typescript-go/shim/core"
	"github.com/microsoft/typescript-go/shim/tsoptions"
	"github.com/microsoft/typescript-go/shim/tspath"

	"github.com/fridacompile/gobundle/internal/depwalk"
	"github.com/fridacompile/gobundle/internal/testutil"
)

func testDir() string {
	_, filename, _, _ := runtime.Caller(0)
	return path.Dir(filename)
}

func walk(t *testing.T, fileName, source string) []depwalk.Specifier {
	t.Helper()
	rootDir := testDir()
	filePath := tspath.ResolvePath(rootDir, fileName)

	fs := testutil.NewDefaultOverlayVFS(map[string]string{filePath: source})
	host := shimcompiler.NewCompilerHost(rootDir, fs, bundled.LibPath(), nil, nil)

	configParseResult, diags := tsoptions.GetParsedCommandLineOfConfigFile("tsconfig.json", &core.CompilerOptions{}, nil, host, nil)
	if len(diags) > 0 {
		t.Fatalf("tsconfig parse errors: %v", diags[0].String())
	}

	program := shimcompiler.NewProgram(shimcompiler.ProgramOptions{
		Config:         configParseResult,
		SingleThreaded: core.TSTrue,
		Host:           host,
	})
	if program == nil {
		t.Fatal("failed to create program")
	}
	program.BindSourceFiles()

	sf := program.GetSourceFile(fileName)
	if sf == nil {
		t.Fatalf("source file %q not found", fileName)
	}

	return depwalk.Walk(sf, path.Dir(filePath))
}

func TestWalkRelativeImport(t *testing.T) {
	specs := walk(t, "main.ts", `import { helper } from "./util";`)
	if len(specs) != 1 {
		t.Fatalf("expected 1 specifier, got %d", len(specs))
	}
	if !specs[0].Relative {
		t.Fatalf("expected relative specifier")
	}
}

func TestWalkBareImport(t *testing.T) {
	specs := walk(t, "main.ts", `import { z } from "zod";`)
	if len(specs) != 1 {
		t.Fatalf("expected 1 specifier, got %d", len(specs))
	}
	if specs[0].Relative {
		t.Fatalf("expected bare specifier")
	}
	if specs[0].Path != "zod" {
		t.Fatalf("unexpected path: %s", specs[0].Path)
	}
}

func TestWalkJSONImport(t *testing.T) {
	specs := walk(t, "main.ts", `import data from "./data.json";`)
	if len(specs) != 1 || !specs[0].IsJSON {
		t.Fatalf("expected a json specifier, got %+v", specs)
	}
}

func TestWalkExportFrom(t *testing.T) {
	specs := walk(t, "main.ts", `export { helper } from "./util";`)
	if len(specs) != 1 || !specs[0].Relative {
		t.Fatalf("expected 1 relative specifier from export-from, got %+v", specs)
	}
}

func TestWalkNoSpecifiers(t *testing.T) {
	specs := walk(t, "main.ts", `const x = 1; export { x };`)
	if len(specs) != 0 {
		t.Fatalf("expected no specifiers, got %+v", specs)
	}
}

func TestWalkTextRequire(t *testing.T) {
	specs := depwalk.WalkText(`const util = require("./util.js");`, "/project/src")
	if len(specs) != 1 || !specs[0].Relative {
		t.Fatalf("expected 1 relative specifier, got %+v", specs)
	}
}

func TestWalkTextBareFrom(t *testing.T) {
	specs := depwalk.WalkText(`import { z } from "zod";`, "/project/src")
	if len(specs) != 1 || specs[0].Relative || specs[0].Path != "zod" {
		t.Fatalf("unexpected specifiers: %+v", specs)
	}
}
