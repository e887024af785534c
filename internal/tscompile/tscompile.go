// Package tscompile wraps the TypeScript compiler shims into the Compile
// Front: it loads project compiler options over a fixed modern default,
// emits the program through a write-file sink that captures output
// in memory instead of touching disk, and exposes the resulting modern
// source files for the Dependency Walker.
package tscompile

import (
	"context"
	"fmt"

	"github.com/microsoft/typescript-go/shim/ast"
	"github.com/microsoft/typescript-go/shim/bundled"
	shimcompiler "github.com/microsoft/typescript-go/shim/compiler"
	"github.com/microsoft/typescript-go/shim/core"
	"github.com/microsoft/typescript-go/shim/tsoptions"
	"github.com/microsoft/typescript-go/shim/tspath"
	"github.com/microsoft/typescript-go/shim/vfs"
	"github.com/microsoft/typescript-go/shim/vfs/cachedvfs"
	"github.com/microsoft/typescript-go/shim/vfs/osvfs"
)

// Diagnostic is a flattened compiler or emit diagnostic. Raw retains the
// original compiler diagnostic so callers that want tsgo-style pretty
// printing (code snippets, squiggles) can still reach position data; it
// is nil for diagnostics that never had a source file (e.g. "failed to
// create program").
type Diagnostic struct {
	FilePath string
	Message  string
	Raw      *ast.Diagnostic
}

func (d Diagnostic) String() string {
	if d.FilePath != "" {
		return fmt.Sprintf("%s: %s", d.FilePath, d.Message)
	}
	return d.Message
}

// CreateDefaultFS wraps the OS filesystem with the bundled TypeScript lib
// files and a cache, matching the compiler's own default host setup.
func CreateDefaultFS() vfs.FS {
	return bundled.WrapFS(cachedvfs.From(osvfs.FS()))
}

// CreateHost builds a compiler host rooted at cwd over fs.
func CreateHost(cwd string, fs vfs.FS) shimcompiler.CompilerHost {
	return shimcompiler.NewCompilerHost(cwd, fs, bundled.LibPath(), nil, nil)
}

// Options carries the overrides spec.md §4.6 applies on top of whatever
// the project's own tsconfig specifies.
type Options struct {
	ProjectRoot     string
	IncludeSourceMaps bool
}

// defaultCompilerOptions is the modern baseline spec.md §4.6 loads the
// project configuration over: modern target and module kind, modern
// module resolution, JSON imports enabled, legacy sources permitted,
// strictness on.
func defaultCompilerOptions() *core.CompilerOptions {
	return &core.CompilerOptions{
		Target:                     core.ScriptTargetESNext,
		Module:                     core.ModuleKindESNext,
		ModuleResolution:           core.ModuleResolutionKindBundler,
		ResolveJsonModule:          core.TSTrue,
		AllowJs:                    core.TSTrue,
		Strict:                     core.TSTrue,
	}
}

// LoadConfig parses the project's tsconfig at tsconfigPath and applies the
// Compile Front's fixed overrides. The file is always parsed: a failure to
// read or parse it is returned as diagnostics, and there is no fallback to
// the defaults alone for a project without one. The overrides: emit is always
// enabled, rootDir is pinned to the project root, outDir is the portable
// root, and — when source maps are requested — sourceRoot is the project
// root with separate (non-inline) map files.
func LoadConfig(fs vfs.FS, host shimcompiler.CompilerHost, tsconfigPath string, opts Options) (*tsoptions.ParsedCommandLine, []Diagnostic) {
	base := defaultCompilerOptions()

	parsed, diags := tsoptions.GetParsedCommandLineOfConfigFile(tsconfigPath, base, nil, host, nil)
	if len(diags) > 0 {
		return nil, convertDiagnostics(diags)
	}

	co := parsed.CompilerOptions()
	co.NoEmit = core.TSFalse
	co.RootDir = opts.ProjectRoot
	co.OutDir = "/"
	if opts.IncludeSourceMaps {
		co.SourceRoot = opts.ProjectRoot
		co.SourceMap = core.TSTrue
		co.InlineSourceMap = core.TSFalse
	}

	return parsed, nil
}

// CreateProgram constructs a program from a parsed config.
func CreateProgram(parsed *tsoptions.ParsedCommandLine, host shimcompiler.CompilerHost) (*shimcompiler.Program, []Diagnostic) {
	program := shimcompiler.NewProgram(shimcompiler.ProgramOptions{
		Config:                      parsed,
		SingleThreaded:              core.TSTrue,
		Host:                        host,
		UseSourceOfProjectReference: true,
	})
	if program == nil {
		return nil, []Diagnostic{{Message: "failed to create program"}}
	}

	if diags := program.GetProgramDiagnostics(); len(diags) > 0 {
		return nil, convertDiagnostics(diags)
	}

	program.BindSourceFiles()
	return program, nil
}

// Sink is the write-file callback installed during Emit; it receives each
// emitted asset's portable-relative name (fileName, as produced by the
// compiler under outDir "/") and its text.
type Sink func(fileName string, text string)

// Emit runs the program's emitter once over every source file of the
// program, i.e. the files the loaded tsconfig selects; it is not limited
// to the entrypoint. Every write goes through sink instead of the real
// filesystem (spec.md §4.6).
func Emit(ctx context.Context, program *shimcompiler.Program, sink Sink) []Diagnostic {
	writeFile := func(fileName string, text string, bom bool, data *shimcompiler.WriteFileData) error {
		sink(fileName, text)
		return nil
	}

	result := program.Emit(ctx, shimcompiler.EmitOptions{WriteFile: writeFile})
	if len(result.Diagnostics) > 0 {
		return convertDiagnostics(result.Diagnostics)
	}
	return nil
}

// SourceFiles returns every non-declaration source file currently known to
// the program.
func SourceFiles(program *shimcompiler.Program) []*ast.SourceFile {
	var files []*ast.SourceFile
	for _, f := range program.GetSourceFiles() {
		if !f.IsDeclarationFile {
			files = append(files, f)
		}
	}
	return files
}

// ResolvePath joins a path against cwd the way tsoptions expects paths to
// be resolved before being handed to the host.
func ResolvePath(cwd, p string) string {
	return tspath.ResolvePath(cwd, p)
}

func convertDiagnostics(tsdiags []*ast.Diagnostic) []Diagnostic {
	diags := make([]Diagnostic, len(tsdiags))
	for i, d := range tsdiags {
		var filePath string
		if d.File() != nil {
			filePath = d.File().FileName()
		}
		diags[i] = Diagnostic{FilePath: filePath, Message: d.String(), Raw: d}
	}
	return diags
}
