// Package bundler drives the closure loop (spec.md §4.8): it runs the
// Compile Front over every source file the project's tsconfig selects (the
// entrypoint itself is only checked to lie under the project root and
// placed first in the artifact), feeds every compiled file to the
// Dependency Walker, resolves each discovered specifier, reads and
// classifies any externally-discovered file, and repeats until the
// worklist is empty. It then runs the Post-Processor and the Artifact
// Serializer over the closed Asset Table.
package bundler

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	shimcompiler "github.com/microsoft/typescript-go/shim/compiler"
	"github.com/microsoft/typescript-go/shim/vfs"

	"github.com/fridacompile/gobundle/internal/artifact"
	"github.com/fridacompile/gobundle/internal/assettable"
	"github.com/fridacompile/gobundle/internal/depwalk"
	"github.com/fridacompile/gobundle/internal/jsonmod"
	"github.com/fridacompile/gobundle/internal/legacy"
	"github.com/fridacompile/gobundle/internal/minify"
	"github.com/fridacompile/gobundle/internal/module"
	"github.com/fridacompile/gobundle/internal/modulekind"
	"github.com/fridacompile/gobundle/internal/pathutil"
	"github.com/fridacompile/gobundle/internal/postprocess"
	"github.com/fridacompile/gobundle/internal/resolve"
	"github.com/fridacompile/gobundle/internal/tscompile"
)

var sourceExts = []string{".tsx", ".mts", ".cts", ".ts"}

// Request carries everything Bundle needs beyond the compiler host/program
// (spec.md §6 External Interfaces).
type Request struct {
	FS              vfs.FS
	ProjectRoot     string
	Entrypoint      string // absolute, or relative to ProjectRoot
	Roots           resolve.Roots
	SourceMaps      bool
	Compress        bool
	Transformer     legacy.Transformer
	Minifier        minify.Minifier
	TSConfigPath    string // relative to ProjectRoot; defaults to "tsconfig.json"

	// OnEmitDiagnostics, when set, receives every non-fatal diagnostic the
	// emitter produced (type errors do not stop emit; spec.md §4.6). Callers
	// use this to surface compiler diagnostics without Bundle itself taking
	// a dependency on how they should be printed.
	OnEmitDiagnostics func([]tscompile.Diagnostic)
}

// Bundle runs the full pipeline and returns the serialized artifact.
func Bundle(ctx context.Context, req Request) ([]byte, error) {
	entrypoint, err := resolveEntrypoint(req)
	if err != nil {
		return nil, err
	}

	tsconfigPath := req.TSConfigPath
	if tsconfigPath == "" {
		tsconfigPath = "tsconfig.json"
	}

	host := tscompile.CreateHost(req.ProjectRoot, req.FS)
	parsed, diags := tscompile.LoadConfig(req.FS, host, tsconfigPath, tscompile.Options{
		ProjectRoot:       req.ProjectRoot,
		IncludeSourceMaps: req.SourceMaps,
	})
	if len(diags) > 0 {
		return nil, fmt.Errorf("bundler: tsconfig errors: %v", diags)
	}

	program, diags := tscompile.CreateProgram(parsed, host)
	if len(diags) > 0 {
		return nil, fmt.Errorf("bundler: program creation errors: %v", diags)
	}

	table := assettable.New()
	sourceToOutput := buildSourceToOutputMap(program, req.ProjectRoot)

	emitDiags := tscompile.Emit(ctx, program, func(fileName, text string) {
		origin := originFor(fileName, sourceToOutput)
		table.Put(fileName, []byte(text), origin)
	})
	if len(emitDiags) > 0 && req.OnEmitDiagnostics != nil {
		req.OnEmitDiagnostics(emitDiags)
	}

	for srcPath, outPath := range sourceToOutput {
		table.MarkEntrypointProcessed(srcPath)
		kind := modulekind.Detect(req.FS, srcPath)
		sourceFile := program.GetSourceFile(srcPath)
		m := module.New(kind, srcPath, sourceFile)
		enqueueDependencies(table, outPath, srcPath, m)
	}

	if err := drainClosure(req, table); err != nil {
		return nil, err
	}

	if hasLegacyModules(req.FS, table) {
		if err := runLegacyPass(ctx, req, table); err != nil {
			return nil, err
		}
	}

	if err := addUndiscoveredFiles(table, req); err != nil {
		return nil, err
	}

	entries, err := finalizeAssets(table, req, sourceToOutput[entrypoint])
	if err != nil {
		return nil, err
	}

	return artifact.Serialize(entries), nil
}

func resolveEntrypoint(req Request) (string, error) {
	entry := req.Entrypoint
	if !filepath.IsAbs(entry) {
		entry = filepath.Join(req.ProjectRoot, entry)
	}
	rel, err := filepath.Rel(req.ProjectRoot, entry)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &InvalidEntrypointError{Path: entry, ProjectRoot: req.ProjectRoot}
	}
	return entry, nil
}

// buildSourceToOutputMap mirrors the teacher's rootDir/outDir arithmetic
// with outDir pinned to "/" (spec.md §4.6): every source file's compiled
// name is its path relative to the project root, with the typed-source
// suffix rewritten to ".js".
func buildSourceToOutputMap(program *shimcompiler.Program, projectRoot string) map[string]string {
	result := make(map[string]string)
	for _, sf := range program.GetSourceFiles() {
		if sf.IsDeclarationFile {
			continue
		}
		srcName := sf.FileName()
		noExt := stripSourceExt(srcName)

		rel, err := filepath.Rel(projectRoot, noExt)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		outputPath := pathutil.EnsureLeadingSlash(pathutil.ToPortable(rel)) + ".js"
		result[srcName] = outputPath
	}
	return result
}

func stripSourceExt(p string) string {
	for _, ext := range sourceExts {
		if strings.HasSuffix(p, ext) {
			return p[:len(p)-len(ext)]
		}
	}
	return p
}

func originFor(outputName string, sourceToOutput map[string]string) string {
	for src, out := range sourceToOutput {
		if out == outputName {
			return src
		}
	}
	return ""
}

// enqueueDependencies feeds one compiled file's AST through the
// Dependency Walker and enqueues whatever it finds (spec.md §4.5, §4.8).
func enqueueDependencies(table *assettable.Table, outputName, srcPath string, requester *module.Module) {
	if requester.File == nil {
		return
	}
	specs := depwalk.Walk(requester.File, filepath.Dir(srcPath))
	enqueueSpecs(table, specs, requester)
}

func enqueueSpecs(table *assettable.Table, specs []depwalk.Specifier, requester *module.Module) {
	for _, spec := range specs {
		if spec.IsJSON {
			table.JSONFiles[spec.Path] = true
		}
		table.Enqueue(spec.Path, requester)
	}
}

// drainClosure implements spec.md §4.8: pop the worklist in insertion
// order, resolve, and either accumulate a missing specifier or read,
// classify, and re-walk the newly discovered file.
func drainClosure(req Request, table *assettable.Table) error {
	var missing []string

	for {
		entry, ok := table.PopPending()
		if !ok {
			break
		}

		// entry.Specifier may have been enqueued before the compiled file
		// it actually names was marked processed (Bundle's entrypoint loop
		// iterates sourceToOutput in map order, not dependency order): a
		// relative import of an already-compiled sibling resolves to that
		// sibling's on-disk typed-source path with its extension stripped,
		// which was never written to disk under that name — only its
		// compiled ".js" output lives in the asset table. Recognize it here
		// instead of asking the Resolver to find a file that doesn't exist.
		if table.IsProcessed(entry.Specifier) {
			continue
		}
		table.MarkProcessed(entry.Specifier)

		requesterPath := ""
		if entry.Requester != nil {
			requesterPath = entry.Requester.Path
		}

		result := resolve.Resolve(req.FS, req.Roots, entry.Specifier, requesterPath)
		if result.Missing {
			missing = append(missing, entry.Specifier)
			continue
		}

		if result.AliasNeeded {
			assetName := pathutil.EnsureLeadingSlash(resolve.AssetSubPath(result.ResolvedPath, req.Roots))
			table.Aliases[assetName] = entry.Specifier
		}

		m := module.New(modulekind.Detect(req.FS, result.ResolvedPath), result.ResolvedPath, nil)
		if err := readExternalSource(table, req.FS, result.ResolvedPath, m); err != nil {
			return err
		}
	}

	if len(missing) > 0 {
		return &UnresolvedDependenciesError{Specifiers: missing}
	}
	return nil
}

// readExternalSource reads a newly resolved file into externalSources
// (cached so repeat resolutions are free), and — for non-JSON files —
// walks its text for further specifiers to enqueue, continuing the
// closure outward from files the typed-source compiler never saw
// (spec.md §4.8).
func readExternalSource(table *assettable.Table, fs vfs.FS, path string, requester *module.Module) error {
	if _, ok := table.ExternalSources[path]; ok {
		return nil
	}
	content, ok := fs.ReadFile(path)
	if !ok {
		return &ReadFailureError{Path: path, Err: fmt.Errorf("file not found")}
	}
	table.ExternalSources[path] = content

	if strings.HasSuffix(path, ".json") {
		table.JSONFiles[path] = true
		return nil
	}

	specs := depwalk.WalkText(content, filepath.Dir(path))
	enqueueSpecs(table, specs, requester)
	return nil
}

func hasLegacyModules(fs vfs.FS, table *assettable.Table) bool {
	for path := range table.ExternalSources {
		if strings.HasSuffix(path, ".js") && modulekind.Detect(fs, path) == modulekind.Legacy {
			return true
		}
	}
	return false
}

// runLegacyPass applies the legacy-to-modern transformer to every legacy
// asset and strict-mode removal after, overriding any prior entry at the
// same asset name — the teacher's WriteFile-sink override pattern, run a
// second time over just the legacy subset (spec.md §4.6, §9: second
// write wins).
func runLegacyPass(ctx context.Context, req Request, table *assettable.Table) error {
	transformer := req.Transformer
	if transformer == nil {
		transformer = legacy.Noop()
	}

	for path, content := range table.ExternalSources {
		if !strings.HasSuffix(path, ".js") || modulekind.Detect(req.FS, path) != modulekind.Legacy {
			continue
		}
		assetName, err := deriveAssetName(req, path)
		if err != nil {
			return err
		}

		transformed, err := transformer.Transform(ctx, assetName, content)
		if err != nil {
			return fmt.Errorf("bundler: legacy transform of %q: %w", assetName, err)
		}
		transformed = postprocess.StripUseStrict(transformed)
		table.Put(assetName, []byte(transformed), path)
	}
	return nil
}

// deriveAssetName applies spec.md §3's asset-name derivation to an
// absolute host path: strip whichever of the compiler's or project's
// modules directory or root is the longest (most specific) matching
// prefix, so a file under a nested modules directory names the same way
// regardless of which closure-loop step puts it in the table — the
// legacy pass, alias registration, and undiscovered-file discovery all
// route through this one function.
func deriveAssetName(req Request, path string) (string, error) {
	root, ok := AssetSubPathRoots(path,
		req.Roots.CompilerModulesDir, req.Roots.ProjectModulesDir,
		req.Roots.CompilerRoot, req.ProjectRoot,
	)
	if !ok {
		return "", &UnexpectedFilePathError{Path: path}
	}
	rel, _ := filepath.Rel(root, path)
	return pathutil.EnsureLeadingSlash(pathutil.ToPortable(rel)), nil
}

// addUndiscoveredFiles implements the final closure-loop step (spec.md
// §4.8): every discovered .js/.json file without an output entry is
// added directly from its on-disk content, named per deriveAssetName so
// it lines up with any alias or legacy-pass entry already registered for
// the same path.
func addUndiscoveredFiles(table *assettable.Table, req Request) error {
	for path, content := range table.ExternalSources {
		if !strings.HasSuffix(path, ".js") && !strings.HasSuffix(path, ".json") {
			continue
		}
		assetName, err := deriveAssetName(req, path)
		if err != nil {
			return err
		}
		if table.Has(assetName) {
			continue
		}
		table.Put(assetName, []byte(content), path)
	}
	return nil
}

// finalizeAssets runs the Post-Processor over every ".js" asset, encodes
// every ".json" asset as a module (spec.md §4.9, §4.10), and orders the
// result per the emission-order rule.
func finalizeAssets(table *assettable.Table, req Request, entrypointName string) ([]artifact.Entry, error) {
	for i, out := range table.Output {
		if !strings.HasSuffix(out.Name, ".js") {
			continue
		}
		var m minify.Minifier
		if req.Compress {
			m = req.Minifier
		}
		var priorMap []byte
		mapName := out.Name + ".map"
		if mapBytes, ok := table.Get(mapName); ok {
			priorMap = mapBytes
		}
		result, err := postprocess.Process(postprocess.Asset{
			Name:     out.Name,
			Text:     string(out.Bytes),
			Origin:   table.Origins[out.Name],
			PriorMap: priorMap,
		}, m)
		if err != nil {
			return nil, fmt.Errorf("bundler: post-processing %q: %w", out.Name, err)
		}
		table.Output[i].Bytes = []byte(result.Text)
		if result.Map != nil {
			fused, err := json.Marshal(result.Map)
			if err != nil {
				return nil, fmt.Errorf("bundler: encoding fused source map for %q: %w", out.Name, err)
			}
			table.Put(mapName, fused, "")
		}
	}

	for name := range table.JSONFiles {
		assetName, err := deriveAssetName(req, name)
		if err != nil {
			return nil, err
		}
		bytesVal, ok := table.Get(assetName)
		if !ok {
			continue
		}
		encoded, err := jsonmod.Encode(string(bytesVal))
		if err != nil {
			return nil, fmt.Errorf("bundler: encoding %q as module: %w", assetName, err)
		}
		table.Put(assetName, []byte(encoded), "")
	}

	return orderEntries(table, entrypointName)
}

// orderEntries implements spec.md §4.9's emission order: lexicographic,
// entrypoint floats to the front (preceded only by its own .map sibling,
// if any), and any .map sibling immediately precedes its base asset.
func orderEntries(table *assettable.Table, entrypointName string) ([]artifact.Entry, error) {
	names := make([]string, 0, len(table.Output))
	for _, out := range table.Output {
		names = append(names, out.Name)
	}
	sort.Strings(names)

	ordered := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	if entrypointName != "" {
		for _, n := range names {
			if n == entrypointName {
				if mapName := n + ".map"; table.Has(mapName) {
					ordered = append(ordered, mapName)
					seen[mapName] = true
				}
				ordered = append(ordered, n)
				seen[n] = true
				break
			}
		}
	}
	for _, n := range names {
		if seen[n] {
			continue
		}
		if strings.HasSuffix(n, ".map") {
			continue
		}
		mapName := n + ".map"
		if table.Has(mapName) && !seen[mapName] {
			ordered = append(ordered, mapName)
			seen[mapName] = true
		}
		ordered = append(ordered, n)
		seen[n] = true
	}
	for _, n := range names {
		if !seen[n] {
			ordered = append(ordered, n)
			seen[n] = true
		}
	}

	entries := make([]artifact.Entry, 0, len(ordered))
	for _, n := range ordered {
		bytesVal, _ := table.Get(n)
		entries = append(entries, artifact.Entry{Name: n, Bytes: bytesVal, Alias: table.Aliases[n]})
	}
	return entries, nil
}
