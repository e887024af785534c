// Package minify declares the external minifier collaborator (spec.md §1,
// §4.9) and the source-map fusion step the Post-Processor drives around it.
// The bundler never implements compression or mangling itself.
package minify

// Options is the fixed configuration the Post-Processor always passes to
// the minifier when minification is enabled (spec.md §4.9): ES-2020
// grammar, module-mode compression and mangling, and a single global
// define substituting process.env.FRIDA_COMPILE.
type Options struct {
	ECMAVersion int
	Module      bool
	Compress    bool
	Mangle      bool
	Defines     map[string]string
}

// DefaultOptions returns the fixed options spec.md §4.9 mandates.
func DefaultOptions() Options {
	return Options{
		ECMAVersion: 2020,
		Module:      true,
		Compress:    true,
		Mangle:      true,
		Defines:     map[string]string{"process.env.FRIDA_COMPILE": "true"},
	}
}

// SourceMap is the minifier's source-map output shape, narrowed to the
// fields the Post-Processor reads or rewrites (spec.md §4.9): the map's
// embedded source list, which gets a root prefix stripped before it is
// re-serialized as an asset.
type SourceMap struct {
	Version  int      `json:"version"`
	Sources  []string `json:"sources"`
	Mappings string   `json:"mappings"`
	Names    []string `json:"names,omitempty"`
	File     string   `json:"file,omitempty"`
	Root     string   `json:"sourceRoot,omitempty"`
}

// Input is one unit of work the minifier is asked to compress.
type Input struct {
	Code      string
	PriorMap  []byte // the .map asset emitted for this asset by the compiler, if any
	MapRoot   string // portable(dirname(origin)) + "/"
	MapFile   string // basename of the asset being minified
}

// Output is the minifier's result: the compressed code and, when source
// maps are requested, the fused map.
type Output struct {
	Code string
	Map  *SourceMap
}

// Minifier is the external collaborator. Implementations wrap whatever
// actual JS minifier and source-map combiner is linked in.
type Minifier interface {
	Minify(opts Options, in Input) (Output, error)
}

// StripSourcesRoot rewrites every entry of sources to remove the leading
// root prefix, per spec.md §4.9's "rewrite the returned map's sources to
// strip the root prefix".
func StripSourcesRoot(m *SourceMap, root string) {
	if m == nil {
		return
	}
	for i, s := range m.Sources {
		if len(s) >= len(root) && s[:len(root)] == root {
			m.Sources[i] = s[len(root):]
		}
	}
}
