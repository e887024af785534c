// Package assettable is the in-memory accumulator a single bundling builds
// up: asset bytes, their origins, alias registrations, the resolution
// worklist, and the dedup/cache sets that keep the closure loop terminating.
// It is the single BundlerState value spec.md's design notes call for,
// created per bundling: bundler.Bundle builds a fresh Table on every call,
// and the watch coordinator keeps no Table across rebuilds, so Invalidate
// has no caller in this repository.
package assettable

import (
	"fmt"
	"strings"

	"github.com/fridacompile/gobundle/internal/module"
)

// OutputEntry is one asset in insertion order.
type OutputEntry struct {
	Name  string
	Bytes []byte
}

// PendingEntry is one unresolved specifier awaiting the Resolver, paired
// with the module that referenced it (for relative-path resolution).
type PendingEntry struct {
	Specifier string
	Requester *module.Module
}

// Table holds the five coordinated mappings of spec.md §3 plus the
// jsonFiles set and the externalSources read-cache.
type Table struct {
	Output  []OutputEntry
	byName  map[string]int
	Origins map[string]string
	Aliases map[string]string

	PendingModules  []PendingEntry
	pendingSeen     map[string]bool
	ProcessedModules map[string]bool

	JSONFiles map[string]bool

	// ExternalSources caches files read from disk outside the compile step
	// (keyed by absolute host path), so repeated resolution of the same
	// dependency does not re-read it. Watched for invalidation in watch mode.
	ExternalSources map[string]string
}

// New creates an empty Table.
func New() *Table {
	return &Table{
		byName:           make(map[string]int),
		Origins:          make(map[string]string),
		Aliases:          make(map[string]string),
		pendingSeen:      make(map[string]bool),
		ProcessedModules: make(map[string]bool),
		JSONFiles:        make(map[string]bool),
		ExternalSources:  make(map[string]string),
	}
}

// Has reports whether assetName already exists in the output.
func (t *Table) Has(assetName string) bool {
	_, ok := t.byName[assetName]
	return ok
}

// Put inserts or overwrites an asset. A second write at the same name
// overrides the first (spec.md §9: "second write wins" — used by the
// legacy-to-modern re-emission pass).
func (t *Table) Put(assetName string, bytes []byte, origin string) {
	if idx, ok := t.byName[assetName]; ok {
		t.Output[idx].Bytes = bytes
	} else {
		t.byName[assetName] = len(t.Output)
		t.Output = append(t.Output, OutputEntry{Name: assetName, Bytes: bytes})
	}
	if origin != "" {
		t.Origins[assetName] = origin
	}
}

// Get returns the current bytes for an asset, if present.
func (t *Table) Get(assetName string) ([]byte, bool) {
	idx, ok := t.byName[assetName]
	if !ok {
		return nil, false
	}
	return t.Output[idx].Bytes, true
}

// RegisterAlias records that assetName should be reachable under specifier
// from the target loader's perspective. Every registered alias name must
// already exist in Output (spec.md §3 invariant).
func (t *Table) RegisterAlias(assetName, specifier string) error {
	if !t.Has(assetName) {
		return fmt.Errorf("assettable: alias target %q has no output entry", assetName)
	}
	t.Aliases[assetName] = specifier
	return nil
}

// Enqueue adds a specifier to the pending worklist unless it has already
// been processed or is already pending (processedModules ∩ pendingModules
// = ∅ at rest, per spec.md §3).
func (t *Table) Enqueue(specifierOrPath string, requester *module.Module) {
	if t.ProcessedModules[specifierOrPath] || t.pendingSeen[specifierOrPath] {
		return
	}
	t.pendingSeen[specifierOrPath] = true
	t.PendingModules = append(t.PendingModules, PendingEntry{Specifier: specifierOrPath, Requester: requester})
}

// PopPending removes and returns the first entry in insertion order, or
// false if the worklist is empty.
func (t *Table) PopPending() (PendingEntry, bool) {
	if len(t.PendingModules) == 0 {
		return PendingEntry{}, false
	}
	entry := t.PendingModules[0]
	t.PendingModules = t.PendingModules[1:]
	delete(t.pendingSeen, entry.Specifier)
	return entry, true
}

// MarkProcessed records a specifier (or path) as resolved — it will not be
// re-enqueued.
func (t *Table) MarkProcessed(specifierOrPath string) {
	t.ProcessedModules[specifierOrPath] = true
}

// IsProcessed reports whether specifierOrPath has already been marked
// processed — used by the closure loop to recognize a popped specifier
// that turned out to already name a compiled entrypoint (its bareName or
// ".js" sibling was marked by MarkEntrypointProcessed after this specifier
// was enqueued but before it was popped), so it can skip resolving it
// against the filesystem entirely.
func (t *Table) IsProcessed(specifierOrPath string) bool {
	return t.ProcessedModules[specifierOrPath]
}

// MarkEntrypointProcessed takes a compiled entrypoint's on-disk typed-source
// path (e.g. "/project/src/greet.ts") and marks both variants a sibling's
// relative import can resolve to as processed: the extensionless bareName
// a relative specifier like "./greet" classifies to (depwalk strips no
// extension, since TypeScript imports never carry one), and the bareName's
// ".js" sibling, which a specifier written with an explicit extension, or
// one found while scanning already-compiled text, would produce (spec.md
// §3: "both bareName and .js variants of compiled entrypoints").
func (t *Table) MarkEntrypointProcessed(srcPath string) {
	ext := tsExt(srcPath)
	bareName := strings.TrimSuffix(srcPath, ext)
	if ext == "" {
		bareName = strings.TrimSuffix(srcPath, ".js")
	}
	t.MarkProcessed(bareName)
	t.MarkProcessed(bareName + ".js")
}

func tsExt(p string) string {
	for _, ext := range []string{".tsx", ".mts", ".cts", ".ts"} {
		if strings.HasSuffix(p, ext) {
			return ext
		}
	}
	return ""
}

// IsClosed reports whether the closure is complete: no pending work remains.
func (t *Table) IsClosed() bool {
	return len(t.PendingModules) == 0
}

// Invalidate removes an asset's output entry, clears the whole processed
// set, and evicts the path's external-source cache entry, for a
// file-change notification (spec.md §4.11). Per the open question in
// spec.md §9, clearing every processed entry forces full re-discovery
// rather than a narrower per-dependent invalidation.
func (t *Table) Invalidate(assetName string, path string) {
	if idx, ok := t.byName[assetName]; ok {
		// Remove in place, keeping order, then reindex the tail to keep
		// byName consistent.
		t.Output = append(t.Output[:idx], t.Output[idx+1:]...)
		delete(t.byName, assetName)
		for name, i := range t.byName {
			if i > idx {
				t.byName[name] = i - 1
			}
		}
	}
	delete(t.Origins, assetName)
	delete(t.Aliases, assetName)
	t.ProcessedModules = make(map[string]bool)
	delete(t.ExternalSources, path)
}
