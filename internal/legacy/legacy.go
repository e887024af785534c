// Package legacy declares the external legacy-to-modern module transformer
// collaborator (spec.md §1, §4.6). The bundler never implements module
// transformation itself — it holds a Transformer and invokes it as a
// second compile pass once a CommonJS-shaped module enters the closure.
package legacy

import "context"

// Transformer rewrites a legacy (CommonJS-shaped) compiled unit into a
// modern one, given its compiled text and the originating asset name.
// Implementations are expected to wrap whatever second-pass compiler
// invocation actually performs the transform.
type Transformer interface {
	Transform(ctx context.Context, assetName string, text string) (string, error)
}

// TransformerFunc adapts a plain function to the Transformer interface.
type TransformerFunc func(ctx context.Context, assetName string, text string) (string, error)

func (f TransformerFunc) Transform(ctx context.Context, assetName string, text string) (string, error) {
	return f(ctx, assetName, text)
}

// Noop returns a Transformer that passes text through unchanged. The
// bundler's legacy pass falls back to it when no Transformer is configured,
// so legacy assets then only get strict-mode removal.
func Noop() Transformer {
	return TransformerFunc(func(_ context.Context, _ string, text string) (string, error) {
		return text, nil
	})
}
