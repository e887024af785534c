// Package pathutil converts between host-native and portable (forward-slash)
// path forms. Every asset name, manifest entry, and source-map source is
// portable; every filesystem query stays native.
package pathutil

import (
	"os"
	"strings"
)

// ToPortable converts a native host path into its portable, forward-slash form.
// It is the identity function on platforms whose native separator is already "/".
func ToPortable(p string) string {
	if os.PathSeparator == '/' {
		return p
	}
	return strings.ReplaceAll(p, string(os.PathSeparator), "/")
}

// ToNative converts a portable, forward-slash path into the host's native form.
// It is the identity function on platforms whose native separator is already "/".
func ToNative(p string) string {
	if os.PathSeparator == '/' {
		return p
	}
	return strings.ReplaceAll(p, "/", string(os.PathSeparator))
}

// EnsureLeadingSlash prepends "/" to a portable path if it does not already have one.
func EnsureLeadingSlash(p string) string {
	if strings.HasPrefix(p, "/") {
		return p
	}
	return "/" + p
}
