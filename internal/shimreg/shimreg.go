// Package shimreg is the process-wide registry mapping a bare module name to
// the on-disk shim that substitutes for it on the sandboxed runtime. It
// overrides the normal resolution path (internal/resolve) for a fixed set of
// Node-standard-library-shaped names.
package shimreg

import (
	"path/filepath"

	"github.com/microsoft/typescript-go/shim/vfs"
)

// Names is the fixed set of bare module names the runtime ships shims for.
// Each maps to a named shim package under the configured shim directory.
var Names = map[string]string{
	"assert":             "frida-assert",
	"base64-js":          "base64-js",
	"buffer":             "frida-buffer",
	"diagnostics_channel": "frida-diagnostics-channel",
	"events":             "frida-events",
	"fs":                 "frida-fs",
	"http":               "frida-http",
	"https":              "frida-https",
	"http-parser-js":     "http-parser-js",
	"ieee754":            "ieee754",
	"net":                "frida-net",
	"os":                 "frida-os",
	"path":               "frida-path",
	"process":            "frida-process",
	"punycode":           "punycode",
	"querystring":        "frida-querystring",
	"readable-stream":    "readable-stream",
	"stream":             "frida-stream",
	"string_decoder":     "string_decoder",
	"timers":             "frida-timers",
	"tty":                "frida-tty",
	"url":                "frida-url",
	"util":               "frida-util",
	"vm":                 "frida-vm",
}

// Dirs holds the two candidate shim locations: the compiler's installed
// modules directory (preferred, if present) and the project's modules
// directory (fallback).
type Dirs struct {
	CompilerModulesDir string
	ProjectModulesDir  string
}

// Root returns the shim directory to resolve shim packages under: the
// compiler's installed modules directory if it exists, else the project's.
func (d Dirs) Root(fs vfs.FS) string {
	if d.CompilerModulesDir != "" && fs.DirectoryExists(d.CompilerModulesDir) {
		return d.CompilerModulesDir
	}
	return d.ProjectModulesDir
}

// Has reports whether pkgName is a known shim name.
func Has(pkgName string) bool {
	_, ok := Names[pkgName]
	return ok
}

// Locate resolves a shim package name to its on-disk location beneath root.
// If the shim package name ends in ".js" it is used directly; otherwise it
// is a directory joined with the (possibly empty) subPath.
func Locate(root string, pkgName string, subPath []string) string {
	shimPkg := Names[pkgName]
	if filepath.Ext(shimPkg) == ".js" {
		return filepath.Join(root, shimPkg)
	}
	parts := append([]string{root, shimPkg}, subPath...)
	return filepath.Join(parts...)
}
