// Package config loads the bundler's project configuration: the entrypoint,
// the TypeScript configuration to compile under, and the optional
// source-map/compression/watch settings. Like the teacher's config loader,
// it accepts either a JSON file or a TypeScript file evaluated through
// Node.js, since bundler configs commonly want to compute values (reading
// package.json, branching on NODE_ENV) that a static JSON file cannot.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Config is the fbundle project configuration.
type Config struct {
	// Entry is the entrypoint path, relative to ProjectRoot (default "src/main.ts").
	Entry string `json:"entry,omitempty"`
	// ProjectRoot is the project root directory; defaults to the config file's directory.
	ProjectRoot string `json:"projectRoot,omitempty"`
	// TSConfig is the tsconfig.json path, relative to ProjectRoot (default "tsconfig.json").
	TSConfig string `json:"tsconfig,omitempty"`
	// Output is the bundled artifact's output path, relative to ProjectRoot (default "dist/bundle.fridabundle").
	Output string `json:"output,omitempty"`
	// SourceMaps includes separate .map files for each compiled asset (default true).
	SourceMaps *bool `json:"sourceMaps,omitempty"`
	// Compress requests minification of every JavaScript asset (default
	// false). It takes effect only when the bundler is given a Minifier;
	// cmd/fbundle supplies none, so there it leaves assets unminified.
	Compress bool `json:"compress,omitempty"`
	// Watch holds watch-mode-specific settings.
	Watch WatchConfig `json:"watch,omitempty"`
}

// WatchConfig configures the Watch Coordinator's file poller.
type WatchConfig struct {
	// Extensions lists the file extensions the poller watches (default [".ts", ".tsx", ".js", ".json"]).
	Extensions []string `json:"extensions,omitempty"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	sourceMaps := true
	return Config{
		Entry:    "src/main.ts",
		TSConfig: "tsconfig.json",
		Output:   "dist/bundle.fridabundle",
		SourceMaps: &sourceMaps,
		Watch: WatchConfig{
			Extensions: []string{".ts", ".tsx", ".js", ".json"},
		},
	}
}

// IncludeSourceMaps reports the effective source-maps setting.
func (c *Config) IncludeSourceMaps() bool {
	if c.SourceMaps == nil {
		return true
	}
	return *c.SourceMaps
}

// Discover searches dir for an fbundle config file, preferring
// fbundle.config.ts over fbundle.config.json.
func Discover(dir string) string {
	candidates := []string{
		filepath.Join(dir, "fbundle.config.ts"),
		filepath.Join(dir, "fbundle.config.json"),
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Load reads and parses a config file, JSON or TypeScript, and fills in
// ProjectRoot from the file's directory when left unset.
func Load(path string) (*Config, error) {
	var (
		cfg *Config
		err error
	)
	switch ext := filepath.Ext(path); ext {
	case ".ts":
		cfg, err = LoadTS(path)
	case ".json":
		cfg, err = LoadJSON(path)
	default:
		return nil, fmt.Errorf("unsupported config file extension %q (expected .ts or .json)", ext)
	}
	if err != nil {
		return nil, err
	}

	if cfg.ProjectRoot == "" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config path %q: %w", path, err)
		}
		cfg.ProjectRoot = filepath.Dir(absPath)
	}
	return cfg, nil
}

// LoadJSON reads and parses a JSON config file.
func LoadJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config in %q: %w", path, err)
	}
	return &cfg, nil
}

// LoadTS evaluates a TypeScript config file via Node.js (default export)
// and parses the resulting JSON.
func LoadTS(path string) (*Config, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %q: %w", path, err)
	}

	fileURL := "file://" + absPath
	if os.PathSeparator == '\\' {
		fileURL = "file:///" + strings.ReplaceAll(absPath, "\\", "/")
	}
	evalScript := fmt.Sprintf(
		`import(%q).then(m => {const c = m.default; if (c === undefined || c === null || typeof c !== "object") { process.stderr.write("error: config file must have a default export (export default { ... })\n"); process.exit(1); } process.stdout.write(JSON.stringify(c));}).catch(e => { process.stderr.write("error: " + e.message + "\n"); process.exit(1); })`,
		fileURL,
	)

	configDir := filepath.Dir(absPath)

	jsonData, err := execNode(configDir, []string{"--import", "tsx", "--input-type=module", "-e", evalScript})
	if err != nil {
		jsonData, err = execNode(configDir, []string{"--experimental-strip-types", "--no-warnings", "--input-type=module", "-e", evalScript})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate TypeScript config %q: %w\nhint: install tsx (npm i -D tsx) or use Node.js 22.6+ for native TypeScript support", path, err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(jsonData, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config from %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config in %q: %w", path, err)
	}
	return &cfg, nil
}

func execNode(dir string, args []string) ([]byte, error) {
	nodePath, err := exec.LookPath("node")
	if err != nil {
		return nil, fmt.Errorf("node not found in PATH: %w", err)
	}

	cmd := exec.Command(nodePath, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	done := make(chan error, 1)
	go func() {
		done <- cmd.Run()
	}()

	select {
	case err := <-done:
		if err != nil {
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return nil, fmt.Errorf("%s", msg)
			}
			return nil, err
		}
		return stdout.Bytes(), nil
	case <-time.After(10 * time.Second):
		cmd.Process.Kill()
		return nil, fmt.Errorf("timed out after 10 seconds")
	}
}
