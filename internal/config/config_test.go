package config

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// requireNode skips the test if node is not available.
func requireNode(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("node"); err != nil {
		t.Skip("node not found in PATH, skipping TypeScript config test")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Entry != "src/main.ts" {
		t.Fatalf("expected default entry 'src/main.ts', got %q", cfg.Entry)
	}
	if cfg.TSConfig != "tsconfig.json" {
		t.Fatalf("expected default tsconfig 'tsconfig.json', got %q", cfg.TSConfig)
	}
	if cfg.Output != "dist/bundle.fridabundle" {
		t.Fatalf("expected default output 'dist/bundle.fridabundle', got %q", cfg.Output)
	}
	if !cfg.IncludeSourceMaps() {
		t.Fatal("expected source maps on by default")
	}
	if cfg.Compress {
		t.Fatal("expected compress off by default")
	}
}

func TestLoadValidConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "fbundle.config.json")
	content := `{
		"entry": "src/index.ts",
		"output": "out/bundle.fridabundle",
		"compress": true
	}`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Entry != "src/index.ts" {
		t.Fatalf("unexpected entry: %q", cfg.Entry)
	}
	if cfg.Output != "out/bundle.fridabundle" {
		t.Fatalf("unexpected output: %q", cfg.Output)
	}
	if !cfg.Compress {
		t.Fatal("expected compress=true")
	}
	// TSConfig left unspecified should keep the default.
	if cfg.TSConfig != "tsconfig.json" {
		t.Fatalf("expected default tsconfig, got %q", cfg.TSConfig)
	}
	if cfg.ProjectRoot != dir {
		t.Fatalf("expected ProjectRoot=%q, got %q", dir, cfg.ProjectRoot)
	}
}

func TestLoadPartialConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "fbundle.config.json")
	content := `{"output": "out/bundle.fridabundle"}`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Entry != "src/main.ts" {
		t.Fatalf("expected default entry, got %q", cfg.Entry)
	}
	if cfg.Output != "out/bundle.fridabundle" {
		t.Fatalf("expected overridden output, got %q", cfg.Output)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/fbundle.config.json")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "fbundle.config.json")
	if err := os.WriteFile(configPath, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "fbundle.config.yaml")
	os.WriteFile(yamlPath, []byte(""), 0o644)

	_, err := Load(yamlPath)
	if err == nil {
		t.Fatal("expected error for .yaml extension")
	}
	if !strings.Contains(err.Error(), "unsupported config file extension") {
		t.Fatalf("unexpected error message: %v", err)
	}
}

func TestDiscoverTSPriority(t *testing.T) {
	dir := t.TempDir()

	if result := Discover(dir); result != "" {
		t.Fatalf("expected empty string for no config, got %q", result)
	}

	jsonPath := filepath.Join(dir, "fbundle.config.json")
	os.WriteFile(jsonPath, []byte(`{}`), 0o644)
	if result := Discover(dir); result != jsonPath {
		t.Fatalf("expected %q, got %q", jsonPath, result)
	}

	tsPath := filepath.Join(dir, "fbundle.config.ts")
	os.WriteFile(tsPath, []byte(`export default {}`), 0o644)
	if result := Discover(dir); result != tsPath {
		t.Fatalf("expected .ts to take priority, got %q", result)
	}
}

func TestLoadTSPlainExport(t *testing.T) {
	requireNode(t)

	dir := t.TempDir()
	tsPath := filepath.Join(dir, "fbundle.config.ts")
	content := `export default {
  entry: "src/index.ts",
  output: "dist/bundle.fridabundle",
  compress: true,
};
`
	os.WriteFile(tsPath, []byte(content), 0o644)

	cfg, err := LoadTS(tsPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Entry != "src/index.ts" {
		t.Fatalf("unexpected entry: %q", cfg.Entry)
	}
	if !cfg.Compress {
		t.Fatal("expected compress=true")
	}
}

func TestLoadTSNoDefaultExport(t *testing.T) {
	requireNode(t)

	dir := t.TempDir()
	tsPath := filepath.Join(dir, "fbundle.config.ts")
	os.WriteFile(tsPath, []byte(`const config = { entry: "src/index.ts" };`), 0o644)

	_, err := LoadTS(tsPath)
	if err == nil {
		t.Fatal("expected error for missing default export")
	}
}

func TestLoadTSInvalidConfig(t *testing.T) {
	requireNode(t)

	dir := t.TempDir()
	tsPath := filepath.Join(dir, "fbundle.config.ts")
	content := `export default { entry: "", output: "dist/bundle.fridabundle" };`
	os.WriteFile(tsPath, []byte(content), 0o644)

	_, err := LoadTS(tsPath)
	if err == nil {
		t.Fatal("expected validation error for empty entry")
	}
}
