package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fridacompile/gobundle/internal/bundler"
	"github.com/fridacompile/gobundle/internal/config"
	"github.com/fridacompile/gobundle/internal/diag"
	"github.com/fridacompile/gobundle/internal/resolve"
	"github.com/fridacompile/gobundle/internal/tscompile"
)

// buildFlags holds the fbundle-specific flags for the build and watch
// subcommands; anything else on the command line is rejected rather than
// passed through, since the Compile Front's options are fixed by spec.md
// §4.6 and not user-tunable.
type buildFlags struct {
	configPath     string
	entry          string
	out            string
	tsconfig       string
	noSourceMaps   bool
	compress       bool
	pollInterval   string
	debounce       string
	stdout         bool
}

func parseBuildArgs(args []string) (*buildFlags, error) {
	flags := &buildFlags{}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		next := func() (string, error) {
			i++
			if i >= len(args) {
				return "", fmt.Errorf("flag %s requires a value", arg)
			}
			return args[i], nil
		}

		switch arg {
		case "--project", "-p":
			v, err := next()
			if err != nil {
				return nil, err
			}
			flags.tsconfig = v
		case "--config":
			v, err := next()
			if err != nil {
				return nil, err
			}
			flags.configPath = v
		case "--entry":
			v, err := next()
			if err != nil {
				return nil, err
			}
			flags.entry = v
		case "--out":
			v, err := next()
			if err != nil {
				return nil, err
			}
			if v == "-" {
				flags.stdout = true
			} else {
				flags.out = v
			}
		case "--no-source-maps":
			flags.noSourceMaps = true
		case "--compress":
			flags.compress = true
		case "--poll-interval":
			v, err := next()
			if err != nil {
				return nil, err
			}
			flags.pollInterval = v
		case "--debounce":
			v, err := next()
			if err != nil {
				return nil, err
			}
			flags.debounce = v
		case "--help", "-h":
			printUsage()
			os.Exit(0)
		default:
			return nil, fmt.Errorf("unknown flag: %s", arg)
		}
	}

	return flags, nil
}

// resolveConfig discovers and loads the project config, then layers the
// command-line flags on top (flags win). hasConfigFile reports whether an
// fbundle.config.* was actually found or named, or an explicit --out path
// was given, as opposed to falling back to bare defaults — runBuild uses it
// to decide whether the artifact goes to stdout (spec.md §6) or to
// cfg.Output, which is the default artifact path when a config file names
// no output.
func resolveConfig(flags *buildFlags) (cfg *config.Config, hasConfigFile bool, err error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, false, fmt.Errorf("failed to determine working directory: %w", err)
	}

	if flags.configPath != "" {
		cfg, err = config.Load(flags.configPath)
		hasConfigFile = true
	} else if found := config.Discover(cwd); found != "" {
		cfg, err = config.Load(found)
		hasConfigFile = true
	} else {
		defaults := config.DefaultConfig()
		cfg = &defaults
		cfg.ProjectRoot = cwd
	}
	if err != nil {
		return nil, false, err
	}

	if flags.tsconfig != "" {
		cfg.TSConfig = flags.tsconfig
	}
	if flags.entry != "" {
		cfg.Entry = flags.entry
	}
	if flags.out != "" {
		cfg.Output = flags.out
		hasConfigFile = true
	}
	if flags.noSourceMaps {
		off := false
		cfg.SourceMaps = &off
	}
	if flags.compress {
		cfg.Compress = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, false, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, hasConfigFile, nil
}

// buildRequest turns a loaded config into a bundler.Request against the
// real OS filesystem, wiring compiler-root/project-root resolution the
// way spec.md §6 describes.
func buildRequest(cfg *config.Config, reporter diag.Reporter) (bundler.Request, error) {
	compilerRoot, err := bundler.CompilerRoot()
	if err != nil {
		return bundler.Request{}, fmt.Errorf("failed to determine compiler root: %w", err)
	}

	roots := resolve.Roots{
		CompilerRoot:             compilerRoot,
		CompilerModulesDir:       filepath.Join(compilerRoot, "node_modules"),
		ProjectModulesDir:        filepath.Join(cfg.ProjectRoot, "node_modules"),
		ProjectLinkedCompilerDir: filepath.Join(cfg.ProjectRoot, "node_modules", "frida-compile"),
	}

	return bundler.Request{
		FS:           tscompile.CreateDefaultFS(),
		ProjectRoot:  cfg.ProjectRoot,
		Entrypoint:   cfg.Entry,
		Roots:        roots,
		SourceMaps:   cfg.IncludeSourceMaps(),
		Compress:     cfg.Compress,
		TSConfigPath: cfg.TSConfig,
		OnEmitDiagnostics: func(diags []tscompile.Diagnostic) {
			for _, d := range diags {
				reporter(d)
			}
		},
	}, nil
}

func runBuild(args []string) int {
	flags, err := parseBuildArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}

	cfg, hasConfigFile, err := resolveConfig(flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}

	reporter := diag.NewReporter(os.Stderr, cfg.ProjectRoot, diag.IsPrettyOutput())

	req, err := buildRequest(cfg, reporter)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}

	artifactBytes, err := bundler.Bundle(context.Background(), req)
	if err != nil {
		diag.LogPipelineError(os.Stderr, err)
		return 1
	}

	// With neither an explicit --out nor a config file, the artifact goes
	// to stdout rather than a guessed default path.
	if flags.stdout || !hasConfigFile {
		os.Stdout.Write(artifactBytes)
		return 0
	}

	outPath := cfg.Output
	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(cfg.ProjectRoot, outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		fmt.Fprintln(os.Stderr, "error: failed to create output directory:", err)
		return 1
	}
	if err := os.WriteFile(outPath, artifactBytes, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "error: failed to write artifact:", err)
		return 1
	}

	fmt.Fprintf(os.Stderr, "wrote %s (%d bytes)\n", outPath, len(artifactBytes))
	return 0
}
