package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fridacompile/gobundle/internal/bundler"
	"github.com/fridacompile/gobundle/internal/diag"
	"github.com/fridacompile/gobundle/internal/watch"
)

func runWatch(args []string) int {
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
	if !hasConfigFile && !flags.stdout {
		fmt.Fprintln(os.Stderr, "error: watch mode requires --out (or a config file naming one); stdout can't carry a stream of rebuilds")
		return 1
	}
	if flags.stdout {
		fmt.Fprintln(os.Stderr, "error: watch mode cannot write to stdout (--out -); pass a file path")
		return 1
	}

	reporter := diag.NewReporter(os.Stderr, cfg.ProjectRoot, diag.IsPrettyOutput())

	req, err := buildRequest(cfg, reporter)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}

	outPath := cfg.Output
	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(cfg.ProjectRoot, outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		fmt.Fprintln(os.Stderr, "error: failed to create output directory:", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	coordinator := watch.New(
		func(ctx context.Context) ([]byte, error) {
			return bundler.Bundle(ctx, req)
		},
		func(path string) {
			// Every rebundle reruns the full closure loop over req.FS, so
			// there is no per-path asset cache here to evict; Invalidate
			// only needs to exist for the single-flight bookkeeping in
			// Coordinator itself.
		},
		func(artifactBytes []byte) {
			if err := os.WriteFile(outPath, artifactBytes, 0o644); err != nil {
				fmt.Fprintln(os.Stderr, "error: failed to write artifact:", err)
				return
			}
			fmt.Fprintf(os.Stderr, "[%s] wrote %s (%d bytes)\n", time.Now().Format("15:04:05"), outPath, len(artifactBytes))
		},
		func(err error) {
			diag.LogPipelineError(os.Stderr, err)
		},
	)

	poller := watch.NewPoller([]string{cfg.ProjectRoot}, cfg.Watch.Extensions, coordinator)
	if v := flags.pollInterval; v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			poller.SetPollInterval(d)
		}
	}
	if v := flags.debounce; v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			coordinator.SetDebounce(d)
		}
	}

	fmt.Fprintf(os.Stderr, "watching %s for changes (entry: %s)\n", cfg.ProjectRoot, cfg.Entry)
	coordinator.ProgramRecreated(ctx)

	go poller.Run(ctx)

	<-ctx.Done()
	poller.Stop()
	fmt.Fprintln(os.Stderr, "\nstopping watch")
	return 0
}
