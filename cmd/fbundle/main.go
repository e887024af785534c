package main

import (
	"fmt"
	"os"
	"strings"
)

const version = "0.0.1-dev"

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 2 {
		return runBuild(os.Args[1:])
	}

	switch os.Args[1] {
	case "build":
		return runBuild(os.Args[2:])
	case "watch":
		return runWatch(os.Args[2:])
	case "--version", "-v":
		fmt.Println("fbundle", version)
		return 0
	case "--help", "-h":
		printUsage()
		return 0
	default:
		if strings.HasPrefix(os.Args[1], "-") {
			return runBuild(os.Args[1:])
		}
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		return 1
	}
}

func printUsage() {
	fmt.Println("fbundle - single-artifact bundler for the frida-compile sandboxed JS/TS runtime")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  fbundle [flags]              Build the project once (default)")
	fmt.Println("  fbundle build [flags]        Build the project once")
	fmt.Println("  fbundle watch [flags]        Rebuild on every source change")
	fmt.Println()
	fmt.Println("Global Flags:")
	fmt.Println("  --version, -v          Print version and exit")
	fmt.Println("  --help, -h             Print this help message")
	fmt.Println()
	fmt.Println("Build Flags:")
	fmt.Println("  --project, -p <path>   Path to tsconfig.json, relative to project root (default: tsconfig.json)")
	fmt.Println("  --config <path>        Path to fbundle.config.json or fbundle.config.ts")
	fmt.Println("  --entry <path>         Entrypoint path, relative to project root")
	fmt.Println("  --out <path>           Output artifact path, relative to project root (build default: stdout; \"-\" means stdout)")
	fmt.Println("  --no-source-maps       Omit .map files from the artifact")
	fmt.Println("  --compress             Request minification (no minifier is linked into this binary; assets stay unminified)")
	fmt.Println()
	fmt.Println("Watch Flags:")
	fmt.Println("  --out <path>           Required: watch mode writes each rebuild here")
	fmt.Println("  --debounce <duration>  Coalescing window for a burst of file changes (default: 250ms)")
	fmt.Println("  --poll-interval <duration>  File-change polling interval (default: 500ms)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  fbundle")
	fmt.Println("  fbundle build --entry src/index.ts --out dist/app.fridabundle")
	fmt.Println("  fbundle watch --compress")
	fmt.Println()
}
