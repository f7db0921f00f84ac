// Command kernel-lint loads a container's EngineOptions and definitions
// manifest and reports wiring problems before the container ever serves
// traffic: every definition that fails to resolve, including unresolvable
// dependencies and circular references. Strict mode reports the same
// problems and only changes the exit status; it adds no further checks.
//
// Adapted from cmd/doffy-validate's flag-based AST scanner: where that
// tool walked source files looking for container.Resolve("...") call
// sites, kernel-lint instead walks a container's own definitions,
// because this kernel's bindings live in data (YAML manifests and
// RegisterType calls), not in ad hoc Resolve call sites.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dangvanduc1999/kernel/container"
)

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: %s [options] <definitions.yaml>

Options:
  -options string   Path to an EngineOptions YAML file (optional)
  -mode string      Validation mode: "warn" (default) or "strict"
                     - warn: report problems but exit 0
                     - strict: exit non-zero if any problem is found

  -help, -h         Show this help message
`, os.Args[0])
}

func main() {
	var mode, optionsPath string
	var help bool

	flag.StringVar(&mode, "mode", "warn", "Validation mode: warn or strict")
	flag.StringVar(&optionsPath, "options", "", "Path to an EngineOptions YAML file")
	flag.BoolVar(&help, "help", false, "Show help")
	flag.BoolVar(&help, "h", false, "Show help")
	flag.Parse()

	if help {
		printUsage()
		os.Exit(0)
	}

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: missing definitions manifest path")
		printUsage()
		os.Exit(1)
	}
	if mode != "warn" && mode != "strict" {
		fmt.Fprintf(os.Stderr, "Error: invalid mode %q\n", mode)
		printUsage()
		os.Exit(1)
	}

	manifestPath := flag.Arg(0)

	opts := container.DefaultEngineOptions()
	if optionsPath != "" {
		var err error
		opts, err = container.LoadEngineOptions(optionsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	defs, err := container.LoadDefinitions(manifestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	c := container.NewContainer(container.WithEngineOptions(opts))
	if err := container.ApplyManifest(c, defs); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Loaded %d definitions from %s\n\n", len(defs), manifestPath)

	problems := 0
	for _, def := range defs {
		if _, trace, err := c.Trace(def.Abstract); err != nil {
			problems++
			fmt.Printf("  %s: %v\n", def.Abstract, err)
			if trace != nil && len(trace.Steps) > 0 {
				fmt.Print(trace.String())
			}
		}
	}

	if problems == 0 {
		fmt.Println("no resolution problems found")
	} else {
		fmt.Printf("\n%d definition(s) failed to resolve\n", problems)
		if mode == "strict" {
			os.Exit(1)
		}
	}
}
