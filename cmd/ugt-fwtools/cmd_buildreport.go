package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	orchestrators "github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain-orchestrators"
	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain/services"
	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/external-adapters/ini"
)

func runBuildReport(_ context.Context, args []string) {
	fs := flag.NewFlagSet("buildreport", flag.ExitOnError)
	var (
		outputFile = fs.String("o", "", "Write the report to a file instead of stdout")
		verbose    = fs.Bool("verbose", false, "Enable debug output")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: ugt-fwtools buildreport <build-config> [options]

Render the final build report of a finished build: configuration,
firmware sources and per-module synthesis results.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		fatalf("parsing flags: %v", err)
	}
	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: build config path is required\n\n")
		fs.Usage()
		os.Exit(1)
	}

	orchestrator := orchestrators.NewReportOrchestrator(
		ini.NewConfigStore(),
		services.NewSynthCheckService(),
		services.NewBuildReportService(),
		newLogger(*verbose),
	)

	out := os.Stdout
	if *outputFile != "" {
		f, err := os.Create(*outputFile)
		if err != nil {
			fatalf("failed to create %s: %v", *outputFile, err)
		}
		//nolint:errcheck // Close on exit of main flow
		defer f.Close()
		out = f
	}

	result, err := orchestrator.WriteBuildReport(out, fs.Arg(0))
	if err != nil {
		fatalf("%v", err)
	}
	if !result.Success {
		os.Exit(1)
	}
}
