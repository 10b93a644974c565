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

func runCheckSynth(_ context.Context, args []string) {
	fs := flag.NewFlagSet("checksynth", flag.ExitOnError)
	var (
		verbose = fs.Bool("verbose", false, "Enable debug output")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: ugt-fwtools checksynth <build-config>

Check a finished build for missing bitfiles, log errors, critical
warnings and timing violations, one module at a time. Exits non-zero
when any module failed.

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

	result, err := orchestrator.CheckSynthesis(fs.Arg(0))
	if err != nil {
		fatalf("%v", err)
	}

	for _, check := range result.Checks {
		status := "OK"
		if !check.Passed() {
			status = "FAILED"
		}
		fmt.Printf("module %d: %s", check.ModuleID, status)
		if !check.BitfileFound {
			fmt.Print(" (no bitfile)")
		}
		if len(check.Errors) > 0 {
			fmt.Printf(" (%d errors)", len(check.Errors))
		}
		if len(check.CriticalWarnings) > 0 {
			fmt.Printf(" (%d critical warnings)", len(check.CriticalWarnings))
		}
		if check.Timing != nil && !check.Timing.Met() {
			fmt.Printf(" (timing not met, WNS=%.3f WHS=%.3f)", check.Timing.WNS, check.Timing.WHS)
		}
		fmt.Println()
	}

	if !result.Success {
		fmt.Fprintln(os.Stderr, "Build check failed")
		os.Exit(1)
	}
	fmt.Println("All modules passed")
}
