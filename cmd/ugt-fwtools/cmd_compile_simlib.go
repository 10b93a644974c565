package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain-adapters/gateways"
	orchestrators "github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain-orchestrators"
)

func runCompileSimlib(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("compile-simlib", flag.ExitOnError)
	var (
		settingsFile = fs.String("settings", "", "Project settings file (ugt.yml)")
		verbose      = fs.Bool("verbose", false, "Enable debug output")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: ugt-fwtools compile-simlib <output-dir> [options]

Compile the QuestaSim simulation libraries through Vivado. Needed once
per Vivado/QuestaSim release combination; point %s at
the result for simulate runs.

Options:
`, envQuestaLibsPath)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		fatalf("parsing flags: %v", err)
	}
	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: output directory is required\n\n")
		fs.Usage()
		os.Exit(1)
	}

	settings, err := loadSettings(*settingsFile)
	if err != nil {
		fatalf("%v", err)
	}

	executor := gateways.NewCommandExecutor()
	vivado, err := newVivadoGateway(settings, executor)
	if err != nil {
		fatalf("%v", err)
	}
	questa, err := newQuestaGateway(settings, executor)
	if err != nil {
		fatalf("%v", err)
	}
	if err := questa.Validate(); err != nil {
		fatalf("%v", err)
	}

	orchestrator := orchestrators.NewSimlibOrchestrator(vivado, vivado, newLogger(*verbose))
	if err := orchestrator.Compile(ctx, fs.Arg(0), settings.QuestaSim.SimPath, settings.QuestaSim.LibsPath); err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("Simulation libraries available in %s\n", fs.Arg(0))
}
