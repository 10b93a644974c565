package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain-adapters/gateways"
	orchestrators "github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain-orchestrators"
	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/external-adapters/ini"
	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/external-adapters/xmlmenu"
)

func runRunSynth(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("runsynth", flag.ExitOnError)
	var (
		buildTag     = fs.String("build", "", "Build tag (0x followed by 4 hex digits)")
		moduleID     = fs.Int("module", -1, "Module to synthesize (default: all modules)")
		settingsFile = fs.String("settings", "", "Project settings file (ugt.yml)")
		verbose      = fs.Bool("verbose", false, "Enable debug output")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: ugt-fwtools runsynth <menu_xml> --build <tag> [--module <n>] [options]

Re-run the full Vivado flow of one module (or all modules) of an
existing build area in the foreground. Use this to redo a failed
module without setting up a new build. The build area is located from
the menu name and the build tag.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Redo module 2 of build 0x113a
  ugt-fwtools runsynth \
    https://example.cern.ch/menus/L1Menu_X-d1/xml/L1Menu_X-d1.xml \
    --build 0x113a --module 2
`)
	}

	if err := fs.Parse(args); err != nil {
		fatalf("parsing flags: %v", err)
	}
	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: menu XML location is required\n\n")
		fs.Usage()
		os.Exit(1)
	}

	_, menuName, err := splitMenuXML(fs.Arg(0))
	if err != nil {
		fatalf("%v", err)
	}
	tag, err := parseBuildTag(*buildTag)
	if err != nil {
		fatalf("%v", err)
	}

	settings, err := loadSettings(*settingsFile)
	if err != nil {
		fatalf("%v", err)
	}

	buildArea := orchestrators.BuildAreaPath(settings, settings.Vivado.Version, menuName, tag)
	configPath := filepath.Join(buildArea, fmt.Sprintf("build_0x%s.cfg", tag))
	configs := ini.NewConfigStore()
	cfg, err := configs.Load(configPath)
	if err != nil {
		fatalf("%v", err)
	}
	if *moduleID >= cfg.Menu.Modules {
		fatalf("module %d out of range, build has %d modules", *moduleID, cfg.Menu.Modules)
	}

	modules := []int{*moduleID}
	if *moduleID < 0 {
		modules = modules[:0]
		for id := 0; id < cfg.Menu.Modules; id++ {
			modules = append(modules, id)
		}
	}

	executor := gateways.NewCommandExecutor()
	vivado, err := newVivadoGateway(settings, executor)
	if err != nil {
		fatalf("%v", err)
	}
	logger := newLogger(*verbose)

	orchestrator := orchestrators.NewSynthesisOrchestrator(
		xmlmenu.NewMenuParser(),
		gateways.NewDownloader(),
		vivado,
		gateways.NewIPBBGateway(executor),
		gateways.NewScreenGateway(executor),
		executor,
		gateways.NewTemplateRenderer(),
		configs,
		logger,
	)

	for _, id := range modules {
		transcript := filepath.Join(cfg.Firmware.BuildArea, fmt.Sprintf("runsynth_module_%d.log", id))
		//nolint:gosec // G304: transcript lives inside the build area from the config
		logFile, err := os.Create(transcript)
		if err != nil {
			fatalf("failed to create transcript %s: %v", transcript, err)
		}

		fmt.Printf("Running synthesis of module %d (transcript: %s)\n", id, transcript)
		err = orchestrator.RunModule(ctx, cfg.Firmware.BuildArea, id, logFile)
		//nolint:errcheck // Close after the module run finished writing
		logFile.Close()
		if err != nil {
			fatalf("%v", err)
		}
		fmt.Printf("Module %d finished\n", id)
	}
	fmt.Println("Run checksynth to verify the result")
}
