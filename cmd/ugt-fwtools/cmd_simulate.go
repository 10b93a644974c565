package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain-adapters/gateways"
	orchestrators "github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain-orchestrators"
	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain/services"
	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/external-adapters/xmlmenu"
)

func runSimulate(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	var (
		testVector   = fs.String("tv", "", "Test vector file (URL or path)")
		settingsFile = fs.String("settings", "", "Project settings file (ugt.yml)")
		ugtURL       = fs.String("ugturl", "", "Override ugt firmware repository URL")
		ugtTag       = fs.String("ugttag", "", "Override ugt firmware tag")
		mp7URL       = fs.String("mp7url", "", "Override mp7 firmware repository URL")
		mp7Tag       = fs.String("mp7tag", "", "Override mp7 firmware tag")
		wlf          = fs.Bool("wlf", false, "Write the vsim transcript to a wlf file instead of the terminal")
		ignore       = fs.Bool("ignored", false, "Skip algorithms known to disagree around bunch train gaps")
		viewWave     = fs.Bool("view-wave", false, "Keep the waveform window enabled in the simulation script")
		workDir      = fs.String("workdir", "", "Reuse an existing work area instead of a temp directory")
		keep         = fs.Bool("keep", false, "Keep the work area after a successful run")
		timeout      = fs.Duration("timeout", 4*time.Hour, "Per-module simulation timeout")
		noColor      = fs.Bool("no-color", false, "Disable colored output")
		verbose      = fs.Bool("verbose", false, "Enable debug output")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: ugt-fwtools simulate <menu_xml> [options]

Simulate every module of a trigger menu in QuestaSim and compare the
simulated algorithm decisions against the emulator test vector. The
menu name and the distribution base are derived from the XML location.

The QuestaSim installation and the precompiled simulation libraries are
taken from %s and %s.

Options:
`, envQuestaSimPath, envQuestaLibsPath)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Simulate a published menu against a test vector
  ugt-fwtools simulate \
    https://example.cern.ch/menus/L1Menu_Collisions2026_v1_0_0-d1/xml/L1Menu_Collisions2026_v1_0_0-d1.xml \
    --tv https://example.cern.ch/testvectors/TestVector_L1Menu_Collisions2026.txt
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

	menuLocation, menuName, err := splitMenuXML(fs.Arg(0))
	if err != nil {
		fatalf("%v", err)
	}
	if *testVector == "" {
		fatalf("test vector is required (--tv)")
	}

	settings, err := loadSettings(*settingsFile)
	if err != nil {
		fatalf("%v", err)
	}
	if *ugtURL != "" {
		settings.Firmware.Ugt.URL = *ugtURL
	}
	if *ugtTag != "" {
		settings.Firmware.Ugt.Tag = *ugtTag
	}
	if *mp7URL != "" {
		settings.Firmware.MP7.URL = *mp7URL
	}
	if *mp7Tag != "" {
		settings.Firmware.MP7.Tag = *mp7Tag
	}
	msgMode := gateways.MsgModeTran
	if *wlf {
		msgMode = gateways.MsgModeWLF
	}
	if settings.QuestaSim.LibsPath == "" {
		fatalf("no simulation libraries configured (set %s or run compile-simlib)", envQuestaLibsPath)
	}

	executor := gateways.NewCommandExecutor()
	questa, err := newQuestaGateway(settings, executor)
	if err != nil {
		fatalf("%v", err)
	}
	logger := newLogger(*verbose)

	orchestrator := orchestrators.NewSimulationOrchestrator(
		xmlmenu.NewMenuParser(),
		gateways.NewDownloader(),
		gateways.NewGitGateway(executor),
		questa,
		gateways.NewTemplateRenderer(),
		services.NewTestVectorService(),
		services.NewSimReportService(),
		logger,
	)

	result, err := orchestrator.Simulate(ctx, orchestrators.SimulationConfig{
		MenuLocation:       menuLocation,
		MenuName:           menuName,
		TestVectorLocation: *testVector,
		Settings:           settings,
		QuestaLibsPath:     settings.QuestaSim.LibsPath,
		MsgMode:            msgMode,
		ViewWave:           *viewWave,
		IgnoreProcErrors:   *ignore,
		WorkDir:            *workDir,
		Timeout:            *timeout,
	})
	if err != nil {
		fatalf("%v", err)
	}

	services.NewSimReportService().Render(os.Stdout, result.Summary, !*noColor)
	fmt.Printf("\nSimulation finished in %v (work area: %s)\n", result.Duration.Round(time.Second), result.WorkDir)

	if result.Success {
		if !*keep && *workDir == "" {
			//nolint:errcheck // Best-effort cleanup of the temp work area
			os.RemoveAll(result.WorkDir)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "Simulation found %d mismatching algorithms, see the mismatch reports in the work area\n",
		result.Summary.MismatchCount)
	os.Exit(1)
}
