package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain-adapters/gateways"
	orchestrators "github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain-orchestrators"
	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/external-adapters/ini"
	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/external-adapters/xmlmenu"
)

func runSynthesize(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("synthesize", flag.ExitOnError)
	var (
		buildTag     = fs.String("build", "", "Build tag (0x followed by 4 hex digits)")
		settingsFile = fs.String("settings", "", "Project settings file (ugt.yml)")
		buildDir     = fs.String("path", "", "Override the build base directory")
		fwType       = fs.String("type", "firmware/projects/gt_mp7_xe", "Firmware project type inside the ugt repository")
		ugtURL       = fs.String("ugturl", "", "Override ugt firmware repository URL")
		ugtTag       = fs.String("ugttag", "", "Override ugt firmware tag")
		mp7URL       = fs.String("mp7url", "", "Override mp7 firmware repository URL")
		mp7Tag       = fs.String("mp7tag", "", "Override mp7 firmware tag")
		ipbURL       = fs.String("ipburl", "", "Override ipbus firmware repository URL")
		ipbTag       = fs.String("ipbtag", "", "Override ipbus firmware tag")
		verbose      = fs.Bool("verbose", false, "Enable debug output")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: ugt-fwtools synthesize <menu_xml> [options]

Create an ipbb build area for a trigger menu and start one detached
synthesis session per module. The menu name and the distribution base
are derived from the XML location. Progress lives in the screen
sessions; use checksynth once they finish.

The Vivado installation is taken from %s and %s.

Options:
`, envVivadoBaseDir, envVivadoVersion)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Start a new build 0x113a of a published menu
  ugt-fwtools synthesize \
    https://example.cern.ch/menus/L1Menu_Collisions2026_v1_0_0-d1/xml/L1Menu_Collisions2026_v1_0_0-d1.xml \
    --build 0x113a
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
	tag, err := parseBuildTag(*buildTag)
	if err != nil {
		fatalf("%v", err)
	}

	settings, err := loadSettings(*settingsFile)
	if err != nil {
		fatalf("%v", err)
	}
	if *buildDir != "" {
		settings.BuildDir = *buildDir
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
	if *ipbURL != "" {
		settings.Firmware.IPBus.URL = *ipbURL
	}
	if *ipbTag != "" {
		settings.Firmware.IPBus.Tag = *ipbTag
	}

	executor := gateways.NewCommandExecutor()
	vivado, err := newVivadoGateway(settings, executor)
	if err != nil {
		fatalf("%v", err)
	}
	logger := newLogger(*verbose)

	screen := gateways.NewScreenGateway(executor)
	orchestrator := orchestrators.NewSynthesisOrchestrator(
		xmlmenu.NewMenuParser(),
		gateways.NewDownloader(),
		vivado,
		gateways.NewIPBBGateway(executor),
		screen,
		executor,
		gateways.NewTemplateRenderer(),
		ini.NewConfigStore(),
		logger,
	)

	result, err := orchestrator.Synthesize(ctx, orchestrators.SynthesisConfig{
		MenuLocation: menuLocation,
		MenuName:     menuName,
		BuildTag:     tag,
		Settings:     settings,
		FirmwareType: *fwType,
	})
	if err != nil {
		fatalf("%v", err)
	}

	fmt.Printf("Build area: %s\n", result.BuildArea)
	fmt.Printf("Build config: %s\n", result.ConfigPath)
	fmt.Println("Started synthesis sessions:")
	for _, session := range result.Sessions {
		fmt.Printf("  screen -r %s\n", session)
	}
	if sessions, err := screen.ListSessions(ctx); err == nil {
		fmt.Println("Running screen sessions:")
		for _, session := range sessions {
			fmt.Printf("  %s\n", session)
		}
	}
}
