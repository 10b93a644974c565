package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain-adapters/gateways"
	orchestrators "github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain-orchestrators"
	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain/services"
	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/external-adapters/ini"
)

func runArchive(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("archive", flag.ExitOnError)
	var (
		outputDir    = fs.String("o", "", "Output directory (default: <build-area>/archive)")
		module       = fs.Int("m", -1, "Archive only the given module index (default: all modules)")
		settingsFile = fs.String("settings", "", "Project settings file (ugt.yml)")
		verbose      = fs.Bool("verbose", false, "Enable debug output")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: ugt-fwtools archive <build-config> [options]

Archive the Vivado project of every module through archive_project and
bundle the archives with the build config for long-term storage. With
-m a single module is archived instead.

The Vivado installation is taken from %s and %s.

Options:
`, envVivadoBaseDir, envVivadoVersion)
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

	configPath := fs.Arg(0)
	configs := ini.NewConfigStore()
	cfg, err := configs.Load(configPath)
	if err != nil {
		fatalf("%v", err)
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
	if err := vivado.Validate(); err != nil {
		fatalf("%v", err)
	}

	logger := newLogger(*verbose)
	reports := orchestrators.NewReportOrchestrator(
		configs,
		services.NewSynthCheckService(),
		services.NewBuildReportService(),
		logger,
	)
	orchestrator := orchestrators.NewPackageOrchestrator(
		reports,
		gateways.NewPackager(),
		gateways.NewChecksumVerifier(),
		vivado,
		logger,
	)

	dir := *outputDir
	if dir == "" {
		dir = filepath.Join(cfg.Firmware.BuildArea, "archive")
	}

	bundle, err := orchestrator.ArchiveProjects(ctx, configPath, dir, cfg, *module)
	if err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("Project archive: %s\n", bundle)
}
