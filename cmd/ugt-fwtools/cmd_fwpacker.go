package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain-adapters/gateways"
	orchestrators "github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain-orchestrators"
	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain/services"
	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/external-adapters/gpg"
	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/external-adapters/ini"
)

func runFwPacker(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("fwpacker", flag.ExitOnError)
	var (
		outputDir = fs.String("o", "", "Output directory (default: the build area)")
		signKey   = fs.String("sign-key", "", "Armored private key for a detached bundle signature")
		verbose   = fs.Bool("verbose", false, "Enable debug output")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: ugt-fwtools fwpacker <build-config> [options]

Pack a verified build into a firmware bundle: the per-module bitfiles,
the build config and the menu. A sha256 sidecar is always written;
with --sign-key the bundle also gets a detached PGP signature.

Builds with failing modules are refused.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Pack and sign a finished build
  ugt-fwtools fwpacker build_0x113a.cfg --sign-key ~/.keys/ugt-release.asc
`)
	}

	if err := fs.Parse(args); err != nil {
		fatalf("parsing flags: %v", err)
	}
	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: build config path is required\n\n")
		fs.Usage()
		os.Exit(1)
	}

	logger := newLogger(*verbose)
	reports := orchestrators.NewReportOrchestrator(
		ini.NewConfigStore(),
		services.NewSynthCheckService(),
		services.NewBuildReportService(),
		logger,
	)
	orchestrator := orchestrators.NewPackageOrchestrator(
		reports,
		gateways.NewPackager(),
		gateways.NewChecksumVerifier(),
		nil,
		logger,
	)

	config := orchestrators.PackConfig{
		ConfigPath: fs.Arg(0),
		OutputDir:  *outputDir,
	}
	if *signKey != "" {
		signer, err := gpg.NewSignerFromFile(*signKey)
		if err != nil {
			fatalf("%v", err)
		}
		config.Signer = signer
	}

	result, err := orchestrator.PackFirmware(ctx, config)
	if err != nil {
		fatalf("%v", err)
	}

	if result.SignaturePath != "" {
		// Self-check: the signature must verify against its own key
		verifier, err := gpg.NewVerifierFromFile(*signKey)
		if err != nil {
			fatalf("%v", err)
		}
		if err := verifier.VerifyFile(result.BundlePath, result.SignaturePath); err != nil {
			fatalf("signature self-check failed: %v", err)
		}
	}

	fmt.Printf("Firmware bundle: %s\n", result.BundlePath)
	fmt.Printf("Checksum: %s\n", result.ChecksumPath)
	if result.SignaturePath != "" {
		fmt.Printf("Signature: %s\n", result.SignaturePath)
	}
}
