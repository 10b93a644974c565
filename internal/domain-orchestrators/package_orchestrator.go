package orchestrators

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain-adapters/gateways"
	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain/entities"
	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain/interfaces"
)

// FirmwareSigner produces detached signatures for firmware bundles
type FirmwareSigner interface {
	SignFile(filePath, sigPath string) error
}

// ChecksumWriter writes and verifies sha256sum sidecar files
type ChecksumWriter interface {
	WriteChecksumFile(filePath string) (string, error)
	VerifyChecksumFile(ctx context.Context, filePath, sidecarPath string) error
}

// ProjectArchiver produces Vivado project archives
type ProjectArchiver interface {
	RunBatch(ctx context.Context, tclFile, workDir string, timeout time.Duration) error
}

// PackConfig holds the inputs of a firmware packaging run
type PackConfig struct {
	ConfigPath string
	OutputDir  string
	Signer     FirmwareSigner // optional
}

// PackResult contains the produced bundle and its sidecar files
type PackResult struct {
	BundlePath    string
	ChecksumPath  string
	SignaturePath string
}

// PackageOrchestrator bundles verified builds into distributable
// firmware tarballs and archives Vivado projects for long-term storage.
type PackageOrchestrator struct {
	reports   *ReportOrchestrator
	packager  *gateways.Packager
	checksums ChecksumWriter
	archiver  ProjectArchiver
	logger    interfaces.Logger
}

// NewPackageOrchestrator creates a new package orchestrator
func NewPackageOrchestrator(
	reports *ReportOrchestrator,
	packager *gateways.Packager,
	checksums ChecksumWriter,
	archiver ProjectArchiver,
	logger interfaces.Logger,
) *PackageOrchestrator {
	return &PackageOrchestrator{
		reports:   reports,
		packager:  packager,
		checksums: checksums,
		archiver:  archiver,
		logger:    logger,
	}
}

// PackFirmware verifies the build and packs it into a tarball with a
// checksum sidecar and an optional detached signature. Builds with
// failing modules are refused.
func (o *PackageOrchestrator) PackFirmware(ctx context.Context, config PackConfig) (*PackResult, error) {
	check, err := o.reports.CheckSynthesis(config.ConfigPath)
	if err != nil {
		return nil, err
	}
	if !check.Success {
		return nil, fmt.Errorf("build has failing modules, refusing to pack (run the synthesis check for details)")
	}

	cfg := check.Config
	files, err := o.packager.CollectFirmwareFiles(cfg, check.Checks, config.ConfigPath)
	if err != nil {
		return nil, err
	}

	outputDir := config.OutputDir
	if outputDir == "" {
		outputDir = cfg.Firmware.BuildArea
	}
	bundlePath := filepath.Join(outputDir, gateways.BundleName(cfg.Menu.Name, cfg.Menu.Build))
	if err := o.packager.Pack(files, bundlePath); err != nil {
		return nil, err
	}
	o.logger.Info("packed firmware bundle", interfaces.F("path", bundlePath))

	checksumPath, err := o.checksums.WriteChecksumFile(bundlePath)
	if err != nil {
		return nil, err
	}
	if err := o.checksums.VerifyChecksumFile(ctx, bundlePath, checksumPath); err != nil {
		return nil, fmt.Errorf("checksum self-check failed: %w", err)
	}

	result := &PackResult{BundlePath: bundlePath, ChecksumPath: checksumPath}
	if config.Signer != nil {
		sigPath := bundlePath + ".asc"
		if err := config.Signer.SignFile(bundlePath, sigPath); err != nil {
			return nil, fmt.Errorf("failed to sign bundle: %w", err)
		}
		result.SignaturePath = sigPath
		o.logger.Info("signed firmware bundle", interfaces.F("path", sigPath))
	}
	return result, nil
}

// ArchiveProjects archives module projects of a build through Vivado
// and bundles the archives with the build config. A module index of -1
// selects every module of the build.
func (o *PackageOrchestrator) ArchiveProjects(ctx context.Context, configPath, outputDir string, cfg *entities.BuildConfig, module int) (string, error) {
	if module >= cfg.Menu.Modules {
		return "", fmt.Errorf("module %d out of range, build has %d modules", module, cfg.Menu.Modules)
	}
	if err := os.MkdirAll(outputDir, 0750); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	modules := make([]int, 0, cfg.Menu.Modules)
	if module >= 0 {
		modules = append(modules, module)
	} else {
		for moduleID := 0; moduleID < cfg.Menu.Modules; moduleID++ {
			modules = append(modules, moduleID)
		}
	}

	for _, moduleID := range modules {
		name := fmt.Sprintf("module_%d", moduleID)
		projectFile := filepath.Join(cfg.Firmware.BuildArea, "proj", name, name, name+".xpr")
		if _, err := os.Stat(projectFile); err != nil {
			return "", fmt.Errorf("no Vivado project for module %d: %w", moduleID, err)
		}
		archivePath := filepath.Join(outputDir, archiveName(cfg.Menu.Build, moduleID))

		tclFile := filepath.Join(outputDir, name+"_archive.tcl")
		tcl := gateways.ArchiveProjectTcl(projectFile, archivePath)
		if err := os.WriteFile(tclFile, []byte(tcl), 0644); err != nil { //nolint:gosec // G306: Tcl scripts are world readable
			return "", fmt.Errorf("failed to write Tcl script: %w", err)
		}

		o.logger.Info("archiving project", interfaces.F("module", moduleID))
		if err := o.archiver.RunBatch(ctx, tclFile, outputDir, 2*time.Hour); err != nil {
			return "", fmt.Errorf("failed to archive module %d: %w", moduleID, err)
		}
		//nolint:errcheck // Best-effort cleanup of the generated script
		os.Remove(tclFile)
	}

	// Carry the build config along so the archive stays self-describing
	bundlePath := filepath.Join(outputDir, fmt.Sprintf("%s_v%s_projects.tar.gz", cfg.Menu.Name, cfg.Menu.Build))
	files := []gateways.PackFile{{Source: configPath, Name: filepath.Base(configPath)}}
	for _, moduleID := range modules {
		name := archiveName(cfg.Menu.Build, moduleID)
		files = append(files, gateways.PackFile{Source: filepath.Join(outputDir, name), Name: name})
	}
	if err := o.packager.Pack(files, bundlePath); err != nil {
		return "", err
	}
	o.logger.Info("archived build", interfaces.F("path", bundlePath))
	return bundlePath, nil
}

// archiveName is the zip name of a single archived module project,
// eg 0x118a_module_0.zip.
func archiveName(build string, moduleID int) string {
	return fmt.Sprintf("0x%s_module_%d.zip", build, moduleID)
}
