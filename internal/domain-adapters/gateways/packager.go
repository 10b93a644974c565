package gateways

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain/entities"
)

// PackFile is one file to place into a firmware bundle under a chosen
// archive-internal name.
type PackFile struct {
	Source string
	Name   string
}

// Packager bundles build results into distributable firmware tarballs
type Packager struct{}

// NewPackager creates a new packager
func NewPackager() *Packager {
	return &Packager{}
}

// BundleName returns the canonical firmware bundle file name for a build
func BundleName(menuName, buildTag string) string {
	return fmt.Sprintf("%s_v%s.tar.gz", menuName, buildTag)
}

// CollectFirmwareFiles gathers the files that belong into a firmware
// bundle: per-module bitfiles and synthesis logs, the build config and
// the menu XML.
func (p *Packager) CollectFirmwareFiles(cfg *entities.BuildConfig, checks []*entities.ModuleCheck, configPath string) ([]PackFile, error) {
	var files []PackFile

	for _, check := range checks {
		if !check.BitfileFound {
			return nil, fmt.Errorf("module %d has no bitfile, refusing to pack an incomplete build", check.ModuleID)
		}
		files = append(files, PackFile{
			Source: check.BitfilePath,
			Name:   fmt.Sprintf("module_%d/%s", check.ModuleID, filepath.Base(check.BitfilePath)),
		})

		module := fmt.Sprintf("module_%d", check.ModuleID)
		implLog := filepath.Join(cfg.Firmware.BuildArea, "proj", module, module, module+".runs", "impl_1", "runme.log")
		if _, err := os.Stat(implLog); err == nil {
			files = append(files, PackFile{Source: implLog, Name: filepath.Join(module, "runme.log")})
		}
	}

	files = append(files, PackFile{
		Source: configPath,
		Name:   filepath.Base(configPath),
	})

	menuLocation := cfg.Menu.Location
	if !IsURL(menuLocation) {
		xmlName := cfg.Menu.Name + ".xml"
		menuFile := filepath.Join(menuLocation, "xml", xmlName)
		if _, err := os.Stat(menuFile); err == nil {
			files = append(files, PackFile{Source: menuFile, Name: filepath.Join("menu", xmlName)})
		}
	}

	return files, nil
}

// Pack writes the given files into a gzipped tarball
func (p *Packager) Pack(files []PackFile, tarballPath string) error {
	if err := os.MkdirAll(filepath.Dir(tarballPath), 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	//nolint:gosec // G304: File path tarballPath is constructed for package output
	out, err := os.Create(tarballPath)
	if err != nil {
		return fmt.Errorf("failed to create tarball file: %w", err)
	}
	//nolint:errcheck // Defer close
	defer out.Close()

	gzipWriter := gzip.NewWriter(out)
	//nolint:errcheck // Defer close
	defer gzipWriter.Close()

	tarWriter := tar.NewWriter(gzipWriter)
	//nolint:errcheck // Defer close
	defer tarWriter.Close()

	for _, f := range files {
		if err := p.addFile(tarWriter, f); err != nil {
			return fmt.Errorf("failed to add %s: %w", f.Source, err)
		}
	}

	if err := tarWriter.Close(); err != nil {
		return fmt.Errorf("failed to finalize tarball: %w", err)
	}
	if err := gzipWriter.Close(); err != nil {
		return fmt.Errorf("failed to finalize gzip stream: %w", err)
	}
	return nil
}

// addFile appends one file entry to the tar stream
func (p *Packager) addFile(tarWriter *tar.Writer, f PackFile) error {
	//nolint:gosec // G304: sourceFile is function parameter for packaging
	file, err := os.Open(f.Source)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	//nolint:errcheck // Defer close
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat source file: %w", err)
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("failed to create tar header: %w", err)
	}
	header.Name = strings.ReplaceAll(f.Name, string(os.PathSeparator), "/")

	if err := tarWriter.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write tar header: %w", err)
	}
	if _, err := io.Copy(tarWriter, file); err != nil {
		return fmt.Errorf("failed to write file to tar: %w", err)
	}
	return nil
}
