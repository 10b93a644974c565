package gateways

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain/entities"
)

// VivadoGateway wraps Xilinx Vivado batch invocations. Every call runs
// inside a bash shell that sources the settings64.sh of the selected
// Vivado release first.
type VivadoGateway struct {
	baseDir  string
	version  string
	executor *CommandExecutor
}

// NewVivadoGateway creates a gateway for one Vivado installation
func NewVivadoGateway(baseDir, version string, executor *CommandExecutor) *VivadoGateway {
	return &VivadoGateway{
		baseDir:  baseDir,
		version:  version,
		executor: executor,
	}
}

// Version returns the configured Vivado release (e.g. "2023.1")
func (g *VivadoGateway) Version() string {
	return g.version
}

// SettingsScript returns the path of the settings64.sh for this release
func (g *VivadoGateway) SettingsScript() string {
	return filepath.Join(g.baseDir, g.version, "settings64.sh")
}

// Validate checks that the installation exists and the version is sane
func (g *VivadoGateway) Validate() error {
	if err := entities.ValidateVivadoVersion(g.version); err != nil {
		return err
	}
	if !isDirectory(filepath.Join(g.baseDir, g.version)) {
		return fmt.Errorf("no Vivado installation at %s", filepath.Join(g.baseDir, g.version))
	}
	if _, err := os.Stat(g.SettingsScript()); err != nil {
		return fmt.Errorf("missing Vivado settings script %s: %w", g.SettingsScript(), err)
	}
	return nil
}

// RunBatch executes a Tcl script in Vivado batch mode
func (g *VivadoGateway) RunBatch(ctx context.Context, tclFile, workDir string, timeout time.Duration) error {
	shell := fmt.Sprintf("source %s && vivado -mode batch -source %s -nojournal -nolog",
		g.SettingsScript(), tclFile)
	result := g.executor.Execute(ctx, ExecuteCommandConfig{
		Shell:       shell,
		WorkingDir:  workDir,
		Timeout:     timeout,
		Description: fmt.Sprintf("vivado -mode batch -source %s", filepath.Base(tclFile)),
	})
	if !result.Success {
		return fmt.Errorf("vivado batch run failed (exit %d): %s",
			result.ExitCode, lastLines(result.Stdout+result.Stderr, 5))
	}
	return nil
}

// ArchiveProjectTcl builds the Tcl script that archives a Vivado project
func ArchiveProjectTcl(projectFile, archivePath string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "open_project %s\n", projectFile)
	fmt.Fprintf(&sb, "archive_project %s -force -include_config_settings\n", archivePath)
	sb.WriteString("close_project\n")
	return sb.String()
}

// CompileSimlibTcl builds the Tcl script that compiles the Questa
// simulation libraries for the uGT target family.
func CompileSimlibTcl(simlibDir, questaBinDir string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "compile_simlib -directory %s", simlibDir)
	sb.WriteString(" -simulator questa")
	fmt.Fprintf(&sb, " -simulator_exec_path %s", questaBinDir)
	sb.WriteString(" -family virtex7 -language vhdl -library all\n")
	return sb.String()
}

// lastLines returns the trailing n non-empty lines of output
func lastLines(output string, n int) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
