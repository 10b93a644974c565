package orchestrators

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain-adapters/gateways"
	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain/interfaces"
)

// SimlibOrchestrator compiles the Questa simulation libraries through
// Vivado. The libraries only need recompiling when the Vivado or Questa
// release changes.
type SimlibOrchestrator struct {
	vivado   VivadoTool
	archiver ProjectArchiver
	logger   interfaces.Logger
}

// NewSimlibOrchestrator creates a new simlib orchestrator
func NewSimlibOrchestrator(vivado VivadoTool, archiver ProjectArchiver, logger interfaces.Logger) *SimlibOrchestrator {
	return &SimlibOrchestrator{
		vivado:   vivado,
		archiver: archiver,
		logger:   logger,
	}
}

// Compile builds the simulation libraries into simlibDir. An existing
// library directory is left alone. The resulting modelsim.ini is
// copied to libsPath so the simulation scripts pick up the library
// mappings of this Vivado release.
func (o *SimlibOrchestrator) Compile(ctx context.Context, simlibDir, questaSimPath, libsPath string) error {
	if err := o.vivado.Validate(); err != nil {
		return err
	}

	if _, err := os.Stat(simlibDir); err == nil {
		o.logger.Info("simulation libraries already compiled, nothing to do",
			interfaces.F("dir", simlibDir))
	} else {
		if err := os.MkdirAll(simlibDir, 0750); err != nil {
			return fmt.Errorf("failed to create simlib directory: %w", err)
		}

		tclFile := filepath.Join(simlibDir, "compile_simlib.tcl")
		tcl := gateways.CompileSimlibTcl(simlibDir, filepath.Join(questaSimPath, "bin"))
		if err := os.WriteFile(tclFile, []byte(tcl), 0644); err != nil { //nolint:gosec // G306: Tcl scripts are world readable
			return fmt.Errorf("failed to write Tcl script: %w", err)
		}

		o.logger.Info("compiling simulation libraries",
			interfaces.F("dir", simlibDir),
			interfaces.F("vivado", o.vivado.Version()))
		if err := o.archiver.RunBatch(ctx, tclFile, simlibDir, 4*time.Hour); err != nil {
			return err
		}
		//nolint:errcheck // Best-effort cleanup of the generated script
		os.Remove(tclFile)
	}

	if libsPath == "" || libsPath == simlibDir {
		return nil
	}
	return o.copyModelsimIni(simlibDir, libsPath)
}

// copyModelsimIni places the compiled library mappings where the
// simulation flow expects them
func (o *SimlibOrchestrator) copyModelsimIni(simlibDir, libsPath string) error {
	src := filepath.Join(simlibDir, "modelsim.ini")
	//nolint:gosec // G304: src lives in the simlib directory created above
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("no modelsim.ini in %s: %w", simlibDir, err)
	}
	if err := os.MkdirAll(libsPath, 0750); err != nil {
		return fmt.Errorf("failed to create libraries directory: %w", err)
	}
	dst := filepath.Join(libsPath, "modelsim.ini")
	if err := os.WriteFile(dst, data, 0644); err != nil { //nolint:gosec // G306: Library mappings are world readable
		return fmt.Errorf("failed to copy modelsim.ini: %w", err)
	}
	o.logger.Info("copied modelsim.ini", interfaces.F("dest", dst))
	return nil
}
