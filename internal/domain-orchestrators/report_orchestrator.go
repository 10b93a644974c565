package orchestrators

import (
	"fmt"
	"io"

	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain/entities"
	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain/interfaces"
	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain/services"
)

// CheckResult contains the outcome of a synthesis check
type CheckResult struct {
	Config  *entities.BuildConfig
	Checks  []*entities.ModuleCheck
	Success bool
}

// ReportOrchestrator inspects finished builds: it verifies synthesis
// results module by module and renders the final build report.
type ReportOrchestrator struct {
	configs     ConfigStore
	synthcheck  *services.SynthCheckService
	buildreport *services.BuildReportService
	logger      interfaces.Logger
}

// NewReportOrchestrator creates a new report orchestrator
func NewReportOrchestrator(
	configs ConfigStore,
	synthcheck *services.SynthCheckService,
	buildreport *services.BuildReportService,
	logger interfaces.Logger,
) *ReportOrchestrator {
	return &ReportOrchestrator{
		configs:     configs,
		synthcheck:  synthcheck,
		buildreport: buildreport,
		logger:      logger,
	}
}

// CheckSynthesis verifies bitfiles, logs and timing for every module of
// a build described by its config file.
func (o *ReportOrchestrator) CheckSynthesis(configPath string) (*CheckResult, error) {
	cfg, err := o.configs.Load(configPath)
	if err != nil {
		return nil, err
	}

	result := &CheckResult{Config: cfg, Success: true}
	for moduleID := 0; moduleID < cfg.Menu.Modules; moduleID++ {
		check, err := o.synthcheck.CheckModule(cfg.Firmware.BuildArea, moduleID)
		if err != nil {
			return nil, fmt.Errorf("failed to check module %d: %w", moduleID, err)
		}
		if !check.Passed() {
			result.Success = false
		}
		o.logger.Debug("checked module",
			interfaces.F("module", moduleID),
			interfaces.F("passed", check.Passed()))
		result.Checks = append(result.Checks, check)
	}
	return result, nil
}

// WriteBuildReport checks the build and renders the report to w
func (o *ReportOrchestrator) WriteBuildReport(w io.Writer, configPath string) (*CheckResult, error) {
	result, err := o.CheckSynthesis(configPath)
	if err != nil {
		return nil, err
	}
	o.buildreport.Render(w, result.Config, result.Checks)
	return result, nil
}
