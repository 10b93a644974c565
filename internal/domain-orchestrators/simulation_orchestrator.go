// Package orchestrators coordinates complex workflows across gateways and
// domain services.
package orchestrators

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain-adapters/gateways"
	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain/entities"
	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain/interfaces"
	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain/services"
)

// MenuParser loads trigger menus from XML
type MenuParser interface {
	ParseFile(path string) (*entities.Menu, error)
}

// Fetcher retrieves remote or local files into the work area
type Fetcher interface {
	Fetch(ctx context.Context, location, dest string) error
}

// RepoCloner checks out firmware repositories at pinned tags
type RepoCloner interface {
	CloneTag(ctx context.Context, url, tag, dir string) error
	Describe(ctx context.Context, dir string) (string, error)
}

// Simulator runs QuestaSim do-files
type Simulator interface {
	Validate() error
	RunDo(ctx context.Context, workDir, doFile, modelsimIni, msgMode string, transcript io.Writer, timeout time.Duration) error
}

// TemplateRenderer renders testbench and script templates
type TemplateRenderer interface {
	RenderFile(src, dst string, replace map[string]string) error
	RenderVHDLFile(src, dst string, replace map[string]string) error
}

// SimulationConfig holds the inputs of one simulation campaign
type SimulationConfig struct {
	MenuLocation       string // directory holding xml/<name>.xml and vhdl snippets
	MenuName           string
	TestVectorLocation string
	Settings           *entities.Settings
	QuestaLibsPath     string
	MsgMode            string
	ViewWave           bool   // keep the waveform window enabled in the do script
	IgnoreProcErrors   bool   // skip algorithms known to disagree around train gaps
	WorkDir            string // empty means a fresh temp directory
	Timeout            time.Duration
}

// moduleRun tracks one module simulation in flight
type moduleRun struct {
	moduleID   int
	workDir    string
	transcript string
	err        error
}

// SimulationResult contains the outcome of a simulation campaign
type SimulationResult struct {
	Menu     *entities.Menu
	Summary  *services.SimSummary
	WorkDir  string
	Duration time.Duration
	Success  bool
}

// SimulationOrchestrator coordinates the full QuestaSim regression flow
type SimulationOrchestrator struct {
	menuParser MenuParser
	fetcher    Fetcher
	cloner     RepoCloner
	simulator  Simulator
	renderer   TemplateRenderer
	testvector *services.TestVectorService
	simreport  *services.SimReportService
	logger     interfaces.Logger
}

// NewSimulationOrchestrator creates a new simulation orchestrator
func NewSimulationOrchestrator(
	menuParser MenuParser,
	fetcher Fetcher,
	cloner RepoCloner,
	simulator Simulator,
	renderer TemplateRenderer,
	testvector *services.TestVectorService,
	simreport *services.SimReportService,
	logger interfaces.Logger,
) *SimulationOrchestrator {
	return &SimulationOrchestrator{
		menuParser: menuParser,
		fetcher:    fetcher,
		cloner:     cloner,
		simulator:  simulator,
		renderer:   renderer,
		testvector: testvector,
		simreport:  simreport,
		logger:     logger,
	}
}

// lock file handshake between the launcher and the module testbenches
const (
	runningLockName    = "running.lock"
	lockWaitTimeout    = 60 * time.Second
	lockPollPeriod     = 500 * time.Millisecond
	resultsWaitTimeout = 60 * time.Second
)

// Simulate runs every module of the menu against the test vector and
// compares simulated algorithm decisions with the emulator reference.
func (o *SimulationOrchestrator) Simulate(ctx context.Context, config SimulationConfig) (*SimulationResult, error) {
	startTime := time.Now()

	if err := o.simulator.Validate(); err != nil {
		return nil, err
	}

	// Step 1: set up the work area
	workDir := config.WorkDir
	if workDir == "" {
		dir, err := os.MkdirTemp("", fmt.Sprintf("sim_%s_", config.MenuName))
		if err != nil {
			return nil, fmt.Errorf("failed to create simulation work area: %w", err)
		}
		workDir = dir
	} else if err := os.MkdirAll(workDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create simulation work area: %w", err)
	}
	o.logger.Info("simulation work area", interfaces.F("dir", workDir))

	// Step 2: check out firmware sources at the pinned tags
	settings := config.Settings
	ugtDir := filepath.Join(workDir, "ugt")
	mp7Dir := filepath.Join(workDir, "mp7")
	if err := o.cloner.CloneTag(ctx, settings.Firmware.Ugt.URL, settings.Firmware.Ugt.Tag, ugtDir); err != nil {
		return nil, err
	}
	if version, err := o.cloner.Describe(ctx, ugtDir); err == nil {
		o.logger.Info("checked out ugt firmware", interfaces.F("version", version))
	}
	if err := o.cloner.CloneTag(ctx, settings.Firmware.MP7.URL, settings.Firmware.MP7.Tag, mp7Dir); err != nil {
		return nil, err
	}

	// Step 3: fetch menu XML and test vector
	menuFile := filepath.Join(workDir, config.MenuName+".xml")
	menuXMLLocation := joinLocation(config.MenuLocation, "xml", config.MenuName+".xml")
	if err := o.fetcher.Fetch(ctx, menuXMLLocation, menuFile); err != nil {
		return nil, fmt.Errorf("failed to fetch menu: %w", err)
	}
	tvFile := filepath.Join(workDir, "testvector.txt")
	if err := o.fetcher.Fetch(ctx, config.TestVectorLocation, tvFile); err != nil {
		return nil, fmt.Errorf("failed to fetch test vector: %w", err)
	}

	menu, err := o.menuParser.ParseFile(menuFile)
	if err != nil {
		return nil, err
	}
	o.logger.Info("loaded menu",
		interfaces.F("name", menu.Name),
		interfaces.F("modules", menu.NModules),
		interfaces.F("algorithms", len(menu.Algorithms)))

	// Step 4: fetch the per-module VHDL implementation snippets
	for moduleID := 0; moduleID < menu.NModules; moduleID++ {
		if err := o.setupModule(ctx, config, menu, workDir, ugtDir, tvFile, moduleID); err != nil {
			return nil, fmt.Errorf("failed to prepare module %d: %w", moduleID, err)
		}
	}

	// Step 5: run every module concurrently. The rendered do script
	// creates running.lock once vsim has checked out its license and
	// started executing; the next vsim only launches after that, so
	// the checkouts never race.
	runs := make([]*moduleRun, menu.NModules)
	var wg sync.WaitGroup
	var startErr error
	for moduleID := 0; moduleID < menu.NModules; moduleID++ {
		run := &moduleRun{
			moduleID:   moduleID,
			workDir:    filepath.Join(workDir, fmt.Sprintf("module_%d", moduleID)),
			transcript: filepath.Join(workDir, fmt.Sprintf("module_%d", moduleID), "transcript.log"),
		}
		runs[moduleID] = run

		wg.Add(1)
		go func(run *moduleRun) {
			defer wg.Done()
			run.err = o.runModule(ctx, config, run)
		}(run)

		lockFile := filepath.Join(run.workDir, runningLockName)
		if err := o.waitForFile(ctx, lockFile, lockWaitTimeout); err != nil {
			startErr = fmt.Errorf("module %d did not signal vsim startup: %w", moduleID, err)
			break
		}
		//nolint:errcheck // Handshake file, recreated by the next run
		os.Remove(lockFile)
	}
	wg.Wait()

	for _, run := range runs {
		if run != nil && run.err != nil {
			return nil, fmt.Errorf("module %d simulation failed: %w", run.moduleID, run.err)
		}
	}
	if startErr != nil {
		return nil, startErr
	}

	// Step 6: collect results and build the comparison summary
	tvCounts, err := o.loadTriggerCounts(tvFile)
	if err != nil {
		return nil, err
	}

	results := make(map[int]*entities.ModuleResults, menu.NModules)
	for _, run := range runs {
		moduleResults, err := o.simreport.LoadModuleResults(filepath.Join(run.workDir, "results.json"))
		if err != nil {
			return nil, fmt.Errorf("failed to load results of module %d: %w", run.moduleID, err)
		}
		results[run.moduleID] = moduleResults

		reportFile := filepath.Join(run.workDir, "mismatches.txt")
		if err := o.writeMismatchReport(reportFile, menu, moduleResults); err != nil {
			return nil, err
		}
	}

	summary := o.simreport.BuildSummary(menu, results, tvCounts, filepath.Base(config.TestVectorLocation), config.IgnoreProcErrors)

	return &SimulationResult{
		Menu:     menu,
		Summary:  summary,
		WorkDir:  workDir,
		Duration: time.Since(startTime),
		Success:  summary.Success,
	}, nil
}

// setupModule prepares the work directory of one module: VHDL snippets,
// masked test vector and the simulation do-file.
func (o *SimulationOrchestrator) setupModule(ctx context.Context, config SimulationConfig, menu *entities.Menu, workDir, ugtDir, tvFile string, moduleID int) error {
	moduleDir := filepath.Join(workDir, fmt.Sprintf("module_%d", moduleID))
	if err := os.MkdirAll(filepath.Join(moduleDir, "vhdl"), 0750); err != nil {
		return fmt.Errorf("failed to create module directory: %w", err)
	}

	// Menu distributions ship one VHDL snippet set per module
	for _, snippet := range vhdlSnippets {
		src := joinLocation(config.MenuLocation, "vhdl", fmt.Sprintf("module_%d", moduleID), "src", snippet)
		dst := filepath.Join(moduleDir, "vhdl", snippet)
		if err := o.fetcher.Fetch(ctx, src, dst); err != nil {
			return fmt.Errorf("failed to fetch snippet %s: %w", snippet, err)
		}
	}

	// Splice the snippets into the algorithm-bearing firmware templates
	vhdlDir := filepath.Join(moduleDir, "vhdl")
	if err := spliceVHDLTemplates(o.renderer, filepath.Join(ugtDir, "firmware"), vhdlDir, vhdlDir); err != nil {
		return err
	}

	// Mask the test vector down to the algorithms of this module
	mask := menu.ModuleMask(moduleID)
	//nolint:gosec // G304: tvFile lives in the work area created above
	in, err := os.Open(tvFile)
	if err != nil {
		return fmt.Errorf("failed to open test vector: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer in.Close()

	maskedFile := filepath.Join(moduleDir, fmt.Sprintf("testvector_module_%d.txt", moduleID))
	//nolint:gosec // G304: maskedFile lives in the work area created above
	out, err := os.Create(maskedFile)
	if err != nil {
		return fmt.Errorf("failed to create masked test vector: %w", err)
	}
	//nolint:errcheck // Defer close on file being written
	defer out.Close()

	if err := o.testvector.Mask(in, out, mask); err != nil {
		return fmt.Errorf("failed to mask test vector: %w", err)
	}

	// Render the do-file driving vsim for this module
	doTemplate := filepath.Join(ugtDir, "firmware", "sim", "scripts", "gt_mp7_top_tb.do")
	doFile := filepath.Join(moduleDir, "sim.do")
	viewWave := "0"
	if config.ViewWave {
		viewWave = "1"
	}
	replace := map[string]string{
		"{{UGT_DIR}}":     ugtDir,
		"{{MODULE_DIR}}":  moduleDir,
		"{{MODULE_ID}}":   fmt.Sprintf("%d", moduleID),
		"{{TESTVECTOR}}":  maskedFile,
		"{{SIMLIB_PATH}}": config.QuestaLibsPath,
		"{{VIEW_WAVE}}":   viewWave,
	}
	if err := o.renderer.RenderFile(doTemplate, doFile, replace); err != nil {
		return err
	}

	// The testbench constants carry the menu specifics
	tbTemplate := filepath.Join(ugtDir, "firmware", "sim", "testbench", "gt_mp7_top_pkg_tpl_sim.vhd")
	tbFile := filepath.Join(moduleDir, "vhdl", "gt_mp7_top_pkg_sim.vhd")
	if err := o.renderer.RenderVHDLFile(tbTemplate, tbFile, replace); err != nil {
		return err
	}

	return nil
}

// runModule executes the vsim run of one module and collects its
// results file once the testbench has flushed it.
func (o *SimulationOrchestrator) runModule(ctx context.Context, config SimulationConfig, run *moduleRun) error {
	//nolint:gosec // G304: transcript lives in the work area created above
	transcript, err := os.Create(run.transcript)
	if err != nil {
		return fmt.Errorf("failed to create transcript: %w", err)
	}
	//nolint:errcheck // Defer close on file being written
	defer transcript.Close()

	o.logger.Info("starting module simulation", interfaces.F("module", run.moduleID))

	modelsimIni := filepath.Join(config.QuestaLibsPath, "modelsim.ini")
	msgMode := config.MsgMode
	if msgMode == "" {
		msgMode = "tran"
	}
	if err := o.simulator.RunDo(ctx, run.workDir, "sim.do", modelsimIni, msgMode, transcript, config.Timeout); err != nil {
		return err
	}

	// The testbench writes results.json from inside the simulator, so
	// the file can land on disk after vsim already exited.
	if err := o.waitForFile(ctx, filepath.Join(run.workDir, "results.json"), resultsWaitTimeout); err != nil {
		return err
	}

	//nolint:gosec // G304: transcript lives in the work area created above
	data, err := os.ReadFile(run.transcript)
	if err != nil {
		return fmt.Errorf("failed to read transcript: %w", err)
	}
	return gateways.CheckTranscript(string(data))
}

// waitForFile blocks until the file exists or the timeout expires
func (o *SimulationOrchestrator) waitForFile(ctx context.Context, path string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if _, err := os.Stat(path); err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timeout waiting for %s", path)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockPollPeriod):
		}
	}
}

// loadTriggerCounts reads the reference trigger counts from the test vector
func (o *SimulationOrchestrator) loadTriggerCounts(tvFile string) ([]int, error) {
	//nolint:gosec // G304: tvFile lives in the work area created above
	in, err := os.Open(tvFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open test vector: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer in.Close()
	return o.testvector.TriggerCounts(in)
}

// writeMismatchReport writes the detailed per-event mismatch listing
func (o *SimulationOrchestrator) writeMismatchReport(path string, menu *entities.Menu, results *entities.ModuleResults) error {
	//nolint:gosec // G304: path lives in the work area created above
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create mismatch report: %w", err)
	}
	//nolint:errcheck // Defer close on file being written
	defer out.Close()
	return o.simreport.WriteMismatchReport(out, menu, results)
}

// joinLocation joins path elements onto a URL or filesystem location
func joinLocation(base string, elems ...string) string {
	if len(elems) == 0 {
		return base
	}
	joined := base
	for _, e := range elems {
		for len(joined) > 0 && joined[len(joined)-1] == '/' {
			joined = joined[:len(joined)-1]
		}
		joined = joined + "/" + e
	}
	return joined
}
