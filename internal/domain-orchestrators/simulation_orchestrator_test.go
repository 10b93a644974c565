package orchestrators

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain-adapters/gateways"
	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain/entities"
	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain/interfaces"
	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain/services"
)

// testMenu returns a two module menu with one algorithm per module
func testMenu() *entities.Menu {
	return &entities.Menu{
		Name:     "L1Menu_test",
		UUIDMenu: "11111111-2222-3333-4444-555555555555",
		UUIDFw:   "66666666-7777-8888-9999-aaaaaaaaaaaa",
		NModules: 2,
		Algorithms: []entities.Algorithm{
			{Name: "L1_Alpha", Index: 0, ModuleID: 0, ModuleIndex: 0},
			{Name: "L1_Bravo", Index: 1, ModuleID: 1, ModuleIndex: 0},
		},
	}
}

type stubMenuParser struct {
	menu *entities.Menu
}

func (s *stubMenuParser) ParseFile(_ string) (*entities.Menu, error) {
	return s.menu, nil
}

// stubFetcher writes canned contents keyed by the file name of the
// requested location
type stubFetcher struct {
	contents map[string]string
}

func (s *stubFetcher) Fetch(_ context.Context, location, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0750); err != nil {
		return err
	}
	name := location[strings.LastIndex(location, "/")+1:]
	content, ok := s.contents[name]
	if !ok {
		content = "-- " + name
	}
	return os.WriteFile(dest, []byte(content), 0644)
}

// stubCloner fabricates a minimal ugt firmware tree with the template
// files the orchestrator renders
type stubCloner struct{}

func (s *stubCloner) CloneTag(_ context.Context, _, _, dir string) error {
	if filepath.Base(dir) != "ugt" {
		return os.MkdirAll(dir, 0750)
	}
	return writeFirmwareTemplates(filepath.Join(dir, "firmware"))
}

func (s *stubCloner) Describe(_ context.Context, _ string) (string, error) {
	return "v1.22.3", nil
}

// writeFirmwareTemplates lays out the algorithm-bearing firmware
// templates plus the simulation script and testbench templates
func writeFirmwareTemplates(fwDir string) error {
	files := []struct {
		name    string
		content string
	}{
		{filepath.Join("sim", "scripts", "gt_mp7_top_tb.do"), "vsim module {{MODULE_ID}} tv {{TESTVECTOR}} wave {{VIEW_WAVE}}\n"},
		{filepath.Join("sim", "testbench", "gt_mp7_top_pkg_tpl_sim.vhd"), "constant MODULE_ID : integer := {{MODULE_ID}};\n"},
		{filepath.Join("hdl", "payload", "fdl", "algo_mapping_rop_tpl.vhd"), "-- mapping\n{{algo_index}}\n"},
		{filepath.Join("hdl", "packages", "fdl_pkg_tpl.vhd"), "{{ugt_constants}}\n"},
		{filepath.Join("hdl", "payload", "gtl_module_tpl.vhd"), "{{gtl_module_signals}}\n{{gtl_module_instances}}\n"},
	}
	for _, f := range files {
		path := filepath.Join(fwDir, f.name)
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(f.content), 0644); err != nil {
			return err
		}
	}
	return nil
}

// stubSimulator performs the license handshake of the rendered do
// script and writes the per-module results file
type stubSimulator struct {
	mu             sync.Mutex
	events         []string
	transcriptLine string
}

func (s *stubSimulator) Validate() error { return nil }

func (s *stubSimulator) RunDo(_ context.Context, workDir, _, _, _ string, transcript io.Writer, _ time.Duration) error {
	moduleID, err := strconv.Atoi(strings.TrimPrefix(filepath.Base(workDir), "module_"))
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.events = append(s.events, fmt.Sprintf("start %d", moduleID))
	s.mu.Unlock()

	// The do script touches running.lock once vsim holds its license
	if err := os.WriteFile(filepath.Join(workDir, runningLockName), nil, 0644); err != nil {
		return err
	}

	results := entities.ModuleResults{
		Counts: []entities.ResultCount{{AlgoIndex: moduleID, AlgoSim: 1, AlgoTV: 1}},
	}
	data, err := json.Marshal(results)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(workDir, "results.json"), data, 0644); err != nil {
		return err
	}

	line := s.transcriptLine
	if line == "" {
		line = "# Errors: 0, Warnings: 0"
	}
	_, err = fmt.Fprintln(transcript, line)
	return err
}

// testVectorLine is one bunch crossing with algorithm bits 0 and 1 set
func testVectorLine() string {
	word := strings.Repeat("0", 127) + "3"
	return "0000 " + word + " 1\n"
}

func newSimulationOrchestrator(simulator Simulator, fetcher Fetcher) *SimulationOrchestrator {
	return NewSimulationOrchestrator(
		&stubMenuParser{menu: testMenu()},
		fetcher,
		&stubCloner{},
		simulator,
		gateways.NewTemplateRenderer(),
		services.NewTestVectorService(),
		services.NewSimReportService(),
		&interfaces.NoOpLogger{},
	)
}

func simulationConfig(workDir string) SimulationConfig {
	return SimulationConfig{
		MenuLocation:       "https://example.org/menus/L1Menu_test-d1",
		MenuName:           "L1Menu_test-d1",
		TestVectorLocation: "https://example.org/testvectors/TestVector_sample.txt",
		Settings:           entities.DefaultSettings(),
		QuestaLibsPath:     filepath.Join(workDir, "simlib"),
		WorkDir:            workDir,
		Timeout:            time.Minute,
	}
}

func TestSimulateRunsModulesStaggered(t *testing.T) {
	workDir := t.TempDir()
	simulator := &stubSimulator{}
	fetcher := &stubFetcher{contents: map[string]string{
		"TestVector_sample.txt": testVectorLine(),
		"algo_index.vhd":        "constant ALGO_INDEX : integer := 7;",
	}}

	o := newSimulationOrchestrator(simulator, fetcher)
	result, err := o.Simulate(context.Background(), simulationConfig(workDir))
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	if !result.Success {
		t.Errorf("expected passing simulation, got %d mismatches", result.Summary.MismatchCount)
	}

	// The second vsim must only start after the first signalled its
	// license checkout
	want := []string{"start 0", "start 1"}
	if len(simulator.events) != len(want) {
		t.Fatalf("expected events %v, got %v", want, simulator.events)
	}
	for i, e := range want {
		if simulator.events[i] != e {
			t.Errorf("event %d: expected %q, got %q", i, e, simulator.events[i])
		}
	}

	// The launcher consumes the handshake files
	for moduleID := 0; moduleID < 2; moduleID++ {
		lock := filepath.Join(workDir, fmt.Sprintf("module_%d", moduleID), runningLockName)
		if _, err := os.Stat(lock); err == nil {
			t.Errorf("handshake file of module %d not removed", moduleID)
		}
	}
}

func TestSimulateSplicesModuleSources(t *testing.T) {
	workDir := t.TempDir()
	fetcher := &stubFetcher{contents: map[string]string{
		"TestVector_sample.txt": testVectorLine(),
		"algo_index.vhd":        "constant ALGO_INDEX : integer := 7;",
	}}

	o := newSimulationOrchestrator(&stubSimulator{}, fetcher)
	if _, err := o.Simulate(context.Background(), simulationConfig(workDir)); err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}

	// The fetched snippet must appear in the rendered firmware source
	rendered, err := os.ReadFile(filepath.Join(workDir, "module_0", "vhdl", "algo_mapping_rop.vhd"))
	if err != nil {
		t.Fatalf("spliced source not written: %v", err)
	}
	if !strings.Contains(string(rendered), "constant ALGO_INDEX : integer := 7;") {
		t.Errorf("snippet not spliced into source:\n%s", rendered)
	}
	for _, name := range []string{"fdl_pkg.vhd", "gtl_module.vhd"} {
		if _, err := os.Stat(filepath.Join(workDir, "module_0", "vhdl", name)); err != nil {
			t.Errorf("spliced source %s not written: %v", name, err)
		}
	}

	// The do script carries the module specifics
	doFile, err := os.ReadFile(filepath.Join(workDir, "module_1", "sim.do"))
	if err != nil {
		t.Fatalf("do script not rendered: %v", err)
	}
	if !strings.Contains(string(doFile), "module 1") {
		t.Errorf("do script missing module id:\n%s", doFile)
	}
	if !strings.Contains(string(doFile), "testvector_module_1.txt") {
		t.Errorf("do script missing masked test vector:\n%s", doFile)
	}

	// The masked test vector keeps only the module's algorithm bit
	masked, err := os.ReadFile(filepath.Join(workDir, "module_1", "testvector_module_1.txt"))
	if err != nil {
		t.Fatalf("masked test vector not written: %v", err)
	}
	wantWord := strings.Repeat("0", 127) + "2"
	if !strings.Contains(string(masked), wantWord) {
		t.Errorf("unexpected masked algorithm word:\n%s", masked)
	}
}

func TestSimulateFailsOnTranscriptErrors(t *testing.T) {
	workDir := t.TempDir()
	simulator := &stubSimulator{transcriptLine: "# Errors: 2, Warnings: 0"}
	fetcher := &stubFetcher{contents: map[string]string{
		"TestVector_sample.txt": testVectorLine(),
	}}

	o := newSimulationOrchestrator(simulator, fetcher)
	_, err := o.Simulate(context.Background(), simulationConfig(workDir))
	if err == nil {
		t.Fatal("expected failure for transcript with errors")
	}
	if !strings.Contains(err.Error(), "vsim reported errors") {
		t.Errorf("unexpected error: %v", err)
	}
}
