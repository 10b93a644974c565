package orchestrators

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain-adapters/gateways"
	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain/entities"
	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain/interfaces"
	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain/services"
)

// stubConfigStore serves a fixed build config for orchestrator tests
type stubConfigStore struct {
	cfg   *entities.BuildConfig
	saved string
}

func (s *stubConfigStore) Load(_ string) (*entities.BuildConfig, error) {
	return s.cfg, nil
}

func (s *stubConfigStore) Save(_ *entities.BuildConfig, filePath string) error {
	s.saved = filePath
	return nil
}

// writeModuleProject lays out a minimal Vivado project tree for one module
func writeModuleProject(t *testing.T, buildArea string, moduleID int, withBitfile bool, logContent string) {
	t.Helper()
	name := "module_" + string(rune('0'+moduleID))
	implDir := filepath.Join(buildArea, "proj", name, name, name+".runs", "impl_1")
	if err := os.MkdirAll(implDir, 0750); err != nil {
		t.Fatalf("failed to create project tree: %v", err)
	}
	if withBitfile {
		if err := os.WriteFile(filepath.Join(implDir, "gt_mp7_xe.bit"), []byte("bits"), 0644); err != nil {
			t.Fatalf("failed to write bitfile: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(implDir, "runme.log"), []byte(logContent), 0644); err != nil {
		t.Fatalf("failed to write log: %v", err)
	}
}

func testBuildConfig(buildArea string) *entities.BuildConfig {
	cfg := &entities.BuildConfig{}
	cfg.Menu.Build = "113a"
	cfg.Menu.Name = "L1Menu_test-d1"
	cfg.Menu.Location = "https://example.org/menus/L1Menu_test-d1"
	cfg.Menu.Modules = 1
	cfg.Firmware.BuildArea = buildArea
	return cfg
}

func newReportOrchestrator(store ConfigStore) *ReportOrchestrator {
	return NewReportOrchestrator(store,
		services.NewSynthCheckService(),
		services.NewBuildReportService(),
		&interfaces.NoOpLogger{})
}

func TestBuildAreaPath(t *testing.T) {
	settings := entities.DefaultSettings()
	settings.BuildDir = "/work/production"

	got := BuildAreaPath(settings, "2023.1", "L1Menu_test-d1", "113a")
	want := filepath.Join("/work/production", "2023.1", "L1Menu_test-d1", "build_0x113a")
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestSynthCommand(t *testing.T) {
	cmd := SynthCommand("/opt/Xilinx/Vivado/2023.1/settings64.sh", "/work/proj/module_0")
	for _, want := range []string{
		"source /opt/Xilinx/Vivado/2023.1/settings64.sh",
		"cd /work/proj/module_0",
		"ipbb vivado generate-project",
		"ipbb vivado synth",
		"ipbb vivado impl",
		"ipbb vivado package",
	} {
		if !strings.Contains(cmd, want) {
			t.Errorf("command missing %q: %s", want, cmd)
		}
	}
}

func TestSessionName(t *testing.T) {
	if got := SessionName("113a", 3); got != "build_0x113a_module_3" {
		t.Errorf("unexpected session name: %q", got)
	}
}

func TestJoinLocation(t *testing.T) {
	tests := []struct {
		base  string
		elems []string
		want  string
	}{
		{"https://example.org/menu", []string{"xml", "L1Menu.xml"}, "https://example.org/menu/xml/L1Menu.xml"},
		{"https://example.org/menu/", []string{"xml"}, "https://example.org/menu/xml"},
		{"/local/menu", []string{"vhdl", "module_0"}, "/local/menu/vhdl/module_0"},
		{"/local/menu", nil, "/local/menu"},
	}
	for _, tt := range tests {
		if got := joinLocation(tt.base, tt.elems...); got != tt.want {
			t.Errorf("joinLocation(%q, %v) = %q, want %q", tt.base, tt.elems, got, tt.want)
		}
	}
}

func TestCheckSynthesisPassing(t *testing.T) {
	buildArea := t.TempDir()
	writeModuleProject(t, buildArea, 0, true, "INFO: all good\n")

	store := &stubConfigStore{cfg: testBuildConfig(buildArea)}
	o := newReportOrchestrator(store)

	result, err := o.CheckSynthesis("build_0x113a.cfg")
	if err != nil {
		t.Fatalf("CheckSynthesis failed: %v", err)
	}
	if !result.Success {
		t.Error("expected passing check")
	}
	if len(result.Checks) != 1 {
		t.Fatalf("expected 1 module check, got %d", len(result.Checks))
	}
	if !result.Checks[0].BitfileFound {
		t.Error("expected bitfile to be found")
	}
}

func TestCheckSynthesisFailing(t *testing.T) {
	buildArea := t.TempDir()
	writeModuleProject(t, buildArea, 0, false, "ERROR: [Synth 8-439] module not found\n")

	store := &stubConfigStore{cfg: testBuildConfig(buildArea)}
	o := newReportOrchestrator(store)

	result, err := o.CheckSynthesis("build_0x113a.cfg")
	if err != nil {
		t.Fatalf("CheckSynthesis failed: %v", err)
	}
	if result.Success {
		t.Error("expected failing check")
	}
	if len(result.Checks[0].Errors) != 1 {
		t.Errorf("expected 1 logged error, got %v", result.Checks[0].Errors)
	}
}

func TestWriteBuildReport(t *testing.T) {
	buildArea := t.TempDir()
	writeModuleProject(t, buildArea, 0, true, "")

	store := &stubConfigStore{cfg: testBuildConfig(buildArea)}
	o := newReportOrchestrator(store)

	var out strings.Builder
	if _, err := o.WriteBuildReport(&out, "build_0x113a.cfg"); err != nil {
		t.Fatalf("WriteBuildReport failed: %v", err)
	}
	if !strings.Contains(out.String(), "0x113a") {
		t.Errorf("report missing build tag:\n%s", out.String())
	}
}

func TestPackFirmware(t *testing.T) {
	buildArea := t.TempDir()
	writeModuleProject(t, buildArea, 0, true, "")

	configPath := filepath.Join(buildArea, "build_0x113a.cfg")
	if err := os.WriteFile(configPath, []byte("[menu]\nbuild = 113a\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	store := &stubConfigStore{cfg: testBuildConfig(buildArea)}
	checksums := gateways.NewChecksumVerifier()
	o := NewPackageOrchestrator(newReportOrchestrator(store),
		gateways.NewPackager(), checksums, nil, &interfaces.NoOpLogger{})

	result, err := o.PackFirmware(context.Background(), PackConfig{ConfigPath: configPath, OutputDir: buildArea})
	if err != nil {
		t.Fatalf("PackFirmware failed: %v", err)
	}

	wantBundle := filepath.Join(buildArea, "L1Menu_test-d1_v113a.tar.gz")
	if result.BundlePath != wantBundle {
		t.Errorf("unexpected bundle path: %q", result.BundlePath)
	}
	if _, err := os.Stat(result.BundlePath); err != nil {
		t.Errorf("bundle not written: %v", err)
	}
	if _, err := os.Stat(result.ChecksumPath); err != nil {
		t.Errorf("checksum sidecar not written: %v", err)
	}
	if result.SignaturePath != "" {
		t.Errorf("unexpected signature path without signer: %q", result.SignaturePath)
	}
}

func TestPackFirmwareRefusesFailedBuild(t *testing.T) {
	buildArea := t.TempDir()
	writeModuleProject(t, buildArea, 0, false, "ERROR: placer failed\n")

	store := &stubConfigStore{cfg: testBuildConfig(buildArea)}
	o := NewPackageOrchestrator(newReportOrchestrator(store),
		gateways.NewPackager(), gateways.NewChecksumVerifier(), nil, &interfaces.NoOpLogger{})

	if _, err := o.PackFirmware(context.Background(), PackConfig{ConfigPath: "build_0x113a.cfg"}); err == nil {
		t.Error("expected refusal for failed build")
	}
}

// stubArchiver fabricates the project archive Vivado would write
type stubArchiver struct {
	zipName string
}

func (s *stubArchiver) RunBatch(_ context.Context, _, workDir string, _ time.Duration) error {
	return os.WriteFile(filepath.Join(workDir, s.zipName), []byte("zip"), 0644)
}

func TestArchiveProjectsSingleModule(t *testing.T) {
	buildArea := t.TempDir()
	cfg := testBuildConfig(buildArea)
	cfg.Menu.Modules = 2

	// Only module 1 has a project; archiving just that module must not
	// touch module 0
	projDir := filepath.Join(buildArea, "proj", "module_1", "module_1")
	if err := os.MkdirAll(projDir, 0750); err != nil {
		t.Fatalf("failed to create project tree: %v", err)
	}
	if err := os.WriteFile(filepath.Join(projDir, "module_1.xpr"), []byte("xpr"), 0644); err != nil {
		t.Fatalf("failed to write project file: %v", err)
	}

	configPath := filepath.Join(buildArea, "build_0x113a.cfg")
	if err := os.WriteFile(configPath, []byte("[menu]\nbuild = 113a\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	outputDir := filepath.Join(buildArea, "archive")
	store := &stubConfigStore{cfg: cfg}
	o := NewPackageOrchestrator(newReportOrchestrator(store),
		gateways.NewPackager(), gateways.NewChecksumVerifier(),
		&stubArchiver{zipName: "0x113a_module_1.zip"}, &interfaces.NoOpLogger{})

	bundle, err := o.ArchiveProjects(context.Background(), configPath, outputDir, cfg, 1)
	if err != nil {
		t.Fatalf("ArchiveProjects failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(outputDir, "0x113a_module_1.zip")); err != nil {
		t.Errorf("module archive not written: %v", err)
	}
	if want := filepath.Join(outputDir, "L1Menu_test-d1_v113a_projects.tar.gz"); bundle != want {
		t.Errorf("unexpected bundle path: %q", bundle)
	}
	if _, err := os.Stat(bundle); err != nil {
		t.Errorf("bundle not written: %v", err)
	}
}

func TestArchiveProjectsRejectsOutOfRangeModule(t *testing.T) {
	buildArea := t.TempDir()
	cfg := testBuildConfig(buildArea)

	o := NewPackageOrchestrator(newReportOrchestrator(&stubConfigStore{cfg: cfg}),
		gateways.NewPackager(), gateways.NewChecksumVerifier(),
		&stubArchiver{}, &interfaces.NoOpLogger{})

	if _, err := o.ArchiveProjects(context.Background(), "build_0x113a.cfg", buildArea, cfg, 5); err == nil {
		t.Error("expected error for out of range module")
	}
}
