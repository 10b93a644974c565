package orchestrators

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"time"

	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain/entities"
	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain/interfaces"
)

// VivadoTool exposes the Vivado installation used for synthesis
type VivadoTool interface {
	Validate() error
	Version() string
	SettingsScript() string
}

// IPBBTool drives the ipbb work area assembly
type IPBBTool interface {
	Version(ctx context.Context) (string, error)
	Init(ctx context.Context, dir string) error
	AddGit(ctx context.Context, workArea, url, tag string) error
	ProjCreate(ctx context.Context, workArea, project, component, depFile string) error
}

// SessionStarter launches detached build sessions
type SessionStarter interface {
	StartDetached(ctx context.Context, session, command string) error
}

// ShellRunner runs a foreground shell command, streaming its output
type ShellRunner interface {
	RunShell(ctx context.Context, shell, workDir string, output io.Writer, timeout time.Duration) error
}

// ConfigStore persists build configs
type ConfigStore interface {
	Save(cfg *entities.BuildConfig, filePath string) error
	Load(filePath string) (*entities.BuildConfig, error)
}

// SynthesisConfig holds the inputs of one synthesis campaign
type SynthesisConfig struct {
	MenuLocation string
	MenuName     string
	BuildTag     string // normalized, no 0x prefix
	Settings     *entities.Settings
	FirmwareType string
}

// SynthesisResult contains the outcome of the synthesis setup
type SynthesisResult struct {
	Menu       *entities.Menu
	BuildArea  string
	ConfigPath string
	Sessions   []string
}

// SynthesisOrchestrator assembles ipbb build areas and launches one
// detached Vivado synthesis session per uGT module.
type SynthesisOrchestrator struct {
	menuParser MenuParser
	fetcher    Fetcher
	vivado     VivadoTool
	ipbb       IPBBTool
	screen     SessionStarter
	runner     ShellRunner
	renderer   TemplateRenderer
	configs    ConfigStore
	logger     interfaces.Logger
}

// NewSynthesisOrchestrator creates a new synthesis orchestrator
func NewSynthesisOrchestrator(
	menuParser MenuParser,
	fetcher Fetcher,
	vivado VivadoTool,
	ipbb IPBBTool,
	screen SessionStarter,
	runner ShellRunner,
	renderer TemplateRenderer,
	configs ConfigStore,
	logger interfaces.Logger,
) *SynthesisOrchestrator {
	return &SynthesisOrchestrator{
		menuParser: menuParser,
		fetcher:    fetcher,
		vivado:     vivado,
		ipbb:       ipbb,
		screen:     screen,
		runner:     runner,
		renderer:   renderer,
		configs:    configs,
		logger:     logger,
	}
}

// BuildAreaPath returns the canonical build area location for a build
func BuildAreaPath(settings *entities.Settings, vivadoVersion, menuName, buildTag string) string {
	return filepath.Join(settings.BuildDir, vivadoVersion, menuName, "build_0x"+buildTag)
}

// SynthCommand returns the shell command running the full ipbb Vivado
// flow for one module project.
func SynthCommand(settingsScript, projectDir string) string {
	return fmt.Sprintf("source %s && cd %s && ipbb vivado generate-project && ipbb vivado synth && ipbb vivado impl && ipbb vivado package",
		settingsScript, projectDir)
}

// SessionName returns the screen session name of one module build
func SessionName(buildTag string, moduleID int) string {
	return fmt.Sprintf("build_0x%s_module_%d", buildTag, moduleID)
}

// Synthesize sets up the build area and starts all module builds
func (o *SynthesisOrchestrator) Synthesize(ctx context.Context, config SynthesisConfig) (*SynthesisResult, error) {
	if err := o.vivado.Validate(); err != nil {
		return nil, err
	}
	ipbbVersion, err := o.ipbb.Version(ctx)
	if err != nil {
		return nil, err
	}
	if err := entities.ValidateIPBBVersion(ipbbVersion); err != nil {
		return nil, err
	}

	settings := config.Settings

	// Step 1: create the build area, refusing to touch an existing one
	buildArea := BuildAreaPath(settings, o.vivado.Version(), config.MenuName, config.BuildTag)
	if _, err := os.Stat(buildArea); err == nil {
		return nil, fmt.Errorf("build area %s already exists, choose a new build tag", buildArea)
	}
	if err := os.MkdirAll(filepath.Dir(buildArea), 0750); err != nil {
		return nil, fmt.Errorf("failed to create build directory: %w", err)
	}
	if err := o.ipbb.Init(ctx, buildArea); err != nil {
		return nil, err
	}
	o.logger.Info("created build area", interfaces.F("dir", buildArea))

	// Step 2: add the firmware sources at the pinned tags
	if err := o.ipbb.AddGit(ctx, buildArea, settings.Firmware.IPBus.URL, settings.Firmware.IPBus.Tag); err != nil {
		return nil, err
	}
	if err := o.ipbb.AddGit(ctx, buildArea, settings.Firmware.MP7.URL, settings.Firmware.MP7.Tag); err != nil {
		return nil, err
	}
	if err := o.ipbb.AddGit(ctx, buildArea, settings.Firmware.Ugt.URL, settings.Firmware.Ugt.Tag); err != nil {
		return nil, err
	}

	// Step 3: fetch and parse the menu
	menuFile := filepath.Join(buildArea, config.MenuName+".xml")
	menuXMLLocation := joinLocation(config.MenuLocation, "xml", config.MenuName+".xml")
	if err := o.fetcher.Fetch(ctx, menuXMLLocation, menuFile); err != nil {
		return nil, fmt.Errorf("failed to fetch menu: %w", err)
	}
	// Menu distributions ship a companion HTML description, handy to
	// have next to the build. Missing docs do not fail the build.
	docFile := filepath.Join(buildArea, config.MenuName+".html")
	docLocation := joinLocation(config.MenuLocation, "doc", config.MenuName+".html")
	if err := o.fetcher.Fetch(ctx, docLocation, docFile); err != nil {
		o.logger.Warn("menu documentation not available", interfaces.F("location", docLocation))
	}

	menu, err := o.menuParser.ParseFile(menuFile)
	if err != nil {
		return nil, err
	}
	o.logger.Info("loaded menu",
		interfaces.F("name", menu.Name),
		interfaces.F("modules", menu.NModules))

	// Step 4: prepare sources and start one session per module
	result := &SynthesisResult{Menu: menu, BuildArea: buildArea}
	for moduleID := 0; moduleID < menu.NModules; moduleID++ {
		if err := o.setupModule(ctx, config, menu, buildArea, moduleID); err != nil {
			return nil, fmt.Errorf("failed to prepare module %d: %w", moduleID, err)
		}

		project := fmt.Sprintf("module_%d", moduleID)
		component := fmt.Sprintf("ugt:../%s", config.FirmwareType)
		if err := o.ipbb.ProjCreate(ctx, buildArea, project, component, ""); err != nil {
			return nil, err
		}

		session := SessionName(config.BuildTag, moduleID)
		projectDir := filepath.Join(buildArea, "proj", project)
		if err := o.screen.StartDetached(ctx, session, SynthCommand(o.vivado.SettingsScript(), projectDir)); err != nil {
			return nil, err
		}
		o.logger.Info("started synthesis session", interfaces.F("session", session))
		result.Sessions = append(result.Sessions, session)
	}

	// Step 5: record the build in its config file
	cfg := o.buildConfig(config, menu, ipbbVersion, buildArea)
	configPath := filepath.Join(buildArea, fmt.Sprintf("build_0x%s.cfg", config.BuildTag))
	if err := o.configs.Save(cfg, configPath); err != nil {
		return nil, err
	}
	result.ConfigPath = configPath
	o.logger.Info("wrote build config", interfaces.F("path", configPath))

	return result, nil
}

// RunModule runs the full Vivado flow of one module in the foreground.
// Used to redo a single failed module without a new build area.
func (o *SynthesisOrchestrator) RunModule(ctx context.Context, buildArea string, moduleID int, transcript io.Writer) error {
	if err := o.vivado.Validate(); err != nil {
		return err
	}
	projectDir := filepath.Join(buildArea, "proj", fmt.Sprintf("module_%d", moduleID))
	if _, err := os.Stat(projectDir); err != nil {
		return fmt.Errorf("no project for module %d in %s: %w", moduleID, buildArea, err)
	}
	o.logger.Info("running synthesis", interfaces.F("module", moduleID))
	return o.runner.RunShell(ctx, SynthCommand(o.vivado.SettingsScript(), projectDir), projectDir, transcript, 0)
}

// setupModule fetches the per-module VHDL snippets, splices them into
// the firmware templates under the module's own src directory and
// renders the top-level package with the menu identity. Each module
// gets its own destination so a later setup never rewrites sources a
// running build session is still reading.
func (o *SynthesisOrchestrator) setupModule(ctx context.Context, config SynthesisConfig, menu *entities.Menu, buildArea string, moduleID int) error {
	moduleSrcDir := filepath.Join(buildArea, "src", fmt.Sprintf("module_%d", moduleID))
	snippetsDir := filepath.Join(moduleSrcDir, "vhdl_snippets")
	for _, snippet := range vhdlSnippets {
		src := joinLocation(config.MenuLocation, "vhdl", fmt.Sprintf("module_%d", moduleID), "src", snippet)
		dst := filepath.Join(snippetsDir, snippet)
		if err := o.fetcher.Fetch(ctx, src, dst); err != nil {
			return fmt.Errorf("failed to fetch snippet %s: %w", snippet, err)
		}
	}

	srcFwDir := filepath.Join(buildArea, "src", "ugt", "firmware")
	if err := spliceVHDLTemplates(o.renderer, srcFwDir, snippetsDir, moduleSrcDir); err != nil {
		return err
	}

	hostname, _ := os.Hostname()
	username := ""
	if u, err := user.Current(); err == nil {
		username = u.Username
	}

	pkgTemplate := filepath.Join(buildArea, "src", "ugt", "firmware", "hdl", "packages", "gt_mp7_top_pkg_tpl.vhd")
	pkgFile := filepath.Join(buildArea, "src", "ugt", "firmware", "hdl", "packages", "gt_mp7_top_pkg.vhd")
	replace := map[string]string{
		"{{MENU_NAME}}":     menu.Name,
		"{{MENU_UUID}}":     menu.UUIDMenu,
		"{{FW_UUID}}":       menu.UUIDFw,
		"{{BUILD_VERSION}}": "0x" + config.BuildTag,
		"{{MODULE_ID}}":     fmt.Sprintf("%d", moduleID),
		"{{TIMESTAMP}}":     time.Now().Format("2006-01-02 15:04:05"),
		"{{HOSTNAME}}":      hostname,
		"{{USERNAME}}":      username,
	}
	return o.renderer.RenderVHDLFile(pkgTemplate, pkgFile, replace)
}

// buildConfig assembles the build_<tag>.cfg contents
func (o *SynthesisOrchestrator) buildConfig(config SynthesisConfig, menu *entities.Menu, ipbbVersion, buildArea string) *entities.BuildConfig {
	settings := config.Settings

	hostname, _ := os.Hostname()
	username := ""
	if u, err := user.Current(); err == nil {
		username = u.Username
	}

	cfg := &entities.BuildConfig{}
	cfg.Environment.Timestamp = time.Now().Format("2006-01-02 15:04:05")
	cfg.Environment.Hostname = hostname
	cfg.Environment.Username = username
	cfg.Menu.Build = config.BuildTag
	cfg.Menu.Name = menu.Name
	cfg.Menu.Location = config.MenuLocation
	cfg.Menu.Modules = menu.NModules
	cfg.IPBB.Version = ipbbVersion
	cfg.Vivado.Version = o.vivado.Version()
	cfg.Firmware.IPBURL = settings.Firmware.IPBus.URL
	cfg.Firmware.IPBTag = settings.Firmware.IPBus.Tag
	cfg.Firmware.MP7URL = settings.Firmware.MP7.URL
	cfg.Firmware.MP7Tag = settings.Firmware.MP7.Tag
	cfg.Firmware.UgtURL = settings.Firmware.Ugt.URL
	cfg.Firmware.UgtTag = settings.Firmware.Ugt.Tag
	cfg.Firmware.Type = config.FirmwareType
	cfg.Firmware.BuildArea = buildArea
	cfg.Device.Type = settings.Board
	cfg.Device.Name = settings.Board
	cfg.Device.Alias = "uGT"
	return cfg
}
