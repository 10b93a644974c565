package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain-adapters/gateways"
	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain/entities"
	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain/interfaces"
	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/external-adapters/yaml"
)

// Environment variables overriding the tool locations
const (
	envVivadoBaseDir  = "UGT_VIVADO_BASE_DIR"
	envVivadoVersion  = "UGT_VIVADO_VERSION"
	envQuestaSimPath  = "UGT_QUESTASIM_SIM_PATH"
	envQuestaLibsPath = "UGT_QUESTASIM_LIBS_PATH"
)

// defaultSettingsFile is consulted when no --settings flag is given
func defaultSettingsFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "ugt-fwtools", "ugt.yml")
}

// loadSettings layers the settings file and the UGT_* environment
// variables over the built-in defaults. Flags are applied by the
// individual subcommands on top.
func loadSettings(settingsPath string) (*entities.Settings, error) {
	if settingsPath == "" {
		settingsPath = defaultSettingsFile()
	}
	settings, err := yaml.NewSettingsParser().LoadFile(settingsPath)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv(envVivadoBaseDir); v != "" {
		settings.Vivado.BaseDir = v
	}
	if v := os.Getenv(envVivadoVersion); v != "" {
		settings.Vivado.Version = v
	}
	if v := os.Getenv(envQuestaSimPath); v != "" {
		settings.QuestaSim.SimPath = v
	}
	if v := os.Getenv(envQuestaLibsPath); v != "" {
		settings.QuestaSim.LibsPath = v
	}
	settings.ExpandPaths()
	return settings, nil
}

// newVivadoGateway wires a Vivado gateway from settings
func newVivadoGateway(settings *entities.Settings, executor *gateways.CommandExecutor) (*gateways.VivadoGateway, error) {
	if settings.Vivado.BaseDir == "" {
		return nil, fmt.Errorf("no Vivado base directory configured (set %s)", envVivadoBaseDir)
	}
	if settings.Vivado.Version == "" {
		return nil, fmt.Errorf("no Vivado version configured (set %s)", envVivadoVersion)
	}
	return gateways.NewVivadoGateway(settings.Vivado.BaseDir, settings.Vivado.Version, executor), nil
}

// newQuestaGateway wires a Questa gateway from settings
func newQuestaGateway(settings *entities.Settings, executor *gateways.CommandExecutor) (*gateways.QuestaGateway, error) {
	if settings.QuestaSim.SimPath == "" {
		return nil, fmt.Errorf("no QuestaSim installation configured (set %s)", envQuestaSimPath)
	}
	return gateways.NewQuestaGateway(settings.QuestaSim.SimPath, executor), nil
}

// newLogger wires the console logger
func newLogger(verbose bool) interfaces.Logger {
	return interfaces.NewConsoleLogger(verbose)
}

// splitMenuXML splits a menu XML location (URL or path) into the
// distribution base and the menu name. The base is two levels up from
// the XML file, matching the xml/<name>.xml layout of the menu
// distribution trees.
func splitMenuXML(location string) (base, menuName string, err error) {
	file := location[strings.LastIndex(location, "/")+1:]
	if !strings.HasSuffix(file, ".xml") {
		return "", "", fmt.Errorf("menu location %q does not point to an XML file", location)
	}
	menuName = strings.TrimSuffix(file, ".xml")
	if err := entities.ValidateMenuName(menuName); err != nil {
		return "", "", err
	}
	return parentDir(parentDir(location)), menuName, nil
}

// parentDir strips the last path element of a URL or filesystem path.
// filepath.Dir is unusable here as it collapses the double slash of
// URL schemes.
func parentDir(location string) string {
	location = strings.TrimRight(location, "/")
	if i := strings.LastIndex(location, "/"); i >= 0 {
		return location[:i]
	}
	return location
}

// parseBuildTag normalizes and validates a user supplied build tag
func parseBuildTag(raw string) (string, error) {
	tag, err := entities.ParseBuildTag(raw)
	if err != nil {
		return "", fmt.Errorf("invalid build tag %q (expected 0x followed by 4 hex digits): %w", raw, err)
	}
	return tag, nil
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
