// Package yaml provides YAML-based project settings parsing.
package yaml

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain/entities"
)

// yamlSettings represents the raw ugt.yml structure
type yamlSettings struct {
	Vivado struct {
		Version string `yaml:"version"`
		BaseDir string `yaml:"base_dir"`
	} `yaml:"vivado"`
	QuestaSim struct {
		SimPath  string `yaml:"sim_path"`
		LibsPath string `yaml:"libs_path"`
	} `yaml:"questasim"`
	Firmware struct {
		Ugt   yamlRepoRef `yaml:"ugt"`
		MP7   yamlRepoRef `yaml:"mp7"`
		IPBus yamlRepoRef `yaml:"ipbus"`
	} `yaml:"firmware"`
	Board    string `yaml:"board"`
	BuildDir string `yaml:"build_dir"`
}

type yamlRepoRef struct {
	URL string `yaml:"url"`
	Tag string `yaml:"tag"`
}

// SettingsParser parses ugt.yml settings files
type SettingsParser struct{}

// NewSettingsParser creates a new settings parser
func NewSettingsParser() *SettingsParser {
	return &SettingsParser{}
}

// LoadFile reads settings from a file, layered over the built-in defaults.
// A missing file is not an error; the defaults are returned unchanged.
func (p *SettingsParser) LoadFile(filePath string) (*entities.Settings, error) {
	settings := entities.DefaultSettings()

	//nolint:gosec // G304: filePath is the user's project settings path
	data, err := os.ReadFile(filePath)
	if os.IsNotExist(err) {
		return settings, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file %s: %w", filePath, err)
	}

	if err := p.parseInto(data, settings); err != nil {
		return nil, fmt.Errorf("settings file %s: %w", filePath, err)
	}
	return settings, nil
}

// Parse parses YAML bytes over the built-in defaults
func (p *SettingsParser) Parse(data []byte) (*entities.Settings, error) {
	settings := entities.DefaultSettings()
	if err := p.parseInto(data, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func (p *SettingsParser) parseInto(data []byte, settings *entities.Settings) error {
	var raw yamlSettings
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	if raw.Vivado.Version != "" {
		if err := entities.ValidateVivadoVersion(raw.Vivado.Version); err != nil {
			return err
		}
		settings.Vivado.Version = raw.Vivado.Version
	}
	if raw.Vivado.BaseDir != "" {
		settings.Vivado.BaseDir = raw.Vivado.BaseDir
	}
	if raw.QuestaSim.SimPath != "" {
		settings.QuestaSim.SimPath = raw.QuestaSim.SimPath
	}
	if raw.QuestaSim.LibsPath != "" {
		settings.QuestaSim.LibsPath = raw.QuestaSim.LibsPath
	}
	applyRepoRef(&settings.Firmware.Ugt, raw.Firmware.Ugt)
	applyRepoRef(&settings.Firmware.MP7, raw.Firmware.MP7)
	applyRepoRef(&settings.Firmware.IPBus, raw.Firmware.IPBus)
	if raw.Board != "" {
		settings.Board = raw.Board
	}
	if raw.BuildDir != "" {
		settings.BuildDir = raw.BuildDir
	}
	settings.ExpandPaths()
	return nil
}

func applyRepoRef(dst *entities.RepoRef, src yamlRepoRef) {
	if src.URL != "" {
		dst.URL = src.URL
	}
	if src.Tag != "" {
		dst.Tag = src.Tag
	}
}
