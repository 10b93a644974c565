// Package ini reads and writes build_<tag>.cfg configuration files.
package ini

import (
	"fmt"
	"os"

	"github.com/go-ini/ini"

	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain/entities"
)

// ConfigStore loads and saves build configuration files
type ConfigStore struct{}

// NewConfigStore creates a new build config store
func NewConfigStore() *ConfigStore {
	return &ConfigStore{}
}

// Load reads a build_<tag>.cfg file into a BuildConfig entity
func (s *ConfigStore) Load(filePath string) (*entities.BuildConfig, error) {
	if _, err := os.Stat(filePath); err != nil {
		return nil, fmt.Errorf("build config not found: %s", filePath)
	}

	file, err := ini.Load(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse build config %s: %w", filePath, err)
	}

	cfg := &entities.BuildConfig{}

	env := file.Section("environment")
	cfg.Environment.Timestamp = env.Key("timestamp").String()
	cfg.Environment.Hostname = env.Key("hostname").String()
	cfg.Environment.Username = env.Key("username").String()

	menu := file.Section("menu")
	cfg.Menu.Build = menu.Key("build").String()
	cfg.Menu.Name = menu.Key("name").String()
	cfg.Menu.Location = menu.Key("location").String()
	modules, err := menu.Key("modules").Int()
	if err != nil {
		return nil, fmt.Errorf("build config %s: invalid menu modules count: %w", filePath, err)
	}
	cfg.Menu.Modules = modules

	cfg.IPBB.Version = file.Section("ipbb").Key("version").String()
	cfg.Vivado.Version = file.Section("vivado").Key("version").String()

	fw := file.Section("firmware")
	cfg.Firmware.IPBURL = fw.Key("ipburl").String()
	cfg.Firmware.IPBTag = fw.Key("ipbtag").String()
	cfg.Firmware.MP7URL = fw.Key("mp7url").String()
	cfg.Firmware.MP7Tag = fw.Key("mp7tag").String()
	cfg.Firmware.UgtURL = fw.Key("ugturl").String()
	cfg.Firmware.UgtTag = fw.Key("ugttag").String()
	cfg.Firmware.Type = fw.Key("type").String()
	cfg.Firmware.BuildArea = fw.Key("buildarea").String()

	dev := file.Section("device")
	cfg.Device.Type = dev.Key("type").String()
	cfg.Device.Name = dev.Key("name").String()
	cfg.Device.Alias = dev.Key("alias").String()

	if err := s.validate(cfg); err != nil {
		return nil, fmt.Errorf("build config %s: %w", filePath, err)
	}

	return cfg, nil
}

// Save writes a BuildConfig entity as a build_<tag>.cfg file
func (s *ConfigStore) Save(cfg *entities.BuildConfig, filePath string) error {
	if err := s.validate(cfg); err != nil {
		return err
	}

	file := ini.Empty()

	env := file.Section("environment")
	env.Key("timestamp").SetValue(cfg.Environment.Timestamp)
	env.Key("hostname").SetValue(cfg.Environment.Hostname)
	env.Key("username").SetValue(cfg.Environment.Username)

	menu := file.Section("menu")
	menu.Key("build").SetValue(cfg.Menu.Build)
	menu.Key("name").SetValue(cfg.Menu.Name)
	menu.Key("location").SetValue(cfg.Menu.Location)
	menu.Key("modules").SetValue(fmt.Sprintf("%d", cfg.Menu.Modules))

	file.Section("ipbb").Key("version").SetValue(cfg.IPBB.Version)
	file.Section("vivado").Key("version").SetValue(cfg.Vivado.Version)

	fw := file.Section("firmware")
	fw.Key("ipburl").SetValue(cfg.Firmware.IPBURL)
	fw.Key("ipbtag").SetValue(cfg.Firmware.IPBTag)
	fw.Key("mp7url").SetValue(cfg.Firmware.MP7URL)
	fw.Key("mp7tag").SetValue(cfg.Firmware.MP7Tag)
	fw.Key("ugturl").SetValue(cfg.Firmware.UgtURL)
	fw.Key("ugttag").SetValue(cfg.Firmware.UgtTag)
	fw.Key("type").SetValue(cfg.Firmware.Type)
	fw.Key("buildarea").SetValue(cfg.Firmware.BuildArea)

	dev := file.Section("device")
	dev.Key("type").SetValue(cfg.Device.Type)
	dev.Key("name").SetValue(cfg.Device.Name)
	dev.Key("alias").SetValue(cfg.Device.Alias)

	if err := file.SaveTo(filePath); err != nil {
		return fmt.Errorf("failed to write build config %s: %w", filePath, err)
	}
	return nil
}

func (s *ConfigStore) validate(cfg *entities.BuildConfig) error {
	if _, err := entities.ParseBuildTag("0x" + cfg.Menu.Build); err != nil {
		return fmt.Errorf("invalid build tag %q", cfg.Menu.Build)
	}
	if err := entities.ValidateXMLName(cfg.Menu.Name); err != nil {
		return err
	}
	if cfg.Menu.Modules < 1 {
		return fmt.Errorf("menu %q contains no modules", cfg.Menu.Name)
	}
	return nil
}
