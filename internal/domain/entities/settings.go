package entities

import (
	"os"
	"path/filepath"
	"strings"
)

// Settings holds project-wide defaults for the firmware tools.
// Values come from built-in defaults, an optional ugt.yml file and
// the UGT_* environment variables, in that order.
type Settings struct {
	Vivado    VivadoSettings
	QuestaSim QuestaSimSettings
	Firmware  FirmwareRepos
	Board     string
	BuildDir  string
}

// VivadoSettings locates the Xilinx Vivado installation
type VivadoSettings struct {
	Version string
	BaseDir string
}

// QuestaSimSettings locates the QuestaSim installation and compiled libraries
type QuestaSimSettings struct {
	SimPath  string
	LibsPath string
}

// FirmwareRepos names the source repositories of the firmware tree
type FirmwareRepos struct {
	Ugt   RepoRef
	MP7   RepoRef
	IPBus RepoRef
}

// RepoRef is a git repository URL plus a tag or branch name
type RepoRef struct {
	URL string
	Tag string
}

// DefaultSettings returns the built-in defaults
func DefaultSettings() *Settings {
	return &Settings{
		Firmware: FirmwareRepos{
			Ugt: RepoRef{
				URL: "https://github.com/cms-l1-globaltrigger/mp7_ugt_legacy.git",
				Tag: "v1.22.3",
			},
			MP7: RepoRef{
				URL: "https://gitlab.cern.ch/cms-l1-globaltrigger/mp7.git",
				Tag: "v3.2.2_Vivado2021+_ugt",
			},
			IPBus: RepoRef{
				URL: "https://github.com/ipbus/ipbus-firmware.git",
				Tag: "v1.4",
			},
		},
		Board:    "mp7xe_690",
		BuildDir: ExpandUser("~/work_synth/production"),
	}
}

// ExpandUser resolves a leading ~ to the current user's home directory
func ExpandUser(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// ExpandPaths resolves ~ in every configurable location
func (s *Settings) ExpandPaths() {
	s.BuildDir = ExpandUser(s.BuildDir)
	s.Vivado.BaseDir = ExpandUser(s.Vivado.BaseDir)
	s.QuestaSim.SimPath = ExpandUser(s.QuestaSim.SimPath)
	s.QuestaSim.LibsPath = ExpandUser(s.QuestaSim.LibsPath)
}
