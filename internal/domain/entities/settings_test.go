package entities

import (
	"os"
	"strings"
	"testing"
)

func TestExpandUser(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	tests := []struct {
		name string
		path string
		want string
	}{
		{"tilde prefix", "~/work_synth/production", home + "/work_synth/production"},
		{"bare tilde", "~", home},
		{"absolute path", "/opt/xilinx/Vivado", "/opt/xilinx/Vivado"},
		{"relative path", "questasimlibs", "questasimlibs"},
		{"tilde in the middle", "/data/~backup", "/data/~backup"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandUser(tt.path); got != tt.want {
				t.Errorf("ExpandUser(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestDefaultSettingsBuildDirExpanded(t *testing.T) {
	settings := DefaultSettings()
	if strings.HasPrefix(settings.BuildDir, "~") {
		t.Errorf("default build dir not expanded: %q", settings.BuildDir)
	}
}

func TestExpandPaths(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	settings := DefaultSettings()
	settings.BuildDir = "~/builds"
	settings.Vivado.BaseDir = "~/xilinx"
	settings.QuestaSim.SimPath = "/opt/mentor/questasim"
	settings.QuestaSim.LibsPath = "~/questasimlibs"
	settings.ExpandPaths()

	if settings.BuildDir != home+"/builds" {
		t.Errorf("build dir not expanded: %q", settings.BuildDir)
	}
	if settings.Vivado.BaseDir != home+"/xilinx" {
		t.Errorf("vivado base dir not expanded: %q", settings.Vivado.BaseDir)
	}
	if settings.QuestaSim.SimPath != "/opt/mentor/questasim" {
		t.Errorf("absolute sim path changed: %q", settings.QuestaSim.SimPath)
	}
	if settings.QuestaSim.LibsPath != home+"/questasimlibs" {
		t.Errorf("libs path not expanded: %q", settings.QuestaSim.LibsPath)
	}
}
