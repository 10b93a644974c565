package xmlmenu

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleMenu = `<?xml version="1.0" encoding="UTF-8"?>
<menu>
  <name>L1Menu_Collisions2025_v1_0_0</name>
  <uuid_menu>8a7a0575-d0c1-4c69-b8f3-caa965f5ea0a</uuid_menu>
  <uuid_firmware>0f2e9b55-3c3f-4e4c-9e9c-0f6f7d6a1a9d</uuid_firmware>
  <n_modules>2</n_modules>
  <algorithm>
    <name>L1_SingleMuCosmics</name>
    <index>0</index>
    <module_id>1</module_id>
    <module_index>0</module_index>
    <expression>MU0</expression>
  </algorithm>
  <algorithm>
    <name>L1_ZeroBias</name>
    <index>5</index>
    <module_id>0</module_id>
    <module_index>1</module_index>
    <expression>ZB</expression>
  </algorithm>
</menu>
`

func TestParseMenu(t *testing.T) {
	parser := NewMenuParser()

	menu, err := parser.Parse([]byte(sampleMenu))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if menu.Name != "L1Menu_Collisions2025_v1_0_0" {
		t.Errorf("Parse() name = %q", menu.Name)
	}
	if menu.NModules != 2 {
		t.Errorf("Parse() n_modules = %d, want 2", menu.NModules)
	}
	if len(menu.Algorithms) != 2 {
		t.Fatalf("Parse() algorithms = %d, want 2", len(menu.Algorithms))
	}

	algo := menu.AlgorithmByIndex(5)
	if algo == nil {
		t.Fatal("AlgorithmByIndex(5) = nil")
	}
	if algo.Name != "L1_ZeroBias" || algo.ModuleID != 0 {
		t.Errorf("AlgorithmByIndex(5) = %+v", algo)
	}

	if got := menu.AlgorithmByIndex(1); got != nil {
		t.Errorf("AlgorithmByIndex(1) = %+v, want nil", got)
	}

	mod1 := menu.AlgorithmsByModule(1)
	if len(mod1) != 1 || mod1[0].Name != "L1_SingleMuCosmics" {
		t.Errorf("AlgorithmsByModule(1) = %+v", mod1)
	}
}

func TestParseMenuErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(string) string
		wantErr string
	}{
		{
			name:    "missing name",
			mutate:  func(s string) string { return strings.Replace(s, "L1Menu_Collisions2025_v1_0_0", "", 1) },
			wantErr: "no name",
		},
		{
			name:    "invalid name tag",
			mutate:  func(s string) string { return strings.Replace(s, "L1Menu_Collisions2025_v1_0_0", "Menu_X", 1) },
			wantErr: "not a valid menu name tag",
		},
		{
			name: "no modules",
			mutate: func(s string) string {
				return strings.Replace(s, "<n_modules>2</n_modules>", "<n_modules>0</n_modules>", 1)
			},
			wantErr: "contains no modules",
		},
		{
			name:    "duplicate index",
			mutate:  func(s string) string { return strings.Replace(s, "<index>5</index>", "<index>0</index>", 1) },
			wantErr: "share index",
		},
		{
			name:    "index out of range",
			mutate:  func(s string) string { return strings.Replace(s, "<index>5</index>", "<index>512</index>", 1) },
			wantErr: "out of range",
		},
		{
			name: "module id out of range",
			mutate: func(s string) string {
				return strings.Replace(s, "<module_id>1</module_id>", "<module_id>7</module_id>", 1)
			},
			wantErr: "module id 7 out of range",
		},
		{
			name:    "malformed xml",
			mutate:  func(s string) string { return s[:len(s)/2] },
			wantErr: "parsing menu XML",
		},
	}

	parser := NewMenuParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse([]byte(tt.mutate(sampleMenu)))
			if err == nil {
				t.Fatal("Parse() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Parse() error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseMenuFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "L1Menu_Collisions2025_v1_0_0.xml")
	if err := os.WriteFile(path, []byte(sampleMenu), 0600); err != nil {
		t.Fatalf("Failed to write menu file: %v", err)
	}

	parser := NewMenuParser()
	menu, err := parser.ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if menu.NModules != 2 {
		t.Errorf("ParseFile() n_modules = %d, want 2", menu.NModules)
	}

	if _, err := parser.ParseFile(filepath.Join(tmpDir, "missing.xml")); err == nil {
		t.Error("ParseFile() with missing file should return error")
	}
}
