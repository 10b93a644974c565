package entities

import (
	"strings"
	"testing"
)

func testMenu() *Menu {
	return &Menu{
		Name:     "L1Menu_test",
		NModules: 2,
		Algorithms: []Algorithm{
			{Name: "L1_SingleMu22", Index: 0, ModuleID: 0, ModuleIndex: 0},
			{Name: "L1_DoubleEG25", Index: 7, ModuleID: 1, ModuleIndex: 0},
			{Name: "L1_ETMHF90", Index: 511, ModuleID: 0, ModuleIndex: 1},
		},
	}
}

func TestAlgorithmByIndex(t *testing.T) {
	menu := testMenu()

	if algo := menu.AlgorithmByIndex(7); algo == nil || algo.Name != "L1_DoubleEG25" {
		t.Errorf("unexpected algorithm for index 7: %+v", algo)
	}
	if algo := menu.AlgorithmByIndex(3); algo != nil {
		t.Errorf("expected nil for unused index, got %+v", algo)
	}
}

func TestAlgorithmsByModule(t *testing.T) {
	menu := testMenu()

	algos := menu.AlgorithmsByModule(0)
	if len(algos) != 2 {
		t.Fatalf("expected 2 algorithms on module 0, got %d", len(algos))
	}
	if len(menu.AlgorithmsByModule(5)) != 0 {
		t.Error("expected no algorithms on unknown module")
	}
}

func TestModuleMask(t *testing.T) {
	menu := testMenu()

	mask := menu.ModuleMask(0)
	if !mask.Test(0) || !mask.Test(511) {
		t.Error("module 0 mask missing its algorithm bits")
	}
	if mask.Test(7) {
		t.Error("module 0 mask contains a module 1 bit")
	}
}

func TestAlgoMaskRoundtrip(t *testing.T) {
	mask := NewAlgoMask()
	mask.Set(0)
	mask.Set(511)

	hex := mask.Hex()
	if len(hex) != 128 {
		t.Fatalf("expected 128 hex digits, got %d", len(hex))
	}
	if !strings.HasPrefix(hex, "8") || !strings.HasSuffix(hex, "1") {
		t.Errorf("unexpected hex word: %s", hex)
	}

	parsed, err := ParseAlgoMask(hex)
	if err != nil {
		t.Fatalf("ParseAlgoMask failed: %v", err)
	}
	if !parsed.Test(0) || !parsed.Test(511) || parsed.Test(1) {
		t.Error("parsed mask does not match original")
	}
}

func TestAlgoMaskAnd(t *testing.T) {
	a := NewAlgoMask()
	a.Set(1)
	a.Set(2)
	b := NewAlgoMask()
	b.Set(2)
	b.Set(3)

	and := a.And(b)
	if !and.Test(2) || and.Test(1) || and.Test(3) {
		t.Error("And produced wrong bits")
	}
	if !and.Any() {
		t.Error("And result should have bits set")
	}
	if NewAlgoMask().Any() {
		t.Error("empty mask should report no bits")
	}
}

func TestParseAlgoMaskErrors(t *testing.T) {
	if _, err := ParseAlgoMask("not-hex"); err == nil {
		t.Error("expected error for invalid hex")
	}
	// 129 hex digits exceeds the 512-bit word
	if _, err := ParseAlgoMask(strings.Repeat("f", 129)); err == nil {
		t.Error("expected error for oversized word")
	}
}
