package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const timingReport = `
------------------------------------------------------------------------------------
| Design Timing Summary
| ---------------------
------------------------------------------------------------------------------------

    WNS(ns)      TNS(ns)  TNS Failing Endpoints  TNS Total Endpoints      WHS(ns)      THS(ns)  THS Failing Endpoints  THS Total Endpoints
    -------      -------  ---------------------  -------------------      -------      -------  ---------------------  -------------------
      0.042        0.000                      0                54821        0.012        0.000                      0                54821
`

const failingTimingReport = `
    WNS(ns)      TNS(ns)  TNS Failing Endpoints  TNS Total Endpoints      WHS(ns)      THS(ns)
    -------      -------  ---------------------  -------------------      -------      -------
     -0.137       -3.522                     42                54821        0.012        0.000
`

const utilizationReport = `
+----------------------------+--------+-------+-----------+-------+
|          Site Type         |  Used  | Fixed | Available | Util% |
+----------------------------+--------+-------+-----------+-------+
| Slice LUTs                 | 282122 |     0 |    433200 | 65.12 |
|   LUT as Logic             | 261186 |     0 |    433200 | 60.29 |
| Slice Registers            | 176098 |     0 |    866400 | 20.32 |
| Block RAM Tile             |  512.5 |     0 |      1470 | 34.86 |
| DSPs                       |     48 |     0 |      3600 |  1.33 |
+----------------------------+--------+-------+-----------+-------+
`

func TestScanLog(t *testing.T) {
	log := `
INFO: [Synth 8-7075] Helper process launched
WARNING: [Synth 8-3331] design has unconnected port
CRITICAL WARNING: [Timing 38-282] The design failed to meet the timing requirements
ERROR: [Place 30-640] Place Check : This design requires more LUTs than are available
INFO: done
`
	svc := NewSynthCheckService()
	errs, warns, err := svc.ScanLog(strings.NewReader(log))
	if err != nil {
		t.Fatalf("ScanLog() error = %v", err)
	}
	if len(errs) != 1 || !strings.Contains(errs[0], "Place 30-640") {
		t.Errorf("ScanLog() errors = %v", errs)
	}
	if len(warns) != 1 || !strings.Contains(warns[0], "Timing 38-282") {
		t.Errorf("ScanLog() critical warnings = %v", warns)
	}
}

func TestParseTimingSummary(t *testing.T) {
	svc := NewSynthCheckService()

	t.Run("passing", func(t *testing.T) {
		timing, err := svc.ParseTimingSummary(strings.NewReader(timingReport))
		if err != nil {
			t.Fatalf("ParseTimingSummary() error = %v", err)
		}
		if timing.WNS != 0.042 || timing.TNS != 0.000 {
			t.Errorf("ParseTimingSummary() WNS/TNS = %v/%v", timing.WNS, timing.TNS)
		}
		if !timing.Met() {
			t.Error("ParseTimingSummary() timing should be met")
		}
	})

	t.Run("failing", func(t *testing.T) {
		timing, err := svc.ParseTimingSummary(strings.NewReader(failingTimingReport))
		if err != nil {
			t.Fatalf("ParseTimingSummary() error = %v", err)
		}
		if timing.WNS != -0.137 {
			t.Errorf("ParseTimingSummary() WNS = %v, want -0.137", timing.WNS)
		}
		if timing.Met() {
			t.Error("ParseTimingSummary() negative slack should not be met")
		}
	})

	t.Run("no summary", func(t *testing.T) {
		if _, err := svc.ParseTimingSummary(strings.NewReader("nothing here\n")); err == nil {
			t.Error("ParseTimingSummary() without table should return error")
		}
	})
}

func TestParseUtilization(t *testing.T) {
	svc := NewSynthCheckService()
	rows, err := svc.ParseUtilization(strings.NewReader(utilizationReport))
	if err != nil {
		t.Fatalf("ParseUtilization() error = %v", err)
	}

	// Block RAM Tile row has a fractional Used count and is skipped;
	// nested rows like "LUT as Logic" are not tracked resources.
	want := map[string]float64{
		"Slice LUTs":      65.12,
		"Slice Registers": 20.32,
		"DSPs":            1.33,
	}
	if len(rows) != len(want) {
		t.Fatalf("ParseUtilization() rows = %+v, want %d entries", rows, len(want))
	}
	for _, row := range rows {
		if percent, ok := want[row.Resource]; !ok || row.Percent != percent {
			t.Errorf("ParseUtilization() row = %+v", row)
		}
	}
}

func TestCheckModule(t *testing.T) {
	buildArea := t.TempDir()
	implDir := filepath.Join(buildArea, "proj", "module_0", "module_0", "module_0.runs", "impl_1")
	synthDir := filepath.Join(buildArea, "proj", "module_0", "module_0", "module_0.runs", "synth_1")
	for _, dir := range []string{implDir, synthDir} {
		if err := os.MkdirAll(dir, 0750); err != nil {
			t.Fatalf("Failed to create run dir: %v", err)
		}
	}

	write := func(path, content string) {
		t.Helper()
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("Failed to write %s: %v", path, err)
		}
	}
	write(filepath.Join(implDir, "top.bit"), "bitstream")
	write(filepath.Join(synthDir, "runme.log"), "INFO: all good\n")
	write(filepath.Join(implDir, "runme.log"), "CRITICAL WARNING: [Timing 38-282] close to limit\n")
	write(filepath.Join(implDir, "top_timing_summary_routed.rpt"), timingReport)
	write(filepath.Join(implDir, "top_utilization_placed.rpt"), utilizationReport)

	svc := NewSynthCheckService()
	check, err := svc.CheckModule(buildArea, 0)
	if err != nil {
		t.Fatalf("CheckModule() error = %v", err)
	}

	if !check.BitfileFound {
		t.Error("CheckModule() should find the bitfile")
	}
	if len(check.Errors) != 0 {
		t.Errorf("CheckModule() errors = %v", check.Errors)
	}
	if len(check.CriticalWarnings) != 1 {
		t.Errorf("CheckModule() critical warnings = %v", check.CriticalWarnings)
	}
	if check.Timing == nil || !check.Timing.Met() {
		t.Errorf("CheckModule() timing = %+v", check.Timing)
	}
	if len(check.Utilization) != 3 {
		t.Errorf("CheckModule() utilization = %+v", check.Utilization)
	}
	if !check.Passed() {
		t.Error("CheckModule() should pass")
	}
}

func TestCheckModuleMissingBitfile(t *testing.T) {
	buildArea := t.TempDir()
	svc := NewSynthCheckService()

	check, err := svc.CheckModule(buildArea, 3)
	if err != nil {
		t.Fatalf("CheckModule() error = %v", err)
	}
	if check.BitfileFound {
		t.Error("CheckModule() on empty area should not find a bitfile")
	}
	if check.Passed() {
		t.Error("CheckModule() without bitfile should not pass")
	}
}
