package services

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain/entities"
)

// Resources reported in the utilization summary of a module build
var trackedResources = map[string]bool{
	"Slice LUTs":      true,
	"Slice Registers": true,
	"Block RAM Tile":  true,
	"DSPs":            true,
}

// SynthCheckService probes the Vivado project of each module in a build
// area for bitfile, log errors, timing and utilization
type SynthCheckService struct{}

// NewSynthCheckService creates a new synthesis check service
func NewSynthCheckService() *SynthCheckService {
	return &SynthCheckService{}
}

// CheckModule inspects the project of one module below the build area.
// Missing logs and reports are not errors; whatever exists is evaluated.
func (s *SynthCheckService) CheckModule(buildArea string, moduleID int) (*entities.ModuleCheck, error) {
	name := fmt.Sprintf("module_%d", moduleID)
	projDir := filepath.Join(buildArea, "proj", name, name)
	runsDir := filepath.Join(projDir, name+".runs")

	check := &entities.ModuleCheck{ModuleID: moduleID}

	// Bitfile from the implementation run
	bitfiles, err := filepath.Glob(filepath.Join(runsDir, "impl_1", "*.bit"))
	if err != nil {
		return nil, fmt.Errorf("module %d: %w", moduleID, err)
	}
	if len(bitfiles) > 0 {
		check.BitfileFound = true
		check.BitfilePath = bitfiles[0]
	}

	// Synthesis and implementation logs
	for _, logPath := range []string{
		filepath.Join(runsDir, "synth_1", "runme.log"),
		filepath.Join(runsDir, "impl_1", "runme.log"),
	} {
		f, err := os.Open(logPath) //nolint:gosec // G304: path is inside the build area
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("module %d: %w", moduleID, err)
		}
		errs, warns, scanErr := s.ScanLog(f)
		_ = f.Close()
		if scanErr != nil {
			return nil, fmt.Errorf("module %d: scanning %s: %w", moduleID, logPath, scanErr)
		}
		check.Errors = append(check.Errors, errs...)
		check.CriticalWarnings = append(check.CriticalWarnings, warns...)
	}

	// Timing summary from the routed design
	timingReports, err := filepath.Glob(filepath.Join(runsDir, "impl_1", "*timing_summary*.rpt"))
	if err != nil {
		return nil, fmt.Errorf("module %d: %w", moduleID, err)
	}
	if len(timingReports) > 0 {
		f, err := os.Open(timingReports[0]) //nolint:gosec // G304: path is inside the build area
		if err != nil {
			return nil, fmt.Errorf("module %d: %w", moduleID, err)
		}
		timing, parseErr := s.ParseTimingSummary(f)
		_ = f.Close()
		if parseErr != nil {
			return nil, fmt.Errorf("module %d: %s: %w", moduleID, timingReports[0], parseErr)
		}
		check.Timing = timing
	}

	// Utilization from the placed design
	utilReports, err := filepath.Glob(filepath.Join(runsDir, "impl_1", "*utilization*.rpt"))
	if err != nil {
		return nil, fmt.Errorf("module %d: %w", moduleID, err)
	}
	if len(utilReports) > 0 {
		f, err := os.Open(utilReports[0]) //nolint:gosec // G304: path is inside the build area
		if err != nil {
			return nil, fmt.Errorf("module %d: %w", moduleID, err)
		}
		rows, parseErr := s.ParseUtilization(f)
		_ = f.Close()
		if parseErr != nil {
			return nil, fmt.Errorf("module %d: %s: %w", moduleID, utilReports[0], parseErr)
		}
		check.Utilization = rows
	}

	return check, nil
}

// ScanLog collects ERROR and CRITICAL WARNING lines from a Vivado log
func (s *SynthCheckService) ScanLog(r io.Reader) (errs, criticalWarnings []string, err error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case strings.HasPrefix(line, "ERROR:"):
			errs = append(errs, line)
		case strings.HasPrefix(line, "CRITICAL WARNING:"):
			criticalWarnings = append(criticalWarnings, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}
	return errs, criticalWarnings, nil
}

// ParseTimingSummary extracts WNS/TNS/WHS/THS from the design timing
// summary table of a Vivado timing report
func (s *SynthCheckService) ParseTimingSummary(r io.Reader) (*entities.TimingSummary, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	headerSeen := false
	for sc.Scan() {
		line := sc.Text()
		fields := strings.Fields(line)

		if !headerSeen {
			if len(fields) > 0 && fields[0] == "WNS(ns)" {
				headerSeen = true
			}
			continue
		}
		if len(fields) == 0 || strings.HasPrefix(fields[0], "-") {
			continue
		}

		// First data row after the header: WNS TNS failing total WHS THS ...
		if len(fields) < 6 {
			return nil, fmt.Errorf("malformed timing summary row: %q", line)
		}
		values := make([]float64, 0, 6)
		for _, f := range []string{fields[0], fields[1], fields[4], fields[5]} {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("malformed timing value %q: %w", f, err)
			}
			values = append(values, v)
		}
		return &entities.TimingSummary{
			WNS: values[0],
			TNS: values[1],
			WHS: values[2],
			THS: values[3],
		}, nil
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("no design timing summary found")
}

// ParseUtilization extracts the tracked resource rows from a Vivado
// utilization report
func (s *SynthCheckService) ParseUtilization(r io.Reader) ([]entities.UtilizationRow, error) {
	var rows []entities.UtilizationRow

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, "|") {
			continue
		}
		fields := strings.Split(line, "|")
		// | Site Type | Used | Fixed | Available | Util% |
		if len(fields) < 7 {
			continue
		}
		resource := strings.TrimSpace(fields[1])
		if !trackedResources[resource] {
			continue
		}
		used, err := strconv.Atoi(strings.TrimSpace(fields[2]))
		if err != nil {
			continue
		}
		available, err := strconv.Atoi(strings.TrimSpace(fields[4]))
		if err != nil {
			continue
		}
		percent, err := strconv.ParseFloat(strings.TrimSpace(fields[5]), 64)
		if err != nil {
			continue
		}
		rows = append(rows, entities.UtilizationRow{
			Resource:  resource,
			Used:      used,
			Available: available,
			Percent:   percent,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}
