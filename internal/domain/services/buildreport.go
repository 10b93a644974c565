package services

import (
	"fmt"
	"io"
	"strings"

	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain/entities"
)

// BuildReportService renders a text report of a firmware build from the
// build config and the per-module synthesis checks
type BuildReportService struct{}

// NewBuildReportService creates a new build report service
func NewBuildReportService() *BuildReportService {
	return &BuildReportService{}
}

// Render writes the report
func (s *BuildReportService) Render(w io.Writer, cfg *entities.BuildConfig, checks []*entities.ModuleCheck) {
	rule := strings.Repeat("=", 75)

	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Firmware build report: 0x%s\n", cfg.Menu.Build)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "menu:       %s\n", cfg.Menu.Name)
	fmt.Fprintf(w, "location:   %s\n", cfg.Menu.Location)
	fmt.Fprintf(w, "modules:    %d\n", cfg.Menu.Modules)
	fmt.Fprintf(w, "board:      %s\n", cfg.Device.Type)
	fmt.Fprintf(w, "vivado:     %s\n", cfg.Vivado.Version)
	fmt.Fprintf(w, "ipbb:       %s\n", cfg.IPBB.Version)
	fmt.Fprintf(w, "built by:   %s@%s at %s\n",
		cfg.Environment.Username, cfg.Environment.Hostname, cfg.Environment.Timestamp)
	fmt.Fprintf(w, "build area: %s\n", cfg.Firmware.BuildArea)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "firmware sources:")
	fmt.Fprintf(w, "  ugt:   %s @ %s\n", cfg.Firmware.UgtURL, cfg.Firmware.UgtTag)
	fmt.Fprintf(w, "  mp7:   %s @ %s\n", cfg.Firmware.MP7URL, cfg.Firmware.MP7Tag)
	fmt.Fprintf(w, "  ipbus: %s @ %s\n", cfg.Firmware.IPBURL, cfg.Firmware.IPBTag)
	fmt.Fprintln(w)

	if len(checks) == 0 {
		fmt.Fprintln(w, "no module results available")
		return
	}

	fmt.Fprintln(w, "|--------|---------|---------|----------|--------|--------|--------|")
	fmt.Fprintln(w, "| Module | Bitfile | Errors  | CritWarn |WNS (ns)|WHS (ns)| Result |")
	fmt.Fprintln(w, "|--------|---------|---------|----------|--------|--------|--------|")
	for _, check := range checks {
		bitfile := "missing"
		if check.BitfileFound {
			bitfile = "ok"
		}
		wns, whs := "n/a", "n/a"
		if check.Timing != nil {
			wns = fmt.Sprintf("%.3f", check.Timing.WNS)
			whs = fmt.Sprintf("%.3f", check.Timing.WHS)
		}
		result := "FAILED"
		if check.Passed() {
			result = "OK"
		}
		fmt.Fprintf(w, "|%8d|%9s|%9d|%10d|%8s|%8s|%8s|\n",
			check.ModuleID, bitfile, len(check.Errors), len(check.CriticalWarnings), wns, whs, result)
	}
	fmt.Fprintln(w, "|--------|---------|---------|----------|--------|--------|--------|")

	for _, check := range checks {
		if len(check.Utilization) == 0 {
			continue
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "module_%d utilization:\n", check.ModuleID)
		for _, row := range check.Utilization {
			fmt.Fprintf(w, "  %-16s %8d / %8d  (%.2f%%)\n",
				row.Resource, row.Used, row.Available, row.Percent)
		}
	}

	for _, check := range checks {
		if len(check.Errors) == 0 {
			continue
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "module_%d errors:\n", check.ModuleID)
		for _, line := range check.Errors {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
}
