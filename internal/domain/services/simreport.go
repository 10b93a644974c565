package services

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain/entities"
)

// Algorithms whose counts are known to differ between test vector and
// simulation for technical reasons; skipped when --ignored is given.
var ignorableAlgos = map[string]bool{
	"L1_FirstBunchInTrain":  true,
	"L1_SecondBunchInTrain": true,
}

// Per-algorithm result states in the summary table
const (
	StatusOK     = "OK"
	StatusIgnore = "IGNORE"
	StatusError  = "ERROR"
)

// SummaryRow is one line of the simulation summary table
type SummaryRow struct {
	ModuleID int
	Index    int
	Name     string
	TVCount  int
	SimCount int
	Status   string
}

// UnknownTrigger is a bit set in the test vector with no menu algorithm
type UnknownTrigger struct {
	Index    int
	Triggers int
}

// SimSummary aggregates all module results against the menu and test vector
type SimSummary struct {
	TestVectorName  string
	Rows            []SummaryRow
	UnknownTriggers []UnknownTrigger
	MismatchCount   int
	Success         bool
}

// SimReportService builds and renders simulation summaries
type SimReportService struct{}

// NewSimReportService creates a new simulation report service
func NewSimReportService() *SimReportService {
	return &SimReportService{}
}

// LoadModuleResults decodes a results_module_<id>.json file
func (s *SimReportService) LoadModuleResults(filePath string) (*entities.ModuleResults, error) {
	//nolint:gosec // G304: filePath is a simulation output inside the work area
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read results file: %w", err)
	}

	var results entities.ModuleResults
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("failed to parse results file %s: %w", filePath, err)
	}
	return &results, nil
}

// WriteMismatchReport expands the error records of one module into a
// readable text file naming every disagreeing algorithm
func (s *SimReportService) WriteMismatchReport(w io.Writer, menu *entities.Menu, results *entities.ModuleResults) error {
	for _, e := range results.Errors {
		sim, err := entities.ParseAlgoMask(e.AlgosSim)
		if err != nil {
			return fmt.Errorf("error record bx %d: %w", e.BxNr, err)
		}
		tv, err := entities.ParseAlgoMask(e.AlgosTV)
		if err != nil {
			return fmt.Errorf("error record bx %d: %w", e.BxNr, err)
		}

		fmt.Fprintln(w, "################################################################################")
		fmt.Fprintf(w, "bx-nr      = %d\n", e.BxNr)
		fmt.Fprintf(w, "algo_sim   = %s\n", e.AlgosSim)
		fmt.Fprintf(w, "algo_tv    = %s\n", e.AlgosTV)
		fmt.Fprintf(w, "fin_or_sim = %s\n", e.FinorSim)
		fmt.Fprintf(w, "fin_or_tv  = %s\n", e.FinorTV)
		fmt.Fprintln(w, "################################################################################")

		for bit := 0; bit < entities.MaxAlgorithms; bit++ {
			if sim.Test(bit) == tv.Test(bit) {
				continue
			}
			if algo := menu.AlgorithmByIndex(bit); algo != nil {
				fmt.Fprintf(w, "\nalgo %d (%s)\n", bit, algo.Name)
				fmt.Fprintf(w, "     tv = %t sim = %t\n\n", tv.Test(bit), sim.Test(bit))
			} else {
				fmt.Fprintf(w, "\nalgo with index: %d not found in menu\n\n", bit)
			}
		}
	}
	return nil
}

// BuildSummary compares per-module results against the menu and the
// trigger counts of the unmasked test vector
func (s *SimReportService) BuildSummary(
	menu *entities.Menu,
	moduleResults map[int]*entities.ModuleResults,
	tvCounts []int,
	tvName string,
	skipIgnorable bool,
) *SimSummary {
	summary := &SimSummary{TestVectorName: tvName, Success: true}

	simCounts := make(map[int]int)
	tvCountsByIndex := make(map[int]int)
	for _, results := range moduleResults {
		for _, count := range results.Counts {
			simCounts[count.AlgoIndex] += count.AlgoSim
			tvCountsByIndex[count.AlgoIndex] += count.AlgoTV
		}
	}

	algorithms := make([]entities.Algorithm, len(menu.Algorithms))
	copy(algorithms, menu.Algorithms)
	sort.Slice(algorithms, func(i, j int) bool { return algorithms[i].Index < algorithms[j].Index })

	for _, algo := range algorithms {
		row := SummaryRow{
			ModuleID: algo.ModuleID,
			Index:    algo.Index,
			Name:     algo.Name,
			TVCount:  tvCountsByIndex[algo.Index],
			SimCount: simCounts[algo.Index],
			Status:   StatusOK,
		}
		switch {
		case skipIgnorable && ignorableAlgos[algo.Name]:
			row.Status = StatusIgnore
		case row.TVCount != row.SimCount:
			row.Status = StatusError
			summary.MismatchCount++
			summary.Success = false
		}
		summary.Rows = append(summary.Rows, row)
	}

	// Bits set in the test vector with no algorithm behind them
	for index, triggers := range tvCounts {
		if triggers > 0 && menu.AlgorithmByIndex(index) == nil {
			summary.UnknownTriggers = append(summary.UnknownTriggers, UnknownTrigger{
				Index:    index,
				Triggers: triggers,
			})
			summary.Success = false
		}
	}

	return summary
}

// Render writes the summary table. With color enabled the per-row status
// is highlighted the way the interactive console output does it.
func (s *SimReportService) Render(w io.Writer, summary *SimSummary, color bool) {
	sep := "|-----|-----|------------------------------------------------------------------|--------|--------|--------|"

	fmt.Fprintf(w, "Test vector file name: %s\n", summary.TestVectorName)
	fmt.Fprintln(w, sep)
	fmt.Fprintln(w, "| Mod | Idx | Name of algorithm                                                | l1a.tv | l1a.hw | Result |")
	fmt.Fprintln(w, sep)

	for _, row := range summary.Rows {
		status := row.Status
		if color {
			switch row.Status {
			case StatusOK:
				status = "\033[1;32m" + status + "\033[0m"
			case StatusIgnore:
				status = "\033[1;33m" + status + "\033[0m"
			case StatusError:
				status = "\033[1;31m" + status + "\033[0m"
			}
		}
		fmt.Fprintf(w, "|%5d|%5d|%-66s|%8d|%8d|%8s|\n",
			row.ModuleID, row.Index, row.Name, row.TVCount, row.SimCount, status)
	}
	fmt.Fprintln(w, sep)

	if len(summary.UnknownTriggers) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Found triggers which are not defined in the menu")
		fmt.Fprintln(w, "|-------|--------|")
		fmt.Fprintln(w, "| Index |triggers|")
		fmt.Fprintln(w, "|-------|--------|")
		for _, unknown := range summary.UnknownTriggers {
			fmt.Fprintf(w, "|%7d|%8d|\n", unknown.Index, unknown.Triggers)
		}
		fmt.Fprintln(w, "|-------|--------|")
	}
}
