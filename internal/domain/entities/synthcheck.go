package entities

// ModuleCheck holds the synthesis result probe for a single module project
type ModuleCheck struct {
	ModuleID         int
	BitfilePath      string
	BitfileFound     bool
	Errors           []string
	CriticalWarnings []string
	Timing           *TimingSummary
	Utilization      []UtilizationRow
}

// Passed reports whether the module build is usable: bitfile present,
// no errors and no negative slack
func (c *ModuleCheck) Passed() bool {
	if !c.BitfileFound || len(c.Errors) > 0 {
		return false
	}
	if c.Timing != nil && !c.Timing.Met() {
		return false
	}
	return true
}

// TimingSummary holds worst/total negative slack from the timing report
type TimingSummary struct {
	WNS float64
	TNS float64
	WHS float64
	THS float64
}

// Met reports whether all timing constraints are met
func (t *TimingSummary) Met() bool {
	return t.WNS >= 0 && t.WHS >= 0
}

// UtilizationRow holds one resource line of the utilization report
type UtilizationRow struct {
	Resource  string
	Used      int
	Available int
	Percent   float64
}
