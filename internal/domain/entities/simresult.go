package entities

// ModuleResults mirrors the results_module_<id>.json file written by the
// simulation testbench
type ModuleResults struct {
	Errors []ResultError `json:"errors"`
	Counts []ResultCount `json:"counts"`
}

// ResultError records one bunch crossing where simulation and test vector
// disagree
type ResultError struct {
	BxNr     int    `json:"bx-nr"`
	AlgosSim string `json:"algos_sim"`
	AlgosTV  string `json:"algos_tv"`
	FinorSim string `json:"finor_sim"`
	FinorTV  string `json:"finor_tv"`
}

// ResultCount records the trigger counts of one algorithm over the full
// test vector, as seen by simulation and by the test vector itself
type ResultCount struct {
	AlgoIndex int `json:"algo_index"`
	AlgoSim   int `json:"algo_sim"`
	AlgoTV    int `json:"algo_tv"`
}
