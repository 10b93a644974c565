package entities

// MaxAlgorithms is the width of the algorithm bit field on the uGT board.
const MaxAlgorithms = 512

// Algorithm represents a single trigger algorithm assigned to a module
type Algorithm struct {
	Name        string
	Index       int
	ModuleID    int
	ModuleIndex int
	Expression  string
}

// Menu represents a parsed L1 trigger menu
type Menu struct {
	Name       string
	UUIDMenu   string
	UUIDFw     string
	NModules   int
	Algorithms []Algorithm
}

// AlgorithmByIndex returns the algorithm with the given global index, or nil
func (m *Menu) AlgorithmByIndex(index int) *Algorithm {
	for i := range m.Algorithms {
		if m.Algorithms[i].Index == index {
			return &m.Algorithms[i]
		}
	}
	return nil
}

// AlgorithmsByModule returns all algorithms implemented on a module
func (m *Menu) AlgorithmsByModule(moduleID int) []Algorithm {
	var algos []Algorithm
	for _, algo := range m.Algorithms {
		if algo.ModuleID == moduleID {
			algos = append(algos, algo)
		}
	}
	return algos
}

// ModuleMask returns the OR of 1<<index over all algorithms of a module.
// The mask selects the module's algorithm bits in a test vector word.
func (m *Menu) ModuleMask(moduleID int) *AlgoMask {
	mask := NewAlgoMask()
	for _, algo := range m.AlgorithmsByModule(moduleID) {
		mask.Set(algo.Index)
	}
	return mask
}
