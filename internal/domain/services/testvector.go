// Package services implements the domain logic of the firmware tools.
package services

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/cms-l1-globaltrigger/ugt-fwtools/internal/domain/entities"
)

// TestVectorService processes trigger test vector files.
// Each line carries whitespace-separated columns; the second-to-last column
// is the 512-bit algorithm word, the last column the finor bit.
type TestVectorService struct{}

// NewTestVectorService creates a new test vector service
func NewTestVectorService() *TestVectorService {
	return &TestVectorService{}
}

// Mask rewrites a test vector restricted to one module's algorithms.
// The algorithm word is ANDed with the module mask and the finor column
// recomputed from the result.
func (s *TestVectorService) Mask(r io.Reader, w io.Writer, mask *entities.AlgoMask) error {
	bw := bufio.NewWriter(w)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for sc.Scan() {
		line++
		columns := strings.Fields(sc.Text())
		if len(columns) < 2 {
			return fmt.Errorf("test vector line %d: expected at least 2 columns, got %d", line, len(columns))
		}

		word, err := entities.ParseAlgoMask(columns[len(columns)-2])
		if err != nil {
			return fmt.Errorf("test vector line %d: %w", line, err)
		}

		masked := word.And(mask)
		columns[len(columns)-2] = masked.Hex()
		if masked.Any() {
			columns[len(columns)-1] = "1"
		} else {
			columns[len(columns)-1] = "0"
		}

		if _, err := fmt.Fprintln(bw, strings.Join(columns, " ")); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading test vector: %w", err)
	}
	return bw.Flush()
}

// TriggerCounts returns, per algorithm index, how often the bit is set
// across all bunch crossings of the test vector
func (s *TestVectorService) TriggerCounts(r io.Reader) ([]int, error) {
	counts := make([]int, entities.MaxAlgorithms)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for sc.Scan() {
		line++
		columns := strings.Fields(sc.Text())
		if len(columns) < 2 {
			return nil, fmt.Errorf("test vector line %d: expected at least 2 columns, got %d", line, len(columns))
		}

		word, err := entities.ParseAlgoMask(columns[len(columns)-2])
		if err != nil {
			return nil, fmt.Errorf("test vector line %d: %w", line, err)
		}

		for index := 0; index < entities.MaxAlgorithms; index++ {
			if word.Test(index) {
				counts[index]++
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading test vector: %w", err)
	}
	return counts, nil
}
