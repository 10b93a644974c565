package entities

import (
	"fmt"
	"math/big"
)

// AlgoMask is a 512-bit algorithm word as found in test vector files.
// Bit i corresponds to the algorithm with global index i.
type AlgoMask struct {
	bits *big.Int
}

// NewAlgoMask creates an empty mask
func NewAlgoMask() *AlgoMask {
	return &AlgoMask{bits: new(big.Int)}
}

// ParseAlgoMask parses a 128-digit hex algorithm word
func ParseAlgoMask(hex string) (*AlgoMask, error) {
	bits, ok := new(big.Int).SetString(hex, 16)
	if !ok {
		return nil, fmt.Errorf("invalid algorithm word: %q", hex)
	}
	if bits.Sign() < 0 || bits.BitLen() > MaxAlgorithms {
		return nil, fmt.Errorf("algorithm word out of range: %q", hex)
	}
	return &AlgoMask{bits: bits}, nil
}

// Set marks the algorithm bit at index
func (m *AlgoMask) Set(index int) {
	m.bits.SetBit(m.bits, index, 1)
}

// Test reports whether the algorithm bit at index is set
func (m *AlgoMask) Test(index int) bool {
	return m.bits.Bit(index) == 1
}

// And returns the intersection with another mask
func (m *AlgoMask) And(other *AlgoMask) *AlgoMask {
	return &AlgoMask{bits: new(big.Int).And(m.bits, other.bits)}
}

// Any reports whether any bit is set
func (m *AlgoMask) Any() bool {
	return m.bits.Sign() != 0
}

// Hex formats the mask as a zero-padded 128-digit hex word
func (m *AlgoMask) Hex() string {
	return fmt.Sprintf("%0128x", m.bits)
}
