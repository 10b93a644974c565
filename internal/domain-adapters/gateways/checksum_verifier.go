package gateways

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// checksumVerifier implements checksum handling using pure Go
type checksumVerifier struct{}

// NewChecksumVerifier creates a new checksum verifier
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewChecksumVerifier() *checksumVerifier {
	return &checksumVerifier{}
}

// VerifyChecksum verifies a file's SHA256 checksum
// Pure Go implementation - no external sha256sum binary needed
func (v *checksumVerifier) VerifyChecksum(_ context.Context, filePath, expectedSum string) error {
	actualSum, err := v.CalculateChecksum(filePath)
	if err != nil {
		return err
	}
	if actualSum != expectedSum {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", expectedSum, actualSum)
	}
	return nil
}

// CalculateChecksum calculates the SHA256 checksum of a file
func (v *checksumVerifier) CalculateChecksum(filePath string) (string, error) {
	//nolint:gosec // G304: File path is user-provided for checksum calculation
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// WriteChecksumFile writes a sha256sum-compatible sidecar file next to
// the given file.
func (v *checksumVerifier) WriteChecksumFile(filePath string) (string, error) {
	sum, err := v.CalculateChecksum(filePath)
	if err != nil {
		return "", err
	}
	sidecar := filePath + ".sha256"
	content := fmt.Sprintf("%s  %s\n", sum, filepath.Base(filePath))
	if err := os.WriteFile(sidecar, []byte(content), 0644); err != nil { //nolint:gosec // G306: checksum sidecars are world readable
		return "", fmt.Errorf("failed to write checksum file: %w", err)
	}
	return sidecar, nil
}

// VerifyChecksumFile checks a file against its sha256sum sidecar
func (v *checksumVerifier) VerifyChecksumFile(ctx context.Context, filePath, sidecarPath string) error {
	//nolint:gosec // G304: sidecarPath is user-provided for verification
	content, err := os.ReadFile(sidecarPath)
	if err != nil {
		return fmt.Errorf("failed to read checksum file: %w", err)
	}
	fields := strings.Fields(string(content))
	if len(fields) < 1 || len(fields[0]) != sha256.Size*2 {
		return fmt.Errorf("malformed checksum file %s", sidecarPath)
	}
	return v.VerifyChecksum(ctx, filePath, fields[0])
}
