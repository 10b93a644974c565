// Package gpg signs and verifies firmware archives with OpenPGP keys.
package gpg

import (
	"fmt"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
)

// Signer writes armored detached signatures for firmware archives
type Signer struct {
	entity *openpgp.Entity
}

// NewSignerFromFile loads an armored private key from a file
func NewSignerFromFile(keyPath string) (*Signer, error) {
	//nolint:gosec // G304: keyPath is user-provided for signing
	f, err := os.Open(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open key file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	keyring, err := openpgp.ReadArmoredKeyRing(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read key ring: %w", err)
	}

	for _, entity := range keyring {
		if entity.PrivateKey != nil {
			return &Signer{entity: entity}, nil
		}
	}
	return nil, fmt.Errorf("no private key found in %s", keyPath)
}

// SignFile writes an armored detached signature of filePath to sigPath
func (s *Signer) SignFile(filePath, sigPath string) error {
	//nolint:gosec // G304: filePath is the archive to sign
	in, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer in.Close()

	//nolint:gosec // G304: sigPath is derived from the archive path
	out, err := os.Create(sigPath)
	if err != nil {
		return fmt.Errorf("failed to create signature file: %w", err)
	}

	if err := openpgp.ArmoredDetachSign(out, s.entity, in, nil); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to sign %s: %w", filePath, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to finalize signature file: %w", err)
	}
	return nil
}

// Verifier checks armored detached signatures against a public key ring
type Verifier struct {
	keyring openpgp.EntityList
}

// NewVerifierFromFile loads an armored public key ring from a file
func NewVerifierFromFile(keyPath string) (*Verifier, error) {
	//nolint:gosec // G304: keyPath is user-provided for verification
	f, err := os.Open(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open key file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	keyring, err := openpgp.ReadArmoredKeyRing(f)
	if err != nil {
		// Try reading as binary
		if _, seekErr := f.Seek(0, 0); seekErr != nil {
			return nil, fmt.Errorf("failed to reset file: %w", seekErr)
		}
		keyring, err = openpgp.ReadKeyRing(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read key ring: %w", err)
		}
	}

	if len(keyring) == 0 {
		return nil, fmt.Errorf("no keys found in %s", keyPath)
	}
	return &Verifier{keyring: keyring}, nil
}

// VerifyFile checks the armored detached signature at sigPath against filePath
func (v *Verifier) VerifyFile(filePath, sigPath string) error {
	//nolint:gosec // G304: filePath is the archive to verify
	data, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer data.Close()

	//nolint:gosec // G304: sigPath is the signature to verify
	sig, err := os.Open(sigPath)
	if err != nil {
		return fmt.Errorf("failed to open signature: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer sig.Close()

	if _, err := openpgp.CheckArmoredDetachedSignature(v.keyring, data, sig, nil); err != nil {
		return fmt.Errorf("signature verification failed for %s: %w", filePath, err)
	}
	return nil
}
