package binary

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
)

// Verifier checks downloaded files against detached signatures and checksum files
type Verifier struct {
	keyringPath string
}

// NewVerifier creates a verifier trusting the public keys in keyringPath.
// keyringPath may be empty when only checksum verification is used.
func NewVerifier(keyringPath string) *Verifier {
	return &Verifier{keyringPath: keyringPath}
}

// HasKeyring reports whether signature verification is possible
func (v *Verifier) HasKeyring() bool {
	return keyringExists(v.keyringPath)
}

// VerifySignature verifies filePath against a detached OpenPGP signature,
// armored or binary.
func (v *Verifier) VerifySignature(filePath, signaturePath string) (*VerificationResult, error) {
	fail := func(err error) (*VerificationResult, error) {
		verr := &VerifyError{Method: VerificationGPG, Path: filePath, Err: err}
		return &VerificationResult{Method: VerificationGPG, Success: false, Error: verr}, verr
	}

	keyring, err := loadKeyring(v.keyringPath)
	if err != nil {
		return fail(fmt.Errorf("load keyring: %w", err))
	}

	file, err := os.Open(filePath)
	if err != nil {
		return fail(fmt.Errorf("open file: %w", err))
	}
	defer file.Close()

	sigFile, err := os.Open(signaturePath)
	if err != nil {
		return fail(fmt.Errorf("open signature: %w", err))
	}
	defer sigFile.Close()

	// Try armored first
	_, err = openpgp.CheckArmoredDetachedSignature(keyring, file, sigFile, nil)
	if err != nil {
		if _, seekErr := file.Seek(0, io.SeekStart); seekErr != nil {
			return fail(seekErr)
		}
		if _, seekErr := sigFile.Seek(0, io.SeekStart); seekErr != nil {
			return fail(seekErr)
		}
		_, err = openpgp.CheckDetachedSignature(keyring, file, sigFile, nil)
	}
	if err != nil {
		return fail(fmt.Errorf("%w: %v", ErrSignatureInvalid, err))
	}

	return &VerificationResult{Method: VerificationGPG, Success: true}, nil
}

// VerifyChecksum verifies filePath against the entry for assetName in a
// sha256sum-format checksum file. assetName is the name the checksum file
// uses, which may differ from the on-disk name.
func (v *Verifier) VerifyChecksum(filePath, checksumPath, assetName string) (*VerificationResult, error) {
	fail := func(err error) (*VerificationResult, error) {
		verr := &VerifyError{Method: VerificationSHA256, Path: filePath, Err: err}
		return &VerificationResult{Method: VerificationSHA256, Success: false, Error: verr}, verr
	}

	if assetName == "" {
		assetName = filepath.Base(filePath)
	}

	actualChecksum, err := calculateSHA256(filePath)
	if err != nil {
		return fail(fmt.Errorf("calculate checksum: %w", err))
	}

	expectedChecksum, err := findChecksum(checksumPath, assetName)
	if err != nil {
		return fail(fmt.Errorf("find checksum: %w", err))
	}

	// Compare checksums (case-insensitive)
	if !strings.EqualFold(actualChecksum, expectedChecksum) {
		return fail(fmt.Errorf("%w:\nactual:   %s\nexpected: %s",
			ErrChecksumMismatch, actualChecksum, expectedChecksum))
	}

	return &VerificationResult{Method: VerificationSHA256, Success: true}, nil
}

// calculateSHA256 calculates the SHA256 checksum of a file
func calculateSHA256(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// findChecksum finds the checksum for a specific filename in a checksum file
// Format: "abc123def456  filename.tar.gz" (binary mode "*filename" accepted)
func findChecksum(checksumPath, filename string) (string, error) {
	file, err := os.Open(checksumPath)
	if err != nil {
		return "", fmt.Errorf("open checksum file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) < 2 {
			continue
		}

		checksumFilename := strings.TrimPrefix(parts[1], "*")
		if checksumFilename == filename || filepath.Base(checksumFilename) == filename {
			return parts[0], nil
		}
	}

	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("scan checksum file: %w", err)
	}

	return "", fmt.Errorf("checksum not found for %s", filename)
}
