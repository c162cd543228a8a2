// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ErrChecksumMismatch indicates the computed SHA256 hash of a release
// archive does not match the pinned hash.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// ChecksumError provides details about a checksum verification failure.
// It wraps ErrChecksumMismatch so callers can use errors.Is for
// classification.
type ChecksumError struct {
	Asset    string
	Expected string
	Got      string
}

// Error returns a human-readable description of the mismatch, showing
// both hash values for debugging.
func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum verification failed for %s\nExpected: %s\nGot:      %s", e.Asset, e.Expected, e.Got)
}

// Unwrap returns ErrChecksumMismatch so callers can use errors.Is.
func (e *ChecksumError) Unwrap() error { return ErrChecksumMismatch }

// verifyChecksum compares the SHA256 hash of data with expected
// (case-insensitive hex). Returns a *ChecksumError wrapping
// ErrChecksumMismatch if they differ.
func verifyChecksum(asset string, data []byte, expected string) error {
	sum := sha256.Sum256(data)
	got := hex.EncodeToString(sum[:])
	if !strings.EqualFold(got, expected) {
		return &ChecksumError{
			Asset:    asset,
			Expected: strings.ToLower(expected),
			Got:      got,
		}
	}
	return nil
}
