package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// ComputeSHA256 returns the lowercase hex SHA256 of the file at path.
func ComputeSHA256(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("read %q: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// IsSHA256Hex reports whether s looks like a hex SHA256 digest.
func IsSHA256Hex(s string) bool {
	if len(s) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// VerifyChecksum compares the file's SHA256 with expected, ignoring case.
func VerifyChecksum(path, expected string) (bool, error) {
	if !IsSHA256Hex(expected) {
		return false, fmt.Errorf("invalid SHA256 %q", expected)
	}
	computed, err := ComputeSHA256(path)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(computed, expected), nil
}
