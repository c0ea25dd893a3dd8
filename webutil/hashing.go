package webutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// GenerateHash creates a SHA-256 hash of data and returns it as a
// hexadecimal string.
func GenerateHash(data []byte) (string, error) {
	hasher := sha256.New()
	if _, err := hasher.Write(data); err != nil {
		return "", fmt.Errorf("failed to write data to hasher: %w", err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// GenerateETag returns a strong entity tag for a response body.
func GenerateETag(body []byte) (string, error) {
	hash, err := GenerateHash(body)
	if err != nil {
		return "", err
	}
	return `"` + hash + `"`, nil
}
