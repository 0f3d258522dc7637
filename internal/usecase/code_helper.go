package usecase

import (
	"crypto/rand"
	"encoding/hex"
	"io"
	"strings"
)

// codePrefix marks codes issued by this panel.
const codePrefix = "FF-"

// generateActivationCode creates a secure random code of the form
// FF-XXXXXXXXXXXXXXXX (16 uppercase hex chars). Uniqueness is enforced by
// the store; callers retry on collision.
func generateActivationCode() (string, error) {
	buf := make([]byte, 8)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", err
	}
	return codePrefix + strings.ToUpper(hex.EncodeToString(buf)), nil
}

// normalizeCode maps user input to the stored form: trimmed, uppercased.
func normalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
