package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// SecretBytes is the HMAC key size for the queue API's HS256 tokens.
const SecretBytes = 32

// NewSecret generates a random hex-encoded signing secret suitable for
// DOWNLOADER_API_SECRET.
func NewSecret() (string, error) {
	b := make([]byte, SecretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate api secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
