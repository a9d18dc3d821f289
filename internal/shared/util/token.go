package util

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// URLSafeToken returns nBytes of crypto/rand entropy encoded with the
// unpadded base64 URL alphabet.
func URLSafeToken(nBytes int) (string, error) {
	if nBytes <= 0 {
		return "", fmt.Errorf("token size must be positive")
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
