package license

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	// KeyAlphabet is the fixed character set license keys are drawn from.
	KeyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// KeyLength is the fixed length of every license key.
	KeyLength = 16
)

// GenerateKey returns a new license key: KeyLength characters uniformly
// sampled from KeyAlphabet using crypto/rand. The key is the sole
// redemption secret, so a predictable source is not acceptable here.
func GenerateKey() (string, error) {
	alphabetLen := big.NewInt(int64(len(KeyAlphabet)))
	buf := make([]byte, KeyLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("generate license key: %w", err)
		}
		buf[i] = KeyAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// IsWellFormedKey reports whether s has the exact shape of a license key.
func IsWellFormedKey(s string) bool {
	if len(s) != KeyLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
