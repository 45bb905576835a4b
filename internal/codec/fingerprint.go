package codec

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"enigma/internal/domain"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint identifies a machine configuration independent of its name.
// Rotor positions are part of the fingerprint.
func Fingerprint(s domain.Settings) (string, error) {
	canonical, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal settings: %w", err)
	}
	sum := blake2b.Sum256(canonical)
	return hex.EncodeToString(sum[:16]), nil
}
