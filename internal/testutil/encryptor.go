package testutil

import (
	"times-go/internal/encryption"
	"times-go/internal/times"
)

// NewTestEncryptor creates a deterministic, non-cryptographic encryptor for tests.
func NewTestEncryptor() times.Encryptor {
	return encryption.NewTestEncryptor()
}
