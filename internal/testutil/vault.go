package testutil

import (
	"times-go/internal/times"
	"times-go/internal/vault"
)

// NewTestVault creates a new in-memory snapshot vault for testing.
func NewTestVault() times.Vault {
	return vault.NewMemoryVault("test-vault")
}
