package vault

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"times-go/internal/times"
)

// MemoryVault keeps snapshots in memory. Safe for concurrent use.
type MemoryVault struct {
	name string

	mu       sync.RWMutex
	data     map[string][]byte
	versions map[string]int64
}

func NewMemoryVault(name string) *MemoryVault {
	return &MemoryVault{
		name:     name,
		data:     make(map[string][]byte),
		versions: make(map[string]int64),
	}
}

func (m *MemoryVault) PutSnapshot(instanceID string, r io.Reader, size int64, version int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading snapshot: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("snapshot size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[instanceID] = data
	m.versions[instanceID] = version
	return nil
}

func (m *MemoryVault) GetSnapshot(instanceID string, w io.Writer) error {
	m.mu.RLock()
	data, ok := m.data[instanceID]
	m.mu.RUnlock()

	if !ok {
		return fmt.Errorf("snapshot for %s in vault %s: %w", instanceID, m.name, times.ErrNotFound)
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

func (m *MemoryVault) GetSnapshotVersion(instanceID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.versions[instanceID], nil
}

func (m *MemoryVault) ValidateSetup() error { return nil }

var _ times.Vault = (*MemoryVault)(nil)
