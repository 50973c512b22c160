package times

import "io"

// Vault stores encrypted snapshots of a store's data file.
// All operations stream through io.Reader/io.Writer so large data files
// are never loaded entirely into memory.
type Vault interface {
	// PutSnapshot stores the snapshot for an instance, replacing any previous one.
	// size is the number of bytes that will be read from r.
	// version is stored alongside the snapshot for freshness checks.
	PutSnapshot(instanceID string, r io.Reader, size int64, version int64) error

	// GetSnapshot retrieves the latest snapshot for an instance and writes it to w.
	GetSnapshot(instanceID string, w io.Writer) error

	// GetSnapshotVersion returns the version of the stored snapshot.
	// Returns 0 if no snapshot has been stored for this instance.
	GetSnapshotVersion(instanceID string) (int64, error)

	// ValidateSetup verifies that the vault is accessible and properly configured.
	ValidateSetup() error
}
