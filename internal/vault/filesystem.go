package vault

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"times-go/internal/times"
)

// FileSystemVault stores snapshots below a root directory:
//
//	<root>/snapshots/<instanceID>.snap
//	<root>/snapshots/<instanceID>.version
type FileSystemVault struct {
	name string
	root string
	dir  string
}

func NewFileSystemVault(name, root string) (*FileSystemVault, error) {
	dir := filepath.Join(root, "snapshots")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}
	return &FileSystemVault{name: name, root: root, dir: dir}, nil
}

func (v *FileSystemVault) snapshotPath(instanceID string) string {
	return filepath.Join(v.dir, instanceID+".snap")
}

func (v *FileSystemVault) versionPath(instanceID string) string {
	return filepath.Join(v.dir, instanceID+".version")
}

// PutSnapshot replaces the snapshot atomically, then records its version.
func (v *FileSystemVault) PutSnapshot(instanceID string, r io.Reader, size int64, version int64) error {
	if err := atomicWrite(v.snapshotPath(instanceID), r, size); err != nil {
		return fmt.Errorf("storing snapshot for %s: %w", instanceID, err)
	}
	versionData := strings.NewReader(strconv.FormatInt(version, 10))
	if err := atomicWrite(v.versionPath(instanceID), versionData, versionData.Size()); err != nil {
		return fmt.Errorf("storing snapshot version for %s: %w", instanceID, err)
	}
	return nil
}

func (v *FileSystemVault) GetSnapshot(instanceID string, w io.Writer) error {
	f, err := os.Open(v.snapshotPath(instanceID))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("snapshot for %s in vault %s: %w", instanceID, v.name, times.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("reading snapshot: %w", err)
	}
	return nil
}

// GetSnapshotVersion returns 0 when no snapshot was stored.
func (v *FileSystemVault) GetSnapshotVersion(instanceID string) (int64, error) {
	data, err := os.ReadFile(v.versionPath(instanceID))
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading snapshot version: %w", err)
	}

	version, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing snapshot version: %w", err)
	}
	return version, nil
}

func (v *FileSystemVault) ValidateSetup() error {
	for _, dir := range []string{v.root, v.dir} {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("vault %s not accessible: %w", v.name, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("vault %s: %s is not a directory", v.name, dir)
		}
	}
	return nil
}

// atomicWrite copies exactly size bytes from r into a temp file next to
// dest and renames it over dest.
func atomicWrite(dest string, r io.Reader, size int64) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	written, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if written != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, written)
	}
	return os.Rename(tmp.Name(), dest)
}

var _ times.Vault = (*FileSystemVault)(nil)
