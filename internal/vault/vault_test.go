package vault

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"times-go/internal/times"
)

type vaultCase struct {
	name string
	open func(t *testing.T) times.Vault
}

var vaultCases = []vaultCase{
	{
		name: "memory",
		open: func(t *testing.T) times.Vault { return NewMemoryVault("mem") },
	},
	{
		name: "filesystem",
		open: func(t *testing.T) times.Vault {
			v, err := NewFileSystemVault("local", t.TempDir())
			if err != nil {
				t.Fatalf("NewFileSystemVault() error = %v", err)
			}
			return v
		},
	},
	{
		name: "s3",
		open: func(t *testing.T) times.Vault {
			return newS3Vault("remote", "bucket", "times", newFakeS3())
		},
	},
}

func TestVault_SnapshotRoundTrip(t *testing.T) {
	for _, vc := range vaultCases {
		t.Run(vc.name, func(t *testing.T) {
			v := vc.open(t)
			if err := v.ValidateSetup(); err != nil {
				t.Fatalf("ValidateSetup() error = %v", err)
			}

			version, err := v.GetSnapshotVersion("instance-1")
			if err != nil {
				t.Fatalf("GetSnapshotVersion() error = %v", err)
			}
			if version != 0 {
				t.Errorf("version before first snapshot = %d, want 0", version)
			}

			first := []byte("snapshot one")
			if err := v.PutSnapshot("instance-1", bytes.NewReader(first), int64(len(first)), 100); err != nil {
				t.Fatalf("PutSnapshot() error = %v", err)
			}
			second := bytes.Repeat([]byte{0xAB}, 4096)
			if err := v.PutSnapshot("instance-1", bytes.NewReader(second), int64(len(second)), 200); err != nil {
				t.Fatalf("PutSnapshot() replace error = %v", err)
			}

			var got bytes.Buffer
			if err := v.GetSnapshot("instance-1", &got); err != nil {
				t.Fatalf("GetSnapshot() error = %v", err)
			}
			if !bytes.Equal(got.Bytes(), second) {
				t.Errorf("GetSnapshot() returned %d bytes, want the replacement", got.Len())
			}

			version, err = v.GetSnapshotVersion("instance-1")
			if err != nil {
				t.Fatalf("GetSnapshotVersion() error = %v", err)
			}
			if version != 200 {
				t.Errorf("version = %d, want 200", version)
			}
		})
	}
}

func TestVault_InstancesAreIsolated(t *testing.T) {
	for _, vc := range vaultCases {
		t.Run(vc.name, func(t *testing.T) {
			v := vc.open(t)
			data := []byte("mine")
			if err := v.PutSnapshot("instance-1", bytes.NewReader(data), 4, 1); err != nil {
				t.Fatalf("PutSnapshot() error = %v", err)
			}

			err := v.GetSnapshot("instance-2", &bytes.Buffer{})
			if !errors.Is(err, times.ErrNotFound) {
				t.Errorf("GetSnapshot(other) error = %v, want ErrNotFound", err)
			}
			if version, _ := v.GetSnapshotVersion("instance-2"); version != 0 {
				t.Errorf("GetSnapshotVersion(other) = %d, want 0", version)
			}
		})
	}
}

func TestVault_SizeMismatch(t *testing.T) {
	for _, vc := range vaultCases {
		t.Run(vc.name, func(t *testing.T) {
			v := vc.open(t)
			err := v.PutSnapshot("instance-1", strings.NewReader("short"), 99, 1)
			if err == nil {
				t.Fatal("PutSnapshot() with wrong size succeeded")
			}
		})
	}
}

func TestFileSystemVault_Layout(t *testing.T) {
	root := t.TempDir()
	v, err := NewFileSystemVault("local", root)
	if err != nil {
		t.Fatalf("NewFileSystemVault() error = %v", err)
	}

	if err := v.PutSnapshot("abc", strings.NewReader("data"), 4, 42); err != nil {
		t.Fatalf("PutSnapshot() error = %v", err)
	}

	snap, err := os.ReadFile(filepath.Join(root, "snapshots", "abc.snap"))
	if err != nil || string(snap) != "data" {
		t.Errorf("snapshot file = %q, %v", snap, err)
	}
	version, err := os.ReadFile(filepath.Join(root, "snapshots", "abc.version"))
	if err != nil || string(version) != "42" {
		t.Errorf("version file = %q, %v", version, err)
	}

	entries, err := os.ReadDir(filepath.Join(root, "snapshots"))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Errorf("temp file %s left behind", e.Name())
		}
	}
}

func TestFileSystemVault_FailedPutKeepsPrevious(t *testing.T) {
	v, err := NewFileSystemVault("local", t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSystemVault() error = %v", err)
	}
	if err := v.PutSnapshot("abc", strings.NewReader("good"), 4, 1); err != nil {
		t.Fatalf("PutSnapshot() error = %v", err)
	}
	if err := v.PutSnapshot("abc", strings.NewReader("truncated"), 100, 2); err == nil {
		t.Fatal("PutSnapshot() with wrong size succeeded")
	}

	var got bytes.Buffer
	if err := v.GetSnapshot("abc", &got); err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if got.String() != "good" {
		t.Errorf("snapshot = %q, want previous contents", got.String())
	}
	if version, _ := v.GetSnapshotVersion("abc"); version != 1 {
		t.Errorf("version = %d, want 1", version)
	}
}

func TestFileSystemVault_ValidateSetup(t *testing.T) {
	root := t.TempDir()
	v, err := NewFileSystemVault("local", root)
	if err != nil {
		t.Fatalf("NewFileSystemVault() error = %v", err)
	}
	if err := os.RemoveAll(filepath.Join(root, "snapshots")); err != nil {
		t.Fatalf("RemoveAll() error = %v", err)
	}
	if err := v.ValidateSetup(); err == nil {
		t.Error("ValidateSetup() succeeded without snapshot directory")
	}
}

func TestS3Vault_ObjectLayout(t *testing.T) {
	fake := newFakeS3()
	v := newS3Vault("remote", "bucket", "backups/times", fake)

	if err := v.PutSnapshot("abc", strings.NewReader("data"), 4, 7); err != nil {
		t.Fatalf("PutSnapshot() error = %v", err)
	}
	obj, ok := fake.objects["bucket/backups/times/snapshots/abc.snap"]
	if !ok {
		t.Fatalf("object not stored under expected key; have %v", fake.keys())
	}
	if obj.metadata[versionMetadataKey] != "7" {
		t.Errorf("version metadata = %q, want 7", obj.metadata[versionMetadataKey])
	}
}

func TestS3Vault_ValidateSetup(t *testing.T) {
	fake := newFakeS3()
	if err := newS3Vault("remote", "bucket", "", fake).ValidateSetup(); err != nil {
		t.Errorf("ValidateSetup() error = %v", err)
	}
	if err := newS3Vault("remote", "", "", fake).ValidateSetup(); err == nil {
		t.Error("ValidateSetup() without bucket succeeded")
	}
	fake.bucketErr = errors.New("access denied")
	if err := newS3Vault("remote", "bucket", "", fake).ValidateSetup(); err == nil {
		t.Error("ValidateSetup() succeeded with inaccessible bucket")
	}
}
