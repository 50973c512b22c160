package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"times-go/internal/times"
)

// snapshotter is implemented by stores that can copy their data file.
type snapshotter interface {
	BackupTo(ctx context.Context, destPath string) error
}

// Backup copies the store's data file, encrypts it and uploads it to the
// first configured vault. The returned version is the store clock in Unix
// seconds, bumped past the version already in the vault if necessary.
func (a *App) Backup(ctx context.Context) (int64, error) {
	version, err := a.backup(ctx)
	return version, a.op.Fail(err)
}

func (a *App) backup(ctx context.Context) (int64, error) {
	snap, ok := a.store.(snapshotter)
	if !ok {
		return 0, fmt.Errorf("backup: %T: %w", a.store, times.ErrUnsupported)
	}
	enc, err := a.getEncryptor()
	if err != nil {
		return 0, err
	}
	if !enc.IsConfigured() {
		return 0, fmt.Errorf("encryption is not set up; run 'times encryption setup'")
	}
	v, err := a.getVault(ctx)
	if err != nil {
		return 0, err
	}

	tmpDir, err := os.MkdirTemp("", "times-backup-*")
	if err != nil {
		return 0, fmt.Errorf("creating temp directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	plainPath := filepath.Join(tmpDir, "snapshot.db")
	if err := snap.BackupTo(ctx, plainPath); err != nil {
		return 0, err
	}

	sealedPath := filepath.Join(tmpDir, "snapshot.db.age")
	if err := encryptFile(enc, plainPath, sealedPath); err != nil {
		return 0, err
	}

	previous, err := v.GetSnapshotVersion(a.cfg.InstanceID)
	if err != nil {
		return 0, fmt.Errorf("checking vault version: %w", err)
	}
	version := a.clock.Now().Unix()
	if version <= previous {
		version = previous + 1
	}

	f, err := os.Open(sealedPath)
	if err != nil {
		return 0, fmt.Errorf("opening encrypted snapshot: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat encrypted snapshot: %w", err)
	}

	if err := v.PutSnapshot(a.cfg.InstanceID, f, info.Size(), version); err != nil {
		return 0, fmt.Errorf("uploading snapshot: %w", err)
	}
	a.logger.Info("snapshot uploaded", "instance", a.cfg.InstanceID, "version", version, "bytes", info.Size())
	return version, nil
}

// Restore downloads the latest snapshot for this instance, decrypts it
// with the key unlocked by passphrase and writes it to target. An existing
// target is never overwritten.
func (a *App) Restore(ctx context.Context, passphrase, target string) (int64, error) {
	version, err := a.restore(ctx, passphrase, target)
	return version, a.op.Fail(err)
}

func (a *App) restore(ctx context.Context, passphrase, target string) (int64, error) {
	if _, err := os.Stat(target); err == nil {
		return 0, fmt.Errorf("restore target %s: %w", target, times.ErrAlreadyExists)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return 0, fmt.Errorf("checking restore target: %w", err)
	}

	enc, err := a.getEncryptor()
	if err != nil {
		return 0, err
	}
	v, err := a.getVault(ctx)
	if err != nil {
		return 0, err
	}

	version, err := v.GetSnapshotVersion(a.cfg.InstanceID)
	if err != nil {
		return 0, fmt.Errorf("checking vault version: %w", err)
	}
	if version == 0 {
		return 0, fmt.Errorf("no snapshot for instance %s: %w", a.cfg.InstanceID, times.ErrNotFound)
	}

	dec, err := enc.Unlock(passphrase)
	if err != nil {
		return 0, err
	}

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("creating restore directory: %w", err)
	}

	sealed, err := os.CreateTemp(dir, ".restore-*.age")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(sealed.Name())
	defer sealed.Close()

	if err := v.GetSnapshot(a.cfg.InstanceID, sealed); err != nil {
		return 0, fmt.Errorf("downloading snapshot: %w", err)
	}
	if _, err := sealed.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("rewinding snapshot: %w", err)
	}

	plain, err := os.CreateTemp(dir, ".restore-*.db")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	plainPath := plain.Name()
	defer os.Remove(plainPath)

	if err := dec.Decrypt(sealed, plain); err != nil {
		plain.Close()
		return 0, fmt.Errorf("decrypting snapshot: %w", err)
	}
	if err := plain.Close(); err != nil {
		return 0, fmt.Errorf("writing restored file: %w", err)
	}

	// Link fails if target appeared in the meantime.
	if err := os.Link(plainPath, target); err != nil {
		return 0, fmt.Errorf("placing restored file: %w", err)
	}
	a.logger.Info("snapshot restored", "instance", a.cfg.InstanceID, "version", version, "target", target)
	return version, nil
}

func encryptFile(enc times.Encryptor, src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating encrypted snapshot: %w", err)
	}
	if err := enc.Encrypt(in, out); err != nil {
		out.Close()
		return fmt.Errorf("encrypting snapshot: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("writing encrypted snapshot: %w", err)
	}
	return nil
}
