package encryption

import (
	"bytes"
	"fmt"
	"io"

	"times-go/internal/times"
)

// snapshotMagic marks output of TestEncryptor.
var snapshotMagic = []byte("TIMESNAP")

// TestEncryptor is a reversible, key-less Encryptor for tests. Its output
// is the plaintext behind a fixed 8-byte marker, so it never equals the
// input and needs no key files.
type TestEncryptor struct{}

var _ times.Encryptor = (*TestEncryptor)(nil)

func NewTestEncryptor() *TestEncryptor {
	return &TestEncryptor{}
}

func (*TestEncryptor) Setup(string) error { return nil }

func (*TestEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	if _, err := w.Write(snapshotMagic); err != nil {
		return fmt.Errorf("writing marker: %w", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

func (*TestEncryptor) Unlock(string) (times.DecryptionContext, error) {
	return &TestDecryptionContext{}, nil
}

func (*TestEncryptor) IsConfigured() bool { return true }

// TestDecryptionContext removes the marker written by TestEncryptor.
type TestDecryptionContext struct{}

var _ times.DecryptionContext = (*TestDecryptionContext)(nil)

func (*TestDecryptionContext) Decrypt(r io.Reader, w io.Writer) error {
	marker := make([]byte, len(snapshotMagic))
	if _, err := io.ReadFull(r, marker); err != nil {
		return fmt.Errorf("reading marker: %w", err)
	}
	if !bytes.Equal(marker, snapshotMagic) {
		return fmt.Errorf("input was not produced by TestEncryptor")
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}
