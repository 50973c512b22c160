package encryption

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"times-go/internal/config"
)

var payloads = []struct {
	name  string
	input []byte
}{
	{name: "snapshot header", input: []byte("SQLite format 3\x00")},
	{name: "empty", input: []byte{}},
	{name: "binary", input: []byte{0x00, 0xff, 0x01, 0xfe}},
	{name: "large", input: bytes.Repeat([]byte("0/posts/1"), 20000)},
}

func newAgeEncryptor(t *testing.T) (*AgeEncryptor, config.EncryptionConfig) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.EncryptionConfig{
		Type:           "age",
		PublicKeyPath:  filepath.Join(dir, "keys", "times.pub"),
		PrivateKeyPath: filepath.Join(dir, "keys", "times.key"),
	}
	return NewAgeEncryptor(cfg), cfg
}

func TestAgeEncryptor_RoundTrip(t *testing.T) {
	t.Parallel()

	e, _ := newAgeEncryptor(t)
	if e.IsConfigured() {
		t.Fatal("IsConfigured() = true before Setup")
	}
	if err := e.Setup("correct horse"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if !e.IsConfigured() {
		t.Fatal("IsConfigured() = false after Setup")
	}

	dec, err := e.Unlock("correct horse")
	if err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}

	for _, tt := range payloads {
		t.Run(tt.name, func(t *testing.T) {
			var sealed bytes.Buffer
			if err := e.Encrypt(bytes.NewReader(tt.input), &sealed); err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}
			if bytes.Contains(sealed.Bytes(), tt.input) && len(tt.input) > 0 {
				t.Error("ciphertext contains plaintext")
			}

			var opened bytes.Buffer
			if err := dec.Decrypt(&sealed, &opened); err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}
			if !bytes.Equal(opened.Bytes(), tt.input) {
				t.Errorf("round trip returned %d bytes, want %d", opened.Len(), len(tt.input))
			}
		})
	}
}

func TestAgeEncryptor_KeyFiles(t *testing.T) {
	t.Parallel()

	e, cfg := newAgeEncryptor(t)
	if err := e.Setup("pw"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	pub, err := os.ReadFile(cfg.PublicKeyPath)
	if err != nil {
		t.Fatalf("reading public key: %v", err)
	}
	if !bytes.HasPrefix(pub, []byte("age1")) {
		t.Errorf("public key = %q, want age1 recipient", pub)
	}

	priv, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		t.Fatalf("reading private key: %v", err)
	}
	if bytes.Contains(priv, []byte("AGE-SECRET-KEY")) {
		t.Error("private key stored unwrapped")
	}
	info, err := os.Stat(cfg.PrivateKeyPath)
	if err != nil {
		t.Fatalf("stat private key: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("private key mode = %o, want 600", perm)
	}
}

func TestAgeEncryptor_SetupTwice(t *testing.T) {
	t.Parallel()

	e, _ := newAgeEncryptor(t)
	if err := e.Setup("first"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if err := e.Setup("second"); !errors.Is(err, ErrKeysExist) {
		t.Errorf("second Setup() error = %v, want ErrKeysExist", err)
	}
	if _, err := e.Unlock("first"); err != nil {
		t.Errorf("original key replaced: %v", err)
	}
}

func TestAgeEncryptor_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		run  func(e *AgeEncryptor) error
	}{
		{
			name: "empty passphrase",
			run:  func(e *AgeEncryptor) error { return e.Setup("") },
		},
		{
			name: "encrypt before setup",
			run: func(e *AgeEncryptor) error {
				return e.Encrypt(bytes.NewReader([]byte("x")), &bytes.Buffer{})
			},
		},
		{
			name: "unlock before setup",
			run: func(e *AgeEncryptor) error {
				_, err := e.Unlock("pw")
				return err
			},
		},
		{
			name: "wrong passphrase",
			run: func(e *AgeEncryptor) error {
				if err := e.Setup("right"); err != nil {
					return nil
				}
				_, err := e.Unlock("wrong")
				return err
			},
		},
		{
			name: "decrypt foreign data",
			run: func(e *AgeEncryptor) error {
				if err := e.Setup("pw"); err != nil {
					return nil
				}
				dec, err := e.Unlock("pw")
				if err != nil {
					return nil
				}
				return dec.Decrypt(bytes.NewReader([]byte("not age")), &bytes.Buffer{})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, _ := newAgeEncryptor(t)
			if err := tt.run(e); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestTestEncryptor_RoundTrip(t *testing.T) {
	t.Parallel()

	e := NewTestEncryptor()
	if err := e.Setup("ignored"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if !e.IsConfigured() {
		t.Error("IsConfigured() = false")
	}
	dec, err := e.Unlock("ignored")
	if err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}

	for _, tt := range payloads {
		t.Run(tt.name, func(t *testing.T) {
			var sealed bytes.Buffer
			if err := e.Encrypt(bytes.NewReader(tt.input), &sealed); err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}
			if bytes.Equal(sealed.Bytes(), tt.input) {
				t.Error("output equals input")
			}

			var opened bytes.Buffer
			if err := dec.Decrypt(&sealed, &opened); err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}
			if !bytes.Equal(opened.Bytes(), tt.input) {
				t.Errorf("round trip returned %d bytes, want %d", opened.Len(), len(tt.input))
			}
		})
	}
}

func TestTestDecryptionContext_RejectsForeignInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []byte
	}{
		{name: "empty", input: nil},
		{name: "short", input: []byte("TIME")},
		{name: "wrong marker", input: []byte("NOTSNAPSHOT-data")},
	}

	dec := &TestDecryptionContext{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := dec.Decrypt(bytes.NewReader(tt.input), &bytes.Buffer{}); err == nil {
				t.Error("Decrypt() succeeded, want error")
			}
		})
	}
}

func TestNewEncryptorFromConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     config.EncryptionConfig
		want    string
		wantErr bool
	}{
		{name: "age", cfg: config.EncryptionConfig{Type: "age", PublicKeyPath: "a.pub", PrivateKeyPath: "a.key"}, want: "*encryption.AgeEncryptor"},
		{name: "default is age", cfg: config.EncryptionConfig{PublicKeyPath: "a.pub", PrivateKeyPath: "a.key"}, want: "*encryption.AgeEncryptor"},
		{name: "age without paths", cfg: config.EncryptionConfig{Type: "age"}, wantErr: true},
		{name: "test", cfg: config.EncryptionConfig{Type: "test"}, want: "*encryption.TestEncryptor"},
		{name: "unknown", cfg: config.EncryptionConfig{Type: "rot13"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewEncryptorFromConfig(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewEncryptorFromConfig() error = %v", err)
			}
			if got := typeName(e); got != tt.want {
				t.Errorf("type = %s, want %s", got, tt.want)
			}
		})
	}
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
