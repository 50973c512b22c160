package vault

import (
	"context"
	"fmt"
	"testing"

	"times-go/internal/config"
)

func TestNewVaultFromConfig(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.VaultConfig
		wantType string
		wantErr  bool
	}{
		{
			name:     "memory",
			cfg:      config.VaultConfig{Type: "memory", Name: "mem"},
			wantType: "*vault.MemoryVault",
		},
		{
			name:     "filesystem",
			cfg:      config.VaultConfig{Type: "filesystem", Name: "local", FSVaultRoot: "ROOT"},
			wantType: "*vault.FileSystemVault",
		},
		{
			name:    "filesystem without root",
			cfg:     config.VaultConfig{Type: "filesystem", Name: "local"},
			wantErr: true,
		},
		{
			name:     "s3",
			cfg:      config.VaultConfig{Type: "s3", Name: "cloud", S3Bucket: "bucket", S3Region: "eu-west-1"},
			wantType: "*vault.S3Vault",
		},
		{
			name:    "s3 without bucket",
			cfg:     config.VaultConfig{Type: "s3", Name: "cloud"},
			wantErr: true,
		},
		{
			name:    "unknown",
			cfg:     config.VaultConfig{Type: "tape", Name: "x"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			if cfg.FSVaultRoot == "ROOT" {
				cfg.FSVaultRoot = t.TempDir()
			}

			got, err := NewVaultFromConfig(context.Background(), cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewVaultFromConfig() error = %v", err)
			}
			if gotType := fmt.Sprintf("%T", got); gotType != tt.wantType {
				t.Errorf("type = %s, want %s", gotType, tt.wantType)
			}
		})
	}
}
