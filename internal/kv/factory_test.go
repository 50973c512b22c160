package kv

import (
	"path/filepath"
	"testing"

	"times-go/internal/config"
)

func TestNewEngineFromConfig(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     config.StoreConfig
		wantErr bool
	}{
		{
			name: "default engine is sqlite",
			cfg:  config.StoreConfig{Type: "embedded", Path: filepath.Join(dir, "default.db")},
		},
		{
			name: "sqlite engine",
			cfg:  config.StoreConfig{Type: "embedded", Engine: "sqlite", Path: filepath.Join(dir, "times.db")},
		},
		{
			name: "leveldb engine",
			cfg:  config.StoreConfig{Type: "embedded", Engine: "leveldb", Path: filepath.Join(dir, "times.leveldb")},
		},
		{
			name:    "sqlite without path",
			cfg:     config.StoreConfig{Type: "embedded", Engine: "sqlite"},
			wantErr: true,
		},
		{
			name:    "leveldb without path",
			cfg:     config.StoreConfig{Type: "embedded", Engine: "leveldb"},
			wantErr: true,
		},
		{
			name:    "unknown engine",
			cfg:     config.StoreConfig{Type: "embedded", Engine: "bolt", Path: filepath.Join(dir, "x")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewEngineFromConfig(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewEngineFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != nil {
				got.Close()
			}
		})
	}
}
