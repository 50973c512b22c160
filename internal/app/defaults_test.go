package app

import (
	"os"
	"path/filepath"
	"testing"

	"times-go/internal/config"
	"times-go/internal/testutil"
)

func TestGetDefaults(t *testing.T) {
	t.Run("uses env vars when set", func(t *testing.T) {
		t.Setenv("TIMES_CONFIG_PATH", "/custom/times.toml")
		t.Setenv("TIMES_HOME", "/custom/times")

		d, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}
		want := Defaults{
			ConfigPath: "/custom/times.toml",
			BaseDir:    "/custom/times",
			LogDir:     "/custom/times/log",
		}
		if d != want {
			t.Errorf("GetDefaults() = %+v, want %+v", d, want)
		}
	})

	t.Run("falls back to home dir defaults", func(t *testing.T) {
		t.Setenv("TIMES_CONFIG_PATH", "")
		t.Setenv("TIMES_HOME", "")

		d, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}
		home, _ := os.UserHomeDir()
		base := filepath.Join(home, ".local", "share", "times")
		want := Defaults{
			ConfigPath: filepath.Join(home, ".config", "times.toml"),
			BaseDir:    base,
			LogDir:     filepath.Join(base, "log"),
		}
		if d != want {
			t.Errorf("GetDefaults() = %+v, want %+v", d, want)
		}
	})
}

func TestInitConfig(t *testing.T) {
	base := t.TempDir()
	d := Defaults{
		ConfigPath: filepath.Join(base, "config", "times.toml"),
		BaseDir:    filepath.Join(base, "home"),
		LogDir:     filepath.Join(base, "home", "log"),
	}
	gen := testutil.NewStubIDGenerator()

	cfg, err := InitConfig(d, gen)
	if err != nil {
		t.Fatalf("InitConfig() error = %v", err)
	}
	if cfg.InstanceID != "instance-1" {
		t.Errorf("InstanceID = %q, want instance-1", cfg.InstanceID)
	}

	onDisk, err := config.ReadFromFile(d.ConfigPath)
	if err != nil {
		t.Fatalf("ReadFromFile() error = %v", err)
	}
	if onDisk.InstanceID != "instance-1" || onDisk.BaseDir != d.BaseDir {
		t.Errorf("written config = %+v", onDisk)
	}

	if _, err := InitConfig(d, gen); err == nil {
		t.Error("second InitConfig() succeeded, want refusal to overwrite")
	}
	onDisk, err = config.ReadFromFile(d.ConfigPath)
	if err != nil {
		t.Fatalf("ReadFromFile() error = %v", err)
	}
	if onDisk.InstanceID != "instance-1" {
		t.Errorf("InstanceID after refused init = %q, want instance-1", onDisk.InstanceID)
	}
}
