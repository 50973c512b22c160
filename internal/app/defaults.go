package app

import (
	"fmt"
	"os"
	"path/filepath"

	"times-go/internal/config"
	"times-go/internal/times"
)

// Defaults are the paths used when no config says otherwise.
type Defaults struct {
	ConfigPath string
	BaseDir    string
	LogDir     string
}

// GetDefaults resolves the default paths, checking environment variables first:
//   - TIMES_CONFIG_PATH: config file location (default: ~/.config/times.toml)
//   - TIMES_HOME: base directory for data, keys and logs (default: ~/.local/share/times)
func GetDefaults() (Defaults, error) {
	configPath, err := fromEnvOrHome("TIMES_CONFIG_PATH", ".config", "times.toml")
	if err != nil {
		return Defaults{}, err
	}
	baseDir, err := fromEnvOrHome("TIMES_HOME", ".local", "share", "times")
	if err != nil {
		return Defaults{}, err
	}

	return Defaults{
		ConfigPath: configPath,
		BaseDir:    baseDir,
		LogDir:     filepath.Join(baseDir, "log"),
	}, nil
}

func fromEnvOrHome(env string, rel ...string) (string, error) {
	if path := os.Getenv(env); path != "" {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(append([]string{home}, rel...)...), nil
}

// InitConfig writes a fresh config to d.ConfigPath with an instance id
// drawn from gen. An existing config is never overwritten.
func InitConfig(d Defaults, gen times.IDGenerator) (*config.Config, error) {
	cfg := config.NewConfig(gen.New(), d.BaseDir)
	if err := config.Init(d.ConfigPath, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
