package kv

import (
	"fmt"

	"times-go/internal/config"
)

// NewEngineFromConfig opens the engine selected by the store config.
func NewEngineFromConfig(cfg config.StoreConfig) (Engine, error) {
	switch cfg.Engine {
	case "sqlite", "":
		if cfg.Path == "" {
			return nil, fmt.Errorf("sqlite engine requires path to be set")
		}
		return NewSQLiteEngine(cfg.Path)
	case "leveldb":
		if cfg.Path == "" {
			return nil, fmt.Errorf("leveldb engine requires path to be set")
		}
		return NewLevelDBEngine(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown kv engine: %s", cfg.Engine)
	}
}
