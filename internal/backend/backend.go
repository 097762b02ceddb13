// Package backend opens the persistence layer selected by DATA_BACKEND.
package backend

import (
	"context"
	"errors"
	"fmt"

	"monotributo/internal/config"
	"monotributo/internal/storage"
)

// Backend is the key-value store plus the import audit trail. Both
// storage.MemoryStore and storage.SQLiteStore satisfy it.
type Backend interface {
	storage.Store
	storage.ImportLog
}

type (
	BackendType string

	// Config selects and parameterizes one backend.
	Config struct {
		Type         BackendType
		SQLiteDBPath string
		// SeedFile optionally preloads the memory backend.
		SeedFile string
	}

	CleanupFunc func() error

	// BackendResult is an opened backend. Cleanup is nil when there is
	// nothing to release.
	BackendResult struct {
		Backend Backend
		Cleanup CleanupFunc
	}

	Factory interface {
		CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
	}
)

const (
	MemoryBackend BackendType = "memory"
	SQLiteBackend BackendType = "sqlite"
)

func (bt BackendType) IsValid() bool {
	return bt == MemoryBackend || bt == SQLiteBackend
}

func (c Config) Validate() error {
	switch {
	case !c.Type.IsValid():
		return fmt.Errorf("invalid backend type: %q", c.Type)
	case c.Type == SQLiteBackend && c.SQLiteDBPath == "":
		return errors.New("SQLite database path is required for sqlite backend")
	}
	return nil
}

// FromAppConfig picks the backend settings out of the application config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}
	c := Config{
		Type:         BackendType(appConfig.DataBackend),
		SQLiteDBPath: appConfig.SQLiteDBPath,
		SeedFile:     appConfig.MemorySeedFile,
	}
	if !c.Type.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %q", appConfig.DataBackend)
	}
	return c, nil
}
