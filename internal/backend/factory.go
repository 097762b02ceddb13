package backend

import (
	"context"
	"fmt"
	"log/slog"

	applog "monotributo/internal/log"
	"monotributo/internal/storage"
)

// DefaultFactory opens the stores of the storage package.
type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger.With(applog.FieldComponent, applog.ComponentStorage)}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Type == SQLiteBackend {
		return f.openSQLite(ctx, config.SQLiteDBPath)
	}
	return f.openMemory(config.SeedFile)
}

// openSQLite runs pending migrations as part of opening the store.
func (f *DefaultFactory) openSQLite(ctx context.Context, path string) (*BackendResult, error) {
	store, err := storage.NewSQLiteStore(path)
	if err != nil {
		return nil, fmt.Errorf("open SQLite store: %w", err)
	}
	if err := store.Ping(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("ping SQLite store: %w", err)
	}
	f.logger.Info("Initialized SQLite backend", "db_path", path, "schema_version", store.SchemaVersion())
	return &BackendResult{Backend: store, Cleanup: store.Close}, nil
}

func (f *DefaultFactory) openMemory(seedFile string) (*BackendResult, error) {
	store, err := storage.NewMemoryStoreFromFile(seedFile)
	if err != nil {
		return nil, fmt.Errorf("open memory store: %w", err)
	}
	keys, err := store.Keys(context.Background(), "")
	if err != nil {
		return nil, fmt.Errorf("count seeded keys: %w", err)
	}
	f.logger.Info("Initialized memory backend", "seed_file", seedFile, "keys", len(keys))
	return &BackendResult{Backend: store}, nil
}
