package main

import (
	"context"
	"fmt"

	"github.com/a3tai/mcp-bloodwork/internal/config"
	"github.com/a3tai/mcp-bloodwork/internal/storage"
	"github.com/a3tai/mcp-bloodwork/internal/storage/postgres"
)

const (
	backendMemory   = "memory"
	backendPostgres = "postgres"
)

// resultStore bundles the adapter with the backend behind it.
type resultStore struct {
	adapter  *storage.Adapter
	backend  string
	postgres *postgres.Store
}

// openStore connects the configured backend. Without a database URL
// results live in memory for the lifetime of the process.
func openStore(ctx context.Context, cfg *config.Config) (*resultStore, error) {
	if !cfg.HasDatabase() {
		appLogger.Warn("no database configured, results are kept in memory only")
		return &resultStore{
			adapter: storage.NewAdapter(storage.NewMemory(), cfg.Measurement),
			backend: backendMemory,
		}, nil
	}

	pg, err := postgres.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pg.EnsureSchema(ctx, cfg.Measurement); err != nil {
		pg.Close()
		return nil, err
	}

	return &resultStore{
		adapter:  storage.NewAdapter(pg, cfg.Measurement),
		backend:  backendPostgres,
		postgres: pg,
	}, nil
}

func (s *resultStore) Close() {
	s.adapter.Close()
}
