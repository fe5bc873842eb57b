package main

import (
	"context"
	"fmt"

	"lorelink/internal/config"
	"lorelink/internal/store"
	"lorelink/internal/store/postgres"
	"lorelink/internal/store/sqlite"
)

func openStore(ctx context.Context, cfg *config.ProjectConfig) (store.Store, error) {
	switch cfg.Storage.Backend {
	case "postgres":
		return postgres.New(ctx, cfg.Storage.DSN)
	case "sqlite":
		return sqlite.New(ctx, cfg.Storage.DSN)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Storage.Backend)
	}
}
