package main

import (
	"context"
	"fmt"
	"io"

	"github.com/tbourn/go-hymnal-backend/internal/config"
	"github.com/tbourn/go-hymnal-backend/internal/hymnal"
	"github.com/tbourn/go-hymnal-backend/internal/repo"
	"github.com/tbourn/go-hymnal-backend/internal/repo/badgerstore"
	"github.com/tbourn/go-hymnal-backend/internal/services"
)

// store is a catalog backend the process owns and must close.
type store interface {
	services.Store
	services.SelectionStore
	io.Closer
}

type sqliteStore struct {
	*repo.Store
}

func (s sqliteStore) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// openStore opens the configured backend, migrating the SQLite schema when
// needed.
func openStore(cfg config.StoreConfig) (store, error) {
	switch cfg.Backend {
	case config.BackendBadger:
		st, err := badgerstore.Open(cfg.BadgerPath)
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.BackendSQLite:
		db, err := repo.OpenSQLite(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %q: %w", cfg.DBPath, err)
		}
		if err := repo.Instrument(db); err != nil {
			return nil, fmt.Errorf("instrument sqlite: %w", err)
		}
		if err := repo.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		return sqliteStore{repo.NewStore(db)}, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// seed stores the document at path under its own root id and returns that id.
func seed(ctx context.Context, cat *services.Catalog, path string, limit int64) (string, error) {
	raw, err := hymnal.ReadSourceFile(path, limit)
	if err != nil {
		return "", fmt.Errorf("seed: %w", err)
	}
	doc, err := hymnal.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("seed %s: %w", path, err)
	}
	if _, err := cat.PutDocument(ctx, doc.ID, raw); err != nil {
		return "", fmt.Errorf("seed %s: %w", path, err)
	}
	return doc.ID, nil
}
