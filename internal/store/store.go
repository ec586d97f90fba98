// Package store persists the canonical table. Every backend loads and saves
// the table wholesale; there is no partial or row-level I/O.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/discrepancy-api/internal/config"
	"github.com/sells-group/discrepancy-api/internal/model"
)

// Store defines the record store adapter. SaveTable overwrites the whole
// table; concurrent writers race with last-writer-wins semantics.
type Store interface {
	LoadTable(ctx context.Context) (*model.Table, error)
	SaveTable(ctx context.Context, t *model.Table) error
	Close() error
}

// New creates a Store based on config.
func New(cfg config.StoreConfig) (Store, error) {
	if cfg.Path == "" {
		return nil, eris.New("store: path is required")
	}
	switch cfg.Driver {
	case "csv", "":
		return NewCSV(cfg.Path), nil
	case "sqlite":
		return NewSQLite(cfg.Path)
	case "xlsx":
		return NewXLSX(cfg.Path), nil
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
