package apply

import (
	"context"
	"errors"

	"github.com/JonMunkholm/stockimport/internal/config"
	"github.com/JonMunkholm/stockimport/internal/core"
)

// ErrNoDatabase is returned by Open when no database URL is configured.
var ErrNoDatabase = errors.New("no database URL configured (set DATABASE_URL or --database-url)")

// Open connects to the database for a dialect and returns an applier with
// a function that releases the connection.
func Open(ctx context.Context, dialect core.Dialect, cfg config.DatabaseConfig, opts Options) (Applier, func(), error) {
	if cfg.URL == "" {
		return nil, nil, ErrNoDatabase
	}

	switch dialect.Name() {
	case core.DialectSQLite:
		db, err := OpenSQLite(ctx, cfg.URL)
		if err != nil {
			return nil, nil, err
		}
		return NewSQL(db, opts), func() { db.Close() }, nil
	default:
		pool, err := Connect(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return NewPostgres(pool, opts), pool.Close, nil
	}
}
