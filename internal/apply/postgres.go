package apply

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/stockimport/internal/config"
	"github.com/JonMunkholm/stockimport/internal/core"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// Connect opens and pings a PostgreSQL pool.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	if cfg.ConnectTimeout > 0 {
		poolConfig.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// Postgres applies batches through a pgx pool.
type Postgres struct {
	pool *pgxpool.Pool
	opts Options
}

// NewPostgres creates a PostgreSQL applier.
func NewPostgres(pool *pgxpool.Pool, opts Options) *Postgres {
	return &Postgres{pool: pool, opts: opts}
}

// Apply runs the batch in a single transaction.
func (p *Postgres) Apply(ctx context.Context, b core.Batch) (*Report, error) {
	start := time.Now()
	report := newReport(b, p.opts)

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	for i, stmt := range b.Statements {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("operation cancelled at statement %d: %w", i+1, err)
		}
		tag, err := tx.Exec(ctx, stmt.SQL, pgArgs(stmt.Args)...)
		if err != nil {
			return nil, &StatementError{Index: i, Entity: stmt.Entity, Comment: stmt.Comment, Err: err}
		}
		report.Affected[stmt.Entity] += tag.RowsAffected()
	}

	if err := verifyPgx(ctx, tx, b, report); err != nil {
		return nil, err
	}

	if p.opts.DryRun {
		if err := tx.Rollback(ctx); err != nil {
			return nil, fmt.Errorf("failed to roll back dry run: %w", err)
		}
	} else if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	report.Duration = time.Since(start)
	return report, nil
}

func verifyPgx(ctx context.Context, db DBTX, b core.Batch, report *Report) error {
	if q, ok := queryNamed(b, core.QueryEntityCounts); ok {
		rows, err := db.Query(ctx, q)
		if err != nil {
			return fmt.Errorf("verify %s: %w", core.QueryEntityCounts, err)
		}
		counts, err := pgx.CollectRows(rows, pgx.RowToStructByPos[EntityCount])
		if err != nil {
			return fmt.Errorf("verify %s: %w", core.QueryEntityCounts, err)
		}
		report.Counts = counts
	}

	if q, ok := queryNamed(b, core.QueryMultiVendor); ok {
		rows, err := db.Query(ctx, q)
		if err != nil {
			return fmt.Errorf("verify %s: %w", core.QueryMultiVendor, err)
		}
		items, err := pgx.CollectRows(rows, pgx.RowToStructByPos[MultiVendorItem])
		if err != nil {
			return fmt.Errorf("verify %s: %w", core.QueryMultiVendor, err)
		}
		report.MultiVendor = items
	}
	return nil
}

// pgArgs converts decimal arguments into pgtype.Numeric.
func pgArgs(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case decimal.Decimal:
			var n pgtype.Numeric
			if err := n.Scan(v.String()); err != nil {
				out[i] = v.String()
				continue
			}
			out[i] = n
		default:
			out[i] = a
		}
	}
	return out
}
