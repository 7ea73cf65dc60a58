package apply

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/JonMunkholm/stockimport/internal/core"
)

// OpenSQLite opens a SQLite database. The DSN may carry a sqlite:// prefix.
func OpenSQLite(ctx context.Context, dsn string) (*sql.DB, error) {
	dsn = strings.TrimPrefix(dsn, "sqlite://")
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps :memory: databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

// SQL applies batches through database/sql.
type SQL struct {
	db   *sql.DB
	opts Options
}

// NewSQL creates a database/sql applier. Batches must be emitted for a
// dialect the driver understands.
func NewSQL(db *sql.DB, opts Options) *SQL {
	return &SQL{db: db, opts: opts}
}

// Apply runs the batch in a single transaction.
func (s *SQL) Apply(ctx context.Context, b core.Batch) (*Report, error) {
	start := time.Now()
	report := newReport(b, s.opts)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // No-op if already committed

	for i, stmt := range b.Statements {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("operation cancelled at statement %d: %w", i+1, err)
		}
		res, err := tx.ExecContext(ctx, stmt.SQL, stmt.Args...)
		if err != nil {
			return nil, &StatementError{Index: i, Entity: stmt.Entity, Comment: stmt.Comment, Err: err}
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("rows affected at statement %d: %w", i+1, err)
		}
		report.Affected[stmt.Entity] += n
	}

	if err := verifySQL(ctx, tx, b, report); err != nil {
		return nil, err
	}

	if s.opts.DryRun {
		if err := tx.Rollback(); err != nil {
			return nil, fmt.Errorf("failed to roll back dry run: %w", err)
		}
	} else if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	report.Duration = time.Since(start)
	return report, nil
}

func verifySQL(ctx context.Context, tx *sql.Tx, b core.Batch, report *Report) error {
	if q, ok := queryNamed(b, core.QueryEntityCounts); ok {
		rows, err := tx.QueryContext(ctx, q)
		if err != nil {
			return fmt.Errorf("verify %s: %w", core.QueryEntityCounts, err)
		}
		defer rows.Close()
		for rows.Next() {
			var c EntityCount
			if err := rows.Scan(&c.Entity, &c.Count); err != nil {
				return fmt.Errorf("verify %s: %w", core.QueryEntityCounts, err)
			}
			report.Counts = append(report.Counts, c)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("verify %s: %w", core.QueryEntityCounts, err)
		}
	}

	if q, ok := queryNamed(b, core.QueryMultiVendor); ok {
		rows, err := tx.QueryContext(ctx, q)
		if err != nil {
			return fmt.Errorf("verify %s: %w", core.QueryMultiVendor, err)
		}
		defer rows.Close()
		for rows.Next() {
			var m MultiVendorItem
			var vendors sql.NullString
			if err := rows.Scan(&m.Code, &m.Name, &m.VendorCount, &vendors); err != nil {
				return fmt.Errorf("verify %s: %w", core.QueryMultiVendor, err)
			}
			m.Vendors = vendors.String
			report.MultiVendor = append(report.MultiVendor, m)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("verify %s: %w", core.QueryMultiVendor, err)
		}
	}
	return nil
}
