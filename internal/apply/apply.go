// Package apply executes a batch against a live database.
//
// Every applier runs the whole batch in one transaction: any failing
// statement rolls back everything before it. Verification queries run inside
// the same transaction so a dry run reports what a real run would leave
// behind.
package apply

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/stockimport/internal/core"
)

// Applier executes a batch.
type Applier interface {
	Apply(ctx context.Context, b core.Batch) (*Report, error)
}

// Options controls a run.
type Options struct {
	// DryRun executes the batch and its verification queries, then rolls
	// the transaction back instead of committing.
	DryRun bool
}

// Report describes the outcome of an applied batch.
type Report struct {
	RunID       uuid.UUID             `json:"runId"`
	DryRun      bool                  `json:"dryRun"`
	Statements  int                   `json:"statements"`
	Affected    map[core.Entity]int64 `json:"affected"`
	Counts      []EntityCount         `json:"counts"`
	MultiVendor []MultiVendorItem     `json:"multiVendor"`
	Duration    time.Duration         `json:"duration"`
}

// EntityCount is one row of the entity_counts verification query.
type EntityCount struct {
	Entity string `json:"entity"`
	Count  int64  `json:"count"`
}

// MultiVendorItem is one row of the multi_vendor_items verification query.
type MultiVendorItem struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	VendorCount int64  `json:"vendorCount"`
	Vendors     string `json:"vendors"`
}

// Inserted returns the total number of rows written.
func (r *Report) Inserted() int64 {
	var n int64
	for _, v := range r.Affected {
		n += v
	}
	return n
}

// Count returns the verification count for an entity label, or -1.
func (r *Report) Count(label string) int64 {
	for _, c := range r.Counts {
		if c.Entity == label {
			return c.Count
		}
	}
	return -1
}

// StatementError reports the statement that aborted a batch.
type StatementError struct {
	Index   int
	Entity  core.Entity
	Comment string
	Err     error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("statement %d (%s: %s): %v", e.Index+1, e.Entity, e.Comment, e.Err)
}

func (e *StatementError) Unwrap() error { return e.Err }

func newReport(b core.Batch, opts Options) *Report {
	return &Report{
		RunID:      b.RunID,
		DryRun:     opts.DryRun,
		Statements: len(b.Statements),
		Affected:   make(map[core.Entity]int64, len(core.Entities)),
	}
}

func queryNamed(b core.Batch, name string) (string, bool) {
	for _, q := range b.Verification {
		if q.Name == name {
			return q.SQL, true
		}
	}
	return "", false
}
