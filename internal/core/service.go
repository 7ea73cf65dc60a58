package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrEmptyWorkbook is returned when a workbook yields nothing to import.
var ErrEmptyWorkbook = errors.New("workbook contains no vendors, items or BOMs")

// Service builds plans and batches. The zero value is not usable; call
// NewService.
type Service struct {
	dialect Dialect
	now     func() time.Time
	newID   func() uuid.UUID
}

// Result pairs a plan with the batch rendered from it.
type Result struct {
	Plan  *Plan
	Batch Batch
}

// NewService creates a Service that emits statements for the named dialect.
func NewService(dialect string) (*Service, error) {
	d, err := DialectByName(dialect)
	if err != nil {
		return nil, err
	}
	return &Service{
		dialect: d,
		now:     time.Now,
		newID:   uuid.New,
	}, nil
}

// Dialect returns the dialect the service emits.
func (s *Service) Dialect() Dialect {
	return s.dialect
}

// Generate builds a plan from the workbook and renders it into a batch
// stamped with a fresh run ID.
func (s *Service) Generate(wb Workbook) (*Result, error) {
	plan := Build(wb)
	if plan.Empty() {
		return &Result{Plan: plan}, fmt.Errorf("generate %s: %w", describeSource(wb.Source), ErrEmptyWorkbook)
	}

	batch := Emit(plan, s.dialect)
	batch.RunID = s.newID()
	batch.GeneratedAt = s.now().UTC()

	return &Result{Plan: plan, Batch: batch}, nil
}

func describeSource(source string) string {
	if source == "" {
		return "workbook"
	}
	return source
}
