package web

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/JonMunkholm/stockimport/internal/core"
	"github.com/JonMunkholm/stockimport/internal/logging"
	"github.com/JonMunkholm/stockimport/internal/schema"
	"github.com/JonMunkholm/stockimport/internal/script"
	"github.com/JonMunkholm/stockimport/internal/workbook"
)

var errNoFile = errors.New("no file provided")

// multipartMemory is how much of an upload is buffered in memory before
// spilling to disk.
const multipartMemory = 32 << 20

// PlanResponse is the JSON body of POST /api/plan.
type PlanResponse struct {
	RunID    string            `json:"runId"`
	Source   string            `json:"source"`
	Dialect  string            `json:"dialect"`
	Summary  core.Summary      `json:"summary"`
	Warnings []core.Diagnostic `json:"warnings"`
	Plan     *core.Plan        `json:"plan,omitempty"`
}

// handleHealth reports liveness and generation slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"generations": s.limiter.Status(),
	})
}

// handleLayout returns the resolved sheet and column layout.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"sheets": schema.Describe(s.layout),
	})
}

// handlePlan builds a plan from an uploaded workbook and returns its
// summary and warnings. ?full=true includes the whole plan.
func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	res, ok := s.generate(w, r)
	if !ok {
		return
	}

	resp := PlanResponse{
		RunID:    res.Batch.RunID.String(),
		Source:   res.Plan.Source,
		Dialect:  res.Batch.Dialect,
		Summary:  res.Plan.Summary(),
		Warnings: res.Plan.Diagnostics,
	}
	if resp.Warnings == nil {
		resp.Warnings = []core.Diagnostic{}
	}
	if r.URL.Query().Get("full") == "true" {
		resp.Plan = res.Plan
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleGenerate turns an uploaded workbook into a downloadable SQL script.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	res, ok := s.generate(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := script.Render(&buf, res.Batch); err != nil {
		respondError(w, r, fmt.Errorf("write script: %w", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/sql; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.scriptName()))
	w.Header().Set("X-Run-ID", res.Batch.RunID.String())
	w.Header().Set("X-Warnings", fmt.Sprint(len(res.Batch.Warnings)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logging.FromContext(r.Context()).Warn("script write failed", "error", err)
	}
}

// generate runs one upload through the engine under a limiter slot. It
// writes the error response itself and reports false on failure.
func (s *Server) generate(w http.ResponseWriter, r *http.Request) (*core.Result, bool) {
	ctx := r.Context()

	if err := s.limiter.Acquire(ctx); err != nil {
		respondError(w, r, err, http.StatusServiceUnavailable)
		return nil, false
	}
	defer s.limiter.Release()

	svc, err := s.serviceFor(r.URL.Query().Get("dialect"))
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return nil, false
	}

	wb, status, err := s.readUpload(w, r)
	if err != nil {
		respondError(w, r, err, status)
		return nil, false
	}
	if s.metrics != nil {
		s.metrics.ObserveWorkbook(wb)
	}

	start := time.Now()
	res, err := svc.Generate(wb)
	if s.metrics != nil {
		s.metrics.ObserveGeneration(res, time.Since(start), err)
	}
	if err != nil {
		respondError(w, r, err, http.StatusUnprocessableEntity)
		return nil, false
	}

	summary := res.Plan.Summary()
	logging.WithFields(logging.WithRunID(ctx, res.Batch.RunID),
		"source", wb.Source,
		"dialect", res.Batch.Dialect,
	).Info("batch generated",
		"vendors", summary.Vendors,
		"items", summary.RawMaterials+summary.SubAssemblies,
		"links", summary.Links,
		"boms", summary.BOMs,
		"stock_entries", summary.StockEntries,
		"statements", len(res.Batch.Statements),
		"warnings", summary.Warnings,
	)
	return res, true
}

// serviceFor returns the configured service, or one for the requested
// dialect.
func (s *Server) serviceFor(dialect string) (*core.Service, error) {
	if dialect == "" || strings.EqualFold(dialect, s.service.Dialect().Name()) {
		return s.service, nil
	}
	return core.NewService(dialect)
}

// readUpload parses the multipart "file" field into a workbook. The
// returned status is the HTTP status to use on error.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (core.Workbook, int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadSize)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return core.Workbook{}, http.StatusRequestEntityTooLarge,
				fmt.Errorf("%w: limit is %d bytes", workbook.ErrTooLarge, tooLarge.Limit)
		}
		return core.Workbook{}, http.StatusBadRequest, errNoFile
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		return core.Workbook{}, http.StatusBadRequest, errNoFile
	}
	defer file.Close()

	wb, err := workbook.Read(file, s.layout)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, workbook.ErrSheetNotFound) || errors.Is(err, workbook.ErrMissingColumns) {
			status = http.StatusUnprocessableEntity
		}
		return core.Workbook{}, status, fmt.Errorf("%s: %w", filepath.Base(header.Filename), err)
	}
	wb.Source = filepath.Base(header.Filename)
	return wb, http.StatusOK, nil
}

func (s *Server) scriptName() string {
	if name := filepath.Base(s.cfg.Generate.OutputPath); name != "." && name != "/" {
		return name
	}
	return "import.sql"
}
