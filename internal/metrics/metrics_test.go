package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/JonMunkholm/stockimport/internal/apply"
	"github.com/JonMunkholm/stockimport/internal/core"
)

func sampleResult(t *testing.T) *core.Result {
	t.Helper()
	wb := core.Workbook{
		RawMaterials: []core.Row{
			{Cells: map[string]string{core.FieldName: "Steel Rod 10mm", core.FieldSupplier: "Robu / Vyom", core.FieldStock: "12"}},
			{Line: 4, Cells: map[string]string{core.FieldSupplier: "Robu"}},
		},
	}
	svc, err := core.NewService(core.DialectPostgres)
	if err != nil {
		t.Fatal(err)
	}
	res, err := svc.Generate(wb)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return res
}

func TestObserveGeneration(t *testing.T) {
	r := New()
	res := sampleResult(t)

	r.ObserveGeneration(res, 20*time.Millisecond, nil)

	if got := testutil.ToFloat64(r.Generations.WithLabelValues(StatusOK)); got != 1 {
		t.Errorf("ok generations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.Statements.WithLabelValues(string(core.EntityVendor))); got != 2 {
		t.Errorf("vendor statements = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.Statements.WithLabelValues(string(core.EntityItemVendor))); got != 2 {
		t.Errorf("link statements = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.Diagnostics.WithLabelValues(string(core.DiagSkippedRow))); got != 1 {
		t.Errorf("skipped row diagnostics = %v, want 1", got)
	}
	if testutil.ToFloat64(r.LastGeneration) == 0 {
		t.Error("last generation timestamp not set")
	}
}

func TestObserveGeneration_Failures(t *testing.T) {
	r := New()

	r.ObserveGeneration(&core.Result{Plan: &core.Plan{}}, time.Millisecond, core.ErrEmptyWorkbook)
	r.ObserveGeneration(nil, time.Millisecond, errors.New("sheet not found"))

	if got := testutil.ToFloat64(r.Generations.WithLabelValues(StatusEmpty)); got != 1 {
		t.Errorf("empty generations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.Generations.WithLabelValues(StatusError)); got != 1 {
		t.Errorf("error generations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.LastGeneration); got != 0 {
		t.Errorf("last generation = %v, want 0 after failures", got)
	}
}

func TestObserveWorkbook(t *testing.T) {
	r := New()
	r.ObserveWorkbook(core.Workbook{
		RawMaterials: make([]core.Row, 3),
		BOM:          make([]core.Row, 5),
	})

	if got := testutil.ToFloat64(r.RowsRead.WithLabelValues(core.SheetRawMaterials)); got != 3 {
		t.Errorf("raw material rows = %v, want 3", got)
	}
	if got := testutil.ToFloat64(r.RowsRead.WithLabelValues(core.SheetBOM)); got != 5 {
		t.Errorf("bom rows = %v, want 5", got)
	}
}

func TestObserveApply(t *testing.T) {
	r := New()
	report := &apply.Report{
		Affected: map[core.Entity]int64{core.EntityVendor: 2, core.EntityItem: 1},
		Duration: 50 * time.Millisecond,
	}

	r.ObserveApply(report, false, nil)
	r.ObserveApply(report, true, nil)
	r.ObserveApply(nil, false, errors.New("connection refused"))

	if got := testutil.ToFloat64(r.Applies.WithLabelValues(StatusOK, "commit")); got != 1 {
		t.Errorf("committed applies = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.Applies.WithLabelValues(StatusOK, "dry_run")); got != 1 {
		t.Errorf("dry runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.Applies.WithLabelValues(StatusError, "commit")); got != 1 {
		t.Errorf("failed applies = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.RowsInserted.WithLabelValues(string(core.EntityVendor))); got != 2 {
		t.Errorf("vendor rows = %v, want 2 (dry runs not counted)", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.ObserveGeneration(sampleResult(t), time.Millisecond, nil)

	path := filepath.Join(t.TempDir(), "stockimport.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `stockimport_generations_total{status="ok"} 1`) {
		t.Errorf("textfile missing generation counter:\n%s", data)
	}
}

func TestPush(t *testing.T) {
	var gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		gotPath = req.URL.Path
		body, _ := io.ReadAll(req.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := New()
	r.Generations.WithLabelValues(StatusOK).Inc()

	if err := r.Push(context.Background(), srv.URL, ""); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if gotPath != "/metrics/job/stockimport" {
		t.Errorf("push path = %q", gotPath)
	}
	if !strings.Contains(gotBody, "stockimport_generations_total") {
		t.Error("push body missing generation counter")
	}

	if err := r.Push(context.Background(), "", "job"); err == nil {
		t.Error("expected error for empty gateway URL")
	}
}

func TestHandler(t *testing.T) {
	r := New()
	r.HTTPRequests.WithLabelValues("/api/generate", "200").Inc()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `stockimport_http_requests_total{code="200",route="/api/generate"} 1`) {
		t.Errorf("metrics output missing request counter:\n%s", rec.Body.String())
	}
}
