package workbook

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/stockimport/internal/config"
)

func TestLoad_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stock.xlsx")
	if err := os.WriteFile(path, buildWorkbook(t, defaultSheets()...), 0o644); err != nil {
		t.Fatal(err)
	}

	wb, err := Load(context.Background(), path, config.DefaultLayout(), Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if wb.Source != path {
		t.Errorf("Source = %q, want %q", wb.Source, path)
	}
	if len(wb.RawMaterials) != 2 {
		t.Errorf("raw materials = %d, want 2", len(wb.RawMaterials))
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.xlsx"), config.DefaultLayout(), Options{})
	if err == nil || !strings.Contains(err.Error(), "fetch workbook") {
		t.Fatalf("err = %v, want fetch workbook error", err)
	}
}

func TestLoad_HTTP(t *testing.T) {
	data := buildWorkbook(t, defaultSheets()...)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stock.xlsx" {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
	defer srv.Close()

	wb, err := Load(context.Background(), srv.URL+"/stock.xlsx", config.DefaultLayout(), Options{HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(wb.BOM) != 2 {
		t.Errorf("bom rows = %d, want 2", len(wb.BOM))
	}

	_, err = Load(context.Background(), srv.URL+"/missing.xlsx", config.DefaultLayout(), Options{HTTPClient: srv.Client()})
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("err = %v, want 404 error", err)
	}
}

func TestFetch_TooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.xlsx")
	if err := os.WriteFile(path, make([]byte, 2048), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Fetch(context.Background(), path, Options{MaxSize: 1024})
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("err = %v, want ErrTooLarge", err)
	}

	data, err := Fetch(context.Background(), path, Options{MaxSize: 2048})
	if err != nil || len(data) != 2048 {
		t.Fatalf("Fetch at limit = %d bytes, %v", len(data), err)
	}
}

func TestParseS3URL(t *testing.T) {
	tests := []struct {
		in      string
		bucket  string
		key     string
		wantErr bool
	}{
		{"s3://inventory/uploads/stock.xlsx", "inventory", "uploads/stock.xlsx", false},
		{"s3://inventory/stock.xlsx", "inventory", "stock.xlsx", false},
		{"s3://inventory/", "", "", true},
		{"s3:///stock.xlsx", "", "", true},
		{"https://inventory/stock.xlsx", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			bucket, key, err := ParseS3URL(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if bucket != tt.bucket || key != tt.key {
				t.Errorf("got %q/%q, want %q/%q", bucket, key, tt.bucket, tt.key)
			}
		})
	}
}

func TestOptionsFromConfig(t *testing.T) {
	opts := OptionsFromConfig(config.GenerateConfig{MaxSourceSize: 10, S3Region: "eu-west-1"})
	if opts.maxSize() != 10 || opts.S3Region != "eu-west-1" {
		t.Errorf("opts = %+v", opts)
	}
	if (Options{}).maxSize() != DefaultMaxSize {
		t.Error("zero MaxSize should fall back to DefaultMaxSize")
	}
}
