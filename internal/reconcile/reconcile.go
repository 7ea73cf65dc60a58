// Package reconcile compares imported items against a running inventory
// service's stock endpoints.
//
// It reads GET {base}/items and GET {base}/inventory/stock, sums stock rows
// per item id and reports, for each requested item code, whether the item
// exists and what stock it carries.
package reconcile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/stockimport/internal/config"
)

// Endpoints queried on the inventory service.
const (
	ItemsPath = "/items"
	StockPath = "/inventory/stock"
)

// Entry statuses.
const (
	StatusOK           = "OK"
	StatusItemNotFound = "ITEM_NOT_FOUND"
	StatusNoStockRows  = "NO_STOCK_ROWS"
)

// DefaultCodes are the item codes checked when none are configured.
var DefaultCodes = []string{
	"RAD-TRR-QX71W915",
	"RAD-TRR-R9MI1W915",
}

// maxErrorBody caps how much of a failed response body is kept.
const maxErrorBody = 1000

// SampleKeys are the stock row fields echoed in a report, in order.
var SampleKeys = []string{
	"warehouse_id",
	"warehouseId",
	"quantity",
	"available_quantity",
	"allocated_quantity",
	"total_quantity",
	"total_qty",
	"updated_at",
	"created_at",
}

// StatusError is returned when an endpoint answers with a non-200 status.
type StatusError struct {
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s returned %d: %s", e.Path, e.Status, e.Body)
}

// FetchError wraps a failure to read one endpoint.
type FetchError struct {
	Path string
	Err  error
}

func (e *FetchError) Error() string { return fmt.Sprintf("fetch %s: %v", e.Path, e.Err) }

func (e *FetchError) Unwrap() error { return e.Err }

// Client reads the inventory service.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a client for the service rooted at baseURL.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// NewClientFromConfig creates a client from reconcile settings.
func NewClientFromConfig(cfg config.ReconcileConfig) *Client {
	return NewClient(cfg.BaseURL, cfg.Token, cfg.Timeout)
}

// Snapshot is the raw state read from the service.
type Snapshot struct {
	Items []map[string]any
	Stock []map[string]any
}

// Fetch reads both endpoints concurrently.
func (c *Client) Fetch(ctx context.Context) (*Snapshot, error) {
	var snap Snapshot
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := c.list(ctx, ItemsPath)
		snap.Items = rows
		return err
	})
	g.Go(func() error {
		rows, err := c.list(ctx, StockPath)
		snap.Stock = rows
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *Client) list(ctx context.Context, path string) ([]map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, &FetchError{Path: path, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{Path: path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Path: path, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, &FetchError{Path: path, Err: &StatusError{Path: path, Status: resp.StatusCode, Body: string(body)}}
	}

	rows, err := Unwrap(body)
	if err != nil {
		return nil, &FetchError{Path: path, Err: err}
	}
	return rows, nil
}

// Unwrap extracts the object list from a response body: either a bare
// array, or an object carrying it under "data" (preferred) or "items".
// Non-object elements are dropped.
func Unwrap(body []byte) ([]map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	var list []any
	switch t := v.(type) {
	case []any:
		list = t
	case map[string]any:
		for _, key := range []string{"data", "items"} {
			if l, ok := t[key].([]any); ok && len(l) > 0 {
				list = l
				break
			}
		}
	}

	rows := make([]map[string]any, 0, len(list))
	for _, e := range list {
		if m, ok := e.(map[string]any); ok {
			rows = append(rows, m)
		}
	}
	return rows, nil
}

// Aggregate sums the stock rows of one item.
type Aggregate struct {
	Rows      int            `json:"rows"`
	Quantity  float64        `json:"quantitySum"`
	Available float64        `json:"availableSum"`
	Allocated float64        `json:"allocatedSum"`
	Total     float64        `json:"totalQuantitySum"`
	Keys      []string       `json:"allKeys"`
	Sample    map[string]any `json:"sample"`
}

// Entry is the reconciliation result for one item code.
type Entry struct {
	Code      string     `json:"code"`
	ItemID    string     `json:"itemId,omitempty"`
	Status    string     `json:"status"`
	Aggregate *Aggregate `json:"aggregate,omitempty"`
}

// Report lists one entry per requested code, in request order.
type Report struct {
	ItemIDs map[string]string `json:"itemIds"`
	Entries []Entry           `json:"entries"`
}

// Build reconciles a snapshot for the given item codes.
func Build(snap *Snapshot, codes []string) *Report {
	codeToID := make(map[string]string, len(snap.Items))
	for _, it := range snap.Items {
		code := idString(it["code"])
		if code == "" {
			continue
		}
		codeToID[code] = idString(it["id"])
	}

	byItem := aggregate(snap.Stock)

	report := &Report{ItemIDs: make(map[string]string, len(codes))}
	for _, code := range codes {
		id := codeToID[code]
		report.ItemIDs[code] = id

		switch agg, ok := byItem[id]; {
		case id == "":
			report.Entries = append(report.Entries, Entry{Code: code, Status: StatusItemNotFound})
		case !ok:
			report.Entries = append(report.Entries, Entry{Code: code, ItemID: id, Status: StatusNoStockRows})
		default:
			report.Entries = append(report.Entries, Entry{Code: code, ItemID: id, Status: StatusOK, Aggregate: agg})
		}
	}
	return report
}

func aggregate(stock []map[string]any) map[string]*Aggregate {
	byItem := make(map[string]*Aggregate)
	keys := make(map[string]map[string]struct{})

	for _, row := range stock {
		id := idString(row["item_id"])
		if id == "" {
			id = idString(row["itemId"])
		}
		if id == "" {
			continue
		}

		agg, ok := byItem[id]
		if !ok {
			agg = &Aggregate{Sample: row}
			byItem[id] = agg
			keys[id] = make(map[string]struct{})
		}
		agg.Rows++
		agg.Quantity += toFloat(row["quantity"])
		agg.Available += toFloat(row["available_quantity"])
		agg.Allocated += toFloat(row["allocated_quantity"])
		agg.Total += toFloat(row["total_quantity"])
		for k := range row {
			keys[id][k] = struct{}{}
		}
	}

	for id, agg := range byItem {
		for k := range keys[id] {
			agg.Keys = append(agg.Keys, k)
		}
		sort.Strings(agg.Keys)
	}
	return byItem
}

// idString renders an id-like JSON value; zero, false and empty values
// count as absent.
func idString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		if f, err := t.Float64(); err == nil && f == 0 {
			return ""
		}
		return t.String()
	case float64:
		if t == 0 {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "true"
		}
		return ""
	default:
		return ""
	}
}

// toFloat reads a numeric JSON value; anything unreadable counts as 0.
func toFloat(v any) float64 {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0
		}
		return f
	case float64:
		return t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		return f
	case bool:
		if t {
			return 1
		}
		return 0
	default:
		return 0
	}
}
