package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Logical field keys shared by the workbook reader and the engine.
const (
	FieldName     = "name"
	FieldUoM      = "uom"
	FieldCost     = "cost"
	FieldSupplier = "supplier"
	FieldStock    = "stock"
	FieldPartNo   = "part_no"
	FieldAssembly = "assembly"
	FieldChild    = "child"
	FieldQuantity = "quantity"
)

// FieldType represents the expected data type for a sheet column.
type FieldType int

const (
	FieldText FieldType = iota
	FieldNumeric
)

// FieldSpec describes one column the reader extracts from a sheet.
type FieldSpec struct {
	Key      string    // Logical key stored in Row.Cells
	Header   string    // Column header as it appears in the sheet
	Type     FieldType // Expected data type
	Required bool      // Column must exist in the header row
}

// HeaderIndex maps column names (lowercase) to their position in a row.
type HeaderIndex map[string]int

// Row is a single data row of a sheet.
type Row struct {
	Index int               // 0-based position among the sheet's data rows
	Line  int               // 1-based worksheet line, for diagnostics
	Cells map[string]string // Raw cell text keyed by logical field key
}

// Get returns the raw text of a field, or "" if the cell was absent.
func (r Row) Get(key string) string {
	return r.Cells[key]
}

// Workbook is the tabular input consumed by [Build].
type Workbook struct {
	Source        string
	RawMaterials  []Row
	SubAssemblies []Row
	BOM           []Row
}

// Category is the item classification stored in items.type.
type Category string

const (
	CategoryRawMaterial  Category = "RAW_MATERIAL"
	CategorySubAssembly  Category = "SUB_ASSEMBLY"
	CategoryFinishedGood Category = "FINISHED_GOOD"
)

// BOMStatus is the lifecycle state of a BOM header.
type BOMStatus string

const (
	BOMDraft    BOMStatus = "DRAFT"
	BOMActive   BOMStatus = "ACTIVE"
	BOMObsolete BOMStatus = "OBSOLETE"
)

// Defaults applied while building a plan.
const (
	DefaultUoM        = "PCS"
	DefaultBOMVersion = "1.0"
	BOMNumberPrefix   = "BOM-"

	StockTransactionIn   = "IN"
	StockReferenceType   = "OPENING_STOCK"
	StockReferenceNumber = "INITIAL-IMPORT"
)

// Vendor is a supplier derived from the workbook's supplier fields.
type Vendor struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Item is a raw material or sub-assembly.
type Item struct {
	Code          string              `json:"code"`
	Name          string              `json:"name"`
	Category      Category            `json:"category"`
	UnitOfMeasure string              `json:"uom"`
	UnitCost      decimal.NullDecimal `json:"unitCost"`
	OpeningStock  float64             `json:"openingStock"`
	SourceRow     int                 `json:"sourceRow"`
	Suppliers     string              `json:"-"` // raw supplier field, raw materials only
}

// ItemVendorLink ranks a vendor for an item. Priority 1 is preferred.
type ItemVendorLink struct {
	ItemCode   string              `json:"itemCode"`
	VendorCode string              `json:"vendorCode"`
	Priority   int                 `json:"priority"`
	UnitPrice  decimal.NullDecimal `json:"unitPrice"`
}

// BOMHeader identifies a bill of materials for one assembly.
type BOMHeader struct {
	BOMNumber      string    `json:"bomNumber"`
	ParentItemCode string    `json:"parentItemCode"`
	ParentName     string    `json:"parentName"`
	Version        string    `json:"version"`
	Status         BOMStatus `json:"status"`
	IsMultiLevel   bool      `json:"isMultiLevel"`
}

// BOMLine is one component of a BOM.
type BOMLine struct {
	BOMNumber     string  `json:"bomNumber"`
	ChildItemCode string  `json:"childItemCode"`
	ChildName     string  `json:"childName"`
	Quantity      float64 `json:"quantity"`
	UnitOfMeasure string  `json:"uom"`
}

// BOM is a header with its lines in source order.
type BOM struct {
	Header BOMHeader `json:"header"`
	Lines  []BOMLine `json:"lines"`
}

// StockEntry is an opening-balance inventory movement.
type StockEntry struct {
	ItemCode        string  `json:"itemCode"`
	Quantity        float64 `json:"quantity"`
	TransactionType string  `json:"transactionType"`
	ReferenceType   string  `json:"referenceType"`
	ReferenceNumber string  `json:"referenceNumber"`
	Notes           string  `json:"notes"`
}

// Entity names the table a statement writes to.
type Entity string

const (
	EntityVendor     Entity = "vendors"
	EntityItem       Entity = "items"
	EntityItemVendor Entity = "item_vendors"
	EntityBOMHeader  Entity = "bom_headers"
	EntityBOMItem    Entity = "bom_items"
	EntityStock      Entity = "stock_entries"
)

// Entities lists every entity in emission order.
var Entities = []Entity{
	EntityVendor, EntityItem, EntityItemVendor, EntityBOMHeader, EntityBOMItem, EntityStock,
}

// Statement is a single parameterized insert.
type Statement struct {
	Entity  Entity
	Comment string
	SQL     string
	Args    []any
}

// Query names a read-only verification query.
type Query struct {
	Name string
	SQL  string
}

// Verification query names.
const (
	QueryEntityCounts = "entity_counts"
	QueryMultiVendor  = "multi_vendor_items"
)

// Batch is the ordered set of statements for one run. The statements are
// meant to execute inside a single transaction.
type Batch struct {
	RunID        uuid.UUID
	GeneratedAt  time.Time
	Source       string
	Dialect      string
	Statements   []Statement
	Verification []Query
	Warnings     []Diagnostic
}

// Count returns the number of statements that write to the given entity.
func (b Batch) Count(e Entity) int {
	n := 0
	for _, s := range b.Statements {
		if s.Entity == e {
			n++
		}
	}
	return n
}
