package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MultiVendorLimit caps the rows returned by the multi-vendor verification
// query.
const MultiVendorLimit = 20

// Statement templates use $n placeholders and explicit casts so the same
// text runs on PostgreSQL and SQLite. Each insert is guarded by NOT EXISTS on
// the row's natural key. Enumerated columns are written as literals (%s) so
// they coerce into enum-typed columns.
const (
	insertVendorSQL = `INSERT INTO vendors (code, name, legal_name, is_active, created_at, updated_at)
SELECT CAST($1 AS TEXT), CAST($2 AS TEXT), CAST($2 AS TEXT), TRUE, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP
WHERE NOT EXISTS (SELECT 1 FROM vendors WHERE code = CAST($1 AS TEXT))`

	insertItemSQL = `INSERT INTO items (code, name, type, uom, unit_price, is_active, created_at, updated_at)
SELECT CAST($1 AS TEXT), CAST($2 AS TEXT), %s, CAST($3 AS TEXT), CAST($4 AS NUMERIC), TRUE, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP
WHERE NOT EXISTS (SELECT 1 FROM items WHERE code = CAST($1 AS TEXT))`

	insertItemVendorSQL = `INSERT INTO item_vendors (item_id, vendor_id, priority, unit_price, is_active, created_at, updated_at)
SELECT i.id, v.id, CAST($3 AS INTEGER), CAST($4 AS NUMERIC), TRUE, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP
FROM items i
CROSS JOIN vendors v
WHERE i.code = CAST($1 AS TEXT)
  AND v.code = CAST($2 AS TEXT)
  AND NOT EXISTS (
      SELECT 1 FROM item_vendors iv WHERE iv.item_id = i.id AND iv.vendor_id = v.id
  )
LIMIT 1`

	insertBOMHeaderSQL = `INSERT INTO bom_headers (bom_number, item_id, version, status, is_multi_level, created_at, updated_at)
SELECT CAST($1 AS TEXT), i.id, CAST($3 AS TEXT), %s, CAST($4 AS BOOLEAN), CURRENT_TIMESTAMP, CURRENT_TIMESTAMP
FROM items i
WHERE i.code = CAST($2 AS TEXT)
  AND i.type IN ('SUB_ASSEMBLY', 'FINISHED_GOOD')
  AND NOT EXISTS (SELECT 1 FROM bom_headers WHERE bom_number = CAST($1 AS TEXT))
LIMIT 1`

	insertBOMItemSQL = `INSERT INTO bom_items (bom_id, item_id, quantity, uom, created_at, updated_at)
SELECT bh.id, i.id, CAST($3 AS NUMERIC), CAST($4 AS TEXT), CURRENT_TIMESTAMP, CURRENT_TIMESTAMP
FROM bom_headers bh
CROSS JOIN items i
WHERE bh.bom_number = CAST($1 AS TEXT)
  AND i.code = CAST($2 AS TEXT)
  AND NOT EXISTS (
      SELECT 1 FROM bom_items bi WHERE bi.bom_id = bh.id AND bi.item_id = i.id
  )
LIMIT 1`

	insertStockSQL = `INSERT INTO stock_entries (item_id, quantity, transaction_type, reference_type, reference_number, notes, created_at)
SELECT i.id, CAST($2 AS NUMERIC), %[1]s, %[2]s, %[3]s, CAST($3 AS TEXT), CURRENT_TIMESTAMP
FROM items i
WHERE i.code = CAST($1 AS TEXT)
  AND NOT EXISTS (
      SELECT 1 FROM stock_entries se
      WHERE se.item_id = i.id
        AND se.reference_type = %[2]s
        AND se.reference_number = %[3]s
  )
LIMIT 1`

	entityCountsSQL = `SELECT 'Vendors' AS entity, COUNT(*) AS count FROM vendors
UNION ALL
SELECT 'Items (RM)', COUNT(*) FROM items WHERE type = 'RAW_MATERIAL'
UNION ALL
SELECT 'Items (SA)', COUNT(*) FROM items WHERE type = 'SUB_ASSEMBLY'
UNION ALL
SELECT 'Item-Vendor Links', COUNT(*) FROM item_vendors
UNION ALL
SELECT 'BOMs', COUNT(*) FROM bom_headers
UNION ALL
SELECT 'BOM Items', COUNT(*) FROM bom_items
UNION ALL
SELECT 'Stock Entries', COUNT(*) FROM stock_entries`
)

// Emit renders a plan into a batch for the given dialect.
//
// Statements follow dependency order: vendors, raw-material items,
// sub-assembly items, item-vendor links, BOM headers each followed by their
// lines, then opening stock. The batch's RunID and GeneratedAt are left for
// the caller to stamp.
func Emit(p *Plan, d Dialect) Batch {
	e := emitter{dialect: d}

	for _, v := range p.Vendors {
		e.add(EntityVendor, fmt.Sprintf("vendor %s", v.Name), insertVendorSQL, v.Code, v.Name)
	}
	for _, item := range p.RawMaterials {
		e.item(item)
	}
	for _, item := range p.SubAssemblies {
		e.item(item)
	}
	for _, l := range p.Links {
		e.add(EntityItemVendor, fmt.Sprintf("%s <- %s (P%d)", l.ItemCode, l.VendorCode, l.Priority),
			insertItemVendorSQL, l.ItemCode, l.VendorCode, l.Priority, nullDecimal(l.UnitPrice))
	}
	for _, b := range p.BOMs {
		h := b.Header
		e.add(EntityBOMHeader, fmt.Sprintf("BOM %s (%s)", h.BOMNumber, h.ParentName),
			fmt.Sprintf(insertBOMHeaderSQL, enumLiteral(string(h.Status))),
			h.BOMNumber, h.ParentItemCode, h.Version, h.IsMultiLevel)
		for _, l := range b.Lines {
			e.add(EntityBOMItem, fmt.Sprintf("%s: %s x %s", l.BOMNumber, l.ChildItemCode, formatQuantity(l.Quantity)),
				insertBOMItemSQL, l.BOMNumber, l.ChildItemCode, l.Quantity, l.UnitOfMeasure)
		}
	}
	for _, s := range p.Stock {
		e.add(EntityStock, fmt.Sprintf("opening stock %s: %s", s.ItemCode, formatQuantity(s.Quantity)),
			fmt.Sprintf(insertStockSQL, enumLiteral(s.TransactionType), enumLiteral(s.ReferenceType), enumLiteral(s.ReferenceNumber)),
			s.ItemCode, s.Quantity, s.Notes)
	}

	return Batch{
		Source:     p.Source,
		Dialect:    d.Name(),
		Statements: e.statements,
		Verification: []Query{
			{Name: QueryEntityCounts, SQL: entityCountsSQL},
			{Name: QueryMultiVendor, SQL: d.MultiVendorQuery(MultiVendorLimit)},
		},
		Warnings: p.Diagnostics,
	}
}

type emitter struct {
	dialect    Dialect
	statements []Statement
}

func (e *emitter) add(entity Entity, comment, query string, args ...any) {
	e.statements = append(e.statements, Statement{
		Entity:  entity,
		Comment: comment,
		SQL:     e.dialect.Rebind(query),
		Args:    args,
	})
}

func (e *emitter) item(item Item) {
	e.add(EntityItem, fmt.Sprintf("%s %s", strings.ToLower(string(item.Category)), item.Name),
		fmt.Sprintf(insertItemSQL, enumLiteral(string(item.Category))),
		item.Code, item.Name, item.UnitOfMeasure, nullDecimal(item.UnitCost))
}

// enumLiterals holds the only values ever written as SQL literals.
var enumLiterals = map[string]string{
	string(CategoryRawMaterial):  "'RAW_MATERIAL'",
	string(CategorySubAssembly):  "'SUB_ASSEMBLY'",
	string(CategoryFinishedGood): "'FINISHED_GOOD'",
	string(BOMDraft):             "'DRAFT'",
	string(BOMActive):            "'ACTIVE'",
	string(BOMObsolete):          "'OBSOLETE'",
	StockTransactionIn:           "'IN'",
	StockReferenceType:           "'OPENING_STOCK'",
	StockReferenceNumber:         "'INITIAL-IMPORT'",
}

// enumLiteral returns the SQL literal for a known constant, or NULL.
func enumLiteral(v string) string {
	if lit, ok := enumLiterals[v]; ok {
		return lit
	}
	return "NULL"
}

// nullDecimal converts an optional decimal into a statement argument.
func nullDecimal(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return d.Decimal
}

func formatQuantity(q float64) string {
	return decimal.NewFromFloat(q).String()
}
