// Package core turns an inventory workbook into an ordered, idempotent batch
// of SQL statements.
//
// The package has no I/O. Readers hand it a [Workbook] of normalized rows,
// and it hands back a [Plan] (the entities it derived plus diagnostics) and a
// [Batch] (the statements that load them). Writing the batch to a file or
// running it against a database is left to other packages.
//
// # Pipeline
//
// [Build] runs the components in dependency order:
//
//  1. [ExtractVendors] collects every supplier name across raw-material rows.
//  2. [BuildCatalog] derives raw-material and sub-assembly items and the
//     name→code lookup.
//  3. [LinkVendors] ranks each item's suppliers (priority 1 carries the cost).
//  4. [AssembleBOMs] groups flat BOM rows into headers and lines.
//  5. Opening stock entries are derived for items with positive stock.
//
// [Emit] then renders the plan into a [Batch] for a [Dialect]. Every insert is
// guarded by NOT EXISTS on its natural key, so a batch can be applied again
// without creating duplicates.
//
// # Codes
//
// Vendor and item codes are derived from names by [VendorCode] and
// [ItemCode]. Codes are deterministic and length bounded; truncation may make
// two names share a code. Such collisions are reported as diagnostics and
// left for the operator to resolve.
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages using [MapError].
// Each error category has a code for support reference:
//
//   - WB001-WB005: Workbook errors (sheet, columns, format, source)
//   - GEN001-GEN003: Generation errors (dialect, empty plan, output)
//   - DB001-DB006: Database errors while applying a batch
package core
