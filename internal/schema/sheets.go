// Package schema declares the columns the importer reads from each sheet.
package schema

import (
	"github.com/JonMunkholm/stockimport/internal/config"
	"github.com/JonMunkholm/stockimport/internal/core"
)

// RawMaterialFieldSpecs defines the expected columns of the raw-material sheet.
var RawMaterialFieldSpecs = []core.FieldSpec{
	{Key: core.FieldName, Header: "RAW MATERIAL NAME", Type: core.FieldText, Required: true},
	{Key: core.FieldUoM, Header: "UNIT OF MEASURE", Type: core.FieldText, Required: true},
	{Key: core.FieldCost, Header: "COST", Type: core.FieldNumeric, Required: true},
	{Key: core.FieldSupplier, Header: "SUPPLIER", Type: core.FieldText, Required: true},
	{Key: core.FieldStock, Header: "Current Stock", Type: core.FieldNumeric, Required: true},
	{Key: core.FieldPartNo, Header: "PART #", Type: core.FieldText},
}

// SubAssemblyFieldSpecs defines the expected columns of the sub-assembly sheet.
var SubAssemblyFieldSpecs = []core.FieldSpec{
	{Key: core.FieldName, Header: "SEMI FINISHED GOODS", Type: core.FieldText, Required: true},
	{Key: core.FieldUoM, Header: "UoM", Type: core.FieldText, Required: true},
}

// BOMFieldSpecs defines the expected columns of the flattened BOM sheet.
var BOMFieldSpecs = []core.FieldSpec{
	{Key: core.FieldAssembly, Header: "SUB ASSEMBLY NAME", Type: core.FieldText, Required: true},
	{Key: core.FieldChild, Header: "RAW MATERIAL NAME", Type: core.FieldText, Required: true},
	{Key: core.FieldQuantity, Header: "UNITS", Type: core.FieldNumeric, Required: true},
	{Key: core.FieldUoM, Header: "UoM", Type: core.FieldText, Required: true},
}

// Sheet pairs a sheet's layout with its resolved column specs.
type Sheet struct {
	Key    string // logical sheet name used in diagnostics
	Layout config.SheetLayout
	Fields []core.FieldSpec
}

// Sheets resolves the three input sheets against a layout, applying any
// header overrides it carries.
func Sheets(layout config.Layout) []Sheet {
	return []Sheet{
		{Key: core.SheetRawMaterials, Layout: layout.RawMaterials, Fields: Resolve(RawMaterialFieldSpecs, layout.RawMaterials)},
		{Key: core.SheetSubAssemblies, Layout: layout.SubAssemblies, Fields: Resolve(SubAssemblyFieldSpecs, layout.SubAssemblies)},
		{Key: core.SheetBOM, Layout: layout.BOM, Fields: Resolve(BOMFieldSpecs, layout.BOM)},
	}
}

// Resolve returns a copy of specs with headers overridden by the layout.
func Resolve(specs []core.FieldSpec, sheet config.SheetLayout) []core.FieldSpec {
	out := make([]core.FieldSpec, len(specs))
	for i, spec := range specs {
		spec.Header = sheet.Header(spec.Key, spec.Header)
		out[i] = spec
	}
	return out
}

// Describe lists the resolved headers per sheet, for GET /api/layout.
func Describe(layout config.Layout) []SheetDescription {
	sheets := Sheets(layout)
	out := make([]SheetDescription, 0, len(sheets))
	for _, s := range sheets {
		d := SheetDescription{
			Key:       s.Key,
			Name:      s.Layout.Name,
			HeaderRow: s.Layout.HeaderRow,
		}
		for _, f := range s.Fields {
			d.Columns = append(d.Columns, ColumnDescription{
				Field:    f.Key,
				Header:   f.Header,
				Required: f.Required,
				Numeric:  f.Type == core.FieldNumeric,
			})
		}
		out = append(out, d)
	}
	return out
}

// SheetDescription is the JSON shape of a resolved sheet.
type SheetDescription struct {
	Key       string              `json:"key"`
	Name      string              `json:"name"`
	HeaderRow int                 `json:"headerRow"`
	Columns   []ColumnDescription `json:"columns"`
}

// ColumnDescription is the JSON shape of a resolved column.
type ColumnDescription struct {
	Field    string `json:"field"`
	Header   string `json:"header"`
	Required bool   `json:"required"`
	Numeric  bool   `json:"numeric"`
}
