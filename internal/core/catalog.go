package core

import "github.com/shopspring/decimal"

// Catalog holds the items derived from the raw-material and sub-assembly
// sheets, plus the name→code lookup the linker and BOM assembler resolve
// against.
type Catalog struct {
	RawMaterials  []Item
	SubAssemblies []Item

	codes  map[string]string   // item name -> code, later rows win
	kinds  map[string]Category // item name -> category, later rows win
	owners map[string]string   // code -> first name seen
	diags  []Diagnostic
}

// BuildCatalog derives items from raw-material and sub-assembly rows in file
// order. Rows without a name are skipped.
func BuildCatalog(rawMaterials, subAssemblies []Row) *Catalog {
	c := &Catalog{
		codes:  make(map[string]string),
		kinds:  make(map[string]Category),
		owners: make(map[string]string),
	}

	for _, r := range rawMaterials {
		name := CleanString(r.Get(FieldName))
		if !name.Valid {
			c.diags = append(c.diags, diagf(DiagSkippedRow, SheetRawMaterials, r.Line,
				"row has no raw material name"))
			continue
		}
		cost := CleanDecimal(r.Get(FieldCost))
		if !cost.Valid {
			cost = decimal.NullDecimal{Decimal: decimal.Zero, Valid: true}
		}
		item := Item{
			Code:          ItemCode(name.String, r.Index+RawMaterialFallbackOffset),
			Name:          name.String,
			Category:      CategoryRawMaterial,
			UnitOfMeasure: TextOr(CleanString(r.Get(FieldUoM)), DefaultUoM),
			UnitCost:      cost,
			OpeningStock:  FloatOr(CleanNumber(r.Get(FieldStock)), 0),
			SourceRow:     r.Line,
			Suppliers:     TextOr(CleanString(r.Get(FieldSupplier)), ""),
		}
		c.RawMaterials = append(c.RawMaterials, item)
		c.register(item, SheetRawMaterials)
	}

	for _, r := range subAssemblies {
		name := CleanString(r.Get(FieldName))
		if !name.Valid {
			c.diags = append(c.diags, diagf(DiagSkippedRow, SheetSubAssemblies, r.Line,
				"row has no sub-assembly name"))
			continue
		}
		item := Item{
			Code:          ItemCode(name.String, r.Index+SubAssemblyFallbackOffset),
			Name:          name.String,
			Category:      CategorySubAssembly,
			UnitOfMeasure: TextOr(CleanString(r.Get(FieldUoM)), DefaultUoM),
			SourceRow:     r.Line,
		}
		c.SubAssemblies = append(c.SubAssemblies, item)
		c.register(item, SheetSubAssemblies)
	}

	return c
}

func (c *Catalog) register(item Item, sheet string) {
	if owner, ok := c.owners[item.Code]; ok && owner != item.Name {
		c.diags = append(c.diags, diagf(DiagCodeCollision, sheet, item.SourceRow,
			"%q and %q share item code %s; only the first is inserted", owner, item.Name, item.Code))
	} else if !ok {
		c.owners[item.Code] = item.Name
	}
	c.codes[item.Name] = item.Code
	c.kinds[item.Name] = item.Category
}

// CodeFor returns the code of the item with the given name.
func (c *Catalog) CodeFor(name string) (string, bool) {
	code, ok := c.codes[name]
	return code, ok
}

// CategoryFor returns the category of the item with the given name.
func (c *Catalog) CategoryFor(name string) (Category, bool) {
	cat, ok := c.kinds[name]
	return cat, ok
}

// Items returns raw materials followed by sub-assemblies.
func (c *Catalog) Items() []Item {
	items := make([]Item, 0, len(c.RawMaterials)+len(c.SubAssemblies))
	items = append(items, c.RawMaterials...)
	return append(items, c.SubAssemblies...)
}

// Diagnostics returns the findings recorded while building the catalog.
func (c *Catalog) Diagnostics() []Diagnostic {
	return c.diags
}
