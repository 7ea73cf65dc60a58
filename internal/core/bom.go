package core

// bomAssembler groups flat BOM rows into headers and lines. The sheet lists
// an assembly name only on the first row of each group; following rows with
// an empty assembly cell belong to the same group.
type bomAssembler struct {
	catalog *Catalog

	current     int    // index into boms, -1 before the first header
	currentName string // assembly name of the open header
	byName      map[string]int
	byNumber    map[string]string // BOM number -> assembly name
	children    map[string]map[string]struct{}

	boms  []BOM
	diags []Diagnostic
}

// AssembleBOMs converts BOM rows into one BOM per distinct assembly name.
//
// A non-empty assembly cell that differs from the open assembly opens that
// assembly's header, creating it on first sight. Rows with a component name
// add a line to the open header (quantity defaults to 1, unit to PCS).
// Component rows that appear before any assembly are skipped.
func AssembleBOMs(rows []Row, catalog *Catalog) ([]BOM, []Diagnostic) {
	a := &bomAssembler{
		catalog:  catalog,
		current:  -1,
		byName:   make(map[string]int),
		byNumber: make(map[string]string),
		children: make(map[string]map[string]struct{}),
	}
	for _, r := range rows {
		a.add(r)
	}
	return a.boms, a.diags
}

func (a *bomAssembler) add(r Row) {
	assembly := CleanString(r.Get(FieldAssembly))
	if assembly.Valid && assembly.String != a.currentName {
		a.open(assembly.String, r)
	}

	child := CleanString(r.Get(FieldChild))
	if !child.Valid {
		return
	}
	if a.current < 0 {
		a.diags = append(a.diags, diagf(DiagOrphanLine, SheetBOM, r.Line,
			"component %q appears before any assembly; row skipped", child.String))
		return
	}

	bom := &a.boms[a.current]
	code, ok := a.catalog.CodeFor(child.String)
	if !ok {
		code = ItemCode(child.String, r.Index+ChildFallbackOffset)
		a.diags = append(a.diags, diagf(DiagUnresolvedChild, SheetBOM, r.Line,
			"component %q of %s is not a known item; using code %s", child.String, bom.Header.BOMNumber, code))
	}

	seen := a.children[bom.Header.BOMNumber]
	if _, dup := seen[code]; dup {
		a.diags = append(a.diags, diagf(DiagDuplicateLine, SheetBOM, r.Line,
			"component %s listed more than once in %s; only the first line is inserted", code, bom.Header.BOMNumber))
	}
	seen[code] = struct{}{}

	bom.Lines = append(bom.Lines, BOMLine{
		BOMNumber:     bom.Header.BOMNumber,
		ChildItemCode: code,
		ChildName:     child.String,
		Quantity:      FloatOr(CleanNumber(r.Get(FieldQuantity)), 1),
		UnitOfMeasure: TextOr(CleanString(r.Get(FieldUoM)), DefaultUoM),
	})
}

func (a *bomAssembler) open(name string, r Row) {
	a.currentName = name
	if i, ok := a.byName[name]; ok {
		a.current = i
		return
	}

	code, ok := a.catalog.CodeFor(name)
	if !ok {
		code = ItemCode(name, r.Index+AssemblyFallbackOffset)
		a.diags = append(a.diags, diagf(DiagUnknownAssembly, SheetBOM, r.Line,
			"assembly %q is not a known item; header %s needs an item with code %s",
			name, BOMNumber(code), code))
	} else if cat, _ := a.catalog.CategoryFor(name); cat == CategoryRawMaterial {
		// The header insert only matches sub-assemblies and finished goods.
		a.diags = append(a.diags, diagf(DiagNotAnAssembly, SheetBOM, r.Line,
			"assembly %q is a raw material; header %s and its lines will not be inserted",
			name, BOMNumber(code)))
	}

	number := BOMNumber(code)
	if owner, taken := a.byNumber[number]; taken {
		a.diags = append(a.diags, diagf(DiagCodeCollision, SheetBOM, r.Line,
			"assemblies %q and %q share BOM number %s", owner, name, number))
	} else {
		a.byNumber[number] = name
	}
	if a.children[number] == nil {
		a.children[number] = make(map[string]struct{})
	}

	a.boms = append(a.boms, BOM{
		Header: BOMHeader{
			BOMNumber:      number,
			ParentItemCode: code,
			ParentName:     name,
			Version:        DefaultBOMVersion,
			Status:         BOMActive,
			IsMultiLevel:   false,
		},
	})
	a.current = len(a.boms) - 1
	a.byName[name] = a.current
}
